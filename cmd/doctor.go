package cmd

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/mcdev/internal/config"
	"github.com/nibzard/mcdev/internal/devenv"
	"github.com/nibzard/mcdev/internal/gamedir"
	"github.com/nibzard/mcdev/internal/packs"
	"github.com/nibzard/mcdev/internal/utils"
)

// doctorCommand checks the game executable, game folders, config and packs.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mcdev doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	search := fs.Bool("search", false, "Search all drives for studio game installs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fmt.Fprintln(stdout, "mcdev Doctor")
	fmt.Fprintln(stdout, "============")
	fmt.Fprintln(stdout)

	allOK := true

	// Project root
	fmt.Fprintf(stdout, "Project root: %s\n", cfg.ProjectRoot)
	if _, err := os.Stat(cfg.ProjectRoot); err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		allOK = false
	} else {
		fmt.Fprintln(stdout, "  ✅ OK")
	}
	fmt.Fprintln(stdout)

	// Executable
	fmt.Fprintln(stdout, "Game executable:")
	if !checkExecutable(cfg.GameExecutable) {
		allOK = false
		if *search {
			found := gamedir.FindExecutables(gamedir.DriveRoots()...)
			if len(found) == 0 {
				fmt.Fprintln(stdout, "  ⚠️  No studio game installs found")
			}
			for _, exe := range found {
				fmt.Fprintf(stdout, "  💡 Found: %s\n", exe)
			}
		} else {
			fmt.Fprintln(stdout, "  💡 Run 'mcdev doctor -search' to look for installs")
		}
	}
	fmt.Fprintln(stdout)

	// Game folders
	fmt.Fprintf(stdout, "Game data: %s\n", cfg.GameDataDir)
	layout := gamedir.New(cfg.GameDataDir)
	folders := []struct {
		name string
		find func() (string, error)
	}{
		{"behavior_packs", layout.BehaviorPacksDir},
		{"resource_packs", layout.ResourcePacksDir},
		{"minecraftWorlds", layout.WorldsDir},
	}
	for _, f := range folders {
		dir, err := f.find()
		switch {
		case err != nil:
			fmt.Fprintf(stdout, "  ❌ %s: %v\n", f.name, err)
			allOK = false
		case *verbose:
			fmt.Fprintf(stdout, "  ✅ %s: %s\n", f.name, dir)
		default:
			fmt.Fprintf(stdout, "  ✅ %s\n", f.name)
		}
	}
	fmt.Fprintln(stdout)

	// Config
	fmt.Fprintln(stdout, "Config:")
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "  ✅ World: %s (%s, %s)\n", cfg.World.FolderName, cfg.World.GameMode, cfg.World.LevelType)
		fmt.Fprintf(stdout, "  ✅ Game output: %s\n", cfg.GameOutput)
	}
	kb := cfg.KeyBindings()
	if kb.ReloadMod == devenv.Unbound {
		fmt.Fprintln(stdout, "  ⚠️  Reload key is unbound")
	} else if *verbose {
		fmt.Fprintf(stdout, "  ✅ Reload key: %d\n", kb.ReloadMod)
	}
	if cfg.DebugIPCPort > 0 {
		fmt.Fprintf(stdout, "  ✅ Debug IPC port: %d\n", cfg.DebugIPCPort)
	}
	fmt.Fprintln(stdout)

	// Packs
	fmt.Fprintln(stdout, "Packs:")
	roots := append([]string{cfg.ProjectRoot}, cfg.IncludedModDirs...)
	set, warnings, err := packs.Scan(roots...)
	if err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(stdout, "  ❌ %s\n", line)
		}
		allOK = false
	}
	for _, w := range warnings {
		fmt.Fprintf(stdout, "  ⚠️  %v\n", w)
	}
	if set.Len() == 0 {
		fmt.Fprintln(stdout, "  ⚠️  No packs found in the project")
	} else {
		fmt.Fprintf(stdout, "  ✅ %d behavior, %d resource\n", len(set.Behavior), len(set.Resource))
		if *verbose {
			for _, p := range set.All() {
				fmt.Fprintf(stdout, "     %s %s v%s\n", p.Type, p.UUID, p.VersionString())
			}
		}
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. The game may not start correctly.")
	return fmt.Errorf("doctor checks failed")
}

func checkExecutable(path string) bool {
	if path == "" {
		fmt.Fprintln(stdout, "  ❌ Not configured (set game_executable or -game)")
		return false
	}
	fmt.Fprintf(stdout, "  %s\n", path)
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	}
	if !info.Mode().IsRegular() || !utils.HasExtension(path, ".exe") {
		fmt.Fprintln(stdout, "  ❌ Not an .exe file")
		return false
	}
	fmt.Fprintln(stdout, "  ✅ OK")
	return true
}
