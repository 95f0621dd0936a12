// Package launch prepares the game data folders for a development session
// and builds the command that starts the launcher.
package launch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/nibzard/mcdev/internal/config"
	"github.com/nibzard/mcdev/internal/devenv"
	"github.com/nibzard/mcdev/internal/gamedir"
	"github.com/nibzard/mcdev/internal/packs"
	"github.com/nibzard/mcdev/internal/utils"
)

// Files written into the world folder.
const (
	LaunchConfigFile       = "launch_config.cppconfig"
	WorldBehaviorPacksFile = "world_behavior_packs.json"
	WorldResourcePacksFile = "world_resource_packs.json"
	LevelDataFile          = "level.dat"
)

// Plan is a prepared session.
type Plan struct {
	Executable   string
	ProjectRoot  string
	IncludedDirs []string
	WorldDir     string
	LaunchConfig string
	GameOutput   config.GameOutput

	Packs *packs.Set
	// DebugModDir is the extracted debug-env mod, empty when the behavior
	// packs folder is missing.
	DebugModDir string
	// Env holds the debug variables added to the game's environment.
	Env map[string]string
	// PendingLinks could not be created without elevation.
	PendingLinks []gamedir.LinkRequest
	// Warnings are non-fatal problems found while preparing.
	Warnings []error
}

func (p *Plan) warn(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Errorf(format, args...))
}

// Prepare links the project's packs into the game folders, installs the
// debug-env mod, creates the development world with its level.dat and
// writes its launch files.
func Prepare(cfg *config.Config, project string) (*Plan, error) {
	if err := checkExecutable(cfg.GameExecutable); err != nil {
		return nil, err
	}
	if project == "" {
		return nil, errors.New("project path is empty")
	}
	projectRoot, err := filepath.Abs(project)
	if err != nil {
		return nil, fmt.Errorf("resolve project path: %w", err)
	}

	plan := &Plan{
		Executable:   cfg.GameExecutable,
		ProjectRoot:  projectRoot,
		IncludedDirs: append([]string(nil), cfg.IncludedModDirs...),
		GameOutput:   cfg.GameOutput,
		Packs:        &packs.Set{},
	}
	layout := gamedir.New(cfg.GameDataDir)

	packDirs := map[packs.Type]string{}
	for _, d := range []struct {
		typ  packs.Type
		find func() (string, error)
	}{
		{packs.TypeBehavior, layout.BehaviorPacksDir},
		{packs.TypeResource, layout.ResourcePacksDir},
	} {
		dir, err := d.find()
		if err != nil {
			plan.warn("%s packs will not be linked: %w", d.typ, err)
			continue
		}
		if _, err := gamedir.RemoveSymlinks(dir); err != nil {
			plan.warn("clean %s: %w", dir, err)
		}
		packDirs[d.typ] = dir
	}

	if err := plan.collectPacks(); err != nil {
		return nil, err
	}
	plan.linkPacks(packDirs)
	if dir, ok := packDirs[packs.TypeBehavior]; ok {
		plan.addDebugMod(dir)
	}

	worlds, err := layout.WorldsDir()
	if err != nil {
		return nil, fmt.Errorf("locate worlds folder: %w", err)
	}
	plan.WorldDir = filepath.Join(worlds, cfg.World.FolderName)
	if err := os.MkdirAll(plan.WorldDir, 0755); err != nil {
		return nil, fmt.Errorf("create world folder: %w", err)
	}
	if err := writeLevelData(filepath.Join(plan.WorldDir, LevelDataFile), worldSettings(cfg, projectRoot)); err != nil {
		return nil, err
	}

	if err := plan.writeWorldManifests(); err != nil {
		return nil, err
	}
	plan.LaunchConfig = filepath.Join(plan.WorldDir, LaunchConfigFile)
	if err := writeJSON(plan.LaunchConfig, newLaunchConfig(cfg)); err != nil {
		return nil, fmt.Errorf("write launch config: %w", err)
	}

	plan.Env, err = DebugEnv(cfg.KeyBindings(), projectRoot, cfg.DebugIPCPort)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || !utils.HasExtension(path, ".exe") {
		return fmt.Errorf("invalid game executable path: %q", path)
	}
	return nil
}

// collectPacks scans the project first, then each included directory.
func (p *Plan) collectPacks() error {
	warnings, err := p.Packs.AddRoot(p.ProjectRoot)
	if err != nil {
		return fmt.Errorf("scan project: %w", err)
	}
	p.Warnings = append(p.Warnings, warnings...)

	for _, dir := range p.IncludedDirs {
		warnings, err := p.Packs.AddRoot(dir)
		p.Warnings = append(p.Warnings, warnings...)
		if err != nil {
			p.warn("skip included dir: %w", err)
		}
	}
	return nil
}

func (p *Plan) linkPacks(packDirs map[packs.Type]string) {
	for _, pack := range p.Packs.All() {
		dir, ok := packDirs[pack.Type]
		if !ok {
			continue
		}
		link := filepath.Join(dir, pack.UUID)
		res, err := gamedir.Link(pack.Path, link)
		switch {
		case errors.Is(err, gamedir.ErrPrivilegeRequired):
			p.PendingLinks = append(p.PendingLinks, gamedir.LinkRequest{Target: pack.Path, Link: link})
		case err != nil:
			p.Warnings = append(p.Warnings, err)
		case res == gamedir.LinkBlocked:
			p.warn("%s already exists and is not a link to %s", link, pack.Path)
		}
	}
}

// addDebugMod extracts the bundled debug-env mod and lists it with the
// behavior packs.
func (p *Plan) addDebugMod(dir string) {
	dest, err := ExtractDebugMod(dir)
	if err != nil {
		p.warn("hot reload disabled: %w", err)
		return
	}
	pack, err := packs.ParseManifest(filepath.Join(dest, packs.ManifestFile))
	if err != nil {
		p.warn("hot reload disabled: %w", err)
		return
	}
	if err := p.Packs.Add(*pack); err != nil {
		p.warn("hot reload disabled: %w", err)
		return
	}
	p.DebugModDir = dest
}

func worldSettings(cfg *config.Config, projectRoot string) WorldSettings {
	w := cfg.World
	return WorldSettings{
		Name:          filepath.Base(projectRoot),
		Seed:          w.Seed,
		GameType:      int32(w.GameMode.Code()),
		Generator:     int32(w.LevelType.Code()),
		Cheats:        w.Cheats,
		KeepInventory: w.KeepInventory,
		DaylightCycle: w.DaylightCycle,
		WeatherCycle:  w.WeatherCycle,
		LastPlayed:    time.Now(),
	}
}

func (p *Plan) writeWorldManifests() error {
	for name, list := range map[string][]packs.Pack{
		WorldBehaviorPacksFile: p.Packs.Behavior,
		WorldResourcePacksFile: p.Packs.Resource,
	} {
		data, err := packs.WorldManifest(list)
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(p.WorldDir, name), data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	return nil
}

// LaunchConfig is the content of launch_config.cppconfig.
type LaunchConfig struct {
	WorldInfo  WorldInfo      `json:"world_info"`
	RoomInfo   map[string]any `json:"room_info"`
	PlayerInfo PlayerInfo     `json:"player_info"`
	SkinInfo   SkinInfo       `json:"skin_info"`
}

type WorldInfo struct {
	LevelID string `json:"level_id"`
}

type PlayerInfo struct {
	URS      string `json:"urs"`
	UserID   int    `json:"user_id"`
	UserName string `json:"user_name"`
}

type SkinInfo struct {
	Slim bool   `json:"slim"`
	Skin string `json:"skin"`
}

func newLaunchConfig(cfg *config.Config) LaunchConfig {
	return LaunchConfig{
		WorldInfo: WorldInfo{LevelID: cfg.World.FolderName},
		RoomInfo:  map[string]any{},
		PlayerInfo: PlayerInfo{
			UserName: cfg.UserName,
		},
		SkinInfo: SkinInfo{
			Skin: filepath.Join(filepath.Dir(cfg.GameExecutable), "data", "skin_packs", "vanilla", "steve.png"),
		},
	}
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DebugEnv builds the variables read by the in-game reload handler.
func DebugEnv(kb devenv.KeyBindings, projectRoot string, ipcPort int) (map[string]string, error) {
	options, err := json.Marshal(kb.Options())
	if err != nil {
		return nil, fmt.Errorf("encode debug options: %w", err)
	}
	dirs, err := json.Marshal([]string{utils.SlashPath(projectRoot)})
	if err != nil {
		return nil, fmt.Errorf("encode target mod dirs: %w", err)
	}
	env := map[string]string{
		devenv.EnvDebugOptions:  string(options),
		devenv.EnvTargetModDirs: string(dirs),
	}
	if ipcPort > 0 {
		env[devenv.EnvDebugIPCPort] = fmt.Sprint(ipcPort)
	}
	return env, nil
}

// Environ appends the plan's debug variables to base, sorted by key.
func (p *Plan) Environ(base []string) []string {
	keys := make([]string, 0, len(p.Env))
	for k := range p.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := append([]string(nil), base...)
	for _, k := range keys {
		env = append(env, k+"="+p.Env[k])
	}
	return env
}

// Command returns the launcher command for the plan.
func (p *Plan) Command(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, p.Executable, "config="+p.LaunchConfig)
	cmd.Dir = filepath.Dir(p.Executable)
	cmd.Env = p.Environ(os.Environ())
	return cmd
}
