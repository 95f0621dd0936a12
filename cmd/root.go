// Package cmd implements the CLI command structure for mcdev.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/nibzard/mcdev/internal/config"
	"github.com/nibzard/mcdev/internal/devactions"
	"github.com/nibzard/mcdev/internal/devenv"
	"github.com/nibzard/mcdev/internal/gamelog"
	"github.com/nibzard/mcdev/internal/launch"
	"github.com/nibzard/mcdev/internal/logging"
	"github.com/nibzard/mcdev/internal/packs"
	"github.com/nibzard/mcdev/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the mcdev CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcdev", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// With no subcommand, run the game.
	subcommand := "run"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	logger := logging.NewConsoleLoggerFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)

	switch subcommand {
	case "run":
		return runCommand(ctx, cfg, logger, remainingArgs)
	case "env":
		return envCommand(cfg, remainingArgs)
	case "packs":
		return packsCommand(cfg, logger, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "tail":
		return tailCommand(ctx, cfg, remainingArgs)
	case "config":
		return configCommand(cws, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// envCommand prints the debug environment the game is started with.
func envCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mcdev env", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print as a JSON object")
	check := fs.Bool("check", false, "Decode the variables the way the game does and print the result")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	env, err := launch.DebugEnv(cfg.KeyBindings(), cfg.ProjectRoot, cfg.DebugIPCPort)
	if err != nil {
		return err
	}

	if *check {
		lookup := func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}
		loaded := devenv.Load(lookup)
		d := devactions.NewDispatcher(loaded, devactions.Host{}, nil)
		kb := d.Bindings()
		fmt.Fprintf(stdout, "Target mod dirs: %s\n", strings.Join(loaded.TargetModDirs(), ", "))
		fmt.Fprintf(stdout, "Reload mod key: %s\n", keyName(kb.ReloadMod))
		fmt.Fprintf(stdout, "Reload world key: %s\n", keyName(kb.ReloadWorld))
		fmt.Fprintf(stdout, "Reload add-on key: %s\n", keyName(kb.ReloadAddon))
		fmt.Fprintf(stdout, "Reload shaders key: %s\n", keyName(kb.ReloadShaders))
		fmt.Fprintf(stdout, "Keys fire outside HUD: %v\n", kb.Global)
		for _, code := range []int{kb.ReloadMod, kb.ReloadWorld, kb.ReloadAddon, kb.ReloadShaders} {
			if action, ok := d.Resolve(code, true); ok {
				fmt.Fprintf(stdout, "Key %d on HUD runs %s\n", code, action)
			}
		}
		if port, ok, err := devenv.DebugIPCPort(lookup); err != nil {
			fmt.Fprintf(stdout, "Debug IPC port: invalid (%v)\n", err)
		} else if ok {
			fmt.Fprintf(stdout, "Debug IPC port: %d\n", port)
		} else {
			fmt.Fprintln(stdout, "Debug IPC port: disabled")
		}
		return nil
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(stdout, "%s=%s\n", k, env[k])
	}
	return nil
}

func keyName(code int) string {
	if code == devenv.Unbound {
		return "unbound"
	}
	return fmt.Sprint(code)
}

// packsCommand lists the packs found in the project and included dirs.
func packsCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("mcdev packs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	asJSON := fs.Bool("json", false, "Print as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	roots := append([]string{cfg.ProjectRoot}, cfg.IncludedModDirs...)
	set, warnings, err := packs.Scan(roots...)
	for _, w := range warnings {
		logger.Warn("skipped pack", "err", w)
	}
	if err != nil {
		logger.Warn("some pack roots could not be scanned", "err", err)
	}

	if *asJSON {
		type packJSON struct {
			Type    packs.Type `json:"type"`
			UUID    string     `json:"uuid"`
			Name    string     `json:"name,omitempty"`
			Version []int      `json:"version"`
			Path    string     `json:"path"`
		}
		out := make([]packJSON, 0, set.Len())
		for _, p := range set.All() {
			out = append(out, packJSON{Type: p.Type, UUID: p.UUID, Name: p.Name, Version: p.Version, Path: p.Path})
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if set.Len() == 0 {
		fmt.Fprintln(stdout, "No packs found.")
		return nil
	}
	printPacks("Behavior packs", set.Behavior, cfg.ProjectRoot)
	printPacks("Resource packs", set.Resource, cfg.ProjectRoot)
	return nil
}

func printPacks(label string, list []packs.Pack, root string) {
	fmt.Fprintf(stdout, "%s (%d):\n", label, len(list))
	for _, p := range list {
		path := p.Path
		if rel, err := filepath.Rel(root, p.Path); err == nil && !strings.HasPrefix(rel, "..") {
			path = rel
		}
		name := p.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(stdout, "  %s  v%s  %s  %s\n", p.UUID, p.VersionString(), name, path)
	}
	fmt.Fprintln(stdout)
}

// tailCommand shows the latest session log.
func tailCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mcdev tail", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	filter := fs.String("filter", "", "Filter output like the live view (normal, verbose)")
	list := fs.Bool("runs", false, "List recorded sessions instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		return listRuns(logDir)
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	if *filter == "" {
		return logging.TailLog(ctx, stdout, logPath, *n, *follow)
	}
	mode, err := gamelog.ParseMode(*filter)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(logging.TailLog(ctx, pw, logPath, *n, *follow))
	}()
	printer := &gamelog.Printer{Out: stdout, Mode: mode, Color: ui.IsTTY(stdout)}
	err = printer.Stream(ctx, pr)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func listRuns(logDir string) error {
	runs, err := logging.FindLogRuns(logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(stdout, "No sessions recorded.")
			return nil
		}
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No sessions recorded.")
		return nil
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %s", run.RunID, run.ModTime.Local().Format("2006-01-02 15:04:05"))
		if run.SummaryPath != "" {
			if sum, err := logging.ReadSummary(run.SummaryPath); err == nil {
				line += fmt.Sprintf("  exit=%d  packs=%d", sum.ExitCode, sum.Packs)
			}
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("mcdev config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	showSources := fs.Bool("sources", true, "Show the source of each value")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	if file := cws.GetConfigFile(); file != "" {
		fmt.Fprintf(stdout, "# Config file: %s\n\n", file)
	}
	if err := toml.NewEncoder(stdout).Encode(cws.Config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if *showSources {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, "# Sources")
		fields := make([]string, 0, len(cws.Sources))
		for f := range cws.Sources {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(stdout, "# %-22s %s\n", f, cws.Sources[f])
		}
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "mcdev version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "mcdev - launch and hot-reload mods in the development game client")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mcdev [options] [command] [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run           Link packs, prepare the world and start the game (default command)")
	fmt.Fprintln(w, "  env           Print the debug environment passed to the game")
	fmt.Fprintln(w, "  packs         List behavior and resource packs")
	fmt.Fprintln(w, "  doctor        Check the executable, game folders and config")
	fmt.Fprintln(w, "  tail          Show the latest session log")
	fmt.Fprintln(w, "  config        Show the effective configuration")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run Options (use with 'run' command):")
	fmt.Fprintln(w, "  -ui string")
	fmt.Fprintln(w, "        UI mode (tui for the session viewer)")
	fmt.Fprintln(w, "  -dry-run")
	fmt.Fprintln(w, "        Prepare folders and print the command without starting the game")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Env Options (use with 'env' command):")
	fmt.Fprintln(w, "  -json         Print as a JSON object")
	fmt.Fprintln(w, "  -check        Decode the variables the way the game does")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tail Options (use with 'tail' command):")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -filter string")
	fmt.Fprintln(w, "        Filter output like the live view (normal, verbose)")
	fmt.Fprintln(w, "  -runs         List recorded sessions")
}
