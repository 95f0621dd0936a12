package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mcdev/internal/config"
	"github.com/nibzard/mcdev/internal/gamedir"
	"github.com/nibzard/mcdev/internal/gamelog"
	"github.com/nibzard/mcdev/internal/launch"
	"github.com/nibzard/mcdev/internal/logging"
	"github.com/nibzard/mcdev/internal/ui"
)

// linkScriptName is written to the temp dir when pack links need elevation.
const linkScriptName = "mcdev-link-packs.bat"

// linkElevated creates links that need administrator rights.
var linkElevated = gamedir.LinkElevated

// runCommand prepares the session and runs the game until it exits.
func runCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("mcdev run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	uiMode := fs.String("ui", "", "UI mode (tui for the session viewer)")
	dryRun := fs.Bool("dry-run", false, "Prepare folders and print the command without starting the game")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *uiMode != "" && *uiMode != "tui" {
		return fmt.Errorf("invalid ui mode %q (want tui)", *uiMode)
	}

	plan, err := launch.Prepare(cfg, cfg.ProjectRoot)
	if err != nil {
		return err
	}
	for _, w := range plan.Warnings {
		logger.Warn(w.Error())
	}
	logger.Info("session prepared", "packs", plan.Packs.Len(), "world", plan.WorldDir)

	if *dryRun {
		printPlan(plan)
		return nil
	}
	if err := ensureLinks(ctx, plan, logger); err != nil {
		return err
	}

	mode, err := gamelog.ParseMode(string(plan.GameOutput))
	if err != nil {
		return err
	}
	session := gamelog.Session{
		Mode:         mode,
		Executable:   plan.Executable,
		WorldDir:     plan.WorldDir,
		IncludedDirs: plan.IncludedDirs,
	}
	tb := &gamelog.Tracebacks{Roots: append([]string{plan.ProjectRoot}, plan.IncludedDirs...)}

	sessionLog, err := logging.NewSessionLog(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		logger.Warn("session log disabled", "err", err)
		sessionLog = nil
	}
	defer sessionLog.Close()

	pr, pw := io.Pipe()
	var out io.Writer = pw
	if sessionLog != nil {
		for _, e := range gamelog.HeaderEntries(session, time.Now()) {
			fmt.Fprintln(sessionLog, e.Text)
		}
		out = io.MultiWriter(pw, sessionLog)
	}

	cmd := plan.Command(ctx)
	cmd.Stdout = out
	cmd.Stderr = out
	game := &gameProcess{cmd: cmd, done: make(chan struct{})}
	startedAt := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start game: %w", err)
	}
	logger.Debug("game started", "pid", cmd.Process.Pid)
	go game.wait(pw)

	useTUI := *uiMode == "tui"
	if useTUI && !ui.IsTTY(os.Stdout) {
		logger.Warn("tui needs a terminal, falling back to plain output")
		useTUI = false
	}

	var (
		printer   *gamelog.Printer
		streamErr error
	)
	if useTUI {
		streamErr = viewGame(ctx, pr, session, tb, game)
	} else {
		printer = &gamelog.Printer{Out: stdout, Mode: mode, Color: ui.IsTTY(stdout), Tracebacks: tb}
		printer.Header(session)
		streamErr = printer.Stream(ctx, pr)
	}
	// Keep the pipe drained so the process can finish writing.
	go func() { _, _ = io.Copy(io.Discard, pr) }()

	select {
	case <-game.done:
	default:
		logger.Info("waiting for the game to exit")
		<-game.done
	}
	endedAt := time.Now()
	if printer != nil {
		printer.Exit(game.code)
	}

	if sessionLog != nil {
		fmt.Fprintln(sessionLog, gamelog.ExitText(game.code))
		sum := logging.Summary{
			Executable: plan.Executable,
			WorldDir:   plan.WorldDir,
			Packs:      plan.Packs.Len(),
			ExitCode:   game.code,
			StartedAt:  startedAt,
			EndedAt:    endedAt,
		}
		if err := sessionLog.WriteSummary(sum); err != nil {
			logger.Warn("could not write session summary", "err", err)
		}
		logger.Debug("session log written", "path", sessionLog.LogPath)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if game.err != nil && !errors.As(game.err, &exitErr) {
		return fmt.Errorf("wait for game: %w", game.err)
	}
	if streamErr != nil && !errors.Is(streamErr, context.Canceled) {
		return streamErr
	}
	return nil
}

// gameProcess tracks a started game. err and code are valid once done is
// closed.
type gameProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
	code int
}

func (g *gameProcess) wait(pw *io.PipeWriter) {
	g.err = g.cmd.Wait()
	g.code = exitCode(g.cmd)
	_ = pw.Close()
	close(g.done)
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

// viewGame feeds game output into the session viewer until the user quits.
func viewGame(ctx context.Context, r io.Reader, session gamelog.Session, tb *gamelog.Tracebacks, game *gameProcess) error {
	viewCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan ui.Event, 64)
	go func() {
		defer close(events)
		send := func(ev ui.Event) {
			select {
			case events <- ev:
			case <-viewCtx.Done():
			}
		}
		err := gamelog.ScanLines(viewCtx, r, func(line string, partial bool) {
			send(ui.Event{Line: line, Partial: partial})
		})
		if err != nil {
			send(ui.Event{Err: err})
			return
		}
		select {
		case <-game.done:
			send(ui.Event{Exited: true, ExitCode: game.code})
		case <-viewCtx.Done():
		}
	}()

	return ui.RunViewer(viewCtx, session, events, tb)
}

// ensureLinks creates the links Prepare could not, asking for
// administrator rights. The game is not started without its packs.
func ensureLinks(ctx context.Context, plan *launch.Plan, logger *log.Logger) error {
	if len(plan.PendingLinks) == 0 {
		return nil
	}
	script := filepath.Join(os.TempDir(), linkScriptName)
	logger.Warn("creating pack links needs administrator rights", "links", len(plan.PendingLinks), "script", script)
	if err := linkElevated(ctx, plan.PendingLinks, script); err != nil {
		return fmt.Errorf("link packs: %w (run %s from an elevated prompt, or enable Developer Mode)", err, script)
	}
	logger.Info("pack links created", "links", len(plan.PendingLinks))
	plan.PendingLinks = nil
	return nil
}

// printPlan shows what run would start.
func printPlan(plan *launch.Plan) {
	fmt.Fprintf(stdout, "Executable: %s\n", plan.Executable)
	fmt.Fprintf(stdout, "Launch config: %s\n", plan.LaunchConfig)
	fmt.Fprintf(stdout, "World: %s\n", plan.WorldDir)
	fmt.Fprintf(stdout, "Packs: %d behavior, %d resource\n", len(plan.Packs.Behavior), len(plan.Packs.Resource))
	if plan.DebugModDir != "" {
		fmt.Fprintf(stdout, "Debug mod: %s\n", plan.DebugModDir)
	}
	for _, l := range plan.PendingLinks {
		fmt.Fprintf(stdout, "Pending link (needs administrator rights): %s -> %s\n", l.Link, l.Target)
	}
	keys := make([]string, 0, len(plan.Env))
	for k := range plan.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(stdout, "Env: %s=%s\n", k, plan.Env[k])
	}
	fmt.Fprintf(stdout, "Command: %q config=%s\n", plan.Executable, plan.LaunchConfig)
}
