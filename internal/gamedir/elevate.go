package gamedir

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nibzard/mcdev/internal/utils"
)

// ErrElevationUnsupported is returned by LinkElevated off Windows.
var ErrElevationUnsupported = errors.New("elevated linking is only supported on Windows")

// ElevatedCommand returns a command that runs the batch file at script with
// administrator rights and waits for it to finish.
func ElevatedCommand(ctx context.Context, script string) *exec.Cmd {
	quoted := strings.ReplaceAll(script, "'", "''")
	ps := fmt.Sprintf("Start-Process -FilePath cmd.exe -ArgumentList '/c','\"%s\"' -Verb RunAs -Wait -WindowStyle Hidden", quoted)
	return exec.CommandContext(ctx, "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", ps)
}

// LinkElevated writes reqs to a batch file at script, runs it elevated and
// checks that every link now resolves to its target.
func LinkElevated(ctx context.Context, reqs []LinkRequest, script string) error {
	if !utils.IsWindows() {
		return ErrElevationUnsupported
	}
	if err := os.WriteFile(script, []byte(MklinkScript(reqs)), 0644); err != nil {
		return fmt.Errorf("write link script: %w", err)
	}
	out, err := ElevatedCommand(ctx, script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("run %s elevated: %w: %s", script, err, strings.TrimSpace(string(out)))
	}
	return VerifyLinks(reqs)
}

// VerifyLinks reports every request whose link does not resolve to its
// target.
func VerifyLinks(reqs []LinkRequest) error {
	var missing []string
	for _, r := range reqs {
		if !sameFile(r.Link, r.Target) {
			missing = append(missing, r.Link)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("links were not created: %s", strings.Join(missing, ", "))
	}
	return nil
}
