package gamedir

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/mcdev/internal/utils"
)

func TestElevatedCommand(t *testing.T) {
	cmd := ElevatedCommand(context.Background(), `C:\Temp\it's links.bat`)
	if cmd.Args[0] != "powershell.exe" {
		t.Errorf("command: got %q", cmd.Args[0])
	}
	ps := cmd.Args[len(cmd.Args)-1]
	for _, want := range []string{"-Verb RunAs", "-Wait", `'"C:\Temp\it''s links.bat"'`} {
		if !strings.Contains(ps, want) {
			t.Errorf("script %q missing %q", ps, want)
		}
	}
}

func TestLinkElevatedOffWindows(t *testing.T) {
	if utils.IsWindows() {
		t.Skip("elevation prompts on Windows")
	}
	script := filepath.Join(t.TempDir(), "links.bat")
	err := LinkElevated(context.Background(), []LinkRequest{{Target: "/a", Link: "/b"}}, script)
	if !errors.Is(err, ErrElevationUnsupported) {
		t.Errorf("got %v, want ErrElevationUnsupported", err)
	}
	if _, err := os.Stat(script); !os.IsNotExist(err) {
		t.Errorf("script should not be written, stat err = %v", err)
	}
}

func TestVerifyLinks(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()
	good := filepath.Join(dir, "good")
	symlinkOrSkip(t, target, good)
	missing := filepath.Join(dir, "missing")

	if err := VerifyLinks([]LinkRequest{{Target: target, Link: good}}); err != nil {
		t.Errorf("existing link: %v", err)
	}
	err := VerifyLinks([]LinkRequest{
		{Target: target, Link: good},
		{Target: target, Link: missing},
	})
	if err == nil || !strings.Contains(err.Error(), missing) || strings.Contains(err.Error(), good) {
		t.Errorf("got %v, want only %s reported", err, missing)
	}
}
