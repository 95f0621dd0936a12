// Package logging provides tests for session logs and tail output.
package logging

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// TestNewSessionLog tests creating a new session log.
func TestNewSessionLog(t *testing.T) {
	t.Run("successful creation with valid paths", func(t *testing.T) {
		baseDir := t.TempDir()
		project := t.TempDir()

		sl, err := NewSessionLog(baseDir, project)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sl.Close()

		if sl.RunID == "" {
			t.Error("expected RunID to be set")
		}
		if !strings.HasSuffix(sl.LogPath, sl.RunID+".log") {
			t.Errorf("unexpected LogPath %q", sl.LogPath)
		}
		if _, err := os.Stat(sl.LogPath); err != nil {
			t.Errorf("log file not created: %v", err)
		}
	})

	t.Run("empty base dir returns error", func(t *testing.T) {
		_, err := NewSessionLog("", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "empty") {
			t.Errorf("expected empty dir error, got %v", err)
		}
	})

	t.Run("relative base dir resolves against project", func(t *testing.T) {
		project := t.TempDir()
		sl, err := NewSessionLog(filepath.Join(".mcdev", "logs"), project)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer sl.Close()

		if !strings.HasPrefix(sl.Dir, filepath.Join(project, ".mcdev", "logs")) {
			t.Errorf("Dir %q should be under the project", sl.Dir)
		}
	})

	t.Run("log directory includes project slug", func(t *testing.T) {
		project := filepath.Join(t.TempDir(), "my mod")
		if err := os.Mkdir(project, 0755); err != nil {
			t.Fatal(err)
		}
		sl, err := NewSessionLog(t.TempDir(), project)
		if err != nil {
			t.Fatal(err)
		}
		defer sl.Close()

		if !strings.HasPrefix(filepath.Base(sl.Dir), "my_mod-") {
			t.Errorf("expected slugged dir name, got %q", filepath.Base(sl.Dir))
		}
	})
}

func TestSessionLogWriteAndClose(t *testing.T) {
	sl, err := NewSessionLog(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = sl.Write([]byte("line\n"))
		}()
	}
	wg.Wait()

	if err := sl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sl.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, err := sl.Write([]byte("late")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("write after close: got %v", err)
	}

	data, err := os.ReadFile(sl.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "line\n") != 4 {
		t.Errorf("got %q", data)
	}

	var nilLog *SessionLog
	if err := nilLog.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestSessionSummary(t *testing.T) {
	sl, err := NewSessionLog(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer sl.Close()

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := sl.WriteSummary(Summary{Executable: "game.exe", Packs: 2, ExitCode: 1, StartedAt: start}); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	got, err := ReadSummary(sl.SummaryPath())
	if err != nil {
		t.Fatalf("ReadSummary: %v", err)
	}
	if got.RunID != sl.RunID || got.ExitCode != 1 || got.Packs != 2 || !got.StartedAt.Equal(start) {
		t.Errorf("got %+v", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"my-project", "my-project"},
		{"My Project!", "My_Project"},
		{"a  b", "a_b"},
		{"", "project"},
		{"!!!", "project"},
		{".", "project"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHashPath(t *testing.T) {
	a, b := hashPath("/a"), hashPath("/b")
	if len(a) != 8 || a == b || a != hashPath("/a") {
		t.Errorf("hashPath: got %q and %q", a, b)
	}
}

func TestFindLogDir(t *testing.T) {
	project := t.TempDir()
	base := filepath.Join(t.TempDir(), "logs")
	dir, err := FindLogDir(base, project)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(base, projectSlug(project))
	if dir != want {
		t.Errorf("got %q, want %q", dir, want)
	}
	if _, err := FindLogDir("", project); err == nil {
		t.Error("expected error for empty base dir")
	}
}

func touch(t *testing.T, path string, mod time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(filepath.Base(path)+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
}

func TestFindLogRuns(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-time.Hour)
	recent := time.Now()
	touch(t, filepath.Join(dir, "20240101-000000-1.log"), old)
	touch(t, filepath.Join(dir, "20240101-000000-1.json"), old)
	touch(t, filepath.Join(dir, "20240102-000000-2.log"), recent)
	touch(t, filepath.Join(dir, "notes.txt"), recent)
	if err := os.Mkdir(filepath.Join(dir, "sub.log"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err := FindLogRuns(dir)
	if err != nil {
		t.Fatalf("FindLogRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != "20240102-000000-2" || runs[0].SummaryPath != "" {
		t.Errorf("first run: got %+v", runs[0])
	}
	if runs[1].LogPath == "" || runs[1].SummaryPath == "" {
		t.Errorf("second run should have both files: %+v", runs[1])
	}

	latest, err := FindLatestLog(dir)
	if err != nil || filepath.Base(latest) != "20240102-000000-2.log" {
		t.Errorf("FindLatestLog: got %q, %v", latest, err)
	}
}

func TestFindLatestLogMissingDir(t *testing.T) {
	latest, err := FindLatestLog(filepath.Join(t.TempDir(), "missing"))
	if err != nil || latest != "" {
		t.Errorf("got %q, %v; want empty result", latest, err)
	}
}

func TestTailLog(t *testing.T) {
	ctx := context.Background()

	t.Run("tails entire file when n=0", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "test.log")
		content := "line1\nline2\nline3\n"
		if err := os.WriteFile(logFile, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, logFile, 0, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if buf.String() != content {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("tails last n lines", func(t *testing.T) {
		tests := []struct {
			content string
			n       int
			want    string
		}{
			{"line1\nline2\nline3\nline4\nline5\n", 2, "line4\nline5\n"},
			{"line1\nline2\nline3", 2, "line2\nline3"},
			{"line1\nline2\n", 10, "line1\nline2\n"},
			{strings.Repeat("x", 5000) + "\nlast\n", 1, "last\n"},
		}
		for _, tt := range tests {
			logFile := filepath.Join(t.TempDir(), "test.log")
			if err := os.WriteFile(logFile, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := TailLog(ctx, &buf, logFile, tt.n, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("n=%d: got %q, want %q", tt.n, buf.String(), tt.want)
			}
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := TailLog(ctx, &buf, filepath.Join(t.TempDir(), "missing.log"), 0, false); err == nil {
			t.Fatal("expected error for non-existent file, got nil")
		}
	})

	t.Run("follow mode stops with context", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "test.log")
		if err := os.WriteFile(logFile, []byte("initial\n"), 0644); err != nil {
			t.Fatal(err)
		}

		var mu sync.Mutex
		var buf bytes.Buffer
		w := writerFunc(func(p []byte) (int, error) {
			mu.Lock()
			defer mu.Unlock()
			return buf.Write(p)
		})

		followCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- TailLog(followCtx, w, logFile, 0, true)
		}()

		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("appended line\n"); err != nil {
			t.Fatal(err)
		}
		f.Close()

		deadline := time.Now().Add(5 * time.Second)
		for {
			mu.Lock()
			got := buf.String()
			mu.Unlock()
			if strings.Contains(got, "appended") {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("appended content never arrived, got %q", got)
			}
			time.Sleep(20 * time.Millisecond)
		}

		cancel()
		if err := <-done; err != nil {
			t.Errorf("follow returned %v", err)
		}
	})
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestParseLevelAndFormatter(t *testing.T) {
	if ParseLevel(" DEBUG ").String() != "debug" {
		t.Errorf("ParseLevel debug: got %v", ParseLevel("DEBUG"))
	}
	if ParseLevel("nonsense").String() != "info" {
		t.Errorf("ParseLevel default: got %v", ParseLevel("nonsense"))
	}
	if ParseLevel("warning").String() != "warn" {
		t.Errorf("ParseLevel warning: got %v", ParseLevel("warning"))
	}

	var buf bytes.Buffer
	logger := NewConsoleLoggerFromConfig(&buf, "debug", "json", false, false)
	logger.Debug("mod update failed", "dir", "/mods/a")
	if !strings.Contains(buf.String(), `"msg":"mod update failed"`) || !strings.Contains(buf.String(), `"dir":"/mods/a"`) {
		t.Errorf("json output: got %q", buf.String())
	}

	buf.Reset()
	logger = NewConsoleLoggerFromConfig(&buf, "error", "logfmt", false, false)
	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at error level, got %q", buf.String())
	}
}
