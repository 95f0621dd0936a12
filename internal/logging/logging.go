// Package logging provides the diagnostic logger and per-session game log
// files.
package logging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	sessionLogExt     = ".log"
	sessionSummaryExt = ".json"
)

// SessionLog captures the raw output of one game session.
type SessionLog struct {
	Dir     string
	RunID   string
	LogPath string

	mu   sync.Mutex
	file *os.File
}

// NewSessionLog creates <baseDir>/<project-slug>/<runID>.log. A relative
// baseDir is resolved against projectRoot.
func NewSessionLog(baseDir, projectRoot string) (*SessionLog, error) {
	logDir, err := FindLogDir(baseDir, projectRoot)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := runID()
	logPath := filepath.Join(logDir, id+sessionLogExt)
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &SessionLog{
		Dir:     logDir,
		RunID:   id,
		LogPath: logPath,
		file:    file,
	}, nil
}

// Write appends raw output. It is safe for concurrent use so stdout and
// stderr can share one log.
func (s *SessionLog) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return 0, os.ErrClosed
	}
	return s.file.Write(p)
}

// Close closes the log file.
func (s *SessionLog) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// Summary is stored next to the session log when the game exits.
type Summary struct {
	RunID      string    `json:"run_id"`
	Executable string    `json:"executable"`
	WorldDir   string    `json:"world_dir"`
	Packs      int       `json:"packs"`
	ExitCode   int       `json:"exit_code"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// SummaryPath returns the path of the session summary.
func (s *SessionLog) SummaryPath() string {
	if s == nil {
		return ""
	}
	return filepath.Join(s.Dir, s.RunID+sessionSummaryExt)
}

// WriteSummary stores sum as JSON next to the log.
func (s *SessionLog) WriteSummary(sum Summary) error {
	sum.RunID = s.RunID
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(s.SummaryPath(), data, 0644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ReadSummary loads a summary written by WriteSummary.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("decode summary %s: %w", path, err)
	}
	return &sum, nil
}

func resolveBaseDir(baseDir, projectRoot string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(projectRoot, baseDir))
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

func slugify(input string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, c := range []byte(input) {
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" || slug == "." {
		return "project"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405"), os.Getpid())
}

// FindLogDir returns the session log directory for a project.
func FindLogDir(baseDir, projectRoot string) (string, error) {
	if baseDir == "" {
		return "", errors.New("log base dir is empty")
	}
	if projectRoot == "" {
		projectRoot = "."
	}
	if abs, err := filepath.Abs(projectRoot); err == nil {
		projectRoot = abs
	}
	return filepath.Join(resolveBaseDir(baseDir, projectRoot), projectSlug(projectRoot)), nil
}

// FindLatestLog returns the most recently modified session log in logDir,
// or "" when there is none.
func FindLatestLog(logDir string) (string, error) {
	runs, err := FindLogRuns(logDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	for _, run := range runs {
		if run.LogPath != "" {
			return run.LogPath, nil
		}
	}
	return "", nil
}

// LogRun is one session's files.
type LogRun struct {
	RunID       string
	ModTime     time.Time
	LogPath     string
	SummaryPath string
}

// FindLogRuns lists sessions in logDir, newest first.
func FindLogRuns(logDir string) ([]LogRun, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	runMap := make(map[string]*LogRun)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ext := extractRunID(entry.Name())
		if id == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		run, ok := runMap[id]
		if !ok {
			run = &LogRun{RunID: id, ModTime: info.ModTime()}
			runMap[id] = run
		}
		if info.ModTime().After(run.ModTime) {
			run.ModTime = info.ModTime()
		}

		fullPath := filepath.Join(logDir, entry.Name())
		switch ext {
		case sessionLogExt:
			run.LogPath = fullPath
		case sessionSummaryExt:
			run.SummaryPath = fullPath
		}
	}

	runs := make([]LogRun, 0, len(runMap))
	for _, run := range runMap {
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].ModTime.Equal(runs[j].ModTime) {
			return runs[i].RunID > runs[j].RunID
		}
		return runs[i].ModTime.After(runs[j].ModTime)
	})
	return runs, nil
}

// extractRunID splits a session file name into run ID and extension.
func extractRunID(filename string) (string, string) {
	for _, ext := range []string{sessionLogExt, sessionSummaryExt} {
		if base, ok := strings.CutSuffix(filename, ext); ok && base != "" {
			return base, ext
		}
	}
	return "", ""
}

// TailLog copies the last n lines of path to w, or the whole file when n
// is not positive. With follow set it keeps copying appended data until
// ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}
	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}

// tailSeek positions file at the start of the n-th line from the end.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// A trailing newline ends the last line rather than starting a new one.
	end := size
	if end > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, end-1); err != nil {
			return err
		}
		if last[0] == '\n' {
			end--
		}
	}

	buf := make([]byte, chunk)
	found := 0
	for pos := end; pos > 0; {
		readSize := int64(chunk)
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		if _, err := file.ReadAt(buf[:readSize], pos); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			found++
			if found == n {
				_, err := file.Seek(pos+i+1, io.SeekStart)
				return err
			}
		}
	}
	_, err = file.Seek(0, io.SeekStart)
	return err
}
