package gamelog

import (
	"io/fs"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// File "mod.server.main", line 12
var tracebackRe = regexp.MustCompile(`File "([a-zA-Z0-9_.]+)", line (\d+)`)

// Tracebacks maps Python traceback frames to source files under Roots.
type Tracebacks struct {
	Roots []string

	mu    sync.Mutex
	cache map[string]string
}

// Resolve finds the source file named by a traceback frame in text. Dotted
// module names are matched against path suffixes, e.g. mod.server.main
// matches any .../mod/server/main.py. When no suffix matches, the first
// file with the same base name is used.
func (t *Tracebacks) Resolve(text string) (path string, line int, ok bool) {
	m := tracebackRe.FindStringSubmatch(text)
	if m == nil {
		return "", 0, false
	}
	line, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	rel := strings.ReplaceAll(m[1], ".", "/") + ".py"

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cache == nil {
		t.cache = make(map[string]string)
	}
	path, seen := t.cache[rel]
	if !seen {
		path = t.find(rel)
		t.cache[rel] = path
	}
	return path, line, path != ""
}

func (t *Tracebacks) find(rel string) string {
	base := filepath.Base(rel)
	var fallback string
	for _, root := range t.Roots {
		var match string
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || d.Name() != base {
				return nil
			}
			if strings.HasSuffix(filepath.ToSlash(p), "/"+rel) {
				match = p
				return fs.SkipAll
			}
			if fallback == "" {
				fallback = p
			}
			return nil
		})
		if match != "" {
			return match
		}
	}
	return fallback
}
