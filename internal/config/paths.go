package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// expandPath expands $VAR and, on Windows, %VAR% references, then a leading
// ~ for the home directory. Launcher paths are often copied from Windows
// shells, so both ~/ and ~\ are accepted there.
func expandPath(p string) string {
	if p == "" {
		return p
	}

	expanded := os.ExpandEnv(p)
	if runtime.GOOS == "windows" {
		expanded = expandPercentVars(expanded)
	}

	rest, ok := strings.CutPrefix(expanded, "~")
	if !ok {
		return expanded
	}
	isSep := rest != "" && (rest[0] == '/' || (runtime.GOOS == "windows" && rest[0] == '\\'))
	if rest != "" && !isSep {
		return expanded
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return expanded
	}
	if rest == "" {
		return home
	}
	return filepath.Join(home, rest[1:])
}

// expandPercentVars replaces %NAME% with the variable's value. Unknown
// names are left as written and %% stays a literal percent.
func expandPercentVars(p string) string {
	var b strings.Builder
	for {
		start := strings.IndexByte(p, '%')
		if start < 0 {
			b.WriteString(p)
			return b.String()
		}
		end := strings.IndexByte(p[start+1:], '%')
		if end < 0 {
			b.WriteString(p)
			return b.String()
		}
		b.WriteString(p[:start])
		key := p[start+1 : start+1+end]
		switch val, ok := os.LookupEnv(key); {
		case key == "":
			b.WriteByte('%')
		case ok:
			b.WriteString(val)
		default:
			b.WriteString("%" + key + "%")
		}
		p = p[start+end+2:]
	}
}
