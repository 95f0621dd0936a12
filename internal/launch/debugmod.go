package launch

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DebugModUUID names the folder the bundled debug-env mod is extracted to.
const DebugModUUID = "183b0dc7-ae4a-48fb-800d-9d68f7162e7e"

//go:embed all:debugmod
var debugModFS embed.FS

// ExtractDebugMod replaces dir/<DebugModUUID> with the bundled mod and
// returns its path.
func ExtractDebugMod(dir string) (string, error) {
	dest := filepath.Join(dir, DebugModUUID)
	if err := os.RemoveAll(dest); err != nil {
		return "", fmt.Errorf("remove old debug mod: %w", err)
	}

	src, err := fs.Sub(debugModFS, "debugmod")
	if err != nil {
		return "", err
	}
	err = fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := fs.ReadFile(src, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	if err != nil {
		return "", fmt.Errorf("extract debug mod: %w", err)
	}
	return dest, nil
}
