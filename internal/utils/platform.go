// Package utils provides shared utility functions used across multiple packages.
package utils

import (
	"path/filepath"
	"runtime"
	"strings"
)

// IsWindows reports whether the tool runs on Windows.
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// SlashPath returns an absolute form of p with forward slashes, the form
// the game's script runtime expects for directory paths.
func SlashPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ReplaceAll(p, `\`, "/")
}

// HasExtension reports whether path ends in ext, ignoring case. ext may be
// given with or without the leading dot.
func HasExtension(path, ext string) bool {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.EqualFold(filepath.Ext(path), ext)
}
