package gamedir

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nibzard/mcdev/internal/utils"
)

// studioGameDir is where the studio installs launcher versions, relative to a
// drive root.
var studioGameDir = filepath.Join("MCStudioDownload", "game", "MinecraftPE_Netease")

// DriveRoots returns the mounted drive roots. On Windows these are the
// lettered drives that exist; elsewhere only "/".
func DriveRoots() []string {
	if !utils.IsWindows() {
		return []string{"/"}
	}
	var roots []string
	for c := 'A'; c <= 'Z'; c++ {
		root := string(c) + `:\`
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			roots = append(roots, root)
		}
	}
	return roots
}

// FindExecutables looks for installed launcher versions under each root.
// With no roots, DriveRoots is used.
func FindExecutables(roots ...string) []string {
	if len(roots) == 0 {
		roots = DriveRoots()
	}
	var found []string
	for _, root := range roots {
		base := filepath.Join(root, studioGameDir)
		versions, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		for _, v := range versions {
			if !v.IsDir() {
				continue
			}
			exe := filepath.Join(base, v.Name(), ExecutableName)
			if info, err := os.Stat(exe); err == nil && info.Mode().IsRegular() {
				found = append(found, exe)
			}
		}
	}
	sort.Strings(found)
	return found
}
