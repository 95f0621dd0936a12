// Package gamedir locates the launcher's data folders and manages the pack
// symlinks inside them.
package gamedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nibzard/mcdev/internal/utils"
)

// ErrNotFound is returned when a game folder does not exist.
var ErrNotFound = errors.New("game folder not found")

// ErrPrivilegeRequired is returned when Windows refuses to create a symlink
// without elevation or developer mode.
var ErrPrivilegeRequired = errors.New("creating symlinks requires elevated privileges")

// ExecutableName is the development launcher binary.
const ExecutableName = "Minecraft.Windows.exe"

// Layout resolves folders below a game data directory.
type Layout struct {
	Root string
}

// New returns a layout rooted at dataDir.
func New(dataDir string) Layout {
	return Layout{Root: dataDir}
}

// GamesDir is games/com.netease, the parent of both pack folders.
func (l Layout) GamesDir() (string, error) {
	return existingDir(filepath.Join(l.Root, "games", "com.netease"))
}

// BehaviorPacksDir holds behavior pack links.
func (l Layout) BehaviorPacksDir() (string, error) {
	return existingDir(filepath.Join(l.Root, "games", "com.netease", "behavior_packs"))
}

// ResourcePacksDir holds resource pack links.
func (l Layout) ResourcePacksDir() (string, error) {
	return existingDir(filepath.Join(l.Root, "games", "com.netease", "resource_packs"))
}

// WorldsDir holds saved worlds.
func (l Layout) WorldsDir() (string, error) {
	return existingDir(filepath.Join(l.Root, "minecraftWorlds"))
}

func existingDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory: %w", path, ErrNotFound)
	}
	return path, nil
}

// RemoveSymlinks deletes every symlink directly inside dir and returns how
// many were removed. Regular files and directories are left alone.
func RemoveSymlinks(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// LinkResult describes what Link did.
type LinkResult int

const (
	LinkCreated LinkResult = iota
	// LinkUnchanged means link already pointed at target.
	LinkUnchanged
	// LinkBlocked means a regular file or directory occupies link.
	LinkBlocked
)

// Link creates link pointing at target. It is a no-op when link already
// resolves to target. An existing non-symlink at link is reported as
// LinkBlocked without an error.
func Link(target, link string) (LinkResult, error) {
	if info, err := os.Lstat(link); err == nil {
		if info.Mode()&os.ModeSymlink == 0 {
			return LinkBlocked, nil
		}
		if sameFile(link, target) {
			return LinkUnchanged, nil
		}
		if err := os.Remove(link); err != nil {
			return LinkCreated, fmt.Errorf("replace stale link %s: %w", link, err)
		}
	}

	if err := os.Symlink(target, link); err != nil {
		if isPrivilegeError(err) {
			return LinkCreated, fmt.Errorf("link %s: %w", link, ErrPrivilegeRequired)
		}
		return LinkCreated, fmt.Errorf("link %s: %w", link, err)
	}
	return LinkCreated, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

func isPrivilegeError(err error) bool {
	return utils.IsWindows() && strings.Contains(strings.ToLower(err.Error()), "privilege")
}

// LinkRequest is a link that could not be created without elevation.
type LinkRequest struct {
	Target string
	Link   string
}

// MklinkScript renders a batch script that creates links from an elevated
// prompt.
func MklinkScript(reqs []LinkRequest) string {
	var b strings.Builder
	b.WriteString("@echo off\r\n")
	for _, r := range reqs {
		fmt.Fprintf(&b, "mklink /D \"%s\" \"%s\"\r\n", r.Link, r.Target)
	}
	return b.String()
}
