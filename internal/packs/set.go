package packs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// scanDepth is how far below a root pack directories are searched.
const scanDepth = 2

// Set groups packs by type, preserving discovery order.
type Set struct {
	Behavior []Pack
	Resource []Pack
	seen     map[string]string
}

// Add inserts p unless a pack with the same UUID is already present.
func (s *Set) Add(p Pack) error {
	if s.seen == nil {
		s.seen = make(map[string]string)
	}
	key := strings.ToLower(p.UUID)
	if prev, ok := s.seen[key]; ok {
		return fmt.Errorf("duplicate pack uuid %s in %s (already loaded from %s)", p.UUID, p.Path, prev)
	}
	s.seen[key] = p.Path

	switch p.Type {
	case TypeBehavior:
		s.Behavior = append(s.Behavior, p)
	case TypeResource:
		s.Resource = append(s.Resource, p)
	}
	return nil
}

// Len returns the number of packs.
func (s *Set) Len() int {
	return len(s.Behavior) + len(s.Resource)
}

// All returns behavior packs followed by resource packs.
func (s *Set) All() []Pack {
	all := make([]Pack, 0, s.Len())
	all = append(all, s.Behavior...)
	return append(all, s.Resource...)
}

// AddRoot scans root and its subdirectories, two levels deep, for
// manifest.json files. Manifests that fail to parse are returned as
// warnings; err is only set when root itself cannot be walked.
func (s *Set) AddRoot(root string) (warnings []error, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			warnings = append(warnings, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if depth(root, path) > scanDepth {
			return filepath.SkipDir
		}

		manifestPath := filepath.Join(path, ManifestFile)
		if _, statErr := os.Stat(manifestPath); statErr != nil {
			return nil
		}
		pack, parseErr := ParseManifest(manifestPath)
		if parseErr != nil {
			warnings = append(warnings, parseErr)
			return nil
		}
		if addErr := s.Add(*pack); addErr != nil {
			warnings = append(warnings, addErr)
		}
		return nil
	})
	if walkErr != nil {
		return warnings, fmt.Errorf("scan %s: %w", root, walkErr)
	}
	return warnings, nil
}

// Scan collects the packs under every root. A root that is missing is an
// error; bad manifests inside a root are warnings.
func Scan(roots ...string) (*Set, []error, error) {
	set := &Set{}
	var warnings []error
	var errs []error
	for _, root := range roots {
		w, err := set.AddRoot(root)
		warnings = append(warnings, w...)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return set, warnings, errors.Join(errs...)
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// WorldPackEntry is one entry of world_behavior_packs.json or
// world_resource_packs.json.
type WorldPackEntry struct {
	PackID  string `json:"pack_id"`
	Version []int  `json:"version"`
}

// WorldManifest renders packs as a world pack list.
func WorldManifest(packs []Pack) ([]byte, error) {
	entries := make([]WorldPackEntry, 0, len(packs))
	for _, p := range packs {
		version := p.Version
		if version == nil {
			version = []int{}
		}
		entries = append(entries, WorldPackEntry{PackID: p.UUID, Version: version})
	}
	return json.Marshal(entries)
}
