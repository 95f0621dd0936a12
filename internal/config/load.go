package config

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.mcdev/mcdev.toml or OS-specific config dir)
// 3. Project config file (mcdev.toml or .mcdev.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := load(fs, args, nil)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]ConfigSource)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}
	return load(fs, args, sources)
}

func load(fs *flag.FlagSet, args []string, sources map[string]ConfigSource) (*ConfigWithSources, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Try to load from user config file
	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	// 3. Try to load from project config file (overrides user config)
	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	// 4. Override from environment
	loadFromEnv(cfg, sources)

	// 5. Parse CLI flags (they override everything)
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 6. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"game_executable",
		"game_data_dir",
		"user_name",
		"game_output",
		"included_mod_dirs",
		"world.folder_name",
		"world.seed",
		"world.game_mode",
		"world.level_type",
		"world.cheats",
		"world.keep_inventory",
		"world.daylight_cycle",
		"world.weather_cycle",
		"keys.reload",
		"keys.reload_world",
		"keys.reload_addon",
		"keys.reload_shaders",
		"keys.global",
		"debug_ipc_port",
		"log_dir",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
	}
}

// loadConfigFile decodes a TOML file over cfg. Keys present in the file are
// recorded in sources when sources is non-nil.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if sources == nil {
		return nil
	}
	for _, key := range meta.Keys() {
		name := key.String()
		if _, tracked := sources[name]; tracked {
			sources[name] = source
		}
	}
	return nil
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.GameExecutable = expandPath(cfg.GameExecutable)
	cfg.GameDataDir = expandPath(cfg.GameDataDir)
	for i, dir := range cfg.IncludedModDirs {
		cfg.IncludedModDirs[i] = expandPath(dir)
	}

	cfg.World.GameMode = GameMode(strings.ToLower(string(cfg.World.GameMode)))
	cfg.World.LevelType = LevelType(strings.ToLower(string(cfg.World.LevelType)))
	cfg.GameOutput = GameOutput(strings.ToLower(string(cfg.GameOutput)))

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}
	for i, dir := range cfg.IncludedModDirs {
		if !filepath.IsAbs(dir) {
			cfg.IncludedModDirs[i] = filepath.Join(cfg.ProjectRoot, dir)
		}
	}
	deriveWorld(cfg)

	return cfg.Validate()
}

// deriveWorld fills an unset world folder and seed from the project path,
// so every run of the same project opens the same world.
func deriveWorld(cfg *Config) {
	root := cfg.ProjectRoot
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mcdev:"+filepath.ToSlash(root)))
	if cfg.World.FolderName == "" {
		cfg.World.FolderName = id.String()
	}
	if cfg.World.Seed == 0 {
		cfg.World.Seed = int64(binary.BigEndian.Uint64(id[:8]))
	}
}
