package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nibzard/mcdev/internal/utils"
)

// loadFromEnv overrides config from MCDEV_* environment variables. If
// sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	set := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	setInt := func(key, field string, target *int) {
		if v := os.Getenv(key); v != "" {
			var i int
			if _, err := fmt.Sscanf(v, "%d", &i); err == nil {
				*target = i
				set(field)
			}
		}
	}
	setBool := func(key, field string, target *bool) {
		if v := os.Getenv(key); v != "" {
			*target = boolFromString(v)
			set(field)
		}
	}

	if v := os.Getenv("MCDEV_GAME_EXE"); v != "" {
		cfg.GameExecutable = v
		set("game_executable")
	}
	if v := os.Getenv("MCDEV_GAME_DATA_DIR"); v != "" {
		cfg.GameDataDir = v
		set("game_data_dir")
	}
	if v := os.Getenv("MCDEV_USER_NAME"); v != "" {
		cfg.UserName = v
		set("user_name")
	}
	if v := os.Getenv("MCDEV_GAME_OUTPUT"); v != "" {
		cfg.GameOutput = GameOutput(v)
		set("game_output")
	}
	if v := os.Getenv("MCDEV_INCLUDED_MOD_DIRS"); v != "" {
		cfg.IncludedModDirs = utils.SplitAndTrim(v, string(os.PathListSeparator))
		set("included_mod_dirs")
	}
	if v := os.Getenv("MCDEV_WORLD"); v != "" {
		cfg.World.FolderName = v
		set("world.folder_name")
	}
	if v := os.Getenv("MCDEV_WORLD_SEED"); v != "" {
		var seed int64
		if _, err := fmt.Sscanf(v, "%d", &seed); err == nil {
			cfg.World.Seed = seed
			set("world.seed")
		}
	}
	if v := os.Getenv("MCDEV_GAME_MODE"); v != "" {
		cfg.World.GameMode = GameMode(v)
		set("world.game_mode")
	}
	if v := os.Getenv("MCDEV_LEVEL_TYPE"); v != "" {
		cfg.World.LevelType = LevelType(v)
		set("world.level_type")
	}
	setBool("MCDEV_CHEATS", "world.cheats", &cfg.World.Cheats)
	setInt("MCDEV_RELOAD_KEY", "keys.reload", &cfg.Keys.Reload)
	setInt("MCDEV_RELOAD_WORLD_KEY", "keys.reload_world", &cfg.Keys.ReloadWorld)
	setInt("MCDEV_RELOAD_ADDON_KEY", "keys.reload_addon", &cfg.Keys.ReloadAddon)
	setInt("MCDEV_RELOAD_SHADERS_KEY", "keys.reload_shaders", &cfg.Keys.ReloadShaders)
	setBool("MCDEV_RELOAD_KEY_GLOBAL", "keys.global", &cfg.Keys.Global)
	setInt("MCDEV_IPC_PORT", "debug_ipc_port", &cfg.DebugIPCPort)

	if v := os.Getenv("MCDEV_LOG_DIR"); v != "" {
		cfg.LogDir = v
		set("log_dir")
	}

	// Logging configuration
	if v := os.Getenv("MCDEV_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv("MCDEV_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	setBool("MCDEV_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("MCDEV_LOG_CALLER", "log_caller", &cfg.LogCaller)
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
