package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/nibzard/mcdev/internal/devenv"
)

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{"mcdev.toml", ".mcdev.toml"}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.mcdev/mcdev.toml first, then falls back to OS-specific
// config directories if ~/.mcdev doesn't exist.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, ".mcdev", "mcdev.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "mcdev", "mcdev.toml")
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// DefaultGameDataDir returns %APPDATA%/MinecraftPE_Netease, or the
// ~/AppData/Roaming fallback on Windows when APPDATA is unset.
func DefaultGameDataDir() string {
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "MinecraftPE_Netease")
	}
	if runtime.GOOS == "windows" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "AppData", "Roaming", "MinecraftPE_Netease")
		}
	}
	return ""
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.GameDataDir = DefaultGameDataDir()
	cfg.UserName = DefaultUserName
	cfg.GameOutput = DefaultGameOutput
	cfg.LogDir = DefaultLogDir

	cfg.World = WorldConfig{
		GameMode:      DefaultGameMode,
		LevelType:     DefaultLevelType,
		Cheats:        true,
		KeepInventory: false,
		DaylightCycle: true,
		WeatherCycle:  true,
	}

	keys := devenv.DefaultKeyBindings()
	cfg.Keys = KeysConfig{
		Reload:        keys.ReloadMod,
		ReloadWorld:   keys.ReloadWorld,
		ReloadAddon:   keys.ReloadAddon,
		ReloadShaders: keys.ReloadShaders,
		Global:        keys.Global,
	}

	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
}

// KeyBindings converts the key table to the in-game binding set.
func (c *Config) KeyBindings() devenv.KeyBindings {
	return devenv.KeyBindings{
		ReloadMod:     c.Keys.Reload,
		ReloadWorld:   c.Keys.ReloadWorld,
		ReloadAddon:   c.Keys.ReloadAddon,
		ReloadShaders: c.Keys.ReloadShaders,
		Global:        c.Keys.Global,
	}
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	for _, source := range cws.Sources {
		if source == SourceProjFile {
			if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
				return projectConfigFile
			}
		}
	}
	for _, source := range cws.Sources {
		if source == SourceUserFile {
			if userConfigFile := findUserConfigFile(); userConfigFile != "" {
				return userConfigFile
			}
		}
	}
	return ""
}
