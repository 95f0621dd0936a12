package config

import (
	"fmt"
	"strings"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultUserName   = "DevOps"
	DefaultLogDir     = "~/.mcdev/logs"
	DefaultGameMode   = GameModeCreative
	DefaultLevelType  = LevelTypeDefault
	DefaultGameOutput = GameOutputNormal
)

// Config holds the full launcher configuration.
type Config struct {
	// Game
	GameExecutable string `toml:"game_executable"`
	GameDataDir    string `toml:"game_data_dir"` // Defaults to %APPDATA%/MinecraftPE_Netease
	UserName       string `toml:"user_name"`

	// Game output filter: normal shows Python output only, verbose shows everything
	GameOutput GameOutput `toml:"game_output"`

	// Extra pack roots linked alongside the project
	IncludedModDirs []string `toml:"included_mod_dirs"`

	World WorldConfig `toml:"world"`
	Keys  KeysConfig  `toml:"keys"`

	// Passed to the game as MCDEV_DEBUG_IPC_PORT when non-zero
	DebugIPCPort int `toml:"debug_ipc_port"`

	// Session logs
	LogDir string `toml:"log_dir"`

	// Tool logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// WorldConfig describes the development world.
type WorldConfig struct {
	FolderName    string    `toml:"folder_name"`
	Seed          int64     `toml:"seed"`
	GameMode      GameMode  `toml:"game_mode"`
	LevelType     LevelType `toml:"level_type"`
	Cheats        bool      `toml:"cheats"`
	KeepInventory bool      `toml:"keep_inventory"`
	DaylightCycle bool      `toml:"daylight_cycle"`
	WeatherCycle  bool      `toml:"weather_cycle"`
}

// KeysConfig holds in-game key codes for the reload actions. Zero leaves an
// action unbound.
type KeysConfig struct {
	Reload        int  `toml:"reload"`
	ReloadWorld   int  `toml:"reload_world"`
	ReloadAddon   int  `toml:"reload_addon"`
	ReloadShaders int  `toml:"reload_shaders"`
	Global        bool `toml:"global"`
}

// GameMode is the world's game type.
type GameMode string

const (
	GameModeSurvival GameMode = "survival"
	GameModeCreative GameMode = "creative"
)

// Code returns the level.dat GameType value.
func (m GameMode) Code() int {
	if m == GameModeSurvival {
		return 0
	}
	return 1
}

// LevelType is the world generator.
type LevelType string

const (
	LevelTypeDefault LevelType = "default"
	LevelTypeFlat    LevelType = "flat"
)

// Code returns the level.dat Generator value.
func (l LevelType) Code() int {
	if l == LevelTypeFlat {
		return 2
	}
	return 1
}

// GameOutput selects how much game output is shown.
type GameOutput string

const (
	GameOutputNormal  GameOutput = "normal"
	GameOutputVerbose GameOutput = "verbose"
)

// Validate reports invalid enum values.
func (c *Config) Validate() error {
	switch GameMode(strings.ToLower(string(c.World.GameMode))) {
	case GameModeSurvival, GameModeCreative:
	default:
		return fmt.Errorf("invalid game mode %q (want survival or creative)", c.World.GameMode)
	}
	switch LevelType(strings.ToLower(string(c.World.LevelType))) {
	case LevelTypeDefault, LevelTypeFlat:
	default:
		return fmt.Errorf("invalid level type %q (want default or flat)", c.World.LevelType)
	}
	switch GameOutput(strings.ToLower(string(c.GameOutput))) {
	case GameOutputNormal, GameOutputVerbose:
	default:
		return fmt.Errorf("invalid game output %q (want normal or verbose)", c.GameOutput)
	}
	if c.DebugIPCPort < 0 || c.DebugIPCPort > 65535 {
		return fmt.Errorf("debug ipc port %d out of range", c.DebugIPCPort)
	}
	return nil
}
