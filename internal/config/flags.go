package config

import (
	"flag"
	"os"
	"strings"

	"github.com/nibzard/mcdev/internal/utils"
)

// flagToSource maps flag names to source field names.
var flagToSource = map[string]string{
	"game":           "game_executable",
	"game-data-dir":  "game_data_dir",
	"user":           "user_name",
	"game-output":    "game_output",
	"include":        "included_mod_dirs",
	"world":          "world.folder_name",
	"seed":           "world.seed",
	"game-mode":      "world.game_mode",
	"level-type":     "world.level_type",
	"cheats":         "world.cheats",
	"ipc-port":       "debug_ipc_port",
	"log-dir":        "log_dir",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines and parses CLI flags. If sources is non-nil, it
// tracks which values were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("mcdev", flag.ContinueOnError)
	}

	// Game
	fs.StringVar(&cfg.GameExecutable, "game", cfg.GameExecutable, "Path to Minecraft.Windows.exe")
	fs.StringVar(&cfg.GameDataDir, "game-data-dir", cfg.GameDataDir, "Game data directory (MinecraftPE_Netease)")
	fs.StringVar(&cfg.UserName, "user", cfg.UserName, "Player name")
	gameOutput := string(cfg.GameOutput)
	fs.StringVar(&gameOutput, "game-output", gameOutput, "Game output filter (normal, verbose)")
	include := strings.Join(cfg.IncludedModDirs, string(os.PathListSeparator))
	fs.StringVar(&include, "include", include, "Extra pack roots, separated by the OS path list separator")

	// World
	fs.StringVar(&cfg.World.FolderName, "world", cfg.World.FolderName, "World folder name")
	fs.Int64Var(&cfg.World.Seed, "seed", cfg.World.Seed, "World seed")
	gameMode := string(cfg.World.GameMode)
	fs.StringVar(&gameMode, "game-mode", gameMode, "Game mode (survival, creative)")
	levelType := string(cfg.World.LevelType)
	fs.StringVar(&levelType, "level-type", levelType, "Level type (default, flat)")
	fs.BoolVar(&cfg.World.Cheats, "cheats", cfg.World.Cheats, "Enable cheats")

	// Debug
	fs.IntVar(&cfg.DebugIPCPort, "ipc-port", cfg.DebugIPCPort, "Debug IPC port passed to the game (0 disables)")

	// Logging
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Session log directory")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.GameOutput = GameOutput(gameOutput)
	cfg.World.GameMode = GameMode(gameMode)
	cfg.World.LevelType = LevelType(levelType)

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "include" {
			cfg.IncludedModDirs = utils.SplitAndTrim(include, string(os.PathListSeparator))
		}
		if sources == nil {
			return
		}
		if fieldName, ok := flagToSource[f.Name]; ok {
			sources[fieldName] = SourceFlag
		}
	})

	return nil
}
