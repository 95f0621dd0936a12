package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# mcdev configuration file
# Values can be overridden by MCDEV_* environment variables or CLI flags

# Path to the developer launcher (Minecraft.Windows.exe)
game_executable = "D:/MCStudioDownload/game/MinecraftPE_Netease/1.0.0/Minecraft.Windows.exe"

# Game data directory (defaults to %APPDATA%/MinecraftPE_Netease)
# game_data_dir = "~/AppData/Roaming/MinecraftPE_Netease"

# Player name written to the launch config
user_name = "DevOps"

# Game output filter: normal (Python output only) or verbose (everything)
game_output = "normal"

# Extra pack roots linked next to the current project
included_mod_dirs = []

# Debug IPC port passed to the game as MCDEV_DEBUG_IPC_PORT (0 disables)
debug_ipc_port = 0

# Session log directory (supports ~ expansion and %VAR% on Windows)
log_dir = "~/.mcdev/logs"

# Tool logging
log_level = "info"
log_format = "text"

[world]
# Folder under minecraftWorlds (a UUID derived from the project path when unset)
# folder_name = "dev-world"
# 0 derives a seed from the project path
seed = 0
game_mode = "creative"   # survival or creative
level_type = "default"   # default or flat
cheats = true
keep_inventory = false
daylight_cycle = true
weather_cycle = true

# In-game key codes (KeyBoardType values); 0 leaves an action unbound
[keys]
reload = 82          # R
reload_world = 96    # numpad 0
reload_addon = 0
reload_shaders = 0
global = false       # true fires on every screen, not only the HUD
`
}
