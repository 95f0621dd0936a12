// Package config handles launcher configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.mcdev/mcdev.toml or OS-specific config directory)
// 3. Project config file (mcdev.toml or .mcdev.toml in the project root)
// 4. Environment variables (MCDEV_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.mcdev/mcdev.toml (preferred)
// - Windows: %APPDATA%\mcdev\mcdev.toml
// - macOS: ~/Library/Application Support/mcdev/mcdev.toml
// - Linux/BSD: $XDG_CONFIG_HOME/mcdev/mcdev.toml or ~/.config/mcdev/mcdev.toml
//
// Project-level config locations (overrides user config):
// - ./mcdev.toml (preferred)
// - ./.mcdev.toml
package config
