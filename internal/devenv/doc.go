// Package devenv reads the debug environment handed to the game by the
// launcher.
//
// Two variables carry JSON:
//   - MCS_HELPER_DEBUG_OPTIONS: an object of debug options (key bindings)
//   - MCS_HELPER_TARGET_MOD_DIRS: an array of mod root directories
//
// Either may hold the value directly or as a JSON string that itself
// contains JSON. Malformed or mistyped input degrades to an empty value and
// is never reported.
//
// MCDEV_DEBUG_IPC_PORT is read on every call to DebugIPCPort and, unlike the
// JSON variables, a malformed value is returned as an error.
package devenv
