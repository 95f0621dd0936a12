package devenv

import (
	"math"
	"strconv"
	"strings"
)

// Debug option keys understood by the in-game key handler.
const (
	OptReloadKey        = "reload_key"
	OptReloadWorldKey   = "reload_world_key"
	OptReloadAddonKey   = "reload_addon_key"
	OptReloadShadersKey = "reload_shaders_key"
	OptReloadKeyGlobal  = "reload_key_global"
)

// Default key codes (KeyBoardType values).
const (
	KeyR       = 82
	KeyNumpad0 = 96
)

// Unbound marks an action without a key.
const Unbound = 0

// KeyBindings is the typed view of the key binding debug options.
type KeyBindings struct {
	ReloadMod     int
	ReloadWorld   int
	ReloadAddon   int
	ReloadShaders int
	// Global lets bindings fire on every screen instead of only the HUD.
	Global bool
}

// DefaultKeyBindings returns the bindings the launcher writes by default.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		ReloadMod:   KeyR,
		ReloadWorld: KeyNumpad0,
	}
}

// Options renders the bindings as debug options, the inverse of Bindings.
// Unbound keys are written as empty strings.
func (kb KeyBindings) Options() map[string]any {
	key := func(code int) any {
		if code == Unbound {
			return ""
		}
		return code
	}
	return map[string]any{
		OptReloadKey:        key(kb.ReloadMod),
		OptReloadWorldKey:   key(kb.ReloadWorld),
		OptReloadAddonKey:   key(kb.ReloadAddon),
		OptReloadShadersKey: key(kb.ReloadShaders),
		OptReloadKeyGlobal:  kb.Global,
	}
}

// Bindings reads key bindings from the debug config. Missing entries fall
// back to DefaultKeyBindings; present but empty or non-numeric entries are
// unbound.
func (e *Env) Bindings() KeyBindings {
	kb := DefaultKeyBindings()
	cfg := e.DebugConfig()

	if v, ok := cfg[OptReloadKey]; ok {
		kb.ReloadMod = keyCode(v)
	}
	if v, ok := cfg[OptReloadWorldKey]; ok {
		kb.ReloadWorld = keyCode(v)
	}
	if v, ok := cfg[OptReloadAddonKey]; ok {
		kb.ReloadAddon = keyCode(v)
	}
	if v, ok := cfg[OptReloadShadersKey]; ok {
		kb.ReloadShaders = keyCode(v)
	}
	if v, ok := cfg[OptReloadKeyGlobal].(bool); ok {
		kb.Global = v
	}
	return kb
}

func keyCode(v any) int {
	switch code := v.(type) {
	case float64:
		if code <= 0 || code != math.Trunc(code) || code > math.MaxInt32 {
			return Unbound
		}
		return int(code)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(code))
		if err != nil || n <= 0 {
			return Unbound
		}
		return n
	}
	return Unbound
}
