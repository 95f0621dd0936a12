package devactions

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mcdev/internal/devenv"
)

// Action identifies one of the reload actions.
type Action string

const (
	ActionReloadMod     Action = "reload_mod"
	ActionReloadAddon   Action = "reload_addon"
	ActionReloadWorld   Action = "reload_world"
	ActionReloadShaders Action = "reload_shaders"
)

// ErrUnknownAction is returned for action names the dispatcher does not know.
var ErrUnknownAction = errors.New("unknown action")

// Host bundles the host capabilities the dispatcher needs.
type Host struct {
	Updater  ModUpdater
	Notifier Notifier
	Addons   AddonRefresher
	World    WorldController
	Shaders  ShaderReloader
}

// Dispatcher maps key presses to reload actions using the bindings from the
// debug environment.
type Dispatcher struct {
	env      *devenv.Env
	host     Host
	bindings devenv.KeyBindings
	logger   *log.Logger
}

// NewDispatcher creates a dispatcher for env's key bindings.
func NewDispatcher(env *devenv.Env, host Host, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		env:      env,
		host:     host,
		bindings: env.Bindings(),
		logger:   logger,
	}
}

// Bindings returns the key bindings in effect.
func (d *Dispatcher) Bindings() devenv.KeyBindings {
	return d.bindings
}

// Resolve returns the action bound to code. Unless bindings are global,
// keys only resolve on the HUD screen.
func (d *Dispatcher) Resolve(code int, onHUD bool) (Action, bool) {
	if code == devenv.Unbound {
		return "", false
	}
	if !onHUD && !d.bindings.Global {
		return "", false
	}
	switch code {
	case d.bindings.ReloadMod:
		return ActionReloadMod, true
	case d.bindings.ReloadWorld:
		return ActionReloadWorld, true
	case d.bindings.ReloadAddon:
		return ActionReloadAddon, true
	case d.bindings.ReloadShaders:
		return ActionReloadShaders, true
	}
	return "", false
}

// HandleKey runs the action bound to code, if any, and reports which action
// ran.
func (d *Dispatcher) HandleKey(code int, onHUD bool) (Action, bool) {
	action, ok := d.Resolve(code, onHUD)
	if !ok {
		return "", false
	}
	d.logger.Debug("key binding fired", "key", code, "action", action)
	_ = d.Run(action)
	return action, true
}

// Run executes action against the host.
func (d *Dispatcher) Run(action Action) error {
	switch action {
	case ActionReloadMod:
		ReloadMod(d.env, d.host.Updater, d.host.Notifier, d.logger)
	case ActionReloadAddon:
		ReloadAddon(d.host.Addons, d.host.Notifier)
	case ActionReloadWorld:
		ReloadWorld(d.host.World)
	case ActionReloadShaders:
		ReloadShaders(d.host.Shaders, d.host.Notifier)
	default:
		d.logger.Warn("unknown action", "action", action)
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}
