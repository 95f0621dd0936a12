// Package devactions implements the in-game hot-reload actions.
//
// Host capabilities are passed in by the caller on every invocation; the
// package holds no state between calls. Status messages go to the host's
// corner notification and, for mod reloads, to the diagnostic logger.
package devactions

import (
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mcdev/internal/devenv"
)

// Status messages shown in the game.
const (
	MsgModReloaded     = "[Dev] Scripts reloaded successfully."
	MsgNoScriptUpdates = "[Dev] No script updates detected."
	MsgAddonsReloaded  = "[Dev] Add-ons reloaded successfully."
	MsgShadersReloaded = "[Dev] Shaders reloaded successfully."
	MsgNoShaderUpdates = "[Dev] No shader updates found."
)

// ModUpdater hot-updates the scripts under a mod root directory and reports
// whether anything changed.
type ModUpdater interface {
	UpdateAll(dir string) (bool, error)
}

// Notifier shows a short message in the game's corner notification area.
type Notifier interface {
	SetCornerNotification(msg string)
}

// AddonRefresher reloads add-on packs.
type AddonRefresher interface {
	RefreshAddons()
}

// WorldController restarts the local game session.
type WorldController interface {
	RestartLocalGame()
}

// ShaderReloader reloads shaders and reports whether any changed.
type ShaderReloader interface {
	ReloadAllShaders() bool
}

// ReloadMod updates every target mod directory in order and notifies the
// outcome. The status line is printed without a level so it shows at any
// log level. A directory that errors or panics is logged and counts as not
// updated; the remaining directories are still visited. It returns whether
// any directory reported an update.
func ReloadMod(env *devenv.Env, updater ModUpdater, notifier Notifier, logger *log.Logger) bool {
	if logger == nil {
		logger = log.Default()
	}

	updated := false
	for _, dir := range env.TargetModDirs() {
		ok, err := updateDir(updater, dir)
		if err != nil {
			logger.Error("mod update failed", "dir", dir, "err", err)
			continue
		}
		if ok {
			updated = true
		}
	}

	msg := MsgModReloaded
	if !updated {
		msg = MsgNoScriptUpdates
	}
	notifier.SetCornerNotification(msg)
	logger.Print(msg)
	return updated
}

// updateDir runs a single update with panics converted to errors.
func updateDir(updater ModUpdater, dir string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &UpdatePanicError{Dir: dir, Value: r, Stack: debug.Stack()}
		}
	}()
	return updater.UpdateAll(dir)
}

// UpdatePanicError records a panic raised while updating a mod directory.
type UpdatePanicError struct {
	Dir   string
	Value any
	Stack []byte
}

func (e *UpdatePanicError) Error() string {
	return fmt.Sprintf("panic updating %s: %v\n%s", e.Dir, e.Value, e.Stack)
}

// ReloadAddon refreshes add-ons and notifies success. Host panics are not
// recovered.
func ReloadAddon(refresher AddonRefresher, notifier Notifier) {
	refresher.RefreshAddons()
	notifier.SetCornerNotification(MsgAddonsReloaded)
}

// ReloadWorld restarts the local game.
func ReloadWorld(world WorldController) {
	world.RestartLocalGame()
}

// ReloadShaders reloads shaders and shows exactly one notification for the
// outcome.
func ReloadShaders(shaders ShaderReloader, notifier Notifier) {
	if shaders.ReloadAllShaders() {
		notifier.SetCornerNotification(MsgShadersReloaded)
		return
	}
	notifier.SetCornerNotification(MsgNoShaderUpdates)
}
