package devactions

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/mcdev/internal/devenv"
)

type fakeUpdater struct {
	results map[string]bool
	errs    map[string]error
	panics  map[string]any
	calls   []string
}

func (f *fakeUpdater) UpdateAll(dir string) (bool, error) {
	f.calls = append(f.calls, dir)
	if v, ok := f.panics[dir]; ok {
		panic(v)
	}
	if err, ok := f.errs[dir]; ok {
		return true, err
	}
	return f.results[dir], nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) SetCornerNotification(msg string) {
	f.messages = append(f.messages, msg)
}

type fakeHost struct {
	addonRefreshes int
	restarts       int
	shaderResult   bool
	shaderReloads  int
}

func (f *fakeHost) RefreshAddons() { f.addonRefreshes++ }

func (f *fakeHost) RestartLocalGame() { f.restarts++ }

func (f *fakeHost) ReloadAllShaders() bool {
	f.shaderReloads++
	return f.shaderResult
}

func envWithDirs(t *testing.T, dirsJSON string) *devenv.Env {
	t.Helper()
	return devenv.Load(func(key string) (string, bool) {
		if key == devenv.EnvTargetModDirs {
			return dirsJSON, true
		}
		return "", false
	})
}

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func TestReloadMod(t *testing.T) {
	t.Run("any success wins and every dir is visited", func(t *testing.T) {
		var buf bytes.Buffer
		updater := &fakeUpdater{results: map[string]bool{"/a": false, "/b": true}}
		notifier := &fakeNotifier{}

		got := ReloadMod(envWithDirs(t, `["/a", "/b"]`), updater, notifier, testLogger(&buf))

		if !got {
			t.Error("expected aggregate true")
		}
		if !reflect.DeepEqual(updater.calls, []string{"/a", "/b"}) {
			t.Errorf("calls: got %v", updater.calls)
		}
		if !reflect.DeepEqual(notifier.messages, []string{MsgModReloaded}) {
			t.Errorf("notifications: got %v", notifier.messages)
		}
		if !strings.Contains(buf.String(), MsgModReloaded) {
			t.Errorf("status not written to diagnostics: %q", buf.String())
		}
	})

	t.Run("status is written at any log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.NewWithOptions(&buf, log.Options{Level: log.ErrorLevel})
		updater := &fakeUpdater{results: map[string]bool{"/a": false}}

		ReloadMod(envWithDirs(t, `["/a"]`), updater, &fakeNotifier{}, logger)

		if !strings.Contains(buf.String(), MsgNoScriptUpdates) {
			t.Errorf("status filtered out at error level: %q", buf.String())
		}
	})

	t.Run("success before failure is kept", func(t *testing.T) {
		updater := &fakeUpdater{
			results: map[string]bool{"/a": true},
			errs:    map[string]error{"/b": errors.New("syntax error")},
		}
		notifier := &fakeNotifier{}

		if !ReloadMod(envWithDirs(t, `["/a", "/b"]`), updater, notifier, testLogger(&bytes.Buffer{})) {
			t.Error("expected aggregate true")
		}
		if notifier.messages[0] != MsgModReloaded {
			t.Errorf("notification: got %q", notifier.messages[0])
		}
	})

	t.Run("panic is logged and not propagated", func(t *testing.T) {
		var buf bytes.Buffer
		updater := &fakeUpdater{panics: map[string]any{"/a": "boom"}}
		notifier := &fakeNotifier{}

		got := ReloadMod(envWithDirs(t, `["/a"]`), updater, notifier, testLogger(&buf))

		if got {
			t.Error("expected aggregate false")
		}
		if !reflect.DeepEqual(notifier.messages, []string{MsgNoScriptUpdates}) {
			t.Errorf("notifications: got %v", notifier.messages)
		}
		out := buf.String()
		if !strings.Contains(out, "mod update failed") || !strings.Contains(out, "boom") {
			t.Errorf("failure not logged: %q", out)
		}
	})

	t.Run("error result counts as not updated", func(t *testing.T) {
		updater := &fakeUpdater{errs: map[string]error{"/a": errors.New("io error")}}
		notifier := &fakeNotifier{}

		if ReloadMod(envWithDirs(t, `["/a"]`), updater, notifier, testLogger(&bytes.Buffer{})) {
			t.Error("expected aggregate false")
		}
		if notifier.messages[0] != MsgNoScriptUpdates {
			t.Errorf("notification: got %q", notifier.messages[0])
		}
	})

	t.Run("panic does not stop later dirs", func(t *testing.T) {
		updater := &fakeUpdater{
			panics:  map[string]any{"/a": errors.New("nil map")},
			results: map[string]bool{"/b": true},
		}
		notifier := &fakeNotifier{}

		if !ReloadMod(envWithDirs(t, `["/a", "/b"]`), updater, notifier, testLogger(&bytes.Buffer{})) {
			t.Error("expected aggregate true")
		}
		if len(updater.calls) != 2 {
			t.Errorf("calls: got %v", updater.calls)
		}
	})

	t.Run("no dirs", func(t *testing.T) {
		updater := &fakeUpdater{}
		notifier := &fakeNotifier{}

		if ReloadMod(envWithDirs(t, `[]`), updater, notifier, testLogger(&bytes.Buffer{})) {
			t.Error("expected aggregate false")
		}
		if len(updater.calls) != 0 {
			t.Errorf("expected no update calls, got %v", updater.calls)
		}
		if !reflect.DeepEqual(notifier.messages, []string{MsgNoScriptUpdates}) {
			t.Errorf("notifications: got %v", notifier.messages)
		}
	})

	t.Run("repeat calls carry no state", func(t *testing.T) {
		updater := &fakeUpdater{results: map[string]bool{"/a": true}}
		notifier := &fakeNotifier{}
		env := envWithDirs(t, `["/a"]`)

		ReloadMod(env, updater, notifier, testLogger(&bytes.Buffer{}))
		updater.results["/a"] = false
		if ReloadMod(env, updater, notifier, testLogger(&bytes.Buffer{})) {
			t.Error("second call should not see the first call's success")
		}
		want := []string{MsgModReloaded, MsgNoScriptUpdates}
		if !reflect.DeepEqual(notifier.messages, want) {
			t.Errorf("notifications: got %v, want %v", notifier.messages, want)
		}
	})
}

func TestUpdatePanicError(t *testing.T) {
	updater := &fakeUpdater{panics: map[string]any{"/a": "boom"}}
	ok, err := updateDir(updater, "/a")
	if ok {
		t.Error("ok should be false after panic")
	}
	var panicErr *UpdatePanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("expected *UpdatePanicError, got %T", err)
	}
	if panicErr.Dir != "/a" || panicErr.Value != "boom" || len(panicErr.Stack) == 0 {
		t.Errorf("unexpected panic error: %+v", panicErr)
	}
}

func TestReloadAddon(t *testing.T) {
	host := &fakeHost{}
	notifier := &fakeNotifier{}

	ReloadAddon(host, notifier)

	if host.addonRefreshes != 1 {
		t.Errorf("refreshes: got %d, want 1", host.addonRefreshes)
	}
	if !reflect.DeepEqual(notifier.messages, []string{MsgAddonsReloaded}) {
		t.Errorf("notifications: got %v", notifier.messages)
	}
}

func TestReloadWorld(t *testing.T) {
	host := &fakeHost{}
	ReloadWorld(host)
	if host.restarts != 1 {
		t.Errorf("restarts: got %d, want 1", host.restarts)
	}
}

func TestReloadShaders(t *testing.T) {
	tests := []struct {
		name   string
		result bool
		want   string
	}{
		{"shaders changed", true, MsgShadersReloaded},
		{"nothing changed", false, MsgNoShaderUpdates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeHost{shaderResult: tt.result}
			notifier := &fakeNotifier{}

			ReloadShaders(host, notifier)

			if host.shaderReloads != 1 {
				t.Errorf("reloads: got %d, want 1", host.shaderReloads)
			}
			if !reflect.DeepEqual(notifier.messages, []string{tt.want}) {
				t.Errorf("notifications: got %v, want [%s]", notifier.messages, tt.want)
			}
		})
	}
}
