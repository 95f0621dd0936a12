package devenv

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
)

func mapLookup(vars map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestLoadDebugConfig(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  DebugConfig
	}{
		{"unset", nil, DebugConfig{}},
		{"explicit empty object", strPtr("{}"), DebugConfig{}},
		{"object", strPtr(`{"reload_key": 82}`), DebugConfig{"reload_key": float64(82)}},
		{"object inside string", strPtr(`"{\"reload_key_global\": true}"`), DebugConfig{"reload_key_global": true}},
		{"malformed", strPtr(`{"reload_key":`), DebugConfig{}},
		{"empty string", strPtr(""), DebugConfig{}},
		{"array", strPtr(`[1, 2]`), DebugConfig{}},
		{"number", strPtr(`42`), DebugConfig{}},
		{"null", strPtr(`null`), DebugConfig{}},
		{"string holding array", strPtr(`"[1]"`), DebugConfig{}},
		{"string holding garbage", strPtr(`"not json"`), DebugConfig{}},
		{"doubly nested string", strPtr(`"\"{}\""`), DebugConfig{}},
		{"NaN literal", strPtr(`{"reload_key": NaN}`), DebugConfig{}},
		{"Infinity literal", strPtr(`{"reload_key": Infinity}`), DebugConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{}
			if tt.value != nil {
				vars[EnvDebugOptions] = *tt.value
			}
			env := Load(mapLookup(vars))
			got := env.DebugConfig()
			if got == nil {
				t.Fatal("DebugConfig returned nil map")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DebugConfig: got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLoadTargetModDirs(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		want  []string
	}{
		{"unset", nil, []string{}},
		{"explicit empty array", strPtr("[]"), []string{}},
		{"array", strPtr(`["/a", "/b"]`), []string{"/a", "/b"}},
		{"array inside string", strPtr(`"[\"C:/mods/demo\"]"`), []string{"C:/mods/demo"}},
		{"malformed", strPtr(`["/a"`), []string{}},
		{"object", strPtr(`{"dir": "/a"}`), []string{}},
		{"non-string element", strPtr(`["/a", 3]`), []string{}},
		{"string holding object", strPtr(`"{}"`), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := map[string]string{}
			if tt.value != nil {
				vars[EnvTargetModDirs] = *tt.value
			}
			got := Load(mapLookup(vars)).TargetModDirs()
			if got == nil {
				t.Fatal("TargetModDirs returned nil slice")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TargetModDirs: got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEnvIsImmutable(t *testing.T) {
	env := Load(mapLookup(map[string]string{
		EnvDebugOptions:  `{"reload_key": 82}`,
		EnvTargetModDirs: `["/a"]`,
	}))

	cfg := env.DebugConfig()
	cfg["reload_key"] = "changed"
	dirs := env.TargetModDirs()
	dirs[0] = "/changed"

	if got := env.DebugConfig()["reload_key"]; got != float64(82) {
		t.Errorf("DebugConfig mutated through copy: %v", got)
	}
	if got := env.TargetModDirs()[0]; got != "/a" {
		t.Errorf("TargetModDirs mutated through copy: %v", got)
	}
}

func TestNilEnv(t *testing.T) {
	var env *Env
	if got := env.DebugConfig(); len(got) != 0 || got == nil {
		t.Errorf("nil Env DebugConfig: got %#v", got)
	}
	if got := env.TargetModDirs(); len(got) != 0 || got == nil {
		t.Errorf("nil Env TargetModDirs: got %#v", got)
	}
}

func TestLoadFromOS(t *testing.T) {
	t.Setenv(EnvDebugOptions, `{"reload_world_key": 96}`)
	t.Setenv(EnvTargetModDirs, `["/projects/demo"]`)

	env := LoadFromOS()
	if got := env.DebugConfig()["reload_world_key"]; got != float64(96) {
		t.Errorf("reload_world_key: got %v, want 96", got)
	}
	if got := env.TargetModDirs(); !reflect.DeepEqual(got, []string{"/projects/demo"}) {
		t.Errorf("TargetModDirs: got %v", got)
	}
}

func TestDebugIPCPort(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		port, ok, err := DebugIPCPort(mapLookup(nil))
		if err != nil || ok || port != 0 {
			t.Errorf("got (%d, %v, %v), want (0, false, nil)", port, ok, err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		port, ok, err := DebugIPCPort(mapLookup(map[string]string{EnvDebugIPCPort: "5005"}))
		if err != nil || !ok || port != 5005 {
			t.Errorf("got (%d, %v, %v), want (5005, true, nil)", port, ok, err)
		}
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		port, ok, err := DebugIPCPort(mapLookup(map[string]string{EnvDebugIPCPort: " 5005\n"}))
		if err != nil || !ok || port != 5005 {
			t.Errorf("got (%d, %v, %v), want (5005, true, nil)", port, ok, err)
		}
	})

	t.Run("non-numeric", func(t *testing.T) {
		_, ok, err := DebugIPCPort(mapLookup(map[string]string{EnvDebugIPCPort: "abc"}))
		if err == nil {
			t.Fatal("expected error for non-numeric port")
		}
		if ok {
			t.Error("ok should be false on error")
		}
		var portErr *PortError
		if !errors.As(err, &portErr) {
			t.Fatalf("expected *PortError, got %T", err)
		}
		if portErr.Value != "abc" {
			t.Errorf("PortError.Value: got %q", portErr.Value)
		}
		if !errors.Is(err, strconv.ErrSyntax) {
			t.Errorf("expected wrapped strconv.ErrSyntax, got %v", err)
		}
	})

	t.Run("read on every call", func(t *testing.T) {
		t.Setenv(EnvDebugIPCPort, "1000")
		first, _, _ := DebugIPCPort(nil)
		t.Setenv(EnvDebugIPCPort, "2000")
		second, _, _ := DebugIPCPort(nil)
		if first != 1000 || second != 2000 {
			t.Errorf("got %d then %d, want 1000 then 2000", first, second)
		}
	})
}

func strPtr(s string) *string {
	return &s
}
