package devenv

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Environment variable names shared with the launcher.
const (
	EnvDebugOptions  = "MCS_HELPER_DEBUG_OPTIONS"
	EnvTargetModDirs = "MCS_HELPER_TARGET_MOD_DIRS"
	EnvDebugIPCPort  = "MCDEV_DEBUG_IPC_PORT"
)

const (
	defaultDebugOptions  = "{}"
	defaultTargetModDirs = "[]"
)

// LookupFunc reads a single environment variable.
type LookupFunc func(key string) (string, bool)

// DebugConfig holds arbitrary JSON debug options keyed by name.
type DebugConfig map[string]any

// Env is the debug environment loaded once at startup.
type Env struct {
	debugConfig   DebugConfig
	targetModDirs []string
}

// Load builds an Env from lookup. It never fails: anything that does not
// decode to the expected shape becomes an empty value.
func Load(lookup LookupFunc) *Env {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := &Env{
		debugConfig:   DebugConfig{},
		targetModDirs: []string{},
	}

	if v, ok := decodeShape(readOr(lookup, EnvDebugOptions, defaultDebugOptions), shapeObject); ok {
		env.debugConfig = v.(map[string]any)
	}
	if v, ok := decodeShape(readOr(lookup, EnvTargetModDirs, defaultTargetModDirs), shapeStringArray); ok {
		env.targetModDirs = v.([]string)
	}

	return env
}

// LoadFromOS loads the Env from the process environment.
func LoadFromOS() *Env {
	return Load(os.LookupEnv)
}

// DebugConfig returns a copy of the decoded debug options.
func (e *Env) DebugConfig() DebugConfig {
	if e == nil {
		return DebugConfig{}
	}
	return maps.Clone(e.debugConfig)
}

// TargetModDirs returns a copy of the mod directories to reload, in order.
func (e *Env) TargetModDirs() []string {
	if e == nil {
		return []string{}
	}
	return slices.Clone(e.targetModDirs)
}

func readOr(lookup LookupFunc, key, fallback string) string {
	if v, ok := lookup(key); ok {
		return v
	}
	return fallback
}

type shape int

const (
	shapeObject shape = iota
	shapeStringArray
)

// coerce reports whether v has the shape and returns it in its Go form.
func (s shape) coerce(v any) (any, bool) {
	switch s {
	case shapeObject:
		m, ok := v.(map[string]any)
		return m, ok
	case shapeStringArray:
		items, ok := v.([]any)
		if !ok {
			return nil, false
		}
		dirs := make([]string, 0, len(items))
		for _, item := range items {
			dir, ok := item.(string)
			if !ok {
				return nil, false
			}
			dirs = append(dirs, dir)
		}
		return dirs, true
	}
	return nil, false
}

// decodeShape decodes text and checks it against want. A value that decodes
// to a JSON string gets a second decode of that string's contents. NaN and
// Infinity literals are not JSON and make the whole value malformed.
func decodeShape(text string, want shape) (any, bool) {
	var first any
	if err := json.Unmarshal([]byte(text), &first); err != nil {
		return nil, false
	}
	if v, ok := want.coerce(first); ok {
		return v, true
	}

	nested, isString := first.(string)
	if !isString {
		return nil, false
	}
	var second any
	if err := json.Unmarshal([]byte(nested), &second); err != nil {
		return nil, false
	}
	return want.coerce(second)
}

// PortError reports a debug IPC port value that is not a base-10 integer.
type PortError struct {
	Value string
	Err   error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", EnvDebugIPCPort, e.Value, e.Err)
}

func (e *PortError) Unwrap() error {
	return e.Err
}

// DebugIPCPort reads the debug IPC port. ok is false when the variable is
// unset. The value is read again on every call.
func DebugIPCPort(lookup LookupFunc) (port int, ok bool, err error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	raw, set := lookup(EnvDebugIPCPort)
	if !set {
		return 0, false, nil
	}
	port, err = strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, &PortError{Value: raw, Err: err}
	}
	return port, true, nil
}
