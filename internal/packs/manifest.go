// Package packs discovers behavior and resource packs by their manifest.json.
package packs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ManifestFile is the file that marks a pack directory.
const ManifestFile = "manifest.json"

//go:embed manifest.schema.json
var manifestSchemaSource string

const manifestSchemaURL = "https://mcdev.local/schemas/manifest.schema.json"

var (
	manifestSchemaOnce sync.Once
	manifestSchema     *jsonschema.Schema
	manifestSchemaErr  error
)

// ErrUnknownPackType is returned for manifests without a data or resources module.
var ErrUnknownPackType = errors.New("manifest has no data or resources module")

// Type is the kind of pack.
type Type string

const (
	TypeBehavior Type = "behavior"
	TypeResource Type = "resource"
)

// Pack describes a parsed pack.
type Pack struct {
	Type    Type
	UUID    string
	Name    string
	Version []int
	// Path is the directory holding manifest.json.
	Path string
}

// VersionString returns the version joined with dots, e.g. "1.0.0".
func (p Pack) VersionString() string {
	parts := make([]string, len(p.Version))
	for i, v := range p.Version {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ".")
}

// ManifestError reports a manifest that failed to parse or validate.
type ManifestError struct {
	Path    string
	Field   string
	Message string
	Err     error
}

func (e *ManifestError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

type manifest struct {
	Header struct {
		UUID    string `json:"uuid"`
		Name    string `json:"name"`
		Version []int  `json:"version"`
	} `json:"header"`
	Modules []struct {
		Type string `json:"type"`
	} `json:"modules"`
}

// ParseManifest reads and validates the manifest at path.
func ParseManifest(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	// Pack authors commonly save manifests with a UTF-8 BOM.
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ManifestError{Path: path, Message: "invalid JSON", Err: err}
	}
	if err := validateManifest(path, raw); err != nil {
		return nil, err
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ManifestError{Path: path, Message: "decode manifest", Err: err}
	}

	var packType Type
	for _, module := range m.Modules {
		switch module.Type {
		case "data":
			packType = TypeBehavior
		case "resources":
			packType = TypeResource
		}
	}
	if packType == "" {
		return nil, &ManifestError{Path: path, Field: "modules", Message: ErrUnknownPackType.Error(), Err: ErrUnknownPackType}
	}

	return &Pack{
		Type:    packType,
		UUID:    m.Header.UUID,
		Name:    m.Header.Name,
		Version: m.Header.Version,
		Path:    filepath.Dir(path),
	}, nil
}

func compiledManifestSchema() (*jsonschema.Schema, error) {
	manifestSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(manifestSchemaURL, strings.NewReader(manifestSchemaSource)); err != nil {
			manifestSchemaErr = fmt.Errorf("add manifest schema: %w", err)
			return
		}
		manifestSchema, manifestSchemaErr = compiler.Compile(manifestSchemaURL)
	})
	return manifestSchema, manifestSchemaErr
}

func validateManifest(path string, raw any) error {
	schema, err := compiledManifestSchema()
	if err != nil {
		return fmt.Errorf("compile manifest schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return mapSchemaError(path, err)
	}
	return nil
}

// mapSchemaError converts a jsonschema ValidationError to the first leaf
// cause as a ManifestError.
func mapSchemaError(path string, err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ManifestError{Path: path, Message: err.Error(), Err: err}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ManifestError{
		Path:    path,
		Field:   pointerPath(ve.InstanceLocation),
		Message: ve.Message,
		Err:     err,
	}
}

// pointerPath turns a JSON pointer such as "/header/version/0" into
// "header.version[0]".
func pointerPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		if part == "" {
			continue
		}
		part = strings.NewReplacer("~1", "/", "~0", "~").Replace(part)
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
