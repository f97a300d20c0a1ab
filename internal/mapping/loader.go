package mapping

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// FileSpec is the on-disk form of a mapping configuration.
//
// Example (YAML):
//
//	strict: property
//	trim: both
//	columns:
//	  Name:
//	    header: Full Name
//	  Age:
//	    letter: C
//	    transform: trim
//
// The same structure is accepted as CUE.
type FileSpec struct {
	Strict  string                `yaml:"strict" json:"strict,omitempty"`
	Trim    string                `yaml:"trim" json:"trim,omitempty"`
	Columns map[string]ColumnSpec `yaml:"columns" json:"columns,omitempty"`
}

// ColumnSpec maps one property. Exactly one of Header or Letter may be set;
// when neither is, the property keeps its default header mapping and the
// entry only attaches a transform.
type ColumnSpec struct {
	Header    string `yaml:"header" json:"header,omitempty"`
	Letter    string `yaml:"letter" json:"letter,omitempty"`
	Transform string `yaml:"transform" json:"transform,omitempty"`
}

// LoadFile reads a mapping configuration from a .yaml/.yml or .cue file.
// Transform names are looked up in registry; a nil registry means the
// built-in transforms only.
func LoadFile(path string, registry *TransformRegistry) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping file: %w", err)
	}

	var spec FileSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		spec, err = ParseYAML(data)
	case ".cue":
		spec, err = ParseCUE(data, path)
	default:
		return nil, fmt.Errorf("unsupported mapping file extension %q: use .yaml, .yml or .cue", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return spec.Build(registry)
}

// ParseYAML decodes a YAML mapping file. Duplicate property keys are
// rejected by the decoder.
func ParseYAML(data []byte) (FileSpec, error) {
	var spec FileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return FileSpec{}, fmt.Errorf("parse yaml mapping: %w", err)
	}
	return spec, nil
}

// ParseCUE compiles and decodes a CUE mapping file.
func ParseCUE(data []byte, filename string) (FileSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return FileSpec{}, fmt.Errorf("compile cue mapping: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return FileSpec{}, fmt.Errorf("validate cue mapping: %w", err)
	}
	var spec FileSpec
	if err := v.Decode(&spec); err != nil {
		return FileSpec{}, fmt.Errorf("decode cue mapping: %w", err)
	}
	return spec, nil
}

// Build converts the file form into a validated Config.
func (s FileSpec) Build(registry *TransformRegistry) (*Config, error) {
	if registry == nil {
		registry = NewTransformRegistry()
	}

	strict, err := ParseStrictPolicy(s.Strict)
	if err != nil {
		return nil, err
	}
	trim, err := ParseTrimPolicy(s.Trim)
	if err != nil {
		return nil, err
	}

	cfg, err := NewConfig()
	if err != nil {
		return nil, err
	}
	cfg.Strict = strict
	cfg.Trim = trim

	// Sort for deterministic error reporting
	props := make([]string, 0, len(s.Columns))
	for p := range s.Columns {
		props = append(props, p)
	}
	sort.Strings(props)

	for _, prop := range props {
		col := s.Columns[prop]
		switch {
		case col.Header != "" && col.Letter != "":
			return nil, fmt.Errorf("mapping: property %q sets both header and letter", prop)
		case col.Header != "":
			if err := cfg.Add(Header(prop, col.Header)); err != nil {
				return nil, err
			}
		case col.Letter != "":
			if err := cfg.Add(Letter(prop, col.Letter)); err != nil {
				return nil, err
			}
		}

		if col.Transform != "" {
			fn := registry.Get(col.Transform)
			if fn == nil {
				return nil, fmt.Errorf("mapping: property %q: unknown transform %q (available: %s)",
					prop, col.Transform, strings.Join(registry.Names(), ", "))
			}
			cfg.SetTransform(prop, fn)
		}
	}

	return cfg, nil
}
