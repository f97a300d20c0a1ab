// Package mapping resolves target properties to source columns.
//
// A property maps either to a column header (ByHeaderName) or to a
// positional column letter (ByColumnLetter). Properties absent from the
// explicit mapping table fall back to a header mapping using the property
// name itself. The package also carries the per-query policies that shape
// materialization: strict validation, whitespace trimming and per-property
// value transformations.
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sheetq/internal/colref"
	"github.com/roach88/sheetq/internal/qerr"
)

// Kind selects how a property's column is identified.
type Kind int

const (
	// ByHeaderName identifies the column by its header text.
	ByHeaderName Kind = iota
	// ByColumnLetter identifies the column by its spreadsheet letter.
	ByColumnLetter
)

func (k Kind) String() string {
	switch k {
	case ByHeaderName:
		return "header"
	case ByColumnLetter:
		return "letter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ColumnMapping binds one property to one source column.
type ColumnMapping struct {
	Property string
	Column   string // header text or column letters, per Kind
	Kind     Kind
}

// Header returns a ByHeaderName mapping.
func Header(property, header string) ColumnMapping {
	return ColumnMapping{Property: property, Column: header, Kind: ByHeaderName}
}

// Letter returns a ByColumnLetter mapping.
func Letter(property, letters string) ColumnMapping {
	return ColumnMapping{Property: property, Column: strings.ToUpper(letters), Kind: ByColumnLetter}
}

// Transform converts the textual form of a cell into a typed value.
// A nil cell is passed as "".
type Transform func(raw string) (any, error)

// Config is the mapping configuration of one query. Build it once before
// executing and do not mutate it afterwards.
type Config struct {
	// Columns maps property name to explicit column mapping.
	Columns map[string]ColumnMapping

	// Transforms maps property name to its value transformation.
	Transforms map[string]Transform

	Strict StrictPolicy
	Trim   TrimPolicy
}

// NewConfig builds a Config from explicit mappings. A property mapped twice
// is an error.
func NewConfig(mappings ...ColumnMapping) (*Config, error) {
	cfg := &Config{
		Columns:    make(map[string]ColumnMapping, len(mappings)),
		Transforms: make(map[string]Transform),
	}
	for _, m := range mappings {
		if err := cfg.Add(m); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Add registers an explicit mapping. Mapping keys are unique.
func (c *Config) Add(m ColumnMapping) error {
	if m.Property == "" {
		return fmt.Errorf("mapping: property name is required")
	}
	if c.Columns == nil {
		c.Columns = make(map[string]ColumnMapping)
	}
	if _, dup := c.Columns[m.Property]; dup {
		return fmt.Errorf("mapping: property %q mapped more than once", m.Property)
	}
	if m.Kind == ByColumnLetter {
		if err := colref.CheckLetters(m.Column); err != nil {
			return fmt.Errorf("mapping: property %q: %w", m.Property, err)
		}
		m.Column = strings.ToUpper(m.Column)
	}
	c.Columns[m.Property] = m
	return nil
}

// SetTransform registers the transformation for a property, replacing any
// previous one.
func (c *Config) SetTransform(property string, fn Transform) {
	if c.Transforms == nil {
		c.Transforms = make(map[string]Transform)
	}
	c.Transforms[property] = fn
}

// Resolver returns a resolver over this configuration. A nil Config resolves
// every property by its own name.
func (c *Config) Resolver() *Resolver {
	return &Resolver{cfg: c}
}

// Properties returns the explicitly mapped property names in sorted order.
func (c *Config) Properties() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Columns))
	for name := range c.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolver resolves property names against a Config.
type Resolver struct {
	cfg *Config
}

// Resolve returns the explicit mapping for property, or a ByHeaderName
// mapping that uses the property name as the header.
func (r *Resolver) Resolve(property string) ColumnMapping {
	if m, ok := r.Explicit(property); ok {
		return m
	}
	return Header(property, property)
}

// Explicit returns the explicit mapping for property, if any.
func (r *Resolver) Explicit(property string) (ColumnMapping, bool) {
	if r == nil || r.cfg == nil {
		return ColumnMapping{}, false
	}
	m, ok := r.cfg.Columns[property]
	return m, ok
}

// Transform returns the registered transformation for property, if any.
func (r *Resolver) Transform(property string) (Transform, bool) {
	if r == nil || r.cfg == nil || r.cfg.Transforms == nil {
		return nil, false
	}
	fn, ok := r.cfg.Transforms[property]
	return fn, ok && fn != nil
}

// Strict returns the configured strict policy.
func (r *Resolver) Strict() StrictPolicy {
	if r == nil || r.cfg == nil {
		return StrictNone
	}
	return r.cfg.Strict
}

// Trim returns the configured trim policy.
func (r *Resolver) Trim() TrimPolicy {
	if r == nil || r.cfg == nil {
		return TrimNone
	}
	return r.cfg.Trim
}

// EffectiveColumnIndex returns the 0-based position of a ByColumnLetter
// mapping within rows fetched from rng. It fails with ColumnOutOfRange when
// the letter is beyond the sheet limit or past the range end, and with
// ArgumentRangeViolation when the letter precedes the range start.
func EffectiveColumnIndex(m ColumnMapping, rng colref.Range) (int, error) {
	if m.Kind != ByColumnLetter {
		return 0, fmt.Errorf("mapping: property %q is not mapped by column letter", m.Property)
	}
	if err := colref.CheckLetters(m.Column); err != nil {
		return 0, err
	}
	index := colref.ToIndex(m.Column)
	start := rng.StartColumn()
	if index < start {
		first, _ := colref.FromIndex(start)
		return 0, qerr.ArgumentRangeViolation(strings.ToUpper(m.Column), first)
	}
	if !rng.ContainsColumn(index) {
		return 0, qerr.ColumnOutOfRange(strings.ToUpper(m.Column), "outside range "+rng.String())
	}
	return index - start, nil
}
