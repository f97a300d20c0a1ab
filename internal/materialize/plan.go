package materialize

import (
	"log/slog"
	"slices"
	"strconv"

	"golang.org/x/text/cases"

	"github.com/roach88/sheetq/internal/mapping"
	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/queryir"
)

// Input is the per-execution context of a materialization.
type Input struct {
	Resolver *mapping.Resolver
	Table    queryir.Table

	// Projection restricts the populated properties when non-empty.
	Projection []string

	// Projected is set when the source already narrowed its columns to the
	// projection. The column-side strict check is skipped then.
	Projected bool

	// Columns are the cursor's column names in order.
	Columns []string

	Logger *slog.Logger
}

// Plan materializes rows of one execution into values of T.
// Build a Plan once per execution; it is not safe for concurrent use.
type Plan[T any] struct {
	fields    []Field[T]
	positions []int // -1 when the property has no column
	resolver  *mapping.Resolver
}

// NewPlan resolves every property of desc to a column position and runs
// the strict mapping check. It fails before any row is read.
//
// Letter mappings address the column at their offset from the range
// start (by its F<n> name on header-less tables); header mappings match
// column names ignoring case. A property mapped explicitly to a header
// that is absent is logged and left unset; it does not count against
// property strictness.
func NewPlan[T any](desc Descriptor[T], in Input) (*Plan[T], error) {
	logger := in.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	projected := func(f Field[T]) bool {
		return len(in.Projection) == 0 || slices.Contains(in.Projection, f.Name)
	}

	loc := locator{in: in, index: foldIndex(in.Columns), fold: cases.Fold()}
	p := &Plan[T]{resolver: in.Resolver}

	used := make([]bool, len(in.Columns))
	var unmapped []string

	for _, f := range desc.Fields {
		pos, missingHeader, err := loc.locate(f.Name)
		if !projected(f) {
			if err == nil && pos >= 0 {
				used[pos] = true
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if pos >= 0 {
			used[pos] = true
		}

		p.fields = append(p.fields, f)
		p.positions = append(p.positions, pos)
		switch {
		case missingHeader:
			logger.Warn("mapped column not found",
				"property", f.Name,
				"column", in.Resolver.Resolve(f.Name).Column,
				"table", in.Table.Name)
		case pos < 0:
			unmapped = append(unmapped, f.Name)
		}
	}

	strict := in.Resolver.Strict()
	if strict.ChecksProperties() && len(unmapped) > 0 {
		return nil, qerr.StrictMappingViolation(qerr.KindPropertyNotMapped, unmapped)
	}
	if strict.ChecksColumns() && !in.Projected {
		names := make(map[string]bool, len(desc.Fields))
		for _, f := range desc.Fields {
			names[loc.fold.String(f.Name)] = true
		}
		var extra []string
		for i, col := range in.Columns {
			if !used[i] && !names[loc.fold.String(col)] {
				extra = append(extra, col)
			}
		}
		if len(extra) > 0 {
			return nil, qerr.StrictMappingViolation(qerr.KindColumnNotMapped, extra)
		}
	}

	return p, nil
}

// locator finds the cursor position of a property.
type locator struct {
	in    Input
	index map[string]int
	fold  cases.Caser
}

// locate returns the column position of property, or -1. missingHeader
// reports an explicit header mapping whose column is absent.
func (l *locator) locate(property string) (pos int, missingHeader bool, err error) {
	m := l.in.Resolver.Resolve(property)
	if m.Kind == mapping.ByColumnLetter {
		offset, err := mapping.EffectiveColumnIndex(m, l.in.Table.Range)
		if err != nil {
			return -1, false, err
		}
		if l.in.Table.NoHeader {
			if at, ok := l.index[l.fold.String(positionalName(offset))]; ok {
				return at, false, nil
			}
			return -1, false, nil
		}
		if offset < len(l.in.Columns) {
			return offset, false, nil
		}
		return -1, false, nil
	}

	if at, ok := l.index[l.fold.String(m.Column)]; ok {
		return at, false, nil
	}
	_, explicit := l.in.Resolver.Explicit(property)
	return -1, explicit, nil
}

// Materialize converts one row. Each value is trimmed (strings), passed
// through the property's transform as text, then coerced to the field's
// Kind.
func (p *Plan[T]) Materialize(values []any) (T, error) {
	var out T
	for i, f := range p.fields {
		pos := p.positions[i]
		if pos < 0 || pos >= len(values) {
			continue
		}

		v, err := p.convert(f, values[pos])
		if err != nil {
			var zero T
			return zero, err
		}
		f.Set(&out, v)
	}
	return out, nil
}

func (p *Plan[T]) convert(f Field[T], v any) (any, error) {
	if s, ok := v.(string); ok {
		v = p.resolver.Trim().Apply(s)
	}

	if fn, ok := p.resolver.Transform(f.Name); ok {
		out, err := fn(text(v))
		if err != nil {
			return nil, qerr.TypeCoercionFailure(f.Name, v, f.Kind.String(), err)
		}
		v = out
	}

	out, err := Coerce(v, f.Kind)
	if err != nil {
		return nil, qerr.TypeCoercionFailure(f.Name, v, f.Kind.String(), err)
	}
	if f.Check != nil {
		if err := f.Check(out); err != nil {
			return nil, qerr.TypeCoercionFailure(f.Name, v, f.Kind.String(), err)
		}
	}
	return out, nil
}

// foldIndex maps case-folded column names to their first position.
func foldIndex(columns []string) map[string]int {
	fold := cases.Fold()
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		key := fold.String(col)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	return index
}

func positionalName(offset int) string {
	return "F" + strconv.Itoa(offset+1)
}
