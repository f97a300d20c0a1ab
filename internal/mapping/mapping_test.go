package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sheetq/internal/colref"
	"github.com/roach88/sheetq/internal/qerr"
)

func TestResolve_ExplicitAndFallback(t *testing.T) {
	cfg, err := NewConfig(
		Header("Name", "Full Name"),
		Letter("Age", "c"),
	)
	require.NoError(t, err)
	r := cfg.Resolver()

	assert.Equal(t, ColumnMapping{Property: "Name", Column: "Full Name", Kind: ByHeaderName}, r.Resolve("Name"))
	assert.Equal(t, ColumnMapping{Property: "Age", Column: "C", Kind: ByColumnLetter}, r.Resolve("Age"))
	assert.Equal(t, ColumnMapping{Property: "City", Column: "City", Kind: ByHeaderName}, r.Resolve("City"))

	_, ok := r.Explicit("City")
	assert.False(t, ok)
}

func TestResolve_NilConfig(t *testing.T) {
	var cfg *Config
	r := cfg.Resolver()

	assert.Equal(t, Header("Name", "Name"), r.Resolve("Name"))
	assert.Equal(t, StrictNone, r.Strict())
	assert.Equal(t, TrimNone, r.Trim())
	_, ok := r.Transform("Name")
	assert.False(t, ok)
}

func TestConfig_RejectsDuplicatesAndBadLetters(t *testing.T) {
	_, err := NewConfig(Header("Name", "A"), Header("Name", "B"))
	assert.Error(t, err)

	_, err = NewConfig(Letter("Name", "XFE"))
	assert.True(t, qerr.Is(err, qerr.ErrCodeColumnOutOfRange))

	_, err = NewConfig(ColumnMapping{Column: "A"})
	assert.Error(t, err)
}

func TestEffectiveColumnIndex(t *testing.T) {
	rng := colref.MustRange("B1", "F1")

	idx, err := EffectiveColumnIndex(Letter("X", "C"), rng)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = EffectiveColumnIndex(Letter("X", "B"), rng)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = EffectiveColumnIndex(Letter("X", "A"), rng)
	assert.True(t, qerr.Is(err, qerr.ErrCodeArgumentRangeViolation))

	_, err = EffectiveColumnIndex(Letter("X", "G"), rng)
	assert.True(t, qerr.Is(err, qerr.ErrCodeColumnOutOfRange))

	_, err = EffectiveColumnIndex(ColumnMapping{Property: "X", Column: "XFE", Kind: ByColumnLetter}, colref.Range{})
	assert.True(t, qerr.Is(err, qerr.ErrCodeColumnOutOfRange))

	_, err = EffectiveColumnIndex(Header("X", "C"), rng)
	assert.Error(t, err)
}

func TestEffectiveColumnIndex_NoRange(t *testing.T) {
	idx, err := EffectiveColumnIndex(Letter("X", "A"), colref.Range{})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = EffectiveColumnIndex(Letter("X", "AA"), colref.Range{})
	require.NoError(t, err)
	assert.Equal(t, 26, idx)
}

func TestTrimPolicy_Apply(t *testing.T) {
	assert.Equal(t, "  7 ", TrimNone.Apply("  7 "))
	assert.Equal(t, "7 ", TrimStart.Apply("  7 "))
	assert.Equal(t, "  7", TrimEnd.Apply("  7 "))
	assert.Equal(t, "7", TrimBoth.Apply("\t 7 \n"))
}

func TestParsePolicies(t *testing.T) {
	s, err := ParseStrictPolicy("Both")
	require.NoError(t, err)
	assert.Equal(t, StrictBoth, s)
	assert.True(t, s.ChecksColumns())
	assert.True(t, s.ChecksProperties())
	assert.False(t, StrictColumn.ChecksProperties())

	_, err = ParseStrictPolicy("always")
	assert.Error(t, err)

	tp, err := ParseTrimPolicy("end")
	require.NoError(t, err)
	assert.Equal(t, TrimEnd, tp)

	_, err = ParseTrimPolicy("middle")
	assert.Error(t, err)
}

func TestTransformRegistry_Builtins(t *testing.T) {
	reg := NewTransformRegistry()
	assert.Equal(t, []string{"blank-null", "lower", "trim", "upper", "yesno"}, reg.Names())

	v, err := reg.Get("yesno")("Yes")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = reg.Get("yesno")("maybe")
	assert.Error(t, err)

	v, err = reg.Get("blank-null")("  ")
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Nil(t, reg.Get("missing"))
	assert.False(t, reg.Has("missing"))
}

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
strict: property
trim: both
columns:
  Name:
    header: Full Name
  Age:
    letter: c
  Active:
    transform: yesno
`), 0o644))

	cfg, err := LoadFile(path, nil)
	require.NoError(t, err)

	assert.Equal(t, StrictProperty, cfg.Strict)
	assert.Equal(t, TrimBoth, cfg.Trim)
	assert.Equal(t, []string{"Age", "Name"}, cfg.Properties())
	assert.Equal(t, Letter("Age", "C"), cfg.Columns["Age"])

	fn, ok := cfg.Resolver().Transform("Active")
	require.True(t, ok)
	v, err := fn("y")
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestLoadFile_CUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
strict: "column"
columns: {
	Name: header: "Full Name"
	Score: letter: "D"
}
`), 0o644))

	cfg, err := LoadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, StrictColumn, cfg.Strict)
	assert.Equal(t, Header("Name", "Full Name"), cfg.Columns["Name"])
	assert.Equal(t, Letter("Score", "D"), cfg.Columns["Score"])
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		return p
	}

	tests := []struct {
		name string
		path string
	}{
		{"unknown extension", write("m.json", `{}`)},
		{"duplicate key", write("dup.yaml", "columns:\n  A:\n    header: x\n  A:\n    header: y\n")},
		{"both header and letter", write("both.yaml", "columns:\n  A:\n    header: x\n    letter: B\n")},
		{"unknown transform", write("tr.yaml", "columns:\n  A:\n    transform: nope\n")},
		{"bad strict", write("strict.yaml", "strict: sometimes\n")},
		{"bad letter", write("letter.yaml", "columns:\n  A:\n    letter: A1\n")},
		{"invalid cue", write("bad.cue", "columns: {")},
		{"missing file", filepath.Join(dir, "missing.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path, nil)
			assert.Error(t, err)
		})
	}
}
