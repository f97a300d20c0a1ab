package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// TransformRegistry holds named transforms so that mapping files can refer
// to them by name.
type TransformRegistry struct {
	transforms map[string]Transform
}

// NewTransformRegistry creates a registry preloaded with the built-in
// transforms: trim, upper, lower, yesno and blank-null.
func NewTransformRegistry() *TransformRegistry {
	r := &TransformRegistry{transforms: make(map[string]Transform)}
	r.Register("trim", func(raw string) (any, error) { return strings.TrimSpace(raw), nil })
	r.Register("upper", func(raw string) (any, error) { return strings.ToUpper(raw), nil })
	r.Register("lower", func(raw string) (any, error) { return strings.ToLower(raw), nil })
	r.Register("yesno", yesNo)
	r.Register("blank-null", func(raw string) (any, error) {
		if strings.TrimSpace(raw) == "" {
			return nil, nil
		}
		return raw, nil
	})
	return r
}

// Register adds or replaces a named transform.
func (r *TransformRegistry) Register(name string, fn Transform) {
	r.transforms[name] = fn
}

// Get returns the named transform, or nil if not found.
func (r *TransformRegistry) Get(name string) Transform {
	return r.transforms[name]
}

// Has returns true if a transform with the given name exists.
func (r *TransformRegistry) Has(name string) bool {
	_, exists := r.transforms[name]
	return exists
}

// Names returns all transform names in sorted order.
func (r *TransformRegistry) Names() []string {
	names := make([]string, 0, len(r.transforms))
	for name := range r.transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func yesNo(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "y", "yes", "true", "1", "x":
		return true, nil
	case "", "n", "no", "false", "0":
		return false, nil
	default:
		return nil, fmt.Errorf("yesno: unrecognized value %q", raw)
	}
}
