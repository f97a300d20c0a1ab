package engine

import (
	"slices"

	"github.com/roach88/sheetq/internal/qerr"
	"github.com/roach88/sheetq/internal/queryir"
)

// applyLocal applies the deferred sequence operators in declaration order.
func applyLocal[T any](items []T, ops []queryir.Operator) []T {
	for _, op := range ops {
		switch o := op.(type) {
		case queryir.Reverse:
			items = slices.Clone(items)
			slices.Reverse(items)
		case queryir.Skip:
			items = items[min(o.N, len(items)):]
		case queryir.Take:
			items = items[:min(o.N, len(items))]
		}
	}
	return items
}

// selectElement applies an element operator. found is false only when an
// *OrDefault operator met an empty sequence.
func selectElement[T any](items []T, op queryir.Operator) (item T, found bool, err error) {
	var zero T
	switch op.(type) {
	case queryir.First:
		if len(items) == 0 {
			return zero, false, qerr.EmptyResult(op.Name())
		}
		return items[0], true, nil
	case queryir.FirstOrDefault:
		if len(items) == 0 {
			return zero, false, nil
		}
		return items[0], true, nil
	case queryir.Last:
		if len(items) == 0 {
			return zero, false, qerr.EmptyResult(op.Name())
		}
		return items[len(items)-1], true, nil
	case queryir.LastOrDefault:
		if len(items) == 0 {
			return zero, false, nil
		}
		return items[len(items)-1], true, nil
	case queryir.Single:
		switch len(items) {
		case 0:
			return zero, false, qerr.EmptyResult(op.Name())
		case 1:
			return items[0], true, nil
		default:
			return zero, false, qerr.MultipleResults(len(items))
		}
	default:
		return zero, false, qerr.New(qerr.ErrCodeUnsupportedQuery, "%s is not an element operator", op.Name())
	}
}
