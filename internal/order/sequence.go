package order

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInputType is returned by Sequence for inputs that are neither an
// identifier slice nor an identifier-keyed map.
var ErrInputType = errors.New("input must be []string or map[string][]string")

// Sequence orders a collection of chapter identifiers. The output mirrors
// the input type: a slice comes back as a filtered, sorted slice; a map
// comes back as a map holding only the surviving keys with their values
// untouched (use SequenceKeys for the sorted key order).
func Sequence(data any) (any, error) {
	switch v := data.(type) {
	case []string:
		return SequenceList(v), nil
	case map[string][]string:
		out := make(map[string][]string, len(v))
		for _, k := range SequenceKeys(v) {
			out[k] = v[k]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrInputType, data)
	}
}

// SequenceList drops placeholder identifiers and sorts the rest ascending
// by their ordering key. The sort is stable: unmatched identifiers keep
// their relative order at the end.
func SequenceList(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if IsPlaceholder(id) {
			continue
		}
		out = append(out, id)
	}

	keys := make(map[string]Key, len(out))
	for _, id := range out {
		k, _ := ParseKey(id)
		keys[id] = k
	}

	sort.SliceStable(out, func(i, j int) bool {
		return keys[out[i]].Less(keys[out[j]])
	})

	return out
}

// SequenceKeys returns the keys of an identifier-keyed map in reading
// order, with placeholders dropped. Map iteration order is undefined in
// Go, so the keys are first sorted lexically for a deterministic baseline
// before the stable key sort is applied.
func SequenceKeys(m map[string][]string) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return SequenceList(ids)
}
