package mapping

import (
	"errors"
	"fmt"
)

// ErrNoMappings reports an intersection over zero field lists. Callers
// must resolve at least one index before intersecting.
var ErrNoMappings = errors.New("no field lists to intersect")

// Intersect returns the fields present in every input list. Two fields
// match when Label and Type are both equal; Path is not compared. The
// result keeps the first list's order and instances. A single input
// list is returned unchanged.
func Intersect(perIndex [][]Field) ([]Field, error) {
	if len(perIndex) == 0 {
		return nil, ErrNoMappings
	}
	if len(perIndex) == 1 {
		return perIndex[0], nil
	}

	type key struct{ label, typ string }
	rest := make([]map[key]struct{}, 0, len(perIndex)-1)
	for _, list := range perIndex[1:] {
		set := make(map[key]struct{}, len(list))
		for _, f := range list {
			set[key{f.Label, f.Type}] = struct{}{}
		}
		rest = append(rest, set)
	}

	common := make([]Field, 0, len(perIndex[0]))
candidates:
	for _, f := range perIndex[0] {
		for _, set := range rest {
			if _, ok := set[key{f.Label, f.Type}]; !ok {
				continue candidates
			}
		}
		common = append(common, f)
	}
	return common, nil
}

// TypeFilter reports whether fields of a given type survive the display
// projection.
type TypeFilter func(typ string) bool

// KeywordOnly keeps keyword fields.
func KeywordOnly(typ string) bool { return typ == TypeKeyword }

// StringTypes keeps keyword and text fields.
func StringTypes(typ string) bool { return typ == TypeKeyword || typ == TypeText }

// AllTypes keeps every field.
func AllTypes(string) bool { return true }

// Field type policies selectable in configuration.
const (
	PolicyKeyword = "keyword"
	PolicyString  = "string"
	PolicyAll     = "all"
)

// FilterForPolicy resolves a configured policy name to its filter.
func FilterForPolicy(policy string) (TypeFilter, error) {
	switch policy {
	case "", PolicyKeyword:
		return KeywordOnly, nil
	case PolicyString:
		return StringTypes, nil
	case PolicyAll:
		return AllTypes, nil
	default:
		return nil, fmt.Errorf("unknown field type policy: %s", policy)
	}
}

// Filter returns the fields whose type the filter keeps. A nil filter
// keeps everything.
func Filter(fields []Field, keep TypeFilter) []Field {
	if keep == nil {
		return fields
	}
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if keep(f.Type) {
			out = append(out, f)
		}
	}
	return out
}
