// Package tabular provides windowing and ordering helpers for table data
// that is fetched whole from the backend and presented page by page.
package tabular

import (
	"sort"
	"strconv"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Page returns the half-open window [from, from+size) of items, clamped
// to the available data. A window that starts past the end, or a
// non-positive size, yields an empty page.
func Page[T any](items []T, from, size int) []T {
	if from < 0 {
		from = 0
	}
	if size <= 0 || from >= len(items) {
		return []T{}
	}
	end := from + size
	if end > len(items) {
		end = len(items)
	}
	return items[from:end]
}

// Order stable-sorts items in place. Descending reverses the comparison
// without disturbing stability.
func Order[T any](items []T, less func(a, b T) bool, descending bool) {
	cmp := less
	if descending {
		cmp = func(a, b T) bool { return less(b, a) }
	}
	sort.SliceStable(items, func(i, j int) bool { return cmp(items[i], items[j]) })
}

// StringLess builds a less function over a string key using
// case-insensitive Unicode collation. The returned function owns its
// collator and must not be shared across concurrent sorts.
func StringLess[T any](key func(T) string) func(a, b T) bool {
	c := collate.New(language.Und, collate.IgnoreCase)
	return func(a, b T) bool { return c.CompareString(key(a), key(b)) < 0 }
}

// NumberLess builds a less function over a numeric string key. Values
// that do not parse sort as zero.
func NumberLess[T any](key func(T) string) func(a, b T) bool {
	return func(a, b T) bool { return parseNumber(key(a)) < parseNumber(key(b)) }
}

func parseNumber(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n
}
