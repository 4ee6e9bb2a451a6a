package smith

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// CompareMeta orders two files by a metadata key. Files missing the key come
// first. Dates compare chronologically, numbers numerically, anything else as
// strings.
func CompareMeta(a, b *File, key string) int {
	av, aok := a.Meta[key]
	bv, bok := b.Meta[key]
	aok = aok && av != nil
	bok = bok && bv != nil
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	if at, ok := toTime(av); ok {
		if bt, ok := toTime(bv); ok {
			return at.Compare(bt)
		}
	}
	if an, ok := toFloat(av); ok {
		if bn, ok := toFloat(bv); ok {
			return cmp.Compare(an, bn)
		}
	}
	return cmp.Compare(fmt.Sprint(av), fmt.Sprint(bv))
}

// SortBy sorts files in place by key, ties broken by path so output is
// stable across runs.
func SortBy(files []*File, key string, reverse bool) {
	slices.SortStableFunc(files, func(a, b *File) int {
		c := CompareMeta(a, b, key)
		if c == 0 {
			c = cmp.Compare(a.Path, b.Path)
		}
		if reverse {
			return -c
		}
		return c
	})
}
