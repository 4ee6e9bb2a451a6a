// Package helpers holds the functions available to in-place templates and
// layouts.
package helpers

import (
	"fmt"
	"html/template"
	"reflect"
	"sort"
	"strings"
	"time"
)

// Funcs returns a fresh FuncMap. It works for both text/template and
// html/template.
func Funcs() map[string]any {
	return map[string]any{
		"centered_figure":    CenteredFigure,
		"inspect":            Inspect,
		"inspect_keys":       InspectKeys,
		"pagination_classes": PaginationClasses,
		"formatDate":         FormatDate,
		"formatDateShort":    FormatDateShort,
		"isoDate":            ISODate,
		"date":               Date,
		"safe":               Safe,
	}
}

// CenteredFigure makes a centered, responsive img.
func CenteredFigure(name, altText, width string) template.HTML {
	return template.HTML(strings.Join([]string{
		`<img class="img-fluid center-block"`,
		`style="width: ` + width + `; height: auto;"`,
		`alt="` + altText + `"`,
		`src="/assets/images/figures/` + name + `">`,
	}, " "))
}

// Safe marks s as trusted HTML, e.g. an excerpt taken from rendered
// markdown.
func Safe(s any) template.HTML {
	return template.HTML(fmt.Sprint(s))
}

func Inspect(v any) string {
	return fmt.Sprintf("%+v", v)
}

// InspectKeys lists the keys of a map, sorted.
func InspectKeys(v any) string {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return "[]"
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, fmt.Sprint(k.Interface()))
	}
	sort.Strings(keys)
	return "[" + strings.Join(keys, " ") + "]"
}

// PaginationClasses assumes a pager of five entries: the current one is
// active, and entries too far from it are hidden on small screens.
func PaginationClasses(thisIndex, pageIndex int) string {
	var classes []string
	if thisIndex == pageIndex {
		classes = append(classes, "active")
	}

	dist := abs(pageIndex - thisIndex)
	if (0 < thisIndex && thisIndex < 4 && dist > 1) ||
		((thisIndex == 0 || thisIndex == 4) && dist > 2) {
		classes = append(classes, "hidden-sm-down")
	}
	return strings.Join(classes, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func FormatDate(d any) string {
	return Date("January 2, 2006", d)
}

func FormatDateShort(d any) string {
	return Date("Jan 2, 2006", d)
}

func ISODate(d any) string {
	return Date(time.RFC3339, d)
}

// Date formats a time.Time or a date string with a Go layout. Values that
// are not dates come back unchanged.
func Date(layout string, d any) string {
	switch t := d.(type) {
	case time.Time:
		return t.Format(layout)
	case string:
		for _, in := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(in, t); err == nil {
				return parsed.Format(layout)
			}
		}
		return t
	case nil:
		return ""
	}
	return fmt.Sprint(d)
}
