// Package htmlcheck inspects a built site: local lint rules, the Nu HTML
// checker, and an offline crawl for broken internal links.
package htmlcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Issue is a single problem found in a page.
type Issue struct {
	File    string
	Line    int
	Rule    string
	Message string
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%v:%d: %v [%v]", i.File, i.Line, i.Message, i.Rule)
	}
	return fmt.Sprintf("%v: %v [%v]", i.File, i.Message, i.Rule)
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].File != issues[b].File {
			return issues[a].File < issues[b].File
		}
		return issues[a].Line < issues[b].Line
	})
}

// Pages lists the HTML files below dir that are not matched by skip,
// relative and slash-separated.
func Pages(dir string, skip []string) ([]string, error) {
	var skipper *smith.Matcher
	if len(skip) > 0 {
		m, err := smith.NewMatcher(skip...)
		if err != nil {
			return nil, err
		}
		skipper = m
	}

	var pages []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if skipper.Match(rel) {
			return nil
		}
		pages = append(pages, rel)
		return nil
	})
	sort.Strings(pages)
	return pages, err
}
