package plugins

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/thomas11/blogsmith/internal/smith"
)

// ErrCollectionNotFound is returned when a plugin is configured for a
// collection the Collections plugin did not create.
var ErrCollectionNotFound = errors.New("collection not found")

type PaginationOptions struct {
	PerPage int
	Layout  string
	// First is where page one goes. Empty means Path.
	First string
	// Path is the pattern for the other pages; ":num" is the page number.
	Path string
	// NoPageOne skips the copy of page one at Path when First is set.
	NoPageOne    bool
	PageMetadata map[string]any
}

// Pagination generates list pages for collections. Keys name the
// collection, optionally as "collections.<name>".
func Pagination(opts map[string]PaginationOptions) smith.Plugin {
	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		keys := make([]string, 0, len(opts))
		for k := range opts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, key := range keys {
			o := opts[key]
			name := strings.TrimPrefix(key, "collections.")
			entries, ok := collectionFiles(s, name)
			if !ok {
				return fmt.Errorf("pagination %v: %w", name, ErrCollectionNotFound)
			}

			ps := pageSet{
				perPage: o.PerPage,
				layout:  o.Layout,
				meta:    o.PageMetadata,
				pathFor: func(num int) string {
					if num == 1 && o.First != "" {
						return o.First
					}
					return fillNum(o.Path, num)
				},
			}
			pages, err := ps.build(files, entries)
			if err != nil {
				return fmt.Errorf("pagination %v: %w", name, err)
			}

			if o.First != "" && !o.NoPageOne {
				dup := pages[0].Clone()
				dup.Path = fillNum(o.Path, 1)
				if _, exists := files[dup.Path]; exists {
					return fmt.Errorf("pagination %v: page %v already exists", name, dup.Path)
				}
				files.Add(dup)
			}
		}
		return nil
	}
}
