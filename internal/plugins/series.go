package plugins

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/thomas11/blogsmith/internal/smith"
)

type SeriesOptions struct {
	// Dir is the top-level directory holding one subdirectory per series.
	Dir string
	// Key names the index file's metadata entry receiving the sorted parts.
	Key string
}

// Series groups the files below Dir/<name>/ into a series. The file named
// index is the series' landing page; its siblings are sorted by date, undated
// ones first, and handed to the index under Key. Every member learns its
// series through "series_name".
func Series(opts SeriesOptions) smith.Plugin {
	if opts.Dir == "" {
		opts.Dir = "series"
	}
	if opts.Key == "" {
		opts.Key = "series"
	}
	prefix := strings.TrimSuffix(opts.Dir, "/") + "/"

	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		type group struct {
			index *smith.File
			parts []*smith.File
		}
		groups := make(map[string]*group)

		for _, k := range files.Sorted() {
			rest, ok := strings.CutPrefix(k, prefix)
			if !ok {
				continue
			}
			name, file, ok := strings.Cut(rest, "/")
			if !ok || name == "" {
				continue
			}
			g := groups[name]
			if g == nil {
				g = &group{}
				groups[name] = g
			}

			f := files[k]
			f.Meta["series_name"] = name
			base := path.Base(file)
			if strings.TrimSuffix(base, path.Ext(base)) == "index" && !strings.Contains(file, "/") {
				g.index = f
				continue
			}
			g.parts = append(g.parts, f)
		}

		names := make([]string, 0, len(groups))
		for name := range groups {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			g := groups[name]
			smith.SortBy(g.parts, "date", false)
			if g.index != nil {
				g.index.Meta[opts.Key] = g.parts
			}
		}
		return nil
	}
}
