package plugins

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/thomas11/blogsmith/internal/smith"
)

type CollectionOptions struct {
	Pattern string
	SortBy  string
	Reverse bool
}

// Collections groups files into named, sorted lists. A file joins a
// collection when its path matches the pattern or when it names the
// collection under "collection". Members learn their collections and get
// "previous" and "next" links; the lists are published in the global
// metadata both under their name and under "collections".
func Collections(opts map[string]CollectionOptions) (smith.Plugin, error) {
	matchers := make(map[string]*smith.Matcher, len(opts))
	for name, o := range opts {
		if o.Pattern == "" {
			continue
		}
		m, err := smith.NewMatcher(o.Pattern)
		if err != nil {
			return nil, fmt.Errorf("collection %v: %w", name, err)
		}
		matchers[name] = m
	}

	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		names := make([]string, 0, len(opts))
		for name := range opts {
			names = append(names, name)
		}
		sort.Strings(names)

		colls, _ := s.Metadata["collections"].(map[string][]*smith.File)
		if colls == nil {
			colls = make(map[string][]*smith.File)
		}

		for _, name := range names {
			o := opts[name]
			var members []*smith.File
			for _, k := range files.Sorted() {
				f := files[k]
				declared := slices.Contains(f.MetaStrings("collection"), name)
				if m, ok := matchers[name]; (ok && m.Match(k)) || declared {
					members = append(members, f)
				}
			}

			sortKey := o.SortBy
			if sortKey == "" {
				sortKey = "path"
			}
			smith.SortBy(members, sortKey, o.Reverse)

			for i, f := range members {
				joined := f.MetaStrings("collection")
				if !slices.Contains(joined, name) {
					joined = append(joined, name)
				}
				f.Meta["collection"] = joined
				if i > 0 {
					f.Meta["previous"] = members[i-1]
				}
				if i < len(members)-1 {
					f.Meta["next"] = members[i+1]
				}
			}

			colls[name] = members
			s.Metadata[name] = members
		}
		s.Metadata["collections"] = colls
		return nil
	}, nil
}
