package plugins

import (
	"cmp"
	"context"
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Tag is one normalised entry of a file's tag list.
type Tag struct {
	Name string
	Slug string
}

func (t Tag) String() string { return t.Name }

type TagOptions struct {
	// Handle is the metadata key holding the tags.
	Handle string
	// Path is where a tag's page goes; ":tag" is the tag slug.
	Path string
	// PathPage is used for pages after the first when PerPage is set.
	// ":num" is the page number.
	PathPage string
	Layout   string
	SortBy   string
	Reverse  bool
	PerPage  int
	// SkipMetadata keeps the tag index out of the global metadata.
	SkipMetadata bool
	// Frequent, if positive, publishes up to that many tags with at least
	// MinPosts files as "frequent_tags", most used first.
	Frequent int
	MinPosts int
}

// Tags normalises every file's tags to []Tag and generates a list page per
// tag. Unless SkipMetadata is set, the global "tags" maps tag names to their
// files.
func Tags(opts TagOptions) smith.Plugin {
	if opts.Handle == "" {
		opts.Handle = "tags"
	}
	if opts.Path == "" {
		opts.Path = "tags/:tag/index.html"
	}
	if opts.PathPage == "" {
		ext := path.Ext(opts.Path)
		if isIndex(opts.Path) {
			opts.PathPage = path.Join(path.Dir(opts.Path), ":num", path.Base(opts.Path))
		} else {
			opts.PathPage = strings.TrimSuffix(opts.Path, ext) + "/:num" + ext
		}
	}
	if opts.SortBy == "" {
		opts.SortBy = "date"
	}

	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		byTag := make(map[string][]*smith.File)
		slugs := newTagSlugs()

		for _, k := range files.Sorted() {
			f := files[k]
			if _, ok := f.Meta[opts.Handle]; !ok {
				continue
			}
			var tags []Tag
			for _, name := range tagNames(f.Meta[opts.Handle]) {
				slug := slugs.assign(name)
				if slug == "" {
					continue
				}
				tags = append(tags, Tag{Name: name, Slug: slug})
				byTag[name] = append(byTag[name], f)
			}
			f.Meta[opts.Handle] = tags
		}

		names := make([]string, 0, len(byTag))
		for name := range byTag {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			tagged := byTag[name]
			smith.SortBy(tagged, opts.SortBy, opts.Reverse)

			slug := slugs.byName[name]
			ps := pageSet{
				perPage: opts.PerPage,
				layout:  opts.Layout,
				meta:    map[string]any{"tag": name, "tag_slug": slug},
				pathFor: func(num int) string {
					if num == 1 {
						return strings.ReplaceAll(opts.Path, ":tag", slug)
					}
					return fillNum(strings.ReplaceAll(opts.PathPage, ":tag", slug), num)
				},
			}
			if _, err := ps.build(files, tagged); err != nil {
				return fmt.Errorf("tag %v: %w", name, err)
			}
		}

		if !opts.SkipMetadata {
			s.Metadata["tags"] = byTag
		}
		if opts.Frequent > 0 {
			s.Metadata["frequent_tags"] = frequentTags(byTag, slugs.byName, opts.Frequent, opts.MinPosts)
		}
		return nil
	}
}

// tagSlugs hands out one slug per tag name. A name whose slug is already
// taken by another name gets a numeric suffix, in order of first use.
type tagSlugs struct {
	byName map[string]string
	taken  map[string]string
}

func newTagSlugs() *tagSlugs {
	return &tagSlugs{byName: map[string]string{}, taken: map[string]string{}}
}

func (ts *tagSlugs) assign(name string) string {
	if slug, ok := ts.byName[name]; ok {
		return slug
	}
	base := slugify(name)
	if base == "" {
		return ""
	}
	slug := base
	for n := 2; ts.taken[slug] != ""; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	ts.byName[name] = slug
	ts.taken[slug] = name
	return slug
}

// frequentTags orders tags by the number of files using them, then by their
// newest file, and returns the first n that have at least minFiles files.
func frequentTags(byTag map[string][]*smith.File, slugs map[string]string, n, minFiles int) []Tag {
	type counted struct {
		tag    Tag
		count  int
		newest time.Time
	}
	all := make([]counted, 0, len(byTag))
	for name, files := range byTag {
		c := counted{tag: Tag{Name: name, Slug: slugs[name]}, count: len(files)}
		for _, f := range files {
			if d, ok := f.MetaTime("date"); ok && d.After(c.newest) {
				c.newest = d
			}
		}
		all = append(all, c)
	}
	slices.SortFunc(all, func(a, b counted) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		if c := b.newest.Compare(a.newest); c != 0 {
			return c
		}
		return cmp.Compare(a.tag.Name, b.tag.Name)
	})

	frequent := make([]Tag, 0, n)
	for i, c := range all {
		if i == n || c.count < minFiles {
			break
		}
		frequent = append(frequent, c.tag)
	}
	return frequent
}

// tagNames accepts a comma separated string, a list, or tags that were
// already normalised.
func tagNames(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = strings.Split(t, ",")
	case []string:
		raw = t
	case []any:
		for _, x := range t {
			raw = append(raw, fmt.Sprint(x))
		}
	case []Tag:
		for _, x := range t {
			raw = append(raw, x.Name)
		}
	}

	seen := make(map[string]bool, len(raw))
	var names []string
	for _, n := range raw {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}
	return names
}
