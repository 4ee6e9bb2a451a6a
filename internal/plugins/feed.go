package plugins

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	atom "github.com/thomas11/atomgenerator"

	"github.com/thomas11/blogsmith/internal/smith"
)

type FeedOptions struct {
	Collection  string
	Destination string
	SiteURL     string
	Title       string
	Description string
	Author      string
	AuthorURI   string
	// TagPath, if set, also writes one feed per tag; ":tag" is the slug.
	TagPath string
	// Limit caps the number of entries. Zero means all.
	Limit int
}

// Feed writes an Atom feed of a collection. Entries link to the file's
// permalink and carry its excerpt when there is one, otherwise its contents.
func Feed(opts FeedOptions) smith.Plugin {
	if opts.Destination == "" {
		opts.Destination = "feed.xml"
	}
	if !strings.HasSuffix(opts.SiteURL, "/") {
		opts.SiteURL += "/"
	}
	if opts.AuthorURI == "" {
		opts.AuthorURI = opts.SiteURL
	}

	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		entries, ok := collectionFiles(s, opts.Collection)
		if !ok {
			return fmt.Errorf("feed %v: %w", opts.Collection, ErrCollectionNotFound)
		}

		xml, err := opts.renderFeed(opts.Title, "", entries)
		if err != nil {
			return err
		}
		files.Add(feedFile(opts.Destination, xml))

		if opts.TagPath == "" {
			return nil
		}
		for _, ct := range groupByTag(entries) {
			title := opts.Title + ` Tag "` + ct.tag.Name + `."`
			xml, err := opts.renderFeed(title, strings.TrimSuffix(strings.ReplaceAll(opts.TagPath, ":tag", ct.tag.Slug), ".xml"), ct.files)
			if err != nil {
				return err
			}
			files.Add(feedFile(strings.ReplaceAll(opts.TagPath, ":tag", ct.tag.Slug), xml))
		}
		return nil
	}
}

func feedFile(path string, xml []byte) *smith.File {
	f := smith.NewFile(path, xml)
	f.Meta["permalink"] = false
	return f
}

func (o FeedOptions) renderFeed(title, relURL string, entries []*smith.File) ([]byte, error) {
	if o.Limit > 0 && len(entries) > o.Limit {
		entries = entries[:o.Limit]
	}

	feedURL := o.SiteURL + strings.TrimPrefix(relURL, "/")
	feed := atom.Feed{
		Title:   title,
		Link:    feedURL,
		PubDate: latestDate(entries),
	}
	feed.AddAuthor(atom.Author{
		Name: o.Author,
		Uri:  o.AuthorURI,
	})

	for _, f := range entries {
		feed.AddEntry(o.entryForFile(f))
	}

	errs := feed.Validate()
	if len(errs) > 0 {
		slog.Error("Atom feed is not valid", "feed", title)
		for _, e := range errs {
			slog.Error("Atom feed validation", "error", e)
		}
		return nil, fmt.Errorf("feed %q: %w", title, errs[0])
	}
	return feed.GenXml()
}

func (o FeedOptions) entryForFile(f *smith.File) *atom.Entry {
	e := &atom.Entry{
		Title:       f.MetaString("title"),
		Description: f.MetaString("description"),
		Link:        o.SiteURL + permalinkOf(f),
		PubDate:     entryDate(f),
	}
	for _, t := range fileTags(f) {
		e.AddCategory(atom.Category{Term: t.Name})
	}
	if excerpt := f.MetaString("excerpt"); excerpt != "" {
		e.Content = excerpt
	} else {
		e.Content = string(f.Contents)
	}
	return e
}

func permalinkOf(f *smith.File) string {
	if p := f.MetaString("path"); p != "" {
		return p + "/"
	}
	return f.Path
}

func entryDate(f *smith.File) time.Time {
	if d, ok := f.MetaTime("date"); ok {
		return d
	}
	return f.ModTime
}

func latestDate(entries []*smith.File) time.Time {
	var t time.Time
	for _, f := range entries {
		if d := entryDate(f); d.After(t) {
			t = d
		}
	}
	if t.IsZero() {
		t = time.Now()
	}
	return t
}

func fileTags(f *smith.File) []Tag {
	if tags, ok := f.Meta["tags"].([]Tag); ok {
		return tags
	}
	var tags []Tag
	for _, name := range tagNames(f.Meta["tags"]) {
		tags = append(tags, Tag{Name: name, Slug: slugify(name)})
	}
	return tags
}

type tagWithFiles struct {
	tag   Tag
	files []*smith.File
}

// groupByTag keeps the collection order inside every tag; tags come sorted
// by slug.
func groupByTag(entries []*smith.File) []tagWithFiles {
	bySlug := make(map[string]*tagWithFiles)
	for _, f := range entries {
		for _, t := range fileTags(f) {
			ct, ok := bySlug[t.Slug]
			if !ok {
				ct = &tagWithFiles{tag: t}
				bySlug[t.Slug] = ct
			}
			ct.files = append(ct.files, f)
		}
	}

	out := make([]tagWithFiles, 0, len(bySlug))
	for _, ct := range bySlug {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].tag.Slug < out[j].tag.Slug })
	return out
}
