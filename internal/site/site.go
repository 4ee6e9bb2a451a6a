// Package site assembles the plugin pipeline for a configured site and
// builds it.
package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/otiai10/copy"

	"github.com/thomas11/blogsmith/internal/helpers"
	"github.com/thomas11/blogsmith/internal/markdown"
	"github.com/thomas11/blogsmith/internal/metrics"
	"github.com/thomas11/blogsmith/internal/plugins"
	"github.com/thomas11/blogsmith/internal/siteconf"
	"github.com/thomas11/blogsmith/internal/smith"
)

type Options struct {
	// Drafts keeps files flagged as drafts.
	Drafts bool
	// Debug prints the tree after the last plugin to DebugOut.
	Debug    bool
	DebugOut io.Writer
	Recorder metrics.Recorder
}

// Pipeline returns the configured, not yet run, pipeline.
func Pipeline(conf *siteconf.SiteConf, opts Options) (*smith.Smith, error) {
	s := smith.New(conf.Source, conf.Destination)
	if opts.Recorder != nil {
		s.Recorder = opts.Recorder
	}
	s.Metadata["site"] = conf.Site

	renderer, err := markdown.New(conf.MarkdownEngine)
	if err != nil {
		return nil, err
	}

	ignore, err := plugins.Ignore(conf.Ignore...)
	if err != nil {
		return nil, fmt.Errorf("ignore: %w", err)
	}

	collOpts := make(map[string]plugins.CollectionOptions, len(conf.Collections))
	for name, c := range conf.Collections {
		collOpts[name] = plugins.CollectionOptions{Pattern: c.Pattern, SortBy: c.SortBy, Reverse: c.Reverse}
	}
	collections, err := plugins.Collections(collOpts)
	if err != nil {
		return nil, err
	}

	inPlace, err := plugins.InPlace(conf.InPlace, helpers.Funcs())
	if err != nil {
		return nil, fmt.Errorf("in_place: %w", err)
	}

	pageOpts := make(map[string]plugins.PaginationOptions, len(conf.Pagination))
	for name, p := range conf.Pagination {
		pageOpts[name] = plugins.PaginationOptions{
			PerPage:      p.PerPage,
			Layout:       p.Layout,
			First:        p.First,
			Path:         p.Path,
			NoPageOne:    p.NoPageOne,
			PageMetadata: p.PageMetadata,
		}
	}

	linksets := make([]plugins.Linkset, len(conf.Permalinks.Linksets))
	for i, ls := range conf.Permalinks.Linksets {
		linksets[i] = plugins.Linkset{Match: ls.Match, Pattern: ls.Pattern}
	}

	s.Use("metadata", plugins.Metadata(conf.Metadata)).
		Use("ignore", ignore).
		Use("drafts", plugins.Drafts(opts.Drafts)).
		Use("basename", plugins.Basename()).
		Use("collections", collections).
		Use("series", plugins.Series(plugins.SeriesOptions{Dir: conf.Series.Dir, Key: conf.Series.Key})).
		Use("add_metadata", plugins.AddMetadata()).
		Use("in_place", inPlace).
		Use("markdown", plugins.Markdown(renderer)).
		Use("word_count", plugins.WordCount(plugins.WordCountOptions{
			CountKey:       conf.WordCount.CountKey,
			ReadingTimeKey: conf.WordCount.ReadingTimeKey,
			Speed:          conf.WordCount.Speed,
			Seconds:        conf.WordCount.Seconds,
			Raw:            conf.WordCount.Raw,
		})).
		Use("excerpts", plugins.Excerpts()).
		Use("tags", plugins.Tags(plugins.TagOptions{
			Handle:       conf.Tags.Handle,
			Path:         conf.Tags.Path,
			Layout:       conf.Tags.Layout,
			SortBy:       conf.Tags.SortBy,
			Reverse:      conf.Tags.Reverse,
			PerPage:      conf.Tags.PerPage,
			SkipMetadata: conf.Tags.SkipMetadata,
			Frequent:     conf.Tags.Frequent,
			MinPosts:     conf.Tags.MinPosts,
		})).
		Use("pagination", plugins.Pagination(pageOpts)).
		Use("permalinks", plugins.Permalinks(plugins.PermalinkOptions{
			Pattern:  conf.Permalinks.Pattern,
			Linksets: linksets,
		}))

	for i, pass := range conf.Layouts {
		layouts, err := plugins.Layouts(plugins.LayoutOptions{
			Pattern:   pass.Pattern,
			Default:   pass.Default,
			Directory: conf.LayoutDir,
			Funcs:     helpers.Funcs(),
		})
		if err != nil {
			return nil, fmt.Errorf("layout pass %d: %w", i+1, err)
		}
		s.Use(fmt.Sprintf("layouts%d", i+1), layouts)
	}

	if conf.Feed.Collection != "" {
		s.Use("feed", plugins.Feed(plugins.FeedOptions{
			Collection:  conf.Feed.Collection,
			Destination: conf.Feed.Destination,
			TagPath:     conf.Feed.TagPath,
			Limit:       conf.Feed.Limit,
			SiteURL:     conf.Site.URL,
			Title:       conf.Site.Title,
			Description: conf.Site.Description,
			Author:      conf.Site.Author,
			AuthorURI:   conf.Site.AuthorURI,
		}))
	}

	if opts.Debug {
		s.Use("debug", plugins.Debug("Files after build:", plugins.DebugOptions{
			Keys: []string{"title", "path", "layout"},
			Out:  opts.DebugOut,
		}))
	}
	return s, nil
}

// Build runs the pipeline, writes the site and copies the static
// directory over it.
func Build(ctx context.Context, conf *siteconf.SiteConf, opts Options) (smith.Files, error) {
	start := time.Now()
	s, err := Pipeline(conf, opts)
	if err != nil {
		return nil, err
	}

	slog.Info("Building site", "source", conf.Source, "destination", conf.Destination)
	files, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := CopyStaticFiles(conf); err != nil {
		return nil, err
	}

	slog.Info("Site built", "files", len(files), "duration_ms", time.Since(start).Milliseconds())
	return files, nil
}

// CopyStaticFiles copies the static directory, if any, below the
// destination under its own name.
func CopyStaticFiles(conf *siteconf.SiteConf) error {
	srcDir := conf.StaticDir
	if srcDir == "" {
		return nil
	}
	if _, err := os.Stat(srcDir); err != nil {
		return fmt.Errorf("static directory: %w", err)
	}
	dest := filepath.Join(conf.Destination, filepath.Base(srcDir))
	slog.Debug("Copying static files", "from", srcDir, "to", dest)
	return copy.Copy(srcDir, dest)
}
