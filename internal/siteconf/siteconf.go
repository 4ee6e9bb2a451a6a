// Package siteconf reads blogsmith.yaml. Every field has a default that
// reproduces the stock pipeline, so an empty file builds a site.
package siteconf

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Site struct {
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	AuthorURI   string `yaml:"author_uri"`
}

type Collection struct {
	Pattern string `yaml:"pattern"`
	SortBy  string `yaml:"sort_by"`
	Reverse bool   `yaml:"reverse"`
}

type Pagination struct {
	PerPage   int    `yaml:"per_page"`
	Layout    string `yaml:"layout"`
	First     string `yaml:"first"`
	Path      string `yaml:"path"`
	NoPageOne bool   `yaml:"no_page_one"`

	// PageMetadata is copied onto every generated page.
	PageMetadata map[string]any `yaml:"page_metadata"`
}

type Tags struct {
	Handle       string `yaml:"handle"`
	Path         string `yaml:"path"`
	Layout       string `yaml:"layout"`
	SortBy       string `yaml:"sort_by"`
	Reverse      bool   `yaml:"reverse"`
	PerPage      int    `yaml:"per_page"`
	SkipMetadata bool   `yaml:"skip_metadata"`
	Frequent     int    `yaml:"frequent"`
	MinPosts     int    `yaml:"min_posts"`
}

type Linkset struct {
	Match   map[string]string `yaml:"match"`
	Pattern string            `yaml:"pattern"`
}

type Permalinks struct {
	Pattern  string    `yaml:"pattern"`
	Linksets []Linkset `yaml:"linksets"`
}

type LayoutPass struct {
	Pattern []string `yaml:"pattern"`
	Default string   `yaml:"default"`
}

type WordCount struct {
	CountKey       string `yaml:"count_key"`
	ReadingTimeKey string `yaml:"reading_time_key"`
	Speed          int    `yaml:"speed"`
	Seconds        bool   `yaml:"seconds"`
	Raw            bool   `yaml:"raw"`
}

type Feed struct {
	Collection  string `yaml:"collection"`
	Destination string `yaml:"destination"`
	TagPath     string `yaml:"tag_path"`
	Limit       int    `yaml:"limit"`
}

type Series struct {
	Dir string `yaml:"dir"`
	Key string `yaml:"key"`
}

type Deploy struct {
	Bucket string   `yaml:"bucket"`
	Args   []string `yaml:"args"`
}

type SiteConf struct {
	Site Site `yaml:"site"`

	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	LayoutDir   string `yaml:"layouts"`
	// StaticDir is copied verbatim after the build, bypassing the plugins.
	StaticDir string `yaml:"static"`

	MarkdownEngine string `yaml:"markdown_engine"`

	Metadata    map[string]string     `yaml:"metadata"`
	Ignore      []string              `yaml:"ignore"`
	Collections map[string]Collection `yaml:"collections"`
	Series      Series                `yaml:"series"`
	InPlace     []string              `yaml:"in_place"`
	WordCount   WordCount             `yaml:"word_count"`
	Tags        Tags                  `yaml:"tags"`
	Pagination  map[string]Pagination `yaml:"pagination"`
	Permalinks  Permalinks            `yaml:"permalinks"`
	Layouts     []LayoutPass          `yaml:"layout_passes"`
	Feed        Feed                  `yaml:"feed"`

	LintSkip     []string `yaml:"lint_skip"`
	ValidatorURL string   `yaml:"validator_url"`
	Deploy       Deploy   `yaml:"deploy"`
}

// Default returns the stock configuration.
func Default() *SiteConf {
	return &SiteConf{
		Site: Site{
			Title:       "Software! Math! Data!",
			URL:         "http://seanbowman.me/",
			Description: "The website of R. Sean Bowman",
			Author:      "R. Sean Bowman",
		},
		Source:         "source",
		Destination:    "site",
		LayoutDir:      "layouts",
		MarkdownEngine: "goldmark",
		Metadata: map[string]string{
			"publications": "metadata/publications.json",
			"talks":        "metadata/talks.yaml",
		},
		Ignore: []string{"metadata/*", "assets/raw/**/*"},
		Collections: map[string]Collection{
			"blog":            {Pattern: "blog/**/*.md", SortBy: "date", Reverse: true},
			"cpp_concurrency": {Pattern: "series/cpp_concurrency/*.md", SortBy: "date"},
		},
		Series:  Series{Dir: "series", Key: "series"},
		InPlace: []string{"blog/**/*.md", "series/**/*.md"},
		WordCount: WordCount{
			CountKey:       "word_count",
			ReadingTimeKey: "reading_time",
			Speed:          200,
		},
		Tags: Tags{
			Handle:       "tags",
			Path:         "blog/tags/:tag.html",
			Layout:       "tag.html",
			SortBy:       "date",
			Reverse:      true,
			SkipMetadata: true,
			Frequent:     6,
			MinPosts:     2,
		},
		Pagination: map[string]Pagination{
			"blog": {
				PerPage: 6,
				Layout:  "index_paginate.html",
				First:   "blog/index.html",
				Path:    "blog/page/:num/index.html",
			},
			"cpp_concurrency": {
				PerPage:   1000,
				Layout:    "index_collection.html",
				First:     "blog/cpp_concurrency/index.html",
				Path:      "blog/cpp_concurrency/page/:num/index.html",
				NoPageOne: true,
			},
		},
		Permalinks: Permalinks{
			Pattern: ":basename/",
			Linksets: []Linkset{
				{Match: map[string]string{"collection": "blog"}, Pattern: "blog/:basename/"},
				{Match: map[string]string{"collection": "cpp_concurrency"}, Pattern: "cpp_concurrency/:basename/"},
			},
		},
		Layouts: []LayoutPass{
			{Pattern: []string{"**", "!blog/**/*", "!cpp_concurrency/**/*"}},
			{Pattern: []string{"blog/**/*.html", "cpp_concurrency/**/*.html"}, Default: "article.html"},
		},
		Feed: Feed{
			Collection:  "blog",
			Destination: "blog/feed.xml",
		},
		LintSkip:     []string{"assets/**"},
		ValidatorURL: "https://validator.w3.org/nu/?out=json",
		Deploy: Deploy{
			Bucket: "seanbowman.me",
			Args:   []string{"--acl-public", "--cf-invalidate", "--no-mime-magic", "-M"},
		},
	}
}

// Read loads fileName over the defaults. Relative directories are resolved
// against the directory holding fileName, because the executable can be
// called from anywhere.
func Read(fileName string) (*SiteConf, error) {
	conf := Default()

	raw, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, conf); err != nil {
		return nil, fmt.Errorf("parsing %v: %w", fileName, err)
	}

	baseDir := filepath.Dir(fileName)
	conf.Source = normalizePath(conf.Source, baseDir)
	conf.Destination = normalizePath(conf.Destination, baseDir)
	conf.LayoutDir = normalizePath(conf.LayoutDir, baseDir)
	if conf.StaticDir != "" {
		conf.StaticDir = normalizePath(conf.StaticDir, baseDir)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", fileName, err)
	}
	return conf, nil
}

// Validate checks the options the pipeline cannot default.
func (c *SiteConf) Validate() error {
	if c.Source == "" || c.Destination == "" {
		return fmt.Errorf("source and destination are required")
	}
	if c.Source == c.Destination {
		return fmt.Errorf("source and destination must differ")
	}
	for name, p := range c.Pagination {
		if p.PerPage <= 0 {
			return fmt.Errorf("pagination %v: per_page must be positive", name)
		}
		if p.Path == "" {
			return fmt.Errorf("pagination %v: path is required", name)
		}
	}
	if c.WordCount.Speed <= 0 {
		return fmt.Errorf("word_count: speed must be positive")
	}
	return nil
}

func normalizePath(path, baseDir string) string {
	if !filepath.IsAbs(path) {
		absPath := filepath.Join(baseDir, path)
		slog.Debug("Normalizing path", "path", path, "normalized", absPath)
		return absPath
	}
	return path
}
