package siteconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConf(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "blogsmith.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRead_EmptyFileUsesDefaults(t *testing.T) {
	p := writeConf(t, "")

	conf, err := Read(p)
	require.NoError(t, err)
	require.Equal(t, "Software! Math! Data!", conf.Site.Title)
	require.Equal(t, filepath.Join(filepath.Dir(p), "source"), conf.Source)
	require.Equal(t, filepath.Join(filepath.Dir(p), "site"), conf.Destination)
	require.Equal(t, 6, conf.Pagination["blog"].PerPage)
	require.Equal(t, "blog/tags/:tag.html", conf.Tags.Path)
	require.Len(t, conf.Layouts, 2)
}

func TestRead_OverridesAndKeepsAbsolutePaths(t *testing.T) {
	p := writeConf(t, `
site:
  title: My Notes
  url: https://example.com/
source: /abs/src
destination: out
markdown_engine: blackfriday
ignore: ["drafts/**"]
collections:
  notes:
    pattern: "notes/*.md"
    sort_by: title
`)

	conf, err := Read(p)
	require.NoError(t, err)
	require.Equal(t, "My Notes", conf.Site.Title)
	require.Equal(t, "/abs/src", conf.Source)
	require.Equal(t, filepath.Join(filepath.Dir(p), "out"), conf.Destination)
	require.Equal(t, "blackfriday", conf.MarkdownEngine)
	require.Equal(t, []string{"drafts/**"}, conf.Ignore)
	require.Equal(t, "notes/*.md", conf.Collections["notes"].Pattern)
	require.Contains(t, conf.Collections, "blog")
}

func TestRead_Invalid(t *testing.T) {
	_, err := Read(writeConf(t, "pagination:\n  blog:\n    per_page: 0\n    path: x\n"))
	require.ErrorContains(t, err, "per_page must be positive")

	_, err = Read(writeConf(t, "source: [oops"))
	require.Error(t, err)

	_, err = Read(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
