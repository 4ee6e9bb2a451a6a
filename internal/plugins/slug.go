package plugins

import (
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/thomas11/blogsmith/internal/smith"
)

// symbolWords spells out symbols that would otherwise vanish from a slug,
// so "C++" and "C" stay apart.
var symbolWords = strings.NewReplacer(
	"++", " plus plus ",
	"+", " plus ",
	"#", " sharp ",
	"&", " and ",
)

// slugify normalizes s into a lowercase, dash-separated slug. It returns
// "" when nothing sluggable is left.
func slugify(s string) string {
	s = strings.TrimSpace(symbolWords.Replace(s))
	if s == "" {
		return ""
	}
	normalized, err := slug.Normalize(s)
	if err != nil {
		return ""
	}
	return normalized
}

// templateData merges the global metadata with the file's own, the file
// winning.
func templateData(f *smith.File, s *smith.Smith) map[string]any {
	data := make(map[string]any, len(s.Metadata)+len(f.Meta)+1)
	for k, v := range s.Metadata {
		data[k] = v
	}
	for k, v := range f.Meta {
		data[k] = v
	}
	data["path"] = f.Meta["path"]
	return data
}

// collectionFiles looks a collection up in the global metadata.
func collectionFiles(s *smith.Smith, name string) ([]*smith.File, bool) {
	colls, ok := s.Metadata["collections"].(map[string][]*smith.File)
	if !ok {
		return nil, false
	}
	files, ok := colls[name]
	return files, ok
}
