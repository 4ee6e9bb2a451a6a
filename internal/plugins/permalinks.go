package plugins

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/thomas11/blogsmith/internal/smith"
)

// ErrDuplicatePermalink is returned when two files would be written to the
// same place.
var ErrDuplicatePermalink = errors.New("duplicate permalink")

// Linkset applies Pattern to files whose metadata matches every entry of
// Match. List-valued metadata matches when it contains the value.
type Linkset struct {
	Match   map[string]string
	Pattern string
}

type PermalinkOptions struct {
	Pattern  string
	Linksets []Linkset
}

var placeholder = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// Permalinks moves every HTML file to <pattern>/index.html and records the
// directory as "path". Placeholders like ":basename" are filled from the
// metadata. Index files, and files whose placeholders cannot be filled, keep
// their own directory, so generated list pages stay where they are. Files with
// "permalink: false" are left alone.
func Permalinks(opts PermalinkOptions) smith.Plugin {
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		moves := make(map[string]string)
		taken := make(map[string]string)

		for _, k := range files.Sorted() {
			f := files[k]
			if !strings.HasSuffix(k, ".html") {
				continue
			}
			if v, ok := f.Meta["permalink"].(bool); ok && !v {
				continue
			}

			dir, ok := "", false
			if !isIndex(k) {
				dir, ok = resolvePermalink(opts.patternFor(f), f)
			}
			if !ok {
				dir = ownDirectory(k)
			}
			target := path.Join(dir, "index.html")
			f.Meta["path"] = dir

			if other, ok := taken[target]; ok {
				return fmt.Errorf("%v and %v both map to %v: %w", other, k, target, ErrDuplicatePermalink)
			}
			taken[target] = k
			if target != k {
				moves[k] = target
			}
		}

		for from, to := range moves {
			if _, exists := files[to]; exists {
				if _, moving := moves[to]; !moving {
					return fmt.Errorf("%v would overwrite %v: %w", from, to, ErrDuplicatePermalink)
				}
			}
		}

		// Detach first so chains of moves cannot clobber each other.
		moved := make(map[string]*smith.File, len(moves))
		for from := range moves {
			moved[from] = files[from]
			delete(files, from)
		}
		for from, f := range moved {
			f.Path = moves[from]
			files.Add(f)
		}
		return nil
	}
}

func (o PermalinkOptions) patternFor(f *smith.File) string {
	for _, ls := range o.Linksets {
		if linksetMatches(ls, f) {
			return ls.Pattern
		}
	}
	return o.Pattern
}

func linksetMatches(ls Linkset, f *smith.File) bool {
	for key, want := range ls.Match {
		switch v := f.Meta[key].(type) {
		case []string:
			if !slices.Contains(v, want) {
				return false
			}
		default:
			if f.MetaString(key) != want {
				return false
			}
		}
	}
	return true
}

func resolvePermalink(pattern string, f *smith.File) (string, bool) {
	if pattern == "" {
		return "", false
	}
	ok := true
	resolved := placeholder.ReplaceAllStringFunc(pattern, func(m string) string {
		key := m[1:]
		if d, isDate := f.MetaTime(key); isDate && key == "date" {
			return d.Format("2006/01/02")
		}
		v := slugify(f.MetaString(key))
		if v == "" {
			ok = false
		}
		return v
	})
	if !ok {
		return "", false
	}
	return strings.Trim(path.Clean("/"+resolved), "/"), true
}

func isIndex(p string) bool {
	return strings.TrimSuffix(path.Base(p), path.Ext(p)) == "index"
}

// ownDirectory is where a file already lives: "about.html" becomes "about",
// "blog/index.html" stays "blog".
func ownDirectory(p string) string {
	dir := path.Dir(p)
	if !isIndex(p) {
		dir = path.Join(dir, strings.TrimSuffix(path.Base(p), path.Ext(p)))
	}
	if dir == "." {
		return ""
	}
	return dir
}
