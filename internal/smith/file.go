package smith

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// File is one entry of the in-memory tree. Meta holds front matter plus
// whatever the plugins attach.
type File struct {
	Path     string
	Contents []byte
	Mode     fs.FileMode
	ModTime  time.Time
	Meta     map[string]any
}

// NewFile returns a file with empty metadata.
func NewFile(path string, contents []byte) *File {
	return &File{
		Path:     path,
		Contents: contents,
		Mode:     0o644,
		Meta:     make(map[string]any),
	}
}

// Get is the template-friendly metadata lookup.
func (f *File) Get(key string) any {
	return f.Meta[key]
}

func (f *File) MetaString(key string) string {
	switch v := f.Meta[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func (f *File) MetaBool(key string) bool {
	switch v := f.Meta[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "yes"
	}
	return false
}

func (f *File) MetaTime(key string) (time.Time, bool) {
	return toTime(f.Meta[key])
}

// MetaStrings reads a list-valued key. A plain string is split on commas.
func (f *File) MetaStrings(key string) []string {
	var out []string
	switch v := f.Meta[key].(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, v...)
	case []any:
		for _, s := range v {
			if s != nil {
				out = append(out, strings.TrimSpace(fmt.Sprint(s)))
			}
		}
	}
	return out
}

// Clone copies the file and its top-level metadata.
func (f *File) Clone() *File {
	c := *f
	c.Contents = append([]byte(nil), f.Contents...)
	c.Meta = make(map[string]any, len(f.Meta))
	for k, v := range f.Meta {
		c.Meta[k] = v
	}
	return &c
}

func (f *File) String() string {
	b := new(bytes.Buffer)
	b.WriteString(f.Path)
	if title := f.MetaString("title"); title != "" {
		b.WriteString(" (title: ")
		b.WriteString(title)
		b.WriteString(")")
	}
	if d, ok := f.MetaTime("date"); ok {
		b.WriteString(" ")
		b.WriteString(d.Format("2006-01-02"))
	}
	return b.String()
}

// Files maps slash-separated paths, relative to the source directory, to
// their file.
type Files map[string]*File

// Add stores f under its Path.
func (fs Files) Add(f *File) {
	fs[f.Path] = f
}

// Rename moves a file to a new key and keeps its Path in sync.
func (fs Files) Rename(from, to string) {
	f, ok := fs[from]
	if !ok || from == to {
		return
	}
	delete(fs, from)
	f.Path = to
	fs[to] = f
}

// Sorted returns the keys in lexical order.
func (fs Files) Sorted() []string {
	keys := make([]string, 0, len(fs))
	for k := range fs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
