package plugins

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomas11/blogsmith/internal/smith"
)

// ErrLayoutNotFound is returned when a file asks for a layout that does not
// exist in the layout directory.
var ErrLayoutNotFound = errors.New("layout not found")

type LayoutOptions struct {
	Pattern []string
	// Default applies to matching HTML files that name no layout.
	Default   string
	Directory string
	Funcs     template.FuncMap
}

// Layouts wraps matching files in html/template layouts. A layout can use
// everything in the global and file metadata; the file itself is available
// as "contents". Templates in <Directory>/partials are parsed with every
// layout.
func Layouts(opts LayoutOptions) (smith.Plugin, error) {
	patterns := opts.Pattern
	if len(patterns) == 0 {
		patterns = []string{"**"}
	}
	m, err := smith.NewMatcher(patterns...)
	if err != nil {
		return nil, err
	}

	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		engine := newLayoutEngine(opts.Directory, opts.Funcs)
		for _, k := range m.Filter(files) {
			f := files[k]
			layout := f.MetaString("layout")
			if layout == "" {
				if opts.Default == "" || !strings.HasSuffix(k, ".html") {
					continue
				}
				layout = opts.Default
			}

			data := templateData(f, s)
			data["contents"] = template.HTML(f.Contents)

			var buf bytes.Buffer
			if err := engine.render(layout, data, &buf); err != nil {
				return fmt.Errorf("%v: %w", k, err)
			}
			f.Contents = buf.Bytes()
		}
		return nil
	}, nil
}

type layoutEngine struct {
	dir           string
	funcs         template.FuncMap
	templateCache map[string]*template.Template
}

func newLayoutEngine(dir string, funcs template.FuncMap) *layoutEngine {
	return &layoutEngine{
		dir:           dir,
		funcs:         funcs,
		templateCache: make(map[string]*template.Template),
	}
}

func (le *layoutEngine) render(layout string, data any, buf *bytes.Buffer) error {
	t, err := le.getTemplate(layout)
	if err != nil {
		return err
	}
	return t.ExecuteTemplate(buf, filepath.Base(layout), data)
}

func (le *layoutEngine) getTemplate(layout string) (*template.Template, error) {
	if t, ok := le.templateCache[layout]; ok {
		return t, nil
	}

	file := filepath.Join(le.dir, filepath.FromSlash(layout))
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("%v: %w", layout, ErrLayoutNotFound)
	}

	t, err := template.New(filepath.Base(layout)).Funcs(le.funcs).ParseFiles(file)
	if err != nil {
		return nil, err
	}
	partials, err := filepath.Glob(filepath.Join(le.dir, "partials", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(partials) > 0 {
		if t, err = t.ParseFiles(partials...); err != nil {
			return nil, err
		}
	}

	le.templateCache[layout] = t
	return t, nil
}
