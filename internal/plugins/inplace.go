package plugins

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/thomas11/blogsmith/internal/smith"
)

// InPlace runs the contents of matching files through text/template, with
// the file's metadata layered over the global metadata as data. Use it on
// markdown before it is rendered.
func InPlace(patterns []string, funcs template.FuncMap) (smith.Plugin, error) {
	m, err := smith.NewMatcher(patterns...)
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		for _, k := range m.Filter(files) {
			f := files[k]
			t, err := template.New(k).Funcs(funcs).Parse(string(f.Contents))
			if err != nil {
				return fmt.Errorf("%v: %w", k, err)
			}
			var buf bytes.Buffer
			if err := t.Execute(&buf, templateData(f, s)); err != nil {
				return fmt.Errorf("%v: %w", k, err)
			}
			f.Contents = buf.Bytes()
		}
		return nil
	}, nil
}
