package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas11/blogsmith/internal/markdown"
	"github.com/thomas11/blogsmith/internal/smith"
)

// Markdown renders every .md file to HTML and renames it to .html.
func Markdown(r markdown.Renderer) smith.Plugin {
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		for _, k := range files.Sorted() {
			if !isMarkdown(k) {
				continue
			}
			f := files[k]
			html, err := r.Render(f.Contents)
			if err != nil {
				return fmt.Errorf("%v: %w", k, err)
			}
			f.Contents = html
			files.Rename(k, k[:strings.LastIndexByte(k, '.')]+".html")
		}
		return nil
	}
}

func isMarkdown(path string) bool {
	for _, ext := range []string{".md", ".markdown", ".mdown"} {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return true
		}
	}
	return false
}
