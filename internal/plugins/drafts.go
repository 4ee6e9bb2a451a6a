package plugins

import (
	"context"
	"log/slog"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Drafts removes files flagged "draft: true" unless include is set.
func Drafts(include bool) smith.Plugin {
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		if include {
			return nil
		}
		for _, k := range files.Sorted() {
			if files[k].MetaBool("draft") {
				slog.Debug("Skipping draft", "file", k)
				delete(files, k)
			}
		}
		return nil
	}
}
