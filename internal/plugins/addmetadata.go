package plugins

import (
	"context"

	"github.com/thomas11/blogsmith/internal/smith"
)

// AddMetadata exposes the global metadata to every file as "meta".
func AddMetadata() smith.Plugin {
	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		for _, f := range files {
			f.Meta["meta"] = s.Metadata
		}
		return nil
	}
}
