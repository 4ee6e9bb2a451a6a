package plugins

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Metadata parses JSON or YAML files from the tree into the global metadata,
// one key per file. The files stay in the tree; drop them with Ignore.
func Metadata(sources map[string]string) smith.Plugin {
	return func(_ context.Context, files smith.Files, s *smith.Smith) error {
		for key, path := range sources {
			f, ok := files[path]
			if !ok {
				return fmt.Errorf("metadata %v: file %v not found", key, path)
			}
			var data any
			if err := yaml.Unmarshal(f.Contents, &data); err != nil {
				return fmt.Errorf("metadata %v: parsing %v: %w", key, path, err)
			}
			s.Metadata[key] = data
		}
		return nil
	}
}
