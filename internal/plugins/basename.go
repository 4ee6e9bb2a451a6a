package plugins

import (
	"context"
	"path"
	"strings"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Basename sets "basename" to the file name without its extension.
func Basename() smith.Plugin {
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		for k, f := range files {
			base := path.Base(k)
			f.Meta["basename"] = strings.TrimSuffix(base, path.Ext(base))
		}
		return nil
	}
}
