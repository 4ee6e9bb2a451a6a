package plugins

import (
	"context"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Ignore drops every file matching patterns.
func Ignore(patterns ...string) (smith.Plugin, error) {
	m, err := smith.NewMatcher(patterns...)
	if err != nil {
		return nil, err
	}
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		for _, k := range m.Filter(files) {
			delete(files, k)
		}
		return nil
	}, nil
}
