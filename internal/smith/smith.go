// Package smith is the plugin host: it reads a source tree into memory, runs
// an ordered list of plugins over it and writes the result out.
package smith

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adrg/frontmatter"

	"github.com/thomas11/blogsmith/internal/metrics"
)

// Plugin transforms the file tree. It may add, remove, rename or rewrite
// files and may read or change the global metadata on s.
type Plugin func(ctx context.Context, files Files, s *Smith) error

type stage struct {
	name   string
	plugin Plugin
}

// Smith holds the pipeline configuration.
type Smith struct {
	Source      string
	Destination string
	// Clean removes Destination before writing.
	Clean    bool
	Metadata map[string]any
	Recorder metrics.Recorder

	stages []stage
}

func New(source, destination string) *Smith {
	return &Smith{
		Source:      source,
		Destination: destination,
		Clean:       true,
		Metadata:    make(map[string]any),
		Recorder:    metrics.NoopRecorder{},
	}
}

// Use appends a named plugin. Plugins run in the order they were added.
func (s *Smith) Use(name string, p Plugin) *Smith {
	s.stages = append(s.stages, stage{name: name, plugin: p})
	return s
}

// Stages lists the plugin names in run order.
func (s *Smith) Stages() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.name
	}
	return names
}

// Read loads every regular file below Source.
func (s *Smith) Read() (Files, error) {
	files := make(Files)
	err := filepath.WalkDir(s.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(s.Source, path)
		if err != nil {
			return err
		}
		f, err := readFile(path, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		files.Add(f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %v: %w", s.Source, err)
	}
	return files, nil
}

func readFile(path, rel string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	f := NewFile(rel, content)
	f.Mode = info.Mode().Perm()
	f.ModTime = info.ModTime()

	if !hasFrontMatter(content) {
		return f, nil
	}
	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(content), &meta)
	if err != nil {
		return nil, fmt.Errorf("front matter in %v: %w", rel, err)
	}
	for k, v := range meta {
		f.Meta[k] = normalizeValue(v)
	}
	f.Contents = body
	return f, nil
}

func hasFrontMatter(content []byte) bool {
	if !utf8.Valid(content) {
		return false
	}
	for _, delim := range []string{"---", "+++", ";;;"} {
		if bytes.HasPrefix(content, []byte(delim+"\n")) || bytes.HasPrefix(content, []byte(delim+"\r\n")) {
			return true
		}
	}
	return false
}

// normalizeValue turns the map[any]any produced by some decoders into
// map[string]any so templates can index it.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeValue(val)
		}
		return m
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeValue(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeValue(val)
		}
		return t
	}
	return v
}

// Run passes files through every plugin. It stops at the first error.
func (s *Smith) Run(ctx context.Context, files Files) error {
	for _, st := range s.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := st.plugin(ctx, files, s); err != nil {
			return fmt.Errorf("plugin %v: %w", st.name, err)
		}
		elapsed := time.Since(start)
		s.recorder().ObservePluginDuration(st.name, elapsed)
		slog.Debug("Plugin finished", "plugin", st.name, "files", len(files), "duration_ms", float64(elapsed.Microseconds())/1000)
	}
	return nil
}

// Write stores files below Destination.
func (s *Smith) Write(files Files) error {
	if s.Clean {
		if err := os.RemoveAll(s.Destination); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(s.Destination, 0o755); err != nil {
		return err
	}

	for _, key := range files.Sorted() {
		f := files[key]
		out, err := s.destPath(key)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		mode := f.Mode
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(out, f.Contents, mode); err != nil {
			return err
		}
	}
	return nil
}

var errOutsideDestination = errors.New("path escapes destination")

func (s *Smith) destPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%v: %w", key, errOutsideDestination)
	}
	return filepath.Join(s.Destination, clean), nil
}

// Process reads and transforms the tree without writing it.
func (s *Smith) Process(ctx context.Context) (Files, error) {
	files, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := s.Run(ctx, files); err != nil {
		return nil, err
	}
	return files, nil
}

// Build reads, transforms and writes the tree.
func (s *Smith) Build(ctx context.Context) (Files, error) {
	start := time.Now()
	files, err := s.Process(ctx)
	if err == nil {
		err = s.Write(files)
	}
	s.recorder().ObserveBuildDuration(time.Since(start))

	switch {
	case errors.Is(err, context.Canceled):
		s.recorder().IncBuildOutcome(metrics.OutcomeCanceled)
	case err != nil:
		s.recorder().IncBuildOutcome(metrics.OutcomeFailed)
	default:
		s.recorder().IncBuildOutcome(metrics.OutcomeSuccess)
		s.recorder().SetFileCount(len(files))
	}
	return files, err
}

func (s *Smith) recorder() metrics.Recorder {
	if s.Recorder == nil {
		return metrics.NoopRecorder{}
	}
	return s.Recorder
}
