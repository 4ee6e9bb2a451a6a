package plugins

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/thomas11/blogsmith/internal/helpers"
	"github.com/thomas11/blogsmith/internal/smith"
)

type DebugOptions struct {
	// Long prints every file's metadata.
	Long bool
	// ShowMarkdown adds the contents of .md files to Long output.
	ShowMarkdown bool
	// Keys prints only these metadata keys per file.
	Keys []string
	// Out defaults to stderr.
	Out io.Writer
}

var debugOmit = map[string]bool{"stats": true, "previous": true, "next": true}

// Debug prints msg and a view of the tree at this point of the pipeline.
func Debug(msg string, opts DebugOptions) smith.Plugin {
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		w := opts.Out
		if w == nil {
			w = os.Stderr
		}
		fmt.Fprintln(w, msg)

		switch {
		case opts.Long:
			for _, k := range files.Sorted() {
				f := files[k]
				fmt.Fprintln(w, "file:", k)
				fmt.Fprintln(w, "data:", inspectMeta(f.Meta))
				if opts.ShowMarkdown && strings.HasSuffix(k, "md") {
					fmt.Fprintln(w, string(f.Contents))
				}
			}
		case len(opts.Keys) > 0:
			for _, k := range files.Sorted() {
				fmt.Fprintln(w, "file:", k)
				for _, key := range opts.Keys {
					fmt.Fprintf(w, "  %v: %v\n", key, files[k].Get(key))
				}
			}
		default:
			fmt.Fprintln(w, files.Sorted())
		}
		return nil
	}
}

func inspectMeta(meta map[string]any) string {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		if !debugOmit[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(helpers.Inspect(meta[k]))
	}
	b.WriteString("}")
	return b.String()
}
