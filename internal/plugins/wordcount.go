package plugins

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/thomas11/blogsmith/internal/smith"
)

type WordCountOptions struct {
	CountKey       string
	ReadingTimeKey string
	// Speed is in words per minute.
	Speed int
	// Seconds adds the seconds to the reading time.
	Seconds bool
	// Raw stores the reading time as a number of minutes instead of text.
	Raw bool
}

// WordCount counts the words of every HTML file's text and estimates its
// reading time.
func WordCount(opts WordCountOptions) smith.Plugin {
	if opts.CountKey == "" {
		opts.CountKey = "word_count"
	}
	if opts.ReadingTimeKey == "" {
		opts.ReadingTimeKey = "reading_time"
	}
	if opts.Speed <= 0 {
		opts.Speed = 200
	}

	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		for k, f := range files {
			if !strings.HasSuffix(k, ".html") {
				continue
			}
			words, err := countWords(f.Contents)
			if err != nil {
				return fmt.Errorf("%v: %w", k, err)
			}
			f.Meta[opts.CountKey] = words
			f.Meta[opts.ReadingTimeKey] = readingTime(words, opts)
		}
		return nil
	}
}

func readingTime(words int, opts WordCountOptions) any {
	secondsTotal := max(words*60/opts.Speed, 60)
	minutes := max((words+opts.Speed-1)/opts.Speed, 1)

	switch {
	case opts.Raw && opts.Seconds:
		return secondsTotal
	case opts.Raw:
		return minutes
	case opts.Seconds:
		return fmt.Sprintf("%d min %d sec", secondsTotal/60, secondsTotal%60)
	}
	return fmt.Sprintf("%d min", minutes)
}

// countWords counts whitespace separated words outside of tags, skipping
// scripts and styles.
func countWords(content []byte) (int, error) {
	z := html.NewTokenizer(bytes.NewReader(content))
	skip := 0
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return 0, err
			}
			return n, nil
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawText(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawText(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				n += len(strings.Fields(string(z.Text())))
			}
		}
	}
}

func isRawText(tag []byte) bool {
	return string(tag) == "script" || string(tag) == "style"
}
