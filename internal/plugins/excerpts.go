package plugins

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/thomas11/blogsmith/internal/smith"
)

// Excerpts sets "excerpt" to the first paragraph of every HTML file, unless
// the front matter already provides one.
func Excerpts() smith.Plugin {
	return func(_ context.Context, files smith.Files, _ *smith.Smith) error {
		for k, f := range files {
			if !strings.HasSuffix(k, ".html") || f.MetaString("excerpt") != "" {
				continue
			}
			excerpt, err := firstParagraph(f.Contents)
			if err != nil {
				return fmt.Errorf("%v: %w", k, err)
			}
			f.Meta["excerpt"] = excerpt
		}
		return nil
	}
}

func firstParagraph(content []byte) (string, error) {
	nodes, err := html.ParseFragment(bytes.NewReader(content), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return "", err
	}

	var p *html.Node
	var find func(n *html.Node)
	find = func(n *html.Node) {
		if p != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			p = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	for _, n := range nodes {
		find(n)
	}
	if p == nil {
		return "", nil
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, p); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
