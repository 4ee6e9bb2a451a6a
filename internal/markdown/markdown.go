// Package markdown converts post bodies to HTML. Goldmark is the default
// engine; blackfriday is kept for sites written against its dialect.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/russross/blackfriday/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer turns markdown into HTML.
type Renderer interface {
	Render(in []byte) ([]byte, error)
}

const (
	EngineGoldmark    = "goldmark"
	EngineBlackfriday = "blackfriday"
)

// New returns the renderer for engine. An empty name selects goldmark.
func New(engine string) (Renderer, error) {
	switch strings.ToLower(engine) {
	case "", EngineGoldmark:
		return NewGoldmark(), nil
	case EngineBlackfriday:
		return NewBlackfriday(), nil
	}
	return nil, fmt.Errorf("unknown markdown engine %q", engine)
}

type goldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmark renders with raw HTML passed through, curly quotes, tables,
// heading ids, "::: box Title" cards and $-delimited math.
func NewGoldmark() Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.Typographer,
			Box,
			Math,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &goldmarkRenderer{md: md}
}

func (g *goldmarkRenderer) Render(in []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := g.md.Convert(in, &buf); err != nil {
		return nil, fmt.Errorf("markdown: %w", err)
	}
	return buf.Bytes(), nil
}

const (
	htmlFlags = blackfriday.UseXHTML |
		blackfriday.Smartypants |
		blackfriday.SmartypantsFractions |
		blackfriday.SmartypantsLatexDashes

	extensions = blackfriday.NoIntraEmphasis |
		blackfriday.Tables |
		blackfriday.FencedCode |
		blackfriday.Autolink |
		blackfriday.Strikethrough |
		blackfriday.AutoHeadingIDs
)

type blackfridayRenderer struct {
	params blackfriday.HTMLRendererParameters
}

func NewBlackfriday() Renderer {
	return &blackfridayRenderer{blackfriday.HTMLRendererParameters{Flags: htmlFlags}}
}

func (b *blackfridayRenderer) Render(in []byte) ([]byte, error) {
	r := blackfriday.NewHTMLRenderer(b.params)
	return blackfriday.Run(in, blackfriday.WithRenderer(r), blackfriday.WithExtensions(extensions)), nil
}
