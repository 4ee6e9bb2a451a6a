package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath is the node kind of $-delimited TeX.
var KindMath = ast.NewNodeKind("Math")

// MathNode holds TeX source untouched by markdown. Display math was written
// as $$...$$.
type MathNode struct {
	ast.BaseInline
	Display bool
	Value   []byte
}

func (n *MathNode) Kind() ast.NodeKind { return KindMath }

func (n *MathNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

type mathParser struct{}

func (p *mathParser) Trigger() []byte { return []byte{'$'} }

func (p *mathParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	delim := []byte("$")
	if bytes.HasPrefix(line, []byte("$$")) {
		delim = []byte("$$")
	}
	rest := line[len(delim):]
	end := bytes.Index(rest, delim)
	if end <= 0 {
		return nil
	}
	block.Advance(len(delim) + end + len(delim))
	return &MathNode{
		Display: len(delim) == 2,
		Value:   append([]byte(nil), rest[:end]...),
	}
}

type mathRenderer struct{}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, r.renderMath)
}

// MathJax picks up \( \) and \[ \] delimiters.
func (r *mathRenderer) renderMath(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathNode)
	open, closing := `\(`, `\)`
	if n.Display {
		open, closing = `\[`, `\]`
	}
	_, _ = w.WriteString(open)
	_, _ = w.Write(util.EscapeHTML(n.Value))
	_, _ = w.WriteString(closing)
	return ast.WalkSkipChildren, nil
}

type mathExtension struct{}

// Math keeps $x$ and $$x$$ away from emphasis and typography and emits
// MathJax delimiters.
var Math goldmark.Extender = &mathExtension{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(&mathParser{}, 50)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&mathRenderer{}, 50)))
}
