package markdown

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindBox is the node kind of a "::: box" container.
var KindBox = ast.NewNodeKind("Box")

// BoxNode is a titled card:
//
//	::: box This is a title
//	Here is some content
//	:::
type BoxNode struct {
	ast.BaseBlock
	Title []byte
}

func (n *BoxNode) Kind() ast.NodeKind { return KindBox }

func (n *BoxNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Title": string(n.Title)}, nil)
}

var boxOpen = regexp.MustCompile(`^:::\s*box\s+(.*)$`)

var boxFence = []byte(":::")

type boxParser struct{}

func (p *boxParser) Trigger() []byte { return []byte{':'} }

func (p *boxParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 {
		return nil, parser.NoChildren
	}
	m := boxOpen.FindSubmatch(bytes.TrimSpace(line[pos:]))
	if m == nil {
		return nil, parser.NoChildren
	}
	node := &BoxNode{Title: append([]byte(nil), bytes.TrimSpace(m[1])...)}
	advanceLine(reader, line, segment)
	return node, parser.HasChildren
}

func (p *boxParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if bytes.Equal(bytes.TrimSpace(line), boxFence) {
		advanceLine(reader, line, segment)
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

// Close marks every paragraph in the card as card text.
func (p *boxParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindParagraph {
			n.SetAttributeString("class", []byte("card-text"))
		}
		return ast.WalkContinue, nil
	})
}

func (p *boxParser) CanInterruptParagraph() bool { return true }

func (p *boxParser) CanAcceptIndentedLine() bool { return false }

// advanceLine consumes the line but leaves its newline so the parser sees
// the rest of it as blank.
func advanceLine(reader text.Reader, line []byte, segment text.Segment) {
	n := segment.Len()
	if len(line) > 0 && line[len(line)-1] == '\n' {
		n--
	}
	reader.Advance(n)
}

type boxRenderer struct{}

func (r *boxRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindBox, r.renderBox)
}

func (r *boxRenderer) renderBox(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if entering {
		n := node.(*BoxNode)
		_, _ = w.WriteString("<div class=\"card\"><div class=\"card-block\">\n")
		_, _ = w.WriteString("<h4 class=\"card-title\">")
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_, _ = w.WriteString("</h4>\n")
	} else {
		_, _ = w.WriteString("</div></div>\n")
	}
	return ast.WalkContinue, nil
}

type boxExtension struct{}

// Box adds "::: box Title" containers rendered as Bootstrap cards.
var Box goldmark.Extender = &boxExtension{}

func (e *boxExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithBlockParsers(util.Prioritized(&boxParser{}, 50)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&boxRenderer{}, 50)))
}
