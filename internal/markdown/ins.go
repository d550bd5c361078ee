package markdown

import (
	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindInserted is the node kind of ++inserted++ text.
var KindInserted = gast.NewNodeKind("Inserted")

// Inserted is an inline node rendered as <ins>.
type Inserted struct {
	gast.BaseInline
}

// Kind implements ast.Node.
func (n *Inserted) Kind() gast.NodeKind { return KindInserted }

// Dump implements ast.Node.
func (n *Inserted) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, nil, nil)
}

type insDelimiterProcessor struct{}

func (p *insDelimiterProcessor) IsDelimiter(b byte) bool { return b == '+' }

func (p *insDelimiterProcessor) CanOpenCloser(opener, closer *parser.Delimiter) bool {
	return opener.Char == closer.Char
}

func (p *insDelimiterProcessor) OnMatch(consumes int) gast.Node {
	return &Inserted{}
}

var insProcessor = &insDelimiterProcessor{}

type insParser struct{}

func (s *insParser) Trigger() []byte { return []byte{'+'} }

// Parse accepts exactly two plus signs as a delimiter run.
func (s *insParser) Parse(parent gast.Node, block text.Reader, pc parser.Context) gast.Node {
	before := block.PrecendingCharacter()
	line, segment := block.PeekLine()
	node := parser.ScanDelimiter(line, before, 2, insProcessor)
	if node == nil || node.OriginalLength != 2 || before == '+' {
		return nil
	}
	node.Segment = segment.WithStop(segment.Start + node.OriginalLength)
	block.Advance(node.OriginalLength)
	pc.PushDelimiter(node)
	return node
}

func (s *insParser) CloseBlock(parent gast.Node, pc parser.Context) {}

type insRenderer struct{}

func (r *insRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindInserted, r.render)
}

func (r *insRenderer) render(w util.BufWriter, _ []byte, _ gast.Node, entering bool) (gast.WalkStatus, error) {
	if entering {
		_, _ = w.WriteString("<ins>")
	} else {
		_, _ = w.WriteString("</ins>")
	}
	return gast.WalkContinue, nil
}

type insExtension struct{}

// Ins enables ++inserted++ text.
var Ins goldmark.Extender = &insExtension{}

func (e *insExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(&insParser{}, 500)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&insRenderer{}, 500)))
}
