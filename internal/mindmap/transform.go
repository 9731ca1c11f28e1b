package mindmap

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// WelcomeSource is rendered when there is nothing to show yet.
const WelcomeSource = `# ***Chatmarkmap***
- Convert ***AI-generated content*** to ***Mindmap***
  - Ask anything on the left
  - Mindmaps are rendered in ***real-time***
  - Sign in and ***Save to edit***
`

// Node is one mind-map node. Depth is 0 for the root.
type Node struct {
	Content  string  `json:"content"`
	Depth    int     `json:"depth"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) add(child *Node) { n.Children = append(n.Children, child) }

// Transformer turns markdown into a mind-map tree. Headings nest by level,
// list items nest under the closest heading or parent item, and any other
// block becomes a leaf of the current heading. It holds no per-call state
// and is safe for concurrent use.
type Transformer struct {
	md goldmark.Markdown
}

func NewTransformer() *Transformer {
	return &Transformer{md: goldmark.New(goldmark.WithExtensions(extension.GFM))}
}

type frame struct {
	level int
	node  *Node
}

// Transform parses source and returns the tree root. A blank source yields
// the welcome mind-map. When the document has a single top-level node that
// node becomes the root; otherwise the root is an unnamed node.
func (t *Transformer) Transform(source string) *Node {
	if strings.TrimSpace(source) == "" {
		source = WelcomeSource
	}
	src := []byte(source)
	doc := t.md.Parser().Parse(text.NewReader(src))

	root := &Node{}
	stack := []frame{{level: 0, node: root}}
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		top := stack[len(stack)-1].node
		switch v := n.(type) {
		case *ast.Heading:
			for len(stack) > 1 && stack[len(stack)-1].level >= v.Level {
				stack = stack[:len(stack)-1]
			}
			node := &Node{Content: inlineText(v, src)}
			stack[len(stack)-1].node.add(node)
			stack = append(stack, frame{level: v.Level, node: node})
		case *ast.List:
			addList(top, v, src)
		case *ast.ThematicBreak, *ast.HTMLBlock:
		default:
			if s := blockText(n, src); s != "" {
				top.add(&Node{Content: s})
			}
		}
	}

	out := root
	if len(root.Children) == 1 {
		out = root.Children[0]
	}
	setDepth(out, 0)
	return out
}

func addList(parent *Node, list *ast.List, src []byte) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		node := &Node{}
		parent.add(node)
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				addList(node, sub, src)
				continue
			}
			s := blockText(c, src)
			if s == "" {
				continue
			}
			if node.Content == "" {
				node.Content = s
			} else {
				node.add(&Node{Content: s})
			}
		}
	}
}

func blockText(n ast.Node, src []byte) string {
	switch n.(type) {
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		var b strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		return strings.TrimSpace(b.String())
	}
	return inlineText(n, src)
}

// inlineText flattens the inline content of n; emphasis and link markup are dropped.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.AutoLink:
			b.Write(v.Label(src))
			return ast.WalkSkipChildren, nil
		case *ast.List:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func setDepth(n *Node, d int) {
	n.Depth = d
	for _, c := range n.Children {
		setDepth(c, d+1)
	}
}
