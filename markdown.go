package liquidmark

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ParseDocument parses Markdown source with goldmark and adapts the result
// into a host tree the engine can process. Consecutive text runs under one
// parent are merged into a single text node (goldmark emits one run per
// line) so constructs split across soft line breaks stay scannable. Code
// blocks become opaque "code" leaves, never tokenized.
func ParseDocument(source []byte) *Node {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))
	idx := newLineIndex(source)
	return convertNode(root, source, idx)
}

// lineIndex maps byte offsets to line/column positions.
type lineIndex struct {
	starts []int // byte offset of each line start
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

func (li *lineIndex) position(offset int) Position {
	line := sort.Search(len(li.starts), func(i int) bool {
		return li.starts[i] > offset
	}) - 1
	return Position{
		Line:   line + 1,
		Column: offset - li.starts[line] + 1,
		Offset: offset,
	}
}

func convertNode(n gast.Node, source []byte, idx *lineIndex) *Node {
	switch t := n.(type) {
	case *gast.FencedCodeBlock:
		node := codeNode(n, source, idx)
		if t.Info != nil {
			info := string(t.Info.Segment.Value(source))
			lang, file := parseFenceInfo(info)
			if lang != "" {
				node.Meta = map[string]string{"language": lang}
			}
			if file != "" {
				if node.Meta == nil {
					node.Meta = map[string]string{}
				}
				node.Meta["file"] = file
			}
		}
		return node
	case *gast.CodeBlock:
		return codeNode(n, source, idx)
	case *gast.String:
		return &Node{Type: NodeText, Value: string(t.Value)}
	case *gast.Text:
		seg := t.Segment
		return textNode(source, seg.Start, seg.Stop, idx)
	}

	node := &Node{Type: kindType(n.Kind())}
	if span := blockSpan(n, idx); span != nil {
		node.Span = span
	}
	node.Children = convertChildren(n, source, idx)
	return node
}

// convertChildren converts a node's children, merging runs of consecutive
// text siblings into one text node covering the source between the first
// run's start and the last run's stop.
func convertChildren(n gast.Node, source []byte, idx *lineIndex) []*Node {
	var out []*Node
	c := n.FirstChild()
	for c != nil {
		t, ok := c.(*gast.Text)
		if !ok {
			out = append(out, convertNode(c, source, idx))
			c = c.NextSibling()
			continue
		}
		start, stop := t.Segment.Start, t.Segment.Stop
		next := c.NextSibling()
		for next != nil {
			nt, isText := next.(*gast.Text)
			if !isText {
				break
			}
			stop = nt.Segment.Stop
			next = next.NextSibling()
		}
		if stop > start {
			out = append(out, textNode(source, start, stop, idx))
		}
		c = next
	}
	return out
}

func textNode(source []byte, start, stop int, idx *lineIndex) *Node {
	return &Node{
		Type:  NodeText,
		Value: string(source[start:stop]),
		Span: &Span{
			Start: idx.position(start),
			End:   idx.position(stop),
		},
	}
}

// codeNode flattens a code block's lines into one opaque leaf.
func codeNode(n gast.Node, source []byte, idx *lineIndex) *Node {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	node := &Node{Type: "code", Value: sb.String()}
	if span := blockSpan(n, idx); span != nil {
		node.Span = span
	}
	return node
}

// blockSpan derives a span from a block node's source lines, when any.
func blockSpan(n gast.Node, idx *lineIndex) *Span {
	if n.Type() == gast.TypeInline {
		return nil
	}
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return nil
	}
	return &Span{
		Start: idx.position(lines.At(0).Start),
		End:   idx.position(lines.At(lines.Len() - 1).Stop),
	}
}

// kindType maps a goldmark node kind to the adapter's camelCase type names:
// Document -> document, ListItem -> listItem, ...
func kindType(k gast.NodeKind) NodeType {
	s := k.String()
	return NodeType(strings.ToLower(s[:1]) + s[1:])
}

var fenceFileKV = regexp.MustCompile(`file\s*=\s*"([^"]+)"`)

// parseFenceInfo splits a fence info string into its language word and an
// optional file="..." annotation.
func parseFenceInfo(info string) (lang, file string) {
	parts := strings.Fields(info)
	if len(parts) > 0 {
		lang = parts[0]
	}
	if m := fenceFileKV.FindStringSubmatch(info); len(m) == 2 {
		file = m[1]
	}
	return
}
