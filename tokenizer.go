package liquidmark

import (
	"strings"

	"go.uber.org/zap"
)

const (
	exprOpen  = "{{"
	exprClose = "}}"
	tagOpen   = "{%"
	tagClose  = "%}"
)

// containsConstruct reports whether s has any candidate construct opener.
func containsConstruct(s string) bool {
	return strings.Contains(s, exprOpen) || strings.Contains(s, tagOpen)
}

// advance returns the position after consuming s from pos. It walks bytes,
// not runes: offsets must stay exact even for invalid UTF-8 input, and
// columns use the same byte units as the markdown adapter's line index.
func advance(pos Position, s string) Position {
	for i := 0; i < len(s); i++ {
		pos.Offset++
		if s[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}

// splitConstructs splits one text span into an ordered sequence of text,
// expression and tag nodes whose raw contents concatenate back to the
// original span. base is the document-absolute position of the span's first
// byte. Unterminated constructs degrade to literal text and abandon the
// remainder of the span.
//
// A block-start tag whose matching end lies inside the same span is emitted
// as one tag node spanning the whole block; the interior is split
// recursively into that node's children, with the end tag as the last
// child, so later stages see every nested construct without re-scanning
// raw text.
func splitConstructs(text string, base Position, tags *TagTable) []*Node {
	var nodes []*Node
	pos := base

	emitText := func(s string) {
		if s == "" {
			return
		}
		end := advance(pos, s)
		nodes = append(nodes, &Node{
			Type:  NodeText,
			Value: s,
			Span:  &Span{Start: pos, End: end},
		})
		pos = end
	}

	i := 0
	for i < len(text) {
		start, isTag := nextConstruct(text, i)
		if start < 0 {
			emitText(text[i:])
			break
		}
		emitText(text[i:start])

		if !isTag {
			closeAt := strings.Index(text[start+2:], exprClose)
			if closeAt < 0 {
				// unterminated {{: the rest of the span is literal text
				emitText(text[start:])
				break
			}
			end := start + 2 + closeAt + len(exprClose)
			raw := text[start:end]
			n := newConstructNode(KindExpression, raw, pos)
			pos = n.Span.End
			nodes = append(nodes, n)
			i = end
			continue
		}

		closeAt := strings.Index(text[start+2:], tagClose)
		if closeAt < 0 {
			// unterminated {%: same degradation as expressions
			emitText(text[start:])
			break
		}
		openEnd := start + 2 + closeAt + len(tagClose)
		name := ExtractTagName(text[start+2 : openEnd-2])

		if tags.IsBlockStart(name) {
			if endStart, endEnd, ok := findBlockEnd(text, openEnd, name); ok {
				n := newBlockNode(text, start, openEnd, endStart, endEnd, pos, tags)
				pos = n.Span.End
				nodes = append(nodes, n)
				i = endEnd
				continue
			}
			// no matching end in this span: only the opening tag becomes a
			// node, nothing after it is consumed speculatively
		}

		n := newConstructNode(KindTag, text[start:openEnd], pos)
		pos = n.Span.End
		nodes = append(nodes, n)
		i = openEnd
	}
	return nodes
}

// nextConstruct finds the nearer of the next "{{" or "{%" at or after i.
// Returns -1 when neither occurs.
func nextConstruct(text string, i int) (start int, isTag bool) {
	exprAt := strings.Index(text[i:], exprOpen)
	tagAt := strings.Index(text[i:], tagOpen)
	switch {
	case exprAt < 0 && tagAt < 0:
		return -1, false
	case tagAt < 0, exprAt >= 0 && exprAt < tagAt:
		return i + exprAt, false
	default:
		return i + tagAt, true
	}
}

// findBlockEnd scans forward from `from` for the end tag matching an
// already-consumed "{% <name> ... %}" opener, counting nested same-name
// blocks. Returns the end tag's byte range, or ok=false when the span runs
// out first.
func findBlockEnd(text string, from int, name string) (endStart, endEnd int, ok bool) {
	depth := 1
	i := from
	for {
		open := strings.Index(text[i:], tagOpen)
		if open < 0 {
			return 0, 0, false
		}
		tStart := i + open
		closeAt := strings.Index(text[tStart+2:], tagClose)
		if closeAt < 0 {
			return 0, 0, false
		}
		tEnd := tStart + 2 + closeAt + len(tagClose)
		switch ExtractTagName(text[tStart+2 : tEnd-2]) {
		case name:
			depth++
		case "end" + name:
			depth--
			if depth == 0 {
				return tStart, tEnd, true
			}
		}
		i = tEnd
	}
}

// newConstructNode builds an expression or tag node for raw located at pos.
// Content fields beyond Raw/Original are left to the later processors.
func newConstructNode(kind ConstructKind, raw string, pos Position) *Node {
	t := NodeExpression
	if kind == KindTag {
		t = NodeTag
	}
	end := advance(pos, raw)
	return &Node{
		Type:  t,
		Value: raw,
		Span:  &Span{Start: pos, End: end},
		Construct: &Construct{
			Kind:     kind,
			Raw:      raw,
			Original: raw,
			Line:     pos.Line,
			Column:   pos.Column,
		},
	}
}

// newBlockNode builds the composite node for a block whose start and
// matching end both lie in the current span. The node's raw content is the
// whole block; its children are the recursively split interior followed by
// the end tag node.
func newBlockNode(text string, start, openEnd, endStart, endEnd int, pos Position, tags *TagTable) *Node {
	node := newConstructNode(KindTag, text[start:endEnd], pos)

	interiorPos := advance(pos, text[start:openEnd])
	node.Children = splitConstructs(text[openEnd:endStart], interiorPos, tags)

	endPos := advance(interiorPos, text[openEnd:endStart])
	node.Children = append(node.Children, newConstructNode(KindTag, text[endStart:endEnd], endPos))
	return node
}

// tokenizeTree replaces every splittable text node under root with the
// sequence splitConstructs produced for it. A text node with no construct
// openers, or one that splits into a single unchanged text node, is kept
// as-is and not re-visited.
func tokenizeTree(root *Node, tags *TagTable, log *zap.Logger) {
	var walk func(n *Node)
	walk = func(n *Node) {
		if len(n.Children) == 0 {
			return
		}
		out := make([]*Node, 0, len(n.Children))
		for _, child := range n.Children {
			if child.Type != NodeText || !containsConstruct(child.Value) {
				walk(child)
				out = append(out, child)
				continue
			}
			parts := splitConstructs(child.Value, startPosition(child), tags)
			if len(parts) == 1 && parts[0].Type == NodeText {
				out = append(out, child)
				continue
			}
			log.Debug("split text node",
				zap.Int("parts", len(parts)),
				zap.Int("line", startPosition(child).Line))
			out = append(out, parts...)
		}
		n.Children = out
	}
	walk(root)
}
