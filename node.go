package liquidmark

import (
	"github.com/osteele/liquid"
)

// NodeType identifies the kind of a host-tree node. The markdown adapter
// produces structural types ("document", "paragraph", "heading", "code", ...);
// the engine only ever splits NodeText and only ever inserts NodeExpression
// and NodeTag.
type NodeType string

const (
	NodeDocument   NodeType = "document"
	NodeText       NodeType = "text"
	NodeExpression NodeType = "liquidExpression"
	NodeTag        NodeType = "liquidTag"
)

// Position is a location in the original source document.
// Line and Column are 1-based, with columns measured in bytes;
// Offset is a byte offset from the start.
type Position struct {
	Line   int
	Column int
	Offset int
}

// Span is the source range covered by a node, start inclusive, end exclusive.
type Span struct {
	Start Position
	End   Position
}

// Node is one node of the host document tree. The tree is owned by the
// caller; the engine mutates it in place for the duration of one Process
// call and never retains references afterwards.
type Node struct {
	Type     NodeType
	Value    string // literal text for NodeText and non-splittable leaves
	Children []*Node
	Span     *Span

	// Construct is non-nil exactly for NodeExpression and NodeTag nodes.
	Construct *Construct

	// Meta carries adapter-level annotations (e.g. fenced-code language and
	// info-string metadata). Never touched by the engine.
	Meta map[string]string
}

// ConstructKind distinguishes the two embedded construct forms.
type ConstructKind string

const (
	KindExpression ConstructKind = "expression"
	KindTag        ConstructKind = "tag"
)

// ParseOutcome is the tri-state result of the inner template parse.
type ParseOutcome int

const (
	OutcomeNone   ParseOutcome = iota // not yet attempted
	OutcomeOK                         // parsed, Template holds the result
	OutcomeFailed                     // failed, Err and Diag hold the details
)

// UnknownTagName is recorded when a tag has no leading word at all,
// e.g. "{% %}".
const UnknownTagName = "unknown"

// Diagnostic is the failure-side payload of a parse outcome.
type Diagnostic struct {
	Kind    ConstructKind
	TagName string // tags only
	Content string
	Error   string
}

// Construct carries every per-construct annotation the pipeline produces.
// Raw/Original/Inner are set by the tokenizer, the role fields by the tag
// content processor, and the block fields by the associator.
type Construct struct {
	Kind ConstructKind

	Raw      string // full construct including delimiters, as in source
	Original string // copy of Raw, stable through later mutation
	Inner    string // Raw minus delimiters and surrounding whitespace

	// Outcome of the inner template parse. Template and Diag are mutually
	// exclusive: exactly one of them is set once Outcome leaves OutcomeNone.
	Outcome  ParseOutcome
	Template *liquid.Template
	Diag     *Diagnostic
	Err      string

	// Tag role, resolved once from the tag tables and never revised by
	// pairing results. All false means a standalone tag.
	TagName      string
	BlockStart   bool
	BlockEnd     bool
	Continuation bool

	// Block association. BlockID is shared by every member of one block
	// instance; MatchingBlockID is set on end and continuation nodes to the
	// identifier of the frame they closed or joined.
	BlockID         string
	MatchingBlockID string

	// Related links block members symmetrically: the start node lists its
	// continuations and end, each of those lists the start node.
	Related []*Node

	// Convenience copies of the start position, for diagnostics.
	Line   int
	Column int
}

// fail records a failed outcome with its diagnostic stub. Any previously
// stored parse result is discarded so Template and Diag never coexist.
func (c *Construct) fail(msg string) {
	c.Outcome = OutcomeFailed
	c.Template = nil
	c.Err = msg
	c.Diag = &Diagnostic{
		Kind:    c.Kind,
		TagName: c.TagName,
		Content: c.Inner,
		Error:   msg,
	}
}

// succeed records a successful outcome. tpl may be nil for block-role tags,
// whose validity is structural rather than parseable in isolation.
func (c *Construct) succeed(tpl *liquid.Template) {
	c.Outcome = OutcomeOK
	c.Template = tpl
	c.Diag = nil
	c.Err = ""
}

// Standalone reports whether the tag has no block role.
func (c *Construct) Standalone() bool {
	return c.Kind == KindTag && !c.BlockStart && !c.BlockEnd && !c.Continuation
}

// WalkFunc visits one node. Returning false stops descent into its children.
type WalkFunc func(n *Node) bool

// Walk traverses the tree in document (depth-first, pre-order) order.
func Walk(n *Node, fn WalkFunc) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Constructs collects every construct node under root in document order.
func Constructs(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		if n.Construct != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Tags collects every tag node under root in document order.
func Tags(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		if n.Type == NodeTag {
			out = append(out, n)
		}
		return true
	})
	return out
}

// startPosition returns the node's start position, defaulting to the
// document origin when the node carries no span.
func startPosition(n *Node) Position {
	if n.Span != nil {
		return n.Span.Start
	}
	return Position{Line: 1, Column: 1}
}
