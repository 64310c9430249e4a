package liquidmark

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// frame is the associator's in-progress record of one open block instance.
type frame struct {
	start   *Node
	blockID string
	members []*Node // start, then continuations in order, then the end
}

// associator pairs block tags by walking the document's tag nodes in order.
// All state is per-invocation; nothing here outlives one Process call.
type associator struct {
	tags *TagTable
	log  *zap.Logger
	open map[string][]*frame // one stack of open frames per block type
}

func newAssociator(tags *TagTable, log *zap.Logger) *associator {
	return &associator{
		tags: tags,
		log:  log,
		open: map[string][]*frame{},
	}
}

// run processes tag nodes strictly in document order, then fails every
// start tag whose frame is still open.
func (a *associator) run(tagNodes []*Node) {
	for _, n := range tagNodes {
		c := n.Construct
		switch {
		case c.BlockStart:
			a.openBlock(n)
		case c.BlockEnd:
			a.closeBlock(n)
		case c.Continuation:
			a.continueBlock(n)
		}
	}
	a.finish()
}

// newBlockID mints a collision-resistant identifier for one block instance.
func newBlockID(name string) string {
	return name + "-" + uuid.NewString()
}

func (a *associator) openBlock(n *Node) {
	c := n.Construct
	f := &frame{
		start:   n,
		blockID: newBlockID(c.TagName),
		members: []*Node{n},
	}
	c.BlockID = f.blockID
	a.open[c.TagName] = append(a.open[c.TagName], f)
	a.log.Debug("open block",
		zap.String("tag", c.TagName),
		zap.String("blockID", f.blockID))
}

func (a *associator) closeBlock(n *Node) {
	c := n.Construct
	typ := a.tags.BlockType(c.TagName)
	stack := a.open[typ]
	if len(stack) == 0 {
		c.fail(fmt.Sprintf("End tag '%s' without a matching start tag", c.TagName))
		a.log.Debug("orphan end tag", zap.String("tag", c.TagName))
		return
	}

	// innermost frame of this type: top of its stack
	f := stack[len(stack)-1]
	a.open[typ] = stack[:len(stack)-1]

	c.BlockID = f.blockID
	c.MatchingBlockID = f.blockID
	f.members = append(f.members, n)
	c.succeed(nil)

	// symmetric links: the start node lists its continuations and end,
	// each of those lists the start node
	start := f.start.Construct
	for _, m := range f.members[1:] {
		start.Related = append(start.Related, m)
		m.Construct.Related = []*Node{f.start}
	}
	start.succeed(nil)
	a.log.Debug("close block",
		zap.String("tag", c.TagName),
		zap.String("blockID", f.blockID),
		zap.Int("members", len(f.members)))
}

func (a *associator) continueBlock(n *Node) {
	c := n.Construct
	target := a.tags.ContinuationTarget(c.TagName)
	if target == "" {
		c.fail(fmt.Sprintf("Unknown continuation tag type: '%s'", c.TagName))
		return
	}
	stack := a.open[target]
	if len(stack) == 0 {
		c.fail(fmt.Sprintf("Continuation tag '%s' without a matching block start", c.TagName))
		a.log.Debug("orphan continuation", zap.String("tag", c.TagName))
		return
	}
	f := stack[len(stack)-1]
	c.BlockID = f.blockID
	c.MatchingBlockID = f.blockID
	f.members = append(f.members, n)
	c.succeed(nil)
}

// finish fails the start tag of every frame left open after the scan.
func (a *associator) finish() {
	for typ, stack := range a.open {
		for _, f := range stack {
			f.start.Construct.fail(fmt.Sprintf("Unclosed block tag '%s'", typ))
			a.log.Debug("unclosed block",
				zap.String("tag", typ),
				zap.String("blockID", f.blockID))
		}
	}
}

// validateBlockStructure is the safety net behind the associator: it
// independently recounts start and end tags per block type and, where the
// counts disagree, marks whichever nodes still lack an association. Nodes
// the associator paired correctly are never touched.
func validateBlockStructure(tagNodes []*Node, tags *TagTable) {
	starts := map[string][]*Node{}
	ends := map[string][]*Node{}
	for _, n := range tagNodes {
		c := n.Construct
		switch {
		case c.BlockStart:
			starts[c.TagName] = append(starts[c.TagName], n)
		case c.BlockEnd:
			typ := tags.BlockType(c.TagName)
			ends[typ] = append(ends[typ], n)
		}
	}

	for typ, list := range starts {
		if len(list) == len(ends[typ]) {
			continue
		}
		for _, n := range list {
			c := n.Construct
			if c.Outcome == OutcomeFailed {
				continue
			}
			if c.BlockID == "" || !hasEndPartner(c) {
				c.fail(fmt.Sprintf("Unclosed block tag '%s'", typ))
			}
		}
	}
	for typ, list := range ends {
		if len(list) == len(starts[typ]) {
			continue
		}
		for _, n := range list {
			c := n.Construct
			if c.Outcome == OutcomeFailed {
				continue
			}
			if c.BlockID == "" {
				c.fail(fmt.Sprintf("End tag '%s' without a matching start tag", c.TagName))
			}
		}
	}
}

// hasEndPartner reports whether a start tag's related nodes include an end
// tag, i.e. the block was actually closed.
func hasEndPartner(c *Construct) bool {
	for _, m := range c.Related {
		if m.Construct != nil && m.Construct.BlockEnd {
			return true
		}
	}
	return false
}
