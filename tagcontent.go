package liquidmark

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

// processTagContent fills a tag node's content and role fields. Standalone
// tags (assign, include, ...) get a best-effort Liquid parse of their
// reconstructed form; block-role tags are left to the associator, carrying
// only the provisional outcome the policy dictates, because block syntax is
// incomplete outside full-document context and would spuriously fail.
func processTagContent(n *Node, tags *TagTable, liq *liquid.Engine, policy PendingTagPolicy) {
	c := n.Construct
	c.Inner = innerTagContent(c.Raw)
	c.TagName = ExtractTagName(c.Inner)
	c.BlockStart = tags.IsBlockStart(c.TagName)
	c.BlockEnd = tags.IsBlockEnd(c.TagName)
	c.Continuation = tags.IsContinuation(c.TagName)

	if c.Standalone() {
		tpl, err := liq.ParseString(tagOpen + " " + c.Inner + " " + tagClose)
		if err != nil {
			c.fail(err.Error())
			return
		}
		c.succeed(tpl)
		return
	}

	if policy == PendingPass {
		c.succeed(nil)
		return
	}
	c.fail(pendingMessage(c, tags))
}

// innerTagContent extracts the opening tag's own content from raw. For a
// composite block node the raw spans the whole block, so only the text up
// to the first closing delimiter belongs to the construct itself.
func innerTagContent(raw string) string {
	end := strings.Index(raw, tagClose)
	if end < 0 {
		end = len(raw)
	}
	start := 0
	if strings.HasPrefix(raw, tagOpen) {
		start = len(tagOpen)
	}
	return strings.TrimSpace(raw[start:end])
}

// pendingMessage names the pairing a block-role tag still needs.
func pendingMessage(c *Construct, tags *TagTable) string {
	switch {
	case c.BlockStart:
		return fmt.Sprintf("Block tag '%s' requires a matching 'end%s' tag", c.TagName, c.TagName)
	case c.BlockEnd:
		return fmt.Sprintf("End tag '%s' requires a matching '%s' start tag", c.TagName, tags.BlockType(c.TagName))
	default:
		return fmt.Sprintf("Continuation tag '%s' requires an open '%s' block", c.TagName, tags.ContinuationTarget(c.TagName))
	}
}
