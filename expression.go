package liquidmark

import (
	"strings"

	"github.com/osteele/liquid"
)

// processExpression fills an expression node's content fields and attempts
// a Liquid parse of the full raw construct. The engine is lenient: undefined
// variables and filters are a render-time concern, so only genuine syntax
// errors fail here.
func processExpression(n *Node, liq *liquid.Engine) {
	c := n.Construct
	c.Inner = strings.TrimSpace(c.Raw[len(exprOpen) : len(c.Raw)-len(exprClose)])

	tpl, err := liq.ParseString(c.Raw)
	if err != nil {
		c.fail(err.Error())
		return
	}
	c.succeed(tpl)
}
