package liquidmark

import (
	"github.com/osteele/liquid"
	"go.uber.org/zap"
)

// PendingTagPolicy selects the provisional parse outcome recorded on
// block-role tags before the associator has ruled on their pairing. The
// associator overwrites the outcome for every tag it visits, so the policy
// is only observable on tags it never reaches.
type PendingTagPolicy int

const (
	PendingFail PendingTagPolicy = iota // pessimistic: failed until paired
	PendingPass                         // optimistic: success pending pairing
)

type Engine struct {
	tags       *TagTable
	liq        *liquid.Engine
	log        *zap.Logger
	policy     PendingTagPolicy
	validators *ValidatorRegistry
}
