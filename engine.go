// Package liquidmark recognizes Liquid-style {{ expression }} and {% tag %}
// constructs inside the text nodes of a Markdown document tree, splits them
// into discrete nodes, classifies tag roles, and reconstructs the nested
// block hierarchy (if/else/endif, for/empty/endfor, case/when/endcase, ...)
// from the linear tag stream. It performs structural recognition only: no
// variable substitution, no filter execution, and no Markdown parsing of
// its own beyond the goldmark adapter in ParseDocument.
package liquidmark

import (
	"errors"

	"github.com/osteele/liquid"
	"go.uber.org/zap"
)

// NewEngine builds an engine with the default Liquid tag tables, a lenient
// embedded Liquid parser, and no logging.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		tags:       DefaultTagTable(),
		liq:        liquid.NewEngine(),
		log:        zap.NewNop(),
		policy:     PendingFail,
		validators: NewValidatorRegistry(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger installs a structured logger; the engine logs split and
// association decisions at debug level.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTagTable replaces the default tag tables, e.g. to add theme-specific
// block tags.
func WithTagTable(t *TagTable) Option {
	return func(e *Engine) { e.tags = t }
}

// WithPendingPolicy sets the provisional outcome recorded on block-role
// tags before association.
func WithPendingPolicy(p PendingTagPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithValidators installs a validator registry run over tag contents after
// association.
func WithValidators(v *ValidatorRegistry) Option {
	return func(e *Engine) { e.validators = v }
}

// TagTable exposes the engine's tag table for registration before
// processing.
func (e *Engine) TagTable() *TagTable { return e.tags }

// Process runs the full pipeline over one host document tree, in place:
// tokenize text nodes, process expression and tag contents, associate block
// structure, then cross-check and validate. Malformed input never returns
// an error; every failure is recorded on the offending node and can be
// collected with Diagnostics. The only error case is a contract violation
// such as a nil root.
func (e *Engine) Process(doc *Node) error {
	if doc == nil {
		return errors.New("liquidmark: nil document root")
	}

	tokenizeTree(doc, e.tags, e.log)

	for _, n := range Constructs(doc) {
		switch n.Construct.Kind {
		case KindExpression:
			processExpression(n, e.liq)
		case KindTag:
			processTagContent(n, e.tags, e.liq, e.policy)
		}
	}

	tagNodes := Tags(doc)
	if len(tagNodes) > 0 {
		newAssociator(e.tags, e.log).run(tagNodes)
		validateBlockStructure(tagNodes, e.tags)
	}

	e.validators.ValidateConstructs(doc)
	return nil
}

// ProcessSource is a convenience wrapper: parse source as Markdown with the
// bundled adapter, process the resulting tree, and return it.
func (e *Engine) ProcessSource(source []byte) (*Node, error) {
	doc := ParseDocument(source)
	if err := e.Process(doc); err != nil {
		return nil, err
	}
	return doc, nil
}
