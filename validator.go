package liquidmark

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator is an interface for validating the inner content of a tag.
type Validator interface {
	// Validate checks if the content is valid.
	// Returns nil if valid, or an error if invalid.
	Validate(tagName string, content string, pos Position) error
}

// RegexValidator validates content against a regular expression.
type RegexValidator struct {
	Pattern     *regexp.Regexp
	Description string // Human-readable description of what the pattern expects
}

// Validate implements the Validator interface.
func (v *RegexValidator) Validate(tagName string, content string, pos Position) error {
	if !v.Pattern.MatchString(content) {
		return NewValidationError(
			pos,
			tagName,
			fmt.Sprintf("content does not match expected pattern: %s", v.Description),
			"",
		)
	}
	return nil
}

// FuncValidator uses a custom function to validate content.
type FuncValidator struct {
	ValidateFunc func(tagName string, content string, pos Position) error
}

// Validate implements the Validator interface.
func (v *FuncValidator) Validate(tagName string, content string, pos Position) error {
	return v.ValidateFunc(tagName, content, pos)
}

// ValidatorRegistry manages validators for different tag names.
type ValidatorRegistry struct {
	validators map[string][]Validator
}

// NewValidatorRegistry creates a new validator registry.
func NewValidatorRegistry() *ValidatorRegistry {
	return &ValidatorRegistry{
		validators: make(map[string][]Validator),
	}
}

// Register adds a validator for a tag name.
// Multiple validators can be registered for the same tag.
func (r *ValidatorRegistry) Register(tagName string, validator Validator) {
	if validator == nil {
		return
	}
	tagName = strings.ToLower(tagName)
	r.validators[tagName] = append(r.validators[tagName], validator)
}

// RegisterRegex creates and registers a RegexValidator.
func (r *ValidatorRegistry) RegisterRegex(tagName, pattern, description string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid regex pattern for tag %s: %w", tagName, err)
	}

	r.Register(tagName, &RegexValidator{
		Pattern:     re,
		Description: description,
	})
	return nil
}

// RegisterFunc creates and registers a FuncValidator.
func (r *ValidatorRegistry) RegisterFunc(tagName string, validateFunc func(string, string, Position) error) {
	r.Register(tagName, &FuncValidator{
		ValidateFunc: validateFunc,
	})
}

// ValidateConstructs runs the registered validators over every tag node
// under root, attaching the first failure to the node. Nodes already failed
// by earlier stages are left alone.
func (r *ValidatorRegistry) ValidateConstructs(root *Node) {
	if len(r.validators) == 0 {
		return
	}
	for _, n := range Tags(root) {
		c := n.Construct
		if c.Outcome == OutcomeFailed {
			continue
		}
		validators, ok := r.validators[c.TagName]
		if !ok {
			continue
		}
		for _, v := range validators {
			if err := v.Validate(c.TagName, c.Inner, startPosition(n)); err != nil {
				c.fail(err.Error())
				break
			}
		}
	}
}
