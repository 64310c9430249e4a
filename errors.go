package liquidmark

import (
	"fmt"
	"strings"
)

// String returns a string representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// ParseError is the base error type for all per-construct errors.
type ParseError struct {
	Pos     Position // Position where the error occurred
	Message string   // Error message
	Context string   // Surrounding content for context
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s at %s\nContext: %s", e.Message, e.Pos, e.Context)
	}
	return fmt.Sprintf("%s at %s", e.Message, e.Pos)
}

// TemplateParseError represents a Liquid syntax error inside an expression
// or standalone tag.
type TemplateParseError struct {
	ParseError
	Kind    ConstructKind // expression or tag
	TagName string        // tags only
}

// Error implements the error interface.
func (e *TemplateParseError) Error() string {
	if e.TagName != "" {
		return fmt.Sprintf("error parsing tag {%% %s %%} at %s: %s\nContext: %s",
			e.TagName, e.Pos, e.Message, e.Context)
	}
	return fmt.Sprintf("error parsing expression at %s: %s\nContext: %s",
		e.Pos, e.Message, e.Context)
}

// UnmatchedEndTagError represents an end tag that closes nothing.
type UnmatchedEndTagError struct {
	ParseError
	TagName string // the end tag's name, e.g. "endif"
}

// Error implements the error interface.
func (e *UnmatchedEndTagError) Error() string {
	return fmt.Sprintf("unmatched end tag {%% %s %%} at %s\nContext: %s",
		e.TagName, e.Pos, e.Context)
}

// UnclosedBlockError represents a block-start tag that never got its end tag.
type UnclosedBlockError struct {
	ParseError
	TagName string // the block's name, e.g. "if"
}

// Error implements the error interface.
func (e *UnclosedBlockError) Error() string {
	return fmt.Sprintf("unclosed block {%% %s %%} at %s\nContext: %s",
		e.TagName, e.Pos, e.Context)
}

// ContinuationError represents a continuation tag (else, elsif, when, empty)
// with no compatible open block, or an unknown continuation name.
type ContinuationError struct {
	ParseError
	TagName string // the continuation tag's name
}

// Error implements the error interface.
func (e *ContinuationError) Error() string {
	return fmt.Sprintf("misplaced continuation tag {%% %s %%} at %s: %s\nContext: %s",
		e.TagName, e.Pos, e.Message, e.Context)
}

// ValidationError represents construct content that failed a registered
// validator.
type ValidationError struct {
	ParseError
	TagName string // name of the tag whose content failed validation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for tag {%% %s %%} at %s: %s\nContext: %s",
		e.TagName, e.Pos, e.Message, e.Context)
}

// newParseError builds the shared base of every typed error.
func newParseError(pos Position, message, source string) ParseError {
	return ParseError{
		Pos:     pos,
		Message: message,
		Context: extractContext(source, pos),
	}
}

// NewTemplateParseError creates a new TemplateParseError.
func NewTemplateParseError(pos Position, kind ConstructKind, tagName, message, source string) *TemplateParseError {
	return &TemplateParseError{
		ParseError: newParseError(pos, message, source),
		Kind:       kind,
		TagName:    tagName,
	}
}

// NewUnmatchedEndTagError creates a new UnmatchedEndTagError.
func NewUnmatchedEndTagError(pos Position, tagName, message, source string) *UnmatchedEndTagError {
	return &UnmatchedEndTagError{
		ParseError: newParseError(pos, message, source),
		TagName:    tagName,
	}
}

// NewUnclosedBlockError creates a new UnclosedBlockError.
func NewUnclosedBlockError(pos Position, tagName, message, source string) *UnclosedBlockError {
	return &UnclosedBlockError{
		ParseError: newParseError(pos, message, source),
		TagName:    tagName,
	}
}

// NewContinuationError creates a new ContinuationError.
func NewContinuationError(pos Position, tagName, message, source string) *ContinuationError {
	return &ContinuationError{
		ParseError: newParseError(pos, message, source),
		TagName:    tagName,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(pos Position, tagName, message, source string) *ValidationError {
	return &ValidationError{
		ParseError: newParseError(pos, message, source),
		TagName:    tagName,
	}
}

// Diagnostics walks a processed tree and materializes every per-node failure
// as a typed error. source is the original document text, used only for
// context excerpts; pass "" to skip them.
func Diagnostics(root *Node, source string) []error {
	var errs []error
	for _, n := range Constructs(root) {
		c := n.Construct
		if c.Outcome != OutcomeFailed {
			continue
		}
		pos := startPosition(n)
		switch {
		case c.Kind == KindExpression:
			errs = append(errs, NewTemplateParseError(pos, KindExpression, "", c.Err, source))
		case c.BlockEnd:
			errs = append(errs, NewUnmatchedEndTagError(pos, c.TagName, c.Err, source))
		case c.BlockStart:
			errs = append(errs, NewUnclosedBlockError(pos, c.TagName, c.Err, source))
		case c.Continuation:
			errs = append(errs, NewContinuationError(pos, c.TagName, c.Err, source))
		default:
			errs = append(errs, NewTemplateParseError(pos, KindTag, c.TagName, c.Err, source))
		}
	}
	return errs
}

// extractContext extracts a snippet of text around the error position for
// context. It tries to include a few lines before and after the error.
func extractContext(content string, pos Position) string {
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	if pos.Line > len(lines) || pos.Line < 1 {
		return ""
	}

	// Determine the range of lines to include
	startLine := max(0, pos.Line-3)
	endLine := min(len(lines)-1, pos.Line+1)

	// Build the context with line numbers
	var contextBuilder strings.Builder
	for i := startLine; i <= endLine; i++ {
		lineNum := i + 1 // Convert to 1-based line number
		if lineNum == pos.Line {
			// Highlight the error line
			contextBuilder.WriteString(fmt.Sprintf("-> %d: %s\n", lineNum, lines[i]))

			// Add a pointer to the column if possible
			if pos.Column <= len(lines[i])+1 {
				contextBuilder.WriteString(strings.Repeat(" ", pos.Column+5) + "^\n")
			}
		} else {
			contextBuilder.WriteString(fmt.Sprintf("   %d: %s\n", lineNum, lines[i]))
		}
	}

	return contextBuilder.String()
}
