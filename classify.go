package liquidmark

import (
	"strings"
	"unicode"
)

// TagTable holds the static name tables driving tag classification: which
// names open a block, and which names continue one (and which block type
// each continuation requires). Tables are per-engine, never process-global,
// so concurrent engines with different registrations cannot interfere.
type TagTable struct {
	blocks        map[string]bool
	continuations map[string]string // continuation name -> required block type
}

// NewTagTable returns an empty table. Most callers want DefaultTagTable.
func NewTagTable() *TagTable {
	return &TagTable{
		blocks:        map[string]bool{},
		continuations: map[string]string{},
	}
}

// DefaultTagTable returns the standard Liquid tables: the core block tags
// plus the common theme extensions (form, paginate, block), and the
// continuation tags with their required block types.
func DefaultTagTable() *TagTable {
	t := NewTagTable()
	for _, name := range []string{
		"if", "unless", "for", "case", "capture",
		"tablerow", "comment", "raw",
		"form", "paginate", "block",
	} {
		t.RegisterBlockTag(name)
	}
	t.RegisterContinuation("else", "if")
	t.RegisterContinuation("elsif", "if")
	t.RegisterContinuation("elseif", "if")
	t.RegisterContinuation("when", "case")
	t.RegisterContinuation("empty", "for")
	return t
}

// RegisterBlockTag adds a block tag name. Names beginning with "end" are
// ignored: the end form is always derived by prefixing, never registered.
func (t *TagTable) RegisterBlockTag(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || strings.HasPrefix(name, "end") {
		return
	}
	t.blocks[name] = true
}

// RegisterContinuation adds a continuation tag name and the block type it
// attaches to. The target must be a registered block tag at lookup time;
// registration order does not matter.
func (t *TagTable) RegisterContinuation(name, target string) {
	name = strings.ToLower(strings.TrimSpace(name))
	target = strings.ToLower(strings.TrimSpace(target))
	if name == "" || target == "" {
		return
	}
	t.continuations[name] = target
}

// ExtractTagName returns the first word of trimmed tag content, or
// UnknownTagName when the content has no leading word.
func ExtractTagName(content string) string {
	content = strings.TrimSpace(content)
	end := 0
	for end < len(content) {
		r := rune(content[end])
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return UnknownTagName
	}
	return strings.ToLower(content[:end])
}

// IsBlockStart reports whether name opens a block.
func (t *TagTable) IsBlockStart(name string) bool {
	return t.blocks[name]
}

// IsBlockEnd reports whether name closes a block: an "end" prefix whose
// remainder is a registered block tag. "endcase", "endform" and friends all
// resolve here uniformly; there is no per-name end table.
func (t *TagTable) IsBlockEnd(name string) bool {
	rest, ok := strings.CutPrefix(name, "end")
	return ok && t.blocks[rest]
}

// IsContinuation reports whether name continues an open block.
func (t *TagTable) IsContinuation(name string) bool {
	_, ok := t.continuations[name]
	return ok
}

// ContinuationTarget returns the block type a continuation tag requires,
// or "" when the name is not a known continuation.
func (t *TagTable) ContinuationTarget(name string) string {
	return t.continuations[name]
}

// BlockType returns the block name an end tag closes ("endif" -> "if"),
// or "" when name is not an end tag.
func (t *TagTable) BlockType(name string) string {
	rest, ok := strings.CutPrefix(name, "end")
	if !ok || !t.blocks[rest] {
		return ""
	}
	return rest
}
