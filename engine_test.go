package liquidmark

import (
	"errors"
	"fmt"
	"testing"

	"github.com/osteele/liquid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Engine(t *testing.T) {
	t.Run("should reject a nil document root", func(t *testing.T) {
		err := NewEngine().Process(nil)
		require.Error(t, err)
	})

	t.Run("should leave plain markdown untouched", func(t *testing.T) {
		doc, err := NewEngine().ProcessSource([]byte("# Title\n\njust text, nothing embedded\n"))
		require.NoError(t, err)
		assert.Empty(t, Constructs(doc))
		assert.Empty(t, Diagnostics(doc, ""))
	})

	t.Run("should annotate a filtered expression", func(t *testing.T) {
		doc, err := NewEngine().ProcessSource([]byte("Hello {{ user.name | upcase }}.\n"))
		require.NoError(t, err)
		cs := Constructs(doc)
		require.Len(t, cs, 1)
		c := cs[0].Construct
		assert.Equal(t, KindExpression, c.Kind)
		assert.Equal(t, "user.name | upcase", c.Inner)
		assert.Equal(t, "{{ user.name | upcase }}", c.Raw)
		assert.Equal(t, OutcomeOK, c.Outcome)
		assert.NotNil(t, c.Template)
		assert.Nil(t, c.Diag)
	})

	t.Run("should build one clean frame for if/else/endif", func(t *testing.T) {
		doc, err := NewEngine().ProcessSource([]byte("{% if a %}x{% else %}y{% endif %}\n"))
		require.NoError(t, err)

		tags := Tags(doc)
		require.Len(t, tags, 3)
		start, cont, end := tags[0].Construct, tags[1].Construct, tags[2].Construct

		assert.True(t, start.BlockStart)
		assert.True(t, cont.Continuation)
		assert.True(t, end.BlockEnd)
		assert.NotEmpty(t, start.BlockID)
		assert.Equal(t, start.BlockID, cont.BlockID)
		assert.Equal(t, start.BlockID, end.BlockID)
		assert.Equal(t, start.BlockID, end.MatchingBlockID)
		assert.Empty(t, Diagnostics(doc, ""))
	})

	t.Run("should report mismatched block types as typed diagnostics", func(t *testing.T) {
		src := "{% if a %}x{% endfor %}\n"
		doc, err := NewEngine().ProcessSource([]byte(src))
		require.NoError(t, err)

		diags := Diagnostics(doc, src)
		require.Len(t, diags, 2)

		var unclosed *UnclosedBlockError
		require.ErrorAs(t, diags[0], &unclosed)
		assert.Equal(t, "if", unclosed.TagName)

		var unmatched *UnmatchedEndTagError
		require.ErrorAs(t, diags[1], &unmatched)
		assert.Equal(t, "endfor", unmatched.TagName)
	})

	t.Run("should parse standalone assign through the template engine", func(t *testing.T) {
		doc, err := NewEngine().ProcessSource([]byte("{% assign x = 1 %}\n"))
		require.NoError(t, err)
		cs := Constructs(doc)
		require.Len(t, cs, 1)
		c := cs[0].Construct
		assert.True(t, c.Standalone())
		assert.Equal(t, "assign", c.TagName)
		assert.Equal(t, OutcomeOK, c.Outcome)
		assert.NotNil(t, c.Template)
	})

	t.Run("should record a diagnostic stub for an unknown standalone tag", func(t *testing.T) {
		doc, err := NewEngine().ProcessSource([]byte("{% frobnicate now %}\n"))
		require.NoError(t, err)
		cs := Constructs(doc)
		require.Len(t, cs, 1)
		c := cs[0].Construct
		assert.Equal(t, OutcomeFailed, c.Outcome)
		assert.Nil(t, c.Template)
		require.NotNil(t, c.Diag)
		assert.Equal(t, KindTag, c.Diag.Kind)
		assert.Equal(t, "frobnicate", c.Diag.TagName)
		assert.Equal(t, "frobnicate now", c.Diag.Content)
		assert.NotEmpty(t, c.Diag.Error)
	})

	t.Run("should never tokenize fenced code", func(t *testing.T) {
		doc, err := NewEngine().ProcessSource([]byte("```\n{{ not.a.construct }}\n```\n"))
		require.NoError(t, err)
		assert.Empty(t, Constructs(doc))
	})

	t.Run("should pair a custom registered block tag", func(t *testing.T) {
		e := NewEngine()
		e.TagTable().RegisterBlockTag("widget")
		doc, err := e.ProcessSource([]byte("{% widget %}hello{% endwidget %}\n"))
		require.NoError(t, err)
		tags := Tags(doc)
		require.Len(t, tags, 2)
		assert.Equal(t, tags[0].Construct.BlockID, tags[1].Construct.MatchingBlockID)
		assert.Empty(t, Diagnostics(doc, ""))
	})

	t.Run("should run registered validators over tag contents", func(t *testing.T) {
		v := NewValidatorRegistry()
		v.RegisterFunc("assign", func(name, content string, pos Position) error {
			return fmt.Errorf("assignment not allowed here")
		})
		doc, err := NewEngine(WithValidators(v)).ProcessSource([]byte("{% assign x = 1 %}\n"))
		require.NoError(t, err)
		c := Constructs(doc)[0].Construct
		assert.Equal(t, OutcomeFailed, c.Outcome)
		assert.Contains(t, c.Err, "assignment not allowed")
	})
}

func Test_PendingPolicy_Controls_Provisional_Outcome(t *testing.T) {
	liq := liquid.NewEngine()
	for _, tc := range []struct {
		policy PendingTagPolicy
		want   ParseOutcome
	}{
		{PendingFail, OutcomeFailed},
		{PendingPass, OutcomeOK},
	} {
		nodes := splitConstructs("{% if a %}", origin(), testTags)
		if len(nodes) != 1 {
			t.Fatalf("want 1 node, got %d", len(nodes))
		}
		processTagContent(nodes[0], testTags, liq, tc.policy)
		c := nodes[0].Construct
		if c.Outcome != tc.want {
			t.Fatalf("policy %d: outcome = %d, want %d", tc.policy, c.Outcome, tc.want)
		}
		if tc.policy == PendingFail && c.Err != "Block tag 'if' requires a matching 'endif' tag" {
			t.Fatalf("unexpected pending message: %q", c.Err)
		}
	}
}

func Test_Engine_BigDocument_EndToEnd(t *testing.T) {
	src := `# Release notes

Hello {{ user.name }}, welcome back.

{% if user.vip %}
Thanks for being with us, enjoy {{ perks | join: ", " }}.
{% else %}
Upgrade for more perks.
{% endif %}

{% for item in cart %}
- {{ item.title }}
{% empty %}
Your cart is empty.
{% endfor %}

{% assign total = cart | size %}

Broken bits: {% endcase %} and {{ unclosed
`
	doc, err := NewEngine().ProcessSource([]byte(src))
	require.NoError(t, err)

	var exprs, tagNodes int
	for _, n := range Constructs(doc) {
		switch n.Construct.Kind {
		case KindExpression:
			exprs++
		case KindTag:
			tagNodes++
		}
	}
	assert.Equal(t, 3, exprs, "the unclosed {{ must degrade to text")
	assert.Equal(t, 8, tagNodes)

	diags := Diagnostics(doc, src)
	require.Len(t, diags, 1)
	var unmatched *UnmatchedEndTagError
	require.True(t, errors.As(diags[0], &unmatched))
	assert.Equal(t, "endcase", unmatched.TagName)
}
