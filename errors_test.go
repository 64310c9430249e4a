package liquidmark

import (
	"strings"
	"testing"
)

func Test_Position_String(t *testing.T) {
	p := Position{Line: 4, Column: 7, Offset: 91}
	if got := p.String(); got != "line 4, column 7" {
		t.Fatalf("unexpected position string: %q", got)
	}
}

func Test_ParseError_Formats_With_And_Without_Context(t *testing.T) {
	e := &ParseError{Pos: Position{Line: 2, Column: 3}, Message: "boom"}
	if got := e.Error(); got != "boom at line 2, column 3" {
		t.Fatalf("unexpected error string: %q", got)
	}
	e.Context = "-> 2: x\n"
	if !strings.Contains(e.Error(), "Context:") {
		t.Fatalf("context missing from error string: %q", e.Error())
	}
}

func Test_ExtractContext_Points_At_The_Error_Line(t *testing.T) {
	source := "line one\nline two\nline three\n"
	ctx := extractContext(source, Position{Line: 2, Column: 1})
	if !strings.Contains(ctx, "-> 2: line two") {
		t.Fatalf("error line not highlighted:\n%s", ctx)
	}
	if !strings.Contains(ctx, "^") {
		t.Fatalf("column pointer missing:\n%s", ctx)
	}
	if extractContext("", Position{Line: 1, Column: 1}) != "" {
		t.Fatal("empty source should yield empty context")
	}
	if extractContext(source, Position{Line: 99, Column: 1}) != "" {
		t.Fatal("out-of-range line should yield empty context")
	}
}

func Test_Construct_Fail_And_Succeed_Are_Exclusive(t *testing.T) {
	c := &Construct{Kind: KindExpression, Inner: "user.name |"}
	c.fail("syntax error")
	if c.Outcome != OutcomeFailed || c.Template != nil {
		t.Fatal("fail must clear any parse result")
	}
	if c.Diag == nil || c.Diag.Kind != KindExpression || c.Diag.Content != "user.name |" || c.Diag.Error != "syntax error" {
		t.Fatalf("diagnostic stub wrong: %+v", c.Diag)
	}

	c.succeed(nil)
	if c.Outcome != OutcomeOK || c.Err != "" || c.Diag != nil {
		t.Fatal("succeed must clear the failure side")
	}
}

func Test_Diagnostics_Materializes_Typed_Errors(t *testing.T) {
	src := "{% when 'x' %} and {% endif %}\n"
	doc, err := NewEngine().ProcessSource([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	diags := Diagnostics(doc, src)
	if len(diags) != 2 {
		t.Fatalf("want 2 diagnostics, got %d: %v", len(diags), diags)
	}
	if _, ok := diags[0].(*ContinuationError); !ok {
		t.Fatalf("want ContinuationError, got %T", diags[0])
	}
	if _, ok := diags[1].(*UnmatchedEndTagError); !ok {
		t.Fatalf("want UnmatchedEndTagError, got %T", diags[1])
	}
	for _, d := range diags {
		if !strings.Contains(d.Error(), "Context:") {
			t.Fatalf("diagnostic should carry source context: %v", d)
		}
	}
}
