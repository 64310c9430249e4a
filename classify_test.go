package liquidmark

import "testing"

func Test_ExtractTagName(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"if a > 1", "if"},
		{"  endfor  ", "endfor"},
		{"assign x = 1", "assign"},
		{"when 'large'", "when"},
		{"", UnknownTagName},
		{"   ", UnknownTagName},
		{"| weird", UnknownTagName},
		{"IF a", "if"},
	}
	for _, c := range cases {
		if got := ExtractTagName(c.content); got != c.want {
			t.Errorf("ExtractTagName(%q) = %q, want %q", c.content, got, c.want)
		}
	}
}

func Test_TagTable_Roles_Are_Mutually_Exclusive(t *testing.T) {
	tags := DefaultTagTable()
	names := []string{
		"if", "unless", "for", "case", "capture", "form", "paginate",
		"endif", "endfor", "endcase", "endform", "endpaginate",
		"else", "elsif", "elseif", "when", "empty",
		"assign", "include", "render", "bogus",
	}
	for _, name := range names {
		roles := 0
		if tags.IsBlockStart(name) {
			roles++
		}
		if tags.IsBlockEnd(name) {
			roles++
		}
		if tags.IsContinuation(name) {
			roles++
		}
		if roles > 1 {
			t.Errorf("tag %q matched %d roles", name, roles)
		}
	}
}

func Test_TagTable_EndDetection_Uses_Prefix_Plus_Membership(t *testing.T) {
	tags := DefaultTagTable()
	if !tags.IsBlockEnd("endif") || !tags.IsBlockEnd("endcase") || !tags.IsBlockEnd("endpaginate") {
		t.Fatal("known end tags not detected")
	}
	// "end" + something that is not a block tag is not an end tag
	if tags.IsBlockEnd("endless") || tags.IsBlockEnd("end") || tags.IsBlockEnd("endassign") {
		t.Fatal("false positive end detection")
	}
	if tags.BlockType("endfor") != "for" {
		t.Fatalf("BlockType(endfor) = %q", tags.BlockType("endfor"))
	}
	if tags.BlockType("assign") != "" {
		t.Fatalf("BlockType(assign) should be empty")
	}
}

func Test_TagTable_ContinuationTargets(t *testing.T) {
	tags := DefaultTagTable()
	cases := map[string]string{
		"else":   "if",
		"elsif":  "if",
		"elseif": "if",
		"when":   "case",
		"empty":  "for",
		"assign": "",
	}
	for name, want := range cases {
		if got := tags.ContinuationTarget(name); got != want {
			t.Errorf("ContinuationTarget(%q) = %q, want %q", name, got, want)
		}
	}
}

func Test_TagTable_Custom_Registration(t *testing.T) {
	tags := NewTagTable()
	tags.RegisterBlockTag("widget")
	tags.RegisterContinuation("fallback", "widget")

	if !tags.IsBlockStart("widget") || !tags.IsBlockEnd("endwidget") {
		t.Fatal("custom block tag not registered")
	}
	if tags.ContinuationTarget("fallback") != "widget" {
		t.Fatal("custom continuation not registered")
	}
	// names starting with "end" are never block starts
	tags.RegisterBlockTag("endless")
	if tags.IsBlockStart("endless") {
		t.Fatal("end-prefixed block tag should be rejected")
	}
}
