package engine

import (
	"testing"

	"github.com/rettend/lin/localejson"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"json", JSON, true},
		{"J", JSON, true},
		{"md", Markdown, true},
		{"mdx", Markdown, true},
		{"Markdown", Markdown, true},
		{"yaml", "", false},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestSupports(t *testing.T) {
	js, _ := For(JSON)
	md, _ := For(Markdown)
	for _, cmd := range []Command{Check, Sync, Add, Del, Edit} {
		if !js.Supports(cmd) {
			t.Errorf("json should support %s", cmd)
		}
	}
	if md.Supports(Add) || md.Supports(Edit) || md.Supports(Del) {
		t.Error("markdown should not support add/del/edit")
	}
	if !md.Supports(Check) || !md.Supports(Sync) {
		t.Error("markdown should support check and sync")
	}
	if len(md.Commands()) != 3 {
		t.Errorf("markdown commands = %v", md.Commands())
	}
}

func TestJSONAdapter(t *testing.T) {
	a, _ := For(JSON)
	units, err := a.Extract("locales/en-US.json", []byte(`{"a":"b"}`))
	if err != nil || units.Len() != 0 {
		t.Errorf("Extract = %v, %v", units, err)
	}
	tree, _ := localejson.Parse([]byte(`{"a":{"b":"x"}}`))
	r, err := a.Render("", nil, tree)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Changed || r.Text != "{\n  \"a\": {\n    \"b\": \"x\"\n  }\n}\n" {
		t.Errorf("Render = %+v", r)
	}
}

func TestMarkdownAdapter(t *testing.T) {
	a, _ := For(Markdown)
	src := []byte("# Title\n\nSome paragraph.")
	units, err := a.Extract("./docs/a.md", src)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := units.Get("docs/a.md::heading[0]"); v != "Title" {
		t.Errorf("heading = %q", v)
	}

	r, err := a.Render("./docs/a.md", src, localejson.FlatOf("docs/a.md::heading[0]", "Título").Tree())
	if err != nil {
		t.Fatal(err)
	}
	if !r.Changed || r.Text != "# Título\n\nSome paragraph." {
		t.Errorf("Render = %+v", r)
	}
}
