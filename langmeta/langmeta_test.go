package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "zh-Hant", want: "zh-Hant"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("native and english names", func(t *testing.T) {
		got := Resolve("de")
		if got.Name != "Deutsch" || got.English != "German" {
			t.Fatalf("unexpected result: %#v", got)
		}
		if got.Flag != "🇩🇪" {
			t.Fatalf("flag = %q, want 🇩🇪", got.Flag)
		}
	})

	t.Run("underscore and region", func(t *testing.T) {
		got := Resolve("pt_BR")
		if got.Flag != "🇧🇷" {
			t.Fatalf("flag = %q, want 🇧🇷", got.Flag)
		}
		if got.Name == "" || got.Name == "pt_BR" {
			t.Fatalf("no name resolved: %#v", got)
		}
	})

	t.Run("non-latin script", func(t *testing.T) {
		if got := Resolve("ja"); got.Name != "日本語" {
			t.Fatalf("Resolve(ja).Name = %q", got.Name)
		}
	})

	t.Run("invalid passthrough", func(t *testing.T) {
		got := Resolve("not a tag!")
		if got.Name != "not a tag!" || got.Flag != "" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})
}

func TestLabel(t *testing.T) {
	if got := Label("de"); got != "de (Deutsch)" {
		t.Errorf("Label(de) = %q", got)
	}
	if got := Label("not a tag!"); got != "not a tag!" {
		t.Errorf("Label(invalid) = %q", got)
	}
}
