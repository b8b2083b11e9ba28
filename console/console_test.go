package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func init() {
	color.NoColor = true
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"Synced **hu-HU**", "Synced hu-HU"},
		{"key `ui.title` *(skipped)*", "key ui.title (skipped)"},
		{"**a** and *b*", "a and b"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLog(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, &out, strings.NewReader(""))
	c.Log(Success, "Wrote **%s**", "en-US.json")
	c.Log(Info, "%s", "100% done")
	c.Print("bare")
	want := "✓ Wrote en-US.json\nℹ 100% done\nbare\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestSection(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, &out, strings.NewReader(""))
	wantErr := errors.New("boom")
	err := c.Section("JSON", func() error {
		c.Log(Info, "inside")
		return wantErr
	})
	if err != wantErr {
		t.Errorf("err = %v", err)
	}
	if out.String() != "JSON\nℹ inside\n\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"", false, false},
		{"maybe\n", true, false},
	}
	for _, tt := range tests {
		c := New(&bytes.Buffer{}, &bytes.Buffer{}, strings.NewReader(tt.input))
		got, err := c.Confirm("Continue?", tt.def)
		if err != nil || got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, %v", tt.input, tt.def, got, err)
		}
	}
}

func TestText(t *testing.T) {
	c := New(&bytes.Buffer{}, &bytes.Buffer{}, strings.NewReader("  Hello there \n\n"))
	got, _ := c.Text("Text for en-US", "")
	if got != "Hello there" {
		t.Errorf("first answer = %q", got)
	}
	got, _ = c.Text("Again", "fallback")
	if got != "fallback" {
		t.Errorf("second answer = %q", got)
	}
}

func TestProgress(t *testing.T) {
	var errOut bytes.Buffer
	c := New(&bytes.Buffer{}, &errOut, strings.NewReader(""))
	bar := c.Progress(2, "hu-HU")
	if err := bar.Add(1); err != nil {
		t.Fatal(err)
	}
	if err := bar.Add(1); err != nil {
		t.Fatal(err)
	}
	if !bar.IsFinished() {
		t.Error("bar should be finished")
	}
}
