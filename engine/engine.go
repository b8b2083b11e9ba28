// Package engine gives commands one entry point across locale file formats.
//
// Each Kind has an Adapter that extracts translation units from a source
// file and renders translations back. JSON locale files are diffed as whole
// trees, so the JSON adapter's Extract returns nothing and its Render just
// serializes. Markdown documents go through positional units.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/mdfile"
)

// Kind names an adapter.
type Kind string

const (
	JSON     Kind = "json"
	Markdown Kind = "markdown"
)

// ParseKind resolves an adapter name or alias.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "j":
		return JSON, nil
	case "markdown", "md", "mdx":
		return Markdown, nil
	}
	return "", fmt.Errorf("unknown adapter %q (valid: json, markdown)", s)
}

// Command is a CLI verb an adapter may support.
type Command string

const (
	Check     Command = "check"
	Sync      Command = "sync"
	Translate Command = "translate"
	Add       Command = "add"
	Del       Command = "del"
	Edit      Command = "edit"
)

// Rendered is the output of Adapter.Render.
type Rendered struct {
	Text    string
	Changed bool
}

// Adapter is implemented by each format.
type Adapter interface {
	Kind() Kind
	// Commands returns the verbs this adapter supports.
	Commands() []Command
	// Supports reports whether cmd may use this adapter.
	Supports(cmd Command) bool
	// Extract returns the translation units of a source file.
	Extract(path string, source []byte) (*localejson.Flat, error)
	// Render applies translations to a source file.
	Render(path string, source []byte, translations *localejson.Tree) (Rendered, error)
}

// For returns the adapter of kind k.
func For(k Kind) (Adapter, error) {
	switch k {
	case JSON:
		return jsonAdapter{}, nil
	case Markdown:
		return markdownAdapter{}, nil
	}
	return nil, fmt.Errorf("unknown adapter %q", k)
}

type commandSet []Command

func (s commandSet) has(cmd Command) bool {
	for _, c := range s {
		if c == cmd {
			return true
		}
	}
	return false
}

func (s commandSet) list() []Command {
	out := append([]Command(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ---------------------------------------------------------------------------
// JSON
// ---------------------------------------------------------------------------

var jsonCommands = commandSet{Check, Sync, Translate, Add, Del, Edit}

type jsonAdapter struct{}

func (jsonAdapter) Kind() Kind                { return JSON }
func (jsonAdapter) Commands() []Command       { return jsonCommands.list() }
func (jsonAdapter) Supports(cmd Command) bool { return jsonCommands.has(cmd) }
func (jsonAdapter) Extract(string, []byte) (*localejson.Flat, error) {
	return localejson.NewFlat(), nil
}

// Render serializes the tree with a trailing newline. The source is not
// consulted.
func (jsonAdapter) Render(_ string, _ []byte, t *localejson.Tree) (Rendered, error) {
	return Rendered{Text: string(localejson.Marshal(t)) + "\n", Changed: true}, nil
}

// ---------------------------------------------------------------------------
// Markdown
// ---------------------------------------------------------------------------

var markdownCommands = commandSet{Check, Sync, Translate}

type markdownAdapter struct{}

func (markdownAdapter) Kind() Kind                { return Markdown }
func (markdownAdapter) Commands() []Command       { return markdownCommands.list() }
func (markdownAdapter) Supports(cmd Command) bool { return markdownCommands.has(cmd) }

func (markdownAdapter) Extract(path string, source []byte) (*localejson.Flat, error) {
	return mdfile.Extract(path, source)
}

// Render accepts translations nested or flat: unit keys are recovered by
// flattening, so {"a.md::heading[0]": "x"} works as a top-level key.
func (markdownAdapter) Render(path string, source []byte, t *localejson.Tree) (Rendered, error) {
	res, err := mdfile.Render(path, source, localejson.Flatten(t))
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Text: res.Text, Changed: res.Changed}, nil
}
