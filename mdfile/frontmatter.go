package mdfile

import (
	"bytes"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

// frontmatterBlock matches a YAML front matter block at the start of the file.
var frontmatterBlock = regexp.MustCompile(`(?s)\A---[ \t]*\r?\n(?:(.*?)\r?\n)?---[ \t]*(?:\r?\n|\z)`)

// frontmatter is the parsed YAML header of a document. The node tree is kept
// so that a rewrite preserves field order and non-string values.
type frontmatter struct {
	raw  []byte     // the whole block including delimiters
	doc  *yaml.Node // document node, nil for an empty block
	body []byte     // everything after the block
}

// stringField is a top-level frontmatter field holding a plain string.
type stringField struct {
	name  string
	value *yaml.Node
}

func splitFrontmatter(source []byte) (*frontmatter, error) {
	m := frontmatterBlock.FindSubmatchIndex(source)
	if m == nil {
		return &frontmatter{body: source}, nil
	}
	fm := &frontmatter{raw: source[:m[1]], body: source[m[1]:]}
	if m[2] < 0 || len(bytes.TrimSpace(source[m[2]:m[3]])) == 0 {
		return fm, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(source[m[2]:m[3]], &doc); err != nil {
		return nil, fmt.Errorf("frontmatter: %w", err)
	}
	if len(doc.Content) == 0 {
		return fm, nil
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("frontmatter: expected a mapping, got %s", kindName(doc.Content[0].Kind))
	}
	fm.doc = &doc
	return fm, nil
}

// fields returns the string-valued top-level fields in document order.
func (fm *frontmatter) fields() []stringField {
	if fm.doc == nil {
		return nil
	}
	mapping := fm.doc.Content[0]
	var out []stringField
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		k, v := mapping.Content[i], mapping.Content[i+1]
		if v.Kind == yaml.ScalarNode && v.Tag == "!!str" {
			out = append(out, stringField{name: k.Value, value: v})
		}
	}
	return out
}

// encode serializes the (possibly modified) frontmatter with delimiters.
func (fm *frontmatter) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm.doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}
