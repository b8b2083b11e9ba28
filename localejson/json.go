package localejson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse decodes a locale JSON object, keeping key order. Duplicate keys keep
// their first position and their last value.
func Parse(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object at top level, got %v", tok)
	}
	t, err := parseObject(dec, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level object")
	}
	return t, nil
}

func parseObject(dec *json.Decoder, prefix string) (*Tree, error) {
	t := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		vt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := vt.(type) {
		case string:
			t.SetString(key, v)
		case json.Delim:
			if v != '{' {
				return nil, fmt.Errorf("key %q: arrays are not allowed in locale files", path)
			}
			sub, err := parseObject(dec, path)
			if err != nil {
				return nil, err
			}
			t.SetTree(key, sub)
		default:
			return nil, fmt.Errorf("key %q: expected string or object, got %T", path, vt)
		}
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return t, nil
}

// ParseFlat decodes a snapshot file. Nested objects are flattened, so both
// flat and nested snapshots are accepted.
func ParseFlat(data []byte) (*Flat, error) {
	t, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Flatten(t), nil
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal encodes t with 2-space indentation and no trailing newline.
func Marshal(t *Tree) []byte {
	var b strings.Builder
	writeTree(&b, t, "  ", 0)
	return []byte(b.String())
}

// MarshalCompact encodes t without any whitespace.
func MarshalCompact(t *Tree) []byte {
	var b strings.Builder
	writeTree(&b, t, "", 0)
	return []byte(b.String())
}

// MarshalFlat encodes f as a flat object with 2-space indentation.
func MarshalFlat(f *Flat) []byte {
	return Marshal(f.Tree())
}

func writeTree(b *strings.Builder, t *Tree, indent string, depth int) {
	keys := t.Keys()
	if len(keys) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		newline(b, indent, depth+1)
		b.WriteString(Quote(k))
		b.WriteByte(':')
		if indent != "" {
			b.WriteByte(' ')
		}
		v, _ := t.Get(k)
		switch v := v.(type) {
		case string:
			b.WriteString(Quote(v))
		case *Tree:
			writeTree(b, v, indent, depth+1)
		}
	}
	newline(b, indent, depth)
	b.WriteByte('}')
}

func newline(b *strings.Builder, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	for i := 0; i < depth; i++ {
		b.WriteString(indent)
	}
}

// Quote returns s as a JSON string literal. HTML characters are left
// unescaped so that translated markup stays readable in locale files.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}
