package translate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rettend/lin/localejson"
)

var (
	codeFence     = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	thinkBlock    = regexp.MustCompile(`(?s)<think>.*?</think>`)
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// sanitize pulls the JSON object out of a model reply. Reasoning blocks and
// markdown fences are removed, and surrounding prose is cut at the outer
// braces. Trailing commas and stray backslashes are only repaired when the
// text does not already parse.
func sanitize(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	if m := codeFence.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if i, j := strings.Index(s, "{"), strings.LastIndex(s, "}"); i >= 0 && j > i {
		s = s[i : j+1]
	}
	s = strings.TrimSpace(s)
	if json.Valid([]byte(s)) {
		return s
	}
	return fixInvalidEscapes(trailingComma.ReplaceAllString(s, "$1"))
}

// fixInvalidEscapes doubles backslashes inside JSON strings that do not
// start a valid escape sequence, such as \& or \[dq].
func fixInvalidEscapes(s string) string {
	var b strings.Builder
	inQuote := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' && !escaped {
			inQuote = !inQuote
			b.WriteByte(c)
			continue
		}
		if inQuote && c == '\\' && !escaped {
			if i+1 < len(s) && strings.IndexByte(`"\/bfnrtu`, s[i+1]) >= 0 {
				b.WriteByte(c)
				escaped = true
				continue
			}
			b.WriteString(`\\`)
			continue
		}
		b.WriteByte(c)
		escaped = false
	}
	return b.String()
}

// decodeResponse validates a reply against the batch schema and returns
// the translations in the order of keys.
func decodeResponse(body, locale string, keys []string, wire map[string]any) (*localejson.Flat, error) {
	text := sanitize(body)
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, &ResponseError{Locale: locale, Body: body, Err: err}
	}

	resolved, err := resolveSchema(wire)
	if err != nil {
		return nil, err
	}
	if err := resolved.Validate(v); err != nil {
		return nil, &ResponseError{Locale: locale, Body: body, Err: err}
	}

	values, _ := v.(map[string]any)[locale].(map[string]any)
	out := localejson.NewFlat()
	for _, k := range keys {
		s, ok := values[k].(string)
		if !ok {
			return nil, &ResponseError{Locale: locale, Body: body, Err: fmt.Errorf("missing key %q", k)}
		}
		out.Set(k, s)
	}
	return out, nil
}
