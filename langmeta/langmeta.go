// Package langmeta provides display metadata for locale codes: the
// language's own name, its English name and a flag emoji.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Name is the language's name in itself, e.g. "Deutsch".
	Name string
	// English is the English name, e.g. "German".
	English string
	Flag    string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort metadata for a locale code such as pt_BR,
// pt-BR or hu. Codes that are not BCP 47 tags come back with the code as
// their name.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil {
		return Meta{Name: lang, English: lang}
	}

	m := Meta{
		Name:    display.Self.Name(tag),
		English: display.English.Tags().Name(tag),
		Flag:    flag(tag),
	}
	if m.Name == "" || m.English == "" {
		base, _ := tag.Base()
		bt := language.Make(base.String())
		if m.Name == "" {
			m.Name = display.Self.Name(bt)
		}
		if m.English == "" {
			m.English = display.English.Tags().Name(bt)
		}
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = m.Name
	}
	return m
}

// Label returns "code (Name)" for display, or the code alone when no name is
// known.
func Label(lang string) string {
	m := Resolve(lang)
	if m.Name == lang {
		return lang
	}
	return lang + " (" + m.Name + ")"
}

// flag builds the regional indicator pair of the tag's region, inferring
// the region of a bare language.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 || code == "ZZ" {
		return ""
	}
	var b strings.Builder
	for _, r := range code {
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
