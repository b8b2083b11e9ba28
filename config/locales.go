package config

import (
	"strings"

	"golang.org/x/text/language"
)

// Context profiles of the with setting.
const (
	WithNone = "none"
	WithDef  = "def"
	WithTgt  = "tgt"
	WithBoth = "both"
	WithAll  = "all"
)

// NormalizeLocales maps user supplied locale names to configured locales.
//
// "all" selects every locale and "def" the default one. Names match
// case-insensitively with "_" and "-" treated alike, and a bare language
// ("en") selects every locale of that language. Comma separated values are
// split. The result keeps first-seen order without duplicates.
func NormalizeLocales(args []string, i I18n) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	add := func(l string) {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}

	for _, arg := range expandList(args) {
		switch strings.ToLower(arg) {
		case "all":
			for _, l := range i.Locales {
				add(l)
			}
			continue
		case "def":
			add(i.DefaultLocale)
			continue
		}

		matched := matchLocale(arg, i.Locales)
		if len(matched) == 0 {
			return nil, invalid("locale", arg, i.Locales...)
		}
		for _, l := range matched {
			add(l)
		}
	}
	return out, nil
}

func matchLocale(arg string, locales []string) []string {
	want := canonical(arg)
	for _, l := range locales {
		if canonical(l) == want {
			return []string{l}
		}
	}

	if strings.ContainsAny(arg, "-_") {
		return nil
	}
	tag, err := language.Parse(arg)
	if err != nil {
		return nil
	}
	base, conf := tag.Base()
	if conf == language.No {
		return nil
	}
	var out []string
	for _, l := range locales {
		lt, err := language.Parse(strings.ReplaceAll(l, "_", "-"))
		if err != nil {
			continue
		}
		if lb, _ := lt.Base(); lb == base {
			out = append(out, l)
		}
	}
	return out
}

func canonical(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
}

// ContextLocales resolves the with setting for a group of target locales.
func ContextLocales(with []string, group []string, i I18n) ([]string, error) {
	if len(with) == 1 {
		switch strings.ToLower(with[0]) {
		case "", WithNone:
			return nil, nil
		case WithDef:
			return []string{i.DefaultLocale}, nil
		case WithTgt:
			return dedupe(group), nil
		case WithBoth:
			return dedupe(append([]string{i.DefaultLocale}, group...)), nil
		case WithAll:
			return dedupe(i.Locales), nil
		}
	}
	if len(with) == 0 {
		return nil, nil
	}
	return NormalizeLocales(with, i)
}

func dedupe(in []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
