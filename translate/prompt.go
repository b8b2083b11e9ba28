package translate

import (
	"sort"
	"strings"

	"github.com/rettend/lin/localejson"
)

// systemPrompt builds the instruction shared by every batch of a run.
func systemPrompt(defaultLocale, context string, refs map[string]*localejson.Tree) string {
	var b strings.Builder
	b.WriteString("For each locale, translate the values from the default locale (")
	b.WriteString(defaultLocale)
	b.WriteString(") language to the corresponding languages (denoted by the locale keys).\n")
	b.WriteString("Return a JSON object where each top key is a locale, and the value is an object containing the translations for that locale.\n")

	if context != "" {
		b.WriteString("Additional information from user: ")
		b.WriteString(context)
		b.WriteString("\n")
	}
	if len(refs) > 0 {
		b.WriteString("Other locale JSONs from the user's codebase for context: ")
		b.Write(localejson.MarshalCompact(refTree(refs)))
		b.WriteString("\nAlways use dot notation when dealing with nested keys: ui.about.title\n")
	}

	b.WriteString("Example input:\n")
	b.WriteString(`{"fr-FR": {"ui.home.title": "Home"}}`)
	b.WriteString("\nExample output:\n")
	b.WriteString(`{"fr-FR": {"ui.home.title": "Accueil"}}`)
	return b.String()
}

func refTree(refs map[string]*localejson.Tree) *localejson.Tree {
	locales := make([]string, 0, len(refs))
	for l := range refs {
		locales = append(locales, l)
	}
	sort.Strings(locales)

	t := localejson.New()
	for _, l := range locales {
		t.SetTree(l, refs[l])
	}
	return t
}

// userPrompt is the batch itself: {"<locale>": {"<key>": "<value>"}}.
func userPrompt(locale string, batch *localejson.Flat) string {
	t := localejson.New()
	t.SetTree(locale, batch.Tree())
	return string(localejson.MarshalCompact(t))
}

// jsonInstruction is appended to the system prompt when the provider has no
// structured output for the selected mode.
func jsonInstruction(schema []byte) string {
	return "\nRespond with a single JSON object and nothing else. It must match this JSON schema: " + string(schema)
}
