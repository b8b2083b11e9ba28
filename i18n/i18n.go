// Package i18n translates lin's own user-facing strings.
//
// Catalogs are gettext .po files embedded from locales/{lang}/LC_MESSAGES/lin.po
// and read with gotext. Init picks the language once at startup:
//
//	i18n.Init("")  // LANGUAGE, LC_ALL, LC_MESSAGES, LANG
//	fmt.Println(i18n.T("All keys are in sync."))
//	fmt.Println(i18n.N("%d key", "%d keys", n, n))
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "lin"

var (
	po   *gotext.Locale
	lang = "en"

	// raw keeps gotext from formatting a lookup; T and N format afterwards.
	raw []any
)

// Init loads the catalog for lang. An empty lang is detected from the
// environment the way GNU gettext does it.
func Init(l string) {
	if l == "" {
		l = detectLanguage()
	}
	lang = l
	po = gotext.NewLocaleFSWithPath(l, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// Lang returns the language passed to or detected by Init.
func Lang() string {
	return lang
}

// T translates msgid and formats it with args when any are given. Missing
// translations return msgid.
func T(msgid string, args ...any) string {
	s := msgid
	if po != nil {
		s = po.Get(msgid, raw...)
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// N translates a plural message selected by n and formats it with args.
func N(singular, plural string, n int, args ...any) string {
	var s string
	switch {
	case po != nil:
		s = po.GetN(singular, plural, n, raw...)
	case n == 1:
		s = singular
	default:
		s = plural
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// detectLanguage follows the gettext priority LANGUAGE > LC_ALL >
// LC_MESSAGES > LANG.
func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE is a colon separated list.
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8 -> ru_RU
		if idx := strings.IndexByte(val, '.'); idx >= 0 {
			val = val[:idx]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
