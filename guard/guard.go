// Package guard asks for confirmation before a write would remove keys.
package guard

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rettend/lin/console"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(question string) (bool, error)

// Counts maps a locale to its number of keys.
type Counts map[string]int

// Check compares key counts before and after an operation. It returns true
// when the caller may write.
//
// Locales are taken from after; a locale missing from before counts as 0.
// When a locale loses keys and silent is false, confirm decides. Silent runs
// approve without asking. When nothing is lost and silent is false, a one
// line summary of the deltas is written to out.
func Check(before, after Counts, silent bool, confirm ConfirmFunc, out io.Writer) (bool, error) {
	locales := make([]string, 0, len(after))
	for l := range after {
		locales = append(locales, l)
	}
	sort.Strings(locales)

	deltas := make(map[string]int, len(locales))
	var removals []string
	for _, l := range locales {
		d := after[l] - before[l]
		deltas[l] = d
		if d < 0 {
			removals = append(removals, fmt.Sprintf("`%d` keys from **%s**", -d, l))
		}
	}

	if len(removals) > 0 {
		if silent {
			return true, nil
		}
		question := fmt.Sprintf("This will remove %s. Continue?", strings.Join(removals, ", "))
		ok, err := confirm(question)
		if err != nil {
			return false, err
		}
		return ok, nil
	}

	if !silent && out != nil && len(locales) > 0 {
		parts := make([]string, len(locales))
		for i, l := range locales {
			sign := ""
			if deltas[l] > 0 {
				sign = "+"
			}
			parts[i] = fmt.Sprintf("%s (%s%d)", l, sign, deltas[l])
		}
		fmt.Fprintf(out, "%s %s\n", console.Result, strings.Join(parts, ", "))
	}
	return true, nil
}
