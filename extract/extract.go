// Package extract finds the translation keys a codebase uses.
//
// Source files are selected with doublestar globs (config parser.input) and
// scanned for i18next-style calls:
//
//	t('key')                     i18n.t("key")           $t('key')
//	t('key', 'Default value')    t('key', { defaultValue: 'Default value' })
//	<Trans i18nKey="key">
//
// Keys built at runtime (template literals with ${...}, variables) cannot be
// known statically and are ignored.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// skipDirs contains directory names never scanned.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".lin":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".nuxt":        true,
	".output":      true,
}

// Key is one key usage found in a source file.
type Key struct {
	Key          string
	DefaultValue string
	File         string
	Line         int
}

// ---------------------------------------------------------------------------
// File discovery
// ---------------------------------------------------------------------------

// FindSources returns the files under root matching any of patterns, as
// sorted slash-separated paths relative to root.
func FindSources(root string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || skipped(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}

	sort.Strings(files)
	return files, nil
}

func skipped(path string) bool {
	for _, part := range strings.Split(path, "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

const stringLit = `'((?:[^'\\\n]|\\.)*)'|"((?:[^"\\\n]|\\.)*)"|` + "`" + `((?:[^` + "`" + `\\]|\\.)*)` + "`"

var (
	// t(, i18n.t(, i18next.t(, $t(, this.$t( ...
	callRe = regexp.MustCompile(`(?:^|[^\w$])(?:[\w$]+\.)*\$?t\(\s*(?:` + stringLit + `)`)

	defaultArgRe    = regexp.MustCompile(`^\s*,\s*(?:` + stringLit + `)\s*[,)]`)
	defaultOptionRe = regexp.MustCompile(`^\s*,\s*\{[^{}]*?\bdefaultValue\s*:\s*(?:` + stringLit + `)`)

	transRe = regexp.MustCompile(`\bi18nKey\s*=\s*(?:\{\s*)?(?:` + stringLit + `)`)
)

// Parse returns the keys used in content, in order of appearance. file is
// only recorded on the results.
func Parse(content, file string) []Key {
	var keys []Key

	for _, m := range callRe.FindAllStringSubmatchIndex(content, -1) {
		key, ok := literal(content, m[2:8])
		if !ok || key == "" {
			continue
		}
		k := Key{Key: key, File: file, Line: lineAt(content, groupStart(m[2:8]))}
		rest := content[m[1]:]
		if d := defaultArgRe.FindStringSubmatchIndex(rest); d != nil {
			k.DefaultValue, _ = literal(rest, d[2:8])
		} else if d := defaultOptionRe.FindStringSubmatchIndex(rest); d != nil {
			k.DefaultValue, _ = literal(rest, d[2:8])
		}
		keys = append(keys, k)
	}

	for _, m := range transRe.FindAllStringSubmatchIndex(content, -1) {
		if key, ok := literal(content, m[2:8]); ok && key != "" {
			keys = append(keys, Key{Key: key, File: file, Line: lineAt(content, groupStart(m[2:8]))})
		}
	}

	sort.SliceStable(keys, func(i, j int) bool { return keys[i].Line < keys[j].Line })
	return keys
}

// literal returns the string captured by one of the three stringLit groups.
// Template literals with substitutions are rejected.
func literal(s string, idx []int) (string, bool) {
	for g := 0; g < 3; g++ {
		start, end := idx[2*g], idx[2*g+1]
		if start < 0 {
			continue
		}
		raw := s[start:end]
		if g == 2 && strings.Contains(raw, "${") {
			return "", false
		}
		return unescape(raw), true
	}
	return "", false
}

var escapes = strings.NewReplacer(`\\`, `\`, `\'`, `'`, `\"`, `"`, "\\`", "`", `\n`, "\n", `\t`, "\t")

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return escapes.Replace(s)
}

// groupStart returns the offset of the first stringLit group that matched.
// The whole match may begin with the character before the call.
func groupStart(idx []int) int {
	for g := 0; g < len(idx); g += 2 {
		if idx[g] >= 0 {
			return idx[g]
		}
	}
	return 0
}

func lineAt(s string, offset int) int {
	return strings.Count(s[:offset], "\n") + 1
}

// ---------------------------------------------------------------------------
// Scanning
// ---------------------------------------------------------------------------

// Result is the outcome of Scan.
type Result struct {
	// Files is the list of scanned files.
	Files []string
	// Keys holds each used key once, in first-seen order. A key seen with a
	// default value keeps the first non-empty one.
	Keys []Key
}

// Scan parses every file under root matching patterns.
func Scan(root string, patterns []string) (*Result, error) {
	files, err := FindSources(root, patterns)
	if err != nil {
		return nil, err
	}

	res := &Result{Files: files}
	index := make(map[string]int)
	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		for _, k := range Parse(string(data), f) {
			if i, ok := index[k.Key]; ok {
				if res.Keys[i].DefaultValue == "" && k.DefaultValue != "" {
					res.Keys[i].DefaultValue = k.DefaultValue
				}
				continue
			}
			index[k.Key] = len(res.Keys)
			res.Keys = append(res.Keys, k)
		}
	}
	return res, nil
}

// Names returns the keys of r.
func (r *Result) Names() []string {
	out := make([]string, len(r.Keys))
	for i, k := range r.Keys {
		out[i] = k.Key
	}
	return out
}
