// Package mdfile extracts translatable units from Markdown and MDX documents
// and writes translations back into them.
//
// A document yields one unit per text-bearing block and one per string
// frontmatter field. Units are keyed by position:
//
//	docs/intro.md::frontmatter.title
//	docs/intro.md::heading[0]
//	docs/intro.md::paragraph[2]
//	docs/intro.md::listItem[1]
//
// Ordinals count blocks of one kind in document order. Code blocks, HTML
// blocks and MDX import/export statements are skipped entirely and never
// advance a counter, so editing code does not shift the keys of prose.
//
// Render reparses the same source, assigns the same keys and replaces the
// inline content of every block that has a translation. Bytes outside the
// replaced ranges are kept as they are.
package mdfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/rettend/lin/localejson"
)

// Unit kinds.
const (
	KindParagraph = "paragraph"
	KindHeading   = "heading"
	KindListItem  = "listItem"
)

// ParseError is returned for a document that cannot be split into units.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Result is the output of Render.
type Result struct {
	Text    string
	Changed bool
}

// ---------------------------------------------------------------------------
// Keys
// ---------------------------------------------------------------------------

// RelPath normalizes a file path for use in unit keys: backslashes become
// slashes and leading dots and slashes are dropped.
func RelPath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	return strings.TrimLeft(p, "./")
}

// Key builds the key of a positional unit.
func Key(relPath, kind string, index int) string {
	return fmt.Sprintf("%s::%s[%d]", relPath, kind, index)
}

// FrontmatterKey builds the key of a frontmatter field unit.
func FrontmatterKey(relPath, field string) string {
	return relPath + "::frontmatter." + field
}

// FileOf returns the relative path a unit key belongs to.
func FileOf(key string) string {
	if i := strings.Index(key, "::"); i >= 0 {
		return key[:i]
	}
	return key
}

// OutputPath returns where the translation of file for locale is written.
// An empty pattern places it in a locale directory next to the source.
// Otherwise {locale} and {path} in the pattern are substituted.
func OutputPath(pattern, file, locale string) string {
	if pattern == "" {
		return filepath.Join(filepath.Dir(file), locale, filepath.Base(file))
	}
	out := strings.Replace(pattern, "{locale}", locale, 1)
	return strings.Replace(out, "{path}", file, 1)
}

// ---------------------------------------------------------------------------
// Walk
// ---------------------------------------------------------------------------

// visit is called for every counted block with its key.
type visit func(n ast.Node, kind, key string)

type document struct {
	path string
	rel  string
	mdx  bool
	fm   *frontmatter
	body []byte
	root ast.Node
}

func parse(path string, source []byte) (*document, error) {
	if !utf8.Valid(source) {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("invalid UTF-8")}
	}
	fm, err := splitFrontmatter(source)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	root := goldmark.New().Parser().Parse(text.NewReader(fm.body))
	return &document{
		path: path,
		rel:  RelPath(path),
		mdx:  strings.EqualFold(filepath.Ext(path), ".mdx"),
		fm:   fm,
		body: fm.body,
		root: root,
	}, nil
}

// walk assigns keys in document order. Skipped blocks are not entered.
func (d *document) walk(fn visit) {
	counters := map[string]int{}
	_ = ast.Walk(d.root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if d.skipped(n) {
			return ast.WalkSkipChildren, nil
		}
		kind := blockKind(n)
		if kind == "" {
			return ast.WalkContinue, nil
		}
		index := counters[kind]
		counters[kind]++
		fn(n, kind, Key(d.rel, kind, index))
		return ast.WalkContinue, nil
	})
}

func (d *document) skipped(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock,
		ast.KindCodeSpan, ast.KindRawHTML:
		return true
	case ast.KindParagraph:
		return d.mdx && n.Parent() != nil && n.Parent().Kind() == ast.KindDocument && isESM(n, d.body)
	}
	return false
}

// isESM reports whether a top-level MDX paragraph is an import or export
// statement.
func isESM(n ast.Node, source []byte) bool {
	lines := n.Lines()
	if lines.Len() == 0 {
		return false
	}
	seg := lines.At(0)
	first := seg.Value(source)
	return bytes.HasPrefix(first, []byte("import ")) || bytes.HasPrefix(first, []byte("export "))
}

func blockKind(n ast.Node) string {
	switch n.Kind() {
	case ast.KindParagraph, ast.KindTextBlock:
		return KindParagraph
	case ast.KindHeading:
		return KindHeading
	case ast.KindListItem:
		return KindListItem
	}
	return ""
}

// ---------------------------------------------------------------------------
// Text
// ---------------------------------------------------------------------------

// blockText returns the text of a counted block.
func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	if n.Kind() == ast.KindListItem {
		writeBlocks(&b, n, source)
	} else {
		writeInline(&b, n, source)
	}
	return b.String()
}

func writeBlocks(b *strings.Builder, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindThematicBreak:
		case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading:
			writeInline(b, c, source)
		default:
			writeBlocks(b, c, source)
		}
	}
}

func writeInline(b *strings.Builder, n ast.Node, source []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch c := c.(type) {
		case *ast.Text:
			b.Write(decode(c.Segment.Value(source)))
			if c.SoftLineBreak() || c.HardLineBreak() {
				b.WriteByte('\n')
			}
		case *ast.CodeSpan:
			for g := c.FirstChild(); g != nil; g = g.NextSibling() {
				if t, ok := g.(*ast.Text); ok {
					b.Write(t.Segment.Value(source))
				}
			}
		case *ast.String:
			b.Write(c.Value)
		case *ast.RawHTML:
			for i := 0; i < c.Segments.Len(); i++ {
				seg := c.Segments.At(i)
				b.Write(seg.Value(source))
			}
		case *ast.AutoLink:
			b.Write(c.Label(source))
		case *ast.Image:
		default:
			writeInline(b, c, source)
		}
	}
}

// decode turns backslash escapes and character references into the
// characters they stand for, in one pass so decoded text is not decoded
// again.
func decode(v []byte) []byte {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\\' && i+1 < len(v) && util.IsPunct(v[i+1]) {
			out = append(out, v[i+1])
			i++
			continue
		}
		if c == '&' {
			if ref := entityRef.Find(v[i:]); ref != nil {
				out = append(out, util.ResolveEntityNames(util.ResolveNumericReferences(ref))...)
				i += len(ref) - 1
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// ---------------------------------------------------------------------------
// Extract
// ---------------------------------------------------------------------------

// Extract returns the units of a document in document order, frontmatter
// fields first. Blocks whose text is only whitespace still advance their
// counter but produce no unit.
func Extract(path string, source []byte) (*localejson.Flat, error) {
	d, err := parse(path, source)
	if err != nil {
		return nil, err
	}
	units := localejson.NewFlat()
	for _, f := range d.fm.fields() {
		units.Set(FrontmatterKey(d.rel, f.name), f.value.Value)
	}
	d.walk(func(n ast.Node, _, key string) {
		if s := blockText(n, d.body); strings.TrimSpace(s) != "" {
			units.Set(key, s)
		}
	})
	return units, nil
}

// ---------------------------------------------------------------------------
// Render
// ---------------------------------------------------------------------------

type edit struct {
	start, end int
	text       string
}

// Render applies translations to a document. Keys of other files and empty
// values are ignored. Changed is true when any key of this document had a
// translation, or when a frontmatter field received a different value.
func Render(path string, source []byte, translations *localejson.Flat) (Result, error) {
	d, err := parse(path, source)
	if err != nil {
		return Result{}, err
	}

	changed := false
	fmChanged := false
	for _, f := range d.fm.fields() {
		tr, _ := translations.Get(FrontmatterKey(d.rel, f.name))
		if tr != "" && tr != f.value.Value {
			f.value.Value = tr
			fmChanged = true
		}
	}

	// Later (inner) blocks overwrite the target chosen by their list item.
	targets := map[ast.Node]string{}
	var order []ast.Node
	d.walk(func(n ast.Node, kind, key string) {
		tr, _ := translations.Get(key)
		if tr == "" {
			return
		}
		changed = true
		target := n
		if kind == KindListItem {
			target = firstTextBlock(n)
			if target == nil {
				return
			}
		}
		if _, ok := targets[target]; !ok {
			order = append(order, target)
		}
		targets[target] = tr
	})

	var edits []edit
	for _, n := range order {
		if e, ok := d.edit(n, targets[n]); ok {
			edits = append(edits, e)
		}
	}
	body := applyEdits(d.body, edits)

	var out bytes.Buffer
	if fmChanged {
		head, err := d.fm.encode()
		if err != nil {
			return Result{}, &ParseError{Path: path, Err: err}
		}
		out.Write(head)
		changed = true
	} else {
		out.Write(d.fm.raw)
	}
	out.Write(body)
	return Result{Text: out.String(), Changed: changed}, nil
}

// firstTextBlock returns the first paragraph or heading inside a list item.
func firstTextBlock(n ast.Node) ast.Node {
	var found ast.Node
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || c == n {
			return ast.WalkContinue, nil
		}
		switch c.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading:
			found = c
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}

// edit computes the replacement of a block's inline content.
func (d *document) edit(n ast.Node, translation string) (edit, bool) {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return edit{}, false
	}
	start := lines.At(0).Start
	end := lines.At(lines.Len() - 1).Stop
	for start < end && isSpace(d.body[start]) {
		start++
	}
	for end > start && isSpace(d.body[end-1]) {
		end--
	}

	tr := strings.ReplaceAll(translation, "\r\n", "\n")
	tr = strings.TrimRight(tr, "\n")
	if n.Kind() == ast.KindHeading {
		tr = escapeClosingHashes(escapeText(strings.TrimSpace(strings.ReplaceAll(tr, "\n", " "))))
	} else {
		tr = strings.ReplaceAll(escapeText(tr), "\n", "\n"+containerPrefix(d.body, start))
	}
	return edit{start: start, end: end, text: tr}, true
}

var (
	entityRef     = regexp.MustCompile(`^&(?:#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{0,31});`)
	orderedMarker = regexp.MustCompile(`^[0-9]{1,9}[.)](?:[ \t]|$)`)
)

// escapeText makes plain text safe to splice into a block. Markup
// characters are escaped, blank lines are dropped and no line may open a
// block of its own, so the document keeps its block structure.
func escapeText(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimLeft(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, escapeLineStart(escapeInline(line)))
	}
	return strings.Join(lines, "\n")
}

func escapeInline(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '`', '*', '_', '[', ']', '<':
			b.WriteByte('\\')
		case '&':
			if entityRef.MatchString(s[i:]) {
				b.WriteByte('\\')
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// escapeLineStart escapes a heading, blockquote, list, fence or setext
// marker at the start of a line.
func escapeLineStart(line string) string {
	if line == "" {
		return line
	}
	if orderedMarker.MatchString(line) {
		i := strings.IndexAny(line, ".)")
		return line[:i] + `\` + line[i:]
	}
	switch c := line[0]; c {
	case '#', '>':
		return `\` + line
	case '-', '+', '=':
		if len(line) == 1 || line[1] == ' ' || line[1] == '\t' || strings.Trim(line, string(c)+" \t") == "" {
			return `\` + line
		}
	case '~':
		if strings.HasPrefix(line, "~~~") {
			return `\` + line
		}
	}
	return line
}

// escapeClosingHashes keeps a trailing run of # in a heading from being
// read as the closing sequence.
func escapeClosingHashes(s string) string {
	t := strings.TrimRight(s, "#")
	if t == s || (t != "" && !strings.HasSuffix(t, " ")) {
		return s
	}
	return t + `\` + s[len(t):]
}

// containerPrefix derives the prefix of continuation lines from the text
// between the start of the line and pos. Blockquote markers and whitespace
// are kept, list markers become spaces.
func containerPrefix(source []byte, pos int) string {
	lineStart := bytes.LastIndexByte(source[:pos], '\n') + 1
	prefix := []rune(string(source[lineStart:pos]))
	for i, r := range prefix {
		if r != '>' && r != ' ' && r != '\t' {
			prefix[i] = ' '
		}
	}
	return string(prefix)
}

func applyEdits(source []byte, edits []edit) []byte {
	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := append([]byte(nil), source...)
	for _, e := range edits {
		var b []byte
		b = append(b, out[:e.start]...)
		b = append(b, e.text...)
		b = append(b, out[e.end:]...)
		out = b
	}
	return out
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
