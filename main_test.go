package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rettend/lin/translate"
)

func init() {
	color.NoColor = true
}

// echoProvider answers every batch with "<locale>:<source value>".
type echoProvider struct {
	calls *int
}

func (p echoProvider) Generate(_ context.Context, req translate.Request) (string, error) {
	if p.calls != nil {
		*p.calls++
	}
	var in map[string]map[string]string
	if err := json.Unmarshal([]byte(req.User), &in); err != nil {
		return "", err
	}
	out := map[string]map[string]string{}
	for locale, keys := range in {
		out[locale] = map[string]string{}
		for k, v := range keys {
			out[locale][k] = locale + ":" + v
		}
	}
	data, err := json.Marshal(out)
	return string(data), err
}

const baseConfig = `i18n:
  locales: [en, de, fr]
  defaultLocale: en
registry:
  baseUrl: ""
  cache: none
`

// newProject writes files into a temporary project and isolates the user
// directories. The translation provider is replaced by echoProvider.
func newProject(t *testing.T, files map[string]string) (string, *int) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, ".xdg-data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, ".xdg-cache"))
	for _, env := range []string{"OPENAI_API_KEY", "LIN_API_KEY"} {
		t.Setenv(env, "")
	}

	if _, ok := files["lin.yaml"]; !ok {
		files["lin.yaml"] = baseConfig
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	calls := 0
	old := newProvider
	newProvider = func(context.Context, translate.Settings) (translate.Provider, error) {
		return echoProvider{calls: &calls}, nil
	}
	t.Cleanup(func() { newProvider = old })
	return dir, &calls
}

// run executes lin in-process against dir and returns its output.
func run(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"-c", dir}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func readLocaleFile(t *testing.T, dir, locale string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "locales", locale+".json"))
	if err != nil {
		t.Fatalf("reading %s: %v", locale, err)
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("parsing %s: %v\n%s", locale, err, data)
	}
	return v
}

func lookup(v map[string]any, path string) (string, bool) {
	parts := strings.Split(path, ".")
	var cur any = v
	for _, p := range parts {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = m[p]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

// readSnapshot parses a Markdown snapshot into its keys and values.
func readSnapshot(t *testing.T, dir, locale string) ([]string, map[string]string) {
	t.Helper()
	data := readFile(t, dir, ".lin/markdown/"+locale+".json")
	var values map[string]string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		t.Fatalf("parsing %s snapshot: %v\n%s", locale, err, data)
	}
	var keys []string
	dec := json.NewDecoder(strings.NewReader(data))
	dec.Token()
	for dec.More() {
		tok, _ := dec.Token()
		keys = append(keys, tok.(string))
		dec.Token()
	}
	return keys, values
}

const markdownConfig = baseConfig + `adapter: [markdown]
adapters:
  markdown:
    files: ["docs/*.md"]
`

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), "lin version dev") {
		t.Fatalf("version output = %q", out.String())
	}
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func TestCheckReportsUnusedKeys(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"used": "Used", "stale": "Stale"}`,
		"src/app.ts":      `const a = t('used')`,
	})

	out, err := run(t, dir, "", "check")
	if !errors.Is(err, errIssuesFound) {
		t.Fatalf("check error = %v, want errIssuesFound\n%s", err, out)
	}
	if !strings.Contains(out, "unused keys in default locale") || !strings.Contains(out, "stale") {
		t.Fatalf("check output does not report the unused key:\n%s", out)
	}
}

func TestCheckInSync(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"nav": {"home": "Home"}}`,
		"src/app.tsx":     `<a>{t("nav.home")}</a>`,
	})

	out, err := run(t, dir, "", "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "All keys are in sync.") {
		t.Fatalf("check output = %q", out)
	}
}

func TestCheckFixAddsDefaultValues(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"title": "Title"}`,
		"src/app.ts":      "t('title')\nt('greeting', 'Hello there')\n",
	})

	out, err := run(t, dir, "", "check", "--fix")
	if err != nil {
		t.Fatalf("check --fix: %v\n%s", err, out)
	}
	en := readLocaleFile(t, dir, "en")
	if got, _ := lookup(en, "greeting"); got != "Hello there" {
		t.Fatalf("greeting = %q, want %q", got, "Hello there")
	}
	if got, _ := lookup(en, "title"); got != "Title" {
		t.Fatalf("title = %q, want kept", got)
	}
}

func TestCheckPruneRemovesUnusedKeysEverywhere(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"keep": "Keep", "old": {"gone": "Gone"}}`,
		"locales/de.json": `{"keep": "Behalten", "old": {"gone": "Weg"}}`,
		"src/app.ts":      `t('keep')`,
	})

	out, err := run(t, dir, "", "check", "--prune", "--silent")
	if err != nil {
		t.Fatalf("check --prune: %v\n%s", err, out)
	}
	for _, l := range []string{"en", "de"} {
		v := readLocaleFile(t, dir, l)
		if _, ok := v["old"]; ok {
			t.Fatalf("%s still has the pruned object: %v", l, v)
		}
		if _, ok := lookup(v, "keep"); !ok {
			t.Fatalf("%s lost a used key: %v", l, v)
		}
	}
}

func TestCheckKeysReportsMissingLocaleKeys(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"a": "A", "b": "B"}`,
		"locales/de.json": `{"a": "A-de"}`,
		"locales/fr.json": `{"a": "A-fr", "b": "B-fr"}`,
	})

	out, err := run(t, dir, "", "check", "--keys")
	if !errors.Is(err, errIssuesFound) {
		t.Fatalf("check --keys error = %v, want errIssuesFound\n%s", err, out)
	}
	if !strings.Contains(out, "Locale de is missing 1 keys") {
		t.Fatalf("check --keys output = %q", out)
	}

	if out, err := run(t, dir, "", "check", "--keys", "--fix"); err != nil {
		t.Fatalf("check --keys --fix: %v\n%s", err, out)
	}
	if got, ok := lookup(readLocaleFile(t, dir, "de"), "b"); !ok || got != "" {
		t.Fatalf("de.b = %q (%v), want empty string", got, ok)
	}
}

func TestCheckSortAlphabetically(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"b": "B", "a": "A"}`,
	})

	if out, err := run(t, dir, "", "check", "--sort", "abc", "-l", "en"); err != nil {
		t.Fatalf("check --sort: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "locales", "en.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(string(data), `"a"`) > strings.Index(string(data), `"b"`) {
		t.Fatalf("keys not sorted:\n%s", data)
	}
}

func TestCheckRejectsInvalidSort(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{}`,
	})
	if _, err := run(t, dir, "", "check", "--sort", "zyx"); err == nil {
		t.Fatal("expected an error for an unknown sort order")
	}
}

func TestCheckMarkdownFixAndPrune(t *testing.T) {
	dir, calls := newProject(t, map[string]string{
		"lin.yaml":              markdownConfig,
		"docs/a.md":             "# Title\n\nNew para.\n",
		".lin/markdown/en.json": `{"docs/a.md::heading[0]": "Title", "docs/a.md::paragraph[9]": "Gone"}`,
		".lin/markdown/de.json": `{"docs/a.md::heading[0]": "Titel", "docs/a.md::paragraph[9]": "Weg"}`,
	})

	out, err := run(t, dir, "", "check")
	if !errors.Is(err, errIssuesFound) {
		t.Fatalf("check error = %v, want errIssuesFound\n%s", err, out)
	}
	if !strings.Contains(out, "Found 1 new content blocks") || !strings.Contains(out, "Found 1 unused keys in default snapshot") {
		t.Fatalf("check output = %q", out)
	}

	out, err = run(t, dir, "", "check", "--fix", "--prune")
	if err != nil {
		t.Fatalf("check --fix --prune: %v\n%s", err, out)
	}
	keys, source := readSnapshot(t, dir, "en")
	if strings.Join(keys, ",") != "docs/a.md::heading[0],docs/a.md::paragraph[0]" {
		t.Fatalf("source snapshot keys = %q", keys)
	}
	if source["docs/a.md::paragraph[0]"] != "New para." {
		t.Fatalf("source snapshot = %v", source)
	}
	_, de := readSnapshot(t, dir, "de")
	if len(de) != 2 || de["docs/a.md::heading[0]"] != "Titel" || de["docs/a.md::paragraph[0]"] != "" {
		t.Fatalf("de snapshot = %v", de)
	}
	_, fr := readSnapshot(t, dir, "fr")
	if v, ok := fr["docs/a.md::heading[0]"]; len(fr) != 2 || !ok || v != "" {
		t.Fatalf("fr snapshot = %v", fr)
	}

	if out, err := run(t, dir, "", "check"); err != nil {
		t.Fatalf("check after fix: %v\n%s", err, out)
	}
	if *calls != 0 {
		t.Fatalf("provider calls = %d, want 0", *calls)
	}
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

func TestSyncTranslatesOnlyMissingKeys(t *testing.T) {
	dir, calls := newProject(t, map[string]string{
		"locales/en.json": `{"hello": "Hello", "nav": {"home": "Home"}}`,
		"locales/de.json": `{"hello": "Hallo"}`,
	})

	out, err := run(t, dir, "", "sync", "de")
	if err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	de := readLocaleFile(t, dir, "de")
	if got, _ := lookup(de, "hello"); got != "Hallo" {
		t.Fatalf("existing translation overwritten: hello = %q", got)
	}
	if got, _ := lookup(de, "nav.home"); got != "de:Home" {
		t.Fatalf("nav.home = %q, want %q", got, "de:Home")
	}
	if *calls != 1 {
		t.Fatalf("provider calls = %d, want 1", *calls)
	}
	if _, err := os.Stat(filepath.Join(dir, "locales", "fr.json")); !os.IsNotExist(err) {
		t.Fatalf("fr.json should not be created when syncing de only")
	}
}

func TestSyncCreatesMissingLocales(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"hello": "Hello"}`,
	})

	out, err := run(t, dir, "", "sync")
	if err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	for _, l := range []string{"de", "fr"} {
		if got, _ := lookup(readLocaleFile(t, dir, l), "hello"); got != l+":Hello" {
			t.Fatalf("%s.hello = %q", l, got)
		}
	}
	if !strings.Contains(out, "Creating a new one.") {
		t.Fatalf("sync output does not mention the new files:\n%s", out)
	}
}

func TestSyncUpToDateMakesNoCalls(t *testing.T) {
	dir, calls := newProject(t, map[string]string{
		"locales/en.json": `{"hello": "Hello"}`,
		"locales/de.json": `{"hello": "Hallo"}`,
		"locales/fr.json": `{"hello": "Bonjour"}`,
	})

	out, err := run(t, dir, "", "sync")
	if err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	if *calls != 0 {
		t.Fatalf("provider calls = %d, want 0", *calls)
	}
	if !strings.Contains(out, "All locales are up to date.") {
		t.Fatalf("sync output = %q", out)
	}
}

func TestSyncForceRetranslates(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"hello": "Hello"}`,
		"locales/de.json": `{"hello": "Hallo"}`,
	})

	if out, err := run(t, dir, "", "sync", "--force", "de"); err != nil {
		t.Fatalf("sync --force: %v\n%s", err, out)
	}
	if got, _ := lookup(readLocaleFile(t, dir, "de"), "hello"); got != "de:Hello" {
		t.Fatalf("hello = %q, want retranslated", got)
	}
}

func TestSyncForceDeclinedKeepsFile(t *testing.T) {
	original := `{"hello": "Hallo", "extra": "Mehr"}`
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"hello": "Hello"}`,
		"locales/de.json": original,
	})

	out, err := run(t, dir, "n\n", "sync", "--force", "de")
	if err != nil {
		t.Fatalf("sync --force: %v\n%s", err, out)
	}
	if !strings.Contains(out, "This will remove 1 keys from de. Continue?") {
		t.Fatalf("sync --force did not ask before removing keys:\n%s", out)
	}
	if !strings.Contains(out, "Cancelled, nothing was written.") {
		t.Fatalf("sync --force output = %q", out)
	}
	if got := readFile(t, dir, "locales/de.json"); got != original {
		t.Fatalf("de.json = %q, want untouched %q", got, original)
	}

	if out, err := run(t, dir, "y\n", "sync", "--force", "de"); err != nil {
		t.Fatalf("sync --force: %v\n%s", err, out)
	}
	de := readLocaleFile(t, dir, "de")
	if _, ok := de["extra"]; ok {
		t.Fatalf("accepted force sync kept the extra key: %v", de)
	}
	if got, _ := lookup(de, "hello"); got != "de:Hello" {
		t.Fatalf("hello = %q, want retranslated", got)
	}
}

func TestSyncMarkdownWritesDocumentsAndSnapshots(t *testing.T) {
	dir, calls := newProject(t, map[string]string{
		"lin.yaml":  markdownConfig,
		"docs/a.md": "# Title\n\nFirst para.\n",
	})

	out, err := run(t, dir, "", "sync")
	if err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	if got, want := readFile(t, dir, "docs/de/a.md"), "# de:Title\n\nde:First para.\n"; got != want {
		t.Fatalf("docs/de/a.md = %q, want %q", got, want)
	}
	if got, want := readFile(t, dir, "docs/fr/a.md"), "# fr:Title\n\nfr:First para.\n"; got != want {
		t.Fatalf("docs/fr/a.md = %q, want %q", got, want)
	}

	keys, source := readSnapshot(t, dir, "en")
	wantKeys := []string{"docs/a.md::heading[0]", "docs/a.md::paragraph[0]"}
	if strings.Join(keys, ",") != strings.Join(wantKeys, ",") {
		t.Fatalf("source snapshot keys = %q, want %q", keys, wantKeys)
	}
	if source["docs/a.md::paragraph[0]"] != "First para." {
		t.Fatalf("source snapshot = %v", source)
	}
	_, de := readSnapshot(t, dir, "de")
	if de["docs/a.md::heading[0]"] != "de:Title" || de["docs/a.md::paragraph[0]"] != "de:First para." {
		t.Fatalf("de snapshot = %v", de)
	}

	first := *calls
	if first == 0 {
		t.Fatal("expected provider calls on the first sync")
	}
	out, err = run(t, dir, "", "sync")
	if err != nil {
		t.Fatalf("second sync: %v\n%s", err, out)
	}
	if *calls != first {
		t.Fatalf("provider calls = %d after re-sync, want %d", *calls, first)
	}
	if !strings.Contains(out, "Markdown for de is up to date.") {
		t.Fatalf("second sync output = %q", out)
	}
	if got := readFile(t, dir, "docs/de/a.md"); got != "# de:Title\n\nde:First para.\n" {
		t.Fatalf("docs/de/a.md changed on re-sync: %q", got)
	}
}

func TestSyncMarkdownRetranslatesEditedBlocks(t *testing.T) {
	dir, calls := newProject(t, map[string]string{
		"lin.yaml":  markdownConfig,
		"docs/a.md": "# Title\n\nFirst para.\n",
	})
	if out, err := run(t, dir, "", "sync", "de"); err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	if err := os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("# Title\n\nChanged para.\n"), 0644); err != nil {
		t.Fatal(err)
	}
	before := *calls
	if out, err := run(t, dir, "", "sync", "de"); err != nil {
		t.Fatalf("sync: %v\n%s", err, out)
	}
	if *calls != before+1 {
		t.Fatalf("provider calls = %d, want %d", *calls, before+1)
	}
	_, de := readSnapshot(t, dir, "de")
	if de["docs/a.md::paragraph[0]"] != "de:Changed para." || de["docs/a.md::heading[0]"] != "de:Title" {
		t.Fatalf("de snapshot = %v", de)
	}
}

// ---------------------------------------------------------------------------
// add / del / edit
// ---------------------------------------------------------------------------

func TestAddTranslatesNewKey(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"nav": {"home": "Home"}}`,
		"locales/de.json": `{"nav": {"home": "Start"}}`,
	})

	out, err := run(t, dir, "", "add", "nav.about", "About", "us")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	want := map[string]string{"en": "About us", "de": "de:About us", "fr": "fr:About us"}
	for l, w := range want {
		if got, _ := lookup(readLocaleFile(t, dir, l), "nav.about"); got != w {
			t.Fatalf("%s nav.about = %q, want %q", l, got, w)
		}
	}
	if got, _ := lookup(readLocaleFile(t, dir, "de"), "nav.home"); got != "Start" {
		t.Fatalf("de nav.home = %q, want kept", got)
	}
}

func TestAddPromptsForText(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{}`,
	})

	if out, err := run(t, dir, "Typed text\n", "add", "greeting", "-l", "en"); err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if got, _ := lookup(readLocaleFile(t, dir, "en"), "greeting"); got != "Typed text" {
		t.Fatalf("greeting = %q", got)
	}
}

func TestAddSuggestsKeysForPrefix(t *testing.T) {
	dir, calls := newProject(t, map[string]string{
		"locales/en.json": `{"nav": {"home": "Home", "about": "About"}}`,
	})

	out, err := run(t, dir, "", "add", "nav.")
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if !strings.Contains(out, "nav.home") || !strings.Contains(out, "nav.about") {
		t.Fatalf("suggestions missing:\n%s", out)
	}
	if *calls != 0 {
		t.Fatalf("provider calls = %d, want 0", *calls)
	}
}

func TestDelRemovesKeyAndEmptyParents(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"a": "A", "group": {"only": "Only"}}`,
		"locales/de.json": `{"a": "A-de", "group": {"only": "Nur"}}`,
	})

	out, err := run(t, dir, "", "del", "group.only")
	if err != nil {
		t.Fatalf("del: %v\n%s", err, out)
	}
	for _, l := range []string{"en", "de"} {
		v := readLocaleFile(t, dir, l)
		if _, ok := v["group"]; ok {
			t.Fatalf("%s still has the empty parent: %v", l, v)
		}
	}
	if !strings.Contains(out, "not found in fr") {
		t.Fatalf("del should report fr as skipped:\n%s", out)
	}
}

func TestEditChangesExistingKeyOnly(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"a": "A"}`,
		"locales/de.json": `{"a": "A-de"}`,
	})

	if out, err := run(t, dir, "", "edit", "a", "New", "value", "-l", "en"); err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	if got, _ := lookup(readLocaleFile(t, dir, "en"), "a"); got != "New value" {
		t.Fatalf("en.a = %q", got)
	}
	if got, _ := lookup(readLocaleFile(t, dir, "de"), "a"); got != "A-de" {
		t.Fatalf("de.a = %q, want untouched", got)
	}
}

// ---------------------------------------------------------------------------
// undo
// ---------------------------------------------------------------------------

func TestUndoRestoresLastChange(t *testing.T) {
	original := `{"a": "A"}`
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": original,
	})

	if out, err := run(t, dir, "", "add", "b", "B"); err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "locales", "de.json")); err != nil {
		t.Fatalf("add did not create de.json: %v", err)
	}

	out, err := run(t, dir, "", "undo", "list")
	if err != nil {
		t.Fatalf("undo list: %v", err)
	}
	if !strings.Contains(out, "locales/en.json") {
		t.Fatalf("undo list = %q", out)
	}

	if out, err := run(t, dir, "", "undo"); err != nil {
		t.Fatalf("undo: %v\n%s", err, out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "locales", "en.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Fatalf("en.json = %q, want %q", data, original)
	}
	if _, err := os.Stat(filepath.Join(dir, "locales", "de.json")); !os.IsNotExist(err) {
		t.Fatalf("de.json should be removed by undo, stat err = %v", err)
	}

	out, err = run(t, dir, "", "undo")
	if err != nil {
		t.Fatalf("second undo: %v", err)
	}
	if !strings.Contains(out, "Nothing to undo.") {
		t.Fatalf("second undo output = %q", out)
	}
}

func TestUndoDisabled(t *testing.T) {
	dir, _ := newProject(t, map[string]string{
		"locales/en.json": `{"a": "A"}`,
	})

	if out, err := run(t, dir, "", "--undo=false", "edit", "a", "B", "-l", "en"); err != nil {
		t.Fatalf("edit: %v\n%s", err, out)
	}
	out, err := run(t, dir, "", "undo")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !strings.Contains(out, "Nothing to undo.") {
		t.Fatalf("undo output = %q", out)
	}
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func TestAuthSetListRemove(t *testing.T) {
	dir, _ := newProject(t, map[string]string{})

	if out, err := run(t, dir, "", "auth", "set", "openai", "sk-test-1234567890"); err != nil {
		t.Fatalf("auth set: %v\n%s", err, out)
	}
	info, err := os.Stat(filepath.Join(dir, ".xdg-data", "lin", "auth.json"))
	if err != nil {
		t.Fatalf("auth.json not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %v, want 0600", info.Mode().Perm())
	}

	out, err := run(t, dir, "", "auth", "list")
	if err != nil {
		t.Fatalf("auth list: %v", err)
	}
	if !strings.Contains(out, "sk-t...7890") || strings.Contains(out, "sk-test-1234567890") {
		t.Fatalf("auth list should show the masked key only:\n%s", out)
	}

	if out, err := run(t, dir, "", "auth", "remove", "openai"); err != nil {
		t.Fatalf("auth remove: %v\n%s", err, out)
	}
	out, _ = run(t, dir, "", "auth", "list")
	if !strings.Contains(out, "No API keys stored.") {
		t.Fatalf("auth list after remove = %q", out)
	}
}

func TestAuthRejectsUnknownProvider(t *testing.T) {
	dir, _ := newProject(t, map[string]string{})
	if _, err := run(t, dir, "", "auth", "set", "nope", "key"); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

// ---------------------------------------------------------------------------
// models
// ---------------------------------------------------------------------------

func TestModelsListsCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"provider": "openai", "value": "gpt-1", "alias": "GPT-1", "iq": 5, "speed": 5},
			{"provider": "anthropic", "value": "claude-x", "alias": "Claude X", "iq": 3}
		]`))
	}))
	defer srv.Close()

	dir, _ := newProject(t, map[string]string{
		"lin.yaml": "registry:\n  baseUrl: " + srv.URL + "\n  cache: memory\n",
	})

	out, err := run(t, dir, "", "models")
	if err != nil {
		t.Fatalf("models: %v\n%s", err, out)
	}
	for _, want := range []string{"Available Models:", "openai", "GPT-1: gpt-1", "●●●●● 5", "●●●○○ 3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("models output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "openai") > strings.Index(out, "anthropic") {
		t.Fatalf("providers should keep catalog order:\n%s", out)
	}

	out, err = run(t, dir, "", "models", "anthropic")
	if err != nil {
		t.Fatalf("models anthropic: %v", err)
	}
	if strings.Contains(out, "gpt-1") || !strings.Contains(out, "claude-x") {
		t.Fatalf("provider filter not applied:\n%s", out)
	}

	out, err = run(t, dir, "", "models", "mistral")
	if err != nil {
		t.Fatalf("models mistral: %v", err)
	}
	if !strings.Contains(out, "No models found.") {
		t.Fatalf("models mistral = %q", out)
	}

	out, err = run(t, dir, "", "models", "--clear-cache")
	if err != nil {
		t.Fatalf("models --clear-cache: %v", err)
	}
	if !strings.Contains(out, "LLM registry cache cleared.") {
		t.Fatalf("clear cache output = %q", out)
	}
}

func TestScoreDots(t *testing.T) {
	plain := func(a ...any) string { return a[0].(string) }
	tests := []struct {
		score int
		want  string
	}{
		{0, ""},
		{1, "●○○○○ 1"},
		{5, "●●●●● 5"},
	}
	for _, tt := range tests {
		if got := scoreDots(tt.score, plain); got != tt.want {
			t.Errorf("scoreDots(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
