package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rettend/lin/engine"
	"github.com/rettend/lin/extract"
	"github.com/rettend/lin/localejson"
	"github.com/rettend/lin/mdfile"
)

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// mdDoc is a source document, addressed relative to the project root.
type mdDoc struct {
	file string
	data []byte
}

// markdownDocs reads the documents matched by adapters.markdown.files.
// Files inside a directory named after a target locale are translations
// written by sync and are left out.
func (a *app) markdownDocs() ([]mdDoc, error) {
	files, err := extract.FindSources(a.cfg.Cwd, a.cfg.Adapters.Markdown.Files)
	if err != nil {
		return nil, err
	}
	var docs []mdDoc
	for _, f := range files {
		if a.isTranslation(f) {
			continue
		}
		data, err := os.ReadFile(a.cfg.Path(filepath.FromSlash(f)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		docs = append(docs, mdDoc{file: f, data: data})
	}
	if len(docs) == 0 {
		a.debug("No markdown files found for %s", strings.Join(a.cfg.Adapters.Markdown.Files, ", "))
	}
	return docs, nil
}

func (a *app) isTranslation(file string) bool {
	dirs := strings.Split(file, "/")
	for _, d := range dirs[:len(dirs)-1] {
		for _, l := range a.i18n.Targets() {
			if d == l {
				return true
			}
		}
	}
	return false
}

// extractUnits collects the units of every document in document order.
func extractUnits(ad engine.Adapter, docs []mdDoc) (*localejson.Flat, error) {
	units := localejson.NewFlat()
	for _, d := range docs {
		u, err := ad.Extract(d.file, d.data)
		if err != nil {
			return nil, err
		}
		for _, k := range u.Keys() {
			v, _ := u.Get(k)
			units.Set(k, v)
		}
	}
	return units, nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

func (a *app) readSnapshot(locale string) (*localejson.Flat, error) {
	return localejson.ReadFlatFile(a.cfg.SnapshotPath(locale))
}

func (a *app) snapshotWrite(locale string, f *localejson.Flat) write {
	return write{path: a.cfg.SnapshotPath(locale), data: append(localejson.MarshalFlat(f), '\n')}
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// renderDocs applies a locale's units to every document and returns the
// translated documents that changed. With onlyNew set, documents whose
// output file already exists are left alone.
func (a *app) renderDocs(ad engine.Adapter, docs []mdDoc, locale string, units *localejson.Flat, onlyNew bool) ([]write, error) {
	byFile := make(map[string]*localejson.Flat)
	for _, k := range units.Keys() {
		file := mdfile.FileOf(k)
		if byFile[file] == nil {
			byFile[file] = localejson.NewFlat()
		}
		v, _ := units.Get(k)
		byFile[file].Set(k, v)
	}

	var writes []write
	for _, d := range docs {
		tr := byFile[mdfile.RelPath(d.file)]
		if tr == nil {
			continue
		}
		out := a.cfg.Path(filepath.FromSlash(mdfile.OutputPath(a.cfg.Adapters.Markdown.Output, d.file, locale)))
		if onlyNew && exists(out) {
			continue
		}
		r, err := ad.Render(d.file, d.data, tr.Tree())
		if err != nil {
			return nil, err
		}
		if !r.Changed {
			continue
		}
		writes = append(writes, write{path: out, data: []byte(r.Text)})
	}
	return writes, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// sample formats up to n keys for a "Samples:" line.
func sample(keys []string, n int) string {
	more := ""
	if len(keys) > n {
		keys = keys[:n]
		more = "..."
	}
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "`" + k + "`"
	}
	return strings.Join(quoted, ", ") + more
}

// bolded formats locales as "**a**, **b**".
func bolded(locales []string) string {
	out := make([]string, len(locales))
	for i, l := range locales {
		out[i] = "**" + l + "**"
	}
	return strings.Join(out, ", ")
}

// sortedKeys returns the keys of m in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
