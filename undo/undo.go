// Package undo keeps snapshots of locale files taken before lin overwrites
// them, so that the last change can be reverted with `lin undo`.
//
// History lives in .lin/undo under the project directory: history.yaml
// lists the snapshots and each snapshot has a directory holding the
// original file contents.
package undo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Dir is the history directory relative to the project root.
const Dir = ".lin/undo"

// HistoryFileName is the manifest inside Dir.
const HistoryFileName = "history.yaml"

// MaxEntries is the number of snapshots kept.
const MaxEntries = 20

// ErrEmpty is returned by Restore when there is nothing to undo.
var ErrEmpty = errors.New("nothing to undo")

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// File is one file in a snapshot. Path is relative to the project root.
// Absent marks a file that did not exist, which Restore deletes.
type File struct {
	Path   string `yaml:"path"`
	Absent bool   `yaml:"absent,omitempty"`
	Blob   string `yaml:"blob,omitempty"`
}

// Entry is one snapshot.
type Entry struct {
	ID    string    `yaml:"id"`
	Time  time.Time `yaml:"time"`
	Files []File    `yaml:"files"`
}

// History is the list of snapshots, oldest first.
type History struct {
	Entries []Entry `yaml:"entries"`

	mu   sync.Mutex
	root string
	now  func() time.Time
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads the history of the project at root. A missing manifest is an
// empty history.
func Load(root string) (*History, error) {
	h := &History{root: root, now: time.Now}
	path := h.manifest()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return h, nil
}

func (h *History) dir(elem ...string) string {
	return filepath.Join(append([]string{h.root, Dir}, elem...)...)
}

func (h *History) manifest() string {
	return h.dir(HistoryFileName)
}

func (h *History) write() error {
	if err := os.MkdirAll(h.dir(), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", h.dir(), err)
	}
	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("marshaling undo history: %w", err)
	}
	path := h.manifest()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

// Save snapshots paths and appends the snapshot to the history. Duplicate
// paths are recorded once. Snapshots beyond MaxEntries are dropped, oldest
// first. Saving no paths records nothing and returns nil.
func (h *History) Save(paths []string) (*Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(paths) == 0 {
		return nil, nil
	}

	e := Entry{ID: uuid.NewString(), Time: h.now().UTC()}
	blobDir := h.dir(e.ID)
	seen := make(map[string]bool)

	for _, p := range paths {
		rel := h.rel(p)
		if seen[rel] {
			continue
		}
		seen[rel] = true

		data, err := os.ReadFile(h.abs(rel))
		if os.IsNotExist(err) {
			e.Files = append(e.Files, File{Path: rel, Absent: true})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}

		blob := fmt.Sprintf("%d", len(e.Files))
		if err := os.MkdirAll(blobDir, 0755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", blobDir, err)
		}
		if err := os.WriteFile(filepath.Join(blobDir, blob), data, 0644); err != nil {
			return nil, fmt.Errorf("saving snapshot of %s: %w", rel, err)
		}
		e.Files = append(e.Files, File{Path: rel, Blob: blob})
	}

	h.Entries = append(h.Entries, e)
	for len(h.Entries) > MaxEntries {
		os.RemoveAll(h.dir(h.Entries[0].ID))
		h.Entries = h.Entries[1:]
	}
	if err := h.write(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Restore puts back the files of the newest snapshot and removes it from
// the history.
func (h *History) Restore() (*Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.Entries) == 0 {
		return nil, ErrEmpty
	}
	e := h.Entries[len(h.Entries)-1]

	for _, f := range e.Files {
		target := h.abs(f.Path)
		if f.Absent {
			if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("removing %s: %w", f.Path, err)
			}
			continue
		}
		data, err := os.ReadFile(h.dir(e.ID, f.Blob))
		if err != nil {
			return nil, fmt.Errorf("reading snapshot of %s: %w", f.Path, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return nil, fmt.Errorf("creating directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Path, err)
		}
	}

	h.Entries = h.Entries[:len(h.Entries)-1]
	os.RemoveAll(h.dir(e.ID))
	if err := h.write(); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns the snapshots, newest first.
func (h *History) List() []Entry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Entry, len(h.Entries))
	for i, e := range h.Entries {
		out[len(out)-1-i] = e
	}
	return out
}

// rel returns p relative to the project root when it lies inside it, and
// the absolute path otherwise. Relative paths are taken from the working
// directory, like every other path lin handles.
func (h *History) rel(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	root, err := filepath.Abs(h.root)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	r, err := filepath.Rel(root, abs)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(r)
}

func (h *History) abs(rel string) string {
	p := filepath.FromSlash(rel)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(h.root, p)
}
