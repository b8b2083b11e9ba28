package localejson

// Flat is an ordered map from dotted key to string value. Iteration order is
// insertion order, which keeps batching and snapshot files deterministic.
type Flat struct {
	keys   []string
	values map[string]string
}

// NewFlat returns an empty flat map.
func NewFlat() *Flat {
	return &Flat{values: make(map[string]string)}
}

// FlatOf builds a flat map from alternating key, value arguments.
func FlatOf(kv ...string) *Flat {
	f := NewFlat()
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i], kv[i+1])
	}
	return f
}

// Len returns the number of entries.
func (f *Flat) Len() int {
	if f == nil {
		return 0
	}
	return len(f.keys)
}

// Keys returns the keys in insertion order.
func (f *Flat) Keys() []string {
	if f == nil {
		return nil
	}
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Get returns the value stored under key.
func (f *Flat) Get(key string) (string, bool) {
	if f == nil {
		return "", false
	}
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is present.
func (f *Flat) Has(key string) bool {
	_, ok := f.Get(key)
	return ok
}

// Set stores value under key. Existing keys keep their position.
func (f *Flat) Set(key, value string) {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Delete removes key and reports whether it was present.
func (f *Flat) Delete(key string) bool {
	if f == nil {
		return false
	}
	if _, ok := f.values[key]; !ok {
		return false
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a copy.
func (f *Flat) Clone() *Flat {
	out := NewFlat()
	for _, k := range f.Keys() {
		out.Set(k, f.values[k])
	}
	return out
}

// Equal reports whether both maps hold the same entries, ignoring order.
func (f *Flat) Equal(o *Flat) bool {
	if f.Len() != o.Len() {
		return false
	}
	for _, k := range f.Keys() {
		v, ok := o.Get(k)
		if !ok || v != f.values[k] {
			return false
		}
	}
	return true
}

// Missing returns the entries of f whose keys are absent from other.
func (f *Flat) Missing(other *Flat) *Flat {
	out := NewFlat()
	for _, k := range f.Keys() {
		if !other.Has(k) {
			out.Set(k, f.values[k])
		}
	}
	return out
}

// Tree returns a tree holding the entries as top-level keys, without
// splitting on dots. Markdown unit keys contain dots in file names, so they
// travel through tree-typed APIs this way.
func (f *Flat) Tree() *Tree {
	t := New()
	for _, k := range f.Keys() {
		t.SetString(k, f.values[k])
	}
	return t
}

// Nest rebuilds a nested tree by splitting every key on dots.
func (f *Flat) Nest() *Tree {
	t := New()
	for _, k := range f.Keys() {
		t.SetPath(k, f.values[k])
	}
	return t
}

// Flatten walks t depth-first in key order and returns every string leaf
// under its dotted path. Empty objects contribute nothing.
func Flatten(t *Tree) *Flat {
	out := NewFlat()
	flattenInto(out, t, "")
	return out
}

func flattenInto(out *Flat, t *Tree, prefix string) {
	for _, k := range t.Keys() {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		v, _ := t.Get(k)
		switch v := v.(type) {
		case string:
			out.Set(path, v)
		case *Tree:
			flattenInto(out, v, path)
		}
	}
}
