// Package localejson reads, writes and compares locale JSON trees.
//
// A locale tree is a JSON object whose leaves are strings and whose inner
// nodes are objects. Arrays and non-string primitives are rejected at parse
// time. Object key order is kept exactly as it appears in the source file,
// so a file that is read and written back without changes keeps its layout,
// and "sort like the default locale" has an order to follow.
//
// Trees are addressed with dotted keys ("ui.home.title"). Flatten turns a
// tree into an ordered Flat map of dotted keys, Flat.Nest turns it back.
package localejson

// ---------------------------------------------------------------------------
// Tree
// ---------------------------------------------------------------------------

// Tree is an ordered JSON object. Values are either string or *Tree.
type Tree struct {
	keys   []string
	values map[string]any
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Len returns the number of direct children.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.keys)
}

// Keys returns the direct child keys in order.
func (t *Tree) Keys() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Get returns the direct child stored under key.
func (t *Tree) Get(key string) (any, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.values[key]
	return v, ok
}

// String returns the string leaf stored under key.
func (t *Tree) String(key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Child returns the subtree stored under key.
func (t *Tree) Child(key string) (*Tree, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	c, ok := v.(*Tree)
	return c, ok
}

// SetString stores a string leaf. New keys are appended, existing keys keep
// their position.
func (t *Tree) SetString(key, value string) {
	t.set(key, value)
}

// SetTree stores a subtree.
func (t *Tree) SetTree(key string, sub *Tree) {
	if sub == nil {
		sub = New()
	}
	t.set(key, sub)
}

func (t *Tree) set(key string, v any) {
	if t.values == nil {
		t.values = make(map[string]any)
	}
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Delete removes a direct child. It reports whether the key existed.
func (t *Tree) Delete(key string) bool {
	if t == nil {
		return false
	}
	if _, ok := t.values[key]; !ok {
		return false
	}
	delete(t.values, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	out := New()
	if t == nil {
		return out
	}
	for _, k := range t.keys {
		switch v := t.values[k].(type) {
		case string:
			out.SetString(k, v)
		case *Tree:
			out.SetTree(k, v.Clone())
		}
	}
	return out
}

// Equal reports whether two trees hold the same paths and values.
// Key order is ignored.
func (t *Tree) Equal(o *Tree) bool {
	if t.Len() != o.Len() {
		return false
	}
	for _, k := range t.Keys() {
		a, _ := t.Get(k)
		b, ok := o.Get(k)
		if !ok {
			return false
		}
		switch av := a.(type) {
		case string:
			bv, ok := b.(string)
			if !ok || av != bv {
				return false
			}
		case *Tree:
			bv, ok := b.(*Tree)
			if !ok || !av.Equal(bv) {
				return false
			}
		}
	}
	return true
}

// SetPath stores value at a dotted path, creating intermediate objects.
// A string found where an object is needed is replaced by an object.
func (t *Tree) SetPath(path, value string) {
	segs := splitPath(path)
	cur := t
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.Child(seg)
		if !ok {
			next = New()
			cur.SetTree(seg, next)
		}
		cur = next
	}
	cur.SetString(segs[len(segs)-1], value)
}

func splitPath(path string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			segs = append(segs, path[start:i])
			start = i + 1
		}
	}
	return append(segs, path[start:])
}
