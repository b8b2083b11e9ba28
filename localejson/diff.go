package localejson

import "strings"

// ---------------------------------------------------------------------------
// Structural comparison
// ---------------------------------------------------------------------------

// FindMissingKeys returns a tree with every leaf of a whose path is not
// present in b. Values come from a. Swapping the arguments yields the keys b
// has that a lacks.
//
// Paths where the two trees disagree on the type count as present: a leaf of
// a under an object of b, and an object of a under a non-empty string of b.
// A merge keeps what b holds there, so reporting them would never settle.
func FindMissingKeys(a, b *Tree) *Tree {
	out := New()
	for _, k := range a.Keys() {
		av, _ := a.Get(k)
		switch av := av.(type) {
		case string:
			if _, ok := b.Get(k); !ok {
				out.SetString(k, av)
			}
		case *Tree:
			if s, ok := b.String(k); ok && s != "" {
				continue
			}
			sub, _ := b.Child(k)
			missing := FindMissingKeys(av, sub)
			if CountKeys(missing) > 0 {
				out.SetTree(k, missing)
			}
		}
	}
	return out
}

// ShapeMatches reports whether both trees have the same set of leaf paths.
// Values are not compared.
func ShapeMatches(a, b *Tree) bool {
	fa, fb := Flatten(a), Flatten(b)
	if fa.Len() != fb.Len() {
		return false
	}
	for _, k := range fa.Keys() {
		if !fb.Has(k) {
			return false
		}
	}
	return true
}

// CountKeys returns the number of string leaves.
func CountKeys(t *Tree) int {
	n := 0
	for _, k := range t.Keys() {
		v, _ := t.Get(k)
		switch v := v.(type) {
		case string:
			n++
		case *Tree:
			n += CountKeys(v)
		}
	}
	return n
}

// AllKeys returns every leaf path in document order.
func AllKeys(t *Tree) []string {
	return Flatten(t).Keys()
}

// ---------------------------------------------------------------------------
// Dotted lookup
// ---------------------------------------------------------------------------

// Ref is the result of FindNestedKey.
type Ref struct {
	// Found is true when the path resolved to a leaf or an object.
	Found bool
	// Leaf is true when the resolved value is a string.
	Leaf bool
	// Value is the leaf value (empty for objects).
	Value string
	// Sub is the resolved object (nil for leaves).
	Sub *Tree

	parent *Tree
	key    string
}

// Delete removes the resolved value from its parent. Ancestors left empty
// are not touched; run CleanupEmptyObjects afterwards.
func (r Ref) Delete() bool {
	if !r.Found {
		return false
	}
	return r.parent.Delete(r.key)
}

// FindNestedKey resolves a dotted path. A path that runs through a string
// before its last segment does not resolve.
func FindNestedKey(t *Tree, path string) Ref {
	if t == nil || path == "" {
		return Ref{}
	}
	segs := strings.Split(path, ".")
	cur := t
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur.Child(seg)
		if !ok {
			return Ref{}
		}
		cur = next
	}
	last := segs[len(segs)-1]
	v, ok := cur.Get(last)
	if !ok {
		return Ref{}
	}
	ref := Ref{Found: true, parent: cur, key: last}
	switch v := v.(type) {
	case string:
		ref.Leaf = true
		ref.Value = v
	case *Tree:
		ref.Sub = v
	}
	return ref
}

// CleanupEmptyObjects removes every object that holds no leaves, at any
// depth below the root. The root itself is kept even when empty.
func CleanupEmptyObjects(t *Tree) {
	for _, k := range t.Keys() {
		sub, ok := t.Child(k)
		if !ok {
			continue
		}
		CleanupEmptyObjects(sub)
		if sub.Len() == 0 {
			t.Delete(k)
		}
	}
}

// ChildKeys returns the keys directly under the object at prefix (a dotted
// path, optionally with a trailing dot). The root is addressed by "".
func ChildKeys(t *Tree, prefix string) ([]string, bool) {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		return t.Keys(), true
	}
	ref := FindNestedKey(t, prefix)
	if !ref.Found || ref.Leaf {
		return nil, false
	}
	return ref.Sub.Keys(), true
}
