// Package merge combines locale trees without overwriting reviewed
// translations, and reorders their keys.
package merge

import (
	"sort"

	"github.com/rettend/lin/localejson"
)

// MissingTranslations returns a copy of existing with every leaf of incoming
// filled in where existing has no value or an empty string. Non-empty
// leaves in existing are never replaced.
//
// Incoming keys may themselves be dotted ("ui.title": "x" at the top level);
// they address the same path as the nested form. When existing holds an
// object at a path that incoming has a leaf for, the object is kept.
func MissingTranslations(existing, incoming *localejson.Tree) *localejson.Tree {
	out := existing.Clone()
	flat := localejson.Flatten(incoming)
	for _, key := range flat.Keys() {
		value, _ := flat.Get(key)
		ref := localejson.FindNestedKey(out, key)
		if ref.Found && (!ref.Leaf || ref.Value != "") {
			continue
		}
		if blockedByLeaf(out, key) {
			continue
		}
		out.SetPath(key, value)
	}
	return out
}

// blockedByLeaf reports whether a non-empty string sits on the way to key,
// which SetPath would otherwise turn into an object.
func blockedByLeaf(t *localejson.Tree, key string) bool {
	cur := t
	segs := splitKey(key)
	for _, seg := range segs[:len(segs)-1] {
		v, ok := cur.Get(seg)
		if !ok {
			return false
		}
		switch v := v.(type) {
		case string:
			return v != ""
		case *localejson.Tree:
			cur = v
		}
	}
	return false
}

func splitKey(key string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			segs = append(segs, key[start:i])
			start = i + 1
		}
	}
	return append(segs, key[start:])
}

// MissingFlat is MissingTranslations for flat maps whose keys are opaque,
// such as Markdown unit keys.
func MissingFlat(existing, incoming *localejson.Flat) *localejson.Flat {
	out := existing.Clone()
	for _, key := range incoming.Keys() {
		if v, ok := out.Get(key); ok && v != "" {
			continue
		}
		value, _ := incoming.Get(key)
		out.Set(key, value)
	}
	return out
}

// SortKeys returns a copy of t with object keys reordered at every depth.
// With a nil reference keys are sorted alphabetically. Otherwise they follow
// the order of the reference object at the same path, and keys the
// reference lacks are appended in their original order.
func SortKeys(t, reference *localejson.Tree) *localejson.Tree {
	out := localejson.New()
	for _, key := range orderedKeys(t, reference) {
		v, _ := t.Get(key)
		switch v := v.(type) {
		case string:
			out.SetString(key, v)
		case *localejson.Tree:
			var ref *localejson.Tree
			if reference != nil {
				// A leaf or missing key in the reference still sorts the
				// subtree, by its own original order.
				ref, _ = reference.Child(key)
				if ref == nil {
					ref = localejson.New()
				}
			}
			out.SetTree(key, SortKeys(v, ref))
		}
	}
	return out
}

func orderedKeys(t, reference *localejson.Tree) []string {
	keys := t.Keys()
	if reference == nil {
		sort.Strings(keys)
		return keys
	}
	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range reference.Keys() {
		if _, ok := t.Get(k); ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	for _, k := range keys {
		if !seen[k] {
			out = append(out, k)
		}
	}
	return out
}
