package merge

import (
	"reflect"
	"testing"

	"github.com/rettend/lin/localejson"
)

func parse(t *testing.T, s string) *localejson.Tree {
	t.Helper()
	tree, err := localejson.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return tree
}

func compact(t *localejson.Tree) string {
	return string(localejson.MarshalCompact(t))
}

func TestMissingTranslations(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		incoming string
		want     string
	}{
		{
			name:     "fills absent keys",
			existing: `{}`,
			incoming: `{"a":{"b":"x"}}`,
			want:     `{"a":{"b":"x"}}`,
		},
		{
			name:     "never clobbers non-empty",
			existing: `{"k":"nonempty"}`,
			incoming: `{"k":"other"}`,
			want:     `{"k":"nonempty"}`,
		},
		{
			name:     "fills empty strings",
			existing: `{"k":""}`,
			incoming: `{"k":"filled"}`,
			want:     `{"k":"filled"}`,
		},
		{
			name:     "keeps existing order and appends",
			existing: `{"z":"1","a":{"y":"2"}}`,
			incoming: `{"a":{"b":"3"},"c":"4"}`,
			want:     `{"z":"1","a":{"y":"2","b":"3"},"c":"4"}`,
		},
		{
			name:     "dotted incoming keys",
			existing: `{"ui":{"title":"T"}}`,
			incoming: `{"ui.subtitle":"S","ui.title":"X"}`,
			want:     `{"ui":{"title":"T","subtitle":"S"}}`,
		},
		{
			name:     "existing object wins over incoming leaf",
			existing: `{"a":{"b":"x"}}`,
			incoming: `{"a":"leaf"}`,
			want:     `{"a":{"b":"x"}}`,
		},
		{
			name:     "existing leaf blocks incoming object",
			existing: `{"a":"leaf"}`,
			incoming: `{"a":{"b":"x"}}`,
			want:     `{"a":"leaf"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := parse(t, tt.existing)
			before := compact(existing)
			got := MissingTranslations(existing, parse(t, tt.incoming))
			if compact(got) != tt.want {
				t.Errorf("got %s, want %s", compact(got), tt.want)
			}
			if compact(existing) != before {
				t.Errorf("existing was mutated: %s", compact(existing))
			}
		})
	}
}

func TestMissingTranslationsCountsKeys(t *testing.T) {
	def := parse(t, `{"a":{"b":"x"}}`)
	target := parse(t, `{}`)
	if n := localejson.CountKeys(target); n != 0 {
		t.Fatalf("before = %d", n)
	}
	merged := MissingTranslations(target, localejson.FindMissingKeys(def, target))
	if n := localejson.CountKeys(merged); n != 1 {
		t.Errorf("after = %d, want 1", n)
	}
}

func TestMissingTranslationsSettlesTypeConflicts(t *testing.T) {
	tests := []struct {
		name        string
		def, target string
	}{
		{"leaf in default, object in target", `{"a":"x","b":"y"}`, `{"a":{"c":"z"}}`},
		{"object in default, leaf in target", `{"a":{"c":"x"},"b":"y"}`, `{"a":"z"}`},
		{"object in default, empty leaf in target", `{"a":{"c":"x"}}`, `{"a":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, target := parse(t, tt.def), parse(t, tt.target)
			merged := MissingTranslations(target, localejson.FindMissingKeys(def, target))
			if missing := localejson.FindMissingKeys(def, merged); localejson.CountKeys(missing) != 0 {
				t.Errorf("still missing after merge: %s", compact(missing))
			}
		})
	}
}

func TestMissingFlat(t *testing.T) {
	existing := localejson.FlatOf("a.md::heading.0", "Cím", "a.md::paragraph.0", "")
	incoming := localejson.FlatOf("a.md::heading.0", "Other", "a.md::paragraph.0", "Bekezdés", "a.md::paragraph.1", "Új")
	got := MissingFlat(existing, incoming)
	want := localejson.FlatOf("a.md::heading.0", "Cím", "a.md::paragraph.0", "Bekezdés", "a.md::paragraph.1", "Új")
	if !got.Equal(want) {
		t.Errorf("got %v", got.Keys())
	}
}

func TestSortKeysAlphabetical(t *testing.T) {
	got := SortKeys(parse(t, `{"b":"1","a":{"d":"2","c":"3"}}`), nil)
	if compact(got) != `{"a":{"c":"3","d":"2"},"b":"1"}` {
		t.Errorf("got %s", compact(got))
	}
}

func TestSortKeysByReference(t *testing.T) {
	ref := parse(t, `{"x":"","a":{"z":"","y":""}}`)
	tree := parse(t, `{"extra2":"e2","a":{"y":"1","z":"2","w":"3"},"extra1":"e1","x":"4"}`)
	got := SortKeys(tree, ref)

	if keys := got.Keys(); !reflect.DeepEqual(keys, []string{"x", "a", "extra2", "extra1"}) {
		t.Errorf("top keys = %v", keys)
	}
	sub, _ := got.Child("a")
	if keys := sub.Keys(); !reflect.DeepEqual(keys, []string{"z", "y", "w"}) {
		t.Errorf("a keys = %v", keys)
	}
	if !got.Equal(tree) {
		t.Error("sorting changed content")
	}
}
