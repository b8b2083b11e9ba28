package translate

import (
	"unicode/utf8"

	"github.com/rettend/lin/localejson"
)

// Limits bounds one request. A limit of zero or less is unbounded.
type Limits struct {
	// Keys is the maximum number of entries per batch.
	Keys int
	// Chars is the maximum total length of the values in a batch, counted
	// in characters.
	Chars int
}

// Split partitions f into batches in iteration order. A boundary is drawn
// before an entry that would push the batch past either limit. An entry
// that alone exceeds Chars gets a batch of its own.
func Split(f *localejson.Flat, l Limits) []*localejson.Flat {
	var batches []*localejson.Flat
	current := localejson.NewFlat()
	chars := 0

	for _, key := range f.Keys() {
		value, _ := f.Get(key)
		n := utf8.RuneCountInString(value)

		count := current.Len()
		if count > 0 && ((l.Keys > 0 && count+1 > l.Keys) || (l.Chars > 0 && chars+n > l.Chars)) {
			batches = append(batches, current)
			current = localejson.NewFlat()
			chars = 0
		}
		current.Set(key, value)
		chars += n
	}
	if current.Len() > 0 {
		batches = append(batches, current)
	}
	return batches
}
