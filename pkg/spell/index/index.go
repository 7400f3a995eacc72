// Package index is the lookup structure over dictionary root words. Base
// entries are immutable once built; personal additions and removals live in
// an overlay guarded by a RWMutex.
package index

import (
	"iter"
	"slices"
	"sync"

	"github.com/m-mizutani/quill/pkg/spell/dict"
)

// Index maps words to their homonym entries
type Index struct {
	base map[string][]*dict.Entry

	mu      sync.RWMutex
	overlay map[string][]*dict.Entry
	hidden  map[string]struct{}
}

// New builds an index over entries
func New(entries []*dict.Entry) *Index {
	base := make(map[string][]*dict.Entry, len(entries))
	for _, e := range entries {
		base[e.Word] = append(base[e.Word], e)
	}
	return &Index{
		base:    base,
		overlay: make(map[string][]*dict.Entry),
		hidden:  make(map[string]struct{}),
	}
}

// Lookup returns all entries for word, or nil
func (x *Index) Lookup(word string) []*dict.Entry {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if _, ok := x.hidden[word]; ok {
		return nil
	}
	base := x.base[word]
	extra := x.overlay[word]
	if len(extra) == 0 {
		return base
	}
	if len(base) == 0 {
		return extra
	}
	out := make([]*dict.Entry, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}

// Has reports whether word has at least one entry
func (x *Index) Has(word string) bool {
	return len(x.Lookup(word)) > 0
}

// Add puts an entry into the overlay and unhides its word
func (x *Index) Add(e *dict.Entry) {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.hidden, e.Word)
	for _, existing := range x.overlay[e.Word] {
		if slices.Equal(existing.Flags, e.Flags) {
			return
		}
	}
	x.overlay[e.Word] = append(x.overlay[e.Word], e)
}

// Remove drops overlay entries for word and marks the spelling as removed.
// The mark applies to any spelling, so inflected and compound forms that
// have no entry of their own are rejected too.
func (x *Index) Remove(word string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.overlay, word)
	x.hidden[word] = struct{}{}
}

// Removed reports whether word was removed and not added back
func (x *Index) Removed(word string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.hidden[word]
	return ok
}

// RemovedWords returns the spellings currently marked as removed
func (x *Index) RemovedWords() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	words := make([]string, 0, len(x.hidden))
	for w := range x.hidden {
		words = append(words, w)
	}
	return words
}

// IsPersonal reports whether word was added at runtime
func (x *Index) IsPersonal(word string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.overlay[word]) > 0
}

// Personal returns the words added at runtime
func (x *Index) Personal() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	words := make([]string, 0, len(x.overlay))
	for w := range x.overlay {
		words = append(words, w)
	}
	return words
}

// Len is the number of distinct visible words
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := len(x.base)
	for w := range x.hidden {
		if _, ok := x.base[w]; ok {
			n--
		}
	}
	for w := range x.overlay {
		if _, ok := x.base[w]; !ok {
			n++
		}
	}
	return n
}

// Walk calls fn for every visible entry until fn returns false. The overlay
// must not be modified from fn.
func (x *Index) Walk(fn func(e *dict.Entry) bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for word, entries := range x.base {
		if _, ok := x.hidden[word]; ok {
			continue
		}
		for _, e := range entries {
			if !fn(e) {
				return
			}
		}
	}
	for _, entries := range x.overlay {
		for _, e := range entries {
			if !fn(e) {
				return
			}
		}
	}
}

// Words iterates over every visible entry, holding the read lock while the
// loop runs
func (x *Index) Words() iter.Seq[*dict.Entry] {
	return func(yield func(*dict.Entry) bool) {
		x.Walk(yield)
	}
}
