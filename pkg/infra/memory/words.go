// Package memory keeps personal words in process memory
package memory

import (
	"context"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
)

type key struct {
	dictionary string
	user       string
}

// WordRepository is an in-memory interfaces.WordRepository
type WordRepository struct {
	mu    sync.RWMutex
	words map[key]mapset.Set[string]
}

var _ interfaces.WordRepository = (*WordRepository)(nil)

// NewWordRepository creates an empty repository
func NewWordRepository() *WordRepository {
	return &WordRepository{words: make(map[key]mapset.Set[string])}
}

// ListWords returns the user's words sorted
func (r *WordRepository) ListWords(ctx context.Context, dictionary, user string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.words[key{dictionary, user}]
	if !ok {
		return []string{}, nil
	}
	words := set.ToSlice()
	sort.Strings(words)
	return words, nil
}

// PutWord stores a word
func (r *WordRepository) PutWord(ctx context.Context, dictionary, user, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := key{dictionary, user}
	set, ok := r.words[k]
	if !ok {
		set = mapset.NewThreadUnsafeSet[string]()
		r.words[k] = set
	}
	set.Add(word)
	return nil
}

// DeleteWord removes a word; deleting a missing word is not an error
func (r *WordRepository) DeleteWord(ctx context.Context, dictionary, user, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.words[key{dictionary, user}]; ok {
		set.Remove(word)
	}
	return nil
}
