package interfaces

import "context"

// WordRepository stores personal words per dictionary and user
type WordRepository interface {
	ListWords(ctx context.Context, dictionary, user string) ([]string, error)
	PutWord(ctx context.Context, dictionary, user, word string) error
	DeleteWord(ctx context.Context, dictionary, user, word string) error
}
