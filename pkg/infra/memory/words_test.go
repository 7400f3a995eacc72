package memory_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/quill/pkg/infra/memory"
)

func TestWordRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWordRepository()

	words, err := repo.ListWords(ctx, "en_US", "alice")
	gt.NoError(t, err)
	gt.A(t, words).Length(0)

	gt.NoError(t, repo.PutWord(ctx, "en_US", "alice", "quill"))
	gt.NoError(t, repo.PutWord(ctx, "en_US", "alice", "gopher"))
	gt.NoError(t, repo.PutWord(ctx, "en_US", "alice", "quill"))
	gt.NoError(t, repo.PutWord(ctx, "en_US", "bob", "zork"))
	gt.NoError(t, repo.PutWord(ctx, "de_DE", "alice", "Quill"))

	words, err = repo.ListWords(ctx, "en_US", "alice")
	gt.NoError(t, err)
	gt.Equal(t, words, []string{"gopher", "quill"})

	gt.NoError(t, repo.DeleteWord(ctx, "en_US", "alice", "quill"))
	gt.NoError(t, repo.DeleteWord(ctx, "en_US", "carol", "quill"))

	words, err = repo.ListWords(ctx, "en_US", "alice")
	gt.NoError(t, err)
	gt.Equal(t, words, []string{"gopher"})

	words, err = repo.ListWords(ctx, "en_US", "bob")
	gt.NoError(t, err)
	gt.Equal(t, words, []string{"zork"})
}
