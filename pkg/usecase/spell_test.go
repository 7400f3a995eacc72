package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/infra/memory"
	"github.com/m-mizutani/quill/pkg/usecase"
)

// MockReranker is a mock implementation of RerankUseCase
type MockReranker struct {
	rerankFunc func(ctx context.Context, text string, ms []model.Misspelling) ([]model.Misspelling, error)
	calls      int
}

func (m *MockReranker) Rerank(ctx context.Context, text string, ms []model.Misspelling) ([]model.Misspelling, error) {
	m.calls++
	return m.rerankFunc(ctx, text, ms)
}

func newLoadedCatalog(t *testing.T) interfaces.CatalogUseCase {
	t.Helper()
	dir := t.TempDir()
	writeDictionary(t, dir, "en_US")

	catalog, err := usecase.NewCatalog(&model.Catalog{Dictionaries: []model.DictionarySpec{
		{Name: "en_US", Dir: dir},
	}})
	gt.NoError(t, err)
	gt.NoError(t, catalog.Load(context.Background()))
	return catalog
}

func TestSpell_CheckText(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWordRepository()
	gt.NoError(t, repo.PutWord(ctx, "en_US", "alice", "gopher"))

	uc := usecase.NewSpell(newLoadedCatalog(t), repo, usecase.WithSyncPersistence())

	t.Run("reports misspellings with positions", func(t *testing.T) {
		result, err := uc.CheckText(ctx, "en_US", "bob", &model.CheckRequest{
			Text:    "Hello wrld\nthe aples gopher",
			Suggest: true,
		})
		gt.NoError(t, err)
		gt.V(t, result.ID).NotEqual("")
		gt.Equal(t, result.Words, 5)
		gt.A(t, result.Misspellings).Length(3)

		gt.Equal(t, result.Misspellings[0].Word, "wrld")
		gt.Equal(t, result.Misspellings[0].Line, 1)
		gt.Equal(t, result.Misspellings[0].Column, 7)
		gt.A(t, result.Misspellings[0].Suggestions).Has("world")

		gt.Equal(t, result.Misspellings[1].Word, "aples")
		gt.Equal(t, result.Misspellings[1].Line, 2)
		gt.A(t, result.Misspellings[1].Suggestions).Has("apples")
		gt.False(t, result.Reranked)
	})

	t.Run("personal words of the user are accepted", func(t *testing.T) {
		result, err := uc.CheckText(ctx, "en_US", "alice", &model.CheckRequest{Text: "Gopher gopher"})
		gt.NoError(t, err)
		gt.A(t, result.Misspellings).Length(0)
	})

	t.Run("without suggestions", func(t *testing.T) {
		result, err := uc.CheckText(ctx, "en_US", "bob", &model.CheckRequest{Text: "wrld"})
		gt.NoError(t, err)
		gt.A(t, result.Misspellings[0].Suggestions).Length(0)
	})

	t.Run("over-long words get no suggestions", func(t *testing.T) {
		long := strings.Repeat("q", 150)
		start := time.Now()
		result, err := uc.CheckText(ctx, "en_US", "bob", &model.CheckRequest{
			Text:    long + " wrld " + long,
			Suggest: true,
		})
		gt.NoError(t, err)
		gt.True(t, time.Since(start) < 2*time.Second)
		gt.A(t, result.Misspellings).Length(3)
		gt.A(t, result.Misspellings[0].Suggestions).Length(0)
		gt.A(t, result.Misspellings[1].Suggestions).Has("world")
		gt.A(t, result.Misspellings[2].Suggestions).Length(0)
	})

	t.Run("empty text", func(t *testing.T) {
		result, err := uc.CheckText(ctx, "en_US", "bob", &model.CheckRequest{})
		gt.NoError(t, err)
		gt.A(t, result.Misspellings).Length(0)
	})

	t.Run("unknown dictionary", func(t *testing.T) {
		_, err := uc.CheckText(ctx, "fr", "bob", &model.CheckRequest{Text: "bonjour"})
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("invalid utf-8", func(t *testing.T) {
		_, err := uc.CheckText(ctx, "en_US", "bob", &model.CheckRequest{Text: "a\xffb"})
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
	})
}

func TestSpell_CheckText_Rerank(t *testing.T) {
	ctx := context.Background()
	req := &model.CheckRequest{Text: "wrld", Suggest: true, Rerank: true}

	t.Run("reranked order is returned", func(t *testing.T) {
		rr := &MockReranker{rerankFunc: func(ctx context.Context, text string, ms []model.Misspelling) ([]model.Misspelling, error) {
			out := append([]model.Misspelling(nil), ms...)
			out[0].Suggestions = []string{"reranked"}
			return out, nil
		}}
		uc := usecase.NewSpell(newLoadedCatalog(t), memory.NewWordRepository(), usecase.WithReranker(rr))

		result, err := uc.CheckText(ctx, "en_US", "bob", req)
		gt.NoError(t, err)
		gt.True(t, result.Reranked)
		gt.Equal(t, result.Misspellings[0].Suggestions, []string{"reranked"})
	})

	t.Run("failure falls back to engine order", func(t *testing.T) {
		rr := &MockReranker{rerankFunc: func(ctx context.Context, text string, ms []model.Misspelling) ([]model.Misspelling, error) {
			return nil, errors.New("llm down")
		}}
		uc := usecase.NewSpell(newLoadedCatalog(t), memory.NewWordRepository(), usecase.WithReranker(rr))

		result, err := uc.CheckText(ctx, "en_US", "bob", req)
		gt.NoError(t, err)
		gt.False(t, result.Reranked)
		gt.Equal(t, rr.calls, 1)
		gt.A(t, result.Misspellings[0].Suggestions).Has("world")
	})

	t.Run("not requested", func(t *testing.T) {
		rr := &MockReranker{}
		uc := usecase.NewSpell(newLoadedCatalog(t), memory.NewWordRepository(), usecase.WithReranker(rr))

		_, err := uc.CheckText(ctx, "en_US", "bob", &model.CheckRequest{Text: "wrld", Suggest: true})
		gt.NoError(t, err)
		gt.Equal(t, rr.calls, 0)
	})
}

func TestSpell_LookupWord(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewSpell(newLoadedCatalog(t), memory.NewWordRepository(), usecase.WithSyncPersistence())

	report, err := uc.LookupWord(ctx, "en_US", "bob", "apples")
	gt.NoError(t, err)
	gt.True(t, report.Correct)
	gt.Equal(t, report.Stems, []string{"apple"})
	gt.A(t, report.Suggestions).Length(0)

	report, err = uc.LookupWord(ctx, "en_US", "bob", "wrld")
	gt.NoError(t, err)
	gt.False(t, report.Correct)
	gt.A(t, report.Suggestions).Has("world")
	gt.A(t, report.Stems).Length(0)

	gt.NoError(t, uc.AddUserWord(ctx, "en_US", "bob", "wrld"))
	report, err = uc.LookupWord(ctx, "en_US", "bob", "wrld")
	gt.NoError(t, err)
	gt.True(t, report.Correct)
	gt.True(t, report.Personal)

	_, err = uc.LookupWord(ctx, "en_US", "bob", "two words")
	gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
}

func TestSpell_UserWords(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWordRepository()
	uc := usecase.NewSpell(newLoadedCatalog(t), repo, usecase.WithSyncPersistence())

	gt.NoError(t, uc.AddUserWord(ctx, "en_US", "alice", "zork"))
	gt.NoError(t, uc.AddUserWord(ctx, "en_US", "alice", "gopher"))
	gt.NoError(t, uc.AddUserWord(ctx, "en_US", "alice", "gopher"))

	words, err := uc.ListUserWords(ctx, "en_US", "alice")
	gt.NoError(t, err)
	gt.Equal(t, words.Words, []string{"gopher", "zork"})

	stored, err := repo.ListWords(ctx, "en_US", "alice")
	gt.NoError(t, err)
	gt.Equal(t, stored, []string{"gopher", "zork"})

	other, err := uc.ListUserWords(ctx, "en_US", "bob")
	gt.NoError(t, err)
	gt.A(t, other.Words).Length(0)

	gt.NoError(t, uc.DeleteUserWord(ctx, "en_US", "alice", "zork"))
	err = uc.DeleteUserWord(ctx, "en_US", "alice", "zork")
	gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))

	stored, err = repo.ListWords(ctx, "en_US", "alice")
	gt.NoError(t, err)
	gt.Equal(t, stored, []string{"gopher"})

	gt.True(t, goerr.HasTag(uc.AddUserWord(ctx, "en_US", "alice", ""), types.ErrTagInvalidInput))
	gt.True(t, goerr.HasTag(uc.AddUserWord(ctx, "fr", "alice", "zork"), types.ErrTagNotFound))
}

func TestSpell_UserWords_AsyncPersistence(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewWordRepository()
	uc := usecase.NewSpell(newLoadedCatalog(t), repo)

	gt.NoError(t, uc.AddUserWord(ctx, "en_US", "alice", "zork"))

	// The word is usable at once
	result, err := uc.CheckText(ctx, "en_US", "alice", &model.CheckRequest{Text: "zork"})
	gt.NoError(t, err)
	gt.A(t, result.Misspellings).Length(0)

	// and reaches the repository eventually
	deadline := time.Now().Add(2 * time.Second)
	for {
		stored, err := repo.ListWords(ctx, "en_US", "alice")
		gt.NoError(t, err)
		if len(stored) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("word was not persisted")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
