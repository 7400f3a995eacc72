package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/spell"
	"github.com/m-mizutani/quill/pkg/utils/async"
	"github.com/m-mizutani/quill/pkg/utils/metrics"
)

const maxWordLength = spell.MaxWordLength

type userKey struct {
	dictionary string
	user       string
}

type spellUseCase struct {
	catalog  interfaces.CatalogUseCase
	repo     interfaces.WordRepository
	reranker interfaces.RerankUseCase
	metrics  *metrics.Recorder
	dispatch func(ctx context.Context, handler func(ctx context.Context) error)

	mu        sync.Mutex
	userWords map[userKey]mapset.Set[string]
}

// SpellOption configures the spell use case
type SpellOption func(*spellUseCase)

// WithReranker enables LLM re-ranking of suggestions
func WithReranker(r interfaces.RerankUseCase) SpellOption {
	return func(uc *spellUseCase) {
		uc.reranker = r
	}
}

// WithSpellMetrics records checks and suggestion latency
func WithSpellMetrics(m *metrics.Recorder) SpellOption {
	return func(uc *spellUseCase) {
		uc.metrics = m
	}
}

// WithSyncPersistence writes personal words before returning instead of in
// the background
func WithSyncPersistence() SpellOption {
	return func(uc *spellUseCase) {
		uc.dispatch = func(ctx context.Context, handler func(ctx context.Context) error) {
			if err := handler(ctx); err != nil {
				ctxlog.From(ctx).Error("failed to persist personal word", "error", err)
			}
		}
	}
}

// NewSpell creates a SpellUseCase. Personal words live in repo and are
// cached per dictionary and user.
func NewSpell(catalog interfaces.CatalogUseCase, repo interfaces.WordRepository, opts ...SpellOption) interfaces.SpellUseCase {
	uc := &spellUseCase{
		catalog:   catalog,
		repo:      repo,
		dispatch:  async.Dispatch,
		userWords: make(map[userKey]mapset.Set[string]),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ListDictionaries describes the loaded dictionaries
func (uc *spellUseCase) ListDictionaries(ctx context.Context) []model.DictionaryInfo {
	return uc.catalog.List()
}

// CheckText reports the misspelled words of req.Text. Words in the user's
// personal list are accepted.
func (uc *spellUseCase) CheckText(ctx context.Context, name, user string, req *model.CheckRequest) (*model.CheckResult, error) {
	logger := ctxlog.From(ctx)

	speller, err := uc.catalog.Speller(name)
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(req.Text) {
		return nil, goerr.New("text is not valid UTF-8", goerr.T(types.ErrTagInvalidInput))
	}

	personal, err := uc.personalWords(ctx, name, user)
	if err != nil {
		return nil, err
	}

	tokens := speller.Tokens(req.Text)
	result := &model.CheckResult{
		ID:           uuid.NewString(),
		Dictionary:   name,
		User:         user,
		Words:        len(tokens),
		Misspellings: []model.Misspelling{},
	}

	for _, tok := range tokens {
		if speller.Spell(tok.Word) || isPersonal(personal, tok.Word) {
			continue
		}

		m := model.Misspelling{
			Word:       tok.Word,
			Offset:     tok.Offset,
			RuneOffset: tok.RuneOffset,
			Line:       tok.Line,
			Column:     tok.Column,
		}
		if req.Suggest && utf8.RuneCountInString(tok.Word) <= maxWordLength {
			start := time.Now()
			m.Suggestions = speller.Suggest(tok.Word)
			uc.metrics.ObserveSuggest(name, time.Since(start))
		}
		result.Misspellings = append(result.Misspellings, m)
	}

	if req.Rerank && req.Suggest && uc.reranker != nil && len(result.Misspellings) > 0 {
		reranked, err := uc.reranker.Rerank(ctx, req.Text, result.Misspellings)
		if err != nil {
			logger.Warn("Failed to rerank suggestions, keeping engine order", "error", err, "check_id", result.ID)
		} else {
			result.Misspellings = reranked
			result.Reranked = true
		}
	}

	uc.metrics.ObserveCheck(name, result.Words, len(result.Misspellings))
	logger.Debug("Text checked",
		"check_id", result.ID,
		"dictionary", name,
		"words", result.Words,
		"misspellings", len(result.Misspellings),
	)
	return result, nil
}

// LookupWord checks a single word
func (uc *spellUseCase) LookupWord(ctx context.Context, name, user, word string) (*model.WordReport, error) {
	if err := validateWord(word); err != nil {
		return nil, err
	}
	speller, err := uc.catalog.Speller(name)
	if err != nil {
		return nil, err
	}
	personal, err := uc.personalWords(ctx, name, user)
	if err != nil {
		return nil, err
	}

	r := speller.Check(word)
	report := &model.WordReport{
		Word:        word,
		Correct:     r.Correct,
		Forbidden:   r.Forbidden,
		Personal:    isPersonal(personal, word),
		Suggestions: []string{},
		Stems:       emptyIfNil(speller.Stem(word)),
		Analyses:    emptyIfNil(speller.Analyze(word)),
	}
	if report.Personal {
		report.Correct = true
	}
	if !report.Correct {
		start := time.Now()
		report.Suggestions = emptyIfNil(speller.Suggest(word))
		uc.metrics.ObserveSuggest(name, time.Since(start))
	}
	return report, nil
}

// ListUserWords returns the user's personal words
func (uc *spellUseCase) ListUserWords(ctx context.Context, name, user string) (*model.UserWords, error) {
	if _, err := uc.catalog.Speller(name); err != nil {
		return nil, err
	}
	set, err := uc.personalWords(ctx, name, user)
	if err != nil {
		return nil, err
	}
	words := set.ToSlice()
	sort.Strings(words)
	return &model.UserWords{Dictionary: name, User: user, Words: words}, nil
}

// AddUserWord accepts word for the user immediately and persists it in the
// background
func (uc *spellUseCase) AddUserWord(ctx context.Context, name, user, word string) error {
	if err := validateWord(word); err != nil {
		return err
	}
	if _, err := uc.catalog.Speller(name); err != nil {
		return err
	}
	set, err := uc.personalWords(ctx, name, user)
	if err != nil {
		return err
	}
	if !set.Add(word) {
		return nil
	}

	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.repo.PutWord(ctx, name, user, word)
	})
	return nil
}

// DeleteUserWord forgets word for the user
func (uc *spellUseCase) DeleteUserWord(ctx context.Context, name, user, word string) error {
	if err := validateWord(word); err != nil {
		return err
	}
	if _, err := uc.catalog.Speller(name); err != nil {
		return err
	}
	set, err := uc.personalWords(ctx, name, user)
	if err != nil {
		return err
	}
	if !set.Contains(word) {
		return goerr.New("personal word not found",
			goerr.V("dictionary", name), goerr.V("word", word), goerr.T(types.ErrTagNotFound))
	}
	set.Remove(word)

	uc.dispatch(ctx, func(ctx context.Context) error {
		return uc.repo.DeleteWord(ctx, name, user, word)
	})
	return nil
}

// personalWords returns the cached set, loading it from the repository on
// first use
func (uc *spellUseCase) personalWords(ctx context.Context, name, user string) (mapset.Set[string], error) {
	k := userKey{dictionary: name, user: user}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	if set, ok := uc.userWords[k]; ok {
		return set, nil
	}

	words, err := uc.repo.ListWords(ctx, name, user)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load personal words", goerr.V("dictionary", name), goerr.V("user", user))
	}
	set := mapset.NewSet[string](words...)
	uc.userWords[k] = set
	return set, nil
}

// isPersonal also accepts a capitalized or upper-case form of a lower-case
// personal word
func isPersonal(set mapset.Set[string], word string) bool {
	if set.Cardinality() == 0 {
		return false
	}
	return set.Contains(word) || set.Contains(strings.ToLower(word))
}

func validateWord(word string) error {
	switch {
	case word == "":
		return goerr.New("word is empty", goerr.T(types.ErrTagInvalidInput))
	case utf8.RuneCountInString(word) > maxWordLength:
		return goerr.New("word is too long", goerr.V("limit", maxWordLength), goerr.T(types.ErrTagInvalidInput))
	case !utf8.ValidString(word):
		return goerr.New("word is not valid UTF-8", goerr.T(types.ErrTagInvalidInput))
	case strings.IndexFunc(word, unicode.IsSpace) >= 0:
		return goerr.New("word must not contain whitespace", goerr.V("word", word), goerr.T(types.ErrTagInvalidInput))
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
