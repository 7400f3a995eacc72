package interfaces

//go:generate moq -out mocks/usecase_mock.go -pkg mocks . WebhookUseCase SpellUseCase

import (
	"context"

	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/spell"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent processes a webhook event
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// EventProcessor turns a parsed GitHub event into dictionary updates
type EventProcessor interface {
	ProcessEvent(ctx context.Context, eventType string, payload any) error
}

// BundleUseCase downloads, verifies and extracts dictionary bundles
type BundleUseCase interface {
	// Fetch downloads src and extracts its .aff/.dic files into the cache
	Fetch(ctx context.Context, name string, src model.BundleSource) (*model.BundleResult, error)
	// Cached returns a previous extraction of src if it is still valid
	Cached(name string, src model.BundleSource) (*model.BundleResult, bool)
}

// SourceRefresher reloads dictionaries fed by a repository
type SourceRefresher interface {
	// Refresh refetches dictionaries whose bundle comes from info's
	// repository and returns the reloaded names
	Refresh(ctx context.Context, info *model.SourceInfo) ([]string, error)
}

// CatalogUseCase owns the named dictionaries
type CatalogUseCase interface {
	SourceRefresher
	Load(ctx context.Context) error
	Reload(ctx context.Context, name string) error
	Speller(name string) (*spell.Speller, error)
	List() []model.DictionaryInfo
	// WatchTargets maps local files to the dictionary they feed
	WatchTargets() map[string]string
}

// SpellUseCase serves checks and personal words over the catalog
type SpellUseCase interface {
	ListDictionaries(ctx context.Context) []model.DictionaryInfo
	CheckText(ctx context.Context, name, user string, req *model.CheckRequest) (*model.CheckResult, error)
	LookupWord(ctx context.Context, name, user, word string) (*model.WordReport, error)
	ListUserWords(ctx context.Context, name, user string) (*model.UserWords, error)
	AddUserWord(ctx context.Context, name, user, word string) error
	DeleteUserWord(ctx context.Context, name, user, word string) error
}

// RerankUseCase reorders suggestions using sentence context
type RerankUseCase interface {
	Rerank(ctx context.Context, text string, misspellings []model.Misspelling) ([]model.Misspelling, error)
}
