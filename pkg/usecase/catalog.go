package usecase

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/infra/wordlist"
	"github.com/m-mizutani/quill/pkg/spell"
	"github.com/m-mizutani/quill/pkg/spell/dict"
	"github.com/m-mizutani/quill/pkg/utils/metrics"
)

type loadedDictionary struct {
	speller *spell.Speller
	info    model.DictionaryInfo
}

type catalogEntry struct {
	spec    model.DictionarySpec
	current atomic.Pointer[loadedDictionary]
	// source is the bundle the dictionary was last loaded from. It starts as
	// spec.Source and moves with webhook refreshes; spec.Source keeps the
	// configured repository and branch used to match events.
	source atomic.Pointer[model.BundleSource]
}

type catalogUseCase struct {
	names   []string
	entries map[string]*catalogEntry
	bundle  interfaces.BundleUseCase
	metrics *metrics.Recorder
}

// CatalogOption configures the catalog use case
type CatalogOption func(*catalogUseCase)

// WithBundle enables dictionaries with a bundle source
func WithBundle(b interfaces.BundleUseCase) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.bundle = b
	}
}

// WithCatalogMetrics records dictionary loads
func WithCatalogMetrics(m *metrics.Recorder) CatalogOption {
	return func(uc *catalogUseCase) {
		uc.metrics = m
	}
}

// NewCatalog creates a CatalogUseCase for the dictionaries of c. Nothing is
// loaded until Load is called.
func NewCatalog(c *model.Catalog, opts ...CatalogOption) (interfaces.CatalogUseCase, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	uc := &catalogUseCase{
		entries: make(map[string]*catalogEntry, len(c.Dictionaries)),
	}
	for _, opt := range opts {
		opt(uc)
	}

	for _, spec := range c.Dictionaries {
		if spec.Source != nil && uc.bundle == nil {
			return nil, goerr.New("dictionary has a bundle source but no bundle fetcher is configured",
				goerr.V("dictionary", spec.Name))
		}
		uc.names = append(uc.names, spec.Name)
		entry := &catalogEntry{spec: spec}
		entry.source.Store(spec.Source)
		uc.entries[spec.Name] = entry
	}
	sort.Strings(uc.names)

	return uc, nil
}

// Load loads every dictionary concurrently; the first failure aborts
func (uc *catalogUseCase) Load(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, name := range uc.names {
		entry := uc.entries[name]
		eg.Go(func() error {
			return uc.load(ctx, entry, entry.source.Load(), true)
		})
	}
	return eg.Wait()
}

// Reload reloads one dictionary and swaps it in atomically. Readers keep
// the previous speller until the new one is ready. A dictionary moved by
// Refresh is reloaded from the moved source.
func (uc *catalogUseCase) Reload(ctx context.Context, name string) error {
	entry, ok := uc.entries[name]
	if !ok {
		return goerr.New("dictionary not found", goerr.V("dictionary", name), goerr.T(types.ErrTagNotFound))
	}
	return uc.load(ctx, entry, entry.source.Load(), false)
}

// Refresh refetches dictionaries whose bundle comes from info's repository
func (uc *catalogUseCase) Refresh(ctx context.Context, info *model.SourceInfo) ([]string, error) {
	logger := ctxlog.From(ctx)

	var reloaded []string
	var errs []error
	for _, name := range uc.names {
		entry := uc.entries[name]
		src := entry.spec.Source
		if src == nil || src.Repository() != info.FullName() {
			continue
		}
		if info.Branch != "" && info.Branch != src.Ref() {
			logger.Debug("Ignoring push to another branch",
				"dictionary", name, "branch", info.Branch, "ref", src.Ref())
			continue
		}

		moved := src.WithRef(info.Ref)
		if err := uc.load(ctx, entry, &moved, false); err != nil {
			errs = append(errs, goerr.Wrap(err, "failed to refresh dictionary", goerr.V("dictionary", name)))
			continue
		}
		entry.source.Store(&moved)
		reloaded = append(reloaded, name)
	}

	return reloaded, errors.Join(errs...)
}

func (uc *catalogUseCase) load(ctx context.Context, entry *catalogEntry, src *model.BundleSource, useCache bool) (err error) {
	logger := ctxlog.From(ctx)
	spec := entry.spec
	start := time.Now()
	defer func() {
		uc.metrics.ObserveReload(spec.Name, err)
	}()

	info := model.DictionaryInfo{Name: spec.Name}
	var affPath, dicPath string

	if src == nil {
		affPath, dicPath = spec.Paths()
		info.Source = "file://" + affPath
	} else {
		var result *model.BundleResult
		var hit bool
		if useCache {
			result, hit = uc.bundle.Cached(spec.Name, *src)
		}
		if !hit {
			result, err = uc.bundle.Fetch(ctx, spec.Name, *src)
			if err != nil {
				return err
			}
		}
		affPath, dicPath, err = pickPair(result, spec.Name)
		if err != nil {
			return err
		}
		info.Source = src.DownloadURL()
		info.SHA256 = result.SHA256
	}

	d, err := dict.LoadFiles(spec.Name, affPath, dicPath)
	if err != nil {
		return goerr.Wrap(err, "failed to load dictionary", goerr.V("dictionary", spec.Name))
	}

	var opts []spell.Option
	if spec.MaxSuggestions > 0 {
		opts = append(opts, spell.WithMaxSuggestions(spec.MaxSuggestions))
	}
	if spec.CommonTypos {
		opts = append(opts, spell.WithCommonTypos(true))
	}
	speller := spell.New(d, opts...)

	if spec.Personal != "" {
		if err := loadPersonal(ctx, speller, spec.Personal); err != nil {
			return goerr.Wrap(err, "failed to load personal words", goerr.V("dictionary", spec.Name))
		}
	}

	info.Lang = speller.Lang()
	info.Words = speller.WordCount()
	info.LoadedAt = time.Now().UTC()
	entry.current.Store(&loadedDictionary{speller: speller, info: info})

	logger.Info("Dictionary loaded",
		"dictionary", spec.Name,
		"lang", info.Lang,
		"words", info.Words,
		"source", info.Source,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// loadPersonal merges a personal word list. A missing list is optional and
// only logged.
func loadPersonal(ctx context.Context, speller *spell.Speller, path string) error {
	entries, err := wordlist.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		ctxlog.From(ctx).Warn("Personal word list not found, skipping", "path", path)
		return nil
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.Example == "" {
			speller.Add(e.Word)
			continue
		}
		if err := speller.AddWithAffix(e.Word, e.Example); err != nil {
			ctxlog.From(ctx).Warn("Personal word example is unknown, adding without affixes",
				"word", e.Word, "example", e.Example)
			speller.Add(e.Word)
		}
	}
	return nil
}

// Speller returns the current speller of a loaded dictionary
func (uc *catalogUseCase) Speller(name string) (*spell.Speller, error) {
	entry, ok := uc.entries[name]
	if !ok {
		return nil, goerr.New("dictionary not found", goerr.V("dictionary", name), goerr.T(types.ErrTagNotFound))
	}
	cur := entry.current.Load()
	if cur == nil {
		return nil, goerr.New("dictionary is not loaded", goerr.V("dictionary", name), goerr.T(types.ErrTagNotFound))
	}
	return cur.speller, nil
}

// List describes the loaded dictionaries sorted by name
func (uc *catalogUseCase) List() []model.DictionaryInfo {
	infos := make([]model.DictionaryInfo, 0, len(uc.names))
	for _, name := range uc.names {
		if cur := uc.entries[name].current.Load(); cur != nil {
			infos = append(infos, cur.info)
		}
	}
	return infos
}

// WatchTargets maps local dictionary and personal files to their dictionary
func (uc *catalogUseCase) WatchTargets() map[string]string {
	targets := make(map[string]string)
	for _, name := range uc.names {
		spec := uc.entries[name].spec
		if spec.Local() {
			aff, dic := spec.Paths()
			targets[aff] = name
			targets[dic] = name
		}
		if spec.Personal != "" {
			targets[spec.Personal] = name
		}
	}
	return targets
}
