package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/cli/config"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/spell"
	"github.com/m-mizutani/quill/pkg/usecase"
	"github.com/m-mizutani/quill/pkg/utils/metrics"
)

// dictionaryFlags are shared by every command that loads dictionaries
type dictionaryFlags struct {
	dict   config.Dictionary
	github config.GitHub
}

// newCatalog builds a catalog use case with bundle support. The returned
// function releases cloud clients.
func (f *dictionaryFlags) newCatalog(ctx context.Context, catalog *model.Catalog, recorder *metrics.Recorder) (interfaces.CatalogUseCase, func(), error) {
	gh, err := f.github.Client()
	if err != nil {
		return nil, nil, err
	}

	bundle, closer, err := f.dict.Bundle(ctx, catalog, gh)
	if err != nil {
		return nil, nil, err
	}

	catalogUC, err := usecase.NewCatalog(catalog,
		usecase.WithBundle(bundle),
		usecase.WithCatalogMetrics(recorder),
	)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return catalogUC, closer, nil
}

// openSpeller loads only the selected dictionary. edit may adjust its spec
// before loading.
func (f *dictionaryFlags) openSpeller(ctx context.Context, edit func(spec *model.DictionarySpec)) (*spell.Speller, *model.DictionarySpec, error) {
	catalog, err := f.dict.Load()
	if err != nil {
		return nil, nil, err
	}
	name, err := f.dict.Selected(catalog)
	if err != nil {
		return nil, nil, err
	}

	var spec model.DictionarySpec
	for _, s := range catalog.Dictionaries {
		if s.Name == name {
			spec = s
		}
	}
	if edit != nil {
		edit(&spec)
	}

	single := &model.Catalog{CacheDir: catalog.CacheDir, Dictionaries: []model.DictionarySpec{spec}}
	catalogUC, closer, err := f.newCatalog(ctx, single, nil)
	if err != nil {
		return nil, nil, err
	}
	defer closer()

	if err := catalogUC.Load(ctx); err != nil {
		return nil, nil, err
	}
	speller, err := catalogUC.Speller(name)
	if err != nil {
		return nil, nil, err
	}
	return speller, &spec, nil
}

// defaultPersonalPath follows the Hunspell convention of one hidden word
// list per dictionary in the home directory
func defaultPersonalPath(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to find home directory")
	}
	return filepath.Join(home, ".quill_"+name), nil
}
