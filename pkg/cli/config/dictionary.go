package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/infra/source"
	"github.com/m-mizutani/quill/pkg/usecase"
)

// DefaultDictDir is where distributions install Hunspell dictionaries
const DefaultDictDir = "/usr/share/hunspell"

// Dictionary selects dictionaries either from a catalog file or from a
// directory and a name
type Dictionary struct {
	ConfigFile     string
	Dir            string
	Name           string
	CacheDir       string
	Personal       string
	GCSCredentials string
}

// Flags returns CLI flags for dictionary selection
func (c *Dictionary) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Dictionary catalog file (.toml, .yaml or .yml)",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("QUILL_CONFIG"),
		},
		&cli.StringFlag{
			Name:        "dict-dir",
			Usage:       "Directory holding <name>.aff and <name>.dic when no catalog is given",
			Value:       DefaultDictDir,
			Destination: &c.Dir,
			Sources:     cli.EnvVars("QUILL_DICT_DIR", "DICPATH"),
		},
		&cli.StringFlag{
			Name:        "dict",
			Aliases:     []string{"d"},
			Usage:       "Dictionary name",
			Destination: &c.Name,
			Sources:     cli.EnvVars("QUILL_DICT", "DICTIONARY"),
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Directory for extracted dictionary bundles",
			Destination: &c.CacheDir,
			Sources:     cli.EnvVars("QUILL_CACHE_DIR"),
		},
		&cli.StringFlag{
			Name:        "personal",
			Aliases:     []string{"p"},
			Usage:       "Personal word list merged into the selected dictionary",
			Destination: &c.Personal,
			Sources:     cli.EnvVars("QUILL_PERSONAL"),
		},
		&cli.StringFlag{
			Name:        "gcs-credentials",
			Usage:       "Service account key for gs:// bundles; Application Default Credentials otherwise",
			Destination: &c.GCSCredentials,
			Sources:     cli.EnvVars("QUILL_GCS_CREDENTIALS"),
		},
	}
}

// Load builds the catalog. Without a catalog file the catalog holds the one
// dictionary named by --dict in --dict-dir.
func (c *Dictionary) Load() (*model.Catalog, error) {
	var catalog model.Catalog

	if c.ConfigFile != "" {
		if err := readCatalog(c.ConfigFile, &catalog); err != nil {
			return nil, err
		}
	} else {
		if c.Name == "" {
			return nil, goerr.New("either --config or --dict is required", goerr.T(types.ErrTagInvalidInput))
		}
		catalog.Dictionaries = []model.DictionarySpec{{Name: c.Name, Dir: c.Dir}}
	}

	if c.CacheDir != "" {
		catalog.CacheDir = c.CacheDir
	}
	if catalog.CacheDir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		catalog.CacheDir = filepath.Join(base, "quill")
	}

	if c.Personal != "" {
		name, err := c.Selected(&catalog)
		if err != nil {
			return nil, err
		}
		for i := range catalog.Dictionaries {
			if catalog.Dictionaries[i].Name == name {
				catalog.Dictionaries[i].Personal = c.Personal
			}
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Selected returns the dictionary a single-dictionary command works on
func (c *Dictionary) Selected(catalog *model.Catalog) (string, error) {
	if c.Name != "" {
		for _, spec := range catalog.Dictionaries {
			if spec.Name == c.Name {
				return c.Name, nil
			}
		}
		return "", goerr.New("dictionary is not in the catalog",
			goerr.V("name", c.Name), goerr.T(types.ErrTagNotFound))
	}
	if len(catalog.Dictionaries) == 1 {
		return catalog.Dictionaries[0].Name, nil
	}
	return "", goerr.New("--dict is required when the catalog has several dictionaries",
		goerr.V("count", len(catalog.Dictionaries)), goerr.T(types.ErrTagInvalidInput))
}

// Bundle returns the bundle use case for catalog, with Cloud Storage and
// GitHub access when the catalog needs them. The returned function releases
// clients.
func (c *Dictionary) Bundle(ctx context.Context, catalog *model.Catalog, gh interfaces.GitHubClient) (interfaces.BundleUseCase, func(), error) {
	opts := []source.Option{}
	closer := func() {}

	if catalog.HasScheme("gs") {
		client, err := source.NewStorageClient(ctx, c.GCSCredentials)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, source.WithStorage(client))
		closer = func() { _ = client.Close() }
	}
	if gh != nil {
		opts = append(opts, source.WithGitHub(gh))
	} else if catalog.HasScheme("github") {
		closer()
		return nil, nil, goerr.New("github:// bundles need --github-token or GitHub App credentials",
			goerr.T(types.ErrTagInvalidInput))
	}

	return usecase.NewBundle(source.New(opts...), catalog.CacheDir), closer, nil
}

func readCatalog(path string, catalog *model.Catalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read catalog file", goerr.V("path", path))
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, catalog); err != nil {
			return goerr.Wrap(err, "failed to parse TOML catalog", goerr.V("path", path), goerr.T(types.ErrTagInvalidInput))
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, catalog); err != nil {
			return goerr.Wrap(err, "failed to parse YAML catalog", goerr.V("path", path), goerr.T(types.ErrTagInvalidInput))
		}
	default:
		return goerr.New("unsupported catalog file extension", goerr.V("path", path), goerr.V("ext", ext),
			goerr.T(types.ErrTagInvalidInput))
	}

	// Relative paths in the catalog are relative to the catalog file
	base := filepath.Dir(path)
	for i := range catalog.Dictionaries {
		spec := &catalog.Dictionaries[i]
		spec.Aff = resolve(base, spec.Aff)
		spec.Dic = resolve(base, spec.Dic)
		spec.Dir = resolve(base, spec.Dir)
		spec.Personal = resolve(base, spec.Personal)
	}
	catalog.CacheDir = resolve(base, catalog.CacheDir)
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
