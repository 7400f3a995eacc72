package model

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

// Catalog is the dictionary catalog file
type Catalog struct {
	// CacheDir receives extracted bundles
	CacheDir     string           `toml:"cache_dir" yaml:"cache_dir"`
	Dictionaries []DictionarySpec `toml:"dictionary" yaml:"dictionaries"`
}

// DictionarySpec configures one named dictionary. Either Aff and Dic or
// Source must be set. Dir is a shortcut for Dir/Name.aff and Dir/Name.dic.
type DictionarySpec struct {
	Name   string        `toml:"name" yaml:"name"`
	Aff    string        `toml:"aff" yaml:"aff"`
	Dic    string        `toml:"dic" yaml:"dic"`
	Dir    string        `toml:"dir" yaml:"dir"`
	Source *BundleSource `toml:"source" yaml:"source"`
	// Personal is a word list file merged into the dictionary. A missing
	// file is not an error.
	Personal       string `toml:"personal" yaml:"personal"`
	MaxSuggestions int    `toml:"max_suggestions" yaml:"max_suggestions"`
	CommonTypos    bool   `toml:"common_typos" yaml:"common_typos"`
}

// Local reports whether the dictionary is read from local files
func (s *DictionarySpec) Local() bool {
	return s.Source == nil
}

// Paths returns the .aff and .dic paths of a local dictionary
func (s *DictionarySpec) Paths() (aff, dic string) {
	aff, dic = s.Aff, s.Dic
	if s.Dir != "" {
		if aff == "" {
			aff = filepath.Join(s.Dir, s.Name+".aff")
		}
		if dic == "" {
			dic = filepath.Join(s.Dir, s.Name+".dic")
		}
	}
	return aff, dic
}

// Validate checks the spec is loadable
func (s *DictionarySpec) Validate() error {
	if s.Name == "" {
		return goerr.New("dictionary name is required", goerr.T(types.ErrTagInvalidInput))
	}
	if strings.ContainsAny(s.Name, `/\`) {
		return goerr.New("dictionary name must not contain path separators",
			goerr.V("name", s.Name), goerr.T(types.ErrTagInvalidInput))
	}

	aff, dic := s.Paths()
	switch {
	case s.Source != nil && (aff != "" || dic != ""):
		return goerr.New("dictionary has both local files and a bundle source",
			goerr.V("name", s.Name), goerr.T(types.ErrTagInvalidInput))
	case s.Source != nil && s.Source.URL == "":
		return goerr.New("bundle source url is required",
			goerr.V("name", s.Name), goerr.T(types.ErrTagInvalidInput))
	case s.Source == nil && (aff == "" || dic == ""):
		return goerr.New("dictionary needs aff and dic paths or a bundle source",
			goerr.V("name", s.Name), goerr.T(types.ErrTagInvalidInput))
	}
	return nil
}

// Validate checks every dictionary and rejects duplicate names
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Dictionaries))
	for i := range c.Dictionaries {
		spec := &c.Dictionaries[i]
		if err := spec.Validate(); err != nil {
			return err
		}
		if seen[spec.Name] {
			return goerr.New("duplicate dictionary name",
				goerr.V("name", spec.Name), goerr.T(types.ErrTagInvalidInput))
		}
		seen[spec.Name] = true
	}
	return nil
}

// HasScheme reports whether any bundle source uses scheme (e.g. "gs")
func (c *Catalog) HasScheme(scheme string) bool {
	for _, spec := range c.Dictionaries {
		if spec.Source != nil && strings.HasPrefix(spec.Source.DownloadURL(), scheme+"://") {
			return true
		}
	}
	return false
}

// DictionaryInfo describes a loaded dictionary
type DictionaryInfo struct {
	Name     string    `json:"name"`
	Lang     string    `json:"lang,omitempty"`
	Words    int       `json:"words"`
	Source   string    `json:"source"`
	SHA256   string    `json:"sha256,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}
