// Package dict loads Hunspell-format dictionaries: an affix file (.aff)
// describing flags, affix rules and suggestion tables, and a word list (.dic)
// of root words carrying those flags.
package dict

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"
)

// Dictionary is a parsed affix file plus its root entries
type Dictionary struct {
	Name    string
	Aff     *Aff
	Entries []*Entry
}

// Load parses an affix file and a word list. The word list uses the encoding
// named by the affix file's SET directive.
func Load(name string, affReader, dicReader io.Reader) (*Dictionary, error) {
	affRaw, err := io.ReadAll(affReader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read affix file", goerr.V("name", name))
	}
	dicRaw, err := io.ReadAll(dicReader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read word list", goerr.V("name", name))
	}

	enc, err := lookupEncoding(sniffEncoding(affRaw))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve encoding", goerr.V("name", name))
	}

	affText, err := decode(affRaw, enc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode affix file", goerr.V("name", name))
	}
	aff, err := parseAff(name+".aff", affText)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse affix file", goerr.V("name", name))
	}

	dicText, err := decode(dicRaw, enc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode word list", goerr.V("name", name))
	}
	entries, err := parseDic(name+".dic", dicText, aff)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse word list", goerr.V("name", name))
	}

	return &Dictionary{
		Name:    name,
		Aff:     aff,
		Entries: entries,
	}, nil
}

// LoadFiles loads a dictionary from explicit file paths
func LoadFiles(name, affPath, dicPath string) (*Dictionary, error) {
	affFile, err := os.Open(affPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open affix file", goerr.V("path", affPath))
	}
	defer affFile.Close()

	dicFile, err := os.Open(dicPath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open word list", goerr.V("path", dicPath))
	}
	defer dicFile.Close()

	return Load(name, affFile, dicFile)
}

// LoadDir loads name.aff and name.dic from dir
func LoadDir(dir, name string) (*Dictionary, error) {
	return LoadFiles(name, filepath.Join(dir, name+".aff"), filepath.Join(dir, name+".dic"))
}

// LoadFS loads name.aff and name.dic from the root of fsys
func LoadFS(fsys fs.FS, name string) (*Dictionary, error) {
	affFile, err := fsys.Open(name + ".aff")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open affix file", goerr.V("name", name))
	}
	defer affFile.Close()

	dicFile, err := fsys.Open(name + ".dic")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open word list", goerr.V("name", name))
	}
	defer dicFile.Close()

	return Load(name, affFile, dicFile)
}

// Spec locates one dictionary on disk
type Spec struct {
	Name    string
	AffPath string
	DicPath string
}

// LoadAll loads several dictionaries concurrently. The first failure cancels
// the remaining loads.
func LoadAll(ctx context.Context, specs []Spec) ([]*Dictionary, error) {
	dicts := make([]*Dictionary, len(specs))
	eg, ctx := errgroup.WithContext(ctx)

	for i, spec := range specs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := LoadFiles(spec.Name, spec.AffPath, spec.DicPath)
			if err != nil {
				return err
			}
			dicts[i] = d
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return dicts, nil
}
