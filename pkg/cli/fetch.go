package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

func cmdFetch(f *dictionaryFlags) *cli.Command {
	var force bool

	return &cli.Command{
		Name:  "fetch",
		Usage: "Download, verify and extract dictionary bundles into the cache directory",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "Download even when a verified extraction is cached",
				Destination: &force,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			catalog, err := f.dict.Load()
			if err != nil {
				return err
			}
			gh, err := f.github.Client()
			if err != nil {
				return err
			}
			bundle, closer, err := f.dict.Bundle(ctx, catalog, gh)
			if err != nil {
				return err
			}
			defer closer()

			var targets []model.DictionarySpec
			for _, spec := range catalog.Dictionaries {
				if spec.Source == nil {
					continue
				}
				if f.dict.Name != "" && spec.Name != f.dict.Name {
					continue
				}
				targets = append(targets, spec)
			}
			if len(targets) == 0 {
				return goerr.New("no dictionary with a bundle source", goerr.T(types.ErrTagNotFound))
			}

			table := newTable(c.Root().Writer)
			table.AddHeader("DICTIONARY", "STATUS", "FILES", "SHA256", "DIR")
			for _, spec := range targets {
				status := "cached"
				result, hit := bundle.Cached(spec.Name, *spec.Source)
				if force || !hit {
					status = "fetched"
					result, err = bundle.Fetch(ctx, spec.Name, *spec.Source)
					if err != nil {
						return goerr.Wrap(err, "failed to fetch bundle", goerr.V("dictionary", spec.Name))
					}
				}
				logger.Info("Bundle ready", "dictionary", spec.Name, "status", status, "dir", result.Dir)
				table.AddLine(spec.Name, status, len(result.Files), result.SHA256, result.Dir)
			}
			table.Print()
			return nil
		},
	}
}
