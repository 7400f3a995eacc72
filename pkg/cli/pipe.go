package cli

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/infra/wordlist"
	"github.com/m-mizutani/quill/pkg/spell/ispell"
)

func cmdPipe(f *dictionaryFlags) *cli.Command {
	return &cli.Command{
		Name:  "pipe",
		Usage: "Speak the ispell -a protocol on stdin/stdout for editors",
		Action: func(ctx context.Context, c *cli.Command) error {
			var pathErr error
			speller, spec, err := f.openSpeller(ctx, func(spec *model.DictionarySpec) {
				if spec.Personal == "" {
					spec.Personal, pathErr = defaultPersonalPath(spec.Name)
				}
			})
			if pathErr != nil {
				return pathErr
			}
			if err != nil {
				return err
			}
			personal := spec.Personal

			ctxlog.From(ctx).Debug("Starting ispell session", "dictionary", spec.Name, "personal", personal)

			session := ispell.New(speller,
				ispell.WithVersion(types.Version),
				ispell.WithSaveFunc(func(ctx context.Context, words []string) error {
					return wordlist.Append(personal, words)
				}),
			)
			return session.Run(ctx, c.Root().Reader, c.Root().Writer)
		},
	}
}
