package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/cli/config"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var loggerCfg config.Logger
	var logger *slog.Logger
	var dictFlags dictionaryFlags

	flags := append(loggerCfg.Flags(), dictFlags.dict.Flags()...)
	flags = append(flags, dictFlags.github.Flags()...)

	app := &cli.Command{
		Name:    "quill",
		Usage:   "Hunspell compatible spellchecker and spellchecking service",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(&dictFlags),
			cmdCheck(&dictFlags),
			cmdSuggest(&dictFlags),
			cmdAnalyze(&dictFlags),
			cmdExpand(&dictFlags),
			cmdPipe(&dictFlags),
			cmdFetch(&dictFlags),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		// check already reported every misspelling
		if errors.Is(err, errMisspelled) {
			return err
		}
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}

// ExitCode maps the error of Run to a process status: 1 when check found
// misspelled words and 2 for any other failure
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errMisspelled):
		return 1
	default:
		return 2
	}
}
