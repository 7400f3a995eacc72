package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/spell"
)

var errMisspelled = goerr.New("misspelled words found")

type checkOptions struct {
	list      bool
	noSuggest bool
	noColor   bool
}

func cmdCheck(f *dictionaryFlags) *cli.Command {
	var opts checkOptions

	return &cli.Command{
		Name:      "check",
		Aliases:   []string{"c"},
		Usage:     "Check files (or stdin) and report misspelled words",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "list",
				Aliases:     []string{"l"},
				Usage:       "Print only the misspelled words, one per line",
				Destination: &opts.list,
			},
			&cli.BoolFlag{
				Name:        "no-suggest",
				Usage:       "Do not compute suggestions",
				Destination: &opts.noSuggest,
			},
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Destination: &opts.noColor,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if opts.noColor {
				color.NoColor = true
			}

			speller, _, err := f.openSpeller(ctx, nil)
			if err != nil {
				return err
			}

			files := c.Args().Slice()
			if len(files) == 0 {
				files = []string{"-"}
			}

			total := 0
			for _, file := range files {
				text, err := readInput(file, c.Root().Reader)
				if err != nil {
					return err
				}
				n, err := reportMisspellings(c.Root().Writer, file, text, speller, opts)
				if err != nil {
					return err
				}
				total += n
			}

			if total > 0 {
				return errMisspelled
			}
			return nil
		},
	}
}

func readInput(file string, stdin io.Reader) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", goerr.Wrap(err, "failed to read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read file", goerr.V("file", file))
	}
	return string(data), nil
}

// reportMisspellings prints one line per misspelled word of text and
// returns how many were found
func reportMisspellings(w io.Writer, file, text string, speller *spell.Speller, opts checkOptions) (int, error) {
	var found []spell.Misspelling
	if opts.list || opts.noSuggest {
		found = speller.FindMisspellings(text)
	} else {
		found = speller.CheckText(text)
	}

	fileColor := color.New(color.Bold)
	wordColor := color.New(color.FgRed, color.Bold)
	sugColor := color.New(color.FgGreen)

	for _, m := range found {
		var line string
		switch {
		case opts.list:
			line = m.Word
		case len(m.Suggestions) == 0:
			line = fmt.Sprintf("%s:%d:%d %s",
				fileColor.Sprint(file), m.Line, m.Column, wordColor.Sprint(m.Word))
		default:
			line = fmt.Sprintf("%s:%d:%d %s -> %s",
				fileColor.Sprint(file), m.Line, m.Column, wordColor.Sprint(m.Word),
				sugColor.Sprint(strings.Join(m.Suggestions, ", ")))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return 0, goerr.Wrap(err, "failed to write result")
		}
	}
	return len(found), nil
}
