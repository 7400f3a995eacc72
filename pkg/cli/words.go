package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cheynewallace/tabby"
	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/spell"
)

func newTable(w io.Writer) *tabby.Tabby {
	return tabby.NewCustom(tabwriter.NewWriter(w, 0, 0, 2, ' ', 0))
}

func requireWords(c *cli.Command) ([]string, error) {
	words := c.Args().Slice()
	if len(words) == 0 {
		return nil, goerr.New("at least one word is required", goerr.T(types.ErrTagInvalidInput))
	}
	return words, nil
}

func cmdSuggest(f *dictionaryFlags) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Show ranked suggestions for words",
		ArgsUsage: "WORD...",
		Action: func(ctx context.Context, c *cli.Command) error {
			words, err := requireWords(c)
			if err != nil {
				return err
			}
			speller, _, err := f.openSpeller(ctx, nil)
			if err != nil {
				return err
			}

			printSuggestions(c.Root().Writer, speller, words)
			return nil
		},
	}
}

func printSuggestions(w io.Writer, speller *spell.Speller, words []string) {
	table := newTable(w)
	table.AddHeader("WORD", "RANK", "SUGGESTION", "DISTANCE", "KEYBOARD", "SOURCE")
	for _, word := range words {
		if speller.Spell(word) {
			table.AddLine(word, "-", "(correct)", "", "", "")
			continue
		}
		cands := speller.SuggestCandidates(word)
		if len(cands) == 0 {
			table.AddLine(word, "-", "(none)", "", "", "")
			continue
		}
		for i, cand := range cands {
			table.AddLine(word, i+1, cand.Word, cand.Distance, fmt.Sprintf("%.2f", cand.KeyboardCost), string(cand.Source))
		}
	}
	table.Print()
}

func cmdAnalyze(f *dictionaryFlags) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Show stems and morphological analyses of words",
		ArgsUsage: "WORD...",
		Action: func(ctx context.Context, c *cli.Command) error {
			words, err := requireWords(c)
			if err != nil {
				return err
			}
			speller, _, err := f.openSpeller(ctx, nil)
			if err != nil {
				return err
			}

			printAnalyses(c.Root().Writer, speller, words)
			return nil
		},
	}
}

func printAnalyses(w io.Writer, speller *spell.Speller, words []string) {
	table := newTable(w)
	table.AddHeader("WORD", "STATUS", "STEMS", "ANALYSES")

	ok := color.New(color.FgGreen).SprintFunc()
	ng := color.New(color.FgRed).SprintFunc()

	for _, word := range words {
		r := speller.Check(word)
		status := ok("correct")
		switch {
		case r.Forbidden:
			status = ng("forbidden")
		case !r.Correct:
			status = ng("misspelled")
		case r.Compound:
			status = ok("compound")
		case r.Affixed:
			status = ok("affixed")
		}
		table.AddLine(word, status,
			strings.Join(speller.Stem(word), ", "),
			strings.Join(speller.Analyze(word), "; "),
		)
	}
	table.Print()
}

func cmdExpand(f *dictionaryFlags) *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "Print every word form the dictionary accepts",
		Action: func(ctx context.Context, c *cli.Command) error {
			speller, _, err := f.openSpeller(ctx, nil)
			if err != nil {
				return err
			}
			return expandWords(c.Root().Writer, speller)
		},
	}
}

func expandWords(w io.Writer, speller *spell.Speller) error {
	out := bufio.NewWriter(w)
	var writeErr error
	speller.Expand(func(word string) bool {
		if _, err := fmt.Fprintln(out, word); err != nil {
			writeErr = goerr.Wrap(err, "failed to write word")
			return false
		}
		return true
	})
	if writeErr != nil {
		return writeErr
	}
	if err := out.Flush(); err != nil {
		return goerr.Wrap(err, "failed to flush words")
	}
	return nil
}
