package suggest

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/m-mizutani/quill/pkg/spell/dict"
)

const (
	// roots kept from the first n-gram pass before expanding affixes
	ngramRoots = 100
	ngramSize  = 3
)

type scored struct {
	word  string
	entry *dict.Entry
	score int
}

// ngram is the fallback when no edit produced a word: score every root by
// n-gram overlap, expand the best roots and offer the closest forms
func (g *Generator) ngram(c *collector, word string) {
	limit := g.aff.MaxNgramSugs
	if limit <= 0 {
		return
	}

	var roots []scored
	g.words.Walk(func(e *dict.Entry) bool {
		if g.excluded(e) {
			return true
		}
		lw := g.caser.Lower(e.Word)
		roots = append(roots, scored{word: lw, entry: e, score: similarity(word, lw)})
		return true
	})
	sort.SliceStable(roots, func(i, j int) bool { return roots[i].score > roots[j].score })
	if len(roots) > ngramRoots {
		roots = roots[:ngramRoots]
	}

	var forms []scored
	for _, r := range roots {
		if g.expander == nil {
			forms = append(forms, scored{word: r.entry.Word, score: r.score})
			continue
		}
		for _, f := range g.expander.Expand(r.entry) {
			forms = append(forms, scored{word: f.Word, score: similarity(word, g.caser.Lower(f.Word))})
		}
	}
	sort.SliceStable(forms, func(i, j int) bool { return forms[i].score > forms[j].score })

	added := 0
	for _, f := range forms {
		if added >= limit || f.score <= 0 {
			break
		}
		if c.try(f.word, SourceNgram) {
			added++
		}
	}
}

func (g *Generator) excluded(e *dict.Entry) bool {
	for _, f := range []dict.Flag{g.aff.Forbidden, g.aff.NoSuggest, g.aff.OnlyInCompound} {
		if e.HasFlag(f) {
			return true
		}
	}
	return false
}

// similarity combines n-gram overlap in both directions with the longest
// common subsequence, and penalizes length difference
func similarity(a, b string) int {
	score := ngramOverlap(ngramSize, a, b) + ngramOverlap(ngramSize, b, a)
	score += edlib.LCS(a, b)

	diff := len([]rune(a)) - len([]rune(b))
	if diff < 0 {
		diff = -diff
	}
	return score - 2*diff
}

// ngramOverlap counts the 1..n-grams of a that occur in b
func ngramOverlap(n int, a, b string) int {
	runes := []rune(a)
	count := 0
	for size := 1; size <= n; size++ {
		for i := 0; i+size <= len(runes); i++ {
			if strings.Contains(b, string(runes[i:i+size])) {
				count++
			}
		}
	}
	return count
}
