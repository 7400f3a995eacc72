package suggest

import (
	"sort"
	"unicode/utf8"
)

// rank orders candidates by edit distance, then keyboard cost, then a
// shared first letter, then generation order
func (g *Generator) rank(word string, cands []Candidate) {
	lw := g.caser.Lower(word)
	first, _ := utf8.DecodeRuneInString(lw)

	sameFirst := make(map[int]bool, len(cands))
	for i := range cands {
		lc := g.caser.Lower(cands[i].Word)
		cands[i].Distance = distance(lw, lc)
		cands[i].KeyboardCost = g.keyboard.cost(lw, lc)

		r, _ := utf8.DecodeRuneInString(lc)
		sameFirst[cands[i].order] = r == first
	}

	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.KeyboardCost != b.KeyboardCost {
			return a.KeyboardCost < b.KeyboardCost
		}
		if sa, sb := sameFirst[a.order], sameFirst[b.order]; sa != sb {
			return sa
		}
		return a.order < b.order
	})
}
