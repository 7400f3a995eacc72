package suggest

import (
	"unicode"

	"github.com/hbollon/go-edlib"
)

// Substituting a key with a neighbouring key is cheaper than any other edit
const neighbourCost = 0.5

type keyboard struct {
	neighbours map[rune][]rune
}

// newKeyboard derives neighbours from KEY rows: left and right in the same
// row, and the two touching keys of the rows above and below
func newKeyboard(rows []string) *keyboard {
	k := &keyboard{neighbours: make(map[rune][]rune)}

	grid := make([][]rune, 0, len(rows))
	for _, row := range rows {
		grid = append(grid, []rune(row))
	}

	at := func(r, i int) (rune, bool) {
		if r < 0 || r >= len(grid) || i < 0 || i >= len(grid[r]) {
			return 0, false
		}
		return grid[r][i], true
	}

	for r, row := range grid {
		for i, ch := range row {
			for _, pos := range [][2]int{
				{r, i - 1}, {r, i + 1},
				{r - 1, i}, {r - 1, i + 1},
				{r + 1, i - 1}, {r + 1, i},
			} {
				if n, ok := at(pos[0], pos[1]); ok && n != ch {
					k.neighbours[ch] = append(k.neighbours[ch], n)
				}
			}
		}
	}
	return k
}

func (k *keyboard) adjacent(a, b rune) bool {
	a, b = unicode.ToLower(a), unicode.ToLower(b)
	for _, n := range k.neighbours[a] {
		if n == b {
			return true
		}
	}
	return false
}

// cost is a restricted Damerau-Levenshtein distance where neighbour
// substitutions weigh neighbourCost
func (k *keyboard) cost(a, b string) float64 {
	s, t := []rune(a), []rune(b)
	if len(s) == 0 || len(t) == 0 {
		return float64(len(s) + len(t))
	}

	d := make([][]float64, len(s)+1)
	for i := range d {
		d[i] = make([]float64, len(t)+1)
		d[i][0] = float64(i)
	}
	for j := range d[0] {
		d[0][j] = float64(j)
	}

	for i := 1; i <= len(s); i++ {
		for j := 1; j <= len(t); j++ {
			sub := 0.0
			if s[i-1] != t[j-1] {
				sub = 1
				if k.adjacent(s[i-1], t[j-1]) {
					sub = neighbourCost
				}
			}
			d[i][j] = min(d[i-1][j]+1, d[i][j-1]+1, d[i-1][j-1]+sub)
			if i > 1 && j > 1 && s[i-1] == t[j-2] && s[i-2] == t[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+1)
			}
		}
	}
	return d[len(s)][len(t)]
}

// distance is the edit distance used as the primary ranking key
func distance(a, b string) int {
	return edlib.OSADamerauLevenshteinDistance(a, b)
}
