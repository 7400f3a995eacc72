package suggest

import (
	"strings"
	"unicode"
)

const (
	maxMapDepth   = 2
	maxLongSwap   = 4
	maxMoveOffset = 10
)

func (g *Generator) caseFixes(c *collector, word string) {
	for _, w := range []string{
		g.caser.Lower(word),
		g.caser.Title(word),
		g.caser.Capitalize(word),
		g.caser.Upper(word),
	} {
		if w != word {
			c.try(w, SourceCase)
		}
	}
}

func (g *Generator) typoFix(c *collector, word string) {
	if g.typos == nil {
		return
	}
	if fix, ok := g.typos[g.caser.Lower(word)]; ok {
		c.try(fix, SourceTypo)
	}
}

// repFixes applies each REP pair at every matching position, one at a time
func (g *Generator) repFixes(c *collector, word string) {
	for _, r := range g.aff.Rep {
		if r.From == "" {
			continue
		}

		switch {
		case r.AtStart && r.AtEnd:
			if word == r.From {
				c.try(r.To, SourceRep)
			}
		case r.AtStart:
			if strings.HasPrefix(word, r.From) {
				c.try(r.To+word[len(r.From):], SourceRep)
			}
		case r.AtEnd:
			if strings.HasSuffix(word, r.From) {
				c.try(word[:len(word)-len(r.From)]+r.To, SourceRep)
			}
		default:
			for i := 0; i < len(word); {
				j := strings.Index(word[i:], r.From)
				if j < 0 {
					break
				}
				pos := i + j
				c.try(word[:pos]+r.To+word[pos+len(r.From):], SourceRep)
				i = pos + len(r.From)
			}
		}
	}
}

// mapFixes substitutes related characters from MAP groups, up to
// maxMapDepth substitutions per candidate
func (g *Generator) mapFixes(c *collector, word string, start, depth int) {
	if depth >= maxMapDepth || len(g.aff.Map) == 0 {
		return
	}
	for i := range word {
		if i < start {
			continue
		}
		for _, group := range g.aff.Map {
			for _, from := range group {
				if !strings.HasPrefix(word[i:], from) {
					continue
				}
				for _, to := range group {
					if to == from {
						continue
					}
					cand := word[:i] + to + word[i+len(from):]
					c.try(cand, SourceMap)
					g.mapFixes(c, cand, i+len(to), depth+1)
				}
			}
		}
	}
}

// keyFixes replaces each character with its keyboard neighbours and with
// its uppercase form
func (g *Generator) keyFixes(c *collector, word string) {
	runes := []rune(word)
	for i, r := range runes {
		if up := unicode.ToUpper(r); up != r {
			c.try(replaceAt(runes, i, up), SourceKey)
		}
		for _, n := range g.keyboard.neighbours[unicode.ToLower(r)] {
			c.try(replaceAt(runes, i, n), SourceKey)
		}
	}
}

func (g *Generator) extraChar(c *collector, word string) {
	runes := []rune(word)
	if len(runes) < 2 {
		return
	}
	for i := range runes {
		c.try(string(runes[:i])+string(runes[i+1:]), SourceExtra)
	}
}

func (g *Generator) forgotChar(c *collector, word string) {
	runes := []rune(word)
	for _, t := range g.try {
		for i := 0; i <= len(runes); i++ {
			c.try(string(runes[:i])+string(t)+string(runes[i:]), SourceForgot)
		}
	}
}

func (g *Generator) badChar(c *collector, word string) {
	runes := []rune(word)
	for _, t := range g.try {
		for i, r := range runes {
			if r == t {
				continue
			}
			c.try(replaceAt(runes, i, t), SourceBad)
		}
	}
}

func (g *Generator) swapChar(c *collector, word string) {
	runes := []rune(word)
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == runes[i+1] {
			continue
		}
		c.try(swapAt(runes, i, i+1), SourceSwap)
	}
}

func (g *Generator) longSwapChar(c *collector, word string) {
	runes := []rune(word)
	for i := range runes {
		for j := i + 2; j < len(runes) && j-i <= maxLongSwap; j++ {
			if runes[i] == runes[j] {
				continue
			}
			c.try(swapAt(runes, i, j), SourceLongSwap)
		}
	}
}

// moveChar moves one character at least two positions away; single steps
// are covered by swapChar
func (g *Generator) moveChar(c *collector, word string) {
	runes := []rune(word)
	for i := range runes {
		for j := range runes {
			d := j - i
			if d < 0 {
				d = -d
			}
			if d < 2 || d > maxMoveOffset {
				continue
			}
			c.try(moveAt(runes, i, j), SourceMove)
		}
	}
}

// doubleTwoChars removes a repeated pair, "vacacation" -> "vacation"
func (g *Generator) doubleTwoChars(c *collector, word string) {
	runes := []rune(word)
	for i := 3; i < len(runes); i++ {
		if runes[i-3] == runes[i-1] && runes[i-2] == runes[i] {
			c.try(string(runes[:i-1])+string(runes[i+1:]), SourceDouble)
		}
	}
}

// twoWords splits word in two and suggests "a b" when both halves are words
func (g *Generator) twoWords(c *collector, word string) {
	runes := []rune(word)
	for i := 1; i < len(runes); i++ {
		left, right := string(runes[:i]), string(runes[i:])
		phrase := left + " " + right
		if !c.tried.Add(phrase) {
			continue
		}
		if g.checker.Suggestable(left) && g.checker.Suggestable(right) {
			c.add(phrase, SourceSplit)
		}
	}
}

func replaceAt(runes []rune, i int, r rune) string {
	out := make([]rune, len(runes))
	copy(out, runes)
	out[i] = r
	return string(out)
}

func swapAt(runes []rune, i, j int) string {
	out := make([]rune, len(runes))
	copy(out, runes)
	out[i], out[j] = out[j], out[i]
	return string(out)
}

// moveAt removes the rune at i and reinserts it at j
func moveAt(runes []rune, i, j int) string {
	r := runes[i]
	rest := make([]rune, 0, len(runes))
	rest = append(rest, runes[:i]...)
	rest = append(rest, runes[i+1:]...)

	out := make([]rune, 0, len(runes))
	out = append(out, rest[:j]...)
	out = append(out, r)
	out = append(out, rest[j:]...)
	return string(out)
}
