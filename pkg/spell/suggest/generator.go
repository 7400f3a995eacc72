// Package suggest proposes ranked corrections for misspelled words.
package suggest

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/m-mizutani/quill/pkg/spell/affix"
	"github.com/m-mizutani/quill/pkg/spell/dict"
	"github.com/m-mizutani/quill/pkg/spell/textcase"
)

// Source names the heuristic that produced a candidate
type Source string

const (
	SourceCase     Source = "case"
	SourceTypo     Source = "typo"
	SourceRep      Source = "rep"
	SourceMap      Source = "map"
	SourceKey      Source = "key"
	SourceExtra    Source = "extra-char"
	SourceForgot   Source = "forgotten-char"
	SourceBad      Source = "bad-char"
	SourceSwap     Source = "swap-char"
	SourceLongSwap Source = "long-swap-char"
	SourceMove     Source = "move-char"
	SourceDouble   Source = "double-two-chars"
	SourceSplit    Source = "two-words"
	SourceNgram    Source = "ngram"
)

// DefaultMaxSuggestions caps the result when no option overrides it
const DefaultMaxSuggestions = 15

// Candidate is one ranked suggestion
type Candidate struct {
	Word         string  `json:"word"`
	Distance     int     `json:"distance"`
	KeyboardCost float64 `json:"keyboard_cost"`
	Source       Source  `json:"source"`

	order int
}

// Checker verifies generated words. Implementations must not call back into
// the Generator.
type Checker interface {
	// Suggestable reports whether word is correct and may be offered
	Suggestable(word string) bool
}

// Words enumerates dictionary roots for the n-gram fallback
type Words interface {
	Walk(fn func(e *dict.Entry) bool)
}

// Expander yields every form of a root
type Expander interface {
	Expand(e *dict.Entry) []affix.Form
}

// Generator produces suggestions for one dictionary
type Generator struct {
	aff      *dict.Aff
	checker  Checker
	words    Words
	expander Expander
	caser    *textcase.Caser
	keyboard *keyboard
	try      []rune
	max      int
	typos    map[string]string
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxSuggestions caps the number of returned candidates
func WithMaxSuggestions(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.max = n
		}
	}
}

// WithTypos adds a common-typo table given as (wrong, right) pairs, the
// layout of misspell.DictMain
func WithTypos(pairs []string) Option {
	return func(g *Generator) {
		if g.typos == nil {
			g.typos = make(map[string]string, len(pairs)/2)
		}
		for i := 0; i+1 < len(pairs); i += 2 {
			wrong := strings.TrimSpace(pairs[i])
			right := strings.TrimSpace(pairs[i+1])
			if wrong == "" || right == "" || strings.ContainsAny(wrong, " -") {
				continue
			}
			g.typos[strings.ToLower(wrong)] = right
		}
	}
}

// WithExpander lets the n-gram fallback offer affixed forms of close roots
func WithExpander(x Expander) Option {
	return func(g *Generator) {
		g.expander = x
	}
}

// WithCaser sets the language casing rules
func WithCaser(c *textcase.Caser) Option {
	return func(g *Generator) {
		g.caser = c
	}
}

// New builds a Generator. words may be nil, which disables the n-gram
// fallback.
func New(aff *dict.Aff, checker Checker, words Words, opts ...Option) *Generator {
	g := &Generator{
		aff:      aff,
		checker:  checker,
		words:    words,
		keyboard: newKeyboard(aff.Key),
		try:      []rune(aff.Try),
		max:      DefaultMaxSuggestions,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.caser == nil {
		g.caser = textcase.New(aff.Lang)
	}
	return g
}

// Max is the configured result cap
func (g *Generator) Max() int {
	return g.max
}

// Suggest returns ranked corrections for word. word is expected to be
// input-converted already; results are output-converted with OCONV.
func (g *Generator) Suggest(word string) []Candidate {
	if word == "" {
		return nil
	}

	ct := g.caser.Type(word)
	c := newCollector(g)

	g.generate(c, word)
	if ct == textcase.InitCap || ct == textcase.AllCap {
		if lower := g.caser.Lower(word); lower != word {
			g.generate(c, lower)
		}
	}

	if len(c.found) == 0 && g.words != nil {
		g.ngram(c, g.caser.Lower(word))
	}

	out := g.recase(c.found, ct)
	g.rank(word, out)

	if len(out) > g.max {
		out = out[:g.max]
	}
	for i := range out {
		out[i].Word = g.aff.OConv.Apply(out[i].Word)
	}
	return out
}

// Strings returns only the suggested words of Suggest
func (g *Generator) Strings(word string) []string {
	cands := g.Suggest(word)
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Word
	}
	return out
}

func (g *Generator) generate(c *collector, word string) {
	g.caseFixes(c, word)
	g.typoFix(c, word)
	g.repFixes(c, word)
	g.mapFixes(c, word, 0, 0)
	g.keyFixes(c, word)
	g.extraChar(c, word)
	g.forgotChar(c, word)
	g.badChar(c, word)
	g.swapChar(c, word)
	g.longSwapChar(c, word)
	g.moveChar(c, word)
	g.doubleTwoChars(c, word)
	if !g.aff.NoSplitSugs {
		g.twoWords(c, word)
	}
}

// recase restores the input capitalization on lowercase-derived candidates
// when the recased form is itself acceptable
func (g *Generator) recase(found []Candidate, ct textcase.CapType) []Candidate {
	if ct != textcase.InitCap && ct != textcase.AllCap {
		return found
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([]Candidate, 0, len(found))
	for _, cand := range found {
		if recased := g.caser.Apply(cand.Word, ct); recased != cand.Word && g.suggestable(recased) {
			cand.Word = recased
		}
		if seen.Add(cand.Word) {
			out = append(out, cand)
		}
	}
	return out
}

// suggestable also accepts space-separated phrases whose every word is
// suggestable
func (g *Generator) suggestable(s string) bool {
	if !strings.Contains(s, " ") {
		return g.checker.Suggestable(s)
	}
	for _, part := range strings.Fields(s) {
		if !g.checker.Suggestable(part) {
			return false
		}
	}
	return true
}

// collector deduplicates checked words and keeps found candidates in generation
// order
type collector struct {
	g     *Generator
	tried mapset.Set[string]
	seen  mapset.Set[string]
	found []Candidate
}

func newCollector(g *Generator) *collector {
	return &collector{
		g:     g,
		tried: mapset.NewThreadUnsafeSet[string](),
		seen:  mapset.NewThreadUnsafeSet[string](),
	}
}

// try checks word once and records it when acceptable
func (c *collector) try(word string, src Source) bool {
	if word == "" || !c.tried.Add(word) {
		return false
	}
	if !c.g.suggestable(word) {
		return false
	}
	c.add(word, src)
	return true
}

func (c *collector) add(word string, src Source) {
	if c.seen.Add(word) {
		c.found = append(c.found, Candidate{Word: word, Source: src, order: len(c.found)})
	}
}
