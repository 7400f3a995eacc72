// Package spell checks words against a Hunspell-format dictionary, proposes
// corrections and analyses word structure. A Speller is safe for concurrent
// use; personal words added at runtime live in an overlay over the loaded
// dictionary.
package spell

import (
	"slices"
	"strings"
	"unicode/utf8"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/m-mizutani/quill/pkg/spell/affix"
	"github.com/m-mizutani/quill/pkg/spell/dict"
	"github.com/m-mizutani/quill/pkg/spell/index"
	"github.com/m-mizutani/quill/pkg/spell/suggest"
	"github.com/m-mizutani/quill/pkg/spell/textcase"
)

// MaxWordLength is the longest word, in characters, that is looked up or
// corrected. Longer words are rejected without suggestions.
const MaxWordLength = 100

// ErrUnknownExample is returned by AddWithAffix when the example word has no
// dictionary entry
var ErrUnknownExample = goerr.New("example word is not in the dictionary")

// Speller is the checking engine for one dictionary
type Speller struct {
	name  string
	aff   *dict.Aff
	idx   *index.Index
	affix *affix.Engine
	caser *textcase.Caser
	gen   *suggest.Generator
}

type config struct {
	maxSuggestions int
	commonTypos    bool
}

// Option configures a Speller
type Option func(*config)

// WithMaxSuggestions caps Suggest results
func WithMaxSuggestions(n int) Option {
	return func(c *config) {
		c.maxSuggestions = n
	}
}

// WithCommonTypos consults the misspell common-typo table for English
// dictionaries
func WithCommonTypos(enabled bool) Option {
	return func(c *config) {
		c.commonTypos = enabled
	}
}

// New builds a Speller over a loaded dictionary
func New(d *dict.Dictionary, opts ...Option) *Speller {
	cfg := &config{maxSuggestions: suggest.DefaultMaxSuggestions}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Speller{
		name:  d.Name,
		aff:   d.Aff,
		idx:   index.New(d.Entries),
		affix: affix.New(d.Aff),
		caser: textcase.New(d.Aff.Lang),
	}

	genOpts := []suggest.Option{
		suggest.WithMaxSuggestions(cfg.maxSuggestions),
		suggest.WithExpander(s.affix),
		suggest.WithCaser(s.caser),
	}
	if cfg.commonTypos && isEnglish(d.Aff.Lang) {
		genOpts = append(genOpts, suggest.WithTypos(suggest.CommonTypos()))
	}
	s.gen = suggest.New(d.Aff, s, s.idx, genOpts...)

	return s
}

func isEnglish(lang string) bool {
	return strings.HasPrefix(strings.ToLower(lang), "en")
}

// Name is the dictionary name
func (s *Speller) Name() string { return s.name }

// Lang is the LANG directive of the affix file
func (s *Speller) Lang() string { return s.aff.Lang }

// WordChars are the extra word characters of the affix file
func (s *Speller) WordChars() string { return s.aff.WordChars }

// WordCount is the number of distinct root words, personal ones included
func (s *Speller) WordCount() int { return s.idx.Len() }

// normalize applies ICONV, NFC and IGNORE to input
func (s *Speller) normalize(word string) string {
	w := s.aff.IConv.Apply(word)
	w = norm.NFC.String(w)
	return s.aff.RemoveIgnored(w)
}

// Spell reports whether word is correct
func (s *Speller) Spell(word string) bool {
	return s.Check(word).Correct
}

// Suggest returns ranked corrections for word
func (s *Speller) Suggest(word string) []string {
	w := s.normalize(word)
	if tooLong(w) {
		return nil
	}
	return s.gen.Strings(w)
}

// SuggestCandidates returns ranked corrections with their ranking details
func (s *Speller) SuggestCandidates(word string) []suggest.Candidate {
	w := s.normalize(word)
	if tooLong(w) {
		return nil
	}
	return s.gen.Suggest(w)
}

func tooLong(w string) bool {
	return utf8.RuneCountInString(w) > MaxWordLength
}

// Suggestable reports whether word is correct and its root may be offered
// as a suggestion
func (s *Speller) Suggestable(word string) bool {
	r := s.check(word)
	if !r.Correct {
		return false
	}
	if len(r.analyses) == 0 {
		return true
	}
	for _, a := range r.analyses {
		if !a.noSuggest(s.aff.NoSuggest) {
			return true
		}
	}
	return false
}

// Stem returns the roots of every accepted analysis of word
func (s *Speller) Stem(word string) []string {
	var out []string
	for _, a := range s.Check(word).analyses {
		out = appendUnique(out, s.aff.OConv.Apply(a.stem()))
	}
	return out
}

// Analyze returns a morphological description of every accepted analysis
// of word, starting with "st:<root>"
func (s *Speller) Analyze(word string) []string {
	var out []string
	for _, a := range s.Check(word).analyses {
		out = appendUnique(out, a.describe())
	}
	return out
}

// Generate returns forms of word's root built with the same affix rules
// the example word was analysed with
func (s *Speller) Generate(word, example string) []string {
	ex := s.Check(example)
	target := s.Check(word)
	if !ex.Correct || !target.Correct {
		return nil
	}

	var out []string
	for _, ea := range ex.analyses {
		if ea.compound() {
			continue
		}
		for _, ta := range target.analyses {
			if ta.compound() {
				continue
			}
			for _, f := range s.affix.Expand(ta.entry) {
				if sameRules(f, ea.cand) {
					out = appendUnique(out, s.aff.OConv.Apply(f.Word))
				}
			}
		}
	}
	return out
}

func sameRules(f affix.Form, c affix.Candidate) bool {
	return flagOf(f.Prefix) == flagOf(c.Prefix) &&
		flagOf(f.Suffix) == flagOf(c.Suffix) &&
		flagOf(f.Outer) == flagOf(c.Outer)
}

func flagOf(a *dict.Affix) dict.Flag {
	if a == nil {
		return 0
	}
	return a.Flag
}

// Add puts word into the personal overlay without affix flags
func (s *Speller) Add(word string) {
	w := s.normalize(strings.TrimSpace(word))
	if w == "" {
		return
	}
	s.idx.Add(&dict.Entry{Word: w})
}

// AddWithAffix puts word into the personal overlay with the affix flags of
// example's root, so that word inflects like example
func (s *Speller) AddWithAffix(word, example string) error {
	w := s.normalize(strings.TrimSpace(word))
	if w == "" {
		return goerr.New("empty word")
	}

	ex := s.normalize(example)
	entries := s.idx.Lookup(ex)
	if len(entries) == 0 {
		entries = s.idx.Lookup(s.caser.Lower(ex))
	}
	if len(entries) == 0 {
		return goerr.Wrap(ErrUnknownExample, "failed to add word", goerr.V("word", word), goerr.V("example", example))
	}

	var flags dict.FlagSet
	for _, e := range entries {
		flags = flags.Union(e.Flags)
	}
	flags = slices.DeleteFunc(slices.Clone(flags), func(f dict.Flag) bool {
		return f == s.aff.Forbidden
	})

	s.idx.Add(&dict.Entry{Word: w, Flags: flags})
	return nil
}

// Remove drops word from the personal overlay and rejects the spelling from
// then on, including inflected and compound forms, until it is added again
func (s *Speller) Remove(word string) {
	s.idx.Remove(s.normalize(strings.TrimSpace(word)))
}

// PersonalWords lists the words added at runtime, sorted
func (s *Speller) PersonalWords() []string {
	words := s.idx.Personal()
	slices.Sort(words)
	return words
}

// Expand calls fn with every word form of the dictionary, OCONV applied,
// until fn returns false. Forbidden roots and removed forms are skipped.
func (s *Speller) Expand(fn func(word string) bool) {
	removed := mapset.NewThreadUnsafeSet(s.idx.RemovedWords()...)
	for e := range s.idx.Words() {
		if e.HasFlag(s.aff.Forbidden) {
			continue
		}
		for _, f := range s.affix.Expand(e) {
			if removed.Contains(f.Word) {
				continue
			}
			if !fn(s.aff.OConv.Apply(f.Word)) {
				return
			}
		}
	}
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
