// Package affix applies PFX/SFX rules in both directions: expanding a root
// into its word forms, and stripping affixes from a word to find candidate
// roots.
package affix

import (
	"strings"

	"github.com/m-mizutani/quill/pkg/spell/dict"
)

// Engine indexes the affix rules of one affix file
type Engine struct {
	aff *dict.Aff

	// keyed by the text the rule adds
	prefixes map[string][]*dict.Affix
	suffixes map[string][]*dict.Affix

	// suffix flags referenced from some suffix continuation class
	outerFlags dict.FlagSet
}

// New indexes the rules of aff
func New(aff *dict.Aff) *Engine {
	e := &Engine{
		aff:      aff,
		prefixes: make(map[string][]*dict.Affix),
		suffixes: make(map[string][]*dict.Affix),
	}

	for _, p := range aff.Prefixes {
		e.prefixes[p.Add] = append(e.prefixes[p.Add], p)
	}

	var outer []dict.Flag
	for _, s := range aff.Suffixes {
		e.suffixes[s.Add] = append(e.suffixes[s.Add], s)
		outer = append(outer, s.Cont...)
	}
	e.outerFlags = dict.NewFlagSet(outer...)

	return e
}

// Candidate is one way of reading a word as root + affixes
type Candidate struct {
	Root   string
	Prefix *dict.Affix
	// Suffix is attached directly to the root
	Suffix *dict.Affix
	// Outer is a second suffix attached after Suffix
	Outer *dict.Affix
}

// Affixes lists the applied rules from the root outwards
func (c Candidate) Affixes() []*dict.Affix {
	var out []*dict.Affix
	if c.Prefix != nil {
		out = append(out, c.Prefix)
	}
	if c.Suffix != nil {
		out = append(out, c.Suffix)
	}
	if c.Outer != nil {
		out = append(out, c.Outer)
	}
	return out
}

// Form is one expanded word form of a root
type Form struct {
	Word   string
	Prefix *dict.Affix
	Suffix *dict.Affix
	Outer  *dict.Affix
}

func (f Form) candidate(root string) Candidate {
	return Candidate{Root: root, Prefix: f.Prefix, Suffix: f.Suffix, Outer: f.Outer}
}

// Strip returns every (root, affixes) reading of word whose affix conditions
// hold. Whether a root really takes those affixes is decided by Allows.
func (e *Engine) Strip(word string) []Candidate {
	var out []Candidate

	for _, c := range e.stripSuffix(word) {
		out = append(out, c)

		if !e.outerFlags.Has(c.Suffix.Flag) {
			continue
		}
		for _, inner := range e.stripSuffix(c.Root) {
			if inner.Suffix.Cont.Has(c.Suffix.Flag) {
				out = append(out, Candidate{Root: inner.Root, Suffix: inner.Suffix, Outer: c.Suffix})
			}
		}
	}

	for _, p := range e.stripPrefix(word) {
		out = append(out, p)

		if !p.Prefix.Cross {
			continue
		}
		for _, s := range e.stripSuffix(p.Root) {
			if s.Suffix.Cross {
				out = append(out, Candidate{Root: s.Root, Prefix: p.Prefix, Suffix: s.Suffix})
			}
		}
	}

	return out
}

func (e *Engine) stripSuffix(word string) []Candidate {
	var out []Candidate
	for i := range boundaries(word) {
		for _, s := range e.suffixes[word[i:]] {
			stem := word[:i]
			if stem == "" && s.Strip == "" {
				continue
			}
			root := stem + s.Strip
			if s.Cond.MatchSuffix(root) {
				out = append(out, Candidate{Root: root, Suffix: s})
			}
		}
	}
	return out
}

func (e *Engine) stripPrefix(word string) []Candidate {
	var out []Candidate
	for i := range boundaries(word) {
		for _, p := range e.prefixes[word[:i]] {
			rest := word[i:]
			if rest == "" && p.Strip == "" {
				continue
			}
			root := p.Strip + rest
			if p.Cond.MatchPrefix(root) {
				out = append(out, Candidate{Root: root, Prefix: p})
			}
		}
	}
	return out
}

// boundaries yields every rune boundary of s including 0 and len(s)
func boundaries(s string) func(yield func(int) bool) {
	return func(yield func(int) bool) {
		for i := range s {
			if !yield(i) {
				return
			}
		}
		yield(len(s))
	}
}

// Allows reports whether entry may carry the affixes of c
func (e *Engine) Allows(entry *dict.Entry, c Candidate) bool {
	flags := entry.Flags
	need := e.aff.NeedAffix

	switch {
	case c.Outer != nil:
		if c.Prefix != nil || c.Suffix == nil {
			return false
		}
		if !flags.Has(c.Suffix.Flag) || !c.Suffix.Cont.Has(c.Outer.Flag) {
			return false
		}
		if c.Outer.Cont.Has(need) {
			return false
		}

	case c.Prefix != nil && c.Suffix != nil:
		if !c.Prefix.Cross || !c.Suffix.Cross {
			return false
		}
		hasP, hasS := flags.Has(c.Prefix.Flag), flags.Has(c.Suffix.Flag)
		ok := (hasP && hasS) ||
			(hasS && c.Suffix.Cont.Has(c.Prefix.Flag)) ||
			(hasP && c.Prefix.Cont.Has(c.Suffix.Flag))
		if !ok {
			return false
		}
		if c.Prefix.Cont.Has(need) && c.Suffix.Cont.Has(need) {
			return false
		}

	case c.Prefix != nil:
		if !flags.Has(c.Prefix.Flag) || c.Prefix.Cont.Has(need) {
			return false
		}

	case c.Suffix != nil:
		if !flags.Has(c.Suffix.Flag) || c.Suffix.Cont.Has(need) {
			return false
		}

	default:
		return !flags.Has(need)
	}

	if circ := e.aff.Circumfix; circ != 0 {
		prefixCirc := c.Prefix != nil && c.Prefix.Cont.Has(circ)
		suffixCirc := (c.Suffix != nil && c.Suffix.Cont.Has(circ)) || (c.Outer != nil && c.Outer.Cont.Has(circ))
		if prefixCirc != suffixCirc {
			return false
		}
	}

	return true
}

// Expand returns every word form of entry: the bare root (unless it needs
// an affix), suffixed and prefixed forms, cross products and second-level
// suffixes.
func (e *Engine) Expand(entry *dict.Entry) []Form {
	root := entry.Word
	var forms []Form

	add := func(f Form) {
		if f.Word != "" && e.Allows(entry, f.candidate(root)) {
			forms = append(forms, f)
		}
	}

	add(Form{Word: root})

	// suffixes the root may take, directly or through prefix continuation
	var suffixed []Form
	for _, s := range e.aff.Suffixes {
		if !entry.HasFlag(s.Flag) && !e.prefixContHas(entry, s.Flag) {
			continue
		}
		w, ok := applySuffix(root, s)
		if !ok {
			continue
		}
		f := Form{Word: w, Suffix: s}
		suffixed = append(suffixed, f)
		add(f)

		for _, outer := range e.aff.Suffixes {
			if !s.Cont.Has(outer.Flag) {
				continue
			}
			if w2, ok := applySuffix(w, outer); ok {
				add(Form{Word: w2, Suffix: s, Outer: outer})
			}
		}
	}

	for _, p := range e.aff.Prefixes {
		viaSuffix := false
		for _, f := range suffixed {
			if f.Suffix.Cont.Has(p.Flag) {
				viaSuffix = true
				break
			}
		}
		if !entry.HasFlag(p.Flag) && !viaSuffix {
			continue
		}

		if w, ok := applyPrefix(root, p); ok {
			add(Form{Word: w, Prefix: p})
		}

		if !p.Cross {
			continue
		}
		for _, f := range suffixed {
			if !f.Suffix.Cross {
				continue
			}
			if w, ok := applyPrefix(f.Word, p); ok {
				add(Form{Word: w, Prefix: p, Suffix: f.Suffix})
			}
		}
	}

	return forms
}

func (e *Engine) prefixContHas(entry *dict.Entry, f dict.Flag) bool {
	for _, p := range e.aff.Prefixes {
		if entry.HasFlag(p.Flag) && p.Cont.Has(f) {
			return true
		}
	}
	return false
}

func applySuffix(root string, s *dict.Affix) (string, bool) {
	if !strings.HasSuffix(root, s.Strip) || !s.Cond.MatchSuffix(root) {
		return "", false
	}
	stem := root[:len(root)-len(s.Strip)]
	if stem == "" && s.Strip == "" {
		return "", false
	}
	return stem + s.Add, true
}

func applyPrefix(root string, p *dict.Affix) (string, bool) {
	if !strings.HasPrefix(root, p.Strip) || !p.Cond.MatchPrefix(root) {
		return "", false
	}
	rest := root[len(p.Strip):]
	if rest == "" && p.Strip == "" {
		return "", false
	}
	return p.Add + rest, true
}
