package spell

import (
	"strings"
	"unicode"

	"github.com/m-mizutani/quill/pkg/spell/affix"
	"github.com/m-mizutani/quill/pkg/spell/dict"
	"github.com/m-mizutani/quill/pkg/spell/textcase"
)

const (
	// words with more unanchored BREAK matches are not split at all
	maxBreakPoints   = 10
	maxCompoundParts = 4
)

// Result describes how a word was accepted or rejected
type Result struct {
	Correct bool
	// Forbidden is set when a FORBIDDENWORD entry rejected the word
	Forbidden bool
	// Root of the first accepted analysis; empty for numbers and BREAK
	// splits
	Root     string
	Affixed  bool
	Compound bool

	analyses []analysis
}

// analysis is one accepted reading of a word
type analysis struct {
	word  string
	entry *dict.Entry
	cand  affix.Candidate
	parts []analysis
}

func (a analysis) compound() bool {
	return len(a.parts) > 0
}

func (a analysis) stem() string {
	if !a.compound() {
		return a.entry.Word
	}
	var sb strings.Builder
	for i, p := range a.parts {
		if i == len(a.parts)-1 {
			sb.WriteString(p.stem())
		} else {
			sb.WriteString(p.word)
		}
	}
	return sb.String()
}

func (a analysis) describe() string {
	if a.compound() {
		fields := make([]string, 0, len(a.parts))
		for _, p := range a.parts {
			fields = append(fields, "pa:"+p.word+" "+p.describe())
		}
		return strings.Join(fields, " ")
	}

	fields := []string{"st:" + a.entry.Word}
	for _, m := range a.entry.Morph {
		if !strings.HasPrefix(m, "st:") {
			fields = append(fields, m)
		}
	}
	for _, af := range a.cand.Affixes() {
		fields = append(fields, af.Morph...)
	}
	return strings.Join(fields, " ")
}

func (a analysis) noSuggest(flag dict.Flag) bool {
	if a.compound() {
		for _, p := range a.parts {
			if p.noSuggest(flag) {
				return true
			}
		}
		return false
	}
	return a.entry.HasFlag(flag)
}

func resultOf(analyses []analysis) Result {
	first := analyses[0]
	r := Result{
		Correct:  true,
		Compound: first.compound(),
		Root:     first.stem(),
		analyses: analyses,
	}
	if !first.compound() {
		r.Affixed = len(first.cand.Affixes()) > 0
	}
	return r
}

// Check spells word and reports how it was accepted
func (s *Speller) Check(word string) Result {
	return s.check(s.normalize(strings.TrimSpace(word)))
}

func (s *Speller) check(w string) Result {
	if w == "" || isNumber(w) {
		return Result{Correct: true}
	}
	if tooLong(w) {
		return Result{}
	}

	var memo map[string]bool
	if s.breakPoints(w) <= maxBreakPoints {
		memo = make(map[string]bool)
	}

	r := s.checkWord(w, memo)
	if !r.Correct && !r.Forbidden && strings.HasSuffix(w, ".") {
		if trimmed := strings.TrimRight(w, "."); trimmed != "" {
			if r2 := s.checkWord(trimmed, memo); r2.Correct {
				return r2
			}
		}
	}
	return r
}

// checkWord checks w and, when that fails, its BREAK splits. memo records
// the outcome per substring for one top-level check; a nil memo disables
// splitting.
func (s *Speller) checkWord(w string, memo map[string]bool) Result {
	if ok, seen := memo[w]; seen {
		return Result{Correct: ok}
	}

	r := s.checkCased(w)
	if !r.Correct && !r.Forbidden && memo != nil {
		if br, ok := s.checkBreak(w, memo); ok {
			r = br
		}
	}
	if memo != nil {
		memo[w] = r.Correct
	}
	return r
}

// breakPoints counts the matches of unanchored BREAK patterns in w
func (s *Speller) breakPoints(w string) int {
	n := 0
	for _, pat := range s.aff.BreakPatterns() {
		if pat == "" || (len(pat) > 1 && (strings.HasPrefix(pat, "^") || strings.HasSuffix(pat, "$"))) {
			continue
		}
		n += strings.Count(w, pat)
	}
	return n
}

// checkCased looks w up in its own case, then in the case variants its
// capitalization class allows
func (s *Speller) checkCased(w string) Result {
	variants := []string{w}
	switch s.caser.Type(w) {
	case textcase.AllCap:
		variants = append(variants, s.caser.Title(w), s.caser.Lower(w))
	case textcase.InitCap:
		variants = append(variants, s.caser.Lower(w))
	}

	for i, v := range variants {
		if i > 0 && v == w {
			continue
		}
		if s.idx.Removed(v) {
			return Result{Forbidden: true}
		}
		found, forbidden := s.lookup(v, false)
		if forbidden {
			return Result{Forbidden: true}
		}
		if i > 0 {
			found = s.dropKeepCase(found)
		}
		if len(found) > 0 {
			return resultOf(found)
		}
	}

	if s.aff.CompoundFlag != 0 {
		for i, v := range variants {
			if i > 0 && v == w {
				continue
			}
			if parts, ok := s.compoundParts(v, 0); ok {
				a := analysis{word: v, parts: parts}
				if i > 0 && a.keepCase(s.aff.KeepCase) {
					continue
				}
				return resultOf([]analysis{a})
			}
		}
	}

	return Result{}
}

func (a analysis) keepCase(flag dict.Flag) bool {
	if a.compound() {
		for _, p := range a.parts {
			if p.keepCase(flag) {
				return true
			}
		}
		return false
	}
	return a.entry.HasFlag(flag)
}

func (s *Speller) dropKeepCase(found []analysis) []analysis {
	if s.aff.KeepCase == 0 {
		return found
	}
	out := found[:0:0]
	for _, a := range found {
		if !a.keepCase(s.aff.KeepCase) {
			out = append(out, a)
		}
	}
	return out
}

// lookup returns the accepted analyses of w in exactly this case. inCompound
// selects compound part rules: the root must carry COMPOUNDFLAG and
// ONLYINCOMPOUND roots become valid.
func (s *Speller) lookup(w string, inCompound bool) ([]analysis, bool) {
	aff := s.aff
	entries := s.idx.Lookup(w)
	for _, e := range entries {
		if e.HasFlag(aff.Forbidden) {
			return nil, true
		}
	}

	var out []analysis
	for _, e := range entries {
		if inCompound {
			if e.HasFlag(aff.CompoundFlag) && !e.HasFlag(aff.NeedAffix) {
				out = append(out, analysis{word: w, entry: e})
			}
			continue
		}
		if e.HasFlag(aff.NeedAffix) || e.HasFlag(aff.OnlyInCompound) {
			continue
		}
		out = append(out, analysis{word: w, entry: e})
	}

	for _, c := range s.affix.Strip(w) {
		if contHas(c, aff.Forbidden) || (!inCompound && contHas(c, aff.OnlyInCompound)) {
			continue
		}
		for _, e := range s.idx.Lookup(c.Root) {
			if e.HasFlag(aff.Forbidden) {
				continue
			}
			if inCompound {
				if !e.HasFlag(aff.CompoundFlag) {
					continue
				}
			} else if e.HasFlag(aff.OnlyInCompound) {
				continue
			}
			if s.affix.Allows(e, c) {
				out = append(out, analysis{word: w, entry: e, cand: c})
			}
		}
	}

	return out, false
}

// contHas reports whether an applied affix marks the form with f
func contHas(c affix.Candidate, f dict.Flag) bool {
	if f == 0 {
		return false
	}
	for _, a := range c.Affixes() {
		if a.Cont.Has(f) {
			return true
		}
	}
	return false
}

// compoundParts splits w into at least two parts of COMPOUNDMIN runes or
// more, each a compound-capable word
func (s *Speller) compoundParts(w string, depth int) ([]analysis, bool) {
	minLen := max(s.aff.CompoundMin, 1)
	runes := []rune(w)
	if len(runes) < 2*minLen || depth >= maxCompoundParts-1 {
		return nil, false
	}

	for i := minLen; i <= len(runes)-minLen; i++ {
		left, right := string(runes[:i]), string(runes[i:])
		la, forbidden := s.lookup(left, true)
		if forbidden || len(la) == 0 {
			continue
		}
		if ra, forbidden := s.lookup(right, true); !forbidden && len(ra) > 0 {
			return []analysis{la[0], ra[0]}, true
		}
		if rest, ok := s.compoundParts(right, depth+1); ok {
			return append([]analysis{la[0]}, rest...), true
		}
	}
	return nil, false
}

// checkBreak accepts w when every part around a BREAK pattern is correct
func (s *Speller) checkBreak(w string, memo map[string]bool) (Result, bool) {
	for _, pat := range s.aff.BreakPatterns() {
		switch {
		case len(pat) > 1 && strings.HasPrefix(pat, "^"):
			p := pat[1:]
			if strings.HasPrefix(w, p) && len(w) > len(p) {
				if r := s.checkWord(w[len(p):], memo); r.Correct {
					return Result{Correct: true}, true
				}
			}

		case len(pat) > 1 && strings.HasSuffix(pat, "$"):
			p := pat[:len(pat)-1]
			if strings.HasSuffix(w, p) && len(w) > len(p) {
				if r := s.checkWord(w[:len(w)-len(p)], memo); r.Correct {
					return Result{Correct: true}, true
				}
			}

		case pat != "":
			for i := 0; i < len(w); {
				j := strings.Index(w[i:], pat)
				if j < 0 {
					break
				}
				pos := i + j
				i = pos + len(pat)
				if pos == 0 || i >= len(w) {
					continue
				}
				if s.checkWord(w[:pos], memo).Correct && s.checkWord(w[i:], memo).Correct {
					return Result{Correct: true}, true
				}
			}
		}
	}
	return Result{}, false
}

// isNumber accepts digits with single '.', ',' or '-' separators between
// them: "1,234.5", "3-4"
func isNumber(w string) bool {
	digits := false
	prevSep := true
	for _, r := range w {
		switch {
		case unicode.IsDigit(r):
			digits = true
			prevSep = false
		case r == '.' || r == ',' || r == '-':
			if prevSep {
				return false
			}
			prevSep = true
		default:
			return false
		}
	}
	return digits && !prevSep
}
