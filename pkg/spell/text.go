package spell

import (
	"strings"
	"unicode"
)

// Token is a word found in text with its position
type Token struct {
	Word string `json:"word"`
	// Offset is the byte offset in the text
	Offset int `json:"offset"`
	// RuneOffset is the character offset in the text
	RuneOffset int `json:"rune_offset"`
	// Line and Column are 1-based; Column counts characters
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Misspelling is a rejected token and its suggestions
type Misspelling struct {
	Token
	Suggestions []string `json:"suggestions,omitempty"`
}

type runePos struct {
	off int
	r   rune
}

// Tokenize splits text into words. Letters, marks, digits and wordChars
// form words; apostrophes and hyphens join them only between word
// characters.
func Tokenize(text, wordChars string) []Token {
	isWord := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) || strings.ContainsRune(wordChars, r)
	}
	isJoiner := func(r rune) bool {
		return r == '\'' || r == '’' || r == '-'
	}

	ps := make([]runePos, 0, len(text))
	for off, r := range text {
		ps = append(ps, runePos{off: off, r: r})
	}

	var tokens []Token
	line, col := 1, 1
	for i := 0; i < len(ps); {
		if !isWord(ps[i].r) {
			if ps[i].r == '\n' {
				line++
				col = 1
			} else {
				col++
			}
			i++
			continue
		}

		j := i
		for j < len(ps) {
			if isWord(ps[j].r) {
				j++
				continue
			}
			if isJoiner(ps[j].r) && j+1 < len(ps) && isWord(ps[j+1].r) {
				j++
				continue
			}
			break
		}

		end := len(text)
		if j < len(ps) {
			end = ps[j].off
		}
		tokens = append(tokens, Token{
			Word:       text[ps[i].off:end],
			Offset:     ps[i].off,
			RuneOffset: i,
			Line:       line,
			Column:     col,
		})
		col += j - i
		i = j
	}
	return tokens
}

// Tokens splits text with this dictionary's WORDCHARS
func (s *Speller) Tokens(text string) []Token {
	return Tokenize(text, s.aff.WordChars)
}

// CheckText returns every misspelled word of text with suggestions
func (s *Speller) CheckText(text string) []Misspelling {
	return s.checkText(text, true)
}

// FindMisspellings is CheckText without suggestions
func (s *Speller) FindMisspellings(text string) []Misspelling {
	return s.checkText(text, false)
}

func (s *Speller) checkText(text string, withSuggestions bool) []Misspelling {
	var out []Misspelling
	for _, tok := range s.Tokens(text) {
		if s.Spell(tok.Word) {
			continue
		}
		m := Misspelling{Token: tok}
		if withSuggestions {
			m.Suggestions = s.Suggest(tok.Word)
		}
		out = append(out, m)
	}
	return out
}
