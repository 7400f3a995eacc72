// Package textcase classifies and converts word capitalization using the
// casing rules of the dictionary language.
package textcase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CapType is the capitalization class of a word
type CapType int

const (
	// NoCap: "word"
	NoCap CapType = iota
	// InitCap: "Word"
	InitCap
	// AllCap: "WORD"
	AllCap
	// HuhCap: "wOrd"
	HuhCap
	// HuhInitCap: "WoRd"
	HuhInitCap
)

func (c CapType) String() string {
	switch c {
	case InitCap:
		return "initcap"
	case AllCap:
		return "allcap"
	case HuhCap:
		return "huhcap"
	case HuhInitCap:
		return "huhinitcap"
	default:
		return "nocap"
	}
}

// Caser converts case for one language. cases.Caser values are stateful, so
// a fresh one is built per call and Caser itself is safe for concurrent use.
type Caser struct {
	tag language.Tag
}

// New returns a Caser for a LANG value such as "tr_TR" or "en-US". Unknown
// or empty tags fall back to language.Und.
func New(lang string) *Caser {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		tag = language.Und
	}
	return &Caser{tag: tag}
}

// Lower lowercases s
func (c *Caser) Lower(s string) string {
	return cases.Lower(c.tag).String(s)
}

// Upper uppercases s
func (c *Caser) Upper(s string) string {
	return cases.Upper(c.tag).String(s)
}

// Title uppercases the first rune and lowercases the rest
func (c *Caser) Title(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return c.Upper(s[:size]) + c.Lower(s[size:])
}

// Capitalize uppercases the first rune and keeps the rest
func (c *Caser) Capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return c.Upper(s[:size]) + s[size:]
}

// Type classifies the capitalization of s
func (c *Caser) Type(s string) CapType {
	var upper, lower int
	firstUpper := false
	for i, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			upper++
			if i == 0 {
				firstUpper = true
			}
		case unicode.IsLower(r):
			lower++
		}
	}

	switch {
	case upper == 0:
		return NoCap
	case upper == 1 && firstUpper:
		return InitCap
	case lower == 0:
		return AllCap
	case firstUpper:
		return HuhInitCap
	default:
		return HuhCap
	}
}

// Apply recases s, which is expected in lowercase, to the capitalization
// class ct. Mixed classes leave s unchanged.
func (c *Caser) Apply(s string, ct CapType) string {
	switch ct {
	case InitCap:
		return c.Capitalize(s)
	case AllCap:
		return c.Upper(s)
	default:
		return s
	}
}
