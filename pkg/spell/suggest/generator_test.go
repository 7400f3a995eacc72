package suggest_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/quill/pkg/spell/dict"
	"github.com/m-mizutani/quill/pkg/spell/suggest"
)

// wordList accepts its words exactly, in title case and in upper case
type wordList map[string]bool

func (w wordList) Suggestable(word string) bool {
	if w[word] {
		return true
	}
	lower := strings.ToLower(word)
	if !w[lower] {
		return false
	}
	return word == strings.ToUpper(word) || word == strings.ToUpper(lower[:1])+lower[1:]
}

func (w wordList) Walk(fn func(e *dict.Entry) bool) {
	for word := range w {
		if !fn(&dict.Entry{Word: word}) {
			return
		}
	}
}

func newWordList() wordList {
	return wordList{
		"hello": true, "help": true, "hell": true, "world": true,
		"vacation": true, "a": true, "lot": true, "Paris": true,
		"phone": true, "café": true, "the": true,
	}
}

func testAff() *dict.Aff {
	return &dict.Aff{
		Try:          "esianrtolcdugmphbyfvkwz",
		Key:          []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"},
		MaxNgramSugs: 4,
		Rep: []dict.Rep{
			{From: "f", To: "ph"},
			{From: "alot", To: "a lot", AtStart: true, AtEnd: true},
		},
		Map: [][]string{{"e", "é"}},
	}
}

func words(cands []suggest.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Word
	}
	return out
}

func find(cands []suggest.Candidate, word string) *suggest.Candidate {
	for i := range cands {
		if cands[i].Word == word {
			return &cands[i]
		}
	}
	return nil
}

func TestSuggest_Edits(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl)

	tests := []struct {
		word   string
		want   string
		source suggest.Source
	}{
		{word: "helo", want: "hello", source: suggest.SourceForgot},
		{word: "wrold", want: "world", source: suggest.SourceSwap},
		{word: "vacacation", want: "vacation", source: suggest.SourceDouble},
		{word: "fone", want: "phone", source: suggest.SourceRep},
		{word: "alot", want: "a lot", source: suggest.SourceRep},
		{word: "cafe", want: "café", source: suggest.SourceMap},
		{word: "paris", want: "Paris", source: suggest.SourceCase},
		{word: "worlld", want: "world", source: suggest.SourceExtra},
		{word: "wprld", want: "world", source: suggest.SourceKey},
		{word: "vacatoin", want: "vacation", source: suggest.SourceSwap},
		{word: "vcaation", want: "vacation", source: suggest.SourceSwap},
		{word: "avcation", want: "vacation", source: suggest.SourceSwap},
		{word: "vatacion", want: "vacation", source: suggest.SourceLongSwap},
		{word: "acationv", want: "vacation", source: suggest.SourceMove},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			cands := g.Suggest(tt.word)
			c := find(cands, tt.want)
			gt.V(t, c).NotNil()
			gt.Equal(t, c.Source, tt.source)
		})
	}
}

func TestSuggest_Ranking(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl)

	cands := g.Suggest("helo")
	gt.True(t, len(cands) > 2)

	for i := 1; i < len(cands); i++ {
		gt.True(t, cands[i-1].Distance <= cands[i].Distance)
	}

	// neighbour substitutions beat insertions at equal distance
	gt.Equal(t, cands[0].Distance, 1)
	gt.Equal(t, cands[0].KeyboardCost, 0.5)
	gt.True(t, cands[0].Word == "help" || cands[0].Word == "hell")
}

func TestSuggest_Capitalization(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl)

	gt.A(t, words(g.Suggest("Helo"))).Has("Hello")
	gt.A(t, words(g.Suggest("HELO"))).Has("HELLO")
}

func TestSuggest_TwoWords(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl)
	gt.A(t, words(g.Suggest("helloworld"))).Has("hello world")

	aff := testAff()
	aff.NoSplitSugs = true
	g = suggest.New(aff, wl, wl)
	for _, w := range words(g.Suggest("helloworld")) {
		gt.False(t, strings.Contains(w, " "))
	}
}

func TestSuggest_Ngram(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl)

	cands := g.Suggest("vacaashun")
	c := find(cands, "vacation")
	gt.V(t, c).NotNil()
	gt.Equal(t, c.Source, suggest.SourceNgram)
	gt.True(t, len(cands) <= 4)

	t.Run("disabled without a word source", func(t *testing.T) {
		g := suggest.New(testAff(), wl, nil)
		gt.A(t, g.Suggest("vacaashun")).Length(0)
	})
}

func TestSuggest_Typos(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl, suggest.WithTypos([]string{"teh", "the"}))

	c := find(g.Suggest("teh"), "the")
	gt.V(t, c).NotNil()
	gt.Equal(t, c.Source, suggest.SourceTypo)
}

func TestSuggest_Max(t *testing.T) {
	wl := newWordList()
	g := suggest.New(testAff(), wl, wl, suggest.WithMaxSuggestions(2))
	gt.True(t, len(g.Suggest("helo")) <= 2)
	gt.Equal(t, g.Max(), 2)
}

func TestSuggest_OConv(t *testing.T) {
	d, err := dict.Load("t", strings.NewReader("OCONV 1\nOCONV a A\n"), strings.NewReader("0\n"))
	gt.NoError(t, err)

	wl := newWordList()
	aff := testAff()
	aff.OConv = d.Aff.OConv
	g := suggest.New(aff, wl, wl)
	gt.A(t, g.Strings("vacatoin")).Has("vAcAtion")
}

func TestCommonTypos(t *testing.T) {
	pairs := suggest.CommonTypos()
	gt.True(t, len(pairs) > 0)
	gt.Equal(t, len(pairs)%2, 0)
}
