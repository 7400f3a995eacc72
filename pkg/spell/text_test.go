package spell_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/quill/pkg/spell"
)

func TestTokenize(t *testing.T) {
	t.Run("positions", func(t *testing.T) {
		tokens := spell.Tokenize("café wrld\nit's well-known", "")
		gt.A(t, tokens).Length(4)

		gt.Equal(t, tokens[1].Word, "wrld")
		gt.Equal(t, tokens[1].Offset, 6)
		gt.Equal(t, tokens[1].RuneOffset, 5)
		gt.Equal(t, tokens[1].Column, 6)

		gt.Equal(t, tokens[2].Word, "it's")
		gt.Equal(t, tokens[2].Line, 2)
		gt.Equal(t, tokens[2].Column, 1)

		gt.Equal(t, tokens[3].Word, "well-known")
		gt.Equal(t, tokens[3].Column, 6)
	})

	t.Run("joiners only between word characters", func(t *testing.T) {
		tokens := spell.Tokenize("'quoted' -dash- end.", "")
		gt.A(t, tokens).Length(3)
		gt.Equal(t, tokens[0].Word, "quoted")
		gt.Equal(t, tokens[1].Word, "dash")
		gt.Equal(t, tokens[2].Word, "end")
	})

	t.Run("extra word characters", func(t *testing.T) {
		tokens := spell.Tokenize("a_b c", "_")
		gt.A(t, tokens).Length(2)
		gt.Equal(t, tokens[0].Word, "a_b")
	})
}

func TestCheckText(t *testing.T) {
	s := newSpeller(t)

	text := "Hello wrold.\nI reworked teh apples, 1,234 of them"
	got := s.CheckText(text)

	words := make([]string, 0, len(got))
	for _, m := range got {
		words = append(words, m.Word)
	}
	gt.Equal(t, words, []string{"wrold", "teh", "of", "them"})

	gt.Equal(t, got[0].Line, 1)
	gt.Equal(t, got[0].Column, 7)
	gt.Equal(t, got[0].Offset, 6)
	gt.A(t, got[0].Suggestions).Has("world")

	gt.Equal(t, got[1].Line, 2)
	gt.Equal(t, got[1].Column, 12)
	gt.Equal(t, got[1].Offset, 24)
	gt.A(t, got[1].Suggestions).Has("the")

	for _, m := range s.FindMisspellings(text) {
		gt.A(t, m.Suggestions).Length(0)
	}
}
