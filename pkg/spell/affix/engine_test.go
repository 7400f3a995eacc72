package affix_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/quill/pkg/spell/affix"
	"github.com/m-mizutani/quill/pkg/spell/dict"
)

const englishAff = `SET UTF-8
NEEDAFFIX N

PFX A Y 1
PFX A 0 re .

SFX S Y 3
SFX S y ies [^aeiou]y
SFX S 0 s [aeiou]y
SFX S 0 s [^y]

SFX D Y 2
SFX D 0 d e
SFX D 0 ed/S [^e]
`

const englishDic = `5
work/AD
apple/S
try/S
play/S
test/NS
`

const circumfixAff = `CIRCUMFIX X

PFX B Y 1
PFX B 0 ge/X .

SFX C Y 2
SFX C 0 t/X .
SFX C 0 en .
`

func load(t *testing.T, aff, dic string) *dict.Dictionary {
	t.Helper()
	d, err := dict.Load("test", strings.NewReader(aff), strings.NewReader(dic))
	gt.NoError(t, err)
	return d
}

func words(forms []affix.Form) []string {
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		out = append(out, f.Word)
	}
	slices.Sort(out)
	return out
}

func TestExpand(t *testing.T) {
	d := load(t, englishAff, englishDic)
	e := affix.New(d.Aff)

	tests := []struct {
		root string
		want []string
	}{
		{root: "work", want: []string{"rework", "reworked", "work", "worked", "workeds"}},
		{root: "apple", want: []string{"apple", "apples"}},
		{root: "try", want: []string{"tries", "try"}},
		{root: "play", want: []string{"play", "plays"}},
		{root: "test", want: []string{"tests"}},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			var entry *dict.Entry
			for _, en := range d.Entries {
				if en.Word == tt.root {
					entry = en
				}
			}
			gt.V(t, entry).NotNil()
			gt.Equal(t, words(e.Expand(entry)), tt.want)
		})
	}
}

func TestExpand_Circumfix(t *testing.T) {
	d := load(t, circumfixAff, "1\nmach/BC\n")
	e := affix.New(d.Aff)

	gt.Equal(t, words(e.Expand(d.Entries[0])), []string{"gemacht", "mach", "machen"})
}

func TestStrip(t *testing.T) {
	d := load(t, englishAff, englishDic)
	e := affix.New(d.Aff)
	work := d.Entries[0]

	t.Run("cross product", func(t *testing.T) {
		found := false
		for _, c := range e.Strip("reworked") {
			if c.Root == "work" && c.Prefix != nil && c.Suffix != nil {
				found = true
				gt.True(t, e.Allows(work, c))
				gt.A(t, c.Affixes()).Length(2)
			}
		}
		gt.True(t, found)
	})

	t.Run("second level suffix", func(t *testing.T) {
		found := false
		for _, c := range e.Strip("workeds") {
			if c.Root == "work" && c.Outer != nil {
				found = true
				gt.True(t, e.Allows(work, c))
				gt.Equal(t, c.Outer.Add, "s")
				gt.Equal(t, c.Suffix.Add, "ed")
			}
		}
		gt.True(t, found)
	})

	t.Run("condition is checked on reconstructed root", func(t *testing.T) {
		for _, c := range e.Strip("plaies") {
			gt.NotEqual(t, c.Root, "play")
		}
	})

	t.Run("flag not carried", func(t *testing.T) {
		apple := d.Entries[1]
		for _, c := range e.Strip("reapple") {
			if c.Root == "apple" {
				gt.False(t, e.Allows(apple, c))
			}
		}
	})
}

func TestStripRoundTrip(t *testing.T) {
	d := load(t, englishAff, englishDic)
	e := affix.New(d.Aff)

	for _, entry := range d.Entries {
		for _, f := range e.Expand(entry) {
			if f.Prefix == nil && f.Suffix == nil {
				continue
			}
			found := false
			for _, c := range e.Strip(f.Word) {
				if c.Root == entry.Word && e.Allows(entry, c) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("form %q of %q cannot be stripped back", f.Word, entry.Word)
			}
		}
	}
}

func TestAllows_NeedAffix(t *testing.T) {
	d := load(t, englishAff, englishDic)
	e := affix.New(d.Aff)

	test := d.Entries[4]
	gt.False(t, e.Allows(test, affix.Candidate{Root: "test"}))

	accepted := false
	for _, c := range e.Strip("tests") {
		if c.Root == "test" && e.Allows(test, c) {
			accepted = true
		}
	}
	gt.True(t, accepted)
}
