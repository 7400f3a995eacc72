package dict

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
)

type condPart struct {
	any    bool
	negate bool
	chars  []rune
}

func (p condPart) match(r rune) bool {
	if p.any {
		return true
	}
	return slices.Contains(p.chars, r) != p.negate
}

// Condition is a compiled affix condition such as "[^aeiou]y" or "."
type Condition struct {
	src   string
	parts []condPart
}

// ParseCondition compiles an affix condition
func ParseCondition(src string) (*Condition, error) {
	c := &Condition{src: src}
	if src == "" || src == "." {
		return c, nil
	}

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '.':
			c.parts = append(c.parts, condPart{any: true})

		case '[':
			end := slices.Index(runes[i+1:], ']')
			if end < 0 {
				return nil, goerr.New("unterminated bracket in condition", goerr.V("condition", src))
			}
			group := runes[i+1 : i+1+end]
			part := condPart{}
			if len(group) > 0 && group[0] == '^' {
				part.negate = true
				group = group[1:]
			}
			part.chars = slices.Clone(group)
			c.parts = append(c.parts, part)
			i += end + 1

		default:
			c.parts = append(c.parts, condPart{chars: []rune{runes[i]}})
		}
	}

	return c, nil
}

// String returns the condition source
func (c *Condition) String() string {
	if c.src == "" {
		return "."
	}
	return c.src
}

// Len is the number of characters the condition constrains
func (c *Condition) Len() int {
	return len(c.parts)
}

// MatchPrefix matches the condition against the start of word
func (c *Condition) MatchPrefix(word string) bool {
	if len(c.parts) == 0 {
		return true
	}
	runes := []rune(word)
	if len(runes) < len(c.parts) {
		return false
	}
	for i, p := range c.parts {
		if !p.match(runes[i]) {
			return false
		}
	}
	return true
}

// MatchSuffix matches the condition against the end of word
func (c *Condition) MatchSuffix(word string) bool {
	if len(c.parts) == 0 {
		return true
	}
	runes := []rune(word)
	if len(runes) < len(c.parts) {
		return false
	}
	offset := len(runes) - len(c.parts)
	for i, p := range c.parts {
		if !p.match(runes[offset+i]) {
			return false
		}
	}
	return true
}
