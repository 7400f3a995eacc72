package dict

import (
	"sort"
	"strings"
)

// Conv is an ICONV/OCONV table. The longest matching pattern wins at each
// position.
type Conv struct {
	pairs []convPair
}

type convPair struct {
	from string
	to   string
}

func (c *Conv) add(from, to string) {
	c.pairs = append(c.pairs, convPair{
		from: strings.ReplaceAll(from, "_", " "),
		to:   strings.ReplaceAll(to, "_", " "),
	})
	sort.SliceStable(c.pairs, func(i, j int) bool {
		return len(c.pairs[i].from) > len(c.pairs[j].from)
	})
}

// Apply converts s. A nil table returns s unchanged.
func (c *Conv) Apply(s string) string {
	if c == nil || len(c.pairs) == 0 {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); {
		matched := false
		for _, p := range c.pairs {
			if p.from != "" && strings.HasPrefix(s[i:], p.from) {
				sb.WriteString(p.to)
				i += len(p.from)
				matched = true
				break
			}
		}
		if !matched {
			// copy one whole UTF-8 sequence
			j := i + 1
			for j < len(s) && s[j]&0xC0 == 0x80 {
				j++
			}
			sb.WriteString(s[i:j])
			i = j
		}
	}
	return sb.String()
}
