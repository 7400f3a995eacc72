package dict

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/unicode/norm"
)

// Entry is one root word of the word list
type Entry struct {
	Word  string
	Flags FlagSet
	Morph []string
}

// HasFlag reports whether the entry carries f
func (e *Entry) HasFlag(f Flag) bool {
	return e.Flags.Has(f)
}

// parseDic parses decoded word list text against the affix definitions
func parseDic(name, text string, aff *Aff) ([]*Entry, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil, nil
	}

	// the count is only a hint; never trust it beyond the lines present
	capacity := 0
	if n, err := strconv.Atoi(strings.TrimSpace(lines[start])); err == nil {
		start++
		capacity = min(max(n, 0), len(lines)-start)
	}

	entries := make([]*Entry, 0, capacity)
	for i := start; i < len(lines); i++ {
		line := lines[i]
		// lines starting with a tab are comments in several distributed dictionaries
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "\t") {
			continue
		}

		entry, err := parseEntry(line, aff)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid dictionary entry", goerr.V("file", name), goerr.V("line", i+1))
		}
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func parseEntry(line string, aff *Aff) (*Entry, error) {
	wordPart, morphPart, _ := strings.Cut(line, "\t")

	fields := strings.Fields(wordPart)
	if len(fields) == 0 {
		return nil, nil
	}
	wordPart = fields[0]
	// "word/flags po:noun" without a tab
	morph := fields[1:]
	morph = append(morph, strings.Fields(morphPart)...)

	word, flagStr := splitWordFlags(wordPart)
	word = aff.RemoveIgnored(norm.NFC.String(word))
	if word == "" {
		return nil, nil
	}

	flags, err := aff.ParseFlags(flagStr)
	if err != nil {
		return nil, err
	}

	return &Entry{
		Word:  word,
		Flags: flags,
		Morph: aff.resolveMorph(morph),
	}, nil
}

// splitWordFlags splits at the first unescaped slash that is not the first
// character. "\/" is unescaped to "/".
func splitWordFlags(s string) (string, string) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '/':
			sb.WriteByte('/')
			i++
		case s[i] == '/' && i > 0:
			return sb.String(), s[i+1:]
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String(), ""
}
