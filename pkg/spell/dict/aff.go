package dict

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// AffixKind tells prefixes from suffixes
type AffixKind int

const (
	Prefix AffixKind = iota
	Suffix
)

func (k AffixKind) String() string {
	if k == Prefix {
		return "PFX"
	}
	return "SFX"
}

// Affix is one PFX/SFX rule line
type Affix struct {
	Kind  AffixKind
	Flag  Flag
	Cross bool
	Strip string
	Add   string
	// Cont holds continuation flags written as "add/flags"
	Cont  FlagSet
	Cond  *Condition
	Morph []string
}

// Rep is one REP replacement. Anchored patterns only match at the word
// start (^) or end ($).
type Rep struct {
	From    string
	To      string
	AtStart bool
	AtEnd   bool
}

// Aff holds everything parsed from an affix file
type Aff struct {
	Encoding  string
	FlagMode  FlagMode
	Lang      string
	Try       string
	Key       []string
	WordChars string
	Ignore    string

	Rep   []Rep
	Map   [][]string
	Break []string
	IConv *Conv
	OConv *Conv

	Prefixes []*Affix
	Suffixes []*Affix

	NeedAffix      Flag
	Forbidden      Flag
	KeepCase       Flag
	NoSuggest      Flag
	OnlyInCompound Flag
	CompoundFlag   Flag
	Circumfix      Flag
	CompoundMin    int
	MaxNgramSugs   int
	NoSplitSugs    bool

	flagAliases  []FlagSet
	morphAliases [][]string

	// Warnings lists directives that were recognized but skipped
	Warnings []string
}

const (
	defaultKey          = "qwertyuiop|asdfghjkl|zxcvbnm"
	defaultCompoundMin  = 3
	defaultMaxNgramSugs = 4
)

var defaultBreak = []string{"-", "^-", "-$"}

func newAff() *Aff {
	return &Aff{
		Encoding:     "UTF-8",
		Key:          strings.Split(defaultKey, "|"),
		CompoundMin:  defaultCompoundMin,
		MaxNgramSugs: defaultMaxNgramSugs,
	}
}

// ParseFlags decodes flags using the affix file's FLAG mode and AF aliases
func (a *Aff) ParseFlags(s string) (FlagSet, error) {
	if len(a.flagAliases) > 0 {
		if n, err := strconv.Atoi(s); err == nil {
			if n < 1 || n > len(a.flagAliases) {
				return nil, goerr.New("flag alias out of range", goerr.V("alias", n))
			}
			return a.flagAliases[n-1], nil
		}
	}
	return ParseFlags(a.FlagMode, s)
}

// resolveMorph expands AM aliases in morphological fields
func (a *Aff) resolveMorph(fields []string) []string {
	if len(a.morphAliases) == 0 || len(fields) != 1 {
		return fields
	}
	if n, err := strconv.Atoi(fields[0]); err == nil && n >= 1 && n <= len(a.morphAliases) {
		return a.morphAliases[n-1]
	}
	return fields
}

// RemoveIgnored drops IGNORE characters from s
func (a *Aff) RemoveIgnored(s string) string {
	if a.Ignore == "" {
		return s
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(a.Ignore, r) {
			return -1
		}
		return r
	}, s)
}

// BreakPatterns returns BREAK patterns, falling back to the defaults
func (a *Aff) BreakPatterns() []string {
	if a.Break == nil {
		return defaultBreak
	}
	return a.Break
}

// lineReader walks the decoded affix text keeping line numbers for errors
type lineReader struct {
	name  string
	lines []string
	pos   int
}

func (r *lineReader) next() ([]string, int, bool) {
	for r.pos < len(r.lines) {
		line := r.lines[r.pos]
		r.pos++
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return strings.Fields(trimmed), r.pos, true
	}
	return nil, r.pos, false
}

func (r *lineReader) errorf(line int, msg string, opts ...goerr.Option) error {
	return goerr.New(msg, append(opts, goerr.V("file", r.name), goerr.V("line", line))...)
}

// table reads the n entry lines that follow a counted directive header
func (r *lineReader) table(directive string, header []string, line int) ([][]string, error) {
	if len(header) < 2 {
		return nil, r.errorf(line, "missing table size", goerr.V("directive", directive))
	}
	n, err := strconv.Atoi(header[1])
	if err != nil || n < 0 {
		return nil, r.errorf(line, "invalid table size", goerr.V("directive", directive), goerr.V("size", header[1]))
	}

	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		fields, ln, ok := r.next()
		if !ok {
			return nil, r.errorf(ln, "unexpected end of table", goerr.V("directive", directive), goerr.V("want", n), goerr.V("got", i))
		}
		if fields[0] != directive {
			return nil, r.errorf(ln, "table entry does not repeat directive", goerr.V("directive", directive), goerr.V("got", fields[0]))
		}
		rows = append(rows, fields[1:])
	}
	return rows, nil
}

// parseAff parses decoded affix file text
func parseAff(name, text string) (*Aff, error) {
	aff := newAff()
	r := &lineReader{name: name, lines: strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")}

	for {
		fields, line, ok := r.next()
		if !ok {
			break
		}

		directive := fields[0]
		arg := ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch directive {
		case "SET":
			aff.Encoding = arg
		case "FLAG":
			switch arg {
			case "long":
				aff.FlagMode = FlagLong
			case "num":
				aff.FlagMode = FlagNum
			case "UTF-8":
				aff.FlagMode = FlagUTF8
			default:
				return nil, r.errorf(line, "unknown FLAG type", goerr.V("type", arg))
			}
		case "LANG":
			aff.Lang = arg
		case "TRY":
			aff.Try = arg
		case "KEY":
			aff.Key = strings.Split(arg, "|")
		case "WORDCHARS":
			aff.WordChars = arg
		case "IGNORE":
			aff.Ignore = arg
		case "NOSPLITSUGS":
			aff.NoSplitSugs = true

		case "COMPOUNDMIN", "MAXNGRAMSUGS":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				return nil, r.errorf(line, "invalid numeric directive", goerr.V("directive", directive), goerr.V("value", arg))
			}
			if directive == "COMPOUNDMIN" {
				aff.CompoundMin = max(n, 1)
			} else {
				aff.MaxNgramSugs = n
			}

		case "NEEDAFFIX", "PSEUDOROOT", "FORBIDDENWORD", "KEEPCASE", "NOSUGGEST",
			"ONLYINCOMPOUND", "COMPOUNDFLAG", "CIRCUMFIX":
			f, err := parseSingleFlag(aff.FlagMode, arg)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid flag directive", goerr.V("file", name), goerr.V("line", line), goerr.V("directive", directive))
			}
			switch directive {
			case "NEEDAFFIX", "PSEUDOROOT":
				aff.NeedAffix = f
			case "FORBIDDENWORD":
				aff.Forbidden = f
			case "KEEPCASE":
				aff.KeepCase = f
			case "NOSUGGEST":
				aff.NoSuggest = f
			case "ONLYINCOMPOUND":
				aff.OnlyInCompound = f
			case "COMPOUNDFLAG":
				aff.CompoundFlag = f
			case "CIRCUMFIX":
				aff.Circumfix = f
			}

		case "REP":
			rows, err := r.table(directive, fields, line)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if len(row) < 2 {
					return nil, r.errorf(line, "REP entry needs two fields")
				}
				aff.Rep = append(aff.Rep, parseRep(row[0], row[1]))
			}

		case "MAP":
			rows, err := r.table(directive, fields, line)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if len(row) == 0 {
					return nil, r.errorf(line, "empty MAP entry")
				}
				aff.Map = append(aff.Map, parseMapGroup(row[0]))
			}

		case "BREAK":
			rows, err := r.table(directive, fields, line)
			if err != nil {
				return nil, err
			}
			aff.Break = []string{}
			for _, row := range rows {
				if len(row) == 0 {
					return nil, r.errorf(line, "empty BREAK entry")
				}
				aff.Break = append(aff.Break, row[0])
			}

		case "ICONV", "OCONV":
			rows, err := r.table(directive, fields, line)
			if err != nil {
				return nil, err
			}
			conv := &Conv{}
			for _, row := range rows {
				if len(row) < 2 {
					return nil, r.errorf(line, "conversion entry needs two fields", goerr.V("directive", directive))
				}
				conv.add(row[0], row[1])
			}
			if directive == "ICONV" {
				aff.IConv = conv
			} else {
				aff.OConv = conv
			}

		case "AF":
			rows, err := r.table(directive, fields, line)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if len(row) == 0 {
					return nil, r.errorf(line, "empty AF entry")
				}
				set, err := ParseFlags(aff.FlagMode, row[0])
				if err != nil {
					return nil, goerr.Wrap(err, "invalid AF alias", goerr.V("file", name), goerr.V("line", line))
				}
				aff.flagAliases = append(aff.flagAliases, set)
			}

		case "AM":
			rows, err := r.table(directive, fields, line)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				aff.morphAliases = append(aff.morphAliases, row)
			}

		case "PFX", "SFX":
			if err := parseAffixClass(aff, r, fields, line); err != nil {
				return nil, err
			}

		default:
			aff.Warnings = append(aff.Warnings, directive)
		}
	}

	return aff, nil
}

func parseRep(from, to string) Rep {
	rep := Rep{}
	if strings.HasPrefix(from, "^") {
		rep.AtStart = true
		from = from[1:]
	}
	if strings.HasSuffix(from, "$") {
		rep.AtEnd = true
		from = from[:len(from)-1]
	}
	rep.From = strings.ReplaceAll(from, "_", " ")
	rep.To = strings.ReplaceAll(to, "_", " ")
	return rep
}

// parseMapGroup splits "aáâ(ss)ß" into its related character groups
func parseMapGroup(s string) []string {
	var group []string
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '(' {
			end := i + 1
			for end < len(runes) && runes[end] != ')' {
				end++
			}
			group = append(group, string(runes[i+1:end]))
			i = end
			continue
		}
		group = append(group, string(runes[i]))
	}
	return group
}

func parseAffixClass(aff *Aff, r *lineReader, header []string, line int) error {
	directive := header[0]
	if len(header) < 4 {
		return r.errorf(line, "affix header needs flag, cross product and count", goerr.V("directive", directive))
	}

	flag, err := parseSingleFlag(aff.FlagMode, header[1])
	if err != nil {
		return goerr.Wrap(err, "invalid affix flag", goerr.V("file", r.name), goerr.V("line", line))
	}
	cross := header[2] == "Y"

	kind := Suffix
	if directive == "PFX" {
		kind = Prefix
	}

	rows, err := r.table(directive, []string{directive, header[3]}, line)
	if err != nil {
		return err
	}

	for _, row := range rows {
		// row: flag strip add[/cont] [condition [morph...]]
		if len(row) < 3 {
			return r.errorf(line, "affix rule needs flag, strip and add", goerr.V("directive", directive))
		}
		if row[0] != header[1] {
			return r.errorf(line, "affix rule flag differs from header", goerr.V("want", header[1]), goerr.V("got", row[0]))
		}

		affix := &Affix{Kind: kind, Flag: flag, Cross: cross}

		if row[1] != "0" {
			affix.Strip = row[1]
		}

		add := row[2]
		if idx := strings.IndexByte(add, '/'); idx >= 0 {
			cont, err := aff.ParseFlags(add[idx+1:])
			if err != nil {
				return goerr.Wrap(err, "invalid continuation flags", goerr.V("file", r.name), goerr.V("line", line))
			}
			affix.Cont = cont
			add = add[:idx]
		}
		if add != "0" {
			affix.Add = aff.RemoveIgnored(add)
		}

		condSrc := "."
		if len(row) > 3 {
			condSrc = row[3]
		}
		cond, err := ParseCondition(condSrc)
		if err != nil {
			return goerr.Wrap(err, "invalid affix condition", goerr.V("file", r.name), goerr.V("line", line))
		}
		affix.Cond = cond

		if len(row) > 4 {
			affix.Morph = aff.resolveMorph(row[4:])
		}

		if kind == Prefix {
			aff.Prefixes = append(aff.Prefixes, affix)
		} else {
			aff.Suffixes = append(aff.Suffixes, affix)
		}
	}

	return nil
}
