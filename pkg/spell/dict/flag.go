package dict

import (
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

// FlagMode is the syntax used to write affix flags (the FLAG directive)
type FlagMode int

const (
	// FlagChar is the default mode: every character is one flag
	FlagChar FlagMode = iota
	// FlagLong uses two characters per flag
	FlagLong
	// FlagNum uses comma separated decimal numbers
	FlagNum
	// FlagUTF8 uses one Unicode character per flag
	FlagUTF8
)

func (m FlagMode) String() string {
	switch m {
	case FlagLong:
		return "long"
	case FlagNum:
		return "num"
	case FlagUTF8:
		return "UTF-8"
	default:
		return "char"
	}
}

// Flag is a decoded affix flag. Zero means "not set".
type Flag uint32

// FlagSet is a sorted set of flags
type FlagSet []Flag

// NewFlagSet returns a sorted, deduplicated set
func NewFlagSet(flags ...Flag) FlagSet {
	s := make(FlagSet, 0, len(flags))
	for _, f := range flags {
		if f != 0 {
			s = append(s, f)
		}
	}
	slices.Sort(s)
	return slices.Compact(s)
}

// Has reports whether f is in the set. Has(0) is always false.
func (s FlagSet) Has(f Flag) bool {
	if f == 0 {
		return false
	}
	_, found := slices.BinarySearch(s, f)
	return found
}

// Union returns a new set holding the flags of both sets
func (s FlagSet) Union(other FlagSet) FlagSet {
	return NewFlagSet(append(slices.Clone(s), other...)...)
}

// ParseFlags decodes a flag string written in the given mode
func ParseFlags(mode FlagMode, s string) (FlagSet, error) {
	if s == "" {
		return nil, nil
	}

	var flags []Flag
	switch mode {
	case FlagLong:
		runes := []rune(s)
		if len(runes)%2 != 0 {
			return nil, goerr.New("odd number of characters in long flags", goerr.V("flags", s))
		}
		for i := 0; i < len(runes); i += 2 {
			flags = append(flags, Flag(runes[i])<<16|Flag(runes[i+1]))
		}

	case FlagNum:
		for _, part := range strings.Split(s, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.ParseUint(part, 10, 16)
			if err != nil {
				return nil, goerr.Wrap(err, "invalid numeric flag", goerr.V("flags", s))
			}
			if n == 0 {
				return nil, goerr.New("numeric flag must be positive", goerr.V("flags", s))
			}
			flags = append(flags, Flag(n))
		}

	default:
		if !utf8.ValidString(s) {
			return nil, goerr.New("flags are not valid UTF-8", goerr.V("flags", s))
		}
		for _, r := range s {
			flags = append(flags, Flag(r))
		}
	}

	return NewFlagSet(flags...), nil
}

// parseSingleFlag decodes a directive argument that names exactly one flag
func parseSingleFlag(mode FlagMode, s string) (Flag, error) {
	set, err := ParseFlags(mode, s)
	if err != nil {
		return 0, err
	}
	if len(set) != 1 {
		return 0, goerr.New("expected a single flag", goerr.V("flag", s))
	}
	return set[0], nil
}
