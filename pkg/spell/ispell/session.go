// Package ispell serves the "ispell -a" pipe protocol that editors use to
// drive an external spellchecker.
package ispell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/spell"
)

// Checker is the part of spell.Speller a session needs
type Checker interface {
	Check(word string) spell.Result
	Suggest(word string) []string
	Add(word string)
	Tokens(text string) []spell.Token
}

// SaveFunc persists the words added with "*" and "&" when "#" arrives
type SaveFunc func(ctx context.Context, words []string) error

// Session holds per-pipe state
type Session struct {
	checker Checker
	version string
	save    SaveFunc

	terse   bool
	pending []string
}

// Option configures a Session
type Option func(*Session)

// WithVersion sets the version shown in the banner
func WithVersion(v string) Option {
	return func(s *Session) {
		s.version = v
	}
}

// WithSaveFunc sets where "#" stores personal words
func WithSaveFunc(fn SaveFunc) Option {
	return func(s *Session) {
		s.save = fn
	}
}

// New creates a session over checker
func New(checker Checker, opts ...Option) *Session {
	s := &Session{checker: checker, version: "dev"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Banner is the first line written to the editor
func (s *Session) Banner() string {
	return fmt.Sprintf("@(#) International Ispell Version 3.2.06 (but really quill %s)", s.version)
}

// Run reads commands from r and writes results to w until r ends or ctx is
// cancelled
func (s *Session) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(out, s.Banner()); err != nil {
		return goerr.Wrap(err, "failed to write banner")
	}
	if err := out.Flush(); err != nil {
		return goerr.Wrap(err, "failed to flush banner")
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, line := range s.Handle(ctx, scanner.Text()) {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return goerr.Wrap(err, "failed to write result")
			}
		}
		if err := out.Flush(); err != nil {
			return goerr.Wrap(err, "failed to flush result")
		}
	}

	if err := scanner.Err(); err != nil {
		return goerr.Wrap(err, "failed to read input")
	}
	return nil
}

// Handle processes one input line and returns the output lines. Checked
// lines end with an empty line; commands produce no output.
func (s *Session) Handle(ctx context.Context, line string) []string {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return []string{""}
	}

	switch line[0] {
	case '!':
		s.terse = true
		return nil
	case '%':
		s.terse = false
		return nil
	case '*':
		if word := strings.TrimSpace(line[1:]); word != "" {
			s.checker.Add(word)
			s.pending = append(s.pending, word)
		}
		return nil
	case '&':
		if word := strings.ToLower(strings.TrimSpace(line[1:])); word != "" {
			s.checker.Add(word)
			s.pending = append(s.pending, word)
		}
		return nil
	case '@':
		if word := strings.TrimSpace(line[1:]); word != "" {
			s.checker.Add(word)
		}
		return nil
	case '#':
		s.flush(ctx)
		return nil
	case '+', '-', '~', '`':
		// TeX/nroff mode switches and formatter selection
		return nil
	case '^':
		return s.checkLine(line[1:], 1)
	default:
		return s.checkLine(line, 0)
	}
}

func (s *Session) flush(ctx context.Context) {
	if s.save == nil || len(s.pending) == 0 {
		return
	}
	if err := s.save(ctx, s.pending); err != nil {
		ctxlog.From(ctx).Warn("failed to save personal words", "error", err, "count", len(s.pending))
		return
	}
	s.pending = nil
}

// checkLine emits one result per word. shift is added to offsets so they
// point into the line as received.
func (s *Session) checkLine(text string, shift int) []string {
	var out []string
	for _, tok := range s.checker.Tokens(text) {
		r := s.checker.Check(tok.Word)
		offset := tok.RuneOffset + shift

		switch {
		case r.Correct && s.terse:
			continue
		case r.Correct && r.Compound:
			out = append(out, "-")
		case r.Correct && r.Affixed:
			out = append(out, "+ "+r.Root)
		case r.Correct:
			out = append(out, "*")
		default:
			sugs := s.checker.Suggest(tok.Word)
			if len(sugs) == 0 {
				out = append(out, fmt.Sprintf("# %s %d", tok.Word, offset))
			} else {
				out = append(out, fmt.Sprintf("& %s %d %d: %s", tok.Word, len(sugs), offset, strings.Join(sugs, ", ")))
			}
		}
	}
	return append(out, "")
}
