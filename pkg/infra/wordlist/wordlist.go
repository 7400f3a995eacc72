// Package wordlist reads and appends personal word list files: one word per
// line, optionally "word/example" to inherit the example's affixes. Lines
// starting with # are comments.
package wordlist

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Entry is one line of a word list
type Entry struct {
	Word    string
	Example string
}

// Parse reads entries from r
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		word, example, _ := strings.Cut(line, "/")
		if word == "" {
			continue
		}
		entries = append(entries, Entry{Word: word, Example: example})
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read word list")
	}
	return entries, nil
}

// Read loads the word list at path. A missing file is returned as an error
// wrapping fs.ErrNotExist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open word list", goerr.V("path", path))
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse word list", goerr.V("path", path))
	}
	return entries, nil
}

// Append adds words to the list at path, creating it if needed
func Append(path string, words []string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return goerr.Wrap(err, "failed to open word list for writing", goerr.V("path", path))
	}

	w := bufio.NewWriter(f)
	for _, word := range words {
		if _, err := w.WriteString(word + "\n"); err != nil {
			f.Close()
			return goerr.Wrap(err, "failed to write word list", goerr.V("path", path))
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return goerr.Wrap(err, "failed to flush word list", goerr.V("path", path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close word list", goerr.V("path", path))
	}
	return nil
}
