package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/quill/pkg/spell"
	"github.com/m-mizutani/quill/pkg/spell/dict"
)

const testAff = `SET UTF-8
TRY esianrtolcdugmphbyfvkwz
SFX S Y 1
SFX S 0 s .
`

const testDic = `4
hello
world
apple/S
the
`

func writeDict(t *testing.T, dir string) {
	t.Helper()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "en_US.aff"), []byte(testAff), 0600))
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "en_US.dic"), []byte(testDic), 0600))
}

func newSpeller(t *testing.T) *spell.Speller {
	t.Helper()
	d, err := dict.Load("en_US", strings.NewReader(testAff), strings.NewReader(testDic))
	gt.NoError(t, err)
	return spell.New(d)
}

func TestReportMisspellings(t *testing.T) {
	speller := newSpeller(t)
	text := "hello wrld\nthe apples aple"

	t.Run("with suggestions", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := reportMisspellings(&buf, "doc.txt", text, speller, checkOptions{noColor: true})
		gt.NoError(t, err)
		gt.Equal(t, n, 2)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		gt.A(t, lines).Length(2)
		gt.True(t, strings.HasPrefix(lines[0], "doc.txt:1:7 wrld -> "))
		gt.String(t, lines[0]).Contains("world")
		gt.True(t, strings.HasPrefix(lines[1], "doc.txt:2:12 aple"))
	})

	t.Run("list mode", func(t *testing.T) {
		var buf bytes.Buffer
		n, err := reportMisspellings(&buf, "-", text, speller, checkOptions{list: true})
		gt.NoError(t, err)
		gt.Equal(t, n, 2)
		gt.Equal(t, buf.String(), "wrld\naple\n")
	})
}

func TestPrintTables(t *testing.T) {
	speller := newSpeller(t)

	var buf bytes.Buffer
	printSuggestions(&buf, speller, []string{"wrld", "hello"})
	out := buf.String()
	gt.String(t, out).Contains("SUGGESTION")
	gt.String(t, out).Contains("world")
	gt.String(t, out).Contains("(correct)")

	buf.Reset()
	printAnalyses(&buf, speller, []string{"apples", "wrld"})
	out = buf.String()
	gt.String(t, out).Contains("apple")
	gt.String(t, out).Contains("misspelled")
}

func TestExpandWords(t *testing.T) {
	var buf bytes.Buffer
	gt.NoError(t, expandWords(&buf, newSpeller(t)))

	words := strings.Fields(buf.String())
	gt.A(t, words).Has("apples")
	gt.A(t, words).Has("apple")
	gt.A(t, words).Has("hello")
}

func TestRun_Check(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir)

	clean := filepath.Join(dir, "clean.txt")
	gt.NoError(t, os.WriteFile(clean, []byte("hello world"), 0600))
	typo := filepath.Join(dir, "typo.txt")
	gt.NoError(t, os.WriteFile(typo, []byte("hello wrld"), 0600))

	base := []string{"quill", "--log-level", "error", "--dict-dir", dir, "--dict", "en_US", "--cache-dir", t.TempDir()}

	gt.NoError(t, Run(context.Background(), append(base, "check", clean)))

	err := Run(context.Background(), append(base, "check", "--no-suggest", typo))
	gt.True(t, errors.Is(err, errMisspelled))

	err = Run(context.Background(), append(base, "check", filepath.Join(dir, "missing.txt")))
	gt.Error(t, err)
	gt.False(t, errors.Is(err, errMisspelled))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := Run(context.Background(), []string{"quill", "--log-level", "verbose", "--dict", "en_US", "expand"})
	gt.Error(t, err)
}

func TestRun_Fetch(t *testing.T) {
	dir := t.TempDir()

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	for name, content := range map[string]string{
		"dicts/en_US.aff": testAff,
		"dicts/en_US.dic": testDic,
		"README.md":       "not a dictionary",
	} {
		w, err := zw.Create(name)
		gt.NoError(t, err)
		_, err = w.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, zw.Close())

	bundlePath := filepath.Join(dir, "en_US.zip")
	gt.NoError(t, os.WriteFile(bundlePath, archive.Bytes(), 0600))
	sum := sha256.Sum256(archive.Bytes())

	catalogPath := filepath.Join(dir, "quill.toml")
	gt.NoError(t, os.WriteFile(catalogPath, []byte(`
cache_dir = "cache"

[[dictionary]]
name = "en_US"
[dictionary.source]
url = "file://`+bundlePath+`"
sha256 = "`+hex.EncodeToString(sum[:])+`"
`), 0600))

	args := []string{"quill", "--log-level", "error", "--config", catalogPath}
	gt.NoError(t, Run(context.Background(), append(args, "fetch")))

	_, err := os.Stat(filepath.Join(dir, "cache", "en_US", "en_US.aff"))
	gt.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "cache", "en_US", "README.md"))
	gt.True(t, errors.Is(err, os.ErrNotExist))

	// The extracted bundle is usable by the other commands
	gt.NoError(t, Run(context.Background(), append(args, "analyze", "apples")))
}

func TestExitCode(t *testing.T) {
	gt.Equal(t, ExitCode(nil), 0)
	gt.Equal(t, ExitCode(errMisspelled), 1)
	gt.Equal(t, ExitCode(errors.New("boom")), 2)
}
