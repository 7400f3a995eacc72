package dict

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// charmaps that WHATWG labels would silently remap (ISO8859-1 -> windows-1252)
var exactCharmaps = map[string]encoding.Encoding{
	"iso8859-1":        charmap.ISO8859_1,
	"iso8859-2":        charmap.ISO8859_2,
	"iso8859-5":        charmap.ISO8859_5,
	"iso8859-7":        charmap.ISO8859_7,
	"iso8859-9":        charmap.ISO8859_9,
	"iso8859-10":       charmap.ISO8859_10,
	"iso8859-13":       charmap.ISO8859_13,
	"iso8859-15":       charmap.ISO8859_15,
	"koi8-r":           charmap.KOI8R,
	"koi8-u":           charmap.KOI8U,
	"microsoft-cp1251": charmap.Windows1251,
}

// lookupEncoding resolves the argument of a SET directive
func lookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == "utf-8" || key == "utf8" {
		return unicode.UTF8, nil
	}
	if enc, ok := exactCharmaps[key]; ok {
		return enc, nil
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return nil, goerr.Wrap(err, "unsupported dictionary encoding", goerr.V("encoding", name))
	}
	return enc, nil
}

// sniffEncoding finds the SET directive in raw affix bytes. SET values are
// ASCII so the raw bytes can be scanned before decoding.
func sniffEncoding(raw []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimPrefix(sc.Bytes(), []byte("\xef\xbb\xbf"))
		fields := bytes.Fields(line)
		if len(fields) >= 2 && string(fields[0]) == "SET" {
			return string(fields[1])
		}
	}
	return ""
}

// decode converts raw file bytes to UTF-8 text
func decode(raw []byte, enc encoding.Encoding) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if enc == unicode.UTF8 {
		return string(raw), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to decode dictionary text")
	}
	return string(out), nil
}
