package usecase

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

const (
	// maxBundleSize bounds the downloaded archive
	maxBundleSize = 256 << 20
	partialSuffix = ".partial"
	markerFile    = ".bundle.json"
)

// maxExtractSize bounds the decompressed total of all extracted files
var maxExtractSize int64 = 512 << 20

type bundleMarker struct {
	URL       string    `json:"url"`
	SHA256    string    `json:"sha256"`
	Files     []string  `json:"files"`
	Size      int64     `json:"size"`
	FetchedAt time.Time `json:"fetched_at"`
}

type bundleUseCase struct {
	reader   interfaces.SourceReader
	cacheDir string
}

// NewBundle creates a BundleUseCase extracting into cacheDir/<name>
func NewBundle(reader interfaces.SourceReader, cacheDir string) interfaces.BundleUseCase {
	return &bundleUseCase{
		reader:   reader,
		cacheDir: cacheDir,
	}
}

func (uc *bundleUseCase) dir(name string) string {
	return filepath.Join(uc.cacheDir, name)
}

// Cached returns the previous extraction when it came from the same URL and,
// for pinned sources, the same digest
func (uc *bundleUseCase) Cached(name string, src model.BundleSource) (*model.BundleResult, bool) {
	dir := uc.dir(name)
	raw, err := os.ReadFile(filepath.Join(dir, markerFile))
	if err != nil {
		return nil, false
	}

	var m bundleMarker
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	if m.URL != src.DownloadURL() || src.SHA256 == "" || !strings.EqualFold(m.SHA256, src.SHA256) {
		return nil, false
	}
	for _, f := range m.Files {
		if _, err := os.Stat(filepath.Join(dir, f)); err != nil {
			return nil, false
		}
	}

	return &model.BundleResult{
		Dir:       dir,
		Files:     m.Files,
		Size:      m.Size,
		SHA256:    m.SHA256,
		FetchedAt: m.FetchedAt,
	}, true
}

// Fetch downloads src, verifies its digest and extracts the .aff and .dic
// files into the cache directory
func (uc *bundleUseCase) Fetch(ctx context.Context, name string, src model.BundleSource) (*model.BundleResult, error) {
	logger := ctxlog.From(ctx)
	url := src.DownloadURL()

	logger.Info("Fetching dictionary bundle",
		"dictionary", name,
		"url", url,
		"version", src.Version,
	)

	data, err := uc.download(ctx, url)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download bundle", goerr.V("dictionary", name))
	}

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])
	if src.SHA256 != "" && !strings.EqualFold(src.SHA256, digest) {
		return nil, goerr.New("bundle digest mismatch",
			goerr.V("dictionary", name),
			goerr.V("url", url),
			goerr.V("expected", src.SHA256),
			goerr.V("actual", digest),
			goerr.T(types.ErrTagIntegrity),
		)
	}
	if src.SHA256 == "" {
		logger.Warn("Bundle has no pinned digest", "dictionary", name, "url", url, "sha256", digest)
	}

	result, err := uc.extract(ctx, uc.dir(name), data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to extract bundle", goerr.V("dictionary", name))
	}
	result.SHA256 = digest
	result.FetchedAt = time.Now().UTC()

	if err := writeMarker(result, url); err != nil {
		return nil, err
	}

	logger.Info("Extracted dictionary bundle",
		"dictionary", name,
		"dir", result.Dir,
		"file_count", len(result.Files),
		"total_size_bytes", result.Size,
	)
	return result, nil
}

func (uc *bundleUseCase) download(ctx context.Context, url string) ([]byte, error) {
	rc, err := uc.reader.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBundleSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read bundle", goerr.V("url", url))
	}
	if len(data) > maxBundleSize {
		return nil, goerr.New("bundle is too large", goerr.V("url", url), goerr.V("limit", maxBundleSize))
	}
	return data, nil
}

// memberFunc receives one regular archive member. size is the size the
// archive declares; r yields at most the real content.
type memberFunc func(name string, size int64, r io.Reader) error

// extract writes every .aff/.dic member of data into destDir, flattening
// directories. Members are streamed to *.partial files in one pass and
// renamed into place once the whole archive is read; on failure no partial
// file is left behind. The decompressed total is capped at maxExtractSize.
func (uc *bundleUseCase) extract(ctx context.Context, destDir string, data []byte) (*model.BundleResult, error) {
	logger := ctxlog.From(ctx)

	if err := os.MkdirAll(destDir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create cache directory", goerr.V("dir", destDir))
	}
	if err := removePartials(destDir); err != nil {
		return nil, err
	}

	var partials []string
	success := false
	defer func() {
		if success {
			return
		}
		for _, p := range partials {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				logger.Warn("Failed to remove partial file", "path", p, "error", err)
			}
		}
	}()

	result := &model.BundleResult{Dir: destDir}
	written := make(map[string]string) // final path -> partial path

	err := walkArchive(data, func(name string, size int64, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isDictionaryFile(name) {
			return nil
		}

		base, err := safeBase(destDir, name)
		if err != nil {
			return err
		}
		final := filepath.Join(destDir, base)
		if _, dup := written[final]; dup {
			logger.Warn("Duplicate dictionary file in bundle, keeping the first", "file", name)
			return nil
		}

		remaining := maxExtractSize - result.Size
		if size > remaining {
			return goerr.New("bundle content is too large",
				goerr.V("file", name), goerr.V("size", size), goerr.V("limit", maxExtractSize))
		}

		partial := final + partialSuffix
		partials = append(partials, partial)
		n, err := writeEntry(r, partial, remaining)
		if err != nil {
			return goerr.Wrap(err, "failed to extract file", goerr.V("file", name))
		}

		written[final] = partial
		result.Files = append(result.Files, base)
		result.Size += n
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !hasSuffix(result.Files, ".dic") || !hasSuffix(result.Files, ".aff") {
		return nil, goerr.New("bundle has no .aff/.dic pair",
			goerr.V("files", result.Files), goerr.T(types.ErrTagInvalidInput))
	}

	for final, partial := range written {
		if err := os.Rename(partial, final); err != nil {
			return nil, goerr.Wrap(err, "failed to move extracted file into place", goerr.V("path", final))
		}
	}
	success = true

	sort.Strings(result.Files)
	return result, nil
}

func walkArchive(data []byte, fn memberFunc) error {
	switch {
	case bytes.HasPrefix(data, []byte("PK\x03\x04")), bytes.HasPrefix(data, []byte("PK\x05\x06")):
		return walkZip(data, fn)
	case bytes.HasPrefix(data, []byte{0x1f, 0x8b}):
		return walkTarGz(data, fn)
	default:
		return goerr.New("unsupported bundle format, want .zip or .tar.gz", goerr.T(types.ErrTagInvalidInput))
	}
}

func walkZip(data []byte, fn memberFunc) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return goerr.Wrap(err, "failed to create zip reader")
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !isDictionaryFile(f.Name) {
			continue
		}
		if err := visitZipFile(f, fn); err != nil {
			return err
		}
	}
	return nil
}

func visitZipFile(f *zip.File, fn memberFunc) error {
	rc, err := f.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open archive member", goerr.V("file", f.Name))
	}
	defer rc.Close()
	return fn(f.Name, int64(f.UncompressedSize64), rc)
}

func walkTarGz(data []byte, fn memberFunc) error {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return goerr.Wrap(err, "failed to create gzip reader")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return goerr.Wrap(err, "failed to read tar archive")
		}
		if hdr.Typeflag != tar.TypeReg || !isDictionaryFile(hdr.Name) {
			continue
		}
		if err := fn(hdr.Name, hdr.Size, tr); err != nil {
			return err
		}
	}
}

func isDictionaryFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".aff" || ext == ".dic"
}

// safeBase rejects members that would escape destDir and returns the base
// name the member is written as
func safeBase(destDir, name string) (string, error) {
	destPath := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", goerr.New("invalid file path detected",
			goerr.V("file", name), goerr.V("dest", destPath), goerr.T(types.ErrTagInvalidInput))
	}
	base := path.Base(filepath.ToSlash(name))
	if base == "." || base == ".." || base == "/" {
		return "", goerr.New("invalid file name detected", goerr.V("file", name), goerr.T(types.ErrTagInvalidInput))
	}
	return base, nil
}

// writeEntry copies r into dest, failing once more than limit bytes arrive
func writeEntry(r io.Reader, dest string, limit int64) (int64, error) {
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to create destination file", goerr.V("path", dest))
	}

	n, err := io.Copy(out, io.LimitReader(r, limit+1))
	if err != nil {
		out.Close()
		return 0, goerr.Wrap(err, "failed to copy file content", goerr.V("path", dest))
	}
	if n > limit {
		out.Close()
		return 0, goerr.New("bundle content is too large", goerr.V("path", dest), goerr.V("limit", limit))
	}
	if err := out.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to close destination file", goerr.V("path", dest))
	}
	return n, nil
}

// removePartials deletes leftovers of an interrupted extraction
func removePartials(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+partialSuffix))
	if err != nil {
		return goerr.Wrap(err, "failed to list partial files", goerr.V("dir", dir))
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !os.IsNotExist(err) {
			return goerr.Wrap(err, "failed to remove stale partial file", goerr.V("path", m))
		}
	}
	return nil
}

func hasSuffix(files []string, suffix string) bool {
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f), suffix) {
			return true
		}
	}
	return false
}

func writeMarker(result *model.BundleResult, url string) error {
	raw, err := json.Marshal(bundleMarker{
		URL:       url,
		SHA256:    result.SHA256,
		Files:     result.Files,
		Size:      result.Size,
		FetchedAt: result.FetchedAt,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to encode bundle marker")
	}

	path := filepath.Join(result.Dir, markerFile)
	if err := os.WriteFile(path+partialSuffix, raw, 0600); err != nil {
		return goerr.Wrap(err, "failed to write bundle marker", goerr.V("path", path))
	}
	if err := os.Rename(path+partialSuffix, path); err != nil {
		return goerr.Wrap(err, "failed to move bundle marker into place", goerr.V("path", path))
	}
	return nil
}

// pickPair chooses the .aff/.dic pair of a bundle for dictionary name:
// name.aff/name.dic when present, otherwise the only pair in the bundle
func pickPair(result *model.BundleResult, name string) (aff, dic string, err error) {
	has := make(map[string]bool, len(result.Files))
	for _, f := range result.Files {
		has[f] = true
	}
	if has[name+".aff"] && has[name+".dic"] {
		return filepath.Join(result.Dir, name+".aff"), filepath.Join(result.Dir, name+".dic"), nil
	}

	var pairs []string
	for _, f := range result.Files {
		if stem, ok := strings.CutSuffix(f, ".dic"); ok && has[stem+".aff"] {
			pairs = append(pairs, stem)
		}
	}
	if len(pairs) != 1 {
		return "", "", goerr.New("cannot choose a dictionary in bundle",
			goerr.V("dictionary", name), goerr.V("candidates", pairs), goerr.T(types.ErrTagInvalidInput))
	}
	return filepath.Join(result.Dir, pairs[0]+".aff"), filepath.Join(result.Dir, pairs[0]+".dic"), nil
}
