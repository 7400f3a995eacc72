// Package source opens dictionary bundles by URL. Supported schemes are
// file://, http(s)://, gs://bucket/object and github://owner/repo@ref.
package source

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

// Reader dispatches on the URL scheme
type Reader struct {
	httpClient *http.Client
	storage    *storage.Client
	github     interfaces.GitHubClient
}

// Option configures a Reader
type Option func(*Reader)

// WithHTTPClient replaces the client used for http(s) URLs
func WithHTTPClient(c *http.Client) Option {
	return func(r *Reader) {
		r.httpClient = c
	}
}

// WithStorage enables gs:// URLs
func WithStorage(c *storage.Client) Option {
	return func(r *Reader) {
		r.storage = c
	}
}

// WithGitHub enables github:// URLs
func WithGitHub(c interfaces.GitHubClient) Option {
	return func(r *Reader) {
		r.github = c
	}
}

// New creates a Reader
func New(opts ...Option) *Reader {
	r := &Reader{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ interfaces.SourceReader = (*Reader)(nil)

// Open returns the content at rawURL. Callers close the reader.
func (r *Reader) Open(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid source URL", goerr.V("url", rawURL), goerr.T(types.ErrTagInvalidInput))
	}

	switch u.Scheme {
	case "file", "":
		return r.openFile(u)
	case "http", "https":
		return r.openHTTP(ctx, rawURL)
	case "gs":
		return r.openStorage(ctx, u)
	case "github":
		return r.openGitHub(ctx, u)
	default:
		return nil, goerr.New("unsupported source scheme",
			goerr.V("url", rawURL), goerr.V("scheme", u.Scheme), goerr.T(types.ErrTagInvalidInput))
	}
}

func (r *Reader) openFile(u *url.URL) (io.ReadCloser, error) {
	path := u.Path
	if u.Scheme == "" {
		path = u.String()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open bundle file", goerr.V("path", path))
	}
	return f, nil
}

func (r *Reader) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create bundle request", goerr.V("url", rawURL))
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download bundle", goerr.V("url", rawURL))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		opts := []goerr.Option{goerr.V("url", rawURL), goerr.V("status", resp.StatusCode)}
		if resp.StatusCode == http.StatusNotFound {
			opts = append(opts, goerr.T(types.ErrTagNotFound))
		}
		return nil, goerr.New("unexpected status code for bundle", opts...)
	}
	return resp.Body, nil
}

func (r *Reader) openStorage(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if r.storage == nil {
		return nil, goerr.New("gs:// sources need a Cloud Storage client", goerr.V("url", u.String()))
	}
	bucket, object := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || object == "" {
		return nil, goerr.New("gs:// URL needs a bucket and an object",
			goerr.V("url", u.String()), goerr.T(types.ErrTagInvalidInput))
	}

	rd, err := r.storage.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read object",
			goerr.V("bucket", bucket), goerr.V("object", object))
	}
	return rd, nil
}

func (r *Reader) openGitHub(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	if r.github == nil {
		return nil, goerr.New("github:// sources need a GitHub client", goerr.V("url", u.String()))
	}
	owner, repo, ref, err := ParseGitHub(u)
	if err != nil {
		return nil, err
	}

	data, err := r.github.DownloadZipball(ctx, owner, repo, ref)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download repository archive",
			goerr.V("owner", owner), goerr.V("repo", repo), goerr.V("ref", ref))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ParseGitHub splits github://owner/repo@ref. A missing ref means the
// default branch.
func ParseGitHub(u *url.URL) (owner, repo, ref string, err error) {
	owner = u.Host
	repo, ref, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "@")
	if owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", "", goerr.New("github:// URL must be github://owner/repo@ref",
			goerr.V("url", u.String()), goerr.T(types.ErrTagInvalidInput))
	}
	return owner, repo, ref, nil
}
