package source_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/infra/source"
)

type mockGitHubClient struct {
	calls []string
	data  []byte
}

func (m *mockGitHubClient) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	m.calls = append(m.calls, owner+"/"+repo+"@"+ref)
	return m.data, nil
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	gt.NoError(t, err)
	return string(b)
}

func TestReader_Open(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.zip")
	gt.NoError(t, os.WriteFile(path, []byte("local"), 0600))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/en_US-1.0.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("remote"))
	}))
	defer srv.Close()

	gh := &mockGitHubClient{data: []byte("archive")}
	r := source.New(source.WithGitHub(gh), source.WithHTTPClient(srv.Client()))

	t.Run("file URL", func(t *testing.T) {
		rc, err := r.Open(ctx, "file://"+path)
		gt.NoError(t, err)
		gt.Equal(t, readAll(t, rc), "local")
	})

	t.Run("plain path", func(t *testing.T) {
		rc, err := r.Open(ctx, path)
		gt.NoError(t, err)
		gt.Equal(t, readAll(t, rc), "local")
	})

	t.Run("https URL", func(t *testing.T) {
		rc, err := r.Open(ctx, srv.URL+"/en_US-1.0.zip")
		gt.NoError(t, err)
		gt.Equal(t, readAll(t, rc), "remote")
	})

	t.Run("missing remote object", func(t *testing.T) {
		_, err := r.Open(ctx, srv.URL+"/missing.zip")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	})

	t.Run("github URL", func(t *testing.T) {
		rc, err := r.Open(ctx, "github://acme/dicts@v2")
		gt.NoError(t, err)
		gt.Equal(t, readAll(t, rc), "archive")
		gt.Equal(t, gh.calls, []string{"acme/dicts@v2"})
	})

	t.Run("gs URL without storage client", func(t *testing.T) {
		_, err := r.Open(ctx, "gs://bucket/en.zip")
		gt.Error(t, err)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		_, err := r.Open(ctx, "ftp://example.com/en.zip")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
	})
}

func TestParseGitHub(t *testing.T) {
	tests := []struct {
		url     string
		owner   string
		repo    string
		ref     string
		wantErr bool
	}{
		{url: "github://acme/dicts@v1.0.0", owner: "acme", repo: "dicts", ref: "v1.0.0"},
		{url: "github://acme/dicts", owner: "acme", repo: "dicts"},
		{url: "github://acme", wantErr: true},
		{url: "github://acme/dicts/extra@main", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			gt.NoError(t, err)

			owner, repo, ref, err := source.ParseGitHub(u)
			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.Equal(t, owner, tt.owner)
			gt.Equal(t, repo, tt.repo)
			gt.Equal(t, ref, tt.ref)
		})
	}
}

func TestReader_Storage(t *testing.T) {
	bucket := os.Getenv("TEST_STORAGE_BUCKET")
	object := os.Getenv("TEST_STORAGE_OBJECT")
	if bucket == "" || object == "" {
		t.Skip("TEST_STORAGE_BUCKET and TEST_STORAGE_OBJECT are not set")
	}

	ctx := context.Background()
	client, err := source.NewStorageClient(ctx, os.Getenv("TEST_STORAGE_CREDENTIALS"))
	gt.NoError(t, err)
	defer client.Close()

	rc, err := source.New(source.WithStorage(client)).Open(ctx, "gs://"+bucket+"/"+object)
	gt.NoError(t, err)
	gt.Number(t, len(readAll(t, rc))).Greater(0)
}
