package interfaces

import (
	"context"
	"io"
)

// GitHubClient defines operations for interacting with GitHub API
type GitHubClient interface {
	// DownloadZipball downloads the source code zipball for a specific ref
	DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error)
}

// SourceReader opens bundle URLs (file, https, gs, github)
type SourceReader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}
