package github

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/quill/pkg/domain/interfaces"
)

// maxArchiveSize bounds a downloaded zipball
const maxArchiveSize = 256 << 20

type client struct {
	githubClient *github.Client
}

// Option configures the GitHub client
type Option func(*github.Client) error

// WithBaseURL points the client at a GitHub Enterprise or test server
func WithBaseURL(baseURL string) Option {
	return func(c *github.Client) error {
		u, err := url.Parse(baseURL)
		if err != nil {
			return goerr.Wrap(err, "invalid GitHub base URL", goerr.V("url", baseURL))
		}
		if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
			u.Path += "/"
		}
		c.BaseURL = u
		return nil
	}
}

// NewClient creates a new GitHub client with App authentication
func NewClient(appID, installationID int64, privateKey []byte, opts ...Option) (interfaces.GitHubClient, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.V("app_id", appID),
			goerr.V("installation_id", installationID),
		)
	}

	return newClient(github.NewClient(&http.Client{Transport: itr}), opts...)
}

// NewClientFromConfig is NewClient with the private key given as PEM text
func NewClientFromConfig(appID, installationID int64, privateKey string, opts ...Option) (interfaces.GitHubClient, error) {
	return NewClient(appID, installationID, []byte(privateKey), opts...)
}

// NewTokenClient creates a client authenticated by a personal access token.
// An empty token gives anonymous access to public repositories.
func NewTokenClient(token string, opts ...Option) (interfaces.GitHubClient, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return newClient(gh, opts...)
}

func newClient(gh *github.Client, opts ...Option) (*client, error) {
	for _, opt := range opts {
		if err := opt(gh); err != nil {
			return nil, err
		}
	}
	return &client{githubClient: gh}, nil
}

// DownloadZipball downloads the source code zipball for a specific ref
func (c *client) DownloadZipball(ctx context.Context, owner, repo, ref string) ([]byte, error) {
	vars := []goerr.Option{
		goerr.V("owner", owner),
		goerr.V("repo", repo),
		goerr.V("ref", ref),
	}

	link, _, err := c.githubClient.Repositories.GetArchiveLink(ctx, owner, repo, github.Zipball, &github.RepositoryContentGetOptions{
		Ref: ref,
	}, 3)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get zipball download URL", vars...)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request", vars...)
	}

	// Same transport so private repositories stay authenticated
	httpClient := &http.Client{Transport: c.githubClient.Client().Transport}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download zipball", vars...)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected status code for zipball",
			append(vars, goerr.V("status", resp.StatusCode))...)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read zipball", vars...)
	}
	if len(data) > maxArchiveSize {
		return nil, goerr.New("zipball is too large", append(vars, goerr.V("limit", maxArchiveSize))...)
	}

	return data, nil
}
