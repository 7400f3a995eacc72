package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/infra/github"
)

// GitHub holds GitHub configuration. Dictionary bundles are downloaded with
// either GitHub App credentials or a token.
type GitHub struct {
	WebhookSecret  string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKey     string `masq:"secret"`
	Token          string `masq:"secret"`
	BaseURL        string
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret; the webhook endpoint refuses deliveries without it",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("QUILL_GITHUB_WEBHOOK_SECRET"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("QUILL_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("QUILL_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM)",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("QUILL_GITHUB_PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub token used when no App is configured",
			Destination: &c.Token,
			Sources:     cli.EnvVars("QUILL_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "github-base-url",
			Usage:       "GitHub API base URL for GitHub Enterprise",
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("QUILL_GITHUB_BASE_URL"),
		},
	}
}

// Client returns a GitHub client, or nil when no credentials are set. App
// credentials win over a token.
func (c *GitHub) Client() (interfaces.GitHubClient, error) {
	var opts []github.Option
	if c.BaseURL != "" {
		opts = append(opts, github.WithBaseURL(c.BaseURL))
	}

	switch {
	case c.AppID != 0 || c.InstallationID != 0 || c.PrivateKey != "":
		if c.AppID == 0 || c.InstallationID == 0 || c.PrivateKey == "" {
			return nil, goerr.New("github-app-id, github-installation-id and github-private-key must be set together",
				goerr.V("app_id", c.AppID), goerr.V("installation_id", c.InstallationID))
		}
		return github.NewClientFromConfig(c.AppID, c.InstallationID, c.PrivateKey, opts...)
	case c.Token != "":
		return github.NewTokenClient(c.Token, opts...)
	default:
		return nil, nil
	}
}
