package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/quill/pkg/domain/types"
)

// Sentry holds error reporting configuration
type Sentry struct {
	DSN         string `masq:"secret"`
	Environment string
}

// Flags returns CLI flags for Sentry configuration
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN; server errors are reported when set",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("QUILL_SENTRY_DSN", "SENTRY_DSN"),
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Value:       "production",
			Destination: &c.Environment,
			Sources:     cli.EnvVars("QUILL_SENTRY_ENV"),
		},
	}
}

// Configure initializes the global sentry client. It reports false and
// does nothing without a DSN. The returned function flushes pending events.
func (c *Sentry) Configure() (bool, func(), error) {
	if c.DSN == "" {
		return false, func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         c.DSN,
		Environment: c.Environment,
		Release:     "quill@" + types.Version,
	}); err != nil {
		return false, nil, goerr.Wrap(err, "failed to initialize sentry")
	}
	return true, func() { sentry.Flush(2 * time.Second) }, nil
}
