package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Addr            string
	JWTSecret       string `masq:"secret"`
	Watch           bool
	WatchDebounce   time.Duration
	ShutdownTimeout time.Duration
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("QUILL_ADDR"),
		},
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HS256 secret; when set /api/v1 requires a bearer token whose sub is the user",
			Destination: &c.JWTSecret,
			Sources:     cli.EnvVars("QUILL_JWT_SECRET"),
		},
		&cli.BoolFlag{
			Name:        "watch",
			Usage:       "Reload local dictionaries when their files change",
			Destination: &c.Watch,
			Sources:     cli.EnvVars("QUILL_WATCH"),
		},
		&cli.DurationFlag{
			Name:        "watch-debounce",
			Usage:       "Quiet period before a changed dictionary is reloaded",
			Value:       500 * time.Millisecond,
			Destination: &c.WatchDebounce,
			Sources:     cli.EnvVars("QUILL_WATCH_DEBOUNCE"),
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Time allowed for requests and pending word writes on shutdown",
			Value:       10 * time.Second,
			Destination: &c.ShutdownTimeout,
			Sources:     cli.EnvVars("QUILL_SHUTDOWN_TIMEOUT"),
		},
	}
}
