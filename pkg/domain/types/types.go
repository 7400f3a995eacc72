package types

import "github.com/m-mizutani/goerr/v2"

// Version is set by -ldflags at release build time
var Version = "dev"

// AnonymousUser owns personal words when requests are not authenticated
const AnonymousUser = "anonymous"

// Error tags classify failures for the HTTP layer
var (
	ErrTagNotFound     = goerr.NewTag("not_found")
	ErrTagInvalidInput = goerr.NewTag("invalid_input")
	ErrTagUnauthorized = goerr.NewTag("unauthorized")
	ErrTagIntegrity    = goerr.NewTag("integrity")
)
