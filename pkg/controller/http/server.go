package http

import (
	"context"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/utils/metrics"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookSecret string
	jwtSecret     []byte
	metrics       *metrics.Recorder
	sentry        bool
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithJWTSecret requires HS256 bearer tokens signed with secret on /api/v1
func WithJWTSecret(secret []byte) Option {
	return func(c *config) {
		c.jwtSecret = secret
	}
}

// WithMetrics counts requests and serves /metrics from recorder
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(c *config) {
		c.metrics = recorder
	}
}

// WithSentry attaches a sentry hub to each request. sentry.Init must have
// been called.
func WithSentry() Option {
	return func(c *config) {
		c.sentry = true
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server. webhookUC may be nil to disable the
// GitHub webhook endpoint.
func NewServer(
	ctx context.Context,
	spellUC interfaces.SpellUseCase,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if spellUC == nil {
		return nil, goerr.New("spell use case is required")
	}

	validator, err := loadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	if cfg.sentry {
		router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	if cfg.metrics != nil {
		router.Use(MetricsMiddleware(cfg.metrics))
		router.Method(http.MethodGet, "/metrics", cfg.metrics.Handler())
	}

	router.Get("/health", healthHandler(spellUC))
	router.Get("/openapi.yaml", handleOpenAPI)

	api := &apiHandler{spellUC: spellUC}
	router.Route("/api/v1", func(r chi.Router) {
		if len(cfg.jwtSecret) > 0 {
			r.Use(AuthMiddleware(cfg.jwtSecret))
		}
		r.Use(ValidationMiddleware(validator))
		api.routes(r)
	})

	if webhookUC != nil {
		webhookHandler := NewWebhookHandler(cfg.webhookSecret, webhookUC)
		router.Post("/hooks/github/app", webhookHandler.Handle)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
