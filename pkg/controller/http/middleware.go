package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/domain/types"
	"github.com/m-mizutani/quill/pkg/utils/metrics"
)

type userCtxKey struct{}

// userFromContext returns the authenticated user or types.AnonymousUser
func userFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(userCtxKey{}).(string); ok && user != "" {
		return user
	}
	return types.AnonymousUser
}

// LoggingMiddleware returns a middleware that logs HTTP requests. Handlers
// get a logger carrying the request ID.
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// MetricsMiddleware counts requests by route pattern
func MetricsMiddleware(recorder *metrics.Recorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			recorder.ObserveRequest(route, r.Method, status)
		})
	}
}

// AuthMiddleware requires an HS256 bearer token and stores its subject as
// the request user
func AuthMiddleware(secret []byte) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := jwt.ParseRequest(r,
				jwt.WithKey(jwa.HS256, secret),
				jwt.WithValidate(true),
				jwt.WithAcceptableSkew(30*time.Second),
			)
			if err != nil {
				handleError(w, r, goerr.Wrap(err, "invalid bearer token", goerr.T(types.ErrTagUnauthorized)))
				return
			}
			if token.Subject() == "" {
				handleError(w, r, goerr.New("token has no subject", goerr.T(types.ErrTagUnauthorized)))
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey{}, token.Subject())
			ctx = ctxlog.With(ctx, ctxlog.From(ctx).With("user", token.Subject()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// statusOf maps error tags to HTTP status codes
func statusOf(err error) int {
	switch {
	case goerr.HasTag(err, types.ErrTagNotFound):
		return http.StatusNotFound
	case goerr.HasTag(err, types.ErrTagInvalidInput):
		return http.StatusBadRequest
	case goerr.HasTag(err, types.ErrTagUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs err, reports server errors to sentry and writes the
// response
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	logger := ctxlog.From(r.Context())

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "error", err, "status", status)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
		// Internal details stay in the log
		writeError(w, goerr.New(http.StatusText(status)), status)
		return
	}

	logger.Info("Request rejected", "error", err, "status", status)
	writeError(w, err, status)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
	}); err != nil {
		ctxlog.From(context.Background()).Error("Failed to encode error response", "error", err)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}
