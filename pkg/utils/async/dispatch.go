// Package async runs background work such as personal word writes and
// dictionary refreshes outside of the request that triggered it.
package async

import (
	"context"
	"runtime/debug"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

var pending sync.WaitGroup

// Dispatch runs handler in a new goroutine. The handler context keeps the
// logger and sentry hub of ctx but is not cancelled with it. Panics and
// returned errors are logged and reported to sentry when a hub is set.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	pending.Add(1)
	go func() {
		defer pending.Done()
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
				if hub := sentry.GetHubFromContext(newCtx); hub != nil {
					hub.RecoverWithContext(newCtx, r)
				}
			}
		}()

		if err := handler(newCtx); err != nil {
			ctxlog.From(newCtx).Error("error in async handler", "error", err)
			if hub := sentry.GetHubFromContext(newCtx); hub != nil {
				hub.CaptureException(err)
			}
		}
	}()
}

// Wait blocks until every dispatched handler returns or ctx is done. serve
// calls it on shutdown so queued word writes reach the repository.
func Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "async handlers still running")
	}
}

func newBackgroundContext(ctx context.Context) context.Context {
	newCtx := ctxlog.With(context.Background(), ctxlog.From(ctx))
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		newCtx = sentry.SetHubOnContext(newCtx, hub.Clone())
	}
	return newCtx
}
