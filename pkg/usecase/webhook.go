package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/utils/async"
)

type webhookUseCase struct {
	processor interfaces.EventProcessor
	dispatch  func(ctx context.Context, handler func(ctx context.Context) error)
}

// WebhookOption configures the webhook use case
type WebhookOption func(*webhookUseCase)

// WithEventProcessor sets the processor that refreshes dictionaries for
// supported events. Without it events are only logged.
func WithEventProcessor(p interfaces.EventProcessor) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.processor = p
	}
}

// WithWebhookDispatcher replaces async.Dispatch, mainly for tests
func WithWebhookDispatcher(fn func(ctx context.Context, handler func(ctx context.Context) error)) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.dispatch = fn
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(opts ...WebhookOption) interfaces.WebhookUseCase {
	uc := &webhookUseCase{dispatch: async.Dispatch}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent logs the event and hands supported ones to the processor in
// the background so GitHub gets its response without waiting for a bundle
// download.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx).With("delivery_id", event.ID)

	logger.Info("Processing webhook event",
		"type", event.Type,
		"action", event.Action,
		"repository", event.Repository,
		"sender", event.Sender,
		"supported", event.IsSupportedEvent(),
	)

	if !event.IsSupportedEvent() {
		logger.Debug("Event does not affect dictionaries", "type", event.Type, "action", event.Action)
		return nil
	}
	if uc.processor == nil {
		return nil
	}

	eventType := string(event.Type)
	payload := event.Payload
	uc.dispatch(ctxlog.With(ctx, logger), func(ctx context.Context) error {
		return uc.processor.ProcessEvent(ctx, eventType, payload)
	})
	return nil
}
