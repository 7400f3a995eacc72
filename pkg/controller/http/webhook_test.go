package http_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/quill/pkg/controller/http"
	"github.com/m-mizutani/quill/pkg/domain/model"
)

// MockWebhookUseCase records processed events
type MockWebhookUseCase struct {
	err    error
	events []*model.WebhookEvent
}

func (m *MockWebhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newWebhookRequest(t *testing.T, secret, eventType string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/hooks/github/app", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)
	req.Header.Set("X-GitHub-Delivery", "test-delivery")
	req.Header.Set("X-Hub-Signature-256", generateSignature(secret, body))
	return req
}

var releasePayload = map[string]any{
	"action": "released",
	"release": map[string]any{
		"id":               1,
		"tag_name":         "v1.0.0",
		"target_commitish": "main",
	},
	"repository": map[string]any{
		"name":      "dicts",
		"full_name": "acme/dicts",
		"owner":     map[string]any{"login": "acme"},
	},
	"sender": map[string]any{"login": "octocat"},
}

func TestWebhookHandler_SignatureVerification(t *testing.T) {
	secret := "test-secret"
	payload := []byte(`{"action":"released","repository":{"full_name":"acme/dicts"}}`)

	tests := []struct {
		name           string
		handlerSecret  string
		signature      string
		wantStatusCode int
	}{
		{
			name:           "valid signature",
			handlerSecret:  secret,
			signature:      generateSignature(secret, payload),
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid signature",
			handlerSecret:  secret,
			signature:      "sha256=invalid",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "missing signature",
			handlerSecret:  secret,
			signature:      "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "no secret configured",
			handlerSecret:  "",
			signature:      generateSignature("", payload),
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &MockWebhookUseCase{}
			handler := controller.NewWebhookHandler(tt.handlerSecret, uc)

			req := httptest.NewRequest(http.MethodPost, "/hooks/github/app", bytes.NewReader(payload))
			req.Header.Set("X-GitHub-Event", "release")
			req.Header.Set("X-GitHub-Delivery", "test-delivery")
			req.Header.Set("X-Hub-Signature-256", tt.signature)

			w := httptest.NewRecorder()
			handler.Handle(w, req)
			gt.Equal(t, w.Code, tt.wantStatusCode)

			if tt.wantStatusCode != http.StatusOK {
				gt.A(t, uc.events).Length(0)
			}
		})
	}
}

func TestWebhookHandler_EventParsing(t *testing.T) {
	secret := "test-secret"

	t.Run("release event", func(t *testing.T) {
		uc := &MockWebhookUseCase{}
		handler := controller.NewWebhookHandler(secret, uc)

		w := httptest.NewRecorder()
		handler.Handle(w, newWebhookRequest(t, secret, "release", releasePayload))
		gt.Equal(t, w.Code, http.StatusOK)

		var response map[string]string
		gt.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		gt.Equal(t, response["status"], "success")

		gt.A(t, uc.events).Length(1)
		ev := uc.events[0]
		gt.Equal(t, ev.ID, "test-delivery")
		gt.Equal(t, ev.Type, model.EventTypeRelease)
		gt.Equal(t, ev.Action, "released")
		gt.Equal(t, ev.Repository, "acme/dicts")
		gt.Equal(t, ev.Sender, "octocat")

		release, ok := ev.Payload.(*github.ReleaseEvent)
		gt.True(t, ok)
		gt.Equal(t, release.GetRelease().GetTagName(), "v1.0.0")
	})

	t.Run("push event", func(t *testing.T) {
		uc := &MockWebhookUseCase{}
		handler := controller.NewWebhookHandler(secret, uc)

		w := httptest.NewRecorder()
		handler.Handle(w, newWebhookRequest(t, secret, "push", map[string]any{
			"ref":        "refs/heads/main",
			"after":      "0123456789abcdef0123456789abcdef01234567",
			"repository": map[string]any{"full_name": "acme/dicts", "name": "dicts"},
			"sender":     map[string]any{"login": "octocat"},
		}))
		gt.Equal(t, w.Code, http.StatusOK)
		gt.A(t, uc.events).Length(1)
		gt.Equal(t, uc.events[0].Type, model.EventTypePush)
		gt.Equal(t, uc.events[0].Repository, "acme/dicts")
	})

	t.Run("ping is answered without processing", func(t *testing.T) {
		uc := &MockWebhookUseCase{}
		handler := controller.NewWebhookHandler(secret, uc)

		w := httptest.NewRecorder()
		handler.Handle(w, newWebhookRequest(t, secret, "ping", map[string]any{
			"zen":     "Keep it logically awesome.",
			"hook_id": 42,
		}))
		gt.Equal(t, w.Code, http.StatusOK)
		gt.A(t, uc.events).Length(0)
	})

	t.Run("other events are passed as unknown", func(t *testing.T) {
		uc := &MockWebhookUseCase{}
		handler := controller.NewWebhookHandler(secret, uc)

		w := httptest.NewRecorder()
		handler.Handle(w, newWebhookRequest(t, secret, "issues", map[string]any{"action": "opened"}))
		gt.Equal(t, w.Code, http.StatusOK)
		gt.A(t, uc.events).Length(1)
		gt.Equal(t, uc.events[0].Type, model.EventTypeUnknown)
	})

	t.Run("unknown event header", func(t *testing.T) {
		uc := &MockWebhookUseCase{}
		handler := controller.NewWebhookHandler(secret, uc)

		w := httptest.NewRecorder()
		handler.Handle(w, newWebhookRequest(t, secret, "no_such_event", map[string]any{}))
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})

	t.Run("use case failure", func(t *testing.T) {
		uc := &MockWebhookUseCase{err: errors.New("boom")}
		handler := controller.NewWebhookHandler(secret, uc)

		w := httptest.NewRecorder()
		handler.Handle(w, newWebhookRequest(t, secret, "release", releasePayload))
		gt.Equal(t, w.Code, http.StatusInternalServerError)
	})
}

func TestWebhookHandler_Integration(t *testing.T) {
	ctx := context.Background()
	secret := "integration-test-secret"
	uc := &MockWebhookUseCase{}

	server, err := controller.NewServer(ctx, &MockSpellUseCase{}, uc,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret(secret),
	)
	gt.NoError(t, err)

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	body, err := json.Marshal(releasePayload)
	gt.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/hooks/github/app", bytes.NewReader(body))
	gt.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", "release")
	req.Header.Set("X-GitHub-Delivery", "integration-test")
	req.Header.Set("X-Hub-Signature-256", generateSignature(secret, body))

	resp, err := http.DefaultClient.Do(req)
	gt.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	gt.Equal(t, resp.StatusCode, http.StatusOK)
	gt.A(t, uc.events).Length(1)
}
