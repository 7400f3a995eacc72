package github_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	githubcontroller "github.com/m-mizutani/quill/pkg/controller/github"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

// MockSourceRefresher is a mock implementation of SourceRefresher
type MockSourceRefresher struct {
	refreshFunc  func(ctx context.Context, info *model.SourceInfo) ([]string, error)
	refreshCalls []*model.SourceInfo
}

func (m *MockSourceRefresher) Refresh(ctx context.Context, info *model.SourceInfo) ([]string, error) {
	m.refreshCalls = append(m.refreshCalls, info)
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, info)
	}
	return []string{"en_US"}, nil
}

func releaseEvent(action, tag string) *github.ReleaseEvent {
	return &github.ReleaseEvent{
		Action: github.Ptr(action),
		Repo: &github.Repository{
			Owner: &github.User{Login: github.Ptr("acme")},
			Name:  github.Ptr("dicts"),
		},
		Release: &github.RepositoryRelease{
			TagName:         github.Ptr(tag),
			TargetCommitish: github.Ptr("abc123"),
		},
		Sender: &github.User{Login: github.Ptr("octocat")},
	}
}

func pushEvent(ref, after string) *github.PushEvent {
	return &github.PushEvent{
		Ref:   github.Ptr(ref),
		After: github.Ptr(after),
		Repo: &github.PushEventRepository{
			Owner: &github.User{Name: github.Ptr("acme")},
			Name:  github.Ptr("dicts"),
		},
		Sender: &github.User{Login: github.Ptr("octocat")},
	}
}

func TestEventProcessor_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("released tag refreshes dictionaries", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)

		gt.NoError(t, p.ProcessEvent(ctx, "release", releaseEvent("released", "v1.2.0")))
		gt.A(t, refresher.refreshCalls).Length(1)

		info := refresher.refreshCalls[0]
		gt.Equal(t, info.FullName(), "acme/dicts")
		gt.Equal(t, info.Ref, "v1.2.0")
		gt.Equal(t, info.CommitSHA, "abc123")
		gt.Equal(t, info.EventType, "release")
		gt.Equal(t, info.Branch, "")
		gt.Equal(t, info.Actor, "octocat")
	})

	t.Run("published is accepted", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)
		gt.NoError(t, p.ProcessEvent(ctx, "release", releaseEvent("published", "v1.2.0")))
		gt.A(t, refresher.refreshCalls).Length(1)
	})

	t.Run("other actions are ignored", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)
		gt.NoError(t, p.ProcessEvent(ctx, "release", releaseEvent("created", "v1.2.0")))
		gt.A(t, refresher.refreshCalls).Length(0)
	})

	t.Run("pre-release is ignored", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)
		ev := releaseEvent("published", "v2.0.0-rc1")
		ev.Release.Prerelease = github.Ptr(true)
		gt.NoError(t, p.ProcessEvent(ctx, "release", ev))
		gt.A(t, refresher.refreshCalls).Length(0)
	})

	t.Run("missing tag", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)
		err := p.ProcessEvent(ctx, "release", releaseEvent("released", ""))
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
		gt.A(t, refresher.refreshCalls).Length(0)
	})

	t.Run("wrong payload type", func(t *testing.T) {
		p := githubcontroller.NewEventProcessor(&MockSourceRefresher{})
		err := p.ProcessEvent(ctx, "release", &github.PushEvent{})
		gt.True(t, goerr.HasTag(err, types.ErrTagInvalidInput))
	})
}

func TestEventProcessor_Push(t *testing.T) {
	ctx := context.Background()
	const after = "0123456789abcdef0123456789abcdef01234567"

	t.Run("branch push refreshes at the pushed commit", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)

		gt.NoError(t, p.ProcessEvent(ctx, "push", pushEvent("refs/heads/main", after)))
		gt.A(t, refresher.refreshCalls).Length(1)

		info := refresher.refreshCalls[0]
		gt.Equal(t, info.FullName(), "acme/dicts")
		gt.Equal(t, info.Branch, "main")
		gt.Equal(t, info.Ref, after)
		gt.Equal(t, info.EventType, "push")
	})

	t.Run("tag push is ignored", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)
		gt.NoError(t, p.ProcessEvent(ctx, "push", pushEvent("refs/tags/v1.0.0", after)))
		gt.A(t, refresher.refreshCalls).Length(0)
	})

	t.Run("branch deletion is ignored", func(t *testing.T) {
		refresher := &MockSourceRefresher{}
		p := githubcontroller.NewEventProcessor(refresher)
		gt.NoError(t, p.ProcessEvent(ctx, "push", pushEvent("refs/heads/main", "0000000000000000000000000000000000000000")))
		gt.A(t, refresher.refreshCalls).Length(0)
	})

	t.Run("refresh failure is returned", func(t *testing.T) {
		refresher := &MockSourceRefresher{
			refreshFunc: func(ctx context.Context, info *model.SourceInfo) ([]string, error) {
				return nil, errors.New("digest mismatch")
			},
		}
		p := githubcontroller.NewEventProcessor(refresher)
		gt.Error(t, p.ProcessEvent(ctx, "push", pushEvent("refs/heads/main", after)))
	})
}

func TestEventProcessor_UnsupportedEvent(t *testing.T) {
	refresher := &MockSourceRefresher{}
	p := githubcontroller.NewEventProcessor(refresher)
	gt.NoError(t, p.ProcessEvent(context.Background(), "issues", &github.IssuesEvent{}))
	gt.A(t, refresher.refreshCalls).Length(0)
}
