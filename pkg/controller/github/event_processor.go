package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/quill/pkg/domain/interfaces"
	"github.com/m-mizutani/quill/pkg/domain/model"
	"github.com/m-mizutani/quill/pkg/domain/types"
)

const zeroSHA = "0000000000000000000000000000000000000000"

// EventProcessor turns GitHub release and push events into dictionary
// refreshes
type EventProcessor struct {
	refresher interfaces.SourceRefresher
}

var _ interfaces.EventProcessor = (*EventProcessor)(nil)

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(refresher interfaces.SourceRefresher) *EventProcessor {
	return &EventProcessor{refresher: refresher}
}

// ProcessEvent processes a GitHub webhook event
func (p *EventProcessor) ProcessEvent(ctx context.Context, eventType string, payload any) error {
	var info *model.SourceInfo
	var err error

	switch eventType {
	case string(model.EventTypeRelease):
		info, err = p.releaseSource(ctx, payload)
	case string(model.EventTypePush):
		info, err = p.pushSource(ctx, payload)
	default:
		ctxlog.From(ctx).Info("Ignoring unsupported event type", "event_type", eventType)
		return nil
	}
	if err != nil || info == nil {
		return err
	}

	logger := ctxlog.From(ctx).With(
		"repository", info.FullName(),
		"event_type", info.EventType,
		"ref", info.Ref,
	)
	logger.Info("Refreshing dictionaries from repository", "branch", info.Branch, "actor", info.Actor)

	reloaded, err := p.refresher.Refresh(ctx, info)
	if len(reloaded) > 0 {
		logger.Info("Dictionaries refreshed", "dictionaries", reloaded)
	} else if err == nil {
		logger.Info("No dictionary uses this repository")
	}
	if err != nil {
		return goerr.Wrap(err, "failed to refresh dictionaries",
			goerr.V("repository", info.FullName()), goerr.V("ref", info.Ref))
	}
	return nil
}

func (p *EventProcessor) releaseSource(ctx context.Context, payload any) (*model.SourceInfo, error) {
	logger := ctxlog.From(ctx)

	event, ok := payload.(*github.ReleaseEvent)
	if !ok {
		return nil, goerr.New("invalid release event payload", goerr.T(types.ErrTagInvalidInput))
	}

	switch event.GetAction() {
	case "released", "published":
	default:
		logger.Info("Ignoring release event", "action", event.GetAction())
		return nil, nil
	}
	if event.GetRelease().GetDraft() || event.GetRelease().GetPrerelease() {
		logger.Info("Ignoring draft or pre-release", "tag", event.GetRelease().GetTagName())
		return nil, nil
	}

	info := &model.SourceInfo{
		Owner:     event.GetRepo().GetOwner().GetLogin(),
		Repo:      event.GetRepo().GetName(),
		CommitSHA: event.GetRelease().GetTargetCommitish(),
		EventType: string(model.EventTypeRelease),
		Ref:       event.GetRelease().GetTagName(),
		Actor:     event.GetSender().GetLogin(),
	}
	if info.Owner == "" || info.Repo == "" || info.Ref == "" {
		return nil, goerr.New("missing required fields in release event",
			goerr.V("owner", info.Owner),
			goerr.V("repo", info.Repo),
			goerr.V("tag", info.Ref),
			goerr.T(types.ErrTagInvalidInput))
	}
	return info, nil
}

func (p *EventProcessor) pushSource(ctx context.Context, payload any) (*model.SourceInfo, error) {
	logger := ctxlog.From(ctx)

	event, ok := payload.(*github.PushEvent)
	if !ok {
		return nil, goerr.New("invalid push event payload", goerr.T(types.ErrTagInvalidInput))
	}

	branch, isBranch := strings.CutPrefix(event.GetRef(), "refs/heads/")
	if !isBranch {
		logger.Info("Ignoring push to non-branch ref", "ref", event.GetRef())
		return nil, nil
	}
	if event.GetDeleted() || event.GetAfter() == "" || event.GetAfter() == zeroSHA {
		logger.Info("Ignoring branch deletion", "branch", branch)
		return nil, nil
	}

	// Push payloads carry the owner as "name" for organizations
	owner := event.GetRepo().GetOwner().GetLogin()
	if owner == "" {
		owner = event.GetRepo().GetOwner().GetName()
	}

	info := &model.SourceInfo{
		Owner:     owner,
		Repo:      event.GetRepo().GetName(),
		CommitSHA: event.GetAfter(),
		EventType: string(model.EventTypePush),
		Ref:       event.GetAfter(),
		Branch:    branch,
		Actor:     event.GetSender().GetLogin(),
	}
	if info.Owner == "" || info.Repo == "" {
		return nil, goerr.New("missing repository in push event",
			goerr.V("owner", info.Owner),
			goerr.V("repo", info.Repo),
			goerr.T(types.ErrTagInvalidInput))
	}
	return info, nil
}
