package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/post-copy/app/ngavoid"
	"github.com/lysyi3m/post-copy/app/post"
	"github.com/lysyi3m/post-copy/app/render"
	"golang.org/x/text/language"
)

// CopyPostTask fetches one post, resolves its attachments and renders the
// text block into Result.
type CopyPostTask struct {
	Task
	client      APIClient
	policy      *ngavoid.Policy
	roomQueryID string
	lang        language.Tag

	Result string
}

func NewCopyPostTask(postID string, client APIClient, policy *ngavoid.Policy, roomQueryID string, lang language.Tag) *CopyPostTask {
	return &CopyPostTask{
		Task:        NewTask(TaskTypeCopyPost, postID),
		client:      client,
		policy:      policy,
		roomQueryID: roomQueryID,
		lang:        lang,
	}
}

func (t *CopyPostTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	payload, err := t.client.FetchPostDetail(ctx, t.PostID)
	if err != nil {
		return fmt.Errorf("failed to fetch post: %w", err)
	}

	p, err := post.NewParser(t.policy).Run(payload, t.PostID)
	if err != nil {
		return fmt.Errorf("failed to parse post: %w", err)
	}

	att, err := newAttachmentResolver(t.client, t.roomQueryID).Resolve(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to resolve attachments: %w", err)
	}
	p.Attach(att)

	t.Result = render.NewFormatter(t.policy, t.lang).Run(p)

	slog.Info("Task completed",
		"type", "CopyPost",
		"post", t.PostID,
		"duration", t.GetDuration(),
		"level", int(t.policy.Level()),
		"rooms", len(att.Rooms),
		"playlists", len(att.Playlists),
		"length", len(t.Result))

	return nil
}
