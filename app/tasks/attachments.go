package tasks

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lysyi3m/post-copy/app/post"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const maxConcurrentFetches = 4

// attachmentResolver fetches the audio rooms and VMAP playlists a post
// tree refers to. Rooms are cached by id for the life of the resolver.
type attachmentResolver struct {
	client      APIClient
	roomQueryID string

	group singleflight.Group
	mu    sync.Mutex
	rooms map[string]*post.AudioRoom
}

func newAttachmentResolver(client APIClient, roomQueryID string) *attachmentResolver {
	return &attachmentResolver{
		client:      client,
		roomQueryID: roomQueryID,
		rooms:       make(map[string]*post.AudioRoom),
	}
}

// Resolve runs every sub-fetch concurrently and waits for all of them.
// Individual failures leave the attachment out; only cancellation is
// returned as an error.
func (r *attachmentResolver) Resolve(ctx context.Context, p *post.Post) (post.Attachments, error) {
	att := post.Attachments{
		Rooms:     make(map[string]*post.AudioRoom),
		Playlists: make(map[string][]string),
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)

	roomIDs := p.RoomIDs()
	if r.roomQueryID == "" && len(roomIDs) > 0 {
		slog.Debug("Room query id not available, keeping placeholders", "post", p.ID, "rooms", len(roomIDs))
		roomIDs = nil
	}

	for _, id := range roomIDs {
		g.Go(func() error {
			if room := r.room(ctx, id); room != nil {
				mu.Lock()
				att.Rooms[id] = room
				mu.Unlock()
			}
			return nil
		})
	}

	for _, u := range p.VmapURLs() {
		g.Go(func() error {
			urls := r.client.FetchVmapPlaylist(ctx, u)
			mu.Lock()
			att.Playlists[u] = urls
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return att, err
	}
	return att, ctx.Err()
}

func (r *attachmentResolver) room(ctx context.Context, id string) *post.AudioRoom {
	r.mu.Lock()
	room, ok := r.rooms[id]
	r.mu.Unlock()
	if ok {
		return room
	}

	v, _, _ := r.group.Do(id, func() (any, error) {
		room := r.fetchRoom(ctx, id)

		r.mu.Lock()
		r.rooms[id] = room
		r.mu.Unlock()

		return room, nil
	})
	return v.(*post.AudioRoom)
}

func (r *attachmentResolver) fetchRoom(ctx context.Context, id string) *post.AudioRoom {
	payload, err := r.client.FetchAudioRoom(ctx, id, r.roomQueryID)
	if err != nil {
		slog.Warn("Failed to fetch audio room", "room", id, "error", err)
		return nil
	}

	room, err := post.ParseAudioRoom(payload, id)
	if err != nil {
		slog.Warn("Failed to parse audio room", "room", id, "error", err)
		return nil
	}

	return room
}
