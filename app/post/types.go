package post

import "time"

type ConversationPolicy int

const (
	ConversationOpen ConversationPolicy = iota
	ConversationCommunity
	ConversationInvitation
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
	MediaGIF   MediaKind = "animated_gif"
)

type RoomState string

const (
	RoomNotStarted RoomState = "NotStarted"
	RoomRunning    RoomState = "Running"
	RoomEnded      RoomState = "Ended"
	RoomTimedOut   RoomState = "TimedOut"
)

// Ended reports whether the room is over, either normally or by timeout.
func (s RoomState) Ended() bool {
	return s == RoomEnded || s == RoomTimedOut
}

type Author struct {
	ID     string
	Name   string
	Handle string
}

// Media is a still image attached to a post. Videos and GIFs are never
// stored here; see Post.VideoURLs.
type Media struct {
	Kind    MediaKind
	URL     string
	AltText string
}

// Link is a supplementary destination taken from a call-to-action or a
// rich card.
type Link struct {
	URL   string
	Title string
}

type PollChoice struct {
	Label string
	Votes int
}

type Poll struct {
	Choices     []PollChoice
	EndTime     time.Time
	LastUpdated time.Time
	IsFinal     bool
}

// TotalVotes sums the votes of every choice.
func (p *Poll) TotalVotes() int {
	total := 0
	for _, c := range p.Choices {
		total += c.Votes
	}
	return total
}

type Participant struct {
	DisplayName string
	Handle      string
}

type AudioRoom struct {
	ID             string
	Title          string
	State          RoomState
	StartedAt      time.Time
	ScheduledStart time.Time
	UpdatedAt      time.Time
	IsRecorded     bool
	Hosts          []Participant
	Speakers       []Participant
}

type Post struct {
	ID                 string
	Text               string
	CreatedAt          time.Time
	Author             Author
	ReplyTargets       []string
	ConversationPolicy ConversationPolicy
	Media              []Media
	// VideoURLs holds the chosen mp4 URL of each video, optionally followed
	// by a space and its thumbnail URL.
	VideoURLs      []string
	AdditionalLink *Link
	Poll           *Poll
	AudioRoom      *AudioRoom
	// VmapURL is a playlist that still has to be resolved into a video URL.
	VmapURL    string
	QuotedPost *Post
}

// Walk calls fn for the post and then for every quoted descendant.
func (p *Post) Walk(fn func(*Post)) {
	for cur := p; cur != nil; cur = cur.QuotedPost {
		fn(cur)
	}
}

// RoomIDs lists the distinct audio room ids referenced by the post tree in
// encounter order.
func (p *Post) RoomIDs() []string {
	var ids []string
	seen := make(map[string]bool)
	p.Walk(func(cur *Post) {
		if cur.AudioRoom == nil || cur.AudioRoom.ID == "" || seen[cur.AudioRoom.ID] {
			return
		}
		seen[cur.AudioRoom.ID] = true
		ids = append(ids, cur.AudioRoom.ID)
	})
	return ids
}

// VmapURLs lists the distinct playlists referenced by the post tree.
func (p *Post) VmapURLs() []string {
	var urls []string
	seen := make(map[string]bool)
	p.Walk(func(cur *Post) {
		if cur.VmapURL == "" || seen[cur.VmapURL] {
			return
		}
		seen[cur.VmapURL] = true
		urls = append(urls, cur.VmapURL)
	})
	return urls
}
