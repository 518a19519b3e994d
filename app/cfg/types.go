package cfg

import "time"

type Cfg struct {
	// Rendering
	Level              int
	RemoveEmoji        bool
	BlankLineThreshold int
	RulesFile          string
	EmojiPattern       string

	// Credentials
	BearerToken  string
	Cookie       string
	RoomQueryID  string
	ScrapeTokens bool

	// API client
	Domain    string
	Language  string
	Timeout   time.Duration
	UserAgent string

	// One-shot mode
	Post string

	// Server mode
	Port         string
	APIAccessKey string
	WorkerCount  int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

// OneShot reports whether a single post should be rendered to stdout
// instead of starting the server.
func (c *Cfg) OneShot() bool {
	return c.Post != ""
}
