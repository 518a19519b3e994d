package auth

import (
	"cmp"
	"context"
	"regexp"
)

// Tokens are the request credentials of one client session.
type Tokens struct {
	Bearer    string // full header value, "Bearer AAAA..."
	CSRF      string // ct0 cookie
	Guest     string // gt cookie or activated guest token
	AccountID string // numeric id from the twid cookie
}

// Authenticated reports whether requests can run as a logged-in session.
func (t Tokens) Authenticated() bool {
	return t.CSRF != ""
}

type Credentials struct {
	Tokens      Tokens
	RoomQueryID string
	// EmojiPattern is nil when no source provided one.
	EmojiPattern *regexp.Regexp
}

// Source yields credentials for a copy operation.
type Source interface {
	Credentials(ctx context.Context) (*Credentials, error)
}

// merge fills every empty field of c from other.
func (c *Credentials) merge(other *Credentials) {
	c.Tokens.Bearer = cmp.Or(c.Tokens.Bearer, other.Tokens.Bearer)
	c.Tokens.CSRF = cmp.Or(c.Tokens.CSRF, other.Tokens.CSRF)
	c.Tokens.Guest = cmp.Or(c.Tokens.Guest, other.Tokens.Guest)
	c.Tokens.AccountID = cmp.Or(c.Tokens.AccountID, other.Tokens.AccountID)
	c.RoomQueryID = cmp.Or(c.RoomQueryID, other.RoomQueryID)
	if c.EmojiPattern == nil {
		c.EmojiPattern = other.EmojiPattern
	}
}
