package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

const bearerPrefix = "Bearer "

var accountIDPattern = regexp.MustCompile(`u=(\d+)`)

// StaticSource serves credentials taken from configuration.
type StaticSource struct {
	creds Credentials
}

// NewStaticSource builds a source from a bearer token, a browser cookie
// header, an audio room query id and an emoji pattern. Every argument may
// be empty.
func NewStaticSource(bearer, cookieHeader, roomQueryID, emojiPattern string) (*StaticSource, error) {
	creds := Credentials{
		Tokens:      parseCookieHeader(cookieHeader),
		RoomQueryID: roomQueryID,
	}
	creds.Tokens.Bearer = normalizeBearer(bearer)

	if emojiPattern != "" {
		re, err := regexp.Compile(emojiPattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile emoji pattern: %w", err)
		}
		creds.EmojiPattern = re
	}

	return &StaticSource{creds: creds}, nil
}

func (s *StaticSource) Credentials(ctx context.Context) (*Credentials, error) {
	creds := s.creds
	return &creds, nil
}

func normalizeBearer(token string) string {
	token = strings.TrimSpace(token)
	if token == "" || strings.HasPrefix(token, bearerPrefix) {
		return token
	}
	return bearerPrefix + token
}

// parseCookieHeader reads ct0, gt and twid from a Cookie header value.
// Malformed pairs are skipped.
func parseCookieHeader(header string) Tokens {
	var tokens Tokens
	if strings.TrimSpace(header) == "" {
		return tokens
	}

	for _, part := range strings.Split(header, ";") {
		cookies, err := http.ParseCookie(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		for _, c := range cookies {
			switch c.Name {
			case "ct0":
				tokens.CSRF = c.Value
			case "gt":
				tokens.Guest = c.Value
			case "twid":
				tokens.AccountID = accountID(c.Value)
			}
		}
	}

	return tokens
}

// accountID extracts the numeric id from a twid value such as "u%3D123".
func accountID(twid string) string {
	if decoded, err := url.QueryUnescape(twid); err == nil {
		twid = decoded
	}
	if m := accountIDPattern.FindStringSubmatch(twid); m != nil {
		return m[1]
	}
	return twid
}
