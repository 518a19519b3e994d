package xapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

const invalidGuestTokenCode = 239

type activationResponse struct {
	GuestToken string `json:"guest_token"`
}

type errorPayload struct {
	Errors []struct {
		Code    json.Number `json:"code"`
		Message string      `json:"message"`
	} `json:"errors"`
}

func (c *Client) ensureGuestToken(ctx context.Context) (string, error) {
	if token := c.guestToken(); token != "" {
		return token, nil
	}

	token, err := c.activate(ctx)
	if err != nil {
		return "", err
	}
	c.setGuestToken(token)
	return token, nil
}

// refreshGuestToken drops the current guest token and activates a new
// one. It never runs for authenticated sessions.
func (c *Client) refreshGuestToken(ctx context.Context) bool {
	if c.authenticated() {
		return false
	}

	c.setGuestToken("")
	token, err := c.activate(ctx)
	if err != nil {
		slog.Warn("Guest token refresh failed", "error", err)
		return false
	}
	c.setGuestToken(token)
	return true
}

// activate requests a guest token. Concurrent callers share one request.
func (c *Client) activate(ctx context.Context) (string, error) {
	v, err, _ := c.group.Do("activate", func() (any, error) {
		data, err := c.do(ctx, c.apiBase+"/1.1/guest/activate.json", request{
			method: "POST",
			body:   []byte("{}"),
		})
		if err != nil {
			return "", fmt.Errorf("failed to activate guest session: %w", err)
		}

		var resp activationResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return "", fmt.Errorf("failed to decode activation response: %w", err)
		}
		if resp.GuestToken == "" {
			return "", fmt.Errorf("guest token missing in activation response")
		}

		slog.Debug("Guest session activated")
		return resp.GuestToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// invalidGuestToken detects the error body returned for an expired guest
// token.
func invalidGuestToken(data []byte) bool {
	var payload errorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return false
	}

	for _, e := range payload.Errors {
		if code, err := e.Code.Int64(); err == nil && code == invalidGuestTokenCode {
			return true
		}
		if strings.Contains(strings.ToLower(e.Message), "bad guest token") {
			return true
		}
	}
	return false
}
