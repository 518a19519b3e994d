package auth

import (
	"context"
	"log/slog"
)

// Chain asks each source in order. Earlier non-empty values win and a
// failing source is skipped.
type Chain []Source

func (c Chain) Credentials(ctx context.Context) (*Credentials, error) {
	creds := &Credentials{}
	for _, src := range c {
		next, err := src.Credentials(ctx)
		if err != nil {
			slog.Warn("Credential source failed", "error", err)
			continue
		}
		creds.merge(next)
	}
	return creds, nil
}
