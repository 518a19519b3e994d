package xapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

type videoVariant struct {
	contentType string
	bitRate     int
	url         string
}

// FetchVmapPlaylist resolves a VMAP document to the URL of its lowest
// bitrate mp4 variant. Any failure yields an empty list.
func (c *Client) FetchVmapPlaylist(ctx context.Context, vmapURL string) []string {
	data, err := c.fetchPlain(ctx, vmapURL)
	if err != nil {
		slog.Warn("Failed to fetch VMAP", "url", vmapURL, "error", err)
		return []string{}
	}

	videoURL, err := lowestBitrateVariant(data)
	if err != nil {
		slog.Warn("Failed to parse VMAP", "url", vmapURL, "error", err)
		return []string{}
	}
	if videoURL == "" {
		return []string{}
	}
	return []string{videoURL}
}

func (c *Client) fetchPlain(ctx context.Context, target string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP error: %d %s", ErrRequest, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// lowestBitrateVariant scans videoVariant elements in document order and
// returns the decoded URL of the first mp4 with the smallest bit_rate.
func lowestBitrateVariant(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var best *videoVariant
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode XML: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "videoVariant" {
			continue
		}

		v := parseVariant(start)
		if v.contentType != "video/mp4" {
			continue
		}
		if best == nil || v.bitRate < best.bitRate {
			best = &v
		}
	}

	if best == nil || best.url == "" {
		return "", nil
	}

	decoded, err := url.PathUnescape(best.url)
	if err != nil {
		return "", fmt.Errorf("failed to decode variant URL: %w", err)
	}
	return decoded, nil
}

func parseVariant(el xml.StartElement) videoVariant {
	var v videoVariant
	for _, attr := range el.Attr {
		switch attr.Name.Local {
		case "content_type":
			v.contentType = attr.Value
		case "bit_rate":
			v.bitRate, _ = strconv.Atoi(attr.Value)
		case "url":
			v.url = attr.Value
		}
	}
	return v
}
