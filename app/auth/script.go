package auth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultPageURL = "https://x.com/"
	defaultTimeout = 30 * time.Second
)

var (
	mainScriptPattern  = regexp.MustCompile(`main\.[\w-]*\.js`)
	audioScriptPattern = regexp.MustCompile(`modules\.audio[\w.~-]*\.js`)
	bearerPattern      = regexp.MustCompile(`[" ](Bearer AAAAAA[^"]+)"`)
	roomQueryPattern   = regexp.MustCompile(`queryId:"([^"]+)",operationName:"AudioSpaceById"`)
)

// ScriptSource scrapes the web client bundles for the bearer token and the
// audio room query id.
type ScriptSource struct {
	httpClient *http.Client
	pageURL    string
	userAgent  string
	timeout    time.Duration
}

func NewScriptSource(httpClient *http.Client, pageURL, userAgent string, timeout time.Duration) *ScriptSource {
	if pageURL == "" {
		pageURL = DefaultPageURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ScriptSource{
		httpClient: httpClient,
		pageURL:    pageURL,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

func (s *ScriptSource) Credentials(ctx context.Context) (*Credentials, error) {
	page, err := s.fetch(ctx, s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}

	scripts, err := s.scriptURLs(page)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{}
	for _, src := range scripts {
		if creds.Tokens.Bearer != "" && creds.RoomQueryID != "" {
			break
		}

		body, err := s.fetch(ctx, src)
		if err != nil {
			slog.Warn("Failed to fetch script", "script", src, "error", err)
			continue
		}

		if creds.Tokens.Bearer == "" {
			if m := bearerPattern.FindSubmatch(body); m != nil {
				creds.Tokens.Bearer = string(m[1])
			}
		}
		if creds.RoomQueryID == "" {
			if m := roomQueryPattern.FindSubmatch(body); m != nil {
				creds.RoomQueryID = string(m[1])
			}
		}
	}

	if creds.Tokens.Bearer == "" {
		slog.Warn("Bearer token not found in scripts", "page", s.pageURL)
	}
	slog.Debug("Scraped credentials", "page", s.pageURL, "scripts", len(scripts), "room_query_id", creds.RoomQueryID)

	return creds, nil
}

// scriptURLs returns the main bundle first, then audio module bundles.
func (s *ScriptSource) scriptURLs(page []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	base, err := url.Parse(s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	var mains, audios []string
	doc.Find("script[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		ref, err := url.Parse(src)
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()

		switch {
		case mainScriptPattern.MatchString(src):
			mains = append(mains, abs)
		case audioScriptPattern.MatchString(src):
			audios = append(audios, abs)
		}
	})

	return append(mains, audios...), nil
}

func (s *ScriptSource) fetch(ctx context.Context, target string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
