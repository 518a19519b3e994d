package xapi

import (
	"bytes"
	"cmp"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/lysyi3m/post-copy/app/auth"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

const (
	DefaultDomain   = "x.com"
	DefaultAPIBase  = "https://api.x.com"
	DefaultLanguage = "ja"
	defaultTimeout  = 30 * time.Second
)

var (
	// ErrAuth means the client has no bearer token to sign requests with.
	ErrAuth = errors.New("bearer token not available")
	// ErrRequest wraps transport failures and non-2xx responses.
	ErrRequest = errors.New("api request failed")
)

type Options struct {
	// Domain is the site the session belongs to, e.g. "x.com".
	Domain string
	// SiteBase overrides "https://<Domain>" for authenticated endpoints.
	SiteBase string
	// APIBase overrides the guest API host.
	APIBase string
	// Languages is a comma separated preference list such as "ja,en-US".
	Languages string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the GraphQL API the way the web client does. It is safe
// for concurrent use; the guest token is refreshed at most once at a time.
type Client struct {
	httpClient *http.Client
	bearer     string
	csrf       string
	accountID  string

	mu    sync.Mutex
	guest string
	group singleflight.Group

	domain         string
	siteBase       string
	apiBase        string
	acceptLanguage string
	clientLanguage string
	userAgent      string
	timeout        time.Duration
}

func NewClient(httpClient *http.Client, tokens auth.Tokens, opts Options) (*Client, error) {
	if tokens.Bearer == "" {
		return nil, ErrAuth
	}

	domain := cmp.Or(opts.Domain, DefaultDomain)
	acceptLanguage, clientLanguage := resolveLanguages(cmp.Or(opts.Languages, DefaultLanguage))

	return &Client{
		httpClient:     httpClient,
		bearer:         tokens.Bearer,
		csrf:           tokens.CSRF,
		accountID:      tokens.AccountID,
		guest:          tokens.Guest,
		domain:         domain,
		siteBase:       strings.TrimSuffix(cmp.Or(opts.SiteBase, "https://"+domain), "/"),
		apiBase:        strings.TrimSuffix(cmp.Or(opts.APIBase, DefaultAPIBase), "/"),
		acceptLanguage: acceptLanguage,
		clientLanguage: clientLanguage,
		userAgent:      opts.UserAgent,
		timeout:        cmp.Or(opts.Timeout, defaultTimeout),
	}, nil
}

func (c *Client) authenticated() bool {
	return c.csrf != ""
}

func (c *Client) guestToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.guest
}

func (c *Client) setGuestToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.guest = token
}

// resolveLanguages builds the accept-language header with descending
// weights and picks the first tag as the client language.
func resolveLanguages(list string) (string, string) {
	var tags []language.Tag
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, err := language.Parse(part)
		if err != nil {
			slog.Warn("Ignoring invalid language", "language", part, "error", err)
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
	}

	parts := make([]string, len(tags))
	for i, tag := range tags {
		if i == 0 {
			parts[i] = tag.String()
			continue
		}
		q := max(0, 1-float64(i)*0.1)
		parts[i] = fmt.Sprintf("%s;q=%.1f", tag, q)
	}

	return strings.Join(parts, ","), tags[0].String()
}

type request struct {
	method     string
	body       []byte
	retry      bool
	forceGuest bool
}

func (c *Client) do(ctx context.Context, target string, r request) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(timeoutCtx, cmp.Or(r.method, "GET"), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, r.forceGuest)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrRequest, err)
	}

	canRetry := r.retry && !c.authenticated()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if canRetry && c.refreshGuestToken(ctx) {
			r.retry = false
			return c.do(ctx, target, r)
		}
		return nil, fmt.Errorf("%w: HTTP error: %d %s", ErrRequest, resp.StatusCode, resp.Status)
	}

	if canRetry && isJSON(resp) && invalidGuestToken(data) && c.refreshGuestToken(ctx) {
		r.retry = false
		return c.do(ctx, target, r)
	}

	return data, nil
}

func (c *Client) setHeaders(req *http.Request, forceGuest bool) {
	h := req.Header
	h.Set("Accept", "*/*")
	h.Set("Accept-Language", c.acceptLanguage)
	h.Set("Content-Type", "application/json")
	h.Set("X-Twitter-Active-User", "yes")
	h.Set("X-Twitter-Client-Language", c.clientLanguage)
	h.Set("Authorization", c.bearer)
	if c.userAgent != "" {
		h.Set("User-Agent", c.userAgent)
	}
	if c.csrf != "" {
		h.Set("X-Csrf-Token", c.csrf)
	}

	guest := c.guestToken()
	switch {
	case forceGuest:
		if guest != "" {
			h.Set("X-Guest-Token", guest)
		}
	case c.accountID != "":
		h.Set("X-Twitter-Auth-Type", "OAuth2Session")
	case guest != "":
		h.Set("X-Guest-Token", guest)
	}

	if (forceGuest || !c.authenticated()) && guest != "" && c.sameSite(req.URL) {
		h.Set("X-Client-Transaction-Id", base64.RawStdEncoding.EncodeToString(randomBytes(32)))
		h.Set("X-Xp-Forwarded-For", hex.EncodeToString(randomBytes(64)))
	}
}

// sameSite reports whether u belongs to the session domain or a sibling
// host under the same registrable domain.
func (c *Client) sameSite(u *url.URL) bool {
	host := u.Hostname()
	return host == c.domain || strings.HasSuffix(host, "."+baseDomain(c.domain))
}

func baseDomain(domain string) string {
	segments := strings.Split(domain, ".")
	if len(segments) <= 2 {
		return domain
	}
	return strings.Join(segments[len(segments)-2:], ".")
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

func isJSON(resp *http.Response) bool {
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "application/json")
}
