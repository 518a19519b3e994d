package xapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/lysyi3m/post-copy/app/auth"
)

type fakeAPI struct {
	server      *httptest.Server
	mux         *http.ServeMux
	activations atomic.Int32
	guestToken  string
}

func newFakeAPI(t *testing.T, guestToken string) *fakeAPI {
	t.Helper()

	api := &fakeAPI{mux: http.NewServeMux(), guestToken: guestToken}
	api.mux.HandleFunc("POST /1.1/guest/activate.json", func(w http.ResponseWriter, r *http.Request) {
		api.activations.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"guest_token":"%s"}`, api.guestToken)
	})
	api.server = httptest.NewServer(api.mux)
	t.Cleanup(api.server.Close)

	return api
}

func (a *fakeAPI) client(t *testing.T, tokens auth.Tokens, domain string) *Client {
	t.Helper()

	if tokens.Bearer == "" {
		tokens.Bearer = "Bearer AAAAAAtest"
	}
	c, err := NewClient(a.server.Client(), tokens, Options{
		Domain:    domain,
		SiteBase:  a.server.URL,
		APIBase:   a.server.URL,
		Languages: "ja,en-US,en",
		UserAgent: "test-agent",
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return c
}

const guestDetailPath = "/graphql/" + postByRestIDQueryID + "/TweetResultByRestId"

func TestNewClient_NoBearer(t *testing.T) {
	_, err := NewClient(http.DefaultClient, auth.Tokens{CSRF: "c"}, Options{})
	if !errors.Is(err, ErrAuth) {
		t.Errorf("Expected ErrAuth, got %v", err)
	}
}

func TestClient_FetchPostDetail_Guest(t *testing.T) {
	api := newFakeAPI(t, "g1")
	api.mux.HandleFunc(guestDetailPath, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer AAAAAAtest" {
			t.Errorf("Expected bearer header, got '%s'", got)
		}
		if got := r.Header.Get("X-Guest-Token"); got != "g1" {
			t.Errorf("Expected guest token 'g1', got '%s'", got)
		}
		if got := r.Header.Get("X-Twitter-Client-Language"); got != "ja" {
			t.Errorf("Expected client language 'ja', got '%s'", got)
		}
		if got := r.Header.Get("Accept-Language"); got != "ja,en-US;q=0.9,en;q=0.8" {
			t.Errorf("Unexpected accept-language '%s'", got)
		}
		if got := len(r.Header.Get("X-Client-Transaction-Id")); got != 43 {
			t.Errorf("Expected 43 character transaction id, got %d", got)
		}
		if got := len(r.Header.Get("X-Xp-Forwarded-For")); got != 128 {
			t.Errorf("Expected 128 character forwarded-for token, got %d", got)
		}
		if !strings.Contains(r.URL.Query().Get("variables"), `"tweetId":"123"`) {
			t.Errorf("Expected tweetId in variables, got '%s'", r.URL.Query().Get("variables"))
		}
		fmt.Fprint(w, `{"data":{}}`)
	})

	c := api.client(t, auth.Tokens{}, "127.0.0.1")
	data, err := c.FetchPostDetail(context.Background(), "123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `{"data":{}}` {
		t.Errorf("Unexpected payload: %s", data)
	}
	if got := api.activations.Load(); got != 1 {
		t.Errorf("Expected 1 activation, got %d", got)
	}
}

func TestClient_FetchPostDetail_CrossSiteOmitsTransactionID(t *testing.T) {
	api := newFakeAPI(t, "g1")
	api.mux.HandleFunc(guestDetailPath, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Client-Transaction-Id"); got != "" {
			t.Errorf("Expected no transaction id for a foreign host, got '%s'", got)
		}
		fmt.Fprint(w, `{}`)
	})

	c := api.client(t, auth.Tokens{}, "x.com")
	if _, err := c.FetchPostDetail(context.Background(), "1"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestClient_FetchPostDetail_RetryOnBadGuestToken(t *testing.T) {
	api := newFakeAPI(t, "fresh")
	var calls atomic.Int32
	api.mux.HandleFunc(guestDetailPath, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if r.Header.Get("X-Guest-Token") == "stale" {
			fmt.Fprint(w, `{"errors":[{"code":239,"message":"Bad guest token."}]}`)
			return
		}
		fmt.Fprint(w, `{"data":{"ok":true}}`)
	})

	c := api.client(t, auth.Tokens{Guest: "stale"}, "127.0.0.1")
	data, err := c.FetchPostDetail(context.Background(), "1")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `{"data":{"ok":true}}` {
		t.Errorf("Expected payload from retried request, got %s", data)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
	if got := api.activations.Load(); got != 1 {
		t.Errorf("Expected 1 activation, got %d", got)
	}
}

func TestClient_FetchPostDetail_RetriesOnlyOnce(t *testing.T) {
	api := newFakeAPI(t, "fresh")
	var calls atomic.Int32
	api.mux.HandleFunc(guestDetailPath, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	c := api.client(t, auth.Tokens{Guest: "g0"}, "127.0.0.1")
	_, err := c.FetchPostDetail(context.Background(), "1")
	if !errors.Is(err, ErrRequest) {
		t.Errorf("Expected ErrRequest, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("Expected 2 requests, got %d", got)
	}
}

func TestClient_FetchPostDetail_AuthenticatedFallback(t *testing.T) {
	api := newFakeAPI(t, "g1")
	var authCalls atomic.Int32
	api.mux.HandleFunc("/i/api/graphql/"+postDetailQueryID+"/TweetDetail", func(w http.ResponseWriter, r *http.Request) {
		authCalls.Add(1)
		if got := r.Header.Get("X-Csrf-Token"); got != "csrf" {
			t.Errorf("Expected csrf header, got '%s'", got)
		}
		if got := r.Header.Get("X-Twitter-Auth-Type"); got != "OAuth2Session" {
			t.Errorf("Expected OAuth2Session auth type, got '%s'", got)
		}
		if !strings.Contains(r.URL.Query().Get("variables"), `"focalTweetId":"9"`) {
			t.Errorf("Expected focalTweetId in variables")
		}
		w.WriteHeader(http.StatusForbidden)
	})
	api.mux.HandleFunc(guestDetailPath, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Guest-Token"); got != "g1" {
			t.Errorf("Expected guest token on fallback, got '%s'", got)
		}
		fmt.Fprint(w, `{"fallback":true}`)
	})

	c := api.client(t, auth.Tokens{CSRF: "csrf", AccountID: "42"}, "127.0.0.1")
	data, err := c.FetchPostDetail(context.Background(), "9")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(data) != `{"fallback":true}` {
		t.Errorf("Expected fallback payload, got %s", data)
	}
	if got := authCalls.Load(); got != 1 {
		t.Errorf("Expected authenticated request not to be retried, got %d calls", got)
	}
}

func TestClient_FetchPostDetail_ActivationFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, err := NewClient(server.Client(), auth.Tokens{Bearer: "Bearer x"}, Options{APIBase: server.URL, SiteBase: server.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = c.FetchPostDetail(context.Background(), "1")
	if !errors.Is(err, ErrRequest) {
		t.Errorf("Expected ErrRequest, got %v", err)
	}
}

func TestClient_FetchAudioRoom(t *testing.T) {
	api := newFakeAPI(t, "g1")
	api.mux.HandleFunc("/graphql/QID/AudioSpaceById", func(w http.ResponseWriter, r *http.Request) {
		vars := r.URL.Query().Get("variables")
		if !strings.Contains(vars, `"id":"1OdKrj"`) || !strings.Contains(vars, `"withReplays":true`) {
			t.Errorf("Unexpected variables '%s'", vars)
		}
		if !strings.Contains(r.URL.Query().Get("features"), `"spaces_2022_h2_clipping":true`) {
			t.Error("Expected audio room features")
		}
		if r.URL.Query().Has("fieldToggles") {
			t.Error("Expected no fieldToggles parameter")
		}
		fmt.Fprint(w, `{"data":{"audioSpace":{}}}`)
	})

	c := api.client(t, auth.Tokens{}, "127.0.0.1")
	data, err := c.FetchAudioRoom(context.Background(), "1OdKrj", "QID")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(string(data), "audioSpace") {
		t.Errorf("Unexpected payload: %s", data)
	}
}

func TestResolveLanguages(t *testing.T) {
	tests := []struct {
		input          string
		acceptLanguage string
		clientLanguage string
	}{
		{"ja", "ja", "ja"},
		{"ja,en-US,en", "ja,en-US;q=0.9,en;q=0.8", "ja"},
		{" en-GB , fr ", "en-GB,fr;q=0.9", "en-GB"},
		{"", "en", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			accept, client := resolveLanguages(tt.input)
			if accept != tt.acceptLanguage {
				t.Errorf("Expected accept-language '%s', got '%s'", tt.acceptLanguage, accept)
			}
			if client != tt.clientLanguage {
				t.Errorf("Expected client language '%s', got '%s'", tt.clientLanguage, client)
			}
		})
	}
}

func TestInvalidGuestToken(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected bool
	}{
		{"code 239", `{"errors":[{"code":239}]}`, true},
		{"message", `{"errors":[{"code":1,"message":"Bad Guest Token"}]}`, true},
		{"other error", `{"errors":[{"code":88,"message":"Rate limit exceeded"}]}`, false},
		{"no errors", `{"data":{}}`, false},
		{"not json", `<html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := invalidGuestToken([]byte(tt.body)); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestBaseDomain(t *testing.T) {
	if got := baseDomain("mobile.x.com"); got != "x.com" {
		t.Errorf("Expected 'x.com', got '%s'", got)
	}
	if got := baseDomain("x.com"); got != "x.com" {
		t.Errorf("Expected 'x.com', got '%s'", got)
	}
}
