package ngavoid

import (
	"strings"
	"testing"
)

func TestURLProcessor_StripQueryParams(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelNone, false))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tracking removed", "https://example.com?utm_source=twitter&utm_medium=social&id=123", "https://example.com/?id=123"},
		{"nothing to strip", "https://example.com/page?id=1&b=2", "https://example.com/page?id=1&b=2"},
		{"all removed", "https://example.com/page?utm_campaign=x", "https://example.com/page"},
		{"no query", "https://example.com/page", "https://example.com/page"},
		{"not a URL", "just text", "just text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := up.StripQueryParams(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestURLProcessor_FixedSubstitutions(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelLinks, false))

	got := up.FixedSubstitutions("K5 and tokoyami")
	want := "%4B5 and %74%6F%6B%6F%79%61%6D%69"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLProcessor_SearchRedirect(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelLinks, false))

	got := up.SearchRedirect("https://example.com/page")
	want := "https://www.google.co.jp/url?q=https%3A%2F%2Fexample%2Ecom%2Fpage"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	// denylisted domains never appear in clear text
	got = up.SearchRedirect("https://www.amazon.co.jp/dp/1")
	if !strings.HasPrefix(got, searchRedirectBase) {
		t.Errorf("Expected redirect prefix, got %q", got)
	}
	if strings.Contains(got, "amazon") {
		t.Errorf("Expected amazon to be encoded, got %q", got)
	}
}

func TestURLProcessor_ProxyRedirect(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelProxy, false))

	got := up.ProxyRedirect("https://example.com/path/to")
	want := "https://ohayua.cyou/?ssl=1&d=example_com&p=%2Fpath%2Fto"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got = up.ProxyRedirect("http://a.b.example/x")
	want = "https://ohayua.cyou/?ssl=0&d=a_b_example&p=%2Fx"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestURLProcessor_ProcessLinkURL(t *testing.T) {
	t.Run("level 0 strips tracking only", func(t *testing.T) {
		up := NewURLProcessor(newTestPolicy(t, LevelNone, false))
		got := up.ProcessLinkURL("https://bit.ly/abc?utm_source=x")
		if got != "https://bit.ly/abc" {
			t.Errorf("Expected %q, got %q", "https://bit.ly/abc", got)
		}
	})

	t.Run("level 1 redirects NG URLs", func(t *testing.T) {
		up := NewURLProcessor(newTestPolicy(t, LevelLinks, false))
		got := up.ProcessLinkURL("https://bit.ly/abc")
		if !strings.HasPrefix(got, searchRedirectBase) {
			t.Errorf("Expected redirect, got %q", got)
		}

		plain := "https://example.com/page"
		if got := up.ProcessLinkURL(plain); got != plain {
			t.Errorf("Expected %q unchanged, got %q", plain, got)
		}
	})

	t.Run("level 2 redirects everything", func(t *testing.T) {
		up := NewURLProcessor(newTestPolicy(t, LevelRedirect, false))
		got := up.ProcessLinkURL("https://example.com/page")
		want := "https://www.google.co.jp/url?q=https%3A%2F%2Fexample%2Ecom%2Fpage"
		if got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	})

	t.Run("YouTube is never redirected", func(t *testing.T) {
		up := NewURLProcessor(newTestPolicy(t, LevelRedirect, false))
		in := "https://www.youtube.com/watch?v=abc123"
		if got := up.ProcessLinkURL(in); got != in {
			t.Errorf("Expected %q unchanged, got %q", in, got)
		}
	})
}

func TestURLProcessor_ProcessImageURL(t *testing.T) {
	in := "https://pbs.twimg.com/media/image.jpg"

	tests := []struct {
		level Level
		want  string
	}{
		{LevelNone, in},
		{LevelLinks, in},
		{LevelRedirect, "ttps://pbs.twimg.com/media/image.jpg"},
		{LevelProxy, "https://pbs-twimg-com.cdn.ampproject.org/i/s/pbs.twimg.com/media/image.jpg"},
	}

	for _, tt := range tests {
		up := NewURLProcessor(newTestPolicy(t, tt.level, false))
		if got := up.ProcessImageURL(in); got != tt.want {
			t.Errorf("Level %d: expected %q, got %q", tt.level, tt.want, got)
		}
	}
}

func TestURLProcessor_ProcessCardImageURL(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelNone, false))

	got := up.ProcessCardImageURL("https://pbs.twimg.com/card_img/123456/abcDEF?format=jpg&name=800x419")
	want := "https://ohayua.cyou/card_img/123456/abcDEF.jpg"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	other := "https://pbs.twimg.com/media/x.jpg"
	if got := up.ProcessCardImageURL(other); got != other {
		t.Errorf("Expected %q unchanged, got %q", other, got)
	}
}

func TestURLProcessor_ProcessVideoURL(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelNone, false))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short link", "https://youtu.be/abc123def", "http://y2u.be/abc123def https://i.ytimg.com/vi/abc123def/hqdefault.jpg"},
		{"watch link", "https://www.youtube.com/watch?v=abc123def", "http://y2u.be/abc123def https://i.ytimg.com/vi/abc123def/hqdefault.jpg"},
		{"timestamp", "https://youtu.be/abc123?t=120s", "https://ohayua.cyou/?yt=abc123&t=120s https://i.ytimg.com/vi/abc123/hqdefault.jpg"},
		{"channel untouched", "https://www.youtube.com/channel/xyz", "https://www.youtube.com/channel/xyz"},
		{"in text", "見て https://youtu.be/abc123def です", "見て http://y2u.be/abc123def https://i.ytimg.com/vi/abc123def/hqdefault.jpg です"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := up.ProcessVideoURL(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("mp4 at level 2", func(t *testing.T) {
		up := NewURLProcessor(newTestPolicy(t, LevelRedirect, false))
		got := up.ProcessVideoURL("https://video.twimg.com/a.mp4")
		if got != "ttps://video.twimg.com/a.mp4" {
			t.Errorf("Expected scheme to lose its h, got %q", got)
		}
	})
}

func TestURLProcessor_PostURL(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelNone, false))
	if got := up.PostURL("twitter", "9876543210"); got != "https://x.com/twitter/status/9876543210" {
		t.Errorf("Unexpected level 0 post URL: %q", got)
	}

	up = NewURLProcessor(newTestPolicy(t, LevelLinks, false))
	got := up.PostURL("twitter", "9876543210")
	if !strings.HasPrefix(got, searchRedirectBase) {
		t.Errorf("Expected redirect prefix, got %q", got)
	}
	if !strings.Contains(got, "x%2Ecom%2Ftwitter%2Fstatus%2F9876543210") {
		t.Errorf("Expected encoded post URL, got %q", got)
	}
}

func TestURLProcessor_StripQueryParams_Idempotent(t *testing.T) {
	up := NewURLProcessor(newTestPolicy(t, LevelNone, false))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fragment kept", "https://example.com/p?utm_source=a&id=1#frag", "https://example.com/p?id=1#frag"},
		{"percent-encoded key", "https://example.com/p?utm%5Fsource=a&x=1", "https://example.com/p?x=1"},
		{"bare host", "https://example.com?utm_medium=x", "https://example.com/"},
		{"encoded value kept", "https://example.com/p?q=a%26b&utm_term=z", "https://example.com/p?q=a%26b"},
		{"untouched", "https://example.com/p?id=1", "https://example.com/p?id=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := up.StripQueryParams(tt.in)
			if once != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, once)
			}
			if twice := up.StripQueryParams(once); twice != once {
				t.Errorf("Expected %q after second pass, got %q", once, twice)
			}
		})
	}
}

func TestURLProcessor_ProcessLinkURL_Repeated(t *testing.T) {
	inputs := []string{
		"https://bit.ly/abc?utm_source=x",
		"https://example.com/page",
		"https://www.youtube.com/watch?v=abc123",
	}

	for _, level := range []Level{LevelNone, LevelLinks} {
		up := NewURLProcessor(newTestPolicy(t, level, false))
		for _, in := range inputs {
			once := up.ProcessLinkURL(in)
			if twice := up.ProcessLinkURL(once); twice != once {
				t.Errorf("Level %d: expected %q after second pass, got %q", level, once, twice)
			}
		}
	}

	// levels 2 and 3 wrap whatever they are given, including an earlier redirect
	for _, level := range []Level{LevelRedirect, LevelProxy} {
		up := NewURLProcessor(newTestPolicy(t, level, false))
		once := up.ProcessLinkURL("https://example.com/page")
		if once != "https://www.google.co.jp/url?q=https%3A%2F%2Fexample%2Ecom%2Fpage" {
			t.Errorf("Level %d: unexpected first pass %q", level, once)
		}

		twice := up.ProcessLinkURL(once)
		want := "https://www.google.co.jp/url?q=https%3A%2F%2Fwww%2Egoogle%2Eco%2Ejp%2Furl%3Fq%3Dhttps%253A%252F%252Fexample%252Ecom%252Fpage"
		if twice != want {
			t.Errorf("Level %d: expected %q, got %q", level, want, twice)
		}
	}
}
