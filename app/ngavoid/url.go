package ngavoid

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	searchRedirectBase = "https://www.google.co.jp/url?q="
	echoProxyHost      = "ohayua.cyou"
	postURLBase        = "https://x.com/"
)

var (
	cardImagePattern = regexp.MustCompile(`card_img/(\d+)/([^?]*).*format=(\w+)`)
	youTubePattern   = regexp.MustCompile(`https?://(?:.*?youtu\.be/|.*?youtube\.com/)`)
	mp4Pattern       = regexp.MustCompile(`.*\.mp4`)
	listingPattern   = regexp.MustCompile(`(/channel/)|(/playlist)`)

	youTubeTimestamped = regexp.MustCompile(`https?://(?:.*?youtu\.be|.*?youtube\.com)(?:/(?:watch|live|shorts))?/?(?:watch\?v=)?([A-Za-z0-9_%-]+)(?:[?&#][^t][=\w.-]*)*(?:[?&#]t=)([\dhms]+)(?:[?&#][\w=.-]*)*`)
	youTubeGeneric     = regexp.MustCompile(`https?://(?:.*?youtu\.be|.*?youtube\.com)(?:/(?:watch|live|shorts))?/?(?:watch\?v=)?([A-Za-z0-9_%-]+)(?:[?&#][\w=.-]*)*`)
)

const (
	youTubeTimestampedReplacement = "https://" + echoProxyHost + "/?yt=${1}&t=${2} https://i.ytimg.com/vi/${1}/hqdefault.jpg"
	youTubeGenericReplacement     = "http://y2u.be/${1} https://i.ytimg.com/vi/${1}/hqdefault.jpg"
)

// URLProcessor rewrites URLs under a Policy.
type URLProcessor struct {
	policy *Policy
}

func NewURLProcessor(policy *Policy) *URLProcessor {
	return &URLProcessor{policy: policy}
}

// StripQueryParams removes denylisted query keys. Input that does not
// parse as an absolute URL is returned unchanged.
func (up *URLProcessor) StripQueryParams(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.RawQuery == "" {
		return raw
	}

	pairs := strings.Split(u.RawQuery, "&")
	kept := make([]string, 0, len(pairs))
	removed := false
	for _, pair := range pairs {
		key, _, _ := strings.Cut(pair, "=")
		if unescaped, err := url.QueryUnescape(key); err == nil {
			key = unescaped
		}
		if up.isDenylistedParam(key) {
			removed = true
			continue
		}
		kept = append(kept, pair)
	}

	if !removed {
		return raw
	}

	u.RawQuery = strings.Join(kept, "&")
	if u.Path == "" && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https") {
		u.Path = "/"
	}
	return u.String()
}

func (up *URLProcessor) isDenylistedParam(key string) bool {
	for _, re := range up.policy.rules.ngQueryParams {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// FixedSubstitutions strong-encodes the configured tokens wherever they occur.
func (up *URLProcessor) FixedSubstitutions(text string) string {
	for _, re := range up.policy.rules.fixed {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		text = re.ReplaceAllLiteralString(text, strongEncode(text[loc[0]:loc[1]]))
	}
	return text
}

// SearchRedirect wraps a URL in the search-engine redirector. Denylisted
// domains that survive weak encoding are strong-encoded and the result is
// wrapped again.
func (up *URLProcessor) SearchRedirect(raw string) string {
	encoded := weakEncode(raw)
	for _, d := range up.policy.rules.ngDomains {
		loc := d.re.FindStringIndex(encoded)
		if loc == nil {
			continue
		}
		replacement := strongEncode(encoded[loc[0]:loc[1]])
		if d.all {
			encoded = d.re.ReplaceAllLiteralString(encoded, replacement)
		} else {
			encoded = encoded[:loc[0]] + replacement + encoded[loc[1]:]
		}
		encoded = up.SearchRedirect(encoded)
	}
	return searchRedirectBase + encoded
}

// ProxyRedirect rewrites a URL into the echo-proxy form.
func (up *URLProcessor) ProxyRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	ssl := "0"
	if u.Scheme == "https" {
		ssl = "1"
	}
	domain := strings.ReplaceAll(u.Host, ".", "_")
	return "https://" + echoProxyHost + "/?ssl=" + ssl + "&d=" + domain + "&p=" + encodeURIComponent(u.EscapedPath())
}

func (up *URLProcessor) ProcessLinkURL(raw string) string {
	out := up.StripQueryParams(raw)
	if up.policy.level == LevelNone {
		return out
	}

	out = up.FixedSubstitutions(out)
	if youTubePattern.MatchString(out) {
		return out
	}

	for _, re := range up.policy.rules.ngURLs {
		for _, match := range re.FindAllString(out, -1) {
			out = strings.Replace(out, match, up.SearchRedirect(match), 1)
		}
	}

	if up.policy.level >= LevelRedirect {
		return up.SearchRedirect(out)
	}
	return out
}

func (up *URLProcessor) ProcessImageURL(raw string) string {
	if up.policy.level == LevelNone {
		return raw
	}

	out := up.FixedSubstitutions(raw)
	switch up.policy.level {
	case LevelRedirect:
		return strings.ReplaceAll(out, "http", "ttp")
	case LevelProxy:
		return ampURL(out)
	}
	return out
}

// ProcessCardImageURL ignores the level.
func (up *URLProcessor) ProcessCardImageURL(raw string) string {
	m := cardImagePattern.FindStringSubmatch(raw)
	if m == nil {
		return raw
	}
	return "https://" + echoProxyHost + "/card_img/" + m[1] + "/" + m[2] + "." + m[3]
}

// ProcessVideoURL rewrites every video link found in text, which may be a
// single URL or a whole post body.
func (up *URLProcessor) ProcessVideoURL(text string) string {
	out := text
	if up.policy.level > LevelNone {
		out = up.FixedSubstitutions(out)
	}

	if up.policy.level >= LevelRedirect && mp4Pattern.MatchString(out) {
		out = strings.ReplaceAll(out, "http", "ttp")
	}

	if listingPattern.MatchString(out) {
		return out
	}

	out = youTubeTimestamped.ReplaceAllString(out, youTubeTimestampedReplacement)
	return youTubeGeneric.ReplaceAllString(out, youTubeGenericReplacement)
}

// PostURL builds the canonical permalink of a post.
func (up *URLProcessor) PostURL(handle, id string) string {
	out := up.FixedSubstitutions(postURLBase + handle + "/status/" + id)
	if up.policy.level >= LevelLinks {
		return up.SearchRedirect(out)
	}
	return out
}

func ampURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	secure := ""
	if u.Scheme == "https" {
		secure = "s/"
	}
	host := u.Hostname()
	return "https://" + strings.ReplaceAll(host, ".", "-") + ".cdn.ampproject.org/i/" + secure + host + u.EscapedPath()
}
