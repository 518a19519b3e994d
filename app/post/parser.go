package post

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/post-copy/app/ngavoid"
)

// ErrMalformedResponse means the target post could not be located in the
// payload at all.
var ErrMalformedResponse = errors.New("malformed response")

// Parser turns a TweetDetail style payload into a Post. Link URLs found in
// the body are rewritten with the policy while parsing.
type Parser struct {
	text *ngavoid.TextProcessor
	urls *ngavoid.URLProcessor
}

func NewParser(policy *ngavoid.Policy) *Parser {
	return &Parser{
		text: ngavoid.NewTextProcessor(policy),
		urls: ngavoid.NewURLProcessor(policy),
	}
}

func (p *Parser) Run(payload []byte, postID string) (*Post, error) {
	var raw rawPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode payload: %v", ErrMalformedResponse, err)
	}

	return p.parse(&raw.Data, postID, false)
}

func (p *Parser) parse(data *rawData, postID string, quoted bool) (*Post, error) {
	entry, shape := locateEntry(data, postID)
	if entry == nil {
		return nil, fmt.Errorf("%w: no entry for post %s", ErrMalformedResponse, postID)
	}

	node := resultNode(entry, quoted)
	if node == nil || node.Legacy == nil {
		if quoted {
			return nil, fmt.Errorf("%w: quoted post result missing", ErrMalformedResponse)
		}
		return nil, fmt.Errorf("%w: post result missing in %s entry", ErrMalformedResponse, shape)
	}

	legacy := node.Legacy
	var note *rawNote
	if node.NoteTweet != nil {
		note = node.NoteTweet.NoteTweetResults.Result
	}
	var card *rawCard
	if node.Card != nil {
		card = node.Card.Legacy
	}

	post := &Post{
		ID:                 cmp.Or(legacy.IDStr, node.RestID),
		Text:               legacy.FullText,
		CreatedAt:          parseCreatedAt(legacy.CreatedAt, postID),
		Author:             parseAuthor(node.Core.UserResults.Result),
		ConversationPolicy: parseConversationPolicy(legacy),
	}
	if note != nil && note.Text != "" {
		post.Text = note.Text
	}

	if legacy.ExtendedEntities != nil {
		set := collectMedia(legacy.ExtendedEntities.Media)
		post.Media = set.media
		post.VideoURLs = set.videoURLs
		post.AdditionalLink = set.link

		for _, m := range legacy.ExtendedEntities.Media {
			if m.URL != "" {
				post.Text = strings.Replace(post.Text, m.URL, "", 1)
			}
		}
	}

	switch classifyCard(card) {
	case cardPoll:
		post.Poll = parsePoll(card, post.ID)
	case cardAudioRoom:
		post.AudioRoom = roomFromCard(card)
	case cardUnified:
		set := parseUnifiedCard(card, post.ID)
		post.Media = append(post.Media, set.media...)
		post.VideoURLs = append(post.VideoURLs, set.videoURLs...)
		if set.link != nil {
			post.AdditionalLink = set.link
		}
	case cardLinkPreview:
		p.applyLinkPreview(post, card)
	}

	post.ReplyTargets = parseReplyTargets(legacy)

	if legacy.hasQuote() && !quoted {
		qp, err := p.parse(data, postID, true)
		if err != nil {
			slog.Warn("Failed to parse quoted post", "post", postID, "error", err)
		} else {
			post.QuotedPost = qp
		}
	}

	p.substituteURLs(post, legacy.Entities.URLs)
	if note != nil {
		p.substituteURLs(post, note.EntitySet.URLs)
	}

	return post, nil
}

func (p *Parser) substituteURLs(post *Post, entities []rawURLEntity) {
	for _, e := range entities {
		if e.URL == "" {
			continue
		}
		post.Text = strings.Replace(post.Text, e.URL, p.urls.ProcessLinkURL(cmp.Or(e.ExpandedURL, e.URL)), 1)
	}
}

func parseCreatedAt(value, postID string) time.Time {
	t, err := time.Parse(time.RubyDate, value)
	if err != nil {
		slog.Warn("Failed to parse creation time", "post", postID, "value", value)
		return time.Time{}
	}
	return t
}

func parseAuthor(user *rawUser) Author {
	if user == nil {
		slog.Warn("Author missing from post result")
		return Author{}
	}

	author := Author{
		ID:     cmp.Or(user.Legacy.IDStr, user.RestID),
		Name:   cmp.Or(user.Legacy.Name, user.Core.Name),
		Handle: cmp.Or(user.Legacy.ScreenName, user.Core.ScreenName),
	}
	if author.ID == "" || author.Name == "" || author.Handle == "" {
		slog.Warn("Author missing expected fields", "id", author.ID, "name", author.Name, "handle", author.Handle)
	}
	return author
}

func parseConversationPolicy(legacy *rawLegacy) ConversationPolicy {
	if legacy.ConversationControl == nil {
		return ConversationOpen
	}
	switch legacy.ConversationControl.Policy {
	case "community":
		return ConversationCommunity
	case "by_invitation":
		return ConversationInvitation
	}
	return ConversationOpen
}

// parseReplyTargets puts the replied-to handle first, then every mention in
// encounter order without duplicates.
func parseReplyTargets(legacy *rawLegacy) []string {
	var targets []string
	seen := make(map[string]bool)
	add := func(handle string) {
		target := "@" + handle
		if seen[target] {
			return
		}
		seen[target] = true
		targets = append(targets, target)
	}

	if legacy.InReplyToScreenName != "" {
		add(legacy.InReplyToScreenName)
	}
	for _, m := range legacy.Entities.UserMentions {
		add(m.ScreenName)
	}
	return targets
}
