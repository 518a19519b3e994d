package post

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// cardImageKeys are checked in order.
var cardImageKeys = []string{
	"photo_image_full_size_original",
	"thumbnail_image_original",
	"player_image_original",
}

var titleDelimiter = regexp.MustCompile(`( ?- ?)|( ?｜ ?)|( ?\| ?)|( ?: ?)|( ?│ ?)`)

func parsePoll(c *rawCard, postID string) *Poll {
	poll := &Poll{}

	count := 0
	if m := pollCardName.FindStringSubmatch(c.Name); m != nil {
		count, _ = strconv.Atoi(m[1])
	}

	for i := 1; i <= count; i++ {
		label := c.stringValue("choice" + strconv.Itoa(i) + "_label")
		votes := c.stringValue("choice" + strconv.Itoa(i) + "_count")
		if label == "" || votes == "" {
			continue
		}
		n, err := strconv.Atoi(votes)
		if err != nil {
			slog.Warn("Invalid poll vote count", "post", postID, "choice", i, "value", votes)
			continue
		}
		poll.Choices = append(poll.Choices, PollChoice{Label: label, Votes: n})
	}

	if v, ok := c.value("counts_are_final"); ok && v.BooleanValue != nil {
		poll.IsFinal = *v.BooleanValue
	}
	poll.EndTime = parseCardTime(c.stringValue("end_datetime_utc"), "end_datetime_utc", postID)
	poll.LastUpdated = parseCardTime(c.stringValue("last_updated_datetime_utc"), "last_updated_datetime_utc", postID)

	return poll
}

func parseCardTime(value, key, postID string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.Warn("Failed to parse card timestamp", "post", postID, "key", key, "value", value)
		return time.Time{}
	}
	return t
}

// roomFromCard captures only the room id. The rest is filled in by a
// later fetch.
func roomFromCard(c *rawCard) *AudioRoom {
	return &AudioRoom{
		ID:    c.stringValue("id"),
		State: RoomNotStarted,
	}
}

// applyLinkPreview inserts the card title in front of the card URL unless
// the body already mentions it, either in full or by the segment before
// its first delimiter.
func (p *Parser) applyLinkPreview(post *Post, c *rawCard) {
	rawTitle := c.stringValue("title")
	cardURL := c.stringValue("card_url")
	if rawTitle != "" && cardURL != "" {
		title := p.text.StripEmoji(rawTitle)
		if !mentionsTitle(post.Text, title) {
			post.Text = strings.Replace(post.Text, cardURL, title+"\n"+cardURL, 1)
		}
	}

	for _, key := range cardImageKeys {
		v, ok := c.value(key)
		if !ok || v.ImageValue == nil || v.ImageValue.URL == "" {
			continue
		}
		post.Media = append(post.Media, Media{Kind: MediaPhoto, URL: p.urls.ProcessCardImageURL(v.ImageValue.URL)})
		break
	}

	if stream := c.stringValue("player_stream_url"); strings.HasSuffix(stream, ".vmap") {
		post.VmapURL = stream
	}
}

func mentionsTitle(text, title string) bool {
	if strings.Contains(text, title) {
		return true
	}
	loc := titleDelimiter.FindStringIndex(title)
	if loc == nil || loc[0] == 0 {
		return false
	}
	return strings.Contains(text, title[:loc[0]])
}
