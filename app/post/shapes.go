package post

import (
	"regexp"
	"strings"
)

// An entryProbe recognizes one historical response shape and returns the
// timeline entry carrying the target post, or nil.
type entryProbe func(data *rawData, postID string) *rawEntry

type entryShape struct {
	name  string
	probe entryProbe
}

// entryShapes are tried in order; the first hit wins.
var entryShapes = []entryShape{
	{name: "timeline", probe: timelineEntry},
	{name: "direct", probe: directResultEntry},
}

// timelineEntry finds the add-entries instruction entry whose id contains
// the post id. The match is a substring match so that both "tweet-<id>" and
// other prefixes are accepted.
func timelineEntry(data *rawData, postID string) *rawEntry {
	if data.ThreadedConversation == nil {
		return nil
	}

	for i := range data.ThreadedConversation.Instructions {
		inst := &data.ThreadedConversation.Instructions[i]
		if inst.Type != "TimelineAddEntries" {
			continue
		}
		for j := range inst.Entries {
			if strings.Contains(inst.Entries[j].EntryID, postID) {
				return &inst.Entries[j]
			}
		}
	}
	return nil
}

// directResultEntry wraps a single result node, as returned to guests, in a
// synthetic timeline entry.
func directResultEntry(data *rawData, postID string) *rawEntry {
	container := data.TweetResult
	if container == nil || container.Result == nil {
		container = data.TweetResultByRestID
	}
	if container == nil || container.Result == nil {
		return nil
	}

	entry := &rawEntry{EntryID: "tweet-" + postID}
	entry.Content.ItemContent.TweetResults.Result = container.Result
	return entry
}

func locateEntry(data *rawData, postID string) (*rawEntry, string) {
	for _, shape := range entryShapes {
		if entry := shape.probe(data, postID); entry != nil {
			return entry, shape.name
		}
	}
	return nil, ""
}

// unwrapTweet returns the post wrapped under "tweet" when present, otherwise
// the node itself.
func unwrapTweet(node *rawResult) *rawResult {
	if node == nil {
		return nil
	}
	if node.Tweet != nil {
		return node.Tweet
	}
	return node
}

// resultNode descends from an entry to the post node, either the post
// itself or the post it quotes.
func resultNode(entry *rawEntry, quoted bool) *rawResult {
	base := entry.Content.ItemContent.TweetResults.Result
	if base == nil {
		return nil
	}
	if !quoted {
		return unwrapTweet(base)
	}
	// the quote hangs off the outer node in some responses and off the
	// wrapped tweet in others
	for _, node := range []*rawResult{base, base.Tweet} {
		if node != nil && node.QuotedStatusResult != nil && node.QuotedStatusResult.Result != nil {
			return unwrapTweet(node.QuotedStatusResult.Result)
		}
	}
	return nil
}

type cardKind int

const (
	cardNone cardKind = iota
	cardPoll
	cardAudioRoom
	cardUnified
	cardLinkPreview
)

var pollCardName = regexp.MustCompile(`poll(\d+)choice_text_only`)

func isPollCard(c *rawCard) bool {
	return pollCardName.MatchString(c.Name)
}

func isAudioRoomCard(c *rawCard) bool {
	return strings.Contains(c.Name, "audiospace")
}

func isUnifiedCard(c *rawCard) bool {
	_, ok := c.value("unified_card")
	return ok
}

// classifyCard resolves the card to exactly one kind. The checks run in
// priority order.
func classifyCard(c *rawCard) cardKind {
	switch {
	case c == nil:
		return cardNone
	case isPollCard(c):
		return cardPoll
	case isAudioRoomCard(c):
		return cardAudioRoom
	case isUnifiedCard(c):
		return cardUnified
	default:
		return cardLinkPreview
	}
}
