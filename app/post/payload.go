package post

import (
	"encoding/json"
	"strings"
)

// Raw shapes of the GraphQL response. Only the fields the parser reads are
// declared; everything else is ignored by encoding/json.

type rawPayload struct {
	Data rawData `json:"data"`
}

type rawData struct {
	ThreadedConversation *rawConversation    `json:"threaded_conversation_with_injections_v2"`
	TweetResult          *rawResultContainer `json:"tweetResult"`
	TweetResultByRestID  *rawResultContainer `json:"tweetResultByRestId"`
}

type rawConversation struct {
	Instructions []rawInstruction `json:"instructions"`
}

type rawInstruction struct {
	Type    string     `json:"type"`
	Entries []rawEntry `json:"entries"`
}

type rawEntry struct {
	EntryID string          `json:"entryId"`
	Content rawEntryContent `json:"content"`
}

type rawEntryContent struct {
	ItemContent rawItemContent `json:"itemContent"`
}

type rawItemContent struct {
	TweetResults rawResultContainer `json:"tweet_results"`
}

type rawResultContainer struct {
	Result *rawResult `json:"result"`
}

type rawResult struct {
	RestID             string              `json:"rest_id"`
	Tweet              *rawResult          `json:"tweet"`
	Legacy             *rawLegacy          `json:"legacy"`
	Core               rawResultCore       `json:"core"`
	Card               *rawCardContainer   `json:"card"`
	NoteTweet          *rawNoteTweet       `json:"note_tweet"`
	QuotedStatusResult *rawResultContainer `json:"quoted_status_result"`
}

type rawResultCore struct {
	UserResults struct {
		Result *rawUser `json:"result"`
	} `json:"user_results"`
}

type rawUser struct {
	RestID string `json:"rest_id"`
	Legacy struct {
		IDStr      string `json:"id_str"`
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"legacy"`
	Core struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"core"`
}

type rawNoteTweet struct {
	NoteTweetResults struct {
		Result *rawNote `json:"result"`
	} `json:"note_tweet_results"`
}

type rawNote struct {
	Text      string `json:"text"`
	EntitySet struct {
		URLs []rawURLEntity `json:"urls"`
	} `json:"entity_set"`
}

type rawLegacy struct {
	IDStr                 string          `json:"id_str"`
	FullText              string          `json:"full_text"`
	CreatedAt             string          `json:"created_at"`
	InReplyToScreenName   string          `json:"in_reply_to_screen_name"`
	QuotedStatusPermalink json.RawMessage `json:"quoted_status_permalink"`
	ConversationControl   *struct {
		Policy string `json:"policy"`
	} `json:"conversation_control"`
	Entities struct {
		URLs         []rawURLEntity `json:"urls"`
		UserMentions []struct {
			ScreenName string `json:"screen_name"`
		} `json:"user_mentions"`
	} `json:"entities"`
	ExtendedEntities *struct {
		Media []rawMedia `json:"media"`
	} `json:"extended_entities"`
}

func (l *rawLegacy) hasQuote() bool {
	v := strings.TrimSpace(string(l.QuotedStatusPermalink))
	return v != "" && v != "null"
}

type rawURLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
}

// rawMedia is shared by extended entities and unified card media.
type rawMedia struct {
	Type          string `json:"type"`
	URL           string `json:"url"`
	MediaURLHTTPS string `json:"media_url_https"`
	ExtAltText    string `json:"ext_alt_text"`
	VideoInfo     *struct {
		Variants []rawVariant `json:"variants"`
	} `json:"video_info"`
	AdditionalMediaInfo *struct {
		Title         string `json:"title"`
		Description   string `json:"description"`
		CallToActions *struct {
			WatchNow *struct {
				URL string `json:"url"`
			} `json:"watch_now"`
			VisitSite *struct {
				URL string `json:"url"`
			} `json:"visit_site"`
		} `json:"call_to_actions"`
	} `json:"additional_media_info"`
}

func (m *rawMedia) variants() []rawVariant {
	if m.VideoInfo == nil {
		return nil
	}
	return m.VideoInfo.Variants
}

type rawVariant struct {
	ContentType string  `json:"content_type"`
	URL         string  `json:"url"`
	Bitrate     float64 `json:"bitrate"`
}

type rawCardContainer struct {
	Legacy *rawCard `json:"legacy"`
}

type rawCard struct {
	Name          string       `json:"name"`
	BindingValues []rawBinding `json:"binding_values"`
}

type rawBinding struct {
	Key   string          `json:"key"`
	Value rawBindingValue `json:"value"`
}

type rawBindingValue struct {
	StringValue  string `json:"string_value"`
	BooleanValue *bool  `json:"boolean_value"`
	ImageValue   *struct {
		URL string `json:"url"`
	} `json:"image_value"`
}

// value returns the first binding with the given key.
func (c *rawCard) value(key string) (rawBindingValue, bool) {
	for _, b := range c.BindingValues {
		if b.Key == key {
			return b.Value, true
		}
	}
	return rawBindingValue{}, false
}

func (c *rawCard) stringValue(key string) string {
	v, _ := c.value(key)
	return v.StringValue
}
