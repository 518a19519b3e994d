package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"
)

// orderedObject keeps the members of a JSON object in document order.
type orderedObject []objectMember

type objectMember struct {
	Key   string
	Value json.RawMessage
}

func (o *orderedObject) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*o = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	var members orderedObject
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		members = append(members, objectMember{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*o = members
	return nil
}

type unifiedCard struct {
	MediaEntities      orderedObject `json:"media_entities"`
	DestinationObjects orderedObject `json:"destination_objects"`
}

type unifiedDestination struct {
	Type string `json:"type"`
	Data *struct {
		URLData *struct {
			URL *string `json:"url"`
		} `json:"url_data"`
	} `json:"data"`
}

// decodeUnifiedCard parses the card JSON, attempting a repair of broken
// input before giving up.
func decodeUnifiedCard(raw string) (*unifiedCard, error) {
	var card unifiedCard
	err := json.Unmarshal([]byte(raw), &card)
	if err == nil {
		return &card, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(raw)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to parse unified card: %w", err)
	}

	card = unifiedCard{}
	if err := json.Unmarshal([]byte(repaired), &card); err != nil {
		return nil, fmt.Errorf("failed to parse repaired unified card: %w", err)
	}

	slog.Debug("Repaired unified card JSON", "length", len(repaired))
	return &card, nil
}

// parseUnifiedCard extracts media and the first browser destination from a
// rich card. A card that cannot be parsed yields nothing.
func parseUnifiedCard(c *rawCard, postID string) mediaSet {
	var set mediaSet

	raw := c.stringValue("unified_card")
	if raw == "" {
		return set
	}

	card, err := decodeUnifiedCard(raw)
	if err != nil {
		slog.Warn("Failed to parse unified card", "post", postID, "error", err)
		return set
	}

	for _, member := range card.MediaEntities {
		var m rawMedia
		if err := json.Unmarshal(member.Value, &m); err != nil {
			continue
		}
		switch {
		case isVideoKind(m.Type):
			if u, ok := videoEntry(&m); ok {
				set.videoURLs = append(set.videoURLs, u)
			}
		case m.Type == string(MediaPhoto) && m.MediaURLHTTPS != "":
			set.media = append(set.media, Media{Kind: MediaPhoto, URL: m.MediaURLHTTPS, AltText: m.ExtAltText})
		}
	}

	for _, member := range card.DestinationObjects {
		var dest unifiedDestination
		if err := json.Unmarshal(member.Value, &dest); err != nil {
			continue
		}
		if dest.Type != "browser" || dest.Data == nil || dest.Data.URLData == nil || dest.Data.URLData.URL == nil {
			continue
		}
		set.link = &Link{URL: *dest.Data.URLData.URL}
		break
	}

	return set
}
