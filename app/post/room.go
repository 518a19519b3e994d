package post

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

type rawRoomPayload struct {
	Data struct {
		AudioSpace *struct {
			Metadata struct {
				Title                     string   `json:"title"`
				State                     string   `json:"state"`
				StartedAt                 flexTime `json:"started_at"`
				ScheduledStart            flexTime `json:"scheduled_start"`
				UpdatedAt                 flexTime `json:"updated_at"`
				IsSpaceAvailableForReplay bool     `json:"is_space_available_for_replay"`
			} `json:"metadata"`
			Participants struct {
				Admins   []json.RawMessage `json:"admins"`
				Speakers []json.RawMessage `json:"speakers"`
			} `json:"participants"`
		} `json:"audioSpace"`
	} `json:"data"`
}

type rawParticipant struct {
	DisplayName *string `json:"display_name"`
	Name        *string `json:"name"`
	ScreenName  *string `json:"twitter_screen_name"`
}

// flexTime accepts epoch milliseconds, as a number or a numeric string, and
// RFC 3339 strings. Anything else decodes to the zero time.
type flexTime struct {
	time.Time
}

func (f *flexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var value string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
	} else {
		value = string(data)
	}
	if value == "" {
		return nil
	}

	if ms, err := strconv.ParseFloat(value, 64); err == nil {
		f.Time = time.UnixMilli(int64(ms))
		return nil
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		slog.Warn("Failed to parse room timestamp", "value", value)
		return nil
	}
	f.Time = t
	return nil
}

// ParseAudioRoom decodes an AudioSpaceById response. The id is not part of
// the payload and is set from the argument.
func ParseAudioRoom(payload []byte, id string) (*AudioRoom, error) {
	var raw rawRoomPayload
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode audio room: %w", err)
	}
	space := raw.Data.AudioSpace
	if space == nil {
		return nil, fmt.Errorf("audio room %s missing from response", id)
	}

	meta := space.Metadata
	room := &AudioRoom{
		ID:             id,
		Title:          meta.Title,
		State:          RoomState(meta.State),
		StartedAt:      meta.StartedAt.Time,
		ScheduledStart: meta.ScheduledStart.Time,
		UpdatedAt:      meta.UpdatedAt.Time,
		IsRecorded:     meta.IsSpaceAvailableForReplay,
		Hosts:          parseParticipants(space.Participants.Admins),
		Speakers:       parseParticipants(space.Participants.Speakers),
	}
	if room.State == "" {
		room.State = RoomNotStarted
	}
	return room, nil
}

// parseParticipants drops entries that carry neither a name nor a handle.
// When only one is present it fills both fields.
func parseParticipants(records []json.RawMessage) []Participant {
	var out []Participant
	for _, rec := range records {
		var rp rawParticipant
		if err := json.Unmarshal(rec, &rp); err != nil {
			continue
		}

		name := ""
		switch {
		case rp.DisplayName != nil:
			name = *rp.DisplayName
		case rp.Name != nil:
			name = *rp.Name
		}
		handle := ""
		if rp.ScreenName != nil {
			handle = *rp.ScreenName
		}

		if name == "" && handle == "" {
			continue
		}
		if name == "" {
			name = handle
		}
		if handle == "" {
			handle = name
		}
		out = append(out, Participant{DisplayName: name, Handle: handle})
	}
	return out
}
