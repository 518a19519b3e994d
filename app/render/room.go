package render

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/lysyi3m/post-copy/app/post"
)

const roomURLBase = "https://x.com/i/spaces/"

func (f *Formatter) formatRoom(room *post.AudioRoom) string {
	var header strings.Builder
	if room.State.Ended() {
		header.WriteString("[配信終了]")
	} else {
		start := room.StartedAt
		if start.IsZero() {
			start = room.ScheduledStart
		}
		if !start.IsZero() {
			header.WriteString("[" + start.In(f.loc).Format(timeLayout) + "開始]")
		}
	}
	if room.IsRecorded {
		header.WriteString("[録画あり]")
	} else {
		header.WriteString("[録画なし]")
	}
	if room.Title != "" {
		header.WriteString(" " + f.text.ProcessText(room.Title))
	}

	lines := []string{header.String()}
	if hosts := f.participants(room.Hosts); hosts != "" {
		lines = append(lines, "ホスト："+hosts)
	}
	if speakers := f.participants(room.Speakers); speakers != "" {
		lines = append(lines, "スピーカー："+speakers)
	}
	if room.ID != "" {
		lines = append(lines, roomURLBase+room.ID)
	}

	return strings.Join(lines, "\n") + "\n"
}

// participants renders unique "name @handle" entries joined by commas.
func (f *Formatter) participants(list []post.Participant) string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range list {
		entry := f.text.ProcessText(p.DisplayName) + " @" + p.Handle
		if seen[entry] {
			continue
		}
		seen[entry] = true
		out = append(out, entry)
	}
	return strings.Join(out, ", ")
}

var trailingBlanks = regexp.MustCompile(`[ \t]+$`)

// Whitespace classes covering vertical tab and Unicode spaces (U+3000).
const (
	spaceRun = `[\s\x0B\p{Z}\x{FEFF}]`
	notSpace = `[^\s\x0B\p{Z}\x{FEFF}]`
)

// removeRoomReferences deletes links to the room from the body. A line that
// becomes empty because of it is dropped; lines that were already blank
// stay.
func removeRoomReferences(text, roomID string) string {
	id := regexp.QuoteMeta(roomID)
	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)` + spaceRun + `*https?://(?:mobile\.)?twitter\.com/i/spaces/` + id + notSpace + `*`),
		regexp.MustCompile(`(?i)` + spaceRun + `*https?://x\.com/i/spaces/` + id + notSpace + `*`),
	}

	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		removed := false
		for _, re := range patterns {
			if replaced := re.ReplaceAllString(line, ""); replaced != line {
				removed = true
				line = replaced
			}
		}
		line = trailingBlanks.ReplaceAllString(line, "")
		if removed && strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimRightFunc(strings.Join(kept, "\n"), unicode.IsSpace)
}
