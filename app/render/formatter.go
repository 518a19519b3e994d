package render

import (
	"strings"
	"time"

	"github.com/lysyi3m/post-copy/app/ngavoid"
	"github.com/lysyi3m/post-copy/app/post"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	dateLayout = "2006/01/02 15:04:05"
	timeLayout = "15:04"
)

// Formatter renders a parsed post into the annotated plain-text block.
type Formatter struct {
	text    *ngavoid.TextProcessor
	urls    *ngavoid.URLProcessor
	printer *message.Printer
	loc     *time.Location
	now     func() time.Time
}

// NewFormatter renders dates in time.Local and groups vote totals the way
// lang does.
func NewFormatter(policy *ngavoid.Policy, lang language.Tag) *Formatter {
	return &Formatter{
		text:    ngavoid.NewTextProcessor(policy),
		urls:    ngavoid.NewURLProcessor(policy),
		printer: message.NewPrinter(lang),
		loc:     time.Local,
		now:     time.Now,
	}
}

func (f *Formatter) Run(p *post.Post) string {
	var b strings.Builder

	b.WriteString(f.text.ProcessText(p.Author.Name))
	b.WriteString(" @" + p.Author.Handle)
	b.WriteString(" (" + p.CreatedAt.In(f.loc).Format(dateLayout) + ") ")
	switch p.ConversationPolicy {
	case post.ConversationCommunity:
		b.WriteString("[返信:フォロー/@のみ]")
	case post.ConversationInvitation:
		b.WriteString("[返信:@のみ]")
	}
	b.WriteString("\n")

	if replies := visibleReplies(p); len(replies) > 0 {
		b.WriteString(strings.Join(replies, " ") + " ")
	}

	if p.Text != "" {
		body := f.urls.ProcessVideoURL(f.text.ProcessText(p.Text))
		if p.AudioRoom != nil && p.AudioRoom.ID != "" {
			body = removeRoomReferences(body, p.AudioRoom.ID)
		}
		b.WriteString(body + "\n")
	}

	if p.Poll != nil {
		b.WriteString(f.formatPoll(p.Poll))
	}

	if p.AudioRoom != nil {
		b.WriteString(f.formatRoom(p.AudioRoom))
	}

	if link := p.AdditionalLink; link != nil {
		target := f.urls.ProcessVideoURL(link.URL)
		if !strings.Contains(b.String(), target) {
			if link.Title != "" {
				b.WriteString(link.Title + "\n")
			}
			b.WriteString(target + "\n")
		}
	}

	for _, m := range p.Media {
		if m.AltText != "" {
			b.WriteString(m.AltText + " ")
		}
		b.WriteString(f.urls.ProcessImageURL(m.URL) + "\n")
	}

	for _, v := range p.VideoURLs {
		processed := f.urls.ProcessVideoURL(v)
		if !strings.Contains(p.Text, v) && !strings.Contains(b.String(), processed) {
			b.WriteString(processed + "\n")
		}
	}

	b.WriteString(f.urls.PostURL(p.Author.Handle, p.ID))

	if p.QuotedPost != nil {
		b.WriteString("\n\n[引用元] " + f.Run(p.QuotedPost))
	}

	return f.text.CollapseBlankLines(b.String())
}

// visibleReplies drops reply targets the body already mentions, ignoring
// case.
func visibleReplies(p *post.Post) []string {
	body := strings.ToUpper(p.Text)
	var out []string
	for _, r := range p.ReplyTargets {
		if !strings.Contains(body, strings.ToUpper(r)) {
			out = append(out, r)
		}
	}
	return out
}
