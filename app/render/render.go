package render

import (
	"github.com/lysyi3m/post-copy/app/ngavoid"
	"github.com/lysyi3m/post-copy/app/post"
	"golang.org/x/text/language"
)

// RenderPost parses the payload, merges already resolved attachments and
// formats the result. It performs no I/O.
func RenderPost(payload []byte, postID string, policy *ngavoid.Policy, att post.Attachments) (string, error) {
	p, err := post.NewParser(policy).Run(payload, postID)
	if err != nil {
		return "", err
	}
	p.Attach(att)

	return NewFormatter(policy, language.Japanese).Run(p), nil
}
