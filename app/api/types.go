package api

import (
	"github.com/lysyi3m/post-copy/app/ngavoid"
	"github.com/lysyi3m/post-copy/app/tasks"
	"golang.org/x/text/language"
)

type Handler struct {
	// client is nil when no bearer token could be found; live lookups then
	// answer 503.
	client      tasks.APIClient
	rules       *ngavoid.RuleSet
	defaults    ngavoid.Settings
	roomQueryID string
	lang        language.Tag
	scheduler   tasks.TaskSchedulerInterface
}
