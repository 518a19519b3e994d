package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/post-copy/app/cfg"
	"github.com/lysyi3m/post-copy/app/ngavoid"
	"github.com/lysyi3m/post-copy/app/post"
	"github.com/lysyi3m/post-copy/app/render"
	"github.com/lysyi3m/post-copy/app/tasks"
	"github.com/lysyi3m/post-copy/app/xapi"
	"golang.org/x/text/language"
)

const maxPayloadSize = 10 << 20

func NewHandler(client tasks.APIClient, rules *ngavoid.RuleSet, defaults ngavoid.Settings,
	roomQueryID string, lang language.Tag, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		client:      client,
		rules:       rules,
		defaults:    defaults,
		roomQueryID: roomQueryID,
		lang:        lang,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetPost(c *gin.Context) {
	id, err := post.ExtractID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := h.policy(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if h.client == nil {
		slog.Error("Post lookup without credentials", "post", id)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": xapi.ErrAuth.Error()})
		return
	}

	task := tasks.NewCopyPostTask(id, h.client, policy, h.roomQueryID, h.lang)
	if err := h.scheduler.Run(c.Request.Context(), task); err != nil {
		slog.Error("Copy post failed", "post", id, "task", task.ID, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.writeText(c, id, policy, task.Result)
}

func (h *Handler) RenderPayload(c *gin.Context) {
	id, err := post.ExtractID(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := h.policy(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadSize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	text, err := render.RenderPost(payload, id, policy, post.Attachments{})
	if err != nil {
		slog.Error("Render failed", "post", id, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.writeText(c, id, policy, text)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"version":       cfg.GetVersion(),
		"credentials":   h.client != nil,
		"room_lookups":  h.client != nil && h.roomQueryID != "",
		"default_level": int(h.defaults.Level),
	})
}

// policy applies the level and remove_emoji query parameters over the
// configured defaults.
func (h *Handler) policy(c *gin.Context) (*ngavoid.Policy, error) {
	settings := h.defaults

	if raw := c.Query("level"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("level must be an integer")
		}
		settings.Level = ngavoid.Level(level)
	}

	if raw := c.Query("remove_emoji"); raw != "" {
		remove, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("remove_emoji must be a boolean")
		}
		settings.RemoveEmoji = remove
	}

	return ngavoid.NewPolicy(settings, h.rules)
}

func (h *Handler) writeText(c *gin.Context, id string, policy *ngavoid.Policy, text string) {
	level := int(policy.Level())
	c.Set("post", id)
	c.Set("level", level)
	c.Header("X-Post-ID", id)
	c.Header("X-NG-Level", strconv.Itoa(level))
	c.String(http.StatusOK, text)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, post.ErrMalformedResponse):
		return http.StatusNotFound
	case errors.Is(err, xapi.ErrAuth),
		errors.Is(err, tasks.ErrQueueFull),
		errors.Is(err, tasks.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, xapi.ErrRequest):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
