package api

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/post-copy/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: accessLog,
		SkipPaths: []string{"/favicon.ico"},
	}))
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	setupRoutes(r, handler, apiAccessKey)

	return r
}

// accessLog renders one combined-style line per request, with the post id
// and NG level the response was rendered for.
func accessLog(param gin.LogFormatterParams) string {
	return fmt.Sprintf("%s - [%s] \"%s %s %s\" %d %s post=%s level=%s \"%s\" %s\n",
		param.ClientIP,
		param.TimeStamp.Format(time.RFC3339),
		param.Method,
		param.Path,
		param.Request.Proto,
		param.StatusCode,
		param.Latency,
		logValue(param.Keys["post"]),
		logValue(param.Keys["level"]),
		param.Request.UserAgent(),
		param.ErrorMessage,
	)
}

func logValue(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")
		h.Set("Access-Control-Expose-Headers", "X-Post-ID, X-NG-Level")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	copies := r.Group("/")
	if apiAccessKey != "" {
		copies.Use(authMiddleware(apiAccessKey))
		slog.Info("Post endpoints require an API key")
	} else {
		slog.Warn("Post endpoints are open (API_ACCESS_KEY not set)")
	}
	copies.GET("/posts/:id", handler.GetPost)
	copies.POST("/render", handler.RenderPayload)

	r.GET("/health", handler.GetHealth)
	r.GET("/", index(apiAccessKey != ""))
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func index(authRequired bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Post Copy",
			"version":     cfg.GetVersion(),
			"description": "Copies posts as annotated plain text with NG-word avoidance",
			"endpoints": map[string]string{
				"post":   "/posts/<id>?level=0-3&remove_emoji=true|false",
				"render": "/render?id=<id>&level=0-3 (POST, raw API payload as body)",
				"health": "/health",
			},
			"auth": gin.H{
				"required": authRequired,
				"headers":  []string{"X-API-Key", "Authorization: Bearer <key>"},
			},
		})
	}
}

// apiKey returns the key from X-API-Key, falling back to a bearer token.
func apiKey(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return token
	}
	return ""
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	expected := []byte(apiAccessKey)

	return func(c *gin.Context) {
		provided := apiKey(c)

		switch {
		case provided == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
		case subtle.ConstantTimeCompare([]byte(provided), expected) != 1:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid API key",
			})
		default:
			c.Next()
		}
	}
}
