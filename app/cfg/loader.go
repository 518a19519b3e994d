package cfg

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Rendering configuration
	Level              int    `long:"level" env:"NG_LEVEL" default:"0" description:"NG avoidance level (0-3)"`
	RemoveEmoji        bool   `long:"remove-emoji" env:"REMOVE_EMOJI" description:"Strip pictographs and decorative characters"`
	BlankLineThreshold int    `long:"blank-line-threshold" env:"BLANK_LINE_THRESHOLD" default:"128" description:"Line count above which blank lines are collapsed"`
	RulesFile          string `long:"rules-file" env:"RULES_FILE" description:"YAML file replacing the built-in NG rule tables"`
	EmojiPattern       string `long:"emoji-pattern" env:"EMOJI_PATTERN" description:"Additional emoji regular expression"`

	// Credentials
	BearerToken  string `long:"bearer-token" env:"X_BEARER_TOKEN" description:"Bearer token of the web client"`
	Cookie       string `long:"cookie" env:"X_COOKIE" description:"Browser cookie header (ct0, gt, twid)"`
	RoomQueryID  string `long:"room-query-id" env:"AUDIO_ROOM_QUERY_ID" description:"GraphQL query id of AudioSpaceById"`
	ScrapeTokens bool   `long:"scrape-tokens" env:"SCRAPE_TOKENS" description:"Scrape missing tokens from the web client bundles"`

	// API client configuration
	Domain    string `long:"domain" env:"X_DOMAIN" default:"x.com" description:"Site domain the session belongs to"`
	Language  string `long:"language" env:"X_LANGUAGE" default:"ja" description:"Preferred languages, comma separated (e.g., ja,en-US)"`
	Timeout   int    `long:"timeout" env:"HTTP_TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36" description:"User agent string for HTTP requests"`

	// One-shot mode
	Post string `long:"post" env:"POST_ID" description:"Post id or URL to render to stdout; the server is not started"`

	// Server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of concurrent copy operations"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" description:"Timezone for rendered timestamps (e.g., Asia/Tokyo)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := raw.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Cfg{
		Level:              raw.Level,
		RemoveEmoji:        raw.RemoveEmoji,
		BlankLineThreshold: raw.BlankLineThreshold,
		RulesFile:          raw.RulesFile,
		EmojiPattern:       raw.EmojiPattern,
		BearerToken:        raw.BearerToken,
		Cookie:             raw.Cookie,
		RoomQueryID:        raw.RoomQueryID,
		ScrapeTokens:       raw.ScrapeTokens,
		Domain:             raw.Domain,
		Language:           raw.Language,
		Timeout:            time.Duration(raw.Timeout) * time.Second,
		UserAgent:          raw.UserAgent,
		Post:               raw.Post,
		Port:               raw.Port,
		APIAccessKey:       raw.APIAccessKey,
		WorkerCount:        raw.WorkerCount,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func (r *rawCfg) validate() error {
	if r.Level < 0 || r.Level > 3 {
		return fmt.Errorf("level must be between 0 and 3, got %d", r.Level)
	}
	if r.BlankLineThreshold < 1 {
		return fmt.Errorf("blank line threshold must be positive, got %d", r.BlankLineThreshold)
	}
	if r.Timeout < 1 {
		return fmt.Errorf("timeout must be positive, got %d", r.Timeout)
	}
	if r.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive, got %d", r.WorkerCount)
	}
	return nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
