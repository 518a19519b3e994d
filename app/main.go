package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/post-copy/app/api"
	"github.com/lysyi3m/post-copy/app/auth"
	"github.com/lysyi3m/post-copy/app/cfg"
	"github.com/lysyi3m/post-copy/app/ngavoid"
	"github.com/lysyi3m/post-copy/app/post"
	"github.com/lysyi3m/post-copy/app/tasks"
	"github.com/lysyi3m/post-copy/app/xapi"
	"golang.org/x/text/language"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	// stdout carries the rendered post in one-shot mode
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting Post Copy", "version", appCfg.Version, "level", appCfg.Level)

	rules, err := loadRules(appCfg.RulesFile)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: appCfg.Timeout}

	creds, err := resolveCredentials(appCfg, httpClient)
	if err != nil {
		return err
	}

	settings := ngavoid.Settings{
		Level:              ngavoid.Level(appCfg.Level),
		RemoveEmoji:        appCfg.RemoveEmoji,
		BlankLineThreshold: appCfg.BlankLineThreshold,
		EmojiPattern:       creds.EmojiPattern,
	}

	var client tasks.APIClient
	xc, err := xapi.NewClient(httpClient, creds.Tokens, xapi.Options{
		Domain:    appCfg.Domain,
		Languages: appCfg.Language,
		UserAgent: appCfg.UserAgent,
		Timeout:   appCfg.Timeout,
	})
	if err != nil {
		slog.Warn("API client unavailable, live lookups disabled", "error", err)
	} else {
		client = xc
	}

	if appCfg.OneShot() {
		return copyPost(appCfg, client, rules, settings, creds.RoomQueryID)
	}

	return serve(appCfg, client, rules, settings, creds.RoomQueryID)
}

func loadRules(path string) (*ngavoid.RuleSet, error) {
	rules, err := ngavoid.LoadRules(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	ruleSet, err := rules.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	if path != "" {
		slog.Info("Loaded rule tables", "file", path)
	}
	return ruleSet, nil
}

func resolveCredentials(appCfg *cfg.Cfg, httpClient *http.Client) (*auth.Credentials, error) {
	static, err := auth.NewStaticSource(appCfg.BearerToken, appCfg.Cookie, appCfg.RoomQueryID, appCfg.EmojiPattern)
	if err != nil {
		return nil, err
	}

	chain := auth.Chain{static}
	if appCfg.ScrapeTokens {
		pageURL := "https://" + appCfg.Domain + "/"
		chain = append(chain, auth.NewScriptSource(httpClient, pageURL, appCfg.UserAgent, appCfg.Timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*appCfg.Timeout)
	defer cancel()

	creds, err := chain.Credentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve credentials: %w", err)
	}

	slog.Debug("Credentials resolved",
		"bearer", creds.Tokens.Bearer != "",
		"authenticated", creds.Tokens.Authenticated(),
		"room_query_id", creds.RoomQueryID != "")

	return creds, nil
}

func copyPost(appCfg *cfg.Cfg, client tasks.APIClient, rules *ngavoid.RuleSet, settings ngavoid.Settings, roomQueryID string) error {
	if client == nil {
		return xapi.ErrAuth
	}

	id, err := post.ExtractID(appCfg.Post)
	if err != nil {
		return fmt.Errorf("%w: %s", err, appCfg.Post)
	}

	policy, err := ngavoid.NewPolicy(settings, rules)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := tasks.NewCopyPostTask(id, client, policy, roomQueryID, language.Japanese)
	task.Start()
	if err := task.Execute(ctx); err != nil {
		return err
	}

	_, err = fmt.Fprintln(os.Stdout, task.Result)
	return err
}

func serve(appCfg *cfg.Cfg, client tasks.APIClient, rules *ngavoid.RuleSet, settings ngavoid.Settings, roomQueryID string) error {
	if !appCfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	scheduler := tasks.NewScheduler(appCfg.WorkerCount, tasks.DefaultTaskTimeout)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(client, rules, settings, roomQueryID, language.Japanese, scheduler)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: tasks.DefaultTaskTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "workers", appCfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Post Copy shutdown complete")
	return runErr
}
