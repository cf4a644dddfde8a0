// Package app wires configuration into the task manager, the extraction
// pipeline and the tool registry shared by both binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vthunder/taskdesk/internal/config"
	"github.com/vthunder/taskdesk/internal/extract"
	"github.com/vthunder/taskdesk/internal/integrations/notion"
	"github.com/vthunder/taskdesk/internal/llm"
	"github.com/vthunder/taskdesk/internal/logging"
	"github.com/vthunder/taskdesk/internal/mcp"
	"github.com/vthunder/taskdesk/internal/mcp/tools"
	"github.com/vthunder/taskdesk/internal/metrics"
	"github.com/vthunder/taskdesk/internal/tasks"
)

// Version is reported to MCP clients.
const Version = "0.3.0"

// App holds the wired services.
type App struct {
	Config *config.Config
	Notion *notion.Client
	Tasks  *tasks.Manager
	Email  *extract.Pipeline // nil when no completion key is configured
	Server *mcp.Server
}

// New validates cfg and builds every service from it.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nc, err := notion.NewClient(notion.Config{
		Token:   cfg.Notion.APIKey,
		BaseURL: cfg.Notion.BaseURL,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("notion client: %w", err)
	}
	manager := tasks.NewManager(nc, tasks.Options{
		DatabaseID:    cfg.Notion.DatabaseID,
		CurrentUser:   cfg.CurrentUser,
		Schema:        cfg.Schema,
		UserCacheSize: cfg.UserCacheSize,
		UserCacheTTL:  cfg.UserCacheTTL,
		CallTimeout:   cfg.HTTPTimeout,
	})

	a := &App{Config: cfg, Notion: nc, Tasks: manager}

	if cfg.EmailEnabled() {
		client, err := llm.NewClient(llm.Config{
			APIKey:  cfg.Groq.APIKey,
			BaseURL: cfg.Groq.BaseURL,
			Model:   cfg.Groq.Model,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("completion client: %w", err)
		}
		a.Email = extract.NewPipeline(client, extract.Options{})
		logging.Info("app", "email tools enabled (model %s)", cfg.Groq.Model)
	} else {
		logging.Info("app", "GROQ_API_KEY not set, email tools disabled")
	}

	a.Server = mcp.NewServer("taskdesk", Version)
	tools.RegisterAll(a.Server, &tools.Dependencies{
		Tasks:           manager,
		Email:           a.Email,
		DefaultAssignee: cfg.DefaultAssignee,
		OnToolCall: func(tool, status string) {
			logging.Debug("tools", "%s -> %s", tool, status)
		},
	})
	return a, nil
}

// ServeMetrics exposes /metrics on addr until ctx is done. An empty addr
// disables it.
func ServeMetrics(ctx context.Context, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		logging.Info("metrics", "serving on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("metrics", "server stopped: %v", err)
		}
	}()
}
