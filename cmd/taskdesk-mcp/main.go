package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vthunder/taskdesk/internal/app"
	"github.com/vthunder/taskdesk/internal/config"
	"github.com/vthunder/taskdesk/internal/logging"
)

func main() {
	// .env is optional; config.Load skips it when missing
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[taskdesk-mcp] config: %v\n", err)
		os.Exit(1)
	}

	// zap writes to stderr so stdout stays clean for JSON-RPC
	if err := logging.Init(cfg.Debug); err != nil {
		fmt.Fprintf(os.Stderr, "[taskdesk-mcp] logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	a, err := app.New(cfg)
	if err != nil {
		logging.Error("main", "startup failed: %v", err)
		logging.Sync()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.ServeMetrics(ctx, cfg.MetricsAddr)

	logging.Info("main", "serving %d tools over stdio (database %s)", len(a.Server.ToolNames()), cfg.Notion.DatabaseID)
	if err := a.Server.Run(); err != nil {
		logging.Error("main", "server error: %v", err)
		logging.Sync()
		os.Exit(1)
	}
}
