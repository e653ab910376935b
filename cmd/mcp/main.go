// Command mcp serves stored symbols to AI agents over MCP on stdin/stdout.
// It opens the same store as the server, configured from the environment.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wattline/wattline/backend-go/internal/config"
	mcpserver "github.com/wattline/wattline/backend-go/internal/mcp"
	"github.com/wattline/wattline/backend-go/internal/store"
	"github.com/wattline/wattline/backend-go/internal/symbol"
)

func main() {
	// stdout carries the protocol, so logs go to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(ctx, store.Options{
		Driver:      cfg.StoreDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		slog.Error("open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := symbol.NewService(st)
	svc.SetEditorDefaults(cfg.HistoryLimit, cfg.GridSize)

	if err := mcpserver.New(svc).ServeStdio(); err != nil {
		slog.Error("mcp server", "error", err)
		os.Exit(1)
	}
}
