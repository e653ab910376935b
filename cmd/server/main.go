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

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wattline/wattline/backend-go/internal/asset"
	"github.com/wattline/wattline/backend-go/internal/auth"
	"github.com/wattline/wattline/backend-go/internal/config"
	"github.com/wattline/wattline/backend-go/internal/export"
	"github.com/wattline/wattline/backend-go/internal/live"
	mw "github.com/wattline/wattline/backend-go/internal/middleware"
	"github.com/wattline/wattline/backend-go/internal/store"
	"github.com/wattline/wattline/backend-go/internal/symbol"
	"github.com/wattline/wattline/backend-go/internal/typeid"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
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

	if p, ok := st.(store.Pruner); ok {
		c, err := store.StartPruning(ctx, p, cfg.PruneSchedule, cfg.SnapshotRetention)
		if err != nil {
			slog.Error("schedule pruning", "error", err)
			os.Exit(1)
		}
		defer c.Stop()
	}

	authService := auth.NewService(cfg.JWTSecret)

	hub := live.NewHub(st, live.Options{
		AutosaveDelay: cfg.AutosaveDelay,
		HistoryLimit:  cfg.HistoryLimit,
		GridSize:      cfg.GridSize,
		CanvasWidth:   cfg.CanvasWidth,
		CanvasHeight:  cfg.CanvasHeight,
	})
	go hub.Run()

	symbolService := symbol.NewService(st)
	symbolService.SetEditorDefaults(cfg.HistoryLimit, cfg.GridSize)
	symbolService.SetBusyCheck(hub.Busy)
	symbolHandler := symbol.NewHandler(symbolService)

	exportHandler := export.NewHandler(symbolService, cfg.CanvasWidth, cfg.CanvasHeight)
	assetHandler := asset.NewHandler(cfg.AssetDir, symbolService)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Stored SVG assets are public so exported previews can reference them
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", auth.Me).Methods("GET")
	api.HandleFunc("/templates", symbolHandler.Templates).Methods("GET")
	api.HandleFunc("/symbols", symbolHandler.List).Methods("GET")
	api.HandleFunc("/symbols", symbolHandler.Create).Methods("POST")
	api.HandleFunc("/symbols/{symbolId}", symbolHandler.Get).Methods("GET")
	api.HandleFunc("/symbols/{symbolId}", symbolHandler.Replace).Methods("PUT")
	api.HandleFunc("/symbols/{symbolId}/import", symbolHandler.Import).Methods("POST")
	api.HandleFunc("/symbols/{symbolId}/shapes", symbolHandler.Clear).Methods("DELETE")
	api.HandleFunc("/symbols/{symbolId}/export", exportHandler.Export).Methods("GET")
	api.HandleFunc("/symbols/{symbolId}/assets", assetHandler.Upload).Methods("POST")

	// WebSocket endpoint
	originPatterns := cfg.OriginPatterns()
	r.HandleFunc("/ws/symbols/{symbolId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, originPatterns)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to flush every open session
		slog.Info("saving open symbols...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "store", cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *live.Hub, authSvc *auth.Service, originPatterns []string) {
	symbolID := mux.Vars(r)["symbolId"]
	if err := typeid.Validate(symbolID, typeid.PrefixSymbol); err != nil {
		http.Error(w, "invalid symbol id", http.StatusBadRequest)
		return
	}

	// Browsers cannot set headers on the upgrade request, so the token
	// travels as a query parameter.
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := authSvc.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := live.NewClient(hub, conn, userID, symbolID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
