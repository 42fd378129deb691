package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/totalfitness/kiosk-dispatch/internal/api"
	"github.com/totalfitness/kiosk-dispatch/internal/calllog"
	"github.com/totalfitness/kiosk-dispatch/internal/config"
	"github.com/totalfitness/kiosk-dispatch/internal/dispatch"
	"github.com/totalfitness/kiosk-dispatch/internal/metrics"
	"github.com/totalfitness/kiosk-dispatch/internal/push"
	"github.com/totalfitness/kiosk-dispatch/internal/storage"
	"github.com/totalfitness/kiosk-dispatch/internal/voice"
	"github.com/totalfitness/kiosk-dispatch/internal/websocket"
	"github.com/totalfitness/kiosk-dispatch/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("kiosk", cfg.KioskName).
		Msg("starting kiosk dispatch server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create WebSocket hub for staff connections
	hub := websocket.NewHub(log.Logger)
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Create call log over the configured backing store
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize call log store")
	}
	callLog := calllog.New(store, log.Logger)

	// Create push notifier and token registry
	tokens := push.NewTokenRegistry(cfg.PushTokensPath, log.Logger)
	notifier := push.NewExpoNotifier(cfg.ExpoPushURL, cfg.KioskName, tokens, log.Logger)

	// Create voice dialer and dispatch coordinator
	dialer := voice.NewTwilioDialer(cfg, log.Logger)
	tracker := dispatch.NewResolutionTracker()
	coordinator := dispatch.NewCoordinator(dialer, notifier, hub, tracker, callLog, cfg.KioskName, log.Logger)

	handler := api.NewHandler(coordinator, callLog, tokens, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Routes
	r.Get("/", rootHandler)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Handler)
	r.Get("/ws", wsHandler.ServeHTTP)
	r.Get("/logs", handler.Logs)
	r.Post("/start-call", handler.StartCall)
	r.Post("/call-response", handler.CallResponse)
	r.Post("/voice", handler.Voice)
	r.Post("/register-token", handler.RegisterToken)
	r.Post("/unregister-token", handler.UnregisterToken)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// rootHandler answers the plain-text liveness probe
func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Kiosk dispatch server with WebSocket + Expo push is running.")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"kiosk-dispatch"}`)
}
