package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/blackhelm/tradefloor/internal/config"
	"github.com/blackhelm/tradefloor/internal/domain"
	"github.com/blackhelm/tradefloor/internal/engine"
	"github.com/blackhelm/tradefloor/internal/handler"
	"github.com/blackhelm/tradefloor/internal/service"
	"github.com/blackhelm/tradefloor/internal/sim"
	"github.com/blackhelm/tradefloor/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// A local .env overrides nothing that is already exported.
	_ = godotenv.Load()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Stores.
	playerStore := store.NewPlayerStore()
	orderStore := store.NewOrderStore()
	ledger := store.NewTradeLedger()

	// Symbols come from config; a submission outside this set is rejected.
	symbols := domain.NewSymbolRegistry()
	for sym := range cfg.Symbols {
		symbols.Register(sym)
	}

	// Engine.
	books := engine.NewBookManager()
	ids := engine.NewIDAllocator()
	matcher := engine.NewMatcher(books, ids, orderStore, ledger, symbols)

	// Live trade stream.
	hub := handler.NewHub(logger)

	// Services.
	orderSvc := service.NewOrderService(matcher, playerStore, orderStore, hub)
	marketSvc := service.NewMarketService(ledger, books, symbols, cfg.Symbols)
	playerSvc := service.NewPlayerService(playerStore, orderStore, ledger, marketSvc, cfg.StartingCash)

	// Simulation. The seed is configurable so game sessions can be replayed.
	seed := cfg.SimSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	botRng := rand.New(rand.NewSource(seed))
	macroRng := rand.New(rand.NewSource(seed + 1))

	bots := sim.NewBotManager(cfg.BotInterval, cfg.BotPriceBand, orderSvc, playerSvc, marketSvc, symbols, botRng, logger)
	macro := sim.NewMacroEventManager(cfg.MacroInterval, cfg.MacroMaxImpact, marketSvc, []sim.MacroEvent{
		{Date: "monthly", Name: "Federal Reserve Meeting", Impact: "volatility"},
	}, macroRng, logger)

	// Router.
	router := handler.NewRouter(orderSvc, playerSvc, marketSvc, bots, macro, hub, logger)

	// Start background goroutines with a cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)
	bots.Start(ctx)
	macro.Start(ctx)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.Int64("sim_seed", seed),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops sim goroutines).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
