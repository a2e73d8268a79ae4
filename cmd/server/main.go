package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/setvote/api/internal/adapters/handler/http"
	"github.com/setvote/api/internal/adapters/notifier/memory"
	"github.com/setvote/api/internal/adapters/repository/postgres"
	"github.com/setvote/api/internal/config"
	"github.com/setvote/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger(cfg.Log)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	setlistRepo := postgres.NewSetlistRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	aggregateRepo := postgres.NewAggregateRepository(db)

	hub := memory.NewHub(cfg.Votes.SubscriberBuffer)
	limiter := services.NewStoreRateLimiter(voteRepo, services.RateLimiterConfig{
		UserLimit:  cfg.Votes.UserRateLimit,
		UserWindow: cfg.Votes.UserRateWindow,
		GuestLimit: cfg.Votes.GuestVoteLimit,
	})

	catalogService := services.NewCatalogService(setlistRepo)
	voteService := services.NewVoteService(setlistRepo, voteRepo, aggregateRepo, limiter, hub, logger)

	identity := http.NewIdentityResolver([]byte(cfg.Auth.JWTSecret))
	handler := http.NewHandler(
		identity,
		http.NewVoteHandler(voteService, logger),
		http.NewSetlistHandler(catalogService, voteService, logger),
		http.NewStreamHandler(hub, logger),
	)

	server := &stdhttp.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     handler,
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout stays zero: the SSE stream endpoint holds responses
		// open indefinitely.
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
