// Command recount rebuilds every song's materialized vote count from the vote
// rows. The counters are maintained transactionally on each cast; this job is
// the repair path after manual data fixes or suspected drift.
package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

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
	aggregateRepo := postgres.NewAggregateRepository(db)
	recountService := services.NewRecountService(setlistRepo, aggregateRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("starting vote recount")

	if err := recountService.RecountAll(ctx); err != nil {
		logger.Error("recount failed", "error", err)
		os.Exit(1)
	}

	logger.Info("vote recount completed")
}
