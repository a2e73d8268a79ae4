package integration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	apphttp "github.com/setvote/api/internal/adapters/handler/http"
	"github.com/setvote/api/internal/adapters/notifier/memory"
	pgrepo "github.com/setvote/api/internal/adapters/repository/postgres"
	"github.com/setvote/api/internal/core/ports"
	"github.com/setvote/api/internal/core/services"
)

const testJWTSecret = "test-secret"

type TestApp struct {
	Server      *httptest.Server
	DB          *sql.DB
	Hub         *memory.Hub
	SetlistRepo ports.SetlistRepository
	Aggregates  ports.VoteAggregateReader

	container testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func applyMigrations(db *sql.DB) error {
	dirPath := "../../internal/adapters/repository/postgres/migrations"

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "up.sql") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", entry.Name(), err)
		}
	}

	return nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	container, connStr, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	require.NoError(t, applyMigrations(db))

	logger := slog.New(slog.DiscardHandler)

	setlistRepo := pgrepo.NewSetlistRepository(db)
	voteRepo := pgrepo.NewVoteRepository(db)
	aggregateRepo := pgrepo.NewAggregateRepository(db)

	hub := memory.NewHub(16)
	limiter := services.NewStoreRateLimiter(voteRepo, services.RateLimiterConfig{
		UserLimit:  60,
		UserWindow: time.Hour,
		GuestLimit: 1,
	})

	catalogService := services.NewCatalogService(setlistRepo)
	voteService := services.NewVoteService(setlistRepo, voteRepo, aggregateRepo, limiter, hub, logger)

	handler := apphttp.NewHandler(
		apphttp.NewIdentityResolver([]byte(testJWTSecret)),
		apphttp.NewVoteHandler(voteService, logger),
		apphttp.NewSetlistHandler(catalogService, voteService, logger),
		apphttp.NewStreamHandler(hub, logger),
	)

	return &TestApp{
		Server:      httptest.NewServer(handler),
		DB:          db,
		Hub:         hub,
		SetlistRepo: setlistRepo,
		Aggregates:  aggregateRepo,
		container:   container,
	}
}

func newRecountService(app *TestApp) ports.RecountService {
	return services.NewRecountService(app.SetlistRepo, app.Aggregates)
}

func (app *TestApp) Teardown(t *testing.T) {
	t.Helper()
	app.Server.Close()
	require.NoError(t, app.DB.Close())
	require.NoError(t, app.container.Terminate(context.Background()))
}

func userToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(15 * time.Minute).Unix(),
		"iat": time.Now().Unix(),
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signedToken
}
