package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration, read from environment
// variables (a .env file is loaded first by the cmd entrypoints).
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Votes    VoteConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT"    env-default:"0"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     env-default:"localhost"`
	Port     string `env:"POSTGRES_PORT"     env-default:"5432"`
	User     string `env:"POSTGRES_USER"     env-required:"true"`
	Password string `env:"POSTGRES_PASSWORD" env-required:"true"`
	Name     string `env:"POSTGRES_DB"       env-required:"true"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  env-default:"disable"`
}

// AuthConfig holds token verification settings. The service only verifies
// tokens; issuing them is the identity provider's job.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET" env-required:"true"`
}

// VoteConfig holds the vote quota policy and notifier tuning.
type VoteConfig struct {
	UserRateLimit    int64         `env:"VOTE_USER_RATE_LIMIT"    env-default:"60"`
	UserRateWindow   time.Duration `env:"VOTE_USER_RATE_WINDOW"   env-default:"1h"`
	GuestVoteLimit   int64         `env:"VOTE_GUEST_LIMIT"        env-default:"1"`
	SubscriberBuffer int           `env:"VOTE_SUBSCRIBER_BUFFER"  env-default:"16"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return &cfg, nil
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Addr is the host:port the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
