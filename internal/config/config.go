package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"fragment-forge"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Game        Game
	Leaderboard Leaderboard
	CORS        CORS
}

// Postgres captures connection info for the session archive database.
// Optional: with no host configured the archive is disabled and finished
// runs live only in Redis and their exported documents.
type Postgres struct {
	Host     string `env:"PG_HOST"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
}

// Enabled reports whether an archive database is configured.
func (p Postgres) Enabled() bool {
	return p.Host != ""
}

// Redis holds session store + leaderboard configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and admin access.
type Security struct {
	SessionTokenSecret string `env:"SESSION_TOKEN_SECRET,notEmpty"`
	// bcrypt hash guarding admin endpoints; empty disables them.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

// Game groups gameplay runtime settings. QuestionsURL wins over
// QuestionsPath when both are set.
type Game struct {
	QuestionsURL  string        `env:"QUESTIONS_URL"`
	QuestionsPath string        `env:"QUESTIONS_PATH" envDefault:"data/questions.json"`
	FetchTimeout  time.Duration `env:"QUESTION_FETCH_TIMEOUT_SECONDS" envDefault:"4s"`
	BankCacheTTL  time.Duration `env:"QUESTION_BANK_CACHE_TTL" envDefault:"12h"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	TokenTTL      time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"168h"`
}

// Leaderboard governs standings behavior.
type Leaderboard struct {
	TopN     int           `env:"LEADERBOARD_TOP" envDefault:"50"`
	DailyTTL time.Duration `env:"LEADERBOARD_DAILY_TTL" envDefault:"48h"`
}

// CORS holds Cross-Origin Resource Sharing configuration for the browser
// client, which is served from a different origin than this API.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
