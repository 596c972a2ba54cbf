// Package bootstrap opens the service's connections and builds the Fiber app.
// cmd/api and the serverless entry point both start here.
package bootstrap

import (
	"errors"
	"os"
	"time"

	"bondbook-backend/internal/config"
	"bondbook-backend/internal/infrastructure/database"
	"bondbook-backend/internal/infrastructure/events"
	"bondbook-backend/internal/interfaces/router"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Runtime owns every long-lived connection behind the app.
type Runtime struct {
	Config *config.Config
	DB     *gorm.DB
	Rdb    *redis.Client
	App    *fiber.App

	closeEvents func() error
}

// SetupLogger configures the global zerolog logger: console output in
// development, JSON otherwise.
func SetupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// OpenDB connects to Postgres with the service's pool settings.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database url is not set for env " + cfg.Env)
	}
	return database.Open(cfg.DatabaseURL, database.Options{
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
}

// Open connects the database, Redis and the event publisher and builds the app.
func Open(cfg *config.Config) (*Runtime, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}
	rdb := redis.NewClient(opts)
	publisher, closeEvents := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)

	rt := &Runtime{Config: cfg, DB: db, Rdb: rdb, closeEvents: closeEvents}
	rt.App, err = router.CreateApp(cfg, router.Deps{DB: db, Rdb: rdb, Events: publisher})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	return rt, nil
}

// New loads config and returns a ready app; used by the serverless handler.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	SetupLogger(cfg)
	rt, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	return rt.App, nil
}

// Close releases the publisher, Redis and the database pool.
func (r *Runtime) Close() error {
	var errs []error
	if r.closeEvents != nil {
		errs = append(errs, r.closeEvents())
	}
	if r.Rdb != nil {
		errs = append(errs, r.Rdb.Close())
	}
	errs = append(errs, database.Close(r.DB))
	return errors.Join(errs...)
}
