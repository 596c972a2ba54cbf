package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bondbook-backend/bootstrap"
	"bondbook-backend/internal/config"
	"bondbook-backend/internal/infrastructure/database"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load")
	}
	bootstrap.SetupLogger(cfg)

	rt, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Ping(ctx, rt.DB); err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	if err := rt.Rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	cancel()
	if err := database.AutoMigrate(rt.DB); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	log.Info().Str("env", cfg.Env).Str("ownership_source", cfg.OwnershipSource).Msg("postgres and redis connected")

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := rt.App.Listen(":" + cfg.Port); err != nil {
			log.Error().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), 15*time.Second)
	defer done()
	if err := rt.App.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := rt.Close(); err != nil {
		log.Error().Err(err).Msg("close connections")
	}
}
