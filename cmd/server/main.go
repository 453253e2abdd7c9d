package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bullion-backend/internal/config"
	"bullion-backend/internal/database"
	"bullion-backend/internal/logger"
	"bullion-backend/internal/server"
)

func main() {
	cfg := config.Load()
	lg := logger.New(cfg.AppEnv)
	slog.SetDefault(lg)

	database.Init(cfg)

	app, err := server.New(cfg, database.DB, lg)
	if err != nil {
		log.Fatal(err)
	}

	go func() {
		lg.Info("server listening", "port", cfg.HTTPPort, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		lg.Error("shutdown", "err", err)
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
