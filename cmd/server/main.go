package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/solmusic/studio/internal/app"
	"github.com/solmusic/studio/internal/config"
	"github.com/solmusic/studio/internal/db"
	"github.com/solmusic/studio/internal/handlers"
	"github.com/solmusic/studio/internal/web"
)

func main() {
	cfg := config.Load()

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync() //nolint:errcheck
	handlers.SetLogger(logger)

	if err := db.Init(cfg.DBPath); err != nil {
		logger.Fatal("db init", zap.Error(err))
	}

	r := web.Router()

	logger.Info("studio backend listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
