package main

import (
	"net/http"
	"os"

	"blog_server_go/auth"
	"blog_server_go/config"
	"blog_server_go/controllers"
	"blog_server_go/data"

	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	db, err := data.InitDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	logger.Info().Str("path", cfg.DatabasePath).Msg("database ready")

	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenTTL)
	router := controllers.NewRouter(db, tokens, logger)

	logger.Info().Str("addr", cfg.Addr).Msg("starting server")
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
