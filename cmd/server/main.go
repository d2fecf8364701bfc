package main

import (
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/notekeeper-app/notekeeper/internal/auth"
	"github.com/notekeeper-app/notekeeper/internal/config"
	"github.com/notekeeper-app/notekeeper/internal/db"
	"github.com/notekeeper-app/notekeeper/internal/handlers"
	"github.com/notekeeper-app/notekeeper/internal/store"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if cfg.UsingDefaultSecret() {
		log.Warn().Msg("SESSION_SECRET not set, using the insecure default; do not run this in production")
	}

	dbConn, err := db.Open(cfg.DBConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer dbConn.Close()

	st := store.New(dbConn)
	tokens := auth.NewTokenService(cfg.SessionSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	h, err := handlers.New(st, tokens, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize handlers")
	}

	r := h.Routes()
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir("./static"))))

	log.Info().Str("port", cfg.Port).Str("db", cfg.DBDriver).Msg("starting server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
