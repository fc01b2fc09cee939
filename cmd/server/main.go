// Command server runs the citation-sharing API.
//
// Configuration comes from the environment:
//
//	PORT                    HTTP port (default 8080)
//	DB_PATH                 SQLite file (default data/citewall.db)
//	JWT_SECRET              session signing secret, required;
//	                        generate with `openssl rand -hex 32`
//	DISCORD_CLIENT_ID       Discord OAuth application credentials
//	DISCORD_CLIENT_SECRET
//	DISCORD_CALLBACK_URL    defaults to http://localhost:$PORT/auth/discord/callback
//	COOKIE_SECURE           "true" when serving over HTTPS
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sakif/citewall/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr)
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	dbPath := "data/citewall.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(dbPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	callbackURL := os.Getenv("DISCORD_CALLBACK_URL")
	if callbackURL == "" {
		callbackURL = fmt.Sprintf("http://localhost:%d/auth/discord/callback", port)
	}

	cfg := server.Config{
		Port:                port,
		DBPath:              dbPath,
		JWTSecret:           jwtSecret,
		DiscordClientID:     os.Getenv("DISCORD_CLIENT_ID"),
		DiscordClientSecret: os.Getenv("DISCORD_CLIENT_SECRET"),
		DiscordCallbackURL:  callbackURL,
		CookieSecure:        os.Getenv("COOKIE_SECURE") == "true",
	}
	if cfg.DiscordClientID == "" {
		logger.Warn("DISCORD_CLIENT_ID not set, Discord login will fail")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
