// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// ServerURL is the HTTP base of the backend, e.g. "http://localhost:8000".
	ServerURL string
	// ListenAddr is used by the built-in server mode.
	ListenAddr string
	// Debug switches zerolog to debug level.
	Debug bool
}

// Load reads the environment. A missing .env file is not an error.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	return Config{
		ServerURL:  envOr("SERVER_URL", "http://localhost:8000"),
		ListenAddr: envOr("LISTEN_ADDR", ":8000"),
		Debug:      envBool("DEBUG"),
	}
}

// APIBase is the HTTP API prefix.
func (c Config) APIBase() string {
	return c.ServerURL + "/api"
}

// WSBase rewrites the server URL to its websocket scheme.
func (c Config) WSBase() string {
	u := c.ServerURL
	switch {
	case len(u) >= 8 && u[:8] == "https://":
		u = "wss://" + u[8:]
	case len(u) >= 7 && u[:7] == "http://":
		u = "ws://" + u[7:]
	}
	return u + "/api"
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}
