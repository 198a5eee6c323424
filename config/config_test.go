package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_URL", "")
	t.Setenv("LISTEN_ADDR", "")
	t.Setenv("DEBUG", "")

	cfg := Load()
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.False(t, cfg.Debug)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_URL", "https://alias.example.com")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DEBUG", "true")

	cfg := Load()
	assert.Equal(t, "https://alias.example.com", cfg.ServerURL)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.True(t, cfg.Debug)
}

func TestBases(t *testing.T) {
	tests := []struct {
		desc    string
		server  string
		wantAPI string
		wantWS  string
	}{
		{
			desc:    "plain http",
			server:  "http://localhost:8000",
			wantAPI: "http://localhost:8000/api",
			wantWS:  "ws://localhost:8000/api",
		},
		{
			desc:    "https goes to wss",
			server:  "https://alias.example.com",
			wantAPI: "https://alias.example.com/api",
			wantWS:  "wss://alias.example.com/api",
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := Config{ServerURL: tc.server}
			assert.Equal(t, tc.wantAPI, cfg.APIBase())
			assert.Equal(t, tc.wantWS, cfg.WSBase())
		})
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("FLAG", "1")
	assert.True(t, envBool("FLAG"))

	t.Setenv("FLAG", "banana")
	assert.False(t, envBool("FLAG"))

	t.Setenv("FLAG", "false")
	assert.False(t, envBool("FLAG"))
}
