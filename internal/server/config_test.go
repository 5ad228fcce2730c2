package server

import (
	"context"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokerdealer/internal/auth"
	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/service"
	"github.com/lox/pokerdealer/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pokerdealer.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:8080", cfg.ListenAddress())
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
server {
  port     = 9090
  log_json = true
}

dealer {
  discipline         = "monotonic"
  shuffle            = "stream"
  showdown_retention = "delete"
}

store {
  backend = "memory"
}

auth {
  mode = "insecure"
}
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "localhost:9090", cfg.ListenAddress())
	assert.True(t, cfg.Server.LogJSON)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, store.BackendMemory, cfg.Store.Backend)
	assert.Empty(t, cfg.Store.Path)
	assert.Equal(t, "hands", cfg.HandLog.Dir, "omitted blocks keep defaults")

	sc, err := cfg.ServiceConfig()
	require.NoError(t, err)
	assert.Equal(t, service.Config{
		Discipline: dealer.Monotonic,
		Shuffle:    dealer.Streamed,
		Retention:  service.DeleteTables,
	}, sc)

	v, err := cfg.Validator()
	require.NoError(t, err)
	assert.IsType(t, auth.InsecureValidator{}, v)
}

func TestLoadConfigPermitPolicy(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
auth {
  mode          = "permit"
  permit_name   = "query_cards"
  allowed_token = "dealer"
  chain_id      = "secret-4"
}
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, auth.DefaultPermission, cfg.Auth.Permission, "permission defaults to owner")

	v, err := cfg.Validator()
	require.NoError(t, err)
	require.IsType(t, &auth.PermitValidator{}, v)

	_, key, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	sign := func(chain string, permissions ...string) string {
		token, err := auth.SignPermit(key, auth.PermitParams{
			PermitName:    "query_cards",
			AllowedTokens: []string{"dealer"},
			ChainID:       chain,
			Permissions:   permissions,
		})
		require.NoError(t, err)
		return token
	}

	_, err = v.Validate(context.Background(), sign("secret-4", "owner"))
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), sign("pulsar-3", "owner"))
	assert.ErrorIs(t, err, auth.ErrInvalidPermit)

	_, err = v.Validate(context.Background(), sign("secret-4", "balance"))
	assert.ErrorIs(t, err, auth.ErrInvalidPermit)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, `server { port = `))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, `server { colour = "red" }`))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown discipline", func(c *Config) { c.Dealer.Discipline = "whenever" }},
		{"unknown shuffle", func(c *Config) { c.Dealer.Shuffle = "riffle" }},
		{"unknown retention", func(c *Config) { c.Dealer.ShowdownRetention = "archive" }},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }},
		{"bolt without path", func(c *Config) { c.Store.Path = "" }},
		{"unknown auth mode", func(c *Config) { c.Auth.Mode = "trust-me" }},
		{"http auth without url", func(c *Config) { c.Auth.Mode = AuthModeHTTP }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
