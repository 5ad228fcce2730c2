package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"

	"github.com/lox/pokerdealer/internal/auth"
	"github.com/lox/pokerdealer/internal/dealer"
	"github.com/lox/pokerdealer/internal/handlog"
	"github.com/lox/pokerdealer/internal/service"
	"github.com/lox/pokerdealer/internal/store"
)

// Config is the complete pokerdealer.hcl configuration.
type Config struct {
	Server  ServerSettings
	Dealer  DealerSettings
	Store   StoreSettings
	Auth    AuthSettings
	HandLog HandLogSettings
}

// ServerSettings contains listener and logging configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogJSON  bool   `hcl:"log_json,optional"`
}

// DealerSettings selects how hands are dealt and disclosed
type DealerSettings struct {
	Owner             string `hcl:"owner,optional"`
	Discipline        string `hcl:"discipline,optional"`
	Shuffle           string `hcl:"shuffle,optional"`
	ShowdownRetention string `hcl:"showdown_retention,optional"`
}

// StoreSettings picks the persistence backend
type StoreSettings struct {
	Backend string `hcl:"backend,optional"`
	Path    string `hcl:"path,optional"`
}

// AuthSettings configures caller verification
type AuthSettings struct {
	Mode         string `hcl:"mode,optional"`
	PermitName   string `hcl:"permit_name,optional"`
	AllowedToken string `hcl:"allowed_token,optional"`
	ChainID      string `hcl:"chain_id,optional"`
	Permission   string `hcl:"permission,optional"`
	URL          string `hcl:"url,optional"`
	AdminSecret  string `hcl:"admin_secret,optional"`
}

// HandLogSettings configures the previous-hand log output
type HandLogSettings struct {
	Dir string `hcl:"dir,optional"`
}

type fileConfig struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Dealer  *DealerSettings  `hcl:"dealer,block"`
	Store   *StoreSettings   `hcl:"store,block"`
	Auth    *AuthSettings    `hcl:"auth,block"`
	HandLog *HandLogSettings `hcl:"hand_log,block"`
}

const (
	AuthModePermit   = "permit"
	AuthModeHTTP     = "http"
	AuthModeInsecure = "insecure"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Dealer: DealerSettings{
			Discipline:        "progressive",
			Shuffle:           "seeded",
			ShowdownRetention: "retain",
		},
		Store: StoreSettings{
			Backend: store.BackendBolt,
			Path:    "pokerdealer.db",
		},
		Auth: AuthSettings{
			Mode:         AuthModePermit,
			PermitName:   "query_cards",
			AllowedToken: "pokerdealer",
			Permission:   auth.DefaultPermission,
		},
		HandLog: HandLogSettings{Dir: "hands"},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields the
// defaults; omitted blocks and attributes keep their default values.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(filename); errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if fc.Server != nil {
		cfg.Server = *fc.Server
		orDefault(&cfg.Server.Address, defaults.Server.Address)
		orDefault(&cfg.Server.LogLevel, defaults.Server.LogLevel)
		if cfg.Server.Port == 0 {
			cfg.Server.Port = defaults.Server.Port
		}
	}
	if fc.Dealer != nil {
		cfg.Dealer = *fc.Dealer
		orDefault(&cfg.Dealer.Discipline, defaults.Dealer.Discipline)
		orDefault(&cfg.Dealer.Shuffle, defaults.Dealer.Shuffle)
		orDefault(&cfg.Dealer.ShowdownRetention, defaults.Dealer.ShowdownRetention)
	}
	if fc.Store != nil {
		cfg.Store = *fc.Store
		orDefault(&cfg.Store.Backend, defaults.Store.Backend)
		if cfg.Store.Backend != store.BackendMemory {
			orDefault(&cfg.Store.Path, defaults.Store.Path)
		}
	}
	if fc.Auth != nil {
		cfg.Auth = *fc.Auth
		orDefault(&cfg.Auth.Mode, defaults.Auth.Mode)
		orDefault(&cfg.Auth.PermitName, defaults.Auth.PermitName)
		orDefault(&cfg.Auth.AllowedToken, defaults.Auth.AllowedToken)
		orDefault(&cfg.Auth.Permission, defaults.Auth.Permission)
	}
	if fc.HandLog != nil {
		cfg.HandLog = *fc.HandLog
	}

	return cfg, nil
}

func orDefault(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := c.ServiceConfig(); err != nil {
		return err
	}
	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile, store.BackendBolt:
		if c.Store.Path == "" {
			return fmt.Errorf("store backend %s needs a path", c.Store.Backend)
		}
	default:
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}
	switch c.Auth.Mode {
	case AuthModePermit, AuthModeInsecure:
	case AuthModeHTTP:
		if c.Auth.URL == "" {
			return fmt.Errorf("auth mode http needs a url")
		}
	default:
		return fmt.Errorf("invalid auth mode: %s", c.Auth.Mode)
	}
	return nil
}

// ListenAddress returns the full server address
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// ServiceConfig converts the dealer block.
func (c *Config) ServiceConfig() (service.Config, error) {
	var sc service.Config
	var err error
	if sc.Discipline, err = dealer.ParseDiscipline(c.Dealer.Discipline); err != nil {
		return sc, err
	}
	if sc.Shuffle, err = dealer.ParseShuffleMode(c.Dealer.Shuffle); err != nil {
		return sc, err
	}
	if sc.Retention, err = service.ParseRetention(c.Dealer.ShowdownRetention); err != nil {
		return sc, err
	}
	return sc, nil
}

// Validator builds the auth validator for the configured mode.
func (c *Config) Validator() (auth.Validator, error) {
	switch c.Auth.Mode {
	case AuthModePermit:
		return auth.NewPermitValidator(auth.PermitPolicy{
			PermitName:   c.Auth.PermitName,
			AllowedToken: c.Auth.AllowedToken,
			ChainID:      c.Auth.ChainID,
			Permission:   c.Auth.Permission,
		}), nil
	case AuthModeHTTP:
		return auth.NewHTTPValidator(c.Auth.URL, c.Auth.AdminSecret), nil
	case AuthModeInsecure:
		return auth.InsecureValidator{}, nil
	}
	return nil, fmt.Errorf("invalid auth mode: %s", c.Auth.Mode)
}

// OpenStore opens the configured backend.
func (c *Config) OpenStore() (store.Store, error) {
	return store.Open(c.Store.Backend, c.Store.Path)
}

// Recorder returns the hand log recorder. An empty dir logs hands without
// writing files.
func (c *Config) Recorder(logger zerolog.Logger) *handlog.Recorder {
	return handlog.NewRecorder(c.HandLog.Dir, logger)
}
