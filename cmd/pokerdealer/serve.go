package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/lox/pokerdealer/cmd/pokerdealer/shared"
	"github.com/lox/pokerdealer/internal/entropy"
	"github.com/lox/pokerdealer/internal/server"
	"github.com/lox/pokerdealer/internal/service"
)

// ServeCmd runs the dealer
type ServeCmd struct {
	Config   string `kong:"default='pokerdealer.hcl',help='Path to HCL config file',type='path'"`
	Addr     string `kong:"help='Override listen address (host:port)'"`
	LogLevel string `kong:"help='Override log level (debug, info, warn, error)'"`
	Debug    bool   `kong:"help='Enable debug logging'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	level, err := shared.ParseLevel(cfg.Server.LogLevel, c.Debug)
	if err != nil {
		return err
	}
	var logger zerolog.Logger
	if cfg.Server.LogJSON {
		logger = shared.SetupStructuredLogger(level)
	} else {
		logger = shared.SetupLogger(level)
	}

	svcCfg, err := cfg.ServiceConfig()
	if err != nil {
		return err
	}
	validator, err := cfg.Validator()
	if err != nil {
		return err
	}
	st, err := cfg.OpenStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close store")
		}
	}()

	ctx := shared.SetupSignalHandlerWithLogger(logger)

	svc := service.New(logger, st, entropy.System{}, nil, svcCfg)
	svc.SetRecorder(cfg.Recorder(logger))

	if cfg.Dealer.Owner != "" {
		_, err := svc.Init(ctx, cfg.Dealer.Owner, cfg.Dealer.Owner)
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			logger.Warn().Str("owner", cfg.Dealer.Owner).Msg("Dealer already owned by another key, keeping it")
		case err != nil:
			return fmt.Errorf("initialize dealer: %w", err)
		}
	}

	handler, err := server.NewHandler(logger, svc, validator, nil)
	if err != nil {
		return err
	}

	addr := cfg.ListenAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger.Info().
		Str("address", addr).
		Str("discipline", svcCfg.Discipline.String()).
		Str("shuffle", cfg.Dealer.Shuffle).
		Str("retention", cfg.Dealer.ShowdownRetention).
		Str("store", cfg.Store.Backend).
		Str("auth", cfg.Auth.Mode).
		Msg("Starting dealer")

	return server.NewServer(addr, handler, logger).Run(ctx)
}
