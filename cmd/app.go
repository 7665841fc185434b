package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/parleyhq/parley/pkg/assistant"
	"github.com/parleyhq/parley/pkg/config"
	"github.com/parleyhq/parley/pkg/logger"
	"github.com/parleyhq/parley/pkg/registry"
	"github.com/parleyhq/parley/pkg/transport"
)

// App wires the engine components from configuration.
type App struct {
	Config    *config.Config
	Log       *logger.Leveled
	Gateway   transport.Gateway
	Responder *assistant.Responder
	Registry  *registry.Registry
}

func newApp() (*App, error) {
	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewFile(logger.ParseLevel(cfg.Logging.Level), cfg.Logging.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// The credential is read from viper on every call so a rotated
	// token is observed on the next request without restart.
	creds := transport.CredentialFunc(func() (string, error) {
		return viper.GetString("backend.token"), nil
	})

	gateway := transport.NewGraphQLGateway(cfg.Backend.URL, cfg.Backend.WSURL, creds, cfg.Backend.Timeout, log)

	responder := assistant.NewResponder(assistant.Config{
		APIKey:      cfg.OpenRouter.APIKey,
		Model:       cfg.OpenRouter.Model,
		MaxTokens:   cfg.OpenRouter.MaxTokens,
		Temperature: cfg.OpenRouter.Temperature,
		BaseURL:     cfg.OpenRouter.BaseURL,
		Timeout:     cfg.Backend.Timeout,
	}, log)

	reg := registry.New(gateway, log, time.Now().UnixNano())

	return &App{
		Config:    cfg,
		Log:       log,
		Gateway:   gateway,
		Responder: responder,
		Registry:  reg,
	}, nil
}

func (a *App) Close() {
	a.Log.Close()
}
