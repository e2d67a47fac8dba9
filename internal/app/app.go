package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/transithub/internal/config"
	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/specialistvlad/transithub/internal/metrics"
	"github.com/specialistvlad/transithub/internal/transport"
)

// DialFunc connects the message bus.
type DialFunc func(ctx context.Context, opts transport.Options) (transport.Bus, error)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     config.Config
	metrics    *metrics.Metrics
	dial       DialFunc
	httpServer *http.Server
}

// Option customizes an App.
type Option func(*App)

// WithBus makes the app use bus instead of dialing one from the config.
func WithBus(bus transport.Bus) Option {
	return func(a *App) {
		a.dial = func(context.Context, transport.Options) (transport.Bus, error) { return bus, nil }
	}
}

// NewApp is the constructor for the main application. It loads the env file
// and the config file, applies the entrypoint overrides, and builds an
// isolated logger.
func NewApp(outW io.Writer, appConfig *Config, opts ...Option) (*App, error) {
	// Config loading logs through a bootstrap logger until the real level is known.
	bootLogger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), bootLogger)

	if err := config.LoadEnvFile(ctx, appConfig.EnvFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyOverrides(&cfg, appConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.Logging.Level, cfg.Logging.Format, outW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		metrics: metrics.New(),
		dial:    transport.Dial,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// applyOverrides lets non-empty entrypoint options win over the file.
func applyOverrides(cfg *config.Config, o *Config) {
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.HealthcheckPort >= 0 {
		cfg.Healthcheck.Port = o.HealthcheckPort
	}
	if o.BusKind != "" {
		cfg.Bus.Kind = o.BusKind
	}
	if o.BusURL != "" {
		cfg.Bus.URL = o.BusURL
	}
}

// Config returns the resolved configuration.
func (a *App) Config() config.Config {
	return a.config
}

// Metrics returns the application's collectors. This is primarily for testing.
func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *App) busOptions() transport.Options {
	b := a.config.Bus
	return transport.Options{
		Kind:               b.Kind,
		URL:                b.URL,
		Namespace:          b.Namespace,
		QuestionEvent:      b.QuestionEvent,
		JudgeEvent:         b.JudgeEvent,
		ConnectTimeout:     b.ConnectTimeout,
		InsecureSkipVerify: b.InsecureSkipVerify,
	}
}
