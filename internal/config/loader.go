package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/specialistvlad/transithub/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error.
func LoadEnvFile(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			ctxlog.FromContext(ctx).Debug("No env file found, skipping.", "path", path)
			return nil
		}
		return fmt.Errorf("error accessing env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Env file loaded.", "path", path)
	return nil
}

// Load reads the HCL file at path on top of Default. An empty path returns
// the defaults.
func Load(ctx context.Context, path string) (Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Default()
	if path == "" {
		logger.Debug("No config file given, using defaults.")
		return cfg, cfg.Validate()
	}
	logger.Debug("Loading config file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, evalContext(), &root)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if err := root.applyTo(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	logger.Debug("Config file loaded.", "bus_kind", cfg.Bus.Kind, "healthcheck_port", cfg.Healthcheck.Port)
	return cfg, nil
}

// evalContext exposes the process environment as the env object.
func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func (r *fileRoot) applyTo(cfg *Config) error {
	if b := r.Bus; b != nil {
		setString(&cfg.Bus.Kind, b.Kind)
		setString(&cfg.Bus.URL, b.URL)
		setString(&cfg.Bus.Namespace, b.Namespace)
		setString(&cfg.Bus.QuestionEvent, b.QuestionEvent)
		setString(&cfg.Bus.JudgeEvent, b.JudgeEvent)
		if b.InsecureSkipVerify != nil {
			cfg.Bus.InsecureSkipVerify = *b.InsecureSkipVerify
		}
		if err := setDuration(&cfg.Bus.ConnectTimeout, "connect_timeout", b.ConnectTimeout); err != nil {
			return err
		}
		if err := setDuration(&cfg.Bus.ReplyTimeout, "reply_timeout", b.ReplyTimeout); err != nil {
			return err
		}
	}
	if l := r.Logging; l != nil {
		setString(&cfg.Logging.Level, l.Level)
		setString(&cfg.Logging.Format, l.Format)
	}
	if h := r.Healthcheck; h != nil && h.Port != nil {
		cfg.Healthcheck.Port = *h.Port
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, name string, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = d
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error

	switch c.Bus.Kind {
	case "socketio", "redis":
		if c.Bus.URL == "" {
			errs = append(errs, fmt.Errorf("bus url is required for kind %q", c.Bus.Kind))
		}
	case "loopback":
	default:
		errs = append(errs, fmt.Errorf("invalid bus kind %q: must be 'socketio', 'redis', or 'loopback'", c.Bus.Kind))
	}
	if c.Bus.QuestionEvent == "" || c.Bus.JudgeEvent == "" {
		errs = append(errs, errors.New("bus question_event and judge_event must not be empty"))
	}
	if c.Bus.ConnectTimeout < 0 || c.Bus.ReplyTimeout < 0 {
		errs = append(errs, errors.New("bus timeouts must not be negative"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.Logging.Level))
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.Logging.Format))
	}

	if c.Healthcheck.Port < 0 || c.Healthcheck.Port > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d is out of range", c.Healthcheck.Port))
	}

	return errors.Join(errs...)
}
