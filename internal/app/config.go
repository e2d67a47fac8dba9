package app

import "fmt"

// Config holds the startup options collected by the entrypoint. Empty fields
// defer to the configuration file.
type Config struct {
	ConfigPath string // hcl file
	EnvFile    string // KEY=VALUE file loaded before the config file

	LogFormat       string
	LogLevel        string
	HealthcheckPort int // -1 leaves the file value
	BusKind         string
	BusURL          string
}

// NewConfig checks the options that cannot be validated against the file.
// Everything else is validated after merging, see config.Config.Validate.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.HealthcheckPort < -1 {
		return nil, fmt.Errorf("invalid healthcheck port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
