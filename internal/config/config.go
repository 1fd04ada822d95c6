// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
)

// Config holds all application configuration
type Config struct {
	Port      string `env:"PORT"       envDefault:"8000"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// CatalogFile overrides the embedded indicator catalog when set.
	CatalogFile string `env:"CATALOG_FILE"`

	// NotFoundStatus is the HTTP status sent with the not-found body.
	NotFoundStatus int `env:"NOT_FOUND_STATUS" envDefault:"404"`

	Upstream  UpstreamConfig  `envPrefix:"UPSTREAM_"`
	WorldBank WorldBankConfig `envPrefix:"WORLDBANK_"`
	BCB       BCBConfig       `envPrefix:"BCB_"`
}

// UpstreamConfig holds settings shared by both upstream sources
type UpstreamConfig struct {
	Timeout  time.Duration `env:"TIMEOUT"  envDefault:"15s"`
	Coalesce bool          `env:"COALESCE" envDefault:"false"`
}

// WorldBankConfig holds World Bank API configuration
type WorldBankConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.worldbank.org/v2"`
	PerPage int    `env:"PER_PAGE" envDefault:"60"`
}

// BCBConfig holds Banco Central SGS API configuration
type BCBConfig struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://api.bcb.gov.br/dados/serie"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.Port == "" {
		errs = multierror.Append(errs, fmt.Errorf("PORT must not be empty"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %s", c.Upstream.Timeout))
	}
	if c.NotFoundStatus != http.StatusOK && c.NotFoundStatus != http.StatusNotFound {
		errs = multierror.Append(errs, fmt.Errorf("NOT_FOUND_STATUS must be 200 or 404, got %d", c.NotFoundStatus))
	}
	if c.WorldBank.PerPage <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("WORLDBANK_PER_PAGE must be positive, got %d", c.WorldBank.PerPage))
	}
	if c.WorldBank.BaseURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("WORLDBANK_BASE_URL must not be empty"))
	}
	if c.BCB.BaseURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("BCB_BASE_URL must not be empty"))
	}
	return errs.ErrorOrNil()
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Port
}
