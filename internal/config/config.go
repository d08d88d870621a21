package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/stellar/go/strkey"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	HorizonURL        string `envconfig:"PISWEEP_HORIZON_URL" default:"https://api.mainnet.minepi.com"`
	NetworkPassphrase string `envconfig:"PISWEEP_NETWORK_PASSPHRASE" default:"Pi Network"`

	// SafeAddress is the fixed destination every forwarded payment goes to.
	SafeAddress string `envconfig:"PISWEEP_SAFE_ADDRESS"`

	// MnemonicFile / SponsorMnemonicFile enable headless startup. When
	// MnemonicFile is empty the phrases are prompted for interactively.
	MnemonicFile        string `envconfig:"PISWEEP_MNEMONIC_FILE"`
	SponsorMnemonicFile string `envconfig:"PISWEEP_SPONSOR_MNEMONIC_FILE"`

	// DryRun builds and signs transactions but never submits them.
	DryRun bool `envconfig:"PISWEEP_DRY_RUN" default:"false"`

	DBPath   string `envconfig:"PISWEEP_DB_PATH" default:"./data/pisweep.sqlite"`
	Port     int    `envconfig:"PISWEEP_PORT" default:"8080"`
	LogLevel string `envconfig:"PISWEEP_LOG_LEVEL" default:"info"`
	LogDir   string `envconfig:"PISWEEP_LOG_DIR" default:"./logs"`

	BaseReserve string `envconfig:"PISWEEP_BASE_RESERVE" default:"0.5"`
}

// Load reads configuration from .env file (if present) then from environment variables.
// Environment variables override .env values.
func Load() (*Config, error) {
	// godotenv does NOT override already-set env vars, so real environment
	// variables take precedence over .env values.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			slog.Warn("failed to load .env file", "error", err)
		} else {
			slog.Info("loaded .env file")
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks configuration values for correctness.
func (c *Config) Validate() error {
	if c.HorizonURL == "" {
		return fmt.Errorf("%w: horizon URL must not be empty", ErrInvalidConfig)
	}
	if c.NetworkPassphrase == "" {
		return fmt.Errorf("%w: network passphrase must not be empty", ErrInvalidConfig)
	}
	if c.SafeAddress == "" {
		return fmt.Errorf("%w: safe address must be set", ErrInvalidConfig)
	}
	if !strkey.IsValidEd25519PublicKey(c.SafeAddress) && !strkey.IsValidMuxedAccountEd25519PublicKey(c.SafeAddress) {
		return fmt.Errorf("%w: safe address %q is not a valid account address", ErrInvalidConfig, c.SafeAddress)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port must be 1-65535, got %d", ErrInvalidConfig, c.Port)
	}

	reserve, err := decimal.NewFromString(c.BaseReserve)
	if err != nil {
		return fmt.Errorf("%w: base reserve %q is not a decimal: %s", ErrInvalidConfig, c.BaseReserve, err)
	}
	if reserve.Sign() <= 0 {
		return fmt.Errorf("%w: base reserve must be positive, got %s", ErrInvalidConfig, reserve)
	}

	return nil
}

// BaseReserveAmount returns the configured base reserve as a decimal.
// Validate must have succeeded first.
func (c *Config) BaseReserveAmount() decimal.Decimal {
	return decimal.RequireFromString(c.BaseReserve)
}
