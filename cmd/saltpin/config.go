package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all CLI configuration.
type Config struct {
	Run    RunConfig    `mapstructure:"run"`
	Ledger LedgerConfig `mapstructure:"ledger"`
	Log    LogConfig    `mapstructure:"log"`
}

// RunConfig holds deployment-run configuration.
type RunConfig struct {
	// Deployer is the identity salts are derived from.
	Deployer string `mapstructure:"deployer"`

	// Owner optionally declares the artifact owner. Empty means default.
	Owner string `mapstructure:"owner"`

	// ProdOwner receives ownership on production-grade chains.
	ProdOwner string `mapstructure:"prod_owner"`

	// AllowedWriter is the only identity permitted to flush ledger files.
	AllowedWriter string `mapstructure:"allowed_writer"`

	// Category partitions ledger files.
	Category string `mapstructure:"category"`

	// ChainID is the target execution environment.
	ChainID uint64 `mapstructure:"chain_id"`

	// MainnetChainIDs classifies production-grade chains.
	MainnetChainIDs []uint64 `mapstructure:"mainnet_chain_ids"`

	// Factory is the deterministic-address factory service identity.
	Factory string `mapstructure:"factory"`

	// VersionSuffixes maps chain IDs (as decimal strings) to the suffix
	// appended to extracted versions on that chain.
	VersionSuffixes map[string]string `mapstructure:"version_suffixes"`
}

// LedgerConfig holds ledger persistence configuration.
type LedgerConfig struct {
	// Dir is where ledger files are read and written.
	Dir string `mapstructure:"dir"`

	// VerifyDir is where verification metadata goes. Empty disables it.
	VerifyDir string `mapstructure:"verify_dir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("run.category", "staging")
	v.SetDefault("run.chain_id", 31337)
	v.SetDefault("run.mainnet_chain_ids", []uint64{1})
	v.SetDefault("ledger.dir", "./ledgers")
	v.SetDefault("ledger.verify_dir", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("SALTPIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks address-valued fields that must parse when set.
func (c *Config) Validate() error {
	for name, val := range map[string]string{
		"run.deployer":       c.Run.Deployer,
		"run.owner":          c.Run.Owner,
		"run.prod_owner":     c.Run.ProdOwner,
		"run.allowed_writer": c.Run.AllowedWriter,
		"run.factory":        c.Run.Factory,
	} {
		if val != "" && !common.IsHexAddress(val) {
			return fmt.Errorf("%s: %q is not a valid address", name, val)
		}
	}
	return nil
}

// Address parses a configured hex address, returning the zero address for
// empty strings.
func Address(s string) common.Address {
	if s == "" {
		return common.Address{}
	}
	return common.HexToAddress(s)
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
