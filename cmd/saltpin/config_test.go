package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// LoadConfig Tests
// =============================================================================

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Run.Category)
	assert.Equal(t, uint64(31337), cfg.Run.ChainID)
	assert.Equal(t, []uint64{1}, cfg.Run.MainnetChainIDs)
	assert.Equal(t, "./ledgers", cfg.Ledger.Dir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saltpin.yaml")
	content := `
run:
  deployer: "0x1111111111111111111111111111111111111111"
  factory: "0xba5Ed099633D3B313e4D5F7bdc1305d3c28ba5Ed"
  category: prod
  chain_id: 1
  version_suffixes:
    "324": "-zksync"
ledger:
  dir: /tmp/ledgers
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Run.Category)
	assert.Equal(t, uint64(1), cfg.Run.ChainID)
	assert.Equal(t, "/tmp/ledgers", cfg.Ledger.Dir)
	assert.Equal(t, "-zksync", cfg.Run.VersionSuffixes["324"])
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saltpin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run: [not: valid"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Run.Category)
}

// =============================================================================
// Validate Tests
// =============================================================================

func TestValidate_EmptyAddressesAllowed(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ValidAddresses(t *testing.T) {
	cfg := &Config{}
	cfg.Run.Deployer = "0x1111111111111111111111111111111111111111"
	cfg.Run.Factory = "0xba5Ed099633D3B313e4D5F7bdc1305d3c28ba5Ed"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BadAddress(t *testing.T) {
	cfg := &Config{}
	cfg.Run.Deployer = "not-an-address"
	assert.Error(t, cfg.Validate())
}

func TestAddress_Empty(t *testing.T) {
	assert.Equal(t, common.Address{}, Address(""))
}

func TestAddress_Parses(t *testing.T) {
	assert.Equal(t,
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		Address("0x1111111111111111111111111111111111111111"))
}

// =============================================================================
// SetupLogger Tests
// =============================================================================

func TestSetupLogger_TextFormat(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "debug"
	cfg.Log.Format = "text"
	assert.NotNil(t, SetupLogger(cfg))
}

func TestSetupLogger_JSONFormat(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "warn"
	cfg.Log.Format = "json"
	assert.NotNil(t, SetupLogger(cfg))
}

func TestSetupLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	cfg := &Config{}
	cfg.Log.Level = "loud"
	assert.NotNil(t, SetupLogger(cfg))
}
