package engine

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/domain"
	"github.com/saltpin/saltpin/internal/core/salt"
)

// =============================================================================
// Run Parameters
// =============================================================================

// RunParams are the values a strategy supplies at setup.
type RunParams struct {
	// Deployer is the identity salts are derived from.
	Deployer common.Address

	// Owner optionally declares who should own deployed artifacts. Zero
	// means "default": the deployer off production chains, the production
	// owner on them.
	Owner common.Address

	// ProdOwner receives ownership on production-grade chains. Must be
	// non-zero when deploying to one.
	ProdOwner common.Address

	// AllowedWriter is the only identity permitted to flush ledger files.
	AllowedWriter common.Address

	// Category partitions ledger files (e.g. "prod", "staging").
	Category string

	// ChainID is the target execution environment.
	ChainID uint64

	// MainnetChainIDs classifies which chains count as production-grade.
	// Must be non-empty.
	MainnetChainIDs []uint64

	// LedgerDir is where ledger files are read and written.
	LedgerDir string
}

// =============================================================================
// Strategy
// =============================================================================

// Strategy is the capability interface customizing a deployment run. Embed
// BaseStrategy to inherit the default hook behavior and implement only
// Params.
type Strategy interface {
	// Params supplies the run parameters. There is no usable default; a
	// missing strategy fails setup.
	Params() (RunParams, error)

	// Salt derives the raw deployment salt for a version.
	Salt(deployer common.Address, version string) salt.Salt

	// InitCall extracts the optional post-instantiation initialization
	// call from a payload.
	InitCall(p domain.CreationPayload) ([]byte, *big.Int)

	// VersionSuffix returns the environment-specific suffix appended to
	// extracted versions on the given chain, or "".
	VersionSuffix(chainID uint64) string

	// VerificationPath names where auxiliary verification artifacts for a
	// deployment should go.
	VerificationPath(name, version string) string
}

// BaseStrategy provides the documented default hook implementations:
// standard salt derivation, init call taken straight from the payload, no
// version suffix, and a "{name}/{version}" verification path.
type BaseStrategy struct{}

func (BaseStrategy) Salt(deployer common.Address, version string) salt.Salt {
	return salt.Derive(deployer, version)
}

func (BaseStrategy) InitCall(p domain.CreationPayload) ([]byte, *big.Int) {
	return p.InitData, p.InitValueOrZero()
}

func (BaseStrategy) VersionSuffix(chainID uint64) string {
	return ""
}

func (BaseStrategy) VerificationPath(name, version string) string {
	return fmt.Sprintf("%s/%s", name, version)
}

// StaticStrategy is a Strategy with fixed parameters and optional per-chain
// version suffixes. Used by the CLI and tests.
type StaticStrategy struct {
	BaseStrategy
	P        RunParams
	Suffixes map[uint64]string
}

func (s *StaticStrategy) Params() (RunParams, error) {
	return s.P, nil
}

func (s *StaticStrategy) VersionSuffix(chainID uint64) string {
	return s.Suffixes[chainID]
}
