package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// =============================================================================
// Run Context
// =============================================================================

// RunContext carries the immutable, run-scoped values every component
// reads. Ambient state (signer identity, chain classification, version
// suffixes) is captured here once at setup instead of being looked up
// globally, which keeps the single-writer assumption auditable.
type RunContext struct {
	// RunID uniquely identifies this orchestration run.
	RunID string

	// Deployer is the identity on whose behalf salts are derived and
	// deployments are made. Distinct from any transient broadcast signer.
	Deployer common.Address

	// Owner is the resolved post-deployment owner of artifacts.
	Owner common.Address

	// ChainID identifies the target execution environment.
	ChainID uint64

	// Production reports whether the target chain is classified
	// production-grade.
	Production bool

	// Category names the deployment category (e.g. "prod", "staging");
	// ledger files are partitioned by it.
	Category string

	// VersionSuffix is the environment-specific suffix appended to every
	// extracted version before salt derivation. Empty for most chains.
	VersionSuffix string

	// StartedAt is when the run was set up, in UTC.
	StartedAt time.Time
}

// NewRunContext creates a run context with a fresh run ID and timestamp.
func NewRunContext(deployer, owner common.Address, chainID uint64, production bool, category, versionSuffix string) RunContext {
	return RunContext{
		RunID:         uuid.New().String(),
		Deployer:      deployer,
		Owner:         owner,
		ChainID:       chainID,
		Production:    production,
		Category:      category,
		VersionSuffix: versionSuffix,
		StartedAt:     time.Now().UTC(),
	}
}
