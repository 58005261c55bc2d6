package engine

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/domain"
	"github.com/saltpin/saltpin/internal/core/salt"
)

// =============================================================================
// Collaborator Interfaces
// =============================================================================
//
// The orchestrator consumes these as opaque services. Production
// implementations sit behind transaction submission and RPC; the simchain
// package provides an in-memory implementation of all of them.

// FactoryService is the pre-verified deterministic-address factory on the
// target environment. An implementation knows its own on-chain identity;
// PredictAddress is a pure view over (guarded salt, factory identity).
type FactoryService interface {
	// PredictAddress computes the address a guarded salt resolves to,
	// without deploying anything.
	PredictAddress(guarded salt.GuardedSalt) (common.Address, error)

	// Instantiate performs the two-stage deterministic creation. The
	// factory applies its own guard transform to the raw salt.
	Instantiate(s salt.Salt, bytecode []byte, value *big.Int) (common.Address, error)

	// InstantiateAndInit performs Instantiate plus an initialization call,
	// atomically.
	InstantiateAndInit(s salt.Salt, bytecode, initData []byte, value, initValue *big.Int) (common.Address, error)
}

// ChainState exposes the read-only environment state the orchestrator needs.
type ChainState interface {
	// HasCode reports whether code already exists at an address.
	HasCode(addr common.Address) bool
}

// TrialEnvironment supports reversible throwaway instantiations used for
// version extraction. Create returns the zero address when creation fails.
type TrialEnvironment interface {
	Snapshot() uint64
	RevertTo(id uint64) bool
	Create(bytecode []byte, value *big.Int) (common.Address, error)

	// CallVersion makes the artifact's mandatory no-argument, side-effect
	// free report-version call.
	CallVersion(addr common.Address) (string, error)

	// Balance is the funds available to the trial executor.
	Balance() *big.Int
}

// BroadcastSession is an open transaction-submission session. Trials must
// never be broadcast, so the session is suspended around them. Resume can
// only restore a public signer address, not a private credential: sessions
// backed by interactive or hardware signers will not survive a suspend,
// which is a known limitation.
type BroadcastSession interface {
	Active() bool
	Sender() common.Address
	Suspend()
	Resume(sender common.Address)
}

// VerificationWriter prepares auxiliary verification artifacts for a
// deployment. Failures are recoverable: the deployment proceeds and the
// verification step is skipped with a warning.
type VerificationWriter interface {
	Write(path, version string, addr common.Address, payload domain.CreationPayload) error
}
