package engine

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// Setup errors: fatal, fix configuration before retrying.

	// ErrSetupNotOverridden is returned when no strategy was injected, so
	// the orchestrator has no run parameters to work with.
	ErrSetupNotOverridden = errors.New("no deployment strategy configured")

	// ErrSetupNotCalled is returned when a per-artifact operation runs
	// before Setup (or after Finalize).
	ErrSetupNotCalled = errors.New("setup not called")

	// ErrEmptyMainnetChainIDs is returned when the production-chain
	// classification list is empty.
	ErrEmptyMainnetChainIDs = errors.New("mainnet chain ID list is empty")

	// Identity errors: fatal per call, signal an unsafe operation.

	// ErrBroadcastSenderMismatch is returned when an open broadcast
	// session's sender differs from the captured deployer identity.
	ErrBroadcastSenderMismatch = errors.New("broadcast sender does not match deployer")

	// Version-extraction errors: fatal for the artifact, never retried.

	// ErrVersionExtraction is returned when the funds guard blocks a
	// trial instantiation before it is attempted.
	ErrVersionExtraction = errors.New("version extraction failed")

	// ErrMockDeployment is returned when the trial instantiation itself
	// cannot be created.
	ErrMockDeployment = errors.New("mock deployment failed")

	// ErrVersionCall is returned when the artifact's report-version call
	// fails or traps.
	ErrVersionCall = errors.New("version call failed")

	// ErrSnapshotRevert is returned when reverting the trial snapshot
	// fails. Fatal and never retried: state may be contaminated.
	ErrSnapshotRevert = errors.New("trial snapshot revert failed")

	// Deployment-consistency errors: fatal, indicate a derivation or
	// configuration bug.

	// ErrInitAmountWithoutInitData is returned when funds are earmarked
	// for an initialization call that has no calldata.
	ErrInitAmountWithoutInitData = errors.New("init amount earmarked without init data")
)

// AddressMismatchError reports a factory-returned address that differs from
// the predicted one. Since the factory is assumed correct, this signals a
// guard-replication bug or an unsafe caller-identity substitution.
type AddressMismatchError struct {
	Predicted common.Address
	Actual    common.Address
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("deployed address %s does not match predicted %s", e.Actual.Hex(), e.Predicted.Hex())
}
