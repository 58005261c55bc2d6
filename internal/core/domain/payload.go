package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// =============================================================================
// Creation Payload
// =============================================================================

// CreationPayload is the raw unit of deployment submitted to the
// orchestrator: creation bytecode (including encoded constructor
// arguments), funds earmarked for construction, and an optional
// post-instantiation initialization call.
type CreationPayload struct {
	// Bytecode is the full creation code of the artifact.
	Bytecode []byte

	// Value is the funds attached to the instantiation, in wei. Nil means
	// zero.
	Value *big.Int

	// InitData is the optional calldata for an initialization call made
	// atomically after instantiation. Empty means no init call.
	InitData []byte

	// InitValue is the funds attached to the init call. A non-zero
	// InitValue with empty InitData is a configuration fault.
	InitValue *big.Int
}

// ValueOrZero returns Value, or a zero big.Int when unset.
func (p CreationPayload) ValueOrZero() *big.Int {
	if p.Value == nil {
		return new(big.Int)
	}
	return p.Value
}

// InitValueOrZero returns InitValue, or a zero big.Int when unset.
func (p CreationPayload) InitValueOrZero() *big.Int {
	if p.InitValue == nil {
		return new(big.Int)
	}
	return p.InitValue
}

// =============================================================================
// Artifact Identity
// =============================================================================

// ArtifactIdentity is the content hash of a creation payload's bytecode.
// Identical payload bytes always yield the identical identity; it is stable
// for the lifetime of a process but never persisted across runs.
type ArtifactIdentity common.Hash

// Hex returns the identity as a 0x-prefixed hex string.
func (id ArtifactIdentity) Hex() string {
	return common.Hash(id).Hex()
}

// Identity computes the content hash of the payload's bytecode.
func (p CreationPayload) Identity() ArtifactIdentity {
	return ArtifactIdentity(crypto.Keccak256Hash(p.Bytecode))
}
