// Package authz provides authorization decisions for deployment runs.
// This is part of the Functional Core - all functions are pure with no I/O.
package authz

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrZeroProdOwner is returned when a production-grade chain has no
	// configured ownership-transfer target.
	ErrZeroProdOwner = errors.New("production owner is the zero address")

	// ErrOwnerNotDeployer is returned when a non-production run declares
	// an owner other than the deployer.
	ErrOwnerNotDeployer = errors.New("owner does not match deployer")
)

// =============================================================================
// Ledger Writer Gate
// =============================================================================

// CanFlushLedger checks whether the actual writer identity is allowed to
// persist ledger files. Ledger files may be committed to shared storage, so
// speculative or local-simulation runs must never write them.
//
// Returns (true, "") if allowed, or (false, reason) if not.
func CanFlushLedger(actual, allowed common.Address) (bool, string) {
	if actual != allowed {
		return false, fmt.Sprintf("writer %s is not the allowed writer %s", actual.Hex(), allowed.Hex())
	}
	return true, ""
}

// =============================================================================
// Ownership Resolution
// =============================================================================

// IsProductionChain reports whether chainID is classified production-grade.
func IsProductionChain(chainID uint64, productionChains []uint64) bool {
	for _, id := range productionChains {
		if id == chainID {
			return true
		}
	}
	return false
}

// ResolveOwner determines who should own artifacts deployed in this run.
//
// On production-grade chains ownership transfers to the configured
// production owner, which must not be the zero address. Everywhere else the
// deployer keeps ownership: a declared owner other than the deployer (or
// zero, meaning "default") is a misconfiguration.
func ResolveOwner(chainID uint64, productionChains []uint64, deployer, declaredOwner, prodOwner common.Address) (common.Address, error) {
	if IsProductionChain(chainID, productionChains) {
		if prodOwner == (common.Address{}) {
			return common.Address{}, ErrZeroProdOwner
		}
		return prodOwner, nil
	}
	if declaredOwner != (common.Address{}) && declaredOwner != deployer {
		return common.Address{}, fmt.Errorf("%w: declared %s, deployer %s",
			ErrOwnerNotDeployer, declaredOwner.Hex(), deployer.Hex())
	}
	return deployer, nil
}
