// Package create3 computes two-stage deterministic deployment addresses.
// This is part of the Functional Core - all functions are pure with no I/O.
//
// The factory service deploys a minimal fixed proxy via CREATE2 keyed by the
// guarded salt, and the proxy immediately deploys the real artifact via
// CREATE at nonce 1. The final address therefore depends only on the factory
// identity and the guarded salt, never on the artifact bytecode.
package create3

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/saltpin/saltpin/internal/core/salt"
)

// proxyInitCode is the fixed creation code of the minimal deployment proxy.
var proxyInitCode = []byte{
	0x67, 0x36, 0x3d, 0x3d, 0x37, 0x36, 0x3d, 0x34,
	0xf0, 0x3d, 0x52, 0x60, 0x08, 0x60, 0x18, 0xf3,
}

// proxyInitCodeHash is keccak256(proxyInitCode), precomputed once.
var proxyInitCodeHash = crypto.Keccak256(proxyInitCode)

// ProxyAddress computes the CREATE2 address of the intermediate proxy the
// factory deploys for a guarded salt.
func ProxyAddress(factory common.Address, guarded salt.GuardedSalt) common.Address {
	return crypto.CreateAddress2(factory, common.Hash(guarded), proxyInitCodeHash)
}

// Address computes the final artifact address: the CREATE address of the
// proxy at nonce 1.
//
// Example:
//
//	addr := Address(factoryAddr, guarded)
func Address(factory common.Address, guarded salt.GuardedSalt) common.Address {
	return crypto.CreateAddress(ProxyAddress(factory, guarded), 1)
}
