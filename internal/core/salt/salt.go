// Package salt derives deterministic deployment salts and replicates the
// factory service's internal salt-guard transform.
// This is part of the Functional Core - all functions are pure with no I/O.
//
// A salt binds a deployment to (deployer, version): the same pair always
// yields the same salt, and therefore the same address, on every chain.
package salt

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidSalt is returned when the policy flag byte is neither
	// CrossChainAllowed nor CrossChainProtected.
	ErrInvalidSalt = errors.New("invalid salt: unknown policy flag")
)

// InvalidSaltError reports which sender triggered the guard rejection.
type InvalidSaltError struct {
	Sender common.Address
	Flag   byte
}

func (e *InvalidSaltError) Error() string {
	return fmt.Sprintf("invalid salt for sender %s: policy flag 0x%02x", e.Sender.Hex(), e.Flag)
}

func (e *InvalidSaltError) Unwrap() error {
	return ErrInvalidSalt
}

// =============================================================================
// Salt Types
// =============================================================================

// PolicyFlag is the one-byte cross-chain policy embedded in every salt.
type PolicyFlag = byte

const (
	// CrossChainAllowed produces the same address on every chain for a
	// given (deployer, version) pair. This is the default.
	CrossChainAllowed PolicyFlag = 0x00

	// CrossChainProtected folds the chain ID into the guard, so the same
	// pair resolves to a different address on every chain.
	CrossChainProtected PolicyFlag = 0x01
)

// versionHashLen is how many bytes of the version hash fit after the
// deployer address and the policy flag: 32 - 20 - 1.
const versionHashLen = 11

// Salt is the raw 32-byte deployment salt:
// deployer address (20 bytes) ++ policy flag (1 byte) ++ truncated
// keccak256 of the version string (11 bytes).
type Salt [32]byte

// Deployer returns the deployer address embedded in the leading 20 bytes.
func (s Salt) Deployer() common.Address {
	return common.BytesToAddress(s[:common.AddressLength])
}

// Flag returns the embedded cross-chain policy flag byte.
func (s Salt) Flag() PolicyFlag {
	return s[common.AddressLength]
}

// Hex returns the salt as a 0x-prefixed hex string.
func (s Salt) Hex() string {
	return common.Hash(s).Hex()
}

// GuardedSalt is a salt after the factory service's disambiguation
// transform. It is what actually determines the final address.
type GuardedSalt common.Hash

// Hex returns the guarded salt as a 0x-prefixed hex string.
func (g GuardedSalt) Hex() string {
	return common.Hash(g).Hex()
}

// =============================================================================
// Derivation
// =============================================================================

// Derive computes the raw salt for a (deployer, version) pair.
//
// The policy flag is fixed at CrossChainAllowed so a version lands at the
// same address on every chain. Deterministic, no side effects.
//
// Example:
//
//	s := Derive(deployer, "1.0.0-Token")
//	s.Deployer() == deployer // true
func Derive(deployer common.Address, version string) Salt {
	var s Salt
	copy(s[:common.AddressLength], deployer.Bytes())
	s[common.AddressLength] = CrossChainAllowed
	h := crypto.Keccak256([]byte(version))
	copy(s[common.AddressLength+1:], h[:versionHashLen])
	return s
}

// =============================================================================
// Guard Transform
// =============================================================================

// Guard replicates the factory service's internal salt transform
// bit-for-bit, so addresses can be predicted without calling the factory.
//
// The transform disambiguates three cases on the salt's embedded identity:
//
//   - embedded == sender: the salt is sender-protected. With
//     CrossChainProtected the guard is keccak256(abi.encode(sender,
//     chainID, salt)); with CrossChainAllowed it is the cheap two-word
//     hash keccak256(pad32(sender) ++ salt). Any other flag byte is
//     rejected with InvalidSaltError.
//   - embedded == zero address: pseudo-random salts. CrossChainProtected
//     hashes (chainID, salt); CrossChainAllowed hashes the salt alone.
//     Any other flag byte is rejected.
//   - embedded == anyone else: the salt is treated as externally supplied
//     and already random, and is hashed alone regardless of the flag.
//
// sender must be the declared deployer identity, never an ambient
// transaction signer, so prediction is consistent whether or not a
// broadcast session is open.
func Guard(s Salt, sender common.Address, chainID *big.Int) (GuardedSalt, error) {
	embedded := s.Deployer()
	flag := s.Flag()

	switch {
	case embedded == sender:
		switch flag {
		case CrossChainProtected:
			return hashWords(addressWord(sender), chainWord(chainID), common.Hash(s)), nil
		case CrossChainAllowed:
			return hashWords(addressWord(sender), common.Hash(s)), nil
		default:
			return GuardedSalt{}, &InvalidSaltError{Sender: sender, Flag: flag}
		}

	case embedded == (common.Address{}):
		switch flag {
		case CrossChainProtected:
			return hashWords(chainWord(chainID), common.Hash(s)), nil
		case CrossChainAllowed:
			return hashWords(common.Hash(s)), nil
		default:
			return GuardedSalt{}, &InvalidSaltError{Sender: sender, Flag: flag}
		}

	default:
		// Externally supplied salt: assumed already random, hashed alone.
		return hashWords(common.Hash(s)), nil
	}
}

// hashWords keccak-hashes the concatenation of 32-byte words, matching the
// ABI encoding of static values the factory uses internally.
func hashWords(words ...common.Hash) GuardedSalt {
	buf := make([]byte, 0, len(words)*common.HashLength)
	for _, w := range words {
		buf = append(buf, w.Bytes()...)
	}
	return GuardedSalt(crypto.Keccak256Hash(buf))
}

// addressWord left-pads an address to a 32-byte word.
func addressWord(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

// chainWord encodes a chain ID as a 32-byte big-endian word.
func chainWord(chainID *big.Int) common.Hash {
	if chainID == nil {
		return common.Hash{}
	}
	return common.BigToHash(chainID)
}
