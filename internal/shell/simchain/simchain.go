// Package simchain is an in-memory deterministic execution environment.
//
// It implements every collaborator interface the engine consumes: the
// deterministic-address factory, chain state, a snapshot/revert trial
// environment, and a broadcast session. It backs the engine's tests and the
// CLI rehearsal mode; nothing in it touches a real network.
package simchain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/saltpin/saltpin/internal/core/create3"
	"github.com/saltpin/saltpin/internal/core/salt"
)

var (
	// ErrAlreadyDeployed is returned when the factory is asked to create
	// at an address that already has code.
	ErrAlreadyDeployed = errors.New("code already exists at target address")

	// ErrInsufficientFunds is returned when the executor cannot cover the
	// attached value.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Chain is a single simulated execution environment. Not safe for
// concurrent use, matching the engine's single-writer model.
type Chain struct {
	chainID  *big.Int
	factory  common.Address
	executor common.Address

	balances map[common.Address]*big.Int
	code     map[common.Address][]byte
	nonce    uint64

	// versions maps bytecode content hashes to the version string the
	// artifact reports. Unregistered bytecode has no report-version
	// capability and traps.
	versions map[common.Hash]string

	snapshots map[uint64]*snapshot
	nextSnap  uint64

	// initCalls records InstantiateAndInit calldata by address.
	initCalls map[common.Address][]byte

	// Instantiations counts factory creations, for idempotency assertions.
	Instantiations int

	// FailRevert forces RevertTo to report failure.
	FailRevert bool
}

type snapshot struct {
	balances map[common.Address]*big.Int
	code     map[common.Address][]byte
	nonce    uint64
}

// New creates a simulated chain. executor is the identity that calls the
// factory and funds trial instantiations.
func New(chainID uint64, factory, executor common.Address) *Chain {
	return &Chain{
		chainID:   new(big.Int).SetUint64(chainID),
		factory:   factory,
		executor:  executor,
		balances:  make(map[common.Address]*big.Int),
		code:      make(map[common.Address][]byte),
		versions:  make(map[common.Hash]string),
		snapshots: make(map[uint64]*snapshot),
		initCalls: make(map[common.Address][]byte),
	}
}

// RegisterArtifact declares that the given bytecode reports the given
// version string when instantiated and asked.
func (c *Chain) RegisterArtifact(bytecode []byte, version string) {
	c.versions[crypto.Keccak256Hash(bytecode)] = version
}

// SetBalance funds an account.
func (c *Chain) SetBalance(addr common.Address, amount *big.Int) {
	c.balances[addr] = new(big.Int).Set(amount)
}

// InitCalldata returns the init calldata recorded for an address, if any.
func (c *Chain) InitCalldata(addr common.Address) ([]byte, bool) {
	data, ok := c.initCalls[addr]
	return data, ok
}

// =============================================================================
// ChainState
// =============================================================================

// HasCode reports whether code exists at an address.
func (c *Chain) HasCode(addr common.Address) bool {
	return len(c.code[addr]) > 0
}

// =============================================================================
// FactoryService
// =============================================================================

// PredictAddress computes the two-stage deterministic address for a guarded
// salt, without deploying anything.
func (c *Chain) PredictAddress(guarded salt.GuardedSalt) (common.Address, error) {
	return create3.Address(c.factory, guarded), nil
}

// Instantiate applies the factory's guard transform to the raw salt and
// performs the two-stage creation.
func (c *Chain) Instantiate(s salt.Salt, bytecode []byte, value *big.Int) (common.Address, error) {
	guarded, err := salt.Guard(s, c.executor, c.chainID)
	if err != nil {
		return common.Address{}, err
	}
	addr := create3.Address(c.factory, guarded)
	if c.HasCode(addr) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrAlreadyDeployed, addr.Hex())
	}
	if err := c.spend(value); err != nil {
		return common.Address{}, err
	}
	c.code[addr] = bytecode
	c.Instantiations++
	return addr, nil
}

// InstantiateAndInit performs Instantiate plus an initialization call,
// atomically: a failed init undoes the creation.
func (c *Chain) InstantiateAndInit(s salt.Salt, bytecode, initData []byte, value, initValue *big.Int) (common.Address, error) {
	addr, err := c.Instantiate(s, bytecode, value)
	if err != nil {
		return common.Address{}, err
	}
	if err := c.spend(initValue); err != nil {
		delete(c.code, addr)
		c.Instantiations--
		return common.Address{}, err
	}
	c.initCalls[addr] = initData
	return addr, nil
}

func (c *Chain) spend(amount *big.Int) error {
	if amount == nil || amount.Sign() == 0 {
		return nil
	}
	bal := c.balanceOf(c.executor)
	if bal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds, amount, bal)
	}
	c.balances[c.executor] = new(big.Int).Sub(bal, amount)
	return nil
}

func (c *Chain) balanceOf(addr common.Address) *big.Int {
	if bal, ok := c.balances[addr]; ok {
		return bal
	}
	return new(big.Int)
}

// =============================================================================
// TrialEnvironment
// =============================================================================

// Snapshot captures the full mutable state and returns its id.
func (c *Chain) Snapshot() uint64 {
	id := c.nextSnap
	c.nextSnap++

	snap := &snapshot{
		balances: make(map[common.Address]*big.Int, len(c.balances)),
		code:     make(map[common.Address][]byte, len(c.code)),
		nonce:    c.nonce,
	}
	for addr, bal := range c.balances {
		snap.balances[addr] = new(big.Int).Set(bal)
	}
	for addr, code := range c.code {
		snap.code[addr] = code
	}
	c.snapshots[id] = snap
	return id
}

// RevertTo restores the state captured at id. Returns false for unknown
// ids or when FailRevert is set.
func (c *Chain) RevertTo(id uint64) bool {
	if c.FailRevert {
		return false
	}
	snap, ok := c.snapshots[id]
	if !ok {
		return false
	}
	c.balances = snap.balances
	c.code = snap.code
	c.nonce = snap.nonce
	delete(c.snapshots, id)
	return true
}

// Create performs a plain low-level creation by the executor. Returns the
// zero address on failure.
func (c *Chain) Create(bytecode []byte, value *big.Int) (common.Address, error) {
	if len(bytecode) == 0 {
		return common.Address{}, errors.New("empty creation bytecode")
	}
	if err := c.spend(value); err != nil {
		return common.Address{}, err
	}
	addr := crypto.CreateAddress(c.executor, c.nonce)
	c.nonce++
	c.code[addr] = bytecode
	return addr, nil
}

// CallVersion invokes the artifact's report-version capability. Bytecode
// that was never registered has no such capability and the call traps.
func (c *Chain) CallVersion(addr common.Address) (string, error) {
	code, ok := c.code[addr]
	if !ok {
		return "", fmt.Errorf("no code at %s", addr.Hex())
	}
	version, ok := c.versions[crypto.Keccak256Hash(code)]
	if !ok {
		return "", fmt.Errorf("version call reverted at %s", addr.Hex())
	}
	return version, nil
}

// Balance returns the funds available to the trial executor.
func (c *Chain) Balance() *big.Int {
	return new(big.Int).Set(c.balanceOf(c.executor))
}
