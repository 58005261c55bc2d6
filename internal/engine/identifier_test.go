package engine

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saltpin/saltpin/internal/core/domain"
	"github.com/saltpin/saltpin/internal/core/version"
	"github.com/saltpin/saltpin/internal/shell/simchain"
)

var (
	testFactory  = common.HexToAddress("0xba5Ed099633D3B313e4D5F7bdc1305d3c28ba5Ed")
	testDeployer = common.HexToAddress("0x1111111111111111111111111111111111111111")

	tokenBytecode = []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x01}
)

// countingTrial wraps a simulated chain to count trial creations.
type countingTrial struct {
	*simchain.Chain
	creates int
}

func (c *countingTrial) Create(bytecode []byte, value *big.Int) (common.Address, error) {
	c.creates++
	return c.Chain.Create(bytecode, value)
}

func newTokenChain(chainID uint64) *simchain.Chain {
	c := simchain.New(chainID, testFactory, testDeployer)
	c.SetBalance(testDeployer, big.NewInt(1_000_000))
	c.RegisterArtifact(tokenBytecode, "1.0.0-Token")
	return c
}

func newTrialChain() *simchain.Chain {
	return newTokenChain(1)
}

// =============================================================================
// Identify Tests
// =============================================================================

func TestIdentify_Success(t *testing.T) {
	ident := NewIdentifier(newTrialChain(), nil, nil)

	name, ver, err := ident.Identify(domain.CreationPayload{Bytecode: tokenBytecode})
	require.NoError(t, err)
	assert.Equal(t, "Token", name)
	assert.Equal(t, "1.0.0-Token", ver)
}

func TestIdentify_RevertsTrialSideEffects(t *testing.T) {
	chain := newTrialChain()
	ident := NewIdentifier(chain, nil, nil)

	before := chain.Balance()
	_, _, err := ident.Identify(domain.CreationPayload{
		Bytecode: tokenBytecode,
		Value:    big.NewInt(500),
	})
	require.NoError(t, err)

	assert.Equal(t, before, chain.Balance())
}

func TestIdentify_CachesByContentIdentity(t *testing.T) {
	trial := &countingTrial{Chain: newTrialChain()}
	ident := NewIdentifier(trial, nil, nil)
	p := domain.CreationPayload{Bytecode: tokenBytecode}

	_, _, err := ident.Identify(p)
	require.NoError(t, err)
	_, _, err = ident.Identify(p)
	require.NoError(t, err)

	assert.Equal(t, 1, trial.creates)
	assert.Equal(t, 1, ident.CacheSize())
}

func TestIdentify_CacheMissForDifferentBytecode(t *testing.T) {
	otherBytecode := []byte{0x60, 0x80, 0x60, 0x40, 0x52, 0x02}
	chain := newTrialChain()
	chain.RegisterArtifact(otherBytecode, "1.0.0-Token")
	trial := &countingTrial{Chain: chain}
	ident := NewIdentifier(trial, nil, nil)

	_, _, err := ident.Identify(domain.CreationPayload{Bytecode: tokenBytecode})
	require.NoError(t, err)
	_, _, err = ident.Identify(domain.CreationPayload{Bytecode: otherBytecode})
	require.NoError(t, err)

	assert.Equal(t, 2, trial.creates)
	assert.Equal(t, 2, ident.CacheSize())
}

// =============================================================================
// Identify Failure Tests
// =============================================================================

func TestIdentify_FundsGuard(t *testing.T) {
	trial := &countingTrial{Chain: newTrialChain()}
	ident := NewIdentifier(trial, nil, nil)

	_, _, err := ident.Identify(domain.CreationPayload{
		Bytecode: tokenBytecode,
		Value:    big.NewInt(2_000_000),
	})
	require.ErrorIs(t, err, ErrVersionExtraction)

	// The guard fires before any environment interaction.
	assert.Equal(t, 0, trial.creates)
}

func TestIdentify_MalformedPayload(t *testing.T) {
	ident := NewIdentifier(newTrialChain(), nil, nil)

	_, _, err := ident.Identify(domain.CreationPayload{})
	assert.ErrorIs(t, err, ErrMockDeployment)
}

func TestIdentify_VersionCallTrap(t *testing.T) {
	chain := newTrialChain()
	unregistered := []byte{0xde, 0xad, 0xbe, 0xef}
	ident := NewIdentifier(chain, nil, nil)

	_, _, err := ident.Identify(domain.CreationPayload{Bytecode: unregistered})
	require.ErrorIs(t, err, ErrVersionCall)

	// Side effects reverted even though the call failed.
	assert.Equal(t, int64(1_000_000), chain.Balance().Int64())
}

func TestIdentify_SnapshotRevertFailure(t *testing.T) {
	chain := newTrialChain()
	chain.FailRevert = true
	ident := NewIdentifier(chain, nil, nil)

	_, _, err := ident.Identify(domain.CreationPayload{Bytecode: tokenBytecode})
	assert.ErrorIs(t, err, ErrSnapshotRevert)
}

func TestIdentify_InvalidVersionFormat(t *testing.T) {
	chain := newTrialChain()
	bad := []byte{0x01, 0x02, 0x03}
	chain.RegisterArtifact(bad, "1.0.0")
	ident := NewIdentifier(chain, nil, nil)

	_, _, err := ident.Identify(domain.CreationPayload{Bytecode: bad})
	require.ErrorIs(t, err, version.ErrInvalidFormat)

	// Failed extractions are never cached.
	assert.Equal(t, 0, ident.CacheSize())
}

// =============================================================================
// Session Handling Tests
// =============================================================================

func TestIdentify_SuspendsActiveSession(t *testing.T) {
	session := simchain.OpenSession(testDeployer)
	ident := NewIdentifier(newTrialChain(), session, nil)

	_, _, err := ident.Identify(domain.CreationPayload{Bytecode: tokenBytecode})
	require.NoError(t, err)

	assert.Equal(t, 1, session.Suspends)
	assert.Equal(t, 1, session.Resumes)
	assert.True(t, session.Active())
	assert.Equal(t, testDeployer, session.Sender())
}

func TestIdentify_ResumesSessionAfterFailure(t *testing.T) {
	session := simchain.OpenSession(testDeployer)
	ident := NewIdentifier(newTrialChain(), session, nil)

	_, _, err := ident.Identify(domain.CreationPayload{})
	require.Error(t, err)

	assert.True(t, session.Active())
	assert.Equal(t, 1, session.Resumes)
}

func TestIdentify_InactiveSessionUntouched(t *testing.T) {
	session := simchain.OpenSession(testDeployer)
	session.Suspend()
	suspendsBefore := session.Suspends
	ident := NewIdentifier(newTrialChain(), session, nil)

	_, _, err := ident.Identify(domain.CreationPayload{Bytecode: tokenBytecode})
	require.NoError(t, err)

	assert.Equal(t, suspendsBefore, session.Suspends)
	assert.Equal(t, 0, session.Resumes)
}

func TestIdentify_CacheHitSkipsSession(t *testing.T) {
	session := simchain.OpenSession(testDeployer)
	ident := NewIdentifier(newTrialChain(), session, nil)
	p := domain.CreationPayload{Bytecode: tokenBytecode}

	_, _, err := ident.Identify(p)
	require.NoError(t, err)
	_, _, err = ident.Identify(p)
	require.NoError(t, err)

	assert.Equal(t, 1, session.Suspends)
}
