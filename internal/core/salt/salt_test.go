package salt

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	deployer = common.HexToAddress("0x1111111111111111111111111111111111111111")
	other    = common.HexToAddress("0x2222222222222222222222222222222222222222")
	chainID  = big.NewInt(1)
)

// =============================================================================
// Derive Tests
// =============================================================================

func TestDerive_Layout(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")

	assert.Equal(t, deployer, s.Deployer())
	assert.Equal(t, CrossChainAllowed, s.Flag())

	want := crypto.Keccak256([]byte("1.0.0-Token"))[:11]
	assert.Equal(t, want, s[21:])
}

func TestDerive_Deterministic(t *testing.T) {
	a := Derive(deployer, "1.0.0-Token")
	b := Derive(deployer, "1.0.0-Token")
	assert.Equal(t, a, b)
}

func TestDerive_DistinctVersions(t *testing.T) {
	a := Derive(deployer, "1.0.0-Token")
	b := Derive(deployer, "1.0.1-Token")
	assert.NotEqual(t, a, b)
}

func TestDerive_DistinctDeployers(t *testing.T) {
	a := Derive(deployer, "1.0.0-Token")
	b := Derive(other, "1.0.0-Token")
	assert.NotEqual(t, a, b)
}

func TestDerive_NoCollisionsAcrossManyVersions(t *testing.T) {
	seen := make(map[Salt]string)
	for major := 0; major < 10; major++ {
		for minor := 0; minor < 10; minor++ {
			for patch := 0; patch < 10; patch++ {
				v := fmt.Sprintf("%d.%d.%d-Token", major, minor, patch)
				s := Derive(deployer, v)
				prev, dup := seen[s]
				require.False(t, dup, "salt collision between %q and %q", prev, v)
				seen[s] = v
			}
		}
	}
	assert.Len(t, seen, 1000)
}

// =============================================================================
// Guard Tests - Sender-Embedded Salts
// =============================================================================

func TestGuard_SenderMatch_CrossChainAllowed(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")

	got, err := Guard(s, deployer, chainID)
	require.NoError(t, err)

	want := crypto.Keccak256Hash(append(common.BytesToHash(deployer.Bytes()).Bytes(), s[:]...))
	assert.Equal(t, GuardedSalt(want), got)
}

func TestGuard_SenderMatch_CrossChainAllowed_ChainIndependent(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")

	onMainnet, err := Guard(s, deployer, big.NewInt(1))
	require.NoError(t, err)
	onTestnet, err := Guard(s, deployer, big.NewInt(11155111))
	require.NoError(t, err)

	assert.Equal(t, onMainnet, onTestnet)
}

func TestGuard_SenderMatch_CrossChainProtected(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")
	s[20] = CrossChainProtected

	got, err := Guard(s, deployer, chainID)
	require.NoError(t, err)

	var buf []byte
	buf = append(buf, common.BytesToHash(deployer.Bytes()).Bytes()...)
	buf = append(buf, common.BigToHash(chainID).Bytes()...)
	buf = append(buf, s[:]...)
	assert.Equal(t, GuardedSalt(crypto.Keccak256Hash(buf)), got)
}

func TestGuard_SenderMatch_CrossChainProtected_ChainDependent(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")
	s[20] = CrossChainProtected

	onMainnet, err := Guard(s, deployer, big.NewInt(1))
	require.NoError(t, err)
	onTestnet, err := Guard(s, deployer, big.NewInt(11155111))
	require.NoError(t, err)

	assert.NotEqual(t, onMainnet, onTestnet)
}

func TestGuard_SenderMatch_UnknownFlag(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")
	s[20] = 0x7f

	_, err := Guard(s, deployer, chainID)
	require.ErrorIs(t, err, ErrInvalidSalt)

	var saltErr *InvalidSaltError
	require.ErrorAs(t, err, &saltErr)
	assert.Equal(t, deployer, saltErr.Sender)
	assert.Equal(t, byte(0x7f), saltErr.Flag)
}

// =============================================================================
// Guard Tests - Zero-Identity Salts
// =============================================================================

func TestGuard_ZeroIdentity_CrossChainAllowed(t *testing.T) {
	var s Salt
	copy(s[21:], crypto.Keccak256([]byte("1.0.0-Token"))[:11])

	got, err := Guard(s, deployer, chainID)
	require.NoError(t, err)
	assert.Equal(t, GuardedSalt(crypto.Keccak256Hash(s[:])), got)
}

func TestGuard_ZeroIdentity_CrossChainProtected(t *testing.T) {
	var s Salt
	s[20] = CrossChainProtected

	got, err := Guard(s, deployer, chainID)
	require.NoError(t, err)

	var buf []byte
	buf = append(buf, common.BigToHash(chainID).Bytes()...)
	buf = append(buf, s[:]...)
	assert.Equal(t, GuardedSalt(crypto.Keccak256Hash(buf)), got)
}

func TestGuard_ZeroIdentity_UnknownFlag(t *testing.T) {
	var s Salt
	s[20] = 0xff

	_, err := Guard(s, deployer, chainID)
	assert.ErrorIs(t, err, ErrInvalidSalt)
}

// =============================================================================
// Guard Tests - Third-Party Salts
// =============================================================================

func TestGuard_ThirdParty_HashedAlone(t *testing.T) {
	s := Derive(other, "1.0.0-Token")

	got, err := Guard(s, deployer, chainID)
	require.NoError(t, err)
	assert.Equal(t, GuardedSalt(crypto.Keccak256Hash(s[:])), got)
}

func TestGuard_ThirdParty_FlagIgnored(t *testing.T) {
	s := Derive(other, "1.0.0-Token")
	s[20] = 0xab // would be invalid in the first two branches

	got, err := Guard(s, deployer, chainID)
	require.NoError(t, err)
	assert.Equal(t, GuardedSalt(crypto.Keccak256Hash(s[:])), got)
}

// =============================================================================
// Guard Tests - Purity
// =============================================================================

func TestGuard_Deterministic(t *testing.T) {
	s := Derive(deployer, "1.0.0-Token")

	a, err := Guard(s, deployer, chainID)
	require.NoError(t, err)
	b, err := Guard(s, deployer, chainID)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestGuard_UsesDeclaredSenderNotAmbient(t *testing.T) {
	// The same salt guarded for two different declared senders takes
	// different branches (owner vs third party) and must differ.
	s := Derive(deployer, "1.0.0-Token")

	asOwner, err := Guard(s, deployer, chainID)
	require.NoError(t, err)
	asStranger, err := Guard(s, other, chainID)
	require.NoError(t, err)
	assert.NotEqual(t, asOwner, asStranger)
}
