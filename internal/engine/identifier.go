package engine

import (
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/domain"
	"github.com/saltpin/saltpin/internal/core/version"
)

// =============================================================================
// Artifact Identifier
// =============================================================================

type identified struct {
	name    string
	version string
}

// Identifier discovers an artifact's self-reported version by trial
// instantiation: a throwaway instance is created in a snapshot, its
// report-version capability is called, and the snapshot is reverted
// unconditionally. Results are cached by content identity for the lifetime
// of the run.
type Identifier struct {
	env     TrialEnvironment
	session BroadcastSession
	cache   map[domain.ArtifactIdentity]identified
	logger  *slog.Logger
}

// NewIdentifier creates an identifier over a trial environment. session may
// be nil when no broadcast session exists.
func NewIdentifier(env TrialEnvironment, session BroadcastSession, logger *slog.Logger) *Identifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Identifier{
		env:     env,
		session: session,
		cache:   make(map[domain.ArtifactIdentity]identified),
		logger:  logger,
	}
}

// Identify returns the artifact's parsed name and full version string.
//
// The trial is never broadcast: an active session is suspended for its
// duration and resumed with the same public sender afterward. All trial
// side effects (balances, storage) are reverted whether or not the trial
// succeeds.
func (i *Identifier) Identify(p domain.CreationPayload) (string, string, error) {
	id := p.Identity()
	if hit, ok := i.cache[id]; ok {
		return hit.name, hit.version, nil
	}

	// Pure funds guard, checked before touching the environment.
	if p.ValueOrZero().Cmp(i.env.Balance()) > 0 {
		return "", "", fmt.Errorf("%w: trial requires %s but only %s available",
			ErrVersionExtraction, p.ValueOrZero(), i.env.Balance())
	}

	if i.session != nil && i.session.Active() {
		sender := i.session.Sender()
		i.session.Suspend()
		defer i.session.Resume(sender)
	}

	snap := i.env.Snapshot()
	ver, trialErr := i.trial(p)
	if !i.env.RevertTo(snap) {
		return "", "", fmt.Errorf("%w: snapshot %d", ErrSnapshotRevert, snap)
	}
	if trialErr != nil {
		return "", "", trialErr
	}

	name, err := version.Parse(ver)
	if err != nil {
		return "", "", err
	}

	i.cache[id] = identified{name: name, version: ver}
	i.logger.Debug("identified artifact",
		"identity", id.Hex(),
		"name", name,
		"version", ver,
	)
	return name, ver, nil
}

// trial creates the throwaway instance and reads its version. The caller
// owns snapshot reversion.
func (i *Identifier) trial(p domain.CreationPayload) (string, error) {
	addr, err := i.env.Create(p.Bytecode, p.ValueOrZero())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMockDeployment, err)
	}
	if addr == (common.Address{}) {
		return "", fmt.Errorf("%w: creation returned zero address", ErrMockDeployment)
	}

	ver, err := i.env.CallVersion(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVersionCall, err)
	}
	return ver, nil
}

// CacheSize reports how many artifacts have been identified this run.
func (i *Identifier) CacheSize() int {
	return len(i.cache)
}
