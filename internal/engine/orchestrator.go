// Package engine sequences deterministic-address deployments: identify the
// artifact, derive and guard the salt, predict the address, short-circuit
// if it is already deployed, otherwise delegate instantiation to the
// factory service and record the result in the ledger.
package engine

import (
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/authz"
	"github.com/saltpin/saltpin/internal/core/domain"
	"github.com/saltpin/saltpin/internal/core/salt"
	"github.com/saltpin/saltpin/internal/core/version"
	"github.com/saltpin/saltpin/internal/shell/ledger"
)

// =============================================================================
// Orchestrator State
// =============================================================================

// State is the orchestrator lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateFinalized
)

// =============================================================================
// Orchestrator
// =============================================================================

// Config wires an orchestrator's collaborators. Strategy, Factory, Chain
// and Trial are required; Session and Verifier are optional.
type Config struct {
	Strategy Strategy
	Factory  FactoryService
	Chain    ChainState
	Trial    TrialEnvironment
	Session  BroadcastSession
	Verifier VerificationWriter
	Logger   *slog.Logger
}

// Orchestrator owns one deployment run. It is single-threaded by
// construction: no operation may interleave with another, and the ledger
// is flushed exactly once, at Finalize.
type Orchestrator struct {
	state    State
	strategy Strategy
	factory  FactoryService
	chain    ChainState
	ident    *Identifier
	session  BroadcastSession
	verifier VerificationWriter
	ledger   *ledger.Ledger
	params   RunParams
	run      domain.RunContext
	logger   *slog.Logger
}

// New creates an orchestrator in the Uninitialized state. Call Setup before
// any per-artifact operation.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		state:    StateUninitialized,
		strategy: cfg.Strategy,
		factory:  cfg.Factory,
		chain:    cfg.Chain,
		ident:    NewIdentifier(cfg.Trial, cfg.Session, logger),
		session:  cfg.Session,
		verifier: cfg.Verifier,
		logger:   logger,
	}
}

// Run returns the current run context. Zero before Setup.
func (o *Orchestrator) Run() domain.RunContext {
	return o.run
}

// Ledger returns the run's ledger. Nil before Setup.
func (o *Orchestrator) Ledger() *ledger.Ledger {
	return o.ledger
}

// =============================================================================
// Setup
// =============================================================================

// Setup transitions Uninitialized -> Ready: validates the strategy's run
// parameters, resolves ownership, loads and merges the prior ledger, and
// captures the environment-specific version suffix.
func (o *Orchestrator) Setup() error {
	if o.strategy == nil {
		return ErrSetupNotOverridden
	}
	params, err := o.strategy.Params()
	if err != nil {
		return fmt.Errorf("strategy params: %w", err)
	}
	if len(params.MainnetChainIDs) == 0 {
		return ErrEmptyMainnetChainIDs
	}

	owner, err := authz.ResolveOwner(params.ChainID, params.MainnetChainIDs,
		params.Deployer, params.Owner, params.ProdOwner)
	if err != nil {
		return err
	}

	o.params = params
	o.ledger = ledger.Open(params.LedgerDir, params.Category, params.ChainID, o.logger)
	o.run = domain.NewRunContext(
		params.Deployer,
		owner,
		params.ChainID,
		authz.IsProductionChain(params.ChainID, params.MainnetChainIDs),
		params.Category,
		o.strategy.VersionSuffix(params.ChainID),
	)
	o.state = StateReady

	o.logger.Info("deployment run ready",
		"run_id", o.run.RunID,
		"deployer", o.run.Deployer.Hex(),
		"owner", o.run.Owner.Hex(),
		"chain_id", o.run.ChainID,
		"category", o.run.Category,
		"production", o.run.Production,
		"known_versions", o.ledger.KnownCount(),
	)
	return nil
}

// =============================================================================
// Deploy
// =============================================================================

// Deploy processes one artifact. Returns (true, addr) when a new instance
// was created, or (false, addr) when code already exists at the
// deterministic address: the same (deployer, version) never deploys twice.
func (o *Orchestrator) Deploy(p domain.CreationPayload) (bool, common.Address, error) {
	if err := o.guardCall(); err != nil {
		return false, common.Address{}, err
	}

	name, effVersion, rawSalt, predicted, err := o.resolve(p)
	if err != nil {
		return false, common.Address{}, err
	}

	// Recorded unconditionally so repeated runs converge even when no new
	// deployment happens.
	o.ledger.RecordKnown(effVersion, predicted)

	if o.chain.HasCode(predicted) {
		o.logger.Info("already deployed, skipping",
			"name", name,
			"version", effVersion,
			"address", predicted.Hex(),
		)
		return false, predicted, nil
	}

	initData, initValue := o.strategy.InitCall(p)
	if len(initData) == 0 && initValue != nil && initValue.Sign() > 0 {
		return false, common.Address{}, fmt.Errorf("%w: %s earmarked", ErrInitAmountWithoutInitData, initValue)
	}

	o.writeVerification(name, effVersion, predicted, p)

	var actual common.Address
	if len(initData) > 0 {
		actual, err = o.factory.InstantiateAndInit(rawSalt, p.Bytecode, initData, p.ValueOrZero(), initValue)
	} else {
		actual, err = o.factory.Instantiate(rawSalt, p.Bytecode, p.ValueOrZero())
	}
	if err != nil {
		return false, common.Address{}, fmt.Errorf("instantiate %s: %w", effVersion, err)
	}
	if actual != predicted {
		return false, common.Address{}, &AddressMismatchError{Predicted: predicted, Actual: actual}
	}

	o.ledger.RecordNew(effVersion, actual)
	o.logger.Info("deployed",
		"name", name,
		"version", effVersion,
		"address", actual.Hex(),
	)
	return true, actual, nil
}

// Predict computes the deterministic address for an artifact without any
// deployment side effects.
func (o *Orchestrator) Predict(p domain.CreationPayload) (common.Address, error) {
	if err := o.guardCall(); err != nil {
		return common.Address{}, err
	}
	_, _, _, predicted, err := o.resolve(p)
	return predicted, err
}

// resolve performs the shared identify -> salt -> predict sequence.
func (o *Orchestrator) resolve(p domain.CreationPayload) (name, effVersion string, rawSalt salt.Salt, predicted common.Address, err error) {
	name, extracted, err := o.ident.Identify(p)
	if err != nil {
		return "", "", salt.Salt{}, common.Address{}, err
	}
	effVersion = version.WithSuffix(extracted, o.run.VersionSuffix)

	rawSalt = o.strategy.Salt(o.run.Deployer, effVersion)
	guarded, err := salt.Guard(rawSalt, o.run.Deployer, new(big.Int).SetUint64(o.run.ChainID))
	if err != nil {
		return "", "", salt.Salt{}, common.Address{}, err
	}

	predicted, err = o.factory.PredictAddress(guarded)
	if err != nil {
		return "", "", salt.Salt{}, common.Address{}, fmt.Errorf("predict address for %s: %w", effVersion, err)
	}
	return name, effVersion, rawSalt, predicted, nil
}

// writeVerification prepares auxiliary verification artifacts. Failures
// degrade to a warning; they never block the deployment.
func (o *Orchestrator) writeVerification(name, ver string, addr common.Address, p domain.CreationPayload) {
	if o.verifier == nil {
		return
	}
	path := o.strategy.VerificationPath(name, ver)
	if err := o.verifier.Write(path, ver, addr, p); err != nil {
		o.logger.Warn("skipping verification artifacts",
			"path", path,
			"error", err,
		)
	}
}

// =============================================================================
// Finalize
// =============================================================================

// Finalize transitions Ready -> Finalized, flushing the ledger gated on the
// allowed-writer identity. The flush is the run's only persistence point:
// an aborted run never leaves a partial ledger behind.
func (o *Orchestrator) Finalize() error {
	if err := o.guardCall(); err != nil {
		return err
	}
	if err := o.ledger.Flush(o.params.AllowedWriter, o.run.Deployer, time.Now()); err != nil {
		return err
	}
	o.state = StateFinalized
	o.logger.Info("deployment run finalized",
		"run_id", o.run.RunID,
		"new_deployments", o.ledger.NewCount(),
	)
	return nil
}

// =============================================================================
// Call Guards
// =============================================================================

// guardCall asserts the orchestrator is Ready and that any open broadcast
// session is signing as the captured deployer.
func (o *Orchestrator) guardCall() error {
	if o.state != StateReady {
		return ErrSetupNotCalled
	}
	if o.session != nil && o.session.Active() && o.session.Sender() != o.run.Deployer {
		return fmt.Errorf("%w: session %s, deployer %s",
			ErrBroadcastSenderMismatch, o.session.Sender().Hex(), o.run.Deployer.Hex())
	}
	return nil
}
