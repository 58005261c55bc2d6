// Package ledger persists version-to-address deployment mappings.
//
// The ledger is a cache/index, not a source of truth: the deterministic
// address derivation is the source of truth. Loading is therefore
// deliberately lenient - a missing, unreadable, or malformed prior file
// degrades to an empty ledger with a warning, never a failed run.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/authz"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrWriteFailed is returned when persisting a ledger file fails.
	ErrWriteFailed = errors.New("ledger write failed")
)

// =============================================================================
// Ledger
// =============================================================================

// Ledger accumulates version->address mappings for one run, partitioned
// into "new this run" and "all known" (cumulative, seeded from the prior
// persisted snapshot). Not safe for concurrent use; a run owns exactly one
// ledger.
type Ledger struct {
	dir      string
	category string
	chainID  uint64

	newRun map[string]common.Address
	all    map[string]common.Address
	dirty  bool

	logger *slog.Logger
}

// Open creates a ledger for a (category, chain) pair rooted at dir, seeded
// by merging the prior "latest" snapshot if one exists and parses.
func Open(dir, category string, chainID uint64, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Ledger{
		dir:      dir,
		category: category,
		chainID:  chainID,
		newRun:   make(map[string]common.Address),
		all:      make(map[string]common.Address),
		logger:   logger,
	}
	l.loadPrior()
	return l
}

// loadPrior merges the previously persisted snapshot into the "all known"
// view. Every failure mode starts fresh: the ledger must never block a run.
func (l *Ledger) loadPrior() {
	path := l.latestPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("prior ledger unreadable, starting fresh",
				"path", path,
				"error", err,
			)
		}
		return
	}
	if len(data) == 0 {
		return
	}

	var prior map[string]string
	if err := json.Unmarshal(data, &prior); err != nil {
		l.logger.Warn("prior ledger unparseable, starting fresh",
			"path", path,
			"error", err,
		)
		return
	}

	for version, addr := range prior {
		if !common.IsHexAddress(addr) {
			l.logger.Warn("skipping prior ledger entry with invalid address",
				"version", version,
				"address", addr,
			)
			continue
		}
		l.all[version] = common.HexToAddress(addr)
	}
}

// =============================================================================
// Recording
// =============================================================================

// RecordNew records a deployment made in this run and marks the ledger
// dirty. The entry also lands in the "all known" view.
func (l *Ledger) RecordNew(version string, addr common.Address) {
	l.newRun[version] = addr
	l.RecordKnown(version, addr)
	l.dirty = true
}

// RecordKnown records a version->address mapping in the cumulative view.
// An overwrite with a different address for the same version signals a
// derivation fault upstream, since each version's address is deterministic;
// it is logged loudly but still applied.
func (l *Ledger) RecordKnown(version string, addr common.Address) {
	if prev, ok := l.all[version]; ok && prev != addr {
		l.logger.Warn("ledger address changed for version; upstream derivation fault?",
			"version", version,
			"previous", prev.Hex(),
			"new", addr.Hex(),
		)
	}
	l.all[version] = addr
}

// Known returns the recorded address for a version, if any.
func (l *Ledger) Known(version string) (common.Address, bool) {
	addr, ok := l.all[version]
	return addr, ok
}

// Dirty reports whether this run recorded deployments that have not been
// flushed yet.
func (l *Ledger) Dirty() bool {
	return l.dirty
}

// NewCount returns how many deployments this run recorded.
func (l *Ledger) NewCount() int {
	return len(l.newRun)
}

// KnownCount returns the size of the cumulative view.
func (l *Ledger) KnownCount() int {
	return len(l.all)
}

// =============================================================================
// Flush
// =============================================================================

// Flush persists the ledger, gated on the allowed-writer identity.
//
// Unauthorized writers are logged and skipped without error: local
// simulation and speculative runs must never touch shared ledger files.
// Authorized flushes write an immutable timestamped file for the "new this
// run" view (only if this run deployed anything) and the merged "all known"
// view to the stable latest file (only if non-empty).
func (l *Ledger) Flush(allowed, actual common.Address, now time.Time) error {
	if ok, reason := authz.CanFlushLedger(actual, allowed); !ok {
		l.logger.Info("skipping ledger flush", "reason", reason)
		return nil
	}

	if len(l.newRun) == 0 && len(l.all) == 0 {
		return nil
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if len(l.newRun) > 0 {
		path := l.timestampedPath(now)
		if err := writeMapping(path, l.newRun); err != nil {
			return err
		}
		l.logger.Info("wrote run ledger", "path", path, "entries", len(l.newRun))
	}

	if len(l.all) > 0 {
		path := l.latestPath()
		if err := writeMapping(path, l.all); err != nil {
			return err
		}
		l.logger.Info("wrote latest ledger", "path", path, "entries", len(l.all))
	}

	l.dirty = false
	return nil
}

func writeMapping(path string, entries map[string]common.Address) error {
	flat := make(map[string]string, len(entries))
	for version, addr := range entries {
		flat[version] = addr.Hex()
	}
	data, err := json.MarshalIndent(flat, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

func (l *Ledger) latestPath() string {
	return filepath.Join(l.dir, fmt.Sprintf("%s-%d-latest.json", l.category, l.chainID))
}

func (l *Ledger) timestampedPath(now time.Time) string {
	return filepath.Join(l.dir, fmt.Sprintf("%s-%d-%d.json", l.category, l.chainID, now.UTC().Unix()))
}
