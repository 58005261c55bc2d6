// Package verify writes auxiliary verification metadata for deployments.
//
// Verification data is an optional convenience: when it cannot be written
// the orchestrator logs a warning and the deployment proceeds.
package verify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/domain"
)

// Writer persists one JSON metadata file per deployment under a root
// directory, at the path the strategy names.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

type record struct {
	Version      string `json:"version"`
	Address      string `json:"address"`
	BytecodeHash string `json:"bytecode_hash"`
}

// Write persists the verification record for a deployment.
func (w *Writer) Write(path, version string, addr common.Address, payload domain.CreationPayload) error {
	full := filepath.Join(w.root, path+".json")
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("verification dir: %w", err)
	}
	data, err := json.MarshalIndent(record{
		Version:      version,
		Address:      addr.Hex(),
		BytecodeHash: payload.Identity().Hex(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(full, append(data, '\n'), 0o644)
}
