package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/saltpin/saltpin/internal/core/domain"
	"github.com/saltpin/saltpin/internal/engine"
	"github.com/saltpin/saltpin/internal/shell/simchain"
	"github.com/saltpin/saltpin/internal/shell/verify"
)

// =============================================================================
// Manifest
// =============================================================================

// Manifest lists the artifacts a rehearsal run deploys, in order.
type Manifest struct {
	Artifacts []ManifestArtifact `json:"artifacts"`
}

// ManifestArtifact describes one artifact. The version is what the
// simulated instance reports when asked; bytecode and calldata are 0x hex.
type ManifestArtifact struct {
	Version   string `json:"version"`
	Bytecode  string `json:"bytecode"`
	Value     string `json:"value,omitempty"`
	InitData  string `json:"init_data,omitempty"`
	InitValue string `json:"init_value,omitempty"`
}

func (a ManifestArtifact) payload() (domain.CreationPayload, error) {
	bytecode, err := hexutil.Decode(a.Bytecode)
	if err != nil {
		return domain.CreationPayload{}, fmt.Errorf("bytecode: %w", err)
	}
	p := domain.CreationPayload{Bytecode: bytecode}
	if a.InitData != "" {
		if p.InitData, err = hexutil.Decode(a.InitData); err != nil {
			return domain.CreationPayload{}, fmt.Errorf("init_data: %w", err)
		}
	}
	if p.Value, err = parseAmount(a.Value); err != nil {
		return domain.CreationPayload{}, fmt.Errorf("value: %w", err)
	}
	if p.InitValue, err = parseAmount(a.InitValue); err != nil {
		return domain.CreationPayload{}, fmt.Errorf("init_value: %w", err)
	}
	return p, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a decimal amount", s)
	}
	return v, nil
}

// =============================================================================
// Rehearse Command
// =============================================================================

// runRehearse pushes a manifest through the full orchestrator against an
// in-memory chain. The ledger directory is real: a rehearsal by the allowed
// writer records what the run would deploy and where.
func runRehearse(args []string) int {
	fs := flag.NewFlagSet("rehearse", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	manifestPath := fs.String("manifest", "", "Path to artifact manifest")
	if err := fs.Parse(args); err != nil {
		return ExitUsageError
	}
	if *manifestPath == "" {
		fmt.Fprintln(os.Stderr, "rehearse requires -manifest")
		return ExitUsageError
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}
	logger := SetupLogger(cfg)

	data, err := os.ReadFile(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "manifest: %v\n", err)
		return ExitConfigError
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		fmt.Fprintf(os.Stderr, "manifest: %v\n", err)
		return ExitConfigError
	}

	deployer := Address(cfg.Run.Deployer)
	chain := simchain.New(cfg.Run.ChainID, Address(cfg.Run.Factory), deployer)
	chain.SetBalance(deployer, new(big.Int).Lsh(big.NewInt(1), 64))

	suffixes := make(map[uint64]string, len(cfg.Run.VersionSuffixes))
	for k, suffix := range cfg.Run.VersionSuffixes {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "version_suffixes: invalid chain ID %q\n", k)
			return ExitConfigError
		}
		suffixes[id] = suffix
	}

	engineCfg := engine.Config{
		Strategy: &engine.StaticStrategy{
			P: engine.RunParams{
				Deployer:        deployer,
				Owner:           Address(cfg.Run.Owner),
				ProdOwner:       Address(cfg.Run.ProdOwner),
				AllowedWriter:   Address(cfg.Run.AllowedWriter),
				Category:        cfg.Run.Category,
				ChainID:         cfg.Run.ChainID,
				MainnetChainIDs: cfg.Run.MainnetChainIDs,
				LedgerDir:       cfg.Ledger.Dir,
			},
			Suffixes: suffixes,
		},
		Factory: chain,
		Chain:   chain,
		Trial:   chain,
		Logger:  logger,
	}
	if cfg.Ledger.VerifyDir != "" {
		engineCfg.Verifier = verify.NewWriter(cfg.Ledger.VerifyDir)
	}

	orch := engine.New(engineCfg)
	if err := orch.Setup(); err != nil {
		logger.Error("setup failed", "error", err)
		return ExitConfigError
	}

	for i, artifact := range manifest.Artifacts {
		p, err := artifact.payload()
		if err != nil {
			logger.Error("bad manifest artifact", "index", i, "error", err)
			return ExitConfigError
		}
		chain.RegisterArtifact(p.Bytecode, artifact.Version)

		deployed, addr, err := orch.Deploy(p)
		if err != nil {
			logger.Error("deploy failed", "index", i, "version", artifact.Version, "error", err)
			return ExitRunError
		}
		state := "exists"
		if deployed {
			state = "deployed"
		}
		fmt.Printf("%-8s %-40s %s\n", state, artifact.Version, addr.Hex())
	}

	if err := orch.Finalize(); err != nil {
		logger.Error("finalize failed", "error", err)
		return ExitRunError
	}
	return ExitSuccess
}
