package main

import (
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/saltpin/saltpin/internal/core/create3"
	"github.com/saltpin/saltpin/internal/core/salt"
)

// runPredict computes the deterministic address for a (deployer, version)
// pair against a factory, entirely offline. With the default cross-chain
// policy the chain ID does not influence the result.
func runPredict(args []string) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to config file")
	deployerFlag := fs.String("deployer", "", "Deployer address (overrides config)")
	factoryFlag := fs.String("factory", "", "Factory address (overrides config)")
	versionFlag := fs.String("artifact-version", "", "Artifact version string, e.g. 1.0.0-Token")
	chainID := fs.Uint64("chain-id", 0, "Chain ID (overrides config)")
	if err := fs.Parse(args); err != nil {
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

	deployer := Address(cfg.Run.Deployer)
	if *deployerFlag != "" {
		if !common.IsHexAddress(*deployerFlag) {
			fmt.Fprintf(os.Stderr, "invalid deployer address %q\n", *deployerFlag)
			return ExitUsageError
		}
		deployer = common.HexToAddress(*deployerFlag)
	}
	factory := Address(cfg.Run.Factory)
	if *factoryFlag != "" {
		if !common.IsHexAddress(*factoryFlag) {
			fmt.Fprintf(os.Stderr, "invalid factory address %q\n", *factoryFlag)
			return ExitUsageError
		}
		factory = common.HexToAddress(*factoryFlag)
	}
	id := cfg.Run.ChainID
	if *chainID != 0 {
		id = *chainID
	}

	if deployer == (common.Address{}) || factory == (common.Address{}) || *versionFlag == "" {
		fmt.Fprintln(os.Stderr, "predict requires a deployer, a factory, and -artifact-version")
		return ExitUsageError
	}

	s := salt.Derive(deployer, *versionFlag)
	guarded, err := salt.Guard(s, deployer, new(big.Int).SetUint64(id))
	if err != nil {
		fmt.Fprintf(os.Stderr, "salt guard: %v\n", err)
		return ExitRunError
	}
	fmt.Println(create3.Address(factory, guarded).Hex())
	return ExitSuccess
}
