// Command saltpin predicts and rehearses deterministic-address deployments.
//
// Subcommands:
//
//	predict   compute the address a (deployer, version) pair resolves to
//	rehearse  run an artifact manifest through the orchestrator against a
//	          simulated chain, writing a real ledger
package main

import (
	"fmt"
	"os"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitRunError    = 2
	ExitUsageError  = 3
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return ExitUsageError
	}

	switch args[0] {
	case "predict":
		return runPredict(args[1:])
	case "rehearse":
		return runRehearse(args[1:])
	case "version", "-version", "--version":
		fmt.Printf("saltpin %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		usage()
		return ExitUsageError
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: saltpin <command> [flags]

commands:
  predict   compute the deterministic address for a deployer and version
  rehearse  run a deployment manifest against a simulated chain
  version   print version and exit`)
}
