package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "create":
		if err := create(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "mint":
		if err := mint(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "burn":
		if err := burn(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "transfer":
		if err := transferCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "batch":
		if err := batch(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "approve":
		if err := approve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "operator":
		if err := operator(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "balance":
		if err := balance(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "records":
		if err := records(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "root":
		if err := root(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("mtoken version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mtoken - multi-asset ownership ledger

Usage:
  mtoken <command> [options]

Commands:
  create     Create one or more assets
  mint       Mint additional units of an asset
  burn       Burn units of an asset
  transfer   Transfer units between principals
  batch      Transfer several assets atomically
  approve    Grant or change a per-asset allowance
  operator   Grant or revoke operator approval
  balance    Query balances, supply, and asset metadata
  records    Show the operation record stream
  root       Print the state commitment
  help       Show this help message
  version    Show version information

Every command reads mtoken.toml from the working directory when
present (override with --config). The record store defaults to
multitoken.db next to the config.

Examples:
  # Create an asset with an initial balance
  mtoken create --creator alice --name Hammer --quantity 5 --uri ipfs://hammer

  # Move two units to bob
  mtoken transfer --caller alice --from alice --to bob --id 1 --quantity 2

  # Approve carol to spend up to 10 of asset 1
  mtoken approve --owner alice --spender carol --id 1 --quantity 10

  # Inspect the record stream from the beginning
  mtoken records --from 1

For command-specific help, run:
  mtoken <command> --help`)
}
