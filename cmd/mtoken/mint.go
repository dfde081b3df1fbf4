package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/multitoken-xyz/go-multitoken/principal"
)

func mint(args []string) error {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	caller := fs.String("caller", "", "Acting principal; must be the asset's creator (required)")
	assetID := fs.String("id", "", "Asset id (required)")
	to := fs.String("to", "", "Comma-separated recipients (required)")
	quantities := fs.String("quantities", "", "Comma-separated quantities, one per recipient (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken mint [options]

Mint additional units of an existing asset. Only the creator may mint.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mtoken mint --caller alice --id 1 --to bob --quantities 10
  mtoken mint --caller alice --id 1 --to bob,carol --quantities 10,20
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath, true)
	if err != nil {
		return err
	}
	who, err := parsePrincipal(*caller, "caller")
	if err != nil {
		return err
	}
	id, err := parseAssetID(*assetID)
	if err != nil {
		return err
	}
	if *to == "" {
		return fmt.Errorf("--to required")
	}
	var recipients []principal.Principal
	for _, part := range strings.Split(*to, ",") {
		recipients = append(recipients, principal.Principal(strings.TrimSpace(part)))
	}
	qtyList, err := parseQuantities(*quantities)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := tk.Mint(ctx, who, id, recipients, qtyList); err != nil {
		return err
	}
	fmt.Printf("Minted asset %d to %d recipient(s)\n", id, len(recipients))
	return nil
}
