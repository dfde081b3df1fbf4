package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func burn(args []string) error {
	fs := flag.NewFlagSet("burn", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	caller := fs.String("caller", "", "Acting principal (required)")
	from := fs.String("from", "", "Holder whose balance is burned (required)")
	assetID := fs.String("id", "", "Asset id (required)")
	quantity := fs.String("quantity", "", "Quantity to burn (required)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken burn [options]

Burn units from a holder's balance, shrinking the asset's supply.
The caller must be the holder or an approved operator/spender.

Options:
`)
		fs.PrintDefaults()
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
	owner, err := parsePrincipal(*from, "from")
	if err != nil {
		return err
	}
	id, err := parseAssetID(*assetID)
	if err != nil {
		return err
	}
	qty, err := parseQuantity(*quantity)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := tk.Burn(ctx, who, owner, id, qty); err != nil {
		return err
	}
	fmt.Printf("Burned %s of asset %d from %s\n", qty.Dec(), id, owner)
	return nil
}
