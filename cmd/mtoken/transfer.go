package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func transferCmd(args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	caller := fs.String("caller", "", "Acting principal (required)")
	from := fs.String("from", "", "Sender (required)")
	to := fs.String("to", "", "Recipient (required)")
	assetID := fs.String("id", "", "Asset id (required)")
	quantity := fs.String("quantity", "", "Quantity (required)")
	data := fs.String("data", "", "Opaque payload forwarded to the recipient's receiver")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken transfer [options]

Transfer units of one asset. The caller must be the sender, an
approved operator, or hold a sufficient allowance.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mtoken transfer --caller alice --from alice --to bob --id 1 --quantity 2
  mtoken transfer --caller carol --from alice --to bob --id 1 --quantity 1
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
	sender, err := parsePrincipal(*from, "from")
	if err != nil {
		return err
	}
	recipient, err := parsePrincipal(*to, "to")
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

	if err := tk.SafeTransferFrom(ctx, who, sender, recipient, id, qty, []byte(*data)); err != nil {
		return err
	}
	fmt.Printf("Transferred %s of asset %d: %s -> %s\n", qty.Dec(), id, sender, recipient)
	return nil
}

func batch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	caller := fs.String("caller", "", "Acting principal (required)")
	from := fs.String("from", "", "Sender (required)")
	to := fs.String("to", "", "Recipient (required)")
	ids := fs.String("ids", "", "Comma-separated asset ids (required)")
	quantities := fs.String("quantities", "", "Comma-separated quantities, one per id (required)")
	data := fs.String("data", "", "Opaque payload forwarded to the recipient's receiver")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken batch [options]

Transfer several assets to one recipient atomically: either every
entry applies or none do.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mtoken batch --caller alice --from alice --to bob --ids 1,2 --quantities 3,4
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
	sender, err := parsePrincipal(*from, "from")
	if err != nil {
		return err
	}
	recipient, err := parsePrincipal(*to, "to")
	if err != nil {
		return err
	}
	idList, err := parseAssetIDs(*ids)
	if err != nil {
		return err
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

	if err := tk.SafeBatchTransferFrom(ctx, who, sender, recipient, idList, qtyList, []byte(*data)); err != nil {
		return err
	}
	fmt.Printf("Transferred %d asset(s): %s -> %s\n", len(idList), sender, recipient)
	return nil
}
