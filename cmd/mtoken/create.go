package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/holiman/uint256"
)

func create(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	creator := fs.String("creator", "", "Creator principal (required)")
	name := fs.String("name", "", "Asset name")
	quantity := fs.String("quantity", "0", "Initial quantity credited to the creator")
	uri := fs.String("uri", "", "Asset metadata URI")
	names := fs.String("names", "", "Comma-separated names for a batch creation")
	quantities := fs.String("quantities", "", "Comma-separated initial quantities for a batch")
	uris := fs.String("uris", "", "Comma-separated URIs for a batch")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken create [options]

Create a new asset, or a batch of assets sharing one approval scope.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Single asset
  mtoken create --creator alice --name Hammer --quantity 5 --uri ipfs://hammer

  # Batch sharing one scope
  mtoken create --creator alice --names Sword,Shield --quantities 10,10
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath, true)
	if err != nil {
		return err
	}
	who, err := parsePrincipal(*creator, "creator")
	if err != nil {
		return err
	}

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	// Batch mode when --names is given.
	if *names != "" {
		nameList := strings.Split(*names, ",")
		qtyList, err := parseQuantities(*quantities)
		if err != nil {
			return err
		}
		uriList := make([]string, len(nameList))
		if *uris != "" {
			uriList = strings.Split(*uris, ",")
		}

		ids, err := tk.CreateBatch(ctx, who, nameList, qtyList, uriList)
		if err != nil {
			return err
		}
		for i, id := range ids {
			fmt.Printf("Created asset %d: %s\n", id, strings.TrimSpace(nameList[i]))
		}
		return nil
	}

	qty := new(uint256.Int)
	if err := qty.SetFromDecimal(*quantity); err != nil {
		return fmt.Errorf("invalid quantity %q: %w", *quantity, err)
	}
	id, err := tk.Create(ctx, who, *name, qty, *uri)
	if err != nil {
		return err
	}
	fmt.Printf("Created asset %d: %s\n", id, *name)
	return nil
}
