package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func balance(args []string) error {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	assetID := fs.String("id", "", "Asset id (required)")
	owner := fs.String("owner", "", "Holder to query; omit for asset metadata and supply only")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken balance [options]

Query an asset's metadata, total supply, and optionally one holder's
balance.

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
	id, err := parseAssetID(*assetID)
	if err != nil {
		return err
	}

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	a, err := tk.Asset(id)
	if err != nil {
		return err
	}
	supply, err := tk.Supply(id)
	if err != nil {
		return err
	}

	fmt.Printf("Asset %d: %s\n", a.ID, a.Name)
	fmt.Printf("  Creator: %s\n", a.Creator)
	fmt.Printf("  Scope:   %d\n", a.Scope)
	if a.URI != "" {
		fmt.Printf("  URI:     %s\n", a.URI)
	}
	fmt.Printf("  Supply:  %s\n", supply.Dec())

	if *owner != "" {
		holder, err := parsePrincipal(*owner, "owner")
		if err != nil {
			return err
		}
		b, err := tk.BalanceOf(id, holder)
		if err != nil {
			return err
		}
		fmt.Printf("  Balance of %s: %s\n", holder, b.Dec())
	}
	return nil
}

func records(args []string) error {
	fs := flag.NewFlagSet("records", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	fromSeq := fs.Uint64("from", 1, "First sequence number to show")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken records [options]

Show the append-only record stream of every committed operation.

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

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	recs, err := tk.Records(ctx, *fromSeq)
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%6d  %s  %-15s", r.Seq, r.Time.Format("2006-01-02 15:04:05"), r.Kind)
		if r.From != "" || r.To != "" {
			fmt.Printf("  %s -> %s", r.From, r.To)
		}
		if len(r.AssetIDs) > 0 {
			fmt.Printf("  assets=%v", r.AssetIDs)
		}
		if len(r.Quantities) > 0 {
			fmt.Print("  quantities=[")
			for i, q := range r.Quantities {
				if i > 0 {
					fmt.Print(" ")
				}
				fmt.Print(q.Dec())
			}
			fmt.Print("]")
		}
		fmt.Println()
	}
	fmt.Printf("%d record(s)\n", len(recs))
	return nil
}

func root(args []string) error {
	fs := flag.NewFlagSet("root", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken root [options]

Print the commitment to the full ledger state. Two stores holding the
same balances and supplies print the same root.

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

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	r, err := tk.StateRoot()
	if err != nil {
		return err
	}
	fmt.Println(r)
	return nil
}
