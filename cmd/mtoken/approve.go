package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/multitoken-xyz/go-multitoken/approval"
	"github.com/multitoken-xyz/go-multitoken/ledger"
)

func approve(args []string) error {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	owner := fs.String("owner", "", "Granting principal (required)")
	spender := fs.String("spender", "", "Spender principal (required)")
	assetID := fs.String("id", "", "Asset id (required)")
	quantity := fs.String("quantity", "", "New allowance; 0 revokes (required)")
	expected := fs.String("expected", "", "Current allowance the grant is conditioned on (defaults to the stored value)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken approve [options]

Grant a per-asset spending allowance. When --expected is given the
change only applies if the stored allowance still matches, so a
concurrent spend cannot be silently double-granted.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mtoken approve --owner alice --spender carol --id 1 --quantity 10
  mtoken approve --owner alice --spender carol --id 1 --quantity 50 --expected 10
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath, true)
	if err != nil {
		return err
	}
	granting, err := parsePrincipal(*owner, "owner")
	if err != nil {
		return err
	}
	spending, err := parsePrincipal(*spender, "spender")
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

	current := tk.Allowance(granting, spending, id)
	if *expected != "" {
		if current, err = parseQuantity(*expected); err != nil {
			return err
		}
	}

	if err := tk.Approve(ctx, granting, spending, id, current, qty); err != nil {
		return err
	}
	fmt.Printf("Allowance of asset %d for %s set to %s\n", id, spending, qty.Dec())
	return nil
}

func operator(args []string) error {
	fs := flag.NewFlagSet("operator", flag.ExitOnError)
	configPath := fs.String("config", "mtoken.toml", "Config file")
	owner := fs.String("owner", "", "Granting principal (required)")
	op := fs.String("operator", "", "Operator principal (required)")
	scope := fs.Uint64("scope", uint64(approval.GlobalScope), "Approval scope; 0 covers every asset")
	revoke := fs.Bool("revoke", false, "Revoke instead of grant")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: mtoken operator [options]

Grant or revoke operator approval. A global approval (scope 0) covers
every asset the owner holds; a scoped approval covers only assets
created under that scope.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  mtoken operator --owner alice --operator carol
  mtoken operator --owner alice --operator carol --scope 2
  mtoken operator --owner alice --operator carol --revoke
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath, true)
	if err != nil {
		return err
	}
	granting, err := parsePrincipal(*owner, "owner")
	if err != nil {
		return err
	}
	acting, err := parsePrincipal(*op, "operator")
	if err != nil {
		return err
	}

	ctx := context.Background()
	tk, done, err := openToken(ctx, cfg)
	if err != nil {
		return err
	}
	defer done()

	if err := tk.SetApprovalForAll(ctx, granting, acting, ledger.Scope(*scope), !*revoke); err != nil {
		return err
	}
	if *revoke {
		fmt.Printf("Revoked operator %s for %s (scope %d)\n", acting, granting, *scope)
	} else {
		fmt.Printf("Approved operator %s for %s (scope %d)\n", acting, granting, *scope)
	}
	return nil
}
