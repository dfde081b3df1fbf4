package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
	"github.com/multitoken-xyz/go-multitoken/record"
	"github.com/multitoken-xyz/go-multitoken/token"
)

// openToken rebuilds the ledger front end from the configured record
// store. The returned close function must be called before exit so the
// store is released.
func openToken(ctx context.Context, cfg config) (*token.Token, func() error, error) {
	store, err := record.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", cfg.StorePath, err)
	}

	log, err := cfg.logger()
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	tk, err := token.Restore(ctx, cfg.Self, token.Options{
		Store:  store,
		Admin:  cfg.Admin,
		Logger: log,
	})
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("restore ledger: %w", err)
	}
	return tk, store.Close, nil
}

func parsePrincipal(s, flagName string) (principal.Principal, error) {
	p := principal.Principal(strings.TrimSpace(s))
	if p.IsZero() {
		return principal.Zero, fmt.Errorf("--%s required", flagName)
	}
	return p, nil
}

func parseQuantity(s string) (*uint256.Int, error) {
	q := new(uint256.Int)
	if err := q.SetFromDecimal(strings.TrimSpace(s)); err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	return q, nil
}

func parseAssetID(s string) (ledger.AssetID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid asset id %q: %w", s, err)
	}
	return ledger.AssetID(n), nil
}

// parseAssetIDs parses a comma-separated id list.
func parseAssetIDs(s string) ([]ledger.AssetID, error) {
	var out []ledger.AssetID
	for _, part := range strings.Split(s, ",") {
		id, err := parseAssetID(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// parseQuantities parses a comma-separated decimal list.
func parseQuantities(s string) ([]*uint256.Int, error) {
	var out []*uint256.Int
	for _, part := range strings.Split(s, ",") {
		q, err := parseQuantity(part)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}
