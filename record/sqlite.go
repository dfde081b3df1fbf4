package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	_ "modernc.org/sqlite"

	"github.com/multitoken-xyz/go-multitoken/ledger"
	"github.com/multitoken-xyz/go-multitoken/principal"
)

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore is a durable Store backed by SQLite. Use ":memory:" as
// the path for an ephemeral database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary creates) the database at
// path and ensures the schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps appends serialized and makes
	// ":memory:" databases behave.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return err
	}
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		at TEXT NOT NULL,
		kind TEXT NOT NULL,
		operator TEXT NOT NULL DEFAULT '',
		from_principal TEXT NOT NULL DEFAULT '',
		to_principal TEXT NOT NULL DEFAULT '',
		asset_ids TEXT NOT NULL DEFAULT '[]',
		quantities TEXT NOT NULL DEFAULT '[]',
		name TEXT NOT NULL DEFAULT '',
		uri TEXT NOT NULL DEFAULT '',
		approved INTEGER NOT NULL DEFAULT 0,
		scope INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, recs []*Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range recs {
		ids, quantities, err := encodePayload(r)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records
				(id, at, kind, operator, from_principal, to_principal,
				 asset_ids, quantities, name, uri, approved, scope)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Time.UTC().Format(time.RFC3339Nano), string(r.Kind),
			string(r.Operator), string(r.From), string(r.To),
			ids, quantities, r.Name, r.URI, boolToInt(r.Approved), uint64(r.Scope))
		if err != nil {
			return fmt.Errorf("insert record: %w", err)
		}
		seq, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.Seq = uint64(seq)
	}

	return tx.Commit()
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, fromSeq uint64) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, at, kind, operator, from_principal, to_principal,
		       asset_ids, quantities, name, uri, approved, scope
		FROM records WHERE seq >= ? ORDER BY seq`, fromSeq)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var (
			r          Record
			at         string
			op, fp, tp string
			kind       string
			ids        string
			quantities string
			approved   int
			scope      uint64
		)
		if err := rows.Scan(&r.Seq, &r.ID, &at, &kind, &op, &fp, &tp,
			&ids, &quantities, &r.Name, &r.URI, &approved, &scope); err != nil {
			return nil, err
		}
		r.Kind = Kind(kind)
		r.Operator = principal.Principal(op)
		r.From = principal.Principal(fp)
		r.To = principal.Principal(tp)
		r.Approved = approved != 0
		r.Scope = ledger.Scope(scope)
		if r.Time, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parse record time: %w", err)
		}
		if err := decodePayload(&r, ids, quantities); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Len implements Store.
func (s *SQLiteStore) Len(ctx context.Context) (uint64, error) {
	var n uint64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// encodePayload serializes asset ids and quantities as JSON arrays.
// Quantities are decimal strings so 256-bit values survive intact.
func encodePayload(r *Record) (string, string, error) {
	ids, err := json.Marshal(r.AssetIDs)
	if err != nil {
		return "", "", err
	}
	dec := make([]string, len(r.Quantities))
	for i, q := range r.Quantities {
		dec[i] = q.Dec()
	}
	quantities, err := json.Marshal(dec)
	if err != nil {
		return "", "", err
	}
	return string(ids), string(quantities), nil
}

func decodePayload(r *Record, ids, quantities string) error {
	if err := json.Unmarshal([]byte(ids), &r.AssetIDs); err != nil {
		return fmt.Errorf("decode asset ids: %w", err)
	}
	var dec []string
	if err := json.Unmarshal([]byte(quantities), &dec); err != nil {
		return fmt.Errorf("decode quantities: %w", err)
	}
	r.Quantities = make([]*uint256.Int, len(dec))
	for i, d := range dec {
		q := new(uint256.Int)
		if err := q.SetFromDecimal(d); err != nil {
			return fmt.Errorf("decode quantity %q: %w", d, err)
		}
		r.Quantities[i] = q
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
