package record

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("record: store closed")

// Store persists committed records in strict append order. Sequence
// numbers are assigned by the store at append time, starting at 1.
type Store interface {
	// Append persists records in order, assigning each a sequence
	// number. Either all records of the call are appended or none.
	Append(ctx context.Context, recs []*Record) error

	// Read returns all records with Seq >= fromSeq in sequence order.
	Read(ctx context.Context, fromSeq uint64) ([]*Record, error)

	// Len returns the number of records appended so far.
	Len(ctx context.Context) (uint64, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral ledgers.
type MemoryStore struct {
	mu     sync.RWMutex
	recs   []*Record
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (s *MemoryStore) Append(ctx context.Context, recs []*Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	for _, r := range recs {
		r.Seq = uint64(len(s.recs)) + 1
		s.recs = append(s.recs, r)
	}
	return nil
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, fromSeq uint64) ([]*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}
	var out []*Record
	for _, r := range s.recs {
		if r.Seq >= fromSeq {
			out = append(out, r)
		}
	}
	return out, nil
}

// Len implements Store.
func (s *MemoryStore) Len(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}
	return uint64(len(s.recs)), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var _ Store = (*MemoryStore)(nil)

// Commit appends the journal's records to the store and clears the
// journal on success. On error the journal keeps its buffer so the
// caller can decide between retry and discard.
func (j *Journal) Commit(ctx context.Context, store Store) error {
	if len(j.buf) == 0 {
		return nil
	}
	if err := store.Append(ctx, j.buf); err != nil {
		return err
	}
	j.buf = nil
	return nil
}
