// Package memory provides an in-process feedback store. It backs the HTTP
// and CLI tests and can run the service without a database.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/feedbacks/internal/core"
)

// ErrDuplicateID mirrors the primary key violation a database would report.
type ErrDuplicateID struct {
	ID int64
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate key value violates unique constraint: id %d already exists", e.ID)
}

// Store keeps records sorted by id.
type Store struct {
	mu      sync.RWMutex
	records []core.Feedback
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

var (
	_ core.Store    = (*Store)(nil)
	_ core.Resetter = (*Store)(nil)
	_ core.Pinger   = (*Store)(nil)
)

// InsertMany stores all records or, if any id collides with a stored record
// or with another record of the batch, none of them.
func (s *Store) InsertMany(ctx context.Context, records []core.Feedback) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup || s.hasID(r.ID) {
			return 0, ErrDuplicateID{ID: r.ID}
		}
		seen[r.ID] = struct{}{}
	}

	now := s.now().UTC()
	for _, r := range records {
		r.CreatedAt, r.UpdatedAt = now, now
		s.records = append(s.records, r)
	}
	slices.SortFunc(s.records, func(a, b core.Feedback) int { return cmp.Compare(a.ID, b.ID) })
	return int64(len(records)), nil
}

// SelectPage returns up to limit matching records after skipping offset.
func (s *Store) SelectPage(ctx context.Context, filter core.Filter, limit, offset int) ([]core.Feedback, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []core.Feedback{}
	skipped := 0
	for _, r := range s.records {
		if len(out) >= limit {
			break
		}
		if !filter.Matches(r) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *Store) Count(ctx context.Context, filter core.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.records {
		if filter.Matches(r) {
			n++
		}
	}
	return n, nil
}

// DeleteAll empties the store.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.records))
	s.records = nil
	return n, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) hasID(id int64) bool {
	_, found := slices.BinarySearchFunc(s.records, id, func(r core.Feedback, id int64) int {
		return cmp.Compare(r.ID, id)
	})
	return found
}
