package core

import (
	"context"
	"slices"
	"sync"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	mu      sync.Mutex
	records []Feedback

	insertErr error
	selectErr error
	countErr  error

	insertCalls int
}

func newFakeStore(records ...Feedback) *fakeStore {
	return &fakeStore{records: records}
}

func (f *fakeStore) InsertMany(_ context.Context, records []Feedback) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertCalls++
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	f.records = append(f.records, records...)
	return int64(len(records)), nil
}

func (f *fakeStore) SelectPage(_ context.Context, filter Filter, limit, offset int) ([]Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	matched := f.matching(filter)
	if offset >= len(matched) {
		return nil, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

func (f *fakeStore) Count(_ context.Context, filter Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.matching(filter))), nil
}

func (f *fakeStore) matching(filter Filter) []Feedback {
	var out []Feedback
	for _, fb := range f.records {
		if filter.Matches(fb) {
			out = append(out, fb)
		}
	}
	slices.SortFunc(out, func(a, b Feedback) int { return int(a.ID - b.ID) })
	return out
}

func (f *fakeStore) snapshot() []Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.records)
}
