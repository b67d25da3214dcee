package core

import (
	"context"
	"strings"
	"time"
)

// Feedback is a single persisted feedback entry.
type Feedback struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Filter restricts which records a listing query sees.
// The zero value matches every record.
type Filter struct {
	// Search matches records whose name or body contains it, ignoring case.
	Search string
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Search == ""
}

// Matches applies the filter to a single record in memory.
func (f Filter) Matches(fb Feedback) bool {
	if f.IsZero() {
		return true
	}
	needle := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(fb.Name), needle) ||
		strings.Contains(strings.ToLower(fb.Body), needle)
}

// Store is the persistence port used by the ingestion pipeline and the
// listing query engine.
type Store interface {
	// InsertMany writes all records in one transaction and returns how many
	// were written. Either every record is committed or none is.
	InsertMany(ctx context.Context, records []Feedback) (int64, error)

	// SelectPage returns at most limit records matching filter, ordered by
	// ascending id, skipping the first offset matches.
	SelectPage(ctx context.Context, filter Filter, limit, offset int) ([]Feedback, error)

	// Count returns the number of records matching filter.
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Resetter is implemented by stores that support administrative deletion.
type Resetter interface {
	DeleteAll(ctx context.Context) (int64, error)
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
