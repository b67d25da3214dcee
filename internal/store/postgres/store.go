// Package postgres implements the feedback store on PostgreSQL using pgx.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/feedbacks/internal/core"
)

//go:embed schema.sql
var schemaSQL string

// Table is the name of the feedback table.
const Table = "feedback"

// DB is the subset of pgxpool.Pool used by Store.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

var (
	insertColumns = []string{"id", "post_id", "name", "email", "body"}
	searchColumns = []string{"name", "body"}
)

const selectColumns = "id, post_id, name, email, body, created_at, updated_at"

// Explicit ids bypass the id sequence, so it is moved past the largest id
// after every bulk insert.
const advanceSequenceSQL = `SELECT setval(pg_get_serial_sequence('feedback', 'id'), (SELECT GREATEST(COALESCE(MAX(id), 1), 1) FROM feedback))`

// Store is a core.Store backed by PostgreSQL.
type Store struct {
	db DB
}

// New wraps db.
func New(db DB) *Store {
	return &Store{db: db}
}

var (
	_ core.Store    = (*Store)(nil)
	_ core.Resetter = (*Store)(nil)
	_ core.Pinger   = (*Store)(nil)
)

// EnsureSchema creates the feedback table and its indexes if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// InsertMany copies records into the table in one transaction. On any error
// the transaction is rolled back and nothing is stored.
func (s *Store) InsertMany(ctx context.Context, records []core.Feedback) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	source := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		r := records[i]
		return []any{r.ID, r.PostID, r.Name, r.Email, r.Body}, nil
	})

	n, err := tx.CopyFrom(ctx, pgx.Identifier{Table}, insertColumns, source)
	if err != nil {
		_ = tx.Rollback(ctx)
		return 0, fmt.Errorf("copy feedback: %w", err)
	}

	if _, err := tx.Exec(ctx, advanceSequenceSQL); err != nil {
		_ = tx.Rollback(ctx)
		return 0, fmt.Errorf("advance id sequence: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return n, nil
}

// SelectPage returns up to limit records matching filter ordered by id.
func (s *Store) SelectPage(ctx context.Context, filter core.Filter, limit, offset int) ([]core.Feedback, error) {
	wb := NewWhereBuilder()
	wb.AddSearch(filter.Search, searchColumns...)
	where, args := wb.Build()

	argIndex := wb.NextArgIndex()
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		selectColumns, Table, where, argIndex, argIndex+1,
	)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	records, err := pgx.CollectRows(rows, scanFeedback)
	if err != nil {
		return nil, fmt.Errorf("read feedback rows: %w", err)
	}
	return records, nil
}

// Count returns the number of records matching filter.
func (s *Store) Count(ctx context.Context, filter core.Filter) (int64, error) {
	wb := NewWhereBuilder()
	wb.AddSearch(filter.Search, searchColumns...)
	where, args := wb.Build()

	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", Table, where)
	if err := s.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count feedback: %w", err)
	}
	return total, nil
}

// DeleteAll removes every record and returns how many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, "DELETE FROM "+Table)
	if err != nil {
		return 0, fmt.Errorf("delete feedback: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func scanFeedback(row pgx.CollectableRow) (core.Feedback, error) {
	var fb core.Feedback
	err := row.Scan(&fb.ID, &fb.PostID, &fb.Name, &fb.Email, &fb.Body, &fb.CreatedAt, &fb.UpdatedAt)
	return fb, err
}
