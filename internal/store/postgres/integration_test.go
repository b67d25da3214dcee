//go:build integration

package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/JonMunkholm/feedbacks/internal/core"
)

func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("feedbacks"),
		tcpostgres.WithUsername("feedbacks"),
		tcpostgres.WithPassword("feedbacks"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestIntegration_ImportAndList(t *testing.T) {
	ctx := context.Background()
	store := New(startPostgres(t))
	require.NoError(t, store.EnsureSchema(ctx))
	// Applying the schema twice must be harmless.
	require.NoError(t, store.EnsureSchema(ctx))

	svc, err := core.NewService(store)
	require.NoError(t, err)

	var records []core.Feedback
	for i := 1; i <= 50; i++ {
		records = append(records, core.Feedback{
			ID:     int64(i),
			PostID: int64(100 + (i-1)%5),
			Name:   fmt.Sprintf("User %d", i),
			Email:  fmt.Sprintf("user%d@example.com", i),
			Body:   fmt.Sprintf("This is feedback number %d.", i),
		})
	}
	n, err := store.InsertMany(ctx, records)
	require.NoError(t, err)
	require.Equal(t, int64(50), n)

	page, err := svc.ListFeedback(ctx, core.NormalizePageRequest("", "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(50), page.TotalItems)
	assert.Equal(t, 5, page.TotalPages)
	require.Len(t, page.Data, 10)
	assert.Equal(t, int64(1), page.Data[0].ID)
	assert.False(t, page.Data[0].CreatedAt.IsZero())

	csv := "id,postId,name,email,body\n" +
		`51,200,Percent,p@example.com,100% sure\nreally` + "\n" +
		"52,200,Under,u@example.com,snake_case\n"
	result, err := svc.ImportCSV(ctx, core.Upload{
		Reader:   strings.NewReader(csv),
		FileName: "more.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)

	page, err = svc.ListFeedback(ctx, core.NormalizePageRequest("", "", ""))
	require.NoError(t, err)
	assert.Equal(t, int64(52), page.TotalItems)
	assert.Equal(t, 6, page.TotalPages)

	// LIKE wildcards in the search term match literally.
	page, err = svc.ListFeedback(ctx, core.PageRequest{Page: 1, Limit: 10, Search: "100%"})
	require.NoError(t, err)
	require.Equal(t, int64(1), page.TotalItems)
	assert.Equal(t, "100% sure\nreally", page.Data[0].Body)

	page, err = svc.ListFeedback(ctx, core.PageRequest{Page: 1, Limit: 10, Search: "e_c"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestIntegration_DuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	store := New(startPostgres(t))
	require.NoError(t, store.EnsureSchema(ctx))

	_, err := store.InsertMany(ctx, []core.Feedback{{ID: 1, PostID: 1, Name: "a", Email: "a", Body: "a"}})
	require.NoError(t, err)

	_, err = store.InsertMany(ctx, []core.Feedback{
		{ID: 2, PostID: 1, Name: "b", Email: "b", Body: "b"},
		{ID: 1, PostID: 1, Name: "dup", Email: "dup", Body: "dup"},
	})
	require.Error(t, err)

	total, err := store.Count(ctx, core.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total, "a failed batch must not leave partial rows")
}

func TestIntegration_SequenceAdvancesPastExplicitIDs(t *testing.T) {
	ctx := context.Background()
	pool := startPostgres(t)
	store := New(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	_, err := store.InsertMany(ctx, []core.Feedback{{ID: 10, PostID: 1, Name: "a", Email: "a", Body: "a"}})
	require.NoError(t, err)

	var id int64
	err = pool.QueryRow(ctx,
		"INSERT INTO feedback (post_id, name, email, body) VALUES (1, 'n', 'e', 'b') RETURNING id",
	).Scan(&id)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)

	deleted, err := store.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestIntegration_NegativeIDsStored(t *testing.T) {
	ctx := context.Background()
	store := New(startPostgres(t))
	require.NoError(t, store.EnsureSchema(ctx))

	n, err := store.InsertMany(ctx, []core.Feedback{
		{ID: -5, PostID: 1, Name: "a", Email: "a", Body: "a"},
		{ID: -2, PostID: 1, Name: "b", Email: "b", Body: "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := store.SelectPage(ctx, core.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(-5), rows[0].ID)
}
