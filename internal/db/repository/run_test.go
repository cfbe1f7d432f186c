package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "sql-eval/internal/db"
	"sql-eval/internal/domain"
)

func setupRunRepo(t *testing.T) *RunRepo {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	return NewRunRepo(writeDB, readDB)
}

func makeRun(id string, created time.Time) *domain.Run {
	return &domain.Run{
		ID:              id,
		CreatedAt:       created,
		GeneratedPath:   "gen.json",
		ReferencePath:   "ref.json",
		Pairs:           2,
		ASTDistanceMean: 0.3,
		TokenCosineMean: 0.9,
		ParsePolicy:     domain.ParsePolicyStrict,
	}
}

func TestRunRepo_CreateAndGet(t *testing.T) {
	repo := setupRunRepo(t)
	ctx := context.Background()
	created := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	items := []domain.RunItem{
		{Position: 0, Question: "count users", ASTDistance: 0, TokenCosine: 1},
		{Position: 1, Question: "list orders", ASTDistance: 0.6, TokenCosine: 0.8},
	}
	stored, err := repo.Create(ctx, makeRun("run-1", created), items)
	require.NoError(t, err)
	assert.Equal(t, "run-1", stored.ID)
	assert.Equal(t, created, stored.CreatedAt)

	got, err := repo.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	gotItems, err := repo.ListItems(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, items, gotItems)
}

func TestRunRepo_GetNotFound(t *testing.T) {
	repo := setupRunRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	var nerr *domain.NotFoundError
	require.ErrorAs(t, err, &nerr)
	assert.Contains(t, err.Error(), "missing")
}

func TestRunRepo_CreateIsAtomic(t *testing.T) {
	repo := setupRunRepo(t)
	ctx := context.Background()

	// Duplicate positions violate the primary key and roll back the run.
	items := []domain.RunItem{{Position: 0, Question: "a"}, {Position: 0, Question: "b"}}
	_, err := repo.Create(ctx, makeRun("run-dup", time.Now()), items)
	require.Error(t, err)

	_, err = repo.Get(ctx, "run-dup")
	var nerr *domain.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestRunRepo_ListNewestFirstWithPaging(t *testing.T) {
	repo := setupRunRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, err := repo.Create(ctx, makeRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute)), nil)
		require.NoError(t, err)
	}

	first, err := repo.List(ctx, domain.PageRequest{Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, first.Total)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "run-4", first.Items[0].ID)
	assert.Equal(t, "run-3", first.Items[1].ID)
	require.NotEmpty(t, first.NextPageToken)

	second, err := repo.List(ctx, domain.PageRequest{Size: 2, PageToken: first.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "run-2", second.Items[0].ID)

	last, err := repo.List(ctx, domain.PageRequest{Size: 2, PageToken: second.NextPageToken})
	require.NoError(t, err)
	require.Len(t, last.Items, 1)
	assert.Equal(t, "run-0", last.Items[0].ID)
	assert.Empty(t, last.NextPageToken)
}

func TestRunRepo_ListEmpty(t *testing.T) {
	repo := setupRunRepo(t)

	page, err := repo.List(context.Background(), domain.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.NextPageToken)
}

func TestRunRepo_ListItemsUnknownRun(t *testing.T) {
	repo := setupRunRepo(t)

	items, err := repo.ListItems(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, items)
}
