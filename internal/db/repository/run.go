package repository

import (
	"context"
	"database/sql"
	"fmt"

	dbstore "sql-eval/internal/db/dbstore"
	"sql-eval/internal/db/mapper"
	"sql-eval/internal/domain"
)

var _ domain.RunRepository = (*RunRepo)(nil)

// RunRepo stores evaluation runs in the SQLite ledger. Writes go through the
// single-connection write pool, reads through the read pool.
type RunRepo struct {
	write *sql.DB
	q     *dbstore.Queries
	read  *dbstore.Queries
}

// NewRunRepo creates a RunRepo. readDB may be the same pool as writeDB.
func NewRunRepo(writeDB, readDB *sql.DB) *RunRepo {
	return &RunRepo{write: writeDB, q: dbstore.New(writeDB), read: dbstore.New(readDB)}
}

// Create inserts run and its items in one transaction.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run, items []domain.RunItem) (*domain.Run, error) {
	tx, err := r.write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create-run tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	qtx := r.q.WithTx(tx)
	row, err := qtx.CreateRun(ctx, mapper.RunToDBParams(run))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	for _, item := range items {
		if err := qtx.CreateRunItem(ctx, mapper.RunItemToDBParams(row.ID, item)); err != nil {
			return nil, fmt.Errorf("insert run item %d: %w", item.Position, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return mapper.RunFromDB(row), nil
}

// Get returns the run with the given ID.
func (r *RunRepo) Get(ctx context.Context, id string) (*domain.Run, error) {
	row, err := r.read.GetRun(ctx, id)
	if err != nil {
		return nil, mapDBError(err, "run %q not found", id)
	}
	return mapper.RunFromDB(row), nil
}

// List returns one page of runs, newest first.
func (r *RunRepo) List(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Run], error) {
	total, err := r.read.CountRuns(ctx)
	if err != nil {
		return domain.Page[domain.Run]{}, fmt.Errorf("count runs: %w", err)
	}
	rows, err := r.read.ListRuns(ctx, dbstore.ListRunsParams{
		Limit:  int64(page.Limit()),
		Offset: int64(page.Offset()),
	})
	if err != nil {
		return domain.Page[domain.Run]{}, fmt.Errorf("list runs: %w", err)
	}

	runs := make([]domain.Run, len(rows))
	for i, row := range rows {
		runs[i] = *mapper.RunFromDB(row)
	}
	return domain.NewPage(runs, page, int(total)), nil
}

// ListItems returns the items of a run ordered by position. An unknown run
// has no items.
func (r *RunRepo) ListItems(ctx context.Context, runID string) ([]domain.RunItem, error) {
	rows, err := r.read.ListRunItems(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list run items: %w", err)
	}
	items := make([]domain.RunItem, len(rows))
	for i, row := range rows {
		items[i] = mapper.RunItemFromDB(row)
	}
	return items, nil
}
