// Package mapper provides conversion functions between domain and database types.
package mapper

import (
	"time"

	dbstore "sql-eval/internal/db/dbstore"
	"sql-eval/internal/domain"
)

// timeLayout sorts lexicographically in chronological order.
const timeLayout = "2006-01-02 15:04:05.000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

// RunToDBParams converts a domain run into insert parameters.
func RunToDBParams(r *domain.Run) dbstore.CreateRunParams {
	return dbstore.CreateRunParams{
		ID:              r.ID,
		CreatedAt:       formatTime(r.CreatedAt),
		GeneratedPath:   r.GeneratedPath,
		ReferencePath:   r.ReferencePath,
		Pairs:           int64(r.Pairs),
		Truncated:       int64(r.Truncated),
		AstDistanceMean: r.ASTDistanceMean,
		TokenCosineMean: r.TokenCosineMean,
		ParsePolicy:     string(r.ParsePolicy),
	}
}

// RunFromDB converts a database row into a domain run.
func RunFromDB(row dbstore.Run) *domain.Run {
	return &domain.Run{
		ID:              row.ID,
		CreatedAt:       parseTime(row.CreatedAt),
		GeneratedPath:   row.GeneratedPath,
		ReferencePath:   row.ReferencePath,
		Pairs:           int(row.Pairs),
		Truncated:       int(row.Truncated),
		ASTDistanceMean: row.AstDistanceMean,
		TokenCosineMean: row.TokenCosineMean,
		ParsePolicy:     domain.ParsePolicy(row.ParsePolicy),
	}
}

// RunItemToDBParams converts a run item into insert parameters.
func RunItemToDBParams(runID string, item domain.RunItem) dbstore.CreateRunItemParams {
	return dbstore.CreateRunItemParams{
		RunID:       runID,
		Position:    int64(item.Position),
		Question:    item.Question,
		AstDistance: item.ASTDistance,
		TokenCosine: item.TokenCosine,
	}
}

// RunItemFromDB converts a database row into a run item.
func RunItemFromDB(row dbstore.RunItem) domain.RunItem {
	return domain.RunItem{
		Position:    int(row.Position),
		Question:    row.Question,
		ASTDistance: row.AstDistance,
		TokenCosine: row.TokenCosine,
	}
}
