package evaluation

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/testutil"
)

func newTestService(workers int, runs domain.RunRepository) *Service {
	return NewService(Deps{
		Evaluator: evaluator.New(evaluator.NewFrontend(), domain.ParsePolicyStrict, nil),
		Runs:      runs,
		Workers:   workers,
	})
}

func pairs(n int) ([]domain.GeneratedRecord, []domain.ReferenceRecord) {
	gen := make([]domain.GeneratedRecord, n)
	ref := make([]domain.ReferenceRecord, n)
	for i := range n {
		q := fmt.Sprintf("question %d", i)
		gen[i] = domain.GeneratedRecord{Question: q, GeneratedQuery: fmt.Sprintf("SELECT id FROM t%d", i)}
		ref[i] = domain.ReferenceRecord{Question: q, Query: fmt.Sprintf("SELECT id FROM t%d WHERE id > %d", i, i)}
	}
	return gen, ref
}

func TestEvaluateBatch_EndToEndExample(t *testing.T) {
	svc := newTestService(1, nil)

	out, err := svc.EvaluateBatch(context.Background(),
		[]domain.GeneratedRecord{{Question: "count users", GeneratedQuery: "SELECT COUNT(*) FROM users"}},
		[]domain.ReferenceRecord{{Question: "count users", Query: "SELECT COUNT(*) FROM users"}},
	)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, 0.0, out.Results[0].ASTDistance)
	assert.Equal(t, 1.0, out.Results[0].TokenCosine)
	assert.Equal(t, 0.0, out.Aggregate.ASTDistanceMean)
	assert.Equal(t, 1.0, out.Aggregate.TokenCosineMean)
	assert.Zero(t, out.Truncated)
}

func TestEvaluateBatch_TruncatesToShorterInput(t *testing.T) {
	gen, ref := pairs(5)

	out, err := newTestService(1, nil).EvaluateBatch(context.Background(), gen, ref[:3])
	require.NoError(t, err)
	assert.Len(t, out.Results, 3)
	assert.Equal(t, 2, out.Truncated)

	out, err = newTestService(1, nil).EvaluateBatch(context.Background(), gen[:2], ref)
	require.NoError(t, err)
	assert.Len(t, out.Results, 2)
	assert.Equal(t, 3, out.Truncated)
}

func TestEvaluateBatch_PreservesOrder(t *testing.T) {
	gen, ref := pairs(40)

	for _, workers := range []int{1, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			out, err := newTestService(workers, nil).EvaluateBatch(context.Background(), gen, ref)
			require.NoError(t, err)
			require.Len(t, out.Results, len(gen))
			for i, r := range out.Results {
				assert.Equal(t, gen[i].Question, r.Question)
				assert.Equal(t, ref[i].Query, r.ReferenceQuery)
			}
		})
	}
}

func TestEvaluateBatch_ParallelMatchesSequential(t *testing.T) {
	gen, ref := pairs(25)

	seq, err := newTestService(1, nil).EvaluateBatch(context.Background(), gen, ref)
	require.NoError(t, err)
	par, err := newTestService(6, nil).EvaluateBatch(context.Background(), gen, ref)
	require.NoError(t, err)

	assert.Equal(t, seq.Results, par.Results)
	assert.Equal(t, seq.Aggregate, par.Aggregate)
}

func TestEvaluateBatch_MismatchAbortsWithIndex(t *testing.T) {
	gen, ref := pairs(4)
	ref[2].Question = "something else"

	_, err := newTestService(1, nil).EvaluateBatch(context.Background(), gen, ref)
	var mismatch *domain.QuestionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Index)
	assert.Contains(t, err.Error(), "pair 2")
}

func TestEvaluateBatch_ParseErrorAborts(t *testing.T) {
	gen, ref := pairs(3)
	gen[1].GeneratedQuery = "SELEC 1"

	_, err := newTestService(1, nil).EvaluateBatch(context.Background(), gen, ref)
	var perr *domain.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, domain.SideGenerated, perr.Side)
}

func TestEvaluateBatch_EmptyGeneratedIsMiss(t *testing.T) {
	gen, ref := pairs(2)
	gen[0].GeneratedQuery = ""

	out, err := newTestService(1, nil).EvaluateBatch(context.Background(), gen, ref)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out.Results[0].ASTDistance)
	assert.Equal(t, 0.0, out.Results[0].TokenCosine)
	assert.Equal(t, 1, out.Misses)
}

func TestEvaluateBatch_EmptyBatch(t *testing.T) {
	tests := []struct {
		name string
		gen  []domain.GeneratedRecord
		ref  []domain.ReferenceRecord
	}{
		{name: "both empty"},
		{name: "reference empty", gen: []domain.GeneratedRecord{{Question: "q"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestService(1, nil).EvaluateBatch(context.Background(), tc.gen, tc.ref)
			var nerr *domain.NoResultsError
			require.ErrorAs(t, err, &nerr)
		})
	}
}

func TestEvaluateBatch_CanceledContext(t *testing.T) {
	gen, ref := pairs(3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(2, nil).EvaluateBatch(ctx, gen, ref)
	require.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateBatch_ReportsProgress(t *testing.T) {
	gen, ref := pairs(10)
	var mu sync.Mutex
	var calls []int

	svc := NewService(Deps{
		Evaluator: evaluator.New(evaluator.NewFrontend(), domain.ParsePolicyStrict, nil),
		Workers:   4,
		OnProgress: func(done, total int) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 10, total)
			calls = append(calls, done)
		},
	})
	_, err := svc.EvaluateBatch(context.Background(), gen, ref)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, calls)
}

func TestAggregate(t *testing.T) {
	agg, err := Aggregate([]domain.EvaluationResult{
		{ASTDistance: 0.2, TokenCosine: 1},
		{ASTDistance: 0.6, TokenCosine: 0.5},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, agg.ASTDistanceMean, 1e-12)
	assert.InDelta(t, 0.75, agg.TokenCosineMean, 1e-12)

	_, err = Aggregate(nil)
	var nerr *domain.NoResultsError
	require.ErrorAs(t, err, &nerr)
}

func TestRecord(t *testing.T) {
	runs := &testutil.MockRunRepo{}
	svc := newTestService(1, runs)
	gen, ref := pairs(2)

	out, err := svc.EvaluateBatch(context.Background(), gen, ref)
	require.NoError(t, err)

	run, err := svc.Record(context.Background(), RunInfo{GeneratedPath: "gen.json", ReferencePath: "ref.json"}, out)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, 2, run.Pairs)
	assert.Equal(t, "gen.json", run.GeneratedPath)
	assert.Equal(t, domain.ParsePolicyStrict, run.ParsePolicy)
	assert.Same(t, run, runs.LastRun())
	require.Len(t, runs.Items[run.ID], 2)
	assert.Equal(t, 1, runs.Items[run.ID][1].Position)
}

func TestRecord_WithoutLedger(t *testing.T) {
	_, err := newTestService(1, nil).Record(context.Background(), RunInfo{}, &domain.BatchOutcome{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}
