// Package evaluation runs batches of query pairs through the evaluator and
// aggregates their metrics.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/metrics"
)

// Service evaluates batches of generated queries against references.
type Service struct {
	evaluator  *evaluator.Evaluator
	runs       domain.RunRepository
	logger     *slog.Logger
	workers    int
	onProgress func(done, total int)
}

// Deps holds dependencies for Service.
type Deps struct {
	Evaluator *evaluator.Evaluator
	// Runs is optional; without it Record fails with a ValidationError.
	Runs   domain.RunRepository
	Logger *slog.Logger
	// Workers bounds the number of pairs evaluated concurrently. Values
	// below 1 mean sequential evaluation.
	Workers int
	// OnProgress is called after each evaluated pair. It may be called from
	// several goroutines when Workers > 1.
	OnProgress func(done, total int)
}

// NewService creates a new Service.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := deps.Workers
	if workers < 1 {
		workers = 1
	}
	return &Service{
		evaluator:  deps.Evaluator,
		runs:       deps.Runs,
		logger:     logger,
		workers:    workers,
		onProgress: deps.OnProgress,
	}
}

// EvaluateBatch pairs generated[i] with reference[i] and evaluates every
// pair. When the inputs differ in length the longer one is truncated. The
// results keep input order whatever the number of workers. The first
// failing pair aborts the batch; an empty batch fails with a
// *domain.NoResultsError.
func (s *Service) EvaluateBatch(ctx context.Context, generated []domain.GeneratedRecord, reference []domain.ReferenceRecord) (*domain.BatchOutcome, error) {
	start := time.Now()
	n := min(len(generated), len(reference))
	truncated := max(len(generated), len(reference)) - n
	if truncated > 0 {
		s.logger.Warn("inputs differ in length, extra records ignored",
			"generated", len(generated), "reference", len(reference), "pairs", n)
	}
	if n == 0 {
		return nil, domain.ErrNoResults("no pairs to evaluate (generated=%d, reference=%d)", len(generated), len(reference))
	}

	results := make([]domain.EvaluationResult, n)
	missed := make([]bool, n)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored, err := s.evaluator.Score(generated[i], reference[i])
			if err != nil {
				var mismatch *domain.QuestionMismatchError
				if errors.As(err, &mismatch) {
					mismatch.Index = i
				}
				return fmt.Errorf("pair %d: %w", i, err)
			}
			results[i] = scored.EvaluationResult
			missed[i] = scored.Miss
			if s.onProgress != nil {
				s.onProgress(int(done.Add(1)), n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggregate, err := Aggregate(results)
	if err != nil {
		return nil, err
	}
	misses := 0
	for _, m := range missed {
		if m {
			misses++
		}
	}

	outcome := &domain.BatchOutcome{
		Results:   results,
		Aggregate: aggregate,
		Truncated: truncated,
		Misses:    misses,
		Duration:  time.Since(start),
	}
	s.logger.Info("batch evaluated",
		"pairs", n,
		"truncated", truncated,
		"misses", misses,
		"ast_distance_mean", aggregate.ASTDistanceMean,
		"token_cosine_mean", aggregate.TokenCosineMean,
		"duration", outcome.Duration)
	return outcome, nil
}

// Aggregate computes the batch means of results.
func Aggregate(results []domain.EvaluationResult) (domain.AggregateMetrics, error) {
	distances := make([]float64, len(results))
	cosines := make([]float64, len(results))
	for i, r := range results {
		distances[i] = r.ASTDistance
		cosines[i] = r.TokenCosine
	}
	distanceMean, err := metrics.Mean(distances)
	if err != nil {
		return domain.AggregateMetrics{}, err
	}
	cosineMean, err := metrics.Mean(cosines)
	if err != nil {
		return domain.AggregateMetrics{}, err
	}
	return domain.AggregateMetrics{ASTDistanceMean: distanceMean, TokenCosineMean: cosineMean}, nil
}

// RunInfo describes where a batch came from.
type RunInfo struct {
	GeneratedPath string
	ReferencePath string
}

// Record stores outcome in the run ledger.
func (s *Service) Record(ctx context.Context, info RunInfo, outcome *domain.BatchOutcome) (*domain.Run, error) {
	if s.runs == nil {
		return nil, domain.ErrValidation("run ledger is not configured")
	}
	run := &domain.Run{
		ID:              domain.NewID(),
		CreatedAt:       time.Now().UTC(),
		GeneratedPath:   info.GeneratedPath,
		ReferencePath:   info.ReferencePath,
		Pairs:           len(outcome.Results),
		Truncated:       outcome.Truncated,
		ASTDistanceMean: outcome.Aggregate.ASTDistanceMean,
		TokenCosineMean: outcome.Aggregate.TokenCosineMean,
		ParsePolicy:     s.evaluator.Policy(),
	}
	items := make([]domain.RunItem, len(outcome.Results))
	for i, r := range outcome.Results {
		items[i] = domain.RunItem{Position: i, Question: r.Question, ASTDistance: r.ASTDistance, TokenCosine: r.TokenCosine}
	}

	stored, err := s.runs.Create(ctx, run, items)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	s.logger.Info("run recorded", "run_id", stored.ID, "pairs", stored.Pairs)
	return stored, nil
}

// ListRuns returns one page of recorded runs.
func (s *Service) ListRuns(ctx context.Context, page domain.PageRequest) (domain.Page[domain.Run], error) {
	if s.runs == nil {
		return domain.Page[domain.Run]{}, domain.ErrValidation("run ledger is not configured")
	}
	return s.runs.List(ctx, page)
}

// GetRun returns a recorded run and its items.
func (s *Service) GetRun(ctx context.Context, id string) (*domain.Run, []domain.RunItem, error) {
	if s.runs == nil {
		return nil, nil, domain.ErrValidation("run ledger is not configured")
	}
	run, err := s.runs.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.runs.ListItems(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list run items: %w", err)
	}
	return run, items, nil
}
