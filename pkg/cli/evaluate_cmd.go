package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sql-eval/internal/artifact"
	"sql-eval/internal/config"
	internaldb "sql-eval/internal/db"
	"sql-eval/internal/db/repository"
	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/service/evaluation"
	"sql-eval/internal/treediff"
	"sql-eval/pkg/astdb"
)

// evaluateSummary is what evaluate prints after writing the artifacts.
type evaluateSummary struct {
	Pairs           int     `json:"pairs"`
	Truncated       int     `json:"truncated"`
	Misses          int     `json:"misses"`
	ASTDistanceMean float64 `json:"ast_distance_mean"`
	TokenCosineMean float64 `json:"token_cosine_mean"`
	OutputDir       string  `json:"output_dir"`
	RunID           string  `json:"run_id,omitempty"`
	IndexedNodes    int64   `json:"indexed_nodes,omitempty"`
	DurationMS      int64   `json:"duration_ms"`
}

func newEvaluateCmd(st *rootState) *cobra.Command {
	var (
		outputDir   string
		workers     int
		parsePolicy string
		ledger      string
		duckdbPath  string
		noProgress  bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate <generated.json> <reference.json>",
		Short: "Score a batch of generated queries against their references",
		Long: "Pairs the records of both files by position, scores every pair and writes " +
			"eval.json and metrics.json to the output directory. Records whose question " +
			"differs from its reference abort the batch.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *st.cfg
			flags := cmd.Flags()
			if flags.Changed("output-dir") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("workers") {
				if workers < 1 {
					return domain.ErrValidation("--workers must be at least 1, got %d", workers)
				}
				cfg.Workers = workers
			}
			if flags.Changed("parse-policy") {
				policy, err := domain.ParseParsePolicy(parsePolicy)
				if err != nil {
					return err
				}
				cfg.ParsePolicy = policy
			}
			if flags.Changed("ledger") {
				cfg.LedgerPath = ledger
			}
			if flags.Changed("duckdb") {
				cfg.DuckDBPath = duckdbPath
			}

			showProgress := !noProgress && getOutputFormat(cmd) != "json" && isTerminal(os.Stderr)
			summary, err := runEvaluate(cmd.Context(), st, &cfg, args[0], args[1], showProgress)
			if err != nil {
				return err
			}
			return printEvaluateSummary(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for eval.json and metrics.json (default \"output\")")
	cmd.Flags().IntVar(&workers, "workers", 1, "Concurrent pair evaluations")
	cmd.Flags().StringVar(&parsePolicy, "parse-policy", "", "Parse failure policy (strict, score-generated-as-miss)")
	cmd.Flags().StringVar(&ledger, "ledger", "", "Record the run in this SQLite ledger")
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "Index the canonical trees into this DuckDB database")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the progress bar")

	return cmd
}

func runEvaluate(ctx context.Context, st *rootState, cfg *config.Config, generatedPath, referencePath string, showProgress bool) (*evaluateSummary, error) {
	generated, err := artifact.LoadGenerated(generatedPath)
	if err != nil {
		return nil, err
	}
	reference, err := artifact.LoadReference(referencePath)
	if err != nil {
		return nil, err
	}

	var runs domain.RunRepository
	if cfg.LedgerEnabled() {
		ledger, err := internaldb.OpenLedger(ctx, cfg.LedgerPath)
		if err != nil {
			return nil, err
		}
		defer ledger.Close() //nolint:errcheck
		runs = repository.NewRunRepo(ledger.Write, ledger.Read)
	}

	var onProgress func(done, total int)
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(min(len(generated), len(reference))), "evaluating")
		onProgress = func(_, _ int) { _ = bar.Add(1) }
	}

	frontend := evaluator.NewFrontend()
	svc := evaluation.NewService(evaluation.Deps{
		Evaluator:  evaluator.New(frontend, cfg.ParsePolicy, st.logger),
		Runs:       runs,
		Logger:     st.logger,
		Workers:    cfg.Workers,
		OnProgress: onProgress,
	})

	outcome, err := svc.EvaluateBatch(ctx, generated, reference)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return nil, err
	}
	if err := artifact.Write(cfg.OutputDir, outcome.Results, outcome.Aggregate); err != nil {
		return nil, err
	}

	summary := &evaluateSummary{
		Pairs:           len(outcome.Results),
		Truncated:       outcome.Truncated,
		Misses:          outcome.Misses,
		ASTDistanceMean: outcome.Aggregate.ASTDistanceMean,
		TokenCosineMean: outcome.Aggregate.TokenCosineMean,
		OutputDir:       cfg.OutputDir,
		DurationMS:      outcome.Duration.Milliseconds(),
	}

	if runs != nil {
		run, err := svc.Record(ctx, evaluation.RunInfo{GeneratedPath: generatedPath, ReferencePath: referencePath}, outcome)
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
	}

	if cfg.DuckDBPath != "" {
		res, err := astdb.Index(ctx, astdb.Options{DuckDBPath: cfg.DuckDBPath}, indexPairs(frontend, outcome.Results))
		if err != nil {
			return nil, fmt.Errorf("index trees: %w", err)
		}
		st.logger.Info("trees indexed", "path", cfg.DuckDBPath, "pairs", res.Pairs, "nodes", res.Nodes)
		summary.IndexedNodes = res.Nodes
	}
	return summary, nil
}

// indexPairs rebuilds the canonical trees of every evaluated pair. Queries
// that are empty or fail to parse get no tree.
func indexPairs(frontend evaluator.Frontend, results []domain.EvaluationResult) []astdb.Pair {
	pairs := make([]astdb.Pair, len(results))
	for i, r := range results {
		pairs[i] = astdb.Pair{
			Question:      r.Question,
			GeneratedSQL:  r.GeneratedQuery,
			ReferenceSQL:  r.ReferenceQuery,
			ASTDistance:   r.ASTDistance,
			TokenCosine:   r.TokenCosine,
			GeneratedTree: canonicalTree(frontend, r.GeneratedQuery),
			ReferenceTree: canonicalTree(frontend, r.ReferenceQuery),
		}
	}
	return pairs
}

func canonicalTree(frontend evaluator.Frontend, sql string) *treediff.Node {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	c, err := frontend.Canonicalize(sql)
	if err != nil {
		return nil
	}
	return frontend.Tree(c)
}

func printEvaluateSummary(cmd *cobra.Command, s *evaluateSummary) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(os.Stdout, s)
	}
	fields := map[string]any{
		"pairs":             s.Pairs,
		"truncated":         s.Truncated,
		"misses":            s.Misses,
		"ast_distance_mean": s.ASTDistanceMean,
		"token_cosine_mean": s.TokenCosineMean,
		"output_dir":        s.OutputDir,
	}
	if s.RunID != "" {
		fields["run_id"] = s.RunID
	}
	if s.IndexedNodes > 0 {
		fields["indexed_nodes"] = s.IndexedNodes
	}
	printDetail(os.Stdout, fields)
	return nil
}
