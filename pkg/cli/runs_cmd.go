package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sql-eval/internal/api"
	internaldb "sql-eval/internal/db"
	"sql-eval/internal/db/repository"
	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/service/evaluation"
)

func newRunsCmd(st *rootState) *cobra.Command {
	var ledger string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect evaluation runs recorded in the ledger",
	}
	cmd.PersistentFlags().StringVar(&ledger, "ledger", "", "SQLite run ledger path")

	ledgerPath := func(cmd *cobra.Command) (string, error) {
		path := st.cfg.LedgerPath
		if cmd.Flags().Changed("ledger") {
			path = ledger
		}
		if path == "" {
			return "", domain.ErrValidation("no run ledger configured: pass --ledger or set SQLEVAL_LEDGER_PATH")
		}
		return path, nil
	}

	cmd.AddCommand(newRunsListCmd(st, ledgerPath))
	cmd.AddCommand(newRunsShowCmd(st, ledgerPath))
	return cmd
}

// withRuns opens the ledger at path and hands a service backed by it to fn.
func withRuns(ctx context.Context, st *rootState, path string, fn func(*evaluation.Service) error) error {
	ledger, err := internaldb.OpenLedger(ctx, path)
	if err != nil {
		return err
	}
	defer ledger.Close() //nolint:errcheck

	svc := evaluation.NewService(evaluation.Deps{
		Evaluator: evaluator.New(evaluator.NewFrontend(), st.cfg.ParsePolicy, st.logger),
		Runs:      repository.NewRunRepo(ledger.Write, ledger.Read),
		Logger:    st.logger,
	})
	return fn(svc)
}

func newRunsListCmd(st *rootState, ledgerPath func(*cobra.Command) (string, error)) *cobra.Command {
	var (
		maxResults int
		pageToken  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := ledgerPath(cmd)
			if err != nil {
				return err
			}
			return withRuns(cmd.Context(), st, path, func(svc *evaluation.Service) error {
				page, err := svc.ListRuns(cmd.Context(), domain.PageRequest{Size: maxResults, PageToken: pageToken})
				if err != nil {
					return err
				}
				if getOutputFormat(cmd) == "json" {
					resp := api.ListRunsResponse{
						Runs:          make([]api.Run, len(page.Items)),
						Total:         page.Total,
						NextPageToken: page.NextPageToken,
					}
					for i, r := range page.Items {
						resp.Runs[i] = api.RunFromDomain(r)
					}
					return printJSON(os.Stdout, resp)
				}

				rows := make([][]string, len(page.Items))
				for i, r := range page.Items {
					rows[i] = []string{
						r.ID,
						r.CreatedAt.Local().Format(time.DateTime),
						strconv.Itoa(r.Pairs),
						strconv.Itoa(r.Truncated),
						formatScore(r.ASTDistanceMean),
						formatScore(r.TokenCosineMean),
						string(r.ParsePolicy),
					}
				}
				printTable(os.Stdout, []string{"id", "created", "pairs", "truncated", "ast_distance_mean", "token_cosine_mean", "parse_policy"}, rows)
				if page.NextPageToken != "" {
					_, _ = fmt.Fprintf(os.Stderr, "More runs available: --page-token %s\n", page.NextPageToken)
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&maxResults, "max-results", domain.DefaultPageSize, "Maximum runs per page")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Token of the page to fetch")

	return cmd
}

func newRunsShowCmd(st *rootState, ledgerPath func(*cobra.Command) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a recorded run and its per-pair scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ledgerPath(cmd)
			if err != nil {
				return err
			}
			return withRuns(cmd.Context(), st, path, func(svc *evaluation.Service) error {
				run, items, err := svc.GetRun(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if getOutputFormat(cmd) == "json" {
					return printJSON(os.Stdout, api.RunDetail{Run: api.RunFromDomain(*run), Items: api.RunItemsFromDomain(items)})
				}

				printDetail(os.Stdout, map[string]any{
					"id":                run.ID,
					"created":           run.CreatedAt.Local().Format(time.DateTime),
					"generated":         run.GeneratedPath,
					"reference":         run.ReferencePath,
					"pairs":             run.Pairs,
					"truncated":         run.Truncated,
					"ast_distance_mean": run.ASTDistanceMean,
					"token_cosine_mean": run.TokenCosineMean,
					"parse_policy":      string(run.ParsePolicy),
				})
				_, _ = fmt.Fprintln(os.Stdout)
				rows := make([][]string, len(items))
				for i, item := range items {
					rows[i] = []string{
						strconv.Itoa(item.Position),
						item.Question,
						formatScore(item.ASTDistance),
						formatScore(item.TokenCosine),
					}
				}
				printTable(os.Stdout, []string{"position", "question", "ast_distance", "token_cosine"}, rows)
				return nil
			})
		},
	}
}
