package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sql-eval/internal/api"
	internaldb "sql-eval/internal/db"
	"sql-eval/internal/db/repository"
	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/middleware"
	"sql-eval/internal/service/evaluation"
)

func newServeCmd(st *rootState) *cobra.Command {
	var (
		listen string
		ledger string
		record bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the evaluation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := *st.cfg
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listen
			}
			if cmd.Flags().Changed("ledger") {
				cfg.LedgerPath = ledger
			}

			logger := st.logger
			if cfg.IsProduction() {
				logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
			defer cancel()

			var runs domain.RunRepository
			if cfg.LedgerEnabled() {
				l, err := internaldb.OpenLedger(ctx, cfg.LedgerPath)
				if err != nil {
					return err
				}
				defer l.Close() //nolint:errcheck
				runs = repository.NewRunRepo(l.Write, l.Read)
				logger.Info("run ledger opened", "path", cfg.LedgerPath)
			} else if record {
				return domain.ErrValidation("--record needs a run ledger: pass --ledger or set SQLEVAL_LEDGER_PATH")
			}

			ev := evaluator.New(evaluator.NewFrontend(), cfg.ParsePolicy, logger)
			handler := api.NewHandler(api.Deps{
				Evaluator: ev,
				Evaluations: evaluation.NewService(evaluation.Deps{
					Evaluator: ev,
					Runs:      runs,
					Logger:    logger,
					Workers:   cfg.Workers,
				}),
				MaxBatch: cfg.MaxBatch,
				Record:   record,
				Logger:   logger,
			})
			router := api.NewRouter(ctx, handler, api.RouterConfig{
				CORSAllowedOrigins: cfg.CORSAllowedOrigins,
				RateLimit: middleware.RateLimitConfig{
					RequestsPerSecond: cfg.RateLimitRPS,
					Burst:             cfg.RateLimitBurst,
				},
				Logger: logger,
			})

			return serve(ctx, logger, &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      5 * time.Minute,
				IdleTimeout:       120 * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default \":8080\")")
	cmd.Flags().StringVar(&ledger, "ledger", "", "SQLite run ledger path")
	cmd.Flags().BoolVar(&record, "record", false, "Record every evaluated batch in the ledger")

	return cmd
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("evaluation API listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
