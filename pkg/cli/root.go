// Package cli implements the sqleval command tree.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sql-eval/internal/config"
	"sql-eval/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// rootState carries the settings resolved by the root command to its
// subcommands.
type rootState struct {
	output   string
	profile  string
	logLevel string
	envFile  string

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the CLI.
func Execute() int {
	return execute(newRootCmd())
}

func execute(rootCmd *cobra.Command) int {
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, errorObject(err))
		} else {
			_, _ = colorFor(os.Stderr, color.FgHiRed).Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorObject describes err for --output json, with the details of domain
// errors as separate fields.
func errorObject(err error) map[string]any {
	obj := map[string]any{"error": err.Error()}
	var (
		parseErr    *domain.ParseError
		mismatchErr *domain.QuestionMismatchError
		noResults   *domain.NoResultsError
		validation  *domain.ValidationError
		notFound    *domain.NotFoundError
	)
	switch {
	case errors.As(err, &parseErr):
		obj["code"] = "parse_error"
		obj["side"] = string(parseErr.Side)
		obj["position"] = parseErr.Pos
	case errors.As(err, &mismatchErr):
		obj["code"] = "question_mismatch"
		obj["index"] = mismatchErr.Index
	case errors.As(err, &noResults):
		obj["code"] = "no_results"
	case errors.As(err, &validation):
		obj["code"] = "validation"
	case errors.As(err, &notFound):
		obj["code"] = "not_found"
	}
	return obj
}

func newRootCmd() *cobra.Command {
	st := &rootState{}

	rootCmd := &cobra.Command{
		Use:   "sqleval",
		Short: "SQL similarity evaluation",
		Long: "Scores generated SQL queries against reference queries with a structural " +
			"tree distance and a lexical token cosine.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&st.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&st.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&st.envFile, "env-file", ".env", "Environment file loaded before reading the environment")

	rootCmd.AddCommand(newEvaluateCmd(st))
	rootCmd.AddCommand(newScoreCmd(st))
	rootCmd.AddCommand(newCanonicalizeCmd(st))
	rootCmd.AddCommand(newTokensCmd(st))
	rootCmd.AddCommand(newDiffCmd(st))
	rootCmd.AddCommand(newRunsCmd(st))
	rootCmd.AddCommand(newIndexCmd(st))
	rootCmd.AddCommand(newServeCmd(st))
	rootCmd.AddCommand(newDocsCmd())

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve applies precedence flag > env > profile > default to every
// setting and builds the logger.
func (st *rootState) resolve(cmd *cobra.Command) error {
	if st.envFile != "" {
		if err := config.LoadDotEnv(st.envFile); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	userCfg, err := loadUserConfigOrDefault()
	if err != nil {
		return err
	}
	p, err := userCfg.ActiveProfile(st.profile)
	if err != nil {
		return err
	}
	if err := applyProfile(cfg, p); err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	if !flags.Changed("output") {
		if v := os.Getenv("SQLEVAL_OUTPUT"); v != "" {
			st.output = v
		} else if p.Output != "" {
			st.output = p.Output
		}
	}
	if err := validateOutputFormat(st.output); err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = st.logLevel
	}

	st.cfg = cfg
	st.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		st.logger.Warn(w)
	}
	return nil
}

// applyProfile copies profile values into cfg for every setting whose
// environment variable is unset.
func applyProfile(cfg *config.Config, p Profile) error {
	if p.OutputDir != "" && !envSet("SQLEVAL_OUTPUT_DIR") {
		cfg.OutputDir = p.OutputDir
	}
	if p.Workers > 0 && !envSet("SQLEVAL_WORKERS") {
		cfg.Workers = p.Workers
	}
	if p.ParsePolicy != "" && !envSet("SQLEVAL_PARSE_POLICY") {
		policy, err := domain.ParseParsePolicy(p.ParsePolicy)
		if err != nil {
			return fmt.Errorf("profile parse-policy: %w", err)
		}
		cfg.ParsePolicy = policy
	}
	if p.Ledger != "" && !envSet("SQLEVAL_LEDGER_PATH") {
		cfg.LedgerPath = p.Ledger
	}
	if p.DuckDB != "" && !envSet("SQLEVAL_DUCKDB_PATH") {
		cfg.DuckDBPath = p.DuckDB
	}
	if p.LogLevel != "" && !envSet("LOG_LEVEL") {
		cfg.LogLevel = p.LogLevel
	}
	return nil
}

func envSet(key string) bool {
	return strings.TrimSpace(os.Getenv(key)) != ""
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
