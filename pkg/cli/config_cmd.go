package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"sql-eval/internal/domain"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration profiles",
	}

	cmd.AddCommand(newConfigViewCmd())
	cmd.AddCommand(newConfigSetProfileCmd())
	cmd.AddCommand(newConfigUseProfileCmd())

	return cmd
}

func newConfigViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "view",
		Aliases: []string{"show"},
		Short:   "Display configured profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "No configuration found at %s\n", ConfigPath())
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]any{
					"current_profile": cfg.CurrentProfile,
					"profiles":        cfg.Profiles,
				})
			}

			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)

			columns := []string{"profile", "active", "output", "workers", "parse_policy", "output_dir", "ledger", "duckdb"}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				p := cfg.Profiles[name]
				active := ""
				if name == cfg.CurrentProfile {
					active = "*"
				}
				workers := ""
				if p.Workers > 0 {
					workers = strconv.Itoa(p.Workers)
				}
				rows = append(rows, []string{name, active, p.Output, workers, p.ParsePolicy, p.OutputDir, p.Ledger, p.DuckDB})
			}
			printTable(os.Stdout, columns, rows)
			return nil
		},
	}
}

func newConfigSetProfileCmd() *cobra.Command {
	var (
		name        string
		output      string
		outputDir   string
		workers     int
		parsePolicy string
		ledger      string
		duckdbPath  string
	)

	cmd := &cobra.Command{
		Use:   "set-profile",
		Short: "Create or update a configuration profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}
			flags := cmd.Flags()
			if flags.Changed("default-output") {
				if err := validateOutputFormat(output); err != nil {
					return err
				}
			}
			if flags.Changed("parse-policy") {
				if _, err := domain.ParseParsePolicy(parsePolicy); err != nil {
					return err
				}
			}
			if flags.Changed("workers") && workers < 1 {
				return domain.ErrValidation("--workers must be at least 1, got %d", workers)
			}

			cfg, err := loadUserConfigOrDefault()
			if err != nil {
				return err
			}

			p := cfg.Profiles[name]
			if flags.Changed("default-output") {
				p.Output = output
			}
			if flags.Changed("output-dir") {
				p.OutputDir = outputDir
			}
			if flags.Changed("workers") {
				p.Workers = workers
			}
			if flags.Changed("parse-policy") {
				p.ParsePolicy = parsePolicy
			}
			if flags.Changed("ledger") {
				p.Ledger = ledger
			}
			if flags.Changed("duckdb") {
				p.DuckDB = duckdbPath
			}
			cfg.Profiles[name] = p

			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{
					"status":  "ok",
					"profile": name,
					"path":    ConfigPath(),
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Profile %q saved to %s\n", name, ConfigPath())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Profile name (required)")
	cmd.Flags().StringVar(&output, "default-output", "", "Default output format (table, json)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for eval.json and metrics.json")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent pair evaluations")
	cmd.Flags().StringVar(&parsePolicy, "parse-policy", "", "Parse failure policy (strict, score-generated-as-miss)")
	cmd.Flags().StringVar(&ledger, "ledger", "", "SQLite run ledger path")
	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "DuckDB tree index path")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newConfigUseProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use-profile <name>",
		Short: "Set the active configuration profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadUserConfig()
			if err != nil {
				return fmt.Errorf("no config found: %w", err)
			}
			name := args[0]
			if _, ok := cfg.Profiles[name]; !ok {
				return fmt.Errorf("profile %q not found", name)
			}
			cfg.CurrentProfile = name
			if err := SaveUserConfig(cfg); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{
					"status":         "ok",
					"active_profile": name,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Active profile set to %q\n", name)
			return nil
		},
	}
}
