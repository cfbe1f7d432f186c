package cli

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"sql-eval/internal/domain"
	"sql-eval/pkg/astdb"
)

func newIndexCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Query the DuckDB index of canonical trees",
	}
	cmd.AddCommand(newIndexKindsCmd(st))
	return cmd
}

func newIndexKindsCmd(st *rootState) *cobra.Command {
	var (
		duckdbPath  string
		minDistance float64
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "Count node kinds per side in pairs above a distance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := st.cfg.DuckDBPath
			if cmd.Flags().Changed("duckdb") {
				path = duckdbPath
			}
			if path == "" {
				return domain.ErrValidation("no tree index configured: pass --duckdb or set SQLEVAL_DUCKDB_PATH")
			}
			counts, err := astdb.KindCounts(cmd.Context(), path, minDistance, limit)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				if counts == nil {
					counts = []astdb.KindCount{}
				}
				return printJSON(os.Stdout, counts)
			}
			rows := make([][]string, len(counts))
			for i, kc := range counts {
				rows[i] = []string{kc.Side, kc.Kind, strconv.FormatInt(kc.Count, 10)}
			}
			printTable(os.Stdout, []string{"side", "kind", "count"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&duckdbPath, "duckdb", "", "DuckDB tree index path")
	cmd.Flags().Float64Var(&minDistance, "min-distance", 0, "Only count pairs whose distance is above this value")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows")

	return cmd
}
