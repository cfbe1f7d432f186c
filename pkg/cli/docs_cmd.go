package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sql-eval/internal/api"
	"sql-eval/internal/docsgen"
)

func newDocsCmd() *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate markdown reference docs for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := api.LoadOpenAPI(cmd.Context())
			if err != nil {
				return err
			}
			pages, err := docsgen.Write(doc, outDir)
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				paths := make([]string, len(pages))
				for i, p := range pages {
					paths[i] = p.Path
				}
				return printJSON(os.Stdout, map[string]any{"out_dir": outDir, "pages": paths})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Wrote %d pages to %s\n", len(pages), outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "docs/api", "Output directory (replaced on every run)")

	return cmd
}
