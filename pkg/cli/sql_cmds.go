package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sql-eval/internal/domain"
	"sql-eval/internal/evaluator"
	"sql-eval/internal/metrics"
	"sql-eval/internal/sqlcanon"
	"sql-eval/internal/treediff"
)

// readSQL returns the single SQL argument, or stdin when it is piped and no
// argument was given.
func readSQL(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		if sql := strings.TrimSpace(string(data)); sql != "" {
			return sql, nil
		}
	}
	return "", domain.ErrValidation("provide SQL as an argument or on stdin")
}

func canonicalize(sql string) (*sqlcanon.Canonical, error) {
	c, err := sqlcanon.Canonicalize(sql)
	if err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return c, nil
}

func newScoreCmd(st *rootState) *cobra.Command {
	var (
		generated   string
		reference   string
		question    string
		parsePolicy string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one generated query against its reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			policy := st.cfg.ParsePolicy
			if cmd.Flags().Changed("parse-policy") {
				p, err := domain.ParseParsePolicy(parsePolicy)
				if err != nil {
					return err
				}
				policy = p
			}
			ev := evaluator.New(evaluator.NewFrontend(), policy, st.logger)
			result, err := ev.EvaluatePair(
				domain.GeneratedRecord{Question: question, GeneratedQuery: generated},
				domain.ReferenceRecord{Question: question, Query: reference},
			)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, result)
			}
			printDetail(os.Stdout, map[string]any{
				"ast_distance": result.ASTDistance,
				"token_cosine": result.TokenCosine,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&generated, "generated", "", "Generated SQL (may be empty)")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference SQL (required)")
	cmd.Flags().StringVar(&question, "question", "", "Question both queries answer")
	cmd.Flags().StringVar(&parsePolicy, "parse-policy", "", "Parse failure policy (strict, score-generated-as-miss)")
	_ = cmd.MarkFlagRequired("reference")

	return cmd
}

func newCanonicalizeCmd(_ *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "canonicalize [sql]",
		Short: "Print the canonical form of a query",
		Long: "Resolves table aliases, folds identifier case and orders commutative " +
			"operands, then prints the result. Reads stdin when no argument is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(args)
			if err != nil {
				return err
			}
			c, err := canonicalize(sql)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"sql": sql, "canonical": c.SQL})
			}
			_, _ = fmt.Fprintln(os.Stdout, c.SQL)
			return nil
		},
	}
}

type tokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// sortedTokenCounts orders a token multiset by count, then token.
func sortedTokenCounts(counts map[string]int) []tokenCount {
	out := make([]tokenCount, 0, len(counts))
	for tok, n := range counts {
		out = append(out, tokenCount{Token: tok, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Token < out[j].Token
	})
	return out
}

func newTokensCmd(_ *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [sql]",
		Short: "Print the token multiset of a canonical query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := readSQL(args)
			if err != nil {
				return err
			}
			frontend := evaluator.NewFrontend()
			c, err := frontend.Canonicalize(sql)
			if err != nil {
				return fmt.Errorf("canonicalize: %w", err)
			}
			tokens, err := frontend.Tokenize(c.SQL)
			if err != nil {
				return fmt.Errorf("tokenize: %w", err)
			}
			counts := sortedTokenCounts(metrics.TokenCounts(tokens))
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, counts)
			}
			rows := make([][]string, len(counts))
			for i, tc := range counts {
				rows[i] = []string{tc.Token, strconv.Itoa(tc.Count)}
			}
			printTable(os.Stdout, []string{"token", "count"}, rows)
			return nil
		},
	}
}

type editView struct {
	Op     string `json:"op"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

func editViews(edits []treediff.Edit) []editView {
	out := make([]editView, len(edits))
	for i, e := range edits {
		v := editView{Op: e.Op.String()}
		if e.Source != nil {
			v.Source = e.Source.String()
		}
		if e.Target != nil {
			v.Target = e.Target.String()
		}
		out[i] = v
	}
	return out
}

var opColors = map[treediff.Op]color.Attribute{
	treediff.OpRemove: color.FgRed,
	treediff.OpInsert: color.FgGreen,
	treediff.OpUpdate: color.FgYellow,
	treediff.OpMove:   color.FgCyan,
}

func newDiffCmd(_ *rootState) *cobra.Command {
	var showTrees bool

	cmd := &cobra.Command{
		Use:   "diff <sql-a> <sql-b>",
		Short: "Print the edit script between two canonical query trees",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := canonicalize(args[0])
			if err != nil {
				return err
			}
			b, err := canonicalize(args[1])
			if err != nil {
				return err
			}
			treeA, treeB := sqlcanon.ToTree(a.Stmt), sqlcanon.ToTree(b.Stmt)
			edits := treediff.Diff(treeA, treeB)
			distance := metrics.ASTDistance(treeA, treeB)

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]any{
					"edits":        editViews(edits),
					"ast_distance": distance,
				})
			}

			if showTrees {
				_, _ = fmt.Fprintf(os.Stdout, "--- %s\n%s", a.SQL, treediff.Format(treeA))
				_, _ = fmt.Fprintf(os.Stdout, "+++ %s\n%s", b.SQL, treediff.Format(treeB))
			}
			for i, v := range editViews(edits) {
				op := colorFor(os.Stdout, opColors[edits[i].Op]).Sprint(v.Op)
				switch {
				case v.Source != "" && v.Target != "":
					_, _ = fmt.Fprintf(os.Stdout, "%s %s -> %s\n", op, v.Source, v.Target)
				case v.Source != "":
					_, _ = fmt.Fprintf(os.Stdout, "%s %s\n", op, v.Source)
				default:
					_, _ = fmt.Fprintf(os.Stdout, "%s %s\n", op, v.Target)
				}
			}
			_, _ = fmt.Fprintf(os.Stdout, "edits: %d\nast_distance: %s\n", len(edits), formatScore(distance))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showTrees, "trees", false, "Also print both canonical trees")

	return cmd
}
