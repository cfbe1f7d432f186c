// Package astdb indexes the canonical query trees of an evaluation run in
// DuckDB so the differences between generated and reference queries can be
// explored with SQL.
package astdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"runtime"
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"

	"sql-eval/internal/treediff"
)

// Options controls indexing.
type Options struct {
	DuckDBPath string
	// Threads sets DuckDB's worker threads; 0 uses every CPU.
	Threads int
}

// Pair is one evaluated pair together with its canonical trees. A tree is
// nil when the query was empty or could not be parsed.
type Pair struct {
	Question      string
	GeneratedSQL  string
	ReferenceSQL  string
	ASTDistance   float64
	TokenCosine   float64
	GeneratedTree *treediff.Node
	ReferenceTree *treediff.Node
}

// Result summarizes an index build.
type Result struct {
	Pairs int64
	Nodes int64
}

// Tree sides stored in nodes.side.
const (
	SideGenerated = "generated"
	SideReference = "reference"
)

type nodeRow struct {
	NodeID   int
	ParentID int // 0 for the root
	Depth    int
	Kind     string
	Label    string
}

// Index replaces the contents of the DuckDB database at opts.DuckDBPath with
// pairs and their trees. Tables:
//
//	pairs(pair_id, question, ast_distance, token_cosine, generated_sql, reference_sql)
//	nodes(pair_id, side, node_id, parent_id, depth, kind, label)
//
// pair_id is the 0-based position of the pair; node_id is the 1-based
// pre-order position of the node within its tree.
func Index(ctx context.Context, opts Options, pairs []Pair) (*Result, error) {
	if strings.TrimSpace(opts.DuckDBPath) == "" {
		return nil, fmt.Errorf("duckdb path is required")
	}
	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	db, err := sql.Open("duckdb", opts.DuckDBPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open duckdb conn: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", threads)); err != nil {
		return nil, fmt.Errorf("set duckdb threads: %w", err)
	}
	if err := createSchema(ctx, conn); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if err := load(ctx, conn, pairs); err != nil {
		return nil, err
	}

	res := &Result{}
	if err := conn.QueryRowContext(ctx, `SELECT count(*) FROM pairs`).Scan(&res.Pairs); err != nil {
		return nil, fmt.Errorf("count pairs: %w", err)
	}
	if err := conn.QueryRowContext(ctx, `SELECT count(*) FROM nodes`).Scan(&res.Nodes); err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	return res, nil
}

func createSchema(ctx context.Context, conn *sql.Conn) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS pairs (
			pair_id BIGINT PRIMARY KEY,
			question TEXT NOT NULL,
			ast_distance DOUBLE NOT NULL,
			token_cosine DOUBLE NOT NULL,
			generated_sql TEXT NOT NULL,
			reference_sql TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS nodes (
			pair_id BIGINT NOT NULL,
			side TEXT NOT NULL,
			node_id INTEGER NOT NULL,
			parent_id INTEGER,
			depth INTEGER NOT NULL,
			kind TEXT NOT NULL,
			label TEXT NOT NULL,
			PRIMARY KEY (pair_id, side, node_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// load swaps the table contents in one transaction using appenders.
func load(ctx context.Context, conn *sql.Conn, pairs []Pair) error {
	if _, err := conn.ExecContext(ctx, `BEGIN TRANSACTION`); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	rollback := func(cause error) error {
		_, _ = conn.ExecContext(context.Background(), `ROLLBACK`)
		return cause
	}

	for _, stmt := range []string{`DELETE FROM nodes`, `DELETE FROM pairs`} {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return rollback(fmt.Errorf("clear index: %w", err))
		}
	}

	err := conn.Raw(func(raw any) error {
		driverConn, ok := raw.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected raw conn type %T", raw)
		}
		pairsAppender, err := duckdb.NewAppenderFromConn(driverConn, "", "pairs")
		if err != nil {
			return fmt.Errorf("create pairs appender: %w", err)
		}
		defer func() { _ = pairsAppender.Close() }()

		nodesAppender, err := duckdb.NewAppenderFromConn(driverConn, "", "nodes")
		if err != nil {
			return fmt.Errorf("create nodes appender: %w", err)
		}
		defer func() { _ = nodesAppender.Close() }()

		for i, p := range pairs {
			if err := ctx.Err(); err != nil {
				return err
			}
			pairID := int64(i)
			if err := pairsAppender.AppendRow(pairID, p.Question, p.ASTDistance, p.TokenCosine, p.GeneratedSQL, p.ReferenceSQL); err != nil {
				return fmt.Errorf("append pair %d: %w", i, err)
			}
			for _, side := range []struct {
				name string
				tree *treediff.Node
			}{{SideGenerated, p.GeneratedTree}, {SideReference, p.ReferenceTree}} {
				for _, row := range flatten(side.tree) {
					var parent any
					if row.ParentID > 0 {
						parent = int32(row.ParentID)
					}
					if err := nodesAppender.AppendRow(
						pairID, side.name, int32(row.NodeID), parent, int32(row.Depth), row.Kind, row.Label,
					); err != nil {
						return fmt.Errorf("append %s node %d of pair %d: %w", side.name, row.NodeID, i, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return rollback(err)
	}
	if _, err := conn.ExecContext(ctx, `COMMIT`); err != nil {
		return rollback(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

// flatten lists the nodes of root in pre-order.
func flatten(root *treediff.Node) []nodeRow {
	var rows []nodeRow
	var visit func(n *treediff.Node, parent, depth int)
	visit = func(n *treediff.Node, parent, depth int) {
		id := len(rows) + 1
		rows = append(rows, nodeRow{NodeID: id, ParentID: parent, Depth: depth, Kind: n.Kind, Label: n.Label})
		for _, c := range n.Children {
			visit(c, id, depth+1)
		}
	}
	if root != nil {
		visit(root, 0, 0)
	}
	return rows
}

// KindCount is the number of nodes of one kind on one side.
type KindCount struct {
	Side  string `json:"side"`
	Kind  string `json:"kind"`
	Count int64  `json:"count"`
}

// KindCounts reports, per side, how many nodes of each kind occur in pairs
// whose distance is above minDistance, most frequent first.
func KindCounts(ctx context.Context, duckDBPath string, minDistance float64, limit int) ([]KindCount, error) {
	db, err := sql.Open("duckdb", duckDBPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, `
SELECT n.side, n.kind, count(*) AS cnt
FROM nodes n
JOIN pairs p ON p.pair_id = n.pair_id
WHERE p.ast_distance > ?
GROUP BY n.side, n.kind
ORDER BY cnt DESC, n.side, n.kind
LIMIT ?`, minDistance, limit)
	if err != nil {
		return nil, fmt.Errorf("query kind counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []KindCount
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Side, &kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}
