package duckdbsql

// Node is implemented by every syntax tree type. The unexported method keeps
// the set closed to this package.
type Node interface {
	node()
}

// Expr is a node that yields a value.
type Expr interface {
	Node
	exprNode()
}

// TableRef is a node that can appear as a FROM source or join operand.
type TableRef interface {
	Node
	tableRefNode()
}

// === Statement Nodes ===

// SelectStmt is a complete SELECT statement: optional WITH clause, a body of
// one or more set-combined cores, and the trailing ORDER BY / LIMIT / OFFSET
// that apply to the whole body.
type SelectStmt struct {
	With    *WithClause
	Body    *SelectBody
	OrderBy []*OrderByItem
	Limit   Expr
	Offset  Expr
}

func (*SelectStmt) node() {}

// WithClause represents WITH [RECURSIVE] cte, ...
type WithClause struct {
	Recursive bool
	CTEs      []*CTE
}

func (*WithClause) node() {}

// CTE is a single common table expression.
type CTE struct {
	Name    string
	Columns []string
	Select  *SelectStmt
}

func (*CTE) node() {}

// SetOpType identifies the set operator joining two select bodies.
type SetOpType int

// SetOpNone and friends enumerate set operators.
const (
	SetOpNone SetOpType = iota
	SetOpUnion
	SetOpIntersect
	SetOpExcept
)

func (op SetOpType) String() string {
	switch op {
	case SetOpUnion:
		return "UNION"
	case SetOpIntersect:
		return "INTERSECT"
	case SetOpExcept:
		return "EXCEPT"
	default:
		return ""
	}
}

// SelectBody is a chain of select cores joined by set operators.
type SelectBody struct {
	Left  *SelectCore
	Op    SetOpType
	All   bool
	Right *SelectBody // nil when Op == SetOpNone
}

func (*SelectBody) node() {}

// SelectCore is a single SELECT ... FROM ... WHERE ... block.
type SelectCore struct {
	Distinct bool
	Columns  []*SelectItem
	From     *FromClause
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	Qualify  Expr
}

func (*SelectCore) node() {}

// SelectItem is one entry of a select list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

func (*SelectItem) node() {}

// FromClause is the FROM source followed by its joins, left to right.
type FromClause struct {
	Source TableRef
	Joins  []*Join
}

func (*FromClause) node() {}

// JoinType identifies the kind of join.
type JoinType int

// JoinInner and friends enumerate join kinds.
const (
	JoinInner JoinType = iota
	JoinLeft
	JoinRight
	JoinFull
	JoinCross
	JoinComma
)

func (t JoinType) String() string {
	switch t {
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	case JoinCross:
		return "CROSS JOIN"
	case JoinComma:
		return ","
	default:
		return "JOIN"
	}
}

// Join represents one join step.
type Join struct {
	Type      JoinType
	Natural   bool
	Right     TableRef
	Condition Expr     // ON ...
	Using     []string // USING (...)
}

func (*Join) node() {}

// TableName is a stored table or view, written name, schema.name or
// catalog.schema.name, with an optional alias.
type TableName struct {
	Catalog string
	Schema  string
	Name    string
	Alias   string
}

func (*TableName) node()         {}
func (*TableName) tableRefNode() {}

// DerivedTable is a parenthesized query used as a source.
type DerivedTable struct {
	Select *SelectStmt
	Alias  string
}

func (*DerivedTable) node()         {}
func (*DerivedTable) tableRefNode() {}

// FuncTable is a source produced by a function call such as
// read_csv('x.csv') or range(10).
type FuncTable struct {
	Func  *FuncCall
	Alias string
}

func (*FuncTable) node()         {}
func (*FuncTable) tableRefNode() {}

// NullsOrder is the NULLS FIRST/LAST modifier of an ORDER BY item.
type NullsOrder int

// NullsDefault and friends enumerate NULLS modifiers.
const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// OrderByItem is one ORDER BY key.
type OrderByItem struct {
	Expr  Expr
	Desc  bool
	Nulls NullsOrder
}

func (*OrderByItem) node() {}
