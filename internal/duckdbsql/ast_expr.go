package duckdbsql

// === Expression Nodes ===

// ColumnRef represents a column reference, optionally qualified.
type ColumnRef struct {
	Schema string // optional schema qualifier (schema.table.column)
	Table  string // optional table/alias qualifier
	Column string
}

func (*ColumnRef) node()     {}
func (*ColumnRef) exprNode() {}

// Literal represents a literal value (number, string, bool, null).
type Literal struct {
	Type  LiteralType
	Value string
}

func (*Literal) node()     {}
func (*Literal) exprNode() {}

// LiteralType represents the type of a literal.
type LiteralType int

// LiteralNumber and friends enumerate literal kinds.
const (
	LiteralNumber LiteralType = iota
	LiteralString
	LiteralBool
	LiteralNull
)

func (t LiteralType) String() string {
	switch t {
	case LiteralNumber:
		return "number"
	case LiteralString:
		return "string"
	case LiteralBool:
		return "bool"
	default:
		return "null"
	}
}

// BinaryExpr represents a binary expression (left op right).
type BinaryExpr struct {
	Left  Expr
	Op    TokenType
	Right Expr
}

func (*BinaryExpr) node()     {}
func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression (NOT x, -x, +x).
type UnaryExpr struct {
	Op   TokenType
	Expr Expr
}

func (*UnaryExpr) node()     {}
func (*UnaryExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) node()     {}
func (*ParenExpr) exprNode() {}

// StarExpr represents * or table.* in a select list.
type StarExpr struct {
	Table string
}

func (*StarExpr) node()     {}
func (*StarExpr) exprNode() {}

// FuncCall represents a function call, optionally aggregated or windowed.
type FuncCall struct {
	Name     string
	Distinct bool
	Star     bool // COUNT(*)
	Args     []Expr
	Filter   Expr // FILTER (WHERE ...)
	Over     *WindowSpec
}

func (*FuncCall) node()     {}
func (*FuncCall) exprNode() {}

// WindowSpec represents the OVER (...) clause of a window function.
type WindowSpec struct {
	PartitionBy []Expr
	OrderBy     []*OrderByItem
	Frame       *FrameSpec
}

func (*WindowSpec) node() {}

// FrameSpec represents ROWS/RANGE/GROUPS BETWEEN start AND end.
type FrameSpec struct {
	Unit  string // ROWS, RANGE or GROUPS
	Start *FrameBound
	End   *FrameBound // nil for the single-bound form
}

func (*FrameSpec) node() {}

// FrameBoundKind enumerates frame boundary forms.
type FrameBoundKind int

// FrameUnboundedPreceding and friends enumerate frame boundary forms.
const (
	FrameUnboundedPreceding FrameBoundKind = iota
	FramePreceding
	FrameCurrentRow
	FrameFollowing
	FrameUnboundedFollowing
)

// FrameBound is one side of a window frame.
type FrameBound struct {
	Kind   FrameBoundKind
	Offset Expr // set for FramePreceding and FrameFollowing
}

func (*FrameBound) node() {}

// CaseExpr represents CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseExpr struct {
	Operand Expr
	Whens   []*WhenClause
	Else    Expr
}

func (*CaseExpr) node()     {}
func (*CaseExpr) exprNode() {}

// WhenClause is a single WHEN cond THEN result arm.
type WhenClause struct {
	Condition Expr
	Result    Expr
}

func (*WhenClause) node() {}

// CastExpr represents CAST(x AS type), TRY_CAST(x AS type) and x::type.
type CastExpr struct {
	Expr     Expr
	TypeName string
	Try      bool
}

func (*CastExpr) node()     {}
func (*CastExpr) exprNode() {}

// InExpr represents x [NOT] IN (values...) or x [NOT] IN (subquery).
type InExpr struct {
	Expr   Expr
	Not    bool
	Values []Expr
	Query  *SelectStmt
}

func (*InExpr) node()     {}
func (*InExpr) exprNode() {}

// BetweenExpr represents x [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) node()     {}
func (*BetweenExpr) exprNode() {}

// LikeExpr represents x [NOT] LIKE|ILIKE pattern.
type LikeExpr struct {
	Expr    Expr
	Not     bool
	ILike   bool
	Pattern Expr
}

func (*LikeExpr) node()     {}
func (*LikeExpr) exprNode() {}

// IsExpr represents x IS [NOT] NULL|TRUE|FALSE.
type IsExpr struct {
	Expr  Expr
	Not   bool
	Value TokenType // TOKEN_NULL, TOKEN_TRUE or TOKEN_FALSE
}

func (*IsExpr) node()     {}
func (*IsExpr) exprNode() {}

// ExistsExpr represents EXISTS (subquery).
type ExistsExpr struct {
	Query *SelectStmt
}

func (*ExistsExpr) node()     {}
func (*ExistsExpr) exprNode() {}

// SubqueryExpr represents a scalar subquery.
type SubqueryExpr struct {
	Query *SelectStmt
}

func (*SubqueryExpr) node()     {}
func (*SubqueryExpr) exprNode() {}

// IntervalExpr represents INTERVAL value [unit].
type IntervalExpr struct {
	Value Expr
	Unit  string
}

func (*IntervalExpr) node()     {}
func (*IntervalExpr) exprNode() {}

// ExtractExpr represents EXTRACT(field FROM expr).
type ExtractExpr struct {
	Field string
	From  Expr
}

func (*ExtractExpr) node()     {}
func (*ExtractExpr) exprNode() {}
