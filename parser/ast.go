// Package parser builds ASTs for liquet templates.
package parser

// Node is the interface implemented by all AST nodes.
type Node interface {
	node()
	Line() int
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmt()
}

// Expr represents an expression node.
type Expr interface {
	Node
	expr()
}

// --- Statement Types ---

// Template is the root node of a parsed template.
type Template struct {
	Name     string
	Children []Stmt
}

func (t *Template) node()     {}
func (t *Template) stmt()     {}
func (t *Template) Line() int { return 1 }

// EmitRaw outputs raw template text.
type EmitRaw struct {
	Raw  string
	line int
}

func (e *EmitRaw) node()     {}
func (e *EmitRaw) stmt()     {}
func (e *EmitRaw) Line() int { return e.line }

// EmitExpr outputs an expression result.
type EmitExpr struct {
	Expr Expr
	line int
}

func (e *EmitExpr) node()     {}
func (e *EmitExpr) stmt()     {}
func (e *EmitExpr) Line() int { return e.line }

// ForLoop represents a for loop binding one variable per iteration.
type ForLoop struct {
	VarName string
	Iter    Expr
	Body    []Stmt
	line    int
}

func (f *ForLoop) node()     {}
func (f *ForLoop) stmt()     {}
func (f *ForLoop) Line() int { return f.line }

// IfCond represents an if/elsif/else condition. An elsif chain parses
// into a nested IfCond as the sole statement of FalseBody.
type IfCond struct {
	Expr      Expr
	TrueBody  []Stmt
	FalseBody []Stmt
	line      int
}

func (i *IfCond) node()     {}
func (i *IfCond) stmt()     {}
func (i *IfCond) Line() int { return i.line }

// TagStmt represents a custom tag invocation. Spec holds whatever the
// registered tag parser returned for the invocation.
type TagStmt struct {
	Name string
	Spec any
	line int
}

func (t *TagStmt) node()     {}
func (t *TagStmt) stmt()     {}
func (t *TagStmt) Line() int { return t.line }

// --- Expression Types ---

// Path represents a dotted variable path such as comment.author.name,
// already split into its ordered key sequence.
type Path struct {
	Keys []string
	line int
}

func (p *Path) node()     {}
func (p *Path) expr()     {}
func (p *Path) Line() int { return p.line }

// Const represents a literal value: string, int64, float64 or bool.
type Const struct {
	Value any
	line  int
}

func (c *Const) node()     {}
func (c *Const) expr()     {}
func (c *Const) Line() int { return c.line }

// BinOpKind represents the type of binary operator.
type BinOpKind int

const (
	BinOpEq BinOpKind = iota
	BinOpNe
)

func (k BinOpKind) String() string {
	switch k {
	case BinOpEq:
		return "Eq"
	case BinOpNe:
		return "Ne"
	}
	return "?"
}

// BinOp represents a comparison inside a condition.
type BinOp struct {
	Op    BinOpKind
	Left  Expr
	Right Expr
	line  int
}

func (b *BinOp) node()     {}
func (b *BinOp) expr()     {}
func (b *BinOp) Line() int { return b.line }
