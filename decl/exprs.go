package decl

import (
	"fmt"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/shopspring/decimal"
)

// Expr represents an expression node (evaluates to a value).
type Expr interface {
	Node
	exprNode() // Marker method for expressions
}

type ExprBase struct {
	NodeInfo
}

func (me *ExprBase) exprNode() {}

func joinExprs(exprs []Expr, sep string) string {
	return strings.Join(gfn.Map(exprs, func(e Expr) string { return e.String() }), sep)
}

// --- Atoms ---

type NoneLit struct{ ExprBase }

func (n *NoneLit) String() string             { return "None" }
func (n *NoneLit) PrettyPrint(cp CodePrinter) { cp.Print(n.String()) }

type BoolLit struct {
	ExprBase
	Value bool
}

func (b *BoolLit) String() string {
	if b.Value {
		return "True"
	}
	return "False"
}
func (b *BoolLit) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

type IntLit struct {
	ExprBase
	Value int64
}

func (i *IntLit) String() string             { return strconv.FormatInt(i.Value, 10) }
func (i *IntLit) PrettyPrint(cp CodePrinter) { cp.Print(i.String()) }

// NumberLit is an exact decimal literal such as `3.25`.
type NumberLit struct {
	ExprBase
	Value decimal.Decimal
}

func (n *NumberLit) String() string             { return n.Value.String() }
func (n *NumberLit) PrettyPrint(cp CodePrinter) { cp.Print(n.String()) }

type StringLit struct {
	ExprBase
	Value string
}

func (s *StringLit) String() string             { return strconv.Quote(s.Value) }
func (s *StringLit) PrettyPrint(cp CodePrinter) { cp.Print(s.String()) }

// Variable is a name looked up in the bindings first and then the constants.
type Variable struct {
	ExprBase
	Name string
}

func (v *Variable) String() string             { return v.Name }
func (v *Variable) PrettyPrint(cp CodePrinter) { cp.Print(v.Name) }

// ConstantRef only ever resolves against the constants table.
type ConstantRef struct {
	ExprBase
	Name string
}

func (c *ConstantRef) String() string             { return c.Name }
func (c *ConstantRef) PrettyPrint(cp CodePrinter) { cp.Print(c.Name) }

// --- Calls ---

type UnpackKind int

const (
	UnpackNone UnpackKind = iota
	UnpackArgs            // *xs
	UnpackKwargs          // **kw
)

// Arg is a single call argument.  Name is set for keyword arguments.
type Arg struct {
	Value  Expr
	Name   string
	Unpack UnpackKind
}

func (a Arg) String() string {
	switch {
	case a.Unpack == UnpackArgs:
		return "*" + a.Value.String()
	case a.Unpack == UnpackKwargs:
		return "**" + a.Value.String()
	case a.Name != "":
		return a.Name + "=" + a.Value.String()
	}
	return a.Value.String()
}

func argsString(args []Arg) string {
	return strings.Join(gfn.Map(args, func(a Arg) string { return a.String() }), ", ")
}

// CallExpr is `name(args...)` dispatched by name through the environment.
type CallExpr struct {
	ExprBase
	Name string
	Args []Arg
}

func (c *CallExpr) String() string             { return fmt.Sprintf("%s(%s)", c.Name, argsString(c.Args)) }
func (c *CallExpr) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

// --- Operators ---

// UnaryExpr is a prefix (`-x`, `not x`) or postfix (`n!`) operator application.
type UnaryExpr struct {
	ExprBase
	Operator string
	Operand  Expr
	Postfix  bool
}

func (u *UnaryExpr) String() string {
	if u.Postfix {
		return fmt.Sprintf("(%s%s)", u.Operand, u.Operator)
	}
	if isWordOperator(u.Operator) {
		return fmt.Sprintf("(%s %s)", u.Operator, u.Operand)
	}
	return fmt.Sprintf("(%s%s)", u.Operator, u.Operand)
}
func (u *UnaryExpr) PrettyPrint(cp CodePrinter) { cp.Print(u.String()) }

// BinaryExpr is a flat chain of operands joined by operators of a single
// precedence level.  When the operators differ it is a hybrid chain.
type BinaryExpr struct {
	ExprBase
	Operands   []Expr
	Operators  []string
	RightAssoc bool
}

// Hybrid reports whether the chain mixes different operator symbols.
func (b *BinaryExpr) Hybrid() bool {
	for _, op := range b.Operators[1:] {
		if op != b.Operators[0] {
			return true
		}
	}
	return false
}

func (b *BinaryExpr) String() string { return chainString(b.Operands, b.Operators) }
func (b *BinaryExpr) PrettyPrint(cp CodePrinter) {
	cp.Print(b.String())
}

// CompareExpr is a comparison chain `a < b <= c` which holds only if every
// adjacent pair holds.
type CompareExpr struct {
	ExprBase
	Operands  []Expr
	Operators []string
}

func (c *CompareExpr) String() string             { return chainString(c.Operands, c.Operators) }
func (c *CompareExpr) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

func chainString(operands []Expr, operators []string) string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, operand := range operands {
		if i > 0 {
			sb.WriteString(" " + operators[i-1] + " ")
		}
		sb.WriteString(operand.String())
	}
	sb.WriteString(")")
	return sb.String()
}

// TernaryExpr is `then if cond else otherwise`.
type TernaryExpr struct {
	ExprBase
	Then Expr
	Cond Expr
	Else Expr
}

func (t *TernaryExpr) String() string {
	return fmt.Sprintf("(%s if %s else %s)", t.Then, t.Cond, t.Else)
}
func (t *TernaryExpr) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

// BifixExpr is a delimiter pair wrapped around its operands, eg `|x|`.
type BifixExpr struct {
	ExprBase
	Left  string
	Right string
	Args  []Expr
}

func (b *BifixExpr) String() string {
	return b.Left + joinExprs(b.Args, ", ") + b.Right
}
func (b *BifixExpr) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

// --- Postfix chains ---

// PostfixOp is one link of a PostfixExpr chain.
type PostfixOp interface {
	postfixOp()
	String() string
}

// IndexOp is `[index]`.  Index is a SliceExpr for slicing.
type IndexOp struct{ Index Expr }

// CallOp is `(args...)` applied to whatever value precedes it.
type CallOp struct{ Args []Arg }

// AttrOp is `.name`.
type AttrOp struct{ Name string }

func (IndexOp) postfixOp() {}
func (CallOp) postfixOp()  {}
func (AttrOp) postfixOp()  {}

func (i IndexOp) String() string { return "[" + i.Index.String() + "]" }
func (c CallOp) String() string  { return "(" + argsString(c.Args) + ")" }
func (a AttrOp) String() string  { return "." + a.Name }

// PostfixExpr folds Ops over Operand from left to right.
type PostfixExpr struct {
	ExprBase
	Operand Expr
	Ops     []PostfixOp
}

func (p *PostfixExpr) String() string {
	var sb strings.Builder
	sb.WriteString(p.Operand.String())
	for _, op := range p.Ops {
		sb.WriteString(op.String())
	}
	return sb.String()
}
func (p *PostfixExpr) PrettyPrint(cp CodePrinter) { cp.Print(p.String()) }

// SliceExpr is `start:stop:step` inside an index.  Missing parts are nil.
type SliceExpr struct {
	ExprBase
	Start, Stop, Step Expr
}

func (s *SliceExpr) String() string {
	part := func(e Expr) string {
		if e == nil {
			return ""
		}
		return e.String()
	}
	out := part(s.Start) + ":" + part(s.Stop)
	if s.Step != nil {
		out += ":" + s.Step.String()
	}
	return out
}
func (s *SliceExpr) PrettyPrint(cp CodePrinter) { cp.Print(s.String()) }

// --- Collections ---

type TupleExpr struct {
	ExprBase
	Items []Expr
}

func (t *TupleExpr) String() string {
	if len(t.Items) == 1 {
		return "(" + t.Items[0].String() + ",)"
	}
	return "(" + joinExprs(t.Items, ", ") + ")"
}
func (t *TupleExpr) PrettyPrint(cp CodePrinter) { cp.Print(t.String()) }

type ListExpr struct {
	ExprBase
	Items []Expr
}

func (l *ListExpr) String() string             { return "[" + joinExprs(l.Items, ", ") + "]" }
func (l *ListExpr) PrettyPrint(cp CodePrinter) { cp.Print(l.String()) }

type SetExpr struct {
	ExprBase
	Items []Expr
}

func (s *SetExpr) String() string             { return "{" + joinExprs(s.Items, ", ") + "}" }
func (s *SetExpr) PrettyPrint(cp CodePrinter) { cp.Print(s.String()) }

type MapEntry struct {
	Key   Expr
	Value Expr
}

type MapExpr struct {
	ExprBase
	Entries []MapEntry
}

func (m *MapExpr) String() string {
	return "{" + strings.Join(gfn.Map(m.Entries, func(e MapEntry) string {
		return e.Key.String() + ": " + e.Value.String()
	}), ", ") + "}"
}
func (m *MapExpr) PrettyPrint(cp CodePrinter) { cp.Print(m.String()) }

// --- Functions ---

type ParamKind int

const (
	ParamPlain  ParamKind = iota
	ParamRest             // *rest
	ParamKwRest           // **kw
)

// Param is a function or lambda parameter.  Default is nil when the
// parameter is required.
type Param struct {
	Name    string
	Default Expr
	Kind    ParamKind
}

func (p Param) String() string {
	switch p.Kind {
	case ParamRest:
		return "*" + p.Name
	case ParamKwRest:
		return "**" + p.Name
	}
	if p.Default != nil {
		return p.Name + "=" + p.Default.String()
	}
	return p.Name
}

func paramsString(params []Param) string {
	return strings.Join(gfn.Map(params, func(p Param) string { return p.String() }), ", ")
}

// LambdaExpr is `lambda a, b=1: body`.
type LambdaExpr struct {
	ExprBase
	Params []Param
	Body   Expr
}

func (l *LambdaExpr) String() string {
	return fmt.Sprintf("(lambda %s: %s)", paramsString(l.Params), l.Body)
}
func (l *LambdaExpr) PrettyPrint(cp CodePrinter) { cp.Print(l.String()) }

// LetExpr is `let a = 1, b = 2: body`.
type LetExpr struct {
	ExprBase
	Names  []string
	Values []Expr
	Body   Expr
}

func (l *LetExpr) String() string {
	parts := make([]string, len(l.Names))
	for i, n := range l.Names {
		parts[i] = n + " = " + l.Values[i].String()
	}
	return fmt.Sprintf("(let %s: %s)", strings.Join(parts, ", "), l.Body)
}
func (l *LetExpr) PrettyPrint(cp CodePrinter) { cp.Print(l.String()) }

func isWordOperator(op string) bool {
	switch op {
	case "not", "and", "or", "in", "not in", "is", "is not":
		return true
	}
	return false
}
