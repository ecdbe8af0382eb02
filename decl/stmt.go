package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Statements ---

// Stmt represents a statement node (performs an action, controls flow).
type Stmt interface {
	Node
	stmtNode() // Marker method for statements
}

type StmtBase struct {
	NodeInfo
}

func (s *StmtBase) stmtNode() {}

// Block is a sequence of statements executed in order.  It stops as soon as
// a statement leaves a control signal behind.
type Block struct {
	StmtBase
	Stmts []Stmt
}

func (b *Block) String() string {
	return "{ " + strings.Join(gfn.Map(b.Stmts, func(s Stmt) string { return s.String() }), " ") + " }"
}

func (b *Block) PrettyPrint(cp CodePrinter) {
	cp.Println("{")
	WithIndent(1, cp, func(cp CodePrinter) {
		for _, stmt := range b.Stmts {
			stmt.PrettyPrint(cp)
			cp.Println("")
		}
	})
	cp.Print("}")
}

// AssignTarget is one name on the left of `=`, with an optional type assertion.
type AssignTarget struct {
	Name     string
	TypeName string
}

func (a AssignTarget) String() string {
	if a.TypeName != "" {
		return a.Name + ": " + a.TypeName
	}
	return a.Name
}

// AssignStmt represents `a = e;`, `a: int = e;` or `a, b = e1, e2;`.
// More than one value on the right is packed into a tuple.
type AssignStmt struct {
	StmtBase
	Targets []AssignTarget
	Values  []Expr
}

func (a *AssignStmt) String() string {
	lhs := strings.Join(gfn.Map(a.Targets, func(t AssignTarget) string { return t.String() }), ", ")
	return fmt.Sprintf("%s = %s;", lhs, joinExprs(a.Values, ", "))
}
func (a *AssignStmt) PrettyPrint(cp CodePrinter) { cp.Print(a.String()) }

// CondBranch is a condition and the body guarded by it.
type CondBranch struct {
	Cond Expr
	Body *Block
}

// IfStmt covers `if`, `if-else` and `if-elif-...-else`.
type IfStmt struct {
	StmtBase
	Branches []CondBranch
	Else     *Block
}

func (i *IfStmt) String() string {
	var sb strings.Builder
	for idx, br := range i.Branches {
		if idx == 0 {
			sb.WriteString("if ")
		} else {
			sb.WriteString(" elif ")
		}
		sb.WriteString(br.Cond.String() + " " + br.Body.String())
	}
	if i.Else != nil {
		sb.WriteString(" else " + i.Else.String())
	}
	return sb.String()
}

func (i *IfStmt) PrettyPrint(cp CodePrinter) {
	for idx, br := range i.Branches {
		if idx == 0 {
			cp.Print("if ")
		} else {
			cp.Print(" elif ")
		}
		br.Cond.PrettyPrint(cp)
		cp.Print(" ")
		br.Body.PrettyPrint(cp)
	}
	if i.Else != nil {
		cp.Print(" else ")
		i.Else.PrettyPrint(cp)
	}
}

type WhileStmt struct {
	StmtBase
	Cond Expr
	Body *Block
}

func (w *WhileStmt) String() string { return fmt.Sprintf("while %s %s", w.Cond, w.Body) }
func (w *WhileStmt) PrettyPrint(cp CodePrinter) {
	cp.Print("while ")
	w.Cond.PrettyPrint(cp)
	cp.Print(" ")
	w.Body.PrettyPrint(cp)
}

// ForStmt represents `for x in seq { ... }` or `for k, v in seq { ... }`.
type ForStmt struct {
	StmtBase
	Targets []string
	Iter    Expr
	Body    *Block
}

func (f *ForStmt) String() string {
	return fmt.Sprintf("for %s in %s %s", strings.Join(f.Targets, ", "), f.Iter, f.Body)
}
func (f *ForStmt) PrettyPrint(cp CodePrinter) {
	cp.Printf("for %s in ", strings.Join(f.Targets, ", "))
	f.Iter.PrettyPrint(cp)
	cp.Print(" ")
	f.Body.PrettyPrint(cp)
}

type BreakStmt struct{ StmtBase }

func (b *BreakStmt) String() string             { return "break;" }
func (b *BreakStmt) PrettyPrint(cp CodePrinter) { cp.Print(b.String()) }

type ContinueStmt struct{ StmtBase }

func (c *ContinueStmt) String() string             { return "continue;" }
func (c *ContinueStmt) PrettyPrint(cp CodePrinter) { cp.Print(c.String()) }

type PassStmt struct{ StmtBase }

func (p *PassStmt) String() string             { return "pass;" }
func (p *PassStmt) PrettyPrint(cp CodePrinter) { cp.Print(p.String()) }

// ReturnStmt returns None, a single value, or a tuple for `return a, b;`.
type ReturnStmt struct {
	StmtBase
	Values []Expr
}

func (r *ReturnStmt) String() string {
	if len(r.Values) == 0 {
		return "return;"
	}
	return "return " + joinExprs(r.Values, ", ") + ";"
}
func (r *ReturnStmt) PrettyPrint(cp CodePrinter) { cp.Print(r.String()) }

type PrintStmt struct {
	StmtBase
	Args []Expr
}

func (p *PrintStmt) String() string             { return "print " + joinExprs(p.Args, ", ") + ";" }
func (p *PrintStmt) PrettyPrint(cp CodePrinter) { cp.Print(p.String()) }

type DeleteStmt struct {
	StmtBase
	Names []string
}

func (d *DeleteStmt) String() string             { return "del " + strings.Join(d.Names, ", ") + ";" }
func (d *DeleteStmt) PrettyPrint(cp CodePrinter) { cp.Print(d.String()) }

// DefKind says under what key a function definition is bound.
type DefKind int

const (
	DefNamed DefKind = iota // def f(a, b) {...}
	DefBifix                // def |x| {...}
	DefInfix                // def x $op y {...}
)

// DefStmt defines a function.  For DefBifix, Left and Right hold the
// delimiters.  For DefInfix, Name holds the operator symbol.
type DefStmt struct {
	StmtBase
	Kind   DefKind
	Name   string
	Left   string
	Right  string
	Params []Param
	Body   *Block
}

func (d *DefStmt) header() string {
	switch d.Kind {
	case DefBifix:
		return fmt.Sprintf("def %s%s%s", d.Left, paramsString(d.Params), d.Right)
	case DefInfix:
		if len(d.Params) == 2 {
			return fmt.Sprintf("def %s %s %s", d.Params[0], d.Name, d.Params[1])
		}
	}
	return fmt.Sprintf("def %s(%s)", d.Name, paramsString(d.Params))
}

func (d *DefStmt) String() string { return d.header() + " " + d.Body.String() }
func (d *DefStmt) PrettyPrint(cp CodePrinter) {
	cp.Print(d.header() + " ")
	d.Body.PrettyPrint(cp)
}

// EmbedStmt hands a raw block of host code to the interpreter's embed hook.
type EmbedStmt struct {
	StmtBase
	Code string
}

func (e *EmbedStmt) String() string { return "embed {" + e.Code + "}" }
func (e *EmbedStmt) PrettyPrint(cp CodePrinter) {
	cp.Print(e.String())
}

// ExprStmt evaluates an expression for its value and discards it.
type ExprStmt struct {
	StmtBase
	X Expr
}

func (e *ExprStmt) String() string             { return e.X.String() + ";" }
func (e *ExprStmt) PrettyPrint(cp CodePrinter) { cp.Print(e.String()) }
