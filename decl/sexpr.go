package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// Sexpr renders an expression or statement as an S-expression.  Hybrid
// chains list their operators in a leading group, eg `((-, +) 10 3 2)`.
func Sexpr(node Node) string {
	switch n := node.(type) {
	case nil:
		return "nil"
	case *NoneLit, *BoolLit, *IntLit, *NumberLit, *StringLit, *Variable, *ConstantRef:
		return n.String()
	case *CallExpr:
		return sexprList(n.Name, gfn.Map(n.Args, sexprArg)...)
	case *UnaryExpr:
		return sexprList(n.Operator, Sexpr(n.Operand))
	case *BinaryExpr:
		return sexprChain(n.Operators, n.Hybrid(), n.Operands)
	case *CompareExpr:
		hybrid := false
		for _, op := range n.Operators {
			hybrid = hybrid || op != n.Operators[0]
		}
		return sexprChain(n.Operators, hybrid, n.Operands)
	case *TernaryExpr:
		return sexprList("if-else", Sexpr(n.Cond), Sexpr(n.Then), Sexpr(n.Else))
	case *BifixExpr:
		return sexprList(fmt.Sprintf("(%s, %s)", n.Left, n.Right), sexprs(n.Args)...)
	case *PostfixExpr:
		out := Sexpr(n.Operand)
		for _, op := range n.Ops {
			switch op := op.(type) {
			case IndexOp:
				out = sexprList("get", out, Sexpr(op.Index))
			case CallOp:
				out = sexprList("call", append([]string{out}, gfn.Map(op.Args, sexprArg)...)...)
			case AttrOp:
				out = sexprList("attr", out, op.Name)
			}
		}
		return out
	case *SliceExpr:
		return sexprList("slice", Sexpr(n.Start), Sexpr(n.Stop), Sexpr(n.Step))
	case *TupleExpr:
		return sexprList("tuple", sexprs(n.Items)...)
	case *ListExpr:
		return sexprList("list", sexprs(n.Items)...)
	case *SetExpr:
		return sexprList("set", sexprs(n.Items)...)
	case *MapExpr:
		return sexprList("dict", gfn.Map(n.Entries, func(e MapEntry) string {
			return "(" + Sexpr(e.Key) + " " + Sexpr(e.Value) + ")"
		})...)
	case *LambdaExpr:
		return fmt.Sprintf("(lambda (%s) %s)", sexprParams(n.Params), Sexpr(n.Body))
	case *LetExpr:
		return fmt.Sprintf("(let (%s) (%s) %s)", strings.Join(n.Names, " "), strings.Join(sexprs(n.Values), " "), Sexpr(n.Body))

	case *Program:
		parts := gfn.Map(n.Loads, func(l *LoadStmt) string { return Sexpr(l) })
		if n.Body != nil {
			parts = append(parts, Sexpr(n.Body))
		}
		return sexprList("program", parts...)
	case *LoadStmt:
		return sexprList("load", n.Paths...)
	case *Block:
		return sexprList("seq", gfn.Map(n.Stmts, func(s Stmt) string { return Sexpr(s) })...)
	case *AssignStmt:
		targets := gfn.Map(n.Targets, func(t AssignTarget) string {
			if t.TypeName != "" {
				return "(" + t.Name + " " + t.TypeName + ")"
			}
			return t.Name
		})
		return fmt.Sprintf("(= (%s) %s)", strings.Join(targets, " "), strings.Join(sexprs(n.Values), " "))
	case *IfStmt:
		parts := gfn.Map(n.Branches, func(b CondBranch) string {
			return "(" + Sexpr(b.Cond) + " " + Sexpr(b.Body) + ")"
		})
		if n.Else != nil {
			parts = append(parts, "(else "+Sexpr(n.Else)+")")
		}
		return sexprList("if", parts...)
	case *WhileStmt:
		return sexprList("while", Sexpr(n.Cond), Sexpr(n.Body))
	case *ForStmt:
		return sexprList("for", "("+strings.Join(n.Targets, " ")+")", Sexpr(n.Iter), Sexpr(n.Body))
	case *BreakStmt:
		return "(break)"
	case *ContinueStmt:
		return "(continue)"
	case *PassStmt:
		return "(pass)"
	case *ReturnStmt:
		return sexprList("return", sexprs(n.Values)...)
	case *PrintStmt:
		return sexprList("print", sexprs(n.Args)...)
	case *DeleteStmt:
		return sexprList("del", n.Names...)
	case *DefStmt:
		name := n.Name
		if n.Kind == DefBifix {
			name = fmt.Sprintf("(%s, %s)", n.Left, n.Right)
		}
		return fmt.Sprintf("(def %s (%s) %s)", name, sexprParams(n.Params), Sexpr(n.Body))
	case *EmbedStmt:
		return fmt.Sprintf("(embed %q)", n.Code)
	case *ExprStmt:
		return Sexpr(n.X)
	}
	return node.String()
}

func sexprList(head string, args ...string) string {
	if len(args) == 0 {
		return "(" + head + ")"
	}
	return "(" + head + " " + strings.Join(args, " ") + ")"
}

func sexprs(exprs []Expr) []string {
	return gfn.Map(exprs, func(e Expr) string { return Sexpr(e) })
}

func sexprArg(a Arg) string {
	switch {
	case a.Unpack == UnpackArgs:
		return "(* " + Sexpr(a.Value) + ")"
	case a.Unpack == UnpackKwargs:
		return "(** " + Sexpr(a.Value) + ")"
	case a.Name != "":
		return "(= " + a.Name + " " + Sexpr(a.Value) + ")"
	}
	return Sexpr(a.Value)
}

func sexprParams(params []Param) string {
	return strings.Join(gfn.Map(params, func(p Param) string {
		if p.Default != nil {
			return "(" + p.Name + " " + Sexpr(p.Default) + ")"
		}
		return p.String()
	}), " ")
}

func sexprChain(operators []string, hybrid bool, operands []Expr) string {
	head := operators[0]
	if hybrid {
		head = "(" + strings.Join(operators, ", ") + ")"
	}
	return sexprList(head, sexprs(operands)...)
}
