package runtime

import (
	"bytes"
	"testing"

	"github.com/panyam/pylang/decl"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// --- Test Helpers ---

func setupInterp(t *testing.T, opts ...Option) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]Option{WithOutput(out), WithLogger(QuietLogger())}, opts...)
	return NewInterpreter(StandardConstants().Build(), opts...), out
}

// run executes statements as one program and fails the test on error.
func run(t *testing.T, in *Interpreter, stmts ...decl.Stmt) {
	t.Helper()
	require.NoError(t, in.Run(program(stmts...)))
}

func eval(t *testing.T, in *Interpreter, e decl.Expr) Value {
	t.Helper()
	v, err := in.Eval(e, in.Env())
	require.NoError(t, err)
	return v
}

func lookup(t *testing.T, in *Interpreter, name string) Value {
	t.Helper()
	v, err := in.Env().Get(name)
	require.NoError(t, err)
	return v
}

func program(stmts ...decl.Stmt) *decl.Program {
	return &decl.Program{Body: block(stmts...)}
}

func block(stmts ...decl.Stmt) *decl.Block { return &decl.Block{Stmts: stmts} }

func num(i int64) decl.Expr     { return &decl.IntLit{Value: i} }
func str(s string) decl.Expr    { return &decl.StringLit{Value: s} }
func boolean(b bool) decl.Expr  { return &decl.BoolLit{Value: b} }
func vr(name string) decl.Expr  { return &decl.Variable{Name: name} }
func cnst(name string) decl.Expr { return &decl.ConstantRef{Name: name} }

func dec(s string) decl.Expr {
	return &decl.NumberLit{Value: decimal.RequireFromString(s)}
}

func call(name string, args ...decl.Expr) decl.Expr {
	out := &decl.CallExpr{Name: name}
	for _, a := range args {
		out.Args = append(out.Args, decl.Arg{Value: a})
	}
	return out
}

func kw(name string, v decl.Expr) decl.Arg { return decl.Arg{Name: name, Value: v} }

func callArgs(name string, args ...decl.Arg) decl.Expr {
	return &decl.CallExpr{Name: name, Args: args}
}

func unary(op string, e decl.Expr) decl.Expr { return &decl.UnaryExpr{Operator: op, Operand: e} }

// bin builds a left associative chain: operands and operators interleaved,
// eg bin(a, "+", b, "-", c).
func bin(parts ...any) *decl.BinaryExpr {
	out := &decl.BinaryExpr{}
	for i, p := range parts {
		if i%2 == 0 {
			out.Operands = append(out.Operands, p.(decl.Expr))
		} else {
			out.Operators = append(out.Operators, p.(string))
		}
	}
	return out
}

func rbin(parts ...any) *decl.BinaryExpr {
	out := bin(parts...)
	out.RightAssoc = true
	return out
}

func cmp(parts ...any) decl.Expr {
	b := bin(parts...)
	return &decl.CompareExpr{Operands: b.Operands, Operators: b.Operators}
}

func tuple(items ...decl.Expr) decl.Expr { return &decl.TupleExpr{Items: items} }
func list(items ...decl.Expr) decl.Expr  { return &decl.ListExpr{Items: items} }

func params(names ...string) []decl.Param {
	out := make([]decl.Param, len(names))
	for i, n := range names {
		out[i] = decl.Param{Name: n}
	}
	return out
}

func def(name string, ps []decl.Param, body ...decl.Stmt) decl.Stmt {
	return &decl.DefStmt{Kind: decl.DefNamed, Name: name, Params: ps, Body: block(body...)}
}

func assign(name string, e decl.Expr) decl.Stmt {
	return &decl.AssignStmt{Targets: []decl.AssignTarget{{Name: name}}, Values: []decl.Expr{e}}
}

func typedAssign(name, typeName string, e decl.Expr) decl.Stmt {
	return &decl.AssignStmt{Targets: []decl.AssignTarget{{Name: name, TypeName: typeName}}, Values: []decl.Expr{e}}
}

func ret(values ...decl.Expr) decl.Stmt { return &decl.ReturnStmt{Values: values} }
func exprStmt(e decl.Expr) decl.Stmt    { return &decl.ExprStmt{X: e} }
func brk() decl.Stmt                    { return &decl.BreakStmt{} }
func cont() decl.Stmt                   { return &decl.ContinueStmt{} }
func pass() decl.Stmt                   { return &decl.PassStmt{} }
func printS(args ...decl.Expr) decl.Stmt { return &decl.PrintStmt{Args: args} }
func del(names ...string) decl.Stmt     { return &decl.DeleteStmt{Names: names} }

func while(cond decl.Expr, body ...decl.Stmt) decl.Stmt {
	return &decl.WhileStmt{Cond: cond, Body: block(body...)}
}

func forIn(target string, iter decl.Expr, body ...decl.Stmt) decl.Stmt {
	return &decl.ForStmt{Targets: []string{target}, Iter: iter, Body: block(body...)}
}

func ifThen(cond decl.Expr, body ...decl.Stmt) *decl.IfStmt {
	return &decl.IfStmt{Branches: []decl.CondBranch{{Cond: cond, Body: block(body...)}}}
}

// incr is `name = name + 1;`
func incr(name string) decl.Stmt { return assign(name, bin(vr(name), "+", num(1))) }
