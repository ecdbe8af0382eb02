package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func v(name string) *Variable { return &Variable{Name: name} }
func n(i int64) *IntLit       { return &IntLit{Value: i} }

func TestSexprExpressions(t *testing.T) {
	tests := []struct {
		name string
		expr Expr
		want string
	}{
		{"literal", &StringLit{Value: "hi"}, `"hi"`},
		{"uniform chain", &BinaryExpr{Operands: []Expr{n(1), n(2), n(3)}, Operators: []string{"+", "+"}}, "(+ 1 2 3)"},
		{"hybrid chain", &BinaryExpr{Operands: []Expr{n(10), n(3), n(2)}, Operators: []string{"-", "+"}}, "((-, +) 10 3 2)"},
		{"compare", &CompareExpr{Operands: []Expr{v("a"), v("b"), v("c")}, Operators: []string{"<", "<="}}, "((<, <=) a b c)"},
		{"unary", &UnaryExpr{Operator: "not", Operand: v("x")}, "(not x)"},
		{"ternary", &TernaryExpr{Then: n(1), Cond: v("c"), Else: n(2)}, "(if-else c 1 2)"},
		{"bifix", &BifixExpr{Left: "|", Right: "|", Args: []Expr{v("x")}}, "((|, |) x)"},
		{"call", &CallExpr{Name: "f", Args: []Arg{{Value: n(1)}, {Name: "k", Value: n(2)}, {Value: v("r"), Unpack: UnpackArgs}}}, "(f 1 (= k 2) (* r))"},
		{
			"postfix chain",
			&PostfixExpr{Operand: v("xs"), Ops: []PostfixOp{IndexOp{Index: n(0)}, AttrOp{Name: "size"}, CallOp{}}},
			"(call (attr (get xs 0) size))",
		},
		{"slice", &SliceExpr{Stop: n(2)}, "(slice nil 2 nil)"},
		{"dict", &MapExpr{Entries: []MapEntry{{Key: &StringLit{Value: "a"}, Value: n(1)}}}, `(dict ("a" 1))`},
		{"lambda", &LambdaExpr{Params: []Param{{Name: "x"}, {Name: "y", Default: n(1)}}, Body: v("x")}, "(lambda (x (y 1)) x)"},
		{"let", &LetExpr{Names: []string{"a", "b"}, Values: []Expr{n(1), n(2)}, Body: v("a")}, "(let (a b) (1 2) a)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sexpr(tc.expr))
		})
	}
}

func TestSexprStatements(t *testing.T) {
	body := &Block{Stmts: []Stmt{&ReturnStmt{Values: []Expr{v("a")}}}}
	assert.Equal(t, "(= (a (b int)) 1 2)", Sexpr(&AssignStmt{
		Targets: []AssignTarget{{Name: "a"}, {Name: "b", TypeName: "int"}},
		Values:  []Expr{n(1), n(2)},
	}))
	assert.Equal(t, "(def f (a) (seq (return a)))", Sexpr(&DefStmt{Name: "f", Params: []Param{{Name: "a"}}, Body: body}))
	assert.Equal(t, "(def (|, |) (a) (seq (return a)))", Sexpr(&DefStmt{Kind: DefBifix, Left: "|", Right: "|", Params: []Param{{Name: "a"}}, Body: body}))
	assert.Equal(t, "(if (c (seq (pass))) (else (seq (break))))", Sexpr(&IfStmt{
		Branches: []CondBranch{{Cond: v("c"), Body: &Block{Stmts: []Stmt{&PassStmt{}}}}},
		Else:     &Block{Stmts: []Stmt{&BreakStmt{}}},
	}))
	assert.Equal(t, "(for (k v) d (seq (continue)))", Sexpr(&ForStmt{Targets: []string{"k", "v"}, Iter: v("d"), Body: &Block{Stmts: []Stmt{&ContinueStmt{}}}}))
	assert.Equal(t, `(embed "a: 1")`, Sexpr(&EmbedStmt{Code: "a: 1"}))
	assert.Equal(t, "(del a b)", Sexpr(&DeleteStmt{Names: []string{"a", "b"}}))
	assert.Equal(t, "(return)", Sexpr(&ReturnStmt{}))
	assert.Equal(t, "(program (load a b) (seq (print x)))", Sexpr(&Program{
		Loads: []*LoadStmt{{Paths: []string{"a", "b"}}},
		Body:  &Block{Stmts: []Stmt{&PrintStmt{Args: []Expr{v("x")}}}},
	}))
}

func TestFormatIndentsBlocks(t *testing.T) {
	prog := &Program{
		Loads: []*LoadStmt{{Paths: []string{"util"}}},
		Body: &Block{Stmts: []Stmt{
			&DefStmt{Name: "f", Params: []Param{{Name: "a"}, {Name: "b", Default: n(1)}}, Body: &Block{Stmts: []Stmt{
				&WhileStmt{Cond: v("a"), Body: &Block{Stmts: []Stmt{&BreakStmt{}}}},
				&ReturnStmt{Values: []Expr{&BinaryExpr{Operands: []Expr{v("a"), v("b")}, Operators: []string{"+"}}}},
			}}},
			&ExprStmt{X: &CallExpr{Name: "f", Args: []Arg{{Value: n(2)}}}},
		}},
	}
	want := `load util
def f(a, b=1) {
  while a {
    break;
  }
  return (a + b);
}
f(2);`
	assert.Equal(t, want, Format(prog))
}
