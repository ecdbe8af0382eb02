package runtime

import (
	"errors"
	"testing"

	"github.com/panyam/pylang/decl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomsEvaluateToThemselves(t *testing.T) {
	in, _ := setupInterp(t)
	assert.Equal(t, IntValue(42), eval(t, in, num(42)))
	assert.Equal(t, StringValue("hi"), eval(t, in, str("hi")))
	assert.Equal(t, True, eval(t, in, boolean(true)))
	assert.Equal(t, None, eval(t, in, &decl.NoneLit{}))
	v := eval(t, in, dec("3.25"))
	assert.Equal(t, NumberType, v.Type)
	assert.Equal(t, "3.25", v.String())
	assert.Equal(t, True, eval(t, in, cnst("True")))
}

func TestBinaryExpressionsArePure(t *testing.T) {
	in, _ := setupInterp(t)
	run(t, in, assign("a", num(7)), assign("b", num(5)))
	e := bin(vr("a"), "*", vr("b"))
	first := eval(t, in, e)
	second := eval(t, in, e)
	assert.Equal(t, IntValue(35), first)
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b"}, in.Env().Keys())
}

func TestOperatorChains(t *testing.T) {
	in, _ := setupInterp(t)
	t.Run("hybrid left fold", func(t *testing.T) {
		assert.Equal(t, IntValue(9), eval(t, in, bin(num(10), "-", num(3), "+", num(2))))
	})
	t.Run("right assoc power", func(t *testing.T) {
		assert.Equal(t, IntValue(512), eval(t, in, rbin(num(2), "^", num(3), "^", num(2))))
	})
	t.Run("arity overload", func(t *testing.T) {
		assert.Equal(t, IntValue(-3), eval(t, in, unary("-", num(3))))
		assert.Equal(t, IntValue(2), eval(t, in, bin(num(5), "-", num(3))))
	})
	t.Run("exact decimals", func(t *testing.T) {
		assert.Equal(t, "0.3", eval(t, in, bin(dec("0.1"), "+", dec("0.2"))).String())
	})
	t.Run("floor division and modulo", func(t *testing.T) {
		assert.Equal(t, IntValue(-4), eval(t, in, bin(num(-7), "//", num(2))))
		assert.Equal(t, IntValue(1), eval(t, in, bin(num(-7), "%", num(2))))
	})
	t.Run("division by zero", func(t *testing.T) {
		_, err := in.Eval(bin(num(1), "/", num(0)), in.Env())
		assert.ErrorIs(t, err, ErrDivisionByZero)
	})
	t.Run("and or return operands", func(t *testing.T) {
		assert.Equal(t, IntValue(0), eval(t, in, bin(num(0), "and", num(5))))
		assert.Equal(t, IntValue(5), eval(t, in, bin(num(0), "or", num(5))))
	})
	t.Run("factorial postfix", func(t *testing.T) {
		assert.Equal(t, IntValue(120), eval(t, in, &decl.UnaryExpr{Operator: "!", Operand: num(5), Postfix: true}))
	})
}

// counting is a builtin that records how many times it was called.
func counting(counter *int, v Value) Value {
	return FuncValue(NewBuiltin("probe", func(args []Value, kwargs []KwArg) (Value, error) {
		*counter++
		return v, nil
	}))
}

func TestComparisonChains(t *testing.T) {
	in, _ := setupInterp(t)
	assert.Equal(t, True, eval(t, in, cmp(num(1), "<", num(2), "<", num(3))))
	assert.Equal(t, False, eval(t, in, cmp(num(1), "<", num(5), "<", num(3))))
	assert.Equal(t, True, eval(t, in, cmp(num(1), "<", num(2), "<=", num(2))))

	t.Run("each operand read once", func(t *testing.T) {
		calls := 0
		require.NoError(t, in.Env().Set("five", counting(&calls, IntValue(5))))
		assert.Equal(t, False, eval(t, in, cmp(num(1), "<", call("five"), "<", num(3))))
		assert.Equal(t, 1, calls)
	})

	t.Run("short circuit skips later operands", func(t *testing.T) {
		calls := 0
		require.NoError(t, in.Env().Set("probe", counting(&calls, IntValue(0))))
		assert.Equal(t, False, eval(t, in, cmp(num(3), "<", num(1), "<", call("probe"))))
		assert.Equal(t, 0, calls)
	})
}

func TestTernaryIsLazy(t *testing.T) {
	in, _ := setupInterp(t)
	e := &decl.TernaryExpr{Then: str("yes"), Cond: boolean(false), Else: bin(num(1), "+", num(1))}
	assert.Equal(t, IntValue(2), eval(t, in, e))
	e = &decl.TernaryExpr{Then: str("yes"), Cond: boolean(true), Else: vr("unbound")}
	assert.Equal(t, StringValue("yes"), eval(t, in, e))
}

func TestBifix(t *testing.T) {
	in, _ := setupInterp(t)
	assert.Equal(t, IntValue(3), eval(t, in, &decl.BifixExpr{Left: "|", Right: "|", Args: []decl.Expr{num(-3)}}))
	assert.Equal(t, IntValue(2), eval(t, in, &decl.BifixExpr{Left: "⌊", Right: "⌋", Args: []decl.Expr{dec("2.7")}}))
	assert.Equal(t, IntValue(3), eval(t, in, &decl.BifixExpr{Left: "⌈", Right: "⌉", Args: []decl.Expr{dec("2.1")}}))

	t.Run("user defined", func(t *testing.T) {
		run(t, in, &decl.DefStmt{
			Kind: decl.DefBifix, Left: "[", Right: "_]", Params: params("x"),
			Body: block(ret(bin(vr("x"), "*", num(2)))),
		})
		assert.Equal(t, IntValue(8), eval(t, in, &decl.BifixExpr{Left: "[", Right: "_]", Args: []decl.Expr{num(4)}}))
	})
}

func TestAssignmentAndLookup(t *testing.T) {
	in, _ := setupInterp(t)
	run(t, in, assign("x", num(5)))
	assert.Equal(t, IntValue(5), eval(t, in, vr("x")))

	t.Run("destructuring", func(t *testing.T) {
		run(t, in, &decl.AssignStmt{
			Targets: []decl.AssignTarget{{Name: "a"}, {Name: "b"}},
			Values:  []decl.Expr{num(1), str("two")},
		})
		assert.Equal(t, IntValue(1), lookup(t, in, "a"))
		assert.Equal(t, StringValue("two"), lookup(t, in, "b"))
	})

	t.Run("type assertion", func(t *testing.T) {
		run(t, in, typedAssign("n", "number", num(3)))
		err := in.Run(program(typedAssign("s", "int", str("no"))))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, bound := in.Env().Lookup("s")
		assert.False(t, bound)
	})

	t.Run("no partial writes", func(t *testing.T) {
		err := in.Run(program(&decl.AssignStmt{
			Targets: []decl.AssignTarget{{Name: "p"}, {Name: "q", TypeName: "str"}},
			Values:  []decl.Expr{num(1), num(2)},
		}))
		assert.ErrorIs(t, err, ErrTypeMismatch)
		_, bound := in.Env().Lookup("p")
		assert.False(t, bound)
	})

	t.Run("unpack length mismatch", func(t *testing.T) {
		err := in.Run(program(&decl.AssignStmt{
			Targets: []decl.AssignTarget{{Name: "p"}, {Name: "q"}},
			Values:  []decl.Expr{tuple(num(1), num(2), num(3))},
		}))
		assert.ErrorIs(t, err, ErrUnpack)
	})

	t.Run("constants are read-only", func(t *testing.T) {
		err := in.Run(program(assign("True", num(0))))
		assert.ErrorIs(t, err, ErrReadOnlyName)
		err = in.Run(program(def("+", params("a", "b"), ret(num(0)))))
		assert.ErrorIs(t, err, ErrReadOnlyName)
	})
}

func TestDelete(t *testing.T) {
	in, _ := setupInterp(t)
	run(t, in, assign("x", num(1)), del("x"))
	_, err := in.Eval(vr("x"), in.Env())
	assert.ErrorIs(t, err, ErrUnboundName)

	err = in.Run(program(del("x")))
	assert.ErrorIs(t, err, ErrDeleteMissingName)
	err = in.Run(program(del("len")))
	assert.ErrorIs(t, err, ErrReadOnlyName)
}

func TestFunctionClosures(t *testing.T) {
	in, _ := setupInterp(t)
	add := def("add", []decl.Param{{Name: "a"}, {Name: "b", Default: num(10)}},
		ret(bin(vr("a"), "+", vr("b"))))
	run(t, in, add)
	assert.Equal(t, IntValue(15), eval(t, in, call("add", num(5))))
	assert.Equal(t, IntValue(7), eval(t, in, call("add", num(5), num(2))))
	assert.Equal(t, IntValue(8), eval(t, in, callArgs("add", decl.Arg{Value: num(5)}, kw("b", num(3)))))

	t.Run("copy on call isolation", func(t *testing.T) {
		run(t, in,
			assign("x", num(1)),
			def("f", nil, assign("x", num(2)), ret(vr("x"))),
			assign("y", call("f")),
		)
		assert.Equal(t, IntValue(1), lookup(t, in, "x"))
		assert.Equal(t, IntValue(2), lookup(t, in, "y"))
	})

	t.Run("containers alias across calls", func(t *testing.T) {
		run(t, in,
			assign("xs", list(num(1))),
			def("push", params("l"), exprStmt(&decl.PostfixExpr{
				Operand: vr("l"),
				Ops:     []decl.PostfixOp{decl.AttrOp{Name: "append"}, decl.CallOp{Args: []decl.Arg{{Value: num(2)}}}},
			})),
			exprStmt(call("push", vr("xs"))),
		)
		assert.Equal(t, "[1, 2]", lookup(t, in, "xs").Repr())
	})

	t.Run("defaults evaluated at definition", func(t *testing.T) {
		run(t, in,
			assign("base", num(100)),
			def("g", []decl.Param{{Name: "v", Default: vr("base")}}, ret(vr("v"))),
			assign("base", num(0)),
		)
		assert.Equal(t, IntValue(100), eval(t, in, call("g")))
	})

	t.Run("variadic parameters", func(t *testing.T) {
		run(t, in, def("v", []decl.Param{{Name: "a"}, {Name: "rest", Kind: decl.ParamRest}, {Name: "opts", Kind: decl.ParamKwRest}},
			ret(tuple(vr("a"), vr("rest"), vr("opts")))))
		got := eval(t, in, callArgs("v", decl.Arg{Value: num(1)}, decl.Arg{Value: num(2)}, decl.Arg{Value: num(3)}, kw("k", str("w"))))
		assert.Equal(t, `(1, (2, 3), {"k": "w"})`, got.Repr())
	})

	t.Run("unpacked arguments", func(t *testing.T) {
		got := eval(t, in, callArgs("add",
			decl.Arg{Value: list(num(1)), Unpack: decl.UnpackArgs},
			decl.Arg{Value: &decl.MapExpr{Entries: []decl.MapEntry{{Key: str("b"), Value: num(4)}}}, Unpack: decl.UnpackKwargs}))
		assert.Equal(t, IntValue(5), got)
	})

	t.Run("arity errors", func(t *testing.T) {
		_, err := in.Eval(call("add"), in.Env())
		assert.ErrorIs(t, err, ErrArityMismatch)
		_, err = in.Eval(call("add", num(1), num(2), num(3)), in.Env())
		assert.ErrorIs(t, err, ErrArityMismatch)
		_, err = in.Eval(callArgs("add", decl.Arg{Value: num(1)}, kw("zz", num(1))), in.Env())
		assert.ErrorIs(t, err, ErrArityMismatch)
	})

	t.Run("no return gives None", func(t *testing.T) {
		run(t, in, def("noop", nil, pass()))
		assert.Equal(t, None, eval(t, in, call("noop")))
	})

	t.Run("recursion", func(t *testing.T) {
		run(t, in, def("fact", params("n"),
			&decl.IfStmt{
				Branches: []decl.CondBranch{{Cond: cmp(vr("n"), "<=", num(1)), Body: block(ret(num(1)))}},
				Else:     block(ret(bin(vr("n"), "*", call("fact", bin(vr("n"), "-", num(1)))))),
			}))
		assert.Equal(t, IntValue(3628800), eval(t, in, call("fact", num(10))))
	})

	t.Run("infix definition", func(t *testing.T) {
		run(t, in, &decl.DefStmt{Kind: decl.DefInfix, Name: "$avg", Params: params("x", "y"),
			Body: block(ret(bin(bin(vr("x"), "+", vr("y")), "/", num(2))))})
		assert.Equal(t, "3", eval(t, in, bin(num(2), "$avg", num(4))).String())
	})
}

func TestRecursionLimit(t *testing.T) {
	in, _ := setupInterp(t, WithMaxCallDepth(50))
	err := in.Run(program(def("forever", nil, ret(call("forever"))), exprStmt(call("forever"))))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRecursionLimit)
	assert.True(t, IsFatal(err))
	assert.Equal(t, 0, in.Env().state.callDepth)
}

func TestLambdaAndLet(t *testing.T) {
	in, _ := setupInterp(t)
	run(t, in,
		assign("k", num(3)),
		assign("times", &decl.LambdaExpr{Params: params("x"), Body: bin(vr("x"), "*", vr("k"))}),
	)
	assert.Equal(t, IntValue(12), eval(t, in, call("times", num(4))))

	let := &decl.LetExpr{Names: []string{"k", "j"}, Values: []decl.Expr{num(10), vr("k")}, Body: bin(vr("k"), "+", vr("j"))}
	assert.Equal(t, IntValue(13), eval(t, in, let))
	assert.Equal(t, IntValue(3), lookup(t, in, "k"))
	_, bound := in.Env().Lookup("j")
	assert.False(t, bound)
}

func TestWhileLoops(t *testing.T) {
	t.Run("break", func(t *testing.T) {
		in, _ := setupInterp(t)
		run(t, in,
			assign("i", num(0)),
			while(boolean(true), incr("i"), ifThen(cmp(vr("i"), "==", num(3)), brk()), assign("after", vr("i"))),
		)
		assert.Equal(t, IntValue(3), lookup(t, in, "i"))
		assert.Equal(t, IntValue(2), lookup(t, in, "after"))
	})

	t.Run("continue", func(t *testing.T) {
		in, _ := setupInterp(t)
		run(t, in,
			assign("i", num(0)), assign("odd", num(0)),
			while(cmp(vr("i"), "<", num(6)),
				incr("i"),
				ifThen(cmp(bin(vr("i"), "%", num(2)), "==", num(0)), cont()),
				incr("odd")),
		)
		assert.Equal(t, IntValue(3), lookup(t, in, "odd"))
	})

	t.Run("return propagates", func(t *testing.T) {
		in, _ := setupInterp(t)
		run(t, in,
			def("first", params("limit"),
				assign("i", num(0)),
				while(boolean(true), incr("i"), ifThen(cmp(vr("i"), ">=", vr("limit")), ret(vr("i"))))),
			assign("r", call("first", num(4))))
		assert.Equal(t, IntValue(4), lookup(t, in, "r"))
	})

	t.Run("budget", func(t *testing.T) {
		in, _ := setupInterp(t, WithLoopBudget(10))
		run(t, in, assign("i", num(0)), while(cmp(vr("i"), "<", num(10)), incr("i")))
		assert.Equal(t, 0, in.Env().LoopBudget())

		in, _ = setupInterp(t, WithLoopBudget(10))
		err := in.Run(program(while(boolean(true), pass())))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLoopBudgetExhausted)
		assert.True(t, IsFatal(err))
	})

	t.Run("budget is shared with calls", func(t *testing.T) {
		in, _ := setupInterp(t, WithLoopBudget(5))
		err := in.Run(program(
			def("spin", nil, assign("j", num(0)), while(cmp(vr("j"), "<", num(3)), incr("j"))),
			exprStmt(call("spin")),
			exprStmt(call("spin")),
		))
		assert.ErrorIs(t, err, ErrLoopBudgetExhausted)
	})
}

func TestForLoops(t *testing.T) {
	in, out := setupInterp(t)
	run(t, in,
		assign("total", num(0)),
		forIn("x", list(num(1), num(2), num(3), num(4)),
			ifThen(cmp(vr("x"), "==", num(3)), brk()),
			assign("total", bin(vr("total"), "+", vr("x")))),
		&decl.ForStmt{Targets: []string{"k", "v"}, Iter: &decl.PostfixExpr{
			Operand: &decl.MapExpr{Entries: []decl.MapEntry{{Key: str("a"), Value: num(1)}, {Key: str("b"), Value: num(2)}}},
			Ops:     []decl.PostfixOp{decl.AttrOp{Name: "items"}, decl.CallOp{}},
		}, Body: block(printS(vr("k"), vr("v")))},
	)
	assert.Equal(t, IntValue(3), lookup(t, in, "total"))
	assert.Equal(t, "a 1\nb 2\n", out.String())
}

func TestIfElifElse(t *testing.T) {
	in, _ := setupInterp(t)
	classify := func(n int64) Value {
		run(t, in, assign("n", num(n)), &decl.IfStmt{
			Branches: []decl.CondBranch{
				{Cond: cmp(vr("n"), "<", num(0)), Body: block(assign("r", str("neg")))},
				{Cond: cmp(vr("n"), "==", num(0)), Body: block(assign("r", str("zero")))},
			},
			Else: block(assign("r", str("pos"))),
		})
		return lookup(t, in, "r")
	}
	assert.Equal(t, StringValue("neg"), classify(-2))
	assert.Equal(t, StringValue("zero"), classify(0))
	assert.Equal(t, StringValue("pos"), classify(9))
}

func TestPrint(t *testing.T) {
	in, out := setupInterp(t)
	run(t, in, printS(str("a"), num(1), list(str("b"))), printS())
	assert.Equal(t, "a 1 [\"b\"]\n\n", out.String())
}

func TestEmbedHook(t *testing.T) {
	t.Run("mutates bindings", func(t *testing.T) {
		var seen string
		in, _ := setupInterp(t, WithEmbedHook(func(code string, bindings map[string]Value) error {
			seen = code
			bindings["fromHost"] = IntValue(7)
			return nil
		}))
		run(t, in, &decl.EmbedStmt{Code: "x = 7"})
		assert.Equal(t, "x = 7", seen)
		assert.Equal(t, IntValue(7), lookup(t, in, "fromHost"))
	})

	t.Run("failure", func(t *testing.T) {
		in, _ := setupInterp(t, WithEmbedHook(func(string, map[string]Value) error { return errors.New("boom") }))
		err := in.Run(program(&decl.EmbedStmt{Code: "?"}))
		assert.ErrorIs(t, err, ErrHostEmbed)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("no hook", func(t *testing.T) {
		in, _ := setupInterp(t)
		err := in.Run(program(&decl.EmbedStmt{Code: "?"}))
		assert.ErrorIs(t, err, ErrHostEmbed)
	})
}

func TestRunStopsAtFirstError(t *testing.T) {
	in, _ := setupInterp(t)
	err := in.Run(program(assign("a", num(1)), assign("b", vr("missing")), assign("c", num(3))))
	var execErr *ExecError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, ErrUnboundName)
	assert.IsType(t, &decl.AssignStmt{}, execErr.Stmt)
	assert.Equal(t, IntValue(1), lookup(t, in, "a"))
	_, bound := in.Env().Lookup("c")
	assert.False(t, bound)
}

func TestTopLevelControlStopsProgram(t *testing.T) {
	in, _ := setupInterp(t)
	run(t, in, assign("a", num(1)), ret(), assign("a", num(2)))
	assert.Equal(t, IntValue(1), lookup(t, in, "a"))
	assert.Equal(t, ControlNone, in.Env().Control())
}

func TestIndependentInterpreters(t *testing.T) {
	a, _ := setupInterp(t)
	b, _ := setupInterp(t)
	run(t, a, assign("x", num(1)))
	_, bound := b.Env().Lookup("x")
	assert.False(t, bound)
}

func TestLastValue(t *testing.T) {
	in, _ := setupInterp(t)
	run(t, in, exprStmt(bin(num(20), "+", num(22))))
	assert.Equal(t, IntValue(42), in.LastValue())

	t.Run("nested expression statements do not leak", func(t *testing.T) {
		run(t, in,
			def("g", nil, ret(num(5))),
			def("f", nil, exprStmt(call("g")), ret(num(0))),
			assign("x", call("f")),
		)
		assert.Equal(t, None, in.LastValue())
		assert.Equal(t, IntValue(0), lookup(t, in, "x"))
	})

	t.Run("cleared by later statements", func(t *testing.T) {
		run(t, in, exprStmt(num(7)), assign("y", num(1)))
		assert.Equal(t, None, in.LastValue())
	})
}

func TestInfixCustomOperator(t *testing.T) {
	in, _ := setupInterp(t)
	avg := &decl.DefStmt{Kind: decl.DefInfix, Name: "$avg",
		Params: []decl.Param{{Name: "a"}, {Name: "b"}},
		Body:   block(ret(bin(bin(vr("a"), "+", vr("b")), "/", num(2))))}
	run(t, in,
		def("avgavg", []decl.Param{{Name: "a"}, {Name: "b"}}, ret(num(100))),
		avg,
		assign("r", bin(num(1), "$avg", num(3))),
	)
	_, bound := in.Env().Lookup("$avg")
	assert.True(t, bound)
	assert.Equal(t, "2", lookup(t, in, "r").Repr())
	assert.Equal(t, IntValue(100), eval(t, in, call("avgavg", num(1), num(3))))
}
