package parser

import "github.com/panyam/pylang/decl"

type Node = decl.Node
type NodeInfo = decl.NodeInfo
type Location = decl.Location
type Program = decl.Program
type LoadStmt = decl.LoadStmt

type Expr = decl.Expr
type ExprBase = decl.ExprBase
type Stmt = decl.Stmt
type StmtBase = decl.StmtBase
type Block = decl.Block

type NoneLit = decl.NoneLit
type BoolLit = decl.BoolLit
type IntLit = decl.IntLit
type NumberLit = decl.NumberLit
type StringLit = decl.StringLit
type Variable = decl.Variable
type CallExpr = decl.CallExpr
type Arg = decl.Arg
type UnaryExpr = decl.UnaryExpr
type BinaryExpr = decl.BinaryExpr
type CompareExpr = decl.CompareExpr
type TernaryExpr = decl.TernaryExpr
type BifixExpr = decl.BifixExpr
type PostfixExpr = decl.PostfixExpr
type PostfixOp = decl.PostfixOp
type IndexOp = decl.IndexOp
type CallOp = decl.CallOp
type AttrOp = decl.AttrOp
type SliceExpr = decl.SliceExpr
type TupleExpr = decl.TupleExpr
type ListExpr = decl.ListExpr
type SetExpr = decl.SetExpr
type MapExpr = decl.MapExpr
type MapEntry = decl.MapEntry
type Param = decl.Param
type LambdaExpr = decl.LambdaExpr
type LetExpr = decl.LetExpr

type AssignStmt = decl.AssignStmt
type AssignTarget = decl.AssignTarget
type IfStmt = decl.IfStmt
type CondBranch = decl.CondBranch
type WhileStmt = decl.WhileStmt
type ForStmt = decl.ForStmt
type BreakStmt = decl.BreakStmt
type ContinueStmt = decl.ContinueStmt
type PassStmt = decl.PassStmt
type ReturnStmt = decl.ReturnStmt
type PrintStmt = decl.PrintStmt
type DeleteStmt = decl.DeleteStmt
type DefStmt = decl.DefStmt
type EmbedStmt = decl.EmbedStmt
type ExprStmt = decl.ExprStmt
