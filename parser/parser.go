// Package parser turns source text into decl trees.
//
// The grammar is brace delimited with `;` terminated simple statements.  A
// terminator may be omitted before `}` and at the end of input.
//
//	Program    := { "load" PATHS } { Stmt }
//	Stmt       := "if" Expr Block { ("elif" | "else" "if") Expr Block } [ "else" Block ]
//	            | "while" Expr Block
//	            | "for" NAME { "," NAME } "in" Expr Block
//	            | "def" NAME "(" Params ")" Block
//	            | "def" NAME CUSTOM_OP NAME Block
//	            | "def" BIFIX_LEFT Params BIFIX_RIGHT Block
//	            | "embed" "{" RAW "}"
//	            | Simple ";"
//	Simple     := "break" | "continue" | "pass" | "return" [ ExprList ]
//	            | "print" [ ExprList ] | ("del" | "delete") NAME { "," NAME }
//	            | Target { "," Target } "=" ExprList
//	            | Expr
//	Target     := NAME [ ":" TYPE ]
//	Params     := [ Param { "," Param } ]
//	Param      := NAME [ "=" Expr ] | "*" NAME | "**" NAME
//
// Expressions are parsed by precedence climbing over an OperatorTable.
// Each level yields one flat chain, so `10 - 3 + 2` is a single hybrid
// BinaryExpr and `a < b <= c` a single CompareExpr.
package parser

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	gfn "github.com/panyam/goutils/fn"
	"github.com/panyam/pylang/decl"
)

var (
	ErrSyntax = errors.New("syntax error")

	// ErrIncomplete marks input that ended before a construct was closed.
	// A REPL reads another line and tries again.
	ErrIncomplete = errors.New("incomplete input")
)

// Error is a parse failure at a source location.  It unwraps to ErrSyntax
// or ErrIncomplete.
type Error struct {
	Path string
	Loc  Location
	Near string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	where := e.Loc.String()
	if e.Path != "" {
		where = e.Path + ":" + where
	}
	if e.Near != "" {
		return fmt.Sprintf("%s: %v near '%s': %s", where, e.Err, e.Near, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", where, e.Err, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures the lexer and the operator grammar.
type Options struct {
	// Path is recorded on the program and in errors.
	Path      string
	Comments  CommentStyle
	Operators OperatorTable
	Bifix     []BifixPair
}

// DefaultOptions uses python style comments and the default operators.
func DefaultOptions() *Options {
	return &Options{
		Comments:  CommentPython,
		Operators: DefaultOperatorTable(),
		Bifix:     DefaultBifixPairs(),
	}
}

func (o *Options) withDefaults() *Options {
	out := DefaultOptions()
	if o == nil {
		return out
	}
	out.Path = o.Path
	if o.Comments != "" {
		out.Comments = o.Comments
	}
	if o.Operators != nil {
		out.Operators = o.Operators
	}
	if o.Bifix != nil {
		out.Bifix = o.Bifix
	}
	return out
}

// Parse parses a whole program.  A nil opts uses DefaultOptions.
func Parse(src string, opts *Options) (*Program, error) {
	p, err := NewLLParser(src, opts)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

// ParseExpr parses a single expression with nothing after it.
func ParseExpr(src string, opts *Options) (Expr, error) {
	p, err := NewLLParser(src, opts)
	if err != nil {
		return nil, err
	}
	e, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if p.Peek().Kind != EOF {
		return nil, p.Errorf("unexpected %s after expression", p.Peek())
	}
	return e, nil
}

// LLParser is a recursive descent parser over a pre-lexed token stream.
type LLParser struct {
	opts   *Options
	tokens []Token
	idx    int
	last   Token
}

func NewLLParser(src string, opts *Options) (*LLParser, error) {
	opts = opts.withDefaults()
	lexer := NewLexer(src, opts.Comments, opts.Operators.Symbols(opts.Bifix))
	tokens, err := lexer.Tokenize()
	if err != nil {
		var perr *Error
		if errors.As(err, &perr) {
			perr.Path = opts.Path
		}
		return nil, err
	}
	return &LLParser{opts: opts, tokens: tokens}, nil
}

func (p *LLParser) Errorf(format string, args ...any) error {
	tok := p.Peek()
	kind := ErrSyntax
	if tok.Kind == EOF {
		kind = ErrIncomplete
	}
	return &Error{Path: p.opts.Path, Loc: tok.Loc, Near: tok.Text, Msg: fmt.Sprintf(format, args...), Err: kind}
}

func (p *LLParser) Peek() Token { return p.PeekN(0) }

func (p *LLParser) PeekN(n int) Token {
	if p.idx+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.idx+n]
}

func (p *LLParser) Advance() Token {
	tok := p.Peek()
	if p.idx < len(p.tokens)-1 {
		p.idx++
	}
	p.last = tok
	return tok
}

// Expect checks that the next token is one of the given symbols or keywords.
// It does NOT advance.
func (p *LLParser) Expect(texts ...string) (Token, error) {
	tok := p.Peek()
	if slices.ContainsFunc(texts, tok.Is) {
		return tok, nil
	}
	if len(texts) == 1 {
		return tok, p.Errorf("expected '%s', found %s", texts[0], tok)
	}
	quoted := gfn.Map(texts, func(s string) string { return "'" + s + "'" })
	return tok, p.Errorf("expected one of [%s], found %s", strings.Join(quoted, ", "), tok)
}

// AdvanceIf expects one of the given tokens and advances if found.
func (p *LLParser) AdvanceIf(texts ...string) (Token, error) {
	if _, err := p.Expect(texts...); err != nil {
		return Token{}, err
	}
	return p.Advance(), nil
}

// span covers from the start token to the last consumed token.
func (p *LLParser) span(start Token) NodeInfo {
	return decl.NewNodeInfo(start.Start, p.last.Stop, start.Loc)
}

func (p *LLParser) exprBase(start Token) ExprBase { return ExprBase{NodeInfo: p.span(start)} }
func (p *LLParser) stmtBase(start Token) StmtBase { return StmtBase{NodeInfo: p.span(start)} }

func (p *LLParser) ParseIdentifier() (string, error) {
	tok := p.Peek()
	if tok.Kind != IDENTIFIER {
		return "", p.Errorf("expected identifier, found %s", tok)
	}
	p.Advance()
	return tok.Text, nil
}

// --- Program and statements ---

func (p *LLParser) ParseProgram() (*Program, error) {
	start := p.Peek()
	prog := &Program{Path: p.opts.Path}
	for {
		tok := p.Peek()
		if tok.Is(";") {
			p.Advance()
			continue
		}
		if tok.Kind != LOAD_PATHS {
			break
		}
		p.Advance()
		paths, err := splitLoadPaths(tok.Text)
		if err != nil {
			return nil, &Error{Path: p.opts.Path, Loc: tok.Loc, Msg: err.Error(), Err: ErrSyntax}
		}
		prog.Loads = append(prog.Loads, &LoadStmt{NodeInfo: p.span(tok), Paths: paths})
	}

	bodyStart := p.Peek()
	stmts, err := p.ParseStmtList("")
	if err != nil {
		return nil, err
	}
	if p.Peek().Kind != EOF {
		return nil, p.Errorf("unexpected %s", p.Peek())
	}
	prog.Body = &Block{StmtBase: p.stmtBase(bodyStart), Stmts: stmts}
	prog.NodeInfo = p.span(start)
	return prog, nil
}

func splitLoadPaths(text string) (out []string, err error) {
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if len(part) >= 2 && (part[0] == '"' || part[0] == '\'') {
			if part, err = strconv.Unquote(`"` + part[1:len(part)-1] + `"`); err != nil {
				return nil, fmt.Errorf("bad load path %s", part)
			}
		}
		if part == "" {
			return nil, errors.New("empty load path")
		}
		out = append(out, part)
	}
	return
}

// ParseStmtList parses statements up to the closing token (not consumed)
// or the end of input.
func (p *LLParser) ParseStmtList(closer string) (stmts []Stmt, err error) {
	for {
		tok := p.Peek()
		switch {
		case tok.Is(";"):
			p.Advance()
			continue
		case tok.Kind == EOF, closer != "" && tok.Is(closer):
			return stmts, nil
		case tok.Kind == LOAD_PATHS:
			return nil, p.Errorf("load must come before any other statement")
		}
		stmt, err := p.ParseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

// ParseBlock parses statements enclosed in braces.
func (p *LLParser) ParseBlock() (*Block, error) {
	start, err := p.AdvanceIf("{")
	if err != nil {
		return nil, err
	}
	stmts, err := p.ParseStmtList("}")
	if err != nil {
		return nil, err
	}
	if _, err := p.AdvanceIf("}"); err != nil {
		return nil, err
	}
	return &Block{StmtBase: p.stmtBase(start), Stmts: stmts}, nil
}

func (p *LLParser) ParseStmt() (Stmt, error) {
	tok := p.Peek()
	if tok.Kind == RAW_BLOCK {
		p.Advance()
		return &EmbedStmt{StmtBase: p.stmtBase(tok), Code: tok.Text}, nil
	}
	if tok.Kind == KEYWORD {
		switch tok.Text {
		case "if":
			return p.ParseIfStmt()
		case "while":
			return p.ParseWhileStmt()
		case "for":
			return p.ParseForStmt()
		case "def":
			return p.ParseDefStmt()
		}
	}

	stmt, err := p.parseSimpleStmt()
	if err != nil {
		return nil, err
	}
	if err := p.endSimpleStmt(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *LLParser) endSimpleStmt() error {
	tok := p.Peek()
	switch {
	case tok.Is(";"):
		p.Advance()
		return nil
	case tok.Is("}"), tok.Kind == EOF:
		return nil
	}
	return p.Errorf("expected ';', found %s", tok)
}

func (p *LLParser) parseSimpleStmt() (Stmt, error) {
	start := p.Peek()
	if start.Kind == KEYWORD {
		switch start.Text {
		case "break":
			p.Advance()
			return &BreakStmt{StmtBase: p.stmtBase(start)}, nil
		case "continue":
			p.Advance()
			return &ContinueStmt{StmtBase: p.stmtBase(start)}, nil
		case "pass":
			p.Advance()
			return &PassStmt{StmtBase: p.stmtBase(start)}, nil
		case "return":
			p.Advance()
			values, err := p.parseOptExprList()
			if err != nil {
				return nil, err
			}
			return &ReturnStmt{StmtBase: p.stmtBase(start), Values: values}, nil
		case "print":
			p.Advance()
			args, err := p.parseOptExprList()
			if err != nil {
				return nil, err
			}
			return &PrintStmt{StmtBase: p.stmtBase(start), Args: args}, nil
		case "del", "delete":
			p.Advance()
			names, err := p.parseNames()
			if err != nil {
				return nil, err
			}
			return &DeleteStmt{StmtBase: p.stmtBase(start), Names: names}, nil
		}
	}

	if p.atAssignment() {
		return p.ParseAssignStmt()
	}
	x, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{StmtBase: p.stmtBase(start), X: x}, nil
}

// atAssignment looks ahead for `name [: type] {, name [: type]} =`.
func (p *LLParser) atAssignment() bool {
	i := 0
	for {
		if p.PeekN(i).Kind != IDENTIFIER {
			return false
		}
		i++
		if p.PeekN(i).Is(":") {
			if p.PeekN(i+1).Kind != IDENTIFIER {
				return false
			}
			i += 2
		}
		switch tok := p.PeekN(i); {
		case tok.Is("="):
			return true
		case tok.Is(","):
			i++
		default:
			return false
		}
	}
}

func (p *LLParser) ParseAssignStmt() (Stmt, error) {
	start := p.Peek()
	var targets []AssignTarget
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		target := AssignTarget{Name: name}
		if p.Peek().Is(":") {
			p.Advance()
			if target.TypeName, err = p.ParseIdentifier(); err != nil {
				return nil, err
			}
		}
		targets = append(targets, target)
		if !p.Peek().Is(",") {
			break
		}
		p.Advance()
	}
	if _, err := p.AdvanceIf("="); err != nil {
		return nil, err
	}
	values, err := p.ParseExprList()
	if err != nil {
		return nil, err
	}
	return &AssignStmt{StmtBase: p.stmtBase(start), Targets: targets, Values: values}, nil
}

func (p *LLParser) parseNames() (names []string, err error) {
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.Peek().Is(",") {
			return names, nil
		}
		p.Advance()
	}
}

// ParseIfStmt handles `if`, `elif` and `else if` chains.
func (p *LLParser) ParseIfStmt() (Stmt, error) {
	start, err := p.AdvanceIf("if")
	if err != nil {
		return nil, err
	}
	out := &IfStmt{}
	for {
		cond, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		body, err := p.ParseBlock()
		if err != nil {
			return nil, err
		}
		out.Branches = append(out.Branches, CondBranch{Cond: cond, Body: body})

		if p.Peek().Is("elif") {
			p.Advance()
			continue
		}
		if p.Peek().Is("else") {
			p.Advance()
			if p.Peek().Is("if") {
				p.Advance()
				continue
			}
			if out.Else, err = p.ParseBlock(); err != nil {
				return nil, err
			}
		}
		break
	}
	out.StmtBase = p.stmtBase(start)
	return out, nil
}

func (p *LLParser) ParseWhileStmt() (Stmt, error) {
	start, err := p.AdvanceIf("while")
	if err != nil {
		return nil, err
	}
	cond, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.ParseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{StmtBase: p.stmtBase(start), Cond: cond, Body: body}, nil
}

func (p *LLParser) ParseForStmt() (Stmt, error) {
	start, err := p.AdvanceIf("for")
	if err != nil {
		return nil, err
	}
	targets, err := p.parseNames()
	if err != nil {
		return nil, err
	}
	if _, err := p.AdvanceIf("in"); err != nil {
		return nil, err
	}
	iter, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	body, err := p.ParseBlock()
	if err != nil {
		return nil, err
	}
	return &ForStmt{StmtBase: p.stmtBase(start), Targets: targets, Iter: iter, Body: body}, nil
}

// ParseDefStmt parses the three definition forms: named, infix and bifix.
func (p *LLParser) ParseDefStmt() (Stmt, error) {
	start, err := p.AdvanceIf("def")
	if err != nil {
		return nil, err
	}
	out := &DefStmt{}
	tok := p.Peek()
	switch {
	case tok.Kind == IDENTIFIER && p.PeekN(1).Kind == CUSTOM_OP:
		// def x $op y { ... }
		left := p.Advance().Text
		out.Kind = decl.DefInfix
		out.Name = p.Advance().Text
		right, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		out.Params = []Param{{Name: left}, {Name: right}}
	case tok.Kind == IDENTIFIER || tok.Kind == CUSTOM_OP:
		out.Name = p.Advance().Text
		if tok.Kind == CUSTOM_OP {
			out.Kind = decl.DefInfix
		}
		if _, err := p.AdvanceIf("("); err != nil {
			return nil, err
		}
		if out.Params, err = p.ParseParams(")"); err != nil {
			return nil, err
		}
		p.Advance()
	default:
		pair, ok := p.bifixFor(tok)
		if !ok {
			return nil, p.Errorf("expected function name or bifix delimiter after def, found %s", tok)
		}
		p.Advance()
		out.Kind = decl.DefBifix
		out.Left, out.Right = pair.Left, pair.Right
		if out.Params, err = p.ParseParams(pair.Right); err != nil {
			return nil, err
		}
		p.Advance()
	}
	if out.Body, err = p.ParseBlock(); err != nil {
		return nil, err
	}
	out.StmtBase = p.stmtBase(start)
	return out, nil
}

// ParseParams parses a parameter list up to closer, which is left unconsumed
// but guaranteed to be next.
func (p *LLParser) ParseParams(closer string) (params []Param, err error) {
	seen := map[string]bool{}
	sawDefault := false
	for !p.Peek().Is(closer) {
		if len(params) > 0 {
			if _, err := p.AdvanceIf(","); err != nil {
				return nil, err
			}
			if p.Peek().Is(closer) {
				break
			}
		}
		param := Param{}
		switch {
		case p.Peek().Is("*"):
			p.Advance()
			param.Kind = decl.ParamRest
		case p.Peek().Is("**"):
			p.Advance()
			param.Kind = decl.ParamKwRest
		}
		if param.Name, err = p.ParseIdentifier(); err != nil {
			return nil, err
		}
		if seen[param.Name] {
			return nil, p.Errorf("duplicate parameter %s", param.Name)
		}
		seen[param.Name] = true
		if param.Kind == decl.ParamPlain {
			if p.Peek().Is("=") {
				p.Advance()
				if param.Default, err = p.ParseExpression(); err != nil {
					return nil, err
				}
				sawDefault = true
			} else if sawDefault {
				return nil, p.Errorf("parameter %s without a default follows one with a default", param.Name)
			}
		}
		params = append(params, param)
	}
	return params, nil
}

// --- Expressions ---

// ParseExpression parses at the loosest level of the operator table.
func (p *LLParser) ParseExpression() (Expr, error) {
	return p.parseLevel(len(p.opts.Operators) - 1)
}

// ParseExprList parses `e1, e2, ...` with at least one expression.
func (p *LLParser) ParseExprList() (out []Expr, err error) {
	for {
		e, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if !p.Peek().Is(",") {
			return out, nil
		}
		p.Advance()
	}
}

func (p *LLParser) parseOptExprList() ([]Expr, error) {
	if tok := p.Peek(); tok.Is(";") || tok.Is("}") || tok.Kind == EOF {
		return nil, nil
	}
	return p.ParseExprList()
}

// parseLevel parses the table level at index i and everything tighter.
func (p *LLParser) parseLevel(i int) (Expr, error) {
	if i < 0 {
		return p.ParsePostfixExpr()
	}
	lv := p.opts.Operators[i]
	start := p.Peek()
	switch lv.Arity {
	case Prefix:
		if !lv.matches(start) {
			return p.parseLevel(i - 1)
		}
		p.Advance()
		operand, err := p.parseLevel(i)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{ExprBase: p.exprBase(start), Operator: start.Text, Operand: operand}, nil

	case Postfix:
		e, err := p.parseLevel(i - 1)
		if err != nil {
			return nil, err
		}
		for lv.matches(p.Peek()) {
			op := p.Advance()
			e = &UnaryExpr{ExprBase: p.exprBase(start), Operator: op.Text, Operand: e, Postfix: true}
		}
		return e, nil

	case Ternary:
		then, err := p.parseLevel(i - 1)
		if err != nil {
			return nil, err
		}
		if len(lv.Symbols) != 2 || !p.Peek().Is(lv.Symbols[0]) {
			return then, nil
		}
		p.Advance()
		cond, err := p.parseLevel(i - 1)
		if err != nil {
			return nil, err
		}
		if _, err := p.AdvanceIf(lv.Symbols[1]); err != nil {
			return nil, err
		}
		otherwise, err := p.parseLevel(i)
		if err != nil {
			return nil, err
		}
		return &TernaryExpr{ExprBase: p.exprBase(start), Then: then, Cond: cond, Else: otherwise}, nil
	}

	first, err := p.parseLevel(i - 1)
	if err != nil {
		return nil, err
	}
	operands := []Expr{first}
	var operators []string
	for lv.matches(p.Peek()) {
		operators = append(operators, p.Advance().Text)
		next, err := p.parseLevel(i - 1)
		if err != nil {
			return nil, err
		}
		operands = append(operands, next)
	}
	if len(operators) == 0 {
		return first, nil
	}
	if lv.Compare {
		return &CompareExpr{ExprBase: p.exprBase(start), Operands: operands, Operators: operators}, nil
	}
	return &BinaryExpr{ExprBase: p.exprBase(start), Operands: operands, Operators: operators, RightAssoc: lv.Assoc == AssocRight}, nil
}

// prefixLevel finds the prefix level a token starts, so that operands of
// tighter levels may still be negated, eg `2 ^ -1`.
func (p *LLParser) prefixLevel(tok Token) (int, bool) {
	for i, lv := range p.opts.Operators {
		if lv.Arity == Prefix && lv.matches(tok) {
			return i, true
		}
	}
	return 0, false
}

func (p *LLParser) bifixFor(tok Token) (BifixPair, bool) {
	if tok.Kind != OPERATOR {
		return BifixPair{}, false
	}
	for _, pair := range p.opts.Bifix {
		if pair.Left == tok.Text {
			return pair, true
		}
	}
	return BifixPair{}, false
}

// ParsePostfixExpr parses an atom followed by any index, call or attribute
// operations.  A call straight on a name is dispatched by name.
func (p *LLParser) ParsePostfixExpr() (Expr, error) {
	start := p.Peek()
	atom, err := p.ParseAtom()
	if err != nil {
		return nil, err
	}
	if v, ok := atom.(*Variable); ok && p.Peek().Is("(") {
		p.Advance()
		args, err := p.ParseArgs()
		if err != nil {
			return nil, err
		}
		atom = &CallExpr{ExprBase: p.exprBase(start), Name: v.Name, Args: args}
	}

	var ops []PostfixOp
	for {
		tok := p.Peek()
		switch {
		case tok.Is("["):
			p.Advance()
			index, err := p.parseIndex()
			if err != nil {
				return nil, err
			}
			ops = append(ops, IndexOp{Index: index})
		case tok.Is("("):
			p.Advance()
			args, err := p.ParseArgs()
			if err != nil {
				return nil, err
			}
			ops = append(ops, CallOp{Args: args})
		case tok.Is("."):
			p.Advance()
			name, err := p.ParseIdentifier()
			if err != nil {
				return nil, err
			}
			ops = append(ops, AttrOp{Name: name})
		default:
			if len(ops) == 0 {
				return atom, nil
			}
			return &PostfixExpr{ExprBase: p.exprBase(start), Operand: atom, Ops: ops}, nil
		}
	}
}

// parseIndex parses the inside of `[...]` including the closing bracket.
func (p *LLParser) parseIndex() (Expr, error) {
	start := p.Peek()
	var parts [3]Expr
	var err error
	if !p.Peek().Is(":") {
		if parts[0], err = p.ParseExpression(); err != nil {
			return nil, err
		}
		if !p.Peek().Is(":") {
			_, err = p.AdvanceIf("]")
			return parts[0], err
		}
	}
	for n := 1; n < 3 && p.Peek().Is(":"); n++ {
		p.Advance()
		if tok := p.Peek(); tok.Is(":") || tok.Is("]") {
			continue
		}
		if parts[n], err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.AdvanceIf("]"); err != nil {
		return nil, err
	}
	return &SliceExpr{ExprBase: p.exprBase(start), Start: parts[0], Stop: parts[1], Step: parts[2]}, nil
}

// ParseArgs parses call arguments after `(` including the closing paren.
func (p *LLParser) ParseArgs() (args []Arg, err error) {
	for !p.Peek().Is(")") {
		if len(args) > 0 {
			if _, err := p.AdvanceIf(","); err != nil {
				return nil, err
			}
			if p.Peek().Is(")") {
				break
			}
		}
		arg := Arg{}
		switch tok := p.Peek(); {
		case tok.Is("*"):
			p.Advance()
			arg.Unpack = decl.UnpackArgs
		case tok.Is("**"):
			p.Advance()
			arg.Unpack = decl.UnpackKwargs
		case tok.Kind == IDENTIFIER && p.PeekN(1).Is("="):
			arg.Name = p.Advance().Text
			p.Advance()
		}
		if arg.Value, err = p.ParseExpression(); err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.Advance()
	return args, nil
}

// parseItems parses comma separated expressions up to closer, allowing a
// trailing comma, and consumes the closer.
func (p *LLParser) parseItems(closer string, first Expr) (items []Expr, trailingComma bool, err error) {
	if first != nil {
		items = append(items, first)
	}
	for !p.Peek().Is(closer) {
		if len(items) > 0 {
			if _, err := p.AdvanceIf(","); err != nil {
				return nil, false, err
			}
			if p.Peek().Is(closer) {
				trailingComma = true
				break
			}
		}
		e, err := p.ParseExpression()
		if err != nil {
			return nil, false, err
		}
		items = append(items, e)
	}
	p.Advance()
	return items, trailingComma, nil
}

// ParseAtom parses literals, names, bracketed forms, lambda and let.
func (p *LLParser) ParseAtom() (Expr, error) {
	start := p.Peek()
	switch start.Kind {
	case INT_LITERAL:
		p.Advance()
		return &IntLit{ExprBase: p.exprBase(start), Value: start.Int}, nil
	case NUMBER_LITERAL:
		p.Advance()
		return &NumberLit{ExprBase: p.exprBase(start), Value: start.Num}, nil
	case STRING_LITERAL:
		p.Advance()
		return &StringLit{ExprBase: p.exprBase(start), Value: start.Text}, nil
	case IDENTIFIER:
		p.Advance()
		return &Variable{ExprBase: p.exprBase(start), Name: start.Text}, nil
	case KEYWORD:
		switch start.Text {
		case "True", "False":
			p.Advance()
			return &BoolLit{ExprBase: p.exprBase(start), Value: start.Text == "True"}, nil
		case "None":
			p.Advance()
			return &NoneLit{ExprBase: p.exprBase(start)}, nil
		case "lambda":
			return p.parseLambda()
		case "let":
			return p.parseLet()
		}
	case OPERATOR:
		switch start.Text {
		case "(":
			p.Advance()
			if p.Peek().Is(")") {
				p.Advance()
				return &TupleExpr{ExprBase: p.exprBase(start)}, nil
			}
			first, err := p.ParseExpression()
			if err != nil {
				return nil, err
			}
			if p.Peek().Is(")") {
				p.Advance()
				return first, nil
			}
			items, _, err := p.parseItems(")", first)
			if err != nil {
				return nil, err
			}
			return &TupleExpr{ExprBase: p.exprBase(start), Items: items}, nil
		case "[":
			p.Advance()
			items, _, err := p.parseItems("]", nil)
			if err != nil {
				return nil, err
			}
			return &ListExpr{ExprBase: p.exprBase(start), Items: items}, nil
		case "{":
			return p.parseBraces()
		}
		if pair, ok := p.bifixFor(start); ok {
			p.Advance()
			var first Expr
			if pair.Left == pair.Right && p.Peek().Is(pair.Right) && p.canStartExpr(p.PeekN(1)) {
				// `||x||`: the second delimiter opens a nested pair.
				var err error
				if first, err = p.ParseExpression(); err != nil {
					return nil, err
				}
			}
			args, _, err := p.parseItems(pair.Right, first)
			if err != nil {
				return nil, err
			}
			if len(args) == 0 {
				return nil, &Error{Path: p.opts.Path, Loc: start.Loc, Near: start.Text, Msg: "empty " + pair.Left + pair.Right, Err: ErrSyntax}
			}
			return &BifixExpr{ExprBase: p.exprBase(start), Left: pair.Left, Right: pair.Right, Args: args}, nil
		}
	}
	if lv, ok := p.prefixLevel(start); ok {
		return p.parseLevel(lv)
	}
	return nil, p.Errorf("unexpected %s", start)
}

// canStartExpr reports whether tok may begin an operand.
func (p *LLParser) canStartExpr(tok Token) bool {
	switch tok.Kind {
	case INT_LITERAL, NUMBER_LITERAL, STRING_LITERAL, IDENTIFIER:
		return true
	case KEYWORD:
		switch tok.Text {
		case "True", "False", "None", "lambda", "let":
			return true
		}
	case OPERATOR:
		switch tok.Text {
		case "(", "[", "{":
			return true
		}
		if _, ok := p.bifixFor(tok); ok {
			return true
		}
	}
	_, ok := p.prefixLevel(tok)
	return ok
}

// parseBraces parses `{}` (empty dict), `{k: v, ...}` or `{a, b, ...}`.
func (p *LLParser) parseBraces() (Expr, error) {
	start := p.Advance()
	if p.Peek().Is("}") {
		p.Advance()
		return &MapExpr{ExprBase: p.exprBase(start)}, nil
	}
	first, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	if !p.Peek().Is(":") {
		items, _, err := p.parseItems("}", first)
		if err != nil {
			return nil, err
		}
		return &SetExpr{ExprBase: p.exprBase(start), Items: items}, nil
	}

	out := &MapExpr{}
	key := first
	for {
		if _, err := p.AdvanceIf(":"); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out.Entries = append(out.Entries, MapEntry{Key: key, Value: value})
		if p.Peek().Is("}") {
			break
		}
		if _, err := p.AdvanceIf(","); err != nil {
			return nil, err
		}
		if p.Peek().Is("}") {
			break
		}
		if key, err = p.ParseExpression(); err != nil {
			return nil, err
		}
	}
	p.Advance()
	out.ExprBase = p.exprBase(start)
	return out, nil
}

func (p *LLParser) parseLambda() (Expr, error) {
	start := p.Advance()
	params, err := p.ParseParams(":")
	if err != nil {
		return nil, err
	}
	p.Advance()
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	return &LambdaExpr{ExprBase: p.exprBase(start), Params: params, Body: body}, nil
}

func (p *LLParser) parseLet() (Expr, error) {
	start := p.Advance()
	out := &LetExpr{}
	for {
		name, err := p.ParseIdentifier()
		if err != nil {
			return nil, err
		}
		if _, err := p.AdvanceIf("="); err != nil {
			return nil, err
		}
		value, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		out.Names = append(out.Names, name)
		out.Values = append(out.Values, value)
		if !p.Peek().Is(",") {
			break
		}
		p.Advance()
	}
	if _, err := p.AdvanceIf(":"); err != nil {
		return nil, err
	}
	body, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	out.Body = body
	out.ExprBase = p.exprBase(start)
	return out, nil
}
