package parser

import (
	"slices"
)

// Arity of an operator level.
type Arity int

const (
	Prefix Arity = iota
	Postfix
	Binary
	Ternary
)

// Associativity of a binary level.
type Associativity int

const (
	AssocLeft Associativity = iota
	AssocRight
)

// CustomOps is the pseudo symbol that makes a level match any `$op`.
const CustomOps = "$"

// Level is one precedence level of the operator table.  All operators of a
// level bind equally tight and are collected into one flat chain, so
// `a - b + c` is a single hybrid chain.
type Level struct {
	Symbols []string
	Arity   Arity
	Assoc   Associativity

	// Compare marks a chained comparison level: `a < b <= c` holds if
	// every adjacent pair holds.
	Compare bool
}

func (lv Level) matches(tok Token) bool {
	if tok.Kind == CUSTOM_OP {
		return slices.Contains(lv.Symbols, CustomOps)
	}
	if tok.Kind != OPERATOR && tok.Kind != KEYWORD {
		return false
	}
	return slices.Contains(lv.Symbols, tok.Text)
}

// OperatorTable lists levels from the tightest binding to the loosest.
type OperatorTable []Level

// BifixPair is a delimiter pair such as `|x|`.
type BifixPair struct {
	Left, Right string
}

// DefaultOperatorTable is the arithmetic and logic table of the language.
// The ternary level uses `if`/`else` as its two markers.
func DefaultOperatorTable() OperatorTable {
	return OperatorTable{
		{Symbols: []string{"^", "**"}, Arity: Binary, Assoc: AssocRight},
		{Symbols: []string{"!"}, Arity: Postfix},
		{Symbols: []string{"+", "-", "~"}, Arity: Prefix},
		{Symbols: []string{"*", "/", "//", "%"}, Arity: Binary},
		{Symbols: []string{"+", "-"}, Arity: Binary},
		{Symbols: []string{"in", "not in"}, Arity: Binary},
		{Symbols: []string{"==", "!=", "<", ">", "<=", ">="}, Arity: Binary, Compare: true},
		{Symbols: []string{"not"}, Arity: Prefix},
		{Symbols: []string{"and"}, Arity: Binary},
		{Symbols: []string{"or"}, Arity: Binary},
		{Symbols: []string{CustomOps}, Arity: Binary},
		{Symbols: []string{"if", "else"}, Arity: Ternary, Assoc: AssocRight},
	}
}

// DefaultBifixPairs are the circumfix operators bound by the standard
// constants: absolute value, floor and ceiling.
func DefaultBifixPairs() []BifixPair {
	return []BifixPair{{"|", "|"}, {"⌊", "⌋"}, {"⌈", "⌉"}}
}

// Symbols returns every symbol the lexer must recognise for the table and
// the bifix pairs.
func (t OperatorTable) Symbols(pairs []BifixPair) (out []string) {
	for _, lv := range t {
		for _, s := range lv.Symbols {
			if s != CustomOps {
				out = append(out, s)
			}
		}
	}
	for _, p := range pairs {
		out = append(out, p.Left, p.Right)
	}
	return
}
