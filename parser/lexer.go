package parser

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

const eof = 0

// TokenKind classifies a lexed token.
type TokenKind int

const (
	EOF TokenKind = iota
	IDENTIFIER
	KEYWORD
	INT_LITERAL
	NUMBER_LITERAL
	STRING_LITERAL
	OPERATOR   // table operators, bifix delimiters and punctuation
	CUSTOM_OP  // $name or $<symbols>
	RAW_BLOCK  // body of an embed statement
	LOAD_PATHS // rest of a load line
)

var tokenNames = map[TokenKind]string{
	EOF:            "end of input",
	IDENTIFIER:     "identifier",
	KEYWORD:        "keyword",
	INT_LITERAL:    "integer",
	NUMBER_LITERAL: "number",
	STRING_LITERAL: "string",
	OPERATOR:       "operator",
	CUSTOM_OP:      "custom operator",
	RAW_BLOCK:      "raw block",
	LOAD_PATHS:     "load paths",
}

func (k TokenKind) String() string { return tokenNames[k] }

// Token is one lexeme with its position.  Text holds the decoded value for
// strings and the source text otherwise.
type Token struct {
	Kind  TokenKind
	Text  string
	Int   int64
	Num   decimal.Decimal
	Start int
	Stop  int
	Loc   Location
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Text)
}

// Is reports whether the token is the given operator, punctuation or keyword.
func (t Token) Is(text string) bool {
	return (t.Kind == OPERATOR || t.Kind == KEYWORD) && t.Text == text
}

var keywords = map[string]bool{
	"if": true, "elif": true, "else": true, "while": true, "for": true, "in": true,
	"def": true, "return": true, "break": true, "continue": true, "pass": true,
	"print": true, "del": true, "delete": true, "lambda": true, "let": true,
	"load": true, "embed": true, "and": true, "or": true, "not": true,
	"True": true, "False": true, "None": true,
}

var punctuation = []string{"(", ")", "[", "]", "{", "}", ",", ";", ":", ".", "=", "**", "*"}

// customOpChars may follow `$` in a symbolic custom operator.
const customOpChars = "+-*/^&%<>=@!~:"

// CommentStyle selects which comment syntax the lexer skips.
type CommentStyle string

const (
	CommentPython CommentStyle = "python" // # to end of line
	CommentC      CommentStyle = "c"      // /* ... */
	CommentCPP    CommentStyle = "cpp"    // // to end of line and /* ... */
)

// ParseCommentStyle validates a comment style name.
func ParseCommentStyle(s string) (CommentStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "python", "py":
		return CommentPython, nil
	case "c":
		return CommentC, nil
	case "cpp", "c++":
		return CommentCPP, nil
	}
	return CommentPython, fmt.Errorf("unknown comment style: %s", s)
}

// Lexer turns source text into tokens.  Symbols are matched by maximal
// munch over the operator table, the bifix delimiters and punctuation.
type Lexer struct {
	src     []rune
	offsets []int // byte offset of each rune, plus one past the end
	idx     int
	line    int
	col     int

	comments  CommentStyle
	symbols   []string // longest first
	lastError error

	tokenStart int
	tokenLoc   Location
	buf        bytes.Buffer
}

// NewLexer creates a lexer over NFC-normalised source.
func NewLexer(src string, comments CommentStyle, symbols []string) *Lexer {
	src = norm.NFC.String(src)
	l := &Lexer{line: 1, col: 1, comments: comments}
	off := 0
	for _, r := range src {
		l.src = append(l.src, r)
		l.offsets = append(l.offsets, off)
		off += len(string(r))
	}
	l.offsets = append(l.offsets, off)

	seen := map[string]bool{}
	for _, sym := range append(slices.Clone(symbols), punctuation...) {
		// Word operators such as `and` are lexed as keywords.
		if sym == "" || isIdentStart([]rune(sym)[0]) || seen[sym] {
			continue
		}
		seen[sym] = true
		l.symbols = append(l.symbols, sym)
	}
	slices.SortStableFunc(l.symbols, func(a, b string) int { return len([]rune(b)) - len([]rune(a)) })
	return l
}

// Error records a lexing error at the current token.
func (l *Lexer) Error(s string) {
	if l.lastError == nil {
		l.lastError = &Error{Loc: l.tokenLoc, Msg: s, Err: ErrSyntax}
	}
}

func (l *Lexer) incomplete(s string) {
	if l.lastError == nil {
		l.lastError = &Error{Loc: l.tokenLoc, Msg: s, Err: ErrIncomplete}
	}
}

// --- Rune Reading Helpers (with line/col tracking) ---

func (l *Lexer) peekN(n int) rune {
	if l.idx+n >= len(l.src) {
		return eof
	}
	return l.src[l.idx+n]
}

func (l *Lexer) peek() rune { return l.peekN(0) }

func (l *Lexer) read() rune {
	if l.idx >= len(l.src) {
		return eof
	}
	r := l.src[l.idx]
	l.idx++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) pos() int { return l.offsets[l.idx] }

func (l *Lexer) hasPrefix(prefix string, consume bool) bool {
	i := 0
	for _, r := range prefix {
		if l.peekN(i) != r {
			return false
		}
		i++
	}
	if consume {
		for range i {
			l.read()
		}
	}
	return true
}

func (l *Lexer) readTill(stop rune, skip bool) (foundeof bool) {
	for {
		r := l.peek()
		if r == eof {
			return true
		}
		if r == stop {
			if skip {
				l.read()
			}
			return false
		}
		l.read()
	}
}

// --- Scanning Functions ---

func (l *Lexer) skipWhitespace() {
	for {
		r := l.peek()
		switch {
		case r == eof:
			return
		case unicode.IsSpace(r):
			l.read()
		case l.comments == CommentPython && r == '#':
			l.readTill('\n', true)
		case l.comments == CommentCPP && l.hasPrefix("//", true):
			l.readTill('\n', true)
		case (l.comments == CommentC || l.comments == CommentCPP) && l.hasPrefix("/*", true):
			for !l.hasPrefix("*/", true) {
				if l.read() == eof {
					l.incomplete("unterminated block comment")
					return
				}
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool { return unicode.IsLetter(r) || r == '_' }
func isIdentPart(r rune) bool  { return isIdentStart(r) || unicode.IsDigit(r) }

func (l *Lexer) scanIdentifier() string {
	l.buf.Reset()
	for r := l.peek(); r != eof && isIdentPart(r); r = l.peek() {
		l.buf.WriteRune(l.read())
	}
	return l.buf.String()
}

// followedByWord reports whether the word appears next after optional
// spaces, without consuming anything.
func (l *Lexer) followedByWord(word string) (skip int, ok bool) {
	i := 0
	for l.peekN(i) == ' ' || l.peekN(i) == '\t' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	for _, r := range word {
		if l.peekN(i) != r {
			return 0, false
		}
		i++
	}
	if isIdentPart(l.peekN(i)) {
		return 0, false
	}
	return i, true
}

func (l *Lexer) scanNumber() (tok Token) {
	l.buf.Reset()
	isDecimal := false
	digits := func() {
		for r := l.peek(); unicode.IsDigit(r) || (r == '_' && unicode.IsDigit(l.peekN(1))); r = l.peek() {
			l.read()
			if r != '_' {
				l.buf.WriteRune(r)
			}
		}
	}
	digits()
	if l.peek() == '.' && unicode.IsDigit(l.peekN(1)) {
		isDecimal = true
		l.buf.WriteRune(l.read())
		digits()
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		next := l.peekN(1)
		if unicode.IsDigit(next) || ((next == '+' || next == '-') && unicode.IsDigit(l.peekN(2))) {
			isDecimal = true
			l.buf.WriteRune(l.read())
			if next == '+' || next == '-' {
				l.buf.WriteRune(l.read())
			}
			digits()
		}
	}
	text := l.buf.String()
	if !isDecimal {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Token{Kind: INT_LITERAL, Text: text, Int: i}
		}
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		l.Error(fmt.Sprintf("invalid number: %s", text))
	}
	return Token{Kind: NUMBER_LITERAL, Text: text, Num: d}
}

func (l *Lexer) scanString() (tok Token) {
	quote := l.read()
	triple := false
	if l.peek() == quote && l.peekN(1) == quote {
		l.read()
		l.read()
		triple = true
	}
	l.buf.Reset()
	for {
		r := l.peek()
		if r == eof {
			l.incomplete("unterminated string literal")
			return Token{Kind: STRING_LITERAL}
		}
		if r == quote {
			if !triple {
				l.read()
				break
			}
			if l.peekN(1) == quote && l.peekN(2) == quote {
				l.read()
				l.read()
				l.read()
				break
			}
		}
		if r == '\n' && !triple {
			l.Error("newline in string literal")
			return Token{Kind: STRING_LITERAL}
		}
		if r == '\\' {
			rest := string(l.src[l.idx:min(l.idx+10, len(l.src))])
			value, _, tail, err := strconv.UnquoteChar(rest, byte(quote))
			if err != nil {
				l.Error(fmt.Sprintf("invalid escape sequence in %q", rest))
				return Token{Kind: STRING_LITERAL}
			}
			for range len([]rune(rest)) - len([]rune(tail)) {
				l.read()
			}
			l.buf.WriteRune(value)
			continue
		}
		l.buf.WriteRune(l.read())
	}
	return Token{Kind: STRING_LITERAL, Text: l.buf.String()}
}

// scanRawBlock reads a balanced `{ ... }` block and returns its contents.
func (l *Lexer) scanRawBlock() (tok Token) {
	l.skipWhitespace()
	if l.peek() != '{' {
		l.Error("expected '{' after embed")
		return Token{Kind: RAW_BLOCK}
	}
	l.read()
	start := l.idx
	depth := 1
	for depth > 0 {
		switch l.read() {
		case eof:
			l.incomplete("unterminated embed block")
			return Token{Kind: RAW_BLOCK}
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	return Token{Kind: RAW_BLOCK, Text: strings.TrimSpace(string(l.src[start : l.idx-1]))}
}

// scanLoadPaths reads the rest of the line after `load`.  Paths are comma
// separated and may be quoted.  A trailing `;` is dropped.
func (l *Lexer) scanLoadPaths() (tok Token) {
	start := l.idx
	l.readTill('\n', false)
	line := strings.TrimSpace(string(l.src[start:l.idx]))
	line = strings.TrimSpace(strings.TrimSuffix(line, ";"))
	return Token{Kind: LOAD_PATHS, Text: line}
}

func (l *Lexer) scanCustomOp() (tok Token) {
	l.read() // $
	if isIdentStart(l.peek()) {
		// scanIdentifier owns l.buf
		return Token{Kind: CUSTOM_OP, Text: "$" + l.scanIdentifier()}
	}
	l.buf.Reset()
	for r := l.peek(); r != eof && strings.ContainsRune(customOpChars, r); r = l.peek() {
		l.buf.WriteRune(l.read())
	}
	if l.buf.Len() == 0 {
		l.Error("expected operator name after '$'")
	}
	return Token{Kind: CUSTOM_OP, Text: "$" + l.buf.String()}
}

// Next returns the next token.  After an error it keeps returning EOF and
// LastError reports the problem.
func (l *Lexer) Next() Token {
	if l.lastError != nil {
		return l.finish(Token{Kind: EOF})
	}
	l.skipWhitespace()
	l.tokenStart = l.pos()
	l.tokenLoc = Location{Line: l.line, Col: l.col}
	if l.lastError != nil {
		return l.finish(Token{Kind: EOF})
	}

	r := l.peek()
	switch {
	case r == eof:
		return l.finish(Token{Kind: EOF})
	case isIdentStart(r):
		text := l.scanIdentifier()
		if !keywords[text] {
			return l.finish(Token{Kind: IDENTIFIER, Text: text})
		}
		switch text {
		case "not":
			if skip, ok := l.followedByWord("in"); ok {
				for range skip {
					l.read()
				}
				return l.finish(Token{Kind: KEYWORD, Text: "not in"})
			}
		case "embed":
			return l.finish(l.scanRawBlock())
		case "load":
			return l.finish(l.scanLoadPaths())
		}
		return l.finish(Token{Kind: KEYWORD, Text: text})
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peekN(1))):
		return l.finish(l.scanNumber())
	case r == '"' || r == '\'':
		return l.finish(l.scanString())
	case r == '$':
		return l.finish(l.scanCustomOp())
	}

	for _, sym := range l.symbols {
		if l.hasPrefix(sym, true) {
			return l.finish(Token{Kind: OPERATOR, Text: sym})
		}
	}
	l.Error(fmt.Sprintf("unexpected character '%c'", r))
	return l.finish(Token{Kind: EOF})
}

func (l *Lexer) finish(tok Token) Token {
	tok.Start = l.tokenStart
	tok.Stop = l.pos()
	tok.Loc = l.tokenLoc
	return tok
}

// Tokenize lexes the whole input.  The result always ends with an EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == EOF {
			return out, l.lastError
		}
	}
}
