package decl

import (
	"fmt"
	"strings"

	gfn "github.com/panyam/goutils/fn"
)

// --- Interfaces ---

// Node represents any node in the Abstract Syntax Tree.
type Node interface {
	Pos() int       // Starting position (for error reporting)
	End() int       // Ending position
	Loc() Location  // Line/column of the starting position
	String() string // String representation for debugging/printing
	PrettyPrint(cp CodePrinter)
}

// Location is a 1-based line and column inside a source text.
type Location struct {
	Line int
	Col  int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// --- Base Struct ---

// NodeInfo embeddable struct for position tracking.
type NodeInfo struct {
	StartPos, StopPos int
	StartLoc          Location
}

func NewNodeInfo(start, stop int, loc Location) NodeInfo {
	return NodeInfo{StartPos: start, StopPos: stop, StartLoc: loc}
}

func (n *NodeInfo) Pos() int       { return n.StartPos }
func (n *NodeInfo) End() int       { return n.StopPos }
func (n *NodeInfo) Loc() Location  { return n.StartLoc }
func (n *NodeInfo) String() string { return "{Node}" } // Default stringer

// Spanning returns a NodeInfo covering from the start of `from` to the end of `to`.
func Spanning(from, to Node) NodeInfo {
	if from == nil || to == nil {
		return NodeInfo{}
	}
	return NodeInfo{StartPos: from.Pos(), StopPos: to.End(), StartLoc: from.Loc()}
}

// --- Top Level ---

// LoadStmt is the `load a, b/c` forward declaration.  Paths are resolved and
// executed by the host before the rest of the program runs.
type LoadStmt struct {
	NodeInfo
	Paths []string
}

func (l *LoadStmt) String() string { return "load " + strings.Join(l.Paths, ", ") }
func (l *LoadStmt) PrettyPrint(cp CodePrinter) {
	cp.Println(l.String())
}

// Program is the root node of a parsed source file.
type Program struct {
	NodeInfo

	// Where the program was read from.  Empty for inline sources (REPL, tests).
	Path  string
	Loads []*LoadStmt
	Body  *Block
}

// LoadPaths returns every path named by the program's load statements in order.
func (p *Program) LoadPaths() (out []string) {
	for _, l := range p.Loads {
		out = append(out, l.Paths...)
	}
	return
}

func (p *Program) String() string {
	lines := gfn.Map(p.Loads, func(l *LoadStmt) string { return l.String() })
	if p.Body != nil {
		for _, s := range p.Body.Stmts {
			lines = append(lines, s.String())
		}
	}
	return strings.Join(lines, "\n")
}

func (p *Program) PrettyPrint(cp CodePrinter) {
	for _, l := range p.Loads {
		l.PrettyPrint(cp)
	}
	if p.Body != nil {
		for _, s := range p.Body.Stmts {
			s.PrettyPrint(cp)
			cp.Println("")
		}
	}
}
