// Package replgrammar is a tiny participle-based grammar for the REPL's
// ":grammar" quick-parse mode: one-line integer arithmetic, independent of
// internal/parser's hand-written scanner/parser (§6's chosen front end for
// the compiler proper). Adapted from the teacher's grammar package
// (lexer.MustSimple rule table, participle.Build[T] parser construction,
// caret-style error reporting).
package replgrammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Integer", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `==|!=|<=|>=|&&|\|\||[-+*/%<>()]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// Expr is one line of arithmetic: a left operand followed by zero or more
// (operator, operand) pairs at a single precedence level. The chain stays
// flat: neither the grammar nor the REPL, which prints the parsed struct,
// applies precedence or associativity to it.
type Expr struct {
	Left *UnaryExpr `@@`
	Ops  []*BinOp   `{ @@ }`
}

type BinOp struct {
	Operator string     `@("||" | "&&" | "==" | "!=" | "<" | "<=" | ">" | ">=" | "+" | "-" | "*" | "/" | "%")`
	Right    *UnaryExpr `@@`
}

type UnaryExpr struct {
	Operator *string      `[ @("-" | "!") ]`
	Value    *PrimaryExpr `@@`
}

type PrimaryExpr struct {
	Number *string `  @Integer`
	Ident  *string `| @Ident`
	Parens *Expr   `| "(" @@ ")"`
}

var exprParser = participle.MustBuild[Expr](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseLine parses one line of REPL input as an Expr, printing a
// caret-style diagnostic (matching the teacher's reportParseError) and
// returning the error unchanged on failure.
func ParseLine(line string) (*Expr, error) {
	expr, err := exprParser.ParseString("<repl>", line)
	if err != nil {
		reportParseError(line, err)
		return nil, err
	}
	return expr, nil
}

func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error at line %d, column %d:", pos.Line, pos.Column)
	fmt.Fprintln(os.Stderr, line)
	color.HiRed(caret)
	fmt.Fprintf(os.Stderr, "-> %s\n", pe.Message())
}
