package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders the whole compilation unit back to MiniC-like source text,
// used by the CLI's -ast dump mode (§6: "a flag selects... dump AST").

func (c *CompUnit) String() string {
	var b strings.Builder
	for i, f := range c.Funcs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.String())
	}
	return b.String()
}

func (f *FuncDef) String() string {
	var b strings.Builder
	b.WriteString(string(f.Ret))
	b.WriteString(" ")
	b.WriteString(f.Name)
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(") ")
	b.WriteString(f.Body.String())
	return b.String()
}

func (p *FuncFParam) String() string {
	return "int " + p.Name
}

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		sb.WriteString(indent(s.String()))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

func (s *ReturnStmt) String() string {
	if s.Expr == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", s.Expr.String())
}

func (s *VarDeclStmt) String() string {
	return fmt.Sprintf("int %s = %s;", s.Name, s.Expr.String())
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", s.LVal.String(), s.Expr.String())
}

func (s *ExprStmt) String() string {
	return s.Expr.String() + ";"
}

func (s *BlockStmt) String() string {
	return s.Block.String()
}

func (s *IfStmt) String() string {
	out := fmt.Sprintf("if (%s) %s", s.Cond.String(), s.Then.String())
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

func (s *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", s.Cond.String(), s.Body.String())
}

func (s *BreakStmt) String() string    { return "break;" }
func (s *ContinueStmt) String() string { return "continue;" }
func (s *EmptyStmt) String() string    { return ";" }

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Op, e.Right.String())
}

func (e *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", e.Op, e.Operand.String())
}

func (e *FuncCall) String() string {
	var b strings.Builder
	b.WriteString(e.Callee)
	b.WriteString("(")
	for i, a := range e.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteString(")")
	return b.String()
}

func (e *LVal) String() string {
	return e.Name
}

func (e *Number) String() string {
	return strconv.FormatInt(int64(e.Value), 10)
}
