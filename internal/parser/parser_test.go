package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"minic/internal/ast"
)

func TestParseSimpleFunction(t *testing.T) {
	source := `int add(int a, int b) {
  return a + b;
}`
	unit, scanErrs, parseErrs := ParseSource("test.c", source)
	assert.Empty(t, scanErrs)
	assert.Empty(t, parseErrs)
	assert.NotNil(t, unit)
	assert.Len(t, unit.Funcs, 1)

	fn := unit.Funcs[0]
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, ast.RetInt, fn.Ret)
	assert.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)
	assert.Len(t, fn.Body.Stmts, 1)

	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	assert.True(t, ok)
	bin, ok := ret.Expr.(*ast.BinaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseVoidFunctionNoParams(t *testing.T) {
	source := `void main() {
  int x = 1;
}`
	unit, scanErrs, parseErrs := ParseSource("test.c", source)
	assert.Empty(t, scanErrs)
	assert.Empty(t, parseErrs)
	assert.Equal(t, ast.RetVoid, unit.Funcs[0].Ret)
	assert.Empty(t, unit.Funcs[0].Params)
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3)
	source := `int f() { return 1 + 2 * 3; }`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)

	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	top := ret.Expr.(*ast.BinaryExpr)
	assert.Equal(t, "+", top.Op)
	_, leftIsNumber := top.Left.(*ast.Number)
	assert.True(t, leftIsNumber)
	right := top.Right.(*ast.BinaryExpr)
	assert.Equal(t, "*", right.Op)
}

func TestIfElseAndWhile(t *testing.T) {
	source := `int f(int n) {
  if (n < 0) {
    return 0;
  } else {
    while (n > 0) {
      n = n - 1;
    }
  }
  return n;
}`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)

	body := unit.Funcs[0].Body.Stmts
	assert.Len(t, body, 2)

	ifStmt, ok := body[0].(*ast.IfStmt)
	assert.True(t, ok)
	assert.NotNil(t, ifStmt.Else)
}

func TestBreakContinue(t *testing.T) {
	source := `int f() {
  while (1) {
    break;
    continue;
  }
  return 0;
}`
	_, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)
}

func TestFunctionCallExpression(t *testing.T) {
	source := `int f() { return g(1, 2 + 3); }`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)

	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	call, ok := ret.Expr.(*ast.FuncCall)
	assert.True(t, ok)
	assert.Equal(t, "g", call.Callee)
	assert.Len(t, call.Args, 2)
}

func TestUnaryOperators(t *testing.T) {
	source := `int f(int x) { return -x + !x; }`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)

	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	top := ret.Expr.(*ast.BinaryExpr)
	left, ok := top.Left.(*ast.UnaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "-", left.Op)
	right, ok := top.Right.(*ast.UnaryExpr)
	assert.True(t, ok)
	assert.Equal(t, "!", right.Op)
}

func TestHexLiteral(t *testing.T) {
	source := `int f() { return 0x1F; }`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)

	ret := unit.Funcs[0].Body.Stmts[0].(*ast.ReturnStmt)
	num := ret.Expr.(*ast.Number)
	assert.Equal(t, int32(31), num.Value)
}

func TestMissingSemicolonRecordsParseError(t *testing.T) {
	source := `int f() { return 1 }`
	_, _, parseErrs := ParseSource("t.c", source)
	assert.NotEmpty(t, parseErrs)
}

func TestEmptyStatement(t *testing.T) {
	source := `int f() { ;; return 0; }`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)
	assert.Len(t, unit.Funcs[0].Body.Stmts, 3)
}

func TestNestedBlockStmt(t *testing.T) {
	source := `int f() {
  {
    int y = 1;
  }
  return 0;
}`
	unit, _, parseErrs := ParseSource("t.c", source)
	assert.Empty(t, parseErrs)
	blockStmt, ok := unit.Funcs[0].Body.Stmts[0].(*ast.BlockStmt)
	assert.True(t, ok)
	assert.Len(t, blockStmt.Block.Stmts, 1)
}
