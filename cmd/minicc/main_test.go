package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"minic/internal/backend"
	"minic/internal/ir"
	"minic/internal/lower"
	"minic/internal/optimize"
	"minic/internal/parser"
)

// compile runs the full pipeline (parse -> lower -> optimize) and returns
// the optimized IR program alongside its emitted assembly, failing the
// test on any parse/lower error.
func compile(t *testing.T, src string) (*ir.Program, string) {
	t.Helper()
	unit, scanErrs, parseErrs := parser.ParseSource("t.c", src)
	assert.Empty(t, scanErrs)
	assert.Empty(t, parseErrs)

	program, lowerErrs := lower.LowerProgram(unit)
	assert.Empty(t, lowerErrs)

	pipeline := optimize.NewDefaultPipeline(1, 10)
	pipeline.Run(program)

	asm := backend.NewEmitter().EmitProgram(program)
	return program, asm
}

func TestEndToEndIdentityReturn(t *testing.T) {
	_, asm := compile(t, `int f(int a) { return a; }`)
	assert.True(t, strings.Contains(asm, "f:\n"))
	assert.True(t, strings.Contains(asm, "ret"))
}

func TestEndToEndArithmeticPrecedence(t *testing.T) {
	// 1 + 2*3 == 7, fully foldable.
	program, _ := compile(t, `int f() { return 1 + 2 * 3; }`)
	printed := ir.Print(program)
	assert.True(t, strings.Contains(printed, "ret 7"), "expected folded literal 7, got:\n%s", printed)
}

func TestEndToEndBranching(t *testing.T) {
	_, asm := compile(t, `
int f(int a) {
  if (a) {
    return 1;
  } else {
    return 2;
  }
}`)
	assert.True(t, strings.Contains(asm, "beqz"))
}

func TestEndToEndLoopWithBreakAndContinue(t *testing.T) {
	_, asm := compile(t, `
int f(int n) {
  int i = 0;
  int sum = 0;
  while (i < n) {
    i = i + 1;
    if (i == 5) {
      continue;
    }
    if (i > 100) {
      break;
    }
    sum = sum + i;
  }
  return sum;
}`)
	assert.True(t, strings.Contains(asm, "j "), "loop should compile to at least one unconditional jump")
	assert.True(t, strings.Contains(asm, "beqz"), "loop condition should compile to a conditional branch")
}

func TestEndToEndCallThroughTwoFramesGetsInlined(t *testing.T) {
	program, asm := compile(t, `
int add(int a, int b) {
  return a + b;
}
int f() {
  return add(1, 2);
}`)
	printed := ir.Print(program)

	// add() is a single straight-line block within the inliner's size/arity
	// limits, so the call site should vanish from f's optimized IR.
	assert.False(t, strings.Contains(printed, "call add"), "call to add should have been inlined away, got:\n%s", printed)
	assert.False(t, strings.Contains(asm, "call add"), "inlined call should not reach assembly either")
}

func TestEndToEndConstantFoldingErasesBranch(t *testing.T) {
	program, _ := compile(t, `
int f() {
  if (1) {
    return 10;
  } else {
    return 20;
  }
}`)
	printed := ir.Print(program)
	assert.False(t, strings.Contains(printed, "br "), "constant condition should have simplified away the branch, got:\n%s", printed)
	assert.True(t, strings.Contains(printed, "ret 10"))
}
