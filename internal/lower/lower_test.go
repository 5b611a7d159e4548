package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"minic/internal/ir"
	"minic/internal/parser"
)

func mustLower(t *testing.T, source string) *ir.Program {
	t.Helper()
	unit, scanErrs, parseErrs := parser.ParseSource("t.c", source)
	assert.Empty(t, scanErrs)
	assert.Empty(t, parseErrs)
	program, lowerErrs := LowerProgram(unit)
	assert.Empty(t, lowerErrs)
	return program
}

func TestLowerSimpleReturn(t *testing.T) {
	program := mustLower(t, `int f() { return 1 + 2; }`)
	assert.Len(t, program.Funcs, 1)
	fn := program.Funcs[0]
	assert.Equal(t, "@f", fn.Name)
	// entry, plus the unreferenced block opened after the return
	assert.Len(t, fn.Blocks, 2)
	entry := fn.Blocks[0]
	assert.Equal(t, "%entry", entry.Name)
	assert.Equal(t, "%dead_return_1", fn.Blocks[1].Name)

	term := entry.Terminator()
	assert.IsType(t, &ir.Return{}, term)
}

func TestLowerFunctionParamsAllocAndStore(t *testing.T) {
	program := mustLower(t, `int add(int a, int b) { return a + b; }`)
	fn := program.Funcs[0]
	assert.Len(t, fn.Params, 2)

	var allocs, stores int
	for _, inst := range fn.Blocks[0].Insts {
		switch inst.(type) {
		case *ir.Alloc:
			allocs++
		case *ir.Store:
			stores++
		}
	}
	assert.Equal(t, 2, allocs, "one alloc per parameter")
	assert.GreaterOrEqual(t, stores, 2, "one store per parameter plus possibly more")
}

func TestLowerIfElseProducesSixBlocks(t *testing.T) {
	program := mustLower(t, `int f(int n) {
  if (n < 0) {
    return 0;
  } else {
    return 1;
  }
}`)
	fn := program.Funcs[0]
	// entry, then, the dead block after then's return, else, the dead
	// block after else's return, end
	assert.Len(t, fn.Blocks, 6)
	names := make([]string, len(fn.Blocks))
	for i, bb := range fn.Blocks {
		names[i] = bb.Name
	}
	assert.Contains(t, names, "%entry")
	assert.Contains(t, names, "%then_0")
	assert.Contains(t, names, "%dead_return_2")
	assert.Contains(t, names, "%else_0")
	assert.Contains(t, names, "%dead_return_4")
	assert.Contains(t, names, "%end_0")

	entry := fn.Blocks[0]
	assert.IsType(t, &ir.Branch{}, entry.Terminator())
}

func TestLowerWhileLoopStructure(t *testing.T) {
	program := mustLower(t, `int f(int n) {
  int i = 0;
  while (i < n) {
    i = i + 1;
  }
  return i;
}`)
	fn := program.Funcs[0]
	var sawEntry, sawBody, sawEnd bool
	for _, bb := range fn.Blocks {
		switch bb.Name {
		case "%while_entry_0":
			sawEntry = true
			assert.IsType(t, &ir.Branch{}, bb.Terminator())
		case "%while_body_0":
			sawBody = true
			assert.IsType(t, &ir.Jump{}, bb.Terminator())
		case "%while_end_0":
			sawEnd = true
		}
	}
	assert.True(t, sawEntry && sawBody && sawEnd)
}

func TestLowerBreakContinueJumpToLoopLabels(t *testing.T) {
	program := mustLower(t, `int f(int n) {
  while (n > 0) {
    if (n == 1) {
      break;
    }
    continue;
  }
  return 0;
}`)
	fn := program.Funcs[0]
	var sawBreakJump, sawContinueJump bool
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			if j, ok := inst.(*ir.Jump); ok {
				if j.Target == "%while_end_0" {
					sawBreakJump = true
				}
				if j.Target == "%while_entry_0" && bb.Name != "%while_body_0" {
					sawContinueJump = true
				}
			}
		}
	}
	assert.True(t, sawBreakJump)
	assert.True(t, sawContinueJump)
}

func TestLowerCallTracksMaxArity(t *testing.T) {
	program := mustLower(t, `
int g(int a, int b, int c) { return a + b + c; }
int f() { return g(1, 2, 3); }
`)
	fn := program.Funcs[1]
	assert.Equal(t, 3, fn.MaxCallArity)
}

func TestLowerVoidCallNoResultName(t *testing.T) {
	program := mustLower(t, `
void p(int a) { return; }
int f() { p(1); return 0; }
`)
	fn := program.Funcs[1]
	var foundCall bool
	for _, inst := range fn.Blocks[0].Insts {
		if call, ok := inst.(*ir.Call); ok {
			foundCall = true
			assert.Equal(t, "", call.Name)
		}
	}
	assert.True(t, foundCall)
}

func TestLowerUndefinedVariableRecordsError(t *testing.T) {
	unit, _, _ := parser.ParseSource("t.c", `int f() { return y; }`)
	_, lowerErrs := LowerProgram(unit)
	assert.NotEmpty(t, lowerErrs)
	assert.Equal(t, "E0001", lowerErrs[0].Code)
}

func TestLowerRedeclarationRecordsError(t *testing.T) {
	unit, _, _ := parser.ParseSource("t.c", `int f() {
  int x = 1;
  int x = 2;
  return x;
}`)
	_, lowerErrs := LowerProgram(unit)
	assert.NotEmpty(t, lowerErrs)
	assert.Equal(t, "E0005", lowerErrs[0].Code)
}

func TestLowerCallArityMismatchRecordsError(t *testing.T) {
	unit, _, _ := parser.ParseSource("t.c", `
int g(int a, int b) { return a + b; }
int f() { return g(1); }
`)
	_, lowerErrs := LowerProgram(unit)
	assert.NotEmpty(t, lowerErrs)
	assert.Equal(t, "E0006", lowerErrs[0].Code)
}

func TestLowerMissingReturnValueRecordsError(t *testing.T) {
	unit, _, _ := parser.ParseSource("t.c", `int f() { return; }`)
	_, lowerErrs := LowerProgram(unit)
	assert.NotEmpty(t, lowerErrs)
	assert.Equal(t, "E0004", lowerErrs[0].Code)
}

func TestLowerShortCircuitFlagProducesBranches(t *testing.T) {
	unit, _, _ := parser.ParseSource("t.c", `int f(int a, int b) { return a && b; }`)
	ctx := NewContext()
	ctx.LowerShortCircuit = true
	for _, fn := range unit.Funcs {
		irFn := ctx.lowerFuncDef(fn)
		var sawBranch bool
		for _, bb := range irFn.Blocks {
			if _, ok := bb.Terminator().(*ir.Branch); ok {
				sawBranch = true
			}
		}
		assert.True(t, sawBranch, "short-circuit lowering introduces a branch")
	}
}
