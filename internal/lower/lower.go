// Package lower walks a MiniC AST and emits the three-address IR described
// in internal/ir, threading scope and temporary-name state through a
// single Context per compilation unit.
package lower

import (
	"fmt"

	"minic/internal/ast"
	"minic/internal/errors"
	"minic/internal/ir"
	"minic/internal/symtable"
)

// loopContext is one entry of the break/continue stack: the labels a
// "break"/"continue" inside the current while-loop should jump to.
type loopContext struct {
	entryLabel string
	endLabel   string
}

// funcInfo records what the symbol table needs to know about a declared
// function: its kind (int- or void-returning) and parameter count, used to
// validate calls during lowering.
type funcInfo struct {
	arity   int
	retType ir.Type
}

// Context carries all per-compilation-unit state: the symbol table, name
// generators (the temp counter is reset per function; the if/while label
// counters run across the whole unit), and the loop-context stack for
// break/continue.
type Context struct {
	Table *symtable.Table

	// LowerShortCircuit selects correct short-circuit lowering for &&/||
	// instead of the source-compatible non-short-circuit and/or lowering
	// (§9's open question). Defaults to false; never set by the CLI.
	LowerShortCircuit bool

	tempCounter  int
	ifCounter    int
	whileCounter int
	loopStack    []loopContext

	currentFunc   *ir.Function
	currentBlocks []*ir.BasicBlock
	currentBlock  *ir.BasicBlock

	maxCallArity int

	errs []errors.CompilerError
}

// NewContext returns a Context with a fresh global-scope symbol table.
func NewContext() *Context {
	return &Context{Table: symtable.New()}
}

// Errors returns every lowering error accumulated so far.
func (c *Context) Errors() []errors.CompilerError { return c.errs }

func (c *Context) addError(err errors.CompilerError) { c.errs = append(c.errs, err) }

// LowerProgram lowers a whole compilation unit to an ir.Program. It never
// panics on a semantic error; it records one in Errors() and keeps
// lowering the remaining functions so the CLI can report every problem
// found in one pass.
func LowerProgram(unit *ast.CompUnit) (*ir.Program, []errors.CompilerError) {
	ctx := NewContext()

	// Pre-declare every function so forward calls (and mutual recursion)
	// resolve regardless of declaration order.
	for _, fn := range unit.Funcs {
		retType := retTypeOf(fn.Ret)
		ctx.Table.InsertSym(fn.Name, kindOf(fn.Ret), funcInfo{arity: len(fn.Params), retType: retType})
	}

	program := &ir.Program{}
	for _, fn := range unit.Funcs {
		irFn := ctx.lowerFuncDef(fn)
		if irFn != nil {
			program.Funcs = append(program.Funcs, irFn)
		}
	}
	return program, ctx.errs
}

func kindOf(ret ast.RetType) symtable.Kind {
	if ret == ast.RetInt {
		return symtable.IntFunction
	}
	return symtable.VoidFunction
}

func retTypeOf(ret ast.RetType) ir.Type {
	if ret == ast.RetInt {
		return ir.Int32Type{}
	}
	return ir.UnitType{}
}

// lowerFuncDef lowers one function, per §4.2's four numbered steps.
func (c *Context) lowerFuncDef(fn *ast.FuncDef) *ir.Function {
	c.tempCounter = 0
	c.maxCallArity = 0
	c.Table.EnterScope()
	defer c.Table.ExitScope()

	paramTypes := make([]ir.Type, len(fn.Params))
	for i := range fn.Params {
		paramTypes[i] = ir.Int32Type{}
	}
	retType := retTypeOf(fn.Ret)
	fnType := &ir.FunctionType{Params: paramTypes, Ret: retType}

	irFn := &ir.Function{
		Name: "@" + fn.Name,
		Typ:  fnType,
	}
	c.currentFunc = irFn
	c.currentBlocks = nil

	entry := &ir.BasicBlock{Name: "%entry"}
	c.currentBlocks = append(c.currentBlocks, entry)
	c.currentBlock = entry

	for i, p := range fn.Params {
		mangled := c.Table.GetScopeNumber() + p.Name
		slot := "%" + mangled
		argRef := &ir.FuncArgRef{Index: i, Name: fmt.Sprintf("%%arg%d", i), Typ: ir.Int32Type{}}
		irFn.Params = append(irFn.Params, argRef)

		c.Table.InsertSym(p.Name, symtable.Var, slot)
		c.emit(&ir.Alloc{Name: slot})
		c.emit(&ir.Store{Value: &ir.VarRef{Name: argRef.Name}, Dest: slot})
	}

	c.lowerBlock(fn.Body, fn)

	// A function whose body falls off the end without an explicit return
	// needs a synthesized terminator so every block ends in exactly one
	// (§3 invariant I4). For void functions this is a bare return; for int
	// functions falling through is undefined by the source language, but
	// the emitted IR must still be well-formed, so a "ret 0" is emitted
	// (matching the original compiler's behavior of never leaving a block
	// open).
	if c.currentBlock.Terminator() == nil {
		if fn.Ret == ast.RetInt {
			c.emit(&ir.Return{Value: &ir.Integer{Val: 0}})
		} else {
			c.emit(&ir.Return{})
		}
	}

	irFn.Blocks = c.currentBlocks
	irFn.MaxCallArity = c.maxCallArity
	return irFn
}

// emit appends inst to the current block.
func (c *Context) emit(inst ir.Instruction) {
	c.currentBlock.Insts = append(c.currentBlock.Insts, inst)
}

// newBlock creates and registers a fresh block, but does not switch the
// current block to it; callers do that explicitly once they are ready to
// emit into it.
func (c *Context) newBlock(name string) *ir.BasicBlock {
	bb := &ir.BasicBlock{Name: name}
	c.currentBlocks = append(c.currentBlocks, bb)
	return bb
}

func (c *Context) freshTemp() string {
	name := fmt.Sprintf("%%%d", c.tempCounter)
	c.tempCounter++
	return name
}

func (c *Context) pushLoop(entry, end string) {
	c.loopStack = append(c.loopStack, loopContext{entryLabel: entry, endLabel: end})
}

func (c *Context) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

func (c *Context) currentLoop() (loopContext, bool) {
	if len(c.loopStack) == 0 {
		return loopContext{}, false
	}
	return c.loopStack[len(c.loopStack)-1], true
}
