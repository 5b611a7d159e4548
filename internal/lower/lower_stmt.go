package lower

import (
	"fmt"

	"minic/internal/ast"
	"minic/internal/errors"
	"minic/internal/ir"
	"minic/internal/symtable"
)

// lowerBlock lowers a sequence of statements directly into the current
// scope, used once for a function's top-level body (params and top-level
// locals share one scope, as in C).
func (c *Context) lowerBlock(block *ast.Block, fn *ast.FuncDef) {
	for _, s := range block.Stmts {
		c.lowerStmt(s, fn)
	}
}

func (c *Context) blockTerminated() bool {
	return c.currentBlock.Terminator() != nil
}

// startDeadBlock opens a fresh, unreferenced block so lowering can keep
// walking a statement list after a terminator (return/break/continue)
// without appending past the current block's terminator (§3 invariant I4).
// The optimizer's dead-block pruning (§4.3) removes blocks like this that
// turn out to be unreachable.
func (c *Context) startDeadBlock(kind string) {
	name := fmt.Sprintf("%%dead_%s_%d", kind, len(c.currentBlocks))
	bb := c.newBlock(name)
	c.currentBlock = bb
}

func (c *Context) lowerStmt(s ast.Stmt, fn *ast.FuncDef) {
	switch st := s.(type) {
	case *ast.EmptyStmt:
		// no-op

	case *ast.ReturnStmt:
		c.lowerReturnStmt(st, fn)

	case *ast.VarDeclStmt:
		c.lowerVarDeclStmt(st)

	case *ast.AssignStmt:
		c.lowerAssignStmt(st)

	case *ast.ExprStmt:
		c.lowerExpr(st.Expr)

	case *ast.BlockStmt:
		c.Table.EnterScope()
		for _, inner := range st.Block.Stmts {
			c.lowerStmt(inner, fn)
		}
		c.Table.ExitScope()

	case *ast.IfStmt:
		c.lowerIfStmt(st, fn)

	case *ast.WhileStmt:
		c.lowerWhileStmt(st, fn)

	case *ast.BreakStmt:
		if loop, ok := c.currentLoop(); ok {
			c.emit(&ir.Jump{Target: loop.endLabel})
			c.startDeadBlock("break")
		}

	case *ast.ContinueStmt:
		if loop, ok := c.currentLoop(); ok {
			c.emit(&ir.Jump{Target: loop.entryLabel})
			c.startDeadBlock("continue")
		}

	default:
		panic(fmt.Sprintf("lower: unhandled statement type %T", s))
	}
}

func (c *Context) lowerReturnStmt(st *ast.ReturnStmt, fn *ast.FuncDef) {
	if st.Expr == nil {
		if fn.Ret == ast.RetInt {
			c.addError(errors.MissingReturnValue(fn.Name, st.Pos))
			c.emit(&ir.Return{Value: &ir.Integer{Val: 0}})
		} else {
			c.emit(&ir.Return{})
		}
		c.startDeadBlock("return")
		return
	}
	operand := c.lowerExpr(st.Expr)
	c.emit(&ir.Return{Value: operand})
	c.startDeadBlock("return")
}

func (c *Context) lowerVarDeclStmt(st *ast.VarDeclStmt) {
	operand := c.lowerExpr(st.Expr)

	if c.Table.ExistSym(st.Name) {
		c.addError(errors.Redeclaration(st.Name, st.Pos))
		return
	}
	slot := "%" + c.Table.GetScopeNumber() + st.Name
	c.Table.InsertSym(st.Name, symtable.Var, slot)
	c.emit(&ir.Alloc{Name: slot})
	c.emit(&ir.Store{Value: operand, Dest: slot})
}

func (c *Context) lowerAssignStmt(st *ast.AssignStmt) {
	operand := c.lowerExpr(st.Expr)

	_, entry := c.Table.QuerySym(st.LVal.Name)
	if entry.Kind == symtable.Undefined {
		c.addError(errors.UndefinedVariable(st.LVal.Name, st.LVal.Pos, nil))
		return
	}
	if entry.Kind != symtable.Var {
		c.addError(errors.CallToNonFunction(st.LVal.Name, st.LVal.Pos))
		return
	}
	slot := entry.Value.(string)
	c.emit(&ir.Store{Value: operand, Dest: slot})
}

func (c *Context) lowerIfStmt(st *ast.IfStmt, fn *ast.FuncDef) {
	k := c.ifCounter
	c.ifCounter++

	cond := c.lowerExpr(st.Cond)
	thenLabel := fmt.Sprintf("%%then_%d", k)
	endLabel := fmt.Sprintf("%%end_%d", k)
	falseLabel := endLabel
	hasElse := st.Else != nil
	elseLabel := ""
	if hasElse {
		elseLabel = fmt.Sprintf("%%else_%d", k)
		falseLabel = elseLabel
	}
	c.emit(&ir.Branch{Cond: cond, TrueLabel: thenLabel, FalseLabel: falseLabel})

	thenBlock := c.newBlock(thenLabel)
	c.currentBlock = thenBlock
	c.lowerStmt(st.Then, fn)
	if !c.blockTerminated() {
		c.emit(&ir.Jump{Target: endLabel})
	}

	if hasElse {
		elseBlock := c.newBlock(elseLabel)
		c.currentBlock = elseBlock
		c.lowerStmt(st.Else, fn)
		if !c.blockTerminated() {
			c.emit(&ir.Jump{Target: endLabel})
		}
	}

	endBlock := c.newBlock(endLabel)
	c.currentBlock = endBlock
}

func (c *Context) lowerWhileStmt(st *ast.WhileStmt, fn *ast.FuncDef) {
	k := c.whileCounter
	c.whileCounter++

	entryLabel := fmt.Sprintf("%%while_entry_%d", k)
	bodyLabel := fmt.Sprintf("%%while_body_%d", k)
	endLabel := fmt.Sprintf("%%while_end_%d", k)

	c.emit(&ir.Jump{Target: entryLabel})

	entryBlock := c.newBlock(entryLabel)
	c.currentBlock = entryBlock
	cond := c.lowerExpr(st.Cond)
	c.emit(&ir.Branch{Cond: cond, TrueLabel: bodyLabel, FalseLabel: endLabel})

	bodyBlock := c.newBlock(bodyLabel)
	c.currentBlock = bodyBlock
	c.pushLoop(entryLabel, endLabel)
	c.lowerStmt(st.Body, fn)
	c.popLoop()
	if !c.blockTerminated() {
		c.emit(&ir.Jump{Target: entryLabel})
	}

	endBlock := c.newBlock(endLabel)
	c.currentBlock = endBlock
}
