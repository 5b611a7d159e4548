package lower

import (
	"fmt"

	"minic/internal/ast"
	"minic/internal/errors"
	"minic/internal/ir"
	"minic/internal/symtable"
)

var binOpByOperator = map[string]ir.BinOp{
	"+": ir.ADD, "-": ir.SUB, "*": ir.MUL, "/": ir.DIV, "%": ir.MOD,
	"==": ir.EQ, "!=": ir.NE, "<": ir.LT, "<=": ir.LE, ">": ir.GT, ">=": ir.GE,
	"&&": ir.AND, "||": ir.OR,
}

// lowerExpr lowers an expression into a temporary and returns an operand
// naming it, per §4.2's "each operator node emits a Binary/Call whose
// result is a fresh name" rule.
func (c *Context) lowerExpr(e ast.Expr) ir.Operand {
	switch ex := e.(type) {
	case *ast.Number:
		// Normalize every literal to a named temporary so later passes
		// treat all expressions uniformly; constant propagation folds
		// this back to a literal.
		name := c.freshTemp()
		c.emit(&ir.Binary{Name: name, Op: ir.ADD, Lhs: &ir.Integer{Val: 0}, Rhs: &ir.Integer{Val: ex.Value}})
		return &ir.VarRef{Name: name}

	case *ast.LVal:
		return c.lowerLVal(ex)

	case *ast.UnaryExpr:
		return c.lowerUnaryExpr(ex)

	case *ast.BinaryExpr:
		return c.lowerBinaryExpr(ex)

	case *ast.FuncCall:
		return c.lowerFuncCall(ex)

	default:
		panic(fmt.Sprintf("lower: unhandled expression type %T", e))
	}
}

// lowerLVal reads the current value of a variable's slot. Because an
// Alloc-named slot is an address, not an i32 value (§3 invariant I3
// requires Binary operands be i32), a reference to a variable must emit an
// explicit Load rather than passing the slot name straight through as an
// operand.
func (c *Context) lowerLVal(lv *ast.LVal) ir.Operand {
	_, entry := c.Table.QuerySym(lv.Name)
	if entry.Kind == symtable.Undefined {
		c.addError(errors.UndefinedVariable(lv.Name, lv.Pos, nil))
		return &ir.Integer{Val: 0}
	}
	if entry.Kind != symtable.Var {
		c.addError(errors.CallToNonFunction(lv.Name, lv.Pos))
		return &ir.Integer{Val: 0}
	}
	slot := entry.Value.(string)
	name := c.freshTemp()
	c.emit(&ir.Load{Name: name, Src: &ir.VarRef{Name: slot}})
	return &ir.VarRef{Name: name}
}

func (c *Context) lowerUnaryExpr(ex *ast.UnaryExpr) ir.Operand {
	operand := c.lowerExpr(ex.Operand)
	name := c.freshTemp()
	switch ex.Op {
	case "-":
		c.emit(&ir.Binary{Name: name, Op: ir.SUB, Lhs: &ir.Integer{Val: 0}, Rhs: operand})
	case "!":
		c.emit(&ir.Binary{Name: name, Op: ir.EQ, Lhs: &ir.Integer{Val: 0}, Rhs: operand})
	default:
		panic("lower: unhandled unary operator " + ex.Op)
	}
	return &ir.VarRef{Name: name}
}

func (c *Context) lowerBinaryExpr(ex *ast.BinaryExpr) ir.Operand {
	if c.LowerShortCircuit && (ex.Op == "&&" || ex.Op == "||") {
		return c.lowerShortCircuit(ex)
	}

	lhs := c.lowerExpr(ex.Left)
	rhs := c.lowerExpr(ex.Right)
	op, ok := binOpByOperator[ex.Op]
	if !ok {
		panic("lower: unhandled binary operator " + ex.Op)
	}
	name := c.freshTemp()
	c.emit(&ir.Binary{Name: name, Op: op, Lhs: lhs, Rhs: rhs})
	return &ir.VarRef{Name: name}
}

// lowerShortCircuit implements correct (non-default) short-circuit
// lowering for &&/|| using branches, so the right operand is only
// evaluated when it can affect the result. Only reachable when
// Context.LowerShortCircuit is set, which the CLI never does.
func (c *Context) lowerShortCircuit(ex *ast.BinaryExpr) ir.Operand {
	k := c.ifCounter
	c.ifCounter++

	resultSlot := fmt.Sprintf("%%sc_result_%d", k)
	c.emit(&ir.Alloc{Name: resultSlot})

	lhs := c.lowerExpr(ex.Left)

	rhsLabel := fmt.Sprintf("%%sc_rhs_%d", k)
	shortLabel := fmt.Sprintf("%%sc_short_%d", k)
	endLabel := fmt.Sprintf("%%sc_end_%d", k)

	if ex.Op == "&&" {
		c.emit(&ir.Branch{Cond: lhs, TrueLabel: rhsLabel, FalseLabel: shortLabel})
	} else {
		c.emit(&ir.Branch{Cond: lhs, TrueLabel: shortLabel, FalseLabel: rhsLabel})
	}

	rhsBlock := c.newBlock(rhsLabel)
	c.currentBlock = rhsBlock
	rhs := c.lowerExpr(ex.Right)
	boolName := c.freshTemp()
	c.emit(&ir.Binary{Name: boolName, Op: ir.NE, Lhs: rhs, Rhs: &ir.Integer{Val: 0}})
	c.emit(&ir.Store{Value: &ir.VarRef{Name: boolName}, Dest: resultSlot})
	if !c.blockTerminated() {
		c.emit(&ir.Jump{Target: endLabel})
	}

	shortBlock := c.newBlock(shortLabel)
	c.currentBlock = shortBlock
	shortValue := int32(0)
	if ex.Op == "||" {
		shortValue = 1
	}
	c.emit(&ir.Store{Value: &ir.Integer{Val: shortValue}, Dest: resultSlot})
	c.emit(&ir.Jump{Target: endLabel})

	endBlock := c.newBlock(endLabel)
	c.currentBlock = endBlock
	resultName := c.freshTemp()
	c.emit(&ir.Load{Name: resultName, Src: &ir.VarRef{Name: resultSlot}})
	return &ir.VarRef{Name: resultName}
}

func (c *Context) lowerFuncCall(ex *ast.FuncCall) ir.Operand {
	args := make([]ir.Operand, len(ex.Args))
	for i, a := range ex.Args {
		args[i] = c.lowerExpr(a)
	}

	_, entry := c.Table.QuerySym(ex.Callee)
	if entry.Kind == symtable.Undefined {
		c.addError(errors.UndefinedFunction(ex.Callee, ex.Pos, nil))
		return &ir.Integer{Val: 0}
	}
	if entry.Kind != symtable.IntFunction && entry.Kind != symtable.VoidFunction {
		c.addError(errors.CallToNonFunction(ex.Callee, ex.Pos))
		return &ir.Integer{Val: 0}
	}
	info := entry.Value.(funcInfo)
	if info.arity != len(args) {
		c.addError(errors.CallArityMismatch(ex.Callee, info.arity, len(args), ex.Pos))
	}

	if len(args) > c.maxCallArity {
		c.maxCallArity = len(args)
	}

	call := &ir.Call{Callee: "@" + ex.Callee, Args: args, RetType: info.retType}
	if entry.Kind == symtable.IntFunction {
		call.Name = c.freshTemp()
	}
	c.emit(call)
	if call.Name == "" {
		return &ir.Integer{Val: 0}
	}
	return &ir.VarRef{Name: call.Name}
}
