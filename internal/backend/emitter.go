package backend

import (
	"fmt"
	"strings"

	"minic/internal/ir"
)

// Emitter lowers a Program to RV32I assembly text, per §4.7, running
// liveness analysis and linear-scan allocation per function first.
type Emitter struct{}

func NewEmitter() *Emitter { return &Emitter{} }

// funcState carries one function's frame layout and name->Position
// assignments while its blocks are emitted.
type funcState struct {
	positions     map[string]Position
	frameSize     int
	maxSpillSlots int
	callsOthers   bool
}

// EmitProgram renders every function of program as RV32I assembly text.
func (e *Emitter) EmitProgram(program *ir.Program) string {
	var out strings.Builder
	for _, fn := range program.Funcs {
		out.WriteString("  .text\n")
		out.WriteString("  .globl " + strings.TrimPrefix(fn.Name, "@") + "\n")
		out.WriteString(e.emitFunction(fn))
		out.WriteString("\n")
	}
	return out.String()
}

func (e *Emitter) emitFunction(fn *ir.Function) string {
	liveness := AnalyzeLiveness(fn)
	alloc := LinearScanAllocate(liveness.Intervals, Registers)

	st := &funcState{positions: map[string]Position{}}
	for name, reg := range alloc.VarToReg {
		st.positions[name] = RegPos(reg)
	}

	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			if _, ok := inst.(*ir.Call); ok {
				st.callsOthers = true
			}
		}
	}

	// Frame layout, low to high addresses (§4.7): outgoing-argument area,
	// spill area, callee-saved region, optional ra slot, rounded to 16.
	outgoingArgArea := 0
	if fn.MaxCallArity > 8 {
		outgoingArgArea = (fn.MaxCallArity - 8) * 4
	}
	raSpace := 0
	if st.callsOthers {
		raSpace = 4
	}
	frame := outgoingArgArea + alloc.MaxSpillSlots*4 + 12*4 + raSpace
	frame = (frame + 15) &^ 15
	st.frameSize = frame
	st.maxSpillSlots = alloc.MaxSpillSlots

	for name, slot := range alloc.VarToSpill {
		st.positions[name] = MemPos(outgoingArgArea + slot*4)
	}

	// Formal parameters never receive a live interval (§4.5 excludes
	// them), so the calling convention assigns their positions directly:
	// a0-a7 for the first 8, the caller's outgoing stack slots beyond.
	for i, p := range fn.Params {
		if i < 8 {
			st.positions[p.Name] = RegPos(fmt.Sprintf("a%d", i))
		} else {
			st.positions[p.Name] = MemPos(frame + 4*(i-8))
		}
	}

	var out strings.Builder
	out.WriteString(strings.TrimPrefix(fn.Name, "@") + ":\n")
	out.WriteString(e.prologue(st))
	for _, bb := range fn.Blocks {
		out.WriteString(e.emitBlock(bb, st))
	}
	return out.String()
}

// calleeSavedBase returns the offset of the top of the callee-saved
// s0-s11 region: the frame's top word when ra is also saved there,
// or the frame's very top word when this function calls nobody and
// no ra slot was reserved.
func calleeSavedBase(st *funcState) int {
	if st.callsOthers {
		return st.frameSize - 4
	}
	return st.frameSize
}

func (e *Emitter) prologue(st *funcState) string {
	var out strings.Builder
	out.WriteString(adjustSP(-st.frameSize))
	base := calleeSavedBase(st)
	if st.callsOthers {
		out.WriteString(move(RegPos("ra"), MemPos(st.frameSize-4)))
	}
	for i := 0; i < 12; i++ {
		out.WriteString(move(RegPos(fmt.Sprintf("s%d", i)), MemPos(base-4*(i+1))))
	}
	return out.String()
}

func (e *Emitter) epilogue(st *funcState) string {
	var out strings.Builder
	base := calleeSavedBase(st)
	for i := 0; i < 12; i++ {
		out.WriteString(move(MemPos(base-4*(i+1)), RegPos(fmt.Sprintf("s%d", i))))
	}
	out.WriteString(adjustSP(st.frameSize))
	return out.String()
}

func adjustSP(delta int) string {
	if delta <= immRangeHigh && delta >= immRangeLow {
		return fmt.Sprintf("  addi sp, sp, %d\n", delta)
	}
	return fmt.Sprintf("  li t6, %d\n  add sp, sp, t6\n", delta)
}

func (e *Emitter) emitBlock(bb *ir.BasicBlock, st *funcState) string {
	var out strings.Builder
	if bb.Name != "%entry" {
		out.WriteString(strings.TrimPrefix(bb.Name, "%") + ":\n")
	}
	for _, inst := range bb.Insts {
		out.WriteString(e.emitInst(inst, st))
	}
	return out.String()
}

// pos resolves an operand to a Position: a literal becomes an immediate,
// a VarRef resolves through the function's name->Position assignment.
func (st *funcState) pos(op ir.Operand) Position {
	switch o := op.(type) {
	case *ir.Integer:
		return ImmPos(o.Val)
	case *ir.VarRef:
		return st.slot(o.Name)
	default:
		panic(fmt.Sprintf("emit: unhandled operand %T", op))
	}
}

// slot resolves a name to its assigned Position, lazily reserving a
// fresh spill slot for any name the allocator never saw (mirrors
// get_local_var_index's lazy-assignment fallback in visit.cpp).
func (st *funcState) slot(name string) Position {
	if p, ok := st.positions[name]; ok {
		return p
	}
	offset := st.maxSpillSlots * 4
	st.maxSpillSlots++
	p := MemPos(offset)
	st.positions[name] = p
	return p
}

func (e *Emitter) emitInst(inst ir.Instruction, st *funcState) string {
	var out strings.Builder
	switch ins := inst.(type) {
	case *ir.Alloc:
		// No assembly: its slot is reserved via allocation/lazy fallback.

	case *ir.Load:
		out.WriteString(move(st.pos(ins.Src), st.slot(ins.Name)))

	case *ir.Store:
		out.WriteString(move(st.pos(ins.Value), st.slot(ins.Dest)))

	case *ir.Binary:
		out.WriteString(move(st.pos(ins.Lhs), RegPos("t0")))
		out.WriteString(move(st.pos(ins.Rhs), RegPos("t1")))
		out.WriteString(binaryOp(ins.Op))
		out.WriteString(move(RegPos("t2"), st.slot(ins.Name)))

	case *ir.Call:
		for i, arg := range ins.Args {
			argPos := st.pos(arg)
			if i < 8 {
				out.WriteString(move(argPos, RegPos(fmt.Sprintf("a%d", i))))
			} else {
				out.WriteString(move(argPos, MemPos(4*(i-8))))
			}
		}
		out.WriteString("  call " + strings.TrimPrefix(ins.Callee, "@") + "\n")
		out.WriteString(move(MemPos(st.frameSize-4), RegPos("ra")))
		if ins.Name != "" {
			out.WriteString(move(RegPos("a0"), st.slot(ins.Name)))
		}

	case *ir.Return:
		out.WriteString(e.epilogue(st))
		if ins.Value != nil {
			out.WriteString(move(st.pos(ins.Value), RegPos("a0")))
		}
		out.WriteString("  ret\n")

	case *ir.Branch:
		out.WriteString(move(st.pos(ins.Cond), RegPos("t0")))
		out.WriteString("  beqz t0, " + strings.TrimPrefix(ins.FalseLabel, "%") + "\n")
		out.WriteString("  j " + strings.TrimPrefix(ins.TrueLabel, "%") + "\n")

	case *ir.Jump:
		out.WriteString("  j " + strings.TrimPrefix(ins.Target, "%") + "\n")

	default:
		panic(fmt.Sprintf("emit: unhandled instruction kind %T", inst))
	}
	return out.String()
}

func binaryOp(op ir.BinOp) string {
	switch op {
	case ir.ADD:
		return "  add t2, t0, t1\n"
	case ir.SUB:
		return "  sub t2, t0, t1\n"
	case ir.MUL:
		return "  mul t2, t0, t1\n"
	case ir.DIV:
		return "  div t2, t0, t1\n"
	case ir.MOD:
		return "  rem t2, t0, t1\n"
	case ir.EQ:
		return "  sub t2, t0, t1\n  seqz t2, t2\n"
	case ir.NE:
		return "  sub t2, t0, t1\n  snez t2, t2\n"
	case ir.LT:
		return "  slt t2, t0, t1\n"
	case ir.LE:
		return "  sgt t2, t0, t1\n  seqz t2, t2\n"
	case ir.GT:
		return "  sgt t2, t0, t1\n"
	case ir.GE:
		return "  slt t2, t0, t1\n  seqz t2, t2\n"
	case ir.AND:
		return "  and t2, t0, t1\n"
	case ir.OR:
		return "  or t2, t0, t1\n"
	case ir.XOR:
		return "  xor t2, t0, t1\n"
	case ir.SHL:
		return "  sll t2, t0, t1\n"
	case ir.SHR:
		return "  srl t2, t0, t1\n"
	case ir.SAR:
		return "  sra t2, t0, t1\n"
	default:
		panic(fmt.Sprintf("emit: unknown binary opcode %v", op))
	}
}
