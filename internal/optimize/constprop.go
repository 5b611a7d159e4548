package optimize

import "minic/internal/ir"

// lattice is one function's dataflow fact: a mapping from value names
// (including Store destinations, i.e. Alloc'd slots) to known constants.
// Absence of a key means Unknown, per §4.3.
type lattice map[string]int32

func (l lattice) clone() lattice {
	out := make(lattice, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

func (l lattice) equal(other lattice) bool {
	if len(l) != len(other) {
		return false
	}
	for k, v := range l {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// ConstPropPass is a forward dataflow constant-propagation and folding
// pass, plus branch simplification and dead-block pruning.
type ConstPropPass struct{}

func NewConstPropPass() *ConstPropPass { return &ConstPropPass{} }

func (*ConstPropPass) Name() string { return "const-prop" }
func (*ConstPropPass) Description() string {
	return "forward constant propagation, folding, branch simplification, and dead-block pruning"
}

func (p *ConstPropPass) Apply(program *ir.Program) {
	for _, fn := range program.Funcs {
		p.applyToFunction(fn)
	}
}

func (p *ConstPropPass) applyToFunction(fn *ir.Function) {
	if len(fn.Blocks) == 0 {
		return
	}
	cfg := buildCFG(fn)
	in, out := p.fixedPoint(fn, cfg)
	p.rewrite(fn, in)
	pruneUnreachable(fn)
	trimAfterTerminators(fn)
	_ = out
}

// cfg holds successor/predecessor block-name adjacency for one function,
// derived purely from terminators (§4.5's CFG-construction rule, reused
// here since both passes need the same notion of control flow).
type cfg struct {
	succs map[string][]string
	preds map[string][]string
	byName map[string]*ir.BasicBlock
	order  []string
}

func buildCFG(fn *ir.Function) *cfg {
	c := &cfg{
		succs:  map[string][]string{},
		preds:  map[string][]string{},
		byName: map[string]*ir.BasicBlock{},
	}
	for i, bb := range fn.Blocks {
		c.byName[bb.Name] = bb
		c.order = append(c.order, bb.Name)

		var succs []string
		term := bb.Terminator()
		switch t := term.(type) {
		case *ir.Branch:
			succs = []string{t.TrueLabel, t.FalseLabel}
		case *ir.Jump:
			succs = []string{t.Target}
		default:
			if i+1 < len(fn.Blocks) {
				succs = []string{fn.Blocks[i+1].Name}
			}
		}
		c.succs[bb.Name] = succs
	}
	for name, succs := range c.succs {
		for _, s := range succs {
			c.preds[s] = append(c.preds[s], name)
		}
	}
	return c
}

func (p *ConstPropPass) fixedPoint(fn *ir.Function, c *cfg) (map[string]lattice, map[string]lattice) {
	in := map[string]lattice{}
	out := map[string]lattice{}
	for _, name := range c.order {
		in[name] = lattice{}
		out[name] = lattice{}
	}

	worklist := append([]string{}, c.order...)
	for len(worklist) > 0 {
		name := worklist[0]
		worklist = worklist[1:]

		bb := c.byName[name]
		newIn := meet(c.preds[name], out)
		in[name] = newIn

		newOut := transfer(bb, newIn)
		if !newOut.equal(out[name]) {
			out[name] = newOut
			worklist = append(worklist, c.succs[name]...)
		}
	}
	return in, out
}

// meet computes the entry lattice for a block from its predecessors' OUT
// facts: a key survives as Const v only if every predecessor OUT agrees
// on v; a predecessor missing the key is treated as Unknown, per §4.3.
func meet(preds []string, out map[string]lattice) lattice {
	if len(preds) == 0 {
		return lattice{}
	}
	result := lattice{}
	seen := map[string]bool{}
	for _, p := range preds {
		for k := range out[p] {
			seen[k] = true
		}
	}
	for k := range seen {
		v, ok := out[preds[0]][k]
		agree := ok
		for _, p := range preds[1:] {
			ov, ok2 := out[p][k]
			if !ok2 || ov != v {
				agree = false
				break
			}
		}
		if agree {
			result[k] = v
		}
	}
	return result
}

// resolve returns the constant value of an operand, if any is known.
func resolve(op ir.Operand, table lattice) (int32, bool) {
	switch o := op.(type) {
	case *ir.Integer:
		return o.Val, true
	case *ir.VarRef:
		v, ok := table[o.Name]
		return v, ok
	default:
		return 0, false
	}
}

// transfer walks a block's instructions sequentially from `in`, returning
// the resulting OUT fact. It never mutates the instructions themselves;
// that is the rewrite phase's job.
func transfer(bb *ir.BasicBlock, in lattice) lattice {
	table := in.clone()
	for _, inst := range bb.Insts {
		switch ins := inst.(type) {
		case *ir.Binary:
			lv, lok := resolve(ins.Lhs, table)
			rv, rok := resolve(ins.Rhs, table)
			if lok && rok {
				if v, ok := foldBinary(ins.Op, lv, rv); ok {
					table[ins.Name] = v
					continue
				}
			}
			delete(table, ins.Name)
		case *ir.Store:
			if v, ok := resolve(ins.Value, table); ok {
				table[ins.Dest] = v
			} else {
				delete(table, ins.Dest)
			}
		case *ir.Load:
			if v, ok := resolve(ins.Src, table); ok {
				table[ins.Name] = v
			} else {
				delete(table, ins.Name)
			}
		case *ir.Call:
			if ins.Name != "" {
				delete(table, ins.Name)
			}
		case *ir.Alloc:
			delete(table, ins.Name)
		}
	}
	return table
}

// foldBinary evaluates op over two known i32 operands using two's
// complement wraparound arithmetic. DIV/MOD by zero is reported
// non-foldable so the instruction is preserved (§4.3's fold semantics).
func foldBinary(op ir.BinOp, lhs, rhs int32) (int32, bool) {
	switch op {
	case ir.ADD:
		return lhs + rhs, true
	case ir.SUB:
		return lhs - rhs, true
	case ir.MUL:
		return lhs * rhs, true
	case ir.DIV:
		if rhs == 0 {
			return 0, false
		}
		return lhs / rhs, true
	case ir.MOD:
		if rhs == 0 {
			return 0, false
		}
		return lhs % rhs, true
	case ir.EQ:
		return boolToI32(lhs == rhs), true
	case ir.NE:
		return boolToI32(lhs != rhs), true
	case ir.LT:
		return boolToI32(lhs < rhs), true
	case ir.LE:
		return boolToI32(lhs <= rhs), true
	case ir.GT:
		return boolToI32(lhs > rhs), true
	case ir.GE:
		return boolToI32(lhs >= rhs), true
	case ir.AND:
		return lhs & rhs, true
	case ir.OR:
		return lhs | rhs, true
	case ir.XOR:
		return lhs ^ rhs, true
	case ir.SHL:
		return lhs << uint32(rhs&31), true
	case ir.SHR:
		return int32(uint32(lhs) >> uint32(rhs&31)), true
	case ir.SAR:
		return lhs >> uint32(rhs&31), true
	default:
		return 0, false
	}
}

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
