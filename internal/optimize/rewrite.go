package optimize

import "minic/internal/ir"

// rewriteOperand replaces op with an Integer literal if its value is known
// in table; otherwise it is returned unchanged.
func rewriteOperand(op ir.Operand, table lattice) ir.Operand {
	if v, ok := resolve(op, table); ok {
		return &ir.Integer{Val: v}
	}
	return op
}

// rewrite performs the rewrite phase described in §4.3: operand
// replacement, Binary/Load folding, and Branch-to-Jump simplification.
// It does not prune or trim; those are separate steps applied afterward.
func (p *ConstPropPass) rewrite(fn *ir.Function, in map[string]lattice) {
	for _, bb := range fn.Blocks {
		table := in[bb.Name].clone()
		var kept []ir.Instruction

		for _, inst := range bb.Insts {
			switch ins := inst.(type) {
			case *ir.Binary:
				lhs := rewriteOperand(ins.Lhs, table)
				rhs := rewriteOperand(ins.Rhs, table)
				lv, lok := resolve(lhs, table)
				rv, rok := resolve(rhs, table)
				if lok && rok {
					if v, ok := foldBinary(ins.Op, lv, rv); ok {
						table[ins.Name] = v
						continue
					}
				}
				delete(table, ins.Name)
				kept = append(kept, &ir.Binary{Name: ins.Name, Op: ins.Op, Lhs: lhs, Rhs: rhs})

			case *ir.Store:
				val := rewriteOperand(ins.Value, table)
				if v, ok := resolve(val, table); ok {
					table[ins.Dest] = v
				} else {
					delete(table, ins.Dest)
				}
				kept = append(kept, &ir.Store{Value: val, Dest: ins.Dest})

			case *ir.Load:
				src := rewriteOperand(ins.Src, table)
				if v, ok := resolve(src, table); ok {
					table[ins.Name] = v
					continue
				}
				delete(table, ins.Name)
				kept = append(kept, &ir.Load{Name: ins.Name, Src: src})

			case *ir.Call:
				args := make([]ir.Operand, len(ins.Args))
				for i, a := range ins.Args {
					args[i] = rewriteOperand(a, table)
				}
				if ins.Name != "" {
					delete(table, ins.Name)
				}
				kept = append(kept, &ir.Call{Name: ins.Name, Callee: ins.Callee, Args: args, RetType: ins.RetType})

			case *ir.Alloc:
				delete(table, ins.Name)
				kept = append(kept, ins)

			case *ir.Return:
				var val ir.Operand
				if ins.Value != nil {
					val = rewriteOperand(ins.Value, table)
				}
				kept = append(kept, &ir.Return{Value: val})

			case *ir.Branch:
				cond := rewriteOperand(ins.Cond, table)
				if v, ok := resolve(cond, table); ok {
					target := ins.FalseLabel
					if v != 0 {
						target = ins.TrueLabel
					}
					kept = append(kept, &ir.Jump{Target: target})
				} else {
					kept = append(kept, &ir.Branch{Cond: cond, TrueLabel: ins.TrueLabel, FalseLabel: ins.FalseLabel})
				}

			case *ir.Jump:
				kept = append(kept, ins)
			}
		}
		bb.Insts = kept
	}
}

// pruneUnreachable drops blocks not reachable from the entry block by
// walking the (post-rewrite) terminator edges, implementing §4.3's "mark
// the untaken successor unreachable only if it is not also reachable from
// another predecessor" as a single global reachability sweep.
func pruneUnreachable(fn *ir.Function) {
	if len(fn.Blocks) == 0 {
		return
	}
	byName := map[string]*ir.BasicBlock{}
	for _, bb := range fn.Blocks {
		byName[bb.Name] = bb
	}

	reachable := map[string]bool{}
	stack := []string{fn.Blocks[0].Name}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[name] {
			continue
		}
		reachable[name] = true
		bb := byName[name]
		if bb == nil {
			continue
		}
		switch t := bb.Terminator().(type) {
		case *ir.Branch:
			stack = append(stack, t.TrueLabel, t.FalseLabel)
		case *ir.Jump:
			stack = append(stack, t.Target)
		}
	}

	var kept []*ir.BasicBlock
	for _, bb := range fn.Blocks {
		if reachable[bb.Name] {
			kept = append(kept, bb)
		}
	}
	fn.Blocks = kept
}

// trimAfterTerminators removes any instruction following a block's first
// terminator, restoring §3 invariant I4 after rewriting.
func trimAfterTerminators(fn *ir.Function) {
	for _, bb := range fn.Blocks {
		for i, inst := range bb.Insts {
			if inst.IsTerminator() {
				bb.Insts = bb.Insts[:i+1]
				break
			}
		}
	}
}
