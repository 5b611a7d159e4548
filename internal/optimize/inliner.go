package optimize

import (
	"fmt"

	"minic/internal/ir"
)

// InlinerPass substitutes qualifying callees' bodies at call sites, per
// §4.4. depthLimit bounds recursive inlining depth; sizeLimit bounds a
// callee's total instruction count.
type InlinerPass struct {
	depthLimit int
	sizeLimit  int
}

func NewInlinerPass(depthLimit, sizeLimit int) *InlinerPass {
	return &InlinerPass{depthLimit: depthLimit, sizeLimit: sizeLimit}
}

func (*InlinerPass) Name() string { return "inline" }
func (*InlinerPass) Description() string {
	return "substitutes qualifying callees' bodies at call sites, renaming temporaries"
}

func (p *InlinerPass) Apply(program *ir.Program) {
	index := map[string]*ir.Function{}
	for _, fn := range program.Funcs {
		index[fn.Name] = fn
	}

	counter := 0
	for _, fn := range program.Funcs {
		inProgress := map[string]bool{fn.Name: true}
		p.inlineFunction(fn, index, inProgress, 0, &counter)
	}
}

// inlineFunction scans every block of fn once, replacing each eligible
// Call with the callee's cloned body. A cloned body is built only from
// Alloc/Load/Store/Binary/Return, so it can never itself contain a Call;
// one sweep per function therefore reaches a fixed point.
func (p *InlinerPass) inlineFunction(fn *ir.Function, index map[string]*ir.Function, inProgress map[string]bool, depth int, counter *int) {
	for _, bb := range fn.Blocks {
		var rewritten []ir.Instruction
		for _, inst := range bb.Insts {
			call, ok := inst.(*ir.Call)
			if !ok {
				rewritten = append(rewritten, inst)
				continue
			}
			callee, ok := p.eligibleCallee(call, index, inProgress, depth)
			if !ok {
				rewritten = append(rewritten, inst)
				continue
			}

			inProgress[callee.Name] = true
			rewritten = append(rewritten, p.inlineCall(call, callee, counter)...)
			inProgress[callee.Name] = false
		}
		bb.Insts = rewritten
	}
}

func (p *InlinerPass) eligibleCallee(call *ir.Call, index map[string]*ir.Function, inProgress map[string]bool, depth int) (*ir.Function, bool) {
	callee, ok := index[call.Callee]
	if !ok {
		return nil, false
	}
	if inProgress[callee.Name] {
		return nil, false
	}
	if depth >= p.depthLimit {
		return nil, false
	}
	if calleeSize(callee) > p.sizeLimit {
		return nil, false
	}
	if len(callee.Params) != len(call.Args) {
		return nil, false
	}
	if len(callee.Blocks) > 3 {
		return nil, false
	}
	if !onlyClonableInstructions(callee) {
		return nil, false
	}
	return callee, true
}

func calleeSize(fn *ir.Function) int {
	n := 0
	for _, bb := range fn.Blocks {
		n += len(bb.Insts)
	}
	return n
}

// onlyClonableInstructions reports whether every instruction in fn is one
// of the five kinds the cloner understands. A callee containing a
// Branch/Jump (or a Call, which would require inlining to reason about
// further call sites) is rejected outright rather than partially cloned.
func onlyClonableInstructions(fn *ir.Function) bool {
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			switch inst.(type) {
			case *ir.Alloc, *ir.Load, *ir.Store, *ir.Binary, *ir.Return:
			default:
				return false
			}
		}
	}
	return true
}

// inlineCall clones callee's body into the caller, renaming every defined
// name to a fresh %inline_<n> identifier via a per-call substitution map,
// remapping parameter references to the call's actual argument operands,
// and lowering the callee's `Return v` to a store into a fresh
// %ret_val_<n> slot followed by a load into the original call's result
// name.
func (p *InlinerPass) inlineCall(call *ir.Call, callee *ir.Function, counter *int) []ir.Instruction {
	subst := map[string]ir.Operand{}
	for i, argRef := range callee.Params {
		if i < len(call.Args) {
			subst[argRef.Name] = call.Args[i]
		}
	}

	var out []ir.Instruction
	var returnValues []ir.Operand

	for _, bb := range callee.Blocks {
		for _, inst := range bb.Insts {
			switch ins := inst.(type) {
			case *ir.Alloc:
				newName := freshInlineName(counter)
				subst[ins.Name] = &ir.VarRef{Name: newName}
				out = append(out, &ir.Alloc{Name: newName})

			case *ir.Load:
				newName := freshInlineName(counter)
				src := substOperand(ins.Src, subst)
				subst[ins.Name] = &ir.VarRef{Name: newName}
				out = append(out, &ir.Load{Name: newName, Src: src})

			case *ir.Store:
				value := substOperand(ins.Value, subst)
				dest := substDest(ins.Dest, subst)
				out = append(out, &ir.Store{Value: value, Dest: dest})

			case *ir.Binary:
				newName := freshInlineName(counter)
				lhs := substOperand(ins.Lhs, subst)
				rhs := substOperand(ins.Rhs, subst)
				subst[ins.Name] = &ir.VarRef{Name: newName}
				out = append(out, &ir.Binary{Name: newName, Op: ins.Op, Lhs: lhs, Rhs: rhs})

			case *ir.Return:
				if ins.Value != nil {
					returnValues = append(returnValues, substOperand(ins.Value, subst))
				}
			}
		}
	}

	if len(returnValues) == 0 || call.Name == "" {
		return out
	}

	retSlot := fmt.Sprintf("%%ret_val_%d", *counter)
	*counter++

	body := make([]ir.Instruction, 0, len(out)+2)
	body = append(body, &ir.Alloc{Name: retSlot})
	body = append(body, out...)
	for _, v := range returnValues {
		body = append(body, &ir.Store{Value: v, Dest: retSlot})
	}
	body = append(body, &ir.Load{Name: call.Name, Src: &ir.VarRef{Name: retSlot}})
	return body
}

func freshInlineName(counter *int) string {
	name := fmt.Sprintf("%%inline_%d", *counter)
	*counter++
	return name
}

func substOperand(op ir.Operand, subst map[string]ir.Operand) ir.Operand {
	if vr, ok := op.(*ir.VarRef); ok {
		if v, ok := subst[vr.Name]; ok {
			return v
		}
	}
	return op
}

// substDest remaps a Store's destination slot name through subst, since
// Alloc'd slot names (unlike value-producing names) are tracked as plain
// strings rather than as VarRef operands.
func substDest(name string, subst map[string]ir.Operand) string {
	if v, ok := subst[name]; ok {
		if vr, ok := v.(*ir.VarRef); ok {
			return vr.Name
		}
	}
	return name
}
