// Package backend implements §4.5-§4.7: per-function liveness analysis,
// Poletto-Sarkar linear-scan register allocation, and RV32I code
// emission, grounded on original_source/src/register_allocation.cpp and
// original_source/src/visit.cpp.
package backend

import (
	"sort"

	"minic/internal/ir"
)

type stringSet map[string]bool

func newStringSet(names ...string) stringSet {
	s := make(stringSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

func (s stringSet) clone() stringSet {
	out := make(stringSet, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (s stringSet) equal(other stringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other[k] {
			return false
		}
	}
	return true
}

// LiveInterval is the half-open instruction-index range [Start, End] over
// which a defined name is live, per §4.5.
type LiveInterval struct {
	Name  string
	Start int
	End   int
}

// Liveness is one function's complete liveness analysis result.
type Liveness struct {
	Def, Use, LiveIn, LiveOut map[string]stringSet
	// LiveAfter holds, per global instruction index (blocks and
	// instructions in declaration order), the live set recorded
	// immediately after that instruction.
	LiveAfter []stringSet
	Intervals []LiveInterval
}

// definedNames returns the name an instruction binds, if any. Per §4.5,
// variable producers are Alloc, Load, Binary, and (named) Call.
func definedNames(inst ir.Instruction) []string {
	switch inst.(type) {
	case *ir.Alloc, *ir.Load, *ir.Binary, *ir.Call:
		if name := inst.ResultName(); name != "" {
			return []string{name}
		}
	}
	return nil
}

func operandName(op ir.Operand) (string, bool) {
	if vr, ok := op.(*ir.VarRef); ok {
		return vr.Name, true
	}
	return "", false
}

// usedNames returns the name-carrying operands an instruction reads, per
// §4.5's enumeration (Store's dest slot counts as a use, matching
// register_allocation.cpp's getUsedVars).
func usedNames(inst ir.Instruction) []string {
	var used []string
	add := func(op ir.Operand) {
		if name, ok := operandName(op); ok {
			used = append(used, name)
		}
	}
	switch ins := inst.(type) {
	case *ir.Load:
		add(ins.Src)
	case *ir.Store:
		add(ins.Value)
		used = append(used, ins.Dest)
	case *ir.Binary:
		add(ins.Lhs)
		add(ins.Rhs)
	case *ir.Branch:
		add(ins.Cond)
	case *ir.Return:
		if ins.Value != nil {
			add(ins.Value)
		}
	case *ir.Call:
		for _, a := range ins.Args {
			add(a)
		}
	}
	return used
}

func computeDefUse(fn *ir.Function) (def, use map[string]stringSet) {
	def = map[string]stringSet{}
	use = map[string]stringSet{}
	for _, bb := range fn.Blocks {
		blockDef := stringSet{}
		blockUse := stringSet{}
		for _, inst := range bb.Insts {
			for _, name := range usedNames(inst) {
				if !blockDef[name] {
					blockUse[name] = true
				}
			}
			for _, name := range definedNames(inst) {
				blockDef[name] = true
			}
		}
		def[bb.Name] = blockDef
		use[bb.Name] = blockUse
	}
	return def, use
}

func computeLiveInOut(c *cfg, def, use map[string]stringSet) (map[string]stringSet, map[string]stringSet) {
	liveIn := map[string]stringSet{}
	liveOut := map[string]stringSet{}
	for _, name := range c.order {
		liveIn[name] = stringSet{}
		liveOut[name] = stringSet{}
	}

	changed := true
	for changed {
		changed = false
		for i := len(c.order) - 1; i >= 0; i-- {
			name := c.order[i]
			oldIn, oldOut := liveIn[name], liveOut[name]

			newOut := stringSet{}
			for _, s := range c.succs[name] {
				for k := range liveIn[s] {
					newOut[k] = true
				}
			}
			newIn := use[name].clone()
			for k := range newOut {
				if !def[name][k] {
					newIn[k] = true
				}
			}

			liveOut[name] = newOut
			liveIn[name] = newIn
			if !newIn.equal(oldIn) || !newOut.equal(oldOut) {
				changed = true
			}
		}
	}
	return liveIn, liveOut
}

// computeLiveAfter walks each block backward from its LiveOut, recording
// the live-after set of every instruction in function-flattened order.
func computeLiveAfter(fn *ir.Function, liveOut map[string]stringSet) []stringSet {
	var result []stringSet
	for _, bb := range fn.Blocks {
		live := liveOut[bb.Name].clone()
		after := make([]stringSet, len(bb.Insts))
		for i := len(bb.Insts) - 1; i >= 0; i-- {
			inst := bb.Insts[i]
			after[i] = live.clone()
			for _, name := range definedNames(inst) {
				delete(live, name)
			}
			for _, name := range usedNames(inst) {
				live[name] = true
			}
		}
		result = append(result, after...)
	}
	return result
}

// computeIntervals derives start/end live intervals for every
// instruction-defined name (formal parameters never reach here, since
// they are never a definedNames() result).
func computeIntervals(fn *ir.Function, liveAfter []stringSet) []LiveInterval {
	firstDef := map[string]int{}
	idx := 0
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			for _, name := range definedNames(inst) {
				if _, ok := firstDef[name]; !ok {
					firstDef[name] = idx
				}
			}
			idx++
		}
	}

	intervals := make([]LiveInterval, 0, len(firstDef))
	for name, start := range firstDef {
		end := start
		for i := start; i < len(liveAfter); i++ {
			if liveAfter[i][name] {
				end = i
			}
		}
		intervals = append(intervals, LiveInterval{Name: name, Start: start, End: end})
	}

	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].Start != intervals[j].Start {
			return intervals[i].Start < intervals[j].Start
		}
		return intervals[i].Name < intervals[j].Name
	})
	return intervals
}

// AnalyzeLiveness runs the full §4.5 pipeline over fn: CFG construction,
// def/use, live-in/out fixed point, per-instruction liveness, and live
// interval derivation.
func AnalyzeLiveness(fn *ir.Function) *Liveness {
	if len(fn.Blocks) == 0 {
		return &Liveness{}
	}
	c := buildCFG(fn)
	def, use := computeDefUse(fn)
	liveIn, liveOut := computeLiveInOut(c, def, use)
	liveAfter := computeLiveAfter(fn, liveOut)
	intervals := computeIntervals(fn, liveAfter)
	return &Liveness{
		Def: def, Use: use, LiveIn: liveIn, LiveOut: liveOut,
		LiveAfter: liveAfter, Intervals: intervals,
	}
}
