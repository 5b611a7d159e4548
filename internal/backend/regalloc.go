package backend

import "sort"

// Registers is the fixed bank of callee-saved RV32 registers the
// allocator draws from (§4.6, §9's register-bank decision: restricted to
// s0-s11 so no caller-save bookkeeping is needed around Call).
var Registers = []string{
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
}

// Allocation is one function's linear-scan result.
type Allocation struct {
	VarToReg      map[string]string
	VarToSpill    map[string]int
	SpilledVars   []string
	MaxSpillSlots int
}

type activeEntry struct {
	interval LiveInterval
	reg      string
}

// LinearScanAllocate implements Poletto-Sarkar linear scan (§4.6) over
// intervals sorted ascending by Start against a fixed register bank.
// active is kept sorted ascending by End after every insertion; on a
// spill, the candidate is the first interval with maximal End found
// scanning from the front of active, reproducing
// register_allocation.cpp's std::max_element tie-break exactly (see
// DESIGN.md).
func LinearScanAllocate(intervals []LiveInterval, registers []string) *Allocation {
	alloc := &Allocation{VarToReg: map[string]string{}, VarToSpill: map[string]int{}}

	freeRegs := make([]string, len(registers))
	copy(freeRegs, registers)

	var active []activeEntry

	expireOld := func(start int) {
		kept := active[:0]
		for _, e := range active {
			if e.interval.End < start {
				freeRegs = append(freeRegs, e.reg)
			} else {
				kept = append(kept, e)
			}
		}
		active = kept
	}

	insertActive := func(e activeEntry) {
		active = append(active, e)
		sort.SliceStable(active, func(i, j int) bool { return active[i].interval.End < active[j].interval.End })
	}

	for _, interval := range intervals {
		expireOld(interval.Start)

		if len(freeRegs) > 0 {
			reg := freeRegs[0]
			freeRegs = freeRegs[1:]
			alloc.VarToReg[interval.Name] = reg
			insertActive(activeEntry{interval: interval, reg: reg})
			continue
		}

		spillIdx := 0
		for i := 1; i < len(active); i++ {
			if active[i].interval.End > active[spillIdx].interval.End {
				spillIdx = i
			}
		}
		candidate := active[spillIdx]

		if candidate.interval.End > interval.End {
			alloc.VarToReg[interval.Name] = candidate.reg
			delete(alloc.VarToReg, candidate.interval.Name)

			slot := alloc.MaxSpillSlots
			alloc.MaxSpillSlots++
			alloc.VarToSpill[candidate.interval.Name] = slot
			alloc.SpilledVars = append(alloc.SpilledVars, candidate.interval.Name)

			active[spillIdx] = activeEntry{interval: interval, reg: candidate.reg}
			sort.SliceStable(active, func(i, j int) bool { return active[i].interval.End < active[j].interval.End })
		} else {
			slot := alloc.MaxSpillSlots
			alloc.MaxSpillSlots++
			alloc.VarToSpill[interval.Name] = slot
			alloc.SpilledVars = append(alloc.SpilledVars, interval.Name)
		}
	}

	return alloc
}
