package backend

import "minic/internal/ir"

// cfg holds successor/predecessor block-name adjacency for one function,
// derived purely from terminators per §4.5's CFG-construction rule.
type cfg struct {
	succs map[string][]string
	preds map[string][]string
	order []string
}

func buildCFG(fn *ir.Function) *cfg {
	c := &cfg{succs: map[string][]string{}, preds: map[string][]string{}}
	for i, bb := range fn.Blocks {
		c.order = append(c.order, bb.Name)

		var succs []string
		switch t := bb.Terminator().(type) {
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
