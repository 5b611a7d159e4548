// Package optimize implements the two optimizing passes that run over a
// lowered Program: constant propagation (§4.3) and inlining (§4.4),
// wired together behind a small pipeline abstraction so the CLI can run
// either, both, or neither.
package optimize

import "minic/internal/ir"

// Pass is one optimizing transformation over a whole program.
type Pass interface {
	Name() string
	Description() string
	Apply(program *ir.Program)
}

// Pipeline runs a sequence of passes over a program in order.
type Pipeline struct {
	passes []Pass
}

// NewPipeline returns an empty pipeline; use AddPass to populate it.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// NewDefaultPipeline returns the standard pipeline: constant propagation
// followed by inlining, matching §2's dataflow ordering.
func NewDefaultPipeline(depthLimit, sizeLimit int) *Pipeline {
	p := NewPipeline()
	p.AddPass(NewConstPropPass())
	p.AddPass(NewInlinerPass(depthLimit, sizeLimit))
	return p
}

func (p *Pipeline) AddPass(pass Pass) {
	p.passes = append(p.passes, pass)
}

// Run applies every pass in order, mutating program in place.
func (p *Pipeline) Run(program *ir.Program) {
	for _, pass := range p.passes {
		pass.Apply(program)
	}
}

// Passes returns the pipeline's passes in run order.
func (p *Pipeline) Passes() []Pass {
	return p.passes
}
