package ir

import "fmt"

// Operand is a small value an instruction reads from: either a literal
// Integer or a VarRef naming a prior definition.
type Operand interface {
	operandNode()
	String() string
}

// Integer is a literal i32 operand; it carries no name.
type Integer struct {
	Val int32
}

func (*Integer) operandNode() {}
func (i *Integer) String() string { return fmt.Sprintf("%d", i.Val) }

// VarRef is a textual reference to a name defined earlier in the same
// function (a parameter, Alloc, Load, Binary, or Call result).
type VarRef struct {
	Name string
}

func (*VarRef) operandNode()      {}
func (v *VarRef) String() string  { return v.Name }

// FuncArgRef is a formal parameter of the enclosing function.
type FuncArgRef struct {
	Index int
	Name  string
	Typ   Type
}

func (f *FuncArgRef) String() string { return fmt.Sprintf("%s: %s", f.Name, f.Typ) }

// Instruction is any value that occupies a slot in a BasicBlock's ordered
// instruction sequence.
type Instruction interface {
	ResultName() string // "" when the instruction produces no result
	IsTerminator() bool
	String() string
}

// Alloc reserves one i32 stack slot; the slot is addressed by Name.
type Alloc struct {
	Name string
}

func (a *Alloc) ResultName() string  { return a.Name }
func (*Alloc) IsTerminator() bool    { return false }
func (a *Alloc) String() string      { return fmt.Sprintf("  %s = alloc i32", a.Name) }

// Load reads Src's slot, binding the result to Name.
type Load struct {
	Name string
	Src  Operand
}

func (l *Load) ResultName() string { return l.Name }
func (*Load) IsTerminator() bool   { return false }
func (l *Load) String() string    { return fmt.Sprintf("  %s = load %s", l.Name, l.Src) }

// Store writes Value into the slot named by Dest. It produces no result.
type Store struct {
	Value Operand
	Dest  string
}

func (*Store) ResultName() string { return "" }
func (*Store) IsTerminator() bool { return false }
func (s *Store) String() string   { return fmt.Sprintf("  store %s, %s", s.Value, s.Dest) }

// Binary applies Op to Lhs and Rhs, binding the result to Name.
type Binary struct {
	Name string
	Op   BinOp
	Lhs  Operand
	Rhs  Operand
}

func (b *Binary) ResultName() string { return b.Name }
func (*Binary) IsTerminator() bool    { return false }
func (b *Binary) String() string {
	return fmt.Sprintf("  %s = %s %s, %s", b.Name, b.Op, b.Lhs, b.Rhs)
}

// Call invokes Callee with Args. Name is empty iff RetType is Unit.
type Call struct {
	Name    string
	Callee  string
	Args    []Operand
	RetType Type
}

func (c *Call) ResultName() string { return c.Name }
func (*Call) IsTerminator() bool    { return false }
func (c *Call) String() string {
	args := ""
	for i, a := range c.Args {
		if i > 0 {
			args += ", "
		}
		args += a.String()
	}
	if c.Name == "" {
		return fmt.Sprintf("  call %s(%s)", c.Callee, args)
	}
	return fmt.Sprintf("  %s = call %s(%s)", c.Name, c.Callee, args)
}

// Return is a terminator; Value is nil for Unit-returning functions.
type Return struct {
	Value Operand
}

func (*Return) ResultName() string { return "" }
func (*Return) IsTerminator() bool  { return true }
func (r *Return) String() string {
	if r.Value == nil {
		return "  ret"
	}
	return fmt.Sprintf("  ret %s", r.Value)
}

// Branch is a terminator with two successor labels.
type Branch struct {
	Cond       Operand
	TrueLabel  string
	FalseLabel string
}

func (*Branch) ResultName() string { return "" }
func (*Branch) IsTerminator() bool  { return true }
func (b *Branch) String() string {
	return fmt.Sprintf("  br %s, %s, %s", b.Cond, b.TrueLabel, b.FalseLabel)
}

// Jump is an unconditional terminator.
type Jump struct {
	Target string
}

func (*Jump) ResultName() string { return "" }
func (*Jump) IsTerminator() bool  { return true }
func (j *Jump) String() string    { return fmt.Sprintf("  jump %s", j.Target) }

// BasicBlock owns an ordered instruction sequence; a well-formed block's
// last instruction is a terminator.
type BasicBlock struct {
	Name  string
	Insts []Instruction
}

// Terminator returns the block's terminating instruction, or nil if the
// block is (transiently, mid-construction) without one.
func (b *BasicBlock) Terminator() Instruction {
	if len(b.Insts) == 0 {
		return nil
	}
	last := b.Insts[len(b.Insts)-1]
	if last.IsTerminator() {
		return last
	}
	return nil
}

// Function owns its basic blocks in declaration order; the first is the
// entry block, conventionally named "%entry".
type Function struct {
	Name   string
	Typ    *FunctionType
	Params []*FuncArgRef
	Blocks []*BasicBlock

	// MaxCallArity is the largest argument count of any Call in this
	// function's body, computed once during lowering so the emitter's
	// outgoing-argument-area sizing is O(1) rather than a re-scan.
	MaxCallArity int
}

// Program owns all functions in declaration order.
type Program struct {
	Funcs []*Function
}

// FindFunction looks up a function by its mangled name ("@foo").
func (p *Program) FindFunction(name string) *Function {
	for _, f := range p.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
