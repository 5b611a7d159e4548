// Package ir implements the core data model: types, values (instructions),
// basic blocks, functions, and programs, plus total pretty-printing.
package ir

import "fmt"

// Type is the tagged variant of IR types: Int32, Unit, or Function.
type Type interface {
	isType()
	String() string
}

type Int32Type struct{}

func (Int32Type) isType()         {}
func (Int32Type) String() string  { return "i32" }

type UnitType struct{}

func (UnitType) isType()        {}
func (UnitType) String() string { return "()" }

// FunctionType carries an ordered parameter type sequence and a return type.
type FunctionType struct {
	Params []Type
	Ret    Type
}

func (*FunctionType) isType() {}
func (f *FunctionType) String() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	s += "): " + f.Ret.String()
	return s
}

// TypesEqual reports structural equality of two types.
func TypesEqual(a, b Type) bool {
	switch av := a.(type) {
	case Int32Type:
		_, ok := b.(Int32Type)
		return ok
	case UnitType:
		_, ok := b.(UnitType)
		return ok
	case *FunctionType:
		bv, ok := b.(*FunctionType)
		if !ok || len(av.Params) != len(bv.Params) || !TypesEqual(av.Ret, bv.Ret) {
			return false
		}
		for i := range av.Params {
			if !TypesEqual(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// BinOp is the operator tag carried by a Binary value.
type BinOp int

const (
	ADD BinOp = iota
	SUB
	MUL
	DIV
	MOD
	EQ
	NE
	LT
	LE
	GT
	GE
	AND
	OR
	XOR
	SHL
	SHR
	SAR
)

var binOpNames = map[BinOp]string{
	ADD: "add", SUB: "sub", MUL: "mul", DIV: "div", MOD: "mod",
	EQ: "eq", NE: "ne", LT: "lt", LE: "le", GT: "gt", GE: "ge",
	AND: "and", OR: "or", XOR: "xor", SHL: "shl", SHR: "shr", SAR: "sar",
}

func (op BinOp) String() string {
	if s, ok := binOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("binop(%d)", int(op))
}
