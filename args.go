package tstack

import "math/big"

// The methods in this file are the stable, exported slice of the
// check/eval argument-access surface: everything a dialect package
// (spec.md §9 "Dialect variants") needs to write its own CheckFunc/
// EvalFunc pairs without reaching into the stack's internal cell array.
// They are thin re-exports of the coercions ops_*.go already uses
// internally.

// Loc reports the source location recorded for the cell at idx.
func (s *Stack) Loc(idx int) Location { return s.loc(idx) }

// CurrentOpcode reports the opcode of the frame currently being
// evaluated, for use in a custom check/eval's fail() calls.
func (s *Stack) CurrentOpcode() Opcode { return s.currentOpcode }

// CoerceTerm is the exported form of "to term" (spec.md §4.7).
func (s *Stack) CoerceTerm(idx int) TermHandle { return s.coerceToTerm(idx) }

// CoerceInt32 is the exported form of "to integer" (spec.md §4.7).
func (s *Stack) CoerceInt32(idx int) int32 { return s.coerceToInt32(idx) }

// CoerceBigInt is the exported form of "to integer" without the int32
// range check, for opcodes (like BV_CONST) whose value argument is
// arbitrary precision.
func (s *Stack) CoerceBigInt(idx int) *big.Int { return s.coerceToBigInt(idx) }

// CoerceBitsize is the exported form of "to bitsize" (spec.md §4.7).
func (s *Stack) CoerceBitsize(idx int) int { return s.coerceToBitsize(idx) }

// IsBVConstant reports whether the cell at idx is a structurally
// constant bit vector (spec.md §4.7 "to bit-vector constant").
func (s *Stack) IsBVConstant(idx int) bool { return s.isBVConstant(idx) }

// CoerceBVConstant is the exported form of "to bit-vector constant".
func (s *Stack) CoerceBVConstant(idx int) (bitsize int, value *big.Int) {
	return s.coerceToBVConstant(idx)
}

// RequireSameBVSize fails INCOMPATIBLE_BVSIZES if a != b, reporting the
// error at the cell locIdx.
func (s *Stack) RequireSameBVSize(a, b, locIdx int) { s.requireSameBVSize(a, b, locIdx) }

// ResultBVConst builds a constant bit-vector result cell (exported form
// of resultBVConst), normalized modulo 2^bitsize.
func ResultBVConst(bitsize int, value *big.Int) cellResult { return resultBVConst(bitsize, value) }

// ResultTerm wraps an already-interned TermHandle as a result cell.
func ResultTerm(h TermHandle) cellResult { return resultTermCell(h) }

// Fail raises a StackError through the stack's single unwind point, for
// a dialect's own check/eval functions.
func Fail(kind ErrorKind, loc Location, op Opcode, symbol string) { fail(kind, loc, op, symbol) }
