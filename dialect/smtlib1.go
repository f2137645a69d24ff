// Package dialect holds SMT-LIB dialect variants of a handful of core
// opcodes, demonstrating the extension mechanism spec.md §9 calls out
// ("Dialect variants... register dialect-specific check/eval pairs
// under the same opcodes after construction") without touching the
// core stack engine package at all.
package dialect

import (
	"math/big"

	"github.com/nsimsiri/tstack"
	"github.com/nsimsiri/tstack/internal/cellpkg"
	"github.com/nsimsiri/tstack/internal/extern"
)

// RegisterSMTLIB1 re-registers six bit-vector constructors under their
// SMT-LIB 1.2 argument order (spec.md §9 "SMT-LIB 1.2 and successors
// permute the argument order of a handful of bit-vector constructors")
// and generalizes MK_EQ to n >= 2 arguments. Every replacement keeps the
// original opcode number, so a caller that built a Stack with the
// default core opcode set and then calls RegisterSMTLIB1 gets the same
// engine parsing the SMT-LIB 1.2 argument conventions from that point
// on.
func RegisterSMTLIB1(s *tstack.Stack) {
	s.Register(bvConstOpcode, false, checkBVConst1, evalBVConst1)
	s.Register(bvRotateLeftOpcode, false, checkRotate1, evalRotateLeft1)
	s.Register(bvRotateRightOpcode, false, checkRotate1, evalRotateRight1)
	s.Register(bvRepeatOpcode, false, checkRepeat1, evalRepeat1)
	s.Register(bvSignExtendOpcode, false, checkExtend1, evalSignExtend1)
	s.Register(bvZeroExtendOpcode, false, checkExtend1, evalZeroExtend1)
	s.Register(eqOpcode, false, checkEqN, evalEqN)
}

// Opcode identities are pulled from the core package's exported enum so
// this file has no numeric opcode literals of its own to drift out of
// sync with opcodes.go.
var (
	bvConstOpcode       = tstack.MK_BV_CONST
	bvRotateLeftOpcode  = tstack.MK_BV_ROTATE_LEFT
	bvRotateRightOpcode = tstack.MK_BV_ROTATE_RIGHT
	bvRepeatOpcode      = tstack.MK_BV_REPEAT
	bvSignExtendOpcode  = tstack.MK_BV_SIGN_EXTEND
	bvZeroExtendOpcode  = tstack.MK_BV_ZERO_EXTEND
	eqOpcode            = tstack.MK_EQ
)

func arity2(s *tstack.Stack, firstArg, n int, op tstack.Opcode) {
	if n != 2 {
		tstack.Fail(tstack.ErrInvalidFrame, s.Loc(firstArg), op, "")
	}
}

// checkBVConst1/evalBVConst1: SMT-LIB 1.2 spells a bit-vector literal
// value first, size second — the reverse of this core's MK_BV_CONST
// (size, value).
func checkBVConst1(s *tstack.Stack, firstArg, n int) { arity2(s, firstArg, n, bvConstOpcode) }

func evalBVConst1(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	val := s.CoerceBigInt(firstArg)
	size := s.CoerceInt32(firstArg + 1)
	if size <= 0 {
		tstack.Fail(tstack.ErrNonpositiveBVSize, s.Loc(firstArg+1), bvConstOpcode, "")
	}
	return tstack.ResultBVConst(int(size), val)
}

func checkRotate1(s *tstack.Stack, firstArg, n int) { arity2(s, firstArg, n, bvRotateLeftOpcode) }

// rotateConst rotates the bitsize-wide value v by k bits, leftward when
// left is true, wrapping at bitsize and normalizing into [0, 2^bitsize).
func rotateConst(bitsize int, v *big.Int, k int, left bool) *big.Int {
	k %= bitsize
	if k == 0 {
		return new(big.Int).Set(v)
	}
	if !left {
		k = bitsize - k
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
	hi := new(big.Int).Lsh(v, uint(k))
	hi.Or(hi, new(big.Int).Rsh(v, uint(bitsize-k)))
	return hi.Mod(hi, mod)
}

// evalRotateLeft1/evalRotateRight1: SMT-LIB 1.2 spells the rotate amount
// first, the bit vector second — the reverse of this core's
// MK_BV_ROTATE_LEFT/RIGHT (bv, amount).
func evalRotateLeft1(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	return evalRotate1(s, firstArg, true)
}

func evalRotateRight1(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	return evalRotate1(s, firstArg, false)
}

func evalRotate1(s *tstack.Stack, firstArg int, left bool) cellpkg.Cell {
	amt := s.CoerceInt32(firstArg)
	bitsize := s.CoerceBitsize(firstArg + 1)
	if amt < 0 || int(amt) > bitsize {
		op := bvRotateRightOpcode
		if left {
			op = bvRotateLeftOpcode
		}
		tstack.Fail(tstack.ErrBVLogic, s.Loc(firstArg), op, "")
	}
	if !s.IsBVConstant(firstArg + 1) {
		h := s.CoerceTerm(firstArg + 1)
		name := "bvrotr"
		if left {
			name = "bvrotl"
		}
		amtTerm := s.Tables().IntTerm(big.NewInt(int64(amt)))
		return tstack.ResultTerm(s.Tables().AppTerm(name, s.Tables().BVType(bitsize), h, amtTerm))
	}
	_, v := s.CoerceBVConstant(firstArg + 1)
	return tstack.ResultBVConst(bitsize, rotateConst(bitsize, v, int(amt), left))
}

func checkRepeat1(s *tstack.Stack, firstArg, n int) { arity2(s, firstArg, n, bvRepeatOpcode) }

// evalRepeat1: SMT-LIB 1.2 spells the repeat count first, the bit vector
// second — the reverse of this core's MK_BV_REPEAT (bv, k).
func evalRepeat1(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	k := s.CoerceInt32(firstArg)
	bitsize := s.CoerceBitsize(firstArg + 1)
	if k <= 0 {
		tstack.Fail(tstack.ErrBVLogic, s.Loc(firstArg), bvRepeatOpcode, "")
	}
	totalSize := bitsize * int(k)
	if !s.IsBVConstant(firstArg + 1) {
		h := s.CoerceTerm(firstArg + 1)
		return tstack.ResultTerm(s.Tables().AppTerm("repeat", s.Tables().BVType(totalSize), h))
	}
	_, v := s.CoerceBVConstant(firstArg + 1)
	acc := new(big.Int)
	for i := int32(0); i < k; i++ {
		acc.Lsh(acc, uint(bitsize))
		acc.Or(acc, v)
	}
	return tstack.ResultBVConst(totalSize, acc)
}

func checkExtend1(s *tstack.Stack, firstArg, n int) { arity2(s, firstArg, n, bvSignExtendOpcode) }

// evalSignExtend1/evalZeroExtend1: SMT-LIB 1.2 spells the extra-bits
// count first, the bit vector second — the reverse of this core's
// MK_BV_SIGN_EXTEND/ZERO_EXTEND (bv, extra).
func evalSignExtend1(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	return evalExtend1(s, firstArg, true)
}

func evalZeroExtend1(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	return evalExtend1(s, firstArg, false)
}

func evalExtend1(s *tstack.Stack, firstArg int, signExtend bool) cellpkg.Cell {
	extra := s.CoerceInt32(firstArg)
	bitsize := s.CoerceBitsize(firstArg + 1)
	op := bvZeroExtendOpcode
	name := "zero_extend"
	if signExtend {
		op, name = bvSignExtendOpcode, "sign_extend"
	}
	if extra < 0 {
		tstack.Fail(tstack.ErrBVLogic, s.Loc(firstArg), op, "")
	}
	newSize := bitsize + int(extra)
	if !s.IsBVConstant(firstArg + 1) {
		h := s.CoerceTerm(firstArg + 1)
		return tstack.ResultTerm(s.Tables().AppTerm(name, s.Tables().BVType(newSize), h))
	}
	_, v := s.CoerceBVConstant(firstArg + 1)
	if signExtend && extra > 0 {
		signBit := new(big.Int).Lsh(big.NewInt(1), uint(bitsize-1))
		if v.Cmp(signBit) >= 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
			v = new(big.Int).Sub(v, mod)
		}
	}
	return tstack.ResultBVConst(newSize, v)
}

// checkEqN/evalEqN generalize MK_EQ from this core's fixed arity 2 to
// SMT-LIB's n >= 2, folding to a Boolean constant when every argument is
// the same hash-consed handle, or when two distinct ground constants
// appear among the arguments, and otherwise building the n-ary "="
// application.
func checkEqN(s *tstack.Stack, firstArg, n int) {
	if n < 2 {
		tstack.Fail(tstack.ErrInvalidFrame, s.Loc(firstArg), eqOpcode, "")
	}
}

func evalEqN(s *tstack.Stack, firstArg, n int) cellpkg.Cell {
	args := make([]tstack.TermHandle, n)
	for i := 0; i < n; i++ {
		args[i] = s.CoerceTerm(firstArg + i)
	}
	allSame := true
	for i := 1; i < n; i++ {
		if args[i] != args[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return tstack.ResultTerm(s.Tables().BoolTerm(true))
	}
	for i := 0; i < n; i++ {
		ti := s.Tables().Term(args[i])
		if !isGroundConstant(ti.Kind) {
			continue
		}
		for j := i + 1; j < n; j++ {
			tj := s.Tables().Term(args[j])
			if isGroundConstant(tj.Kind) && args[i] != args[j] {
				return tstack.ResultTerm(s.Tables().BoolTerm(false))
			}
		}
	}
	return tstack.ResultTerm(s.Tables().AppTerm("=", s.Tables().BoolType(), args...))
}

func isGroundConstant(k extern.TermKind) bool {
	switch k {
	case extern.TBool, extern.TInt, extern.TRational, extern.TBVConst:
		return true
	}
	return false
}
