package tstack

import (
	"math/big"

	"github.com/nsimsiri/tstack/internal/bufpool"
)

// constToLogicBuf acquires a pool logic buffer sized to bitsize and
// seeds every bit from v's two's-complement-free (already normalized)
// representation, exercising the buffer pool's acquire/recycle
// discipline for the bitwise opcode family (spec.md §4.2, §8 property 3).
func (s *Stack) constToLogicBuf(bitsize int, v *big.Int) *bufpool.LogicBuf {
	buf := s.pool.AcquireLogicBuf(bitsize)
	for i := 0; i < bitsize; i++ {
		buf.Set(i, bufpool.LogicBit{Const: true, Value: v.Bit(i) != 0})
	}
	return buf
}

// logicBufFinish reads a fully-constant logic buffer back into a big.Int
// and recycles it to the pool.
func (s *Stack) logicBufFinish(buf *bufpool.LogicBuf) *big.Int {
	v := new(big.Int).SetUint64(buf.ConstantValue())
	if buf.Bitsize() > 64 {
		v = new(big.Int)
		for i := 0; i < buf.Bitsize(); i++ {
			if buf.Get(i).Value {
				v.SetBit(v, i, 1)
			}
		}
	}
	s.pool.RecycleLogicBuf(buf)
	return v
}

// mkBVBitwiseOp builds the check/eval pair for an associative bitwise
// family member (MK_BV_AND/OR/XOR/NAND/NOR/XNOR): a single argument is
// the identity fold, n >= 2 the general case (spec.md §4.8 "Associative
// operators accept a single argument").
func mkBVBitwiseOp(opcode Opcode, name string, fold func(acc, other *bufpool.LogicBuf), postNot bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, atLeast(1))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		allConst := true
		for i := 0; i < n; i++ {
			if !s.isBVConstant(firstArg + i) {
				allConst = false
				break
			}
		}
		if allConst {
			_, v0 := s.coerceToBVConstant(firstArg)
			acc := s.constToLogicBuf(bitsize, v0)
			for i := 1; i < n; i++ {
				sz, v := s.coerceToBVConstant(firstArg + i)
				s.requireSameBVSize(bitsize, sz, firstArg+i)
				other := s.constToLogicBuf(bitsize, v)
				fold(acc, other)
				s.pool.RecycleLogicBuf(other)
			}
			if postNot {
				acc.NotInPlace()
			}
			return resultBVConst(bitsize, s.logicBufFinish(acc))
		}
		args := make([]TermHandle, n)
		for i := 0; i < n; i++ {
			args[i] = s.coerceToTerm(firstArg + i)
			s.requireSameBVSize(bitsize, s.coerceToBitsize(firstArg+i), firstArg+i)
		}
		return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(bitsize), args...))
	}
	return check, eval
}

func checkMkBVNot(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_NOT)
	checkSize(s, firstArg, n, exactly(1))
}

func evalMkBVNot(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	if s.isBVConstant(firstArg) {
		_, v := s.coerceToBVConstant(firstArg)
		mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
		return resultBVConst(bitsize, new(big.Int).Sub(mod, new(big.Int).Add(v, big.NewInt(1))))
	}
	h := s.coerceToTerm(firstArg)
	return resultTermCell(s.tables.AppTerm("bvnot", s.tables.BVType(bitsize), h))
}

// mkBVConstShift builds the check/eval pair for the classic "shift by a
// compile-time integer amount" family (MK_BV_SHIFT_LEFT0/1,
// MK_BV_SHIFT_RIGHT0/1, MK_BV_ASHIFT_RIGHT): (bv, amount), amount a
// RATIONAL integer constant, fill decided by the opcode itself.
func mkBVConstShift(opcode Opcode, name string, leftward bool, fillFromSign bool, fillValue bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		amt := s.coerceToInt32(firstArg + 1)
		if amt < 0 {
			fail(ErrNegativeExponent, s.loc(firstArg+1), opcode, "")
		}
		if !s.isBVConstant(firstArg) {
			h := s.coerceToTerm(firstArg)
			amtTerm := s.tables.IntTerm(big.NewInt(int64(amt)))
			return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(bitsize), h, amtTerm))
		}
		_, v := s.coerceToBVConstant(firstArg)
		buf := s.constToLogicBuf(bitsize, v)
		fill := bufpool.LogicBit{Const: true, Value: fillValue}
		if fillFromSign {
			fill = buf.Get(bitsize - 1)
		}
		if leftward {
			buf.ShiftLeftConst(int(amt), bufpool.LogicBit{Const: true, Value: fillValue})
		} else {
			buf.ShiftRightConst(int(amt), fill)
		}
		return resultBVConst(bitsize, s.logicBufFinish(buf))
	}
	return check, eval
}

// mkBVSymbolicShift builds MK_BV_SHL/LSHR/ASHR: two-argument opcodes
// whose shift amount may itself be a symbolic bit-vector. When both
// operands are constants the shift runs on the logic buffer's
// shift-by-constant operation; when either operand is symbolic (a
// symbolic bit vector shifted by a constant amount included), both are
// materialized as terms and the application is built by the external
// term builder.
func mkBVSymbolicShift(opcode Opcode, name string, rightward, arithmetic bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		s.requireSameBVSize(bitsize, s.coerceToBitsize(firstArg+1), firstArg+1)
		if s.isBVConstant(firstArg) && s.isBVConstant(firstArg+1) {
			_, v := s.coerceToBVConstant(firstArg)
			_, amtBig := s.coerceToBVConstant(firstArg + 1)
			amt := bitsize
			if amtBig.IsInt64() && amtBig.Int64() < int64(bitsize) {
				amt = int(amtBig.Int64())
			}
			buf := s.constToLogicBuf(bitsize, v)
			fill := bufpool.LogicBit{Const: true, Value: false}
			if arithmetic {
				fill = buf.Get(bitsize - 1)
			}
			if rightward {
				buf.ShiftRightConst(amt, fill)
			} else {
				buf.ShiftLeftConst(amt, bufpool.LogicBit{Const: true, Value: false})
			}
			return resultBVConst(bitsize, s.logicBufFinish(buf))
		}
		a := s.coerceToTerm(firstArg)
		b := s.coerceToTerm(firstArg + 1)
		return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(bitsize), a, b))
	}
	return check, eval
}

// MK_BV_ROTATE_{LEFT,RIGHT}(bv, amount): amount in [0, bitsize], equal
// to bitsize is identity rotation (spec.md §4.8).
func mkBVRotate(opcode Opcode, name string, leftward bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		amt := s.coerceToInt32(firstArg + 1)
		if amt < 0 || int(amt) > bitsize {
			fail(ErrBVLogic, s.loc(firstArg+1), opcode, "")
		}
		if !s.isBVConstant(firstArg) {
			h := s.coerceToTerm(firstArg)
			amtTerm := s.tables.IntTerm(big.NewInt(int64(amt)))
			return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(bitsize), h, amtTerm))
		}
		k := int(amt) % bitsize
		if k == 0 {
			_, v := s.coerceToBVConstant(firstArg)
			return resultBVConst(bitsize, v)
		}
		_, v := s.coerceToBVConstant(firstArg)
		buf := s.constToLogicBuf(bitsize, v)
		src := buf.Clone()
		for i := 0; i < bitsize; i++ {
			var from int
			if leftward {
				from = ((i - k) % bitsize + bitsize) % bitsize
			} else {
				from = (i + k) % bitsize
			}
			buf.Set(i, src[from])
		}
		return resultBVConst(bitsize, s.logicBufFinish(buf))
	}
	return check, eval
}

// MK_BV_EXTRACT(high, low, bv). high==size-1 && low==0 is the identity
// extraction of spec.md §4.8 / testable property 8, implemented by
// reusing the argument cell's value directly via cloneCellValue so no
// new buffer or term is ever built for the common case.
func checkMkBVExtract(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_EXTRACT)
	checkSize(s, firstArg, n, exactly(3))
}

func evalMkBVExtract(s *Stack, firstArg, n int) cellResult {
	high := s.coerceToInt32(firstArg)
	low := s.coerceToInt32(firstArg + 1)
	bitsize := s.coerceToBitsize(firstArg + 2)
	if low < 0 || high < low || int(high) >= bitsize {
		fail(ErrBVLogic, s.loc(firstArg), MK_BV_EXTRACT, "")
	}
	if int(high) == bitsize-1 && low == 0 {
		return cloneCellValue(&s.elements[firstArg+2])
	}
	width := int(high-low) + 1
	if s.isBVConstant(firstArg + 2) {
		_, v := s.coerceToBVConstant(firstArg + 2)
		shifted := new(big.Int).Rsh(v, uint(low))
		return resultBVConst(width, shifted)
	}
	h := s.coerceToTerm(firstArg + 2)
	hiTerm := s.tables.IntTerm(big.NewInt(int64(high)))
	loTerm := s.tables.IntTerm(big.NewInt(int64(low)))
	return resultTermCell(s.tables.AppTerm("extract", s.tables.BVType(width), h, hiTerm, loTerm))
}

func checkMkBVConcat(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_CONCAT)
	checkSize(s, firstArg, n, atLeast(1))
}

func evalMkBVConcat(s *Stack, firstArg, n int) cellResult {
	allConst := true
	for i := 0; i < n; i++ {
		if !s.isBVConstant(firstArg + i) {
			allConst = false
			break
		}
	}
	totalSize := 0
	for i := 0; i < n; i++ {
		totalSize += s.coerceToBitsize(firstArg + i)
	}
	if allConst {
		acc := new(big.Int)
		for i := 0; i < n; i++ {
			sz, v := s.coerceToBVConstant(firstArg + i)
			acc.Lsh(acc, uint(sz))
			acc.Or(acc, v)
		}
		return resultBVConst(totalSize, acc)
	}
	args := s.coercedTerms(firstArg, n)
	return resultTermCell(s.tables.AppTerm("concat", s.tables.BVType(totalSize), args...))
}

func checkMkBVRepeat(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_REPEAT)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkBVRepeat(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	k := s.coerceToInt32(firstArg + 1)
	if k <= 0 {
		fail(ErrBVLogic, s.loc(firstArg+1), MK_BV_REPEAT, "")
	}
	totalSize := bitsize * int(k)
	if s.isBVConstant(firstArg) {
		_, v := s.coerceToBVConstant(firstArg)
		acc := new(big.Int)
		for i := int32(0); i < k; i++ {
			acc.Lsh(acc, uint(bitsize))
			acc.Or(acc, v)
		}
		return resultBVConst(totalSize, acc)
	}
	h := s.coerceToTerm(firstArg)
	return resultTermCell(s.tables.AppTerm("repeat", s.tables.BVType(totalSize), h))
}

func mkBVExtend(opcode Opcode, name string, signExtend bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		extra := s.coerceToInt32(firstArg + 1)
		if extra < 0 {
			fail(ErrBVLogic, s.loc(firstArg+1), opcode, "")
		}
		newSize := bitsize + int(extra)
		if s.isBVConstant(firstArg) {
			_, v := s.coerceToBVConstant(firstArg)
			if signExtend && extra > 0 {
				signed := toSigned(bitsize, v)
				return resultBVConst(newSize, signed)
			}
			return resultBVConst(newSize, v)
		}
		h := s.coerceToTerm(firstArg)
		return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(newSize), h))
	}
	return check, eval
}

func checkMkBVRedAnd(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_REDAND)
	checkSize(s, firstArg, n, exactly(1))
}

func evalMkBVRedAnd(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	if s.isBVConstant(firstArg) {
		_, v := s.coerceToBVConstant(firstArg)
		all := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bitsize)), big.NewInt(1))
		if v.Cmp(all) == 0 {
			return resultBVConst(1, big.NewInt(1))
		}
		return resultBVConst(1, big.NewInt(0))
	}
	h := s.coerceToTerm(firstArg)
	return resultTermCell(s.tables.AppTerm("bvredand", s.tables.BVType(1), h))
}

func checkMkBVRedOr(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_REDOR)
	checkSize(s, firstArg, n, exactly(1))
}

func evalMkBVRedOr(s *Stack, firstArg, n int) cellResult {
	if s.isBVConstant(firstArg) {
		_, v := s.coerceToBVConstant(firstArg)
		if v.Sign() != 0 {
			return resultBVConst(1, big.NewInt(1))
		}
		return resultBVConst(1, big.NewInt(0))
	}
	h := s.coerceToTerm(firstArg)
	return resultTermCell(s.tables.AppTerm("bvredor", s.tables.BVType(1), h))
}

func checkMkBVComp(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_COMP)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkBVComp(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	s.requireSameBVSize(bitsize, s.coerceToBitsize(firstArg+1), firstArg+1)
	if s.isBVConstant(firstArg) && s.isBVConstant(firstArg+1) {
		_, a := s.coerceToBVConstant(firstArg)
		_, b := s.coerceToBVConstant(firstArg + 1)
		if a.Cmp(b) == 0 {
			return resultBVConst(1, big.NewInt(1))
		}
		return resultBVConst(1, big.NewInt(0))
	}
	a := s.coerceToTerm(firstArg)
	b := s.coerceToTerm(firstArg + 1)
	return resultTermCell(s.tables.AppTerm("bvcomp", s.tables.BVType(1), a, b))
}
