package tstack

import (
	"math/big"
)

// MK_BV_CONST(size, value) builds a bit-vector literal from a compile
// time size and an arbitrary-precision integer value, normalized modulo
// 2^size by resultBVConst (spec.md §4.8).
func checkMkBVConst(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_CONST)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkBVConst(s *Stack, firstArg, n int) cellResult {
	size := s.coerceToInt32(firstArg)
	if size <= 0 {
		fail(ErrNonpositiveBVSize, s.loc(firstArg), MK_BV_CONST, "")
	}
	val := s.coerceToBigInt(firstArg + 1)
	return resultBVConst(int(size), val)
}

// bvConstFold folds args through the pooled bit-vector polynomial
// accumulator (SmallBVPoly for <=64 bits, WideBVPoly otherwise — spec.md
// §4.2) when every argument is a compile-time bit-vector constant of the
// same size, else coerces every argument to a term and builds an
// application under name. isMul selects multiplicative (seed 1) vs
// additive (seed 0) folding.
func (s *Stack) bvConstFold(firstArg, n int, name string, isMul bool) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	allConst := true
	for i := 0; i < n; i++ {
		if !s.isBVConstant(firstArg + i) {
			allConst = false
			break
		}
	}
	if allConst {
		if bitsize <= 64 {
			buf := s.pool.AcquireSmallBVPoly(bitsize)
			seed := uint64(0)
			if isMul {
				seed = 1
			}
			buf.Seed(seed)
			for i := 0; i < n; i++ {
				sz, v := s.coerceToBVConstant(firstArg + i)
				s.requireSameBVSize(bitsize, sz, firstArg+i)
				if isMul {
					buf.Mul(v.Uint64())
				} else {
					buf.Add(v.Uint64())
				}
			}
			result := resultBVConst(bitsize, new(big.Int).SetUint64(buf.Value()))
			s.pool.RecycleSmallBVPoly(buf)
			return result
		}
		buf := s.pool.AcquireWideBVPoly(bitsize)
		seed := big.NewInt(0)
		if isMul {
			seed = big.NewInt(1)
		}
		buf.Seed(seed)
		for i := 0; i < n; i++ {
			sz, v := s.coerceToBVConstant(firstArg + i)
			s.requireSameBVSize(bitsize, sz, firstArg+i)
			if isMul {
				buf.Mul(v)
			} else {
				buf.Add(v)
			}
		}
		result := resultBVConst(bitsize, buf.Value())
		s.pool.RecycleWideBVPoly(buf)
		return result
	}
	args := make([]TermHandle, n)
	for i := 0; i < n; i++ {
		args[i] = s.coerceToTerm(firstArg + i)
		sz := s.coerceToBitsize(firstArg + i)
		s.requireSameBVSize(bitsize, sz, firstArg+i)
	}
	return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(bitsize), args...))
}

func checkBVArithArity(expected Opcode, pred func(int) bool) CheckFunc {
	return func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, expected)
		checkSize(s, firstArg, n, pred)
	}
}

func evalMkBVAdd(s *Stack, firstArg, n int) cellResult {
	return s.bvConstFold(firstArg, n, "bvadd", false)
}

// MK_BV_SUB is non-associative left-fold subtraction, n >= 2 (spec.md
// §4.8 "Associative operators accept a single argument... except
// MK_BV_SUB which demands n >= 2").
func evalMkBVSub(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	allConst := true
	for i := 0; i < n; i++ {
		if !s.isBVConstant(firstArg + i) {
			allConst = false
			break
		}
	}
	if allConst {
		_, acc := s.coerceToBVConstant(firstArg)
		acc = new(big.Int).Set(acc)
		for i := 1; i < n; i++ {
			sz, v := s.coerceToBVConstant(firstArg + i)
			s.requireSameBVSize(bitsize, sz, firstArg+i)
			acc.Sub(acc, v)
		}
		return resultBVConst(bitsize, acc)
	}
	args := s.coercedTerms(firstArg, n)
	for i := range args {
		s.requireSameBVSize(bitsize, s.coerceToBitsize(firstArg+i), firstArg+i)
	}
	return resultTermCell(s.tables.AppTerm("bvsub", s.tables.BVType(bitsize), args...))
}

func evalMkBVMul(s *Stack, firstArg, n int) cellResult {
	return s.bvConstFold(firstArg, n, "bvmul", true)
}

func checkMkBVNeg(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_NEG)
	checkSize(s, firstArg, n, exactly(1))
}

func evalMkBVNeg(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	if s.isBVConstant(firstArg) {
		_, v := s.coerceToBVConstant(firstArg)
		return resultBVConst(bitsize, new(big.Int).Neg(v))
	}
	h := s.coerceToTerm(firstArg)
	return resultTermCell(s.tables.AppTerm("bvneg", s.tables.BVType(bitsize), h))
}

// MK_BV_POW(bv, k): k is a compile-time integer exponent; negative k
// fails NEGATIVE_EXPONENT (spec.md S6).
func checkMkBVPow(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_POW)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkBVPow(s *Stack, firstArg, n int) cellResult {
	bitsize := s.coerceToBitsize(firstArg)
	k := s.coerceToInt32(firstArg + 1)
	if k < 0 {
		fail(ErrNegativeExponent, s.loc(firstArg+1), MK_BV_POW, "")
	}
	if s.isBVConstant(firstArg) {
		_, v := s.coerceToBVConstant(firstArg)
		mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
		acc := new(big.Int).Exp(v, big.NewInt(int64(k)), mod)
		return resultBVConst(bitsize, acc)
	}
	h := s.coerceToTerm(firstArg)
	exp := s.tables.IntTerm(big.NewInt(int64(k)))
	return resultTermCell(s.tables.AppTerm("bvpow", s.tables.BVType(bitsize), h, exp))
}

// mkBVDivFamily builds the check/eval pair for the four two-argument
// bit-vector division opcodes (MK_BV_DIV/REM unsigned, MK_BV_SDIV/SREM/
// SMOD signed). A zero constant divisor fails DIVIDE_BY_ZERO; a
// symbolic divisor is allowed (the application is simply built against
// the external term builder) since, unlike MK_DIVISION's exact
// rational semantics, bit-vector division is already a total function
// over all representable divisors.
func mkBVDivFamily(opcode Opcode, name string, signed bool, combine func(bitsize int, a, b *big.Int) *big.Int) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		s.requireSameBVSize(bitsize, s.coerceToBitsize(firstArg+1), firstArg+1)
		if s.isBVConstant(firstArg) && s.isBVConstant(firstArg+1) {
			_, a := s.coerceToBVConstant(firstArg)
			_, b := s.coerceToBVConstant(firstArg + 1)
			if b.Sign() == 0 {
				fail(ErrDivideByZero, s.loc(firstArg+1), opcode, "")
			}
			return resultBVConst(bitsize, combine(bitsize, a, b))
		}
		ah := s.coerceToTerm(firstArg)
		bh := s.coerceToTerm(firstArg + 1)
		return resultTermCell(s.tables.AppTerm(name, s.tables.BVType(bitsize), ah, bh))
	}
	return check, eval
}

// bvUDiv/bvURem treat a and b as unsigned bitsize-wide values (already
// normalized into [0, 2^bitsize) by coerceToBVConstant).
func bvUDiv(bitsize int, a, b *big.Int) *big.Int {
	return new(big.Int).Quo(a, b)
}

func bvURem(bitsize int, a, b *big.Int) *big.Int {
	return new(big.Int).Rem(a, b)
}

// bvSDiv/bvSRem reinterpret a and b as two's-complement signed values,
// divide/remainder truncating toward zero (matching big.Int.Quo/Rem),
// then renormalize the result into [0, 2^bitsize).
func bvSDiv(bitsize int, a, b *big.Int) *big.Int {
	sa, sb := toSigned(bitsize, a), toSigned(bitsize, b)
	return normMod(bitsize, new(big.Int).Quo(sa, sb))
}

func bvSRem(bitsize int, a, b *big.Int) *big.Int {
	sa, sb := toSigned(bitsize, a), toSigned(bitsize, b)
	return normMod(bitsize, new(big.Int).Rem(sa, sb))
}

// bvSMod follows the divisor's sign rather than the dividend's: the
// SRem result is adjusted by the divisor when their signs disagree.
func bvSMod(bitsize int, a, b *big.Int) *big.Int {
	sa, sb := toSigned(bitsize, a), toSigned(bitsize, b)
	r := new(big.Int).Rem(sa, sb)
	if r.Sign() != 0 && r.Sign() != sb.Sign() {
		r.Add(r, sb)
	}
	return normMod(bitsize, r)
}

// toSigned interprets the normalized unsigned value v (bitsize-wide) as
// a two's-complement signed big.Int.
func toSigned(bitsize int, v *big.Int) *big.Int {
	signBit := new(big.Int).Lsh(big.NewInt(1), uint(bitsize-1))
	if v.Cmp(signBit) < 0 {
		return new(big.Int).Set(v)
	}
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
	return new(big.Int).Sub(v, mod)
}

func normMod(bitsize int, v *big.Int) *big.Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
	r := new(big.Int).Mod(v, mod)
	if r.Sign() < 0 {
		r.Add(r, mod)
	}
	return r
}
