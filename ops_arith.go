package tstack

import (
	"math/big"

	"github.com/nsimsiri/tstack/internal/extern"
)

var oneRat = big.NewRat(1, 1)

// ratValue reports the constant rational value of a term built from a
// RATIONAL literal (TInt or TRational kind), or (nil, false) for any
// other (necessarily non-constant) term.
func ratValue(t *extern.Term) (*big.Rat, bool) {
	switch t.Kind {
	case extern.TInt:
		return new(big.Rat).SetInt(t.Int), true
	case extern.TRational:
		return t.Rat, true
	}
	return nil, false
}

// allIntType reports whether every handle names an Int-typed term; used
// to decide whether an arithmetic result should stay Int or widen to
// Real, mirroring how the teacher's value type tracks Int vs Float
// (internal/vm/value.go) without a separate numeric-tower pass.
func (s *Stack) allIntType(args []TermHandle) bool {
	intTy := s.tables.IntType()
	for _, h := range args {
		if s.tables.Term(h).Type != intTy {
			return false
		}
	}
	return true
}

func (s *Stack) numericResult(v *big.Rat, asInt bool) cellResult {
	if asInt {
		return resultTermCell(s.tables.IntTerm(new(big.Int).Set(v.Num())))
	}
	return resultTermCell(s.tables.RationalTerm(new(big.Rat).Set(v)))
}

func checkMkAdd(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_ADD)
	checkSize(s, firstArg, n, atLeast(1))
}

// evalMkAdd folds its constant operands through the pooled rational
// accumulator (spec.md §4.2) rather than a local big.Rat, the same buffer
// discipline MK_BV_AND/OR/XOR apply to LogicBuf.
func evalMkAdd(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	asInt := s.allIntType(args)
	buf := s.pool.AcquireRatPoly()
	allConst := true
	for _, h := range args {
		if r, ok := ratValue(s.tables.Term(h)); ok {
			buf.AddConstant(r)
		} else {
			allConst = false
		}
	}
	if allConst {
		result := s.numericResult(buf.Value(), asInt)
		s.pool.RecycleRatPoly(buf)
		return result
	}
	s.pool.RecycleRatPoly(buf)
	ty := s.tables.RealType()
	if asInt {
		ty = s.tables.IntType()
	}
	return resultTermCell(s.tables.AppTerm("+", ty, args...))
}

// MK_SUB is left-fold subtraction over n >= 2 arguments: a-b-c = (a-b)-c,
// the same non-associative discipline spec.md §4.8 spells out for
// MK_BV_SUB.
func checkMkSub(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_SUB)
	checkSize(s, firstArg, n, atLeast(2))
}

func evalMkSub(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	asInt := s.allIntType(args)
	rats := make([]*big.Rat, n)
	allConst := true
	for i, h := range args {
		r, ok := ratValue(s.tables.Term(h))
		rats[i] = r
		if !ok {
			allConst = false
		}
	}
	if allConst {
		acc := new(big.Rat).Set(rats[0])
		for i := 1; i < n; i++ {
			acc.Sub(acc, rats[i])
		}
		return s.numericResult(acc, asInt)
	}
	ty := s.tables.RealType()
	if asInt {
		ty = s.tables.IntType()
	}
	return resultTermCell(s.tables.AppTerm("-", ty, args...))
}

func checkMkNeg(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_NEG)
	checkSize(s, firstArg, n, exactly(1))
}

func evalMkNeg(s *Stack, firstArg, n int) cellResult {
	h := s.coerceToTerm(firstArg)
	t := s.tables.Term(h)
	if r, ok := ratValue(t); ok {
		return s.numericResult(new(big.Rat).Neg(r), t.Type == s.tables.IntType())
	}
	return resultTermCell(s.tables.AppTerm("-u", t.Type, h))
}

func checkMkMul(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_MUL)
	checkSize(s, firstArg, n, atLeast(1))
}

func evalMkMul(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	asInt := s.allIntType(args)
	buf := s.pool.AcquireRatPoly()
	buf.Seed(oneRat)
	allConst := true
	for _, h := range args {
		if r, ok := ratValue(s.tables.Term(h)); ok {
			buf.MulConstant(r)
		} else {
			allConst = false
		}
	}
	if allConst {
		result := s.numericResult(buf.Value(), asInt)
		s.pool.RecycleRatPoly(buf)
		return result
	}
	s.pool.RecycleRatPoly(buf)
	ty := s.tables.RealType()
	if asInt {
		ty = s.tables.IntType()
	}
	return resultTermCell(s.tables.AppTerm("*", ty, args...))
}

// MK_DIVISION requires a structurally constant divisor (spec.md §7
// NON_CONSTANT_DIVISOR) — real-arithmetic division by a symbolic term is
// not supported by this core, matching the original design note that
// division is otherwise total over a constant, non-zero denominator.
func checkMkDivision(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_DIVISION)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkDivision(s *Stack, firstArg, n int) cellResult {
	num := s.coerceToTerm(firstArg)
	den := s.coerceToTerm(firstArg + 1)
	denT := s.tables.Term(den)
	denR, ok := ratValue(denT)
	if !ok {
		fail(ErrNonConstantDivisor, s.loc(firstArg+1), MK_DIVISION, "")
	}
	if denR.Sign() == 0 {
		fail(ErrDivideByZero, s.loc(firstArg+1), MK_DIVISION, "")
	}
	numT := s.tables.Term(num)
	if numR, ok := ratValue(numT); ok {
		return s.numericResult(new(big.Rat).Quo(numR, denR), false)
	}
	return resultTermCell(s.tables.AppTerm("/", s.tables.RealType(), num, den))
}

// MK_POW(base, k): k must be a non-negative integer constant.
func checkMkPow(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_POW)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkPow(s *Stack, firstArg, n int) cellResult {
	k := s.coerceToInt32(firstArg + 1)
	if k < 0 {
		fail(ErrNegativeExponent, s.loc(firstArg+1), MK_POW, "")
	}
	base := s.coerceToTerm(firstArg)
	baseT := s.tables.Term(base)
	if baseR, ok := ratValue(baseT); ok {
		acc := big.NewRat(1, 1)
		for i := int32(0); i < k; i++ {
			acc.Mul(acc, baseR)
		}
		return s.numericResult(acc, baseT.Type == s.tables.IntType())
	}
	exp := s.tables.IntTerm(big.NewInt(int64(k)))
	return resultTermCell(s.tables.AppTerm("^", baseT.Type, base, exp))
}

func mkRatCmpOp(opcode Opcode, name string, cmp func(c int) bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		a := s.coerceToTerm(firstArg)
		b := s.coerceToTerm(firstArg + 1)
		ar, aok := ratValue(s.tables.Term(a))
		br, bok := ratValue(s.tables.Term(b))
		if aok && bok {
			return s.resultBoolTerm(cmp(ar.Cmp(br)))
		}
		return resultTermCell(s.tables.AppTerm(name, s.tables.BoolType(), a, b))
	}
	return check, eval
}
