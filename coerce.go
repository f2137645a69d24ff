package tstack

import (
	"math/big"

	"github.com/nsimsiri/tstack/internal/cellpkg"
	"github.com/nsimsiri/tstack/internal/extern"
)

// coerceToTerm implements spec.md §4.7 "to term". It materializes
// whatever carrier sits at idx into a TERM handle; if the cell owned an
// accumulator buffer, the buffer is recycled and the cell is rewritten
// in place to TERM so the generic release in collapse does not also try
// to recycle it (the "do not leak accumulator buffers" rule of §4.7).
func (s *Stack) coerceToTerm(idx int) TermHandle {
	c := &s.elements[idx]
	switch c.Tag {
	case cellpkg.TERM:
		return c.TermHandle
	case cellpkg.SYMBOL:
		name := string(c.Text)
		h, ok := s.tables.LookupTerm(name)
		if !ok {
			fail(ErrUndefTerm, s.loc(idx), s.currentOpcode, name)
		}
		return h
	case cellpkg.RATIONAL:
		h := s.rationalTerm(c.Rat)
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	case cellpkg.BV_SMALL:
		h := s.tables.BVConstTerm(c.BVSmallSize, new(big.Int).SetUint64(c.BVSmallVal))
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	case cellpkg.BV_WIDE:
		h := s.tables.BVConstTerm(c.BVWideSize, c.BVWideVal)
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	case cellpkg.RAT_BUFFER:
		h := s.rationalTerm(c.RatBuf.Value())
		s.pool.RecycleRatPoly(c.RatBuf)
		c.RatBuf = nil
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	case cellpkg.BV_SMALL_BUFFER:
		h := s.tables.BVConstTerm(c.SmallBVBuf.Bitsize(), new(big.Int).SetUint64(c.SmallBVBuf.Value()))
		s.pool.RecycleSmallBVPoly(c.SmallBVBuf)
		c.SmallBVBuf = nil
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	case cellpkg.BV_WIDE_BUFFER:
		h := s.tables.BVConstTerm(c.WideBVBuf.Bitsize(), c.WideBVBuf.Value())
		s.pool.RecycleWideBVPoly(c.WideBVBuf)
		c.WideBVBuf = nil
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	case cellpkg.BV_LOGIC_BUFFER:
		if !c.LogicBuf.IsConstant() {
			fail(ErrBVArith, s.loc(idx), s.currentOpcode, "")
		}
		h := s.tables.BVConstTerm(c.LogicBuf.Bitsize(), new(big.Int).SetUint64(c.LogicBuf.ConstantValue()))
		s.pool.RecycleLogicBuf(c.LogicBuf)
		c.LogicBuf = nil
		c.Tag = cellpkg.TERM
		c.TermHandle = h
		return h
	}
	fail(ErrBVArith, s.loc(idx), s.currentOpcode, "")
	return extern.NoTerm
}

func (s *Stack) rationalTerm(r *big.Rat) TermHandle {
	if r.IsInt() {
		return s.tables.IntTerm(new(big.Int).Set(r.Num()))
	}
	return s.tables.RationalTerm(new(big.Rat).Set(r))
}

// coerceToInt32 implements spec.md §4.7 "to integer".
func (s *Stack) coerceToInt32(idx int) int32 {
	c := &s.elements[idx]
	if c.Tag != cellpkg.RATIONAL {
		fail(ErrNotARational, s.loc(idx), s.currentOpcode, "")
	}
	if !c.Rat.IsInt() {
		fail(ErrNotAnInteger, s.loc(idx), s.currentOpcode, "")
	}
	n := c.Rat.Num()
	if !n.IsInt64() {
		fail(ErrIntegerOverflow, s.loc(idx), s.currentOpcode, "")
	}
	v := n.Int64()
	if v < -(1<<31) || v > (1<<31)-1 {
		fail(ErrIntegerOverflow, s.loc(idx), s.currentOpcode, "")
	}
	return int32(v)
}

// coerceToBigInt requires a RATIONAL cell with unit denominator and
// returns its value with no range limit (used where the spec calls for
// an arbitrary-precision integer argument, e.g. MK_BV_CONST's value).
func (s *Stack) coerceToBigInt(idx int) *big.Int {
	c := &s.elements[idx]
	if c.Tag != cellpkg.RATIONAL {
		fail(ErrNotARational, s.loc(idx), s.currentOpcode, "")
	}
	if !c.Rat.IsInt() {
		fail(ErrNotAnInteger, s.loc(idx), s.currentOpcode, "")
	}
	return new(big.Int).Set(c.Rat.Num())
}

// coerceToBitsize implements spec.md §4.7 "to bitsize".
func (s *Stack) coerceToBitsize(idx int) int {
	c := &s.elements[idx]
	if n, ok := c.BVBitsize(); ok {
		return n
	}
	if c.Tag == cellpkg.TERM {
		ty := s.tables.Type(s.tables.Term(c.TermHandle).Type)
		if ty.Kind == extern.KBV {
			return ty.BVSize
		}
	}
	fail(ErrBVArith, s.loc(idx), s.currentOpcode, "")
	return 0
}

// coerceToBVConstant implements spec.md §4.7 "to bit-vector constant":
// succeeds when the cell is structurally constant (literal BV, constant
// term, normalized constant polynomial, or constant logic buffer).
func (s *Stack) coerceToBVConstant(idx int) (bitsize int, value *big.Int) {
	c := &s.elements[idx]
	switch c.Tag {
	case cellpkg.BV_SMALL:
		return c.BVSmallSize, new(big.Int).SetUint64(c.BVSmallVal)
	case cellpkg.BV_WIDE:
		return c.BVWideSize, new(big.Int).Set(c.BVWideVal)
	case cellpkg.BV_SMALL_BUFFER:
		return c.SmallBVBuf.Bitsize(), new(big.Int).SetUint64(c.SmallBVBuf.Value())
	case cellpkg.BV_WIDE_BUFFER:
		return c.WideBVBuf.Bitsize(), c.WideBVBuf.Value()
	case cellpkg.BV_LOGIC_BUFFER:
		if c.LogicBuf.IsConstant() {
			return c.LogicBuf.Bitsize(), new(big.Int).SetUint64(c.LogicBuf.ConstantValue())
		}
	case cellpkg.TERM:
		t := s.tables.Term(c.TermHandle)
		if t.Kind == extern.TBVConst {
			return t.BVSize, new(big.Int).Set(t.BVVal)
		}
	}
	fail(ErrInvalidBVConstant, s.loc(idx), s.currentOpcode, "")
	return 0, nil
}

// isBVConstant reports coerceToBVConstant's applicability without
// panicking, for evaluators that branch on "both operands constant".
func (s *Stack) isBVConstant(idx int) bool {
	c := &s.elements[idx]
	switch c.Tag {
	case cellpkg.BV_SMALL, cellpkg.BV_WIDE, cellpkg.BV_SMALL_BUFFER, cellpkg.BV_WIDE_BUFFER:
		return true
	case cellpkg.BV_LOGIC_BUFFER:
		return c.LogicBuf.IsConstant()
	case cellpkg.TERM:
		return s.tables.Term(c.TermHandle).Kind == extern.TBVConst
	}
	return false
}

// requireSameBVSize enforces spec.md §4.7 "preserve bitsize or raise
// INCOMPATIBLE_BVSIZES" — loc reports the second operand's location per
// spec.md S4 / §9's error-location rule.
func (s *Stack) requireSameBVSize(a, b int, locIdx int) {
	if a != b {
		fail(ErrIncompatibleBVSizes, s.loc(locIdx), s.currentOpcode, "")
	}
}
