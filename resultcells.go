package tstack

import (
	"math/big"

	"github.com/nsimsiri/tstack/internal/cellpkg"
)

// noResult is what BUILD_TERM/BUILD_TYPE return: spec.md §4.8 "produce
// no replacement cell".
func noResult() cellResult { return cellResult{Tag: cellpkg.NONE} }

// resultBVConst builds a constant bit-vector result cell, BV_SMALL for
// <=64 bits or BV_WIDE otherwise, normalizing value into [0, 2^bitsize).
func resultBVConst(bitsize int, value *big.Int) cellResult {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bitsize))
	v := new(big.Int).Mod(value, mod)
	if v.Sign() < 0 {
		v.Add(v, mod)
	}
	if bitsize <= 64 {
		return cellResult{Tag: cellpkg.BV_SMALL, BVSmallSize: bitsize, BVSmallVal: v.Uint64()}
	}
	return cellResult{Tag: cellpkg.BV_WIDE, BVWideSize: bitsize, BVWideVal: v}
}

// resultTermCell wraps a TermHandle (already interned) as a TERM cell.
func resultTermCell(h TermHandle) cellResult {
	return cellResult{Tag: cellpkg.TERM, TermHandle: h}
}

// resultTypeCell wraps a TypeHandle as a TYPE cell.
func resultTypeCell(h TypeHandle) cellResult {
	return cellResult{Tag: cellpkg.TYPE, TypeHandle: h}
}

// resultBoolTerm folds to a Boolean TERM cell.
func (s *Stack) resultBoolTerm(v bool) cellResult {
	return resultTermCell(s.tables.BoolTerm(v))
}

// cloneCellValue copies idx's value fields into a fresh result cell and,
// if the source cell owned an accumulator buffer, transfers ownership to
// the clone and nils the source's pointer so Evaluate's generic
// argument-release step does not also try to recycle it. Used for
// passthrough evaluators such as identity MK_BV_EXTRACT (spec.md §4.8,
// testable property 8).
func cloneCellValue(c *cellpkg.Cell) cellResult {
	clone := *c
	switch c.Tag {
	case cellpkg.RAT_BUFFER:
		c.RatBuf = nil
	case cellpkg.BV_SMALL_BUFFER:
		c.SmallBVBuf = nil
	case cellpkg.BV_WIDE_BUFFER:
		c.WideBVBuf = nil
	case cellpkg.BV_LOGIC_BUFFER:
		c.LogicBuf = nil
	}
	return clone
}
