// Package cellpkg defines the heterogeneous value cell of spec.md §3: a
// tagged sum carrying one of ~15 semantic variants plus a source
// location. Grounded on the teacher's stack-allocated tagged union,
// internal/vm/value.go's Value{Type, Data, Obj} — this module follows
// the same "small fixed struct with a discriminant field" shape rather
// than an interface, for the same reason the teacher gives (value cells
// are the hottest allocation in the engine; avoiding one Object
// allocation per push matters exactly as much here as it does in a
// bytecode VM's operand stack).
package cellpkg

import (
	"math/big"

	"github.com/nsimsiri/tstack/internal/bufpool"
	"github.com/nsimsiri/tstack/internal/extern"
)

type Tag uint8

const (
	NONE Tag = iota
	OP
	SYMBOL
	STRING
	BV_SMALL
	BV_WIDE
	RATIONAL
	TERM
	TYPE
	MACRO
	RAT_BUFFER
	BV_SMALL_BUFFER
	BV_WIDE_BUFFER
	BV_LOGIC_BUFFER
	TERM_BINDING
	TYPE_BINDING
)

var tagNames = [...]string{
	"NONE", "OP", "SYMBOL", "STRING", "BV_SMALL", "BV_WIDE", "RATIONAL",
	"TERM", "TYPE", "MACRO", "RAT_BUFFER", "BV_SMALL_BUFFER",
	"BV_WIDE_BUFFER", "BV_LOGIC_BUFFER", "TERM_BINDING", "TYPE_BINDING",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "TAG#?"
}

// Location mirrors the top-level Location the public package reports in
// errors; duplicated here (rather than imported) to keep this package
// import-free of the root package and avoid a cycle, since the root
// package imports cellpkg.
type Location struct {
	Line   int
	Column int
}

// OpPayload is the OP-tag payload: (opcode, multiplicity, previous-frame
// index), spec.md §3.
type OpPayload struct {
	Opcode   int
	Mult     int
	PrevIdx  int
	ArenaBind bool // true for BIND: this frame did not open an arena scope
}

// Cell is one entry of the stack's value array.
type Cell struct {
	Tag Tag
	Loc Location

	// OP
	Op OpPayload

	// SYMBOL / STRING — arena-owned bytes (see internal/arena)
	Text []byte

	// BV_SMALL
	BVSmallSize int
	BVSmallVal  uint64

	// BV_WIDE
	BVWideSize int
	BVWideVal  *big.Int

	// RATIONAL
	Rat *big.Rat

	// TERM / TYPE / MACRO
	TermHandle  extern.TermHandle
	TypeHandle  extern.TypeHandle
	MacroHandle extern.MacroHandle

	// RAT_BUFFER / BV_SMALL_BUFFER / BV_WIDE_BUFFER / BV_LOGIC_BUFFER
	RatBuf      *bufpool.RatPoly
	SmallBVBuf  *bufpool.SmallBVPoly
	WideBVBuf   *bufpool.WideBVPoly
	LogicBuf    *bufpool.LogicBuf

	// TERM_BINDING / TYPE_BINDING
	BindName    string
	BindTerm    extern.TermHandle
	BindType    extern.TypeHandle
	BindRestore func() // LIFO restore thunk from extern.Tables.Bind{Term,Type}
}

// BVBitsize returns the bit width of a cell interpretable as a bit
// vector of any carrier, or (0, false) otherwise — the "to bitsize"
// coercion groundwork of spec.md §4.7 (the full coercion, including TERM
// lookups, lives in the root package since it needs the Tables).
func (c *Cell) BVBitsize() (int, bool) {
	switch c.Tag {
	case BV_SMALL:
		return c.BVSmallSize, true
	case BV_WIDE:
		return c.BVWideSize, true
	case BV_SMALL_BUFFER:
		return c.SmallBVBuf.Bitsize(), true
	case BV_WIDE_BUFFER:
		return c.WideBVBuf.Bitsize(), true
	case BV_LOGIC_BUFFER:
		return c.LogicBuf.Bitsize(), true
	}
	return 0, false
}
