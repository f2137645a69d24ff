// Package tstack implements the operator-evaluation stack engine
// described by spec.md: a push-down data structure that incrementally
// accumulates typed literals, symbols, and partially built expressions,
// then applies registered constructors to produce canonical term and
// type handles from an external logical-term table (internal/extern).
//
// The core does not parse anything; a grammar driver calls PushXxx and
// Evaluate in the order dictated by its own recursive descent, exactly
// the split the teacher keeps between internal/parser (drives) and
// internal/vm (executes).
package tstack

import (
	"github.com/nsimsiri/tstack/internal/arena"
	"github.com/nsimsiri/tstack/internal/bufpool"
	"github.com/nsimsiri/tstack/internal/cellpkg"
	"github.com/nsimsiri/tstack/internal/extern"
)

// cellResult is what an EvalFunc hands back to Evaluate's collapse step.
type cellResult = cellpkg.Cell

// DefaultValueArrayCapacity is the initial backing-array size for the
// value array; growCheck grows a full array by about 1.5x, capped at
// maxValueArrayLen (see maxValueArrayLen for the fatal cap).
const DefaultValueArrayCapacity = 64

// maxValueArrayLen is the implementation-defined growth cap of spec.md
// §5 ("Growth of the value array... exceeding the cap is a fatal
// out-of-memory, not a recoverable error"). It is generous enough that
// no well-formed parser session will ever approach it.
const maxValueArrayLen = 1 << 20

// Tables is re-exported so callers do not need to import internal/extern
// directly to construct one.
type Tables = extern.Tables

// NewTables constructs a fresh, process-wide term/type table.
func NewTables() *Tables { return extern.New() }

// TermHandle, TypeHandle, MacroHandle are opaque handles into the
// external term/type tables (spec.md §3).
type TermHandle = extern.TermHandle
type TypeHandle = extern.TypeHandle
type MacroHandle = extern.MacroHandle

// Stack is the operator-evaluation stack engine of spec.md §3.
type Stack struct {
	elements []cellpkg.Cell

	currentFrameIndex int
	currentOpcode     Opcode

	arena *arena.Arena
	pool  *bufpool.Pool

	auxInt []int // resizable scratch for N-ary argument collection

	freshCounter     int
	typeVarCounter   int

	optable *OperatorTable
	tables  *extern.Tables

	resultTerm TermHandle
	resultType TypeHandle
	haveResultTerm bool
	haveResultType bool
}

// New constructs a Stack with the predefined opcode set installed and
// the sentinel OP cell at index 0 (spec.md invariant 1). tables is the
// shared, process-wide term/type table this stack will mutate; capacity
// must be >= the number of predefined opcodes (spec.md §6).
func New(capacity int, tables *extern.Tables) *Stack {
	s := &Stack{
		elements: make([]cellpkg.Cell, 0, DefaultValueArrayCapacity),
		arena:    arena.New(),
		pool:     bufpool.New(),
		optable:  NewOperatorTable(capacity),
		tables:   tables,
	}
	installPredefinedOpcodes(s.optable)
	s.pushSentinel()
	return s
}

// Register installs or replaces the (associative, check, eval) triple
// for opcode, per spec.md §4.3. Dialect packages call this after New to
// install swapped-argument-order variants (spec.md §9).
func (s *Stack) Register(opcode Opcode, associative bool, check CheckFunc, eval EvalFunc) {
	s.optable.Register(opcode, associative, check, eval)
}

// Tables returns the external term/type table this stack mutates.
func (s *Stack) Tables() *extern.Tables { return s.tables }

func (s *Stack) pushSentinel() {
	s.elements = append(s.elements, cellpkg.Cell{
		Tag: cellpkg.OP,
		Op:  cellpkg.OpPayload{Opcode: int(NO_OP), Mult: 0, PrevIdx: -1},
	})
	s.currentFrameIndex = 0
	s.currentOpcode = NO_OP
}

// top returns the index of the topmost cell.
func (s *Stack) top() int { return len(s.elements) - 1 }

func (s *Stack) growCheck() {
	if len(s.elements) >= maxValueArrayLen {
		panic("tstack: value array exceeded its growth cap (fatal, not recoverable)")
	}
	if len(s.elements) == cap(s.elements) {
		newCap := cap(s.elements) + cap(s.elements)/2 + 1
		if newCap > maxValueArrayLen {
			newCap = maxValueArrayLen
		}
		grown := make([]cellpkg.Cell, len(s.elements), newCap)
		copy(grown, s.elements)
		s.elements = grown
	}
}

func (s *Stack) loc(i int) Location {
	l := s.elements[i].Loc
	return Location{Line: l.Line, Column: l.Column}
}

func toCellLoc(l Location) cellpkg.Location {
	return cellpkg.Location{Line: l.Line, Column: l.Column}
}

// Depth reports how many cells are currently on the stack, top()+1.
func (s *Stack) Depth() int { return len(s.elements) }

// ArenaDepth reports the number of open arena scopes, used by tests
// asserting spec.md §8 property 2 (arena/frame parity).
func (s *Stack) ArenaDepth() int { return s.arena.Depth() }

// Reset walks the array top-down freeing owned resources and truncates
// to the sentinel, per spec.md §3 "Lifecycle" and §8 property 7. It is
// mandatory after any error escape (spec.md §4.10) and is also the
// correct way to discard a stack between independent top-level commands.
func (s *Stack) Reset() {
	for i := len(s.elements) - 1; i >= 1; i-- {
		s.releaseCell(&s.elements[i])
	}
	s.elements = s.elements[:0]
	s.arena.Reset()
	s.pool.Reset()
	s.auxInt = s.auxInt[:0]
	s.haveResultTerm = false
	s.haveResultType = false
	s.pushSentinel()
}

// releaseCell frees or recycles whatever the cell owns (spec.md
// invariant 3/4/5): buffers go back to the pool, bindings are removed
// from the name registry. Terms/types/rationals/wide bit-vectors are
// ordinary Go values collected by the GC, so there is nothing to do for
// those beyond dropping the reference.
func (s *Stack) releaseCell(c *cellpkg.Cell) {
	switch c.Tag {
	case cellpkg.RAT_BUFFER:
		s.pool.RecycleRatPoly(c.RatBuf)
	case cellpkg.BV_SMALL_BUFFER:
		s.pool.RecycleSmallBVPoly(c.SmallBVBuf)
	case cellpkg.BV_WIDE_BUFFER:
		s.pool.RecycleWideBVPoly(c.WideBVBuf)
	case cellpkg.BV_LOGIC_BUFFER:
		s.pool.RecycleLogicBuf(c.LogicBuf)
	case cellpkg.TERM_BINDING, cellpkg.TYPE_BINDING:
		if c.BindRestore != nil {
			c.BindRestore()
		}
	}
}

// Delete tears the stack down. Go's garbage collector reclaims the
// value array and arena slab; Delete exists for symmetry with spec.md
// §6's teardown entry point and to make the "no further use" intent
// explicit at call sites.
func (s *Stack) Delete() {
	s.Reset()
	s.elements = nil
	s.optable = nil
}

// ResultTerm returns the handle BUILD_TERM placed into the result slot.
// Valid only after an evaluation whose top-level opcode was BUILD_TERM.
func (s *Stack) ResultTerm() (TermHandle, bool) {
	return s.resultTerm, s.haveResultTerm
}

// ResultType returns the handle BUILD_TYPE placed into the result slot.
// Valid only after an evaluation whose top-level opcode was BUILD_TYPE.
func (s *Stack) ResultType() (TypeHandle, bool) {
	return s.resultType, s.haveResultType
}

// nextTypeVarID returns a small monotonically increasing counter used by
// evaluators that need a unique-within-this-stack integer (e.g. nested
// type-variable creation numbering, spec.md §4 "a counter for nested
// type-variable creation"). Global cross-session uniqueness is handled
// by extern.Tables's uuid-stamped fresh names.
func (s *Stack) nextTypeVarID() int {
	s.typeVarCounter++
	return s.typeVarCounter
}
