package tstack

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/nsimsiri/tstack/internal/cellpkg"
)

// currentFrame returns a pointer to the innermost OP cell.
func (s *Stack) currentFrame() *cellpkg.Cell {
	return &s.elements[s.currentFrameIndex]
}

// openFrame appends an OP cell for opcode at loc, chains it behind the
// current frame, and — unless opcode is BIND — opens a fresh arena
// scope, per spec.md §4.4 step 2 and the BIND/LET asymmetry of §3
// invariant 6 / §9 "Binder scope asymmetry".
func (s *Stack) openFrame(opcode Opcode, loc Location) {
	s.growCheck()
	prev := s.currentFrameIndex
	s.elements = append(s.elements, cellpkg.Cell{
		Tag: cellpkg.OP,
		Loc: toCellLoc(loc),
		Op:  cellpkg.OpPayload{Opcode: int(opcode), Mult: 0, PrevIdx: prev, ArenaBind: opcode == BIND},
	})
	s.currentFrameIndex = s.top()
	s.currentOpcode = opcode
	if opcode != BIND {
		s.arena.PushScope()
	}
}

// PushOp pushes operator opcode at loc (spec.md §4.4).
func (s *Stack) PushOp(opcode Opcode, loc Location) {
	if !s.optable.Valid(opcode) {
		fail(ErrInvalidOp, loc, opcode, "")
	}
	entry := s.optable.get(opcode)
	if entry.assoc && s.currentOpcode == opcode {
		s.currentFrame().Op.Mult++
		return
	}
	s.openFrame(opcode, loc)
}

func (s *Stack) pushLeaf(c cellpkg.Cell) {
	s.growCheck()
	s.elements = append(s.elements, c)
}

// PushString pushes a STRING leaf, arena-owned.
func (s *Stack) PushString(text string, loc Location) {
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.STRING, Loc: toCellLoc(loc), Text: s.arena.Allocate(text)})
}

// PushSymbol pushes a bare SYMBOL leaf (not resolved against any table;
// used where the grammar already knows the cell must stay a symbol, e.g.
// BIND's name argument).
func (s *Stack) PushSymbol(name string, loc Location) {
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.SYMBOL, Loc: toCellLoc(loc), Text: s.arena.Allocate(name)})
}

// PushRational parses text as a decimal integer or an "n/d" fraction and
// pushes a RATIONAL leaf. Fails RATIONAL_FORMAT on malformed text,
// DIVIDE_BY_ZERO when d is zero.
func (s *Stack) PushRational(text string, loc Location) {
	r := new(big.Rat)
	if idx := strings.IndexByte(text, '/'); idx >= 0 {
		num, den := text[:idx], text[idx+1:]
		n, ok1 := new(big.Int).SetString(num, 10)
		d, ok2 := new(big.Int).SetString(den, 10)
		if !ok1 || !ok2 {
			fail(ErrRationalFormat, loc, NO_OP, text)
		}
		if d.Sign() == 0 {
			fail(ErrDivideByZero, loc, NO_OP, text)
		}
		r.SetFrac(n, d)
	} else {
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			fail(ErrRationalFormat, loc, NO_OP, text)
		}
		r.SetInt(n)
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.RATIONAL, Loc: toCellLoc(loc), Rat: r})
}

// PushFloat parses a decimal-point literal such as "3.25" into an exact
// rational and pushes a RATIONAL leaf (the engine has no separate float
// carrier; spec.md §3 lists RATIONAL as the one arbitrary-precision
// numeric carrier, and a float literal is just another way to spell one).
func (s *Stack) PushFloat(text string, loc Location) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		fail(ErrFloatFormat, loc, NO_OP, text)
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.RATIONAL, Loc: toCellLoc(loc), Rat: r})
}

// PushBVBin parses a string of '0'/'1' characters (most-significant bit
// first) into a bit-vector constant leaf, BV_SMALL for <=64 bits or
// BV_WIDE otherwise. Fails BVBIN_FORMAT on any other character or an
// empty string.
func (s *Stack) PushBVBin(digits string, loc Location) {
	if len(digits) == 0 {
		fail(ErrBVBinFormat, loc, NO_OP, digits)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] != '0' && digits[i] != '1' {
			fail(ErrBVBinFormat, loc, NO_OP, digits)
		}
	}
	size := len(digits)
	if size <= 64 {
		v, err := strconv.ParseUint(digits, 2, 64)
		if err != nil {
			fail(ErrBVBinFormat, loc, NO_OP, digits)
		}
		s.pushLeaf(cellpkg.Cell{Tag: cellpkg.BV_SMALL, Loc: toCellLoc(loc), BVSmallSize: size, BVSmallVal: v})
		return
	}
	v := new(big.Int)
	v.SetString(digits, 2)
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.BV_WIDE, Loc: toCellLoc(loc), BVWideSize: size, BVWideVal: v})
}

// PushBVHex parses a hex-digit string into a bit-vector constant leaf
// with bitsize = 4*len(digits), per spec.md §9's documented open
// question: callers wanting a non-multiple-of-four width must pre-pad,
// the hex parser itself does not enforce it.
func (s *Stack) PushBVHex(digits string, loc Location) {
	if len(digits) == 0 {
		fail(ErrBVHexFormat, loc, NO_OP, digits)
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		fail(ErrBVHexFormat, loc, NO_OP, digits)
	}
	size := 4 * len(digits)
	if size <= 64 {
		s.pushLeaf(cellpkg.Cell{Tag: cellpkg.BV_SMALL, Loc: toCellLoc(loc), BVSmallSize: size, BVSmallVal: v.Uint64()})
		return
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.BV_WIDE, Loc: toCellLoc(loc), BVWideSize: size, BVWideVal: v})
}

// PushBoolConst pushes a pre-built TERM cell denoting true or false.
func (s *Stack) PushBoolConst(v bool, loc Location) {
	h := s.tables.BoolTerm(v)
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.TERM, Loc: toCellLoc(loc), TermHandle: h})
}

// PushInt32 pushes a 32-bit integer as a RATIONAL leaf (an integer is a
// degenerate rational with denominator 1).
func (s *Stack) PushInt32(v int32, loc Location) {
	r := new(big.Rat).SetInt64(int64(v))
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.RATIONAL, Loc: toCellLoc(loc), Rat: r})
}

// PushPrimitiveType pushes a pre-built TYPE cell for "Bool", "Int", or
// "Real". Any other name is an internal-error-class misuse by the
// caller (the grammar is expected to only ever spell these three).
func (s *Stack) PushPrimitiveType(name string, loc Location) {
	var h TypeHandle
	switch name {
	case "Bool":
		h = s.tables.BoolType()
	case "Int":
		h = s.tables.IntType()
	case "Real":
		h = s.tables.RealType()
	default:
		fail(ErrInternal, loc, NO_OP, name)
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.TYPE, Loc: toCellLoc(loc), TypeHandle: h})
}

// PushTerm pushes a pre-built TERM handle leaf.
func (s *Stack) PushTerm(h TermHandle, loc Location) {
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.TERM, Loc: toCellLoc(loc), TermHandle: h})
}

// PushType pushes a pre-built TYPE handle leaf.
func (s *Stack) PushType(h TypeHandle, loc Location) {
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.TYPE, Loc: toCellLoc(loc), TypeHandle: h})
}

// PushMacro pushes a pre-built MACRO handle leaf.
func (s *Stack) PushMacro(h MacroHandle, loc Location) {
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.MACRO, Loc: toCellLoc(loc), MacroHandle: h})
}

// PushTermByName resolves name against the external term table and
// pushes the bound TERM handle, or fails UNDEF_TERM.
func (s *Stack) PushTermByName(name string, loc Location) {
	h, ok := s.tables.LookupTerm(name)
	if !ok {
		fail(ErrUndefTerm, loc, NO_OP, name)
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.TERM, Loc: toCellLoc(loc), TermHandle: h})
}

// PushTypeByName resolves name against the external type table and
// pushes the bound TYPE handle, or fails UNDEF_TYPE.
func (s *Stack) PushTypeByName(name string, loc Location) {
	h, ok := s.tables.LookupType(name)
	if !ok {
		fail(ErrUndefType, loc, NO_OP, name)
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.TYPE, Loc: toCellLoc(loc), TypeHandle: h})
}

// PushMacroByName resolves name against the external macro table and
// pushes the bound MACRO handle, or fails UNDEF_MACRO.
func (s *Stack) PushMacroByName(name string, loc Location) {
	h, ok := s.tables.LookupMacro(name)
	if !ok {
		fail(ErrUndefMacro, loc, NO_OP, name)
	}
	s.pushLeaf(cellpkg.Cell{Tag: cellpkg.MACRO, Loc: toCellLoc(loc), MacroHandle: h})
}

// PushFreeTypeName checks name is not already bound as a type, then
// pushes it as a SYMBOL leaf for DEFINE_TYPE/DECLARE_TYPE_VAR to consume.
// Fails TYPENAME_REDEF if the name collides.
func (s *Stack) PushFreeTypeName(name string, loc Location) {
	if _, exists := s.tables.LookupType(name); exists {
		fail(ErrTypeNameRedef, loc, NO_OP, name)
	}
	s.PushSymbol(name, loc)
}

// PushFreeTermName checks name is not already bound as a term, then
// pushes it as a SYMBOL leaf for DEFINE_TERM/DECLARE_VAR to consume.
// Fails TERMNAME_REDEF if the name collides.
func (s *Stack) PushFreeTermName(name string, loc Location) {
	if _, exists := s.tables.LookupTerm(name); exists {
		fail(ErrTermNameRedef, loc, NO_OP, name)
	}
	s.PushSymbol(name, loc)
}

// PushFreeMacroName checks name is not already bound as a macro, then
// pushes it as a SYMBOL leaf. Fails MACRO_REDEF if the name collides.
func (s *Stack) PushFreeMacroName(name string, loc Location) {
	if _, exists := s.tables.LookupMacro(name); exists {
		fail(ErrMacroRedef, loc, NO_OP, name)
	}
	s.PushSymbol(name, loc)
}
