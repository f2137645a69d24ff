package tstack

import (
	"math/big"
	"strings"
	"testing"

	"github.com/nsimsiri/tstack/internal/extern"
)

func loc(line, col int) Location { return Location{Line: line, Column: col} }

func newTestStack() (*Stack, *Tables) {
	tb := NewTables()
	return New(DefaultOperatorTableCapacity, tb), tb
}

// S1: (and true false) evaluates to the Boolean constant false, and
// BUILD_TERM places it into the stack's result slot.
func TestAndFoldsToFalse(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(BUILD_TERM, loc(1, 1))
	s.PushOp(MK_AND, loc(1, 1))
	s.PushBoolConst(true, loc(1, 2))
	s.PushBoolConst(false, loc(1, 3))
	s.Evaluate() // collapses MK_AND -> TERM(false)
	s.Evaluate() // collapses BUILD_TERM -> result slot
	h, ok := s.ResultTerm()
	if !ok {
		t.Fatal("expected BUILD_TERM to populate the result slot")
	}
	term := s.Tables().Term(h)
	if term.Kind != extern.TBool || term.Bool != false {
		t.Fatalf("got %+v, want Bool(false)", term)
	}
}

// Associative fold: a single PushOp(MK_OR) followed by n operands and
// n-1 re-pushes of MK_OR folds via the multiplicity counter, per
// spec.md §4.4 (associative re-push increments Mult instead of opening a
// new frame).
func TestAssociativeFoldMultiplicity(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(MK_OR, loc(1, 1))
	s.PushBoolConst(false, loc(1, 2))
	s.PushOp(MK_OR, loc(1, 1)) // re-push: same opcode, same frame -> Mult++
	s.PushBoolConst(true, loc(1, 3))
	if s.currentFrame().Op.Mult != 1 {
		t.Fatalf("Mult = %d, want 1 after one associative re-push", s.currentFrame().Op.Mult)
	}
	s.Evaluate() // first Evaluate just decrements Mult, no collapse
	if s.currentFrame().Op.Mult != 0 {
		t.Fatalf("Mult = %d, want 0 after first Evaluate", s.currentFrame().Op.Mult)
	}
	s.Evaluate() // second Evaluate collapses the frame
	h := s.coerceToTerm(s.top())
	term := s.Tables().Term(h)
	if term.Kind != extern.TBool || !term.Bool {
		t.Fatalf("got %+v, want Bool(true) (false OR true)", term)
	}
}

// S2: MK_BV_ADD folds two equal-size bit-vector constants to their sum
// modulo 2^bitsize.
func TestBVAddConstFold(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(MK_BV_ADD, loc(1, 1))
	s.PushBVBin("0110", loc(1, 2)) // 6
	s.PushBVBin("0011", loc(1, 3)) // 3
	s.Evaluate()
	bitsize, v := s.coerceToBVConstant(s.top())
	if bitsize != 4 || v.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("got bv%d(%s), want bv4(9)", bitsize, v.String())
	}
}

// Same fold exercised at a width that forces the WideBVPoly accumulator
// rather than SmallBVPoly.
func TestBVAddConstFoldWide(t *testing.T) {
	s, _ := newTestStack()
	hi := make([]byte, 0, 96)
	for i := 0; i < 65; i++ {
		hi = append(hi, '0')
	}
	hi = append(hi, '1') // 66-bit value equal to 1
	s.PushOp(MK_BV_ADD, loc(1, 1))
	s.PushBVBin(string(hi), loc(1, 2))
	s.PushBVBin(string(hi), loc(1, 3))
	s.Evaluate()
	bitsize, v := s.coerceToBVConstant(s.top())
	if bitsize != 66 || v.Cmp(big.NewInt(2)) != 0 {
		t.Fatalf("got bv%d(%s), want bv66(2)", bitsize, v.String())
	}
}

// S3: MK_BV_EXTRACT(size-1, 0, bv) is the identity extraction and must
// return the same underlying value without building a new term.
func TestBVExtractIdentity(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(MK_BV_EXTRACT, loc(1, 1))
	s.PushInt32(7, loc(1, 2))
	s.PushInt32(0, loc(1, 3))
	s.PushBVBin("10110010", loc(1, 4))
	s.Evaluate()
	bitsize, v := s.coerceToBVConstant(s.top())
	if bitsize != 8 || v.Cmp(big.NewInt(0xB2)) != 0 {
		t.Fatalf("got bv%d(%s), want bv8(178)", bitsize, v.String())
	}
}

// S4: MK_BV_ADD with mismatched operand sizes fails INCOMPATIBLE_BVSIZES.
func TestBVAddSizeMismatch(t *testing.T) {
	s, _ := newTestStack()
	anchor := s.InstallUnwindAnchor()
	var err error
	func() {
		defer anchor.Recover(&err)
		s.PushOp(MK_BV_ADD, loc(1, 1))
		s.PushBVBin("0110", loc(1, 2))
		s.PushBVBin("00110", loc(1, 3))
		s.Evaluate()
	}()
	if err == nil {
		t.Fatal("expected INCOMPATIBLE_BVSIZES, got no error")
	}
	se, ok := err.(*StackError)
	if !ok || se.Kind != ErrIncompatibleBVSizes {
		t.Fatalf("got %v, want INCOMPATIBLE_BVSIZES", err)
	}
	s.Reset()
	if s.Depth() != 1 || s.ArenaDepth() != 0 {
		t.Fatalf("after Reset: depth=%d arenaDepth=%d, want 1/0", s.Depth(), s.ArenaDepth())
	}
}

// S5: LET binds a name to a term and the body resolves it; leaving the
// LET's scope removes the binding (UNDEF_TERM afterward), verifying the
// unwind-anchor reset and binding-scope invariants together.
func TestLetScoping(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(LET, loc(1, 1))
	s.PushOp(BIND, loc(1, 2))
	s.PushSymbol("x", loc(1, 2))
	s.PushBoolConst(true, loc(1, 2))
	s.Evaluate() // collapses BIND -> TERM_BINDING cell
	s.PushTermByName("x", loc(1, 3))
	s.Evaluate() // collapses LET -> resolves the body against "x"
	h := s.coerceToTerm(s.top())
	term := s.Tables().Term(h)
	if term.Kind != extern.TBool || !term.Bool {
		t.Fatalf("got %+v, want Bool(true)", term)
	}

	s.Reset()
	anchor := s.InstallUnwindAnchor()
	var err error
	func() {
		defer anchor.Recover(&err)
		s.PushTermByName("x", loc(2, 1))
	}()
	if err == nil {
		t.Fatal("expected UNDEF_TERM once LET's scope has closed, got no error")
	}
	se, ok := err.(*StackError)
	if !ok || se.Kind != ErrUndefTerm {
		t.Fatalf("got %v, want UNDEF_TERM", err)
	}
}

// S6: MK_BV_POW with a negative exponent fails NEGATIVE_EXPONENT.
func TestBVPowNegativeExponent(t *testing.T) {
	s, _ := newTestStack()
	anchor := s.InstallUnwindAnchor()
	var err error
	func() {
		defer anchor.Recover(&err)
		s.PushOp(MK_BV_POW, loc(1, 1))
		s.PushBVBin("0110", loc(1, 2))
		s.PushInt32(-1, loc(1, 3))
		s.Evaluate()
	}()
	se, ok := err.(*StackError)
	if !ok || se.Kind != ErrNegativeExponent {
		t.Fatalf("got %v, want NEGATIVE_EXPONENT", err)
	}
}

// Frame well-formedness + arena/frame parity (spec.md §8 properties 1-2):
// every opened frame increases ArenaDepth by exactly one (except BIND),
// and a matching Evaluate restores it.
func TestArenaFrameParity(t *testing.T) {
	s, _ := newTestStack()
	if s.ArenaDepth() != 0 {
		t.Fatalf("fresh stack ArenaDepth = %d, want 0", s.ArenaDepth())
	}
	s.PushOp(MK_NOT, loc(1, 1))
	if s.ArenaDepth() != 1 {
		t.Fatalf("ArenaDepth after PushOp(MK_NOT) = %d, want 1", s.ArenaDepth())
	}
	s.PushBoolConst(false, loc(1, 2))
	s.Evaluate()
	if s.ArenaDepth() != 0 {
		t.Fatalf("ArenaDepth after Evaluate = %d, want 0", s.ArenaDepth())
	}

	// BIND specifically must not open a scope.
	s.PushOp(BIND, loc(1, 1))
	if s.ArenaDepth() != 0 {
		t.Fatalf("ArenaDepth after PushOp(BIND) = %d, want 0 (BIND does not open a scope)", s.ArenaDepth())
	}
	s.PushSymbol("y", loc(1, 2))
	s.PushBoolConst(true, loc(1, 3))
	s.Evaluate()
	if s.ArenaDepth() != 0 {
		t.Fatalf("ArenaDepth after BIND Evaluate = %d, want 0", s.ArenaDepth())
	}
	// The TERM_BINDING cell is still on the stack; release it to restore
	// the name registry before the test stack is discarded.
	s.releaseCell(&s.elements[s.top()])
}

// Buffer exclusivity (spec.md §8 property 3): a MK_BV_AND fold over
// several constants runs its LogicBuf acquire/recycle cycle through the
// pool and yields the folded constant; the pool slot itself is not
// inspected here.
func TestBufferExclusivityAfterBitwiseFold(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(MK_BV_AND, loc(1, 1))
	s.PushBVBin("1100", loc(1, 2))
	s.PushOp(MK_BV_AND, loc(1, 1))
	s.PushBVBin("1010", loc(1, 3))
	s.PushOp(MK_BV_AND, loc(1, 1))
	s.PushBVBin("1110", loc(1, 4))
	s.Evaluate() // Mult 2 -> 1
	s.Evaluate() // Mult 1 -> 0
	s.Evaluate() // collapses the three-operand MK_BV_AND frame
	bitsize, v := s.coerceToBVConstant(s.top())
	if bitsize != 4 || v.Cmp(big.NewInt(0b1000)) != 0 {
		t.Fatalf("got bv%d(%s), want bv4(8)", bitsize, v.String())
	}
}

// Coercion idempotence (spec.md §8 property 6): coercing the same cell
// to a term twice returns the identical handle and does not re-intern.
func TestCoercionIdempotence(t *testing.T) {
	s, _ := newTestStack()
	s.PushBVBin("101", loc(1, 1))
	idx := s.top()
	h1 := s.coerceToTerm(idx)
	h2 := s.coerceToTerm(idx)
	if h1 != h2 {
		t.Fatalf("coerceToTerm not idempotent: %v != %v", h1, h2)
	}
}

// Name-map parity / reset soundness (spec.md §8 properties 4, 7): Reset
// after an escape undoes every BIND the aborted command installed.
func TestResetUndoesBindings(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(LET, loc(1, 1))
	s.PushOp(BIND, loc(1, 2))
	s.PushSymbol("z", loc(1, 2))
	s.PushBoolConst(true, loc(1, 2))
	s.Evaluate()
	if _, ok := s.Tables().LookupTerm("z"); !ok {
		t.Fatal("expected \"z\" bound mid-LET")
	}
	s.Reset()
	if _, ok := s.Tables().LookupTerm("z"); ok {
		t.Fatal("expected \"z\" unbound after Reset")
	}
}

// DECLARE_VAR round trip through BUILD_TERM.
func TestDeclareVarAndBuildTerm(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(DECLARE_VAR, loc(1, 1))
	s.PushFreeTermName("p", loc(1, 2))
	s.PushPrimitiveType("Bool", loc(1, 3))
	s.Evaluate() // the TERM_BINDING cell stays on the stack, keeping "p" bound

	s.PushOp(BUILD_TERM, loc(2, 1))
	s.PushTermByName("p", loc(2, 1))
	s.Evaluate()
	h, ok := s.ResultTerm()
	if !ok {
		t.Fatal("expected BUILD_TERM to populate the result slot")
	}
	term := s.Tables().Term(h)
	if term.Kind != extern.TUninterpreted || term.Name != "p" {
		t.Fatalf("got %+v, want uninterpreted term named p", term)
	}
	s.releaseCell(&s.elements[s.top()]) // drop the TERM_BINDING, unbinding "p"
}

// MK_FORALL over two distinctly-named bound variables succeeds.
func TestForallDistinctBoundNames(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(MK_FORALL, loc(1, 1))
	s.PushOp(DECLARE_VAR, loc(1, 2))
	s.PushSymbol("x", loc(1, 2))
	s.PushPrimitiveType("Bool", loc(1, 2))
	s.Evaluate() // collapses DECLARE_VAR -> TERM_BINDING(x)
	s.PushOp(DECLARE_VAR, loc(1, 3))
	s.PushSymbol("y", loc(1, 3))
	s.PushPrimitiveType("Bool", loc(1, 3))
	s.Evaluate() // collapses DECLARE_VAR -> TERM_BINDING(y)
	s.PushTermByName("x", loc(1, 4))
	s.Evaluate() // collapses MK_FORALL
	h := s.coerceToTerm(s.top())
	term := s.Tables().Term(h)
	if term.Kind != extern.TApp || term.Name != "forall" || len(term.Args) != 3 {
		t.Fatalf("got %+v, want a 3-arg forall application (x, y, body)", term)
	}
}

// MK_FORALL over two bound variables sharing the same name fails
// DUPLICATE_VAR_NAME rather than silently shadowing the first binding.
func TestForallDuplicateBoundNameFails(t *testing.T) {
	s, _ := newTestStack()
	anchor := s.InstallUnwindAnchor()
	var err error
	func() {
		defer anchor.Recover(&err)
		s.PushOp(MK_FORALL, loc(1, 1))
		s.PushOp(DECLARE_VAR, loc(1, 2))
		s.PushSymbol("x", loc(1, 2))
		s.PushPrimitiveType("Bool", loc(1, 2))
		s.Evaluate() // collapses DECLARE_VAR -> TERM_BINDING(x)
		s.PushOp(DECLARE_VAR, loc(1, 3))
		s.PushSymbol("x", loc(1, 3))
		s.PushPrimitiveType("Bool", loc(1, 3))
		s.Evaluate() // collapses DECLARE_VAR -> TERM_BINDING(x) again
		s.PushTermByName("x", loc(1, 4))
		s.Evaluate() // collapses MK_FORALL -> should fail on the repeated name
	}()
	if err == nil {
		t.Fatal("expected DUPLICATE_VAR_NAME, got no error")
	}
	se, ok := err.(*StackError)
	if !ok || se.Kind != ErrDuplicateVarName {
		t.Fatalf("got %v, want DUPLICATE_VAR_NAME", err)
	}
}

// DECLARE_TYPE_VAR produces a fresh, distinct uninterpreted type each
// time, with the per-stack nested type-variable counter folded into the
// generated name ahead of its uuid suffix.
func TestDeclareTypeVarNumberedNames(t *testing.T) {
	s, _ := newTestStack()
	s.PushOp(DECLARE_TYPE_VAR, loc(1, 1))
	s.PushFreeTypeName("A", loc(1, 2))
	s.Evaluate()
	ha, _ := s.Tables().LookupType("A")

	s.PushOp(DECLARE_TYPE_VAR, loc(2, 1))
	s.PushFreeTypeName("B", loc(2, 2))
	s.Evaluate()
	hb, _ := s.Tables().LookupType("B")

	if ha == hb {
		t.Fatal("two DECLARE_TYPE_VAR evaluations must not share the same fresh type handle")
	}
	nameA := s.Tables().Type(ha).Name
	nameB := s.Tables().Type(hb).Name
	if !strings.HasPrefix(nameA, "$type1_") {
		t.Fatalf("got %q, want a $type1_ prefix from the first nested type-var counter tick", nameA)
	}
	if !strings.HasPrefix(nameB, "$type2_") {
		t.Fatalf("got %q, want a $type2_ prefix from the second nested type-var counter tick", nameB)
	}
}
