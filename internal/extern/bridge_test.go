package extern

import (
	"math/big"
	"testing"
)

func TestInterningReturnsSameHandleForEqualTerms(t *testing.T) {
	tb := New()
	a := tb.IntTerm(big.NewInt(42))
	b := tb.IntTerm(big.NewInt(42))
	if a != b {
		t.Fatalf("equal Int terms got distinct handles %d and %d", a, b)
	}
	c := tb.IntTerm(big.NewInt(43))
	if a == c {
		t.Fatal("distinct Int terms collapsed to the same handle")
	}
}

func TestInterningDistinguishesKindsWithSameKey(t *testing.T) {
	tb := New()
	bvTerm := tb.BVConstTerm(8, big.NewInt(5))
	intTerm := tb.IntTerm(big.NewInt(5))
	if bvTerm == intTerm {
		t.Fatal("a bitvector constant and an int constant of the same numeric value collapsed")
	}
}

func TestAppTermInterningByArgsAndName(t *testing.T) {
	tb := New()
	x := tb.UninterpretedTerm("x", tb.IntType())
	y := tb.UninterpretedTerm("y", tb.IntType())
	a := tb.AppTerm("+", tb.IntType(), x, y)
	b := tb.AppTerm("+", tb.IntType(), x, y)
	if a != b {
		t.Fatal("identical applications did not hash-cons to the same handle")
	}
	c := tb.AppTerm("+", tb.IntType(), y, x)
	if a == c {
		t.Fatal("argument order must be significant for app-term interning")
	}
}

func TestTypeInterningSharesPrimitiveHandles(t *testing.T) {
	tb := New()
	if tb.BoolType() != tb.BoolType() {
		t.Fatal("BoolType should be stable across calls")
	}
	bv1 := tb.BVType(32)
	bv2 := tb.BVType(32)
	if bv1 != bv2 {
		t.Fatal("equal-width BVType calls should intern to the same handle")
	}
	if tb.BVType(32) == tb.BVType(64) {
		t.Fatal("distinct-width BVType calls must not collapse")
	}
}

func TestDefineTermRejectsRedefinition(t *testing.T) {
	tb := New()
	h := tb.BoolTerm(true)
	if !tb.DefineTerm("p", h) {
		t.Fatal("first DefineTerm for a fresh name should succeed")
	}
	if tb.DefineTerm("p", tb.BoolTerm(false)) {
		t.Fatal("DefineTerm should reject a name already bound")
	}
	got, ok := tb.LookupTerm("p")
	if !ok || got != h {
		t.Fatalf("LookupTerm(p) = (%d, %v), want (%d, true) — rejected redefinition must not clobber", got, ok, h)
	}
}

func TestBindTermRestoresPriorBindingLIFO(t *testing.T) {
	tb := New()
	outer := tb.IntTerm(big.NewInt(1))
	tb.DefineTerm("x", outer)

	innerRestore := tb.BindTerm("x", tb.IntTerm(big.NewInt(2)))
	got, _ := tb.LookupTerm("x")
	if got != tb.IntTerm(big.NewInt(2)) {
		t.Fatal("BindTerm did not shadow the outer binding")
	}

	innermostRestore := tb.BindTerm("x", tb.IntTerm(big.NewInt(3)))
	got, _ = tb.LookupTerm("x")
	if got != tb.IntTerm(big.NewInt(3)) {
		t.Fatal("nested BindTerm did not shadow the middle binding")
	}

	innermostRestore()
	got, _ = tb.LookupTerm("x")
	if got != tb.IntTerm(big.NewInt(2)) {
		t.Fatal("restoring the innermost bind should reveal the middle binding")
	}

	innerRestore()
	got, ok := tb.LookupTerm("x")
	if !ok || got != outer {
		t.Fatal("restoring the outer bind should reveal the original binding")
	}
}

func TestBindTermWithNoPriorBindingDeletesOnRestore(t *testing.T) {
	tb := New()
	restore := tb.BindTerm("fresh", tb.IntTerm(big.NewInt(7)))
	if _, ok := tb.LookupTerm("fresh"); !ok {
		t.Fatal("BindTerm should install the name")
	}
	restore()
	if _, ok := tb.LookupTerm("fresh"); ok {
		t.Fatal("restoring a bind with no prior binding should delete the name entirely")
	}
}

func TestFreshNamesAreUnique(t *testing.T) {
	tb := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		h := tb.FreshUninterpretedType()
		name := tb.Type(h).Name
		if seen[name] {
			t.Fatalf("duplicate fresh name %q", name)
		}
		seen[name] = true
	}
}

func TestRegisterMacroAndDefineMacro(t *testing.T) {
	tb := New()
	m := tb.RegisterMacro("list")
	if !tb.DefineMacro("List", m) {
		t.Fatal("first DefineMacro for a fresh name should succeed")
	}
	if tb.DefineMacro("List", tb.RegisterMacro("other")) {
		t.Fatal("DefineMacro should reject a name already bound")
	}
	got, ok := tb.LookupMacro("List")
	if !ok || got != m {
		t.Fatalf("LookupMacro(List) = (%d, %v), want (%d, true)", got, ok, m)
	}
}
