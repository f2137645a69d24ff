package bufpool

import (
	"math/big"
	"testing"
)

func TestRatPolyAcquireRecycleReusesInstance(t *testing.T) {
	p := New()
	b1 := p.AcquireRatPoly()
	b1.Seed(big.NewRat(3, 2))
	p.RecycleRatPoly(b1)
	b2 := p.AcquireRatPoly()
	if b2 != b1 {
		t.Fatal("expected the recycled instance to be reused, not reconstructed")
	}
	if b2.Value().Cmp(new(big.Rat)) != 0 {
		t.Fatalf("reacquired buffer not reset to zero: got %s", b2.Value().String())
	}
}

func TestSmallBVPolyFold(t *testing.T) {
	p := New()
	b := p.AcquireSmallBVPoly(4)
	b.Seed(0)
	b.Add(6)
	b.Add(11) // 6+11=17, mod 16 = 1
	if b.Value() != 1 {
		t.Fatalf("got %d, want 1", b.Value())
	}
	p.RecycleSmallBVPoly(b)
}

func TestWideBVPolyFold(t *testing.T) {
	p := New()
	b := p.AcquireWideBVPoly(100)
	b.Seed(big.NewInt(1))
	b.Mul(big.NewInt(1))
	if b.Value().Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("got %s, want 1", b.Value().String())
	}
	p.RecycleWideBVPoly(b)
}

func TestLogicBufConstantFold(t *testing.T) {
	p := New()
	acc := p.AcquireLogicBuf(4)
	for i := 0; i < 4; i++ {
		acc.Set(i, LogicBit{Const: true, Value: i%2 == 0}) // 0101
	}
	other := p.AcquireLogicBuf(4)
	for i := 0; i < 4; i++ {
		other.Set(i, LogicBit{Const: true, Value: true}) // 1111
	}
	acc.AndWith(other)
	if !acc.IsConstant() {
		t.Fatal("expected a fully constant result")
	}
	if acc.ConstantValue() != 0b0101 {
		t.Fatalf("got %b, want 0101", acc.ConstantValue())
	}
	p.RecycleLogicBuf(acc)
	p.RecycleLogicBuf(other)
}

func TestLogicBufSymbolicBitStaysNonConstant(t *testing.T) {
	p := New()
	acc := p.AcquireLogicBuf(2)
	acc.Set(0, LogicBit{Const: true, Value: true})
	acc.Set(1, LogicBit{Const: false, Sym: 7})
	if acc.IsConstant() {
		t.Fatal("expected a non-constant bit to make the buffer non-constant")
	}
	p.RecycleLogicBuf(acc)
}

// Exclusivity: recycling a buffer returns it to the empty slot only if
// the slot is currently empty, matching spec.md §4.2's "frees it" branch
// when a second instance is already resident (e.g. after Pool.Reset
// forced the slot empty mid-use, simulated here with two live instances).
func TestRecycleDoesNotOverwriteOccupiedSlot(t *testing.T) {
	p := New()
	first := p.AcquireRatPoly()
	p.RecycleRatPoly(first)
	second := p.AcquireRatPoly() // takes the slot back, leaving it empty
	third := &RatPoly{sum: new(big.Rat)}
	p.RecycleRatPoly(third) // slot is empty (second took it) -> third fills it
	p.RecycleRatPoly(second) // slot already occupied by third -> second is dropped
	reacquired := p.AcquireRatPoly()
	if reacquired != third {
		t.Fatal("expected the first successfully recycled instance to win the slot")
	}
}
