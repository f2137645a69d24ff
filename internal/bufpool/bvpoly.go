package bufpool

import "math/big"

// SmallBVPoly is the <=64-bit bit-vector polynomial accumulator
// (spec.md §3, §4.2). Every intermediate value is masked back into
// [0, 2^bitsize) after each fold so the carrier stays normalized, the
// same "normalize after every op" discipline the teacher's Value type
// applies to Int/Float payloads (internal/vm/value.go).
type SmallBVPoly struct {
	bitsize int
	value   uint64
}

func newSmallBVPoly() *SmallBVPoly { return &SmallBVPoly{} }

func (p *SmallBVPoly) reset(bitsize int) {
	p.bitsize = bitsize
	p.value = 0
}

func (p *SmallBVPoly) mask() uint64 {
	if p.bitsize >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(p.bitsize)) - 1
}

// Seed overwrites the accumulator with an initial value, normalized.
func (p *SmallBVPoly) Seed(v uint64) { p.value = v & p.mask() }

// Add folds v into the running sum, modulo 2^bitsize.
func (p *SmallBVPoly) Add(v uint64) { p.value = (p.value + v) & p.mask() }

// Mul folds v into the running product, modulo 2^bitsize.
func (p *SmallBVPoly) Mul(v uint64) { p.value = (p.value * v) & p.mask() }

// Negate replaces the accumulator with its two's-complement negation.
func (p *SmallBVPoly) Negate() { p.value = (-p.value) & p.mask() }

func (p *SmallBVPoly) Bitsize() int  { return p.bitsize }
func (p *SmallBVPoly) Value() uint64 { return p.value }

// WideBVPoly is the >64-bit bit-vector polynomial accumulator, backed by
// math/big the same way RatPoly is (grounded on
// SnellerInc-sneller/expr's *big.Int literal handling).
type WideBVPoly struct {
	bitsize int
	value   *big.Int
	mod     *big.Int
}

func newWideBVPoly() *WideBVPoly { return &WideBVPoly{value: new(big.Int), mod: new(big.Int)} }

func (p *WideBVPoly) reset(bitsize int) {
	p.bitsize = bitsize
	p.mod.Lsh(big.NewInt(1), uint(bitsize))
	p.value.SetInt64(0)
}

func (p *WideBVPoly) normalize() {
	p.value.Mod(p.value, p.mod)
	if p.value.Sign() < 0 {
		p.value.Add(p.value, p.mod)
	}
}

func (p *WideBVPoly) Seed(v *big.Int) { p.value.Set(v); p.normalize() }
func (p *WideBVPoly) Add(v *big.Int)  { p.value.Add(p.value, v); p.normalize() }
func (p *WideBVPoly) Mul(v *big.Int)  { p.value.Mul(p.value, v); p.normalize() }
func (p *WideBVPoly) Negate()         { p.value.Neg(p.value); p.normalize() }

func (p *WideBVPoly) Bitsize() int     { return p.bitsize }
func (p *WideBVPoly) Value() *big.Int  { return new(big.Int).Set(p.value) }
