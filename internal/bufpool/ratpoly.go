package bufpool

import "math/big"

// RatPoly is the rational polynomial accumulator buffer (spec.md §3,
// §4.2). It folds a running sum of rational terms; MK_ADD/MK_MUL
// evaluators on the RATIONAL carrier use it to fold an n-ary argument
// list without allocating an intermediate applicative node per operand.
// Grounded on SnellerInc-sneller/expr's use of *big.Rat for literal
// arithmetic (expr/node.go, expr/math.go) — this module uses the same
// type for the same reason: exact rational values, no float drift.
type RatPoly struct {
	sum *big.Rat
}

func newRatPoly() *RatPoly {
	return &RatPoly{sum: new(big.Rat)}
}

// reset clears the buffer back to the additive identity so it can be
// reused by a later acquirer without reallocating.
func (p *RatPoly) reset() {
	p.sum.SetInt64(0)
}

// AddConstant folds v into the running sum (for MK_ADD-family folding).
func (p *RatPoly) AddConstant(v *big.Rat) {
	p.sum.Add(p.sum, v)
}

// MulConstant folds v into the running product; callers must reset to 1
// first (Seed) when using the buffer for multiplication rather than sum.
func (p *RatPoly) MulConstant(v *big.Rat) {
	p.sum.Mul(p.sum, v)
}

// Seed overwrites the accumulator with an initial value (e.g. 1 for a
// product fold, or the first addend for a sum fold).
func (p *RatPoly) Seed(v *big.Rat) {
	p.sum.Set(v)
}

// Value returns the accumulated rational. The caller does not own the
// returned pointer; copy it before the buffer is recycled.
func (p *RatPoly) Value() *big.Rat { return p.sum }
