// Package bufpool implements the recyclable accumulator buffers of
// spec.md §3 / §4.2: one pooled instance of each kind, lazily
// constructed, either sitting in the pool slot or owned exclusively by a
// stack cell. Acquiring from an empty slot constructs another instance,
// so a caller that holds two buffers of one kind at once (the bitwise
// fold does) has two live until it recycles them; the slot then keeps
// one and the other is dropped. Grounded on the "give to stack / return to
// pool" Option-of-object pattern spec.md §9 prescribes; the nearest
// teacher precedent is the single-slot reuse the debugger's breakpoint
// set enforces in internal/vm/debugger.go, generalized here to four
// independent slots.
package bufpool

// Pool holds at most one instance of each of the four accumulator kinds.
// A nil slot means either it was never constructed, or a stack cell
// currently owns the instance.
type Pool struct {
	rat   *RatPoly
	small *SmallBVPoly
	wide  *WideBVPoly
	logic *LogicBuf
}

// New returns an empty pool; buffers are constructed lazily on first
// acquisition.
func New() *Pool { return &Pool{} }

// AcquireRatPoly returns the pooled rational buffer (constructing it on
// first use), cleared to zero, and leaves the pool slot empty until
// RecycleRatPoly is called.
func (p *Pool) AcquireRatPoly() *RatPoly {
	var b *RatPoly
	if p.rat != nil {
		b, p.rat = p.rat, nil
	} else {
		b = newRatPoly()
	}
	b.reset()
	return b
}

// RecycleRatPoly returns b to the pool if the slot is empty, else frees
// it (spec.md §4.2 "recycle(b) returns b to the pool if the slot is
// empty, else frees it" — "frees" here just means drop the reference and
// let the garbage collector reclaim it, there being no owner pointer
// that needs resetting beyond that).
func (p *Pool) RecycleRatPoly(b *RatPoly) {
	if p.rat == nil {
		p.rat = b
	}
}

func (p *Pool) AcquireSmallBVPoly(bitsize int) *SmallBVPoly {
	var b *SmallBVPoly
	if p.small != nil {
		b, p.small = p.small, nil
	} else {
		b = newSmallBVPoly()
	}
	b.reset(bitsize)
	return b
}

func (p *Pool) RecycleSmallBVPoly(b *SmallBVPoly) {
	if p.small == nil {
		p.small = b
	}
}

func (p *Pool) AcquireWideBVPoly(bitsize int) *WideBVPoly {
	var b *WideBVPoly
	if p.wide != nil {
		b, p.wide = p.wide, nil
	} else {
		b = newWideBVPoly()
	}
	b.reset(bitsize)
	return b
}

func (p *Pool) RecycleWideBVPoly(b *WideBVPoly) {
	if p.wide == nil {
		p.wide = b
	}
}

func (p *Pool) AcquireLogicBuf(bitsize int) *LogicBuf {
	var b *LogicBuf
	if p.logic != nil {
		b, p.logic = p.logic, nil
	} else {
		b = newLogicBuf()
	}
	b.reset(bitsize)
	return b
}

func (p *Pool) RecycleLogicBuf(b *LogicBuf) {
	if p.logic == nil {
		p.logic = b
	}
}

// Reset drops every pooled buffer (used by Stack.Reset when a buffer was
// owned by a cell at the moment of an error escape: the cell is
// discarded without a matching Recycle call, so the slot must be forced
// empty rather than leaked as "still acquired").
func (p *Pool) Reset() {
	p.rat = nil
	p.small = nil
	p.wide = nil
	p.logic = nil
}
