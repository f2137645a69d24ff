package cellpkg

import (
	"math/big"
	"testing"

	"github.com/nsimsiri/tstack/internal/bufpool"
)

func TestTagStringKnownAndUnknown(t *testing.T) {
	if OP.String() != "OP" {
		t.Fatalf("got %q, want OP", OP.String())
	}
	unknown := Tag(200)
	if unknown.String() != "TAG#?" {
		t.Fatalf("got %q, want TAG#?", unknown.String())
	}
}

func TestBVBitsizeAcrossCarriers(t *testing.T) {
	small := &Cell{Tag: BV_SMALL, BVSmallSize: 8}
	if sz, ok := small.BVBitsize(); !ok || sz != 8 {
		t.Fatalf("BV_SMALL: got (%d,%v), want (8,true)", sz, ok)
	}

	wide := &Cell{Tag: BV_WIDE, BVWideSize: 128, BVWideVal: big.NewInt(0)}
	if sz, ok := wide.BVBitsize(); !ok || sz != 128 {
		t.Fatalf("BV_WIDE: got (%d,%v), want (128,true)", sz, ok)
	}

	pool := bufpool.New()
	smallBuf := pool.AcquireSmallBVPoly(16)
	bufCell := &Cell{Tag: BV_SMALL_BUFFER, SmallBVBuf: smallBuf}
	if sz, ok := bufCell.BVBitsize(); !ok || sz != 16 {
		t.Fatalf("BV_SMALL_BUFFER: got (%d,%v), want (16,true)", sz, ok)
	}

	wideBuf := pool.AcquireWideBVPoly(96)
	wideBufCell := &Cell{Tag: BV_WIDE_BUFFER, WideBVBuf: wideBuf}
	if sz, ok := wideBufCell.BVBitsize(); !ok || sz != 96 {
		t.Fatalf("BV_WIDE_BUFFER: got (%d,%v), want (96,true)", sz, ok)
	}

	logicBuf := pool.AcquireLogicBuf(4)
	logicCell := &Cell{Tag: BV_LOGIC_BUFFER, LogicBuf: logicBuf}
	if sz, ok := logicCell.BVBitsize(); !ok || sz != 4 {
		t.Fatalf("BV_LOGIC_BUFFER: got (%d,%v), want (4,true)", sz, ok)
	}
}

func TestBVBitsizeFalseForNonBVTags(t *testing.T) {
	c := &Cell{Tag: RATIONAL, Rat: big.NewRat(1, 2)}
	if _, ok := c.BVBitsize(); ok {
		t.Fatal("RATIONAL cell should not report a bit width")
	}
}
