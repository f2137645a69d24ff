package dialect

import (
	"testing"

	"github.com/nsimsiri/tstack"
	"github.com/nsimsiri/tstack/internal/extern"
)

func loc(line, col int) tstack.Location { return tstack.Location{Line: line, Column: col} }

func newTestStack() *tstack.Stack {
	tb := tstack.NewTables()
	s := tstack.New(tstack.DefaultOperatorTableCapacity, tb)
	RegisterSMTLIB1(s)
	return s
}

// MK_BV_CONST under SMT-LIB 1.2 order spells (value, size) instead of the
// core's (size, value).
func TestBVConstSwappedOrder(t *testing.T) {
	s := newTestStack()
	s.PushOp(tstack.MK_BV_CONST, loc(1, 1))
	s.PushInt32(6, loc(1, 2))  // value first
	s.PushInt32(4, loc(1, 3))  // size second
	s.Evaluate()
	bitsize, v := s.CoerceBVConstant(s.Depth() - 1)
	if bitsize != 4 || v.Int64() != 6 {
		t.Fatalf("got bv%d(%s), want bv4(6)", bitsize, v.String())
	}
}

// MK_BV_ROTATE_LEFT under SMT-LIB 1.2 order spells (amount, bv).
func TestRotateLeftSwappedOrder(t *testing.T) {
	s := newTestStack()
	s.PushOp(tstack.MK_BV_ROTATE_LEFT, loc(1, 1))
	s.PushInt32(1, loc(1, 2))      // amount first
	s.PushBVBin("1000", loc(1, 3)) // bv second
	s.Evaluate()
	bitsize, v := s.CoerceBVConstant(s.Depth() - 1)
	if bitsize != 4 || v.Int64() != 1 {
		t.Fatalf("got bv%d(%s), want bv4(1) (rotl(1000,1))", bitsize, v.String())
	}
}

// MK_BV_REPEAT under SMT-LIB 1.2 order spells (k, bv).
func TestRepeatSwappedOrder(t *testing.T) {
	s := newTestStack()
	s.PushOp(tstack.MK_BV_REPEAT, loc(1, 1))
	s.PushInt32(2, loc(1, 2)) // k first
	s.PushBVBin("10", loc(1, 3))
	s.Evaluate()
	bitsize, v := s.CoerceBVConstant(s.Depth() - 1)
	if bitsize != 4 || v.Int64() != 0b1010 {
		t.Fatalf("got bv%d(%s), want bv4(10) (repeat(10,2))", bitsize, v.String())
	}
}

// MK_BV_SIGN_EXTEND under SMT-LIB 1.2 order spells (extra, bv).
func TestSignExtendSwappedOrder(t *testing.T) {
	s := newTestStack()
	s.PushOp(tstack.MK_BV_SIGN_EXTEND, loc(1, 1))
	s.PushInt32(4, loc(1, 2)) // extra bits first
	s.PushBVBin("1010", loc(1, 3))
	s.Evaluate()
	bitsize, v := s.CoerceBVConstant(s.Depth() - 1)
	if bitsize != 8 || v.Int64() != 0b11111010 {
		t.Fatalf("got bv%d(%s), want bv8(250) (sign-extended 1010)", bitsize, v.String())
	}
}

// MK_EQ is generalized to n >= 2 arguments, folding to true when every
// argument names the same hash-consed handle.
func TestEqN(t *testing.T) {
	s := newTestStack()
	s.PushOp(tstack.MK_EQ, loc(1, 1))
	s.PushBoolConst(true, loc(1, 2))
	s.PushBoolConst(true, loc(1, 3))
	s.PushBoolConst(true, loc(1, 4))
	s.Evaluate()
	h := s.CoerceTerm(s.Depth() - 1)
	term := s.Tables().Term(h)
	if term.Kind != extern.TBool || !term.Bool {
		t.Fatalf("got %+v, want Bool(true)", term)
	}
}

// MK_EQ folds to false when two ground constants among n >= 2 disagree.
func TestEqNFalse(t *testing.T) {
	s := newTestStack()
	s.PushOp(tstack.MK_EQ, loc(1, 1))
	s.PushBoolConst(true, loc(1, 2))
	s.PushBoolConst(true, loc(1, 3))
	s.PushBoolConst(false, loc(1, 4))
	s.Evaluate()
	h := s.CoerceTerm(s.Depth() - 1)
	term := s.Tables().Term(h)
	if term.Kind != extern.TBool || term.Bool {
		t.Fatalf("got %+v, want Bool(false)", term)
	}
}

