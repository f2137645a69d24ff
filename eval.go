package tstack

import "github.com/nsimsiri/tstack/internal/cellpkg"

// Evaluate collapses the current frame, per spec.md §4.5. Two cases:
// an associative fold just decrements the multiplicity counter, or the
// frame is dispatched to its registered check/eval pair and the result
// replaces the whole frame.
func (s *Stack) Evaluate() {
	frameIdx := s.currentFrameIndex
	frame := &s.elements[frameIdx]
	op := Opcode(frame.Op.Opcode)

	if frame.Op.Mult > 0 {
		frame.Op.Mult--
		return
	}

	entry := s.optable.get(op)
	if !entry.valid() {
		fail(ErrOpNotImplemented, s.loc(frameIdx), op, "")
	}

	firstArg := frameIdx + 1
	n := s.top() - frameIdx

	entry.check(s, firstArg, n)
	result := entry.eval(s, firstArg, n)
	s.collapse(frameIdx, result)
}

// collapse implements the invariant-restoring helper of spec.md §4.5:
// pop the arena scope (unless the frame was BIND), free the argument
// cells, replace the OP cell with result (or, for BUILD_TERM/BUILD_TYPE,
// leave no replacement at all — spec.md §4.8 "Extract"), and restore
// current_frame_index/current_opcode from the OP's previous-frame-index.
func (s *Stack) collapse(frameIdx int, result cellpkg.Cell) {
	frame := s.elements[frameIdx]
	if !frame.Op.ArenaBind {
		s.arena.PopScope()
	}
	for i := s.top(); i > frameIdx; i-- {
		s.releaseCell(&s.elements[i])
	}
	s.elements = s.elements[:frameIdx]
	if result.Tag != cellpkg.NONE {
		result.Loc = frame.Loc
		s.elements = append(s.elements, result)
	}
	s.currentFrameIndex = frame.Op.PrevIdx
	s.currentOpcode = Opcode(s.elements[s.currentFrameIndex].Op.Opcode)
}

// --- check combinators (spec.md §4.6) ---

// checkOp verifies the current frame's opcode is exactly expected. A
// mismatch indicates the operator table was misregistered, an
// internal-error-class condition rather than a user-facing one.
func checkOp(s *Stack, firstArg int, expected Opcode) {
	op := Opcode(s.elements[firstArg-1].Op.Opcode)
	if op != expected {
		fail(ErrInternal, s.loc(firstArg-1), op, "")
	}
}

// checkSize verifies n is permitted by pred, else INVALID_FRAME.
func checkSize(s *Stack, firstArg, n int, pred func(int) bool) {
	if !pred(n) {
		op := Opcode(s.elements[firstArg-1].Op.Opcode)
		fail(ErrInvalidFrame, s.loc(firstArg-1), op, "")
	}
}

func exactly(k int) func(int) bool   { return func(n int) bool { return n == k } }
func atLeast(k int) func(int) bool   { return func(n int) bool { return n >= k } }
func between(lo, hi int) func(int) bool { return func(n int) bool { return n >= lo && n <= hi } }

// checkTag verifies the cell at idx carries tag, else the tag-specific
// kind named in spec.md §4.6.
func checkTag(s *Stack, idx int, tag cellpkg.Tag, kind ErrorKind) {
	c := &s.elements[idx]
	if c.Tag != tag {
		op := Opcode(s.currentFrame().Op.Opcode)
		fail(kind, s.loc(idx), op, "")
	}
}
