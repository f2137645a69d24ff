package tstack

import "github.com/nsimsiri/tstack/internal/cellpkg"

// BUILD_TERM(term) / BUILD_TYPE(type) place the final handle into the
// stack's result slot and produce no replacement cell (spec.md §4.8
// "Extract"), mirroring DEFINE_TYPE/DEFINE_TERM's no-result shape.

func checkBuildTerm(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, BUILD_TERM)
	checkSize(s, firstArg, n, exactly(1))
}

func evalBuildTerm(s *Stack, firstArg, n int) cellResult {
	h := s.coerceToTerm(firstArg)
	s.resultTerm = h
	s.haveResultTerm = true
	return noResult()
}

func checkBuildType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, BUILD_TYPE)
	checkSize(s, firstArg, n, exactly(1))
	checkTag(s, firstArg, cellpkg.TYPE, ErrNotAType)
}

func evalBuildType(s *Stack, firstArg, n int) cellResult {
	h := s.elements[firstArg].TypeHandle
	s.resultType = h
	s.haveResultType = true
	return noResult()
}
