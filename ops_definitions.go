package tstack

import "github.com/nsimsiri/tstack/internal/cellpkg"

// DEFINE_TYPE(name [, type]) and DEFINE_TERM(name, type [, term]) bind a
// name in the external tables and produce no value for further
// composition — spec.md §4.8 describes them as "no result", so they
// share BUILD_TERM/BUILD_TYPE's no-replacement mechanism (§4.5) rather
// than leaving a placeholder cell; a top-level command built around one
// of these opcodes is never nested inside a larger expression.

func checkDefineType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, DEFINE_TYPE)
	checkSize(s, firstArg, n, between(1, 2))
	checkTag(s, firstArg, cellpkg.SYMBOL, ErrNotASymbol)
	if n == 2 {
		checkTag(s, firstArg+1, cellpkg.TYPE, ErrNotAType)
	}
}

func evalDefineType(s *Stack, firstArg, n int) cellResult {
	name := string(s.elements[firstArg].Text)
	var h TypeHandle
	if n == 2 {
		h = s.elements[firstArg+1].TypeHandle
	} else {
		h = s.tables.FreshUninterpretedType()
	}
	if !s.tables.DefineType(name, h) {
		fail(ErrTypeNameRedef, s.loc(firstArg), DEFINE_TYPE, name)
	}
	return noResult()
}

func checkDefineTerm(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, DEFINE_TERM)
	checkSize(s, firstArg, n, between(2, 3))
	checkTag(s, firstArg, cellpkg.SYMBOL, ErrNotASymbol)
	checkTag(s, firstArg+1, cellpkg.TYPE, ErrNotAType)
}

func evalDefineTerm(s *Stack, firstArg, n int) cellResult {
	name := string(s.elements[firstArg].Text)
	ty := s.elements[firstArg+1].TypeHandle
	var h TermHandle
	if n == 3 {
		h = s.coerceToTerm(firstArg + 2)
		if s.tables.Term(h).Type != ty {
			fail(ErrTypeErrorInDefinition, s.loc(firstArg+2), DEFINE_TERM, name)
		}
	} else {
		h = s.tables.UninterpretedTerm(name, ty)
	}
	if !s.tables.DefineTerm(name, h) {
		fail(ErrTermNameRedef, s.loc(firstArg), DEFINE_TERM, name)
	}
	return noResult()
}
