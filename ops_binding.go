package tstack

import "github.com/nsimsiri/tstack/internal/cellpkg"

// BIND(name, term) / LET(binding..., body) / DECLARE_VAR(name, type) /
// DECLARE_TYPE_VAR(name) — spec.md's "Scoped binding" family. BIND does
// not open an arena scope (handled by Stack.openFrame's ArenaBind flag);
// its symbol must stay valid in the enclosing LET's scope (spec.md §3
// invariant 6, §9 "Binder scope asymmetry").

func checkBind(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, BIND)
	checkSize(s, firstArg, n, exactly(2))
	checkTag(s, firstArg, cellpkg.SYMBOL, ErrNotASymbol)
}

func evalBind(s *Stack, firstArg, n int) cellResult {
	name := string(s.elements[firstArg].Text)
	th := s.coerceToTerm(firstArg + 1)
	restore := s.tables.BindTerm(name, th)
	return cellResult{Tag: cellpkg.TERM_BINDING, BindName: name, BindTerm: th, BindRestore: restore}
}

func checkLet(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, LET)
	checkSize(s, firstArg, n, atLeast(1))
	for i := 0; i < n-1; i++ {
		checkTag(s, firstArg+i, cellpkg.TERM_BINDING, ErrInvalidFrame)
	}
}

func evalLet(s *Stack, firstArg, n int) cellResult {
	bodyIdx := firstArg + n - 1
	th := s.coerceToTerm(bodyIdx)
	return resultTermCell(th)
}

func checkDeclareVar(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, DECLARE_VAR)
	checkSize(s, firstArg, n, exactly(2))
	checkTag(s, firstArg, cellpkg.SYMBOL, ErrNotASymbol)
	checkTag(s, firstArg+1, cellpkg.TYPE, ErrNotAType)
}

func evalDeclareVar(s *Stack, firstArg, n int) cellResult {
	name := string(s.elements[firstArg].Text)
	ty := s.elements[firstArg+1].TypeHandle
	th := s.tables.UninterpretedTerm(name, ty)
	restore := s.tables.BindTerm(name, th)
	return cellResult{Tag: cellpkg.TERM_BINDING, BindName: name, BindTerm: th, BindRestore: restore}
}

func checkDeclareTypeVar(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, DECLARE_TYPE_VAR)
	checkSize(s, firstArg, n, exactly(1))
	checkTag(s, firstArg, cellpkg.SYMBOL, ErrNotASymbol)
}

func evalDeclareTypeVar(s *Stack, firstArg, n int) cellResult {
	name := string(s.elements[firstArg].Text)
	ty := s.tables.FreshUninterpretedTypeNumbered(s.nextTypeVarID())
	restore := s.tables.BindType(name, ty)
	return cellResult{Tag: cellpkg.TYPE_BINDING, BindName: name, BindType: ty, BindRestore: restore}
}
