package tstack

import "github.com/nsimsiri/tstack/internal/cellpkg"

func checkMkBVType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_BV_TYPE)
	checkSize(s, firstArg, n, exactly(1))
	checkTag(s, firstArg, cellpkg.RATIONAL, ErrNotARational)
}

func evalMkBVType(s *Stack, firstArg, n int) cellResult {
	size := s.coerceToInt32(firstArg)
	if size <= 0 {
		fail(ErrNonpositiveBVSize, s.loc(firstArg), MK_BV_TYPE, "")
	}
	return resultTypeCell(s.tables.BVType(int(size)))
}

func checkMkScalarType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_SCALAR_TYPE)
	checkSize(s, firstArg, n, atLeast(1))
	for i := 0; i < n; i++ {
		checkTag(s, firstArg+i, cellpkg.SYMBOL, ErrNotASymbol)
	}
}

func evalMkScalarType(s *Stack, firstArg, n int) cellResult {
	names := make([]string, n)
	seen := map[string]bool{}
	for i := 0; i < n; i++ {
		name := string(s.elements[firstArg+i].Text)
		if seen[name] {
			fail(ErrDuplicateScalarName, s.loc(firstArg+i), MK_SCALAR_TYPE, name)
		}
		seen[name] = true
		names[i] = name
	}
	return resultTypeCell(s.tables.ScalarType(names))
}

func checkMkTupleType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_TUPLE_TYPE)
	checkSize(s, firstArg, n, atLeast(1))
	for i := 0; i < n; i++ {
		checkTag(s, firstArg+i, cellpkg.TYPE, ErrNotAType)
	}
}

func evalMkTupleType(s *Stack, firstArg, n int) cellResult {
	elems := make([]TypeHandle, n)
	for i := 0; i < n; i++ {
		elems[i] = s.elements[firstArg+i].TypeHandle
	}
	return resultTypeCell(s.tables.TupleType(elems))
}

func checkMkFunType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_FUN_TYPE)
	checkSize(s, firstArg, n, atLeast(2))
	for i := 0; i < n; i++ {
		checkTag(s, firstArg+i, cellpkg.TYPE, ErrNotAType)
	}
}

func evalMkFunType(s *Stack, firstArg, n int) cellResult {
	domain := make([]TypeHandle, n-1)
	for i := 0; i < n-1; i++ {
		domain[i] = s.elements[firstArg+i].TypeHandle
	}
	codomain := s.elements[firstArg+n-1].TypeHandle
	return resultTypeCell(s.tables.FunType(domain, codomain))
}

func checkMkAppType(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_APP_TYPE)
	checkSize(s, firstArg, n, atLeast(1))
	checkTag(s, firstArg, cellpkg.MACRO, ErrInvalidFrame)
	for i := 1; i < n; i++ {
		checkTag(s, firstArg+i, cellpkg.TYPE, ErrNotAType)
	}
}

func evalMkAppType(s *Stack, firstArg, n int) cellResult {
	macro := s.elements[firstArg].MacroHandle
	args := make([]TypeHandle, n-1)
	for i := 1; i < n; i++ {
		args[i-1] = s.elements[firstArg+i].TypeHandle
	}
	return resultTypeCell(s.tables.AppType(macro, args))
}
