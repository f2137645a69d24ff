package tstack

import (
	"math/big"

	"github.com/nsimsiri/tstack/internal/cellpkg"
	"github.com/nsimsiri/tstack/internal/extern"
)

func bigFromInt32(v int32) *big.Int { return big.NewInt(int64(v)) }

// MK_APPLY(f, args...) applies a function-typed term to its arguments.
// f's type must be MK_FUN_TYPE-shaped; the result carries the function
// type's codomain.
func checkMkApply(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_APPLY)
	checkSize(s, firstArg, n, atLeast(1))
}

func evalMkApply(s *Stack, firstArg, n int) cellResult {
	f := s.coerceToTerm(firstArg)
	fTy := s.tables.Type(s.tables.Term(f).Type)
	if fTy.Kind != extern.KFun {
		fail(ErrInvalidFrame, s.loc(firstArg), MK_APPLY, "")
	}
	args := make([]TermHandle, n)
	args[0] = f
	for i := 1; i < n; i++ {
		args[i] = s.coerceToTerm(firstArg + i)
	}
	return resultTermCell(s.tables.AppTerm("apply", fTy.Codomain, args...))
}

// MK_TUPLE(args...) builds a tuple term whose type is the tuple type of
// its elements' types.
func checkMkTuple(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_TUPLE)
	checkSize(s, firstArg, n, atLeast(1))
}

func evalMkTuple(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	elemTypes := make([]TypeHandle, n)
	for i, h := range args {
		elemTypes[i] = s.tables.Term(h).Type
	}
	ty := s.tables.TupleType(elemTypes)
	return resultTermCell(s.tables.AppTerm("tuple", ty, args...))
}

// MK_SELECT(term, i) projects the i'th (0-based) component of a tuple
// term.
func checkMkSelect(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_SELECT)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkSelect(s *Stack, firstArg, n int) cellResult {
	t := s.coerceToTerm(firstArg)
	i := s.coerceToInt32(firstArg + 1)
	tupleTy := s.tables.Type(s.tables.Term(t).Type)
	if tupleTy.Kind != extern.KTuple || i < 0 || int(i) >= len(tupleTy.Elems) {
		fail(ErrInvalidFrame, s.loc(firstArg+1), MK_SELECT, "")
	}
	idx := s.tables.IntTerm(bigFromInt32(i))
	return resultTermCell(s.tables.AppTerm("select", tupleTy.Elems[i], t, idx))
}

// MK_TUPLE_UPDATE(t, i, v) rebuilds t with its i'th component replaced
// by v, preserving t's tuple type.
func checkMkTupleUpdate(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_TUPLE_UPDATE)
	checkSize(s, firstArg, n, exactly(3))
}

func evalMkTupleUpdate(s *Stack, firstArg, n int) cellResult {
	t := s.coerceToTerm(firstArg)
	i := s.coerceToInt32(firstArg + 1)
	v := s.coerceToTerm(firstArg + 2)
	tupleTy := s.tables.Type(s.tables.Term(t).Type)
	if tupleTy.Kind != extern.KTuple || i < 0 || int(i) >= len(tupleTy.Elems) {
		fail(ErrInvalidFrame, s.loc(firstArg+1), MK_TUPLE_UPDATE, "")
	}
	if s.tables.Term(v).Type != tupleTy.Elems[i] {
		fail(ErrTypeErrorInDefinition, s.loc(firstArg+2), MK_TUPLE_UPDATE, "")
	}
	idx := s.tables.IntTerm(bigFromInt32(i))
	return resultTermCell(s.tables.AppTerm("tupdate", s.tables.Term(t).Type, t, idx, v))
}

// MK_UPDATE(f, args..., v) rebuilds a function-typed term f so that
// f(args...) = v elsewhere unchanged, preserving f's function type.
func checkMkUpdate(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_UPDATE)
	checkSize(s, firstArg, n, atLeast(2))
}

func evalMkUpdate(s *Stack, firstArg, n int) cellResult {
	f := s.coerceToTerm(firstArg)
	fTy := s.tables.Type(s.tables.Term(f).Type)
	if fTy.Kind != extern.KFun {
		fail(ErrInvalidFrame, s.loc(firstArg), MK_UPDATE, "")
	}
	args := make([]TermHandle, n)
	args[0] = f
	for i := 1; i < n; i++ {
		args[i] = s.coerceToTerm(firstArg + i)
	}
	return resultTermCell(s.tables.AppTerm("update", s.tables.Term(f).Type, args...))
}

// mkBinderOp builds the check/eval pair shared by MK_FORALL, MK_EXISTS,
// and MK_LAMBDA: n-1 leading TERM_BINDING cells produced by a nested
// DECLARE_VAR, followed by a body term, the same frame shape LET uses
// (spec.md §4.8 "Scoped binding"). FORALL/EXISTS require a Bool body and
// produce a Bool term; LAMBDA produces a function term from the bound
// variables' types to the body's type.
func mkBinderOp(opcode Opcode, name string, requireBoolBody bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, atLeast(2))
		seen := map[string]bool{}
		for i := 0; i < n-1; i++ {
			checkTag(s, firstArg+i, cellpkg.TERM_BINDING, ErrInvalidFrame)
			boundName := s.elements[firstArg+i].BindName
			if seen[boundName] {
				fail(ErrDuplicateVarName, s.loc(firstArg+i), opcode, boundName)
			}
			seen[boundName] = true
		}
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bodyIdx := firstArg + n - 1
		bound := make([]TermHandle, n-1)
		for i := 0; i < n-1; i++ {
			bound[i] = s.elements[firstArg+i].BindTerm
		}
		body := s.coerceToTerm(bodyIdx)
		if requireBoolBody && s.tables.Term(body).Type != s.tables.BoolType() {
			fail(ErrTypeErrorInDefinition, s.loc(bodyIdx), opcode, "")
		}
		args := append(bound, body)
		ty := s.tables.BoolType()
		if !requireBoolBody {
			domain := make([]TypeHandle, n-1)
			for i, h := range bound {
				domain[i] = s.tables.Term(h).Type
			}
			ty = s.tables.FunType(domain, s.tables.Term(body).Type)
		}
		return resultTermCell(s.tables.AppTerm(name, ty, args...))
	}
	return check, eval
}
