package tstack

import "github.com/nsimsiri/tstack/internal/extern"

// coercedTerms coerces args[firstArg, firstArg+n) to TERM handles.
func (s *Stack) coercedTerms(firstArg, n int) []TermHandle {
	out := make([]TermHandle, n)
	for i := 0; i < n; i++ {
		out[i] = s.coerceToTerm(firstArg + i)
	}
	return out
}

// foldBool folds args that are Boolean constants with combine, starting
// from identity; returns (folded value, allConstant). Non-constant
// arguments are skipped by the fold and reported via allConstant=false
// so the caller knows it must build an application term instead.
func (s *Stack) foldBool(args []TermHandle, identity bool, combine func(acc, v bool) bool) (bool, bool) {
	acc := identity
	allConst := true
	for _, h := range args {
		t := s.tables.Term(h)
		if t.Kind == extern.TBool {
			acc = combine(acc, t.Bool)
		} else {
			allConst = false
		}
	}
	return acc, allConst
}

func checkMkNot(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_NOT)
	checkSize(s, firstArg, n, exactly(1))
}

func evalMkNot(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	t := s.tables.Term(args[0])
	if t.Kind == extern.TBool {
		return s.resultBoolTerm(!t.Bool)
	}
	return resultTermCell(s.tables.AppTerm("not", s.tables.BoolType(), args[0]))
}

func mkBoolFoldOp(opcode Opcode, name string, identity bool, combine func(acc, v bool) bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, atLeast(1))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		args := s.coercedTerms(firstArg, n)
		v, allConst := s.foldBool(args, identity, combine)
		if allConst {
			return s.resultBoolTerm(v)
		}
		return resultTermCell(s.tables.AppTerm(name, s.tables.BoolType(), args...))
	}
	return check, eval
}

func checkMkIff(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_IFF)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkIff(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	a, b := s.tables.Term(args[0]), s.tables.Term(args[1])
	if a.Kind == extern.TBool && b.Kind == extern.TBool {
		return s.resultBoolTerm(a.Bool == b.Bool)
	}
	return resultTermCell(s.tables.AppTerm("iff", s.tables.BoolType(), args...))
}

func checkMkImplies(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_IMPLIES)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkImplies(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	a, b := s.tables.Term(args[0]), s.tables.Term(args[1])
	if a.Kind == extern.TBool && b.Kind == extern.TBool {
		return s.resultBoolTerm(!a.Bool || b.Bool)
	}
	return resultTermCell(s.tables.AppTerm("implies", s.tables.BoolType(), args...))
}

func checkMkIte(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_ITE)
	checkSize(s, firstArg, n, exactly(3))
}

func evalMkIte(s *Stack, firstArg, n int) cellResult {
	condH := s.coerceToTerm(firstArg)
	thenH := s.coerceToTerm(firstArg + 1)
	elseH := s.coerceToTerm(firstArg + 2)
	cond := s.tables.Term(condH)
	thenT := s.tables.Term(thenH)
	elseT := s.tables.Term(elseH)
	if thenT.Type != elseT.Type {
		fail(ErrTypeErrorInDefinition, s.loc(firstArg+2), MK_ITE, "")
	}
	if cond.Kind == extern.TBool {
		if cond.Bool {
			return resultTermCell(thenH)
		}
		return resultTermCell(elseH)
	}
	return resultTermCell(s.tables.AppTerm("ite", thenT.Type, condH, thenH, elseH))
}

func checkMkEq(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_EQ)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkEq(s *Stack, firstArg, n int) cellResult {
	a := s.coerceToTerm(firstArg)
	b := s.coerceToTerm(firstArg + 1)
	return resultTermCell(s.eqTerm(a, b))
}

// eqTerm builds the equality term for a and b, folding to a Boolean
// constant whenever both sides are the same hash-consed handle (always
// equal) or both are distinct ground constants (always unequal).
func (s *Stack) eqTerm(a, b TermHandle) TermHandle {
	if a == b {
		return s.tables.BoolTerm(true)
	}
	ta, tb := s.tables.Term(a), s.tables.Term(b)
	if isGroundConstant(ta.Kind) && isGroundConstant(tb.Kind) {
		return s.tables.BoolTerm(false)
	}
	return s.tables.AppTerm("=", s.tables.BoolType(), a, b)
}

func isGroundConstant(k extern.TermKind) bool {
	switch k {
	case extern.TBool, extern.TInt, extern.TRational, extern.TBVConst:
		return true
	}
	return false
}

func checkMkDiseq(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_DISEQ)
	checkSize(s, firstArg, n, exactly(2))
}

func evalMkDiseq(s *Stack, firstArg, n int) cellResult {
	a := s.coerceToTerm(firstArg)
	b := s.coerceToTerm(firstArg + 1)
	eq := s.tables.Term(s.eqTerm(a, b))
	if eq.Kind == extern.TBool {
		return s.resultBoolTerm(!eq.Bool)
	}
	return resultTermCell(s.tables.AppTerm("distinct2", s.tables.BoolType(), a, b))
}

func checkMkDistinct(s *Stack, firstArg, n int) {
	checkOp(s, firstArg, MK_DISTINCT)
	checkSize(s, firstArg, n, atLeast(2))
}

func evalMkDistinct(s *Stack, firstArg, n int) cellResult {
	args := s.coercedTerms(firstArg, n)
	allGround := true
	for _, h := range args {
		if !isGroundConstant(s.tables.Term(h).Kind) {
			allGround = false
			break
		}
	}
	if allGround {
		seen := map[TermHandle]bool{}
		for _, h := range args {
			if seen[h] {
				return s.resultBoolTerm(false)
			}
			seen[h] = true
		}
		return s.resultBoolTerm(true)
	}
	return resultTermCell(s.tables.AppTerm("distinct", s.tables.BoolType(), args...))
}
