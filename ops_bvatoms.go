package tstack

// mkBVCmpOp builds the check/eval pair for the eight BV comparison
// atoms (unsigned GE/GT/LE/LT, signed SGE/SGT/SLE/SLT). signed controls
// whether the constant-fold path reinterprets the normalized value via
// two's complement before comparing.
func mkBVCmpOp(opcode Opcode, name string, signed bool, cmp func(c int) bool) (CheckFunc, EvalFunc) {
	check := func(s *Stack, firstArg, n int) {
		checkOp(s, firstArg, opcode)
		checkSize(s, firstArg, n, exactly(2))
	}
	eval := func(s *Stack, firstArg, n int) cellResult {
		bitsize := s.coerceToBitsize(firstArg)
		s.requireSameBVSize(bitsize, s.coerceToBitsize(firstArg+1), firstArg+1)
		if s.isBVConstant(firstArg) && s.isBVConstant(firstArg+1) {
			_, a := s.coerceToBVConstant(firstArg)
			_, b := s.coerceToBVConstant(firstArg + 1)
			if signed {
				a, b = toSigned(bitsize, a), toSigned(bitsize, b)
			}
			return s.resultBoolTerm(cmp(a.Cmp(b)))
		}
		ah := s.coerceToTerm(firstArg)
		bh := s.coerceToTerm(firstArg + 1)
		return resultTermCell(s.tables.AppTerm(name, s.tables.BoolType(), ah, bh))
	}
	return check, eval
}
