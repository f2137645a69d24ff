package tstack

import "github.com/nsimsiri/tstack/internal/bufpool"

// installPredefinedOpcodes registers every opcode of spec.md §4.8 into a
// freshly constructed operator table. It is called once by New; dialect
// packages (spec.md §9, the `dialect` package) call Stack.Register
// afterward to replace individual entries under the same opcode number.
func installPredefinedOpcodes(t *OperatorTable) {
	reg := func(op Opcode, check CheckFunc, eval EvalFunc) { t.Register(op, associativeOpcodes[op], check, eval) }

	// Definitions
	reg(DEFINE_TYPE, checkDefineType, evalDefineType)
	reg(DEFINE_TERM, checkDefineTerm, evalDefineTerm)

	// Scoped binding
	reg(BIND, checkBind, evalBind)
	reg(LET, checkLet, evalLet)
	reg(DECLARE_VAR, checkDeclareVar, evalDeclareVar)
	reg(DECLARE_TYPE_VAR, checkDeclareTypeVar, evalDeclareTypeVar)

	// Type constructors
	reg(MK_BV_TYPE, checkMkBVType, evalMkBVType)
	reg(MK_SCALAR_TYPE, checkMkScalarType, evalMkScalarType)
	reg(MK_TUPLE_TYPE, checkMkTupleType, evalMkTupleType)
	reg(MK_FUN_TYPE, checkMkFunType, evalMkFunType)
	reg(MK_APP_TYPE, checkMkAppType, evalMkAppType)

	// Propositional
	reg(MK_NOT, checkMkNot, evalMkNot)
	c, e := mkBoolFoldOp(MK_OR, "or", false, func(a, v bool) bool { return a || v })
	reg(MK_OR, c, e)
	c, e = mkBoolFoldOp(MK_AND, "and", true, func(a, v bool) bool { return a && v })
	reg(MK_AND, c, e)
	c, e = mkBoolFoldOp(MK_XOR, "xor", false, func(a, v bool) bool { return a != v })
	reg(MK_XOR, c, e)
	reg(MK_IFF, checkMkIff, evalMkIff)
	reg(MK_IMPLIES, checkMkImplies, evalMkImplies)
	reg(MK_ITE, checkMkIte, evalMkIte)
	reg(MK_EQ, checkMkEq, evalMkEq)
	reg(MK_DISEQ, checkMkDiseq, evalMkDiseq)
	reg(MK_DISTINCT, checkMkDistinct, evalMkDistinct)

	// Polymorphic term
	reg(MK_APPLY, checkMkApply, evalMkApply)
	reg(MK_TUPLE, checkMkTuple, evalMkTuple)
	reg(MK_SELECT, checkMkSelect, evalMkSelect)
	reg(MK_TUPLE_UPDATE, checkMkTupleUpdate, evalMkTupleUpdate)
	reg(MK_UPDATE, checkMkUpdate, evalMkUpdate)
	c, e = mkBinderOp(MK_FORALL, "forall", true)
	reg(MK_FORALL, c, e)
	c, e = mkBinderOp(MK_EXISTS, "exists", true)
	reg(MK_EXISTS, c, e)
	c, e = mkBinderOp(MK_LAMBDA, "lambda", false)
	reg(MK_LAMBDA, c, e)

	// Arithmetic
	reg(MK_ADD, checkMkAdd, evalMkAdd)
	reg(MK_SUB, checkMkSub, evalMkSub)
	reg(MK_NEG, checkMkNeg, evalMkNeg)
	reg(MK_MUL, checkMkMul, evalMkMul)
	reg(MK_DIVISION, checkMkDivision, evalMkDivision)
	reg(MK_POW, checkMkPow, evalMkPow)
	c, e = mkRatCmpOp(MK_GE, ">=", func(cmp int) bool { return cmp >= 0 })
	reg(MK_GE, c, e)
	c, e = mkRatCmpOp(MK_GT, ">", func(cmp int) bool { return cmp > 0 })
	reg(MK_GT, c, e)
	c, e = mkRatCmpOp(MK_LE, "<=", func(cmp int) bool { return cmp <= 0 })
	reg(MK_LE, c, e)
	c, e = mkRatCmpOp(MK_LT, "<", func(cmp int) bool { return cmp < 0 })
	reg(MK_LT, c, e)

	// BV arithmetic
	reg(MK_BV_CONST, checkMkBVConst, evalMkBVConst)
	reg(MK_BV_ADD, checkBVArithArity(MK_BV_ADD, atLeast(1)), evalMkBVAdd)
	reg(MK_BV_SUB, checkBVArithArity(MK_BV_SUB, atLeast(2)), evalMkBVSub)
	reg(MK_BV_MUL, checkBVArithArity(MK_BV_MUL, atLeast(1)), evalMkBVMul)
	reg(MK_BV_NEG, checkMkBVNeg, evalMkBVNeg)
	reg(MK_BV_POW, checkMkBVPow, evalMkBVPow)
	c, e = mkBVDivFamily(MK_BV_DIV, "bvudiv", false, bvUDiv)
	reg(MK_BV_DIV, c, e)
	c, e = mkBVDivFamily(MK_BV_REM, "bvurem", false, bvURem)
	reg(MK_BV_REM, c, e)
	c, e = mkBVDivFamily(MK_BV_SDIV, "bvsdiv", true, bvSDiv)
	reg(MK_BV_SDIV, c, e)
	c, e = mkBVDivFamily(MK_BV_SREM, "bvsrem", true, bvSRem)
	reg(MK_BV_SREM, c, e)
	c, e = mkBVDivFamily(MK_BV_SMOD, "bvsmod", true, bvSMod)
	reg(MK_BV_SMOD, c, e)

	// BV logic
	reg(MK_BV_NOT, checkMkBVNot, evalMkBVNot)
	c, e = mkBVBitwiseOp(MK_BV_AND, "bvand", func(acc, o *bufpool.LogicBuf) { acc.AndWith(o) }, false)
	reg(MK_BV_AND, c, e)
	c, e = mkBVBitwiseOp(MK_BV_OR, "bvor", func(acc, o *bufpool.LogicBuf) { acc.OrWith(o) }, false)
	reg(MK_BV_OR, c, e)
	c, e = mkBVBitwiseOp(MK_BV_XOR, "bvxor", func(acc, o *bufpool.LogicBuf) { acc.XorWith(o) }, false)
	reg(MK_BV_XOR, c, e)
	c, e = mkBVBitwiseOp(MK_BV_NAND, "bvnand", func(acc, o *bufpool.LogicBuf) { acc.AndWith(o) }, true)
	reg(MK_BV_NAND, c, e)
	c, e = mkBVBitwiseOp(MK_BV_NOR, "bvnor", func(acc, o *bufpool.LogicBuf) { acc.OrWith(o) }, true)
	reg(MK_BV_NOR, c, e)
	c, e = mkBVBitwiseOp(MK_BV_XNOR, "bvxnor", func(acc, o *bufpool.LogicBuf) { acc.XorWith(o) }, true)
	reg(MK_BV_XNOR, c, e)

	c, e = mkBVConstShift(MK_BV_SHIFT_LEFT0, "bvshl0", true, false, false)
	reg(MK_BV_SHIFT_LEFT0, c, e)
	c, e = mkBVConstShift(MK_BV_SHIFT_LEFT1, "bvshl1", true, false, true)
	reg(MK_BV_SHIFT_LEFT1, c, e)
	c, e = mkBVConstShift(MK_BV_SHIFT_RIGHT0, "bvshr0", false, false, false)
	reg(MK_BV_SHIFT_RIGHT0, c, e)
	c, e = mkBVConstShift(MK_BV_SHIFT_RIGHT1, "bvshr1", false, false, true)
	reg(MK_BV_SHIFT_RIGHT1, c, e)
	c, e = mkBVConstShift(MK_BV_ASHIFT_RIGHT, "bvashr0", false, true, false)
	reg(MK_BV_ASHIFT_RIGHT, c, e)

	c, e = mkBVRotate(MK_BV_ROTATE_LEFT, "bvrotl", true)
	reg(MK_BV_ROTATE_LEFT, c, e)
	c, e = mkBVRotate(MK_BV_ROTATE_RIGHT, "bvrotr", false)
	reg(MK_BV_ROTATE_RIGHT, c, e)

	c, e = mkBVSymbolicShift(MK_BV_SHL, "bvshl", false, false)
	reg(MK_BV_SHL, c, e)
	c, e = mkBVSymbolicShift(MK_BV_LSHR, "bvlshr", true, false)
	reg(MK_BV_LSHR, c, e)
	c, e = mkBVSymbolicShift(MK_BV_ASHR, "bvashr", true, true)
	reg(MK_BV_ASHR, c, e)

	reg(MK_BV_EXTRACT, checkMkBVExtract, evalMkBVExtract)
	reg(MK_BV_CONCAT, checkMkBVConcat, evalMkBVConcat)
	reg(MK_BV_REPEAT, checkMkBVRepeat, evalMkBVRepeat)
	c, e = mkBVExtend(MK_BV_SIGN_EXTEND, "sign_extend", true)
	reg(MK_BV_SIGN_EXTEND, c, e)
	c, e = mkBVExtend(MK_BV_ZERO_EXTEND, "zero_extend", false)
	reg(MK_BV_ZERO_EXTEND, c, e)
	reg(MK_BV_REDAND, checkMkBVRedAnd, evalMkBVRedAnd)
	reg(MK_BV_REDOR, checkMkBVRedOr, evalMkBVRedOr)
	reg(MK_BV_COMP, checkMkBVComp, evalMkBVComp)

	// BV atoms
	c, e = mkBVCmpOp(MK_BV_GE, "bvuge", false, func(cmp int) bool { return cmp >= 0 })
	reg(MK_BV_GE, c, e)
	c, e = mkBVCmpOp(MK_BV_GT, "bvugt", false, func(cmp int) bool { return cmp > 0 })
	reg(MK_BV_GT, c, e)
	c, e = mkBVCmpOp(MK_BV_LE, "bvule", false, func(cmp int) bool { return cmp <= 0 })
	reg(MK_BV_LE, c, e)
	c, e = mkBVCmpOp(MK_BV_LT, "bvult", false, func(cmp int) bool { return cmp < 0 })
	reg(MK_BV_LT, c, e)
	c, e = mkBVCmpOp(MK_BV_SGE, "bvsge", true, func(cmp int) bool { return cmp >= 0 })
	reg(MK_BV_SGE, c, e)
	c, e = mkBVCmpOp(MK_BV_SGT, "bvsgt", true, func(cmp int) bool { return cmp > 0 })
	reg(MK_BV_SGT, c, e)
	c, e = mkBVCmpOp(MK_BV_SLE, "bvsle", true, func(cmp int) bool { return cmp <= 0 })
	reg(MK_BV_SLE, c, e)
	c, e = mkBVCmpOp(MK_BV_SLT, "bvslt", true, func(cmp int) bool { return cmp < 0 })
	reg(MK_BV_SLT, c, e)

	// Extract
	reg(BUILD_TERM, checkBuildTerm, evalBuildTerm)
	reg(BUILD_TYPE, checkBuildType, evalBuildType)
}
