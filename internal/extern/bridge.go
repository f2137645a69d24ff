// Package extern is the thin adapter boundary described in spec.md §4.8
// (external term/type bridge) and §5 ("the underlying term and type
// tables are shared process-wide infrastructure"). It models
// hash-consing with a plain canonical-string intern map, the same trick
// SnellerInc-sneller/expr uses for its node equality/printing (every
// node prints to a canonical form used for comparison), rather than the
// teacher's persistent HAMT (internal/vm/globals_map.go), which exists
// to give funxy's closures structural sharing across calls — a
// requirement this single-stack, single-session engine does not have.
package extern

import (
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// TermHandle and TypeHandle are opaque integer handles into the term and
// type tables, per spec.md §3 ("TERM / TYPE / MACRO: integer handle").
type TermHandle int32
type TypeHandle int32
type MacroHandle int32

const (
	NoTerm TermHandle = -1
	NoType TypeHandle = -1
)

// TermKind distinguishes the canonical shapes of a built term.
type TermKind int

const (
	TBool TermKind = iota
	TInt
	TRational
	TBVConst
	TUninterpreted // a DEFINE_TERM/DECLARE_VAR symbol with no body
	TApp           // generic n-ary application (MK_APPLY, MK_ADD, MK_ITE, ...)
)

// Term is the canonical node stored in the table. Two Terms with equal
// Key() are the same handle (hash-consed).
type Term struct {
	Kind  TermKind
	Bool  bool
	Int   *big.Int
	Rat   *big.Rat
	BVVal *big.Int // normalized to [0, 2^BVSize)
	BVSize int
	Name  string // uninterpreted / applied head symbol
	Args  []TermHandle
	Type  TypeHandle
}

func (t *Term) key() string {
	switch t.Kind {
	case TBool:
		return fmt.Sprintf("b:%v", t.Bool)
	case TInt:
		return fmt.Sprintf("i:%s", t.Int.String())
	case TRational:
		return fmt.Sprintf("q:%s", t.Rat.RatString())
	case TBVConst:
		return fmt.Sprintf("bv:%d:%s", t.BVSize, t.BVVal.String())
	case TUninterpreted:
		return fmt.Sprintf("u:%s:%d", t.Name, t.Type)
	case TApp:
		s := fmt.Sprintf("a:%s:%d", t.Name, t.Type)
		for _, a := range t.Args {
			s += fmt.Sprintf(",%d", a)
		}
		return s
	}
	return ""
}

// TypeKind distinguishes the canonical shapes of a built type.
type TypeKind int

const (
	KBool TypeKind = iota
	KInt
	KReal
	KBV
	KScalar
	KTuple
	KFun
	KAppType
	KUninterpreted
)

type TypeNode struct {
	Kind    TypeKind
	BVSize  int
	Names   []string      // KScalar
	Elems   []TypeHandle  // KTuple
	Domain  []TypeHandle  // KFun
	Codomain TypeHandle   // KFun
	Macro   MacroHandle   // KAppType
	Args    []TypeHandle  // KAppType
	Name    string        // KUninterpreted
}

func (t *TypeNode) key() string {
	switch t.Kind {
	case KBool:
		return "bool"
	case KInt:
		return "int"
	case KReal:
		return "real"
	case KBV:
		return fmt.Sprintf("bv:%d", t.BVSize)
	case KScalar:
		return fmt.Sprintf("scalar:%v", t.Names)
	case KTuple:
		return fmt.Sprintf("tuple:%v", t.Elems)
	case KFun:
		return fmt.Sprintf("fun:%v->%d", t.Domain, t.Codomain)
	case KAppType:
		return fmt.Sprintf("appt:%d:%v", t.Macro, t.Args)
	case KUninterpreted:
		return fmt.Sprintf("uninterp:%s", t.Name)
	}
	return ""
}

// Tables is the external term/type table plus the name registry the
// stack engine mutates (spec.md §5, §6). It is shared process-wide, so a
// frontend normally constructs one Tables and hands it to each Stack; the
// engine itself never constructs one.
type Tables struct {
	terms     []Term
	termByKey map[string]TermHandle

	types     []TypeNode
	typeByKey map[string]TypeHandle

	macros []string

	termNames map[string]TermHandle
	typeNames map[string]TypeHandle
	macroNames map[string]MacroHandle

	freshCounter int
}

// New constructs an empty, process-wide term/type table with the Bool,
// Int and Real types pre-interned (every frontend needs them immediately).
func New() *Tables {
	tb := &Tables{
		termByKey:  map[string]TermHandle{},
		typeByKey:  map[string]TypeHandle{},
		termNames:  map[string]TermHandle{},
		typeNames:  map[string]TypeHandle{},
		macroNames: map[string]MacroHandle{},
	}
	tb.internType(&TypeNode{Kind: KBool})
	tb.internType(&TypeNode{Kind: KInt})
	tb.internType(&TypeNode{Kind: KReal})
	return tb
}

func (tb *Tables) internTerm(t *Term) TermHandle {
	k := t.key()
	if h, ok := tb.termByKey[k]; ok {
		return h
	}
	h := TermHandle(len(tb.terms))
	tb.terms = append(tb.terms, *t)
	tb.termByKey[k] = h
	return h
}

func (tb *Tables) internType(t *TypeNode) TypeHandle {
	k := t.key()
	if h, ok := tb.typeByKey[k]; ok {
		return h
	}
	h := TypeHandle(len(tb.types))
	tb.types = append(tb.types, *t)
	tb.typeByKey[k] = h
	return h
}

func (tb *Tables) Term(h TermHandle) *Term { return &tb.terms[h] }
func (tb *Tables) Type(h TypeHandle) *TypeNode { return &tb.types[h] }

// Well-known constants and constructors.

func (tb *Tables) BoolTerm(v bool) TermHandle {
	return tb.internTerm(&Term{Kind: TBool, Bool: v, Type: tb.BoolType()})
}

func (tb *Tables) IntTerm(v *big.Int) TermHandle {
	return tb.internTerm(&Term{Kind: TInt, Int: v, Type: tb.IntType()})
}

func (tb *Tables) RationalTerm(v *big.Rat) TermHandle {
	return tb.internTerm(&Term{Kind: TRational, Rat: v, Type: tb.RealType()})
}

func (tb *Tables) BVConstTerm(size int, val *big.Int) TermHandle {
	return tb.internTerm(&Term{Kind: TBVConst, BVSize: size, BVVal: val, Type: tb.BVType(size)})
}

func (tb *Tables) UninterpretedTerm(name string, ty TypeHandle) TermHandle {
	return tb.internTerm(&Term{Kind: TUninterpreted, Name: name, Type: ty})
}

func (tb *Tables) AppTerm(name string, ty TypeHandle, args ...TermHandle) TermHandle {
	return tb.internTerm(&Term{Kind: TApp, Name: name, Type: ty, Args: args})
}

func (tb *Tables) BoolType() TypeHandle { return tb.internType(&TypeNode{Kind: KBool}) }
func (tb *Tables) IntType() TypeHandle  { return tb.internType(&TypeNode{Kind: KInt}) }
func (tb *Tables) RealType() TypeHandle { return tb.internType(&TypeNode{Kind: KReal}) }
func (tb *Tables) BVType(n int) TypeHandle {
	return tb.internType(&TypeNode{Kind: KBV, BVSize: n})
}
func (tb *Tables) ScalarType(names []string) TypeHandle {
	return tb.internType(&TypeNode{Kind: KScalar, Names: names})
}
func (tb *Tables) TupleType(elems []TypeHandle) TypeHandle {
	return tb.internType(&TypeNode{Kind: KTuple, Elems: elems})
}
func (tb *Tables) FunType(domain []TypeHandle, codomain TypeHandle) TypeHandle {
	return tb.internType(&TypeNode{Kind: KFun, Domain: domain, Codomain: codomain})
}
func (tb *Tables) AppType(macro MacroHandle, args []TypeHandle) TypeHandle {
	return tb.internType(&TypeNode{Kind: KAppType, Macro: macro, Args: args})
}
func (tb *Tables) FreshUninterpretedType() TypeHandle {
	tb.freshCounter++
	return tb.internType(&TypeNode{Kind: KUninterpreted, Name: tb.freshName("type")})
}

// FreshUninterpretedTypeNumbered is FreshUninterpretedType with a
// caller-supplied sequence number folded into the name ahead of the
// uuid suffix, so a DECLARE_TYPE_VAR nested several scopes deep prints
// as "$type3_<uuid>" rather than an indistinguishable run of "$type_<uuid>"
// names — the uuid still carries the actual collision-avoidance guarantee.
func (tb *Tables) FreshUninterpretedTypeNumbered(seq int) TypeHandle {
	tb.freshCounter++
	return tb.internType(&TypeNode{Kind: KUninterpreted, Name: tb.freshName(fmt.Sprintf("type%d", seq))})
}

func (tb *Tables) RegisterMacro(name string) MacroHandle {
	h := MacroHandle(len(tb.macros))
	tb.macros = append(tb.macros, name)
	return h
}

// freshName stamps a UUID-derived suffix so internally synthesized names
// (fresh type variables, and the fresh uninterpreted type of a DEFINE_TYPE
// with no explicit type) never collide with a user symbol or
// with a name from a concurrently-driven parser session sharing this same
// process-wide table, per SPEC_FULL.md §11's uuid wiring.
func (tb *Tables) freshName(prefix string) string {
	return fmt.Sprintf("$%s_%s", prefix, uuid.New().String())
}

// Name registry: binding/definition bookkeeping (spec.md §5, §6).
//
// LookupTerm/LookupType/LookupMacro resolve a push-by-name. DefineTerm/
// DefineType/DefineMacro reject a name already bound (REDEF family).
// BindTerm/BindType implement the LIFO shadow/restore a BIND/LET pair
// needs: each displaces any prior mapping and returns a restore closure
// that puts it back (or deletes the name if there was none).

func (tb *Tables) LookupTerm(name string) (TermHandle, bool) {
	h, ok := tb.termNames[name]
	return h, ok
}

func (tb *Tables) LookupType(name string) (TypeHandle, bool) {
	h, ok := tb.typeNames[name]
	return h, ok
}

func (tb *Tables) LookupMacro(name string) (MacroHandle, bool) {
	h, ok := tb.macroNames[name]
	return h, ok
}

func (tb *Tables) DefineTerm(name string, h TermHandle) bool {
	if _, exists := tb.termNames[name]; exists {
		return false
	}
	tb.termNames[name] = h
	return true
}

func (tb *Tables) DefineType(name string, h TypeHandle) bool {
	if _, exists := tb.typeNames[name]; exists {
		return false
	}
	tb.typeNames[name] = h
	return true
}

func (tb *Tables) DefineMacro(name string, h MacroHandle) bool {
	if _, exists := tb.macroNames[name]; exists {
		return false
	}
	tb.macroNames[name] = h
	return true
}

// BindTerm displaces the current mapping for name (if any) and installs
// h in its place. The returned func restores whatever was displaced —
// the caller (the stack engine) invokes it exactly once, when the BIND
// cell is popped, in strict LIFO order with any nested BINDs.
func (tb *Tables) BindTerm(name string, h TermHandle) (restore func()) {
	prev, had := tb.termNames[name]
	tb.termNames[name] = h
	if had {
		return func() { tb.termNames[name] = prev }
	}
	return func() { delete(tb.termNames, name) }
}

func (tb *Tables) BindType(name string, h TypeHandle) (restore func()) {
	prev, had := tb.typeNames[name]
	tb.typeNames[name] = h
	if had {
		return func() { tb.typeNames[name] = prev }
	}
	return func() { delete(tb.typeNames, name) }
}
