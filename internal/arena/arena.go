// Package arena implements the nested-scope string allocator described
// in spec.md §4.1. It is grounded on the teacher's scope-depth watermark
// idiom in internal/vm/compiler_scope.go (beginScope/endScope track a
// depth counter and unwind everything allocated past it) rather than a
// GC-managed arena: PopScope truncates a byte slab back to the mark it
// held when the matching PushScope ran.
package arena

// Arena is a single growable byte slab carved into immutable,
// byte-string allocations. Scopes nest via a stack of watermarks into
// that slab.
type Arena struct {
	data   []byte
	marks  []int // one watermark per open scope
}

// New returns an empty arena with no scopes open.
func New() *Arena {
	return &Arena{data: make([]byte, 0, 256)}
}

// PushScope opens a new scope at the current slab length.
func (a *Arena) PushScope() {
	a.marks = append(a.marks, len(a.data))
}

// PopScope frees every allocation made since the matching PushScope.
// Popping with no scope open is an internal-error condition in the
// caller (the stack engine never does this; see spec.md invariant 2).
func (a *Arena) PopScope() {
	n := len(a.marks)
	mark := a.marks[n-1]
	a.marks = a.marks[:n-1]
	a.data = a.data[:mark]
}

// Depth reports how many scopes are currently open, used by the stack
// engine to check invariant "Arena/frame parity" (spec.md §8 property 2).
func (a *Arena) Depth() int { return len(a.marks) }

// Allocate copies s into the slab and returns a byte slice backed by the
// arena. The slice is only valid until the enclosing scope (or an
// ancestor of it) is popped.
func (a *Arena) Allocate(s string) []byte {
	start := len(a.data)
	a.data = append(a.data, s...)
	return a.data[start:len(a.data):len(a.data)]
}

// AllocateString is a convenience wrapper returning the string form. The
// arena's own byte copy is freed with its scope; the returned string is a
// separate Go copy of those bytes and stays valid after the scope is popped.
func (a *Arena) AllocateString(s string) string {
	return string(a.Allocate(s))
}

// Reset discards every scope and allocation, returning the arena to its
// freshly constructed state (used by Stack.Reset, spec.md §8 property 7).
func (a *Arena) Reset() {
	a.data = a.data[:0]
	a.marks = a.marks[:0]
}
