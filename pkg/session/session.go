// Package session groups the two mutable globals the resolver core
// needs: the monotone invalid-object counter and the
// symbol-table collaborator those symbols are registered into. Both are
// explicit fields of a Session value threaded through every call —
// never package-level state. A new Session always starts its counter at
// zero; it offers no seeding and no locking of its own.
package session

import (
	"fmt"

	"symderef/pkg/expr"
)

// SymbolTable is the out-of-core collaborator that outlives the resolver
// and records every fresh symbol so later passes (and the SMT backend)
// can see it. A caller not interested in registration may pass nil.
type SymbolTable interface {
	Register(name string, t expr.Type)
}

// Session is the explicit state the resolver would otherwise keep in
// package globals. One Session may be shared across many top-level
// Rewrite calls; only the Guard Stack is scoped to a single call.
type Session struct {
	counter uint64
	symtab  SymbolTable
}

// New builds a Session registering fresh symbols into symtab (nil is
// permitted: registration is then a no-op).
func New(symtab SymbolTable) *Session {
	return &Session{symtab: symtab}
}

// DynamicPrefix marks a symbol name as naming a dynamic (heap)
// allocation.
const DynamicPrefix = "symex_dynamic::"

// IsDynamicAllocation reports whether name follows the dynamic
// allocation naming convention.
func IsDynamicAllocation(name string) bool {
	return len(name) >= len(DynamicPrefix) && name[:len(DynamicPrefix)] == DynamicPrefix
}

// FreshFailedSymbol synthesises a fresh "invalid object" symbol of the
// given type: a free variable used as the "otherwise" branch of a
// guarded dereference union so the formula stays well-typed even when
// every target is infeasible.
func (s *Session) FreshFailedSymbol(t expr.Type) *expr.Expr {
	s.counter++
	name := fmt.Sprintf("symex::invalid_object%d", s.counter)
	if s.symtab != nil {
		s.symtab.Register(name, t)
	}
	return expr.Sym(name, t)
}

// Counter returns the number of fresh symbols minted so far, mostly for
// tests asserting monotonicity.
func (s *Session) Counter() uint64 {
	return s.counter
}
