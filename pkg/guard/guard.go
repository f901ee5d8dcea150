// Package guard implements the path-condition stack threaded through
// every resolver component. Its meaning is the conjunction
// of the predicates currently pushed; Snapshot/Restore is the sole
// mechanism for scoping it to a short-circuit or conditional branch.
package guard

import "symderef/pkg/expr"

// Stack is a plain, non-concurrent predicate stack. It is owned by one
// top-level Rewrite call and must not outlive it.
type Stack struct {
	preds []*expr.Expr
}

// New returns an empty guard stack.
func New() *Stack {
	return &Stack{}
}

// Push appends pred to the guard.
func (s *Stack) Push(pred *expr.Expr) {
	s.preds = append(s.preds, pred)
}

// PushNegated appends not(pred) to the guard.
func (s *Stack) PushNegated(pred *expr.Expr) {
	s.preds = append(s.preds, expr.Not(pred))
}

// Snapshot returns the current depth, to be passed to a later Restore.
func (s *Stack) Snapshot() int {
	return len(s.preds)
}

// Restore truncates the stack back to a depth obtained from Snapshot.
// Restoring to a depth greater than the current length is a no-op;
// restoring to a negative depth is a contract violation left to the
// caller to avoid (callers always pass a value from Snapshot).
func (s *Stack) Restore(depth int) {
	if depth < 0 || depth > len(s.preds) {
		return
	}
	s.preds = s.preds[:depth]
}

// Depth returns the number of predicates currently pushed.
func (s *Stack) Depth() int {
	return len(s.preds)
}

// Conjunction folds the current guard into a single boolean expression,
// right-associatively. An empty guard folds to the literal `true`
// (modelled here as Equal(1,1) on a 1-bit bool-width int, since Expr has
// no dedicated boolean-literal kind — reusing the existing comparison
// tags rather than adding a one-off variant).
func (s *Stack) Conjunction() *expr.Expr {
	if len(s.preds) == 0 {
		one := expr.IntLiteral(1, expr.Int(1, false))
		return expr.Equal(one, one)
	}
	acc := s.preds[len(s.preds)-1]
	for i := len(s.preds) - 2; i >= 0; i-- {
		acc = expr.And(s.preds[i], acc)
	}
	return acc
}

// Predicates returns the current guard's predicates, outermost first.
// Callers must treat the returned slice as read-only.
func (s *Stack) Predicates() []*expr.Expr {
	return s.preds
}

// Clone returns a copy of the stack, e.g. to recurse into a branch with
// an independently truncatable guard without racing sibling recursions
// when run concurrently by a caller.
func (s *Stack) Clone() *Stack {
	cp := make([]*expr.Expr, len(s.preds))
	copy(cp, s.preds)
	return &Stack{preds: cp}
}
