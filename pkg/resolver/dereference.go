package resolver

import (
	"context"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
)

// rewriteDereference handles a top-level "Deref" dispatch: a bare
// Dereference node, or an Index node whose base has pointer type
// reached directly (not via an enclosing Member/Index chain), so the
// wanted result type is simply the node's own type.
func (r *Resolver) rewriteDereference(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode, steps []layout.ScalarStep) (*expr.Expr, error) {
	t := e.Type
	return r.rewriteDereferenceWant(ctx, e, g, mode, steps, &t)
}

// rewriteDereferenceWant is the shared implementation: it normalises an
// Index-over-pointer node to `*(base + idx)` (invariant 3), rewrites the
// pointer expression (which may itself contain nested dereferences),
// then hands off to the Target Resolver.
func (r *Resolver) rewriteDereferenceWant(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode, steps []layout.ScalarStep, wantType *expr.Type) (*expr.Expr, error) {
	var ptr *expr.Expr
	var err error

	switch e.Kind {
	case expr.KDereference:
		ptr, err = r.rewrite(ctx, e.Operand, g, Read)
		if err != nil {
			return nil, err
		}
	case expr.KIndex:
		base, berr := r.rewrite(ctx, e.Base, g, Read)
		if berr != nil {
			return nil, berr
		}
		idx, ierr := r.rewrite(ctx, e.Index, g, Read)
		if ierr != nil {
			return nil, ierr
		}
		ptr = expr.Add(base, idx)
	default:
		return nil, errInternal
	}

	return r.target(ctx, ptr, wantType, g, mode, steps)
}
