package resolver

import (
	"context"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
)

// rewriteGuarded implements the short-circuit And/Or and the
// conditional If ("Guarded" dispatch class): each branch
// carries obligations only under the path condition that would
// actually reach it.
func (r *Resolver) rewriteGuarded(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	switch e.Kind {
	case expr.KAnd, expr.KOr:
		return r.rewriteShortCircuit(ctx, e, g, mode)
	case expr.KIf:
		return r.rewriteIf(ctx, e, g, mode)
	default:
		return nil, errInternal
	}
}

// rewriteShortCircuit rewrites And/Or left-to-right. Before visiting the
// second operand, it pushes the first operand (for And) or its negation
// (for Or) onto the guard, then restores the guard to its entry depth.
func (r *Resolver) rewriteShortCircuit(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	entry := g.Snapshot()
	defer g.Restore(entry)

	lhs, err := r.rewrite(ctx, e.Lhs, g, Read)
	if err != nil {
		return nil, err
	}

	if e.Kind == expr.KAnd {
		g.Push(lhs)
	} else {
		g.PushNegated(lhs)
	}

	rhs, err := r.rewrite(ctx, e.Rhs, g, Read)
	if err != nil {
		return nil, err
	}
	g.Restore(entry)

	if e.Kind == expr.KAnd {
		return expr.And(lhs, rhs), nil
	}
	return expr.Or(lhs, rhs), nil
}

// rewriteIf rewrites the condition under the entry guard, the true
// branch under guard∧cond, and the false branch under guard∧¬cond,
// restoring the guard stack after each branch.
func (r *Resolver) rewriteIf(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	entry := g.Snapshot()
	defer g.Restore(entry)

	cond, err := r.rewrite(ctx, e.Cond, g, Read)
	if err != nil {
		return nil, err
	}

	g.Push(cond)
	thenBranch, err := r.rewrite(ctx, e.Then, g, mode)
	if err != nil {
		return nil, err
	}
	g.Restore(entry)

	g.PushNegated(cond)
	elseBranch, err := r.rewrite(ctx, e.Else, g, mode)
	if err != nil {
		return nil, err
	}
	g.Restore(entry)

	return expr.If(cond, thenBranch, elseBranch), nil
}
