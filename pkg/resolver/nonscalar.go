package resolver

import (
	"context"

	"github.com/pkg/errors"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
)

// rewriteNonScalar implements the "NonScalar" dispatch class: a Member,
// or an array-Index, sitting above a dereference. It begins a
// scalar-step list and descends to the dereference site, where
// the Target Resolver re-applies the collected steps to the loaded
// value. topType is the type
// of the outermost expression the chain started at — the type the
// whole chain must ultimately produce — threaded down unchanged so the
// Target Resolver knows the wanted result type without recomputing it.
func (r *Resolver) rewriteNonScalar(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	topType := e.Type
	return r.rewriteNonScalarSteps(ctx, e, g, mode, nil, &topType)
}

// rewriteNonScalarSteps descends one Member/array-Index layer at a
// time, prepending the step for the current layer so the accumulated
// slice stays ordered innermost-step-first (the order in which steps
// must be reapplied to the value loaded at the dereference site).
func (r *Resolver) rewriteNonScalarSteps(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode, steps []layout.ScalarStep, topType *expr.Type) (*expr.Expr, error) {
	switch {
	case e.Kind == expr.KDereference:
		return r.rewriteDereferenceWant(ctx, e, g, mode, steps, topType)

	case e.Kind == expr.KIndex && e.Base.Type.Kind == expr.TPointer:
		return r.rewriteDereferenceWant(ctx, e, g, mode, steps, topType)

	case e.Kind == expr.KMember:
		prepended := prependStep(layout.ScalarStep{Member: e.Field}, steps)
		return r.rewriteNonScalarSteps(ctx, e.Base, g, mode, prepended, topType)

	case e.Kind == expr.KIndex && e.Base.Type.Kind == expr.TArray:
		idx, err := r.rewrite(ctx, e.Index, g, Read)
		if err != nil {
			return nil, err
		}
		prepended := prependStep(layout.ScalarStep{Index: idx}, steps)
		return r.rewriteNonScalarSteps(ctx, e.Base, g, mode, prepended, topType)

	case e.Kind == expr.KIf:
		return r.rewriteNonScalarIf(ctx, e, g, mode, steps, topType)

	default:
		if len(steps) != 0 {
			return nil, errors.Wrapf(errInternal,
				"scalar-step walk reached a %v with a non-empty step list", e.Kind)
		}
		return r.rewrite(ctx, e, g, mode)
	}
}

// rewriteNonScalarIf handles an If embedded as the base of a scalar-step
// chain (e.g. `(cond ? p : q)->field`): each branch independently
// consumes the same accumulated steps under its own guarded condition.
func (r *Resolver) rewriteNonScalarIf(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode, steps []layout.ScalarStep, topType *expr.Type) (*expr.Expr, error) {
	entry := g.Snapshot()

	cond, err := r.rewrite(ctx, e.Cond, g, Read)
	if err != nil {
		return nil, err
	}

	g.Push(cond)
	thenRes, err := r.rewriteNonScalarSteps(ctx, e.Then, g, mode, steps, topType)
	g.Restore(entry)
	if err != nil {
		return nil, err
	}

	g.PushNegated(cond)
	elseRes, err := r.rewriteNonScalarSteps(ctx, e.Else, g, mode, steps, topType)
	g.Restore(entry)
	if err != nil {
		return nil, err
	}

	return expr.If(cond, thenRes, elseRes), nil
}

func prependStep(step layout.ScalarStep, steps []layout.ScalarStep) []layout.ScalarStep {
	out := make([]layout.ScalarStep, 0, len(steps)+1)
	out = append(out, step)
	out = append(out, steps...)
	return out
}
