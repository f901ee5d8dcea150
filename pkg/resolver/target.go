package resolver

import (
	"context"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
	"symderef/pkg/obligation"
	"symderef/pkg/pointsto"
)

// target implements the Target Resolver: deref(ptr,
// want_type, guard, mode, scalar_steps). It queries the points-to
// oracle once, builds a guarded access per concrete target via the
// Reference Builder, and folds the non-null contributions right-to-left
// into an If-chain grounded at a fresh failed symbol so the result stays
// well-typed even when every target turns out infeasible.
func (r *Resolver) target(ctx context.Context, ptr *expr.Expr, wantType *expr.Type, g *guard.Stack, mode Mode, steps []layout.ScalarStep) (*expr.Expr, error) {
	resultType := r.resultType(wantType, steps)
	pointeeType := r.pointeeType(ptr, wantType, steps)

	entries, err := r.PointsTo.ValueSet(ptr)
	if err != nil {
		return nil, err
	}

	failed := r.Session.FreshFailedSymbol(resultType)
	acc := failed

	// Fold right-to-left: the last entry in the set becomes the
	// innermost alternative, closest to the failed-symbol base.
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]

		switch entry.Kind {
		case pointsto.KindNull:
			nullGuard := expr.SameObjectOf(ptr, expr.NullPointer(ptr.Type))
			if err := r.emit(obligation.CategoryPointerDereference, obligation.MsgNullPointer, r.withGuard(g, nullGuard)); err != nil {
				return nil, err
			}
			continue

		case pointsto.KindUnknown, pointsto.KindInvalid:
			invalidGuard := expr.InvalidPointerOf(ptr)
			if err := r.emit(obligation.CategoryPointerDereference, obligation.MsgInvalidPointer, r.withGuard(g, invalidGuard)); err != nil {
				return nil, err
			}
			continue

		case pointsto.KindObject:
			targetGuard := expr.SameObjectOf(ptr, entry.Descriptor.RootObject())
			localGuard := g.Clone()
			localGuard.Push(targetGuard)

			value, err := r.buildReferenceTo(ctx, entry.Descriptor, pointeeType, localGuard, mode)
			if err != nil {
				return nil, err
			}
			wrapped, err := r.wrapScalarSteps(value, steps, resultType, localGuard)
			if err != nil {
				return nil, err
			}
			acc = expr.If(targetGuard, wrapped, acc)

		default:
			return nil, errInternal
		}
	}

	return acc, nil
}

// pointeeType resolves the natural type the Reference Builder should
// target before any scalar steps are reapplied: when there are no
// steps, that is simply the wanted result type; otherwise it is the
// pointer's own pointee type, since the outermost want type belongs to
// the end of the scalar-step chain, not to the dereference site itself.
func (r *Resolver) pointeeType(ptr *expr.Expr, wantType *expr.Type, steps []layout.ScalarStep) expr.Type {
	if len(steps) == 0 {
		return r.resultType(wantType, steps)
	}
	if ptr.Type.Sub != nil {
		return *ptr.Type.Sub
	}
	return expr.Type{}
}

// resultType resolves the type a dereference must ultimately produce:
// the caller-supplied want type, or, absent one, the type of the
// outermost scalar step ("the type dictated by the back of
// scalar_steps").
func (r *Resolver) resultType(wantType *expr.Type, steps []layout.ScalarStep) expr.Type {
	if wantType != nil {
		return *wantType
	}
	if len(steps) == 0 {
		return expr.Type{}
	}
	last := steps[len(steps)-1]
	if last.Index != nil {
		return last.Index.Type
	}
	return expr.Type{}
}

// withGuard returns the conjunction of g's current predicates with an
// extra one, without mutating g.
func (r *Resolver) withGuard(g *guard.Stack, extra *expr.Expr) *expr.Expr {
	base := g.Conjunction()
	return expr.And(base, extra)
}

func (r *Resolver) emit(category obligation.Category, message string, guard *expr.Expr) error {
	return r.Sink.Emit(category, message, guard)
}
