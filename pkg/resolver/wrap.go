package resolver

import (
	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
	"symderef/pkg/obligation"
)

// wrapScalarSteps reapplies the Member/Index projections collected
// above a dereference site (the scalar-step list) to the value the
// Target Resolver built at
// the dereference site itself, innermost step first — the reverse of
// how rewriteNonScalarSteps collected them. A step whose base type
// cannot support the projection emits an incompatible-base-type
// obligation and substitutes a fresh failed symbol rather than
// continuing to project off a value the static IR didn't promise.
func (r *Resolver) wrapScalarSteps(value *expr.Expr, steps []layout.ScalarStep, resultType expr.Type, g *guard.Stack) (*expr.Expr, error) {
	cur := value
	for _, step := range steps {
		switch {
		case step.Member != "":
			if cur.Type.Kind != expr.TStruct && cur.Type.Kind != expr.TUnion {
				return r.incompatibleStep(resultType, g)
			}
			if _, ok := cur.Type.FieldByName(step.Member); !ok {
				return r.incompatibleStep(resultType, g)
			}
			cur = expr.MemberOf(cur, step.Member)

		case step.Index != nil:
			if cur.Type.Kind != expr.TArray {
				return r.incompatibleStep(resultType, g)
			}
			cur = expr.IndexOf(cur, step.Index)

		default:
			return nil, errInternal
		}
	}

	if len(steps) > 0 && !cur.Type.Equal(resultType) {
		return expr.Typecast(resultType, cur), nil
	}
	return cur, nil
}

func (r *Resolver) incompatibleStep(resultType expr.Type, g *guard.Stack) (*expr.Expr, error) {
	if err := r.emit(obligation.CategoryMemoryModel, obligation.MsgIncompatibleBaseType, g.Conjunction()); err != nil {
		return nil, err
	}
	return r.Session.FreshFailedSymbol(resultType), nil
}
