package resolver

import (
	"context"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
)

// rewriteAddressOf implements the AddressOf peephole.
//
//   - &*p collapses to p (with a typecast only if the types differ).
//   - &(chain of member/index bottoming out at a dereference of p)
//     rewrites to ((u8*)p) + offset, cast back to the original pointer
//     type, where offset is the cumulative byte offset of the chain
//     computed by the Type-Layout Oracle. p is rewritten first.
//   - Otherwise (a genuine address of a stack/static symbol with no
//     dereference underneath), the operand is rewritten and the
//     AddressOf node is rebuilt as-is.
func (r *Resolver) rewriteAddressOf(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	operand := e.Operand

	if operand.Kind == expr.KDereference {
		ptr, err := r.rewrite(ctx, operand.Operand, g, Read)
		if err != nil {
			return nil, err
		}
		if ptr.Type.Equal(e.Type) {
			return ptr, nil
		}
		return expr.Typecast(e.Type, ptr), nil
	}

	steps, base := collectAddressOfChain(operand)
	if base != nil {
		ptr, err := r.rewrite(ctx, base.Operand, g, Read)
		if err != nil {
			return nil, err
		}
		offsetExpr, err := r.Layout.ComputePointerOffset(*base.Operand.Type.Sub, steps)
		if err != nil {
			return nil, err
		}
		byteType := expr.Int(8, false)
		bytePtr := expr.Typecast(expr.PointerTo(byteType), ptr)
		shifted := expr.Add(bytePtr, offsetExpr)
		return expr.Typecast(e.Type, shifted), nil
	}

	newOperand, err := r.rewrite(ctx, operand, g, mode)
	if err != nil {
		return nil, err
	}
	return expr.AddressOf(newOperand), nil
}

// collectAddressOfChain walks a Member/Index chain from the outside in,
// returning the scalar steps encountered (outermost first reversed to
// innermost-first order, matching ComputePointerOffset's expectation)
// and the Dereference node the chain bottoms out at, or nil if the
// chain does not bottom out at a dereference (a genuine address-of
// symbol case).
func collectAddressOfChain(e *expr.Expr) ([]layout.ScalarStep, *expr.Expr) {
	var reversed []layout.ScalarStep
	cur := e
	for {
		switch cur.Kind {
		case expr.KMember:
			reversed = append(reversed, layout.ScalarStep{Member: cur.Field})
			cur = cur.Base
		case expr.KIndex:
			reversed = append(reversed, layout.ScalarStep{Index: cur.Index})
			cur = cur.Base
		case expr.KDereference:
			steps := make([]layout.ScalarStep, len(reversed))
			for i, s := range reversed {
				steps[len(reversed)-1-i] = s
			}
			return steps, cur
		default:
			return nil, nil
		}
	}
}
