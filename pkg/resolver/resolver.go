// Package resolver implements the Tree Walker, Target Resolver, and
// Reference Builder: the component that rewrites an
// expression tree containing dereferences into an equivalent
// dereference-free tree, emitting safety obligations as it goes.
package resolver

import (
	"context"

	"github.com/pkg/errors"

	"symderef/pkg/config"
	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
	"symderef/pkg/obligation"
	"symderef/pkg/pointsto"
	"symderef/pkg/session"
)

// Resolver wires together the caller-supplied collaborators (points-to
// oracle, failure sink) with the two in-core components the Tree Walker
// needs everywhere (the Type-Layout Oracle, the Session). It is the
// re-entrant entry point: each Rewrite call builds its own guard.Stack.
// A Resolver is not safe for concurrent use: Rewrite advances the
// Session's counter and appends to the Sink without locking.
type Resolver struct {
	PointsTo pointsto.Oracle
	Layout   *layout.Oracle
	Sink     obligation.Sink
	Session  *session.Session
	Config   *config.Config
}

// New builds a Resolver from its collaborators.
func New(pto pointsto.Oracle, lo *layout.Oracle, sink obligation.Sink, sess *session.Session, cfg *config.Config) *Resolver {
	return &Resolver{PointsTo: pto, Layout: lo, Sink: sink, Session: sess, Config: cfg}
}

// errInternal is returned for malformed-IR / unreachable-code
// conditions: a fatal, non-recoverable contract violation,
// never treated as a safety obligation.
var errInternal = errors.New("resolver: internal contract violation")

// Rewrite is the Tree Walker's public contract: given an
// expression possibly containing dereferences, return an equivalent
// dereference-free expression, appending any safety obligations to the
// Resolver's Sink under a fresh top-level guard. ctx is checked
// cooperatively at each recursive call so an embedding symbolic-execution
// loop can cancel a stuck rewrite; there is no internal timeout.
func (r *Resolver) Rewrite(ctx context.Context, e *expr.Expr, mode Mode) (*expr.Expr, error) {
	g := guard.New()
	out, err := r.rewrite(ctx, e, g, mode)
	if err != nil {
		return nil, err
	}
	if g.Depth() != 0 {
		return nil, errors.Wrap(errInternal, "guard stack not restored to entry depth")
	}
	return out, nil
}

// rewrite is the internal recursive worker backing Rewrite; it is also
// called directly by components that need to recurse with an existing
// guard (the short-circuit/If, AddressOf, dereference and scalar-step
// paths rewriting their operands).
func (r *Resolver) rewrite(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.Wrap(errInternal, "rewrite: nil expression")
	}
	if !e.HasDereference() {
		return e, nil
	}

	switch e.Kind {
	case expr.KAnd, expr.KOr, expr.KIf:
		return r.rewriteGuarded(ctx, e, g, mode)
	case expr.KAddressOf:
		return r.rewriteAddressOf(ctx, e, g, mode)
	case expr.KDereference:
		return r.rewriteDereference(ctx, e, g, mode, nil)
	case expr.KIndex:
		if e.Base != nil && e.Base.Type.Kind == expr.TPointer {
			return r.rewriteDereference(ctx, e, g, mode, nil)
		}
		return r.rewriteNonScalar(ctx, e, g, mode)
	case expr.KMember:
		return r.rewriteNonScalar(ctx, e, g, mode)
	default:
		return r.rewriteRecurse(ctx, e, g, mode)
	}
}

// rewriteRecurse is the default dispatch class ("Recurse"): rewrite
// each operand under the current guard and rebuild the node.
func (r *Resolver) rewriteRecurse(ctx context.Context, e *expr.Expr, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	cp := *e
	var err error
	replace := func(op **expr.Expr) {
		if err != nil || *op == nil {
			return
		}
		var rewritten *expr.Expr
		rewritten, err = r.rewrite(ctx, *op, g, mode)
		*op = rewritten
	}

	switch e.Kind {
	case expr.KAdd, expr.KSub, expr.KMul, expr.KDiv, expr.KMod, expr.KBitAnd,
		expr.KEqual, expr.KNotEqual, expr.KLt, expr.KLe, expr.KGt, expr.KGe, expr.KSameObject:
		replace(&cp.Lhs)
		replace(&cp.Rhs)
	case expr.KNot, expr.KInvalidPointer, expr.KValidObject, expr.KPointerOffset:
		replace(&cp.Operand)
	case expr.KTypecast:
		replace(&cp.Operand)
	case expr.KByteExtract:
		replace(&cp.Operand)
		replace(&cp.Offset)
	case expr.KConcat:
		replace(&cp.Hi)
		replace(&cp.Lo)
	default:
		return nil, errors.Wrapf(errInternal, "rewriteRecurse: unhandled kind %v", e.Kind)
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}
