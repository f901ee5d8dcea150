package resolver

import (
	"context"
	"testing"

	"symderef/pkg/expr"
	"symderef/pkg/pointsto"
)

// TestShortCircuitGuardCoversSecondOperand checks that a NULL dereference
// inside the right-hand side of `p != NULL && *p > 0` is only guarded by
// the left-hand condition, not emitted unconditionally.
func TestShortCircuitGuardCoversSecondOperand(t *testing.T) {
	ptrT := expr.PointerTo(i32Type())
	p := expr.Sym("p", ptrT)

	r, sink, _ := newTestResolver(fixedOracle{entries: []pointsto.Entry{nullEntry()}})

	e := expr.And(
		expr.NotEqual(p, expr.NullPointer(ptrT)),
		expr.Gt(expr.Dereference(p), expr.IntLiteral(0, i32Type())),
	)
	if _, err := r.Rewrite(context.Background(), e, Read); err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}

	obls := sink.Obligations()
	if len(obls) != 1 {
		t.Fatalf("expected exactly one NULL-pointer obligation, got %+v", obls)
	}
	g := obls[0].Guard
	if g.Kind != expr.KAnd {
		t.Fatalf("the NULL obligation's guard should conjoin the left-hand condition, got kind %v", g.Kind)
	}
}

func TestIfRewritesEachBranchUnderItsOwnGuard(t *testing.T) {
	ptrT := expr.PointerTo(i32Type())
	p := expr.Sym("p", ptrT)
	q := expr.Sym("q", ptrT)
	target := expr.Sym("val", i32Type())
	cond := expr.Sym("cond", expr.BoolType())

	r, _, _ := newTestResolver(fixedOracle{entries: []pointsto.Entry{objectEntry(target, zeroOffset())}})

	e := expr.If(cond, expr.Dereference(p), expr.Dereference(q))
	out, err := r.Rewrite(context.Background(), e, Read)
	if err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}
	if out.Kind != expr.KIf {
		t.Fatalf("rewriting an If over dereferences should still produce an If, got kind %v", out.Kind)
	}
	if out.HasDereference() {
		t.Errorf("rewritten If still contains a dereference: %s", out)
	}
}
