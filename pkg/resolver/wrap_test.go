package resolver

import (
	"testing"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
	"symderef/pkg/obligation"
)

func TestWrapScalarStepsNoSteps(t *testing.T) {
	intT := i32Type()
	x := expr.Sym("x", intT)
	r, _, _ := newTestResolver(fixedOracle{})

	out, err := r.wrapScalarSteps(x, nil, intT, guard.New())
	if err != nil {
		t.Fatalf("wrapScalarSteps returned error: %v", err)
	}
	if out != x {
		t.Errorf("an empty step list should return the value unchanged, got %s", out)
	}
}

func TestWrapScalarStepsMember(t *testing.T) {
	intT := i32Type()
	st := expr.StructOf("s", []expr.StructField{{Name: "f", Type: intT}}, false, nil)
	obj := expr.Sym("o", st)
	r, _, _ := newTestResolver(fixedOracle{})

	out, err := r.wrapScalarSteps(obj, []layout.ScalarStep{{Member: "f"}}, intT, guard.New())
	if err != nil {
		t.Fatalf("wrapScalarSteps returned error: %v", err)
	}
	if out.Kind != expr.KMember || out.Field != "f" {
		t.Fatalf("expected a member projection onto f, got %s", out)
	}
}

func TestWrapScalarStepsIndex(t *testing.T) {
	intT := i32Type()
	arr := expr.Sym("arr", expr.ArrayOf(intT, expr.IntLiteral(4, expr.Int(64, false))))
	idx := expr.IntLiteral(2, expr.Int(64, false))
	r, _, _ := newTestResolver(fixedOracle{})

	out, err := r.wrapScalarSteps(arr, []layout.ScalarStep{{Index: idx}}, intT, guard.New())
	if err != nil {
		t.Fatalf("wrapScalarSteps returned error: %v", err)
	}
	if out.Kind != expr.KIndex {
		t.Fatalf("expected an index projection, got %s", out)
	}
}

func TestWrapScalarStepsIncompatibleMemberEmitsObligation(t *testing.T) {
	intT := i32Type()
	x := expr.Sym("x", intT) // scalar, not struct/union
	r, sink, _ := newTestResolver(fixedOracle{})

	_, err := r.wrapScalarSteps(x, []layout.ScalarStep{{Member: "f"}}, intT, guard.New())
	if err != nil {
		t.Fatalf("wrapScalarSteps returned error: %v", err)
	}
	if !containsObligation(sink.Obligations(), obligation.MsgIncompatibleBaseType) {
		t.Errorf("a member step over a non-struct value should emit an incompatible-base-type obligation, got %+v", sink.Obligations())
	}
}

func TestWrapScalarStepsUnknownFieldEmitsObligation(t *testing.T) {
	st := expr.StructOf("s", []expr.StructField{{Name: "a", Type: i32Type()}}, false, nil)
	obj := expr.Sym("o", st)
	r, sink, _ := newTestResolver(fixedOracle{})

	_, err := r.wrapScalarSteps(obj, []layout.ScalarStep{{Member: "missing"}}, i32Type(), guard.New())
	if err != nil {
		t.Fatalf("wrapScalarSteps returned error: %v", err)
	}
	if !containsObligation(sink.Obligations(), obligation.MsgIncompatibleBaseType) {
		t.Errorf("a step naming an unknown field should emit an incompatible-base-type obligation, got %+v", sink.Obligations())
	}
}
