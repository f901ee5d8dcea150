package resolver

import (
	"context"
	"testing"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/layout"
	"symderef/pkg/pointsto"
)

func TestResultTypeFromWantType(t *testing.T) {
	r, _, _ := newTestResolver(fixedOracle{})
	want := i32Type()
	got := r.resultType(&want, nil)
	if !got.Equal(want) {
		t.Errorf("resultType() = %v, want %v", got, want)
	}
}

func TestResultTypeFromLastIndexStep(t *testing.T) {
	r, _, _ := newTestResolver(fixedOracle{})
	idx := &expr.Expr{Kind: expr.KConstInt, Type: i32Type()}
	steps := []layout.ScalarStep{{Index: idx}}
	got := r.resultType(nil, steps)
	if !got.Equal(i32Type()) {
		t.Errorf("resultType() from the last index step = %v, want %v", got, i32Type())
	}
}

func TestPointeeTypeWithNoStepsIsResultType(t *testing.T) {
	r, _, _ := newTestResolver(fixedOracle{})
	intT := i32Type()
	ptr := expr.Sym("p", expr.PointerTo(intT))
	got := r.pointeeType(ptr, &intT, nil)
	if !got.Equal(intT) {
		t.Errorf("pointeeType() with no steps = %v, want %v", got, intT)
	}
}

func TestTargetFoldsTwoObjectEntriesRightToLeft(t *testing.T) {
	intT := i32Type()
	ptrT := expr.PointerTo(intT)
	ptr := expr.Sym("p", ptrT)
	first := expr.Sym("first", intT)
	second := expr.Sym("second", intT)

	r, _, _ := newTestResolver(fixedOracle{entries: []pointsto.Entry{
		objectEntry(first, zeroOffset()),
		objectEntry(second, zeroOffset()),
	}})

	out, err := r.target(context.Background(), ptr, &intT, guard.New(), Read, nil)
	if err != nil {
		t.Fatalf("target() returned error: %v", err)
	}
	if out.Kind != expr.KIf {
		t.Fatalf("expected a guarded fold over both entries, got %v", out.Kind)
	}
	if out.Then != first {
		t.Errorf("outermost branch should resolve the first points-to entry, got %v", out.Then)
	}
	if out.Else.Kind != expr.KIf || out.Else.Then != second {
		t.Errorf("second points-to entry should nest as the Else branch, got %v", out.Else)
	}
	if out.Else.Else.Kind != expr.KSymbol {
		t.Errorf("innermost base case should be the fresh failed symbol, got %v", out.Else.Else)
	}
}

func TestPointeeTypeWithStepsIsPointerSub(t *testing.T) {
	r, _, _ := newTestResolver(fixedOracle{})
	st := expr.StructOf("s", []expr.StructField{{Name: "f", Type: i32Type()}}, false, nil)
	ptr := expr.Sym("p", expr.PointerTo(st))
	wantIntT := i32Type()

	steps := []layout.ScalarStep{{Member: "f"}}
	got := r.pointeeType(ptr, &wantIntT, steps)
	if !got.Equal(st) {
		t.Errorf("pointeeType() with steps = %v, want the pointer's own pointee type %v", got, st)
	}
}
