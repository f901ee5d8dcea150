package guard

import (
	"testing"

	"symderef/pkg/expr"
)

func boolSym(name string) *expr.Expr {
	return expr.Sym(name, expr.BoolType())
}

func TestEmptyConjunctionIsTrue(t *testing.T) {
	s := New()
	c := s.Conjunction()
	if c.Kind != expr.KEqual {
		t.Fatalf("empty conjunction should be a tautological Equal, got kind %v", c.Kind)
	}
}

func TestPushAndConjunction(t *testing.T) {
	s := New()
	a := boolSym("a")
	b := boolSym("b")
	s.Push(a)
	s.Push(b)

	if got, want := s.Depth(), 2; got != want {
		t.Fatalf("Depth() = %d, want %d", got, want)
	}

	c := s.Conjunction()
	if c.Kind != expr.KAnd {
		t.Fatalf("Conjunction() of two predicates should be an And, got kind %v", c.Kind)
	}
	if c.Lhs != a || c.Rhs != b {
		t.Errorf("Conjunction() did not preserve predicate identity/order")
	}
}

func TestPushNegated(t *testing.T) {
	s := New()
	a := boolSym("a")
	s.PushNegated(a)
	c := s.Conjunction()
	if c.Kind != expr.KNot || c.Operand != a {
		t.Fatalf("PushNegated should push Not(a), got %v", c)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	s.Push(boolSym("a"))
	snap := s.Snapshot()
	s.Push(boolSym("b"))
	s.Push(boolSym("c"))

	if s.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", s.Depth())
	}
	s.Restore(snap)
	if s.Depth() != 1 {
		t.Fatalf("Restore() left Depth() = %d, want 1", s.Depth())
	}
}

func TestRestoreIgnoresOutOfRangeDepth(t *testing.T) {
	s := New()
	s.Push(boolSym("a"))
	s.Restore(-1)
	if s.Depth() != 1 {
		t.Errorf("Restore(-1) should be a no-op, Depth() = %d", s.Depth())
	}
	s.Restore(5)
	if s.Depth() != 1 {
		t.Errorf("Restore(5) should be a no-op, Depth() = %d", s.Depth())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s.Push(boolSym("a"))
	clone := s.Clone()
	clone.Push(boolSym("b"))

	if s.Depth() != 1 {
		t.Errorf("pushing onto a clone mutated the original, Depth() = %d", s.Depth())
	}
	if clone.Depth() != 2 {
		t.Errorf("Clone() did not copy the original's predicates, Depth() = %d", clone.Depth())
	}
}
