package obligation

import (
	"testing"

	"symderef/pkg/config"
	"symderef/pkg/expr"
)

func trueGuard() *expr.Expr {
	one := expr.IntLiteral(1, expr.Int(1, false))
	return expr.Equal(one, one)
}

func TestEmitRejectsMismatchedCategory(t *testing.T) {
	s := NewCollectingSink(config.Default())
	err := s.Emit(CategoryArrayBounds, MsgNullPointer, trueGuard())
	if err == nil {
		t.Fatalf("Emit with a mismatched (category, message) pair should error")
	}
	if len(s.Obligations()) != 0 {
		t.Errorf("a rejected Emit should not record an obligation")
	}
}

func TestEmitRecordsValidObligation(t *testing.T) {
	s := NewCollectingSink(config.Default())
	g := trueGuard()
	if err := s.Emit(CategoryPointerDereference, MsgNullPointer, g); err != nil {
		t.Fatalf("Emit returned unexpected error: %v", err)
	}
	obls := s.Obligations()
	if len(obls) != 1 {
		t.Fatalf("Obligations() = %d entries, want 1", len(obls))
	}
	if obls[0].Category != CategoryPointerDereference || obls[0].Message != MsgNullPointer || obls[0].Guard != g {
		t.Errorf("recorded obligation does not match what was emitted: %+v", obls[0])
	}
}

func TestNoPointerCheckSuppressesEverything(t *testing.T) {
	cfg := config.Default()
	cfg.NoPointerCheck = true
	s := NewCollectingSink(cfg)

	if err := s.Emit(CategoryPointerDereference, MsgNullPointer, trueGuard()); err != nil {
		t.Fatalf("Emit returned unexpected error: %v", err)
	}
	if len(s.Obligations()) != 0 {
		t.Errorf("NoPointerCheck should suppress every obligation, got %d", len(s.Obligations()))
	}
}

func TestNoBoundsCheckSuppressesOnlyBounds(t *testing.T) {
	cfg := config.Default()
	cfg.NoBoundsCheck = true
	s := NewCollectingSink(cfg)

	if err := s.Emit(CategoryArrayBounds, MsgArrayBoundsViolated, trueGuard()); err != nil {
		t.Fatalf("Emit returned unexpected error: %v", err)
	}
	if err := s.Emit(CategoryPointerDereference, MsgNullPointer, trueGuard()); err != nil {
		t.Fatalf("Emit returned unexpected error: %v", err)
	}

	obls := s.Obligations()
	if len(obls) != 1 {
		t.Fatalf("Obligations() = %d entries, want 1 (only the non-bounds one)", len(obls))
	}
	if obls[0].Message != MsgNullPointer {
		t.Errorf("the surviving obligation is %q, want %q", obls[0].Message, MsgNullPointer)
	}
}

func TestReset(t *testing.T) {
	s := NewCollectingSink(config.Default())
	_ = s.Emit(CategoryPointerDereference, MsgNullPointer, trueGuard())
	s.Reset()
	if len(s.Obligations()) != 0 {
		t.Errorf("Reset() should discard every recorded obligation")
	}
}
