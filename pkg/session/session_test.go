package session

import (
	"testing"

	"symderef/pkg/expr"
)

type recordingTable struct {
	names []string
	types []expr.Type
}

func (r *recordingTable) Register(name string, t expr.Type) {
	r.names = append(r.names, name)
	r.types = append(r.types, t)
}

func TestIsDynamicAllocation(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"symex_dynamic::1", true},
		{"symex_dynamic::main::1::x", true},
		{"x", false},
		{"", false},
		{"symex_dynamic", false},
	}
	for _, tc := range tests {
		if got := IsDynamicAllocation(tc.name); got != tc.want {
			t.Errorf("IsDynamicAllocation(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFreshFailedSymbolIsMonotone(t *testing.T) {
	s := New(nil)
	t32 := expr.Int(32, true)

	first := s.FreshFailedSymbol(t32)
	second := s.FreshFailedSymbol(t32)

	if first.Name == second.Name {
		t.Fatalf("two fresh failed symbols share a name: %q", first.Name)
	}
	if s.Counter() != 2 {
		t.Errorf("Counter() = %d, want 2", s.Counter())
	}
	if !first.Type.Equal(t32) || !second.Type.Equal(t32) {
		t.Errorf("fresh failed symbols did not carry the requested type")
	}
}

func TestFreshFailedSymbolRegistersIntoSymbolTable(t *testing.T) {
	tab := &recordingTable{}
	s := New(tab)
	t32 := expr.Int(32, true)

	sym := s.FreshFailedSymbol(t32)

	if len(tab.names) != 1 || tab.names[0] != sym.Name {
		t.Fatalf("Register was not called with the minted symbol's name, got %v", tab.names)
	}
	if !tab.types[0].Equal(t32) {
		t.Errorf("Register was not called with the minted symbol's type")
	}
}

func TestFreshFailedSymbolToleratesNilSymbolTable(t *testing.T) {
	s := New(nil)
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("FreshFailedSymbol panicked with a nil symbol table: %v", r)
		}
	}()
	s.FreshFailedSymbol(expr.Int(32, true))
}
