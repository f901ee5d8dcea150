package obligation

import "testing"

func TestLookupKnowsEveryCatalogedMessage(t *testing.T) {
	for msg, wantCategory := range catalog {
		got, ok := Lookup(msg)
		if !ok {
			t.Errorf("Lookup(%q) reported unknown, want category %s", msg, wantCategory)
			continue
		}
		if got != wantCategory {
			t.Errorf("Lookup(%q) = %s, want %s", msg, got, wantCategory)
		}
	}
}

func TestLookupRejectsUnknownMessage(t *testing.T) {
	if _, ok := Lookup("not a real obligation"); ok {
		t.Errorf("Lookup of an unrecognised message should report ok=false")
	}
}

func TestIsBounds(t *testing.T) {
	tests := []struct {
		category Category
		message  string
		want     bool
	}{
		{CategoryArrayBounds, MsgArrayBoundsViolated, true},
		{CategoryPointerDereference, MsgAccessOutOfBounds, true},
		{CategoryPointerDereference, MsgNullPointer, false},
		{CategoryMemoryModel, MsgIllegalOffset, false},
	}
	for _, tc := range tests {
		if got := IsBounds(tc.category, tc.message); got != tc.want {
			t.Errorf("IsBounds(%s, %q) = %v, want %v", tc.category, tc.message, got, tc.want)
		}
	}
}
