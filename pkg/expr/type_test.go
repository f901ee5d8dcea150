package expr

import "testing"

func TestTypeEqual(t *testing.T) {
	i32 := Int(32, true)
	i32b := Int(32, true)
	u32 := Int(32, false)
	i64 := Int(64, true)

	if !i32.Equal(i32b) {
		t.Errorf("identical int types should be equal")
	}
	if i32.Equal(u32) {
		t.Errorf("signed and unsigned int types should differ")
	}
	if i32.Equal(i64) {
		t.Errorf("differing widths should differ")
	}

	s1 := StructOf("node", []StructField{{Name: "v", Type: i32}}, false, nil)
	s2 := StructOf("node", []StructField{{Name: "v", Type: i32}, {Name: "extra", Type: i64}}, false, nil)
	if !s1.Equal(s2) {
		t.Errorf("struct equality is by name, so two types named %q should be equal", s1.Name)
	}

	p1 := PointerTo(i32)
	p2 := PointerTo(i32b)
	if !p1.Equal(p2) {
		t.Errorf("pointer types with equal pointees should be equal")
	}

	finite := ArrayOf(i32, IntLiteral(4, Int(64, false)))
	infinite := ArrayOf(i32, nil)
	if finite.Equal(infinite) {
		t.Errorf("a finite and an infinite array should never be equal")
	}
}

func TestFieldByName(t *testing.T) {
	i32 := Int(32, true)
	st := StructOf("point", []StructField{
		{Name: "x", Type: i32},
		{Name: "y", Type: i32},
	}, false, nil)

	f, ok := st.FieldByName("y")
	if !ok {
		t.Fatalf("FieldByName(%q) did not find a field", "y")
	}
	if !f.Type.Equal(i32) {
		t.Errorf("FieldByName(%q).Type = %v, want %v", "y", f.Type, i32)
	}

	if _, ok := st.FieldByName("z"); ok {
		t.Errorf("FieldByName(%q) unexpectedly found a field", "z")
	}
}

func TestIsScalar(t *testing.T) {
	scalar := []Type{Int(32, true), Float(), BoolType(), PointerTo(Int(8, false)), FixedBVType(16, 8)}
	for _, ty := range scalar {
		if !ty.IsScalar() {
			t.Errorf("%v should be scalar", ty)
		}
	}

	aggregate := []Type{
		StructOf("s", nil, false, nil),
		UnionOf("u", nil),
		ArrayOf(Int(32, true), IntLiteral(1, Int(64, false))),
		CodeType(),
		StringType(8),
	}
	for _, ty := range aggregate {
		if ty.IsScalar() {
			t.Errorf("%v should not be scalar", ty)
		}
	}
}
