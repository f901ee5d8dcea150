// Package expr defines the recursively typed expression and type IR that
// the resolver rewrites. Both Expr and Type follow a single tagged-union
// struct rather than an interface/visitor hierarchy: one Kind field, an
// exhaustive switch at every consumer, fields documented by which Kind
// they belong to.
package expr

import "fmt"

// TypeKind tags the variant of a Type.
type TypeKind int

const (
	TInt TypeKind = iota
	TFloat
	TFixedBV
	TBool
	TPointer
	TArray
	TStruct
	TUnion
	TCode
	TString
)

// StructField is one named, typed member of a Struct or Union type, in
// declaration order (declaration order is significant: it is the order
// member offsets are assigned in).
type StructField struct {
	Name string
	Type Type
}

// Type is the tagged-union type representation. Width is in bits for
// Int/Float/FixedBV/Bool; IntegerBits is the integer-part width of a
// FixedBV (the fractional width is Width-IntegerBits). Sub is the
// pointee/element type of Pointer/Array. ArraySize is nil exactly when
// SizeIsInfinite is true (an unbounded array, modelling unbounded input).
// Name and BaseClasses are populated for Struct/Union so the layout
// oracle can resolve prefix and subclass compatibility by name.
type Type struct {
	Kind TypeKind

	Width       uint64
	Signed      bool
	IntegerBits uint64

	Sub            *Type
	ArraySize      *Expr
	SizeIsInfinite bool

	Name        string
	Fields      []StructField
	IsClass     bool
	BaseClasses []string

	StringLen uint64
}

// Int constructs an Int(width, signed) type.
func Int(width uint64, signed bool) Type {
	return Type{Kind: TInt, Width: width, Signed: signed}
}

// Float constructs the Float type (IEEE double; a single TFloat tag is
// used rather than per-width float variants).
func Float() Type { return Type{Kind: TFloat, Width: 64} }

// FixedBVType constructs a fixed-point binary type with the given total
// width and integer-part width.
func FixedBVType(width, integerBits uint64) Type {
	return Type{Kind: TFixedBV, Width: width, IntegerBits: integerBits}
}

// BoolType constructs the Bool type.
func BoolType() Type { return Type{Kind: TBool, Width: 1} }

// PointerTo constructs Pointer(sub).
func PointerTo(sub Type) Type {
	return Type{Kind: TPointer, Sub: &sub}
}

// ArrayOf constructs Array(sub, size). A nil size denotes an infinite
// (unbounded) array.
func ArrayOf(sub Type, size *Expr) Type {
	if size == nil {
		return Type{Kind: TArray, Sub: &sub, SizeIsInfinite: true}
	}
	return Type{Kind: TArray, Sub: &sub, ArraySize: size}
}

// StructOf constructs a named Struct type (see UnionOf for unions).
func StructOf(name string, fields []StructField, isClass bool, bases []string) Type {
	return Type{Kind: TStruct, Name: name, Fields: fields, IsClass: isClass, BaseClasses: bases}
}

// UnionOf constructs a Union type (layout overlaps all members at offset 0).
func UnionOf(name string, fields []StructField) Type {
	return Type{Kind: TUnion, Name: name, Fields: fields}
}

// CodeType constructs the Code type (function/program-text objects).
func CodeType() Type { return Type{Kind: TCode} }

// StringType constructs String(len).
func StringType(length uint64) Type {
	return Type{Kind: TString, StringLen: length}
}

// ByteType is the canonical unsigned 8-bit type used by ByteExtract/Concat
// and by-element array stitching.
func ByteType() Type { return Int(8, false) }

// Equal reports structural equality of two types. Arrays compare by
// element type and finiteness only; ArraySize is not compared, so two
// finite arrays of the same element type are equal whatever their sizes.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case TInt, TFloat, TBool:
		return t.Width == other.Width && t.Signed == other.Signed
	case TFixedBV:
		return t.Width == other.Width && t.IntegerBits == other.IntegerBits
	case TPointer:
		return t.Sub.Equal(*other.Sub)
	case TArray:
		if t.SizeIsInfinite != other.SizeIsInfinite {
			return false
		}
		return t.Sub.Equal(*other.Sub)
	case TStruct, TUnion:
		return t.Name == other.Name
	case TCode:
		return true
	case TString:
		return t.StringLen == other.StringLen
	default:
		return false
	}
}

// String renders a type for diagnostics and obligation messages.
func (t Type) String() string {
	switch t.Kind {
	case TInt:
		sign := "unsigned"
		if t.Signed {
			sign = "signed"
		}
		return fmt.Sprintf("%s int%d", sign, t.Width)
	case TFloat:
		return "float"
	case TFixedBV:
		return fmt.Sprintf("fixedbv<%d,%d>", t.Width, t.IntegerBits)
	case TBool:
		return "bool"
	case TPointer:
		return t.Sub.String() + "*"
	case TArray:
		if t.SizeIsInfinite {
			return t.Sub.String() + "[]"
		}
		return t.Sub.String() + "[N]"
	case TStruct:
		kind := "struct"
		if t.IsClass {
			kind = "class"
		}
		return fmt.Sprintf("%s %s", kind, t.Name)
	case TUnion:
		return "union " + t.Name
	case TCode:
		return "code"
	case TString:
		return fmt.Sprintf("string[%d]", t.StringLen)
	default:
		return "?"
	}
}

// FieldByName looks up a struct/union field by name.
func (t Type) FieldByName(name string) (StructField, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// IsScalar reports whether the type is a leaf numeric/pointer/bool value
// (as opposed to an aggregate Struct/Union/Array/Code/String).
func (t Type) IsScalar() bool {
	switch t.Kind {
	case TInt, TFloat, TFixedBV, TBool, TPointer:
		return true
	default:
		return false
	}
}
