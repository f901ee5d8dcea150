package expr

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Kind tags the variant of an Expr.
type Kind int

const (
	KConstInt Kind = iota
	KConstString
	KSymbol
	KNullObject

	KAdd
	KSub
	KMul
	KDiv
	KMod
	KBitAnd
	KEqual
	KNotEqual
	KLt
	KLe
	KGt
	KGe
	KAnd
	KOr
	KNot
	KIf

	KAddressOf
	KDereference
	KIndex
	KMember

	KTypecast
	KByteExtract
	KConcat

	KSameObject
	KInvalidPointer
	KValidObject
	KPointerOffset
)

// Expr is the tagged-union expression node. Every node carries a Type.
// Fields are documented by the Kind(s) that populate them; unused fields
// are left zero. The walker never mutates a node in place: rewriting
// builds a fresh *Expr for every node it changes and returns
// dereference-free subtrees as the same nodes, so the tree stays an
// immutable DAG.
type Expr struct {
	Kind Kind
	Type Type

	// KConstInt
	IntValue *apd.Decimal

	// KConstString
	StrValue string

	// KSymbol
	Name string

	// Binary arithmetic/relational/logical: Add..Ge, And, Or
	// Also: KSameObject(a=Lhs, b=Rhs)
	Lhs *Expr
	Rhs *Expr

	// Unary: Not, AddressOf, Dereference, InvalidPointer, ValidObject,
	// PointerOffset, and the operand of Typecast/ByteExtract
	Operand *Expr

	// KIf
	Cond *Expr
	Then *Expr
	Else *Expr

	// KIndex (Base is also the operand of KMember)
	Base  *Expr
	Index *Expr

	// KMember
	Field string

	// KByteExtract
	Offset    *Expr
	BigEndian bool

	// KConcat
	Hi *Expr
	Lo *Expr
}

// IntLiteral builds a ConstInt node from an int64 convenience value.
func IntLiteral(v int64, t Type) *Expr {
	d := new(apd.Decimal).SetFinite(v, 0)
	return &Expr{Kind: KConstInt, Type: t, IntValue: d}
}

// IntLiteralDecimal builds a ConstInt node from an exact apd.Decimal,
// used when folding offsets/sizes that may exceed int64 range.
func IntLiteralDecimal(v *apd.Decimal, t Type) *Expr {
	return &Expr{Kind: KConstInt, Type: t, IntValue: v}
}

// StringLiteral builds a ConstString node.
func StringLiteral(s string) *Expr {
	return &Expr{Kind: KConstString, Type: StringType(uint64(len(s) + 1)), StrValue: s}
}

// Sym builds a Symbol(name, type) node.
func Sym(name string, t Type) *Expr {
	return &Expr{Kind: KSymbol, Type: t, Name: name}
}

// NullPointer builds a NullObject node of the given pointer type.
func NullPointer(ptrType Type) *Expr {
	return &Expr{Kind: KNullObject, Type: ptrType}
}

func binOp(k Kind, a, b *Expr, t Type) *Expr {
	return &Expr{Kind: k, Type: t, Lhs: a, Rhs: b}
}

func Add(a, b *Expr) *Expr      { return binOp(KAdd, a, b, a.Type) }
func Sub(a, b *Expr) *Expr      { return binOp(KSub, a, b, a.Type) }
func Mul(a, b *Expr) *Expr      { return binOp(KMul, a, b, a.Type) }
func Div(a, b *Expr) *Expr      { return binOp(KDiv, a, b, a.Type) }
func Mod(a, b *Expr) *Expr      { return binOp(KMod, a, b, a.Type) }
func BitAnd(a, b *Expr) *Expr   { return binOp(KBitAnd, a, b, a.Type) }
func Equal(a, b *Expr) *Expr    { return binOp(KEqual, a, b, BoolType()) }
func NotEqual(a, b *Expr) *Expr { return binOp(KNotEqual, a, b, BoolType()) }
func Lt(a, b *Expr) *Expr       { return binOp(KLt, a, b, BoolType()) }
func Le(a, b *Expr) *Expr       { return binOp(KLe, a, b, BoolType()) }
func Gt(a, b *Expr) *Expr       { return binOp(KGt, a, b, BoolType()) }
func Ge(a, b *Expr) *Expr       { return binOp(KGe, a, b, BoolType()) }
func And(a, b *Expr) *Expr      { return binOp(KAnd, a, b, BoolType()) }
func Or(a, b *Expr) *Expr       { return binOp(KOr, a, b, BoolType()) }

// Not builds the boolean negation of e.
func Not(e *Expr) *Expr {
	return &Expr{Kind: KNot, Type: BoolType(), Operand: e}
}

// If builds a conditional expression, taking its type from the true branch.
func If(cond, t, f *Expr) *Expr {
	return &Expr{Kind: KIf, Type: t.Type, Cond: cond, Then: t, Else: f}
}

// AddressOf builds &e. The result type is Pointer(e.Type).
func AddressOf(e *Expr) *Expr {
	pt := PointerTo(e.Type)
	return &Expr{Kind: KAddressOf, Type: pt, Operand: e}
}

// Dereference builds *ptr. ptr must have Pointer type (invariant 2).
func Dereference(ptr *Expr) *Expr {
	return &Expr{Kind: KDereference, Type: *ptr.Type.Sub, Operand: ptr}
}

// IndexOf builds base[idx]. base must be an Array or Pointer type
// (invariant 3); pointer-base indices must be normalised to
// `*(base + idx)` by the walker before any Reference Builder sees them.
func IndexOf(base, idx *Expr) *Expr {
	var elem Type
	if base.Type.Kind == TArray || base.Type.Kind == TPointer {
		elem = *base.Type.Sub
	}
	return &Expr{Kind: KIndex, Type: elem, Base: base, Index: idx}
}

// MemberOf builds base.field. base must be Struct/Union typed and field
// must be present (invariant 4).
func MemberOf(base *Expr, field string) *Expr {
	f, _ := base.Type.FieldByName(field)
	return &Expr{Kind: KMember, Type: f.Type, Base: base, Field: field}
}

// Typecast builds (to)e.
func Typecast(to Type, e *Expr) *Expr {
	return &Expr{Kind: KTypecast, Type: to, Operand: e}
}

// ByteExtractOf builds a ByteExtract(byteType, e, offset, bigEndian).
func ByteExtractOf(byteType Type, e, offset *Expr, bigEndian bool) *Expr {
	return &Expr{Kind: KByteExtract, Type: byteType, Operand: e, Offset: offset, BigEndian: bigEndian}
}

// ConcatOf builds Concat(ty, hi, lo).
func ConcatOf(ty Type, hi, lo *Expr) *Expr {
	return &Expr{Kind: KConcat, Type: ty, Hi: hi, Lo: lo}
}

// SameObjectOf builds SameObject(a, b).
func SameObjectOf(a, b *Expr) *Expr {
	return &Expr{Kind: KSameObject, Type: BoolType(), Lhs: a, Rhs: b}
}

// InvalidPointerOf builds InvalidPointer(p).
func InvalidPointerOf(p *Expr) *Expr {
	return &Expr{Kind: KInvalidPointer, Type: BoolType(), Operand: p}
}

// ValidObjectOf builds ValidObject(p).
func ValidObjectOf(p *Expr) *Expr {
	return &Expr{Kind: KValidObject, Type: BoolType(), Operand: p}
}

// PointerOffsetOf builds PointerOffset(p).
func PointerOffsetOf(p *Expr) *Expr {
	return &Expr{Kind: KPointerOffset, Type: Int(64, false), Operand: p}
}

// IsDereference reports whether e is a Dereference node, or an Index
// node whose base has pointer type — the two forms the Tree Walker
// treats as a deref site.
func (e *Expr) IsDereference() bool {
	if e == nil {
		return false
	}
	if e.Kind == KDereference {
		return true
	}
	if e.Kind == KIndex && e.Base != nil && e.Base.Type.Kind == TPointer {
		return true
	}
	return false
}

// HasDereference reports whether e or any operand transitively contains
// a dereference site, mirroring dereferencet::has_dereference.
func (e *Expr) HasDereference() bool {
	if e == nil {
		return false
	}
	if e.IsDereference() {
		return true
	}
	for _, op := range e.Operands() {
		if op.HasDereference() {
			return true
		}
	}
	return false
}

// Operands returns the non-nil direct operands of e in evaluation order.
func (e *Expr) Operands() []*Expr {
	if e == nil {
		return nil
	}
	var ops []*Expr
	add := func(x *Expr) {
		if x != nil {
			ops = append(ops, x)
		}
	}
	switch e.Kind {
	case KAdd, KSub, KMul, KDiv, KMod, KBitAnd,
		KEqual, KNotEqual, KLt, KLe, KGt, KGe, KAnd, KOr, KSameObject:
		add(e.Lhs)
		add(e.Rhs)
	case KNot, KAddressOf, KDereference, KInvalidPointer, KValidObject, KPointerOffset:
		add(e.Operand)
	case KIf:
		add(e.Cond)
		add(e.Then)
		add(e.Else)
	case KIndex:
		add(e.Base)
		add(e.Index)
	case KMember:
		add(e.Base)
	case KTypecast:
		add(e.Operand)
	case KByteExtract:
		add(e.Operand)
		add(e.Offset)
	case KConcat:
		add(e.Hi)
		add(e.Lo)
	}
	return ops
}

// String renders an expression for diagnostics; it is not a parser round
// trip format.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KConstInt:
		return e.IntValue.String()
	case KConstString:
		return fmt.Sprintf("%q", e.StrValue)
	case KSymbol:
		return e.Name
	case KNullObject:
		return "NULL"
	case KAdd:
		return fmt.Sprintf("(%s + %s)", e.Lhs, e.Rhs)
	case KSub:
		return fmt.Sprintf("(%s - %s)", e.Lhs, e.Rhs)
	case KMul:
		return fmt.Sprintf("(%s * %s)", e.Lhs, e.Rhs)
	case KDiv:
		return fmt.Sprintf("(%s / %s)", e.Lhs, e.Rhs)
	case KMod:
		return fmt.Sprintf("(%s %% %s)", e.Lhs, e.Rhs)
	case KBitAnd:
		return fmt.Sprintf("(%s & %s)", e.Lhs, e.Rhs)
	case KEqual:
		return fmt.Sprintf("(%s == %s)", e.Lhs, e.Rhs)
	case KNotEqual:
		return fmt.Sprintf("(%s != %s)", e.Lhs, e.Rhs)
	case KLt:
		return fmt.Sprintf("(%s < %s)", e.Lhs, e.Rhs)
	case KLe:
		return fmt.Sprintf("(%s <= %s)", e.Lhs, e.Rhs)
	case KGt:
		return fmt.Sprintf("(%s > %s)", e.Lhs, e.Rhs)
	case KGe:
		return fmt.Sprintf("(%s >= %s)", e.Lhs, e.Rhs)
	case KAnd:
		return fmt.Sprintf("(%s && %s)", e.Lhs, e.Rhs)
	case KOr:
		return fmt.Sprintf("(%s || %s)", e.Lhs, e.Rhs)
	case KNot:
		return fmt.Sprintf("!%s", e.Operand)
	case KIf:
		return fmt.Sprintf("(%s ? %s : %s)", e.Cond, e.Then, e.Else)
	case KAddressOf:
		return fmt.Sprintf("&%s", e.Operand)
	case KDereference:
		return fmt.Sprintf("*%s", e.Operand)
	case KIndex:
		return fmt.Sprintf("%s[%s]", e.Base, e.Index)
	case KMember:
		return fmt.Sprintf("%s.%s", e.Base, e.Field)
	case KTypecast:
		return fmt.Sprintf("(%s)%s", e.Type, e.Operand)
	case KByteExtract:
		return fmt.Sprintf("byte_extract(%s, %s)", e.Operand, e.Offset)
	case KConcat:
		return fmt.Sprintf("concat(%s, %s)", e.Hi, e.Lo)
	case KSameObject:
		return fmt.Sprintf("same_object(%s, %s)", e.Lhs, e.Rhs)
	case KInvalidPointer:
		return fmt.Sprintf("invalid_pointer(%s)", e.Operand)
	case KValidObject:
		return fmt.Sprintf("valid_object(%s)", e.Operand)
	case KPointerOffset:
		return fmt.Sprintf("pointer_offset(%s)", e.Operand)
	default:
		return "?"
	}
}
