// Package layout implements the Type-Layout Oracle: pure
// functions over Type values with no side effects — sizeof, field
// offsets, prefix/subclass compatibility, and pointer-offset constant
// folding. The only failures are returned errors for types that have no
// fixed size (unbounded or symbolically sized arrays) and for malformed
// input such as a missing field name. Every size and offset is carried as
// an exact apd.Decimal rather than a machine int so that deeply nested
// array/struct offsets (plausible for a bounded model checker chasing
// a symbolic index into a huge array) never silently overflow.
package layout

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"symderef/pkg/config"
	"symderef/pkg/expr"
)

// ctx is the shared apd arithmetic context: exact decimal context with
// no rounding, since every quantity here is an integer byte count.
var ctx = apd.BaseContext.WithPrecision(200)

// ClassRegistry resolves a struct/class type by name, used to walk base
// classes for subclass compatibility. It is supplied by the caller (the
// type-checker/parser collaborator, out of core scope) since the core
// never constructs the whole program's type universe itself.
type ClassRegistry interface {
	Lookup(name string) (expr.Type, bool)
}

// Oracle is the Type-Layout Oracle. It holds only configuration and a
// class registry; it has no other state and every method is a pure
// function of its arguments.
type Oracle struct {
	cfg  *config.Config
	reg  ClassRegistry
}

// NewOracle builds a layout Oracle. reg may be nil if the embedding
// program has no class hierarchy (plain C, no subclassing).
func NewOracle(cfg *config.Config, reg ClassRegistry) *Oracle {
	return &Oracle{cfg: cfg, reg: reg}
}

func decimal(v int64) *apd.Decimal {
	return new(apd.Decimal).SetFinite(v, 0)
}

func mustAdd(a, b *apd.Decimal) *apd.Decimal {
	r := new(apd.Decimal)
	_, _ = ctx.Add(r, a, b)
	return r
}

func mustMul(a, b *apd.Decimal) *apd.Decimal {
	r := new(apd.Decimal)
	_, _ = ctx.Mul(r, a, b)
	return r
}

// SizeOf computes the byte size of t: the bit width rounded up to whole
// bytes for primitives, element-size × count for arrays, the plain sum of
// field sizes for structs (no implicit padding, matching OffsetOf), and
// the widest member rounded up to the word size for unions.
func (o *Oracle) SizeOf(t expr.Type) (*apd.Decimal, error) {
	switch t.Kind {
	case expr.TInt, expr.TFloat, expr.TFixedBV, expr.TBool:
		return decimal(int64((t.Width + 7) / 8)), nil
	case expr.TPointer:
		return decimal(int64(o.cfg.PointerWidth / 8)), nil
	case expr.TCode:
		return decimal(0), nil
	case expr.TString:
		return decimal(int64(t.StringLen)), nil
	case expr.TArray:
		if t.SizeIsInfinite {
			return nil, errors.Wrap(errUnbounded, "SizeOf of infinite array")
		}
		count, err := o.constantArraySize(t)
		if err != nil {
			return nil, err
		}
		elemSize, err := o.SizeOf(*t.Sub)
		if err != nil {
			return nil, err
		}
		return mustMul(elemSize, count), nil
	case expr.TUnion:
		max := decimal(0)
		for _, f := range t.Fields {
			sz, err := o.SizeOf(f.Type)
			if err != nil {
				return nil, err
			}
			if sz.Cmp(max) > 0 {
				max = sz
			}
		}
		return o.roundUp(max, decimal(int64(o.cfg.WordSize))), nil
	case expr.TStruct:
		if len(t.Fields) == 0 {
			return decimal(0), nil
		}
		last := t.Fields[len(t.Fields)-1]
		off, err := o.OffsetOf(t, last.Name)
		if err != nil {
			return nil, err
		}
		sz, err := o.SizeOf(last.Type)
		if err != nil {
			return nil, err
		}
		return mustAdd(off, sz), nil
	default:
		return nil, errors.Wrapf(errInternal, "SizeOf: unhandled type kind %v", t.Kind)
	}
}

// OffsetOf computes the byte offset of field within struct t, summing
// preceding-field sizes in declaration order (no implicit alignment
// padding beyond what the caller's field order already encodes — the
// resolver treats Type.Fields as the byte-exact authoritative layout,
// matching the way the original models padding as explicit filler
// fields rather than implicit slack).
func (o *Oracle) OffsetOf(t expr.Type, field string) (*apd.Decimal, error) {
	if t.Kind == expr.TUnion {
		if _, ok := t.FieldByName(field); !ok {
			return nil, errors.Wrapf(errInternal, "OffsetOf: no field %q in %s", field, t.Name)
		}
		return decimal(0), nil
	}
	if t.Kind != expr.TStruct {
		return nil, errors.Wrapf(errInternal, "OffsetOf: %s is not a struct", t.Name)
	}
	off := decimal(0)
	for _, f := range t.Fields {
		if f.Name == field {
			return off, nil
		}
		sz, err := o.SizeOf(f.Type)
		if err != nil {
			return nil, err
		}
		off = mustAdd(off, sz)
	}
	return nil, errors.Wrapf(errInternal, "OffsetOf: no field %q in %s", field, t.Name)
}

// FieldsByOffset returns t's fields sorted by ascending offset (they are
// already in that order for well-formed struct layouts; this guards
// against callers building one out of order before handing it to the
// Reference Builder's dynamic-offset field walk).
func (o *Oracle) FieldsByOffset(t expr.Type) ([]expr.StructField, error) {
	type withOffset struct {
		f   expr.StructField
		off *apd.Decimal
	}
	entries := make([]withOffset, 0, len(t.Fields))
	for _, f := range t.Fields {
		off, err := o.OffsetOf(t, f.Name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, withOffset{f, off})
	}
	slices.SortFunc(entries, func(a, b withOffset) int { return a.off.Cmp(b.off) })
	out := make([]expr.StructField, len(entries))
	for i, e := range entries {
		out[i] = e.f
	}
	return out, nil
}

// IsPrefixOf reports whether a's fields are a leading prefix of b's
// fields (shared leading-field layout), name-and-type-wise.
func (o *Oracle) IsPrefixOf(a, b expr.Type) bool {
	if a.Kind != expr.TStruct || b.Kind != expr.TStruct {
		return false
	}
	if len(a.Fields) > len(b.Fields) {
		return false
	}
	for i, f := range a.Fields {
		if f.Name != b.Fields[i].Name || !f.Type.Equal(b.Fields[i].Type) {
			return false
		}
	}
	return true
}

// IsSubclassOf reports whether child's type hierarchy (as resolved
// through the ClassRegistry) includes parent, directly or transitively.
func (o *Oracle) IsSubclassOf(child, parent expr.Type) bool {
	if child.Name == parent.Name {
		return true
	}
	if o.reg == nil {
		return false
	}
	visited := map[string]bool{}
	var walk func(name string) bool
	walk = func(name string) bool {
		if visited[name] {
			return false
		}
		visited[name] = true
		t, ok := o.reg.Lookup(name)
		if !ok {
			return false
		}
		for _, base := range t.BaseClasses {
			if base == parent.Name {
				return true
			}
			if walk(base) {
				return true
			}
		}
		return false
	}
	return walk(child.Name)
}

// IsCompatible reports the type-compatibility relation used to validate
// a reference's base type against its requested field/offset: two
// struct types are compatible when either is a subclass of the other,
// or one is a byte-layout prefix of the other.
func (o *Oracle) IsCompatible(a, b expr.Type) bool {
	if a.Equal(b) {
		return true
	}
	if a.Kind != expr.TStruct || b.Kind != expr.TStruct {
		return false
	}
	return o.IsSubclassOf(a, b) || o.IsSubclassOf(b, a) || o.IsPrefixOf(a, b) || o.IsPrefixOf(b, a)
}

// ScalarStep is one Member/Index projection recorded above a
// dereference, to be reapplied to the loaded value once the deref is
// resolved.
type ScalarStep struct {
	// Member is non-empty for a Member projection; Index is non-nil
	// for an array-Index projection. Exactly one is set.
	Member string
	Index  *expr.Expr
}

// ComputePointerOffset folds a chain of scalar steps into an arithmetic
// byte-offset expression, constant-folding whenever every index in the
// chain is itself a constant (mirrors compute_pointer_offset; the
// source's commented-out SSA `rename` call on this result is flagged,
// not replicated — see DESIGN.md).
func (o *Oracle) ComputePointerOffset(base expr.Type, steps []ScalarStep) (*expr.Expr, error) {
	cur := base
	total := decimal(0)
	allConst := true
	var dynamic *expr.Expr

	for _, step := range steps {
		switch {
		case step.Member != "":
			off, err := o.OffsetOf(cur, step.Member)
			if err != nil {
				return nil, err
			}
			total = mustAdd(total, off)
			f, ok := cur.FieldByName(step.Member)
			if !ok {
				return nil, errors.Wrapf(errInternal, "ComputePointerOffset: no field %q", step.Member)
			}
			cur = f.Type
		case step.Index != nil:
			elemSize, err := o.SizeOf(*cur.Sub)
			if err != nil {
				return nil, err
			}
			if step.Index.Kind == expr.KConstInt {
				idx := step.Index.IntValue
				total = mustAdd(total, mustMul(idx, elemSize))
			} else {
				allConst = false
				sizeLit := expr.IntLiteralDecimal(elemSize, expr.Int(64, false))
				term := expr.Mul(step.Index, sizeLit)
				if dynamic == nil {
					dynamic = term
				} else {
					dynamic = expr.Add(dynamic, term)
				}
			}
			cur = *cur.Sub
		default:
			return nil, errors.Wrap(errInternal, "ComputePointerOffset: empty scalar step")
		}
	}

	constLit := expr.IntLiteralDecimal(total, expr.Int(64, false))
	if allConst {
		return constLit, nil
	}
	return expr.Add(dynamic, constLit), nil
}

// constantArraySize folds t.ArraySize to a constant element count,
// failing closed if the size is a non-constant expression (the Reference
// Builder only calls SizeOf for types whose size must be statically
// known, e.g. to compute a stride; a symbolic array size where a byte
// count is required is an internal contract violation).
func (o *Oracle) constantArraySize(t expr.Type) (*apd.Decimal, error) {
	if t.ArraySize == nil {
		return nil, errors.Wrap(errInternal, "constantArraySize: nil size on a finite array")
	}
	if t.ArraySize.Kind != expr.KConstInt {
		return nil, errors.Wrap(errInternal, "constantArraySize: symbolic array size")
	}
	return t.ArraySize.IntValue, nil
}

// roundUp rounds v up to the next multiple of word (word must be > 0).
func (o *Oracle) roundUp(v, word *apd.Decimal) *apd.Decimal {
	if word.IsZero() {
		return v
	}
	rem := new(apd.Decimal)
	_, _ = ctx.Rem(rem, v, word)
	if rem.IsZero() {
		return v
	}
	return mustAdd(v, mustAdd(word, new(apd.Decimal).Neg(rem)))
}

// WordSize exposes the configured machine word size in bytes.
func (o *Oracle) WordSize() uint64 {
	return o.cfg.WordSize
}

// BigEndian exposes the configured endianness.
func (o *Oracle) BigEndian() bool {
	return o.cfg.BigEndian
}

var (
	errUnbounded = errors.New("layout: unbounded type has no fixed size")
	errInternal  = errors.New("layout: internal contract violation")
)
