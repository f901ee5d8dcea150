package resolver

import (
	"context"

	"github.com/cockroachdb/apd/v3"
	"github.com/pkg/errors"

	"symderef/pkg/expr"
	"symderef/pkg/guard"
	"symderef/pkg/obligation"
	"symderef/pkg/pointsto"
	"symderef/pkg/session"
)

// buildReferenceTo is the Reference Builder's entry point: given one
// target object plus a symbolic byte offset, synthesise a
// scalar access expression (or, when wantType is itself a struct or
// union, a sub-object reference), checking bounds, alignment, liveness, and type
// compatibility as it goes. This is the engineering heart of the
// resolver and the largest component by line share.
func (r *Resolver) buildReferenceTo(ctx context.Context, desc *pointsto.Descriptor, wantType expr.Type, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	if err := r.preflight(desc, wantType, g, mode); err != nil {
		return nil, err
	}

	if wantType.Kind == expr.TStruct || wantType.Kind == expr.TUnion {
		return r.buildStructReference(desc.Object, desc.Offset, wantType, g, mode)
	}
	return r.buildScalarReference(desc.Object, desc.Offset, wantType, g, mode, desc.Alignment)
}

// preflight runs the liveness, code/data separation, and bounds checks
// common to every shape of reference.
func (r *Resolver) preflight(desc *pointsto.Descriptor, wantType expr.Type, g *guard.Stack, mode Mode) error {
	if err := r.checkLiveness(desc, g, mode); err != nil {
		return err
	}
	if err := r.checkCodeSeparation(desc, wantType, g, mode); err != nil {
		return err
	}
	return r.checkBounds(desc.Object.Type, desc.Offset, wantType, g)
}

// checkLiveness implements the liveness preflight: a dynamic
// allocation (name prefix symex_dynamic::) must still be ValidObject;
// anything else must not be accessed in Free mode.
func (r *Resolver) checkLiveness(desc *pointsto.Descriptor, g *guard.Stack, mode Mode) error {
	root := desc.RootObject()
	if root == nil || root.Kind != expr.KSymbol {
		return nil
	}
	if session.IsDynamicAllocation(root.Name) {
		notValid := expr.Not(expr.ValidObjectOf(expr.AddressOf(root)))
		return r.emit(obligation.CategoryPointerDereference, obligation.MsgInvalidatedDynamicObject, r.withGuard(g, notValid))
	}
	if mode == Free {
		return r.emit(obligation.CategoryPointerDereference, obligation.MsgFreeOfNonDynamicMemory, g.Conjunction())
	}
	if mode == Write && root.Type.Kind == expr.TString {
		return r.emit(obligation.CategoryPointerDereference, obligation.MsgWriteToStringConstant, g.Conjunction())
	}
	return nil
}

// checkCodeSeparation enforces code/data separation: code objects may
// only be read at offset zero; every other combination of code/data access is a
// failure. Per the open question resolved in DESIGN.md, a non-Read
// access to a code object emits only the most specific obligation
// (code-accessed-in-write-or-free-mode), not also the non-zero-offset
// one.
func (r *Resolver) checkCodeSeparation(desc *pointsto.Descriptor, wantType expr.Type, g *guard.Stack, mode Mode) error {
	objType := desc.Object.Type

	if objType.Kind == expr.TCode && wantType.Kind != expr.TCode {
		if err := r.emit(obligation.CategoryCodeSeparation, obligation.MsgCodeAccessedNonCodeType, g.Conjunction()); err != nil {
			return err
		}
	}
	if objType.Kind != expr.TCode && wantType.Kind == expr.TCode {
		if err := r.emit(obligation.CategoryCodeSeparation, obligation.MsgDataAccessedCodeType, g.Conjunction()); err != nil {
			return err
		}
	}
	if objType.Kind == expr.TCode {
		if mode != Read {
			return r.emit(obligation.CategoryCodeSeparation, obligation.MsgCodeAccessedWriteOrFree, g.Conjunction())
		}
		if !isZeroOffset(desc.Offset) {
			nonZero := expr.NotEqual(desc.Offset, zero())
			return r.emit(obligation.CategoryCodeSeparation, obligation.MsgCodeAccessedNonZeroOffset, r.withGuard(g, nonZero))
		}
	}
	return nil
}

func isZeroOffset(offset *expr.Expr) bool {
	return offset.Kind == expr.KConstInt && offset.IntValue.IsZero()
}

func zero() *expr.Expr {
	return expr.IntLiteral(0, expr.Int(64, false))
}

// accessEndsWithinField reports whether an access starting at off,
// wantSize bytes wide, stays within [fieldOff, fieldOff+fieldSize) — not
// just starting inside the field but also ending inside it.
func accessEndsWithinField(off, fieldOff, wantSize, fieldSize *apd.Decimal) bool {
	relEnd := new(apd.Decimal)
	_, _ = arithCtx.Sub(relEnd, off, fieldOff)
	_, _ = arithCtx.Add(relEnd, relEnd, wantSize)
	return relEnd.Cmp(fieldSize) <= 0
}

// checkBounds implements the bounds preflight: for array
// targets, (offset + sizeof(type)) ≤ array_size*sizeof(elem), skipped
// for infinite arrays; for any other sized target, the analogous
// access-past-end check feeding "Access to object out of bounds".
func (r *Resolver) checkBounds(objType expr.Type, offset *expr.Expr, wantType expr.Type, g *guard.Stack) error {
	if objType.Kind == expr.TArray && objType.SizeIsInfinite {
		return nil
	}
	objSize, err := r.Layout.SizeOf(objType)
	if err != nil {
		return nil // unbounded/symbolic-size object: nothing to check
	}
	wantSize, err := r.Layout.SizeOf(wantType)
	if err != nil {
		return errors.Wrap(err, "checkBounds: sizeof wanted type")
	}

	objSizeLit := expr.IntLiteralDecimal(objSize, expr.Int(64, false))
	wantSizeLit := expr.IntLiteralDecimal(wantSize, expr.Int(64, false))
	end := expr.Add(offset, wantSizeLit)
	violated := expr.Gt(end, objSizeLit)

	if objType.Kind == expr.TArray {
		return r.emit(obligation.CategoryArrayBounds, obligation.MsgArrayBoundsViolated, r.withGuard(g, violated))
	}
	return r.emit(obligation.CategoryPointerDereference, obligation.MsgAccessOutOfBounds, r.withGuard(g, violated))
}

// buildScalarReference dispatches on whether the offset is constant or
// symbolic.
func (r *Resolver) buildScalarReference(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode, alignment uint64) (*expr.Expr, error) {
	if offset.Kind == expr.KConstInt {
		return r.constructFromConstOffset(object, offset, wantType, g, mode)
	}
	return r.constructFromDynOffset(object, offset, wantType, g, mode, alignment)
}

// constructFromConstOffset handles a constant-offset scalar reference
// over an array, a string, or a plain struct/union/other base type.
func (r *Resolver) constructFromConstOffset(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	switch object.Type.Kind {
	case expr.TArray, expr.TString:
		return r.constructFromConstArrayOffset(object, offset, wantType, g, mode)
	case expr.TStruct, expr.TUnion:
		return r.constructFromConstStructOffset(object, offset, wantType, g, mode)
	case expr.TCode:
		return expr.Typecast(wantType, object), nil
	default:
		return r.constructFromConstScalarOffset(object, offset, wantType)
	}
}

// constructFromConstArrayOffset handles a constant-offset scalar
// reference into an array, recursing through nested arrays/structs and
// byte-extracting once it lands on a scalar element.
func (r *Resolver) constructFromConstArrayOffset(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	if object.Type.Kind == expr.TString {
		// A string is a byte sequence: byte-extract directly.
		return expr.ByteExtractOf(wantType, object, offset, r.Layout.BigEndian()), nil
	}
	elemType := *object.Type.Sub
	elemSize, err := r.Layout.SizeOf(elemType)
	if err != nil {
		return nil, err
	}
	wantSize, err := r.Layout.SizeOf(wantType)
	if err != nil {
		return nil, err
	}

	switch elemType.Kind {
	case expr.TArray, expr.TStruct, expr.TUnion:
		// Multi-dimensional/structured subtype: divide offset by outer
		// stride, index, recurse with the remainder.
		idx, rem, err := divModConst(offset, elemSize)
		if err != nil {
			return nil, err
		}
		idxLit := expr.IntLiteralDecimal(idx, expr.Int(64, true))
		elem := expr.IndexOf(object, idxLit)
		remLit := expr.IntLiteralDecimal(rem, expr.Int(64, false))
		if elemType.Kind == expr.TStruct || elemType.Kind == expr.TUnion {
			return r.constructFromConstStructOffset(elem, remLit, wantType, g, mode)
		}
		return r.constructFromConstArrayOffset(elem, remLit, wantType, g, mode)

	default:
		if elemSize.Cmp(wantSize) == 0 {
			idx, _, err := divModConst(offset, elemSize)
			if err != nil {
				return nil, err
			}
			idxLit := expr.IntLiteralDecimal(idx, expr.Int(64, true))
			elem := expr.IndexOf(object, idxLit)
			if elem.Type.Equal(wantType) {
				return elem, nil
			}
			return expr.Typecast(wantType, elem), nil
		}
		if elemSize.Cmp(wantSize) > 0 {
			idx, rem, err := divModConst(offset, elemSize)
			if err != nil {
				return nil, err
			}
			if !rem.IsZero() {
				if err := r.emit(obligation.CategoryPointerDereference, obligation.MsgUnalignedNonByteArray, g.Conjunction()); err != nil {
					return nil, err
				}
			}
			idxLit := expr.IntLiteralDecimal(idx, expr.Int(64, true))
			elem := expr.IndexOf(object, idxLit)
			remLit := expr.IntLiteralDecimal(rem, expr.Int(64, false))
			return expr.ByteExtractOf(wantType, elem, remLit, r.Layout.BigEndian()), nil
		}
		// Byte subtype (elemSize < wantSize): byte-extract directly.
		return expr.ByteExtractOf(wantType, object, offset, r.Layout.BigEndian()), nil
	}
}

// constructFromConstScalarOffset handles a constant-offset scalar
// reference directly over a scalar base object.
func (r *Resolver) constructFromConstScalarOffset(object, offset *expr.Expr, wantType expr.Type) (*expr.Expr, error) {
	objSize, err := r.Layout.SizeOf(object.Type)
	if err != nil {
		return nil, err
	}
	wantSize, err := r.Layout.SizeOf(wantType)
	if err != nil {
		return nil, err
	}
	if isZeroOffset(offset) && objSize.Cmp(wantSize) == 0 {
		if object.Type.Equal(wantType) {
			return object, nil
		}
		return expr.Typecast(wantType, object), nil
	}
	return expr.ByteExtractOf(wantType, object, offset, r.Layout.BigEndian()), nil
}

// divModConst divides a constant offset expression by a constant
// divisor, returning the exact integer quotient and remainder.
func divModConst(offset *expr.Expr, divisor *apd.Decimal) (quotient, remainder *apd.Decimal, err error) {
	if offset.Kind != expr.KConstInt {
		return nil, nil, errors.Wrap(errInternal, "divModConst: offset is not constant")
	}
	q := new(apd.Decimal)
	rem := new(apd.Decimal)
	if _, err := arithCtx.QuoInteger(q, offset.IntValue, divisor); err != nil {
		return nil, nil, errors.Wrap(err, "divModConst: quotient")
	}
	if _, err := arithCtx.Rem(rem, offset.IntValue, divisor); err != nil {
		return nil, nil, errors.Wrap(err, "divModConst: remainder")
	}
	return q, rem, nil
}

var arithCtx = apd.BaseContext.WithPrecision(200)

// constructFromConstStructOffset locates the
// field a constant offset lands in and recurses, rebasing the offset to
// that field's own origin. An offset starting inside a field but
// extending past its end straddles into padding or the next field and
// is a misaligned access, reported unconditionally. An offset landing
// strictly between fields (padding) or past the struct's end is not
// itself a field access; it is reported once, in Read mode only, and
// otherwise silently targets a failed symbol.
func (r *Resolver) constructFromConstStructOffset(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	fields, err := r.Layout.FieldsByOffset(object.Type)
	if err != nil {
		return nil, err
	}
	wantSize, err := r.Layout.SizeOf(wantType)
	if err != nil {
		return nil, err
	}
	off := offset.IntValue

	for _, f := range fields {
		fieldOff, err := r.Layout.OffsetOf(object.Type, f.Name)
		if err != nil {
			return nil, err
		}
		fieldSize, err := r.Layout.SizeOf(f.Type)
		if err != nil {
			continue
		}
		fieldEnd := addDecimal(fieldOff, fieldSize)

		switch {
		case off.Cmp(fieldOff) == 0:
			member := expr.MemberOf(object, f.Name)
			switch {
			case wantSize.Cmp(fieldSize) == 0:
				if member.Type.Equal(wantType) {
					return member, nil
				}
				return expr.Typecast(wantType, member), nil
			case f.Type.Kind == expr.TStruct || f.Type.Kind == expr.TUnion || f.Type.Kind == expr.TArray:
				return r.constructFromConstOffset(member, zero(), wantType, g, mode)
			case wantSize.Cmp(fieldSize) > 0:
				if err := r.emit(obligation.CategoryPointerDereference, obligation.MsgOverSizedReadOfStructField, g.Conjunction()); err != nil {
					return nil, err
				}
				return r.Session.FreshFailedSymbol(wantType), nil
			default:
				return expr.ByteExtractOf(wantType, member, zero(), r.Layout.BigEndian()), nil
			}

		case off.Cmp(fieldOff) > 0 && accessEndsWithinField(off, fieldOff, wantSize, fieldSize):
			rebased := new(apd.Decimal)
			_, _ = arithCtx.Sub(rebased, off, fieldOff)
			rebasedLit := expr.IntLiteralDecimal(rebased, expr.Int(64, false))
			return r.constructFromConstOffset(expr.MemberOf(object, f.Name), rebasedLit, wantType, g, mode)

		case off.Cmp(fieldEnd) < 0:
			// Starts inside this field but, by elimination, doesn't end
			// inside it: reading padding or straddling into the next
			// field.
			if err := r.emit(obligation.CategoryPointerDereference, obligation.MsgMisalignedStructField, g.Conjunction()); err != nil {
				return nil, err
			}
			return r.Session.FreshFailedSymbol(wantType), nil
		}
	}

	// Inter-field padding or past the struct's end: no named field owns
	// this offset.
	if mode == Read {
		if err := r.emit(obligation.CategoryPointerDereference, obligation.MsgReadsBetweenStructFields, g.Conjunction()); err != nil {
			return nil, err
		}
	}
	return r.Session.FreshFailedSymbol(wantType), nil
}

// constructFromDynOffset dispatches a symbolic byte offset on the
// target object's shape.
func (r *Resolver) constructFromDynOffset(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode, alignment uint64) (*expr.Expr, error) {
	switch object.Type.Kind {
	case expr.TArray, expr.TString:
		return r.constructFromDynArrayOffset(object, offset, wantType, g, alignment)
	case expr.TStruct, expr.TUnion:
		return r.constructFromDynStructOffset(object, offset, wantType, g, mode)
	case expr.TCode:
		return expr.Typecast(wantType, object), nil
	default:
		return r.constructFromDynScalarOffset(object, offset, wantType)
	}
}

// constructFromDynArrayOffset indexes directly
// when the element size matches the wanted type exactly (asserting
// element alignment, since the division the index implies cannot be
// folded at rewrite time, unless the points-to alignment guarantee
// already covers it), otherwise stitches together however many
// elements the wanted width spans via nested Concat nodes.
func (r *Resolver) constructFromDynArrayOffset(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, alignment uint64) (*expr.Expr, error) {
	if object.Type.Kind == expr.TString {
		// A string is a byte sequence: byte-extract directly.
		return expr.ByteExtractOf(wantType, object, offset, r.Layout.BigEndian()), nil
	}
	elemType := *object.Type.Sub
	elemSize, err := r.Layout.SizeOf(elemType)
	if err != nil {
		return nil, err
	}
	wantSize, err := r.Layout.SizeOf(wantType)
	if err != nil {
		return nil, err
	}

	elemSizeLit := expr.IntLiteralDecimal(elemSize, offset.Type)
	elemBytes, err := elemSize.Int64()
	if err != nil {
		return nil, errors.Wrap(err, "constructFromDynArrayOffset: element size")
	}

	if !alignmentCovers(alignment, elemBytes) {
		rem := expr.Mod(offset, elemSizeLit)
		misaligned := expr.NotEqual(rem, expr.IntLiteral(0, offset.Type))
		if err := r.emit(obligation.CategoryPointerAlignment, obligation.MsgUnalignedArrayAccess, r.withGuard(g, misaligned)); err != nil {
			return nil, err
		}
	}
	idx := expr.Div(offset, elemSizeLit)

	if elemSize.Cmp(wantSize) == 0 {
		elem := expr.IndexOf(object, idx)
		if elem.Type.Equal(wantType) {
			return elem, nil
		}
		return expr.Typecast(wantType, elem), nil
	}

	return r.stitchFromArray(object, idx, wantType, wantSize, elemBytes)
}

// alignmentCovers reports whether a points-to alignment guarantee of
// alignment bytes already implies elemBytes-aligned access, making the
// runtime modulo assertion redundant.
func alignmentCovers(alignment uint64, elemBytes int64) bool {
	return alignment != 0 && elemBytes > 0 && alignment >= uint64(elemBytes)
}

// stitchFromArray builds a sequence of elements starting at idx,
// concatenating them (respecting Layout.BigEndian()) until the result
// spans at least wantSize bytes, then typecasts down to wantType. This
// is the byte-stitching counterpart to the single-Index fast path above,
// used whenever the array's element width doesn't match wantType's
// width exactly.
func (r *Resolver) stitchFromArray(object, idx *expr.Expr, wantType expr.Type, wantSize *apd.Decimal, elemBytes int64) (*expr.Expr, error) {
	if elemBytes <= 0 {
		return nil, errors.Wrap(errInternal, "stitchFromArray: non-positive element size")
	}
	wantBytes, err := wantSize.Int64()
	if err != nil {
		return nil, errors.Wrap(err, "stitchFromArray: want size")
	}
	n := (wantBytes + elemBytes - 1) / elemBytes
	if n < 1 {
		n = 1
	}

	bigEndian := r.Layout.BigEndian()
	var acc *expr.Expr
	width := uint64(0)
	for i := int64(0); i < n; i++ {
		step := expr.IntLiteral(i, idx.Type)
		elemIdx := expr.Add(idx, step)
		elem := expr.IndexOf(object, elemIdx)

		width += uint64(elemBytes) * 8
		if acc == nil {
			acc = elem
			continue
		}
		resType := expr.Int(width, false)
		if bigEndian {
			// Lower addresses are more significant: the running
			// accumulator (earlier elements) stays the high half.
			acc = expr.ConcatOf(resType, acc, elem)
		} else {
			// Lower addresses are less significant: each new,
			// higher-address element becomes the new high half.
			acc = expr.ConcatOf(resType, elem, acc)
		}
	}

	if acc.Type.Equal(wantType) {
		return acc, nil
	}
	return expr.Typecast(wantType, acc), nil
}

// constructFromDynStructOffset folds the
// struct's fields into a guarded If-chain keyed on whether the symbolic
// offset falls within each field's word-rounded window, recursing into
// whichever field it lands in with the offset rebased to that field's
// origin. A window too small for the wanted width is an oversized
// access rather than a legal one.
func (r *Resolver) constructFromDynStructOffset(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	fields, err := r.Layout.FieldsByOffset(object.Type)
	if err != nil {
		return nil, err
	}
	wantSize, err := r.Layout.SizeOf(wantType)
	if err != nil {
		return nil, err
	}
	word := decimalWord(r.Layout.WordSize())
	offsetType := offset.Type

	acc := r.Session.FreshFailedSymbol(wantType)

	for i := len(fields) - 1; i >= 0; i-- {
		f := fields[i]
		fieldOff, err := r.Layout.OffsetOf(object.Type, f.Name)
		if err != nil {
			return nil, err
		}
		fieldSize, err := r.Layout.SizeOf(f.Type)
		if err != nil {
			continue
		}
		window := roundUpWord(fieldSize, word)

		fieldOffLit := expr.IntLiteralDecimal(fieldOff, offsetType)
		windowEndLit := expr.IntLiteralDecimal(addDecimal(fieldOff, window), offsetType)
		inWindow := expr.And(expr.Ge(offset, fieldOffLit), expr.Lt(offset, windowEndLit))

		if wantSize.Cmp(window) > 0 {
			localGuard := g.Clone()
			localGuard.Push(inWindow)
			if err := r.emit(obligation.CategoryMemoryModel, obligation.MsgOversizedFieldOffset, localGuard.Conjunction()); err != nil {
				return nil, err
			}
			acc = expr.If(inWindow, r.Session.FreshFailedSymbol(wantType), acc)
			continue
		}

		member := expr.MemberOf(object, f.Name)
		rebased := expr.Sub(offset, fieldOffLit)
		value, err := r.constructFromDynOffset(member, rebased, wantType, g, mode, 0)
		if err != nil {
			return nil, err
		}
		acc = expr.If(inWindow, value, acc)
	}

	return acc, nil
}

// constructFromDynScalarOffset handles the case where a symbolic
// offset into a scalar is always a byte-level extract; there is no
// narrower construction available once the index itself is symbolic.
func (r *Resolver) constructFromDynScalarOffset(object, offset *expr.Expr, wantType expr.Type) (*expr.Expr, error) {
	return expr.ByteExtractOf(wantType, object, offset, r.Layout.BigEndian()), nil
}

func addDecimal(a, b *apd.Decimal) *apd.Decimal {
	out := new(apd.Decimal)
	_, _ = arithCtx.Add(out, a, b)
	return out
}

func decimalWord(w uint64) *apd.Decimal {
	return new(apd.Decimal).SetFinite(int64(w), 0)
}

// roundUpWord rounds v up to the next multiple of word (word must be > 0).
func roundUpWord(v, word *apd.Decimal) *apd.Decimal {
	if word.IsZero() {
		return v
	}
	rem := new(apd.Decimal)
	_, _ = arithCtx.Rem(rem, v, word)
	if rem.IsZero() {
		return v
	}
	diff := new(apd.Decimal)
	_, _ = arithCtx.Sub(diff, word, rem)
	return addDecimal(v, diff)
}

// structCandidate is one sub-object of a struct type compatible with a
// requested struct/union want type, at a known cumulative byte offset.
type structCandidate struct {
	offset *apd.Decimal
	path   []string
}

// findCompatibleOffsets walks t's field tree (including t itself at the
// given base) collecting every sub-object whose type is compatible with
// wantType (the subclass/prefix compatibility relation), each
// recorded by its cumulative offset and the member path to reach it.
func (r *Resolver) findCompatibleOffsets(t expr.Type, wantType expr.Type, base *apd.Decimal) ([]structCandidate, error) {
	var out []structCandidate
	if r.Layout.IsCompatible(t, wantType) {
		out = append(out, structCandidate{offset: base, path: nil})
	}
	if t.Kind != expr.TStruct && t.Kind != expr.TUnion {
		return out, nil
	}
	for _, f := range t.Fields {
		fieldOff, err := r.Layout.OffsetOf(t, f.Name)
		if err != nil {
			return nil, err
		}
		abs := addDecimal(base, fieldOff)
		sub, err := r.findCompatibleOffsets(f.Type, wantType, abs)
		if err != nil {
			return nil, err
		}
		for _, c := range sub {
			path := make([]string, 0, len(c.path)+1)
			path = append(path, f.Name)
			path = append(path, c.path...)
			out = append(out, structCandidate{offset: c.offset, path: path})
		}
	}
	return out, nil
}

func memberChain(object *expr.Expr, path []string) *expr.Expr {
	cur := object
	for _, name := range path {
		cur = expr.MemberOf(cur, name)
	}
	return cur
}

// buildStructReference implements the Struct-reference construction
// algorithm (distinct from scalar reference construction): wantType is
// itself an aggregate, so the target must be object itself
// or a sub-object reachable through a chain of compatible (subclass or
// byte-prefix) fields, at the exact offset requested.
func (r *Resolver) buildStructReference(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, mode Mode) (*expr.Expr, error) {
	candidates, err := r.findCompatibleOffsets(object.Type, wantType, new(apd.Decimal))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		if err := r.emit(obligation.CategoryMemoryModel, obligation.MsgIncompatibleBaseType, g.Conjunction()); err != nil {
			return nil, err
		}
		return r.Session.FreshFailedSymbol(wantType), nil
	}
	if offset.Kind == expr.KConstInt {
		return r.buildStructReferenceConst(object, offset, wantType, g, candidates)
	}
	return r.buildStructReferenceDyn(object, offset, wantType, g, candidates)
}

func (r *Resolver) buildStructReferenceConst(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, candidates []structCandidate) (*expr.Expr, error) {
	for _, c := range candidates {
		if c.offset.Cmp(offset.IntValue) != 0 {
			continue
		}
		val := memberChain(object, c.path)
		if val.Type.Equal(wantType) {
			return val, nil
		}
		return expr.Typecast(wantType, val), nil
	}
	if err := r.emit(obligation.CategoryMemoryModel, obligation.MsgIllegalOffset, g.Conjunction()); err != nil {
		return nil, err
	}
	return r.Session.FreshFailedSymbol(wantType), nil
}

func (r *Resolver) buildStructReferenceDyn(object, offset *expr.Expr, wantType expr.Type, g *guard.Stack, candidates []structCandidate) (*expr.Expr, error) {
	acc := r.Session.FreshFailedSymbol(wantType)
	var noneGuard *expr.Expr

	for i := len(candidates) - 1; i >= 0; i-- {
		c := candidates[i]
		val := memberChain(object, c.path)
		if !val.Type.Equal(wantType) {
			val = expr.Typecast(wantType, val)
		}
		candLit := expr.IntLiteralDecimal(c.offset, offset.Type)
		eq := expr.Equal(offset, candLit)
		acc = expr.If(eq, val, acc)

		neq := expr.NotEqual(offset, candLit)
		if noneGuard == nil {
			noneGuard = neq
		} else {
			noneGuard = expr.And(noneGuard, neq)
		}
	}

	if err := r.emit(obligation.CategoryMemoryModel, obligation.MsgIllegalOffset, r.withGuard(g, noneGuard)); err != nil {
		return nil, err
	}
	return acc, nil
}
