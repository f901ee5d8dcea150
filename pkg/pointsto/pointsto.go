// Package pointsto declares the may-points-to collaborator: an external
// analysis the resolver queries once per dereference site
// and trusts as ground truth. Nothing in this package computes a
// points-to set; it only names the interface and the descriptor shape.
package pointsto

import "symderef/pkg/expr"

// EntryKind tags what an Entry designates.
type EntryKind int

const (
	// KindObject is a concrete target: Descriptor is populated.
	KindObject EntryKind = iota
	// KindUnknown models "points somewhere the analysis could not
	// resolve" — treated like Invalid by the Target Resolver.
	KindUnknown
	// KindInvalid models a pointer known to be invalid (freed, never
	// initialised, OOB-derived, ...).
	KindInvalid
	// KindNull models the literal null pointer.
	KindNull
)

// Descriptor is one object a pointer may designate (mirroring
// ObjectDescriptor): a root allocation plus an access path (expressed
// as the already-indexed/membered Object expression) and a byte offset
// within it, plus the alignment guarantee the analysis can vouch for.
type Descriptor struct {
	// Object is the (possibly Index/Member) expression naming the
	// target within its containing root allocation.
	Object *expr.Expr

	// Offset is the symbolic byte offset of the access within Object.
	Offset *expr.Expr

	// Alignment is a non-zero power-of-two byte alignment guarantee.
	Alignment uint64
}

// RootObject strips trailing Index/Member projections off Object and
// returns the allocation root, mirroring ObjectDescriptor.root_object().
func (d *Descriptor) RootObject() *expr.Expr {
	e := d.Object
	for e != nil {
		switch e.Kind {
		case expr.KMember:
			e = e.Base
		case expr.KIndex:
			e = e.Base
		default:
			return e
		}
	}
	return e
}

// Entry is one element of a points-to set: either a concrete Descriptor
// (KindObject) or one of the three sentinel kinds.
type Entry struct {
	Kind       EntryKind
	Descriptor *Descriptor
}

// Oracle is the points-to collaborator. ValueSet must return a stable
// result for the same pointer expression within one rewrite pass: the
// Target Resolver calls it exactly once per dereference site and
// relies on that stability when folding the result into a guarded
// union.
type Oracle interface {
	ValueSet(ptr *expr.Expr) ([]Entry, error)
}
