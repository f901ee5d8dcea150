package obligation

import (
	"fmt"

	"github.com/pkg/errors"

	"symderef/pkg/config"
	"symderef/pkg/expr"
)

// Obligation is one named safety assertion, implicitly conjoined with
// its Guard by the caller that consumes it (the SMT-backend collaborator,
// out of core scope).
type Obligation struct {
	Category Category
	Message  string
	Guard    *expr.Expr
}

// Sink is the Failure Sink contract: mirroring dereference_failure
// in the original. It is the sole egress for safety obligations; no
// resolver component may skip it to report a failure another way.
type Sink interface {
	Emit(category Category, message string, guard *expr.Expr) error
}

// CollectingSink is the default Sink: it accumulates obligations in
// memory for the caller to fold into a verification condition, honouring
// the no-pointer-check/no-bounds-check suppression flags.
type CollectingSink struct {
	cfg         *config.Config
	obligations []Obligation
}

// NewCollectingSink builds a Sink bound to the given configuration.
func NewCollectingSink(cfg *config.Config) *CollectingSink {
	return &CollectingSink{cfg: cfg}
}

// Emit records an obligation, or drops it per the configured check
// suppression flags. An (category, message) pair outside the closed
// catalog is an internal contract violation, not a silently-ignored
// emission.
func (s *CollectingSink) Emit(category Category, message string, guard *expr.Expr) error {
	wantCategory, ok := Lookup(message)
	if !ok || wantCategory != category {
		return errors.Wrapf(errInternal, "unrecognised obligation (%s, %q)", category, message)
	}

	if s.cfg != nil {
		if s.cfg.NoPointerCheck {
			return nil
		}
		if s.cfg.NoBoundsCheck && IsBounds(category, message) {
			return nil
		}
	}

	s.obligations = append(s.obligations, Obligation{Category: category, Message: message, Guard: guard})
	return nil
}

// Obligations returns every obligation recorded so far, in emission order.
func (s *CollectingSink) Obligations() []Obligation {
	return s.obligations
}

// Reset discards all recorded obligations, e.g. between independent
// top-level Rewrite calls sharing one sink.
func (s *CollectingSink) Reset() {
	s.obligations = nil
}

var errInternal = fmt.Errorf("obligation: internal contract violation")
