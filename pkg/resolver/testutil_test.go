package resolver

import (
	"symderef/pkg/config"
	"symderef/pkg/expr"
	"symderef/pkg/layout"
	"symderef/pkg/obligation"
	"symderef/pkg/pointsto"
	"symderef/pkg/session"
)

// fixedOracle answers ValueSet with a constant points-to set, standing in
// for a real may-points-to analysis in tests that only care about the
// resolver's own rewriting logic.
type fixedOracle struct {
	entries []pointsto.Entry
}

func (f fixedOracle) ValueSet(*expr.Expr) ([]pointsto.Entry, error) {
	return f.entries, nil
}

func objectEntry(object, offset *expr.Expr) pointsto.Entry {
	return pointsto.Entry{Kind: pointsto.KindObject, Descriptor: &pointsto.Descriptor{Object: object, Offset: offset, Alignment: 1}}
}

func nullEntry() pointsto.Entry { return pointsto.Entry{Kind: pointsto.KindNull} }

func invalidEntry() pointsto.Entry { return pointsto.Entry{Kind: pointsto.KindInvalid} }

func zeroOffset() *expr.Expr {
	return expr.IntLiteral(0, expr.Int(64, false))
}

// newTestResolver builds a Resolver wired to a CollectingSink so tests can
// inspect the obligations a rewrite produced, plus the sink and session
// for direct assertions.
func newTestResolver(pts pointsto.Oracle) (*Resolver, *obligation.CollectingSink, *session.Session) {
	cfg := config.Default()
	lo := layout.NewOracle(cfg, nil)
	sink := obligation.NewCollectingSink(cfg)
	sess := session.New(nil)
	r := New(pts, lo, sink, sess, cfg)
	return r, sink, sess
}

func i32Type() expr.Type { return expr.Int(32, true) }
