// Command derefresolve runs a handful of hand-built expression-tree
// fixtures through the dereference resolver and prints the rewritten,
// dereference-free tree alongside the safety obligations it collected.
// It exists to exercise the resolver end to end without a surrounding
// symbolic-execution engine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"symderef/pkg/config"
	"symderef/pkg/expr"
	"symderef/pkg/layout"
	"symderef/pkg/obligation"
	"symderef/pkg/pointsto"
	"symderef/pkg/resolver"
	"symderef/pkg/session"
)

var (
	scenario  = flag.String("scenario", "", "run a single named scenario (default: run all)")
	bigEndian = flag.Bool("big-endian", false, "assemble ByteExtract/Concat MSB-first")
	noBounds  = flag.Bool("no-bounds-check", false, "suppress array-bounds and object out-of-bounds obligations")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "derefresolve - run fixture expressions through the dereference resolver\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	cfg.BigEndian = *bigEndian
	cfg.NoBoundsCheck = *noBounds

	for _, sc := range scenarios() {
		if *scenario != "" && sc.name != *scenario {
			continue
		}
		run(cfg, sc)
	}
}

type fixture struct {
	name string
	mode resolver.Mode
	expr *expr.Expr
	pts  pointsto.Oracle
}

func run(cfg *config.Config, sc fixture) {
	lo := layout.NewOracle(cfg, nil)
	sink := obligation.NewCollectingSink(cfg)
	sess := session.New(nil)
	r := resolver.New(sc.pts, lo, sink, sess, cfg)

	fmt.Printf("=== %s ===\n", sc.name)
	fmt.Printf("input:  %s\n", sc.expr)

	out, err := r.Rewrite(context.Background(), sc.expr, sc.mode)
	if err != nil {
		fmt.Printf("error:  %v\n\n", err)
		return
	}
	fmt.Printf("output: %s\n", out)
	if obls := sink.Obligations(); len(obls) == 0 {
		fmt.Println("obligations: none")
	} else {
		fmt.Println("obligations:")
		for _, o := range obls {
			fmt.Printf("  [%s] %s  guard=%s\n", o.Category, o.Message, o.Guard)
		}
	}
	fmt.Println()
}

// fixedOracle answers ValueSet with a constant set of entries, standing
// in for a real may-points-to analysis.
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

func scenarios() []fixture {
	intT := expr.Int(32, true)
	ptrT := expr.PointerTo(intT)

	node := expr.StructOf("node", []expr.StructField{
		{Name: "val", Type: intT},
		{Name: "next", Type: expr.Type{}}, // patched below, self-referential
	}, false, nil)
	nodePtrT := expr.PointerTo(node)
	node.Fields[1].Type = nodePtrT

	head := expr.Sym("head", nodePtrT)
	tail := expr.Sym("list_node", node)
	altTail := expr.Sym("list_node_alt", node)

	linkedListDeref := expr.MemberOf(
		expr.Dereference(
			expr.MemberOf(expr.Dereference(head), "next"),
		),
		"val",
	)
	linkedListOracle := fixedOracle{entries: []pointsto.Entry{
		objectEntry(tail, zeroOffset()),
		objectEntry(altTail, zeroOffset()),
	}}

	p := expr.Sym("p", ptrT)
	addressOfDeref := expr.AddressOf(expr.Dereference(p))

	nullPtr := expr.Sym("maybe_null", ptrT)
	nullDeref := expr.Dereference(nullPtr)
	nullOracle := fixedOracle{entries: []pointsto.Entry{nullEntry()}}

	arr := expr.Sym("buf", expr.ArrayOf(expr.ByteType(), expr.IntLiteral(8, expr.Int(64, false))))
	byteAsInt := expr.Dereference(expr.Typecast(expr.PointerTo(intT), expr.AddressOf(arr)))
	byteOracle := fixedOracle{entries: []pointsto.Entry{objectEntry(arr, zeroOffset())}}

	q := expr.Sym("q", ptrT)
	guardShortCircuit := expr.And(
		expr.NotEqual(p, expr.NullPointer(ptrT)),
		expr.Gt(expr.Dereference(p), expr.Dereference(q)),
	)
	shortCircuitScalar := expr.Sym("scalar", intT)
	shortCircuitOracle := fixedOracle{entries: []pointsto.Entry{objectEntry(shortCircuitScalar, zeroOffset())}}

	unionT := expr.UnionOf("value_union", []expr.StructField{
		{Name: "i", Type: intT},
		{Name: "f", Type: expr.Float()},
	})
	bazT := expr.StructOf("baz_layout", []expr.StructField{
		{Name: "lo", Type: expr.Int(8, false)},
		{Name: "mid", Type: expr.Int(16, false)},
		{Name: "hi", Type: expr.Int(8, false)},
	}, false, nil)
	narrowT := expr.Int(16, false)

	// up aliases either the shared union (read through its first member,
	// a clean truncating read) or a baz_layout value at a byte offset
	// that lands inside "mid" but doesn't end inside it.
	up := expr.Sym("up", expr.PointerTo(narrowT))
	unionDeref := expr.Dereference(up)
	unionVal := expr.Sym("shared_value", unionT)
	bazVal := expr.Sym("baz_value", bazT)
	unionOracle := fixedOracle{entries: []pointsto.Entry{
		objectEntry(unionVal, zeroOffset()),
		objectEntry(bazVal, offsetLit(2)),
	}}

	return []fixture{
		{name: "linked-list-traversal", mode: resolver.Read, expr: linkedListDeref, pts: linkedListOracle},
		{name: "address-of-deref-collapse", mode: resolver.Read, expr: addressOfDeref, pts: fixedOracle{}},
		{name: "null-pointer-dereference", mode: resolver.Read, expr: nullDeref, pts: nullOracle},
		{name: "byte-array-as-int", mode: resolver.Read, expr: byteAsInt, pts: byteOracle},
		{name: "short-circuit-guard", mode: resolver.Read, expr: guardShortCircuit, pts: shortCircuitOracle},
		{name: "union-via-pointer", mode: resolver.Read, expr: unionDeref, pts: unionOracle},
	}
}

func zeroOffset() *expr.Expr {
	return expr.IntLiteral(0, expr.Int(64, false))
}

func offsetLit(n int64) *expr.Expr {
	return expr.IntLiteral(n, expr.Int(64, false))
}
