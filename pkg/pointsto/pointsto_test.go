package pointsto

import (
	"testing"

	"symderef/pkg/expr"
)

func TestRootObjectOfPlainSymbolIsItself(t *testing.T) {
	sym := expr.Sym("x", expr.Int(32, true))
	d := &Descriptor{Object: sym}
	if got := d.RootObject(); got != sym {
		t.Errorf("RootObject() of a bare symbol = %v, want the symbol itself", got)
	}
}

func TestRootObjectStripsMemberAndIndexChain(t *testing.T) {
	st := expr.StructOf("s", []expr.StructField{{Name: "f", Type: expr.Int(32, true)}}, false, nil)
	arr := expr.Sym("arr", expr.ArrayOf(st, expr.IntLiteral(4, expr.Int(64, false))))
	elem := expr.IndexOf(arr, expr.IntLiteral(1, expr.Int(64, false)))
	member := expr.MemberOf(elem, "f")

	d := &Descriptor{Object: member}
	if got := d.RootObject(); got != arr {
		t.Errorf("RootObject() through an Index/Member chain = %v, want the allocation root %v", got, arr)
	}
}

func TestRootObjectOfNilObjectIsNil(t *testing.T) {
	d := &Descriptor{Object: nil}
	if got := d.RootObject(); got != nil {
		t.Errorf("RootObject() of a nil Object = %v, want nil", got)
	}
}
