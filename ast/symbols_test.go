// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import "testing"

func TestSymbolTable(t *testing.T) {
	tab := NewSymbolTable()
	f := &FuncSym{Name: "main"}
	if err := tab.Add(f); err != nil {
		t.Fatal(err)
	}
	if err := tab.Add(&ObjSym{Name: "main"}); err == nil {
		t.Fatal("duplicate name accepted")
	}
	if got := tab.Find("main"); got != Symbol(f) {
		t.Fatalf("Find returned %v", got)
	}
	if tab.Find("missing") != nil {
		t.Fatal("missing symbol found")
	}
	if len(tab.Funcs) != 1 {
		t.Fatalf("funcs = %d", len(tab.Funcs))
	}
}

func TestFuncSigRange(t *testing.T) {
	sig := FuncSig{Args: 2, OptArgs: 1}
	if sig.MinArgs() != 2 || sig.MaxArgs() != 3 {
		t.Fatalf("range = [%d, %d]", sig.MinArgs(), sig.MaxArgs())
	}
	va := FuncSig{Args: 1, Varargs: true}
	if va.MaxArgs() != -1 {
		t.Fatal("varargs max must be unbounded")
	}
}

func TestCodeBodySig(t *testing.T) {
	b := &CodeBody{
		Params:      []*Local{{Num: 0}, {Num: 1}},
		OptParams:   []*OptParam{{Local: &Local{}}},
		VarargsList: &Local{},
	}
	sig := b.Sig()
	if sig.Args != 2 || sig.OptArgs != 1 || !sig.Varargs {
		t.Fatalf("sig = %+v", sig)
	}
}
