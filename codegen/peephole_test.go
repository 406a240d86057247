// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"testing"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3/op"
)

// newEmitGen returns a generator with an open method scope, for driving
// the emitter directly.
func newEmitGen() *Generator {
	g := New(&ast.Unit{Syms: ast.NewSymbolTable()}, &DiagnosticSink{}, Config{})
	g.m = &methodState{name: "test", named: make(map[string]*Label)}
	return g
}

func tail(g *Generator, n int) []byte {
	b := g.cs.Bytes()
	return b[len(b)-n:]
}

func TestDiscMerging(t *testing.T) {
	g := newEmitGen()
	g.emit(op.Push1)
	g.emit(op.Push1)
	g.emit(op.Push1)
	g.emitDisc()
	if got := tail(g, 1); got[0] != op.Disc {
		t.Fatalf("got %#x, want DISC", got[0])
	}
	g.emitDisc()
	if got := tail(g, 2); got[0] != op.Disc1 || got[1] != 2 {
		t.Fatalf("got % x, want DISC1 2", got)
	}
	g.emitDisc()
	if got := tail(g, 2); got[0] != op.Disc1 || got[1] != 3 {
		t.Fatalf("got % x, want DISC1 3", got)
	}
	if g.stk.depth != 0 {
		t.Fatalf("depth = %d, want 0", g.stk.depth)
	}
}

func TestReturnValueFusion(t *testing.T) {
	for _, tc := range []struct {
		push byte
		want byte
	}{
		{op.PushTrue, op.RetTrue},
		{op.Push1, op.RetTrue},
		{op.PushNil, op.RetNil},
		{op.GetR0, op.Ret},
	} {
		g := newEmitGen()
		g.emit(tc.push)
		g.emitRetVal()
		if got := tail(g, 1); got[0] != tc.want {
			t.Errorf("%#x + RETVAL = %#x, want %#x", tc.push, got[0], tc.want)
		}
		if g.stk.depth != 0 || g.stk.max != 0 {
			t.Errorf("%#x + RETVAL: depth %d max %d, want 0 0", tc.push, g.stk.depth, g.stk.max)
		}
	}
}

func TestDuplicateReturnDropped(t *testing.T) {
	g := newEmitGen()
	g.emitAbsorbing(op.RetNil)
	g.emitAbsorbing(op.RetNil)
	if got := g.cs.Len(); got != 1 {
		t.Fatalf("stream length %d, want 1", got)
	}
}

func TestCompareJumpFusion(t *testing.T) {
	for _, tc := range []struct {
		cmp  byte
		jump byte
		want byte
	}{
		{op.Gt, op.Jf, op.Jle},
		{op.Eq, op.Jt, op.Je},
		{op.Lt, op.Jf, op.Jge},
		{op.Ne, op.Jf, op.Je},
	} {
		g := newEmitGen()
		g.emit(op.Push1)
		g.emit(op.Push1)
		g.emit(tc.cmp)
		l := g.newLbl()
		g.emitJumpTo(tc.jump, l)
		g.defineLabel(l)
		b := g.cs.Bytes()
		if b[len(b)-3] != tc.want {
			t.Errorf("%#x;%#x = %#x, want %#x", tc.cmp, tc.jump, b[len(b)-3], tc.want)
		}
	}
}

func TestChainedNotComparisonFusion(t *testing.T) {
	// EQ ; NOT ; JT folds twice, into JNE
	g := newEmitGen()
	g.emit(op.Push1)
	g.emit(op.Push1)
	g.emit(op.Eq)
	g.emitNot()
	l := g.newLbl()
	g.emitJumpTo(op.Jt, l)
	g.defineLabel(l)
	b := g.cs.Bytes()
	if b[len(b)-3] != op.Jne {
		t.Fatalf("EQ;NOT;JT = %#x, want JNE", b[len(b)-3])
	}
}

func TestLabelDefinitionClearsWindow(t *testing.T) {
	g := newEmitGen()
	g.emit(op.Push1)
	g.emit(op.Push1)
	g.emit(op.Eq)
	l := g.newLbl()
	g.defineLabel(l) // control can enter here; no fusion allowed
	tgt := g.newLbl()
	g.emitJumpTo(op.Jt, tgt)
	g.defineLabel(tgt)
	b := g.cs.Bytes()
	if b[len(b)-3] != op.Jt {
		t.Fatalf("fusion across a label: got %#x, want JT", b[len(b)-3])
	}
}

func TestGetLocalIndexFusion(t *testing.T) {
	g := newEmitGen()
	g.emitU8(op.GetLcl1, 4)
	g.emitIndexConst(3)
	b := g.cs.Bytes()
	if b[len(b)-3] != op.IdxLcl1Int8 || b[len(b)-2] != 4 || b[len(b)-1] != 3 {
		t.Fatalf("GETLCL1 4; IDXINT8 3 = % x, want IDXLCL1INT8 4 3", b[len(b)-3:])
	}
}
