// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/disasm"
	"github.com/go-interpreter/tads3/image"
	"github.com/go-interpreter/tads3/t3"
	"github.com/go-interpreter/tads3/t3/op"
)

func TestPoolObjectsNeverSpanPages(t *testing.T) {
	// several methods with a tiny page size force page padding
	var fns []*ast.FuncSym
	for _, name := range []string{"_main", "f1", "f2", "f3"} {
		fns = append(fns, fn(name, 0, 0,
			&ast.ReturnStmt{Val: strExpr("result of " + name)}))
	}
	g, sink := compile(t, newUnit(fns...), Config{PageSize: 64})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	p, err := g.Finalize()
	require.NoError(t, err)

	for _, a := range g.codeAnchors {
		start := uint32(a.Addr())
		end := start + a.Len - 1
		assert.Equal(t, start/64, end/64,
			"anchor %q crosses a page boundary", a.Name)
	}
	for i, page := range p.CodePages {
		if i < len(p.CodePages)-1 {
			assert.Len(t, page, 64)
		}
	}
}

func TestOversizedPoolObjectRejected(t *testing.T) {
	stmts := make([]ast.Stmt, 0, 40)
	for i := 0; i < 40; i++ {
		stmts = append(stmts, &ast.ExprStmt{X: &ast.AssignExpr{
			Kind: ast.AsiSimple,
			Lhs:  localRef(lcl(0)),
			Rhs:  intExpr(1000 + int32(i)),
		}})
	}
	g, sink := compile(t, newUnit(fn("f", 0, 1, stmts...)), Config{PageSize: 32})
	require.True(t, sink.OK())

	_, err := g.Finalize()
	var tooBig ObjectTooLargeError
	require.ErrorAs(t, err, &tooBig)
}

func TestImageRoundTrip(t *testing.T) {
	greet := fn("greet", 0, 0, &ast.ReturnStmt{Val: strExpr("hello, world")})
	main := fn("_main", 0, 0,
		&ast.ExprStmt{X: &ast.CallExpr{Fn: &ast.FuncExpr{Sym: greet}}},
		&ast.ReturnStmt{},
	)
	g, sink := compile(t, newUnit(main, greet), Config{Debug: true})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	p, err := g.Finalize()
	require.NoError(t, err)

	w := image.NewWriter()
	w.WriteProgram(p, time.Date(2019, time.March, 9, 8, 0, 0, 0, time.UTC))

	f, err := image.Decode(w.Bytes())
	require.NoError(t, err)

	entry, err := f.Entrypoint()
	require.NoError(t, err)

	pool, err := f.Pool(t3.PoolCode)
	require.NoError(t, err)

	mainAnchor := g.funcAnchors[g.unit.Syms.Find("_main").(*ast.FuncSym)]
	assert.Equal(t, mainAnchor.Addr(), entry)

	hdr, ins, err := disasm.DisassembleMethod(pool, uint32(entry), uint32(entry)+mainAnchor.Len)
	require.NoError(t, err)
	assert.Equal(t, 0, hdr.Argc)

	// the call's operand is the resolved pool address of greet
	greetAnchor := g.funcAnchors[g.unit.Syms.Find("greet").(*ast.FuncSym)]
	var callOperand int64 = -1
	for _, in := range ins {
		if in.Op.Code == op.Call {
			callOperand = in.Immediates[1]
		}
	}
	require.NotEqual(t, int64(-1), callOperand, "no CALL in _main")
	assert.Equal(t, int64(greetAnchor.Addr()), callOperand)

	// debug payloads present under Config.Debug
	assert.NotNil(t, f.Find(t3.BlockSrcFiles))
	assert.NotNil(t, f.Find(t3.BlockGlobalSym))
	assert.NotNil(t, f.Find(t3.BlockMethodList))
	assert.NotNil(t, f.Find(t3.BlockSymbols))
}
