// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/disasm"
	"github.com/go-interpreter/tads3/t3"
	"github.com/go-interpreter/tads3/t3/op"
)

// newUnit builds a translation unit around the given functions.
func newUnit(fns ...*ast.FuncSym) *ast.Unit {
	u := &ast.Unit{
		Syms:        ast.NewSymbolTable(),
		Funcs:       fns,
		FuncSets:    []string{"t3vm/010006", "tads-gen/030008"},
		SourceFiles: []string{"main.t"},
		NextObjID:   1000,
	}
	for _, f := range fns {
		u.Syms.Add(f)
	}
	return u
}

func fn(name string, params, locals int, stmts ...ast.Stmt) *ast.FuncSym {
	body := &ast.CodeBody{
		Name:       name,
		LocalCount: locals,
		Body:       &ast.Block{Stmts: stmts},
	}
	for i := 0; i < params; i++ {
		body.Params = append(body.Params, &ast.Local{Name: "p", Num: i, IsParam: true})
	}
	return &ast.FuncSym{Name: name, Sig: body.Sig(), Body: body}
}

func lcl(num int) *ast.Local { return &ast.Local{Name: "x", Num: num} }

func localRef(v *ast.Local) *ast.LocalExpr { return &ast.LocalExpr{Var: v} }

func intExpr(v int32) *ast.ConstExpr { return &ast.ConstExpr{Val: ast.IntConst(v)} }

func strExpr(s string) *ast.ConstExpr { return &ast.ConstExpr{Val: ast.StrConst(s)} }

// compile runs the generator over the unit and returns it with its
// sink.
func compile(t *testing.T, u *ast.Unit, cfg Config) (*Generator, *DiagnosticSink) {
	t.Helper()
	sink := &DiagnosticSink{}
	g := New(u, sink, cfg)
	g.Generate()
	return g, sink
}

// methodEnd bounds the method at ofs by the next method header.
func methodEnd(g *Generator, ofs uint32) uint32 {
	end := g.cs.Len()
	for _, mh := range g.methodHeaders {
		if mh.Ofs > ofs && mh.Ofs < end {
			end = mh.Ofs
		}
	}
	return end
}

// methodOps disassembles the code of the method starting at ofs.
func methodOps(t *testing.T, g *Generator, ofs uint32) []disasm.Instr {
	t.Helper()
	_, ins, err := disasm.DisassembleMethod(g.cs.Bytes(), ofs, methodEnd(g, ofs))
	require.NoError(t, err)
	return ins
}

func countOp(ins []disasm.Instr, c byte) int {
	n := 0
	for _, i := range ins {
		if i.Op.Code == c {
			n++
		}
	}
	return n
}

func TestReturnOneCompressesToRetTrue(t *testing.T) {
	f := fn("f", 0, 0, &ast.ReturnStmt{Val: intExpr(1)})
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	hdr, ins, err := disasm.DisassembleMethod(g.cs.Bytes(), 0, g.cs.Len())
	require.NoError(t, err)

	require.Len(t, ins, 1)
	assert.Equal(t, op.RetTrue, ins[0].Op.Code)
	assert.Equal(t, 0, hdr.Argc)
	assert.Equal(t, 0, hdr.Locals)
	assert.Equal(t, 0, hdr.MaxStack)
}

func TestForLoopUsesFusedCompareAndIncLcl(t *testing.T) {
	i := lcl(0)
	f := fn("f", 0, 1,
		&ast.ForStmt{
			Init:   &ast.LocalDecl{Vars: []*ast.Local{i}, Inits: []ast.Expr{intExpr(1)}},
			Cond:   &ast.BinaryExpr{Op: ast.OpLt, L: localRef(i), R: intExpr(100)},
			Update: &ast.AssignExpr{Kind: ast.AsiPreInc, Lhs: localRef(i)},
			Body: &ast.ExprStmt{X: &ast.DStringExpr{
				Parts: []ast.DStringPart{{Text: "x"}},
			}},
		},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.IncLcl), "expected INCLCL for ++i")
	assert.Equal(t, 1, countOp(ins, op.Jge), "expected fused compare-branch")
	assert.Zero(t, countOp(ins, op.Lt), "comparison must fuse into the branch")
	assert.Zero(t, countOp(ins, op.Add))
	assert.Zero(t, countOp(ins, op.SetLcl1), "++i must not round-trip through the stack")

	var backJumps int
	for _, in := range ins {
		if in.Op.Code == op.Jmp && in.Immediates[0] < 0 {
			backJumps++
		}
	}
	assert.Equal(t, 1, backJumps, "exactly one backward jump closes the loop")
}

func TestCondExprBranchesWithoutBoolize(t *testing.T) {
	x := lcl(0)
	f := fn("f", 2, 1,
		&ast.LocalDecl{Vars: []*ast.Local{x}},
		&ast.ExprStmt{X: &ast.AssignExpr{
			Kind: ast.AsiSimple,
			Lhs:  localRef(x),
			Rhs: &ast.CondExpr{
				Cond: &ast.BinaryExpr{
					Op: ast.OpEq,
					L:  localRef(&ast.Local{Num: 0, IsParam: true}),
					R:  localRef(&ast.Local{Num: 1, IsParam: true}),
				},
				Then: intExpr(1),
				Else: intExpr(2),
			},
		}},
		&ast.ReturnStmt{Val: localRef(x)},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.Jne), "expected a fused equality branch")
	assert.Zero(t, countOp(ins, op.Eq))
	assert.Zero(t, countOp(ins, op.Jt))
	assert.Zero(t, countOp(ins, op.Boolize))
}

func TestStringInterning(t *testing.T) {
	a := lcl(0)
	b := lcl(1)
	f := fn("f", 0, 2,
		&ast.ExprStmt{X: &ast.AssignExpr{Kind: ast.AsiSimple, Lhs: localRef(a), Rhs: strExpr("hello")}},
		&ast.ExprStmt{X: &ast.AssignExpr{Kind: ast.AsiSimple, Lhs: localRef(b), Rhs: strExpr("hello")}},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	// one data-stream copy, two inbound references
	anchor := g.intern.String("hello")
	assert.Equal(t, 2, anchor.FixupCount())
	assert.Equal(t, 1, bytes.Count(g.ds.Bytes(), append([]byte{5, 0}, "hello"...)))

	p, err := g.Finalize()
	require.NoError(t, err)

	// fixup closure: both PUSHSTR operands carry the resolved address
	ins := methodOps(t, g, 0)
	var addrs []int64
	for _, in := range ins {
		if in.Op.Code == op.PushStr {
			addrs = append(addrs, in.Immediates[0])
		}
	}
	require.Len(t, addrs, 2)
	assert.Equal(t, addrs[0], addrs[1])
	assert.Equal(t, int64(anchor.Addr()), addrs[0])
	require.NotEmpty(t, p.ConstPages)
}

func TestMultiMethodInheritedWithoutOverload(t *testing.T) {
	base := &ast.FuncSym{Name: "describe", Sig: ast.FuncSig{Args: 1}}
	f := fn("f", 0, 0,
		&ast.ExprStmt{X: &ast.InheritedExpr{
			MMFunc:  base,
			MMTypes: []*ast.ObjSym{{Name: "Thing", ID: 1}},
		}},
	)
	g, sink := compile(t, newUnit(f), Config{})

	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, ErrMMInhUndefFunc, sink.Diags[0].Code)

	ins := methodOps(t, g, 0)
	assert.Zero(t, countOp(ins, op.Call), "no call may be emitted without an overload")

	_, err := g.Finalize()
	var blocked ErrorsPresentError
	require.ErrorAs(t, err, &blocked)
}

func TestPeepholeIdempotence(t *testing.T) {
	build := func() *ast.Unit {
		i := lcl(0)
		return newUnit(fn("f", 1, 1,
			&ast.LocalDecl{Vars: []*ast.Local{i}, Inits: []ast.Expr{intExpr(0)}},
			&ast.WhileStmt{
				Cond: &ast.BinaryExpr{Op: ast.OpLe, L: localRef(i), R: intExpr(10)},
				Body: &ast.ExprStmt{X: &ast.AssignExpr{Kind: ast.AsiAdd, Lhs: localRef(i), Rhs: intExpr(3)}},
			},
			&ast.ReturnStmt{Val: localRef(i)},
		))
	}
	g1, sink1 := compile(t, build(), Config{})
	g2, sink2 := compile(t, build(), Config{})
	require.True(t, sink1.OK())
	require.True(t, sink2.OK())
	assert.Equal(t, g1.cs.Bytes(), g2.cs.Bytes())
	assert.Equal(t, g1.ds.Bytes(), g2.ds.Bytes())
}


func TestNilComparisonFusesToJNotNil(t *testing.T) {
	f := fn("f", 1, 0,
		&ast.IfStmt{
			Cond: &ast.BinaryExpr{
				Op: ast.OpEq,
				L:  localRef(&ast.Local{Num: 0, IsParam: true}),
				R:  &ast.ConstExpr{Val: ast.NilConst},
			},
			Then: &ast.ReturnStmt{Val: intExpr(1)},
		},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK())

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.JNotNil), "PUSHNIL;JNE fuses to JNOTNIL")
	assert.Zero(t, countOp(ins, op.PushNil))
	assert.Zero(t, countOp(ins, op.Jne))
}

func TestDoubleNotBoolizes(t *testing.T) {
	f := fn("f", 1, 0,
		&ast.ReturnStmt{Val: &ast.UnaryExpr{
			Op: ast.OpNot,
			X: &ast.UnaryExpr{
				Op: ast.OpNot,
				X:  localRef(&ast.Local{Num: 0, IsParam: true}),
			},
		}},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK())

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.Boolize))
	assert.Zero(t, countOp(ins, op.Not))
}

func TestLocalPropFusion(t *testing.T) {
	prop := &ast.PropSym{Name: "weight", ID: 7}
	v := lcl(0)
	f := fn("f", 0, 1,
		&ast.ReturnStmt{Val: &ast.MemberExpr{
			Obj:  localRef(v),
			Prop: &ast.PropExpr{Sym: prop},
		}},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK())

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.GetPropLcl1), "GETLCL1;GETPROP fuses")
	assert.Zero(t, countOp(ins, op.GetLcl1))
	assert.Zero(t, countOp(ins, op.GetProp))
}

func TestIndexedLocalAssignUsesSetIndLcl(t *testing.T) {
	v := lcl(0)
	f := fn("f", 1, 1,
		&ast.ExprStmt{X: &ast.AssignExpr{
			Kind: ast.AsiSimple,
			Lhs:  &ast.IndexExpr{X: localRef(v), Idx: intExpr(2)},
			Rhs:  localRef(&ast.Local{Num: 0, IsParam: true}),
		}},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK())

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.SetIndLcl1I8))
	assert.Zero(t, countOp(ins, op.SetInd))
}

func TestJumpTargetsStayInsideMethod(t *testing.T) {
	i := lcl(0)
	f := fn("f", 1, 1,
		&ast.LocalDecl{Vars: []*ast.Local{i}, Inits: []ast.Expr{intExpr(0)}},
		&ast.WhileStmt{
			Cond: &ast.BinaryExpr{Op: ast.OpLt, L: localRef(i), R: intExpr(5)},
			Body: &ast.IfStmt{
				Cond: &ast.BinaryExpr{Op: ast.OpEq, L: localRef(i), R: intExpr(3)},
				Then: &ast.BreakStmt{},
				Else: &ast.ContinueStmt{},
			},
		},
		&ast.ReturnStmt{Val: localRef(i)},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	ins := methodOps(t, g, 0)
	end := g.cs.Len()
	byteAt := func(pc uint32) byte { return g.cs.Bytes()[pc] }
	for _, in := range ins {
		if !in.Op.Jump {
			continue
		}
		assert.GreaterOrEqual(t, in.Target, uint32(t3.MethodHeaderSize))
		assert.Less(t, in.Target, end)
		if in.Op.Code == op.Jmp {
			assert.NotEqual(t, byte(op.Jmp), byteAt(in.Target),
				"jump threading must leave no JMP-to-JMP chain")
		}
	}
}

func TestTryCatchEmitsExceptionTable(t *testing.T) {
	excObj := &ast.ObjSym{Name: "RuntimeError", ID: 42}
	v := lcl(0)
	f := fn("f", 0, 1,
		&ast.TryStmt{
			Body: &ast.Block{Stmts: []ast.Stmt{
				&ast.ThrowStmt{X: intExpr(9)},
			}},
			Catches: []ast.CatchClause{{
				ExcClass: excObj,
				Var:      v,
				Body: &ast.Block{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Val: localRef(v)},
				}},
			}},
		},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	hdr, _, err := disasm.DisassembleMethod(g.cs.Bytes(), 0, g.cs.Len())
	require.NoError(t, err)
	require.NotZero(t, hdr.ExcRel)

	tab := g.cs.Bytes()[hdr.ExcRel:]
	count := uint16(tab[0]) | uint16(tab[1])<<8
	require.Equal(t, uint16(1), count)
	start := uint16(tab[2]) | uint16(tab[3])<<8
	end := uint16(tab[4]) | uint16(tab[5])<<8
	objID := uint32(tab[6]) | uint32(tab[7])<<8 | uint32(tab[8])<<16 | uint32(tab[9])<<24
	catch := uint16(tab[10]) | uint16(tab[11])<<8
	assert.Equal(t, uint32(42), objID)
	assert.Less(t, start, end)
	assert.GreaterOrEqual(t, catch, end)
	assert.Less(t, catch, hdr.ExcRel)
}

func TestSwitchDispatch(t *testing.T) {
	v := lcl(0)
	f := fn("f", 1, 1,
		&ast.LocalDecl{Vars: []*ast.Local{v}, Inits: []ast.Expr{intExpr(0)}},
		&ast.SwitchStmt{
			X: localRef(&ast.Local{Num: 0, IsParam: true}),
			Cases: []ast.SwitchCase{
				{Vals: []ast.ConstVal{ast.IntConst(1)}, Stmts: []ast.Stmt{
					&ast.ExprStmt{X: &ast.AssignExpr{Kind: ast.AsiSimple, Lhs: localRef(v), Rhs: intExpr(10)}},
					&ast.BreakStmt{},
				}},
				{Vals: []ast.ConstVal{ast.IntConst(2), ast.IntConst(3)}, Stmts: []ast.Stmt{
					&ast.BreakStmt{},
				}},
				{Vals: nil, Stmts: []ast.Stmt{
					&ast.ExprStmt{X: &ast.AssignExpr{Kind: ast.AsiSimple, Lhs: localRef(v), Rhs: intExpr(99)}},
				}},
			},
		},
		&ast.ReturnStmt{Val: localRef(v)},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	ins := methodOps(t, g, 0)
	require.Equal(t, 1, countOp(ins, op.Switch))
	for _, in := range ins {
		if in.Op.Code == op.Switch {
			// three value rows (1, 2, 3) at seven bytes each, plus the
			// default displacement
			require.Len(t, in.Inline, 3*7+2)
		}
	}
}

func TestUndefinedGotoLabelReported(t *testing.T) {
	f := fn("f", 0, 0, &ast.GotoStmt{Target: "missing"})
	_, sink := compile(t, newUnit(f), Config{})
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, ErrUndefinedLabel, sink.Diags[0].Code)
}

func TestSelfOutsideMethodReported(t *testing.T) {
	f := fn("f", 0, 0, &ast.ReturnStmt{Val: &ast.SelfExpr{}})
	_, sink := compile(t, newUnit(f), Config{})
	require.NotZero(t, sink.ErrorCount())
	assert.Equal(t, ErrSelfNotAvailable, sink.Diags[0].Code)
}

func TestObjectEmission(t *testing.T) {
	prop := &ast.PropSym{Name: "name", ID: 3}
	propM := &ast.PropSym{Name: "describe", ID: 4}
	sym := &ast.ObjSym{Name: "lamp", ID: 21}
	super := &ast.ObjSym{Name: "Thing", ID: 20}
	def := &ast.ObjDef{
		Sym:    sym,
		Supers: []*ast.ObjSym{super},
		Props: []*ast.PropDef{
			{Prop: prop, Val: &ast.ConstVal{Kind: ast.ConstSString, Str: "brass lantern"}},
			{Prop: propM, Method: &ast.CodeBody{
				Name:     "lamp.describe",
				IsMethod: true,
				Body: &ast.Block{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Val: &ast.PropExpr{Sym: prop}},
				}},
			}},
		},
	}
	sym.Def = def

	u := newUnit()
	u.Objects = []*ast.ObjDef{def}
	u.Syms.Add(sym)
	u.Syms.Add(super)
	u.Syms.Add(prop)
	u.Syms.Add(propM)

	g, sink := compile(t, u, Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	p, err := g.Finalize()
	require.NoError(t, err)
	require.Len(t, p.ObjGroups, 1)
	grp := p.ObjGroups[0]
	require.Len(t, grp.Objects, 1)
	obj := grp.Objects[0]
	assert.Equal(t, t3.ObjID(21), obj.ID)

	// superclass count, property count, flags
	assert.Equal(t, []byte{1, 0, 2, 0, 0, 0}, obj.Data[:6])
	// the code-valued property resolved to a code pool offset
	assert.NotEmpty(t, p.CodePages)
	assert.Contains(t, []int{1, 2}, len(p.MethodHeaders))
}

func TestStackBalancePropagatesToHeader(t *testing.T) {
	// f(a, b) { return a - b*(a+b); } holds four operands at peak
	a := localRef(&ast.Local{Num: 0, IsParam: true})
	b := localRef(&ast.Local{Num: 1, IsParam: true})
	f := fn("f", 2, 0,
		&ast.ReturnStmt{Val: &ast.BinaryExpr{
			Op: ast.OpSub,
			L:  a,
			R: &ast.BinaryExpr{
				Op: ast.OpMul,
				L:  b,
				R:  &ast.BinaryExpr{Op: ast.OpAdd, L: a, R: b},
			},
		}},
	)
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK())

	hdr, _, err := disasm.DisassembleMethod(g.cs.Bytes(), 0, g.cs.Len())
	require.NoError(t, err)
	assert.Equal(t, 4, hdr.MaxStack)
}

func TestAnonFnCaptureGeneratesBothBodies(t *testing.T) {
	ctxVar := &ast.Local{Name: ".ctx", Num: 0}
	inner := &ast.CodeBody{
		Name:     "{anonfn}",
		IsAnonFn: true,
		Captured: []ast.CapturedSlot{{InvokeeIdx: 2, Target: &ast.Local{Name: "c", Num: 0}}},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Val: localRef(&ast.Local{Name: "c", Num: 0})},
		}},
		LocalCount: 1,
	}
	outer := &ast.CodeBody{
		Name:       "outer",
		LocalCount: 1,
		LocalCtx:   &ast.LocalCtx{Var: ctxVar, Size: 2},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Val: &ast.AnonFnExpr{Body: inner, CtxObjs: []*ast.Local{ctxVar}}},
		}},
	}
	f := &ast.FuncSym{Name: "outer", Body: outer}

	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	// both bodies got method headers, and the anonymous function binds
	// its context through the anon-func-ptr metaclass; the first NEW1
	// allocates the context vector in the prolog
	require.Len(t, g.methodHeaders, 2)
	ins := methodOps(t, g, 0)
	assert.Equal(t, 2, countOp(ins, op.New1))
	assert.Equal(t, 1, countOp(ins, op.PushFnPtr))

	innerOfs := g.methodHeaders[1].Ofs
	innerIns := methodOps(t, g, innerOfs)
	assert.Equal(t, 1, countOp(innerIns, op.PushCtxEle))
}

func TestOptionalParamBinding(t *testing.T) {
	p0 := &ast.Local{Name: "a", Num: 0, IsParam: true}
	opt := &ast.Local{Name: "b", Num: 0}
	body := &ast.CodeBody{
		Name:       "f",
		Params:     []*ast.Local{p0},
		OptParams:  []*ast.OptParam{{Local: opt, Default: intExpr(7)}},
		LocalCount: 1,
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Val: localRef(opt)},
		}},
	}
	f := &ast.FuncSym{Name: "f", Body: body, Sig: body.Sig()}
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	hdr, ins, err := disasm.DisassembleMethod(g.cs.Bytes(), 0, g.cs.Len())
	require.NoError(t, err)
	assert.Equal(t, 1, hdr.OptArgc)
	assert.Equal(t, 1, countOp(ins, op.GetArgc))
	assert.NotZero(t, countOp(ins, op.Jlt))
}

func TestVarargsListParam(t *testing.T) {
	va := &ast.Local{Name: "rest", Num: 0}
	body := &ast.CodeBody{
		Name:        "f",
		VarargsList: va,
		LocalCount:  1,
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Val: localRef(va)},
		}},
	}
	f := &ast.FuncSym{Name: "f", Body: body, Sig: body.Sig()}
	g, sink := compile(t, newUnit(f), Config{})
	require.True(t, sink.OK())

	hdr, ins, err := disasm.DisassembleMethod(g.cs.Bytes(), 0, g.cs.Len())
	require.NoError(t, err)
	assert.True(t, hdr.Varargs)
	assert.Equal(t, 1, countOp(ins, op.PushParLst))
}

func TestWrongArgcReportedAfterCall(t *testing.T) {
	callee := fn("g", 2, 0, &ast.ReturnStmt{})
	caller := fn("f", 0, 0,
		&ast.ExprStmt{X: &ast.CallExpr{
			Fn:   &ast.FuncExpr{Sym: callee},
			Args: []ast.Expr{intExpr(1)},
		}},
	)
	g, sink := compile(t, newUnit(caller, callee), Config{})
	require.Equal(t, 1, sink.ErrorCount())
	assert.Equal(t, ErrWrongArgc, sink.Diags[0].Code)

	// the call is still emitted before the report
	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.Call))
}

func TestRandSpecialFormEvaluatesLazily(t *testing.T) {
	randBif := &ast.BifSym{Name: "rand", SetIndex: 0, Index: 9, Sig: ast.FuncSig{Varargs: true, HasRet: true}}
	u := newUnit(fn("f", 0, 0,
		&ast.ReturnStmt{Val: &ast.CallExpr{
			Fn:   &ast.BifExpr{Sym: randBif},
			Args: []ast.Expr{strExpr("a"), strExpr("b"), strExpr("c")},
		}},
	))
	u.Syms.Add(randBif)
	g, sink := compile(t, u, Config{})
	require.True(t, sink.OK(), "diagnostics: %v", sink.Diags)

	ins := methodOps(t, g, 0)
	assert.Equal(t, 1, countOp(ins, op.Switch), "rand alternatives dispatch through SWITCH")
	assert.Equal(t, 1, countOp(ins, op.BuiltinA), "rand(n) itself is called once")
}
