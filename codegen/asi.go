// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"math"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3/op"
)

// Assignment generation follows a two-phase protocol: phase one loads
// the target's current value and lays out any auxiliary stack state,
// the caller combines it with the right-hand side, and phase two stores
// the result. Targets that can do better — locals with fused
// increment/add forms, indexed cells reachable through SETINDLCL1I8 —
// refuse the phased protocol and emit a single instruction instead.

func isIncDec(k ast.AsiKind) bool {
	switch k {
	case ast.AsiPreInc, ast.AsiPreDec, ast.AsiPostInc, ast.AsiPostDec:
		return true
	}
	return false
}

func isPost(k ast.AsiKind) bool {
	return k == ast.AsiPostInc || k == ast.AsiPostDec
}

var asiOpCode = map[ast.AsiKind]byte{
	ast.AsiAdd: op.Add, ast.AsiSub: op.Sub, ast.AsiMul: op.Mul,
	ast.AsiDiv: op.Div, ast.AsiMod: op.Mod,
	ast.AsiBAnd: op.BAnd, ast.AsiBOr: op.BOr, ast.AsiBXor: op.Xor,
	ast.AsiShl: op.Shl, ast.AsiAShr: op.AShr, ast.AsiLShr: op.LShr,
}

// combineAsi merges the loaded current value with the right-hand side
// according to the assignment kind. The current value is on top of the
// stack on entry; the combined value replaces it.
func (g *Generator) combineAsi(kind ast.AsiKind, rhs ast.Expr) {
	switch kind {
	case ast.AsiPreInc, ast.AsiPostInc:
		g.emit(op.Inc)
	case ast.AsiPreDec, ast.AsiPostDec:
		g.emit(op.Dec)
	default:
		g.genExpr(rhs, false, false)
		g.emit(asiOpCode[kind])
	}
}

// genAssign dispatches an assignment to the target's generator.
func (g *Generator) genAssign(e *ast.AssignExpr, discard bool) {
	switch lhs := e.Lhs.(type) {
	case *ast.LocalExpr:
		g.genAsiLocal(lhs.Var, e.Kind, e.Rhs, discard)
	case *ast.PropExpr:
		g.genAsiMember(&ast.MemberExpr{Prop: lhs}, e.Kind, e.Rhs, discard)
	case *ast.MemberExpr:
		g.genAsiMember(lhs, e.Kind, e.Rhs, discard)
	case *ast.IndexExpr:
		g.genAsiIndex(lhs, e.Kind, e.Rhs, discard)
	default:
		if isIncDec(e.Kind) {
			g.errorf(ErrInvalidUnaryLvalue, "")
		} else {
			g.errorf(ErrInvalidLvalue, "")
		}
		g.errorPush(discard)
	}
}

// genAsiLocal assigns to a local or parameter.
func (g *Generator) genAsiLocal(v *ast.Local, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	if v.InCtx {
		g.genAsiCell(cellOfCtxLocal(g, v), kind, rhs, discard)
		return
	}

	num := v.Num
	small := !v.IsParam && num <= 255
	wide := !v.IsParam && num > 255

	switch kind {
	case ast.AsiSimple, ast.AsiIdx:
		if discard && (small || wide) {
			if c, ok := rhs.(*ast.ConstExpr); ok {
				if done := g.genConstLocalAsi(c.Val, num, small); done {
					return
				}
			}
		}
		g.genExpr(rhs, false, false)
		if !discard {
			if small {
				g.emitU8(op.GetSetLcl1, uint8(num))
				return
			}
			g.emit(op.Dup)
		}
		g.emitSetLocalNum(num, v.IsParam)

	case ast.AsiAdd, ast.AsiSub:
		if small || wide {
			if g.genAddToLocal(num, kind, rhs) {
				if !discard {
					g.emitGetLocalNum(num, false)
				}
				return
			}
		}
		g.genAsiLocalGeneric(v, kind, rhs, discard)

	case ast.AsiPreInc, ast.AsiPreDec:
		if small || wide {
			c := byte(op.IncLcl)
			if kind == ast.AsiPreDec {
				c = op.DecLcl
			}
			g.emitU16(c, uint16(num))
			if !discard {
				g.emitGetLocalNum(num, false)
			}
			return
		}
		g.genAsiLocalGeneric(v, kind, rhs, discard)

	case ast.AsiPostInc, ast.AsiPostDec:
		if small || wide {
			c := byte(op.IncLcl)
			if kind == ast.AsiPostDec {
				c = op.DecLcl
			}
			if !discard {
				g.emitGetLocalNum(num, false)
			}
			g.emitU16(c, uint16(num))
			return
		}
		g.genAsiLocalGeneric(v, kind, rhs, discard)

	default:
		g.genAsiLocalGeneric(v, kind, rhs, discard)
	}
}

// genConstLocalAsi emits the one-instruction constant stores: nil, zero
// and one each have dedicated opcodes in both local-number widths.
func (g *Generator) genConstLocalAsi(c ast.ConstVal, num int, small bool) bool {
	pick := func(c1, c2 byte) {
		if small {
			g.emitU8(c1, uint8(num))
		} else {
			g.emitU16(c2, uint16(num))
		}
	}
	switch {
	case c.Kind == ast.ConstNil:
		pick(op.NilLcl1, op.NilLcl2)
	case c.Kind == ast.ConstInt && c.Int == 0:
		pick(op.ZeroLcl1, op.ZeroLcl2)
	case c.Kind == ast.ConstInt && c.Int == 1:
		pick(op.OneLcl1, op.OneLcl2)
	default:
		return false
	}
	return true
}

// genAddToLocal handles += and -= on plain locals with the fused
// instructions; returns false when no fused form applies.
func (g *Generator) genAddToLocal(num int, kind ast.AsiKind, rhs ast.Expr) bool {
	if c, ok := constIntOf(rhs); ok {
		v := c
		if kind == ast.AsiSub {
			if c == math.MinInt32 {
				return false
			}
			v = -c
		}
		switch {
		case v == 1:
			g.emitU16(op.IncLcl, uint16(num))
		case v == -1:
			g.emitU16(op.DecLcl, uint16(num))
		case v >= math.MinInt8 && v <= math.MaxInt8 && num <= 255:
			g.emitI8U8(op.AddILcl1, int8(v), uint8(num))
		default:
			g.emitI32U16(op.AddILcl4, v, uint16(num))
		}
		return true
	}
	g.genExpr(rhs, false, false)
	if kind == ast.AsiAdd {
		g.emitU16(op.AddToLcl, uint16(num))
	} else {
		g.emitU16(op.SubFromLcl, uint16(num))
	}
	return true
}

// genAsiLocalGeneric is the load-combine-store path for locals.
func (g *Generator) genAsiLocalGeneric(v *ast.Local, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	g.emitGetLocal(v)
	if isPost(kind) && !discard {
		tmp := g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
		g.combineAsi(kind, rhs)
		g.genStoreLocal(v)
		g.emitGetLocalNum(tmp, false)
		return
	}
	g.combineAsi(kind, rhs)
	if !discard {
		g.emit(op.Dup)
	}
	g.genStoreLocal(v)
}

// cell is a fused indexed slot addressable through IDXLCL1INT8 and
// SETINDLCL1I8: a plain local holding the container plus a small
// constant index. Context locals and `local[constant]` both reduce to
// it.
type cell struct {
	lcl uint8
	idx int8
}

func cellOfCtxLocal(g *Generator, v *ast.Local) cell {
	return cell{lcl: uint8(g.m.ctxVarNum()), idx: int8(v.CtxIdx)}
}

// genAsiCell assigns through a fused indexed cell.
func (g *Generator) genAsiCell(c cell, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	switch kind {
	case ast.AsiSimple, ast.AsiIdx:
		g.genExpr(rhs, false, false)
		if !discard {
			g.emit(op.Dup)
		}
		g.emitU8I8(op.SetIndLcl1I8, c.lcl, c.idx)
		return
	}

	g.emitU8I8(op.IdxLcl1Int8, c.lcl, c.idx)
	if isPost(kind) && !discard {
		tmp := g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
		g.combineAsi(kind, rhs)
		g.emitU8I8(op.SetIndLcl1I8, c.lcl, c.idx)
		g.emitGetLocalNum(tmp, false)
		return
	}
	g.combineAsi(kind, rhs)
	if !discard {
		g.emit(op.Dup)
	}
	g.emitU8I8(op.SetIndLcl1I8, c.lcl, c.idx)
}

// genAsiMember assigns to obj.prop, dispatching among the four store
// instructions by target shape.
func (g *Generator) genAsiMember(m *ast.MemberExpr, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	objIsSelf := m.Obj == nil
	if _, ok := m.Obj.(*ast.SelfExpr); ok {
		objIsSelf = true
	}
	if objIsSelf && !g.m.selfOK {
		g.errorf(ErrSelfNotAvailable, "")
		g.errorPush(discard)
		return
	}
	constProp, propIsConst := m.Prop.(*ast.PropExpr)

	switch {
	case objIsSelf && propIsConst:
		p := constProp.Sym
		g.genAsiSimpleStore(kind, rhs, discard,
			func() { // load
				g.instr(op.GetPropSelf)
				g.writeProp(p)
				g.emit(op.GetR0)
			},
			func() { // store value on top
				g.instr(op.SetPropSelf)
				g.writeProp(p)
			})

	case propIsConst && isConstObj(m.Obj):
		o := m.Obj.(*ast.ObjExpr).Sym
		p := constProp.Sym
		g.genAsiSimpleStore(kind, rhs, discard,
			func() {
				g.instr(op.ObjGetProp)
				g.writeObj(o)
				g.writeProp(p)
				g.emit(op.GetR0)
			},
			func() {
				g.instr(op.ObjSetProp)
				g.writeObj(o)
				g.writeProp(p)
			})

	case propIsConst:
		g.genAsiExprObj(m.Obj, constProp.Sym, kind, rhs, discard)

	default:
		g.genAsiPtrProp(m, kind, rhs, discard)
	}
}

// genAsiSimpleStore covers targets whose store consumes only the value:
// self-relative and constant-object properties.
func (g *Generator) genAsiSimpleStore(kind ast.AsiKind, rhs ast.Expr, discard bool, load, store func()) {
	if kind == ast.AsiSimple || kind == ast.AsiIdx {
		g.genExpr(rhs, false, false)
		if !discard {
			g.emit(op.Dup)
		}
		store()
		return
	}
	load()
	if isPost(kind) && !discard {
		tmp := g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
		g.combineAsi(kind, rhs)
		store()
		g.emitGetLocalNum(tmp, false)
		return
	}
	g.combineAsi(kind, rhs)
	if !discard {
		g.emit(op.Dup)
	}
	store()
}

// genAsiExprObj assigns to a constant property of a computed object.
func (g *Generator) genAsiExprObj(obj ast.Expr, p *ast.PropSym, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	if kind == ast.AsiSimple || kind == ast.AsiIdx {
		g.genExpr(rhs, false, false)
		if !discard {
			g.emit(op.Dup)
		}
		g.genExpr(obj, false, false)
		g.instr(op.SetProp)
		g.writeProp(p)
		return
	}

	// phase one leaves the object below the current value
	g.genExpr(obj, false, false)
	g.emit(op.Dup)
	g.instr(op.GetProp)
	g.writeProp(p)
	g.emit(op.GetR0)

	var tmp int
	keepOld := isPost(kind) && !discard
	if keepOld {
		tmp = g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
	}
	g.combineAsi(kind, rhs)
	keepNew := !isPost(kind) && !discard
	if keepNew {
		tmp = g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
	}
	g.emit(op.Swap)
	g.instr(op.SetProp)
	g.writeProp(p)
	if keepOld || keepNew {
		g.emitGetLocalNum(tmp, false)
	}
}

// genAsiPtrProp assigns through a computed property expression.
func (g *Generator) genAsiPtrProp(m *ast.MemberExpr, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	objIsSelf := m.Obj == nil
	if _, ok := m.Obj.(*ast.SelfExpr); ok {
		objIsSelf = true
	}

	if kind == ast.AsiSimple || kind == ast.AsiIdx {
		g.genExpr(rhs, false, false)
		if !discard {
			g.emit(op.Dup)
		}
		if objIsSelf {
			g.emit(op.PushSelf)
		} else {
			g.genExpr(m.Obj, false, false)
		}
		g.genExpr(m.Prop, false, false)
		g.emit(op.PtrSetProp)
		return
	}

	// phase one: object and property pointer stay on the stack under
	// the working value
	if objIsSelf {
		g.emit(op.PushSelf)
	} else {
		g.genExpr(m.Obj, false, false)
	}
	g.genExpr(m.Prop, false, false)
	g.emit(op.Dup2)
	g.instr(op.PtrCallProp)
	g.cs.Write1(0)
	g.emit(op.GetR0)

	var tmp int
	keepOld := isPost(kind) && !discard
	if keepOld {
		tmp = g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
	}
	g.combineAsi(kind, rhs)
	keepNew := !isPost(kind) && !discard
	if keepNew {
		tmp = g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
	}
	// rotate [obj prop value] into [value obj prop]
	g.emitSwapN(0, 2)
	g.emit(op.Swap)
	g.emit(op.PtrSetProp)
	if keepOld || keepNew {
		g.emitGetLocalNum(tmp, false)
	}
}

// genAsiIndex assigns to an indexed element.
func (g *Generator) genAsiIndex(ix *ast.IndexExpr, kind ast.AsiKind, rhs ast.Expr, discard bool) {
	// the fused cell path: plain local container, small constant index
	if lv, ok := ix.X.(*ast.LocalExpr); ok && !lv.Var.InCtx && !lv.Var.IsParam && lv.Var.Num <= 255 {
		if k, ok := constIntOf(ix.Idx); ok && k >= math.MinInt8 && k <= math.MaxInt8 {
			g.genAsiCell(cell{lcl: uint8(lv.Var.Num), idx: int8(k)}, kind, rhs, discard)
			return
		}
	}

	if kind == ast.AsiSimple || kind == ast.AsiIdx {
		g.genExpr(rhs, false, false)
		var tmp int
		if !discard {
			tmp = g.m.allocTemp()
			g.emitU8(op.GetSetLcl1, uint8(tmp))
		}
		g.genExpr(ix.X, false, false)
		g.genExpr(ix.Idx, false, false)
		g.emit(op.SetInd)
		g.storeContainer(ix.X)
		if !discard {
			g.emitGetLocalNum(tmp, false)
		}
		return
	}

	// load current element keeping container and index for the store
	g.genExpr(ix.X, false, false)
	g.genExpr(ix.Idx, false, false)
	g.emit(op.Dup2)
	g.emit(op.Index)

	var tmp int
	keepOld := isPost(kind) && !discard
	if keepOld {
		tmp = g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
	}
	g.combineAsi(kind, rhs)
	keepNew := !isPost(kind) && !discard
	if keepNew {
		tmp = g.m.allocTemp()
		g.emitU8(op.GetSetLcl1, uint8(tmp))
	}
	// rotate [container index value] into [value container index]
	g.emitSwapN(0, 2)
	g.emit(op.Swap)
	g.emit(op.SetInd)
	g.storeContainer(ix.X)
	if keepOld || keepNew {
		g.emitGetLocalNum(tmp, false)
	}
}

// storeContainer writes the updated container left by SETIND back into
// the container's own lvalue. Containers without a simple lvalue lose
// the update, matching list-value semantics for unnamed temporaries.
func (g *Generator) storeContainer(e ast.Expr) {
	switch lhs := e.(type) {
	case *ast.LocalExpr:
		g.genStoreLocal(lhs.Var)
	case *ast.PropExpr:
		if g.m.selfOK {
			g.instr(op.SetPropSelf)
			g.writeProp(lhs.Sym)
			return
		}
		g.emitDisc()
	case *ast.MemberExpr:
		constProp, ok := lhs.Prop.(*ast.PropExpr)
		if !ok {
			g.emitDisc()
			return
		}
		if o, okObj := lhs.Obj.(*ast.ObjExpr); okObj {
			g.instr(op.ObjSetProp)
			g.writeObj(o.Sym)
			g.writeProp(constProp.Sym)
			return
		}
		if lhs.Obj == nil && g.m.selfOK {
			g.instr(op.SetPropSelf)
			g.writeProp(constProp.Sym)
			return
		}
		g.emitDisc()
	default:
		g.emitDisc()
	}
}

// emitSwapN exchanges two stack elements by depth; offsets beyond one
// byte mean the expression needs more juggling than the instruction set
// can address.
func (g *Generator) emitSwapN(i, j int) {
	if i > 255 || j > 255 {
		g.errorf(ErrExprTooComplex, "")
		return
	}
	g.instr(op.SwapN)
	g.cs.Write1(uint8(i))
	g.cs.Write1(uint8(j))
}
