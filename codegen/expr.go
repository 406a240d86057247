// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"math"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3/op"
)

var binOpCode = map[ast.BinOp]byte{
	ast.OpAdd: op.Add, ast.OpSub: op.Sub, ast.OpMul: op.Mul,
	ast.OpDiv: op.Div, ast.OpMod: op.Mod,
	ast.OpBAnd: op.BAnd, ast.OpBOr: op.BOr, ast.OpBXor: op.Xor,
	ast.OpShl: op.Shl, ast.OpAShr: op.AShr, ast.OpLShr: op.LShr,
	ast.OpEq: op.Eq, ast.OpNe: op.Ne,
	ast.OpLt: op.Lt, ast.OpLe: op.Le, ast.OpGt: op.Gt, ast.OpGe: op.Ge,
}

// cmpJump maps a comparison operator to its jump-if-true and
// jump-if-false instructions, for direct conditional generation.
var cmpJump = map[ast.BinOp][2]byte{
	ast.OpEq: {op.Je, op.Jne},
	ast.OpNe: {op.Jne, op.Je},
	ast.OpLt: {op.Jlt, op.Jge},
	ast.OpLe: {op.Jle, op.Jgt},
	ast.OpGt: {op.Jgt, op.Jle},
	ast.OpGe: {op.Jge, op.Jlt},
}

// genExpr generates code for an expression. With discard set the value
// is not left on the stack; side effects are preserved. forCond marks a
// value consumed by a conditional branch, letting comparisons skip
// boolean materialization that an adjacent jump will fuse away.
func (g *Generator) genExpr(e ast.Expr, discard, forCond bool) {
	switch e := e.(type) {
	case *ast.ConstExpr:
		if discard {
			return
		}
		g.genConst(e.Val, forCond)

	case *ast.LocalExpr:
		if discard {
			return
		}
		g.emitGetLocal(e.Var)

	case *ast.ObjExpr:
		if discard {
			return
		}
		g.instr(op.PushObj)
		g.writeObj(e.Sym)

	case *ast.FuncExpr:
		if discard {
			return
		}
		g.instr(op.PushFnPtr)
		g.writePoolRef(g.funcAnchor(e.Sym), RefCodeAddr)

	case *ast.BifExpr:
		if discard {
			return
		}
		g.instr(op.PushBifPtr)
		g.cs.Write2(uint16(e.Sym.Index))
		g.cs.Write2(uint16(e.Sym.SetIndex))

	case *ast.SelfExpr:
		if !g.m.selfOK {
			g.errorf(ErrSelfNotAvailable, "")
			return
		}
		if discard {
			return
		}
		g.emit(op.PushSelf)

	case *ast.ArgcExpr:
		if discard {
			return
		}
		g.emit(op.GetArgc)

	case *ast.PropExpr:
		// bare property: evaluate against self
		if !g.m.selfOK {
			g.errorf(ErrSelfNotAvailable, "property %q", e.Sym.Name)
			return
		}
		g.instr(op.GetPropSelf)
		g.writeProp(e.Sym)
		if !discard {
			g.emit(op.GetR0)
		}

	case *ast.BinaryExpr:
		g.genExpr(e.L, false, false)
		g.genExpr(e.R, false, false)
		g.emit(binOpCode[e.Op])
		if discard {
			g.emitDisc()
		}

	case *ast.UnaryExpr:
		g.genExpr(e.X, false, e.Op == ast.OpNot && forCond)
		switch e.Op {
		case ast.OpNeg:
			g.emit(op.Neg)
		case ast.OpBNot:
			g.emit(op.BNot)
		case ast.OpNot:
			g.emitNot()
		}
		if discard {
			g.emitDisc()
		}

	case *ast.AndExpr:
		if discard {
			skip := g.newLbl()
			g.genExprCond(e.L, nil, skip)
			g.genExpr(e.R, true, false)
			g.defineLabel(skip)
			return
		}
		// keep the saved operand when short-circuiting; the fall-through
		// path consumes it
		done := g.newLbl()
		g.genExpr(e.L, false, true)
		g.emitJumpTo(op.Jsf, done)
		g.stk.notePop(1)
		g.genExpr(e.R, false, true)
		g.defineLabel(done)

	case *ast.OrExpr:
		if discard {
			skip := g.newLbl()
			g.genExprCond(e.L, skip, nil)
			g.genExpr(e.R, true, false)
			g.defineLabel(skip)
			return
		}
		done := g.newLbl()
		g.genExpr(e.L, false, true)
		g.emitJumpTo(op.Jst, done)
		g.stk.notePop(1)
		g.genExpr(e.R, false, true)
		g.defineLabel(done)

	case *ast.CondExpr:
		elseL := g.newLbl()
		done := g.newLbl()
		g.genExprCond(e.Cond, nil, elseL)
		d0 := g.stk.depth
		g.genExpr(e.Then, discard, forCond)
		g.emitJumpTo(op.Jmp, done)
		g.defineLabel(elseL)
		g.stk.setDepth(d0)
		g.genExpr(e.Else, discard, forCond)
		g.defineLabel(done)

	case *ast.AssignExpr:
		g.genAssign(e, discard)

	case *ast.CallExpr:
		g.genCall(e, discard)

	case *ast.MemberExpr:
		g.genMember(e, discard)

	case *ast.NewExpr:
		g.genNew(e, discard)

	case *ast.IndexExpr:
		g.genExpr(e.X, false, false)
		if c, ok := constIntOf(e.Idx); ok {
			g.emitIndexConst(c)
		} else {
			g.genExpr(e.Idx, false, false)
			g.emit(op.Index)
		}
		if discard {
			g.emitDisc()
		}

	case *ast.ListExpr:
		g.genListExpr(e, discard)

	case *ast.DStringExpr:
		g.genDString(e)
		if !discard {
			g.emit(op.PushNil)
		}

	case *ast.OneOfExpr:
		g.genOneOf(e, discard)

	case *ast.AnonFnExpr:
		g.genAnonFn(e, discard)

	case *ast.InheritedExpr:
		g.genInherited(e, discard)

	case *ast.DelegatedExpr:
		g.genDelegated(e, discard)

	default:
		logger.Printf("unhandled expression %T", e)
	}
}

// genConst pushes a compile-time constant.
func (g *Generator) genConst(c ast.ConstVal, forCond bool) {
	switch c.Kind {
	case ast.ConstNil:
		g.emit(op.PushNil)
	case ast.ConstTrue:
		g.emit(op.PushTrue)
	case ast.ConstInt:
		switch {
		case c.Int == 0:
			g.emit(op.Push0)
		case c.Int == 1:
			g.emit(op.Push1)
		case c.Int >= math.MinInt8 && c.Int <= math.MaxInt8:
			g.emitI8(op.PushInt8, int8(c.Int))
		default:
			g.emitI32(op.PushInt, c.Int)
		}
	case ast.ConstSString:
		g.genStrPush(c.Str)
	case ast.ConstList:
		a := g.constListAnchor(c.List)
		g.instr(op.PushLst)
		g.writePoolRef(a, RefConstAddr)
	case ast.ConstObj:
		g.instr(op.PushObj)
		g.writeObj(c.Obj)
	case ast.ConstProp:
		g.instr(op.PushPropID)
		g.writeProp(c.Prop)
	case ast.ConstEnum:
		g.instr(op.PushEnum)
		g.writeEnum(c.Enum)
	case ast.ConstFuncPtr:
		g.instr(op.PushFnPtr)
		g.writePoolRef(g.funcAnchor(c.Func), RefCodeAddr)
	case ast.ConstBigNum, ast.ConstRexPat:
		o := g.lazyConstObj(c)
		g.instr(op.PushObj)
		g.writeObj(o)
	}
}

// constIntOf unwraps an integer constant expression.
func constIntOf(e ast.Expr) (int32, bool) {
	if c, ok := e.(*ast.ConstExpr); ok && c.Val.Kind == ast.ConstInt {
		return c.Val.Int, true
	}
	return 0, false
}

// genExprCond evaluates an expression as a branch condition, jumping to
// thenL when true or elseL when false. At most one label is non-nil; a
// nil label falls through on that outcome. Comparisons branch directly
// without materializing a boolean.
func (g *Generator) genExprCond(e ast.Expr, thenL, elseL *Label) {
	if thenL == nil && elseL == nil {
		g.genExpr(e, true, false)
		return
	}
	switch e := e.(type) {
	case *ast.ConstExpr:
		if e.Val.IsTrue() {
			if thenL != nil {
				g.emitJumpTo(op.Jmp, thenL)
			}
		} else if elseL != nil {
			g.emitJumpTo(op.Jmp, elseL)
		}

	case *ast.UnaryExpr:
		if e.Op == ast.OpNot {
			g.genExprCond(e.X, elseL, thenL)
			return
		}
		g.genCondDefault(e, thenL, elseL)

	case *ast.AndExpr:
		if elseL != nil {
			g.genExprCond(e.L, nil, elseL)
			g.genExprCond(e.R, nil, elseL)
			return
		}
		fail := g.newLbl()
		g.genExprCond(e.L, nil, fail)
		g.genExprCond(e.R, thenL, nil)
		g.defineLabel(fail)

	case *ast.OrExpr:
		if thenL != nil {
			g.genExprCond(e.L, thenL, nil)
			g.genExprCond(e.R, thenL, nil)
			return
		}
		pass := g.newLbl()
		g.genExprCond(e.L, pass, nil)
		g.genExprCond(e.R, nil, elseL)
		g.defineLabel(pass)

	case *ast.BinaryExpr:
		jumps, ok := cmpJump[e.Op]
		if !ok {
			g.genCondDefault(e, thenL, elseL)
			return
		}
		g.genExpr(e.L, false, false)
		g.genExpr(e.R, false, false)
		if thenL != nil {
			g.emitJumpTo(jumps[0], thenL)
		} else {
			g.emitJumpTo(jumps[1], elseL)
		}

	default:
		g.genCondDefault(e, thenL, elseL)
	}
}

// genCondDefault materializes the condition value and branches on it.
func (g *Generator) genCondDefault(e ast.Expr, thenL, elseL *Label) {
	g.genExpr(e, false, true)
	if thenL != nil {
		g.emitJumpTo(op.Jt, thenL)
	} else {
		g.emitJumpTo(op.Jf, elseL)
	}
}

// genListExpr builds a run-time list. Elements are pushed in reverse:
// the List metaclass constructor expects them right to left.
func (g *Generator) genListExpr(e *ast.ListExpr, discard bool) {
	if discard {
		for _, el := range e.Elems {
			g.genExpr(el, true, false)
		}
		return
	}
	for i := len(e.Elems) - 1; i >= 0; i-- {
		g.genExpr(e.Elems[i], false, false)
	}
	n := len(e.Elems)
	listIdx := g.metaIndex("list", metaList)
	if n <= 255 && listIdx <= 255 {
		g.instr(op.New1)
		g.cs.Write1(uint8(n))
		g.cs.Write1(uint8(listIdx))
	} else {
		g.instr(op.New2)
		g.cs.Write2(uint16(n))
		g.cs.Write2(uint16(listIdx))
	}
	g.stk.notePop(n)
	g.emit(op.GetR0)
}

// genDString emits a self-printing string, splitting around embedded
// expressions.
func (g *Generator) genDString(e *ast.DStringExpr) {
	for _, part := range e.Parts {
		if part.Embed != nil {
			g.genExpr(part.Embed, false, false)
			g.emit(op.SayVal)
			continue
		}
		if part.Text == "" {
			continue
		}
		a := g.intern.String(part.Text)
		g.instr(op.Say)
		g.writePoolRef(a, RefConstAddr)
	}
}

// genOneOf selects one alternative of a <<one of>> list, driven by the
// generated state object's next-index method.
func (g *Generator) genOneOf(e *ast.OneOfExpr, discard bool) {
	allConst := true
	consts := make([]ast.ConstVal, 0, len(e.Choices))
	for _, c := range e.Choices {
		ce, ok := c.(*ast.ConstExpr)
		if !ok {
			allConst = false
			break
		}
		consts = append(consts, ce.Val)
	}

	if allConst {
		// list[state.getNextIndex()]
		a := g.constListAnchor(consts)
		g.instr(op.PushLst)
		g.writePoolRef(a, RefConstAddr)
		g.instr(op.ObjCallProp)
		g.cs.Write1(0)
		g.writeObj(e.State)
		g.writeProp(e.GetNext)
		g.emit(op.GetR0)
		g.emit(op.Index)
		if discard {
			g.emitDisc()
		}
		return
	}

	// switch on the index, evaluating exactly one alternative
	g.instr(op.ObjCallProp)
	g.cs.Write1(0)
	g.writeObj(e.State)
	g.writeProp(e.GetNext)
	g.emit(op.GetR0)

	done := g.newLbl()
	entries := make([]switchEntry, len(e.Choices))
	for i := range e.Choices {
		entries[i] = switchEntry{val: ast.IntConst(int32(i + 1)), lbl: g.newLbl()}
	}
	g.emitSwitch(entries, done)
	d0 := g.stk.depth
	for i, c := range e.Choices {
		g.defineLabel(entries[i].lbl)
		g.stk.setDepth(d0)
		g.genExpr(c, discard, false)
		g.emitJumpTo(op.Jmp, done)
	}
	g.defineLabel(done)
	if discard {
		g.stk.setDepth(d0)
	} else {
		g.stk.setDepth(d0 + 1)
	}
}

// genAnonFn produces an anonymous function value. Without captures a
// bare function pointer suffices; with captures the enclosing context
// objects are bound into a fresh anonymous-function object.
func (g *Generator) genAnonFn(e *ast.AnonFnExpr, discard bool) {
	a := g.bodyAnchor(e.Body)
	if len(e.CtxObjs) == 0 {
		if discard {
			return
		}
		g.instr(op.PushFnPtr)
		g.writePoolRef(a, RefCodeAddr)
		return
	}

	for i := len(e.CtxObjs) - 1; i >= 0; i-- {
		g.emitGetLocal(e.CtxObjs[i])
	}
	g.instr(op.PushFnPtr)
	g.writePoolRef(a, RefCodeAddr)
	argc := len(e.CtxObjs) + 1
	g.instr(op.New1)
	g.cs.Write1(uint8(argc))
	g.cs.Write1(uint8(g.metaIndex("anon-func-ptr", metaAnonFnPtr)))
	g.stk.notePop(argc)
	if !discard {
		g.emit(op.GetR0)
	}
}
