// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3/op"
)

// pushArgs pushes a call's actuals. Positional arguments go in reverse
// so the first argument ends up on top; named-argument values sit below
// the positional ones and are located through the call's name table.
func (g *Generator) pushArgs(args []ast.Expr, named []ast.NamedArg) int {
	for i := len(named) - 1; i >= 0; i-- {
		g.genExpr(named[i].Val, false, false)
	}
	for i := len(args) - 1; i >= 0; i-- {
		g.genExpr(args[i], false, false)
	}
	return len(args) + len(named)
}

// emitNamedArgPtr tags the just-emitted call with its argument-name
// table; the table body itself is emitted after the method's code.
func (g *Generator) emitNamedArgPtr(named []ast.NamedArg) {
	if len(named) == 0 {
		return
	}
	g.instr(op.NamedArgPtr)
	g.cs.Write1(uint8(len(named)))
	site := g.cs.Len()
	g.cs.Write2(0)
	names := make([]string, len(named))
	for i, n := range named {
		names[i] = n.Name
	}
	g.m.argTabs = append(g.m.argTabs, &namedArgTab{
		names:    names,
		ptrSites: []uint32{site},
	})
}

// emitVarargsMod expands the trailing list argument on the stack and
// switches the following call to a dynamic argument count.
func (g *Generator) emitVarargsMod() {
	g.emit(op.MakeLstPar)
	g.emit(op.Varargc)
}

// checkArgc verifies a call's positional argument count against the
// declared signature. Per the original, the check is reported only
// after the call has been emitted.
func (g *Generator) checkArgc(name string, sig ast.FuncSig, argc int) {
	if argc < sig.MinArgs() {
		g.errorf(ErrWrongArgc, "%s needs at least %d arguments, got %d",
			name, sig.MinArgs(), argc)
		return
	}
	if max := sig.MaxArgs(); max >= 0 && argc > max {
		g.errorf(ErrWrongArgc, "%s takes at most %d arguments, got %d",
			name, max, argc)
	}
}

// specEvalCall reports calls that are off limits during speculative
// debugger evaluation.
func (g *Generator) specEvalCall(argc int) bool {
	if g.cfg.SpeculativeEval && argc > 0 {
		g.errorf(ErrBadSpecEval, "")
		return true
	}
	return false
}

// genCall generates a call to the value of e.Fn.
func (g *Generator) genCall(e *ast.CallExpr, discard bool) {
	switch fn := e.Fn.(type) {
	case *ast.FuncExpr:
		if g.specEvalCall(len(e.Args) + len(e.Named)) {
			g.errorPush(discard)
			return
		}
		argc := g.pushArgs(e.Args, e.Named)
		if e.Varargs {
			g.emitVarargsMod()
		}
		g.instr(op.Call)
		g.cs.Write1(uint8(argc))
		g.writePoolRef(g.funcAnchor(fn.Sym), RefCodeAddr)
		g.stk.notePop(argc)
		g.emitNamedArgPtr(e.Named)
		g.checkArgc(fn.Sym.Name, fn.Sym.Sig, len(e.Args))
		if !discard {
			g.emit(op.GetR0)
		}

	case *ast.BifExpr:
		if fn.Sym.Name == "rand" && len(e.Args) >= 2 && len(e.Named) == 0 {
			g.genRandSwitch(fn.Sym, e.Args, discard)
			return
		}
		if g.specEvalCall(len(e.Args) + len(e.Named)) {
			g.errorPush(discard)
			return
		}
		argc := g.pushArgs(e.Args, e.Named)
		if e.Varargs {
			g.emitVarargsMod()
		}
		g.emitBif(fn.Sym, argc)
		g.emitNamedArgPtr(e.Named)
		g.checkArgc(fn.Sym.Name, fn.Sym.Sig, len(e.Args))
		if !discard {
			g.emit(op.GetR0)
		}

	case *ast.PropExpr:
		g.genMember(&ast.MemberExpr{
			Prop: fn, IsCall: true,
			Args: e.Args, Varargs: e.Varargs, Named: e.Named,
		}, discard)

	case *ast.MemberExpr:
		m := *fn
		m.IsCall = true
		m.Args, m.Varargs, m.Named = e.Args, e.Varargs, e.Named
		g.genMember(&m, discard)

	default:
		if g.specEvalCall(len(e.Args) + len(e.Named)) {
			g.errorPush(discard)
			return
		}
		argc := g.pushArgs(e.Args, e.Named)
		if e.Varargs {
			g.emitVarargsMod()
		}
		g.genExpr(e.Fn, false, false)
		g.instr(op.PtrCall)
		g.cs.Write1(uint8(argc))
		g.stk.notePop(argc)
		g.emitNamedArgPtr(e.Named)
		if !discard {
			g.emit(op.GetR0)
		}
	}
}

// errorPush keeps the simulated stack balanced on error paths that emit
// no call.
func (g *Generator) errorPush(discard bool) {
	if !discard {
		g.emit(op.PushNil)
	}
}

// emitBif calls a built-in function, selecting the compact per-set
// opcodes when the indices fit.
func (g *Generator) emitBif(b *ast.BifSym, argc int) {
	switch {
	case b.SetIndex < 4 && b.Index <= 255:
		g.instr(op.BuiltinA + byte(b.SetIndex))
		g.cs.Write1(uint8(argc))
		g.cs.Write1(uint8(b.Index))
	case b.Index <= 255:
		g.instr(op.Builtin1)
		g.cs.Write1(uint8(argc))
		g.cs.Write1(uint8(b.Index))
		g.cs.Write1(uint8(b.SetIndex))
	default:
		g.instr(op.Builtin2)
		g.cs.Write1(uint8(argc))
		g.cs.Write2(uint16(b.Index))
		g.cs.Write1(uint8(b.SetIndex))
	}
	g.stk.notePop(argc)
}

// genRandSwitch compiles rand(a, b, ...) with two or more alternatives:
// rand's contract evaluates exactly one alternative, so the argument
// list cannot be evaluated eagerly. rand(n) picks the index, and a
// SWITCH evaluates the chosen alternative only.
func (g *Generator) genRandSwitch(randBif *ast.BifSym, args []ast.Expr, discard bool) {
	n := len(args)
	g.emitI8(op.PushInt8, int8(n))
	g.emitBif(randBif, 1)
	g.emit(op.GetR0)

	done := g.newLbl()
	entries := make([]switchEntry, n)
	for i := range args {
		entries[i] = switchEntry{val: ast.IntConst(int32(i)), lbl: g.newLbl()}
	}
	g.emitSwitch(entries, done)
	d0 := g.stk.depth
	for i, a := range args {
		g.defineLabel(entries[i].lbl)
		g.stk.setDepth(d0)
		g.genExpr(a, discard, false)
		g.emitJumpTo(op.Jmp, done)
	}
	g.defineLabel(done)
	if !discard {
		g.stk.setDepth(d0 + 1)
	} else {
		g.stk.setDepth(d0)
	}
}

// genMember generates property access or a property call.
func (g *Generator) genMember(e *ast.MemberExpr, discard bool) {
	argc := 0
	if e.IsCall || len(e.Args) > 0 || len(e.Named) > 0 {
		if g.specEvalCall(len(e.Args) + len(e.Named)) {
			g.errorPush(discard)
			return
		}
		argc = g.pushArgs(e.Args, e.Named)
	}

	varargs := func() {
		if e.Varargs && argc > 0 {
			g.emitVarargsMod()
		}
	}

	objIsSelf := e.Obj == nil
	if _, ok := e.Obj.(*ast.SelfExpr); ok {
		objIsSelf = true
	}
	if objIsSelf && !g.m.selfOK {
		g.errorf(ErrSelfNotAvailable, "")
		g.errorPush(discard)
		return
	}

	constProp, _ := e.Prop.(*ast.PropExpr)

	switch {
	case objIsSelf && constProp != nil:
		varargs()
		if argc == 0 {
			g.instr(op.GetPropSelf)
			g.writeProp(constProp.Sym)
		} else {
			g.instr(op.CallPropSelf)
			g.cs.Write1(uint8(argc))
			g.writeProp(constProp.Sym)
			g.stk.notePop(argc)
		}

	case constProp != nil && isConstObj(e.Obj):
		varargs()
		o := e.Obj.(*ast.ObjExpr)
		if argc == 0 {
			g.instr(op.ObjGetProp)
			g.writeObj(o.Sym)
			g.writeProp(constProp.Sym)
		} else {
			g.instr(op.ObjCallProp)
			g.cs.Write1(uint8(argc))
			g.writeObj(o.Sym)
			g.writeProp(constProp.Sym)
			g.stk.notePop(argc)
		}

	case constProp != nil:
		g.genExpr(e.Obj, false, false)
		varargs()
		if argc == 0 {
			if g.cfg.SpeculativeEval {
				g.instr(op.GetPropData)
				g.writeProp(constProp.Sym)
			} else {
				g.emitGetProp(constProp.Sym)
			}
		} else {
			g.emitCallProp(argc, constProp.Sym)
		}

	case objIsSelf:
		g.genExpr(e.Prop, false, false)
		varargs()
		g.instr(op.PtrCallPropSelf)
		g.cs.Write1(uint8(argc))
		g.stk.notePop(argc)

	default:
		g.genExpr(e.Obj, false, false)
		g.genExpr(e.Prop, false, false)
		varargs()
		if argc == 0 && g.cfg.SpeculativeEval {
			g.emit(op.PtrGetPropData)
		} else {
			g.instr(op.PtrCallProp)
			g.cs.Write1(uint8(argc))
			g.stk.notePop(argc)
		}
	}

	g.emitNamedArgPtr(e.Named)
	if !discard {
		g.emit(op.GetR0)
	}
}

func isConstObj(e ast.Expr) bool {
	_, ok := e.(*ast.ObjExpr)
	return ok
}

// genNew instantiates an object. Only TadsObject supports the
// constant-object path; the original left a metaclass-index dispatch
// unfinished here, so anything else keeps the diagnostic.
func (g *Generator) genNew(e *ast.NewExpr, discard bool) {
	if g.cfg.SpeculativeEval {
		g.errorf(ErrBadSpecEval, "")
		g.errorPush(discard)
		return
	}

	switch base := e.Base.(type) {
	case *ast.ObjExpr:
		if d := base.Sym.Def; d != nil && d.Meta != nil &&
			baseDepName(d.Meta.Name) != "tads-object" {
			g.errorf(ErrBadMetaclassForNew, "%s", base.Sym.Name)
			g.errorPush(discard)
			return
		}
	case *ast.ConstExpr:
		if base.Val.Kind != ast.ConstObj {
			g.errorf(ErrInvalidNewExpr, "")
			g.errorPush(discard)
			return
		}
	}

	argc := g.pushArgs(e.Args, e.Named)
	g.genExpr(e.Base, false, false)
	total := argc + 1
	if argc > 126 {
		g.errorf(ErrTooManyCtorArgs, "%d arguments", argc)
	}
	if e.Varargs {
		g.emitVarargsMod()
	}

	metaIdx := g.tadsObjectIndex()
	c := byte(op.New1)
	if e.Transient {
		c = op.TrNew1
	}
	if total <= 255 && metaIdx <= 255 {
		g.instr(c)
		g.cs.Write1(uint8(total))
		g.cs.Write1(uint8(metaIdx))
	} else {
		c = op.New2
		if e.Transient {
			c = op.TrNew2
		}
		g.instr(c)
		g.cs.Write2(uint16(total))
		g.cs.Write2(uint16(metaIdx))
	}
	g.stk.notePop(total)
	g.emitNamedArgPtr(e.Named)
	if !discard {
		g.emit(op.GetR0)
	}
}

// genInherited compiles inherited calls, both the class-based forms and
// the multi-method inherited<T1,T2>(...) form.
func (g *Generator) genInherited(e *ast.InheritedExpr, discard bool) {
	if e.MMFunc != nil {
		target := findOverload(e.MMFunc, e.MMTypes)
		if target == nil {
			g.errorf(ErrMMInhUndefFunc, "%s", e.MMFunc.Name)
			g.errorPush(discard)
			return
		}
		argc := g.pushArgs(e.Args, nil)
		if e.Varargs {
			g.emitVarargsMod()
		}
		g.instr(op.Call)
		g.cs.Write1(uint8(argc))
		g.writePoolRef(g.funcAnchor(target), RefCodeAddr)
		g.stk.notePop(argc)
		if !discard {
			g.emit(op.GetR0)
		}
		return
	}

	if !g.m.selfOK {
		g.errorf(ErrSelfNotAvailable, "")
		g.errorPush(discard)
		return
	}

	argc := g.pushArgs(e.Args, nil)
	if e.Varargs {
		g.emitVarargsMod()
	}
	switch {
	case e.PropExpr == nil && e.Super == nil:
		g.instr(op.Inherit)
		g.cs.Write1(uint8(argc))
		g.writeProp(e.Prop)
	case e.PropExpr == nil:
		g.instr(op.ExpInherit)
		g.cs.Write1(uint8(argc))
		g.writeProp(e.Prop)
		g.writeObj(e.Super)
	case e.Super == nil:
		g.genExpr(e.PropExpr, false, false)
		g.instr(op.PtrInherit)
		g.cs.Write1(uint8(argc))
	default:
		g.genExpr(e.PropExpr, false, false)
		g.instr(op.PtrExpInherit)
		g.cs.Write1(uint8(argc))
		g.writeObj(e.Super)
	}
	g.stk.notePop(argc)
	if !discard {
		g.emit(op.GetR0)
	}
}

// findOverload locates the multi-method overload with exactly the given
// declared type list.
func findOverload(f *ast.FuncSym, types []*ast.ObjSym) *ast.FuncSym {
	for _, o := range f.Overloads {
		if len(o.Types) != len(types) {
			continue
		}
		match := true
		for i := range types {
			if o.Types[i] != types[i] {
				match = false
				break
			}
		}
		if match {
			return o.Func
		}
	}
	return nil
}

// genDelegated compiles `delegated target.prop(args)`.
func (g *Generator) genDelegated(e *ast.DelegatedExpr, discard bool) {
	if !g.m.selfOK {
		g.errorf(ErrSelfNotAvailable, "")
		g.errorPush(discard)
		return
	}
	argc := g.pushArgs(e.Args, nil)
	g.genExpr(e.Target, false, false)
	if e.Varargs {
		g.emitVarargsMod()
	}
	if e.PropExpr == nil {
		g.instr(op.Delegate)
		g.cs.Write1(uint8(argc))
		g.writeProp(e.Prop)
	} else {
		g.genExpr(e.PropExpr, false, false)
		g.instr(op.PtrDelegate)
		g.cs.Write1(uint8(argc))
	}
	g.stk.notePop(argc)
	if !discard {
		g.emit(op.GetR0)
	}
}
