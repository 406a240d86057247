// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3"
	"github.com/go-interpreter/tads3/t3/op"
)

// excEntry is one exception-table entry, recorded with absolute stream
// offsets and written out method-relative.
type excEntry struct {
	start, end uint32
	excObj     *ast.ObjSym // nil catches anything
	catch      uint32
}

// namedArgTab collects one call's argument names; the table body is
// emitted after the method's code and every NAMEDARGPTR site is patched
// with its method-relative offset.
type namedArgTab struct {
	names    []string
	ptrSites []uint32 // offsets of the u16 table-offset operands
}

type lineRec struct {
	ofs   uint32 // absolute stream offset
	file  int
	line  int
	frame int
}

type frameRec struct {
	id         int // 1-based
	parent     int
	start, end uint32 // absolute stream offsets
	syms       []*ast.Local
}

// loopCtx tracks the innermost enclosing loop, switch, or labeled
// statement for break/continue resolution.
type loopCtx struct {
	name     string
	brk      *Label
	cont     *Label // nil for switches and plain labeled statements
	finDepth int    // enclosing finally count at entry
	parent   *loopCtx
}

// finallyCtx is an enclosing finally handler; transfers out of the
// protected region call its subroutine first.
type finallyCtx struct {
	sub *Label
}

type methodState struct {
	body  *ast.CodeBody
	name  string
	start uint32

	localCount int

	labels []*Label
	named  map[string]*Label

	loops        *loopCtx
	pendingLabel string

	finallies []*finallyCtx

	lines    []lineRec
	frames   []*frameRec
	curFrame int

	exc     []excEntry
	argTabs []*namedArgTab

	selfOK bool
	isCtor bool
}

func (m *methodState) ctxVarNum() int { return m.body.LocalCtx.Var.Num }

// allocTemp extends the local frame with a generator temporary.
func (m *methodState) allocTemp() int {
	n := m.localCount
	m.localCount++
	return n
}

// namedLabel returns the goto label for name, creating it pending.
func (m *methodState) namedLabel(name string, g *Generator) *Label {
	if l, ok := m.named[name]; ok {
		return l
	}
	l := g.newLbl()
	l.name = name
	m.named[name] = l
	return l
}

// noteLine records a source-line boundary. The peephole is cleared so
// instructions from different lines never merge, keeping breakpoints
// addressable.
func (g *Generator) noteLine(line, file int) {
	if line == 0 {
		return
	}
	g.peep.clear()
	m := g.m
	if len(m.lines) > 0 {
		last := &m.lines[len(m.lines)-1]
		if last.ofs == g.cs.Len() {
			last.file, last.line, last.frame = file, line, m.curFrame
			return
		}
	}
	m.lines = append(m.lines, lineRec{ofs: g.cs.Len(), file: file, line: line, frame: m.curFrame})
}

// genCodeBody generates one complete method: header, prolog, body,
// epilog, named-argument tables, jump threading, and the exception and
// debug tables, patching the header placeholders at the end.
func (g *Generator) genCodeBody(body *ast.CodeBody, a *Anchor) {
	g.placeAnchor(a)
	g.methodHeaders = append(g.methodHeaders, a)

	m := &methodState{
		body:       body,
		name:       body.Name,
		start:      g.cs.Len(),
		localCount: body.LocalCount,
		named:      make(map[string]*Label),
		selfOK:     body.IsMethod,
		isCtor:     body.IsConstructor,
	}
	g.m = m
	g.stk.reset()
	g.peep.clear()
	errs0 := g.sink.ErrorCount()

	// method header; local count, max stack, and the table offsets are
	// placeholders patched below
	argc := byte(len(body.Params))
	if body.Varargs || body.VarargsList != nil {
		argc |= t3.MethodHeaderVarargs
	}
	g.cs.Write1(argc)
	g.cs.Write1(byte(len(body.OptParams)))
	g.cs.Write2(0) // local count
	g.cs.Write2(0) // max stack
	g.cs.Write2(0) // exception table offset
	g.cs.Write2(0) // debug records offset

	// root debug frame covers the parameters
	root := &frameRec{id: 1, start: g.cs.Len()}
	root.syms = append(root.syms, body.Params...)
	m.frames = append(m.frames, root)
	m.curFrame = 1

	g.genLocalCtxProlog(body)
	g.genVarargsProlog(body)
	g.genOptParams(body)
	g.genNamedParams(body)
	g.genCapturedProlog(body)

	if body.Body != nil {
		g.genStmt(body.Body)
	}

	// epilog: fall off the end returns nil, or self in a constructor
	if !(g.peep.last && op.Lookup(g.peep.lastOp).Absorbing) {
		if m.isCtor {
			g.emit(op.PushSelf)
			g.emitRetVal()
		} else {
			g.emitAbsorbing(op.RetNil)
		}
	}

	for _, l := range m.labels {
		if !l.Defined() {
			g.errorf(ErrUndefinedLabel, "%s", l.name)
		}
	}

	g.emitNamedArgTabs(m)

	if g.sink.OK() {
		threadJumps(g.cs, m.start+t3.MethodHeaderSize, g.cs.Len())
	}

	if m.localCount > 0xffff {
		g.errorf(ErrExprTooComplex, "too many locals")
	}
	g.cs.Write2At(m.start+2, uint16(m.localCount))
	g.cs.Write2At(m.start+4, uint16(g.stk.max))

	if len(m.exc) > 0 {
		g.cs.Write2At(m.start+6, uint16(g.cs.Len()-m.start))
		g.writeExcTable(m)
	}
	if g.cfg.Debug && len(m.lines) > 0 {
		g.cs.Write2At(m.start+8, uint16(g.cs.Len()-m.start))
		root.end = g.cs.Len()
		g.writeDebugRecords(m)
		g.lineMaps = append(g.lineMaps, methodLines{anchor: a, start: m.start, recs: m.lines})
	}

	a.Close()

	if (g.stk.underflow || g.stk.depth != 0) && g.sink.ErrorCount() == errs0 {
		g.errorf(ErrStackMismatch, "depth %d at end of %s", g.stk.depth, m.name)
	}
	if !g.warnedCode32K && g.cs.Len() > 32*1024 {
		g.warnedCode32K = true
		g.warnf(WarnCodePoolOver32K, "at %s", m.name)
	}

	g.m = nil
}

// genLocalCtxProlog allocates the local-context vector and copies any
// captured parameters into their context slots.
func (g *Generator) genLocalCtxProlog(body *ast.CodeBody) {
	lc := body.LocalCtx
	if lc == nil {
		return
	}
	// new Vector(size), stored in the designated slot
	g.emitI8(op.PushInt8, int8(lc.Size))
	g.instr(op.New1)
	g.cs.Write1(1)
	g.cs.Write1(uint8(g.metaIndex("vector", metaVector)))
	g.stk.notePop(1)
	g.emit(op.GetR0)
	g.emitSetLocalNum(lc.Var.Num, false)

	for _, p := range lc.CopyParams {
		g.emitGetLocalNum(p.Num, true)
		g.emitU8I8(op.SetIndLcl1I8, uint8(lc.Var.Num), int8(p.CtxIdx))
	}
}

// genVarargsProlog collects the extra actuals into the varargs-list
// formal.
func (g *Generator) genVarargsProlog(body *ast.CodeBody) {
	if body.VarargsList == nil {
		return
	}
	g.emitU8(op.PushParLst, uint8(len(body.Params)))
	g.genStoreLocal(body.VarargsList)
}

// genStoreLocal stores the top of stack into a local, routing context
// locals through their context vector.
func (g *Generator) genStoreLocal(v *ast.Local) {
	if v.InCtx {
		g.emitU8I8(op.SetIndLcl1I8, uint8(g.m.ctxVarNum()), int8(v.CtxIdx))
		return
	}
	g.emitSetLocalNum(v.Num, v.IsParam)
}

// genOptParams binds optional positional parameters: each either takes
// its actual or evaluates its default.
func (g *Generator) genOptParams(body *ast.CodeBody) {
	for i, p := range body.OptParams {
		pos := len(body.Params) + i + 1
		useDef := g.newLbl()
		done := g.newLbl()

		g.emit(op.GetArgc)
		g.emitI8(op.PushInt8, int8(pos))
		g.emitJumpTo(op.Jlt, useDef)
		g.emitGetLocalNum(pos-1, true)
		g.genStoreLocal(p.Local)
		g.emitJumpTo(op.Jmp, done)

		g.defineLabel(useDef)
		if p.Default != nil {
			g.genExpr(p.Default, false, false)
		} else {
			g.emit(op.PushNil)
		}
		g.genStoreLocal(p.Local)
		g.defineLabel(done)
	}
}

// genNamedParams binds named parameters through the t3GetNamedArg
// intrinsic. Constant defaults pass the default to the intrinsic;
// non-constant defaults guard the lookup with a catch-all handler so the
// default expression only runs when the argument is absent.
func (g *Generator) genNamedParams(body *ast.CodeBody) {
	for _, p := range body.NamedParams {
		bif := g.findBif("t3GetNamedArg")
		if bif == nil {
			g.errorf(ErrWrongArgc, "t3GetNamedArg intrinsic not available for named parameter %q", p.Name)
			continue
		}
		if def, ok := p.Default.(*ast.ConstExpr); ok || p.Default == nil {
			// t3GetNamedArg(name, default)
			if p.Default == nil {
				g.emit(op.PushNil)
			} else {
				g.genConst(def.Val, false)
			}
			g.genStrPush(p.Name)
			g.emitBif(bif, 2)
			g.emit(op.GetR0)
			g.genStoreLocal(p.Local)
			continue
		}

		start := g.cs.Len()
		g.genStrPush(p.Name)
		g.emitBif(bif, 1)
		end := g.cs.Len()
		g.emit(op.GetR0)
		g.genStoreLocal(p.Local)
		done := g.newLbl()
		g.emitJumpTo(op.Jmp, done)

		catch := g.newLbl()
		g.defineLabel(catch)
		g.m.exc = append(g.m.exc, excEntry{start: start, end: end, catch: g.cs.Len()})
		g.stk.setDepth(1) // the VM pushes the exception object
		g.emitDisc()
		g.genExpr(p.Default, false, false)
		g.genStoreLocal(p.Local)
		g.defineLabel(done)
	}
}

// genCapturedProlog loads an anonymous function's captured context
// objects out of the invokee's indexed slots into locals.
func (g *Generator) genCapturedProlog(body *ast.CodeBody) {
	for _, c := range body.Captured {
		g.emitU8(op.PushCtxEle, op.CtxEleInvokee)
		g.emitIndexConst(int32(c.InvokeeIdx))
		g.genStoreLocal(c.Target)
	}
}

// emitNamedArgTabs writes the per-call argument-name tables after the
// method's code and patches every NAMEDARGPTR site.
func (g *Generator) emitNamedArgTabs(m *methodState) {
	for _, tab := range m.argTabs {
		ofs := g.cs.Len() - m.start
		for _, site := range tab.ptrSites {
			g.cs.Write2At(site, uint16(ofs))
		}
		// table body: entry count then length-prefixed names
		body := NewByteStream(CodeStream)
		body.Write2(uint16(len(tab.names)))
		for _, n := range tab.names {
			body.Write1(uint8(len(n)))
			body.WriteString(n)
		}
		g.peep.clear()
		g.cs.Write1(op.NamedArgTab)
		g.cs.Write2(uint16(body.Len()))
		g.cs.Write(body.Bytes())
	}
	m.argTabs = nil
}

// writeExcTable emits the method's exception table with method-relative
// offsets.
func (g *Generator) writeExcTable(m *methodState) {
	g.cs.Write2(uint16(len(m.exc)))
	for _, e := range m.exc {
		g.cs.Write2(uint16(e.start - m.start))
		g.cs.Write2(uint16(e.end - m.start))
		if e.excObj != nil {
			site := g.cs.Len()
			g.cs.Write4(uint32(e.excObj.ID))
			g.objRefs[e.excObj] = append(g.objRefs[e.excObj],
				&Fixup{Stream: g.cs, Ofs: site, Width: 4, Kind: RefObjID})
		} else {
			g.cs.Write4(0)
		}
		g.cs.Write2(uint16(e.catch - m.start))
	}
}

// findBif looks up a built-in function by name.
func (g *Generator) findBif(name string) *ast.BifSym {
	if s, ok := g.unit.Syms.Find(name).(*ast.BifSym); ok {
		return s
	}
	return nil
}
