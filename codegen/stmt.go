// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3/op"
)

// genStmt generates one statement. At statement boundaries the operand
// stack must return to its entry depth; a drift here is a code
// generator bug, reported with the containing symbol's name.
func (g *Generator) genStmt(s ast.Stmt) {
	g.noteLine(s.Line(), s.File())
	d0 := g.stk.depth
	errs := g.sink.ErrorCount()

	switch s := s.(type) {
	case *ast.Block:
		g.genBlock(s)
	case *ast.ExprStmt:
		g.genExpr(s.X, true, false)
	case *ast.LocalDecl:
		for i, v := range s.Vars {
			if i < len(s.Inits) && s.Inits[i] != nil {
				g.genAsiLocal(v, ast.AsiSimple, s.Inits[i], true)
			}
		}
	case *ast.IfStmt:
		g.genIf(s)
	case *ast.WhileStmt:
		g.genWhile(s)
	case *ast.DoWhileStmt:
		g.genDoWhile(s)
	case *ast.ForStmt:
		g.genFor(s)
	case *ast.ReturnStmt:
		g.genReturn(s)
	case *ast.BreakStmt:
		g.genBreak(s.LabelName)
	case *ast.ContinueStmt:
		g.genContinue(s.LabelName)
	case *ast.SwitchStmt:
		g.genSwitch(s)
	case *ast.LabelStmt:
		g.genLabeled(s)
	case *ast.GotoStmt:
		g.emitJumpTo(op.Jmp, g.m.namedLabel(s.Target, g))
	case *ast.ThrowStmt:
		g.genExpr(s.X, false, false)
		g.emitAbsorbing(op.Throw)
	case *ast.TryStmt:
		g.genTry(s)
	default:
		logger.Printf("unhandled statement %T", s)
	}

	if g.stk.depth != d0 && g.sink.ErrorCount() == errs {
		g.errorf(ErrStackMismatch, "depth %d after statement, expected %d",
			g.stk.depth, d0)
		g.stk.setDepth(d0)
	}
}

func (g *Generator) genBlock(b *ast.Block) {
	prevFrame := g.m.curFrame
	if g.cfg.Debug && len(b.FrameLocals) > 0 {
		fr := &frameRec{
			id:     len(g.m.frames) + 1,
			parent: prevFrame,
			start:  g.cs.Len(),
			syms:   b.FrameLocals,
		}
		g.m.frames = append(g.m.frames, fr)
		g.m.curFrame = fr.id
		defer func() {
			fr.end = g.cs.Len()
			g.m.curFrame = prevFrame
		}()
	}
	for _, s := range b.Stmts {
		g.genStmt(s)
	}
}

func (g *Generator) genIf(s *ast.IfStmt) {
	elseL := g.newLbl()
	g.genExprCond(s.Cond, nil, elseL)
	g.genStmt(s.Then)
	if s.Else != nil {
		done := g.newLbl()
		g.emitJumpTo(op.Jmp, done)
		g.defineLabel(elseL)
		g.genStmt(s.Else)
		g.defineLabel(done)
		return
	}
	g.defineLabel(elseL)
}

// pushLoop opens a break/continue scope, adopting a pending statement
// label if the loop was directly labeled.
func (g *Generator) pushLoop(brk, cont *Label) *loopCtx {
	lc := &loopCtx{
		name:     g.m.pendingLabel,
		brk:      brk,
		cont:     cont,
		finDepth: len(g.m.finallies),
		parent:   g.m.loops,
	}
	g.m.pendingLabel = ""
	g.m.loops = lc
	return lc
}

func (g *Generator) popLoop() {
	g.m.loops = g.m.loops.parent
}

func (g *Generator) genWhile(s *ast.WhileStmt) {
	top := g.newLbl()
	end := g.newLbl()
	g.defineLabel(top)
	g.genExprCond(s.Cond, nil, end)
	g.pushLoop(end, top)
	g.genStmt(s.Body)
	g.popLoop()
	g.emitJumpTo(op.Jmp, top)
	g.defineLabel(end)
}

func (g *Generator) genDoWhile(s *ast.DoWhileStmt) {
	top := g.newLbl()
	cont := g.newLbl()
	end := g.newLbl()
	g.defineLabel(top)
	g.pushLoop(end, cont)
	g.genStmt(s.Body)
	g.popLoop()
	g.defineLabel(cont)
	g.genExprCond(s.Cond, top, nil)
	g.defineLabel(end)
}

func (g *Generator) genFor(s *ast.ForStmt) {
	if s.Init != nil {
		g.genStmt(s.Init)
	}
	top := g.newLbl()
	cont := g.newLbl()
	end := g.newLbl()
	g.defineLabel(top)
	if s.Cond != nil {
		g.genExprCond(s.Cond, nil, end)
	}
	g.pushLoop(end, cont)
	g.genStmt(s.Body)
	g.popLoop()
	g.defineLabel(cont)
	if s.Update != nil {
		g.genExpr(s.Update, true, false)
	}
	g.emitJumpTo(op.Jmp, top)
	g.defineLabel(end)
}

func (g *Generator) genReturn(s *ast.ReturnStmt) {
	m := g.m
	if s.Val != nil {
		g.genExpr(s.Val, false, false)
		if len(m.finallies) > 0 {
			tmp := m.allocTemp()
			g.emitSetLocalNum(tmp, false)
			g.leaveFinallies(0)
			g.emitGetLocalNum(tmp, false)
		}
		g.emitRetVal()
		return
	}
	g.leaveFinallies(0)
	if m.isCtor {
		g.emit(op.PushSelf)
		g.emitRetVal()
		return
	}
	g.emitAbsorbing(op.RetNil)
}

func (g *Generator) genBreak(name string) {
	for lc := g.m.loops; lc != nil; lc = lc.parent {
		if name != "" && lc.name != name {
			continue
		}
		if lc.brk == nil {
			continue
		}
		g.leaveFinallies(lc.finDepth)
		g.emitJumpTo(op.Jmp, lc.brk)
		return
	}
	g.errorf(ErrUndefinedLabel, "break %s", name)
}

func (g *Generator) genContinue(name string) {
	for lc := g.m.loops; lc != nil; lc = lc.parent {
		if name != "" && lc.name != name {
			continue
		}
		if lc.cont == nil {
			continue
		}
		g.leaveFinallies(lc.finDepth)
		g.emitJumpTo(op.Jmp, lc.cont)
		return
	}
	g.errorf(ErrUndefinedLabel, "continue %s", name)
}

// emitLJsr calls a local subroutine. The pushed return slot is consumed
// by the subroutine's entry store, so it is accounted here.
func (g *Generator) emitLJsr(l *Label) {
	g.emitJumpTo(op.LJsr, l)
	g.stk.notePop(1)
}

// leaveFinallies runs every finally handler between the current
// position and the transfer target's nesting depth.
func (g *Generator) leaveFinallies(depth int) {
	for i := len(g.m.finallies) - 1; i >= depth; i-- {
		g.emitLJsr(g.m.finallies[i].sub)
	}
}

func (g *Generator) genLabeled(s *ast.LabelStmt) {
	m := g.m
	l := m.namedLabel(s.Name, g)
	g.defineLabel(l)

	end := g.newLbl()
	lc := &loopCtx{
		name:     s.Name,
		brk:      end,
		finDepth: len(m.finallies),
		parent:   m.loops,
	}
	m.loops = lc
	m.pendingLabel = s.Name
	g.genStmt(s.Stmt)
	m.pendingLabel = ""
	m.loops = lc.parent
	g.defineLabel(end)
}

// switchEntry is one value row of a SWITCH case table.
type switchEntry struct {
	val ast.ConstVal
	lbl *Label
}

// emitSwitch writes a SWITCH instruction with its inline case table:
// the value on the stack is compared against each dataholder and
// control transfers to the matching displacement, or to def.
func (g *Generator) emitSwitch(entries []switchEntry, def *Label) {
	g.instr(op.Switch)
	g.cs.Write2(uint16(len(entries)))
	for _, e := range entries {
		g.writeConstDH(g.cs, e.val, nil)
		site := g.cs.Len()
		g.cs.Write2(0)
		e.lbl.refer(site)
	}
	site := g.cs.Len()
	g.cs.Write2(0)
	def.refer(site)
}

func (g *Generator) genSwitch(s *ast.SwitchStmt) {
	g.genExpr(s.X, false, false)
	end := g.newLbl()
	g.pushLoop(end, nil)

	var entries []switchEntry
	caseLbls := make([]*Label, len(s.Cases))
	def := end
	for i, c := range s.Cases {
		caseLbls[i] = g.newLbl()
		if c.Vals == nil {
			def = caseLbls[i]
			continue
		}
		for _, v := range c.Vals {
			entries = append(entries, switchEntry{val: v, lbl: caseLbls[i]})
		}
	}
	g.emitSwitch(entries, def)

	d0 := g.stk.depth
	for i, c := range s.Cases {
		g.defineLabel(caseLbls[i])
		g.stk.setDepth(d0)
		for _, st := range c.Stmts {
			g.genStmt(st)
		}
	}
	g.popLoop()
	g.defineLabel(end)
	g.stk.setDepth(d0)
}

func (g *Generator) genTry(s *ast.TryStmt) {
	m := g.m
	d0 := g.stk.depth

	var fin *finallyCtx
	if s.Finally != nil {
		fin = &finallyCtx{sub: g.newLbl()}
		m.finallies = append(m.finallies, fin)
	}
	done := g.newLbl()

	start := g.cs.Len()
	g.genStmt(s.Body)
	end := g.cs.Len()

	if fin != nil {
		m.finallies = m.finallies[:len(m.finallies)-1]
		g.emitLJsr(fin.sub)
	}
	g.emitJumpTo(op.Jmp, done)

	for i := range s.Catches {
		c := &s.Catches[i]
		g.peep.clear()
		m.exc = append(m.exc, excEntry{
			start: start, end: end, excObj: c.ExcClass, catch: g.cs.Len(),
		})
		g.stk.setDepth(d0 + 1) // the VM pushes the exception object
		if c.Var != nil {
			g.genStoreLocal(c.Var)
		} else {
			g.emitDisc()
		}
		g.genStmt(c.Body)
		if fin != nil {
			g.emitLJsr(fin.sub)
		}
		g.emitJumpTo(op.Jmp, done)
	}

	if fin != nil {
		// unwind handler: run the finally, then rethrow
		g.peep.clear()
		m.exc = append(m.exc, excEntry{
			start: start, end: g.cs.Len(), excObj: nil, catch: g.cs.Len(),
		})
		g.stk.setDepth(d0 + 1)
		tmpExc := m.allocTemp()
		g.emitSetLocalNum(tmpExc, false)
		g.emitLJsr(fin.sub)
		g.emitGetLocalNum(tmpExc, false)
		g.emitAbsorbing(op.Throw)

		// the subroutine body: store the return slot, run the handler,
		// return through it
		g.defineLabel(fin.sub)
		g.stk.setDepth(d0 + 1)
		ret := m.allocTemp()
		g.emitSetLocalNum(ret, false)
		g.genStmt(s.Finally)
		g.emitU16(op.LRet, uint16(ret))
	}

	g.defineLabel(done)
	g.stk.setDepth(d0)
}
