// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3/op"
)

// instr writes an opcode byte, records it in the peephole window, and
// applies its table stack effect. Operand bytes are appended by the
// caller; instructions with data-dependent stack effects (calls, DISC1)
// get their extra accounting at the call site.
func (g *Generator) instr(c byte) {
	o := op.Lookup(c)
	ofs := g.cs.Len()
	g.cs.Write1(c)
	g.peep.note(c, ofs)
	g.stk.snapshot()
	g.stk.notePop(o.Pop)
	g.stk.notePush(o.Push)
}

// removeLastInstr truncates the most recently emitted instruction,
// reversing its table stack effect. Used by peephole fusions.
func (g *Generator) removeLastInstr() {
	g.cs.SeekBack(g.cs.Len() - g.peep.lastOfs)
	g.stk.restore()
	g.peep.removeLast()
}

func (g *Generator) emit(c byte)  { g.instr(c) }

func (g *Generator) emitU8(c byte, a uint8) {
	g.instr(c)
	g.cs.Write1(a)
}

func (g *Generator) emitI8(c byte, a int8) {
	g.instr(c)
	g.cs.Write1(byte(a))
}

func (g *Generator) emitU16(c byte, a uint16) {
	g.instr(c)
	g.cs.Write2(a)
}

func (g *Generator) emitI32(c byte, a int32) {
	g.instr(c)
	g.cs.Write4(uint32(a))
}

func (g *Generator) emitU8U8(c byte, a, b uint8) {
	g.instr(c)
	g.cs.Write1(a)
	g.cs.Write1(b)
}

func (g *Generator) emitU8I8(c byte, a uint8, b int8) {
	g.instr(c)
	g.cs.Write1(a)
	g.cs.Write1(byte(b))
}

func (g *Generator) emitI8U8(c byte, a int8, b uint8) {
	g.instr(c)
	g.cs.Write1(byte(a))
	g.cs.Write1(b)
}

func (g *Generator) emitI32U16(c byte, a int32, b uint16) {
	g.instr(c)
	g.cs.Write4(uint32(a))
	g.cs.Write2(b)
}

// writeProp writes a property-id operand, recording a link-time fixup.
func (g *Generator) writeProp(p *ast.PropSym) {
	site := g.cs.Len()
	g.cs.Write2(uint16(p.ID))
	g.propRefs[p] = append(g.propRefs[p],
		&Fixup{Stream: g.cs, Ofs: site, Width: 2, Kind: RefPropID})
}

// writeObj writes an object-id operand, recording a link-time fixup.
func (g *Generator) writeObj(o *ast.ObjSym) {
	site := g.cs.Len()
	g.cs.Write4(uint32(o.ID))
	g.objRefs[o] = append(g.objRefs[o],
		&Fixup{Stream: g.cs, Ofs: site, Width: 4, Kind: RefObjID})
}

// writeEnum writes an enumerator operand, recording a link-time fixup.
func (g *Generator) writeEnum(e *ast.EnumSym) {
	site := g.cs.Len()
	g.cs.Write4(uint32(e.ID))
	g.enumRefs[e] = append(g.enumRefs[e],
		&Fixup{Stream: g.cs, Ofs: site, Width: 4, Kind: RefEnumID})
}

// writePoolRef writes a four-byte pool-address placeholder and registers
// the fixup on the target anchor.
func (g *Generator) writePoolRef(a *Anchor, kind RefKind) {
	site := g.cs.Len()
	g.cs.Write4(0)
	a.AddFixup(g.cs, site, 4, kind)
}

// emitAbsorbing emits a return or throw, dropping the instruction when
// it immediately repeats the previous one: returns are absorbing, and a
// second identical return can never execute. The stack effect is still
// applied so statement balance checks stay consistent.
func (g *Generator) emitAbsorbing(c byte) {
	o := op.Lookup(c)
	if g.peep.lastIs(c) {
		g.stk.notePop(o.Pop)
		g.stk.notePush(o.Push)
		return
	}
	g.instr(c)
}

// emitRetVal emits a return-top-of-stack, fusing the value push into the
// compact return forms where possible.
func (g *Generator) emitRetVal() {
	switch {
	case g.peep.lastIs(op.PushTrue), g.peep.lastIs(op.Push1):
		g.removeLastInstr()
		g.emitAbsorbing(op.RetTrue)
	case g.peep.lastIs(op.PushNil):
		g.removeLastInstr()
		g.emitAbsorbing(op.RetNil)
	case g.peep.lastIs(op.GetR0):
		g.removeLastInstr()
		g.emitAbsorbing(op.Ret)
	default:
		g.emitAbsorbing(op.RetVal)
	}
}

// emitDisc discards the top of stack, merging adjacent discards.
func (g *Generator) emitDisc() {
	if g.peep.lastIs(op.Disc) {
		g.removeLastInstr()
		g.emitU8(op.Disc1, 2)
		g.stk.notePop(2)
		return
	}
	if g.peep.lastIs(op.Disc1) {
		n := g.cs.ByteAt(g.peep.lastOfs + 1)
		if n < 255 {
			g.removeLastInstr()
			g.emitU8(op.Disc1, n+1)
			g.stk.notePop(int(n) + 1)
			return
		}
	}
	g.emit(op.Disc)
}

// emitNot emits a boolean negation; NOT NOT collapses to BOOLIZE.
func (g *Generator) emitNot() {
	if g.peep.lastIs(op.Not) {
		g.removeLastInstr()
		g.emit(op.Boolize)
		return
	}
	g.emit(op.Not)
}

// jumpFuse maps (previous instruction, conditional jump) pairs to the
// fused jump that replaces both.
var jumpFuse = map[[2]byte]byte{
	{op.Gt, op.Jf}: op.Jle, {op.Gt, op.Jt}: op.Jgt,
	{op.Ge, op.Jf}: op.Jlt, {op.Ge, op.Jt}: op.Jge,
	{op.Lt, op.Jf}: op.Jge, {op.Lt, op.Jt}: op.Jlt,
	{op.Le, op.Jf}: op.Jgt, {op.Le, op.Jt}: op.Jle,
	{op.Eq, op.Jf}: op.Jne, {op.Eq, op.Jt}: op.Je,
	{op.Ne, op.Jf}: op.Je, {op.Ne, op.Jt}: op.Jne,

	{op.Not, op.Jt}: op.Jf, {op.Not, op.Jf}: op.Jt,

	{op.PushNil, op.Je}: op.Jnil, {op.PushNil, op.Jne}: op.JNotNil,

	{op.GetR0, op.Jt}: op.JR0T, {op.GetR0, op.Jf}: op.JR0F,
}

// emitJumpTo emits a branch to the label, applying compare/push fusion.
// A branch emitted directly after an absorbing instruction is
// unreachable and is dropped.
func (g *Generator) emitJumpTo(c byte, l *Label) {
	if g.peep.last && op.Lookup(g.peep.lastOp).Absorbing {
		return
	}
	// fuse until stable: EQ NOT JT first folds the NOT, then the EQ
	for g.peep.last {
		fused, ok := jumpFuse[[2]byte{g.peep.lastOp, c}]
		if !ok {
			break
		}
		g.removeLastInstr()
		c = fused
	}
	g.instr(c)
	site := g.cs.Len()
	g.cs.Write2(0)
	l.refer(site)
}

// newLbl creates a label in the current method's code stream.
func (g *Generator) newLbl() *Label {
	l := newLabel(g.cs)
	if g.m != nil {
		g.m.labels = append(g.m.labels, l)
	}
	return l
}

// defineLabel pins a label at the current offset. Control can enter here
// from elsewhere, so the peephole window is cleared.
func (g *Generator) defineLabel(l *Label) {
	l.define()
	g.peep.clear()
}

// emitGetLocal pushes a local or parameter.
func (g *Generator) emitGetLocal(v *ast.Local) {
	if v.InCtx {
		g.emitGetLocalNum(g.m.ctxVarNum(), false)
		g.emitIndexConst(int32(v.CtxIdx))
		return
	}
	g.emitGetLocalNum(v.Num, v.IsParam)
}

func (g *Generator) emitGetLocalNum(num int, isParam bool) {
	switch {
	case isParam && num <= 255:
		g.emitU8(op.GetArg1, uint8(num))
	case isParam:
		g.emitU16(op.GetArg2, uint16(num))
	case num <= 255:
		g.emitU8(op.GetLcl1, uint8(num))
	default:
		g.emitU16(op.GetLcl2, uint16(num))
	}
}

// emitSetLocalNum stores the top of stack into a local slot.
func (g *Generator) emitSetLocalNum(num int, isParam bool) {
	switch {
	case isParam && num <= 255:
		g.emitU8(op.SetArg1, uint8(num))
	case isParam:
		g.emitU16(op.SetArg2, uint16(num))
	case num <= 255:
		g.emitU8(op.SetLcl1, uint8(num))
	default:
		g.emitU16(op.SetLcl2, uint16(num))
	}
}

// emitIndexConst indexes the value on the stack by an integer constant,
// using the compact forms and the GETLCL1 fusion.
func (g *Generator) emitIndexConst(idx int32) {
	if idx >= -128 && idx <= 127 {
		if g.peep.lastIs(op.GetLcl1) {
			n := g.cs.ByteAt(g.peep.lastOfs + 1)
			g.removeLastInstr()
			g.emitU8I8(op.IdxLcl1Int8, n, int8(idx))
			return
		}
		g.emitI8(op.IdxInt8, int8(idx))
		return
	}
	g.emitI32(op.PushInt, idx)
	g.emit(op.Index)
}

// emitGetProp evaluates a constant property of the object on the stack,
// fusing a preceding GETLCL1.
func (g *Generator) emitGetProp(p *ast.PropSym) {
	if g.peep.lastIs(op.GetLcl1) {
		n := g.cs.ByteAt(g.peep.lastOfs + 1)
		g.removeLastInstr()
		g.instr(op.GetPropLcl1)
		g.cs.Write1(n)
		g.writeProp(p)
		return
	}
	g.instr(op.GetProp)
	g.writeProp(p)
}

// emitCallProp calls a constant property of the object on the stack with
// argc arguments, fusing a preceding GETLCL1.
func (g *Generator) emitCallProp(argc int, p *ast.PropSym) {
	if g.peep.lastIs(op.GetLcl1) {
		n := g.cs.ByteAt(g.peep.lastOfs + 1)
		g.removeLastInstr()
		g.instr(op.CallPropLcl1)
		g.cs.Write1(uint8(argc))
		g.cs.Write1(n)
		g.writeProp(p)
		g.stk.notePop(argc)
		return
	}
	g.instr(op.CallProp)
	g.cs.Write1(uint8(argc))
	g.writeProp(p)
	g.stk.notePop(argc)
}
