// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3"
	"github.com/go-interpreter/tads3/t3/op"
)

// genStrPush pushes a constant string by pool reference.
func (g *Generator) genStrPush(s string) {
	a := g.intern.String(s)
	g.instr(op.PushStr)
	g.writePoolRef(a, RefConstAddr)
	g.checkConst32K()
}

func (g *Generator) checkConst32K() {
	if !g.warnedConst32K && g.ds.Len() > 32*1024 {
		g.warnedConst32K = true
		g.warnf(WarnConstPoolOver32K, "")
	}
}

// constListAnchor serializes a constant list into the data stream and
// returns its anchor. Lists whose elements are all scalar are interned;
// lists containing pool or symbol references are not, since their bytes
// carry fixups.
func (g *Generator) constListAnchor(elems []ast.ConstVal) *Anchor {
	if scalarConsts(elems) {
		body := NewByteStream(DataStream)
		body.Write2(uint16(len(elems)))
		var buf [t3.DataHolderSize]byte
		for _, e := range elems {
			scalarValue(e).PutDataHolder(buf[:])
			body.Write(buf[:])
		}
		a := g.intern.List(body.Bytes(), true)
		g.checkConst32K()
		return a
	}

	// serialize reference children first so their anchors exist
	type child struct {
		idx int
		a   *Anchor
	}
	var children []child
	for i, e := range elems {
		switch e.Kind {
		case ast.ConstSString:
			children = append(children, child{i, g.intern.String(e.Str)})
		case ast.ConstList:
			children = append(children, child{i, g.constListAnchor(e.List)})
		}
	}
	childAt := make(map[int]*Anchor, len(children))
	for _, c := range children {
		childAt[c.idx] = c.a
	}

	a := g.intern.NewAnchor("list")
	g.ds.Write2(uint16(len(elems)))
	for i, e := range elems {
		g.writeConstDH(g.ds, e, childAt[i])
	}
	a.Close()
	g.checkConst32K()
	return a
}

// scalarConsts reports whether every element serializes without fixups.
func scalarConsts(elems []ast.ConstVal) bool {
	for _, e := range elems {
		switch e.Kind {
		case ast.ConstNil, ast.ConstTrue, ast.ConstInt, ast.ConstProp,
			ast.ConstEnum:
		default:
			return false
		}
	}
	return true
}

func scalarValue(e ast.ConstVal) t3.Value {
	switch e.Kind {
	case ast.ConstNil:
		return t3.NilValue
	case ast.ConstTrue:
		return t3.TrueValue
	case ast.ConstInt:
		return t3.IntValue(e.Int)
	case ast.ConstProp:
		return t3.PropValue(e.Prop.ID)
	case ast.ConstEnum:
		return t3.EnumValue(e.Enum.ID)
	}
	panic("codegen: not a scalar constant")
}

// writeConstDH serializes one dataholder into s. For pool references the
// caller supplies the child's anchor; symbol references record
// link-time fixups.
func (g *Generator) writeConstDH(s *ByteStream, e ast.ConstVal, child *Anchor) {
	ofs := s.Len()
	var buf [t3.DataHolderSize]byte
	switch e.Kind {
	case ast.ConstNil, ast.ConstTrue, ast.ConstInt, ast.ConstProp, ast.ConstEnum:
		scalarValue(e).PutDataHolder(buf[:])
		s.Write(buf[:])
		if e.Kind == ast.ConstProp {
			g.propRefs[e.Prop] = append(g.propRefs[e.Prop],
				&Fixup{Stream: s, Ofs: ofs + 1, Width: 2, Kind: RefPropID})
		}
		if e.Kind == ast.ConstEnum {
			g.enumRefs[e.Enum] = append(g.enumRefs[e.Enum],
				&Fixup{Stream: s, Ofs: ofs + 1, Width: 4, Kind: RefEnumID})
		}
	case ast.ConstObj:
		t3.ObjValue(e.Obj.ID).PutDataHolder(buf[:])
		s.Write(buf[:])
		g.objRefs[e.Obj] = append(g.objRefs[e.Obj],
			&Fixup{Stream: s, Ofs: ofs + 1, Width: 4, Kind: RefObjID})
	case ast.ConstSString:
		t3.Value{Type: t3.TypeSString}.PutDataHolder(buf[:])
		s.Write(buf[:])
		if child == nil {
			child = g.intern.String(e.Str)
		}
		child.AddFixup(s, ofs+1, 4, RefConstAddr)
	case ast.ConstList:
		t3.Value{Type: t3.TypeList}.PutDataHolder(buf[:])
		s.Write(buf[:])
		if child == nil {
			child = g.constListAnchor(e.List)
		}
		child.AddFixup(s, ofs+1, 4, RefConstAddr)
	case ast.ConstFuncPtr:
		t3.Value{Type: t3.TypeFuncPtr}.PutDataHolder(buf[:])
		s.Write(buf[:])
		g.funcAnchor(e.Func).AddFixup(s, ofs+1, 4, RefCodeAddr)
	case ast.ConstBigNum:
		t3.ObjValue(g.lazyConstObj(e).ID).PutDataHolder(buf[:])
		s.Write(buf[:])
	case ast.ConstRexPat:
		t3.ObjValue(g.lazyConstObj(e).ID).PutDataHolder(buf[:])
		s.Write(buf[:])
	default:
		panic("codegen: unhandled constant kind")
	}
}

// lazyConstObj returns the heap object backing a BigNumber or RexPattern
// constant, creating it at first reference. The object's static data is
// the source text, which the metaclass parses at load time.
func (g *Generator) lazyConstObj(e ast.ConstVal) *ast.ObjSym {
	if g.lazyObjs == nil {
		g.lazyObjs = make(map[lazyKey]*ast.ObjSym)
	}
	key := lazyKey{e.Kind, e.Str}
	if o, ok := g.lazyObjs[key]; ok {
		return o
	}

	var metaIdx int
	var name string
	switch e.Kind {
	case ast.ConstBigNum:
		metaIdx = g.metaIndex("bignumber", metaBigNumber)
		name = "bignumber"
	case ast.ConstRexPat:
		metaIdx = g.metaIndex("regex-pattern", metaRexPattern)
		name = "rexpattern"
	default:
		panic("codegen: not a lazy constant")
	}

	o := &ast.ObjSym{Name: name, ID: g.unit.AllocObjID()}
	g.lazyObjs[key] = o

	ofs := g.os.Len()
	g.os.Write2(uint16(len(e.Str)))
	g.os.WriteString(e.Str)
	g.objs = append(g.objs, &objRecord{
		sym:       o,
		metaIndex: metaIdx,
		ofs:       ofs,
		size:      g.os.Len() - ofs,
	})
	return o
}

type lazyKey struct {
	kind ast.ConstKind
	str  string
}
