// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3"
	"golang.org/x/exp/slices"
)

// objFlagClass marks a class object in its static data header.
const objFlagClass = 0x0001

// genObject emits one object definition into the object stream:
// superclass list and property table in TadsObject static-data form,
// with code-valued and static-initializer properties routed through the
// code stream.
func (g *Generator) genObject(od *ast.ObjDef) {
	metaIdx := g.tadsObjectIndex()
	if od.Meta != nil {
		metaIdx = g.metaIndex(baseDepName(od.Meta.Name), od.Meta.Name)
	}

	// property rows are sorted by ID so the VM can binary-search them
	props := slices.Clone(od.Props)
	slices.SortStableFunc(props, func(a, b *ast.PropDef) int {
		return int(a.Prop.ID) - int(b.Prop.ID)
	})

	ofs := g.os.Len()
	g.os.Write2(uint16(len(od.Supers)))
	g.os.Write2(uint16(len(props)))
	flags := uint16(0)
	if od.IsClass {
		flags |= objFlagClass
	}
	g.os.Write2(flags)

	for _, sc := range od.Supers {
		site := g.os.Len()
		g.os.Write4(uint32(sc.ID))
		g.objRefs[sc] = append(g.objRefs[sc],
			&Fixup{Stream: g.os, Ofs: site, Width: 4, Kind: RefObjID})
	}

	for _, pd := range props {
		site := g.os.Len()
		g.os.Write2(uint16(pd.Prop.ID))
		g.propRefs[pd.Prop] = append(g.propRefs[pd.Prop],
			&Fixup{Stream: g.os, Ofs: site, Width: 2, Kind: RefPropID})

		switch {
		case pd.Val != nil:
			g.writeConstDH(g.os, *pd.Val, nil)

		case pd.Method != nil:
			a := g.bodyAnchor(pd.Method)
			g.writeCodeOfsDH(a)

		case pd.StaticInit != nil:
			body := g.staticInitBody(od, pd)
			a := g.bodyAnchor(body)
			g.writeCodeOfsDH(a)
			g.staticInits = append(g.staticInits, &staticInit{
				obj: od.Sym, prop: pd.Prop, body: a,
			})

		default:
			g.writeConstDH(g.os, ast.NilConst, nil)
		}
	}

	g.objs = append(g.objs, &objRecord{
		sym:       od.Sym,
		metaIndex: metaIdx,
		transient: od.IsTransient,
		ofs:       ofs,
		size:      g.os.Len() - ofs,
	})
}

// writeCodeOfsDH writes a code-offset dataholder with its fixup.
func (g *Generator) writeCodeOfsDH(a *Anchor) {
	ofs := g.os.Len()
	var buf [t3.DataHolderSize]byte
	t3.Value{Type: t3.TypeCodeOfs}.PutDataHolder(buf[:])
	g.os.Write(buf[:])
	a.AddFixup(g.os, ofs+1, 4, RefCodeAddr)
}

// staticInitBody wraps a static-initializer expression in a method body
// that computes and returns the property value; the loader runs these
// right after the image is built and stores the results.
func (g *Generator) staticInitBody(od *ast.ObjDef, pd *ast.PropDef) *ast.CodeBody {
	return &ast.CodeBody{
		Name:     od.Sym.Name + "." + pd.Prop.Name,
		IsMethod: true,
		Body: &ast.Block{
			Stmts: []ast.Stmt{
				&ast.ReturnStmt{Val: pd.StaticInit},
			},
		},
	}
}
