// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "github.com/go-interpreter/tads3/t3"

// writeDebugRecords appends the method's debug records: the source-line
// table followed by the local-variable frame table. All code offsets are
// relative to the method header. Frame records are emitted even in
// release builds when requested, so run-time reflection can name
// locals.
func (g *Generator) writeDebugRecords(m *methodState) {
	g.cs.Write2(uint16(len(m.lines)))
	for _, r := range m.lines {
		g.cs.Write2(uint16(r.ofs - m.start))
		g.cs.Write2(uint16(r.file))
		g.cs.Write4(uint32(r.line))
		g.cs.Write2(uint16(r.frame))
	}

	g.cs.Write2(uint16(len(m.frames)))
	for _, fr := range m.frames {
		if fr.end == 0 {
			fr.end = g.cs.Len()
		}
		g.cs.Write2(uint16(fr.parent))
		g.cs.Write2(uint16(len(fr.syms)))
		g.cs.Write2(uint16(fr.start - m.start))
		g.cs.Write2(uint16(fr.end - m.start))
		for _, v := range fr.syms {
			var flags uint16
			num := v.Num
			ctx := 0
			if v.InCtx {
				flags |= t3.DbgSymInCtx
				num = m.ctxVarNum()
				ctx = v.CtxIdx
			}
			if v.IsParam {
				flags |= t3.DbgSymParam
			}
			if len(v.Name) >= InternThreshold {
				flags |= t3.DbgSymPooled
			}
			g.cs.Write2(uint16(num))
			g.cs.Write2(flags)
			g.cs.Write2(uint16(ctx))
			if flags&t3.DbgSymPooled != 0 {
				a := g.intern.String(v.Name)
				site := g.cs.Len()
				g.cs.Write4(0)
				a.AddFixup(g.cs, site, 4, RefConstAddr)
			} else {
				g.cs.Write2(uint16(len(v.Name)))
				g.cs.WriteString(v.Name)
			}
		}
	}
}
