// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"encoding/binary"
	"fmt"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/image"
	"github.com/go-interpreter/tads3/t3"
	"golang.org/x/exp/slices"
)

// ErrorsPresentError is returned when finalization is requested after
// compilation errors; the generated streams may be ill-formed.
type ErrorsPresentError int

func (e ErrorsPresentError) Error() string {
	return fmt.Sprintf("codegen: %d errors reported, refusing to finalize", int(e))
}

// ObjectTooLargeError is returned when a single pool object cannot fit
// in one pool page.
type ObjectTooLargeError struct {
	Name string
	Size uint32
}

func (e ObjectTooLargeError) Error() string {
	return fmt.Sprintf("codegen: pool object %q (%d bytes) exceeds the pool page size", e.Name, e.Size)
}

// layoutPool assigns final pool addresses to anchors of one stream.
// Pool objects never span page boundaries: an anchor that would cross
// one is pushed to the next page and the gap padded.
func layoutPool(anchors []*Anchor, pageSize uint32) (uint32, error) {
	slices.SortStableFunc(anchors, func(a, b *Anchor) int {
		return int(int64(a.Ofs) - int64(b.Ofs))
	})
	var addr uint32
	for _, a := range anchors {
		if a.Ofs == unplacedOfs {
			return 0, UnresolvedReferenceError{Name: a.Name, Kind: RefCodeAddr}
		}
		if a.Len > pageSize {
			return 0, ObjectTooLargeError{Name: a.Name, Size: a.Len}
		}
		if fill := addr % pageSize; fill+a.Len > pageSize {
			addr += pageSize - fill
		}
		a.Resolve(t3.PoolOfs(addr))
		addr += a.Len
	}
	return addr, nil
}

// buildPages copies placed anchor regions out of the stream into pool
// pages; padding between objects stays zero.
func buildPages(anchors []*Anchor, stream *ByteStream, totalSize, pageSize uint32) [][]byte {
	if totalSize == 0 {
		return nil
	}
	nPages := (totalSize + pageSize - 1) / pageSize
	pages := make([][]byte, nPages)
	for i := range pages {
		size := pageSize
		if i == int(nPages-1) {
			size = totalSize - uint32(i)*pageSize
		}
		pages[i] = make([]byte, size)
	}
	for _, a := range anchors {
		addr := uint32(a.Addr())
		src := stream.Bytes()[a.Ofs : a.Ofs+a.Len]
		page := addr / pageSize
		copy(pages[page][addr%pageSize:], src)
	}
	return pages
}

// Finalize lays out the pools, resolves every fixup, and assembles the
// serializable program. It refuses to run once errors are reported.
func (g *Generator) Finalize() (*image.Program, error) {
	if !g.sink.OK() {
		return nil, ErrorsPresentError(g.sink.ErrorCount())
	}
	pageSize := g.cfg.PageSize

	codeSize, err := layoutPool(g.codeAnchors, pageSize)
	if err != nil {
		return nil, err
	}
	dataAnchors := g.intern.Anchors()
	constSize, err := layoutPool(dataAnchors, pageSize)
	if err != nil {
		return nil, err
	}

	// the ID namespaces resolve through their own paths: identity here,
	// renumbered when a linker merges units
	for o, fixups := range g.objRefs {
		for _, f := range fixups {
			f.Apply(uint32(o.ID))
		}
	}
	for p, fixups := range g.propRefs {
		for _, f := range fixups {
			f.Apply(uint32(p.ID))
		}
	}
	for e, fixups := range g.enumRefs {
		for _, f := range fixups {
			f.Apply(uint32(e.ID))
		}
	}

	p := &image.Program{
		Version:     t3.ImageVersion,
		ToolID:      g.cfg.ToolID,
		PageSize:    pageSize,
		XorMask:     g.cfg.XorMask,
		CodePages:   buildPages(g.codeAnchors, g.cs, codeSize, pageSize),
		ConstPages:  buildPages(dataAnchors, g.ds, constSize, pageSize),
		FuncSets:    g.funcSets.list(),
		Metaclasses: g.metaDeps(),
	}

	if fs, ok := g.unit.Syms.Find(g.cfg.EntryName).(*ast.FuncSym); ok {
		if a := g.funcAnchors[fs]; a != nil && a.Resolved() {
			p.EntryOfs = a.Addr()
		}
	}

	p.ObjGroups = g.objGroups()
	p.Symbols = g.symEntries()
	for _, a := range g.methodHeaders {
		p.MethodHeaders = append(p.MethodHeaders, a.Addr())
	}
	if g.cfg.Debug {
		p.SrcFiles = g.srcFileEntries()
		p.GlobalSyms = g.globalSymEntries()
	}
	if len(g.staticInits) > 0 {
		si := &image.StaticInitInfo{Count: uint32(len(g.staticInits))}
		si.CodeOfs = g.staticInits[0].body.Addr()
		for _, s := range g.staticInits {
			if a := s.body.Addr(); a < si.CodeOfs {
				si.CodeOfs = a
			}
		}
		p.StaticInit = si
	}
	return p, nil
}

func (g *Generator) metaDeps() []image.MetaDep {
	deps := make([]image.MetaDep, len(g.metas))
	for i, m := range g.metas {
		deps[i] = image.MetaDep{Name: m.name, Props: m.props}
	}
	return deps
}

// objGroups batches object records into OBJS groups by metaclass and
// flags, preserving emission order within each group.
func (g *Generator) objGroups() []image.ObjGroup {
	type key struct {
		meta      int
		transient bool
	}
	order := []key{}
	groups := make(map[key]*image.ObjGroup)
	for _, o := range g.objs {
		k := key{o.metaIndex, o.transient}
		grp, ok := groups[k]
		if !ok {
			grp = &image.ObjGroup{MetaIndex: o.metaIndex, Transient: o.transient}
			groups[k] = grp
			order = append(order, k)
		}
		data := g.os.Bytes()[o.ofs : o.ofs+o.size]
		if len(data) > 0xffff {
			grp.Large = true
		}
		grp.Objects = append(grp.Objects, image.ObjRecord{ID: o.sym.ID, Data: data})
	}
	out := make([]image.ObjGroup, 0, len(order))
	for _, k := range order {
		out = append(out, *groups[k])
	}
	return out
}

// symEntries builds the runtime reflection symbol table.
func (g *Generator) symEntries() []image.SymEntry {
	var syms []image.SymEntry
	for _, o := range g.unit.Syms.Objects {
		syms = append(syms, image.SymEntry{Name: o.Name, Val: t3.ObjValue(o.ID)})
	}
	for _, pr := range g.unit.Syms.Props {
		syms = append(syms, image.SymEntry{Name: pr.Name, Val: t3.PropValue(pr.ID)})
	}
	for _, f := range g.unit.Syms.Funcs {
		a := g.funcAnchors[f]
		if a == nil || !a.Resolved() {
			continue
		}
		syms = append(syms, image.SymEntry{Name: f.Name, Val: t3.FuncValue(a.Addr())})
	}
	return syms
}

// srcFileEntries converts the retained per-method line records into
// SRCF file entries with pool addresses.
func (g *Generator) srcFileEntries() []image.SrcFile {
	files := make([]image.SrcFile, len(g.unit.SourceFiles))
	for i, name := range g.unit.SourceFiles {
		files[i] = image.SrcFile{Index: i, Name: name}
	}
	for _, ml := range g.lineMaps {
		base := ml.anchor.Addr()
		for _, r := range ml.recs {
			if r.file < 0 || r.file >= len(files) {
				continue
			}
			files[r.file].Lines = append(files[r.file].Lines, image.LineMapEntry{
				Line: uint32(r.line),
				Addr: base + t3.PoolOfs(r.ofs-ml.start),
			})
		}
	}
	return files
}

// Debug global-symbol type codes.
const (
	gsymFunc = 1
	gsymObj  = 2
	gsymProp = 3
	gsymEnum = 4
)

func gsymData(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

func (g *Generator) globalSymEntries() []image.GSymEntry {
	var syms []image.GSymEntry
	for _, f := range g.unit.Syms.Funcs {
		a := g.funcAnchors[f]
		if a == nil || !a.Resolved() {
			continue
		}
		syms = append(syms, image.GSymEntry{Name: f.Name, Type: gsymFunc, Data: gsymData(uint32(a.Addr()))})
	}
	for _, o := range g.unit.Syms.Objects {
		syms = append(syms, image.GSymEntry{Name: o.Name, Type: gsymObj, Data: gsymData(uint32(o.ID))})
	}
	for _, pr := range g.unit.Syms.Props {
		syms = append(syms, image.GSymEntry{Name: pr.Name, Type: gsymProp, Data: gsymData(uint32(pr.ID))})
	}
	for _, e := range g.unit.Syms.Enums {
		syms = append(syms, image.GSymEntry{Name: e.Name, Type: gsymEnum, Data: gsymData(uint32(e.ID))})
	}
	return syms
}

// methodLines retains one method's line records for SRCF output.
type methodLines struct {
	anchor *Anchor
	start  uint32
	recs   []lineRec
}
