// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"encoding/binary"
	"io"
	"time"

	"github.com/go-interpreter/tads3/t3"
)

// Writer produces a T3 image file. Blocks are framed with a ten-byte
// header whose size field is back-patched when the block closes; blocks
// never nest, and beginning a block implicitly ends the previous one.
type Writer struct {
	buf []byte

	// blockStart is the header offset of the open block, or -1.
	blockStart int64
}

// NewWriter returns an empty image writer.
func NewWriter() *Writer {
	return &Writer{blockStart: -1}
}

// Bytes returns the serialized image so far.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteTo writes the serialized image to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(w.buf)
	return int64(n), err
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 { return int64(len(w.buf)) }

func (w *Writer) w1(v byte)    { w.buf = append(w.buf, v) }
func (w *Writer) w2(v uint16)  { w.buf = append(w.buf, byte(v), byte(v>>8)) }
func (w *Writer) w4(v uint32)  { w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24)) }
func (w *Writer) raw(b []byte) { w.buf = append(w.buf, b...) }

func (w *Writer) patch2(ofs int64, v uint16) {
	binary.LittleEndian.PutUint16(w.buf[ofs:], v)
}

func (w *Writer) patch4(ofs int64, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[ofs:], v)
}

// Prepare writes the fixed header: signature, format version, reserved
// bytes, tool id, and the compilation timestamp. Call once before any
// block.
func (w *Writer) Prepare(vsn uint16, tool [4]byte, now time.Time) {
	w.raw([]byte(t3.Signature))
	w.w2(vsn)
	w.raw(make([]byte, 28))
	w.raw(tool[:])
	// a 24-byte asctime-style timestamp
	w.raw([]byte(now.Format("Mon Jan _2 15:04:05 2006")))
}

// BeginBlock opens a block, closing any open one.
func (w *Writer) BeginBlock(id t3.BlockID, mandatory bool) {
	w.EndBlock()
	w.blockStart = w.Pos()
	w.raw([]byte(id[:4]))
	w.w4(0) // size, patched by EndBlock
	var flags uint16
	if mandatory {
		flags |= t3.BlockFlagMandatory
	}
	w.w2(flags)
}

// EndBlock closes the open block, back-patching its data size. Without
// an open block it does nothing.
func (w *Writer) EndBlock() {
	if w.blockStart < 0 {
		return
	}
	size := w.Pos() - w.blockStart - t3.BlockHeaderSize
	w.patch4(w.blockStart+4, uint32(size))
	w.blockStart = -1
}

// WriteBytes writes raw data into the current block, chunked so no
// single write exceeds 16-bit size counters.
func (w *Writer) WriteBytes(b []byte) {
	for len(b) > 0 {
		n := len(b)
		if n > t3.MaxWriteChunk {
			n = t3.MaxWriteChunk
		}
		w.raw(b[:n])
		b = b[n:]
	}
}

// WriteEntrypoint writes a complete ENTP block.
func (w *Writer) WriteEntrypoint(entryOfs t3.PoolOfs) {
	w.BeginBlock(t3.BlockEntrypoint, true)
	w.w4(uint32(entryOfs))
	w.w2(t3.MethodHeaderSize)
	w.w2(t3.ExcEntrySize)
	w.w2(t3.DbgLineEntrySize)
	w.w2(t3.DbgTableHeaderSize)
	w.w2(t3.DbgLocalHeaderSize)
	w.w2(t3.DbgFormatVersion)
	w.w2(t3.DbgFrameHeaderSize)
	w.EndBlock()
}

// writeDepName writes one length-prefixed dependency name, truncating
// at 255 bytes.
func (w *Writer) writeDepName(name string) {
	if len(name) > 255 {
		name = name[:255]
	}
	w.w1(byte(len(name)))
	w.raw([]byte(name))
}

// WriteFuncDep writes a complete FNSD block.
func (w *Writer) WriteFuncDep(names []string) {
	w.BeginBlock(t3.BlockFuncSetDep, true)
	w.w2(uint16(len(names)))
	for _, n := range names {
		w.writeDepName(n)
	}
	w.EndBlock()
}

// WriteMetaDep writes a complete MCLD block. Each entry carries a
// next-record offset and its property vector, both back-patched as the
// entry closes.
func (w *Writer) WriteMetaDep(deps []MetaDep) {
	w.BeginBlock(t3.BlockMetaDep, true)
	w.w2(uint16(len(deps)))
	for _, d := range deps {
		ofsPos := w.Pos()
		w.w2(0) // next-record offset
		w.writeDepName(d.Name)
		w.w2(uint16(len(d.Props)))
		w.w2(2) // property record size
		for _, p := range d.Props {
			w.w2(uint16(p))
		}
		w.patch2(ofsPos, uint16(w.Pos()-ofsPos))
	}
	w.EndBlock()
}

// WritePoolDef writes a CPDF block. The returned offset can be handed
// to FixPoolDef when the page count is not yet known.
func (w *Writer) WritePoolDef(pool t3.PoolID, pageCount, pageSize uint32, mandatory bool) int64 {
	defOfs := w.Pos()
	w.BeginBlock(t3.BlockPoolDef, mandatory)
	w.w2(uint16(pool))
	w.w4(pageCount)
	w.w4(pageSize)
	w.EndBlock()
	return defOfs
}

// FixPoolDef back-patches a CPDF block's page count. The definition
// block must precede its pages in the file, so a caller that discovers
// the page count late writes a placeholder definition first and fixes
// it here.
func (w *Writer) FixPoolDef(defOfs int64, pageCount uint32) {
	w.patch4(defOfs+t3.BlockHeaderSize+2, pageCount)
}

// WritePoolPage writes one CPPG block. A non-zero mask XORs every data
// byte, cheaply obscuring the program text; mask zero writes the page
// verbatim.
func (w *Writer) WritePoolPage(pool t3.PoolID, pageIndex uint32, data []byte, mandatory bool, mask byte) {
	w.BeginBlock(t3.BlockPoolPage, mandatory)
	w.w2(uint16(pool))
	w.w4(pageIndex)
	w.w1(mask)
	if mask == 0 {
		w.WriteBytes(data)
	} else {
		masked := make([]byte, len(data))
		for i, b := range data {
			masked[i] = b ^ mask
		}
		w.WriteBytes(masked)
	}
	w.EndBlock()
}

// WriteSymbols writes a SYMD runtime reflection block.
func (w *Writer) WriteSymbols(syms []SymEntry) {
	w.BeginBlock(t3.BlockSymbols, false)
	w.w2(uint16(len(syms)))
	var dh [t3.DataHolderSize]byte
	for _, s := range syms {
		s.Val.PutDataHolder(dh[:])
		w.raw(dh[:])
		name := s.Name
		if len(name) > 255 {
			name = name[:255]
		}
		w.w1(byte(len(name)))
		w.raw([]byte(name))
	}
	w.EndBlock()
}

// WriteObjGroup writes one OBJS block.
func (w *Writer) WriteObjGroup(g ObjGroup) {
	w.BeginBlock(t3.BlockObjects, true)
	w.w2(uint16(len(g.Objects)))
	w.w2(uint16(g.MetaIndex))
	var flags uint16
	if g.Large {
		flags |= t3.ObjsFlagLarge
	}
	if g.Transient {
		flags |= t3.ObjsFlagTransient
	}
	w.w2(flags)
	for _, o := range g.Objects {
		w.w4(uint32(o.ID))
		if g.Large {
			w.w4(uint32(len(o.Data)))
		} else {
			w.w2(uint16(len(o.Data)))
		}
		w.WriteBytes(o.Data)
	}
	w.EndBlock()
}

// WriteSrcFiles writes a SRCF debug block.
func (w *Writer) WriteSrcFiles(files []SrcFile) {
	w.BeginBlock(t3.BlockSrcFiles, false)
	w.w2(uint16(len(files)))
	w.w2(8) // line record size
	for _, f := range files {
		entryPos := w.Pos()
		w.w4(0) // entry size, patched below
		w.w2(uint16(f.Index))
		w.w2(uint16(len(f.Name)))
		w.raw([]byte(f.Name))
		w.w4(uint32(len(f.Lines)))
		for _, ln := range f.Lines {
			w.w4(ln.Line)
			w.w4(uint32(ln.Addr))
		}
		w.patch4(entryPos, uint32(w.Pos()-entryPos))
	}
	w.EndBlock()
}

// WriteGlobalSyms writes a GSYM debug block.
func (w *Writer) WriteGlobalSyms(syms []GSymEntry) {
	w.BeginBlock(t3.BlockGlobalSym, false)
	w.w4(uint32(len(syms)))
	for _, s := range syms {
		w.w2(uint16(len(s.Name)))
		w.w2(uint16(len(s.Data)))
		w.w2(s.Type)
		w.raw([]byte(s.Name))
		w.raw(s.Data)
	}
	w.EndBlock()
}

// WriteMethodList writes an MHLS block of method header addresses.
func (w *Writer) WriteMethodList(addrs []t3.PoolOfs) {
	w.BeginBlock(t3.BlockMethodList, false)
	w.w4(uint32(len(addrs)))
	for _, a := range addrs {
		w.w4(uint32(a))
	}
	w.EndBlock()
}

// WriteMacros writes a MACR block with an opaque debug payload.
func (w *Writer) WriteMacros(data []byte) {
	w.BeginBlock(t3.BlockMacros, false)
	w.WriteBytes(data)
	w.EndBlock()
}

// WriteStaticInit writes an SINI block. The header size prefix lets
// later formats add fields without breaking old loaders.
func (w *Writer) WriteStaticInit(si StaticInitInfo) {
	w.BeginBlock(t3.BlockStaticInit, true)
	w.w4(12)
	w.w4(uint32(si.CodeOfs))
	w.w4(si.Count)
	w.EndBlock()
}

// Finish closes any open block and writes the EOF marker.
func (w *Writer) Finish() {
	w.EndBlock()
	w.BeginBlock(t3.BlockEOF, true)
	w.EndBlock()
}

// WriteProgram serializes a complete program image.
func (w *Writer) WriteProgram(p *Program, now time.Time) {
	w.Prepare(p.Version, p.ToolID, now)
	w.WriteEntrypoint(p.EntryOfs)
	w.WriteFuncDep(p.FuncSets)
	w.WriteMetaDep(p.Metaclasses)

	pools := []struct {
		id    t3.PoolID
		pages [][]byte
	}{
		{t3.PoolCode, p.CodePages},
		{t3.PoolConst, p.ConstPages},
	}
	for _, pool := range pools {
		w.WritePoolDef(pool.id, uint32(len(pool.pages)), p.PageSize, true)
		for i, page := range pool.pages {
			w.WritePoolPage(pool.id, uint32(i), page, true, p.XorMask)
		}
	}

	if len(p.Symbols) > 0 {
		w.WriteSymbols(p.Symbols)
	}
	for _, grp := range p.ObjGroups {
		w.WriteObjGroup(grp)
	}
	if len(p.SrcFiles) > 0 {
		w.WriteSrcFiles(p.SrcFiles)
	}
	if len(p.GlobalSyms) > 0 {
		w.WriteGlobalSyms(p.GlobalSyms)
	}
	if len(p.MethodHeaders) > 0 {
		w.WriteMethodList(p.MethodHeaders)
	}
	if len(p.Macros) > 0 {
		w.WriteMacros(p.Macros)
	}
	if p.StaticInit != nil {
		w.WriteStaticInit(*p.StaticInit)
	}
	w.Finish()
}
