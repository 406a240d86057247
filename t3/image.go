// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package t3

// Signature is the fixed byte sequence opening every T3 image file.
const Signature = "T3-image\r\n\x1a"

// ImageVersion is the image file format version this toolchain emits.
const ImageVersion = 1

// BlockID is the four-character type tag of an image file block.
type BlockID string

const (
	BlockEntrypoint BlockID = "ENTP"
	BlockPoolDef    BlockID = "CPDF"
	BlockPoolPage   BlockID = "CPPG"
	BlockFuncSetDep BlockID = "FNSD"
	BlockMetaDep    BlockID = "MCLD"
	BlockObjects    BlockID = "OBJS"
	BlockSymbols    BlockID = "SYMD"
	BlockSrcFiles   BlockID = "SRCF"
	BlockGlobalSym  BlockID = "GSYM"
	BlockMethodList BlockID = "MHLS"
	BlockMacros     BlockID = "MACR"
	BlockStaticInit BlockID = "SINI"
	BlockEOF        BlockID = "EOF "
)

// BlockHeaderSize is the size of a block header: 4 tag bytes, a 4-byte
// data length, and 2 flag bytes.
const BlockHeaderSize = 10

// BlockFlagMandatory marks a block the loader must understand.
const BlockFlagMandatory = 0x0001

// MethodHeaderSize is the committed size of a method header in the code
// pool. The image's entrypoint block advertises the actual size; anything
// beyond the committed fields is zero padding.
const MethodHeaderSize = 10

// MethodHeaderVarargs is OR'd into the argument-count byte of a method
// header when the method accepts a varargs list.
const MethodHeaderVarargs = 0x80

// ExcEntrySize is the size of one exception table entry: u16 start, u16
// end, u32 exception object, u16 catch offset, all method-relative.
const ExcEntrySize = 10

// Debug record layout sizes advertised in the entrypoint block.
const (
	DbgLineEntrySize   = 10 // u16 pc, u16 file, u32 line, u16 frame
	DbgTableHeaderSize = 2  // u16 line count
	DbgLocalHeaderSize = 6  // u16 var, u16 flags, u16 ctx index
	DbgFrameHeaderSize = 8  // u16 parent, u16 syms, u16 start, u16 end
	DbgFormatVersion   = 2
)

// Debug local symbol flags.
const (
	DbgSymInCtx   = 0x0001 // symbol lives in a context object slot
	DbgSymPooled  = 0x0002 // name is a constant pool offset, not inline
	DbgSymParam   = 0x0004 // symbol is a parameter
)

// OBJS block flags.
const (
	ObjsFlagLarge     = 0x0001 // object sizes are u32 rather than u16
	ObjsFlagTransient = 0x0002
)

// DefaultPageSize is the pool page size used unless configured otherwise.
const DefaultPageSize = 4096

// MaxWriteChunk bounds a single raw write; larger payloads are split so
// 16-bit size counters on legacy platforms are never exceeded.
const MaxWriteChunk = 65535
