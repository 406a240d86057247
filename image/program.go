// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image writes and reads T3 image files: the block-structured
// container holding code and constant pools, object static data,
// dependency tables, and debug records.
package image

import "github.com/go-interpreter/tads3/t3"

// Program is a finalized compilation ready to serialize: pool pages with
// resolved addresses, dependency tables, object data, and the optional
// symbol and debug payloads.
type Program struct {
	Version uint16
	ToolID  [4]byte

	EntryOfs t3.PoolOfs

	PageSize   uint32
	CodePages  [][]byte
	ConstPages [][]byte

	// XorMask obscures pool pages in the written file; zero writes
	// pages verbatim.
	XorMask byte

	FuncSets    []string
	Metaclasses []MetaDep

	ObjGroups []ObjGroup

	// Symbols is the runtime reflection table (SYMD), empty to omit.
	Symbols []SymEntry

	// Debug payloads, each empty to omit.
	SrcFiles   []SrcFile
	GlobalSyms []GSymEntry
	Macros     []byte

	MethodHeaders []t3.PoolOfs

	StaticInit *StaticInitInfo
}

// MetaDep is one metaclass dependency with its property vector.
type MetaDep struct {
	Name  string
	Props []t3.PropID
}

// ObjGroup is a run of objects sharing a metaclass and flags, emitted
// as one OBJS block.
type ObjGroup struct {
	MetaIndex int
	Large     bool // u32 data sizes instead of u16
	Transient bool
	Objects   []ObjRecord
}

// ObjRecord is one object's static data.
type ObjRecord struct {
	ID   t3.ObjID
	Data []byte
}

// SymEntry is one runtime reflection symbol.
type SymEntry struct {
	Name string
	Val  t3.Value
}

// SrcFile describes one source file with its line-to-code map.
type SrcFile struct {
	Index int
	Name  string
	Lines []LineMapEntry
}

// LineMapEntry maps a source line to a code pool address.
type LineMapEntry struct {
	Line uint32
	Addr t3.PoolOfs
}

// GSymEntry is one debug global-symbol record.
type GSymEntry struct {
	Name string
	Type uint16
	Data []byte
}

// StaticInitInfo locates the static initializer segment.
type StaticInitInfo struct {
	CodeOfs t3.PoolOfs
	Count   uint32
}
