// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package codegen translates a parsed, symbol-resolved TADS 3 syntax tree
// into T3 VM bytecode and the auxiliary structures of the image file:
// constant pools, object static data, dependency tables, and debug
// records.
package codegen

import (
	"fmt"

	"github.com/go-interpreter/tads3/ast"
	"github.com/go-interpreter/tads3/t3"
)

// Config controls code generation.
type Config struct {
	// PageSize is the pool page size; zero selects t3.DefaultPageSize.
	PageSize uint32

	// Debug enables source-line, frame, and global-symbol debug output.
	Debug bool

	// SpeculativeEval marks a debugger speculative evaluation: calls
	// with arguments and object creation are forbidden.
	SpeculativeEval bool

	// EntryName is the program entrypoint function; defaults to _main.
	EntryName string

	// ToolID is the four-byte tool identifier stored in the image
	// header.
	ToolID [4]byte

	// XorMask obscures pool pages in the written image; zero disables
	// masking.
	XorMask byte
}

func (c *Config) setDefaults() {
	if c.PageSize == 0 {
		c.PageSize = t3.DefaultPageSize
	}
	if c.EntryName == "" {
		c.EntryName = "_main"
	}
	if c.ToolID == ([4]byte{}) {
		copy(c.ToolID[:], "t3go")
	}
}

// Generator walks the AST of one translation unit and emits bytecode and
// object data into its streams. It is single-threaded and owns its
// streams exclusively.
type Generator struct {
	unit *ast.Unit
	sink *DiagnosticSink
	cfg  Config

	cs *ByteStream // code
	ds *ByteStream // constants
	os *ByteStream // object static data

	intern *ConstantInterner

	peep peephole
	stk  opStack

	// per-symbol generator metadata (the AST itself stays read-only)
	funcAnchors map[*ast.FuncSym]*Anchor
	bodyAnchors map[*ast.CodeBody]*Anchor
	codeAnchors []*Anchor

	// pending holds anonymous-function bodies referenced mid-method,
	// generated once the enclosing method is complete.
	pending []*ast.CodeBody

	// symbol-reference fixups by namespace, for link-time renumbering
	objRefs  map[*ast.ObjSym][]*Fixup
	propRefs map[*ast.PropSym][]*Fixup
	enumRefs map[*ast.EnumSym][]*Fixup

	// metaclass dependency table, seeded from the unit's imports and
	// extended on demand (List, Vector, BigNumber, ...)
	metas    []*metaDep
	metaIdx  map[string]int
	funcSets *depTable

	objs        []*objRecord
	staticInits []*staticInit
	lazyObjs    map[lazyKey]*ast.ObjSym

	methodHeaders []*Anchor
	lineMaps      []methodLines

	m *methodState

	warnedCode32K  bool
	warnedConst32K bool
}

type metaDep struct {
	name  string // versioned external name
	props []t3.PropID
}

type objRecord struct {
	sym       *ast.ObjSym
	metaIndex int
	transient bool
	ofs, size uint32 // region in the object stream
}

type staticInit struct {
	obj  *ast.ObjSym
	prop *ast.PropSym
	body *Anchor
}

// New returns a generator for the unit. Diagnostics go to sink.
func New(unit *ast.Unit, sink *DiagnosticSink, cfg Config) *Generator {
	cfg.setDefaults()
	g := &Generator{
		unit:        unit,
		sink:        sink,
		cfg:         cfg,
		cs:          NewByteStream(CodeStream),
		ds:          NewByteStream(DataStream),
		os:          NewByteStream(ObjectStream),
		funcAnchors: make(map[*ast.FuncSym]*Anchor),
		bodyAnchors: make(map[*ast.CodeBody]*Anchor),
		objRefs:     make(map[*ast.ObjSym][]*Fixup),
		propRefs:    make(map[*ast.PropSym][]*Fixup),
		enumRefs:    make(map[*ast.EnumSym][]*Fixup),
		metaIdx:     make(map[string]int),
		funcSets:    newDepTable(),
	}
	g.intern = NewConstantInterner(g.ds)
	for _, m := range unit.Syms.Metas {
		g.metaIdx[baseDepName(m.Name)] = len(g.metas)
		g.metas = append(g.metas, &metaDep{name: m.Name, props: m.Props})
	}
	g.peep.clear()
	return g
}

// Code returns the generator's code stream, for inspection.
func (g *Generator) Code() *ByteStream { return g.cs }

// Data returns the generator's constant data stream, for inspection.
func (g *Generator) Data() *ByteStream { return g.ds }

// funcAnchor returns the code anchor for a function, creating an
// unplaced anchor on first reference so that mutually recursive
// functions can reference each other before either is emitted.
func (g *Generator) funcAnchor(fs *ast.FuncSym) *Anchor {
	a, ok := g.funcAnchors[fs]
	if !ok {
		a = &Anchor{Name: fs.Name, Stream: g.cs}
		a.Ofs = unplacedOfs
		g.funcAnchors[fs] = a
		g.codeAnchors = append(g.codeAnchors, a)
	}
	return a
}

// unplacedOfs marks an anchor whose region has not been emitted yet.
const unplacedOfs = ^uint32(0)

// placeAnchor fixes a pre-created anchor at the current code offset.
func (g *Generator) placeAnchor(a *Anchor) {
	a.Ofs = g.cs.Len()
}

// metaIndex returns the dependency-table index of the metaclass with the
// given base name, adding a dependency on the current version if the
// unit has not imported it.
func (g *Generator) metaIndex(base, versioned string) int {
	if i, ok := g.metaIdx[base]; ok {
		return i
	}
	i := len(g.metas)
	g.metaIdx[base] = i
	g.metas = append(g.metas, &metaDep{name: versioned})
	return i
}

// Well-known metaclass names with the versions this toolchain targets.
const (
	metaTadsObject = "tads-object/030005"
	metaList       = "list/030008"
	metaVector     = "vector/030005"
	metaBigNumber  = "bignumber/030001"
	metaRexPattern = "regex-pattern/030000"
	metaAnonFnPtr  = "anon-func-ptr/000000"
	metaString     = "string/030008"
)

func (g *Generator) tadsObjectIndex() int {
	return g.metaIndex("tads-object", metaTadsObject)
}

// where returns the diagnostic location name for the current method.
func (g *Generator) where() string {
	if g.m != nil {
		return g.m.name
	}
	return ""
}

// errorf and warnf report through the sink against the current method.
func (g *Generator) errorf(code Code, format string, args ...interface{}) {
	g.sink.Error(code, g.where(), fmt.Sprintf(format, args...))
}

func (g *Generator) warnf(code Code, format string, args ...interface{}) {
	g.sink.Warn(code, g.where(), fmt.Sprintf(format, args...))
}

// bodyAnchor returns the code anchor for an anonymous function body,
// queueing the body for generation after the current method closes.
func (g *Generator) bodyAnchor(b *ast.CodeBody) *Anchor {
	a, ok := g.bodyAnchors[b]
	if !ok {
		a = &Anchor{Name: b.Name, Stream: g.cs, Ofs: unplacedOfs}
		g.bodyAnchors[b] = a
		g.codeAnchors = append(g.codeAnchors, a)
		g.pending = append(g.pending, b)
	}
	return a
}

// drainPending generates queued anonymous-function bodies, including
// ones queued while draining.
func (g *Generator) drainPending() {
	for len(g.pending) > 0 {
		b := g.pending[0]
		g.pending = g.pending[1:]
		g.genCodeBody(b, g.bodyAnchors[b])
	}
}

// Generate emits code and data for every function and object in the
// unit. Errors are reported through the sink; generation continues past
// them so that multiple problems surface in one run.
func (g *Generator) Generate() {
	for _, set := range g.unit.FuncSets {
		g.funcSets.add(set)
	}
	for _, fs := range g.unit.Funcs {
		if fs.Body == nil {
			continue
		}
		g.genCodeBody(fs.Body, g.funcAnchor(fs))
		g.drainPending()
	}
	for _, od := range g.unit.Objects {
		g.genObject(od)
		g.drainPending()
	}
}
