// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

import "github.com/go-interpreter/tads3/t3"

// PropDef is one property definition within an object body. Exactly one
// of Val, Method, StaticInit is set.
type PropDef struct {
	Prop *PropSym

	Val    *ConstVal // constant-valued property
	Method *CodeBody // code-valued property

	// StaticInit is an expression evaluated once at preinit/static-init
	// time; its result becomes the property value.
	StaticInit Expr
}

// ObjDef is a compiled object definition.
type ObjDef struct {
	Sym     *ObjSym
	Meta    *MetaSym // metaclass; TadsObject for ordinary objects
	Supers  []*ObjSym
	Props   []*PropDef

	IsClass     bool
	IsTransient bool
}

// Unit is one translation unit handed from the parser to the code
// generator: the symbol table plus the emission-ordered definitions.
type Unit struct {
	Syms *SymbolTable

	Funcs   []*FuncSym
	Objects []*ObjDef

	// FuncSets lists the versioned function-set dependency names, in
	// the order BifSym.SetIndex indexes them.
	FuncSets []string

	// SourceFiles lists the source descriptors for SRCF debug blocks,
	// indexed by the File field of statement positions.
	SourceFiles []string

	// NextObjID is the first object ID not yet assigned by the parser;
	// the code generator allocates from here for synthesized objects.
	NextObjID t3.ObjID
}

// AllocObjID hands out an object ID for a compiler-synthesized object.
func (u *Unit) AllocObjID() t3.ObjID {
	if u.NextObjID == 0 {
		u.NextObjID = 1
	}
	id := u.NextObjID
	u.NextObjID++
	return id
}
