// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ast models the parser's output: the abstract syntax tree and the
// global symbol table consumed by the code generator. The lexer,
// preprocessor, and parser themselves are external collaborators; this
// package is the boundary between them and code generation.
package ast

import (
	"fmt"

	"github.com/go-interpreter/tads3/t3"
)

// Symbol is implemented by every entry in the global symbol table.
type Symbol interface {
	SymName() string
}

// FuncSig describes a function's declared argument signature.
type FuncSig struct {
	Args    int  // fixed argument count
	OptArgs int  // optional argument count
	Varargs bool // accepts a trailing varargs list
	HasRet  bool // returns a value
}

// MinArgs and MaxArgs give the acceptable actual-argument range; MaxArgs
// is -1 for varargs functions.
func (s FuncSig) MinArgs() int { return s.Args }

func (s FuncSig) MaxArgs() int {
	if s.Varargs {
		return -1
	}
	return s.Args + s.OptArgs
}

// FuncSym is a global function.
type FuncSym struct {
	Name string
	Sig  FuncSig
	Body *CodeBody

	// Overloads holds the declared multi-method overloads, if any,
	// keyed by their declared parameter type lists.
	Overloads []*MultiMethod
}

// MultiMethod is one declared overload of a multi-method function.
type MultiMethod struct {
	Types []*ObjSym // declared parameter types; nil entry matches any
	Func  *FuncSym
}

func (s *FuncSym) SymName() string { return s.Name }

// ObjSym is a compiled object.
type ObjSym struct {
	Name string
	ID   t3.ObjID
	Def  *ObjDef
}

func (s *ObjSym) SymName() string { return s.Name }

// PropSym is a property name. The final property ID is assigned by the
// linker; the compiler-local ID is recorded here.
type PropSym struct {
	Name string
	ID   t3.PropID
}

func (s *PropSym) SymName() string { return s.Name }

// EnumSym is an enumerator constant.
type EnumSym struct {
	Name    string
	ID      t3.EnumID
	IsToken bool
}

func (s *EnumSym) SymName() string { return s.Name }

// BifSym is a built-in function provided by a function set.
type BifSym struct {
	Name     string
	SetIndex int // index into the function-set dependency table
	Index    int // index within the set
	Sig      FuncSig
}

func (s *BifSym) SymName() string { return s.Name }

// MetaSym is an imported metaclass.
type MetaSym struct {
	Name     string // external name with version suffix, "name/vvvvvv"
	DepIndex int    // index into the metaclass dependency table
	Props    []t3.PropID
}

func (s *MetaSym) SymName() string { return s.Name }

// SymbolTable is the global, name-keyed symbol table. It is read-only to
// the code generator, aside from per-symbol generator metadata kept
// outside this package.
type SymbolTable struct {
	byName map[string]Symbol

	Funcs   []*FuncSym
	Objects []*ObjSym
	Props   []*PropSym
	Enums   []*EnumSym
	Bifs    []*BifSym
	Metas   []*MetaSym
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[string]Symbol)}
}

// DuplicateSymbolError is returned when a name is defined twice.
type DuplicateSymbolError string

func (e DuplicateSymbolError) Error() string {
	return fmt.Sprintf("ast: symbol %q defined twice", string(e))
}

// Add enters a symbol into the table.
func (t *SymbolTable) Add(s Symbol) error {
	name := s.SymName()
	if _, ok := t.byName[name]; ok {
		return DuplicateSymbolError(name)
	}
	t.byName[name] = s
	switch s := s.(type) {
	case *FuncSym:
		t.Funcs = append(t.Funcs, s)
	case *ObjSym:
		t.Objects = append(t.Objects, s)
	case *PropSym:
		t.Props = append(t.Props, s)
	case *EnumSym:
		t.Enums = append(t.Enums, s)
	case *BifSym:
		t.Bifs = append(t.Bifs, s)
	case *MetaSym:
		t.Metas = append(t.Metas, s)
	}
	return nil
}

// Find looks up a symbol by name.
func (t *SymbolTable) Find(name string) Symbol { return t.byName[name] }
