// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

// Local is a local variable or parameter slot within a code body. Slot
// numbers are assigned by the parser: parameters and locals occupy
// separate slot spaces.
type Local struct {
	Name string
	Num  int // stack slot (or parameter index if IsParam)

	IsParam bool

	// InCtx marks a variable captured into the body's local context;
	// CtxIdx is its element index within the context vector.
	InCtx  bool
	CtxIdx int

	// ValUsed and ValAssigned are usage flags maintained by the parser
	// for diagnostics.
	ValUsed     bool
	ValAssigned bool
}

// OptParam is an optional positional parameter with its default value
// expression (nil for a plain optional parameter, which defaults to nil).
type OptParam struct {
	Local   *Local
	Default Expr
}

// NamedParam is a named-argument parameter bound at entry via the
// t3GetNamedArg intrinsic.
type NamedParam struct {
	Local   *Local
	Name    string
	Default Expr // nil when the argument is required
}

// CapturedSlot maps an enclosing-scope context slot into a local of an
// anonymous function. At entry the generator loads the enclosing context
// object from the invokee's indexed properties (index 2..N) and stores it
// into the target local.
type CapturedSlot struct {
	InvokeeIdx int // index within the invokee object, starting at 2
	Target     *Local
}

// LocalCtx describes the body's local context vector: a heap vector
// holding the locals captured by nested anonymous functions. The parser
// pre-computes the vector size and which parameters must be copied in at
// entry.
type LocalCtx struct {
	Var  *Local // slot holding the context vector
	Size int

	// CopyParams lists parameters that are captured: each is copied from
	// its parameter slot into its context element during the prolog.
	CopyParams []*Local
}

// CodeBody is one function, method, or anonymous function body with its
// local frame.
type CodeBody struct {
	Name string // diagnostic name ("f", "obj.prop", "{anonfn}")

	Params      []*Local
	OptParams   []*OptParam
	NamedParams []*NamedParam
	VarargsList *Local // varargs-list formal, or nil
	Varargs     bool

	// Locals is every non-parameter local in the frame; LocalCount is
	// the frame slot count (slots, not len(Locals), since temporaries
	// allocated by the generator extend the frame).
	Locals     []*Local
	LocalCount int

	Body *Block

	IsMethod      bool // self is available
	IsConstructor bool
	IsAnonFn      bool

	Captured []CapturedSlot
	LocalCtx *LocalCtx

	// SrcFile and SrcLine locate the body for debug records.
	SrcFile int
	SrcLine int
}

// Sig derives the declared signature of the body.
func (b *CodeBody) Sig() FuncSig {
	return FuncSig{
		Args:    len(b.Params),
		OptArgs: len(b.OptParams),
		Varargs: b.Varargs || b.VarargsList != nil,
		HasRet:  true,
	}
}
