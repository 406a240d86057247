// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ast

// Expr is implemented by every expression node variant.
type Expr interface {
	exprNode()
}

// ConstKind discriminates compile-time constant values.
type ConstKind uint8

const (
	ConstNil ConstKind = iota
	ConstTrue
	ConstInt
	ConstSString // single-quoted string
	ConstList
	ConstObj
	ConstProp
	ConstEnum
	ConstFuncPtr
	ConstBigNum  // over-range integer or float literal, kept as text
	ConstRexPat  // compiled regular expression pattern source
)

// ConstVal is a compile-time constant. Exactly one payload field is
// meaningful for a given Kind.
type ConstVal struct {
	Kind ConstKind
	Int  int32
	Str  string // ConstSString, ConstBigNum, ConstRexPat
	List []ConstVal
	Obj  *ObjSym
	Prop *PropSym
	Enum *EnumSym
	Func *FuncSym
}

// IsTrue reports the boolean interpretation of the constant.
func (c ConstVal) IsTrue() bool {
	switch c.Kind {
	case ConstNil:
		return false
	case ConstInt:
		return c.Int != 0
	}
	return true
}

// NilConst, TrueConst, and the constructor helpers below keep test and
// parser fixture code readable.
var (
	NilConst  = ConstVal{Kind: ConstNil}
	TrueConst = ConstVal{Kind: ConstTrue}
)

func IntConst(v int32) ConstVal     { return ConstVal{Kind: ConstInt, Int: v} }
func StrConst(s string) ConstVal    { return ConstVal{Kind: ConstSString, Str: s} }
func ListConst(e ...ConstVal) ConstVal {
	return ConstVal{Kind: ConstList, List: e}
}

// ConstExpr is a constant-valued expression.
type ConstExpr struct {
	Val ConstVal
}

// LocalExpr references a local variable or parameter.
type LocalExpr struct {
	Var *Local
}

// ObjExpr references a compiled object by symbol.
type ObjExpr struct {
	Sym *ObjSym
}

// FuncExpr references a global function; evaluating it pushes a function
// pointer.
type FuncExpr struct {
	Sym *FuncSym
}

// BifExpr references a built-in function.
type BifExpr struct {
	Sym *BifSym
}

// PropExpr is a bare property reference, evaluated against self.
type PropExpr struct {
	Sym *PropSym
}

// SelfExpr is the self object.
type SelfExpr struct{}

// ArgcExpr is the actual argument count of the current invocation.
type ArgcExpr struct{}

// BinOp enumerates binary operators that compile to a single arithmetic
// or comparison instruction.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpAShr
	OpLShr
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// BinaryExpr applies a simple binary operator.
type BinaryExpr struct {
	Op   BinOp
	L, R Expr
}

// UnOp enumerates simple unary operators.
type UnOp uint8

const (
	OpNeg UnOp = iota
	OpBNot
	OpNot
)

// UnaryExpr applies a simple unary operator.
type UnaryExpr struct {
	Op UnOp
	X  Expr
}

// AndExpr and OrExpr are the short-circuit logical connectives.
type AndExpr struct{ L, R Expr }
type OrExpr struct{ L, R Expr }

// CondExpr is the ?: ternary.
type CondExpr struct {
	Cond, Then, Else Expr
}

// AsiKind enumerates assignment flavors handled by the two-phase
// assignment protocol.
type AsiKind uint8

const (
	AsiSimple AsiKind = iota
	AsiAdd
	AsiSub
	AsiMul
	AsiDiv
	AsiMod
	AsiBAnd
	AsiBOr
	AsiBXor
	AsiShl
	AsiAShr
	AsiLShr
	AsiPreInc
	AsiPreDec
	AsiPostInc
	AsiPostDec
	AsiIdx
)

// AssignExpr assigns Rhs to Lhs; for the inc/dec kinds Rhs is nil.
type AssignExpr struct {
	Kind AsiKind
	Lhs  Expr
	Rhs  Expr
}

// NamedArg is one named actual in a call.
type NamedArg struct {
	Name string
	Val  Expr
}

// CallExpr calls the value of Fn.
type CallExpr struct {
	Fn      Expr
	Args    []Expr
	Varargs bool // an argument expands into varargs at run time
	Named   []NamedArg
}

// MemberExpr accesses (or calls) a property of an object. A nil Obj means
// self. Prop is either a PropExpr (constant property) or an arbitrary
// expression evaluated to a property pointer.
type MemberExpr struct {
	Obj    Expr
	Prop   Expr
	IsCall bool // explicit argument list was present
	Args   []Expr
	Varargs bool
	Named  []NamedArg
}

// NewExpr instantiates an object.
type NewExpr struct {
	Base      Expr // class: ObjExpr for the constant path
	Args      []Expr
	Varargs   bool
	Named     []NamedArg
	Transient bool
}

// IndexExpr indexes a list or other indexable value.
type IndexExpr struct {
	X, Idx Expr
}

// ListExpr is a list literal; when every element is constant the parser
// folds it into a ConstExpr instead.
type ListExpr struct {
	Elems []Expr
}

// DStringPart is one segment of a double-quoted string: either literal
// text or an embedded expression.
type DStringPart struct {
	Text string
	Embed Expr // non-nil for << expr >> segments
}

// DStringExpr is a double-quoted (self-printing) string, possibly with
// embedded expressions.
type DStringExpr struct {
	Parts []DStringPart
}

// OneOfExpr is a << one of >> list. State tracks the generated state
// object that cycles the selection index via its getNextIndex method.
type OneOfExpr struct {
	Choices []Expr
	State   *ObjSym
	GetNext *PropSym
}

// AnonFnExpr is an anonymous function literal. CtxObjs lists the
// enclosing scope's context-vector locals the function captures, in
// invokee slot order (slot 2 first).
type AnonFnExpr struct {
	Body    *CodeBody
	CtxObjs []*Local
}

// InheritedExpr calls the inherited definition of a property. For
// multi-method functions Types carries the explicit <T1,T2> type list.
type InheritedExpr struct {
	Prop     *PropSym
	PropExpr Expr // non-nil for inherited.(expr)
	Super    *ObjSym
	Args     []Expr
	Varargs  bool

	MMFunc  *FuncSym  // multi-method base function
	MMTypes []*ObjSym // explicit type list
}

// DelegatedExpr delegates the current method to another object.
type DelegatedExpr struct {
	Target Expr
	Prop   *PropSym
	PropExpr Expr
	Args   []Expr
	Varargs bool
}

func (*ConstExpr) exprNode()     {}
func (*LocalExpr) exprNode()     {}
func (*ObjExpr) exprNode()       {}
func (*FuncExpr) exprNode()      {}
func (*BifExpr) exprNode()       {}
func (*PropExpr) exprNode()      {}
func (*SelfExpr) exprNode()      {}
func (*ArgcExpr) exprNode()      {}
func (*BinaryExpr) exprNode()    {}
func (*UnaryExpr) exprNode()     {}
func (*AndExpr) exprNode()       {}
func (*OrExpr) exprNode()        {}
func (*CondExpr) exprNode()      {}
func (*AssignExpr) exprNode()    {}
func (*CallExpr) exprNode()      {}
func (*MemberExpr) exprNode()    {}
func (*NewExpr) exprNode()       {}
func (*IndexExpr) exprNode()     {}
func (*ListExpr) exprNode()      {}
func (*DStringExpr) exprNode()   {}
func (*OneOfExpr) exprNode()     {}
func (*AnonFnExpr) exprNode()    {}
func (*InheritedExpr) exprNode() {}
func (*DelegatedExpr) exprNode() {}
