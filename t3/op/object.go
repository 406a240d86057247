// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

// Property evaluation and method calls leave their result in R0; the
// caller pushes it with GetR0 when a value is needed.
var (
	GetProp        = newOp(0x60, "getprop", 1, 0, OpdProp)
	CallProp       = newOp(0x61, "callprop", 1, 0, OpdUint8, OpdProp)
	PtrCallProp    = newOp(0x62, "ptrcallprop", 2, 0, OpdUint8)
	GetPropSelf    = newOp(0x63, "getpropself", 0, 0, OpdProp)
	CallPropSelf   = newOp(0x64, "callpropself", 0, 0, OpdUint8, OpdProp)
	PtrCallPropSelf = newOp(0x65, "ptrcallpropself", 1, 0, OpdUint8)
	ObjGetProp     = newOp(0x66, "objgetprop", 0, 0, OpdObj, OpdProp)
	ObjCallProp    = newOp(0x67, "objcallprop", 0, 0, OpdUint8, OpdObj, OpdProp)
	GetPropData    = newOp(0x68, "getpropdata", 1, 0, OpdProp)
	PtrGetPropData = newOp(0x69, "ptrgetpropdata", 2, 0)
	GetPropLcl1    = newOp(0x6a, "getproplcl1", 0, 0, OpdUint8, OpdProp)
	CallPropLcl1   = newOp(0x6b, "callproplcl1", 0, 0, OpdUint8, OpdUint8, OpdProp)
	GetPropR0      = newOp(0x6c, "getpropr0", 0, 0, OpdProp)
	CallPropR0     = newOp(0x6d, "callpropr0", 0, 0, OpdUint8, OpdProp)

	Inherit       = newOp(0x72, "inherit", 0, 0, OpdUint8, OpdProp)
	PtrInherit    = newOp(0x73, "ptrinherit", 1, 0, OpdUint8)
	ExpInherit    = newOp(0x74, "expinherit", 0, 0, OpdUint8, OpdProp, OpdObj)
	PtrExpInherit = newOp(0x75, "ptrexpinherit", 1, 0, OpdUint8, OpdObj)
	Delegate      = newOp(0x77, "delegate", 1, 0, OpdUint8, OpdProp)
	PtrDelegate   = newOp(0x78, "ptrdelegate", 2, 0, OpdUint8)

	New1   = newOp(0xc0, "new1", 0, 0, OpdUint8, OpdUint8)
	New2   = newOp(0xc1, "new2", 0, 0, OpdUint16, OpdUint16)
	TrNew1 = newOp(0xc2, "trnew1", 0, 0, OpdUint8, OpdUint8)
	TrNew2 = newOp(0xc3, "trnew2", 0, 0, OpdUint16, OpdUint16)

	SetProp     = newOp(0xe1, "setprop", 2, 0, OpdProp)
	PtrSetProp  = newOp(0xe2, "ptrsetprop", 3, 0)
	SetPropSelf = newOp(0xe3, "setpropself", 1, 0, OpdProp)
	ObjSetProp  = newOp(0xe4, "objsetprop", 1, 0, OpdObj, OpdProp)

	SetSelf    = newOp(0xe7, "setself", 1, 0)
	LoadCtx    = newOp(0xe8, "loadctx", 1, 0)
	StoreCtx   = newOp(0xe9, "storectx", 0, 1)
	PushCtxEle = newOp(0x8e, "pushctxele", 0, 1, OpdUint8)
)

// PushCtxEle operand values naming the method-context element to push.
const (
	CtxEleTarget  = 1 // target object
	CtxEleTargProp = 2 // target property
	CtxEleOrigTarg = 3 // original target object
	CtxEleDefiner = 4 // defining object
	CtxEleInvokee = 5 // invokee
)
