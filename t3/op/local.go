// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	GetLcl1  = newOp(0x80, "getlcl1", 0, 1, OpdUint8)
	GetLcl2  = newOp(0x81, "getlcl2", 0, 1, OpdUint16)
	GetArg1  = newOp(0x82, "getarg1", 0, 1, OpdUint8)
	GetArg2  = newOp(0x83, "getarg2", 0, 1, OpdUint16)
	PushSelf = newOp(0x84, "pushself", 0, 1)
	GetDbLcl = newOp(0x85, "getdblcl", 0, 1, OpdUint16, OpdUint16)
	GetDbArg = newOp(0x86, "getdbarg", 0, 1, OpdUint16, OpdUint16)
	GetArgc  = newOp(0x87, "getargc", 0, 1)

	GetLclN0 = newOp(0xaa, "getlcln0", 0, 1)
	GetLclN1 = newOp(0xab, "getlcln1", 0, 1)
	GetLclN2 = newOp(0xac, "getlcln2", 0, 1)
	GetLclN3 = newOp(0xad, "getlcln3", 0, 1)
	GetLclN4 = newOp(0xae, "getlcln4", 0, 1)
	GetLclN5 = newOp(0xaf, "getlcln5", 0, 1)

	IncLcl     = newOp(0xd0, "inclcl", 0, 0, OpdUint16)
	DecLcl     = newOp(0xd1, "declcl", 0, 0, OpdUint16)
	AddILcl1   = newOp(0xd2, "addilcl1", 0, 0, OpdInt8, OpdUint8)
	AddILcl4   = newOp(0xd3, "addilcl4", 0, 0, OpdInt32, OpdUint16)
	AddToLcl   = newOp(0xd4, "addtolcl", 1, 0, OpdUint16)
	SubFromLcl = newOp(0xd5, "subfromlcl", 1, 0, OpdUint16)
	ZeroLcl1   = newOp(0xd6, "zerolcl1", 0, 0, OpdUint8)
	ZeroLcl2   = newOp(0xd7, "zerolcl2", 0, 0, OpdUint16)
	NilLcl1    = newOp(0xd8, "nillcl1", 0, 0, OpdUint8)
	NilLcl2    = newOp(0xd9, "nillcl2", 0, 0, OpdUint16)
	OneLcl1    = newOp(0xda, "onelcl1", 0, 0, OpdUint8)
	OneLcl2    = newOp(0xdb, "onelcl2", 0, 0, OpdUint16)
	SetLcl1    = newOp(0xdc, "setlcl1", 1, 0, OpdUint8)
	SetLcl2    = newOp(0xdd, "setlcl2", 1, 0, OpdUint16)
	SetArg1    = newOp(0xde, "setarg1", 1, 0, OpdUint8)
	SetArg2    = newOp(0xdf, "setarg2", 1, 0, OpdUint16)
	SetDbLcl   = newOp(0xe5, "setdblcl", 1, 0, OpdUint16, OpdUint16)
	SetDbArg   = newOp(0xe6, "setdbarg", 1, 0, OpdUint16, OpdUint16)

	SetLcl1R0    = newOp(0xea, "setlcl1r0", 0, 0, OpdUint8)
	SetIndLcl1I8 = newOp(0xeb, "setindlcl1i8", 1, 0, OpdUint8, OpdInt8)

	// GetSetLcl1R0 stores R0 into a local and leaves it pushed as well.
	GetSetLcl1R0 = newOp(0xa3, "getsetlcl1r0", 0, 1, OpdUint8)
	// GetSetLcl1 stores the value at top of stack into a local without
	// consuming it.
	GetSetLcl1 = newOp(0xa4, "getsetlcl1", 1, 1, OpdUint8)
	DupR0      = newOp(0xa5, "dupr0", 0, 2)
	GetSpn     = newOp(0xa6, "getspn", 0, 1, OpdUint8)
)
