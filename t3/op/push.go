// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	Push0      = newOp(0x01, "push_0", 0, 1)
	Push1      = newOp(0x02, "push_1", 0, 1)
	PushInt8   = newOp(0x03, "pushint8", 0, 1, OpdInt8)
	PushInt    = newOp(0x04, "pushint", 0, 1, OpdInt32)
	PushStr    = newOp(0x05, "pushstr", 0, 1, OpdPoolOfs)
	PushLst    = newOp(0x06, "pushlst", 0, 1, OpdPoolOfs)
	PushObj    = newOp(0x07, "pushobj", 0, 1, OpdObj)
	PushNil    = newOp(0x08, "pushnil", 0, 1)
	PushTrue   = newOp(0x09, "pushtrue", 0, 1)
	PushPropID = newOp(0x0a, "pushpropid", 0, 1, OpdProp)
	PushFnPtr  = newOp(0x0b, "pushfnptr", 0, 1, OpdPoolOfs)

	// PushStrI carries the string inline: a u16 byte length followed by
	// the UTF-8 bytes.
	PushStrI = newOp(0x0c, "pushstri", 0, 1, OpdInline)

	// PushParLst collects the actuals beyond the fixed parameters into a
	// new list; the operand is the number of fixed parameters to skip.
	PushParLst = newOp(0x0d, "pushparlst", 0, 1, OpdUint8)
	MakeLstPar = newOp(0x0e, "makelstpar", 1, 1)

	PushEnum   = newOp(0x0f, "pushenum", 0, 1, OpdEnum)
	PushBifPtr = newOp(0x10, "pushbifptr", 0, 1, OpdUint16, OpdUint16)
)
