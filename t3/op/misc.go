// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	Say    = newOp(0xb0, "say", 0, 0, OpdPoolOfs)
	Throw  = newAbsorbing(0xb8, "throw", 1)
	SayVal = newOp(0xb9, "sayval", 1, 0)

	Index       = newOp(0xba, "index", 2, 1)
	IdxLcl1Int8 = newOp(0xbb, "idxlcl1int8", 0, 1, OpdUint8, OpdInt8)
	IdxInt8     = newOp(0xbc, "idxint8", 1, 1, OpdInt8)

	SetInd = newOp(0xe0, "setind", 3, 1)

	Bp  = newOp(0xf1, "bp", 0, 0)
	Nop = newOp(0xf2, "nop", 0, 0)
)
