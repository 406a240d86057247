// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	Swap2 = newOp(0x7a, "swap2", 4, 4)
	SwapN = newOp(0x7b, "swapn", 0, 0, OpdUint8, OpdUint8)

	GetArgN0 = newOp(0x7c, "getargn0", 0, 1)
	GetArgN1 = newOp(0x7d, "getargn1", 0, 1)
	GetArgN2 = newOp(0x7e, "getargn2", 0, 1)
	GetArgN3 = newOp(0x7f, "getargn3", 0, 1)

	Dup  = newOp(0x88, "dup", 1, 2)
	Disc = newOp(0x89, "disc", 1, 0)
	// Disc1 discards the number of elements given by its operand; the
	// code generator accounts for the stack effect itself.
	Disc1    = newOp(0x8a, "disc1", 0, 0, OpdUint8)
	GetR0    = newOp(0x8b, "getr0", 0, 1)
	GetDbArgc = newOp(0x8c, "getdbargc", 0, 1)
	Swap     = newOp(0x8d, "swap", 2, 2)
	Dup2     = newOp(0x8f, "dup2", 2, 4)
)
