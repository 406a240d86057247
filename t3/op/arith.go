// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	Neg     = newOp(0x20, "neg", 1, 1)
	BNot    = newOp(0x21, "bnot", 1, 1)
	Add     = newOp(0x22, "add", 2, 1)
	Sub     = newOp(0x23, "sub", 2, 1)
	Mul     = newOp(0x24, "mul", 2, 1)
	BAnd    = newOp(0x25, "band", 2, 1)
	BOr     = newOp(0x26, "bor", 2, 1)
	Shl     = newOp(0x27, "shl", 2, 1)
	AShr    = newOp(0x28, "ashr", 2, 1)
	Xor     = newOp(0x29, "xor", 2, 1)
	Div     = newOp(0x2a, "div", 2, 1)
	Mod     = newOp(0x2b, "mod", 2, 1)
	Not     = newOp(0x2c, "not", 1, 1)
	Boolize = newOp(0x2d, "boolize", 1, 1)
	Inc     = newOp(0x2e, "inc", 1, 1)
	Dec     = newOp(0x2f, "dec", 1, 1)
	LShr    = newOp(0x30, "lshr", 2, 1)

	Eq = newOp(0x40, "eq", 2, 1)
	Ne = newOp(0x41, "ne", 2, 1)
	Lt = newOp(0x42, "lt", 2, 1)
	Le = newOp(0x43, "le", 2, 1)
	Gt = newOp(0x44, "gt", 2, 1)
	Ge = newOp(0x45, "ge", 2, 1)
)
