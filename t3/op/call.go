// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	RetVal  = newAbsorbing(0x50, "retval", 1)
	RetNil  = newAbsorbing(0x51, "retnil", 0)
	RetTrue = newAbsorbing(0x52, "rettrue", 0)
	Ret     = newAbsorbing(0x54, "ret", 0)

	// NamedArgPtr marks the preceding call as carrying named arguments;
	// the operands are the named-argument count and the method-relative
	// offset of the NamedArgTab entry describing the names.
	NamedArgPtr = newOp(0x56, "namedargptr", 0, 0, OpdUint8, OpdUint16)

	// NamedArgTab is the per-call argument-name table: a u16 byte length
	// followed by the table body. It is emitted after the method's code
	// and is never executed.
	NamedArgTab = newOp(0x57, "namedargtab", 0, 0, OpdInline)

	// Call invokes a function at a code pool offset. The argument count
	// operand is accounted separately by the code generator, as the
	// arguments are consumed by the callee.
	Call    = newOp(0x58, "call", 0, 0, OpdUint8, OpdPoolOfs)
	PtrCall = newOp(0x59, "ptrcall", 1, 0, OpdUint8)

	// Varargc modifies the following call instruction to take its
	// argument count from the stack.
	Varargc = newOp(0x76, "varargc", 1, 0)

	BuiltinA = newOp(0xb1, "builtin_a", 0, 0, OpdUint8, OpdUint8)
	BuiltinB = newOp(0xb2, "builtin_b", 0, 0, OpdUint8, OpdUint8)
	BuiltinC = newOp(0xb3, "builtin_c", 0, 0, OpdUint8, OpdUint8)
	BuiltinD = newOp(0xb4, "builtin_d", 0, 0, OpdUint8, OpdUint8)
	Builtin1 = newOp(0xb5, "builtin1", 0, 0, OpdUint8, OpdUint8, OpdUint8)
	Builtin2 = newOp(0xb6, "builtin2", 0, 0, OpdUint8, OpdUint16, OpdUint8)
)
