// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

var (
	// Switch carries an inline case table: u16 case count, then per case
	// a 5-byte dataholder and a 2-byte branch displacement, then the
	// 2-byte default displacement. Control never falls through.
	Switch = newAbsorbing(0x90, "switch", 1, OpdInline)

	Jmp = newJump(0x91, "jmp", 0, false)

	Jt  = newJump(0x92, "jt", 1, true)
	Jf  = newJump(0x93, "jf", 1, true)
	Je  = newJump(0x94, "je", 2, true)
	Jne = newJump(0x95, "jne", 2, true)
	Jgt = newJump(0x96, "jgt", 2, true)
	Jge = newJump(0x97, "jge", 2, true)
	Jlt = newJump(0x98, "jlt", 2, true)
	Jle = newJump(0x99, "jle", 2, true)

	// Jst and Jsf jump when the top of stack is true (false) leaving the
	// value in place, and pop it when falling through.
	Jst = newJump(0x9a, "jst", 0, true)
	Jsf = newJump(0x9b, "jsf", 0, true)

	// LJsr and LRet implement local subroutines for finally blocks.
	LJsr = newJump(0x9c, "ljsr", 0, true)
	LRet = newAbsorbing(0x9d, "lret", 0, OpdUint16)

	Jnil    = newJump(0x9e, "jnil", 1, true)
	JNotNil = newJump(0x9f, "jnotnil", 1, true)
	JR0T    = newJump(0xa0, "jr0t", 0, true)
	JR0F    = newJump(0xa1, "jr0f", 0, true)
)

func init() {
	// LJsr pushes the return address for the matching LRet.
	ops[LJsr].Push = 1
}
