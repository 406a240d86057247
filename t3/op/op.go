// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package op declares the instruction set of the T3 virtual machine, with
// the operand layout and operand-stack effect of every opcode.
package op

import (
	"fmt"
)

// Operand describes one encoded operand of an instruction.
type Operand uint8

const (
	// OpdInt8 is a signed one-byte immediate.
	OpdInt8 Operand = iota
	// OpdUint8 is an unsigned one-byte immediate.
	OpdUint8
	// OpdUint16 is an unsigned two-byte immediate.
	OpdUint16
	// OpdInt32 is a signed four-byte immediate.
	OpdInt32
	// OpdUint32 is an unsigned four-byte immediate.
	OpdUint32
	// OpdBranch is a signed two-byte branch displacement, relative to the
	// first byte of the displacement itself.
	OpdBranch
	// OpdObj is a four-byte object ID, subject to link-time fixup.
	OpdObj
	// OpdProp is a two-byte property ID, subject to link-time fixup.
	OpdProp
	// OpdEnum is a four-byte enumerator ID, subject to link-time fixup.
	OpdEnum
	// OpdPoolOfs is a four-byte pool offset, subject to fixup.
	OpdPoolOfs
	// OpdInline is a variable-length operand carried inline in the
	// instruction stream; its length is encoded in the operand itself.
	OpdInline
)

// Size returns the encoded size of the operand in bytes, or -1 for
// variable-length operands.
func (o Operand) Size() int {
	switch o {
	case OpdInt8, OpdUint8:
		return 1
	case OpdUint16, OpdBranch, OpdProp:
		return 2
	case OpdInt32, OpdUint32, OpdObj, OpdEnum, OpdPoolOfs:
		return 4
	case OpdInline:
		return -1
	}
	panic(fmt.Sprintf("op: unknown operand kind %d", o))
}

// Op describes a T3 VM instruction.
type Op struct {
	Code byte
	Name string

	// Operands is the encoded operand layout following the opcode byte.
	Operands []Operand

	// Pop and Push describe the operand-stack effect of the instruction.
	// For calls and other argument-consuming instructions Pop covers only
	// the fixed part; the code generator accounts for arguments itself.
	Pop  int
	Push int

	// Jump is set for instructions carrying a branch displacement; Cond
	// distinguishes the conditional ones from plain JMP.
	Jump bool
	Cond bool

	// Absorbing is set for instructions after which execution never
	// continues in line: returns, THROW, and JMP.
	Absorbing bool
}

// Valid reports whether the op is a defined instruction.
func (o Op) Valid() bool { return o.Name != "" }

// FixedSize returns the full encoded instruction size including the opcode
// byte, or -1 if the instruction is variable-length.
func (o Op) FixedSize() int {
	n := 1
	for _, opd := range o.Operands {
		s := opd.Size()
		if s < 0 {
			return -1
		}
		n += s
	}
	return n
}

func (o Op) String() string { return o.Name }

var ops [256]Op

// InvalidOpcodeError is returned when an opcode byte does not name a T3
// instruction.
type InvalidOpcodeError byte

func (e InvalidOpcodeError) Error() string {
	return fmt.Sprintf("op: invalid opcode %#x", byte(e))
}

// New returns the instruction for the given opcode byte.
func New(code byte) (Op, error) {
	o := ops[code]
	if !o.Valid() {
		return o, InvalidOpcodeError(code)
	}
	return o, nil
}

// Lookup is like New but panics on an invalid opcode. It is intended for
// static opcode constants.
func Lookup(code byte) Op {
	o, err := New(code)
	if err != nil {
		panic(err)
	}
	return o
}

func newOp(code byte, name string, pop, push int, operands ...Operand) byte {
	if ops[code].Valid() {
		panic(fmt.Sprintf("op: opcode %#x (%s) already registered as %s",
			code, name, ops[code].Name))
	}
	ops[code] = Op{
		Code:     code,
		Name:     name,
		Operands: operands,
		Pop:      pop,
		Push:     push,
	}
	return code
}

func newJump(code byte, name string, pop int, cond bool) byte {
	newOp(code, name, pop, 0, OpdBranch)
	o := &ops[code]
	o.Jump = true
	o.Cond = cond
	o.Absorbing = !cond
	return code
}

func newAbsorbing(code byte, name string, pop int, operands ...Operand) byte {
	newOp(code, name, pop, 0, operands...)
	ops[code].Absorbing = true
	return code
}

// BranchOperandOfs is the offset of the branch displacement within an
// encoded jump instruction (always immediately after the opcode byte).
const BranchOperandOfs = 1
