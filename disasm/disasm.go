// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm provides functions for disassembling T3 bytecode.
package disasm

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-interpreter/tads3/t3"
	"github.com/go-interpreter/tads3/t3/op"
)

// Instr describes an instruction: an operator with its decoded
// immediate values.
type Instr struct {
	PC uint32
	Op op.Op

	// Immediates holds one decoded value per fixed operand, in operand
	// order. Branch displacements appear as signed values.
	Immediates []int64

	// Target is the absolute branch target for jump instructions.
	Target uint32

	// Inline is the raw body of a variable-length operand.
	Inline []byte
}

func (i Instr) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%06x  %s", i.PC, i.Op.Name)
	for _, v := range i.Immediates {
		fmt.Fprintf(&b, " %d", v)
	}
	if i.Op.Jump {
		fmt.Fprintf(&b, " -> %06x", i.Target)
	}
	if i.Inline != nil {
		fmt.Fprintf(&b, " [%d bytes]", len(i.Inline))
	}
	return b.String()
}

// TruncatedError is returned when the byte stream ends inside an
// instruction.
type TruncatedError uint32

func (e TruncatedError) Error() string {
	return fmt.Sprintf("disasm: truncated instruction at offset %#x", uint32(e))
}

// Disassemble decodes a bytecode sequence. base is the pool address of
// code[0], used for instruction PCs and branch targets.
func Disassemble(code []byte, base uint32) ([]Instr, error) {
	var out []Instr
	pc := uint32(0)
	for int(pc) < len(code) {
		o, err := op.New(code[pc])
		if err != nil {
			return out, fmt.Errorf("disasm: at offset %#x: %w", base+pc, err)
		}
		ins := Instr{PC: base + pc, Op: o}
		ofs := pc + 1
		for _, opd := range o.Operands {
			size := opd.Size()
			if size < 0 {
				// inline operand: u16 length prefix, except SWITCH
				// which encodes a case count
				if int(ofs)+2 > len(code) {
					return out, TruncatedError(base + pc)
				}
				n := int(binary.LittleEndian.Uint16(code[ofs:]))
				bodyLen := n
				if o.Code == op.Switch {
					bodyLen = n*(t3.DataHolderSize+2) + 2
				}
				if int(ofs)+2+bodyLen > len(code) {
					return out, TruncatedError(base + pc)
				}
				ins.Inline = code[ofs+2 : ofs+2+uint32(bodyLen)]
				ofs += uint32(2 + bodyLen)
				continue
			}
			if int(ofs)+size > len(code) {
				return out, TruncatedError(base + pc)
			}
			var v int64
			switch opd {
			case op.OpdInt8:
				v = int64(int8(code[ofs]))
			case op.OpdUint8:
				v = int64(code[ofs])
			case op.OpdUint16, op.OpdProp:
				v = int64(binary.LittleEndian.Uint16(code[ofs:]))
			case op.OpdBranch:
				d := int16(binary.LittleEndian.Uint16(code[ofs:]))
				v = int64(d)
				ins.Target = base + ofs + 2 + uint32(int32(d))
			case op.OpdInt32:
				v = int64(int32(binary.LittleEndian.Uint32(code[ofs:])))
			case op.OpdUint32, op.OpdObj, op.OpdEnum, op.OpdPoolOfs:
				v = int64(binary.LittleEndian.Uint32(code[ofs:]))
			}
			ins.Immediates = append(ins.Immediates, v)
			ofs += uint32(size)
		}
		out = append(out, ins)
		pc = ofs
	}
	return out, nil
}

// MethodHeader is a decoded method header.
type MethodHeader struct {
	Argc     int
	Varargs  bool
	OptArgc  int
	Locals   int
	MaxStack int
	ExcRel   uint16
	DbgRel   uint16
}

// ParseMethodHeader decodes a method header from b.
func ParseMethodHeader(b []byte) (MethodHeader, error) {
	if len(b) < t3.MethodHeaderSize {
		return MethodHeader{}, TruncatedError(0)
	}
	return MethodHeader{
		Argc:     int(b[0] &^ t3.MethodHeaderVarargs),
		Varargs:  b[0]&t3.MethodHeaderVarargs != 0,
		OptArgc:  int(b[1]),
		Locals:   int(binary.LittleEndian.Uint16(b[2:])),
		MaxStack: int(binary.LittleEndian.Uint16(b[4:])),
		ExcRel:   binary.LittleEndian.Uint16(b[6:]),
		DbgRel:   binary.LittleEndian.Uint16(b[8:]),
	}, nil
}

// DisassembleMethod decodes the method whose header is at ofs within
// the code pool. end bounds the method's byte range; the exception and
// debug table offsets tighten it when present.
func DisassembleMethod(pool []byte, ofs, end uint32) (MethodHeader, []Instr, error) {
	if int(ofs) >= len(pool) {
		return MethodHeader{}, nil, TruncatedError(ofs)
	}
	hdr, err := ParseMethodHeader(pool[ofs:])
	if err != nil {
		return hdr, nil, err
	}
	codeEnd := end
	if codeEnd > uint32(len(pool)) {
		codeEnd = uint32(len(pool))
	}
	if hdr.ExcRel != 0 && ofs+uint32(hdr.ExcRel) < codeEnd {
		codeEnd = ofs + uint32(hdr.ExcRel)
	}
	if hdr.DbgRel != 0 && ofs+uint32(hdr.DbgRel) < codeEnd {
		codeEnd = ofs + uint32(hdr.DbgRel)
	}
	start := ofs + t3.MethodHeaderSize
	if start > codeEnd {
		return hdr, nil, TruncatedError(ofs)
	}
	ins, err := Disassemble(pool[start:codeEnd], start)
	return hdr, ins, err
}
