// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import (
	"testing"

	"github.com/go-interpreter/tads3/t3"
	"github.com/go-interpreter/tads3/t3/op"
)

func TestDisassembleSteps(t *testing.T) {
	code := []byte{
		op.Push1,
		op.PushStrI, 2, 0, 'h', 'i',
		op.PushInt, 0x10, 0x00, 0x00, 0x00,
		op.Jmp, 0x02, 0x00,
		op.Nop,
		op.Nop,
		op.RetTrue,
	}
	ins, err := Disassemble(code, 100)
	if err != nil {
		t.Fatal(err)
	}
	wantPCs := []uint32{100, 101, 106, 111, 114, 115, 116}
	if len(ins) != len(wantPCs) {
		t.Fatalf("got %d instructions, want %d", len(ins), len(wantPCs))
	}
	for i, in := range ins {
		if in.PC != wantPCs[i] {
			t.Errorf("instr %d at %d, want %d", i, in.PC, wantPCs[i])
		}
	}
	if string(ins[1].Inline) != "hi" {
		t.Errorf("inline string = %q", ins[1].Inline)
	}
	if ins[2].Immediates[0] != 0x10 {
		t.Errorf("pushint operand = %d", ins[2].Immediates[0])
	}
	// JMP at pc 111: displacement 2, so target = 111 + 3 + 2
	if ins[3].Target != 116 {
		t.Errorf("jump target = %d, want 116", ins[3].Target)
	}
}

func TestDisassembleSwitchTable(t *testing.T) {
	code := []byte{op.Switch, 1, 0}
	code = append(code, make([]byte, 7)...) // one case row
	code = append(code, 0, 0)               // default displacement
	code = append(code, op.RetNil)

	ins, err := Disassemble(code, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(ins) != 2 {
		t.Fatalf("got %d instructions, want 2", len(ins))
	}
	if len(ins[0].Inline) != 7+2 {
		t.Fatalf("switch inline = %d bytes, want 9", len(ins[0].Inline))
	}
	if ins[1].Op.Code != op.RetNil {
		t.Fatalf("second instruction %s", ins[1].Op)
	}
}

func TestDisassembleTruncated(t *testing.T) {
	_, err := Disassemble([]byte{op.PushInt, 1, 2}, 0)
	if _, ok := err.(TruncatedError); !ok {
		t.Fatalf("error %T, want TruncatedError", err)
	}
}

func TestParseMethodHeader(t *testing.T) {
	b := []byte{
		2 | t3.MethodHeaderVarargs, 1,
		3, 0,
		5, 0,
		0x20, 0,
		0x30, 0,
	}
	h, err := ParseMethodHeader(b)
	if err != nil {
		t.Fatal(err)
	}
	if h.Argc != 2 || !h.Varargs || h.OptArgc != 1 {
		t.Fatalf("header = %+v", h)
	}
	if h.Locals != 3 || h.MaxStack != 5 || h.ExcRel != 0x20 || h.DbgRel != 0x30 {
		t.Fatalf("header = %+v", h)
	}
}
