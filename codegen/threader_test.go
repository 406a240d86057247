// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"testing"

	"github.com/go-interpreter/tads3/t3/op"
)

// jmpTo appends a jump instruction targeting the absolute offset.
func jmpTo(s *ByteStream, code byte, target uint32) {
	s.Write1(code)
	site := s.Len()
	s.Write2(uint16(int16(int32(target) - int32(site+2))))
}

func TestThreadJumpToReturnInlines(t *testing.T) {
	// JMP a; JMP b; RETNIL  — the first JMP becomes RETNIL + NOP NOP
	s := NewByteStream(CodeStream)
	jmpTo(s, op.Jmp, 3) // 0: -> 3
	jmpTo(s, op.Jmp, 6) // 3: -> 6
	s.Write1(op.RetNil) // 6

	threadJumps(s, 0, s.Len())

	b := s.Bytes()
	if b[0] != op.RetNil || b[1] != op.Nop || b[2] != op.Nop {
		t.Fatalf("got % x, want RETNIL NOP NOP", b[:3])
	}
}

func TestThreadJumpChainCollapses(t *testing.T) {
	// JMP a; <pad>; a: JMP b; <pad>; b: PUSH_1
	s := NewByteStream(CodeStream)
	jmpTo(s, op.Jmp, 4)
	s.Write1(op.Nop)    // 3
	jmpTo(s, op.Jmp, 8) // 4: -> 8
	s.Write1(op.Nop)    // 7
	s.Write1(op.Push1)  // 8

	threadJumps(s, 0, s.Len())

	if got := branchTarget(s, 0); got != 8 {
		t.Fatalf("first jump target = %d, want 8", got)
	}
}

func TestThreadConditionalThroughJump(t *testing.T) {
	// JT a; <pad>; a: JMP b; b: PUSH_1
	s := NewByteStream(CodeStream)
	jmpTo(s, op.Jt, 4)
	s.Write1(op.Nop)
	jmpTo(s, op.Jmp, 8)
	s.Write1(op.Nop)
	s.Write1(op.Push1)

	threadJumps(s, 0, s.Len())

	if s.ByteAt(0) != op.Jt {
		t.Fatalf("opcode changed to %#x", s.ByteAt(0))
	}
	if got := branchTarget(s, 0); got != 8 {
		t.Fatalf("conditional target = %d, want 8", got)
	}
}

func TestThreadJstOntoConditional(t *testing.T) {
	// JST a; <pad>; a: JT b; <pad>; b: PUSH_1
	// same sense: compresses to JT b
	s := NewByteStream(CodeStream)
	jmpTo(s, op.Jst, 4)
	s.Write1(op.Nop)
	jmpTo(s, op.Jt, 9) // 4: -> 9
	s.Write1(op.Nop)   // 7
	s.Write1(op.Nop)   // 8
	s.Write1(op.Push1) // 9

	threadJumps(s, 0, s.Len())

	if s.ByteAt(0) != op.Jt {
		t.Fatalf("JST onto JT = %#x, want JT", s.ByteAt(0))
	}
	if got := branchTarget(s, 0); got != 9 {
		t.Fatalf("target = %d, want 9", got)
	}
}

func TestThreadJstOntoOppositeConditional(t *testing.T) {
	// JSF a; a: JT b — opposite sense: becomes JF (fall through the JT)
	s := NewByteStream(CodeStream)
	jmpTo(s, op.Jsf, 3)
	jmpTo(s, op.Jt, 9) // 3: -> 9
	s.Write1(op.Nop)   // 6
	s.Write1(op.Nop)
	s.Write1(op.Nop)
	s.Write1(op.Push1) // 9

	threadJumps(s, 0, s.Len())

	if s.ByteAt(0) != op.Jf {
		t.Fatalf("JSF onto JT = %#x, want JF", s.ByteAt(0))
	}
	if got := branchTarget(s, 0); got != 6 {
		t.Fatalf("target = %d, want 6 (past the JT)", got)
	}
}

func TestThreadBoundsJumpCycles(t *testing.T) {
	// a jump to itself must not hang the threader
	s := NewByteStream(CodeStream)
	jmpTo(s, op.Jmp, 0)
	threadJumps(s, 0, s.Len())
	if got := branchTarget(s, 0); got != 0 {
		t.Fatalf("self-loop target = %d, want 0", got)
	}
}

func TestThreadStepsVariableInstructions(t *testing.T) {
	// a PUSHSTRI with a jump-looking payload must be stepped over
	s := NewByteStream(CodeStream)
	s.Write1(op.PushStrI)
	s.Write2(3)
	s.Write([]byte{op.Jmp, 0xff, 0xff}) // string bytes, not code
	jmpTo(s, op.Jmp, 11)
	s.Write1(op.Nop) // 9
	s.Write1(op.Nop)
	s.Write1(op.RetNil) // 11

	threadJumps(s, 0, s.Len())

	// the payload is untouched, the real jump was rewritten
	if s.ByteAt(3) != op.Jmp || s.ByteAt(4) != 0xff {
		t.Fatal("threader rewrote string payload")
	}
	if s.ByteAt(6) != op.RetNil {
		t.Fatalf("real jump not inlined: %#x", s.ByteAt(6))
	}
}
