// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

// opStack simulates the runtime operand stack depth during code
// generation. It is reset at each method boundary; the peak depth feeds
// the method header's max_stack field.
//
// The model keeps two snapshots aligned with the peephole's two
// remembered instructions, so that removing a fused-away instruction
// restores both the depth and the peak exactly.
type opStack struct {
	depth int
	max   int

	underflow bool

	h1, h2 stkState
}

type stkState struct {
	depth, max int
}

func (s *opStack) reset() {
	*s = opStack{}
}

// snapshot records the state before an instruction's effect, shifting
// the older snapshot down one slot.
func (s *opStack) snapshot() {
	s.h2 = s.h1
	s.h1 = stkState{s.depth, s.max}
}

// restore rewinds to the state before the most recent instruction.
func (s *opStack) restore() {
	s.depth, s.max = s.h1.depth, s.h1.max
	s.h1 = s.h2
}

func (s *opStack) notePush(n int) {
	s.depth += n
	if s.depth > s.max {
		s.max = s.depth
	}
}

func (s *opStack) notePop(n int) {
	s.depth -= n
	if s.depth < 0 {
		// generated code can never pop below its entry depth; remember
		// the failure for the method-close diagnostic
		s.underflow = true
		s.depth = 0
	}
}

// setDepth forces the simulated depth, used when joining branch paths
// that each leave the same number of values.
func (s *opStack) setDepth(d int) {
	s.depth = d
	if d > s.max {
		s.max = d
	}
}
