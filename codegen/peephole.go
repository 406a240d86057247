// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "github.com/go-interpreter/tads3/t3/op"

// peephole is the two-instruction sliding window over the most recently
// emitted code. Emission helpers consult it to fuse adjacent instruction
// pairs into compact forms; any label definition or source-line boundary
// clears it, since control may enter there from elsewhere.
type peephole struct {
	lastOp  byte
	lastOfs uint32
	last    bool

	prevOp  byte
	prevOfs uint32
	prev    bool
}

func (p *peephole) clear() {
	p.last = false
	p.prev = false
	p.lastOp = op.Nop
	p.prevOp = op.Nop
}

// note records a newly emitted instruction starting at ofs.
func (p *peephole) note(c byte, ofs uint32) {
	p.prevOp, p.prevOfs, p.prev = p.lastOp, p.lastOfs, p.last
	p.lastOp, p.lastOfs, p.last = c, ofs, true
}

// removeLast forgets the most recent instruction after the emitter has
// truncated it from the stream.
func (p *peephole) removeLast() {
	p.lastOp, p.lastOfs, p.last = p.prevOp, p.prevOfs, p.prev
	p.prev = false
	p.prevOp = op.Nop
}

// lastIs reports whether the most recent visible instruction is c.
func (p *peephole) lastIs(c byte) bool {
	return p.last && p.lastOp == c
}
