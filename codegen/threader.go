// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "github.com/go-interpreter/tads3/t3/op"

// maxChaseHops bounds jump-chain chasing; unreachable code can contain
// branch cycles, and twenty hops is far beyond anything the generator
// produces on purpose.
const maxChaseHops = 20

// threadJumps runs jump threading over one method's byte range:
// unconditional jumps to jumps are collapsed, jumps to returns are
// replaced by the return itself, and save-and-jump conditionals landing
// on another conditional are compressed. The scan steps by decoded
// instruction length, so the inline-operand instructions are paced by
// their embedded sizes.
func threadJumps(s *ByteStream, start, end uint32) {
	for pc := start; pc < end; {
		o, err := op.New(s.ByteAt(pc))
		if err != nil {
			logger.Printf("threader: bad opcode %#x at %d", s.ByteAt(pc), pc)
			return
		}
		if o.Code == op.Jmp {
			threadUncond(s, pc)
		} else if o.Jump && o.Cond {
			threadCond(s, pc, o)
		}
		pc += uint32(instrSize(s, pc, o))
	}
}

// instrSize returns the full encoded size of the instruction at pc.
func instrSize(s *ByteStream, pc uint32, o op.Op) int {
	if n := o.FixedSize(); n > 0 {
		return n
	}
	switch o.Code {
	case op.PushStrI, op.NamedArgTab:
		return 3 + int(s.Read2At(pc+1))
	case op.Switch:
		n := int(s.Read2At(pc + 1))
		return 3 + n*7 + 2
	}
	logger.Printf("threader: unknown variable instruction %s", o)
	return 1
}

// branchTarget decodes the target of the jump at pc.
func branchTarget(s *ByteStream, pc uint32) uint32 {
	site := pc + op.BranchOperandOfs
	return uint32(int64(site) + 2 + int64(int16(s.Read2At(site))))
}

// retargetBranch points the jump at pc at target, unless the new
// displacement overflows.
func retargetBranch(s *ByteStream, pc, target uint32) {
	site := pc + op.BranchOperandOfs
	delta := int64(target) - int64(site) - 2
	if delta < -0x8000 || delta > 0x7fff {
		return
	}
	s.Write2At(site, uint16(int16(delta)))
}

// chaseJumps follows a chain of unconditional jumps from target.
func chaseJumps(s *ByteStream, target uint32) uint32 {
	for hops := 0; hops < maxChaseHops; hops++ {
		if s.ByteAt(target) != op.Jmp {
			break
		}
		target = branchTarget(s, target)
	}
	return target
}

func threadUncond(s *ByteStream, pc uint32) {
	target := chaseJumps(s, branchTarget(s, pc))
	final, err := op.New(s.ByteAt(target))
	if err == nil && final.Absorbing && !final.Jump && final.FixedSize() == 1 {
		// returns and throws are cheaper inlined than jumped to; the
		// displacement bytes become NOP filler
		s.Write1At(pc, final.Code)
		s.Write1At(pc+1, op.Nop)
		s.Write1At(pc+2, op.Nop)
		return
	}
	retargetBranch(s, pc, target)
}

func threadCond(s *ByteStream, pc uint32, o op.Op) {
	target := chaseJumps(s, branchTarget(s, pc))

	// JST/JSF landing on a plain conditional have a known combined
	// meaning: the saved operand is exactly what the target tests.
	if o.Code == op.Jst || o.Code == op.Jsf {
		tc := s.ByteAt(target)
		if tc == op.Jt || tc == op.Jf {
			jumpsWhenTrue := o.Code == op.Jst
			targetJumpsTrue := tc == op.Jt
			if jumpsWhenTrue == targetJumpsTrue {
				// same sense: go straight to the target's target
				target = branchTarget(s, target)
			} else {
				// opposite sense: the target branch falls through
				target += 3
			}
			if jumpsWhenTrue {
				s.Write1At(pc, op.Jt)
			} else {
				s.Write1At(pc, op.Jf)
			}
		}
	}

	retargetBranch(s, pc, target)
}
