// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "github.com/go-interpreter/tads3/t3"

// Anchor owns a region of a stream — a serialized method body, string,
// list, or other pool object — together with the inbound fixups that
// reference it. Its final pool address is assigned during layout; until
// then references emit placeholders onto the fixup list.
type Anchor struct {
	Name   string // diagnostic name
	Stream *ByteStream
	Ofs    uint32 // start offset within Stream
	Len    uint32 // computed once the region is fully emitted

	fixups []*Fixup

	addr     t3.PoolOfs
	resolved bool
}

// Close fixes the anchor's length from the stream's current position.
func (a *Anchor) Close() {
	a.Len = a.Stream.Len() - a.Ofs
}

// AddFixup registers an inbound reference to this anchor. The placeholder
// must already have been written at (stream, ofs).
func (a *Anchor) AddFixup(stream *ByteStream, ofs uint32, width uint8, kind RefKind) {
	a.fixups = append(a.fixups, &Fixup{Stream: stream, Ofs: ofs, Width: width, Kind: kind})
}

// Resolve assigns the final pool address and patches every inbound
// reference.
func (a *Anchor) Resolve(addr t3.PoolOfs) {
	a.addr = addr
	a.resolved = true
	for _, f := range a.fixups {
		f.Apply(uint32(addr))
	}
}

// Addr returns the final pool address; valid only after Resolve.
func (a *Anchor) Addr() t3.PoolOfs { return a.addr }

// Resolved reports whether layout has assigned the final address.
func (a *Anchor) Resolved() bool { return a.resolved }

// FixupCount returns the number of inbound references.
func (a *Anchor) FixupCount() int { return len(a.fixups) }
