// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

// Label is a branch target within a code stream. A label starts out
// pending: forward branches write a two-byte placeholder displacement and
// record the site here. Defining the label patches every pending site
// with pos - (site + 2), the displacement relative to the end of the
// displacement field.
type Label struct {
	stream  *ByteStream
	pos     uint32
	defined bool

	// pending holds the stream offsets of unresolved displacement
	// fields.
	pending []uint32

	// name is set for source-level labels (goto targets).
	name string
}

func newLabel(stream *ByteStream) *Label {
	return &Label{stream: stream}
}

// Defined reports whether the label's position is known.
func (l *Label) Defined() bool { return l.defined }

// Pos returns the label's stream offset; valid only once defined.
func (l *Label) Pos() uint32 { return l.pos }

// define fixes the label at the stream's current offset and patches all
// pending branch sites.
func (l *Label) define() {
	l.pos = l.stream.Len()
	l.defined = true
	for _, site := range l.pending {
		l.stream.Write2At(site, uint16(int16(int32(l.pos)-int32(site+2))))
	}
	l.pending = nil
}

// refer records a branch displacement field at the given site. If the
// label is already defined the displacement is written immediately;
// otherwise the placeholder stays and the site goes on the pending list.
func (l *Label) refer(site uint32) {
	if l.defined {
		l.stream.Write2At(site, uint16(int16(int32(l.pos)-int32(site+2))))
		return
	}
	l.pending = append(l.pending, site)
}
