// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

// InternThreshold is the length in bytes below which constant strings
// and serialized lists are deduplicated: each distinct byte sequence
// below the threshold gets exactly one data-stream copy, with all
// references fixed up to it.
const InternThreshold = 40

// ConstantInterner deduplicates short constants written to the data
// stream.
type ConstantInterner struct {
	ds *ByteStream

	strings map[string]*Anchor
	lists   map[string]*Anchor

	// anchors lists every distinct data-stream region, in stream order,
	// for pool layout.
	anchors []*Anchor
}

// Anchors returns every data-stream anchor in emission order.
func (in *ConstantInterner) Anchors() []*Anchor { return in.anchors }

// NewAnchor opens an unkeyed anchor at the current end of the data
// stream, for callers serializing region bytes themselves.
func (in *ConstantInterner) NewAnchor(name string) *Anchor {
	a := &Anchor{Name: name, Stream: in.ds, Ofs: in.ds.Len()}
	in.anchors = append(in.anchors, a)
	return a
}

// NewConstantInterner returns an interner writing to the given data
// stream.
func NewConstantInterner(ds *ByteStream) *ConstantInterner {
	return &ConstantInterner{
		ds:      ds,
		strings: make(map[string]*Anchor),
		lists:   make(map[string]*Anchor),
	}
}

// String returns the anchor of the data-stream copy of s, writing it on
// first use. Constant strings are serialized as a u16 byte length
// followed by the bytes.
func (in *ConstantInterner) String(s string) *Anchor {
	if len(s) < InternThreshold {
		if a, ok := in.strings[s]; ok {
			return a
		}
	}
	a := in.NewAnchor("string")
	in.ds.Write2(uint16(len(s)))
	in.ds.WriteString(s)
	a.Close()
	if len(s) < InternThreshold {
		in.strings[s] = a
	}
	return a
}

// List returns the anchor for a serialized constant list. The caller
// supplies the fully serialized body (u16 element count plus
// dataholders); lists whose serialized form contains unresolved fixups
// must pass intern=false, since two copies could resolve differently.
func (in *ConstantInterner) List(body []byte, intern bool) *Anchor {
	key := string(body)
	if intern && len(body) < InternThreshold {
		if a, ok := in.lists[key]; ok {
			return a
		}
	}
	a := in.NewAnchor("list")
	in.ds.Write(body)
	a.Close()
	if intern && len(body) < InternThreshold {
		in.lists[key] = a
	}
	return a
}
