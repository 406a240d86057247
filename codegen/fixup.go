// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "fmt"

// RefKind names the namespace a fixup's resolved value comes from.
// Distinct kinds take distinct resolution paths: code and constant
// addresses are pool offsets assigned at layout time, while object,
// property and enumerator IDs are renumbered by the linker.
type RefKind uint8

const (
	RefCodeAddr RefKind = iota + 1
	RefConstAddr
	RefObjID
	RefPropID
	RefEnumID
	RefBifID
)

func (k RefKind) String() string {
	switch k {
	case RefCodeAddr:
		return "code address"
	case RefConstAddr:
		return "constant address"
	case RefObjID:
		return "object id"
	case RefPropID:
		return "property id"
	case RefEnumID:
		return "enum id"
	case RefBifID:
		return "builtin id"
	}
	return "<unknown ref kind>"
}

// Fixup records one pending back-patch: the bytes at Ofs in Stream are a
// placeholder of the given width, to be replaced with the target's final
// value once it is known. Fixups live on the inbound list of their
// target Anchor or symbol record.
type Fixup struct {
	Stream *ByteStream
	Ofs    uint32
	Width  uint8 // 2 or 4
	Kind   RefKind
}

// Apply writes the resolved value into the fixup site.
func (f *Fixup) Apply(value uint32) {
	switch f.Width {
	case 2:
		f.Stream.Write2At(f.Ofs, uint16(value))
	case 4:
		f.Stream.Write4At(f.Ofs, value)
	default:
		panic(fmt.Sprintf("codegen: fixup width %d", f.Width))
	}
}

// UnresolvedReferenceError is returned at finalization when a fixup's
// target never received a final address.
type UnresolvedReferenceError struct {
	Name string
	Kind RefKind
}

func (e UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("codegen: unresolved %s reference to %q", e.Kind, e.Name)
}
