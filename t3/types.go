// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package t3 defines the data model shared by the T3 code generator and
// image-file writer: runtime value tags, dataholder encoding, identifier
// types, and the fixed layouts of the image file.
package t3

import (
	"encoding/binary"
	"fmt"
)

// TypeID identifies the runtime type stored in a dataholder.
type TypeID uint8

const (
	TypeNil      TypeID = 1
	TypeTrue     TypeID = 2
	TypeStack    TypeID = 3
	TypeCodePtr  TypeID = 4
	TypeObj      TypeID = 5
	TypeProp     TypeID = 6
	TypeInt      TypeID = 7
	TypeSString  TypeID = 8
	TypeDString  TypeID = 9
	TypeList     TypeID = 10
	TypeCodeOfs  TypeID = 11
	TypeFuncPtr  TypeID = 12
	TypeEmpty    TypeID = 13
	TypeEnum     TypeID = 15
	TypeBifPtr   TypeID = 16
)

var typeStrMap = map[TypeID]string{
	TypeNil:     "nil",
	TypeTrue:    "true",
	TypeStack:   "stack",
	TypeCodePtr: "codeptr",
	TypeObj:     "obj",
	TypeProp:    "prop",
	TypeInt:     "int",
	TypeSString: "sstring",
	TypeDString: "dstring",
	TypeList:    "list",
	TypeCodeOfs: "codeofs",
	TypeFuncPtr: "funcptr",
	TypeEmpty:   "empty",
	TypeEnum:    "enum",
	TypeBifPtr:  "bifptr",
}

func (t TypeID) String() string {
	str, ok := typeStrMap[t]
	if !ok {
		str = fmt.Sprintf("<unknown type %d>", uint8(t))
	}
	return str
}

// ObjID is a runtime object identifier. Object IDs are assigned by the
// compiler and renumbered by the linker; zero is the invalid object.
type ObjID uint32

// PropID is a runtime property identifier. Zero is the invalid property.
type PropID uint16

// EnumID is a runtime enumerator value identifier.
type EnumID uint32

// PoolOfs is an offset into a constant or code pool.
type PoolOfs uint32

// PoolID identifies one of the image file's pools.
type PoolID uint16

const (
	PoolCode  PoolID = 1
	PoolConst PoolID = 2
)

func (p PoolID) String() string {
	switch p {
	case PoolCode:
		return "code"
	case PoolConst:
		return "constant"
	}
	return "<unknown pool>"
}

// DataHolderSize is the size of a serialized dataholder: a one-byte type
// tag followed by a four-byte little-endian payload.
const DataHolderSize = 5

// Value is a compile-time constant value that can be serialized into a
// dataholder. Exactly one payload field is meaningful for a given Type.
type Value struct {
	Type TypeID
	Int  int32
	Obj  ObjID
	Prop PropID
	Enum EnumID
	Ofs  PoolOfs
}

// NilValue and TrueValue are the payload-free constants.
var (
	NilValue  = Value{Type: TypeNil}
	TrueValue = Value{Type: TypeTrue}
)

// IntValue returns an integer constant.
func IntValue(v int32) Value { return Value{Type: TypeInt, Int: v} }

// ObjValue returns an object reference constant.
func ObjValue(id ObjID) Value { return Value{Type: TypeObj, Obj: id} }

// PropValue returns a property-id constant.
func PropValue(id PropID) Value { return Value{Type: TypeProp, Prop: id} }

// EnumValue returns an enumerator constant.
func EnumValue(id EnumID) Value { return Value{Type: TypeEnum, Enum: id} }

// FuncValue returns a function-pointer constant referring to a code pool
// offset.
func FuncValue(ofs PoolOfs) Value { return Value{Type: TypeFuncPtr, Ofs: ofs} }

// IsTrue reports the boolean interpretation of the value: nil and integer
// zero are false, everything else is true.
func (v Value) IsTrue() bool {
	switch v.Type {
	case TypeNil:
		return false
	case TypeInt:
		return v.Int != 0
	}
	return true
}

// PutDataHolder serializes the value into buf, which must be at least
// DataHolderSize bytes long.
func (v Value) PutDataHolder(buf []byte) {
	buf[0] = byte(v.Type)
	var payload uint32
	switch v.Type {
	case TypeInt:
		payload = uint32(v.Int)
	case TypeObj:
		payload = uint32(v.Obj)
	case TypeProp:
		payload = uint32(v.Prop)
	case TypeEnum:
		payload = uint32(v.Enum)
	case TypeSString, TypeDString, TypeList, TypeCodeOfs, TypeFuncPtr:
		payload = uint32(v.Ofs)
	}
	binary.LittleEndian.PutUint32(buf[1:], payload)
}

// ReadDataHolder decodes a serialized dataholder.
func ReadDataHolder(buf []byte) Value {
	v := Value{Type: TypeID(buf[0])}
	payload := binary.LittleEndian.Uint32(buf[1:])
	switch v.Type {
	case TypeInt:
		v.Int = int32(payload)
	case TypeObj:
		v.Obj = ObjID(payload)
	case TypeProp:
		v.Prop = PropID(payload)
	case TypeEnum:
		v.Enum = EnumID(payload)
	case TypeSString, TypeDString, TypeList, TypeCodeOfs, TypeFuncPtr:
		v.Ofs = PoolOfs(payload)
	}
	return v
}
