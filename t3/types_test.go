// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package t3

import "testing"

func TestDataHolderEncoding(t *testing.T) {
	var buf [DataHolderSize]byte

	IntValue(-2).PutDataHolder(buf[:])
	if buf[0] != byte(TypeInt) {
		t.Fatalf("type byte = %#x", buf[0])
	}
	if got := ReadDataHolder(buf[:]); got.Int != -2 {
		t.Fatalf("int round trip = %d", got.Int)
	}

	Value{Type: TypeSString, Ofs: 0x0102}.PutDataHolder(buf[:])
	if buf[1] != 0x02 || buf[2] != 0x01 {
		t.Fatalf("payload not little-endian: % x", buf[1:])
	}
	if got := ReadDataHolder(buf[:]); got.Ofs != 0x0102 {
		t.Fatalf("offset round trip = %#x", got.Ofs)
	}

	NilValue.PutDataHolder(buf[:])
	if got := ReadDataHolder(buf[:]); got.Type != TypeNil {
		t.Fatalf("nil round trip = %v", got.Type)
	}
}

func TestValueTruth(t *testing.T) {
	for _, tc := range []struct {
		v    Value
		want bool
	}{
		{NilValue, false},
		{TrueValue, true},
		{IntValue(0), false},
		{IntValue(3), true},
		{ObjValue(1), true},
	} {
		if got := tc.v.IsTrue(); got != tc.want {
			t.Errorf("IsTrue(%v) = %v, want %v", tc.v.Type, got, tc.want)
		}
	}
}
