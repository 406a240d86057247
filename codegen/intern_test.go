// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"strings"
	"testing"
)

func TestInternShortStrings(t *testing.T) {
	ds := NewByteStream(DataStream)
	in := NewConstantInterner(ds)

	a1 := in.String("hello")
	a2 := in.String("hello")
	if a1 != a2 {
		t.Fatal("short string not deduplicated")
	}
	if len(in.Anchors()) != 1 {
		t.Fatalf("anchors = %d, want 1", len(in.Anchors()))
	}

	b := in.String("world")
	if b == a1 {
		t.Fatal("distinct strings share an anchor")
	}
}

func TestInternThreshold(t *testing.T) {
	ds := NewByteStream(DataStream)
	in := NewConstantInterner(ds)

	long := strings.Repeat("x", InternThreshold)
	a1 := in.String(long)
	a2 := in.String(long)
	if a1 == a2 {
		t.Fatal("strings at the threshold must not intern")
	}
}

func TestInternLists(t *testing.T) {
	ds := NewByteStream(DataStream)
	in := NewConstantInterner(ds)

	body := []byte{2, 0, 7, 1, 0, 0, 0, 7, 2, 0, 0, 0}
	a1 := in.List(body, true)
	a2 := in.List(body, true)
	if a1 != a2 {
		t.Fatal("scalar list not deduplicated")
	}
	// lists carrying fixups must get their own copies
	b1 := in.List(body, false)
	if b1 == a1 {
		t.Fatal("non-internable list was deduplicated")
	}
}

func TestDepTableVersionMax(t *testing.T) {
	tab := newDepTable()
	i := tab.add("tads-gen/030006")
	j := tab.add("t3vm/010005")
	if i == j {
		t.Fatal("distinct names share an index")
	}
	if k := tab.add("tads-gen/030008"); k != i {
		t.Fatalf("re-add moved the entry: %d != %d", k, i)
	}
	if got := tab.list()[i]; got != "tads-gen/030008" {
		t.Fatalf("version = %q, want the higher one", got)
	}
	if k := tab.add("t3vm/010002"); k != j || tab.list()[j] != "t3vm/010005" {
		t.Fatal("lower version must not replace the entry")
	}
}
