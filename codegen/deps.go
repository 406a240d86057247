// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "strings"

// Dependency-table names have the form "name/vvvvvv", a base name plus a
// six-digit version suffix. When the same base name is added twice the
// higher version wins, so a unit can merge requirements from several
// headers.

func baseDepName(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[:i]
	}
	return name
}

func depVersion(name string) string {
	if i := strings.IndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// maxVersionName returns whichever of the two versioned names carries
// the higher version suffix. Versions are fixed-width digit strings, so
// a plain string compare orders them.
func maxVersionName(a, b string) string {
	if depVersion(b) > depVersion(a) {
		return b
	}
	return a
}

// depTable is an ordered dependency table with version-max semantics.
type depTable struct {
	names []string
	idx   map[string]int // by base name
}

func newDepTable() *depTable {
	return &depTable{idx: make(map[string]int)}
}

// add enters a versioned name, returning its table index. Re-adding a
// base name keeps the higher of the two versions at the original index.
func (t *depTable) add(name string) int {
	base := baseDepName(name)
	if i, ok := t.idx[base]; ok {
		t.names[i] = maxVersionName(t.names[i], name)
		return i
	}
	i := len(t.names)
	t.idx[base] = i
	t.names = append(t.names, name)
	return i
}

func (t *depTable) list() []string { return t.names }
