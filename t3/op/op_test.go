// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package op

import "testing"

func TestRegistryConsistency(t *testing.T) {
	seen := make(map[string]byte)
	count := 0
	for c := 0; c < 256; c++ {
		o, err := New(byte(c))
		if err != nil {
			continue
		}
		count++
		if o.Code != byte(c) {
			t.Errorf("%s: code %#x registered under %#x", o.Name, o.Code, c)
		}
		if o.Name == "" {
			t.Errorf("opcode %#x has no name", c)
		}
		if prev, ok := seen[o.Name]; ok {
			t.Errorf("name %q used by %#x and %#x", o.Name, prev, c)
		}
		seen[o.Name] = byte(c)

		if fs := o.FixedSize(); fs < 0 {
			// variable-length instructions carry exactly one inline
			// operand, last
			inline := 0
			for _, opd := range o.Operands {
				if opd == OpdInline {
					inline++
				}
			}
			if inline != 1 || o.Operands[len(o.Operands)-1] != OpdInline {
				t.Errorf("%s: malformed variable operand layout", o.Name)
			}
		} else if fs < 1 {
			t.Errorf("%s: fixed size %d", o.Name, fs)
		}

		if o.Jump {
			if len(o.Operands) == 0 || o.Operands[0] != OpdBranch {
				t.Errorf("%s: jump without leading branch operand", o.Name)
			}
		}
		if o.Code == Jmp && (!o.Absorbing || o.Cond) {
			t.Error("JMP must be an absorbing unconditional jump")
		}
	}
	if count < 100 {
		t.Fatalf("only %d opcodes registered", count)
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := New(0x00)
	if err == nil {
		t.Fatal("opcode 0 must be invalid")
	}
	var inv InvalidOpcodeError
	if !errorsAs(err, &inv) {
		t.Fatalf("error type %T", err)
	}
}

func errorsAs(err error, target *InvalidOpcodeError) bool {
	e, ok := err.(InvalidOpcodeError)
	if ok {
		*target = e
	}
	return ok
}

func TestKnownEncodings(t *testing.T) {
	for _, tc := range []struct {
		code byte
		name string
		size int
	}{
		{Push1, "push_1", 1},
		{PushInt, "pushint", 5},
		{GetLcl1, "getlcl1", 2},
		{Jmp, "jmp", 3},
		{CallPropLcl1, "callproplcl1", 5},
		{SetIndLcl1I8, "setindlcl1i8", 3},
		{AddILcl4, "addilcl4", 7},
	} {
		o := Lookup(tc.code)
		if o.Name != tc.name {
			t.Errorf("%#x: name %q, want %q", tc.code, o.Name, tc.name)
		}
		if got := o.FixedSize(); got != tc.size {
			t.Errorf("%s: size %d, want %d", tc.name, got, tc.size)
		}
	}
	for _, c := range []byte{PushStrI, Switch, NamedArgTab} {
		if Lookup(c).FixedSize() != -1 {
			t.Errorf("%s must be variable-length", Lookup(c).Name)
		}
	}
}
