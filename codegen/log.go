// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import (
	"io"
	"log"
	"os"
)

var logger = log.New(io.Discard, "", log.Lshortfile)

// SetDebugMode enables or disables debug logging for code generation.
func SetDebugMode(dbg bool) {
	w := io.Discard
	if dbg {
		w = os.Stderr
	}
	logger = log.New(w, "codegen: ", log.Lshortfile)
}
