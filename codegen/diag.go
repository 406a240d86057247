// Copyright 2019 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package codegen

import "fmt"

// Code identifies a diagnostic condition.
type Code int

const (
	// ErrInvalidLvalue: assignment target cannot be assigned.
	ErrInvalidLvalue Code = iota + 1
	// ErrInvalidUnaryLvalue: ++/-- target cannot be assigned.
	ErrInvalidUnaryLvalue
	// ErrSelfNotAvailable: implicit or explicit self outside a method.
	ErrSelfNotAvailable
	// ErrInvalidNewExpr: 'new' applied to a non-object expression.
	ErrInvalidNewExpr
	// ErrBadMetaclassForNew: constant-object 'new' on a metaclass other
	// than TadsObject.
	ErrBadMetaclassForNew
	// ErrWrongArgc: call argument count outside the declared range.
	ErrWrongArgc
	// ErrUndefinedLabel: label referenced but never defined in its body.
	ErrUndefinedLabel
	// ErrTooManyCtorArgs: more than 126 constructor arguments.
	ErrTooManyCtorArgs
	// ErrExprTooComplex: stack juggling offset exceeds 255.
	ErrExprTooComplex
	// ErrBadSpecEval: method call with arguments during speculative
	// evaluation.
	ErrBadSpecEval
	// ErrUnresolvedReference: a fixup target was still pending at
	// finalization.
	ErrUnresolvedReference
	// ErrMMInhUndefFunc: inherited<...> with no matching multi-method
	// overload.
	ErrMMInhUndefFunc
	// ErrStackMismatch: internal stack-balance failure in generated code.
	ErrStackMismatch

	// WarnConstPoolOver32K: a constant crossed the 32KB pool boundary.
	WarnConstPoolOver32K
	// WarnCodePoolOver32K: a method crossed the 32KB pool boundary.
	WarnCodePoolOver32K
	// WarnIntConstOverflow: integer literal promoted to BigNumber.
	WarnIntConstOverflow
)

var codeStrMap = map[Code]string{
	ErrInvalidLvalue:      "invalid assignment target",
	ErrInvalidUnaryLvalue: "invalid target for increment/decrement",
	ErrSelfNotAvailable:   "'self' is not available in this context",
	ErrInvalidNewExpr:     "'new' requires an object",
	ErrBadMetaclassForNew: "metaclass cannot be used with 'new'",
	ErrWrongArgc:          "wrong number of arguments",
	ErrUndefinedLabel:     "undefined label",
	ErrTooManyCtorArgs:    "too many constructor arguments",
	ErrExprTooComplex:     "expression too complex",
	ErrBadSpecEval:        "call not allowed in speculative evaluation",
	ErrUnresolvedReference: "unresolved reference",
	ErrMMInhUndefFunc:     "no matching multi-method overload for inherited<>",
	ErrStackMismatch:      "internal error: operand stack mismatch",
	WarnConstPoolOver32K:  "constant data exceeds 32KB",
	WarnCodePoolOver32K:   "method code exceeds 32KB",
	WarnIntConstOverflow:  "integer constant out of range, promoting to BigNumber",
}

func (c Code) String() string {
	str, ok := codeStrMap[c]
	if !ok {
		str = fmt.Sprintf("<unknown diagnostic %d>", int(c))
	}
	return str
}

// IsWarning reports whether the code is a warning rather than an error.
func (c Code) IsWarning() bool { return c >= WarnConstPoolOver32K }

// Diagnostic is one reported problem.
type Diagnostic struct {
	Code   Code
	Where  string // containing symbol, "obj.prop" or function name
	Detail string
}

func (d Diagnostic) Error() string {
	msg := d.Code.String()
	if d.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, d.Detail)
	}
	if d.Where != "" {
		return fmt.Sprintf("%s: %s", d.Where, msg)
	}
	return msg
}

// DiagnosticSink collects diagnostics during a compilation. Most errors
// are non-fatal so that multiple problems can be reported; phase gates
// (the jump threader, the image writer) consult the error count and
// refuse to run once it is non-zero.
type DiagnosticSink struct {
	Diags []Diagnostic

	errors   int
	warnings int
}

// Error reports an error diagnostic.
func (s *DiagnosticSink) Error(code Code, where, detail string) {
	s.Diags = append(s.Diags, Diagnostic{Code: code, Where: where, Detail: detail})
	s.errors++
	logger.Printf("error: %v", s.Diags[len(s.Diags)-1])
}

// Warn reports a warning diagnostic.
func (s *DiagnosticSink) Warn(code Code, where, detail string) {
	s.Diags = append(s.Diags, Diagnostic{Code: code, Where: where, Detail: detail})
	s.warnings++
	logger.Printf("warning: %v", s.Diags[len(s.Diags)-1])
}

// ErrorCount returns the number of errors reported so far.
func (s *DiagnosticSink) ErrorCount() int { return s.errors }

// WarningCount returns the number of warnings reported so far.
func (s *DiagnosticSink) WarningCount() int { return s.warnings }

// OK reports whether no errors have been recorded.
func (s *DiagnosticSink) OK() bool { return s.errors == 0 }
