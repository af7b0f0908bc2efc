// Copyright Snipdiff Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package compare

import (
	"errors"
	"fmt"
)

// ErrorKind distinguishes the conditions which abort a resynchronization
// attempt.  Callers branch on the kind rather than on error identity.
type ErrorKind uint8

const (
	// NoSynchronizationPoint indicates the search space was exhausted
	// without finding a pair of positions at which ordinary comparison
	// could resume.
	NoSynchronizationPoint ErrorKind = iota
	// UnsupportedOperation indicates an instruction, operand or call with
	// no modeled semantics, or an internal solver failure.
	UnsupportedOperation
	// OutOfTime indicates the cumulative solving budget was exhausted.
	OutOfTime
)

func (k ErrorKind) String() string {
	switch k {
	case NoSynchronizationPoint:
		return "no synchronization point"
	case UnsupportedOperation:
		return "unsupported operation"
	case OutOfTime:
		return "out of time"
	default:
		panic("unreachable")
	}
}

// Error is the tagged error raised by resynchronization.
type Error struct {
	// Kind of failure.
	Kind ErrorKind
	// Message optionally carries the underlying diagnostic.
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	//
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

// IsKind reports whether the given error is a resynchronization Error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var cerr *Error
	//
	return errors.As(err, &cerr) && cerr.Kind == kind
}

func errNoSynchronizationPoint() *Error {
	return &Error{Kind: NoSynchronizationPoint}
}

func errUnsupported(format string, args ...any) *Error {
	return &Error{Kind: UnsupportedOperation, Message: fmt.Sprintf(format, args...)}
}

func errOutOfTime() *Error {
	return &Error{Kind: OutOfTime}
}
