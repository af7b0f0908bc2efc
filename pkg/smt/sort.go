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
package smt

import (
	"fmt"
	"strconv"

	"github.com/snipdiff/go-snipdiff/pkg/util/sexp"
)

// Sort identifies an SMT sort.  Sorts are value types and directly
// comparable; the supported sorts are Bool, fixed-width bit-vectors and IEEE
// binary floating-point.
type Sort interface {
	fmt.Stringer
	// Lisp returns the S-expression denoting this sort in SMT-LIB 2 form.
	Lisp() sexp.SExp
	//
	isSort()
}

// BoolSort is the sort of the two truth values.
type BoolSort struct{}

// BitVecSort is the sort of fixed-width bit-vectors.
type BitVecSort struct {
	Width uint
}

// FloatSort is an IEEE binary floating-point sort, characterised by the
// widths of its exponent and significand (the latter including the hidden
// bit).
type FloatSort struct {
	Exponent    uint
	Significand uint
}

// Commonly used sorts.
var (
	// Bool is the boolean sort.
	Bool = BoolSort{}
	// Float32 is the IEEE binary32 sort.
	Float32 = FloatSort{8, 24}
	// Float64 is the IEEE binary64 sort.
	Float64 = FloatSort{11, 53}
)

// BitVec returns the bit-vector sort of a given width.
func BitVec(width uint) BitVecSort {
	return BitVecSort{width}
}

func (s BoolSort) isSort() {}

// Lisp returns the S-expression denoting the boolean sort.
func (s BoolSort) Lisp() sexp.SExp { return sexp.NewSymbol("Bool") }

func (s BoolSort) String() string { return "Bool" }

func (s BitVecSort) isSort() {}

// Lisp returns the S-expression denoting this bit-vector sort.
func (s BitVecSort) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("_"),
		sexp.NewSymbol("BitVec"),
		sexp.NewSymbol(strconv.FormatUint(uint64(s.Width), 10)),
	})
}

func (s BitVecSort) String() string {
	return fmt.Sprintf("(_ BitVec %d)", s.Width)
}

func (s FloatSort) isSort() {}

// Lisp returns the S-expression denoting this floating-point sort.
func (s FloatSort) Lisp() sexp.SExp {
	return sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("_"),
		sexp.NewSymbol("FloatingPoint"),
		sexp.NewSymbol(strconv.FormatUint(uint64(s.Exponent), 10)),
		sexp.NewSymbol(strconv.FormatUint(uint64(s.Significand), 10)),
	})
}

func (s FloatSort) String() string {
	return fmt.Sprintf("(_ FloatingPoint %d %d)", s.Exponent, s.Significand)
}
