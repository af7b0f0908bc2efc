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
package ir

import (
	"fmt"
	"strconv"
)

// Type describes the machine-level type of a value.  Only fixed-width integer
// and binary floating-point types exist at this level; instances are value
// types and, hence, directly comparable.
type Type interface {
	fmt.Stringer
	// BitWidth returns the width of this type in bits.
	BitWidth() uint
	//
	isType()
}

// IntType represents a fixed-width integer of one or more bits.  A width of
// one acts as the boolean type.
type IntType struct {
	Width uint
}

// FloatType represents an IEEE-754 binary floating-point type of either 32 or
// 64 bits.
type FloatType struct {
	Bits uint
}

// Commonly used types.
var (
	// I1 is the 1-bit (boolean) integer type.
	I1 = IntType{1}
	// I8 is the 8-bit integer type.
	I8 = IntType{8}
	// I16 is the 16-bit integer type.
	I16 = IntType{16}
	// I32 is the 32-bit integer type.
	I32 = IntType{32}
	// I64 is the 64-bit integer type.
	I64 = IntType{64}
	// F32 is the IEEE binary32 type.
	F32 = FloatType{32}
	// F64 is the IEEE binary64 type.
	F64 = FloatType{64}
)

func (t IntType) isType() {}

// BitWidth returns the width of this integer type in bits.
func (t IntType) BitWidth() uint { return t.Width }

func (t IntType) String() string {
	return fmt.Sprintf("i%d", t.Width)
}

func (t FloatType) isType() {}

// BitWidth returns the width of this floating-point type in bits.
func (t FloatType) BitWidth() uint { return t.Bits }

func (t FloatType) String() string {
	return fmt.Sprintf("f%d", t.Bits)
}

// ParseType parses a textual type name (e.g. "i32" or "f64") into a Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "i1":
		return I1, nil
	case "i8":
		return I8, nil
	case "i16":
		return I16, nil
	case "i32":
		return I32, nil
	case "i64":
		return I64, nil
	case "f32":
		return F32, nil
	case "f64":
		return F64, nil
	}
	// Arbitrary-width integers (e.g. "i24")
	if len(name) > 1 && name[0] == 'i' {
		if width, err := strconv.ParseUint(name[1:], 10, 16); err == nil && width > 0 {
			return IntType{uint(width)}, nil
		}
	}
	//
	return nil, fmt.Errorf("unknown type %q", name)
}
