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

// Value is an operand of (or the result produced by) an instruction.  A value
// is either a register, whose identity is stable for the lifetime of its
// enclosing block, or a constant embedded directly in the instruction stream.
type Value interface {
	// Type returns the machine-level type of this value.
	Type() Type
	//
	fmt.Stringer
	//
	isValue()
}

// ===================================================================
// Register
// ===================================================================

// Register is a named value defined exactly once, either as a block input or
// as the result of an instruction.  Registers carry a numeric identity which
// is unique within their defining block and never changes; downstream
// consumers (e.g. the SMT encoder) rely on it as a stable name.
type Register struct {
	name string
	typ  Type
	id   uint
}

var _ Value = (*Register)(nil)

func (r *Register) isValue() {}

// Type returns the declared type of this register.
func (r *Register) Type() Type { return r.typ }

// Name returns the textual name of this register (without any sigil).
func (r *Register) Name() string { return r.name }

// Id returns the stable numeric identity of this register.
func (r *Register) Id() uint { return r.id }

func (r *Register) String() string {
	return "%" + r.name
}

// ===================================================================
// Constants
// ===================================================================

// IntConst is an integer constant of a given width.  The value is held in
// two's complement form, as signed 64 bits.
type IntConst struct {
	typ   IntType
	value int64
}

var _ Value = IntConst{}

// NewIntConst constructs a new integer constant of the given type.
func NewIntConst(typ IntType, value int64) IntConst {
	return IntConst{typ, value}
}

func (c IntConst) isValue() {}

// Type returns the integer type of this constant.
func (c IntConst) Type() Type { return c.typ }

// Value returns the (signed) value of this constant.
func (c IntConst) Value() int64 { return c.value }

func (c IntConst) String() string {
	return strconv.FormatInt(c.value, 10)
}

// FloatConst is a floating-point constant of a given precision.
type FloatConst struct {
	typ   FloatType
	value float64
}

var _ Value = FloatConst{}

// NewFloatConst constructs a new floating-point constant of the given type.
func NewFloatConst(typ FloatType, value float64) FloatConst {
	return FloatConst{typ, value}
}

func (c FloatConst) isValue() {}

// Type returns the floating-point type of this constant.
func (c FloatConst) Type() Type { return c.typ }

// Value returns the value of this constant.
func (c FloatConst) Value() float64 { return c.value }

func (c FloatConst) String() string {
	return strconv.FormatFloat(c.value, 'g', -1, 64)
}
