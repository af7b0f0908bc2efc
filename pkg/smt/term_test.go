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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitVecLiterals(t *testing.T) {
	assert.Equal(t, "(_ bv42 32)", BVVal(42, 32).String())
	// Two's complement wrap of negative values
	assert.Equal(t, "(_ bv255 8)", BVVal(-1, 8).String())
	assert.Equal(t, "(_ bv18446744073709551615 64)", BVVal(-1, 64).String())
	assert.Equal(t, "(_ bv1 1)", BVVal(1, 1).String())
}

func TestFloatLiterals(t *testing.T) {
	assert.Equal(t, "((_ to_fp 11 53) RNE 1.5)", FPVal(Float64, 1.5).String())
	assert.Equal(t, "((_ to_fp 8 24) RNE 2.0)", FPVal(Float32, 2).String())
	assert.Equal(t, "((_ to_fp 11 53) RNE (- 0.5))", FPVal(Float64, -0.5).String())
	assert.Equal(t, "(_ NaN 11 53)", FPVal(Float64, math.NaN()).String())
	assert.Equal(t, "(_ +oo 11 53)", FPVal(Float64, math.Inf(1)).String())
	assert.Equal(t, "(_ -zero 11 53)", FPVal(Float64, math.Copysign(0, -1)).String())
}

func TestArithmeticDispatch(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(32))
	b := session.Const("b", BitVec(32))
	x := session.Const("x", Float64)
	y := session.Const("y", Float64)
	//
	assert.Equal(t, "(bvadd a b)", Add(a, b).String())
	assert.Equal(t, "(bvsdiv a b)", Div(a, b).String())
	assert.Equal(t, "(bvudiv a b)", UDiv(a, b).String())
	assert.Equal(t, "(fp.add RNE x y)", Add(x, y).String())
	assert.Equal(t, "(fp.div RNE x y)", Div(x, y).String())
	assert.Equal(t, "(fp.neg x)", Neg(x).String())
	assert.Equal(t, Bool, Sort(Eq(a, b).Sort()))
}

func TestRelationDispatch(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(8))
	b := session.Const("b", BitVec(8))
	x := session.Const("x", Float32)
	y := session.Const("y", Float32)
	//
	assert.Equal(t, "(bvsgt a b)", Gt(a, b).String())
	assert.Equal(t, "(bvugt a b)", UGt(a, b).String())
	assert.Equal(t, "(fp.gt x y)", Gt(x, y).String())
	assert.Equal(t, "(fp.isNaN x)", IsNaN(x).String())
}

func TestBitwiseDispatch(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(8))
	b := session.Const("b", BitVec(8))
	p := session.Const("p", Bool)
	q := session.Const("q", Bool)
	//
	assert.Equal(t, "(bvand a b)", BitAnd(a, b).String())
	assert.Equal(t, "(xor p q)", BitXor(p, q).String())
	assert.Equal(t, "(or p q)", BitOr(p, q).String())
}

func TestConversions(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(32))
	x := session.Const("x", Float64)
	//
	assert.Equal(t, "((_ zero_extend 32) a)", ZeroExtend(a, 32).String())
	assert.Equal(t, BitVec(64), ZeroExtend(a, 32).Sort())
	assert.Equal(t, "((_ sign_extend 8) a)", SignExtend(a, 8).String())
	assert.Equal(t, "((_ extract 7 0) a)", Extract(a, 7, 0).String())
	assert.Equal(t, BitVec(8), Extract(a, 7, 0).Sort())
	assert.Equal(t, "((_ to_fp 8 24) RNE x)", FloatToFloat(x, Float32).String())
	assert.Equal(t, "((_ fp.to_ubv 32) RTZ x)", FloatToUnsigned(x, 32).String())
	assert.Equal(t, "((_ fp.to_sbv 32) RTZ x)", FloatToSigned(x, 32).String())
	assert.Equal(t, "((_ to_fp_unsigned 11 53) RNE a)", UnsignedToFloat(a, Float64).String())
	assert.Equal(t, "((_ to_fp 11 53) RNE a)", SignedToFloat(a, Float64).String())
}

func TestIllSortedTermsPanic(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(8))
	p := session.Const("p", Bool)
	x := session.Const("x", Float64)
	//
	tests := []struct {
		name  string
		build func()
	}{
		{"add bool", func() { Add(p, p) }},
		{"mixed widths", func() { Add(a, session.Const("b", BitVec(16))) }},
		{"eq across sorts", func() { Eq(a, x) }},
		{"unsigned on float", func() { ULt(x, x) }},
		{"isnan on bv", func() { IsNaN(a) }},
		{"extract out of range", func() { Extract(a, 8, 0) }},
		{"ite branch mismatch", func() { Ite(p, a, x) }},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				err := recover()
				require.NotNil(t, err)
				_, ok := err.(*BuildError)
				assert.True(t, ok, "expected *BuildError, got %v", err)
			}()
			//
			tt.build()
		})
	}
}
