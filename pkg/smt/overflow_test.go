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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddNoOverflow(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(8))
	b := session.Const("b", BitVec(8))
	//
	signed := BVAddNoOverflow(a, b, true)
	assert.Equal(t,
		"(bvsle (bvadd ((_ sign_extend 1) a) ((_ sign_extend 1) b)) ((_ sign_extend 1) (_ bv127 8)))",
		signed.String())
	//
	unsigned := BVAddNoOverflow(a, b, false)
	assert.Equal(t,
		"(= ((_ extract 8 8) (bvadd ((_ zero_extend 1) a) ((_ zero_extend 1) b))) (_ bv0 1))",
		unsigned.String())
	//
	underflow := BVAddNoUnderflow(a, b)
	assert.Equal(t,
		"(bvsge (bvadd ((_ sign_extend 1) a) ((_ sign_extend 1) b)) ((_ sign_extend 1) (_ bv128 8)))",
		underflow.String())
}

func TestSubNoWrap(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(8))
	b := session.Const("b", BitVec(8))
	//
	overflow := BVSubNoOverflow(a, b)
	assert.Equal(t,
		"(bvsle (bvsub ((_ sign_extend 1) a) ((_ sign_extend 1) b)) ((_ sign_extend 1) (_ bv127 8)))",
		overflow.String())
	//
	assert.Equal(t, "(bvule b a)", BVSubNoUnderflow(a, b, false).String())
	assert.Equal(t,
		"(bvsge (bvsub ((_ sign_extend 1) a) ((_ sign_extend 1) b)) ((_ sign_extend 1) (_ bv128 8)))",
		BVSubNoUnderflow(a, b, true).String())
}

func TestMulNoWrap(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(8))
	b := session.Const("b", BitVec(8))
	//
	unsigned := BVMulNoOverflow(a, b, false)
	assert.Equal(t,
		"(= ((_ extract 15 8) (bvmul ((_ zero_extend 8) a) ((_ zero_extend 8) b))) (_ bv0 8))",
		unsigned.String())
	//
	signed := BVMulNoOverflow(a, b, true)
	assert.Equal(t,
		"(bvsle (bvmul ((_ sign_extend 8) a) ((_ sign_extend 8) b)) ((_ sign_extend 8) (_ bv127 8)))",
		signed.String())
	//
	underflow := BVMulNoUnderflow(a, b)
	assert.Equal(t,
		"(bvsge (bvmul ((_ sign_extend 8) a) ((_ sign_extend 8) b)) ((_ sign_extend 8) (_ bv128 8)))",
		underflow.String())
}

func TestWidth64Bounds(t *testing.T) {
	session := NewSession()
	a := session.Const("a", BitVec(64))
	b := session.Const("b", BitVec(64))
	// The extreme constants must render as unsigned numerals
	signed := BVAddNoOverflow(a, b, true)
	assert.Contains(t, signed.String(), "(_ bv9223372036854775807 64)")
	underflow := BVAddNoUnderflow(a, b)
	assert.Contains(t, underflow.String(), "(_ bv9223372036854775808 64)")
}
