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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBinary(t *testing.T) {
	block, err := ParseBlock(`
		(input %a i32)
		(input %b i32)
		(%c add nsw i32 %a %b)
		(%d mul i32 %c 2)`)
	require.NoError(t, err)
	require.Equal(t, 2, block.Len())
	require.Len(t, block.Inputs(), 2)
	//
	add := block.Inst(0)
	assert.Equal(t, ADD, add.Opcode())
	assert.Equal(t, Flags{Nsw: true}, add.Flags())
	assert.Equal(t, "c", add.Result().Name())
	assert.Equal(t, I32, add.Result().Type())
	assert.Same(t, block.Inputs()[0], add.Operand(0))
	//
	mul := block.Inst(1)
	assert.Equal(t, MUL, mul.Opcode())
	assert.Same(t, add.Result(), mul.Operand(0))
	assert.Equal(t, NewIntConst(I32, 2), mul.Operand(1))
}

func TestParseCmp(t *testing.T) {
	block, err := ParseBlock(`
		(input %a i32)
		(%p icmp ugt i32 %a 10)`)
	require.NoError(t, err)
	//
	cmp := block.Inst(0)
	assert.Equal(t, ICMP, cmp.Opcode())
	assert.Equal(t, ICMP_UGT, cmp.Predicate())
	assert.Equal(t, I1, cmp.Result().Type())
}

func TestParseFloatCmp(t *testing.T) {
	block, err := ParseBlock(`
		(input %x f64)
		(input %y f64)
		(%q fcmp oeq f64 %x %y)
		(%r fcmp une f64 %x 0.5)`)
	require.NoError(t, err)
	//
	assert.Equal(t, FCMP_OEQ, block.Inst(0).Predicate())
	assert.Equal(t, FCMP_UNE, block.Inst(1).Predicate())
	assert.Equal(t, NewFloatConst(F64, 0.5), block.Inst(1).Operand(1))
}

func TestParseCast(t *testing.T) {
	block, err := ParseBlock(`
		(input %a i32)
		(%w zext i64 %a)
		(%n trunc i8 %a)`)
	require.NoError(t, err)
	//
	assert.Equal(t, ZEXT, block.Inst(0).Opcode())
	assert.Equal(t, I64, block.Inst(0).Result().Type())
	assert.Equal(t, I32, block.Inst(0).Operand(0).Type())
	assert.Equal(t, I8, block.Inst(1).Result().Type())
}

func TestParseCallSelectSkip(t *testing.T) {
	block, err := ParseBlock(`
		(input %x f64)
		(input %p i1)
		(skip)
		(%t call cos f64 %x)
		(%s select f64 %p %t %x)`)
	require.NoError(t, err)
	require.Equal(t, 3, block.Len())
	//
	assert.True(t, block.Inst(0).IsSkippable())
	assert.Equal(t, "cos", block.Inst(1).Callee())
	assert.Equal(t, SELECT, block.Inst(2).Opcode())
	assert.Equal(t, I1, block.Inst(2).Operand(0).Type())
}

func TestParseRegisterIdentity(t *testing.T) {
	block, err := ParseBlock(`
		(input %a i32)
		(%b add i32 %a %a)
		(%c add i32 %b %a)`)
	require.NoError(t, err)
	// Identities are unique and stable
	a := block.Inputs()[0]
	b := block.Inst(0).Result()
	c := block.Inst(1).Result()
	assert.NotEqual(t, a.Id(), b.Id())
	assert.NotEqual(t, b.Id(), c.Id())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown opcode", "(%a bogus i32 1 2)"},
		{"unknown register", "(%a add i32 %x 1)"},
		{"redefined register", "(input %a i32)\n(%a add i32 %a %a)"},
		{"redeclared input", "(input %a i32)\n(input %a i64)"},
		{"type mismatch", "(input %a i32)\n(%b add i64 %a %a)"},
		{"bad literal", "(%a add i32 one 2)"},
		{"cast of literal", "(%a zext i64 1)"},
		{"unknown predicate", "(input %a i32)\n(%p icmp oeq i32 %a %a)"},
		{"bad type", "(input %a i33x)"},
		{"not a list", "input"},
	}
	//
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBlock(tt.input)
			assert.Error(t, err)
		})
	}
}
