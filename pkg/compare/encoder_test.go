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
	"strings"
	"testing"

	"github.com/snipdiff/go-snipdiff/pkg/smt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Encode the single instruction of a block and return the rendered assertion.
func encodeOne(t *testing.T, text string) string {
	t.Helper()
	//
	var (
		block   = parseBlock(t, text)
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	require.Equal(t, 1, block.Len())
	require.NoError(t, enc.encode(leftPrefix, block.Inst(0)))
	require.Len(t, session.Assertions(), 1)
	//
	return session.Assertions()[0].String()
}

func TestEncodeInstructions(t *testing.T) {
	tests := []struct {
		name     string
		block    string
		expected string
	}{
		{"add",
			"(input %a i32)(input %b i32)(%c add i32 %a %b)",
			"(= l!3 (bvadd l!1 l!2))"},
		{"fadd",
			"(input %x f64)(input %y f64)(%z fadd f64 %x %y)",
			"(= l!3 (fp.add RNE l!1 l!2))"},
		{"sdiv",
			"(input %a i32)(input %b i32)(%c sdiv i32 %a %b)",
			"(= l!3 (bvsdiv l!1 l!2))"},
		{"udiv exact",
			"(input %a i32)(input %b i32)(%c udiv exact i32 %a %b)",
			"(=> (= (bvurem l!1 l!2) (_ bv0 32)) (= l!3 (bvudiv l!1 l!2)))"},
		{"sdiv exact",
			"(input %a i32)(input %b i32)(%c sdiv exact i32 %a %b)",
			"(=> (= (bvsrem l!1 l!2) (_ bv0 32)) (= l!3 (bvsdiv l!1 l!2)))"},
		{"shl ignores flags",
			"(input %a i32)(input %b i32)(%c shl nsw i32 %a %b)",
			"(= l!3 (bvshl l!1 l!2))"},
		{"lshr",
			"(input %a i32)(input %b i32)(%c lshr i32 %a %b)",
			"(= l!3 (bvlshr l!1 l!2))"},
		{"xor on booleans",
			"(input %p i1)(input %q i1)(%r xor i1 %p %q)",
			"(= l!3 (xor l!1 l!2))"},
		{"and on bitvectors",
			"(input %a i8)(input %b i8)(%c and i8 %a %b)",
			"(= l!3 (bvand l!1 l!2))"},
		{"fneg",
			"(input %x f64)(%y fneg f64 %x)",
			"(= l!2 (fp.neg l!1))"},
		{"icmp ugt",
			"(input %a i32)(input %b i32)(%p icmp ugt i32 %a %b)",
			"(= l!3 (bvugt l!1 l!2))"},
		{"icmp sgt",
			"(input %a i32)(input %b i32)(%p icmp sgt i32 %a %b)",
			"(= l!3 (bvsgt l!1 l!2))"},
		{"fcmp oeq",
			"(input %x f64)(input %y f64)(%p fcmp oeq f64 %x %y)",
			"(= l!3 (and (not (fp.isNaN l!1)) (not (fp.isNaN l!2)) (= l!1 l!2)))"},
		{"fcmp ueq",
			"(input %x f64)(input %y f64)(%p fcmp ueq f64 %x %y)",
			"(= l!3 (or (fp.isNaN l!1) (fp.isNaN l!2) (= l!1 l!2)))"},
		{"fcmp olt",
			"(input %x f64)(input %y f64)(%p fcmp olt f64 %x %y)",
			"(= l!3 (and (not (fp.isNaN l!1)) (not (fp.isNaN l!2)) (fp.lt l!1 l!2)))"},
		{"fcmp true",
			"(input %x f64)(input %y f64)(%p fcmp true f64 %x %y)",
			"(= l!3 true)"},
		{"fcmp false",
			"(input %x f64)(input %y f64)(%p fcmp false f64 %x %y)",
			"(= l!3 false)"},
		{"select",
			"(input %p i1)(input %a i32)(%c select i32 %p %a 0)",
			"(= l!3 (ite l!1 l!2 (_ bv0 32)))"},
		{"zext",
			"(input %a i8)(%c zext i32 %a)",
			"(= l!2 ((_ zero_extend 24) l!1))"},
		{"sext",
			"(input %a i8)(%c sext i32 %a)",
			"(= l!2 ((_ sign_extend 24) l!1))"},
		{"trunc",
			"(input %a i32)(%c trunc i8 %a)",
			"(= l!2 ((_ extract 7 0) l!1))"},
		{"fpext",
			"(input %x f32)(%y fpext f64 %x)",
			"(= l!2 ((_ to_fp 11 53) RNE l!1))"},
		{"fptoui",
			"(input %x f64)(%a fptoui i32 %x)",
			"(= l!2 ((_ fp.to_ubv 32) RTZ l!1))"},
		{"fptosi",
			"(input %x f64)(%a fptosi i32 %x)",
			"(= l!2 ((_ fp.to_sbv 32) RTZ l!1))"},
		{"uitofp",
			"(input %a i32)(%x uitofp f64 %a)",
			"(= l!2 ((_ to_fp_unsigned 11 53) RNE l!1))"},
		{"sitofp",
			"(input %a i32)(%x sitofp f64 %a)",
			"(= l!2 ((_ to_fp 11 53) RNE l!1))"},
		{"integer literal",
			"(input %a i32)(%c add i32 %a 7)",
			"(= l!2 (bvadd l!1 (_ bv7 32)))"},
		{"negative literal",
			"(input %a i32)(%c add i32 %a -1)",
			"(= l!2 (bvadd l!1 (_ bv4294967295 32)))"},
		{"float literal",
			"(input %x f64)(%y fadd f64 %x 1.5)",
			"(= l!2 (fp.add RNE l!1 ((_ to_fp 11 53) RNE 1.5)))"},
		{"boolean literal",
			"(input %p i1)(%q and i1 %p 1)",
			"(= l!2 (and l!1 true))"},
	}
	//
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, encodeOne(t, test.block))
		})
	}
}

func TestEncodeAddNoSignedWrap(t *testing.T) {
	var (
		block   = parseBlock(t, "(input %a i8)(input %b i8)(%c add nsw i8 %a %b)")
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	require.NoError(t, enc.encode(leftPrefix, block.Inst(0)))
	// The expected formula guards the sum with the signed overflow checks.
	var (
		a       = session.Const("l!1", smt.BitVec(8))
		b       = session.Const("l!2", smt.BitVec(8))
		c       = session.Const("l!3", smt.BitVec(8))
		precond = smt.And(smt.BVAddNoOverflow(a, b, true), smt.BVAddNoUnderflow(a, b))
	)
	//
	expected := smt.Implies(precond, smt.Eq(c, smt.Add(a, b)))
	//
	require.Len(t, session.Assertions(), 1)
	assert.Equal(t, expected.String(), session.Assertions()[0].String())
}

func TestEncodeMulNoUnsignedWrap(t *testing.T) {
	var (
		block   = parseBlock(t, "(input %a i8)(input %b i8)(%c mul nuw i8 %a %b)")
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	require.NoError(t, enc.encode(leftPrefix, block.Inst(0)))
	//
	var (
		a       = session.Const("l!1", smt.BitVec(8))
		b       = session.Const("l!2", smt.BitVec(8))
		c       = session.Const("l!3", smt.BitVec(8))
		precond = smt.And(smt.BVMulNoOverflow(a, b, false), smt.BVMulNoUnderflow(a, b))
	)
	//
	expected := smt.Implies(precond, smt.Eq(c, smt.Mul(a, b)))
	//
	require.Len(t, session.Assertions(), 1)
	assert.Equal(t, expected.String(), session.Assertions()[0].String())
}

func TestEncodeFmuladd(t *testing.T) {
	text := "(input %x f64)(input %y f64)(input %z f64)(%w call fmuladd f64 %x %y %z)"
	//
	assert.Equal(t, "(= l!4 (fp.add RNE (fp.mul RNE l!1 l!2) l!3))", encodeOne(t, text))
}

func TestEncodeUninterpretedCallSharedAcrossSides(t *testing.T) {
	var (
		left    = parseBlock(t, "(input %x f64)(%y call cos f64 %x)")
		right   = parseBlock(t, "(input %x f64)(%y call cos f64 %x)")
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	require.NoError(t, enc.encode(leftPrefix, left.Inst(0)))
	require.NoError(t, enc.encode(rightPrefix, right.Inst(0)))
	//
	assert.Equal(t, "(= l!2 (cos l!1))", session.Assertions()[0].String())
	assert.Equal(t, "(= r!2 (cos r!1))", session.Assertions()[1].String())
	// Both sides apply the same function symbol, declared exactly once.
	script := session.Script(0)
	assert.Equal(t, 1, strings.Count(script, "declare-fun"))
	assert.Contains(t, script, "(declare-fun cos ((_ FloatingPoint 11 53)) (_ FloatingPoint 11 53))")
}

func TestEncodeUnsupportedCall(t *testing.T) {
	var (
		block   = parseBlock(t, "(input %x f64)(%y call frobnicate f64 %x)")
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	err := enc.encode(leftPrefix, block.Inst(0))
	//
	require.Error(t, err)
	assert.True(t, IsKind(err, UnsupportedOperation))
	assert.Empty(t, session.Assertions())
}

func TestEncodeMalformedCast(t *testing.T) {
	// A zero-extension to the same (or a narrower) width has no meaningful
	// encoding and must be rejected rather than asserted.
	var (
		block   = parseBlock(t, "(input %a i32)(%c zext i32 %a)")
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	err := enc.encode(leftPrefix, block.Inst(0))
	//
	require.Error(t, err)
	assert.True(t, IsKind(err, UnsupportedOperation))
}

func TestEncodeSkipContributesNothing(t *testing.T) {
	var (
		block   = parseBlock(t, "(skip)")
		session = smt.NewSession()
		enc     = newEncoder(session)
	)
	//
	require.NoError(t, enc.encode(leftPrefix, block.Inst(0)))
	assert.Empty(t, session.Assertions())
}
