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
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file run the real z3 binary and are skipped when it is not
// installed.
func requireZ3(t *testing.T) {
	t.Helper()
	//
	if _, err := exec.LookPath("z3"); err != nil {
		t.Skip("z3 not found on PATH")
	}
}

func TestZ3Satisfiable(t *testing.T) {
	requireZ3(t)
	//
	session := NewSession()
	x := session.Const("x", BitVec(8))
	session.Assert(UGt(x, BVVal(250, 8)))
	//
	result, err := session.Check(NewZ3Runner(), 0)
	//
	require.NoError(t, err)
	assert.Equal(t, Sat, result)
}

func TestZ3Unsatisfiable(t *testing.T) {
	requireZ3(t)
	//
	session := NewSession()
	x := session.Const("x", BitVec(8))
	session.Assert(UGt(x, BVVal(250, 8)))
	session.Assert(ULt(x, BVVal(3, 8)))
	//
	result, err := session.Check(NewZ3Runner(), 0)
	//
	require.NoError(t, err)
	assert.Equal(t, Unsat, result)
}

func TestZ3FloatingPoint(t *testing.T) {
	requireZ3(t)
	// fp.add commutes, hence equating the two orders is valid and its
	// negation unsatisfiable.
	session := NewSession()
	//
	var (
		x = session.Const("x", Float64)
		y = session.Const("y", Float64)
	)
	//
	session.Assert(Not(Eq(Add(x, y), Add(y, x))))
	//
	result, err := session.Check(NewZ3Runner(), 0)
	//
	require.NoError(t, err)
	assert.Equal(t, Unsat, result)
}

func TestZ3UninterpretedFunction(t *testing.T) {
	requireZ3(t)
	// Congruence: equal arguments force equal results.
	session := NewSession()
	//
	var (
		f = session.Fun("f", Float64, Float64)
		x = session.Const("x", Float64)
		y = session.Const("y", Float64)
	)
	//
	session.Assert(Eq(x, y))
	session.Assert(Not(Eq(f.Apply(x), f.Apply(y))))
	//
	result, err := session.Check(NewZ3Runner(), 0)
	//
	require.NoError(t, err)
	assert.Equal(t, Unsat, result)
}
