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
	"github.com/snipdiff/go-snipdiff/pkg/ir"
)

// StructuralComparer constructs a deep-comparison callback which deems two
// instructions equal when they have the same shape (opcode, predicate, flags,
// callee, result type) and their operands correspond under the given matching
// state.  Corresponding operands which are both unmatched registers of the
// same type are matched on the fly, as are the result registers of an equal
// pair; the caller is responsible for snapshotting the state around
// speculative probes.
func StructuralComparer(state *MatchingState) CompareFunc {
	return func(left ir.Cursor, right ir.Cursor, _ bool, _ bool) Result {
		if left.AtEnd() || right.AtEnd() {
			return NotEqual
		}
		//
		if structuralEq(state, left.Inst(), right.Inst()) {
			return Equal
		}
		//
		return NotEqual
	}
}

// structuralEq implements the instruction-level comparison, recording operand
// and result matches in the given state as it goes.  Matches recorded before
// a failure are deliberately not rolled back here; that is the caller's
// transaction to manage.
func structuralEq(state *MatchingState, left *ir.Instruction, right *ir.Instruction) bool {
	if left.Opcode() != right.Opcode() || left.Predicate() != right.Predicate() {
		return false
	}
	//
	if left.Flags() != right.Flags() || left.Callee() != right.Callee() {
		return false
	}
	//
	opsL, opsR := left.Operands(), right.Operands()
	if len(opsL) != len(opsR) {
		return false
	}
	//
	for i := range opsL {
		if !matchOperand(state, opsL[i], opsR[i]) {
			return false
		}
	}
	//
	resL, resR := left.Result(), right.Result()
	//
	switch {
	case resL == nil && resR == nil:
		return true
	case resL == nil || resR == nil:
		return false
	case resL.Type() != resR.Type():
		return false
	}
	// Equal instructions define equal values.
	matchRegisters(state, resL, resR)
	//
	return true
}

// matchOperand determines whether two corresponding operands agree: constants
// by type and value, registers by their recorded serial numbers.  A pair of
// registers of equal type neither of which is matched yet is matched here.
func matchOperand(state *MatchingState, left ir.Value, right ir.Value) bool {
	switch l := left.(type) {
	case ir.IntConst:
		r, ok := right.(ir.IntConst)
		return ok && l == r
	case ir.FloatConst:
		r, ok := right.(ir.FloatConst)
		return ok && l == r
	case *ir.Register:
		r, ok := right.(*ir.Register)
		if !ok || l.Type() != r.Type() {
			return false
		}
		//
		return matchRegisters(state, l, r)
	default:
		return false
	}
}

// matchRegisters reconciles two registers against the matching state: both
// matched requires agreeing serials, both unmatched records a fresh match, and
// a matched/unmatched mix is a disagreement.
func matchRegisters(state *MatchingState, left *ir.Register, right *ir.Register) bool {
	snL, okL := state.SnMapL[left]
	snR, okR := state.SnMapR[right]
	//
	switch {
	case okL && okR:
		return snL == snR
	case okL || okR:
		return false
	default:
		state.Match(left, right)
		return true
	}
}
