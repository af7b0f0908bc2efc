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
	"time"

	"github.com/snipdiff/go-snipdiff/pkg/ir"
	"github.com/snipdiff/go-snipdiff/pkg/smt"
	log "github.com/sirupsen/logrus"
)

// compareSnippets decides whether one candidate snippet pair, given as a
// half-open cursor range per side, is semantically equivalent.
//
// The formula conjoins three parts: equalities between snippet operands
// already recorded as matched (pulled in at the left side's use sites),
// the encoded semantics of every left instruction and the encoded semantics
// of every right instruction.  No equality is asserted between the remaining
// operands — that equivalence is exactly the property under test.  If no
// assignment distinguishes the two sides the formula is unsatisfiable, hence
// UNSAT means equal and anything else (SAT or indeterminate) means "not
// proven equal", which is not an error.
func (c *SnippetComparator) compareSnippets(startL, endL, startR, endR ir.Cursor) (result Result, err error) {
	// With no instruction on either side there are no operands to map and
	// no outputs to relate, hence nothing can be proven.
	if startL == endL || startR == endR {
		return NotEqual, nil
	}
	// Ill-sorted formula construction surfaces as a build panic; re-raise
	// it as an unsupported-operation condition carrying the diagnostic.
	defer func() {
		if r := recover(); r != nil {
			if berr, ok := r.(*smt.BuildError); ok {
				result, err = NotEqual, errUnsupported("%s", berr.Message)
				return
			}
			//
			panic(r)
		}
	}()
	//
	session := smt.NewSession()
	enc := newEncoder(session)
	// Operand matches recorded during the successful synchronization probe
	// must not influence the input mapping, hence use sites are resolved
	// against the serial map as of before that probe.
	for cursor := startL; cursor != endL; cursor = cursor.Next() {
		if err := c.mapOperands(enc, cursor.Inst()); err != nil {
			return NotEqual, err
		}
		//
		if err := enc.encode(leftPrefix, cursor.Inst()); err != nil {
			return NotEqual, err
		}
	}
	//
	for cursor := startR; cursor != endR; cursor = cursor.Next() {
		if err := enc.encode(rightPrefix, cursor.Inst()); err != nil {
			return NotEqual, err
		}
	}
	//
	var timeoutMillis uint
	if c.config.SolverTimeout > 0 {
		timeoutMillis = uint(c.remaining) * 1000
	}
	//
	started := c.now()
	//
	verdict, err := session.Check(c.runner, timeoutMillis)
	if err != nil {
		return NotEqual, errUnsupported("%s", err.Error())
	}
	//
	if verdict == smt.Unsat {
		// No input distinguishes the snippets.
		return Equal, nil
	}
	// Inconclusive: solving may run again for another candidate, so charge
	// this query against the remaining budget.
	elapsed := int(c.now().Sub(started) / time.Second)
	//
	if c.config.SolverTimeout > 0 {
		if elapsed >= c.remaining {
			return NotEqual, errOutOfTime()
		}
		//
		c.remaining -= elapsed
	}
	//
	log.Debugf("snippet not proven equal (%v, %ds budget left)", verdict, c.remaining)
	//
	return NotEqual, nil
}

// mapOperands asserts, for each operand of a left-side instruction already
// recorded as matched, the equality of the registered left and right values.
func (c *SnippetComparator) mapOperands(enc *encoder, inst *ir.Instruction) error {
	for _, operand := range inst.Operands() {
		serial, ok := c.searchSnapshot.SnMapL()[operand]
		if !ok {
			continue
		}
		//
		pair, ok := c.state.MappedValuesBySn[serial]
		if !ok {
			continue
		}
		//
		left, err := enc.value(leftPrefix, pair.Left)
		if err != nil {
			return err
		}
		//
		right, err := enc.value(rightPrefix, pair.Right)
		if err != nil {
			return err
		}
		//
		enc.session.Assert(smt.Eq(left, right))
	}
	//
	return nil
}
