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

// Result of a comparison.
type Result uint8

const (
	// Equal indicates the compared items were found equivalent.
	Equal Result = iota
	// NotEqual indicates equivalence could not be established.
	NotEqual
)

func (r Result) String() string {
	if r == Equal {
		return "EQUAL"
	}
	//
	return "NOT EQUAL"
}

// CompareFunc is the deep-comparison callback used to probe candidate
// synchronization points.  It must be reentrant, and any mutation of shared
// state it performs must be captured by the matching-state snapshot/restore
// discipline.
type CompareFunc func(left ir.Cursor, right ir.Cursor, matchWithinBlock bool, allowSpeculative bool) Result

// UndoFunc reverts the side effects of the mismatching comparison which
// triggered resynchronization; it is owned by the outer comparator.
type UndoFunc func(left ir.Cursor, right ir.Cursor)

// Config carries the tunables of snippet comparison.
type Config struct {
	// SolverTimeout is the total budget for SMT solving, in whole seconds,
	// per resynchronization.  A non-positive value means unlimited.
	SolverTimeout int
}

// SnippetComparator drives the resynchronization of two instruction streams
// which have just been found to diverge syntactically: it searches for a
// position at which ordinary comparison can resume and proves (or refutes)
// the equivalence of the instructions in between with an SMT solver, retrying
// with further candidates as long as verification is inconclusive.
type SnippetComparator struct {
	config Config
	// Shared matching state, transactionally mutated.
	state *MatchingState
	// Deep-comparison callback probing candidate positions.
	compare CompareFunc
	// Reverts the comparison which triggered resynchronization.
	undo UndoFunc
	// Executes satisfiability checks.
	runner smt.Runner
	// Clock used for budget accounting.
	now func() time.Time
	// Remaining solving budget, in seconds, for the current call.
	remaining int
	// Snapshot taken before the last synchronization probe.
	searchSnapshot Snapshot
}

// NewSnippetComparator constructs a snippet comparator over the given shared
// matching state and deep-comparison callback.  By default satisfiability
// checks run through the z3 binary on PATH.
func NewSnippetComparator(config Config, state *MatchingState, compare CompareFunc) *SnippetComparator {
	return &SnippetComparator{
		config:  config,
		state:   state,
		compare: compare,
		runner:  smt.NewZ3Runner(),
		now:     time.Now,
	}
}

// SetUndo installs the hook reverting the mismatching comparison which
// triggers each resynchronization.
func (c *SnippetComparator) SetUndo(undo UndoFunc) {
	c.undo = undo
}

// SetRunner replaces the solver runner.
func (c *SnippetComparator) SetRunner(runner smt.Runner) {
	c.runner = runner
}

// SetClock replaces the clock used for budget accounting.
func (c *SnippetComparator) SetClock(now func() time.Time) {
	c.now = now
}

// Resynchronize attempts to prove that the two streams, which diverge at the
// given positions, are nonetheless equivalent over some snippet.  On success
// both positions are advanced to just before the synchronization point; on
// failure they are left just before wherever the search was exhausted.  In
// either case the positions compensate for the caller's own forward step, and
// the matching state is reset to its entry snapshot so the caller remaps
// cleanly from the reported point.
//
// The returned error, if any, is an *Error of kind NoSynchronizationPoint,
// UnsupportedOperation or OutOfTime; an inconclusive outcome across every
// candidate is reported as NotEqual with a nil error.
func (c *SnippetComparator) Resynchronize(instL *ir.Cursor, instR *ir.Cursor) (Result, error) {
	// Fresh budget for this call
	c.remaining = c.config.SolverTimeout
	// The caller compared the two mismatching instructions before handing
	// over; revert whatever that comparison recorded.
	if c.undo != nil {
		c.undo(*instL, *instR)
	}
	//
	entrySnapshot := c.state.Snapshot()
	//
	log.Debugf("resynchronizing from left %v, right %v", *instL, *instR)
	//
	result, err := c.resynchronize(instL, instR)
	// Step both positions back by one: internally they point at the first
	// synchronized instruction after the snippet, while the caller steps
	// forward itself.
	*instL = instL.Prev()
	*instR = instR.Prev()
	// The search may have left partial matches behind; reset to the entry
	// snapshot and let the caller remap from scratch.
	c.state.Restore(entrySnapshot)
	//
	return result, err
}

// The retry loop: find the next candidate snippet end, verify the snippet,
// and on an inconclusive verdict roll back and advance to the next candidate.
// The right position advances innermost, wrapping back to the snippet's
// original right start as the left advances, so candidate boundaries strictly
// advance and no pair is verified twice.
func (c *SnippetComparator) resynchronize(instL *ir.Cursor, instR *ir.Cursor) (Result, error) {
	startL := *instL
	startR := *instR
	//
	for {
		if err := c.findSnippetEnd(instL, instR); err != nil {
			return NotEqual, err
		}
		//
		result, err := c.compareSnippets(startL, *instL, startR, *instR)
		if err != nil {
			return NotEqual, err
		} else if result == Equal {
			return Equal, nil
		}
		// Not proven equal: drop whatever the successful probe matched
		// before looking for another synchronization point.
		c.state.Restore(c.searchSnapshot)
		//
		*instR = instR.Next()
		//
		if instR.AtEnd() {
			*instR = startR
			*instL = instL.Next()
			//
			if instL.AtEnd() {
				// Every candidate exhausted; the snippets differ
				// as far as can be established.
				return NotEqual, nil
			}
		}
	}
}
