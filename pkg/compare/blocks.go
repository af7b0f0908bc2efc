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
	"github.com/snipdiff/go-snipdiff/pkg/smt"
	log "github.com/sirupsen/logrus"
)

// BlockComparator compares two straight-line blocks end to end.  Instructions
// are matched structurally pair by pair; when a pair disagrees, the snippet
// comparator takes over and attempts to prove the divergent region equivalent
// with the SMT solver before structural matching resumes.
type BlockComparator struct {
	state    *MatchingState
	snippets *SnippetComparator
	// Snapshot taken before each structural pair comparison, restored by the
	// snippet comparator's undo hook.
	pairSnapshot Snapshot
}

// NewBlockComparator constructs a block comparator under the given
// configuration.
func NewBlockComparator(config Config) *BlockComparator {
	state := NewMatchingState()
	//
	b := &BlockComparator{
		state:    state,
		snippets: NewSnippetComparator(config, state, StructuralComparer(state)),
	}
	//
	b.snippets.SetUndo(func(ir.Cursor, ir.Cursor) {
		state.Restore(b.pairSnapshot)
	})
	//
	return b
}

// SetRunner replaces the solver runner used for snippet verification.
func (b *BlockComparator) SetRunner(runner smt.Runner) {
	b.snippets.SetRunner(runner)
}

// Compare determines whether two blocks are equivalent.  An exhausted
// synchronization search counts as an ordinary NotEqual outcome; unsupported
// operations and an exceeded time budget are reported as errors.
func (b *BlockComparator) Compare(left *ir.Block, right *ir.Block) (Result, error) {
	b.state.Reset()
	b.matchInputs(left, right)
	//
	compare := StructuralComparer(b.state)
	l, r := left.Begin(), right.Begin()
	//
	for {
		l, r = skipSkippable(l), skipSkippable(r)
		//
		if l.AtEnd() || r.AtEnd() {
			break
		}
		// Each pair comparison is speculative until it succeeds.
		b.pairSnapshot = b.state.Snapshot()
		//
		if compare(l, r, false, false) == Equal {
			l, r = l.Next(), r.Next()
			continue
		}
		//
		log.Debugf("structural mismatch at left %v, right %v", l, r)
		//
		result, err := b.snippets.Resynchronize(&l, &r)
		//
		if err != nil {
			if IsKind(err, NoSynchronizationPoint) {
				return NotEqual, nil
			}
			//
			return NotEqual, err
		} else if result != Equal {
			return NotEqual, nil
		}
		// The cursors compensate for a caller-side step; take it.
		l, r = l.Next(), r.Next()
	}
	// Equivalence requires both streams exhausted together.
	if l.AtEnd() && r.AtEnd() {
		return Equal, nil
	}
	//
	return NotEqual, nil
}

// matchInputs seeds the matching state by pairing up the input registers of
// the two blocks by name.  Inputs without a same-named counterpart stay
// unmatched, which any later use will surface as a mismatch.
func (b *BlockComparator) matchInputs(left *ir.Block, right *ir.Block) {
	byName := make(map[string]*ir.Register, len(right.Inputs()))
	//
	for _, reg := range right.Inputs() {
		byName[reg.Name()] = reg
	}
	//
	for _, reg := range left.Inputs() {
		if other, ok := byName[reg.Name()]; ok && reg.Type() == other.Type() {
			b.state.Match(reg, other)
		}
	}
}

func skipSkippable(c ir.Cursor) ir.Cursor {
	for !c.AtEnd() && c.Inst().IsSkippable() {
		c = c.Next()
	}
	//
	return c
}
