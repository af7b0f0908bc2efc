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

import "github.com/snipdiff/go-snipdiff/pkg/ir"

// ValuePair is a pair of values, one per side, recorded as equivalent.
type ValuePair struct {
	// Left side value.
	Left ir.Value
	// Right side value.
	Right ir.Value
}

// MatchingState is the mutable record of which values have been established
// as equivalent between the two sides.  Matched values carry a serial number
// assigned in matching order; the registry maps each serial back to the
// matched pair.  The state is a transactional resource: speculative work
// snapshots it first, commits by discarding the snapshot, and rolls back by
// restoring it.
type MatchingState struct {
	// SnMapL maps left-side values to their serial number.
	SnMapL map[ir.Value]uint
	// SnMapR maps right-side values to their serial number.
	SnMapR map[ir.Value]uint
	// MappedValuesBySn maps a serial number to the matched pair.
	MappedValuesBySn map[uint]ValuePair
	// TryInline is a pending inlining decision owned by a higher-level
	// comparator; carried here so rollbacks also revert it.
	TryInline bool
	// Next serial number to assign.
	nextSn uint
}

// NewMatchingState constructs an empty matching state.
func NewMatchingState() *MatchingState {
	return &MatchingState{
		SnMapL:           make(map[ir.Value]uint),
		SnMapR:           make(map[ir.Value]uint),
		MappedValuesBySn: make(map[uint]ValuePair),
	}
}

// Match records two values as equivalent under a fresh serial number, which
// is returned.
func (s *MatchingState) Match(left ir.Value, right ir.Value) uint {
	s.nextSn++
	s.SnMapL[left] = s.nextSn
	s.SnMapR[right] = s.nextSn
	s.MappedValuesBySn[s.nextSn] = ValuePair{left, right}
	//
	return s.nextSn
}

// Reset discards all recorded matches, returning this state to empty.
func (s *MatchingState) Reset() {
	s.SnMapL = make(map[ir.Value]uint)
	s.SnMapR = make(map[ir.Value]uint)
	s.MappedValuesBySn = make(map[uint]ValuePair)
	s.TryInline = false
	s.nextSn = 0
}

// Snapshot takes a deep copy of this state, suitable for a later Restore.
func (s *MatchingState) Snapshot() Snapshot {
	return Snapshot{
		snMapL:           copyMap(s.SnMapL),
		snMapR:           copyMap(s.SnMapR),
		mappedValuesBySn: copyMap(s.MappedValuesBySn),
		tryInline:        s.TryInline,
		nextSn:           s.nextSn,
	}
}

// Restore replaces the contents of this state with those of a snapshot.  The
// snapshot remains valid and may be restored again.
func (s *MatchingState) Restore(snapshot Snapshot) {
	s.SnMapL = copyMap(snapshot.snMapL)
	s.SnMapR = copyMap(snapshot.snMapR)
	s.MappedValuesBySn = copyMap(snapshot.mappedValuesBySn)
	s.TryInline = snapshot.tryInline
	s.nextSn = snapshot.nextSn
}

// Snapshot is an immutable deep copy of a MatchingState.
type Snapshot struct {
	snMapL           map[ir.Value]uint
	snMapR           map[ir.Value]uint
	mappedValuesBySn map[uint]ValuePair
	tryInline        bool
	nextSn           uint
}

// SnMapL returns the left-side serial map as of this snapshot.
func (s Snapshot) SnMapL() map[ir.Value]uint {
	return s.snMapL
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	//
	for k, v := range m {
		c[k] = v
	}
	//
	return c
}
