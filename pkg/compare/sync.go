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
	log "github.com/sirupsen/logrus"
)

// findSnippetEnd searches for the next pair of positions at which ordinary
// comparison can resume, advancing instL and instR to that pair.  The left
// position moves outward; for each left candidate the right side is rescanned
// from its original position, and each pair is probed with the deep
// comparison callback.  Every probe runs under a fresh snapshot of the
// matching state: the first EQUAL probe commits (keeping its matches and
// leaving the pre-probe snapshot for the verification step), while any other
// outcome is rolled back so failed probes cannot leak partial matches.
//
// Probing order is deterministic: left positions in stream order, right
// positions in stream order within each, first success wins.  When both
// positions reach their block ends without success, a NoSynchronizationPoint
// error is returned.
func (c *SnippetComparator) findSnippetEnd(instL *ir.Cursor, instR *ir.Cursor) error {
	startR := *instR
	//
	for !instL.AtEnd() {
		if instL.Inst().IsSkippable() {
			*instL = instL.Next()
			continue
		}
		// Rescan right candidates from the original right position
		*instR = startR
		//
		for !instR.AtEnd() {
			if instR.Inst().IsSkippable() {
				*instR = instR.Next()
				continue
			}
			// The callback may match values (and flip inlining
			// decisions) while probing; none of that may survive
			// an unequal probe.
			c.searchSnapshot = c.state.Snapshot()
			//
			if c.compare(*instL, *instR, true, true) == Equal {
				log.Debugf("sync point at left %v, right %v", *instL, *instR)
				return nil
			}
			//
			c.state.Restore(c.searchSnapshot)
			*instR = instR.Next()
		}
		//
		*instL = instL.Next()
	}
	//
	return errNoSynchronizationPoint()
}
