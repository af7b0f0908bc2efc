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
	"testing"
	"time"

	"github.com/snipdiff/go-snipdiff/pkg/ir"
	"github.com/stretchr/testify/require"
)

// parseBlock parses the textual form of a block, failing the test on error.
func parseBlock(t *testing.T, text string) *ir.Block {
	t.Helper()
	//
	block, err := ir.ParseBlock(text)
	require.NoError(t, err)
	//
	return block
}

// fakeRunner is a canned solver: it records every script it is given and
// replies with a fixed verdict.
type fakeRunner struct {
	output  string
	err     error
	scripts []string
}

func (r *fakeRunner) Run(script string) (string, error) {
	r.scripts = append(r.scripts, script)
	//
	return r.output, r.err
}

// tickingClock returns a clock which advances by a fixed step on every
// reading.
func tickingClock(step time.Duration) func() time.Time {
	now := time.Unix(1_000_000, 0)
	//
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

// matchInputsByIndex seeds a matching state by pairing up the inputs of two
// blocks positionally.
func matchInputsByIndex(state *MatchingState, left *ir.Block, right *ir.Block) {
	for i, reg := range left.Inputs() {
		state.Match(reg, right.Inputs()[i])
	}
}
