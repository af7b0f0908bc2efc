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
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes one SMT-LIB 2 script and returns the solver's raw output.
// The production implementation launches an external solver process; tests
// substitute fakes with scripted verdicts.
type Runner interface {
	Run(script string) (string, error)
}

// ProcessRunner runs scripts through an external solver process reading
// SMT-LIB 2 on its standard input.
type ProcessRunner struct {
	// Command is the solver executable.
	Command string
	// Args are passed to the solver ahead of the script.
	Args []string
}

var _ Runner = &ProcessRunner{}

// NewZ3Runner returns a runner invoking the z3 binary from PATH.
func NewZ3Runner() *ProcessRunner {
	return &ProcessRunner{Command: "z3", Args: []string{"-in", "-smt2"}}
}

// Run launches the solver, feeds it the given script and returns its combined
// output.  A non-zero exit is not in itself a failure, since solvers exit
// non-zero on (error ...) output which the verdict parser reports with more
// context; only a failure to launch at all is returned as an error here.
func (r *ProcessRunner) Run(script string) (string, error) {
	cmd := exec.Command(r.Command, r.Args...)
	cmd.Stdin = strings.NewReader(script)
	//
	output, err := cmd.CombinedOutput()
	if len(output) == 0 && err != nil {
		return "", fmt.Errorf("solver %s: %w", r.Command, err)
	}
	//
	return string(output), nil
}
