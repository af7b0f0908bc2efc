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
package cmd

import (
	"fmt"
	"os"

	"github.com/snipdiff/go-snipdiff/pkg/compare"
	"github.com/snipdiff/go-snipdiff/pkg/smt"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [flags] left_file right_file",
	Short: "Check two code blocks for semantic equivalence.",
	Long: `Check two code blocks for semantic equivalence.
	Blocks are given in textual form, one declaration or instruction per
	S-expression.  Instructions are first matched structurally; diverging
	snippets are handed to an SMT solver which attempts to prove them
	equivalent.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		// Configure log level
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
		//
		var cfg compare.Config
		cfg.SolverTimeout = getInt(cmd, "timeout")
		// Parse both blocks
		left := readBlockFile(args[0])
		right := readBlockFile(args[1])
		// Go!
		comparator := compare.NewBlockComparator(cfg)
		comparator.SetRunner(solverRunner(cmd))
		//
		result, err := comparator.Compare(left, right)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		//
		fmt.Println(result)
		//
		if result != compare.Equal {
			os.Exit(1)
		}
	},
}

// Construct the solver runner from the --solver flag, which names the solver
// binary to hand SMT-LIB scripts to.
func solverRunner(cmd *cobra.Command) smt.Runner {
	solver := getString(cmd, "solver")
	if solver == "" {
		return smt.NewZ3Runner()
	}
	//
	return &smt.ProcessRunner{Command: solver, Args: []string{"-in", "-smt2"}}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntP("timeout", "t", 0, "total SMT solving budget in seconds (0 = unlimited)")
	checkCmd.Flags().String("solver", "", "solver binary to use (defaults to z3 on PATH)")
}
