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
	"strconv"
	"strings"

	"github.com/snipdiff/go-snipdiff/pkg/util/sexp"
	log "github.com/sirupsen/logrus"
)

// Result is the verdict of one satisfiability check.
type Result uint8

const (
	// Sat indicates the asserted formula is satisfiable.
	Sat Result = iota
	// Unsat indicates the asserted formula is unsatisfiable.
	Unsat
	// Unknown indicates the solver could not decide (e.g. it timed out).
	Unknown
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "sat"
	case Unsat:
		return "unsat"
	case Unknown:
		return "unknown"
	default:
		panic("unreachable")
	}
}

// Session is an isolated assertion set with a private symbol namespace.  A
// session accumulates constant declarations, uninterpreted function
// declarations and assertions, then renders them into one self-contained
// SMT-LIB 2 script for a single satisfiability check.  Sessions are never
// reused across checks.
type Session struct {
	// Declared constants, in first-use order.
	consts []symbol
	// Sort of each declared constant.
	sorts map[string]Sort
	// Declared uninterpreted functions, in first-use order.
	funs []Fun
	// Asserted terms, in assertion order.
	assertions []Term
}

type symbol struct {
	name string
	sort Sort
}

// NewSession constructs an empty solver session.
func NewSession() *Session {
	return &Session{sorts: make(map[string]Sort)}
}

// Const declares (or returns the previously declared) constant with the given
// name and sort.  Redeclaring a name at a different sort panics with a
// *BuildError.
func (s *Session) Const(name string, sort Sort) Term {
	if existing, ok := s.sorts[name]; ok {
		if existing != sort {
			failf("constant %s redeclared at sort %v (was %v)", name, sort, existing)
		}
	} else {
		s.sorts[name] = sort
		s.consts = append(s.consts, symbol{name, sort})
	}
	//
	return Term{sexp.NewSymbol(name), sort}
}

// Fun declares (or returns the previously declared) uninterpreted function
// with the given name, domain and codomain.  Function identity is the name:
// two applications of the same name relate equal arguments to equal results,
// while distinct names are never related.
func (s *Session) Fun(name string, domain Sort, codomain Sort) Fun {
	for _, f := range s.funs {
		if f.name == name {
			if f.domain != domain || f.codomain != codomain {
				failf("function %s redeclared at different sorts", name)
			}
			//
			return f
		}
	}
	//
	f := Fun{name, domain, codomain}
	s.funs = append(s.funs, f)
	//
	return f
}

// Assert adds a term to the assertion set of this session.
func (s *Session) Assert(term Term) {
	if term.IsEmpty() {
		failf("empty assertion")
	} else if term.Sort() != Sort(Bool) {
		failf("assertion of non-boolean term %v", term.Sort())
	}
	//
	s.assertions = append(s.assertions, term)
}

// Assertions returns the terms asserted so far, in assertion order.
func (s *Session) Assertions() []Term {
	return s.assertions
}

// Script renders this session as a self-contained SMT-LIB 2 script.  A
// positive timeout (in milliseconds) is set as the solver's per-query
// timeout option.
func (s *Session) Script(timeoutMillis uint) string {
	var builder strings.Builder
	//
	if timeoutMillis > 0 {
		fmt.Fprintf(&builder, "(set-option :timeout %d)\n", timeoutMillis)
	}
	//
	for _, c := range s.consts {
		fmt.Fprintf(&builder, "(declare-const %s %s)\n", c.name, c.sort.Lisp().String())
	}
	//
	for _, f := range s.funs {
		fmt.Fprintf(&builder, "(declare-fun %s (%s) %s)\n",
			f.name, f.domain.Lisp().String(), f.codomain.Lisp().String())
	}
	//
	for _, term := range s.assertions {
		fmt.Fprintf(&builder, "(assert %s)\n", term.String())
	}
	//
	builder.WriteString("(check-sat)\n")
	//
	return builder.String()
}

// Check runs the satisfiability check for this session through the given
// runner.  A positive timeout (in milliseconds) bounds the query.  Solver
// failures (unrunnable solver, malformed script, solver-reported errors) are
// returned as errors, not verdicts.
func (s *Session) Check(runner Runner, timeoutMillis uint) (Result, error) {
	script := s.Script(timeoutMillis)
	//
	log.Debugf("smt: checking %d assertions (timeout %dms)", len(s.assertions), timeoutMillis)
	//
	output, err := runner.Run(script)
	if err != nil {
		return Unknown, err
	}
	//
	return parseVerdict(output)
}

// Fun is a declared uninterpreted function which can be applied to build
// terms.
type Fun struct {
	name     string
	domain   Sort
	codomain Sort
}

// Name returns the name of this function.
func (f Fun) Name() string { return f.name }

// Apply constructs the application of this function to a given argument.
func (f Fun) Apply(arg Term) Term {
	if arg.Sort() != f.domain {
		failf("function %s applied to %v, expects %v", f.name, arg.Sort(), f.domain)
	}
	//
	return app(f.codomain, f.name, arg)
}

// Extract the verdict from the output of a solver run.  The verdict is the
// first line reading sat, unsat or unknown; solver-reported errors and
// unrecognised output are returned as errors.
func parseVerdict(output string) (Result, error) {
	for _, line := range strings.Split(output, "\n") {
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "sat":
			return Sat, nil
		case "unsat":
			return Unsat, nil
		case "unknown", "timeout":
			return Unknown, nil
		default:
			return Unknown, fmt.Errorf("solver error: %s", strconv.Quote(strings.TrimSpace(line)))
		}
	}
	//
	return Unknown, fmt.Errorf("solver produced no verdict")
}
