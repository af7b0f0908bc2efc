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
package sexp

import (
	"fmt"
	"unicode"
)

// SyntaxError is reported when a string cannot be parsed as an S-expression.
// The offset identifies the rune at which parsing failed.
type SyntaxError struct {
	Offset  int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d: %s", e.Offset, e.Message)
}

// Parse a given string into a single S-expression, or return an error if the
// string is malformed or contains trailing content.
func Parse(text string) (SExp, error) {
	p := newParser(text)
	// Parse the input
	term, err := p.parse()
	//
	if err != nil {
		return nil, err
	} else if term == nil {
		return nil, p.error("unexpected end of input")
	}
	// Sanity check everything was parsed
	p.skipWhiteSpace()
	//
	if p.index != len(p.text) {
		return nil, p.error("unexpected remainder")
	}
	// Done
	return term, nil
}

// ParseAll converts a given string into zero or more S-expressions, or returns
// an error if the string is malformed.  The key distinction from Parse is that
// this function continues parsing after the first S-expression is encountered.
func ParseAll(text string) ([]SExp, error) {
	p := newParser(text)
	//
	terms := make([]SExp, 0)
	//
	for {
		term, err := p.parse()
		//
		if err != nil {
			return nil, err
		} else if term == nil {
			// EOF reached
			return terms, nil
		}

		terms = append(terms, term)
	}
}

// parser represents a parser in the process of parsing a given string into one
// or more S-expressions.
type parser struct {
	// Text being parsed
	text []rune
	// Determine current position within text
	index int
}

func newParser(text string) *parser {
	return &parser{
		text:  []rune(text),
		index: 0,
	}
}

// parse a single S-expression, returning nil upon reaching the end of the
// input.
func (p *parser) parse() (SExp, error) {
	p.skipWhiteSpace()
	//
	if p.index == len(p.text) {
		return nil, nil
	}
	//
	switch p.text[p.index] {
	case '(':
		return p.parseList()
	case ')':
		return nil, p.error("unexpected end-of-list")
	default:
		return p.parseSymbol()
	}
}

func (p *parser) parseList() (SExp, error) {
	// Skip opening brace
	p.index++
	//
	list := EmptyList()
	//
	for {
		p.skipWhiteSpace()
		//
		if p.index == len(p.text) {
			return nil, p.error("unterminated list")
		} else if p.text[p.index] == ')' {
			// Skip closing brace
			p.index++
			return list, nil
		}
		//
		element, err := p.parse()
		if err != nil {
			return nil, err
		}
		//
		list.Append(element)
	}
}

func (p *parser) parseSymbol() (SExp, error) {
	start := p.index
	//
	for p.index < len(p.text) && !isTerminator(p.text[p.index]) {
		p.index++
	}
	//
	return NewSymbol(string(p.text[start:p.index])), nil
}

// Skip over any whitespace and comments.  Comments run from a semicolon to the
// end of the enclosing line.
func (p *parser) skipWhiteSpace() {
	for p.index < len(p.text) {
		switch {
		case unicode.IsSpace(p.text[p.index]):
			p.index++
		case p.text[p.index] == ';':
			for p.index < len(p.text) && p.text[p.index] != '\n' {
				p.index++
			}
		default:
			return
		}
	}
}

func (p *parser) error(message string) *SyntaxError {
	return &SyntaxError{Offset: p.index, Message: message}
}

func isTerminator(c rune) bool {
	return unicode.IsSpace(c) || c == '(' || c == ')' || c == ';'
}
