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
package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snipdiff/go-snipdiff/pkg/util/sexp"
)

// ParseBlock parses the textual form of a block into a Block.  The format is
// a sequence of S-expressions, one per declaration or instruction:
//
//	(input %a i32)           ; declare block input %a of type i32
//	(%c add nsw i32 %a %b)   ; %c := %a + %b (no signed wrap)
//	(%p icmp ugt i32 %c 10)  ; %p := %c >u 10
//	(%q fcmp oeq f64 %x %y)  ; ordered floating-point equality
//	(%w zext i64 %c)         ; zero-extend %c to 64 bits
//	(%t call cos f64 %x)     ; call of a named function
//	(%s select i32 %p %c 0)  ; conditional choice
//	(skip)                   ; skippable (e.g. debug) pseudo-instruction
//
// Operands are either register names (with a % sigil) or literal constants of
// the instruction's operand type.
func ParseBlock(text string) (*Block, error) {
	terms, err := sexp.ParseAll(text)
	if err != nil {
		return nil, err
	}
	//
	builder := NewBuilder()
	//
	for _, term := range terms {
		if err := parseLine(builder, term); err != nil {
			return nil, err
		}
	}
	//
	return builder.Block(), nil
}

func parseLine(builder *Builder, term sexp.SExp) error {
	list := term.AsList()
	if list == nil || list.Len() == 0 {
		return fmt.Errorf("malformed line %q", term.String())
	}
	//
	switch {
	case list.MatchSymbols(1, "skip"):
		builder.Append(NewSkip())
		return nil
	case list.MatchSymbols(1, "input"):
		return parseInput(builder, list)
	default:
		return parseInstruction(builder, list)
	}
}

func parseInput(builder *Builder, list *sexp.List) error {
	if list.Len() != 3 {
		return fmt.Errorf("malformed input declaration %q", list.String())
	}
	//
	name, err := registerName(list.Get(1))
	if err != nil {
		return err
	}
	//
	typ, err := symbolType(list.Get(2))
	if err != nil {
		return err
	}
	//
	if builder.Lookup(name) != nil {
		return fmt.Errorf("input %%%s redeclared", name)
	}
	//
	builder.Input(name, typ)
	//
	return nil
}

func parseInstruction(builder *Builder, list *sexp.List) error {
	name, err := registerName(list.Get(0))
	if err != nil {
		return err
	} else if builder.Lookup(name) != nil {
		return fmt.Errorf("register %%%s redefined", name)
	} else if list.Len() < 2 || list.Get(1).AsSymbol() == nil {
		return fmt.Errorf("missing opcode in %q", list.String())
	}
	//
	opcode, ok := ParseOpcode(list.Get(1).AsSymbol().Value)
	if !ok {
		return fmt.Errorf("unknown opcode %q", list.Get(1).AsSymbol().Value)
	}
	// Remaining tokens after result name and opcode
	rest := list.Elements[2:]
	//
	switch {
	case opcode.IsBinary():
		return parseBinary(builder, name, opcode, rest)
	case opcode == ICMP || opcode == FCMP:
		return parseCmp(builder, name, opcode, rest)
	case opcode == FNEG:
		return parseFneg(builder, name, rest)
	case opcode.IsCast():
		return parseCast(builder, name, opcode, rest)
	case opcode == CALL:
		return parseCall(builder, name, rest)
	case opcode == SELECT:
		return parseSelect(builder, name, rest)
	default:
		return fmt.Errorf("opcode %v not permitted here", opcode)
	}
}

func parseBinary(builder *Builder, name string, opcode Opcode, rest []sexp.SExp) error {
	var flags Flags
	// Optional flags precede the type
	for len(rest) > 0 && parseFlag(rest[0], &flags) {
		rest = rest[1:]
	}
	//
	if len(rest) != 3 {
		return fmt.Errorf("%v expects a type and two operands", opcode)
	}
	//
	typ, err := symbolType(rest[0])
	if err != nil {
		return err
	}
	//
	lhs, err := parseOperand(builder, rest[1], typ)
	if err != nil {
		return err
	}
	//
	rhs, err := parseOperand(builder, rest[2], typ)
	if err != nil {
		return err
	}
	//
	builder.Append(NewBinary(opcode, builder.Define(name, typ), lhs, rhs, flags))
	//
	return nil
}

func parseCmp(builder *Builder, name string, opcode Opcode, rest []sexp.SExp) error {
	if len(rest) != 4 || rest[0].AsSymbol() == nil {
		return fmt.Errorf("%v expects a predicate, a type and two operands", opcode)
	}
	//
	var (
		pred Predicate
		ok   bool
	)
	//
	if opcode == ICMP {
		pred, ok = ParseIntPredicate(rest[0].AsSymbol().Value)
	} else {
		pred, ok = ParseFloatPredicate(rest[0].AsSymbol().Value)
	}
	//
	if !ok {
		return fmt.Errorf("unknown %v predicate %q", opcode, rest[0].AsSymbol().Value)
	}
	//
	typ, err := symbolType(rest[1])
	if err != nil {
		return err
	}
	//
	lhs, err := parseOperand(builder, rest[2], typ)
	if err != nil {
		return err
	}
	//
	rhs, err := parseOperand(builder, rest[3], typ)
	if err != nil {
		return err
	}
	//
	builder.Append(NewCmp(opcode, pred, builder.Define(name, I1), lhs, rhs))
	//
	return nil
}

func parseFneg(builder *Builder, name string, rest []sexp.SExp) error {
	if len(rest) != 2 {
		return fmt.Errorf("fneg expects a type and one operand")
	}
	//
	typ, err := symbolType(rest[0])
	if err != nil {
		return err
	}
	//
	operand, err := parseOperand(builder, rest[1], typ)
	if err != nil {
		return err
	}
	//
	builder.Append(NewUnary(FNEG, builder.Define(name, typ), operand))
	//
	return nil
}

func parseCast(builder *Builder, name string, opcode Opcode, rest []sexp.SExp) error {
	if len(rest) != 2 {
		return fmt.Errorf("%v expects a destination type and one operand", opcode)
	}
	//
	typ, err := symbolType(rest[0])
	if err != nil {
		return err
	}
	// Source type comes from the operand, hence literals are not permitted.
	operand, err := parseOperand(builder, rest[1], nil)
	if err != nil {
		return err
	}
	//
	builder.Append(NewCast(opcode, builder.Define(name, typ), operand))
	//
	return nil
}

func parseCall(builder *Builder, name string, rest []sexp.SExp) error {
	if len(rest) < 3 || rest[0].AsSymbol() == nil {
		return fmt.Errorf("call expects a callee, a type and at least one argument")
	}
	//
	callee := rest[0].AsSymbol().Value
	//
	typ, err := symbolType(rest[1])
	if err != nil {
		return err
	}
	//
	args := make([]Value, 0, len(rest)-2)
	//
	for _, tok := range rest[2:] {
		arg, err := parseOperand(builder, tok, typ)
		if err != nil {
			return err
		}
		//
		args = append(args, arg)
	}
	//
	builder.Append(NewCall(builder.Define(name, typ), callee, args...))
	//
	return nil
}

func parseSelect(builder *Builder, name string, rest []sexp.SExp) error {
	if len(rest) != 4 {
		return fmt.Errorf("select expects a type, a condition and two operands")
	}
	//
	typ, err := symbolType(rest[0])
	if err != nil {
		return err
	}
	//
	cond, err := parseOperand(builder, rest[1], I1)
	if err != nil {
		return err
	}
	//
	trueVal, err := parseOperand(builder, rest[2], typ)
	if err != nil {
		return err
	}
	//
	falseVal, err := parseOperand(builder, rest[3], typ)
	if err != nil {
		return err
	}
	//
	builder.Append(NewSelect(builder.Define(name, typ), cond, trueVal, falseVal))
	//
	return nil
}

// Parse an operand which is either a register reference or, when an expected
// type is supplied, a literal constant of that type.
func parseOperand(builder *Builder, term sexp.SExp, expected Type) (Value, error) {
	symbol := term.AsSymbol()
	if symbol == nil {
		return nil, fmt.Errorf("malformed operand %q", term.String())
	}
	// Register reference?
	if strings.HasPrefix(symbol.Value, "%") {
		reg := builder.Lookup(symbol.Value[1:])
		if reg == nil {
			return nil, fmt.Errorf("unknown register %s", symbol.Value)
		} else if expected != nil && reg.Type() != expected {
			return nil, fmt.Errorf("operand %s has type %v, expected %v", symbol.Value, reg.Type(), expected)
		}
		//
		return reg, nil
	} else if expected == nil {
		return nil, fmt.Errorf("operand %q must be a register", symbol.Value)
	}
	// Literal constant
	switch typ := expected.(type) {
	case IntType:
		value, err := strconv.ParseInt(symbol.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed integer literal %q", symbol.Value)
		}
		//
		return NewIntConst(typ, value), nil
	case FloatType:
		value, err := strconv.ParseFloat(symbol.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed float literal %q", symbol.Value)
		}
		//
		return NewFloatConst(typ, value), nil
	default:
		panic("unreachable")
	}
}

func parseFlag(term sexp.SExp, flags *Flags) bool {
	symbol := term.AsSymbol()
	if symbol == nil {
		return false
	}
	//
	switch symbol.Value {
	case "nsw":
		flags.Nsw = true
	case "nuw":
		flags.Nuw = true
	case "exact":
		flags.Exact = true
	default:
		return false
	}
	//
	return true
}

func registerName(term sexp.SExp) (string, error) {
	symbol := term.AsSymbol()
	if symbol == nil || !strings.HasPrefix(symbol.Value, "%") || len(symbol.Value) < 2 {
		return "", fmt.Errorf("expected register name, found %q", term.String())
	}
	//
	return symbol.Value[1:], nil
}

func symbolType(term sexp.SExp) (Type, error) {
	symbol := term.AsSymbol()
	if symbol == nil {
		return nil, fmt.Errorf("expected type, found %q", term.String())
	}
	//
	return ParseType(symbol.Value)
}
