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

import "fmt"

// Opcode identifies the operation performed by an instruction.
type Opcode uint8

// Supported opcodes.  SKIP is a pseudo-instruction standing in for anything a
// comparison may step over without consequence (e.g. debug intrinsics).
const (
	// SKIP is a skippable pseudo-instruction.
	SKIP Opcode = iota
	// ADD is integer addition.
	ADD
	// FADD is floating-point addition.
	FADD
	// SUB is integer subtraction.
	SUB
	// FSUB is floating-point subtraction.
	FSUB
	// MUL is integer multiplication.
	MUL
	// FMUL is floating-point multiplication.
	FMUL
	// UDIV is unsigned integer division.
	UDIV
	// SDIV is signed integer division.
	SDIV
	// FDIV is floating-point division.
	FDIV
	// UREM is unsigned integer remainder.
	UREM
	// SREM is signed integer remainder.
	SREM
	// FREM is floating-point remainder.
	FREM
	// SHL is a left shift.
	SHL
	// LSHR is a logical (zero-filling) right shift.
	LSHR
	// ASHR is an arithmetic (sign-filling) right shift.
	ASHR
	// AND is bitwise (or boolean) conjunction.
	AND
	// OR is bitwise (or boolean) disjunction.
	OR
	// XOR is bitwise (or boolean) exclusive disjunction.
	XOR
	// FNEG is floating-point negation.
	FNEG
	// ICMP is an integer comparison under a given predicate.
	ICMP
	// FCMP is a floating-point comparison under a given predicate.
	FCMP
	// TRUNC truncates an integer to a narrower width.
	TRUNC
	// ZEXT zero-extends an integer to a wider width.
	ZEXT
	// SEXT sign-extends an integer to a wider width.
	SEXT
	// FPTRUNC narrows a floating-point value.
	FPTRUNC
	// FPEXT widens a floating-point value.
	FPEXT
	// FPTOUI converts a floating-point value to an unsigned integer.
	FPTOUI
	// FPTOSI converts a floating-point value to a signed integer.
	FPTOSI
	// UITOFP converts an unsigned integer to a floating-point value.
	UITOFP
	// SITOFP converts a signed integer to a floating-point value.
	SITOFP
	// SELECT chooses between two values based on a boolean condition.
	SELECT
	// CALL invokes a named function.
	CALL
)

var opcodeNames = map[Opcode]string{
	SKIP: "skip", ADD: "add", FADD: "fadd", SUB: "sub", FSUB: "fsub",
	MUL: "mul", FMUL: "fmul", UDIV: "udiv", SDIV: "sdiv", FDIV: "fdiv",
	UREM: "urem", SREM: "srem", FREM: "frem", SHL: "shl", LSHR: "lshr",
	ASHR: "ashr", AND: "and", OR: "or", XOR: "xor", FNEG: "fneg",
	ICMP: "icmp", FCMP: "fcmp", TRUNC: "trunc", ZEXT: "zext", SEXT: "sext",
	FPTRUNC: "fptrunc", FPEXT: "fpext", FPTOUI: "fptoui", FPTOSI: "fptosi",
	UITOFP: "uitofp", SITOFP: "sitofp", SELECT: "select", CALL: "call",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	//
	return fmt.Sprintf("opcode(%d)", op)
}

// ParseOpcode maps a textual opcode name to its Opcode, reporting whether the
// name was recognised.
func ParseOpcode(name string) (Opcode, bool) {
	for op, n := range opcodeNames {
		if n == name {
			return op, true
		}
	}
	//
	return SKIP, false
}

// IsCast determines whether this opcode is a conversion between types.
func (op Opcode) IsCast() bool {
	return op >= TRUNC && op <= SITOFP
}

// IsBinary determines whether this opcode is a binary arithmetic or bitwise
// operation.
func (op Opcode) IsBinary() bool {
	return op >= ADD && op <= XOR
}

// ===================================================================
// Predicates
// ===================================================================

// Predicate refines a comparison instruction.  Integer predicates come in
// signed and unsigned variants.  Floating-point predicates come in ordered
// (yield true if neither operand is NaN and the comparison holds) and
// unordered (yield true if either operand is NaN or the comparison holds)
// variants, plus the two constant predicates.
type Predicate uint8

// Supported comparison predicates.
const (
	// PRED_NONE marks a non-comparison instruction.
	PRED_NONE Predicate = iota
	// ICMP_EQ is integer equality.
	ICMP_EQ
	// ICMP_NE is integer disequality.
	ICMP_NE
	// ICMP_UGT is unsigned integer greater-than.
	ICMP_UGT
	// ICMP_UGE is unsigned integer greater-or-equal.
	ICMP_UGE
	// ICMP_ULT is unsigned integer less-than.
	ICMP_ULT
	// ICMP_ULE is unsigned integer less-or-equal.
	ICMP_ULE
	// ICMP_SGT is signed integer greater-than.
	ICMP_SGT
	// ICMP_SGE is signed integer greater-or-equal.
	ICMP_SGE
	// ICMP_SLT is signed integer less-than.
	ICMP_SLT
	// ICMP_SLE is signed integer less-or-equal.
	ICMP_SLE
	// FCMP_FALSE always yields false.
	FCMP_FALSE
	// FCMP_OEQ is ordered floating-point equality.
	FCMP_OEQ
	// FCMP_OGT is ordered floating-point greater-than.
	FCMP_OGT
	// FCMP_OGE is ordered floating-point greater-or-equal.
	FCMP_OGE
	// FCMP_OLT is ordered floating-point less-than.
	FCMP_OLT
	// FCMP_OLE is ordered floating-point less-or-equal.
	FCMP_OLE
	// FCMP_ONE is ordered floating-point disequality.
	FCMP_ONE
	// FCMP_UEQ is unordered floating-point equality.
	FCMP_UEQ
	// FCMP_UGT is unordered floating-point greater-than.
	FCMP_UGT
	// FCMP_UGE is unordered floating-point greater-or-equal.
	FCMP_UGE
	// FCMP_ULT is unordered floating-point less-than.
	FCMP_ULT
	// FCMP_ULE is unordered floating-point less-or-equal.
	FCMP_ULE
	// FCMP_UNE is unordered floating-point disequality.
	FCMP_UNE
	// FCMP_TRUE always yields true.
	FCMP_TRUE
)

var predicateNames = map[Predicate]string{
	ICMP_EQ: "eq", ICMP_NE: "ne", ICMP_UGT: "ugt", ICMP_UGE: "uge",
	ICMP_ULT: "ult", ICMP_ULE: "ule", ICMP_SGT: "sgt", ICMP_SGE: "sge",
	ICMP_SLT: "slt", ICMP_SLE: "sle", FCMP_FALSE: "false", FCMP_OEQ: "oeq",
	FCMP_OGT: "ogt", FCMP_OGE: "oge", FCMP_OLT: "olt", FCMP_OLE: "ole",
	FCMP_ONE: "one", FCMP_UEQ: "ueq", FCMP_UGT: "ugt", FCMP_UGE: "uge",
	FCMP_ULT: "ult", FCMP_ULE: "ule", FCMP_UNE: "une", FCMP_TRUE: "true",
}

func (p Predicate) String() string {
	if name, ok := predicateNames[p]; ok {
		return name
	}
	//
	return fmt.Sprintf("pred(%d)", p)
}

// ParseIntPredicate maps a textual predicate name to its integer comparison
// Predicate, reporting whether the name was recognised.
func ParseIntPredicate(name string) (Predicate, bool) {
	for p := ICMP_EQ; p <= ICMP_SLE; p++ {
		if predicateNames[p] == name {
			return p, true
		}
	}
	//
	return PRED_NONE, false
}

// ParseFloatPredicate maps a textual predicate name to its floating-point
// comparison Predicate, reporting whether the name was recognised.
func ParseFloatPredicate(name string) (Predicate, bool) {
	for p := FCMP_FALSE; p <= FCMP_TRUE; p++ {
		if predicateNames[p] == name {
			return p, true
		}
	}
	//
	return PRED_NONE, false
}

// ===================================================================
// Flags
// ===================================================================

// Flags carries the optional attributes of an instruction which refine its
// semantics on edge conditions.
type Flags struct {
	// Nsw asserts no signed wrap: signed overflow produces a poison value.
	Nsw bool
	// Nuw asserts no unsigned wrap: unsigned overflow produces a poison
	// value.
	Nuw bool
	// Exact asserts the division leaves no remainder; an inexact division
	// produces a poison value.
	Exact bool
}

// ===================================================================
// Instruction
// ===================================================================

// Instruction is one operation in a block: an opcode, a typed operand list
// and (except for skippable pseudo-instructions) a result register.
// Instructions are immutable once constructed.
type Instruction struct {
	opcode   Opcode
	result   *Register
	operands []Value
	pred     Predicate
	flags    Flags
	callee   string
}

// NewBinary constructs a binary arithmetic or bitwise instruction.
func NewBinary(opcode Opcode, result *Register, lhs Value, rhs Value, flags Flags) *Instruction {
	if !opcode.IsBinary() {
		panic(fmt.Sprintf("opcode %v is not binary", opcode))
	}
	//
	return &Instruction{opcode: opcode, result: result, operands: []Value{lhs, rhs}, flags: flags}
}

// NewUnary constructs a unary instruction (currently only fneg).
func NewUnary(opcode Opcode, result *Register, operand Value) *Instruction {
	return &Instruction{opcode: opcode, result: result, operands: []Value{operand}}
}

// NewCmp constructs a comparison instruction (icmp or fcmp) under a given
// predicate.  The result register must have type i1.
func NewCmp(opcode Opcode, pred Predicate, result *Register, lhs Value, rhs Value) *Instruction {
	if opcode != ICMP && opcode != FCMP {
		panic(fmt.Sprintf("opcode %v is not a comparison", opcode))
	}
	//
	return &Instruction{opcode: opcode, result: result, operands: []Value{lhs, rhs}, pred: pred}
}

// NewCast constructs a conversion instruction.  The destination type is that
// of the result register.
func NewCast(opcode Opcode, result *Register, operand Value) *Instruction {
	if !opcode.IsCast() {
		panic(fmt.Sprintf("opcode %v is not a cast", opcode))
	}
	//
	return &Instruction{opcode: opcode, result: result, operands: []Value{operand}}
}

// NewCall constructs a call of a named function.
func NewCall(result *Register, callee string, args ...Value) *Instruction {
	return &Instruction{opcode: CALL, result: result, operands: args, callee: callee}
}

// NewSelect constructs a select instruction choosing between two values based
// on a boolean condition.
func NewSelect(result *Register, cond Value, trueVal Value, falseVal Value) *Instruction {
	return &Instruction{opcode: SELECT, result: result, operands: []Value{cond, trueVal, falseVal}}
}

// NewSkip constructs a skippable pseudo-instruction.
func NewSkip() *Instruction {
	return &Instruction{opcode: SKIP}
}

// Opcode returns the opcode of this instruction.
func (i *Instruction) Opcode() Opcode { return i.opcode }

// Result returns the register defined by this instruction, or nil for a
// skippable pseudo-instruction.
func (i *Instruction) Result() *Register { return i.result }

// Operands returns the operand list of this instruction.
func (i *Instruction) Operands() []Value { return i.operands }

// Operand returns the ith operand of this instruction.
func (i *Instruction) Operand(index int) Value { return i.operands[index] }

// Predicate returns the comparison predicate, or PRED_NONE for instructions
// other than icmp / fcmp.
func (i *Instruction) Predicate() Predicate { return i.pred }

// Flags returns the optional attributes of this instruction.
func (i *Instruction) Flags() Flags { return i.flags }

// Callee returns the name of the called function, or "" for instructions
// other than call.
func (i *Instruction) Callee() string { return i.callee }

// IsSkippable determines whether a comparison may step over this instruction
// without considering it.
func (i *Instruction) IsSkippable() bool { return i.opcode == SKIP }

func (i *Instruction) String() string {
	if i.opcode == SKIP {
		return "(skip)"
	}
	//
	s := fmt.Sprintf("(%s %s", i.result, i.opcode)
	//
	if i.pred != PRED_NONE {
		s += " " + i.pred.String()
	}
	//
	if i.callee != "" {
		s += " " + i.callee
	}
	//
	for _, op := range i.operands {
		s += " " + op.String()
	}
	//
	return s + ")"
}
