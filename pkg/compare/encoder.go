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
	"strconv"

	"github.com/snipdiff/go-snipdiff/pkg/ir"
	"github.com/snipdiff/go-snipdiff/pkg/smt"
)

// Symbol prefixes keeping the two sides in disjoint namespaces.  Two symbols
// never coincide across sides, even for values denoting "the same" identity;
// only explicitly matched inputs are equated, by assertion.
const (
	leftPrefix  = "l!"
	rightPrefix = "r!"
)

// Functions modeled as uninterpreted: each name declares one binary64 →
// binary64 function symbol shared by both sides, so calling the same function
// on equal arguments is provably equal while distinct functions are never
// related.
var uninterpretedCalls = map[string]bool{
	"acos": true, "asin": true, "atan": true, "cos": true, "cosh": true,
	"sin": true, "sinh": true, "tanh": true, "exp": true, "log": true,
	"log10": true, "sqrt": true,
}

// encoder translates instructions into assertions over a solver session, one
// assertion per instruction of the shape "result == expression", or a guarded
// implication for operations whose result is poison on some inputs.
type encoder struct {
	session *smt.Session
}

func newEncoder(session *smt.Session) *encoder {
	return &encoder{session}
}

// sortOf maps a machine type to its solver sort: 1-bit integers become
// booleans, wider integers bit-vectors, and the two float widths the
// corresponding IEEE sorts.  Anything else is unsupported.
func sortOf(typ ir.Type) (smt.Sort, error) {
	switch t := typ.(type) {
	case ir.IntType:
		if t.Width == 1 {
			return smt.Bool, nil
		}
		//
		return smt.BitVec(t.Width), nil
	case ir.FloatType:
		if t.Bits == 32 {
			return smt.Float32, nil
		}
		//
		return smt.Float64, nil
	default:
		return nil, errUnsupported("unsupported operand type %v", typ)
	}
}

// value translates a value into a term: constants embed as literals of the
// appropriate sort, registers become side-prefixed symbols named by their
// stable identity.
func (e *encoder) value(prefix string, v ir.Value) (smt.Term, error) {
	switch val := v.(type) {
	case ir.IntConst:
		typ := val.Type().(ir.IntType)
		if typ.Width == 1 {
			return smt.BoolVal(val.Value() != 0), nil
		}
		//
		return smt.BVVal(val.Value(), typ.Width), nil
	case ir.FloatConst:
		sort, err := sortOf(val.Type())
		if err != nil {
			return smt.Term{}, err
		}
		//
		return smt.FPVal(sort.(smt.FloatSort), val.Value()), nil
	case *ir.Register:
		sort, err := sortOf(val.Type())
		if err != nil {
			return smt.Term{}, err
		}
		//
		name := prefix + strconv.FormatUint(uint64(val.Id()), 10)
		//
		return e.session.Const(name, sort), nil
	default:
		return smt.Term{}, errUnsupported("unsupported value %v", v)
	}
}

// encode asserts the semantics of one instruction.  Skippable instructions
// contribute nothing.
func (e *encoder) encode(prefix string, inst *ir.Instruction) error {
	if inst.IsSkippable() {
		return nil
	}
	//
	res, err := e.value(prefix, inst.Result())
	if err != nil {
		return err
	}
	//
	var encoded smt.Term
	//
	switch {
	case inst.Opcode() == ir.FNEG:
		op, err := e.value(prefix, inst.Operand(0))
		if err != nil {
			return err
		}
		//
		encoded = smt.Eq(res, smt.Neg(op))
	case inst.Opcode().IsBinary():
		encoded, err = e.encodeBinary(res, prefix, inst)
	case inst.Opcode() == ir.ICMP || inst.Opcode() == ir.FCMP:
		encoded, err = e.encodeCmp(res, prefix, inst)
	case inst.Opcode() == ir.CALL:
		encoded, err = e.encodeCall(res, prefix, inst)
	case inst.Opcode() == ir.SELECT:
		encoded, err = e.encodeSelect(res, prefix, inst)
	case inst.Opcode().IsCast():
		encoded, err = e.encodeCast(res, prefix, inst)
	}
	//
	if err != nil {
		return err
	} else if encoded.IsEmpty() {
		return errUnsupported("unsupported instruction with opcode %v", inst.Opcode())
	}
	//
	e.session.Assert(encoded)
	//
	return nil
}

// Binary arithmetic and bitwise operations.  Integer add, sub, mul and shl
// route through the overflow-aware encoding; everything else translates
// directly, with signed division and remainder as the default and unsigned
// variants explicit.
func (e *encoder) encodeBinary(res smt.Term, prefix string, inst *ir.Instruction) (smt.Term, error) {
	if overflowing(inst) {
		return e.encodeOverflowingBinary(res, prefix, inst)
	}
	//
	op1, err := e.value(prefix, inst.Operand(0))
	if err != nil {
		return smt.Term{}, err
	}
	//
	op2, err := e.value(prefix, inst.Operand(1))
	if err != nil {
		return smt.Term{}, err
	}
	//
	switch inst.Opcode() {
	case ir.FADD:
		return smt.Eq(res, smt.Add(op1, op2)), nil
	case ir.FSUB:
		return smt.Eq(res, smt.Sub(op1, op2)), nil
	case ir.FMUL:
		return smt.Eq(res, smt.Mul(op1, op2)), nil
	case ir.FDIV:
		return smt.Eq(res, smt.Div(op1, op2)), nil
	case ir.SDIV:
		// Signed division is the default bit-vector division.
		div := smt.Eq(res, smt.Div(op1, op2))
		if inst.Flags().Exact {
			precond := smt.Eq(smt.SRem(op1, op2), zero(op1))
			return smt.Implies(precond, div), nil
		}
		//
		return div, nil
	case ir.UDIV:
		div := smt.Eq(res, smt.UDiv(op1, op2))
		if inst.Flags().Exact {
			precond := smt.Eq(smt.URem(op1, op2), zero(op1))
			return smt.Implies(precond, div), nil
		}
		//
		return div, nil
	case ir.FREM:
		return smt.Eq(res, smt.FRem(op1, op2)), nil
	case ir.SREM:
		return smt.Eq(res, smt.SRem(op1, op2)), nil
	case ir.UREM:
		return smt.Eq(res, smt.URem(op1, op2)), nil
	case ir.LSHR:
		return smt.Eq(res, smt.LShr(op1, op2)), nil
	case ir.ASHR:
		return smt.Eq(res, smt.AShr(op1, op2)), nil
	case ir.AND:
		// Bitwise constructors pick the boolean or bit-vector operation
		// based on the operand sort.
		return smt.Eq(res, smt.BitAnd(op1, op2)), nil
	case ir.OR:
		return smt.Eq(res, smt.BitOr(op1, op2)), nil
	case ir.XOR:
		return smt.Eq(res, smt.BitXor(op1, op2)), nil
	default:
		return smt.Term{}, nil
	}
}

// Integer add, sub, mul and shl may carry no-wrap flags, under which an
// overflowing execution produces a poison value.  That is modeled as
// "<no overflow> => (res == op1 <op> op2)": whenever overflow is possible the
// result stays a free variable, i.e. an arbitrary value.  Without flags the
// plain result is asserted unconditionally.  Shift-left is always encoded as
// a plain shift, since its flags would need a variable-width extract to
// check.
func (e *encoder) encodeOverflowingBinary(res smt.Term, prefix string, inst *ir.Instruction) (smt.Term, error) {
	op1, err := e.value(prefix, inst.Operand(0))
	if err != nil {
		return smt.Term{}, err
	}
	//
	op2, err := e.value(prefix, inst.Operand(1))
	if err != nil {
		return smt.Term{}, err
	}
	//
	flags := inst.Flags()
	//
	switch inst.Opcode() {
	case ir.ADD:
		sum := smt.Eq(res, smt.Add(op1, op2))
		//
		if flags.Nsw {
			precond := smt.And(smt.BVAddNoOverflow(op1, op2, true), smt.BVAddNoUnderflow(op1, op2))
			return smt.Implies(precond, sum), nil
		} else if flags.Nuw {
			precond := smt.And(smt.BVAddNoOverflow(op1, op2, false), smt.BVAddNoUnderflow(op1, op2))
			return smt.Implies(precond, sum), nil
		}
		//
		return sum, nil
	case ir.SUB:
		diff := smt.Eq(res, smt.Sub(op1, op2))
		//
		if flags.Nsw {
			precond := smt.And(smt.BVSubNoOverflow(op1, op2), smt.BVSubNoUnderflow(op1, op2, true))
			return smt.Implies(precond, diff), nil
		} else if flags.Nuw {
			precond := smt.And(smt.BVSubNoOverflow(op1, op2), smt.BVSubNoUnderflow(op1, op2, false))
			return smt.Implies(precond, diff), nil
		}
		//
		return diff, nil
	case ir.MUL:
		product := smt.Eq(res, smt.Mul(op1, op2))
		//
		if flags.Nsw {
			precond := smt.And(smt.BVMulNoOverflow(op1, op2, true), smt.BVMulNoUnderflow(op1, op2))
			return smt.Implies(precond, product), nil
		} else if flags.Nuw {
			precond := smt.And(smt.BVMulNoOverflow(op1, op2, false), smt.BVMulNoUnderflow(op1, op2))
			return smt.Implies(precond, product), nil
		}
		//
		return product, nil
	case ir.SHL:
		return smt.Eq(res, smt.Shl(op1, op2)), nil
	default:
		return smt.Term{}, nil
	}
}

// Comparisons.  Unsigned integer predicates use the explicitly unsigned
// relational operators, since the default bit-vector relations are signed.
// Floating-point predicates split by ordered/unordered semantics: ordered
// predicates are false whenever either operand is NaN, unordered ones true.
func (e *encoder) encodeCmp(res smt.Term, prefix string, inst *ir.Instruction) (smt.Term, error) {
	op1, err := e.value(prefix, inst.Operand(0))
	if err != nil {
		return smt.Term{}, err
	}
	//
	op2, err := e.value(prefix, inst.Operand(1))
	if err != nil {
		return smt.Term{}, err
	}
	//
	var encoded smt.Term
	//
	switch inst.Predicate() {
	case ir.ICMP_EQ:
		encoded = smt.Eq(op1, op2)
	case ir.FCMP_UEQ:
		encoded = smt.Or(smt.IsNaN(op1), smt.IsNaN(op2), smt.Eq(op1, op2))
	case ir.FCMP_OEQ:
		encoded = smt.And(smt.Not(smt.IsNaN(op1)), smt.Not(smt.IsNaN(op2)), smt.Eq(op1, op2))
	case ir.ICMP_NE:
		encoded = smt.Ne(op1, op2)
	case ir.FCMP_UNE:
		encoded = smt.Or(smt.IsNaN(op1), smt.IsNaN(op2), smt.Ne(op1, op2))
	case ir.FCMP_ONE:
		encoded = smt.And(smt.Not(smt.IsNaN(op1)), smt.Not(smt.IsNaN(op2)), smt.Ne(op1, op2))
	case ir.FCMP_TRUE:
		encoded = smt.BoolVal(true)
	case ir.FCMP_FALSE:
		encoded = smt.BoolVal(false)
	case ir.ICMP_UGE:
		encoded = smt.UGe(op1, op2)
	case ir.ICMP_SGE:
		encoded = smt.Ge(op1, op2)
	case ir.FCMP_UGE:
		encoded = smt.Or(smt.IsNaN(op1), smt.IsNaN(op2), smt.Ge(op1, op2))
	case ir.FCMP_OGE:
		encoded = smt.And(smt.Not(smt.IsNaN(op1)), smt.Not(smt.IsNaN(op2)), smt.Ge(op1, op2))
	case ir.ICMP_ULE:
		encoded = smt.ULe(op1, op2)
	case ir.ICMP_SLE:
		encoded = smt.Le(op1, op2)
	case ir.FCMP_ULE:
		encoded = smt.Or(smt.IsNaN(op1), smt.IsNaN(op2), smt.Le(op1, op2))
	case ir.FCMP_OLE:
		encoded = smt.And(smt.Not(smt.IsNaN(op1)), smt.Not(smt.IsNaN(op2)), smt.Le(op1, op2))
	case ir.ICMP_UGT:
		encoded = smt.UGt(op1, op2)
	case ir.ICMP_SGT:
		encoded = smt.Gt(op1, op2)
	case ir.FCMP_UGT:
		encoded = smt.Or(smt.IsNaN(op1), smt.IsNaN(op2), smt.Gt(op1, op2))
	case ir.FCMP_OGT:
		encoded = smt.And(smt.Not(smt.IsNaN(op1)), smt.Not(smt.IsNaN(op2)), smt.Gt(op1, op2))
	case ir.ICMP_ULT:
		encoded = smt.ULt(op1, op2)
	case ir.ICMP_SLT:
		encoded = smt.Lt(op1, op2)
	case ir.FCMP_ULT:
		encoded = smt.Or(smt.IsNaN(op1), smt.IsNaN(op2), smt.Lt(op1, op2))
	case ir.FCMP_OLT:
		encoded = smt.And(smt.Not(smt.IsNaN(op1)), smt.Not(smt.IsNaN(op2)), smt.Lt(op1, op2))
	default:
		return smt.Term{}, nil
	}
	//
	return smt.Eq(res, encoded), nil
}

// Conversions between types.  Integer widening and narrowing use
// extend/extract, floating-point re-casts stay within the floating theory at
// the destination precision, and conversions between the theories honour
// signedness explicitly.
func (e *encoder) encodeCast(res smt.Term, prefix string, inst *ir.Instruction) (smt.Term, error) {
	op, err := e.value(prefix, inst.Operand(0))
	if err != nil {
		return smt.Term{}, err
	}
	//
	var (
		src  = inst.Operand(0).Type()
		dest = inst.Result().Type()
	)
	//
	switch inst.Opcode() {
	case ir.ZEXT:
		if dest.BitWidth() <= src.BitWidth() {
			return smt.Term{}, errUnsupported("malformed cast %v to %v", src, dest)
		}
		//
		return smt.Eq(res, smt.ZeroExtend(op, dest.BitWidth()-src.BitWidth())), nil
	case ir.SEXT:
		if dest.BitWidth() <= src.BitWidth() {
			return smt.Term{}, errUnsupported("malformed cast %v to %v", src, dest)
		}
		//
		return smt.Eq(res, smt.SignExtend(op, dest.BitWidth()-src.BitWidth())), nil
	case ir.TRUNC:
		return smt.Eq(res, smt.Extract(op, dest.BitWidth()-1, 0)), nil
	case ir.FPTRUNC, ir.FPEXT:
		sort, ok := res.Sort().(smt.FloatSort)
		if !ok {
			return smt.Term{}, errUnsupported("malformed cast %v to %v", src, dest)
		}
		//
		return smt.Eq(res, smt.FloatToFloat(op, sort)), nil
	case ir.FPTOUI:
		return smt.Eq(res, smt.FloatToUnsigned(op, dest.BitWidth())), nil
	case ir.FPTOSI:
		return smt.Eq(res, smt.FloatToSigned(op, dest.BitWidth())), nil
	case ir.UITOFP:
		sort, ok := res.Sort().(smt.FloatSort)
		if !ok {
			return smt.Term{}, errUnsupported("malformed cast %v to %v", src, dest)
		}
		//
		return smt.Eq(res, smt.UnsignedToFloat(op, sort)), nil
	case ir.SITOFP:
		sort, ok := res.Sort().(smt.FloatSort)
		if !ok {
			return smt.Term{}, errUnsupported("malformed cast %v to %v", src, dest)
		}
		//
		return smt.Eq(res, smt.SignedToFloat(op, sort)), nil
	default:
		return smt.Term{}, nil
	}
}

// Calls.  Exactly two patterns have modeled semantics: the fused
// multiply-add intrinsic, and the fixed allowlist of one-argument
// transcendental functions represented as uninterpreted.
func (e *encoder) encodeCall(res smt.Term, prefix string, inst *ir.Instruction) (smt.Term, error) {
	if inst.Callee() == "fmuladd" && len(inst.Operands()) == 3 {
		op1, err := e.value(prefix, inst.Operand(0))
		if err != nil {
			return smt.Term{}, err
		}
		//
		op2, err := e.value(prefix, inst.Operand(1))
		if err != nil {
			return smt.Term{}, err
		}
		//
		op3, err := e.value(prefix, inst.Operand(2))
		if err != nil {
			return smt.Term{}, err
		}
		//
		return smt.Eq(res, smt.Add(smt.Mul(op1, op2), op3)), nil
	}
	//
	if uninterpretedCalls[inst.Callee()] && len(inst.Operands()) == 1 {
		// These have no closed form in the solver's theories; an
		// uninterpreted binary64 function keyed by name captures just
		// enough, namely congruence.
		fun := e.session.Fun(inst.Callee(), smt.Float64, smt.Float64)
		//
		op, err := e.value(prefix, inst.Operand(0))
		if err != nil {
			return smt.Term{}, err
		}
		//
		return smt.Eq(res, fun.Apply(op)), nil
	}
	//
	return smt.Term{}, nil
}

func (e *encoder) encodeSelect(res smt.Term, prefix string, inst *ir.Instruction) (smt.Term, error) {
	cond, err := e.value(prefix, inst.Operand(0))
	if err != nil {
		return smt.Term{}, err
	}
	//
	trueVal, err := e.value(prefix, inst.Operand(1))
	if err != nil {
		return smt.Term{}, err
	}
	//
	falseVal, err := e.value(prefix, inst.Operand(2))
	if err != nil {
		return smt.Term{}, err
	}
	//
	return smt.Eq(res, smt.Ite(cond, trueVal, falseVal)), nil
}

// An instruction is overflow-sensitive when it is one of the integer
// operations which may carry no-wrap flags.
func overflowing(inst *ir.Instruction) bool {
	switch inst.Opcode() {
	case ir.ADD, ir.SUB, ir.MUL, ir.SHL:
		return true
	default:
		return false
	}
}

// Zero of the same sort as the given bit-vector term.
func zero(t smt.Term) smt.Term {
	return smt.BVVal(0, t.Sort().(smt.BitVecSort).Width)
}
