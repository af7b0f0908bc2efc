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
	"math"
	"strconv"

	"github.com/snipdiff/go-snipdiff/pkg/util/sexp"
)

// Term is a sorted SMT expression in SMT-LIB 2 form.  Terms are built through
// the constructor functions of this package, which dispatch on the sorts of
// their arguments the way solver APIs overload their operators: arithmetic
// and relational constructors apply the bit-vector operation on bit-vector
// terms (signed, unless the explicitly unsigned constructor is used) and the
// floating-point operation on floating-point terms.
//
// Constructor misuse (e.g. adding two booleans, or mixing sorts) panics with
// a *BuildError, which callers assembling formulae from untrusted input are
// expected to recover into their own error handling.
type Term struct {
	node sexp.SExp
	sort Sort
}

// Sort returns the sort of this term.
func (t Term) Sort() Sort { return t.sort }

// Lisp returns the S-expression of this term.
func (t Term) Lisp() sexp.SExp { return t.node }

// IsEmpty reports whether this is the zero Term, i.e. no term at all.
func (t Term) IsEmpty() bool { return t.node == nil }

func (t Term) String() string {
	if t.IsEmpty() {
		return "<empty>"
	}
	//
	return t.node.String()
}

// BuildError reports the construction of an ill-sorted term.
type BuildError struct {
	Message string
}

func (e *BuildError) Error() string {
	return e.Message
}

func failf(format string, args ...any) {
	panic(&BuildError{fmt.Sprintf(format, args...)})
}

// Rounding mode used for all floating-point arithmetic and conversions to
// floating point.
var roundNearest = sexp.NewSymbol("RNE")

// Rounding mode used for conversions from floating point to integer, per the
// truncating semantics of those conversions.
var roundToZero = sexp.NewSymbol("RTZ")

func app(sort Sort, head string, args ...Term) Term {
	nodes := make([]sexp.SExp, 1, len(args)+1)
	nodes[0] = sexp.NewSymbol(head)
	//
	for _, arg := range args {
		if arg.IsEmpty() {
			failf("empty argument to %s", head)
		}
		//
		nodes = append(nodes, arg.node)
	}
	//
	return Term{sexp.NewList(nodes), sort}
}

func roundedApp(sort Sort, head string, mode sexp.SExp, args ...Term) Term {
	nodes := make([]sexp.SExp, 2, len(args)+2)
	nodes[0] = sexp.NewSymbol(head)
	nodes[1] = mode
	//
	for _, arg := range args {
		nodes = append(nodes, arg.node)
	}
	//
	return Term{sexp.NewList(nodes), sort}
}

// indexed constructs an application of an indexed identifier, e.g.
// ((_ zero_extend 8) x).
func indexed(sort Sort, head string, indices []string, args ...Term) Term {
	id := []sexp.SExp{sexp.NewSymbol("_"), sexp.NewSymbol(head)}
	//
	for _, index := range indices {
		id = append(id, sexp.NewSymbol(index))
	}
	//
	nodes := []sexp.SExp{sexp.NewList(id)}
	//
	for _, arg := range args {
		nodes = append(nodes, arg.node)
	}
	//
	return Term{sexp.NewList(nodes), sort}
}

// ===================================================================
// Literals
// ===================================================================

// BoolVal constructs a boolean literal.
func BoolVal(value bool) Term {
	if value {
		return Term{sexp.NewSymbol("true"), Bool}
	}
	//
	return Term{sexp.NewSymbol("false"), Bool}
}

// BVVal constructs a bit-vector literal of a given width from the two's
// complement interpretation of the given value.
func BVVal(value int64, width uint) Term {
	unsigned := uint64(value)
	if width < 64 {
		unsigned &= (uint64(1) << width) - 1
	}
	//
	node := sexp.NewList([]sexp.SExp{
		sexp.NewSymbol("_"),
		sexp.NewSymbol("bv" + strconv.FormatUint(unsigned, 10)),
		sexp.NewSymbol(strconv.FormatUint(uint64(width), 10)),
	})
	//
	return Term{node, BitVec(width)}
}

// FPVal constructs a floating-point literal of a given sort.
func FPVal(sort FloatSort, value float64) Term {
	var (
		e = strconv.FormatUint(uint64(sort.Exponent), 10)
		s = strconv.FormatUint(uint64(sort.Significand), 10)
	)
	// The NaNs, infinities and zeros have dedicated constructors.
	switch {
	case math.IsNaN(value):
		return Term{indexedSymbol("NaN", e, s), sort}
	case math.IsInf(value, 1):
		return Term{indexedSymbol("+oo", e, s), sort}
	case math.IsInf(value, -1):
		return Term{indexedSymbol("-oo", e, s), sort}
	case value == 0 && math.Signbit(value):
		return Term{indexedSymbol("-zero", e, s), sort}
	case value == 0:
		return Term{indexedSymbol("+zero", e, s), sort}
	}
	// Everything else converts from an exact real literal.  SMT-LIB real
	// literals are unsigned decimals, hence the sign is applied separately.
	literal := sexp.SExp(sexp.NewSymbol(decimal(math.Abs(value))))
	//
	if value < 0 {
		literal = sexp.NewList([]sexp.SExp{sexp.NewSymbol("-"), literal})
	}
	//
	node := sexp.NewList([]sexp.SExp{
		sexp.NewList([]sexp.SExp{
			sexp.NewSymbol("_"), sexp.NewSymbol("to_fp"),
			sexp.NewSymbol(e), sexp.NewSymbol(s),
		}),
		roundNearest,
		literal,
	})
	//
	return Term{node, sort}
}

func indexedSymbol(name string, indices ...string) sexp.SExp {
	nodes := []sexp.SExp{sexp.NewSymbol("_"), sexp.NewSymbol(name)}
	//
	for _, index := range indices {
		nodes = append(nodes, sexp.NewSymbol(index))
	}
	//
	return sexp.NewList(nodes)
}

// Render a positive float as a decimal literal.  The 'f' format never
// produces an exponent and, with -1 precision, the shortest digit string
// which round-trips; a fractional part is forced since SMT-LIB distinguishes
// integer from real literals.
func decimal(value float64) string {
	s := strconv.FormatFloat(value, 'f', -1, 64)
	//
	for _, c := range s {
		if c == '.' {
			return s
		}
	}
	//
	return s + ".0"
}

// ===================================================================
// Core operators
// ===================================================================

// Eq constructs the equality of two terms of the same sort.
func Eq(lhs Term, rhs Term) Term {
	if lhs.sort != rhs.sort {
		failf("sort mismatch in equality: %v vs %v", lhs.sort, rhs.sort)
	}
	//
	return app(Bool, "=", lhs, rhs)
}

// Ne constructs the disequality of two terms of the same sort.
func Ne(lhs Term, rhs Term) Term {
	if lhs.sort != rhs.sort {
		failf("sort mismatch in disequality: %v vs %v", lhs.sort, rhs.sort)
	}
	//
	return app(Bool, "distinct", lhs, rhs)
}

// Not constructs boolean negation.
func Not(arg Term) Term {
	requireBool("not", arg)
	return app(Bool, "not", arg)
}

// And constructs the conjunction of one or more boolean terms.
func And(args ...Term) Term {
	if len(args) == 1 {
		return args[0]
	}
	//
	requireBool("and", args...)
	//
	return app(Bool, "and", args...)
}

// Or constructs the disjunction of one or more boolean terms.
func Or(args ...Term) Term {
	if len(args) == 1 {
		return args[0]
	}
	//
	requireBool("or", args...)
	//
	return app(Bool, "or", args...)
}

// Implies constructs a boolean implication.
func Implies(antecedent Term, consequent Term) Term {
	requireBool("=>", antecedent, consequent)
	return app(Bool, "=>", antecedent, consequent)
}

// Ite constructs an if-then-else over a boolean condition and two branches of
// the same sort.
func Ite(cond Term, trueVal Term, falseVal Term) Term {
	requireBool("ite", cond)
	//
	if trueVal.sort != falseVal.sort {
		failf("sort mismatch in ite: %v vs %v", trueVal.sort, falseVal.sort)
	}
	//
	return app(trueVal.sort, "ite", cond, trueVal, falseVal)
}

func requireBool(op string, args ...Term) {
	for _, arg := range args {
		if arg.sort != Sort(Bool) {
			failf("%s requires boolean arguments, got %v", op, arg.sort)
		}
	}
}

// ===================================================================
// Arithmetic (sort-dispatched)
// ===================================================================

// Add constructs addition, dispatching on the sort of its arguments.
func Add(lhs Term, rhs Term) Term {
	return arith("bvadd", "fp.add", lhs, rhs)
}

// Sub constructs subtraction, dispatching on the sort of its arguments.
func Sub(lhs Term, rhs Term) Term {
	return arith("bvsub", "fp.sub", lhs, rhs)
}

// Mul constructs multiplication, dispatching on the sort of its arguments.
func Mul(lhs Term, rhs Term) Term {
	return arith("bvmul", "fp.mul", lhs, rhs)
}

// Div constructs division, dispatching on the sort of its arguments.
// Bit-vector division is signed; use UDiv for the unsigned variant.
func Div(lhs Term, rhs Term) Term {
	return arith("bvsdiv", "fp.div", lhs, rhs)
}

// Neg constructs arithmetic negation.
func Neg(arg Term) Term {
	switch arg.sort.(type) {
	case BitVecSort:
		return app(arg.sort, "bvneg", arg)
	case FloatSort:
		return app(arg.sort, "fp.neg", arg)
	default:
		failf("cannot negate %v", arg.sort)
		panic("unreachable")
	}
}

// UDiv constructs unsigned bit-vector division.
func UDiv(lhs Term, rhs Term) Term {
	return bvOnly("bvudiv", lhs, rhs)
}

// SRem constructs signed bit-vector remainder.
func SRem(lhs Term, rhs Term) Term {
	return bvOnly("bvsrem", lhs, rhs)
}

// URem constructs unsigned bit-vector remainder.
func URem(lhs Term, rhs Term) Term {
	return bvOnly("bvurem", lhs, rhs)
}

// FRem constructs floating-point remainder.
func FRem(lhs Term, rhs Term) Term {
	if _, ok := lhs.sort.(FloatSort); !ok || lhs.sort != rhs.sort {
		failf("fp.rem requires matching floating-point arguments")
	}
	//
	return app(lhs.sort, "fp.rem", lhs, rhs)
}

// Shl constructs a bit-vector left shift.
func Shl(lhs Term, rhs Term) Term {
	return bvOnly("bvshl", lhs, rhs)
}

// LShr constructs a logical bit-vector right shift.
func LShr(lhs Term, rhs Term) Term {
	return bvOnly("bvlshr", lhs, rhs)
}

// AShr constructs an arithmetic bit-vector right shift.
func AShr(lhs Term, rhs Term) Term {
	return bvOnly("bvashr", lhs, rhs)
}

// BitAnd constructs conjunction on booleans and bitwise conjunction on
// bit-vectors.
func BitAnd(lhs Term, rhs Term) Term {
	return bitwise("bvand", "and", lhs, rhs)
}

// BitOr constructs disjunction on booleans and bitwise disjunction on
// bit-vectors.
func BitOr(lhs Term, rhs Term) Term {
	return bitwise("bvor", "or", lhs, rhs)
}

// BitXor constructs exclusive disjunction on booleans and bitwise exclusive
// disjunction on bit-vectors.
func BitXor(lhs Term, rhs Term) Term {
	return bitwise("bvxor", "xor", lhs, rhs)
}

func arith(bvOp string, fpOp string, lhs Term, rhs Term) Term {
	if lhs.sort != rhs.sort {
		failf("sort mismatch: %v vs %v", lhs.sort, rhs.sort)
	}
	//
	switch lhs.sort.(type) {
	case BitVecSort:
		return app(lhs.sort, bvOp, lhs, rhs)
	case FloatSort:
		return roundedApp(lhs.sort, fpOp, roundNearest, lhs, rhs)
	default:
		failf("%s is undefined on %v", bvOp, lhs.sort)
		panic("unreachable")
	}
}

func bvOnly(op string, lhs Term, rhs Term) Term {
	if _, ok := lhs.sort.(BitVecSort); !ok || lhs.sort != rhs.sort {
		failf("%s requires matching bit-vector arguments", op)
	}
	//
	return app(lhs.sort, op, lhs, rhs)
}

func bitwise(bvOp string, boolOp string, lhs Term, rhs Term) Term {
	if lhs.sort != rhs.sort {
		failf("sort mismatch: %v vs %v", lhs.sort, rhs.sort)
	}
	//
	switch lhs.sort.(type) {
	case BitVecSort:
		return app(lhs.sort, bvOp, lhs, rhs)
	case BoolSort:
		return app(Bool, boolOp, lhs, rhs)
	default:
		failf("%s is undefined on %v", bvOp, lhs.sort)
		panic("unreachable")
	}
}

// ===================================================================
// Relations (sort-dispatched)
// ===================================================================

// Lt constructs less-than: signed on bit-vectors, IEEE on floating point.
func Lt(lhs Term, rhs Term) Term {
	return relation("bvslt", "fp.lt", lhs, rhs)
}

// Le constructs less-or-equal: signed on bit-vectors, IEEE on floating point.
func Le(lhs Term, rhs Term) Term {
	return relation("bvsle", "fp.leq", lhs, rhs)
}

// Gt constructs greater-than: signed on bit-vectors, IEEE on floating point.
func Gt(lhs Term, rhs Term) Term {
	return relation("bvsgt", "fp.gt", lhs, rhs)
}

// Ge constructs greater-or-equal: signed on bit-vectors, IEEE on floating
// point.
func Ge(lhs Term, rhs Term) Term {
	return relation("bvsge", "fp.geq", lhs, rhs)
}

// ULt constructs unsigned bit-vector less-than.
func ULt(lhs Term, rhs Term) Term {
	return unsignedRelation("bvult", lhs, rhs)
}

// ULe constructs unsigned bit-vector less-or-equal.
func ULe(lhs Term, rhs Term) Term {
	return unsignedRelation("bvule", lhs, rhs)
}

// UGt constructs unsigned bit-vector greater-than.
func UGt(lhs Term, rhs Term) Term {
	return unsignedRelation("bvugt", lhs, rhs)
}

// UGe constructs unsigned bit-vector greater-or-equal.
func UGe(lhs Term, rhs Term) Term {
	return unsignedRelation("bvuge", lhs, rhs)
}

// IsNaN constructs the not-a-number test on a floating-point term.
func IsNaN(arg Term) Term {
	if _, ok := arg.sort.(FloatSort); !ok {
		failf("fp.isNaN is undefined on %v", arg.sort)
	}
	//
	return app(Bool, "fp.isNaN", arg)
}

func relation(bvOp string, fpOp string, lhs Term, rhs Term) Term {
	if lhs.sort != rhs.sort {
		failf("sort mismatch: %v vs %v", lhs.sort, rhs.sort)
	}
	//
	switch lhs.sort.(type) {
	case BitVecSort:
		return app(Bool, bvOp, lhs, rhs)
	case FloatSort:
		return app(Bool, fpOp, lhs, rhs)
	default:
		failf("%s is undefined on %v", bvOp, lhs.sort)
		panic("unreachable")
	}
}

func unsignedRelation(op string, lhs Term, rhs Term) Term {
	if _, ok := lhs.sort.(BitVecSort); !ok || lhs.sort != rhs.sort {
		failf("%s requires matching bit-vector arguments", op)
	}
	//
	return app(Bool, op, lhs, rhs)
}

// ===================================================================
// Conversions
// ===================================================================

// ZeroExtend widens a bit-vector by the given number of zero bits.
func ZeroExtend(arg Term, bits uint) Term {
	return extend("zero_extend", arg, bits)
}

// SignExtend widens a bit-vector by the given number of sign-replicated bits.
func SignExtend(arg Term, bits uint) Term {
	return extend("sign_extend", arg, bits)
}

// Extract keeps the bits of a bit-vector from position hi down to position lo
// (both inclusive).
func Extract(arg Term, hi uint, lo uint) Term {
	bv, ok := arg.sort.(BitVecSort)
	if !ok || hi < lo || hi >= bv.Width {
		failf("malformed extract [%d:%d] on %v", hi, lo, arg.sort)
	}
	//
	return indexed(BitVec(hi-lo+1), "extract",
		[]string{
			strconv.FormatUint(uint64(hi), 10),
			strconv.FormatUint(uint64(lo), 10),
		}, arg)
}

// FloatToFloat re-casts a floating-point term at a different precision.
func FloatToFloat(arg Term, sort FloatSort) Term {
	if _, ok := arg.sort.(FloatSort); !ok {
		failf("to_fp requires a floating-point argument, got %v", arg.sort)
	}
	//
	return roundedConversion("to_fp", arg, sort)
}

// FloatToUnsigned converts a floating-point term to an unsigned bit-vector of
// the given width, truncating towards zero.
func FloatToUnsigned(arg Term, width uint) Term {
	return floatToBitVec("fp.to_ubv", arg, width)
}

// FloatToSigned converts a floating-point term to a signed bit-vector of the
// given width, truncating towards zero.
func FloatToSigned(arg Term, width uint) Term {
	return floatToBitVec("fp.to_sbv", arg, width)
}

// UnsignedToFloat converts a bit-vector term, read as unsigned, to floating
// point.
func UnsignedToFloat(arg Term, sort FloatSort) Term {
	if _, ok := arg.sort.(BitVecSort); !ok {
		failf("to_fp_unsigned requires a bit-vector argument, got %v", arg.sort)
	}
	//
	return roundedConversion("to_fp_unsigned", arg, sort)
}

// SignedToFloat converts a bit-vector term, read as signed, to floating
// point.
func SignedToFloat(arg Term, sort FloatSort) Term {
	if _, ok := arg.sort.(BitVecSort); !ok {
		failf("to_fp requires a bit-vector argument, got %v", arg.sort)
	}
	//
	return roundedConversion("to_fp", arg, sort)
}

func extend(op string, arg Term, bits uint) Term {
	bv, ok := arg.sort.(BitVecSort)
	if !ok {
		failf("%s requires a bit-vector argument, got %v", op, arg.sort)
	}
	//
	return indexed(BitVec(bv.Width+bits), op,
		[]string{strconv.FormatUint(uint64(bits), 10)}, arg)
}

func floatToBitVec(op string, arg Term, width uint) Term {
	if _, ok := arg.sort.(FloatSort); !ok {
		failf("%s requires a floating-point argument, got %v", op, arg.sort)
	}
	//
	id := indexedSymbol(op, strconv.FormatUint(uint64(width), 10))
	node := sexp.NewList([]sexp.SExp{id, roundToZero, arg.node})
	//
	return Term{node, BitVec(width)}
}

func roundedConversion(op string, arg Term, sort FloatSort) Term {
	var (
		e  = strconv.FormatUint(uint64(sort.Exponent), 10)
		s  = strconv.FormatUint(uint64(sort.Significand), 10)
		id = indexedSymbol(op, e, s)
	)
	//
	node := sexp.NewList([]sexp.SExp{id, roundNearest, arg.node})
	//
	return Term{node, sort}
}
