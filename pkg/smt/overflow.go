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

// Overflow-check predicates over bit-vector terms, mirroring the checks
// solver APIs provide natively.  Overflow means exceeding the largest
// representable value, underflow falling below the smallest; each predicate
// holds when the corresponding wrap CANNOT happen.  The checks widen their
// operands (by one bit for addition and subtraction, doubling for
// multiplication) and compare the exact result against the representable
// range.

// BVAddNoOverflow holds when lhs + rhs does not exceed the largest
// representable (signed or unsigned) value.
func BVAddNoOverflow(lhs Term, rhs Term, signed bool) Term {
	width := bvWidth("bvadd-no-overflow", lhs, rhs)
	//
	if signed {
		sum := Add(SignExtend(lhs, 1), SignExtend(rhs, 1))
		return Le(sum, SignExtend(maxSigned(width), 1))
	}
	// Unsigned addition overflows exactly when the carry bit is set.
	sum := Add(ZeroExtend(lhs, 1), ZeroExtend(rhs, 1))
	//
	return Eq(Extract(sum, width, width), BVVal(0, 1))
}

// BVAddNoUnderflow holds when lhs + rhs, read as signed, does not fall below
// the smallest representable value.  Unsigned addition cannot underflow.
func BVAddNoUnderflow(lhs Term, rhs Term) Term {
	width := bvWidth("bvadd-no-underflow", lhs, rhs)
	sum := Add(SignExtend(lhs, 1), SignExtend(rhs, 1))
	//
	return Ge(sum, SignExtend(minSigned(width), 1))
}

// BVSubNoOverflow holds when lhs - rhs, read as signed, does not exceed the
// largest representable value.  Unsigned subtraction cannot overflow.
func BVSubNoOverflow(lhs Term, rhs Term) Term {
	width := bvWidth("bvsub-no-overflow", lhs, rhs)
	diff := Sub(SignExtend(lhs, 1), SignExtend(rhs, 1))
	//
	return Le(diff, SignExtend(maxSigned(width), 1))
}

// BVSubNoUnderflow holds when lhs - rhs does not fall below the smallest
// representable (signed or unsigned) value.
func BVSubNoUnderflow(lhs Term, rhs Term, signed bool) Term {
	width := bvWidth("bvsub-no-underflow", lhs, rhs)
	//
	if signed {
		diff := Sub(SignExtend(lhs, 1), SignExtend(rhs, 1))
		return Ge(diff, SignExtend(minSigned(width), 1))
	}
	// Unsigned subtraction underflows exactly when the subtrahend exceeds
	// the minuend.
	return ULe(rhs, lhs)
}

// BVMulNoOverflow holds when lhs * rhs does not exceed the largest
// representable (signed or unsigned) value.
func BVMulNoOverflow(lhs Term, rhs Term, signed bool) Term {
	width := bvWidth("bvmul-no-overflow", lhs, rhs)
	//
	if signed {
		product := Mul(SignExtend(lhs, width), SignExtend(rhs, width))
		return Le(product, SignExtend(maxSigned(width), width))
	}
	// Unsigned multiplication overflows exactly when the upper half of the
	// doubled-width product is non-zero.
	product := Mul(ZeroExtend(lhs, width), ZeroExtend(rhs, width))
	//
	return Eq(Extract(product, 2*width-1, width), BVVal(0, width))
}

// BVMulNoUnderflow holds when lhs * rhs, read as signed, does not fall below
// the smallest representable value.
func BVMulNoUnderflow(lhs Term, rhs Term) Term {
	width := bvWidth("bvmul-no-underflow", lhs, rhs)
	product := Mul(SignExtend(lhs, width), SignExtend(rhs, width))
	//
	return Ge(product, SignExtend(minSigned(width), width))
}

func bvWidth(op string, lhs Term, rhs Term) uint {
	bv, ok := lhs.Sort().(BitVecSort)
	if !ok || lhs.Sort() != rhs.Sort() {
		failf("%s requires matching bit-vector arguments", op)
	}
	//
	return bv.Width
}

// Largest signed value of a given width, e.g. 0x7f for width 8.
func maxSigned(width uint) Term {
	if width > 64 {
		failf("unsupported bit-vector width %d", width)
	} else if width == 64 {
		return BVVal(int64(^uint64(0)>>1), width)
	}
	//
	return BVVal(int64(1)<<(width-1)-1, width)
}

// Smallest signed value of a given width, e.g. -0x80 for width 8.
func minSigned(width uint) Term {
	if width > 64 {
		failf("unsupported bit-vector width %d", width)
	} else if width == 64 {
		return BVVal(-1<<63, width)
	}
	//
	return BVVal(-(int64(1) << (width - 1)), width)
}
