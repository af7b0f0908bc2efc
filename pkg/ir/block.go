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

// Block is an ordered, straight-line sequence of instructions together with
// the input registers it reads.  Blocks are immutable during comparison.
type Block struct {
	inputs []*Register
	insts  []*Instruction
}

// Len returns the number of instructions in this block.
func (b *Block) Len() int { return len(b.insts) }

// Inst returns the ith instruction of this block.
func (b *Block) Inst(i int) *Instruction { return b.insts[i] }

// Inputs returns the input registers of this block, in declaration order.
func (b *Block) Inputs() []*Register { return b.inputs }

// Begin returns a cursor positioned at the first instruction of this block.
func (b *Block) Begin() Cursor { return Cursor{b, 0} }

// End returns a cursor positioned one past the last instruction of this
// block.
func (b *Block) End() Cursor { return Cursor{b, len(b.insts)} }

// ===================================================================
// Cursor
// ===================================================================

// Cursor identifies a position within a block, ranging from the first
// instruction up to (and including) the one-past-the-end position.  Cursors
// are values; two cursors are equal exactly when they identify the same
// position in the same block.
type Cursor struct {
	block *Block
	index int
}

// Block returns the block this cursor points into.
func (c Cursor) Block() *Block { return c.block }

// Index returns the instruction index of this cursor within its block.
func (c Cursor) Index() int { return c.index }

// AtEnd determines whether this cursor sits one past the last instruction.
func (c Cursor) AtEnd() bool { return c.index >= len(c.block.insts) }

// Inst returns the instruction at this cursor, which must not be at the end
// of its block.
func (c Cursor) Inst() *Instruction { return c.block.insts[c.index] }

// Next returns a cursor advanced by one instruction.
func (c Cursor) Next() Cursor { return Cursor{c.block, c.index + 1} }

// Prev returns a cursor stepped back by one instruction.
func (c Cursor) Prev() Cursor { return Cursor{c.block, c.index - 1} }

func (c Cursor) String() string {
	return fmt.Sprintf("@%d", c.index)
}

// ===================================================================
// Builder
// ===================================================================

// Builder incrementally constructs a block, allocating register identities as
// it goes.  Identities are unique within the constructed block and stable
// thereafter.
type Builder struct {
	block  *Block
	regs   map[string]*Register
	nextId uint
}

// NewBuilder constructs an empty block builder.
func NewBuilder() *Builder {
	return &Builder{
		block: &Block{},
		regs:  make(map[string]*Register),
	}
}

// Input declares (or returns the existing) input register with the given name
// and type.
func (b *Builder) Input(name string, typ Type) *Register {
	if reg, ok := b.regs[name]; ok {
		return reg
	}
	//
	reg := b.allocate(name, typ)
	b.block.inputs = append(b.block.inputs, reg)
	//
	return reg
}

// Define allocates the result register for an instruction about to be
// appended.  Redefining an existing name panics, reflecting the single
// assignment property of the instruction stream.
func (b *Builder) Define(name string, typ Type) *Register {
	if _, ok := b.regs[name]; ok {
		panic(fmt.Sprintf("register %%%s redefined", name))
	}
	//
	return b.allocate(name, typ)
}

// Lookup returns the register with the given name, or nil if no such register
// exists.
func (b *Builder) Lookup(name string) *Register {
	return b.regs[name]
}

// Append adds an instruction to the block under construction.
func (b *Builder) Append(inst *Instruction) {
	b.block.insts = append(b.block.insts, inst)
}

// Block returns the block constructed so far.
func (b *Builder) Block() *Block {
	return b.block
}

func (b *Builder) allocate(name string, typ Type) *Register {
	b.nextId++
	reg := &Register{name: name, typ: typ, id: b.nextId}
	b.regs[name] = reg
	//
	return reg
}
