// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Package labeler is the linear-scan register labeler: a single pass over
// each Function's entry instruction stream that binds every emitted TmpNode
// (and every TmpRef operand pointing at one) to a physical register from
// internal/regfile, forwarding registers through value-preserving chains
// (Assign, Grouping, non-comparison Binary) instead of allocating fresh
// ones.
package labeler

import (
	"github.com/falcon-lang/falcon/internal/regfile"
	"github.com/falcon-lang/falcon/internal/ssir"
)

// Label runs the labeler over every function, mutating them in place and
// also returning the slice for chaining. It is intentionally linear over
// each function's entry stream only — labels' own instruction streams are
// not walked.
func Label(fns []*ssir.Function) []*ssir.Function {
	for _, f := range fns {
		labelFunction(f)
	}
	return fns
}

func labelFunction(f *ssir.Function) {
	regs := regfile.New()
	refs := make(map[int]*regfile.Register)

	for i := range f.Instructions {
		labelInstruction(&f.Instructions[i], regs, refs)
	}
}

func labelInstruction(ins *ssir.Instruction, regs *regfile.File, refs map[int]*regfile.Register) {
	switch ins.Kind {
	case ssir.InsTmpNode:
		labelTmpNode(ins.Node, regs, refs)
	case ssir.InsPop:
		regs.DeallocateAll()
	case ssir.InsVarDecl, ssir.InsVarAssign:
		forwardOperand(&ins.Oper, refs)
	case ssir.InsIf:
		// The condition TmpNode is captured by the builder rather than
		// emitted as an InsTmpNode, so it receives no register of its own;
		// only its TmpRef operands are bound.
		forwardOperands(ins.Node, refs)
	default:
		// Jump carries no register slot.
	}
}

func labelTmpNode(n *ssir.TmpNode, regs *regfile.File, refs map[int]*regfile.Register) {
	forwardOperands(n, refs)
	switch n.Kind {
	case ssir.NodeValue:
		reg := regs.Allocate(regfile.SizeToRegSize(n.Type.Size))
		n.Reg = reg
		refs[n.ID] = reg
	case ssir.NodeBinary:
		if n.BinOp.IsComparison() {
			reg := regs.Allocate(regfile.Byte)
			n.Reg = reg
			return
		}
		if reg, ok := forwardOperand(&n.Left, refs); ok {
			n.Reg = reg
			refs[n.ID] = reg
			return
		}
		if reg, ok := forwardOperand(&n.Right, refs); ok {
			n.Reg = reg
			refs[n.ID] = reg
			return
		}
		reg := regs.Allocate(regfile.SizeToRegSize(n.Type.Size))
		n.Reg = reg
		refs[n.ID] = reg
	case ssir.NodeAssign, ssir.NodeGrouping:
		if reg, ok := forwardOperand(&n.Value, refs); ok {
			n.Reg = reg
			refs[n.ID] = reg
			return
		}
		reg := regs.Allocate(regfile.SizeToRegSize(n.Type.Size))
		n.Reg = reg
		refs[n.ID] = reg
	case ssir.NodeUnary, ssir.NodeLogical:
		// Treated as a fresh allocation of the result width, consistent
		// with the fallback branch of the Binary case above.
		reg := regs.Allocate(regfile.SizeToRegSize(n.Type.Size))
		n.Reg = reg
		refs[n.ID] = reg
	}
}

// forwardOperands binds every TmpRef operand of n to the register of the
// temporary it references.
func forwardOperands(n *ssir.TmpNode, refs map[int]*regfile.Register) {
	for _, c := range []*ssir.TmpChild{&n.Left, &n.Right, &n.Operand, &n.Value} {
		forwardOperand(c, refs)
	}
}

// forwardOperand looks up a TmpRef operand's already-assigned register in
// refs, writing it into the operand's own Reg slot as well as returning it.
func forwardOperand(c *ssir.TmpChild, refs map[int]*regfile.Register) (*regfile.Register, bool) {
	if c.Kind != ssir.ChildTmpRef {
		return nil, false
	}
	reg, ok := refs[c.Ref]
	if !ok {
		return nil, false
	}
	c.Reg = reg
	return reg, true
}
