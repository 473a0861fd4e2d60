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

// Package emitter renders labeled SSIR to NASM-syntax assembly text. Only
// the instruction shapes the minimal language produces are handled: one case
// per SSIR op, textual concatenation, no peephole optimization.
package emitter

import (
	"fmt"
	"strings"

	"github.com/falcon-lang/falcon/internal/ssir"
)

// Emit renders every function to one NASM text module.
func Emit(fns []*ssir.Function) string {
	var sb strings.Builder
	sb.WriteString("section .text\n")
	for _, f := range fns {
		emitFunction(&sb, f)
	}
	return sb.String()
}

func emitFunction(sb *strings.Builder, f *ssir.Function) {
	fmt.Fprintf(sb, "global %s\n%s:\n", f.Name, f.Name)
	for _, ins := range f.Instructions {
		emitInstruction(sb, ins)
	}
	for _, l := range f.Labels {
		fmt.Fprintf(sb, ".LC%d:\n", l.ID)
		for _, ins := range l.Instructions {
			emitInstruction(sb, ins)
		}
	}
}

func emitInstruction(sb *strings.Builder, ins ssir.Instruction) {
	switch ins.Kind {
	case ssir.InsTmpNode:
		emitTmpNode(sb, ins.Node)
	case ssir.InsVarDecl, ssir.InsVarAssign:
		fmt.Fprintf(sb, "  mov %s, %s ; %s\n", regName(ins.Oper), ins.Name, ins.Type)
	case ssir.InsIf:
		fmt.Fprintf(sb, "  cmp ... ; %s\n", ins.Node)
		fmt.Fprintf(sb, "  j%s .LCnext\n", jccSuffix(ins.Node.BinOp))
	case ssir.InsJump:
		fmt.Fprintf(sb, "  jmp .LC%d\n", ins.JumpTarget)
	case ssir.InsPop:
		sb.WriteString("  ; pop\n")
	}
}

func emitTmpNode(sb *strings.Builder, n *ssir.TmpNode) {
	reg := "?"
	if n.Reg != nil {
		reg = n.Reg.Name
	}
	switch n.Kind {
	case ssir.NodeValue:
		fmt.Fprintf(sb, "  mov %s, %s\n", reg, n.Value)
	case ssir.NodeBinary:
		fmt.Fprintf(sb, "  %s %s, %s ; tmp%d\n", asmMnemonic(n.BinOp), reg, n.Right, n.ID)
	case ssir.NodeUnary:
		fmt.Fprintf(sb, "  %s %s ; tmp%d\n", unaryMnemonic(n.UnOp), reg, n.ID)
	case ssir.NodeLogical:
		fmt.Fprintf(sb, "  ; logical tmp%d (%s)\n", n.ID, n.LogOp)
	case ssir.NodeAssign:
		fmt.Fprintf(sb, "  mov %s, %s ; assign tmp%d\n", reg, n.Value, n.ID)
	case ssir.NodeGrouping:
		fmt.Fprintf(sb, "  ; grouping tmp%d forwards %s\n", n.ID, n.Value)
	}
}

func regName(c ssir.TmpChild) string {
	if c.Reg != nil {
		return c.Reg.Name
	}
	return c.String()
}

func asmMnemonic(op ssir.BinaryOp) string {
	switch op {
	case ssir.Add:
		return "add"
	case ssir.Sub:
		return "sub"
	case ssir.Mul:
		return "imul"
	case ssir.Div:
		return "idiv"
	default:
		return "cmp"
	}
}

func unaryMnemonic(op ssir.UnaryOp) string {
	if op == ssir.Negate {
		return "neg"
	}
	return "not"
}

func jccSuffix(op ssir.BinaryOp) string {
	switch op {
	case ssir.Equal:
		return "e"
	case ssir.NotEqual:
		return "ne"
	case ssir.Greater:
		return "g"
	case ssir.GreaterEq:
		return "ge"
	case ssir.Less:
		return "l"
	case ssir.LessEq:
		return "le"
	default:
		return "mp"
	}
}
