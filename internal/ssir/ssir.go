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

// Package ssir is the Secondary Stage Intermediate Representation: a
// linear, temporary-SSA-like IR with one Function per AST function, an
// entry instruction stream, and per-branch Labels. Each TmpNode computes
// one temporary; instructions reference temporaries either inline or by ID.
// The builder opens and closes a "current" label as it lowers a function
// body, appending instructions to whichever stream is active.
package ssir

import (
	"fmt"

	"github.com/falcon-lang/falcon/internal/regfile"
	"github.com/falcon-lang/falcon/internal/types"
)

// TmpChildKind tags an operand variant.
type TmpChildKind int

const (
	ChildNone TmpChildKind = iota
	ChildLiteral
	ChildLoadVar
	ChildTmpRef
)

// TmpChild is an SSIR operand: a literal, a variable load, a reference to an
// earlier temporary, or the None sentinel used in statement contexts.
type TmpChild struct {
	Kind TmpChildKind
	Text string // Literal text
	Name string // LoadVar name
	Ref  int    // TmpRef id
	Type types.TaggedType
	Reg  *regfile.Register // filled by the labeler for TmpRef
}

func NoneChild() TmpChild { return TmpChild{Kind: ChildNone} }

func LiteralChild(text string, t types.TaggedType) TmpChild {
	return TmpChild{Kind: ChildLiteral, Text: text, Type: t}
}

func LoadVarChild(name string, t types.TaggedType) TmpChild {
	return TmpChild{Kind: ChildLoadVar, Name: name, Type: t}
}

func TmpRefChild(id int, t types.TaggedType) TmpChild {
	return TmpChild{Kind: ChildTmpRef, Ref: id, Type: t}
}

func (c TmpChild) String() string {
	switch c.Kind {
	case ChildLiteral:
		return fmt.Sprintf("%s{%s}", c.Type, c.Text)
	case ChildLoadVar:
		return fmt.Sprintf("LOAD %s", c.Name)
	case ChildTmpRef:
		if c.Reg != nil {
			return fmt.Sprintf("REF tmp%d(%s)", c.Ref, c.Reg.Name)
		}
		return fmt.Sprintf("REF tmp%d", c.Ref)
	default:
		return "<none>"
	}
}

// TmpNodeKind tags a TmpNode variant.
type TmpNodeKind int

const (
	NodeValue TmpNodeKind = iota
	NodeBinary
	NodeUnary
	NodeLogical
	NodeAssign
	NodeGrouping
)

// BinaryOp/LogicalOp/UnaryOp mirror internal/ast's operator enums, kept as a
// separate type here so the SSIR data model in this file does not depend on
// internal/ast (the builder in internal/ssir/build.go is the only file that
// imports it and bridges the two).
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Greater
	GreaterEq
	Less
	LessEq
	Equal
	NotEqual
)

func (o BinaryOp) IsComparison() bool {
	switch o {
	case Greater, GreaterEq, Less, LessEq, Equal, NotEqual:
		return true
	}
	return false
}

func (o BinaryOp) String() string {
	names := [...]string{"+", "-", "*", "/", ">", ">=", "<", "<=", "==", "!="}
	if int(o) < len(names) {
		return names[o]
	}
	return "?"
}

type LogicalOp int

const (
	And LogicalOp = iota
	Or
)

func (o LogicalOp) String() string {
	if o == And {
		return "&&"
	}
	return "||"
}

type UnaryOp int

const (
	Not UnaryOp = iota
	Negate
)

func (o UnaryOp) String() string {
	if o == Not {
		return "!"
	}
	return "-"
}

// TmpNode computes one temporary. Only the fields relevant to its Kind are
// populated; Reg is filled in by internal/labeler.
type TmpNode struct {
	Kind TmpNodeKind
	ID   int
	Type types.TaggedType
	Reg  *regfile.Register

	Value       TmpChild // NodeValue, NodeAssign, NodeGrouping
	Left, Right TmpChild // NodeBinary, NodeLogical
	Operand     TmpChild // NodeUnary

	BinOp BinaryOp
	LogOp LogicalOp
	UnOp  UnaryOp
}

func (n *TmpNode) String() string {
	reg := "?"
	if n.Reg != nil {
		reg = n.Reg.Name
	}
	switch n.Kind {
	case NodeValue:
		return fmt.Sprintf("tmp%d[%s,%s] = Value(%s)", n.ID, n.Type, reg, n.Value)
	case NodeBinary:
		return fmt.Sprintf("tmp%d[%s,%s] = Binary(%s %s %s)", n.ID, n.Type, reg, n.Left, n.BinOp, n.Right)
	case NodeUnary:
		return fmt.Sprintf("tmp%d[%s,%s] = Unary(%s %s)", n.ID, n.Type, reg, n.UnOp, n.Operand)
	case NodeLogical:
		return fmt.Sprintf("tmp%d[%s,%s] = Logical(%s %s %s)", n.ID, n.Type, reg, n.Left, n.LogOp, n.Right)
	case NodeAssign:
		return fmt.Sprintf("tmp%d[%s,%s] = Assign(%s)", n.ID, n.Type, reg, n.Value)
	case NodeGrouping:
		return fmt.Sprintf("tmp%d[%s,%s] = Grouping(%s)", n.ID, n.Type, reg, n.Value)
	default:
		return fmt.Sprintf("tmp%d = ?", n.ID)
	}
}

// InstructionKind tags an Instruction variant.
type InstructionKind int

const (
	InsTmpNode InstructionKind = iota
	InsVarDecl
	InsVarAssign
	InsIf
	InsJump
	InsPop
)

// Instruction is one entry in a Function's (or Label's) stream.
type Instruction struct {
	Kind InstructionKind

	Node *TmpNode // InsTmpNode, InsIf (condition)

	Name string           // InsVarDecl, InsVarAssign
	Oper TmpChild         // InsVarDecl, InsVarAssign
	Type types.TaggedType // InsVarDecl, InsVarAssign

	JumpTarget int // InsJump
}

func (i Instruction) String() string {
	switch i.Kind {
	case InsTmpNode:
		return i.Node.String()
	case InsVarDecl:
		return fmt.Sprintf("VarDecl %s = %s [%s]", i.Name, i.Oper, i.Type)
	case InsVarAssign:
		return fmt.Sprintf("VarAssign %s = %s [%s]", i.Name, i.Oper, i.Type)
	case InsIf:
		return fmt.Sprintf("If(%s)", i.Node)
	case InsJump:
		return fmt.Sprintf("Jump LC%d", i.JumpTarget)
	case InsPop:
		return "Pop"
	default:
		return "?"
	}
}

// Label is a named instruction stream opened by the builder for a branch arm
// or join point. IDs are 1-based, unique, and minted in increasing order.
// Function.Labels keeps them in the order they were opened, so the labels of
// an if nested in a then-arm come before the enclosing if's join label.
type Label struct {
	ID           int
	Instructions []Instruction
}

func (l *Label) Emit(i Instruction) { l.Instructions = append(l.Instructions, i) }

func (l *Label) String() string {
	s := fmt.Sprintf("LC%d:\n", l.ID)
	for _, ins := range l.Instructions {
		s += "  " + ins.String() + "\n"
	}
	return s
}

// Function owns the entry instruction stream and every Label created while
// lowering its body.
type Function struct {
	Name         string
	Instructions []Instruction
	Labels       []*Label

	// active is the label currently receiving emitted instructions, or nil
	// while the entry stream is active.
	active *Label
}

// Emit appends i to whichever stream is currently open: the active label, or
// the entry stream if none is open.
func (f *Function) Emit(i Instruction) {
	if f.active != nil {
		f.active.Emit(i)
		return
	}
	f.Instructions = append(f.Instructions, i)
}

// OpenLabel creates and activates a new Label with the given id.
func (f *Function) OpenLabel(id int) *Label {
	l := &Label{ID: id}
	f.Labels = append(f.Labels, l)
	f.active = l
	return l
}

// CloseLabel deactivates the current label, returning subsequent Emit calls
// to the entry stream.
func (f *Function) CloseLabel() { f.active = nil }

func (f *Function) String() string {
	s := fmt.Sprintf("func %s:\n", f.Name)
	for _, ins := range f.Instructions {
		s += "  " + ins.String() + "\n"
	}
	for _, l := range f.Labels {
		s += l.String()
	}
	return s
}
