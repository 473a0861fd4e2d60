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

// Package ast is the tagged-variant AST: an owning tree rewritten in-place by
// the type checker (internal/check). Each node kind carries its own source
// location and a mutable type tag the checker fills in.
package ast

import (
	"fmt"

	"github.com/falcon-lang/falcon/internal/token"
	"github.com/falcon-lang/falcon/internal/types"
)

// Node is the root interface every AST node satisfies.
type Node interface {
	fmt.Stringer
	Pos() token.Pos
}

// BinaryOp enumerates the binary operators the language supports.
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

func (o BinaryOp) String() string {
	switch o {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Greater:
		return ">"
	case GreaterEq:
		return ">="
	case Less:
		return "<"
	case LessEq:
		return "<="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	default:
		return "?"
	}
}

// IsComparison reports whether op produces a bool result.
func (o BinaryOp) IsComparison() bool {
	switch o {
	case Greater, GreaterEq, Less, LessEq, Equal, NotEqual:
		return true
	}
	return false
}

// Reversed returns the logically inverted comparison operator:
// Equal<->NotEqual, Greater<->LessEq, GreaterEq<->Less. Non-comparison
// operators are returned unchanged. Applying Reversed twice is the identity
// on the set of comparison operators.
func (o BinaryOp) Reversed() BinaryOp {
	switch o {
	case Equal:
		return NotEqual
	case NotEqual:
		return Equal
	case Greater:
		return LessEq
	case LessEq:
		return Greater
	case GreaterEq:
		return Less
	case Less:
		return GreaterEq
	default:
		return o
	}
}

// LogicalOp enumerates && and ||.
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

// UnaryOp enumerates ! and -.
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

// base holds the fields every expression node needs: a mutable type tag the
// checker fills in and the node's location. The parser does not set the tag:
// until the checker runs it holds the Go zero value, which is not types.Zero
// (its Kind reads as types.Numeric, with size 0).
type base struct {
	Type TaggedType
	At   token.Pos
}

// TaggedType is re-exported for brevity within this package's node
// definitions; it is internal/types.TaggedType.
type TaggedType = types.TaggedType

func (b *base) Pos() token.Pos { return b.At }

// ---------------------------------------------------------------------------
// Literals

type NumberLit struct {
	base
	Text string // decimal text, unparsed until overwrite_type narrows it
}

func (n *NumberLit) String() string { return fmt.Sprintf("Number(%s)", n.Text) }

type FloatLit struct {
	base
	Text string
}

func (n *FloatLit) String() string { return fmt.Sprintf("Float(%s)", n.Text) }

type StringLit struct {
	base
	Value string
}

func (n *StringLit) String() string { return fmt.Sprintf("String(%q)", n.Value) }

type BoolLit struct {
	base
	Value bool
}

func (n *BoolLit) String() string { return fmt.Sprintf("Bool(%v)", n.Value) }

// ArrayLit is a fixed-size array literal: an ordered sequence of element
// nodes plus the element type's name (resolved later by the checker).
type ArrayLit struct {
	base
	Elems    []Node
	ElemType string
}

func (n *ArrayLit) String() string { return fmt.Sprintf("Array(len=%d)", len(n.Elems)) }

// ---------------------------------------------------------------------------
// Expressions

type VarGet struct {
	base
	Name string
}

func (n *VarGet) String() string { return fmt.Sprintf("VarGet(%s)", n.Name) }

type Binary struct {
	base
	Left, Right Node
	Op          BinaryOp
}

func (n *Binary) String() string { return fmt.Sprintf("Binary(%s)", n.Op) }

type Logical struct {
	base
	Left, Right Node
	Op          LogicalOp
}

func (n *Logical) String() string { return fmt.Sprintf("Logical(%s)", n.Op) }

type Unary struct {
	base
	Op      UnaryOp
	OpLoc   token.Pos
	Operand Node
}

func (n *Unary) String() string { return fmt.Sprintf("Unary(%s)", n.Op) }

type Grouping struct {
	base
	Inner Node
}

func (n *Grouping) String() string { return "Grouping" }

type GetPtr struct {
	base
	Operand Node
}

func (n *GetPtr) String() string { return "GetPtr" }

type Assign struct {
	base
	Name    string
	NameLoc token.Pos
	Value   Node
}

func (n *Assign) String() string { return fmt.Sprintf("Assign(%s)", n.Name) }

// ---------------------------------------------------------------------------
// Declarations / statements

type VarDecl struct {
	base
	Name      string
	NameLoc   token.Pos
	DTypeStr  string // "" if the declaration used :=
	IsArray   bool   // true if T was followed by '[' ... ']', with or without a size
	ArraySize int    // the declared N, or 0 when the brackets carried no explicit size
	Value     Node
}

func (n *VarDecl) String() string { return fmt.Sprintf("VarDecl(%s)", n.Name) }

type FuncParam struct {
	Name     string
	Loc      token.Pos
	DTypeStr string
	Size     int         // filled in by the checker
	Type     TaggedType  // filled in by the checker
}

type Function struct {
	base
	Name       string
	Params     []FuncParam
	Body       *Block
	RetTypeStr string // "" means void
}

func (n *Function) String() string { return fmt.Sprintf("Function(%s)", n.Name) }

type If struct {
	base
	Cond Node
	Then *Block
	Else Node // *Block, another *If, or nil
}

func (n *If) String() string { return "If" }

type For struct {
	base
	VarName string
	VarLoc  token.Pos
	Iter    Node
	Body    *Block
}

func (n *For) String() string { return fmt.Sprintf("For(%s)", n.VarName) }

type Ret struct {
	base
	Value Node // nil for bare `ret`
}

func (n *Ret) String() string { return "Ret" }

type Block struct {
	base
	Stmts []Node
}

func (n *Block) String() string { return fmt.Sprintf("Block(%d)", len(n.Stmts)) }

type ExprStmt struct {
	base
	Expr Node
}

func (n *ExprStmt) String() string { return "ExprStmt" }

// ---------------------------------------------------------------------------
// Accessors shared across the checker/builder: every typed node exposes its
// mutable tag through these two helpers rather than a type assertion at each
// call site.

// GetType returns a node's current type tag, or types.Zero if the node kind
// carries none (statements, Block, For, etc.).
func GetType(n Node) TaggedType {
	switch v := n.(type) {
	case *NumberLit:
		return v.Type
	case *FloatLit:
		return v.Type
	case *StringLit:
		return v.Type
	case *BoolLit:
		return v.Type
	case *ArrayLit:
		return v.Type
	case *VarGet:
		return v.Type
	case *Binary:
		return v.Type
	case *Logical:
		return v.Type
	case *Unary:
		return v.Type
	case *Grouping:
		return v.Type
	case *GetPtr:
		return v.Type
	case *Assign:
		return v.Type
	case *VarDecl:
		return v.Type
	case *Function:
		return v.Type
	default:
		return types.Zero
	}
}

// SetType overwrites a node's mutable type tag. It is a no-op for node kinds
// that carry none.
func SetType(n Node, t TaggedType) {
	switch v := n.(type) {
	case *NumberLit:
		v.Type = t
	case *FloatLit:
		v.Type = t
	case *StringLit:
		v.Type = t
	case *BoolLit:
		v.Type = t
	case *ArrayLit:
		v.Type = t
	case *VarGet:
		v.Type = t
	case *Binary:
		v.Type = t
	case *Logical:
		v.Type = t
	case *Unary:
		v.Type = t
	case *Grouping:
		v.Type = t
	case *GetPtr:
		v.Type = t
	case *Assign:
		v.Type = t
	case *VarDecl:
		v.Type = t
	case *Function:
		v.Type = t
	}
}
