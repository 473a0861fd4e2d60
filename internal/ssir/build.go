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

package ssir

import (
	"github.com/falcon-lang/falcon/internal/ast"
)

// Builder lowers a typed AST into one Function per top-level ast.Function.
// tmpCount mints strictly-increasing temporary ids starting at 2; labelCount
// tracks how many label ids have been minted so far, so that the first label
// created anywhere carries id 1 (the counter starts at 0, one less than the
// first minted id).
type Builder struct {
	tmpCount   int
	labelCount int
	vars       *varTable
}

// NewBuilder returns a Builder ready to lower a whole compilation unit.
func NewBuilder() *Builder {
	return &Builder{tmpCount: 2, labelCount: 0, vars: newVarTable()}
}

// Build lowers every top-level function declaration into an SSIR Function,
// in source order.
func Build(decls []ast.Node) []*Function {
	b := NewBuilder()
	var fns []*Function
	for _, d := range decls {
		if fn, ok := d.(*ast.Function); ok {
			fns = append(fns, b.buildFunction(fn))
		}
	}
	return fns
}

func (b *Builder) nextTmp() int {
	id := b.tmpCount
	b.tmpCount++
	return id
}

// nextLabelPair computes the reserved-label jump scheme's two ids,
// label_count+1 for the then-arm and label_count+2 for the reserved join
// label, without mutating labelCount — the caller advances labelCount before
// lowering the then-arm, so an if nested inside it mints fresh ids.
func (b *Builder) nextLabelPair() (thenID, reserved int) {
	thenID = b.labelCount + 1
	reserved = b.labelCount + 2
	return
}

func (b *Builder) buildFunction(fn *ast.Function) *Function {
	f := &Function{Name: fn.Name}
	b.vars.addScope()
	for _, p := range fn.Params {
		b.vars.declare(p.Name, p.Type)
	}
	b.lowerBlockBody(f, fn.Body)
	f.CloseLabel()
	b.vars.endScope()
	return f
}

func (b *Builder) lowerBlockBody(f *Function, blk *ast.Block) {
	for _, s := range blk.Stmts {
		b.lowerStmt(f, s)
	}
}

func (b *Builder) lowerStmt(f *Function, n ast.Node) {
	switch v := n.(type) {
	case *ast.Block:
		b.vars.addScope()
		b.lowerBlockBody(f, v)
		b.vars.endScope()
	case *ast.VarDecl:
		b.lowerVarDecl(f, v)
	case *ast.ExprStmt:
		b.lowerExpr(f, v.Expr)
		f.Emit(Instruction{Kind: InsPop})
	case *ast.If:
		b.lowerIf(f, v)
	case *ast.For:
		// Loop control is not lowered in this minimal core; the iterable
		// and body are still walked so every temporary they reference
		// gets an instruction, matching the checker's own "recognized
		// but not lowered beyond type propagation" treatment.
		b.lowerExpr(f, v.Iter)
		b.vars.addScope()
		b.lowerBlockBody(f, v.Body)
		b.vars.endScope()
	case *ast.Ret:
		if v.Value != nil {
			b.lowerExpr(f, v.Value)
		}
	case *ast.Function:
		// A nested function declaration; lowered as its own Function value
		// by the top-level Build loop only when it appears at top level.
		// Nested function statements have no lowering in this core.
	}
}

func (b *Builder) lowerVarDecl(f *Function, v *ast.VarDecl) {
	operand := b.lowerExpr(f, v.Value)
	t := ast.GetType(v)
	f.Emit(Instruction{Kind: InsVarDecl, Name: v.Name, Oper: operand, Type: t})
	b.vars.declare(v.Name, t)
	f.Emit(Instruction{Kind: InsPop})
}

// lowerExpr lowers n, emitting whatever TmpNode instructions it needs into
// f's currently active stream, and returns the operand a parent should use
// to reference the result.
func (b *Builder) lowerExpr(f *Function, n ast.Node) TmpChild {
	switch v := n.(type) {
	case *ast.NumberLit:
		return LiteralChild(v.Text, ast.GetType(v))
	case *ast.FloatLit:
		return LiteralChild(v.Text, ast.GetType(v))
	case *ast.StringLit:
		return LiteralChild(v.Value, ast.GetType(v))
	case *ast.BoolLit:
		text := "false"
		if v.Value {
			text = "true"
		}
		return LiteralChild(text, ast.GetType(v))
	case *ast.ArrayLit:
		return b.lowerArrayLit(f, v)
	case *ast.VarGet:
		t := ast.GetType(v)
		id := b.nextTmp()
		node := &TmpNode{Kind: NodeValue, ID: id, Type: t, Value: LoadVarChild(v.Name, t)}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		return TmpRefChild(id, t)
	case *ast.Binary:
		left := b.lowerExpr(f, v.Left)
		right := b.lowerExpr(f, v.Right)
		t := ast.GetType(v)
		id := b.nextTmp()
		node := &TmpNode{Kind: NodeBinary, ID: id, Type: t, Left: left, Right: right, BinOp: toSSIRBinaryOp(v.Op)}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		return TmpRefChild(id, t)
	case *ast.Logical:
		left := b.lowerExpr(f, v.Left)
		right := b.lowerExpr(f, v.Right)
		t := ast.GetType(v)
		id := b.nextTmp()
		node := &TmpNode{Kind: NodeLogical, ID: id, Type: t, Left: left, Right: right, LogOp: toSSIRLogicalOp(v.Op)}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		return TmpRefChild(id, t)
	case *ast.Unary:
		operand := b.lowerExpr(f, v.Operand)
		t := ast.GetType(v)
		id := b.nextTmp()
		node := &TmpNode{Kind: NodeUnary, ID: id, Type: t, Operand: operand, UnOp: toSSIRUnaryOp(v.Op)}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		return TmpRefChild(id, t)
	case *ast.Grouping:
		inner := b.lowerExpr(f, v.Inner)
		t := ast.GetType(v)
		id := b.nextTmp()
		node := &TmpNode{Kind: NodeGrouping, ID: id, Type: t, Value: inner}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		return TmpRefChild(id, t)
	case *ast.GetPtr:
		vg, _ := v.Operand.(*ast.VarGet)
		t := ast.GetType(v)
		id := b.nextTmp()
		var value TmpChild
		if vg != nil {
			value = LoadVarChild(vg.Name, t)
		}
		node := &TmpNode{Kind: NodeValue, ID: id, Type: t, Value: value}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		return TmpRefChild(id, t)
	case *ast.Assign:
		value := b.lowerExpr(f, v.Value)
		t := ast.GetType(v)
		id := b.nextTmp()
		node := &TmpNode{Kind: NodeAssign, ID: id, Type: t, Value: value}
		f.Emit(Instruction{Kind: InsTmpNode, Node: node})
		f.Emit(Instruction{Kind: InsVarAssign, Name: v.Name, Oper: TmpRefChild(id, t), Type: t})
		return TmpRefChild(id, t)
	default:
		return NoneChild()
	}
}

// lowerArrayLit lowers each element for its side-effecting instructions (so
// every temporary an element expression references still gets recorded) and
// returns the first element's operand as a representative value — array
// literals are not independently referenced in this minimal core outside a
// VarDecl initializer, which reads lit.Elems directly at the AST level
// instead of through this return value.
func (b *Builder) lowerArrayLit(f *Function, lit *ast.ArrayLit) TmpChild {
	var first TmpChild
	for i, e := range lit.Elems {
		c := b.lowerExpr(f, e)
		if i == 0 {
			first = c
		}
	}
	return first
}

// lowerIf lowers an if/else by reserving a pair of label ids: one for the
// then-arm and a trailing join label every arm jumps to.
func (b *Builder) lowerIf(f *Function, n *ast.If) {
	reverseBinary(n.Cond)

	condNode := b.lowerCondition(f, n.Cond)
	f.Emit(Instruction{Kind: InsIf, Node: condNode})

	if n.Else != nil {
		b.lowerElseArm(f, n.Else)
	}

	thenID, reserved := b.nextLabelPair()
	b.labelCount += 2
	f.Emit(Instruction{Kind: InsJump, JumpTarget: reserved})

	f.OpenLabel(thenID)
	b.vars.addScope()
	b.lowerBlockBody(f, n.Then)
	b.vars.endScope()
	f.Emit(Instruction{Kind: InsJump, JumpTarget: reserved})
	f.CloseLabel()

	f.OpenLabel(reserved)
	f.Emit(Instruction{Kind: InsPop})
}

func (b *Builder) lowerElseArm(f *Function, n ast.Node) {
	switch v := n.(type) {
	case *ast.Block:
		b.vars.addScope()
		b.lowerBlockBody(f, v)
		b.vars.endScope()
	case *ast.If:
		b.lowerIf(f, v)
	}
}

// lowerCondition enters "condition context": sub-operands of a top-level
// comparison are lowered normally into instructions, but the
// comparison itself is captured into a scratch TmpNode returned to the
// caller instead of being appended to f's stream.
func (b *Builder) lowerCondition(f *Function, cond ast.Node) *TmpNode {
	if bin, ok := cond.(*ast.Binary); ok {
		left := b.lowerExpr(f, bin.Left)
		right := b.lowerExpr(f, bin.Right)
		t := ast.GetType(bin)
		id := b.nextTmp()
		return &TmpNode{Kind: NodeBinary, ID: id, Type: t, Left: left, Right: right, BinOp: toSSIRBinaryOp(bin.Op)}
	}
	operand := b.lowerExpr(f, cond)
	t := ast.GetType(cond)
	id := b.nextTmp()
	return &TmpNode{Kind: NodeValue, ID: id, Type: t, Value: operand}
}

// reverseBinary is the condition inversion applied to an if's test before
// lowering: depth-first over nested Binary nodes, flipping only comparison
// operators (Equal<->NotEqual, Greater<->LessEq, GreaterEq<->Less). Logical,
// Grouping and Unary structure is recursed into but never itself flipped —
// only a bare comparison changes the jump that falls through.
func reverseBinary(n ast.Node) {
	switch v := n.(type) {
	case *ast.Binary:
		reverseBinary(v.Left)
		reverseBinary(v.Right)
		if v.Op.IsComparison() {
			v.Op = v.Op.Reversed()
		}
	case *ast.Logical:
		reverseBinary(v.Left)
		reverseBinary(v.Right)
	case *ast.Grouping:
		reverseBinary(v.Inner)
	case *ast.Unary:
		reverseBinary(v.Operand)
	}
}

func toSSIRBinaryOp(o ast.BinaryOp) BinaryOp {
	switch o {
	case ast.Add:
		return Add
	case ast.Sub:
		return Sub
	case ast.Mul:
		return Mul
	case ast.Div:
		return Div
	case ast.Greater:
		return Greater
	case ast.GreaterEq:
		return GreaterEq
	case ast.Less:
		return Less
	case ast.LessEq:
		return LessEq
	case ast.Equal:
		return Equal
	case ast.NotEqual:
		return NotEqual
	default:
		return Add
	}
}

func toSSIRLogicalOp(o ast.LogicalOp) LogicalOp {
	if o == ast.Or {
		return Or
	}
	return And
}

func toSSIRUnaryOp(o ast.UnaryOp) UnaryOp {
	if o == ast.Negate {
		return Negate
	}
	return Not
}
