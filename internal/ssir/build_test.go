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
	"testing"

	"github.com/falcon-lang/falcon/internal/ast"
	"github.com/falcon-lang/falcon/internal/check"
	"github.com/falcon-lang/falcon/internal/parser"
)

func buildFrom(t *testing.T, src string) []*Function {
	t.Helper()
	decls, diags := parser.Parse(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	check.New().Check(decls)
	return Build(decls)
}

func TestIfElseInvertsConditionAndLaysOutLabels(t *testing.T) {
	fns := buildFrom(t, `func main { z := 111; if z == 222 { z = 333 } else { z = 444 } }`)
	if len(fns) != 1 {
		t.Fatalf("expected 1 function, got %d", len(fns))
	}
	f := fns[0]

	var ifIns *Instruction
	for i := range f.Instructions {
		if f.Instructions[i].Kind == InsIf {
			ifIns = &f.Instructions[i]
			break
		}
	}
	if ifIns == nil {
		t.Fatalf("expected an If instruction in the entry stream")
	}
	if ifIns.Node.BinOp != NotEqual {
		t.Fatalf("expected the If condition to carry the inverted NotEqual, got %v", ifIns.Node.BinOp)
	}

	// Exactly one label carries the then-arm, and the builder opens a second
	// (the reserved join point) that starts with a Pop.
	if len(f.Labels) != 2 {
		t.Fatalf("expected exactly 2 labels (then-arm + join point), got %d", len(f.Labels))
	}
	join := f.Labels[1]
	if len(join.Instructions) == 0 || join.Instructions[0].Kind != InsPop {
		t.Fatalf("expected the join label to start with Pop, got %v", join.Instructions)
	}
}

func TestIfElseLabelIDsAreStrictlyIncreasing(t *testing.T) {
	fns := buildFrom(t, `func main { z := 1; if z == 2 { z = 3 } else { z = 4 } }`)
	f := fns[0]
	prev := 0
	for _, l := range f.Labels {
		if l.ID <= prev {
			t.Fatalf("label ids not strictly increasing: %d after %d", l.ID, prev)
		}
		prev = l.ID
	}
}

func TestArrayLiteralVarDeclCarriesTotalByteSize(t *testing.T) {
	fns := buildFrom(t, `func main { var x: i32[] = {2, 2, 3} }`)
	f := fns[0]
	if len(f.Instructions) == 0 || f.Instructions[0].Kind != InsVarDecl {
		t.Fatalf("expected first instruction to be VarDecl, got %v", f.Instructions)
	}
	if f.Instructions[0].Type.Size != 12 {
		t.Fatalf("expected array VarDecl byte-size 12, got %d", f.Instructions[0].Type.Size)
	}
}

func TestTmpRefsOnlyReferenceEarlierIDs(t *testing.T) {
	fns := buildFrom(t, `func main { x := 10 + 5; z := x + 50 - 1; z = 4210 }`)
	for _, f := range fns {
		seen := map[int]bool{}
		for _, ins := range f.Instructions {
			if ins.Kind != InsTmpNode {
				continue
			}
			checkRefSeen(t, ins.Node.Left, seen)
			checkRefSeen(t, ins.Node.Right, seen)
			checkRefSeen(t, ins.Node.Operand, seen)
			checkRefSeen(t, ins.Node.Value, seen)
			seen[ins.Node.ID] = true
		}
	}
}

func checkRefSeen(t *testing.T, c TmpChild, seen map[int]bool) {
	t.Helper()
	if c.Kind != ChildTmpRef {
		return
	}
	if !seen[c.Ref] {
		t.Fatalf("TmpRef(%d) referenced before its defining TmpNode", c.Ref)
	}
}

func TestPopFollowsEveryExprStmtAndVarDecl(t *testing.T) {
	fns := buildFrom(t, `func main { x := 1; x = 2 }`)
	f := fns[0]
	pops := 0
	for _, ins := range f.Instructions {
		if ins.Kind == InsPop {
			pops++
		}
	}
	if pops != 2 {
		t.Fatalf("expected 2 Pop instructions (one per statement), got %d", pops)
	}
}

func TestReverseBinaryAppliedTwiceIsIdentity(t *testing.T) {
	ops := []ast.BinaryOp{ast.Equal, ast.NotEqual, ast.Greater, ast.GreaterEq, ast.Less, ast.LessEq}
	for _, op := range ops {
		if op.Reversed().Reversed() != op {
			t.Fatalf("reversing %v twice did not return the identity", op)
		}
	}
}

func TestReverseBinaryRecursesIntoLogicalWithoutFlippingIt(t *testing.T) {
	decls, diags := parser.Parse(`func main { a := 1; b := 2; if a == 1 && b == 2 { a = 0 } }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected parse diagnostics: %v", diags)
	}
	check.New().Check(decls)
	fn := decls[0].(*ast.Function)
	ifNode := fn.Body.Stmts[2].(*ast.If)
	logical := ifNode.Cond.(*ast.Logical)
	reverseBinary(logical)
	if logical.Op != ast.And {
		t.Fatalf("expected Logical op to stay And, got %v", logical.Op)
	}
	left := logical.Left.(*ast.Binary)
	right := logical.Right.(*ast.Binary)
	if left.Op != ast.NotEqual || right.Op != ast.NotEqual {
		t.Fatalf("expected both comparisons inside the logical to be reversed to NotEqual, got %v and %v", left.Op, right.Op)
	}
}
