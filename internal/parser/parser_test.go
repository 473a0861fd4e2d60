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
package parser

import (
	"testing"

	"github.com/falcon-lang/falcon/internal/ast"
)

func mustFunc(t *testing.T, decls []ast.Node) *ast.Function {
	t.Helper()
	if len(decls) == 0 {
		t.Fatalf("expected at least one declaration, got none")
	}
	fn, ok := decls[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected *ast.Function, got %T", decls[0])
	}
	return fn
}

func TestParseSimpleFunction(t *testing.T) {
	decls, diags := Parse(`func main { x := 1 }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	if fn.Name != "main" {
		t.Fatalf("expected name main, got %s", fn.Name)
	}
	if len(fn.Body.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(fn.Body.Stmts))
	}
	decl, ok := fn.Body.Stmts[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("expected *ast.VarDecl, got %T", fn.Body.Stmts[0])
	}
	if decl.Name != "x" || decl.DTypeStr != "" {
		t.Fatalf("expected implicit decl named x, got %+v", decl)
	}
}

func TestParseFunctionWithParamsAndReturn(t *testing.T) {
	decls, diags := Parse(`func add(a: i32, b: i32) -> i32 { ret a + b }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.Params[0].Name != "a" || fn.Params[0].DTypeStr != "i32" {
		t.Fatalf("unexpected first param: %+v", fn.Params[0])
	}
	if fn.RetTypeStr != "i32" {
		t.Fatalf("expected return type i32, got %q", fn.RetTypeStr)
	}
}

func TestPrecedenceLadder(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the Binary root is Add.
	decls, diags := Parse(`func main { x := 1 + 2 * 3 }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	bin, ok := decl.Value.(*ast.Binary)
	if !ok {
		t.Fatalf("expected *ast.Binary root, got %T", decl.Value)
	}
	if bin.Op != ast.Add {
		t.Fatalf("expected root op Add, got %v", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.Binary)
	if !ok || rhs.Op != ast.Mul {
		t.Fatalf("expected right-hand side to be a Mul binary, got %#v", bin.Right)
	}
}

func TestAssignmentIsRightAssociativeOverVarGetOnly(t *testing.T) {
	decls, diags := Parse(`func main { x := 1; x = 2 }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	stmt, ok := fn.Body.Stmts[1].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", fn.Body.Stmts[1])
	}
	assign, ok := stmt.Expr.(*ast.Assign)
	if !ok || assign.Name != "x" {
		t.Fatalf("expected Assign(x), got %#v", stmt.Expr)
	}
}

func TestInvalidAssignmentTargetProducesDiagnostic(t *testing.T) {
	_, diags := Parse(`func main { 1 + 1 = 2 }`)
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for invalid assignment target")
	}
}

func TestBareBraceOutsideArrayContextIsRejected(t *testing.T) {
	_, diags := Parse(`func main { x := {1, 2} }`)
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for a bare '{' outside array-parse context")
	}
}

func TestArrayLiteralInsideExplicitVarDeclIsAccepted(t *testing.T) {
	decls, diags := Parse(`func main { var x: i32[3] = {1, 2, 3} }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	lit, ok := decl.Value.(*ast.ArrayLit)
	if !ok {
		t.Fatalf("expected *ast.ArrayLit, got %T", decl.Value)
	}
	if len(lit.Elems) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(lit.Elems))
	}
	if decl.ArraySize != 3 {
		t.Fatalf("expected declared array size 3, got %d", decl.ArraySize)
	}
}

func TestNestedArrayLiteralIsRejected(t *testing.T) {
	_, diags := Parse(`func main { var x: i32[2] = {{1}, 2} }`)
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for a nested array literal")
	}
	found := false
	for _, d := range diags {
		if d.Message == "Nested arrays are not supported" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected 'Nested arrays are not supported' diagnostic, got %v", diags)
	}
}

func TestIfElseParses(t *testing.T) {
	decls, diags := Parse(`func main { z := 1; if z == 2 { z = 3 } else { z = 4 } }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	ifStmt, ok := fn.Body.Stmts[1].(*ast.If)
	if !ok {
		t.Fatalf("expected *ast.If, got %T", fn.Body.Stmts[1])
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected an else block")
	}
}

func TestForLoopParses(t *testing.T) {
	decls, diags := Parse(`func main { for i in arr { x := i } }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	loop, ok := fn.Body.Stmts[0].(*ast.For)
	if !ok {
		t.Fatalf("expected *ast.For, got %T", fn.Body.Stmts[0])
	}
	if loop.VarName != "i" {
		t.Fatalf("expected loop var i, got %s", loop.VarName)
	}
}

func TestGetPtrOnIdentifier(t *testing.T) {
	decls, diags := Parse(`func main { x := &y }`)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	fn := mustFunc(t, decls)
	decl := fn.Body.Stmts[0].(*ast.VarDecl)
	if _, ok := decl.Value.(*ast.GetPtr); !ok {
		t.Fatalf("expected *ast.GetPtr, got %T", decl.Value)
	}
}

func TestSynchronizeRecoversAndKeepsParsingDeclarations(t *testing.T) {
	// The invalid token forces a diagnostic; synchronize() then resumes at
	// the next statement-starting keyword (`ret`) rather than swallowing the
	// rest of the block, so both functions still come out as top-level decls.
	src := `func a { x := @ ret 1 }
func b { y := 2 }`
	decls, diags := Parse(src)
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic for the invalid token")
	}
	if len(decls) != 2 {
		t.Fatalf("expected recovery to still produce both functions, got %d decls", len(decls))
	}
	if decls[1].(*ast.Function).Name != "b" {
		t.Fatalf("expected second function 'b' to have been recovered")
	}
	fnA := decls[0].(*ast.Function)
	if len(fnA.Body.Stmts) != 2 {
		t.Fatalf("expected fn a to keep both its statements after recovery, got %d", len(fnA.Body.Stmts))
	}
}

func TestUseAndModAreAcceptedButNotLowered(t *testing.T) {
	decls, diags := Parse("use foo\nmod bar\nfunc main { x := 1 }")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(decls) != 1 {
		t.Fatalf("expected only the function declaration to survive, got %d", len(decls))
	}
}

func TestDiagnosticStringFormat(t *testing.T) {
	_, diags := Parse("func main { 1 + 1 = 2 }")
	if len(diags) == 0 {
		t.Fatalf("expected a diagnostic")
	}
	s := diags[0].String()
	if s == "" {
		t.Fatalf("expected non-empty diagnostic rendering")
	}
}
