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

// Package check is the single-pass type checker: it walks the AST top-down,
// mutating type tags in place, and aborts fatally (via internal/cerr) on the
// first type error. Recovery across type errors is not attempted — a type
// error means the AST's invariants can no longer be trusted, so the checker
// raises through a panic rather than collecting diagnostics.
package check

import (
	"strconv"
	"strings"

	"github.com/falcon-lang/falcon/internal/ast"
	"github.com/falcon-lang/falcon/internal/cerr"
	"github.com/falcon-lang/falcon/internal/types"
)

// scopedLocal is one entry of the checker's flat locals map plus the block
// depth it was declared at, so block exit can remove exactly the right
// entries.
type scopedLocal struct {
	typ   *types.Type
	depth int
}

// Checker holds the type environment and the locals table threaded through
// one Check call. A fresh Checker is expected per compilation unit.
type Checker struct {
	env    *types.Env
	locals map[string]scopedLocal
	depth  int
}

// New builds a Checker with a fresh, built-in-seeded type environment.
func New() *Checker {
	return &Checker{env: types.NewEnv(), locals: make(map[string]scopedLocal)}
}

// Check type-checks every top-level declaration, mutating their AST in
// place. Panics (caught by internal/cerr.Guard at the pipeline boundary) on
// the first fatal type error.
func (c *Checker) Check(decls []ast.Node) {
	for _, d := range decls {
		if fn, ok := d.(*ast.Function); ok {
			c.checkFunction(fn)
		}
	}
}

func (c *Checker) fatal(format string, args ...interface{}) {
	panic(cerr.New(format, args...))
}

func (c *Checker) declareLocal(name string, t *types.Type) {
	c.locals[name] = scopedLocal{typ: t, depth: c.depth}
}

func (c *Checker) resolveLocal(name string) (*types.Type, bool) {
	l, ok := c.locals[name]
	if !ok {
		return nil, false
	}
	return l.typ, true
}

func (c *Checker) enterScope() { c.depth++ }

// exitScope removes every local declared at the scope being closed, tracking
// locals created in the current block and dropping them at block exit.
func (c *Checker) exitScope() {
	for name, l := range c.locals {
		if l.depth == c.depth {
			delete(c.locals, name)
		}
	}
	c.depth--
}

func (c *Checker) checkFunction(fn *ast.Function) {
	var retType *types.Type
	if fn.RetTypeStr != "" {
		retType = c.env.Resolve(fn.RetTypeStr)
	} else {
		retType = c.env.Resolve("void")
	}
	ast.SetType(fn, retType.Tagged())

	c.enterScope()
	for i := range fn.Params {
		pt := c.env.Resolve(fn.Params[i].DTypeStr)
		fn.Params[i].Size = pt.Size
		fn.Params[i].Type = pt.Tagged()
		c.declareLocal(fn.Params[i].Name, pt)
	}
	c.checkBlockBody(fn.Body)
	c.exitScope()
}

// checkBlockBody type-checks a block's statements without opening its own
// extra scope layer — used for function/for/if bodies where the scope is
// already owned by the caller. checkStmt opens/closes scope for a *bare*
// Block statement.
func (c *Checker) checkBlockBody(b *ast.Block) {
	for _, s := range b.Stmts {
		c.checkStmt(s)
	}
}

func (c *Checker) checkStmt(n ast.Node) {
	switch v := n.(type) {
	case *ast.Block:
		c.enterScope()
		c.checkBlockBody(v)
		c.exitScope()
	case *ast.VarDecl:
		c.checkVarDecl(v)
	case *ast.If:
		c.checkIf(v)
	case *ast.For:
		c.checkFor(v)
	case *ast.Ret:
		if v.Value != nil {
			c.checkExpr(v.Value)
		}
	case *ast.ExprStmt:
		c.checkExpr(v.Expr)
	case *ast.Function:
		c.checkFunction(v)
	default:
		c.fatal("unrecognized statement node %T", n)
	}
}

func (c *Checker) checkIf(n *ast.If) {
	condType := c.checkExpr(n.Cond)
	if condType.Kind != types.Bool {
		c.fatal("if condition must be bool, found %s", condType)
	}
	c.enterScope()
	c.checkBlockBody(n.Then)
	c.exitScope()
	if n.Else != nil {
		switch e := n.Else.(type) {
		case *ast.Block:
			c.enterScope()
			c.checkBlockBody(e)
			c.exitScope()
		case *ast.If:
			c.checkIf(e)
		}
	}
}

func (c *Checker) checkFor(n *ast.For) {
	iterType := c.checkExpr(n.Iter)
	c.enterScope()
	// The loop variable's element type is not separately modeled in this
	// minimal core; it inherits the iterable's tag.
	loopT := types.New(n.VarName, iterType.Size, iterType.Kind, iterType.Signed)
	c.declareLocal(n.VarName, loopT)
	c.checkBlockBody(n.Body)
	c.exitScope()
}

func (c *Checker) checkVarDecl(v *ast.VarDecl) {
	if v.DTypeStr == "" {
		// Implicit `name := expr`: infer from the value.
		valType := c.checkExpr(v.Value)
		ast.SetType(v, valType)
		t := types.New(v.Name, valType.Size, valType.Kind, valType.Signed)
		c.declareLocal(v.Name, t)
		return
	}

	declType := c.env.Resolve(v.DTypeStr)

	if v.IsArray {
		lit, ok := v.Value.(*ast.ArrayLit)
		if !ok {
			c.fatal("variable %s declared as array but initializer is not an array literal", v.Name)
		}
		// v.ArraySize is 0 when the declaration used the bracket form with no
		// explicit N (`var x: i32[] = {...}`); the length is then inferred
		// from the literal instead of cross-checked against it.
		if v.ArraySize > 0 && len(lit.Elems) != v.ArraySize {
			c.fatal("array literal for %s has length %d, declared size %d", v.Name, len(lit.Elems), v.ArraySize)
		}
		length := v.ArraySize
		if length == 0 {
			length = len(lit.Elems)
		}
		for _, e := range lit.Elems {
			c.checkExpr(e)
			overwriteType(e, declType.Tagged(), c.env)
		}
		lit.ElemType = declType.Name
		total := declType.Tagged()
		total.Size = declType.Size * length
		ast.SetType(lit, total)
		ast.SetType(v, total)
		arrT := types.New(v.Name, total.Size, declType.Kind, declType.Signed)
		c.declareLocal(v.Name, arrT)
		return
	}

	valType := c.checkExpr(v.Value)
	checkKindCompat(declType.Tagged(), valType, v.Name)

	if declType.Kind == types.Numeric || declType.Kind == types.Float {
		overwriteType(v.Value, declType.Tagged(), c.env)
	}

	ast.SetType(v, declType.Tagged())
	c.declareLocal(v.Name, declType)
}

// checkKindCompat enforces the assignment/vardecl kind rule: Numeric accepts
// only Numeric, Float accepts only Float (overwriteType narrows the
// literal's size afterward), everything else requires full equality.
func checkKindCompat(declared, actual types.TaggedType, who string) {
	if declared.Kind == types.Numeric && actual.Kind == types.Numeric {
		return
	}
	if declared.Kind == types.Float && actual.Kind == types.Float {
		return
	}
	if declared.Kind != actual.Kind || declared.Size != actual.Size || declared.IsSigned() != actual.IsSigned() {
		panic(cerr.New("type mismatch for %s: declared %s, value is %s", who, declared, actual))
	}
}

func (c *Checker) checkExpr(n ast.Node) types.TaggedType {
	switch v := n.(type) {
	case *ast.NumberLit:
		t := c.env.Resolve("i32").Tagged()
		ast.SetType(v, t)
		return t
	case *ast.FloatLit:
		t := c.env.Resolve("f64").Tagged()
		ast.SetType(v, t)
		return t
	case *ast.BoolLit:
		t := c.env.Resolve("bool").Tagged()
		ast.SetType(v, t)
		return t
	case *ast.StringLit:
		strT := c.env.DeclareString(len(v.Value))
		ast.SetType(v, strT.Tagged())
		return strT.Tagged()
	case *ast.ArrayLit:
		return c.checkArrayLitBare(v)
	case *ast.VarGet:
		t, ok := c.resolveLocal(v.Name)
		if !ok {
			c.fatal("undefined variable %s", v.Name)
		}
		ast.SetType(v, t.Tagged())
		return t.Tagged()
	case *ast.Binary:
		return c.checkBinary(v)
	case *ast.Logical:
		return c.checkLogical(v)
	case *ast.Unary:
		return c.checkUnary(v)
	case *ast.Grouping:
		t := c.checkExpr(v.Inner)
		ast.SetType(v, t)
		return t
	case *ast.GetPtr:
		return c.checkGetPtr(v)
	case *ast.Assign:
		return c.checkAssign(v)
	default:
		c.fatal("unrecognized expression node %T", n)
		return types.Zero
	}
}

// checkArrayLitBare handles an array literal encountered outside an explicit
// `var x: T[N] =` context (e.g. nested use) — still type-checked for
// consistency, though nested arrays are rejected at parse time in the
// common case.
func (c *Checker) checkArrayLitBare(lit *ast.ArrayLit) types.TaggedType {
	var elemType types.TaggedType
	for i, e := range lit.Elems {
		t := c.checkExpr(e)
		if i == 0 {
			elemType = t
		}
	}
	total := elemType
	total.Size = elemType.Size * len(lit.Elems)
	ast.SetType(lit, total)
	return total
}

func (c *Checker) checkBinary(b *ast.Binary) types.TaggedType {
	lt := c.checkExpr(b.Left)
	rt := c.checkExpr(b.Right)

	isPtr := func(t types.TaggedType) bool { return t.Kind == types.Numeric && t.Size == 8 && !t.IsSigned() }
	switch {
	case isPtr(lt) && rt.Kind == types.Numeric:
		// ptr + Numeric is legal regardless of order.
	case isPtr(rt) && lt.Kind == types.Numeric:
	case lt.Kind != rt.Kind:
		c.fatal("Binary operands are of different types: %s vs %s", lt, rt)
	}

	wide := lt
	if rt.Size > lt.Size {
		wide = rt
	}

	var result types.TaggedType
	if b.Op.IsComparison() {
		result = c.env.Resolve("bool").Tagged()
	} else {
		if wide.Kind != types.Numeric && wide.Kind != types.Float {
			c.fatal("arithmetic requires numeric or float operands, found %s", wide)
		}
		result = wide
	}
	ast.SetType(b, result)
	return result
}

func (c *Checker) checkLogical(l *ast.Logical) types.TaggedType {
	lt := c.checkExpr(l.Left)
	rt := c.checkExpr(l.Right)
	if lt.Kind != rt.Kind || lt.Size != rt.Size || lt.IsSigned() != rt.IsSigned() {
		c.fatal("logical operands must have identical type, found %s and %s", lt, rt)
	}
	ast.SetType(l, lt)
	return lt
}

func (c *Checker) checkUnary(u *ast.Unary) types.TaggedType {
	operandType := c.checkExpr(u.Operand)
	var result types.TaggedType
	if u.Op == ast.Not {
		result = c.env.Resolve("bool").Tagged()
	} else {
		result = operandType
	}
	ast.SetType(u, result)
	return result
}

func (c *Checker) checkGetPtr(g *ast.GetPtr) types.TaggedType {
	if _, ok := g.Operand.(*ast.VarGet); !ok {
		c.fatal("address-of operand must be an identifier")
	}
	c.checkExpr(g.Operand)
	ptrT := c.env.Resolve("ptr").Tagged()
	ast.SetType(g, ptrT)
	return ptrT
}

func (c *Checker) checkAssign(a *ast.Assign) types.TaggedType {
	declType, ok := c.resolveLocal(a.Name)
	if !ok {
		c.fatal("undefined variable %s", a.Name)
	}
	valType := c.checkExpr(a.Value)
	checkKindCompat(declType.Tagged(), valType, a.Name)
	ast.SetType(a, declType.Tagged())
	return declType.Tagged()
}

// overwriteType descends through Binary/Unary/Logical/Assign/Grouping and
// replaces the size on Number/Float literal nodes to honor an explicit
// declaration's annotation, checking that the literal's decimal text does
// not overflow that width.
func overwriteType(n ast.Node, target types.TaggedType, env *types.Env) {
	switch v := n.(type) {
	case *ast.NumberLit:
		if !fitsIntWidth(v.Text, target.Size, target.IsSigned()) {
			panic(cerr.New("integer literal %s overflows %s", v.Text, target))
		}
		ast.SetType(v, target)
	case *ast.FloatLit:
		if !fitsFloatWidth(v.Text, target.Size) {
			panic(cerr.New("float literal %s overflows %s", v.Text, target))
		}
		ast.SetType(v, target)
	case *ast.Binary:
		overwriteType(v.Left, target, env)
		overwriteType(v.Right, target, env)
		ast.SetType(v, target)
	case *ast.Logical:
		overwriteType(v.Left, target, env)
		overwriteType(v.Right, target, env)
	case *ast.Unary:
		overwriteType(v.Operand, target, env)
		if v.Op == ast.Negate {
			ast.SetType(v, target)
		}
	case *ast.Assign:
		overwriteType(v.Value, target, env)
	case *ast.Grouping:
		overwriteType(v.Inner, target, env)
		ast.SetType(v, target)
	}
}

func fitsIntWidth(text string, size int, signed bool) bool {
	bits := size * 8
	if signed {
		v, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return false
		}
		min := int64(-1) << (bits - 1)
		max := (int64(1) << (bits - 1)) - 1
		return v >= min && v <= max
	}
	v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return false
	}
	if bits >= 64 {
		return true
	}
	max := (uint64(1) << uint(bits)) - 1
	return v <= max
}

func fitsFloatWidth(text string, size int) bool {
	bitSize := 64
	if size == 4 {
		bitSize = 32
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(text), bitSize)
	return err == nil
}
