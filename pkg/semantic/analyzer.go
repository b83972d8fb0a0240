// Copyright the pxc contributors.
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
package semantic

import (
	"github.com/pxlang/pxc/pkg/ast"
	"github.com/pxlang/pxc/pkg/diagnostics"
	"github.com/pxlang/pxc/pkg/token"
)

// Analyzer walks a parsed program twice: a first pass collects top-level
// declarations (functions, structs, classes, objects, globals) so later
// forward references resolve, then a second pass analyzes every statement
// and expression body (spec.md §4.2, "two-phase analysis").
type Analyzer struct {
	diags *diagnostics.Registry

	global  *Scope
	current *Scope

	// compoundMembers maps a struct/class name to its member name -> type
	// table, used by field access (->) and scope access (::) checking.
	compoundMembers map[string]map[string]*ast.TypeDescriptor

	// WarningsEnabled gates every WARNING-severity diagnostic (shadowing,
	// unused symbols, uninitialized reads), per spec.md §9's
	// warnings_enabled policy (default false).
	WarningsEnabled bool
	// ExitOnError stops analysis at the first ERROR/FATAL diagnostic
	// instead of continuing to find more, per spec.md §9's
	// exit_on_error process-wide policy.
	ExitOnError bool

	halted bool
}

// NewAnalyzer constructs an Analyzer reporting into diags.
func NewAnalyzer(diags *diagnostics.Registry) *Analyzer {
	return &Analyzer{
		diags:           diags,
		compoundMembers: make(map[string]map[string]*ast.TypeDescriptor),
	}
}

func (a *Analyzer) errorf(tmpl diagnostics.Template, line, col int, format string, args ...any) {
	a.diags.Reportf(diagnostics.Error, tmpl, "semantic", line, col, 1, format, args...)

	if a.ExitOnError {
		a.halted = true
	}
}

func (a *Analyzer) warnf(tmpl diagnostics.Template, line, col int, format string, args ...any) {
	if !a.WarningsEnabled {
		return
	}

	a.diags.Reportf(diagnostics.Warning, tmpl, "semantic", line, col, 1, format, args...)
}

// GlobalScope returns the root of the retained scope tree, populated only
// after Analyze has run. Used by pkg/render to dump the symbol table.
func (a *Analyzer) GlobalScope() *Scope {
	return a.global
}

// Analyze runs the full two-phase analysis over a Program node.
func (a *Analyzer) Analyze(prog *ast.Node) {
	a.global = NewScope(GlobalScope, nil)
	a.current = a.global

	a.collectTopLevel(prog)

	for _, decl := range prog.Extra {
		if a.halted {
			return
		}

		a.analyzeTopDecl(decl)
	}

	a.checkUsed(a.global)
}

// declare binds sym into scope, reporting REDECLARATION for a same-scope
// clash and a shadowing warning when an enclosing scope already binds the
// name. Returns false if the binding was rejected.
func (a *Analyzer) declare(scope *Scope, sym *Symbol) bool {
	if existing, ok := scope.declareLocal(sym.Name); ok {
		a.errorf(diagnostics.TmplRedeclaration, sym.DeclLine, sym.DeclCol,
			"Redeclaration of symbol '%s' (previous declaration at line %d)", sym.Name, existing.DeclLine)

		return false
	}

	if scope.Parent != nil {
		if enclosing, _ := scope.Parent.Resolve(sym.Name); enclosing != nil {
			a.warnf(diagnostics.TmplShadowedSymbol, sym.DeclLine, sym.DeclCol,
				"%q shadows a declaration from an enclosing scope (line %d)", sym.Name, enclosing.DeclLine)
		}
	}

	scope.Symbols[sym.Name] = sym

	return true
}

func (a *Analyzer) collectTopLevel(prog *ast.Node) {
	for _, decl := range prog.Extra {
		switch decl.Kind {
		case ast.FuncDecl:
			a.declare(a.global, &Symbol{
				Name: decl.Value, Kind: SymFunc, Type: decl.VariableType, Mutable: false,
				Init: Full, DeclLine: decl.Line, DeclCol: decl.Column, Node: decl,
			})
		case ast.StructDecl, ast.ClassDecl:
			kind := SymStruct
			if decl.Kind == ast.ClassDecl {
				kind = SymClass
			}

			a.declare(a.global, &Symbol{
				Name: decl.Value, Kind: kind, Init: Full,
				DeclLine: decl.Line, DeclCol: decl.Column, Node: decl,
			})

			members := make(map[string]*ast.TypeDescriptor)

			for _, m := range decl.Extra {
				members[m.Value] = m.VariableType
			}

			a.compoundMembers[decl.Value] = members
		case ast.VarDecl, ast.ArrayDecl:
			a.declareVar(a.global, decl, false)
		case ast.ObjDecl:
			a.declare(a.global, &Symbol{
				Name: decl.Value, Kind: SymObj, Type: decl.VariableType, Mutable: true,
				Init: Uninitialized, DeclLine: decl.Line, DeclCol: decl.Column, Node: decl,
			})
		}
	}
}

// declareVar computes the declared/inferred type and initial init-state for
// a var/let/const declaration and binds it into scope. analyzeInit controls
// whether the initializer expression is type-checked here (false during the
// top-level collection pass, which defers body analysis to pass two).  An
// untyped declaration without an initializer defaults to Int; an untyped
// declaration whose initializer is not analyzed here is left without a type.
func (a *Analyzer) declareVar(scope *Scope, decl *ast.Node, analyzeInit bool) {
	var initType *ast.TypeDescriptor

	var initState InitState = Uninitialized

	if decl.DefaultValue != nil && analyzeInit {
		initType, initState = a.evalExpr(decl.DefaultValue, scope)
	}

	if decl.VariableType == nil {
		if initType != nil {
			decl.VariableType = initType
		} else if decl.DefaultValue == nil {
			decl.VariableType = &ast.TypeDescriptor{Name: "Int"}
			a.warnf(diagnostics.TmplImplicitIntType, decl.Line, decl.Column,
				"%q has no declared type; defaulting to Int", decl.Value)
		}
	} else if decl.DefaultValue != nil && analyzeInit && initType != nil && !compatible(decl.VariableType, initType) {
		a.errorf(diagnostics.TmplTypeMismatch, decl.Line, decl.Column,
			"cannot initialize %q of type %s with a value of type %s", decl.Value, typeName(decl.VariableType), typeName(initType))
	}

	mutable := decl.StateModifier != "const" && decl.StateModifier != "let"

	state := Uninitialized

	switch {
	case decl.StateModifier == "const":
		state = ConstantInit
		if decl.DefaultValue == nil {
			a.errorf(diagnostics.TmplUninitializedUse, decl.Line, decl.Column,
				"const %q must be initialized at declaration", decl.Value)
		}
	case decl.DefaultValue != nil:
		state = Full
	}

	a.declare(scope, &Symbol{
		Name: decl.Value, Kind: SymVar, Type: decl.VariableType, Mutable: mutable,
		Init: state, DeclLine: decl.Line, DeclCol: decl.Column, Node: decl,
	})
}

// declareObj binds an `obj name: Type` declaration, checking that Type
// names a known struct/class and type-checking its optional initializer.
func (a *Analyzer) declareObj(scope *Scope, decl *ast.Node) {
	if decl.VariableType != nil && !isBuiltin(decl.VariableType.Name) {
		if _, ok := a.compoundMembers[decl.VariableType.Name]; !ok {
			a.errorf(diagnostics.TmplTypeNotFound, decl.Line, decl.Column,
				"unknown type %q for %q", decl.VariableType.Name, decl.Value)
		}
	}

	state := Uninitialized

	if decl.DefaultValue != nil {
		initType, _ := a.evalExpr(decl.DefaultValue, scope)

		if initType != nil && decl.VariableType != nil && !compatible(decl.VariableType, initType) {
			a.errorf(diagnostics.TmplTypeMismatch, decl.Line, decl.Column,
				"cannot initialize %q of type %s with a value of type %s",
				decl.Value, typeName(decl.VariableType), typeName(initType))
		}

		state = Full
	}

	a.declare(scope, &Symbol{
		Name: decl.Value, Kind: SymObj, Type: decl.VariableType, Mutable: true,
		Init: state, DeclLine: decl.Line, DeclCol: decl.Column, Node: decl,
	})
}

func (a *Analyzer) analyzeTopDecl(decl *ast.Node) {
	switch decl.Kind {
	case ast.VarDecl, ast.ArrayDecl:
		if decl.DefaultValue != nil {
			initType, _ := a.evalExpr(decl.DefaultValue, a.global)
			if initType != nil && decl.VariableType != nil && !compatible(decl.VariableType, initType) {
				a.errorf(diagnostics.TmplTypeMismatch, decl.Line, decl.Column,
					"cannot initialize %q of type %s with a value of type %s",
					decl.Value, typeName(decl.VariableType), typeName(initType))
			}
		}
	case ast.FuncDecl:
		a.analyzeFunc(decl)
	case ast.StructDecl, ast.ClassDecl:
		a.analyzeCompound(decl)
	case ast.ObjDecl:
		if decl.DefaultValue != nil {
			a.evalExpr(decl.DefaultValue, a.global)
		}
	}
}

func (a *Analyzer) analyzeFunc(decl *ast.Node) {
	fnScope := NewScope(FunctionScope, a.global)
	fnScope.FuncReturnType = decl.VariableType

	for _, p := range decl.Params {
		a.declare(fnScope, &Symbol{
			Name: p.Name, Kind: SymParam, Type: p.Type, Mutable: true,
			Init: Full, DeclLine: decl.Line, DeclCol: decl.Column,
		})
	}

	if len(decl.Extra) == 0 {
		return
	}

	body := decl.Extra[0]

	a.analyzeBlock(body, fnScope)

	if decl.VariableType != nil && decl.VariableType.Name != "Void" && !blockAlwaysReturns(body) {
		a.warnf(diagnostics.TmplMissingReturn, decl.Line, decl.Column,
			"function %q may fall off the end without returning a value of type %s", decl.Value, typeName(decl.VariableType))
	}
}

// blockAlwaysReturns is a conservative, purely syntactic check: a block
// guarantees a return only if its last statement is a ReturnStmt, or an
// IfStmt whose both branches guarantee one.
func blockAlwaysReturns(block *ast.Node) bool {
	if block == nil || block.Kind != ast.Block || len(block.Extra) == 0 {
		return false
	}

	last := block.Extra[len(block.Extra)-1]

	return stmtAlwaysReturns(last)
}

func stmtAlwaysReturns(n *ast.Node) bool {
	switch n.Kind {
	case ast.ReturnStmt:
		return true
	case ast.Block:
		return blockAlwaysReturns(n)
	case ast.IfStmt:
		if len(n.Extra) < 2 {
			return false
		}

		return stmtAlwaysReturns(n.Extra[0]) && stmtAlwaysReturns(n.Extra[1])
	default:
		return false
	}
}

func (a *Analyzer) analyzeCompound(decl *ast.Node) {
	scope := NewScope(CompoundScope, a.global)

	for _, m := range decl.Extra {
		if a.halted {
			return
		}

		if m.DefaultValue != nil {
			a.evalExpr(m.DefaultValue, scope)
		}
	}
}

func (a *Analyzer) analyzeBlock(block *ast.Node, parent *Scope) {
	scope := NewScope(BlockScope, parent)

	for _, stmt := range block.Extra {
		if a.halted {
			return
		}

		a.analyzeStmt(stmt, scope)
	}
}

func (a *Analyzer) analyzeStmt(n *ast.Node, scope *Scope) {
	if n == nil || a.halted {
		return
	}

	switch n.Kind {
	case ast.VarDecl, ast.ArrayDecl:
		a.declareVar(scope, n, true)
	case ast.ObjDecl:
		a.declareObj(scope, n)
	case ast.Block:
		a.analyzeBlock(n, scope)
	case ast.IfStmt:
		a.evalExpr(n.Left, scope)

		for _, branch := range n.Extra {
			a.analyzeStmt(branch, scope)
		}
	case ast.WhileStmt:
		a.evalExpr(n.Left, scope)

		loopScope := NewScope(LoopScope, scope)
		a.analyzeStmt(n.Right, loopScope)
	case ast.ForStmt:
		loopScope := NewScope(LoopScope, scope)

		if len(n.Extra) > 0 && n.Extra[0] != nil {
			a.analyzeStmt(n.Extra[0], loopScope)
		}

		if n.Left != nil {
			a.evalExpr(n.Left, loopScope)
		}

		if len(n.Extra) > 1 && n.Extra[1] != nil {
			a.analyzeStmt(n.Extra[1], loopScope)
		}

		a.analyzeStmt(n.Right, loopScope)
	case ast.BreakStmt, ast.ContinueStmt:
		if !scope.InLoop() {
			kw := "break"
			if n.Kind == ast.ContinueStmt {
				kw = "continue"
			}

			a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "%s statement not in loop", kw)
		}
	case ast.ReturnStmt:
		a.analyzeReturn(n, scope)
	case ast.ExprStmt:
		a.evalExpr(n.Left, scope)
	case ast.Assign:
		a.analyzeAssign(n, scope)
	}
}

func (a *Analyzer) analyzeReturn(n *ast.Node, scope *Scope) {
	fnScope := scope.EnclosingFunction()
	if fnScope == nil {
		a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "return used outside of a function")
		return
	}

	retType := fnScope.FuncReturnType
	isVoid := retType == nil || retType.Name == "Void"

	if n.Left == nil {
		if !isVoid {
			a.errorf(diagnostics.TmplMissingReturn, n.Line, n.Column, "missing return value of type %s", typeName(retType))
		}

		return
	}

	gotType, _ := a.evalExpr(n.Left, scope)

	if isVoid {
		a.errorf(diagnostics.TmplTypeMismatch, n.Line, n.Column, "function declared Void cannot return a value")
		return
	}

	if gotType != nil && !compatible(retType, gotType) {
		a.errorf(diagnostics.TmplTypeMismatch, n.Line, n.Column,
			"returning %s where %s was expected", typeName(gotType), typeName(retType))
	}
}

func (a *Analyzer) analyzeAssign(n *ast.Node, scope *Scope) {
	rhsType, _ := a.evalExpr(n.Right, scope)

	switch n.Left.Kind {
	case ast.Ident:
		sym, _ := scope.Resolve(n.Left.Value)
		if sym == nil {
			a.errorf(diagnostics.TmplUndeclaredSymbol, n.Left.Line, n.Left.Column, "%q is not declared", n.Left.Value)
			return
		}

		if sym.Kind != SymVar && sym.Kind != SymParam && sym.Kind != SymObj {
			a.errorf(diagnostics.TmplInvalidOperation, n.Left.Line, n.Left.Column, "%q is not assignable", n.Left.Value)
			return
		}

		if !sym.Mutable {
			tmpl := diagnostics.TmplAssignToConst
			if sym.Init == Full || sym.Init == Partial {
				tmpl = diagnostics.TmplAssignToImmutable
			}

			a.errorf(tmpl, n.Line, n.Column, "cannot assign to immutable %q", sym.Name)

			return
		}

		if sym.Type != nil && rhsType != nil && !compatible(sym.Type, rhsType) {
			a.errorf(diagnostics.TmplTypeMismatch, n.Line, n.Column,
				"cannot assign %s (variable '%s') to %s", typeName(rhsType), sym.Name, typeName(sym.Type))
		}

		if sym.Init == Uninitialized {
			sym.Init = Full
		} else if sym.Init == Partial {
			sym.Init = Full
		}
	case ast.FieldAccess, ast.ScopeAccess:
		a.evalExpr(n.Left, scope)
	default:
		a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "left-hand side of assignment is not an lvalue")
	}
}

// evalExpr type-checks an expression, returning its type (nil if
// indeterminate due to an earlier error) and its dominant init-state.
func (a *Analyzer) evalExpr(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	if n == nil {
		return nil, Full
	}

	switch n.Kind {
	case ast.IntLit:
		return &ast.TypeDescriptor{Name: "Int"}, Full
	case ast.RealLit:
		return &ast.TypeDescriptor{Name: "Real"}, Full
	case ast.StringLit:
		return &ast.TypeDescriptor{Name: "String"}, Full
	case ast.CharLit:
		return &ast.TypeDescriptor{Name: "Char"}, Full
	case ast.BoolLit:
		return &ast.TypeDescriptor{Name: "Bool"}, Full
	case ast.Ident:
		return a.evalIdent(n, scope)
	case ast.Unary:
		return a.evalUnary(n, scope)
	case ast.Binary:
		return a.evalBinary(n, scope)
	case ast.Call:
		return a.evalCall(n, scope)
	case ast.FieldAccess:
		return a.evalFieldAccess(n, scope)
	case ast.ScopeAccess:
		return a.evalScopeAccess(n, scope)
	default:
		return nil, Full
	}
}

func (a *Analyzer) evalIdent(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	if n.Value == noneTypeName {
		return &ast.TypeDescriptor{Name: noneTypeName}, Full
	}

	sym, _ := scope.Resolve(n.Value)
	if sym == nil {
		a.errorf(diagnostics.TmplUndeclaredSymbol, n.Line, n.Column, "%q is not declared", n.Value)
		return nil, Uninitialized
	}

	sym.Used = true

	if sym.Init == Uninitialized {
		a.warnf(diagnostics.TmplUninitializedUse, n.Line, n.Column, "%q is used before being initialized", n.Value)
	}

	return sym.Type, sym.Init
}

func (a *Analyzer) evalUnary(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	t, st := a.evalExpr(n.Left, scope)
	if t == nil {
		return nil, st
	}

	switch n.OpKind {
	case token.Not:
		if t.Name != "Bool" {
			a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "'!' requires a Bool operand, got %s", typeName(t))
		}

		return &ast.TypeDescriptor{Name: "Bool"}, st
	case token.Tilde:
		if t.Name != "Int" {
			a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "'~' requires an Int operand, got %s", typeName(t))
		}

		return &ast.TypeDescriptor{Name: "Int"}, st
	default: // Plus, Minus
		if !isNumeric(t.Name) {
			a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "unary %q requires a numeric operand, got %s", n.Value, typeName(t))
		}

		return t, st
	}
}

func classifyOp(k token.Kind) string {
	switch k {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent:
		return "arithmetic"
	case token.Amp, token.Pipe, token.Caret, token.Shl, token.Shr:
		return "bitwise"
	case token.Eq, token.Ne:
		return "equality"
	case token.Lt, token.Gt, token.Le, token.Ge:
		return "comparison"
	case token.AndAnd, token.OrOr:
		return "logical"
	default:
		return "unknown"
	}
}

func (a *Analyzer) evalBinary(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	lt, ls := a.evalExpr(n.Left, scope)
	rt, rs := a.evalExpr(n.Right, scope)

	if lt == nil || rt == nil {
		return nil, weaker(ls, rs)
	}

	opClass := classifyOp(n.OpKind)

	ok := false

	switch opClass {
	case "arithmetic", "comparison":
		ok = isNumeric(lt.Name) && isNumeric(rt.Name)
	case "bitwise":
		ok = lt.Name == "Int" && rt.Name == "Int"
	case "equality":
		ok = compatible(lt, rt) || compatible(rt, lt)
	case "logical":
		ok = lt.Name == "Bool" && rt.Name == "Bool"
	}

	if !ok {
		a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column,
			"operator %q is not defined for %s and %s", n.Value, typeName(lt), typeName(rt))

		return nil, weaker(ls, rs)
	}

	return resultType(opClass, lt, rt), weaker(ls, rs)
}

func (a *Analyzer) evalCall(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	for _, arg := range n.Extra {
		a.evalExpr(arg, scope)
	}

	callee := n.Left
	if callee.Kind != ast.Ident {
		a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "expression is not callable")
		return nil, Full
	}

	sym, _ := scope.Resolve(callee.Value)
	if sym == nil {
		a.errorf(diagnostics.TmplUndeclaredSymbol, callee.Line, callee.Column, "%q is not declared", callee.Value)
		return nil, Full
	}

	if sym.Kind != SymFunc {
		a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column, "%q is not a function", callee.Value)
		return nil, Full
	}

	sym.Used = true

	if sym.Node != nil && len(sym.Node.Params) != len(n.Extra) {
		a.errorf(diagnostics.TmplInvalidOperation, n.Line, n.Column,
			"%q expects %d argument(s), got %d", callee.Value, len(sym.Node.Params), len(n.Extra))
	}

	return sym.Type, Full
}

func (a *Analyzer) compoundNameOf(t *ast.TypeDescriptor) string {
	if t == nil {
		return ""
	}

	if _, ok := a.compoundMembers[t.Name]; ok {
		return t.Name
	}

	return ""
}

func (a *Analyzer) evalFieldAccess(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	lt, _ := a.evalExpr(n.Left, scope)

	name := a.compoundNameOf(lt)
	if name == "" {
		a.errorf(diagnostics.TmplInvalidFieldAccess, n.Line, n.Column,
			"'->' requires a struct/class/obj operand, got %s", typeName(lt))

		return nil, Full
	}

	members := a.compoundMembers[name]

	memberType, ok := members[n.Right.Value]
	if !ok {
		a.errorf(diagnostics.TmplInvalidFieldAccess, n.Right.Line, n.Right.Column,
			"%s has no member %q", name, n.Right.Value)

		return nil, Full
	}

	return memberType, Full
}

func (a *Analyzer) evalScopeAccess(n *ast.Node, scope *Scope) (*ast.TypeDescriptor, InitState) {
	if n.Left.Kind != ast.Ident {
		a.errorf(diagnostics.TmplInvalidCompoundMember, n.Line, n.Column, "'::' requires a class name on its left")
		return nil, Full
	}

	sym, _ := a.global.declareLocal(n.Left.Value)
	if sym == nil || sym.Kind != SymClass {
		a.errorf(diagnostics.TmplInvalidCompoundMember, n.Left.Line, n.Left.Column, "%q is not a class name", n.Left.Value)
		return nil, Full
	}

	members := a.compoundMembers[n.Left.Value]

	memberType, ok := members[n.Right.Value]
	if !ok {
		a.errorf(diagnostics.TmplInvalidCompoundMember, n.Right.Line, n.Right.Column,
			"class %s has no static member %q", n.Left.Value, n.Right.Value)

		return nil, Full
	}

	return memberType, Full
}

// checkUsed walks the whole retained scope tree reporting unused
// variables/parameters, gated behind WarningsEnabled.
func (a *Analyzer) checkUsed(scope *Scope) {
	if !a.WarningsEnabled {
		return
	}

	for _, sym := range scope.Symbols {
		if (sym.Kind == SymVar || sym.Kind == SymParam) && !sym.Used {
			a.warnf(diagnostics.TmplUnusedSymbol, sym.DeclLine, sym.DeclCol, "%q is declared but never used", sym.Name)
		}
	}

	for _, child := range scope.Children {
		a.checkUsed(child)
	}
}
