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

// Package semantic implements the Semantic Analyzer: scope discipline, type
// checking, assignment/operator validation, control-flow checks, shadowing
// and used-ness diagnostics, over the pkg/ast tree produced by pkg/parser
// (spec.md §4.2). This package is CORE: its invariants are load-bearing and
// every rule below is grounded in spec.md §4.2's declaration, compatibility,
// and error-taxonomy tables.
package semantic

import "github.com/pxlang/pxc/pkg/ast"

// ScopeKind tags the purpose of a lexical scope, used to decide whether
// break/continue are legal and whether a function's return type applies.
type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	FunctionScope
	BlockScope
	LoopScope
	CompoundScope // struct/class/obj member scope
)

// InitState tracks how completely a symbol has been initialized, per
// spec.md §4.2's UNINITIALIZED/PARTIAL/FULL/CONSTANT/DEFAULT states.
type InitState int

const (
	Uninitialized InitState = iota
	Partial
	Full
	ConstantInit
	DefaultInit
)

// weaker returns the more conservative of two init states, used when a
// binary/unary expression combines operands of differing init state: "the
// weakest operand dominates".
func weaker(a, b InitState) InitState {
	if a < b {
		return a
	}

	return b
}

// SymbolKind discriminates what a Symbol names.
type SymbolKind int

const (
	SymVar SymbolKind = iota
	SymParam
	SymFunc
	SymStruct
	SymClass
	SymObj
)

// Symbol is one declared name within a Scope.
type Symbol struct {
	Name           string
	Kind           SymbolKind
	Type           *ast.TypeDescriptor
	Mutable        bool
	Init           InitState
	Used           bool
	DeclLine       int
	DeclCol        int
	AccessModifier string
	Node           *ast.Node // the declaring node, for funcs/structs/classes/objs
}

// Scope is one node of the nested lexical-scope tree. Child scopes are
// retained after their block exits (rather than discarded) so that
// used-ness and shadowing diagnostics can be audited against the whole tree
// once analysis completes.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Symbols  map[string]*Symbol
	// FuncReturnType is set on FunctionScope nodes to the enclosing
	// function's declared return type, for return-statement checking.
	FuncReturnType *ast.TypeDescriptor
}

// NewScope constructs a child scope of parent (nil for the global scope).
func NewScope(kind ScopeKind, parent *Scope) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Symbols: make(map[string]*Symbol)}

	if parent != nil {
		parent.Children = append(parent.Children, s)

		s.FuncReturnType = parent.FuncReturnType
	}

	return s
}

// declareLocal looks up name in exactly this scope (no parent walk).
func (s *Scope) declareLocal(name string) (*Symbol, bool) {
	sym, ok := s.Symbols[name]
	return sym, ok
}

// Resolve walks from s up through enclosing scopes looking for name.
func (s *Scope) Resolve(name string) (*Symbol, *Scope) {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.Symbols[name]; ok {
			return sym, cur
		}
	}

	return nil, nil
}

// InLoop reports whether s is lexically nested within a LoopScope without
// crossing a FunctionScope boundary (break/continue do not cross function
// boundaries).
func (s *Scope) InLoop() bool {
	for cur := s; cur != nil; cur = cur.Parent {
		switch cur.Kind {
		case LoopScope:
			return true
		case FunctionScope:
			return false
		}
	}

	return false
}

// EnclosingFunction returns the nearest FunctionScope ancestor, or nil at
// global scope.
func (s *Scope) EnclosingFunction() *Scope {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur.Kind == FunctionScope {
			return cur
		}
	}

	return nil
}
