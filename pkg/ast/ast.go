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

// Package ast defines the boundary types the parser emits and the Semantic
// Analyzer consumes, per the generic node shape described in spec.md §3 and
// §6: every node carries an originating token kind, optional literal value,
// left/right children, an "extra" list for blocks/arguments/dimensions, an
// optional type descriptor, an optional default-value expression, and
// optional state/access modifier strings.  These types are constructed only
// by pkg/parser; CORE never constructs them.
package ast

import "github.com/pxlang/pxc/pkg/token"

// Kind discriminates the shape of a Node.
type Kind int

const (
	Program Kind = iota
	VarDecl
	ArrayDecl
	FuncDecl
	StructDecl
	ClassDecl
	ObjDecl
	Block
	IfStmt
	WhileStmt
	ForStmt
	BreakStmt
	ContinueStmt
	ReturnStmt
	ExprStmt
	Assign
	Binary
	Unary
	Ident
	IntLit
	RealLit
	StringLit
	CharLit
	BoolLit
	Call
	FieldAccess // a->b
	ScopeAccess // A::b
)

// TypeDescriptor is the AST Type descriptor from spec.md §3: name, access
// modifier, modifiers, pointer indirection level, reference flag, register
// flag, array flag, array-dimension expressions, compound sub-descriptors,
// size in bytes, and an optional angle-bracket expression (generics/sizing).
type TypeDescriptor struct {
	Name           string
	AccessModifier string
	Modifiers      []string
	PointerLevel   int
	IsReference    bool
	IsRegister     bool
	IsArray        bool
	ArrayDims      []*Node
	Members        []*TypeDescriptor
	SizeBytes      int
	AngleExpr      *Node
}

// Param is one entry of a function signature's ordered parameter list.
type Param struct {
	Name string
	Type *TypeDescriptor
}

// Node is the single generic AST node type used throughout the parser and
// semantic analyzer, matching the Parser → Semantic contract in spec.md §6.
type Node struct {
	Kind   Kind
	OpKind token.Kind // originating token kind, for literals and operators
	Value  string
	Line   int
	Column int

	Left  *Node
	Right *Node
	Extra []*Node // block statements, call arguments, array dimensions, struct/class members

	VariableType *TypeDescriptor
	DefaultValue *Node

	StateModifier  string // var | let | const | obj | func | struct | class
	AccessModifier string

	Params   []Param
	Variadic bool
}
