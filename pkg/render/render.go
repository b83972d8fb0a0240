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

// Package render implements the debug-output pretty-printers for the CLI
// driver's `-w*`/`-l*` stage-dumping flags (SPEC_FULL.md §6): tokens, AST,
// and the symbol-table tree. It is an external collaborator, not CORE: it
// only reads the boundary types CORE already produces.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pxlang/pxc/pkg/ast"
	"github.com/pxlang/pxc/pkg/semantic"
	"github.com/pxlang/pxc/pkg/token"
)

// Preprocessed writes preprocessed source verbatim, framed with a header,
// for the `-wp`/`-lp` stage.
func Preprocessed(w io.Writer, filename, src string) {
	fmt.Fprintf(w, "=== preprocessed: %s ===\n", filename)
	io.WriteString(w, src)

	if !strings.HasSuffix(src, "\n") {
		io.WriteString(w, "\n")
	}
}

// Tokens writes one line per token for the `-wl`/`-ll` stage.
func Tokens(w io.Writer, filename string, toks []token.Token) {
	fmt.Fprintf(w, "=== tokens: %s ===\n", filename)

	for _, t := range toks {
		fmt.Fprintf(w, "%4d:%-3d %-8s %q\n", t.Line, t.Column, t.Kind, t.Value)
	}
}

// AST writes an indented tree for the `-ws`/`-ls` stage (the semantic
// stage's input shape; spec.md does not separate "parse tree" from
// "semantic tree" dumps, so both draw on this renderer).
func AST(w io.Writer, filename string, n *ast.Node) {
	fmt.Fprintf(w, "=== ast: %s ===\n", filename)
	renderNode(w, n, 0)
}

func renderNode(w io.Writer, n *ast.Node, depth int) {
	if n == nil {
		return
	}

	indent := strings.Repeat("  ", depth)

	label := kindName(n.Kind)
	if n.Value != "" {
		label += " " + n.Value
	}

	if n.VariableType != nil {
		label += ": " + typeLabel(n.VariableType)
	}

	fmt.Fprintf(w, "%s%s (%d:%d)\n", indent, label, n.Line, n.Column)

	if n.Left != nil {
		renderNode(w, n.Left, depth+1)
	}

	if n.Right != nil {
		renderNode(w, n.Right, depth+1)
	}

	if n.DefaultValue != nil {
		renderNode(w, n.DefaultValue, depth+1)
	}

	for _, c := range n.Extra {
		renderNode(w, c, depth+1)
	}
}

func typeLabel(t *ast.TypeDescriptor) string {
	out := t.Name
	for i := 0; i < t.PointerLevel; i++ {
		out = "*" + out
	}

	if t.IsReference {
		out = "&" + out
	}

	if t.IsArray {
		out += "[]"
	}

	return out
}

func kindName(k ast.Kind) string {
	names := map[ast.Kind]string{
		ast.Program:     "Program",
		ast.VarDecl:     "VarDecl",
		ast.ArrayDecl:   "ArrayDecl",
		ast.FuncDecl:    "FuncDecl",
		ast.StructDecl:  "StructDecl",
		ast.ClassDecl:   "ClassDecl",
		ast.ObjDecl:     "ObjDecl",
		ast.Block:       "Block",
		ast.IfStmt:      "IfStmt",
		ast.WhileStmt:   "WhileStmt",
		ast.ForStmt:     "ForStmt",
		ast.BreakStmt:   "BreakStmt",
		ast.ContinueStmt: "ContinueStmt",
		ast.ReturnStmt:  "ReturnStmt",
		ast.ExprStmt:    "ExprStmt",
		ast.Assign:      "Assign",
		ast.Binary:      "Binary",
		ast.Unary:       "Unary",
		ast.Ident:       "Ident",
		ast.IntLit:      "IntLit",
		ast.RealLit:     "RealLit",
		ast.StringLit:   "StringLit",
		ast.CharLit:     "CharLit",
		ast.BoolLit:     "BoolLit",
		ast.Call:        "Call",
		ast.FieldAccess: "FieldAccess",
		ast.ScopeAccess: "ScopeAccess",
	}

	if name, ok := names[k]; ok {
		return name
	}

	return "Unknown"
}

// Symbols writes the symbol-table tree for the `-wsl`/`-lsl` stage.
func Symbols(w io.Writer, filename string, root *semantic.Scope) {
	fmt.Fprintf(w, "=== symbols: %s ===\n", filename)
	renderScope(w, root, 0)
}

func renderScope(w io.Writer, s *semantic.Scope, depth int) {
	if s == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%sscope[%s]\n", indent, scopeKindName(s.Kind))

	names := make([]string, 0, len(s.Symbols))
	for name := range s.Symbols {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		sym := s.Symbols[name]
		fmt.Fprintf(w, "%s  %s : %s  [used=%t init=%s]\n",
			indent, sym.Name, symbolTypeLabel(sym), sym.Used, initStateName(sym.Init))
	}

	for _, child := range s.Children {
		renderScope(w, child, depth+1)
	}
}

func symbolTypeLabel(sym *semantic.Symbol) string {
	if sym.Type == nil {
		return "<none>"
	}

	return typeLabel(sym.Type)
}

func scopeKindName(k semantic.ScopeKind) string {
	switch k {
	case semantic.GlobalScope:
		return "GLOBAL"
	case semantic.FunctionScope:
		return "FUNCTION"
	case semantic.BlockScope:
		return "BLOCK"
	case semantic.LoopScope:
		return "LOOP"
	case semantic.CompoundScope:
		return "COMPOUND"
	default:
		return "UNKNOWN"
	}
}

func initStateName(s semantic.InitState) string {
	switch s {
	case semantic.Uninitialized:
		return "UNINITIALIZED"
	case semantic.Partial:
		return "PARTIAL"
	case semantic.Full:
		return "FULL"
	case semantic.ConstantInit:
		return "CONSTANT"
	case semantic.DefaultInit:
		return "DEFAULT"
	default:
		return "UNKNOWN"
	}
}
