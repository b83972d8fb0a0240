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

import "github.com/pxlang/pxc/pkg/ast"

// builtinNames are the primitive type names the lexer/parser pass through
// as plain identifiers (spec.md §3).
var builtinNames = map[string]bool{
	"Int": true, "Real": true, "String": true, "Char": true, "Bool": true, "Void": true,
}

func isBuiltin(name string) bool {
	return builtinNames[name]
}

// noneTypeName names the pseudo-type of the `None` literal, compatible with any
// pointer or reference type (spec.md §4.2).
const noneTypeName = "None"

// typesIdentical reports structural equality of two type descriptors,
// ignoring Members (named-type identity is by Name, not structure).
func typesIdentical(a, b *ast.TypeDescriptor) bool {
	if a == nil || b == nil {
		return a == b
	}

	if a.Name != b.Name || a.PointerLevel != b.PointerLevel || a.IsReference != b.IsReference || a.IsArray != b.IsArray {
		return false
	}

	return true
}

// typeName renders a type descriptor for diagnostic messages.
func typeName(t *ast.TypeDescriptor) string {
	if t == nil {
		return "<unknown>"
	}

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

// compatible implements spec.md §4.2's type-compatibility table:
//
//   - identical descriptors are always compatible;
//   - Int and Real freely promote in either direction;
//   - None is compatible with any pointer or reference type;
//   - any two pointer/reference types are compatible; the pointed-to type
//     names are not compared;
//   - a String value is compatible with any Char array; the array's
//     declared dimension is not compared with the string's length.
//
// Non-pointer struct/class types are compatible only when their names are
// identical.
func compatible(want, got *ast.TypeDescriptor) bool {
	if typesIdentical(want, got) {
		return true
	}

	if want == nil || got == nil {
		return false
	}

	if isNumeric(want.Name) && isNumeric(got.Name) && want.PointerLevel == got.PointerLevel && want.IsArray == got.IsArray {
		return true
	}

	if got.Name == noneTypeName && (want.PointerLevel > 0 || want.IsReference) {
		return true
	}

	if (want.PointerLevel > 0 || want.IsReference) && (got.PointerLevel > 0 || got.IsReference) {
		return true
	}

	if want.Name == "Char" && want.IsArray && got.Name == "String" {
		return true
	}

	return false
}

func isNumeric(name string) bool {
	return name == "Int" || name == "Real"
}

// resultType computes the type of a binary expression from its operand
// types, used when no explicit annotation exists (e.g. expression
// statements, return-type checking). For arithmetic, Real dominates Int;
// for comparison/logical/equality operators the result is always Bool.
func resultType(opClass string, left, right *ast.TypeDescriptor) *ast.TypeDescriptor {
	switch opClass {
	case "comparison", "equality", "logical":
		return &ast.TypeDescriptor{Name: "Bool"}
	default:
		if left != nil && left.Name == "Real" || right != nil && right.Name == "Real" {
			return &ast.TypeDescriptor{Name: "Real"}
		}

		return &ast.TypeDescriptor{Name: "Int"}
	}
}
