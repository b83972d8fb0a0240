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
	"testing"

	"github.com/pxlang/pxc/pkg/diagnostics"
	"github.com/pxlang/pxc/pkg/lexer"
	"github.com/pxlang/pxc/pkg/parser"
)

func analyze(t *testing.T, src string, warnings bool) *diagnostics.Registry {
	t.Helper()

	p := parser.New(lexer.New(src).Tokens())
	prog := p.ParseProgram()

	if len(p.Errors) != 0 {
		t.Fatalf("unexpected parse errors for %q: %v", src, p.Errors)
	}

	diags := diagnostics.NewRegistry()
	a := NewAnalyzer(diags)
	a.WarningsEnabled = warnings
	a.Analyze(prog)

	return diags
}

// TestAnalyzer_00_Redeclaration covers spec.md §8 scenario 4.
func TestAnalyzer_00_Redeclaration(t *testing.T) {
	diags := analyze(t, "var a: Int = 1; var a: Int = 2;", false)

	if diags.ErrorCount() != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %+v", diags.ErrorCount(), diags.Errors())
	}

	if diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplRedeclaration) {
		t.Fatalf("expected a REDECLARATION diagnostic, got %+v", diags.Errors()[0])
	}
}

// TestAnalyzer_01_TypeMismatchInAssignment covers spec.md §8 scenario 5.
func TestAnalyzer_01_TypeMismatchInAssignment(t *testing.T) {
	diags := analyze(t, `func f(): Void {
		var a: Int = 1;
		a = "oops";
	}`, false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplTypeMismatch) {
		t.Fatalf("expected exactly 1 TYPE_MISMATCH error, got %+v", diags.Errors())
	}
}

// TestAnalyzer_02_BreakOutsideLoop covers spec.md §8 scenario 6.
func TestAnalyzer_02_BreakOutsideLoop(t *testing.T) {
	diags := analyze(t, "func f(): Void { break; }", false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplInvalidOperation) {
		t.Fatalf("expected exactly 1 INVALID_OPERATION error, got %+v", diags.Errors())
	}
}

func TestAnalyzer_03_ContinueInsideWhileIsFine(t *testing.T) {
	diags := analyze(t, "func f(): Void { while (1 == 1) { continue; } }", false)

	if diags.ErrorCount() != 0 {
		t.Fatalf("expected 0 errors, got %+v", diags.Errors())
	}
}

func TestAnalyzer_04_UndeclaredSymbol(t *testing.T) {
	diags := analyze(t, "func f(): Void { x = 1; }", false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplUndeclaredSymbol) {
		t.Fatalf("expected exactly 1 UNDECLARED_SYMBOL error, got %+v", diags.Errors())
	}
}

func TestAnalyzer_05_AssignToConstIsAnError(t *testing.T) {
	diags := analyze(t, `func f(): Void {
		const a: Int = 1;
		a = 2;
	}`, false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplAssignToConst) {
		t.Fatalf("expected exactly 1 ASSIGN_TO_CONST error, got %+v", diags.Errors())
	}
}

func TestAnalyzer_06_IntPromotesToReal(t *testing.T) {
	diags := analyze(t, "var a: Real = 1;", false)

	if diags.ErrorCount() != 0 {
		t.Fatalf("expected 0 errors, got %+v", diags.Errors())
	}
}

func TestAnalyzer_07_ShadowingWarnsWhenEnabled(t *testing.T) {
	diags := analyze(t, `var a: Int = 1;
	func f(): Void {
		var a: Int = 2;
	}`, true)

	if diags.WarningCount() == 0 {
		t.Fatalf("expected a shadowing warning, got none")
	}
}

func TestAnalyzer_08_ShadowingSilentWhenWarningsDisabled(t *testing.T) {
	diags := analyze(t, `var a: Int = 1;
	func f(): Void {
		var a: Int = 2;
	}`, false)

	if diags.WarningCount() != 0 {
		t.Fatalf("expected 0 warnings with warnings disabled, got %+v", diags.Warnings())
	}
}

func TestAnalyzer_09_StructFieldAccess(t *testing.T) {
	diags := analyze(t, `struct Point { var x: Int; var y: Int; }
	func f(): Void {
		obj p: Point;
		p->x;
	}`, false)

	if diags.ErrorCount() != 0 {
		t.Fatalf("expected 0 errors, got %+v", diags.Errors())
	}
}

func TestAnalyzer_10_InvalidFieldAccessOnNonCompound(t *testing.T) {
	diags := analyze(t, `func f(): Void {
		var a: Int = 1;
		a->x;
	}`, false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplInvalidFieldAccess) {
		t.Fatalf("expected exactly 1 INVALID_FIELD_ACCESS error, got %+v", diags.Errors())
	}
}

func TestAnalyzer_11_ReturnTypeMismatch(t *testing.T) {
	diags := analyze(t, `func f(): Int { return "nope"; }`, false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplTypeMismatch) {
		t.Fatalf("expected exactly 1 TYPE_MISMATCH error, got %+v", diags.Errors())
	}
}

func TestAnalyzer_12_FunctionCallArgumentCountMismatch(t *testing.T) {
	diags := analyze(t, `func add(x: Int, y: Int): Int { return x + y; }
	func f(): Void { add(1); }`, false)

	if diags.ErrorCount() != 1 || diags.Errors()[0].Code != diagnostics.CodeOf(diagnostics.TmplInvalidOperation) {
		t.Fatalf("expected exactly 1 INVALID_OPERATION error, got %+v", diags.Errors())
	}
}

func TestAnalyzer_13_ExitOnErrorStopsAfterFirstError(t *testing.T) {
	p := parser.New(lexer.New("func f(): Void { x = 1; y = 2; }").Tokens())
	prog := p.ParseProgram()
	diags := diagnostics.NewRegistry()
	a := NewAnalyzer(diags)
	a.ExitOnError = true
	a.Analyze(prog)

	if diags.ErrorCount() != 1 {
		t.Fatalf("expected exactly 1 error once halted, got %d", diags.ErrorCount())
	}
}

func TestAnalyzer_14_EmptyProgramIsClean(t *testing.T) {
	diags := analyze(t, "", false)

	if diags.ErrorCount() != 0 || diags.WarningCount() != 0 {
		t.Fatalf("expected a clean result for an empty program, got %+v / %+v", diags.Errors(), diags.Warnings())
	}
}

// sanity-check that the weaker() helper used by binary/unary init-state
// propagation actually picks the more conservative state.
func TestWeaker_PicksMoreConservativeState(t *testing.T) {
	if weaker(Full, Uninitialized) != Uninitialized {
		t.Fatalf("expected Uninitialized to dominate")
	}

	if weaker(ConstantInit, Full) != Full {
		t.Fatalf("expected Full (lower ordinal) to dominate over ConstantInit")
	}
}
