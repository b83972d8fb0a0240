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
package diagnostics

import (
	"bytes"
	"strings"
	"testing"
)

func TestRegistry_00_Empty(t *testing.T) {
	r := NewRegistry()

	if r.HasErrors() || r.HasWarnings() {
		t.Fatalf("fresh registry should have no diagnostics")
	}

	if r.ErrorCount() != 0 || r.WarningCount() != 0 {
		t.Fatalf("fresh registry counts should be zero")
	}
}

func TestRegistry_01_SeverityCounters(t *testing.T) {
	r := NewRegistry()
	r.Reportf(Warning, TmplShadowedSymbol, "semantic", 1, 1, 1, "shadowed 'x'")
	r.Reportf(Error, TmplRedeclaration, "semantic", 2, 1, 1, "redeclared 'x'")

	if !r.HasErrors() || !r.HasWarnings() {
		t.Fatalf("expected both an error and a warning")
	}

	if r.ErrorCount() != 1 || r.WarningCount() != 1 {
		t.Fatalf("got error=%d warning=%d, want 1/1", r.ErrorCount(), r.WarningCount())
	}
}

func TestRegistry_02_CodeIsStable(t *testing.T) {
	r := NewRegistry()
	a := r.Reportf(Error, TmplRedeclaration, "semantic", 1, 1, 1, "redeclared 'a'")
	b := r.Reportf(Error, TmplRedeclaration, "semantic", 5, 1, 1, "redeclared 'b'")

	if a.Code != b.Code {
		t.Fatalf("same template should yield the same code: %s vs %s", a.Code, b.Code)
	}

	if len(a.Code.String()) != 8 {
		t.Fatalf("rendered code should be 8 characters, got %q", a.Code.String())
	}

	for _, ch := range a.Code.String() {
		if !strings.ContainsRune(base32Alphabet, ch) {
			t.Fatalf("code %q contains character outside base-32 alphabet", a.Code.String())
		}
	}
}

func TestRegistry_03_RendersThreeLinesWithLine(t *testing.T) {
	r := NewRegistry()
	r.BindSourceLines([]string{"var a: Int = 1; var a: Int = 2;"})
	r.Reportf(Error, TmplRedeclaration, "semantic", 1, 21, 1, "Redeclaration of symbol 'a'")

	var buf bytes.Buffer
	r.RenderAll(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected exactly 3 rendered lines, got %d: %q", len(lines), buf.String())
	}

	if !strings.Contains(lines[0], "ERROR") || !strings.Contains(lines[0], "semantic") {
		t.Fatalf("header missing severity/context: %q", lines[0])
	}
}

func TestRegistry_04_NoRenderWithoutLine(t *testing.T) {
	r := NewRegistry()
	r.Reportf(Error, TmplFileNotFound, "preproc", 0, 0, 0, "cannot open %q", "missing.hp")

	var buf bytes.Buffer
	r.RenderAll(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly 1 rendered line when Line==0, got %d", len(lines))
	}
}

func TestRegistry_05_TabExpansionClampsUnderline(t *testing.T) {
	pad, carets := caretLayout("\tfoo", 2, 100)

	if len(pad) != tabWidth {
		t.Fatalf("expected tab to expand to %d columns of padding, got %d", tabWidth, len(pad))
	}

	if len(carets) != len("foo") {
		t.Fatalf("expected underline clamped to remaining width %d, got %d", len("foo"), len(carets))
	}
}

func TestRegistry_06_ErrorsBeforeWarningsInInsertionOrder(t *testing.T) {
	r := NewRegistry()
	r.Reportf(Warning, TmplShadowedSymbol, "semantic", 1, 1, 1, "w1")
	r.Reportf(Error, TmplRedeclaration, "semantic", 2, 1, 1, "e1")
	r.Reportf(Warning, TmplShadowedSymbol, "semantic", 3, 1, 1, "w2")
	r.Reportf(Error, TmplRedeclaration, "semantic", 4, 1, 1, "e2")

	var buf bytes.Buffer
	r.RenderAll(&buf)

	out := buf.String()
	if strings.Index(out, "e1") > strings.Index(out, "w1") {
		t.Fatalf("expected errors to render before warnings")
	}

	if strings.Index(out, "e1") > strings.Index(out, "e2") {
		t.Fatalf("expected insertion order preserved among errors")
	}
}

func TestRegistry_07_ContextTagTruncatedTo7Bytes(t *testing.T) {
	r := NewRegistry()
	e := r.Reportf(Error, TmplRedeclaration, "way-too-long-tag", 1, 1, 1, "x")

	if len(e.Context) > MaxContextTagLength {
		t.Fatalf("context tag should be clamped to %d bytes, got %q", MaxContextTagLength, e.Context)
	}
}
