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
package preprocessor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "in.px")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	return path
}

// TestPreprocess_00_CommentStrippingWithLinePreservation covers spec.md §8
// scenario 1: "a\n// x y z\nb\n" -> "a\n\nb\n", 0 errors.
func TestPreprocess_00_CommentStrippingWithLinePreservation(t *testing.T) {
	path := writeTemp(t, "a\n// x y z\nb\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Output != "a\n\nb\n" {
		t.Fatalf("got %q, want %q", res.Output, "a\n\nb\n")
	}

	if res.Diags.ErrorCount() != 0 {
		t.Fatalf("expected 0 errors, got %d", res.Diags.ErrorCount())
	}
}

// TestPreprocess_01_ConditionalSuppression covers scenario 2.
func TestPreprocess_01_ConditionalSuppression(t *testing.T) {
	path := writeTemp(t, "#define A 1\n#ifdef A\nkeep\n#else\ndrop\n#endif\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(res.Output, "keep") {
		t.Fatalf("expected output to contain 'keep': %q", res.Output)
	}

	if strings.Contains(res.Output, "drop") {
		t.Fatalf("expected output to not contain 'drop': %q", res.Output)
	}
}

// TestPreprocess_02_NestedFalseBranch covers scenario 3.
func TestPreprocess_02_NestedFalseBranch(t *testing.T) {
	path := writeTemp(t, "#ifdef UNDEF\n#ifdef ALSO_UNDEF\nx\n#endif\n#endif\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(res.Output, "x") {
		t.Fatalf("expected no 'x' in output: %q", res.Output)
	}

	if res.Diags.ErrorCount() != 0 {
		t.Fatalf("expected 0 errors, got %d", res.Diags.ErrorCount())
	}
}

func TestPreprocess_03_LineCountPreservedAcrossDirectivesAndComments(t *testing.T) {
	input := "a\n#define N 1\nb\n/* c\nd */\ne\n"
	path := writeTemp(t, input)

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLines := strings.Count(input, "\n")
	gotLines := strings.Count(res.Output, "\n")

	if gotLines != wantLines {
		t.Fatalf("expected %d newlines preserved, got %d: %q", wantLines, gotLines, res.Output)
	}
}

func TestPreprocess_04_MacroExpansion(t *testing.T) {
	path := writeTemp(t, "#define SIZE 10\nvar a: Int = SIZE;\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(res.Output, "var a: Int = 10;") {
		t.Fatalf("expected macro expansion in output, got %q", res.Output)
	}
}

func TestPreprocess_05_UndefMacroNoLongerExpands(t *testing.T) {
	path := writeTemp(t, "#define N 1\n#undef N\nN\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(res.Output, "N") {
		t.Fatalf("expected bare identifier N to pass through unexpanded, got %q", res.Output)
	}
}

func TestPreprocess_06_UnterminatedConditionalReportsError(t *testing.T) {
	path := writeTemp(t, "#ifdef NEVER_DEFINED\nx\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Diags.ErrorCount() == 0 {
		t.Fatalf("expected an unterminated-conditional error to be reported")
	}
}

func TestPreprocess_07_IdentityOnPlainTextWithNoDirectivesOrComments(t *testing.T) {
	input := "var a: Int = 1;\nvar b: Int = 2;\n"
	path := writeTemp(t, input)

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Output != input {
		t.Fatalf("expected identity transform, got %q want %q", res.Output, input)
	}
}

func TestPreprocess_08_MissingClosingQuoteReportsError(t *testing.T) {
	path := writeTemp(t, "var s: String = \"unterminated\n")

	res, err := Preprocess(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Diags.ErrorCount() == 0 {
		t.Fatalf("expected a missing-closing-quote error to be reported")
	}
}

func TestPreprocess_09_UnreadableTopLevelFileIsAGoError(t *testing.T) {
	_, err := Preprocess(filepath.Join(t.TempDir(), "does-not-exist.px"))
	if err == nil {
		t.Fatalf("expected an error for a missing top-level file")
	}
}
