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
	"fmt"
	"os"
	"strings"

	"github.com/pxlang/pxc/pkg/diagnostics"
)

// Result is the outcome of preprocessing a single translation unit: the
// fully expanded, comment-stripped source text ready for lexing, and the
// diagnostics accumulated along the way.
type Result struct {
	Output string
	Diags  *diagnostics.Registry
}

// Preprocess reads filePath and runs it through the full text-level pass
// described in spec.md §4.1: comment stripping, line-continuation splicing,
// directive execution, macro expansion and #import/#using inclusion.
//
// Diagnostics (missing files, unterminated conditionals, malformed
// directives, and so on) are recorded in the returned Result's Registry
// rather than surfaced as a Go error; err is reserved for the one
// unrecoverable condition -- the top-level file itself cannot be read.
func Preprocess(filePath string) (Result, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Result{}, fmt.Errorf("pxc: cannot read %q: %w", filePath, err)
	}

	diags := diagnostics.NewRegistry()
	diags.BindSourceLines(splitLines(content))

	macros := NewMacroTable()
	cond := NewConditionalStack()
	resolver := NewIncludeResolver()

	resolver.Enter(filePath)
	defer resolver.Leave()

	root := newState(filePath, content, macros, cond, resolver, diags)
	root.run()

	if cond.Depth() > 0 {
		diags.Reportf(diagnostics.Error, diagnostics.TmplUnterminatedCond, "preproc",
			root.line, 1, 1, "%d unterminated conditional group(s) at end of file", cond.Depth())
	}

	return Result{Output: root.output.String(), Diags: diags}, nil
}

// splitLines splits content into a 0-indexed line array (lines[i] is source
// line i+1), matching the caret-rendering contract in
// pkg/diagnostics/render.go's sourceLine.
func splitLines(content []byte) []string {
	raw := strings.Split(string(content), "\n")
	lines := make([]string, len(raw))

	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}

	return lines
}
