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
	"fmt"
	"io"
	"strings"
)

// tabWidth is the tab-stop width used when expanding tabs for caret-column
// math, per spec.md §4.3 ("tab → next multiple of 8").
const tabWidth = 8

// RenderAll writes all errors, then all warnings, in insertion order, to w.
// This matches the driver's convention described in spec.md §4.3 and §7
// ("errors first").
func (r *Registry) RenderAll(w io.Writer) {
	for _, e := range r.Errors() {
		r.render(w, e)
	}

	for _, e := range r.Warnings() {
		r.render(w, e)
	}
}

// render writes a single diagnostic.  When e.Line > 0, exactly three lines
// are printed: the header, the source line, and the caret underline -- this
// is a tested invariant (spec.md §8).
func (r *Registry) render(w io.Writer, e Entry) {
	fmt.Fprintf(w, "%dms\t%s[%s]: %s: %s\n",
		e.Elapsed.Milliseconds(), e.Severity.String(), e.Code.String(), e.Context, e.Message)

	if e.Line <= 0 {
		return
	}

	sourceLine := r.sourceLine(e.Line)
	fmt.Fprintf(w, "\t%d:%d\t|\t%s\n", e.Line, e.Column, sourceLine)

	pad, carets := caretLayout(sourceLine, e.Column, e.UnderlineLength)
	fmt.Fprintf(w, "\t\t\t|\t%s%s\n", pad, carets)
}

// sourceLine returns the 1-indexed source line, or an empty string if the
// registry has no bound source or the line is out of range.
func (r *Registry) sourceLine(line int) string {
	if r.lines == nil || line <= 0 || line > len(r.lines) {
		return ""
	}

	return r.lines[line-1]
}

// caretLayout computes the leading padding and the caret run for a single
// diagnostic, expanding tabs in the source line to the next multiple of
// tabWidth and clamping the underline length to what remains of the line.
func caretLayout(sourceLine string, column, underlineLength int) (pad string, carets string) {
	visualColumn := 0

	for i, ch := range sourceLine {
		if i+1 >= column {
			break
		}

		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}

	remaining := len([]rune(sourceLine)) - (column - 1)
	if remaining < 0 {
		remaining = 0
	}

	length := underlineLength
	if length > remaining {
		length = remaining
	}

	if length < 1 {
		length = 1
	}

	return strings.Repeat(" ", visualColumn), strings.Repeat("~", length)
}
