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
	"math"
	"time"

	log "github.com/sirupsen/logrus"
)

// maxEntries is the saturating point for the registry's geometric growth, per
// spec.md §4.3 ("doubling, saturating at the 16-bit maximum").  This is not a
// hard cap on the number of diagnostics the engine can hold -- append beyond
// this point simply stops pre-growing the backing array in doubling jumps
// and leaves further growth to Go's built-in append.
const maxEntries = math.MaxUint16

// Registry is a per-translation-unit diagnostics store.  It is explicitly
// owned and passed by the caller (the Preprocessor, the Semantic Analyzer, or
// the CLI driver) rather than being a process-wide singleton, per the Design
// Notes in spec.md §9.
type Registry struct {
	entries []Entry
	// baseline is the wall-clock time of the first insertion; subsequent
	// entries record a delta against it.  Zero until the first Report call.
	baseline time.Time
	// lines holds the current file's source, 0-indexed (lines[i] is line
	// i+1) for caret rendering.  May be nil if not yet bound.
	lines []string
	// errorCount and warningCount are tracked independently of entries so
	// HasErrors/HasWarnings/ErrorCount/WarningCount stay O(1).
	errorCount   int
	warningCount int
}

// NewRegistry constructs an empty diagnostics registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// BindSourceLines lazily attaches the current file's line array so that
// subsequent renders can print source context.  Rebinding is cheap and
// expected: the driver rebinds once per translation unit, and included files
// are rendered against the including file's lines per the documented
// coarseness in spec.md §4.1.
func (r *Registry) BindSourceLines(lines []string) {
	r.lines = lines
}

// Reportf records a new diagnostic.  line/col/underlineLen describe the
// source span (line==0 means "no useful position"); context is a short tag
// such as "preproc" or "semantic"; tmpl selects the stable error code.
func (r *Registry) Reportf(
	severity Severity,
	tmpl Template,
	context string,
	line, col, underlineLen int,
	format string,
	args ...any,
) Entry {
	if len(context) > MaxContextTagLength {
		context = context[:MaxContextTagLength]
	}

	if r.baseline.IsZero() {
		r.baseline = time.Now()
	}

	entry := Entry{
		Message:         fmt.Sprintf(format, args...),
		Line:            line,
		Column:          col,
		UnderlineLength: underlineLen,
		Severity:        severity,
		Context:         context,
		Elapsed:         time.Since(r.baseline),
		Code:            CodeOf(tmpl),
	}

	r.append(entry)

	switch severity {
	case Error, Fatal:
		r.errorCount++
	case Warning:
		r.warningCount++
	}

	log.WithFields(log.Fields{
		"severity": severity.String(),
		"context":  context,
		"line":     line,
		"column":   col,
		"code":     entry.Code.String(),
	}).Debug(entry.Message)

	return entry
}

// append grows r.entries, emulating the "doubling, saturating at the 16-bit
// maximum" growable array described in spec.md §4.3.  No diagnostic is ever
// dropped: once the saturating point is passed, growth simply degrades to
// append's own amortized strategy rather than failing.
func (r *Registry) append(entry Entry) {
	if len(r.entries) == cap(r.entries) && cap(r.entries) < maxEntries {
		newCap := cap(r.entries) * 2
		if newCap == 0 {
			newCap = 8
		}

		if newCap > maxEntries {
			newCap = maxEntries
		}

		grown := make([]Entry, len(r.entries), newCap)
		copy(grown, r.entries)
		r.entries = grown
	}

	r.entries = append(r.entries, entry)
}

// Entries returns all recorded diagnostics in insertion order.
func (r *Registry) Entries() []Entry {
	return r.entries
}

// HasErrors reports whether any ERROR or FATAL diagnostic was recorded.
func (r *Registry) HasErrors() bool {
	return r.errorCount > 0
}

// HasWarnings reports whether any WARNING diagnostic was recorded.
func (r *Registry) HasWarnings() bool {
	return r.warningCount > 0
}

// ErrorCount returns the number of ERROR/FATAL diagnostics recorded.
func (r *Registry) ErrorCount() int {
	return r.errorCount
}

// WarningCount returns the number of WARNING diagnostics recorded.
func (r *Registry) WarningCount() int {
	return r.warningCount
}

// Errors returns, in insertion order, the subset of entries at ERROR or
// FATAL severity.
func (r *Registry) Errors() []Entry {
	var out []Entry

	for _, e := range r.entries {
		if e.Severity != Warning {
			out = append(out, e)
		}
	}

	return out
}

// Warnings returns, in insertion order, the subset of entries at WARNING
// severity.
func (r *Registry) Warnings() []Entry {
	var out []Entry

	for _, e := range r.entries {
		if e.Severity == Warning {
			out = append(out, e)
		}
	}

	return out
}
