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

// Package diagnostics implements the structured error/warning store shared by
// the preprocessor, the semantic analyzer and (eventually) the code
// generator.  It owns severity levels, source-context capture, stable error
// codes and caret-highlighted rendering.
package diagnostics

// Severity classifies a diagnostic entry.
type Severity uint8

const (
	// Warning is logged but never affects the exit code.
	Warning Severity = iota
	// Error is logged and sets the exit code, but analysis may continue
	// depending on driver policy.
	Error
	// Fatal terminates the process immediately via driver policy; the
	// engine itself never exits the process.
	Fatal
)

// String renders a severity the way it appears in diagnostic output, e.g.
// "ERROR", "WARNING", "FATAL".
func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}
