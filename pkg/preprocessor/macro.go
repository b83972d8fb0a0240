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

// Package preprocessor implements the text-level pass which strips comments,
// splices line continuations, executes preprocessor directives, expands
// macros and resolves textual inclusion, per spec.md §4.1.
package preprocessor

// Macro is a single entry in the MacroTable: either an object-like macro
// (HasParameters == false) whose Value is substituted verbatim, or a
// function-like macro whose call sites currently expand to just the macro
// name -- a documented gap (see spec.md §9, Open Questions).
type Macro struct {
	// Value is the macro body text.
	Value string
	// HasParameters distinguishes function-like macros (`#define F(x) ...`)
	// from object-like ones (`#define N ...`).
	HasParameters bool
	// Parameters is the ordered parameter name list for a function-like
	// macro; empty for object-like macros.
	Parameters []string
}

// MacroTable maps macro names to their definitions.  Per the REDESIGN FLAG in
// spec.md §9 ("replace linear scan with hash map"), lookups are O(1); the
// external contract is unchanged: the most recent #define wins, and #undef
// removes the entry outright.
type MacroTable struct {
	macros map[string]*Macro
}

// NewMacroTable constructs an empty macro table.
func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

// Define inserts or replaces the macro named name.  Redefining an existing
// name atomically replaces the prior entry.
func (t *MacroTable) Define(name string, macro Macro) {
	t.macros[name] = &macro
}

// Undef removes name from the table.  Undefining a name which was never
// defined is not an error and is a silent no-op.
func (t *MacroTable) Undef(name string) {
	delete(t.macros, name)
}

// Lookup returns the macro registered under name, and whether it exists.
func (t *MacroTable) Lookup(name string) (Macro, bool) {
	m, ok := t.macros[name]
	if !ok {
		return Macro{}, false
	}

	return *m, true
}

// IsDefined reports whether name currently has a definition -- used by
// #ifdef/#ifndef and the defined(NAME) sub-expression.
func (t *MacroTable) IsDefined(name string) bool {
	_, ok := t.macros[name]
	return ok
}

// Len returns the number of macros currently defined.
func (t *MacroTable) Len() int {
	return len(t.macros)
}
