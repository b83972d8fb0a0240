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

import "testing"

func TestMacroTable_00_DefineThenLookup(t *testing.T) {
	tbl := NewMacroTable()
	tbl.Define("N", Macro{Value: "v"})

	m, ok := tbl.Lookup("N")
	if !ok || m.Value != "v" {
		t.Fatalf("expected lookup of N to return %q, got %q ok=%v", "v", m.Value, ok)
	}
}

func TestMacroTable_01_UndefRemoves(t *testing.T) {
	tbl := NewMacroTable()
	tbl.Define("N", Macro{Value: "v"})
	tbl.Undef("N")

	if _, ok := tbl.Lookup("N"); ok {
		t.Fatalf("expected N to be undefined after Undef")
	}
}

func TestMacroTable_02_RedefinitionReplacesAtomically(t *testing.T) {
	tbl := NewMacroTable()
	tbl.Define("N", Macro{Value: "first"})
	tbl.Define("N", Macro{Value: "second"})

	m, ok := tbl.Lookup("N")
	if !ok || m.Value != "second" {
		t.Fatalf("expected redefinition to replace the value, got %q ok=%v", m.Value, ok)
	}
}

func TestMacroTable_03_UndefOfUnknownNameIsNoop(t *testing.T) {
	tbl := NewMacroTable()
	tbl.Undef("NEVER_DEFINED")

	if tbl.Len() != 0 {
		t.Fatalf("expected empty table to remain empty")
	}
}

func TestMacroTable_04_DefineUndefRoundTripRestoresEmptyState(t *testing.T) {
	tbl := NewMacroTable()
	before := tbl.Len()

	tbl.Define("N", Macro{Value: "X"})
	tbl.Undef("N")

	if tbl.Len() != before {
		t.Fatalf("expected table length to be restored, got %d want %d", tbl.Len(), before)
	}
}
