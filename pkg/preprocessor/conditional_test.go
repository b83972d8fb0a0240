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

func TestConditionalStack_00_EmptyStackIsActive(t *testing.T) {
	c := NewConditionalStack()

	if !c.IsActive() {
		t.Fatalf("expected an empty stack to be active")
	}
}

func TestConditionalStack_01_PushFalseSkips(t *testing.T) {
	c := NewConditionalStack()

	if err := c.Push(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c.IsActive() {
		t.Fatalf("expected a false condition to suppress output")
	}
}

func TestConditionalStack_02_ElseInvertsSkip(t *testing.T) {
	c := NewConditionalStack()
	_ = c.Push(false)

	if err := c.Else(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.IsActive() {
		t.Fatalf("expected #else of a false #if to activate")
	}
}

func TestConditionalStack_03_SecondElseIsError(t *testing.T) {
	c := NewConditionalStack()
	_ = c.Push(true)
	_ = c.Else()

	if err := c.Else(); err != ErrElseAlreadySeen {
		t.Fatalf("expected ErrElseAlreadySeen, got %v", err)
	}
}

func TestConditionalStack_04_EndifWithoutIfIsError(t *testing.T) {
	c := NewConditionalStack()

	if err := c.Endif(); err != ErrNoActiveFrame {
		t.Fatalf("expected ErrNoActiveFrame, got %v", err)
	}
}

func TestConditionalStack_05_NestedFalseStaysSuppressedRegardlessOfInnerCondition(t *testing.T) {
	c := NewConditionalStack()
	_ = c.Push(false)
	_ = c.Push(true) // inner condition is true, but the outer frame is skipping

	if c.IsActive() {
		t.Fatalf("expected inner frame to stay suppressed because the outer frame is skipping")
	}

	_ = c.Endif()

	if c.IsActive() {
		t.Fatalf("expected outer frame to still be skipping after inner #endif")
	}

	_ = c.Endif()

	if !c.IsActive() {
		t.Fatalf("expected stack to be active again once empty")
	}
}

func TestConditionalStack_06_OverflowAtMaxDepth(t *testing.T) {
	c := NewConditionalStack()

	for i := 0; i < MaxConditionalDepth; i++ {
		if err := c.Push(true); err != nil {
			t.Fatalf("unexpected error at depth %d: %v", i, err)
		}
	}

	if err := c.Push(true); err != ErrConditionalOverflow {
		t.Fatalf("expected ErrConditionalOverflow at depth %d, got %v", MaxConditionalDepth, err)
	}
}

func TestConditionalStack_07_OnlyOneBranchEmitsOutput(t *testing.T) {
	c := NewConditionalStack()
	_ = c.Push(true) // #if true

	branch1Active := c.IsActive()

	_ = c.Elif(true) // should not activate: a branch was already taken

	branch2Active := c.IsActive()

	_ = c.Else()

	branch3Active := c.IsActive()

	active := 0
	for _, b := range []bool{branch1Active, branch2Active, branch3Active} {
		if b {
			active++
		}
	}

	if active != 1 {
		t.Fatalf("expected exactly one branch active across if/elif/else, got %d", active)
	}
}

func TestIfExpr_00_DefinedMacro(t *testing.T) {
	m := NewMacroTable()
	m.Define("A", Macro{Value: "1"})

	if !evalCondition("defined(A)", m) {
		t.Fatalf("expected defined(A) to be true")
	}

	if evalCondition("defined(B)", m) {
		t.Fatalf("expected defined(B) to be false")
	}
}

func TestIfExpr_01_LogicalOperators(t *testing.T) {
	m := NewMacroTable()

	if !evalCondition("1 && 1", m) {
		t.Fatalf("expected 1 && 1 to be true")
	}

	if evalCondition("1 && 0", m) {
		t.Fatalf("expected 1 && 0 to be false")
	}

	if !evalCondition("0 || 1", m) {
		t.Fatalf("expected 0 || 1 to be true")
	}

	if !evalCondition("!0", m) {
		t.Fatalf("expected !0 to be true")
	}
}

func TestIfExpr_02_EqualityAndParens(t *testing.T) {
	m := NewMacroTable()

	if !evalCondition("(1 == 1) && (2 != 1)", m) {
		t.Fatalf("expected parenthesized equality expression to be true")
	}
}
