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

import "github.com/pxlang/pxc/pkg/diagnostics"

// run performs the single cursor traversal described in spec.md §4.1: one
// pass over the input, dispatching on the current mode in priority order
// (single-line-comment, multi-line-comment, string, char, otherwise normal).
// Directives and `__NAME__` configuration macros are recognized and consumed
// whole from within the normal step.
func (s *State) run() {
	for !s.eof() {
		switch {
		case s.flags&InLineComment != 0:
			s.stepLineComment()
		case s.flags&InBlockComment != 0:
			s.stepBlockComment()
		case s.flags&InString != 0:
			s.stepQuoted('"', InString)
		case s.flags&InChar != 0:
			s.stepQuoted('\'', InChar)
		default:
			s.stepNormal()
		}
	}
}

// stepLineComment consumes bytes until (but not including) the terminating
// newline, emitting nothing for comment content.  A line comment always runs
// to end-of-line, so no token ever follows it on the same line: unlike a
// block comment, it needs no replacement whitespace, and the newline itself
// is left for stepNormal's advanceLine to preserve the line count.
func (s *State) stepLineComment() {
	if s.peek() == '\n' || (s.peek() == '\r' && s.peekAt(1) == '\n') {
		s.flags &^= InLineComment
		return
	}

	s.consumeByte()
}

// stepBlockComment consumes bytes until `*/`, emitting a unconditional
// newline for every newline seen inside (to preserve line numbers) and
// nothing else, then a single replacement space once closed.
func (s *State) stepBlockComment() {
	if s.peek() == '\n' || (s.peek() == '\r' && s.peekAt(1) == '\n') {
		s.advanceLine()
		return
	}

	if s.peek() == '*' && s.peekAt(1) == '/' {
		s.pos += 2
		s.col += 2
		s.flags &^= InBlockComment
		s.emit(' ')

		return
	}

	s.consumeByte()
}

// stepQuoted consumes a string or char literal, passing its contents through
// verbatim (including escape sequences) until the matching unescaped
// closing quote.  An unterminated literal is reported and the mode is
// abandoned at the newline so the main loop can still preserve line count.
func (s *State) stepQuoted(quote byte, mode Flags) {
	if s.peek() == '\n' || (s.peek() == '\r' && s.peekAt(1) == '\n') {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplMissingClosingQuote, "preproc",
			s.line, s.col, 1, "missing closing quote")
		s.flags &^= mode

		return
	}

	if s.peek() == '\\' && !s.eofAt(1) {
		s.emit(s.consumeByte())
		s.emit(s.consumeByte())

		return
	}

	if s.peek() == quote {
		s.emit(s.consumeByte())
		s.flags &^= mode

		return
	}

	s.emit(s.consumeByte())
}

func (s *State) eofAt(offset int) bool {
	return s.pos+offset >= len(s.input)
}

// stepNormal handles the default mode: comment/literal openers, directives,
// configuration macros, identifiers (possibly macro names), and ordinary
// passthrough bytes.
func (s *State) stepNormal() {
	if s.peek() == '\\' && (s.peekAt(1) == '\n' || (s.peekAt(1) == '\r' && s.peekAt(2) == '\n')) {
		s.consumeContinuation()
		return
	}

	if s.peek() == '\n' || (s.peek() == '\r' && s.peekAt(1) == '\n') {
		s.advanceLine()
		return
	}

	if s.hasPrefix("//") {
		s.pos += 2
		s.col += 2
		s.flags |= InLineComment
		s.lineHasContent = true

		return
	}

	if s.hasPrefix("/*") {
		s.pos += 2
		s.col += 2
		s.flags |= InBlockComment
		s.lineHasContent = true

		return
	}

	if s.peek() == '"' {
		s.emit(s.consumeByte())
		s.flags |= InString

		return
	}

	if s.peek() == '\'' {
		s.emit(s.consumeByte())
		s.flags |= InChar

		return
	}

	if s.atDirectiveStart() {
		s.handleDirectiveLine()
		return
	}

	if isConfigMacroStart(s) {
		name := s.collectIdentifier()
		s.emitString(name)

		return
	}

	if isIdentStart(s.peek()) {
		name := s.collectIdentifier()
		s.expandIdentifier(name)

		return
	}

	s.emit(s.consumeByte())
}

// collectIdentifier greedily reads an identifier into identBuf (capped at
// IdentifierBufferLimit) and returns it as a string.
func (s *State) collectIdentifier() string {
	s.identBuf = s.identBuf[:0]

	for isIdentPart(s.peek()) {
		if len(s.identBuf) < IdentifierBufferLimit {
			s.identBuf = append(s.identBuf, s.peek())
		}

		s.consumeByte()
	}

	return string(s.identBuf)
}

// expandIdentifier resolves an identifier against the macro table:
// object-like macros substitute their body (subject to the re-entry guard),
// function-like macros currently emit only their name (a documented gap,
// see spec.md §9), and anything else passes through unchanged.
func (s *State) expandIdentifier(name string) {
	if s.expanding[name] {
		s.emitString(name)
		return
	}

	macro, ok := s.macros.Lookup(name)
	if !ok {
		s.emitString(name)
		return
	}

	if macro.HasParameters {
		// Call-site expansion of function-like macros is a documented
		// gap (spec.md §9); only the name is emitted.
		s.emitString(name)
		return
	}

	body := macro.Value
	if len(body) > MacroExpansionBufferLimit {
		body = body[:MacroExpansionBufferLimit]
	}

	s.expanding[name] = true
	s.emitString(body)
	delete(s.expanding, name)
}
