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
	"strings"

	"github.com/pxlang/pxc/pkg/diagnostics"
)

// handleDirectiveLine is invoked by stepNormal once atDirectiveStart() holds.
// It collects the directive's raw text (splicing any internal line
// continuations), dispatches it, and always accounts for the line(s)
// consumed so downstream line numbering stays correct.
func (s *State) handleDirectiveLine() {
	s.flags |= InDirective
	s.consumeByte() // the '#'

	s.directiveBuf = s.directiveBuf[:0]
	overflowed := false

	for !s.eof() {
		if s.peek() == '\\' && (s.peekAt(1) == '\n' || (s.peekAt(1) == '\r' && s.peekAt(2) == '\n')) {
			s.consumeContinuation()

			if len(s.directiveBuf) < DirectiveBufferLimit {
				s.directiveBuf = append(s.directiveBuf, ' ')
			}

			continue
		}

		if s.peek() == '\n' || (s.peek() == '\r' && s.peekAt(1) == '\n') {
			break
		}

		b := s.peek()
		if len(s.directiveBuf) >= DirectiveBufferLimit {
			overflowed = true
		} else {
			s.directiveBuf = append(s.directiveBuf, b)
		}

		s.consumeByte()
	}

	s.flags &^= InDirective

	text := string(s.directiveBuf)
	if overflowed {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplDirectiveTooLong, "preproc",
			s.line, 1, len(text), "directive exceeds %d byte limit and was ignored", DirectiveBufferLimit)
	} else {
		s.dispatchDirective(text)
	}

	if !s.eof() {
		s.advanceLine()
	}
}

// dispatchDirective parses the directive name out of text (the raw text
// following '#', continuations already spliced) and executes it.
func (s *State) dispatchDirective(text string) {
	text = strings.TrimLeft(text, " \t")
	name, rest := splitFirstWord(text)
	rest = strings.TrimSpace(rest)

	// Conditional directives execute regardless of the current
	// should_output state: their entire job is to manage that state.
	switch name {
	case "if":
		if err := s.conditional.Push(evalCondition(rest, s.macros)); err != nil {
			s.reportConditionalError(err)
		}

		return
	case "ifdef":
		if err := s.conditional.Push(s.macros.IsDefined(rest)); err != nil {
			s.reportConditionalError(err)
		}

		return
	case "ifndef":
		if err := s.conditional.Push(!s.macros.IsDefined(rest)); err != nil {
			s.reportConditionalError(err)
		}

		return
	case "elif":
		if err := s.conditional.Elif(evalCondition(rest, s.macros)); err != nil {
			s.reportConditionalError(err)
		}

		return
	case "else":
		if err := s.conditional.Else(); err != nil {
			s.reportConditionalError(err)
		}

		return
	case "endif":
		if err := s.conditional.Endif(); err != nil {
			s.reportConditionalError(err)
		}

		return
	}

	if !s.shouldOutput() {
		// Non-conditional directives are only processed in active
		// regions, matching the C-preprocessor convention of silently
		// skipping both their effects and any diagnostics about them.
		return
	}

	switch name {
	case "define":
		s.handleDefine(rest)
	case "undef":
		s.macros.Undef(strings.TrimSpace(rest))
	case "import":
		s.handleImport(rest)
	case "using":
		s.handleUsing(rest)
	case "line":
		s.handleLine(rest)
	case "pragma":
		s.handlePragma(rest)
	default:
		s.diags.Reportf(diagnostics.Warning, diagnostics.TmplUnknownDirective, "preproc",
			s.line, 1, len(name)+1, "unknown directive '#%s'", name)
	}
}

func (s *State) reportConditionalError(err error) {
	switch err {
	case ErrConditionalOverflow:
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplUnterminatedCond, "preproc",
			s.line, 1, 1, "conditional nesting exceeds maximum depth of %d", MaxConditionalDepth)
	case ErrNoActiveFrame:
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplMisplacedElseOrElif, "preproc",
			s.line, 1, 1, "%s", err.Error())
	case ErrElseAlreadySeen:
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplMisplacedElseOrElif, "preproc",
			s.line, 1, 1, "%s", err.Error())
	default:
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplMisplacedElseOrElif, "preproc",
			s.line, 1, 1, "%s", err.Error())
	}
}

// handleDefine parses `NAME [( p1, ... )] BODY` and inserts or replaces the
// macro, per spec.md §4.1.
func (s *State) handleDefine(rest string) {
	name, rest := splitFirstWord(rest)
	rest = strings.TrimLeft(rest, " \t")

	macro := Macro{}

	if strings.HasPrefix(rest, "(") {
		end := strings.IndexByte(rest, ')')
		if end >= 0 {
			paramList := rest[1:end]
			macro.HasParameters = true

			for _, p := range strings.Split(paramList, ",") {
				p = strings.TrimSpace(p)
				if p != "" {
					macro.Parameters = append(macro.Parameters, p)
				}
			}

			rest = strings.TrimLeft(rest[end+1:], " \t")
		}
	}

	macro.Value = rest

	s.macros.Define(name, macro)
}

// handleImport resolves and textually includes the file named by a quoted
// `#import "path"` argument.
func (s *State) handleImport(rest string) {
	path := stripQuotes(rest)
	if path == "" {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplFileNotFound, "preproc",
			s.line, 1, 1, "malformed #import directive")

		return
	}

	resolved := s.resolver.ResolveImport(path, s.filePath)
	s.includeFile(resolved)
}

// handleUsing searches the well-known library paths for `libname.hp`, emits
// the linker marker, then includes it.
func (s *State) handleUsing(rest string) {
	libname := stripQuotes(rest)
	if libname == "" {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplFileNotFound, "preproc",
			s.line, 1, 1, "malformed #using directive")

		return
	}

	resolved, found := ResolveUsing(libname, s.filePath)
	if !found {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplFileNotFound, "preproc",
			s.line, 1, 1, "library %q not found on any search path", libname)

		return
	}

	s.emitString(LinkerMarker(libname))
	s.includeFile(resolved)
}

// includeFile performs the shared cycle-guarded, re-inclusion-guarded
// textual inclusion used by both #import and #using.
func (s *State) includeFile(resolved string) {
	if s.resolver.AlreadyIncluded(resolved) {
		return
	}

	if cycle := s.resolver.Enter(resolved); cycle {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplFileNotFound, "preproc",
			s.line, 1, 1, "cyclic inclusion of %q detected", resolved)

		return
	}
	defer s.resolver.Leave()

	content, err := os.ReadFile(resolved)
	if err != nil {
		s.diags.Reportf(diagnostics.Error, diagnostics.TmplFileNotFound, "preproc",
			s.line, 1, 1, "cannot open %q: %s", resolved, err.Error())

		return
	}

	child := newState(resolved, content, s.macros, s.conditional, s.resolver, s.diags)

	if guard := detectIncludeGuard(content); guard != "" && s.macros.IsDefined(guard) {
		return
	}

	child.run()
	s.emitString(child.output.String())
}

// handleLine accepts `#line N ["file"]` and otherwise ignores it: neither
// the diagnostics line numbering nor include resolution changes.
func (s *State) handleLine(rest string) {
	_, _ = splitFirstWord(rest) // line number currently informational only
}

// handlePragma recognizes `#pragma once`; other pragmas are accepted and
// ignored (no downstream consumer currently needs them).
func (s *State) handlePragma(rest string) {
	word, _ := splitFirstWord(rest)
	if word == "once" {
		s.resolver.MarkPragmaOnce(s.filePath)
	}
}

// splitFirstWord splits text on the first run of horizontal whitespace,
// returning the first word and the (untrimmed) remainder.
func splitFirstWord(text string) (word, rest string) {
	i := 0
	for i < len(text) && !isWhitespaceByte(text[i]) {
		i++
	}

	word = text[:i]

	if i < len(text) {
		rest = text[i:]
	}

	return word, rest
}

// detectIncludeGuard recognizes the `#ifndef GUARD` / `#define GUARD`
// idiom at the start of an included file's content, used as a cheap
// optimization alongside the resolver's explicit cycle/seen tracking.
func detectIncludeGuard(content []byte) string {
	text := strings.TrimLeft(string(content), " \t\r\n")
	if !strings.HasPrefix(text, "#ifndef") {
		return ""
	}

	lines := strings.SplitN(text, "\n", 3)
	if len(lines) < 2 {
		return ""
	}

	_, guardRest := splitFirstWord(strings.TrimPrefix(strings.TrimSpace(lines[0]), "#ifndef"))
	guard := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "#ifndef"))

	if guard == "" {
		guard = strings.TrimSpace(guardRest)
	}

	defineLine := strings.TrimSpace(lines[1])
	if !strings.HasPrefix(defineLine, "#define") {
		return ""
	}

	definedName := strings.TrimSpace(strings.TrimPrefix(defineLine, "#define"))
	if definedName == guard && guard != "" {
		return guard
	}

	return ""
}
