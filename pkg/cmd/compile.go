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
package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pxlang/pxc/pkg/diagnostics"
	"github.com/pxlang/pxc/pkg/lexer"
	"github.com/pxlang/pxc/pkg/parser"
	"github.com/pxlang/pxc/pkg/preprocessor"
	"github.com/pxlang/pxc/pkg/render"
	"github.com/pxlang/pxc/pkg/semantic"
)

var compileCmd = &cobra.Command{
	Use:   "compile <files...>",
	Short: "compile one or more .px translation units (alias for the root command)",
	Args:  cobra.ArbitraryArgs,
	RunE: func(c *cobra.Command, args []string) error {
		return runCompile(c, args)
	},
}

// runCompile validates the file-argument list, then processes each .px
// translation unit independently, per SPEC_FULL.md §6.
func runCompile(c *cobra.Command, args []string) error {
	if err := validateFileArgs(args); err != nil {
		return err
	}

	compileCount := GetFlagCount(c, "compile")
	if compileCount > 1 {
		return fmt.Errorf("-c may only be given once, got %d", compileCount)
	}

	compileMode := compileCount == 1

	if GetFlagBool(c, "log-verbose") {
		log.SetLevel(log.DebugLevel)
	}

	anyErrors := false

	for _, file := range args {
		if processFile(c, file, compileMode) {
			anyErrors = true
		}
	}

	if anyErrors {
		exitCode = 1
	}

	return nil
}

func validateFileArgs(args []string) error {
	seen := make(map[string]bool, len(args))

	for _, a := range args {
		if !strings.HasSuffix(a, ".px") {
			return fmt.Errorf("file argument %q must end in .px", a)
		}

		if seen[a] {
			return fmt.Errorf("duplicate file argument %q", a)
		}

		seen[a] = true
	}

	return nil
}

// processFile runs one file through the full pipeline and returns whether
// any ERROR/FATAL diagnostic was recorded.
func processFile(c *cobra.Command, file string, compileMode bool) bool {
	var stageOut bytes.Buffer

	pre, err := preprocessor.Preprocess(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pxc: %v\n", err)
		return true
	}

	diags := pre.Diags

	if wantStage(c, "write-preproc") || wantStage(c, "log-preproc") {
		render.Preprocessed(&stageOut, file, pre.Output)
	}

	lx := lexer.New(pre.Output)
	toks := lx.Tokens()

	if wantStage(c, "write-lexer") || wantStage(c, "log-lexer") {
		render.Tokens(&stageOut, file, toks)
	}

	p := parser.New(toks)
	prog := p.ParseProgram()

	for _, perr := range p.Errors {
		diags.Reportf(diagnostics.Error, diagnostics.TmplInvalidOperation, "parser", 0, 0, 1, "%s", perr)
	}

	if wantStage(c, "write-semantic") || wantStage(c, "log-semantic") {
		render.AST(&stageOut, file, prog)
	}

	an := semantic.NewAnalyzer(diags)
	an.Analyze(prog)

	if wantStage(c, "write-symbols") || wantStage(c, "log-symbols") {
		render.Symbols(&stageOut, file, an.GlobalScope())
	}

	if wantStage(c, "log-state") {
		fmt.Fprintf(&stageOut, "=== state: %s ===\nerrors=%d warnings=%d\n",
			file, diags.ErrorCount(), diags.WarningCount())
	}

	hasErrors := diags.HasErrors()

	if !compileMode || hasErrors {
		if stageOut.Len() > 0 && wantAnyWriteStage(c) {
			os.Stdout.Write(stageOut.Bytes())
		}

		if wantAnyLogStage(c) {
			flushLogStage(file, stageOut.String())
		}
	}

	printDiagnostics(diags)
	printSummary(file, diags)

	return hasErrors
}

// printSummary writes a one-line error/warning count, rule-padded to the
// terminal width when stderr is a TTY (falling back to a fixed width under
// redirection/piping, e.g. in CI logs).
func printSummary(file string, diags *diagnostics.Registry) {
	width := 60

	if fd := int(os.Stderr.Fd()); term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			width = w
		}
	}

	line := fmt.Sprintf("%s: %d error(s), %d warning(s)", file, diags.ErrorCount(), diags.WarningCount())
	if pad := width - len(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}

	fmt.Fprintln(os.Stderr, line)
}

func wantStage(c *cobra.Command, name string) bool {
	return GetFlagBool(c, name) || GetFlagBool(c, "write-all") && strings.HasPrefix(name, "write-") ||
		GetFlagBool(c, "log-all") && strings.HasPrefix(name, "log-")
}

func wantAnyWriteStage(c *cobra.Command) bool {
	return GetFlagBool(c, "write-lexer") || GetFlagBool(c, "write-preproc") || GetFlagBool(c, "write-semantic") ||
		GetFlagBool(c, "write-symbols") || GetFlagBool(c, "write-all")
}

func wantAnyLogStage(c *cobra.Command) bool {
	return GetFlagBool(c, "log-lexer") || GetFlagBool(c, "log-preproc") || GetFlagBool(c, "log-semantic") ||
		GetFlagBool(c, "log-symbols") || GetFlagBool(c, "log-state") || GetFlagBool(c, "log-all")
}

func flushLogStage(file, content string) {
	path := file + ".stages.log"

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "pxc: failed to write %s: %v\n", path, err)
	}
}

// printDiagnostics prints errors then warnings, each with caret-underlined
// source context, per spec.md §7's "errors first" user-visible convention.
func printDiagnostics(diags *diagnostics.Registry) {
	diags.RenderAll(os.Stderr)
}
