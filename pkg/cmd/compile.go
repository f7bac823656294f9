// Copyright Consensys Software Inc.
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
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tlang-dev/tlc/pkg/tlc/compiler"
	"github.com/tlang-dev/tlc/pkg/tlc/emit"
	"github.com/tlang-dev/tlc/pkg/util"
	"github.com/tlang-dev/tlc/pkg/util/source"
)

// codeExtension identifies code modules; each produces one assembly file.
const codeExtension = ".tc"

// declExtension identifies declaration modules, which may be imported but
// produce no output of their own.
const declExtension = ".td"

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file1.tc file2.td ...",
	Short: "compile T source files into assembly.",
	Long: `Compile a given set of source file(s), producing one assembly
file per code (.tc) module.  Declaration (.td) modules are read but produce
no output.`,
	Run: runCompileCmd,
}

func runCompileCmd(cmd *cobra.Command, args []string) {
	// Configure log level
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	//
	var (
		dumpAst = GetFlag(cmd, "ast")
		dumpIr  = GetFlag(cmd, "ir")
	)
	//
	if len(args) == 0 {
		fmt.Println("no input files")
		os.Exit(2)
	}
	//
	for _, arg := range args {
		if !strings.HasSuffix(arg, codeExtension) && !strings.HasSuffix(arg, declExtension) {
			fmt.Printf("unknown file extension: %s\n", arg)
			os.Exit(2)
		}
	}
	// Read input files
	files, err := source.ReadFiles(args...)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	// Compile
	results, errs := compiler.CompileSourceFiles(files, func(name string) bool {
		return strings.HasSuffix(name, codeExtension)
	})
	// Report diagnostics
	reportErrors(errs)
	//
	errored := len(errs) > 0
	//
	for _, result := range results {
		errored = errored || result.Unit.Errored
	}
	// Errored units produce no output.
	results = util.RemoveMatching(results, func(r compiler.Result) bool {
		return r.Unit.Errored
	})
	//
	for _, result := range results {
		if dumpAst {
			writeAbstractSyntaxTree(result.Unit)
		}
		//
		if dumpIr {
			writeFragments(result)
		}
		//
		if err := writeAssemblyFile(result); err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	//
	if errored {
		os.Exit(1)
	}
}

// writeAssemblyFile writes one assembly file for a code unit, named by
// replacing the code extension with "s".
func writeAssemblyFile(result compiler.Result) error {
	var (
		name    = result.Unit.File.Filename()
		outname = strings.TrimSuffix(name, codeExtension) + ".s"
	)
	//
	out, err := os.Create(outname)
	//
	if err != nil {
		return err
	}
	//
	defer out.Close()
	//
	return emit.WriteAssembly(out, result.Fragments, emit.NewListingBackend())
}

// reportErrors prints diagnostics to stderr, highlighting the enclosing
// source line when stderr is a terminal.
func reportErrors(errs []source.SyntaxError) {
	colors := term.IsTerminal(int(os.Stderr.Fd()))
	//
	for i := range errs {
		printSyntaxError(&errs[i], colors)
	}
}

func printSyntaxError(err *source.SyntaxError, colors bool) {
	fmt.Fprintln(os.Stderr, err.Error())
	//
	var (
		line = err.FirstEnclosingLine()
		span = err.Span()
		text = line.String()
	)
	//
	if len(text) == 0 {
		return
	}
	//
	fmt.Fprintf(os.Stderr, "%s\n", text)
	// Highlight the offending span with a caret line.
	var (
		offset = span.Start() - line.Start()
		width  = max(1, min(span.Length(), line.Length()-offset))
	)
	//
	if offset < 0 || offset >= line.Length() {
		return
	}
	//
	highlight := strings.Repeat(" ", offset) + strings.Repeat("^", width)
	//
	if colors {
		fmt.Fprintf(os.Stderr, "\033[31m%s\033[0m\n", highlight)
	} else {
		fmt.Fprintf(os.Stderr, "%s\n", highlight)
	}
}

// ============================================================================
// AST & IR dumps
// ============================================================================

func writeAbstractSyntaxTree(unit *compiler.Unit) {
	if unit.Ast == nil {
		return
	}
	//
	fmt.Printf("module %s;\n", unit.Module)
	//
	for _, imp := range unit.Ast.Imports {
		fmt.Printf("using %s;\n", imp.Name())
	}
	//
	for _, decl := range unit.Ast.Decls {
		fmt.Println(compiler.DumpDecl(decl))
	}
}

func writeFragments(result compiler.Result) {
	for _, fragment := range result.Fragments {
		fmt.Println(compiler.DumpFragment(fragment))
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().Bool("ast", false, "Output abstract syntax tree (AST)")
	compileCmd.Flags().Bool("ir", false, "Output intermediate representation (IR)")
}
