// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

// Command falcon wires config → lexer/parser → checker → SSIR builder →
// register labeler → emitter/driver. Each pipeline stage is its own
// function, fatal aborts terminate the process, and the CLI surface is
// built with cobra rather than bare os.Args.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/falcon-lang/falcon/internal/ast"
	"github.com/falcon-lang/falcon/internal/cerr"
	"github.com/falcon-lang/falcon/internal/check"
	"github.com/falcon-lang/falcon/internal/config"
	"github.com/falcon-lang/falcon/internal/driver"
	"github.com/falcon-lang/falcon/internal/emitter"
	"github.com/falcon-lang/falcon/internal/labeler"
	"github.com/falcon-lang/falcon/internal/parser"
	"github.com/falcon-lang/falcon/internal/regfile"
	"github.com/falcon-lang/falcon/internal/ssir"
)

func main() {
	cfg := &config.Config{}

	root := &cobra.Command{
		Use:   "falcon [source]",
		Short: "Ahead-of-time compiler for the falcon minimal language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.SourcePath = args[0]
			return run(cfg)
		},
	}

	root.Flags().BoolVar(&cfg.PrintAST, "pa", false, "print AST after parsing")
	root.Flags().BoolVar(&cfg.PrintTypedAST, "pat", false, "print AST after typecheck")
	root.Flags().BoolVar(&cfg.PrintSSIR, "ssir", false, "print labeled SSIR")
	root.Flags().BoolVar(&cfg.PrintRegTable, "rt", false, "print the register table and exit")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Error("falcon")
		os.Exit(1)
	}
}

func run(cfg *config.Config) (err error) {
	defer cerr.Guard()

	if cfg.PrintRegTable {
		fmt.Print(regfile.New().Table())
		return nil
	}

	source, readErr := os.ReadFile(cfg.SourcePath)
	if readErr != nil {
		cerr.FatalErr(readErr)
	}

	decls, diags := parser.Parse(string(source))
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
	if cfg.PrintAST {
		fmt.Printf("== AST(%s) ==\n", filepath.Base(cfg.SourcePath))
		printDecls(decls)
	}

	check.New().Check(decls)
	if cfg.PrintTypedAST {
		fmt.Printf("== Typed AST(%s) ==\n", filepath.Base(cfg.SourcePath))
		printDecls(decls)
	}

	fns := ssir.Build(decls)
	labeler.Label(fns)
	if cfg.PrintSSIR {
		fmt.Printf("== SSIR(%s) ==\n", filepath.Base(cfg.SourcePath))
		for _, f := range fns {
			fmt.Print(f.String())
		}
	}

	asm := emitter.Emit(fns)
	wd, _ := os.Getwd()
	name := libNameFromPath(cfg.SourcePath)
	objPath, asmErr := driver.Assemble(wd, name, asm)
	if asmErr != nil {
		logrus.WithError(asmErr).Warn("assembly step skipped (nasm unavailable or failed)")
		return nil
	}
	if linkErr := driver.Link(objPath, filepath.Join(wd, name)); linkErr != nil {
		logrus.WithError(linkErr).Warn("link step skipped (ld unavailable or failed)")
	}
	return nil
}

func printDecls(decls []ast.Node) {
	for _, d := range decls {
		fmt.Println(d.String())
	}
}

func libNameFromPath(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
