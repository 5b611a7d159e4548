// Command minicc compiles a single MiniC source file and prints one of
// five dump modes, matching original_source/src/main.cpp's one-flag-per-mode
// CLI surface: -ast, -ir, -opt-ir, -asm, -opt-asm.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"minic/internal/backend"
	"minic/internal/errors"
	"minic/internal/lower"
	"minic/internal/ir"
	"minic/internal/optimize"
	"minic/internal/parser"
	"minic/repl"
)

func main() {
	astMode := flag.Bool("ast", false, "dump the parsed AST")
	irMode := flag.Bool("ir", false, "dump unoptimized three-address IR")
	optIRMode := flag.Bool("opt-ir", false, "dump IR after constant propagation and inlining")
	asmMode := flag.Bool("asm", false, "dump unoptimized RV32I assembly")
	optAsmMode := flag.Bool("opt-asm", false, "dump RV32I assembly after optimization")
	replMode := flag.Bool("repl", false, "start an interactive dump-IR REPL instead of compiling a file")
	depthLimit := flag.Int("inline-depth", 1, "inliner recursion depth limit")
	sizeLimit := flag.Int("inline-size", 10, "inliner callee size limit")
	flag.Parse()

	if *replMode {
		repl.Start(os.Stdin)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: minicc [-ast|-ir|-opt-ir|-asm|-opt-asm|-repl] <file.c>")
		os.Exit(1)
	}
	path := args[0]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	unit, scanErrs, parseErrs := parser.ParseSource(path, string(source))
	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		for _, se := range scanErrs {
			color.Red("%s", se.Error())
		}
		for _, pe := range parseErrs {
			color.Red("%s", pe.Error())
		}
		os.Exit(1)
	}

	if *astMode {
		fmt.Println(unit.String())
		return
	}

	program, lowerErrs := lower.LowerProgram(unit)
	if len(lowerErrs) > 0 {
		reporter := errors.NewErrorReporter(path, string(source))
		for _, e := range lowerErrs {
			fmt.Fprintln(os.Stderr, reporter.FormatError(e))
		}
		os.Exit(1)
	}

	switch {
	case *irMode:
		fmt.Println(ir.Print(program))
		return
	case *asmMode:
		fmt.Println(backend.NewEmitter().EmitProgram(program))
		return
	}

	pipeline := optimize.NewDefaultPipeline(*depthLimit, *sizeLimit)
	pipeline.Run(program)

	switch {
	case *optIRMode:
		fmt.Println(ir.Print(program))
	case *optAsmMode:
		fmt.Println(backend.NewEmitter().EmitProgram(program))
	default:
		fmt.Println(backend.NewEmitter().EmitProgram(program))
	}
}
