// Package repl is an interactive dump-IR loop over the compiler's
// front end, adapted from the teacher's repl.Start(io.Reader) shape: read
// a line, run it through the pipeline, print the result, repeat.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"minic/internal/ir"
	"minic/internal/lower"
	"minic/internal/parser"
	"minic/internal/replgrammar"
)

const prompt = "minic> "

// Start runs the REPL loop over in, writing to stdout/stderr via fmt and
// fatih/color, until in is exhausted. Each line is either a ":grammar"
// quick-parse of a one-line arithmetic expression (internal/replgrammar)
// or a complete MiniC source line run through parse -> lower -> print IR.
func Start(in io.Reader) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Print(prompt)
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(line, ":grammar "); ok {
			dumpGrammar(rest)
			continue
		}

		dumpIR(line)
	}
}

func dumpGrammar(line string) {
	expr, err := replgrammar.ParseLine(line)
	if err != nil {
		return // replgrammar.ParseLine already printed the diagnostic
	}
	fmt.Printf("expr: %+v\n", expr)
}

func dumpIR(line string) {
	unit, scanErrs, parseErrs := parser.ParseSource("<repl>", line)
	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		for _, se := range scanErrs {
			color.Red("%s", se.Error())
		}
		for _, pe := range parseErrs {
			color.Red("%s", pe.Error())
		}
		return
	}

	program, lowerErrs := lower.LowerProgram(unit)
	if len(lowerErrs) > 0 {
		for _, e := range lowerErrs {
			color.Red("%s: %s", e.Code, e.Message)
		}
		return
	}

	color.Green("ir:")
	fmt.Println(ir.Print(program))
}
