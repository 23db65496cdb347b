// Command refinex is the demo CLI for the staged partial evaluator: it
// parses a program with the surface syntax in internal/parser, runs it
// through internal/stage, and prints the residual expression (or the Now
// value) the evaluation produced. Modeled on the host/argument handling in
// the teacher's cmd/funxy/main.go — manual os.Args scanning rather than a
// flags package, a DEBUG env var that re-panics for a stack trace, and
// reading the program from stdin when no file argument is given — scaled
// down to the handful of modes this evaluator actually needs.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/refinex-lang/refinex/internal/config"
	"github.com/refinex-lang/refinex/internal/constraint"
	"github.com/refinex-lang/refinex/internal/modules"
	"github.com/refinex-lang/refinex/internal/pipeline"
	"github.com/refinex-lang/refinex/internal/prettyprinter"
	"github.com/refinex-lang/refinex/internal/stage"
	"github.com/refinex-lang/refinex/internal/values"
)

const usage = `Usage: refinex [options] [file]
       refinex -e '<expression>'

Options:
  -e EXPR        evaluate EXPR instead of reading a file/stdin
  -proto DIR      root directory "proto:" module paths resolve under
  -config DIR     root directory "config:" module paths resolve under
  -cache PATH     open (creating if needed) a sqlite prover cache; the evaluator does not consult it
  -debug          re-panic on internal errors instead of printing them
  -help           show this message
`

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "this is a bug in refinex, please report it")
			os.Exit(1)
		}
	}()

	var (
		expr       string
		protoRoot  = "."
		configRoot = "."
		cachePath  string
		debugMode  = false
		file       string
	)

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-help", "--help", "help":
			fmt.Fprint(os.Stdout, usage)
			return
		case "-debug", "--debug":
			debugMode = true
		case "-e":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "refinex: -e requires an expression argument")
				os.Exit(1)
			}
			expr = args[i]
		case "-proto":
			i++
			if i < len(args) {
				protoRoot = args[i]
			}
		case "-config":
			i++
			if i < len(args) {
				configRoot = args[i]
			}
		case "-cache":
			i++
			if i < len(args) {
				cachePath = args[i]
			}
		default:
			if !strings.HasPrefix(args[i], "-") && file == "" {
				file = args[i]
			}
		}
	}
	if debugMode {
		os.Setenv("DEBUG", "1")
	}

	config.ColorOutput = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	config.CachePath = cachePath

	source, err := readSource(expr, file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refinex: %s\n", err)
		os.Exit(1)
	}

	ev := stage.New().WithResolver(modules.New(protoRoot, configRoot))

	if cachePath != "" {
		cache, err := constraint.OpenCache(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "refinex: opening cache %q: %s\n", cachePath, err)
			os.Exit(1)
		}
		defer cache.Close()
	}

	ctx := pipeline.Standard(ev).Run(&pipeline.Context{Source: source})

	if len(ctx.ParseErrors) > 0 {
		for _, e := range ctx.ParseErrors {
			fmt.Fprintln(os.Stderr, colorize("31", e))
		}
		os.Exit(1)
	}
	if ctx.EvalError != nil {
		fmt.Fprintln(os.Stderr, colorize("31", ctx.EvalError.Error()))
		os.Exit(1)
	}

	fmt.Println(renderResult(ctx.Result))
}

// readSource picks the program text: an inline -e expression wins, then a
// named file, then stdin (so `echo '1+2' | refinex` works like the
// teacher's pipe-from-stdin fallback).
func readSource(expr, file string) (string, error) {
	if expr != "" {
		return expr, nil
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// renderResult prints a Now value directly and a Later value as its
// residual expression, colorized so a terminal can tell at a glance which
// stage a result landed in: green for fully specialized, yellow for
// residualized.
func renderResult(sv *values.SValue) string {
	if sv == nil {
		return "<no result>"
	}
	if sv.IsNow() {
		return colorize("32", sv.Value.String())
	}
	return colorize("33", prettyprinter.Print(sv.Residual))
}

func colorize(code, s string) string {
	if !config.ColorOutput {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}
