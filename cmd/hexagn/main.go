// This is the main-driver for our compiler.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/GameBuilder202/Hexagn/diag"
	"github.com/GameBuilder202/Hexagn/emitter"
	"github.com/GameBuilder202/Hexagn/importer"
	"github.com/GameBuilder202/Hexagn/linker"
	"github.com/GameBuilder202/Hexagn/optimiser"
	"github.com/GameBuilder202/Hexagn/parser"
)

// libRoots collects repeated -l flags, in the order given on the
// command line.
type libRoots []string

func (l *libRoots) String() string { return fmt.Sprintf("%v", []string(*l)) }
func (l *libRoots) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run contains the whole driver so it can be exercised from a test
// without calling os.Exit directly.
func run(args []string) int {
	fs := flag.NewFlagSet("hexagn", flag.ContinueOnError)

	output := fs.String("o", "out.urcl", "Path to write the assembled output to.")
	var libs libRoots
	fs.Var(&libs, "l", "Additional library search root (repeatable).")
	noMain := fs.Bool("no-main", false, "Omit the program prologue / bootstrap.")
	debugSyms := fs.Bool("g", false, "Emit source-line debug comments.")
	optLevel := fs.Int("O", 0, "Number of constant-folding passes.")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if *debugSyms {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: hexagn <input.hxgn> [-o out] [-l path]... [--no-main] [-g] [-O level]")
		return 1
	}

	input := fs.Arg(0)
	contents, err := os.ReadFile(input)
	if err != nil {
		panic(err)
	}
	source := string(contents)

	logrus.Debugln("hexagn: lexing and parsing")
	prog, err := parser.Parse(source)
	if err != nil {
		return report(err)
	}

	logrus.Debugf("hexagn: folding constants (%d pass(es))", *optLevel)
	prog, err = optimiser.Optimise(prog, source, *optLevel)
	if err != nil {
		return report(err)
	}

	l := linker.New()

	logrus.Debugln("hexagn: resolving imports")
	res := importer.New(l, *optLevel, *debugSyms)
	for _, root := range libs {
		res.AddRoot(root)
	}
	if err := res.ResolveProgram(prog, source); err != nil {
		return report(err)
	}

	logrus.Debugln("hexagn: emitting")
	e := emitter.New(l, source, *debugSyms)
	out, err := e.Compile(prog, *noMain)
	if err != nil {
		return report(err)
	}
	// Imported files' compiled code - including Private functions that
	// never made it into the outer Linker - is concatenated after the
	// main module's own output.
	out += res.ImportedCode()

	if err := os.WriteFile(*output, []byte(out), 0o644); err != nil {
		panic(err)
	}
	return 0
}

// report prints a fatal diagnostic and maps it to the process exit code
// named in spec.md section 6: 1 for a semantic error, 2 for a syntax
// error, otherwise (an internal, non-diagnostic error) it panics.
func report(err error) int {
	if d, ok := err.(*diag.Error); ok {
		diag.Print(os.Stderr, d)
		return int(d.Code)
	}
	panic(err)
}
