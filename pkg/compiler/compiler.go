// Package compiler provides the compilation pipeline for BNA scripts (.bna files).
// It transforms source code into a runnable program through four phases:
// 1. Lexer: Tokenization
// 2. Parser: one statement per line
// 3. Codegen: instruction generation
// 4. Build: label resolution (pkg/program)
//
// This package provides a unified API for compiling BNA scripts:
// - Compile: Compiles source code string to a Program
// - CompileFile: Loads a script through script.Loader and compiles it
// - CompileScripts: Compiles several loaded scripts independently
// - CompileDirectory: Loads and compiles all scripts in a directory
package compiler

import (
	"errors"
	"fmt"

	"github.com/zurustar/bna/pkg/compiler/codegen"
	"github.com/zurustar/bna/pkg/compiler/lexer"
	"github.com/zurustar/bna/pkg/compiler/parser"
	"github.com/zurustar/bna/pkg/opcode"
	"github.com/zurustar/bna/pkg/program"
	"github.com/zurustar/bna/pkg/script"
)

// Compile compiles source code to a Program.
// It chains the lexer → parser → codegen → build pipeline.
//
// Parameters:
//   - source: UTF-8 encoded source code string
//
// Returns:
//   - *program.Program: The compiled program with resolved labels
//   - []error: Any compilation errors (empty if successful)
//
// If a phase fails, the pipeline stops and returns every error that phase
// collected, each as a *CompileError with source context.
func Compile(source string) (*program.Program, []error) {
	instructions, errs := Generate(source)
	if len(errs) > 0 {
		return nil, errs
	}

	prog, err := program.Build(instructions)
	if err != nil {
		return nil, []error{buildError(err, source)}
	}
	return prog, nil
}

// Generate runs the lexer, parser and code generator without resolving labels.
// It is used to inspect the generated instructions of a script that may not build.
func Generate(source string) ([]opcode.Instruction, []error) {
	// Phase 1 + 2: lexical and syntax analysis
	p := parser.New(lexer.New(source))
	ast := p.ParseProgram()

	if parseErrs := p.Errors(); len(parseErrs) > 0 {
		compileErrors := make([]error, 0, len(parseErrs))
		for _, pe := range parseErrs {
			if pe.Lexical {
				compileErrors = append(compileErrors, NewLexerErrorWithContext(pe.Message, pe.Line, pe.Column, source))
			} else {
				compileErrors = append(compileErrors, NewParserErrorWithContext(pe.Message, pe.Line, pe.Column, source))
			}
		}
		return nil, compileErrors
	}

	// Phase 3: instruction generation
	g := codegen.New()
	instructions := g.Generate(ast)

	if genErrs := g.Errors(); len(genErrs) > 0 {
		compileErrors := make([]error, 0, len(genErrs))
		for _, ge := range genErrs {
			compileErrors = append(compileErrors, NewCompilerErrorWithContext(ge.Message, ge.Line, ge.Column, source))
		}
		return nil, compileErrors
	}

	return instructions, nil
}

// buildError converts a label resolution failure into a CompileError pointing
// at the offending statement.
func buildError(err error, source string) error {
	var be *program.BuildError
	if !errors.As(err, &be) {
		return err
	}
	ce := NewCompilerErrorWithContext(be.Message, be.Line, 1, source)
	ce.Err = be
	return ce
}

// CompileFile loads a script through the loader and compiles it.
//
// Parameters:
//   - loader: The script loader (file system and text encoding)
//   - name: Script path relative to the loader's base
//
// Returns:
//   - *program.Program: The compiled program
//   - []error: Any load or compilation errors (empty if successful)
func CompileFile(loader *script.Loader, name string) (*program.Program, []error) {
	s, err := loader.Load(name)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to load script %s: %w", name, err)}
	}
	return Compile(s.Content)
}

// CompileResult represents the compilation result for a single script.
type CompileResult struct {
	FileName string
	Program  *program.Program
	Errors   []error
}

// CompileScripts compiles multiple loaded scripts.
// Each script is compiled independently; an error in one script does not stop
// the others.
func CompileScripts(scripts []*script.Script) []CompileResult {
	results := make([]CompileResult, 0, len(scripts))
	for _, s := range scripts {
		prog, errs := Compile(s.Content)
		results = append(results, CompileResult{
			FileName: s.FileName,
			Program:  prog,
			Errors:   errs,
		})
	}
	return results
}

// CompileDirectory loads every .bna script in dir and compiles them.
// Scripts that cannot be loaded are reported as results with a single error.
func CompileDirectory(loader *script.Loader, dir string) ([]CompileResult, error) {
	names, err := loader.List(dir)
	if err != nil {
		return nil, err
	}

	var results []CompileResult
	for _, name := range names {
		s, err := loader.Load(joinPath(dir, name))
		if err != nil {
			results = append(results, CompileResult{FileName: name, Errors: []error{err}})
			continue
		}
		results = append(results, CompileScripts([]*script.Script{s})...)
	}
	return results, nil
}

func joinPath(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}
