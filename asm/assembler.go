// Package asm assembles Pendragon source into the binary format
// package loader reads: lex, parse, rewrite sugar, analyze symbols,
// lower to a code graph, resolve addresses and encode. Condensed into
// one pipeline rather than a separate parser/encoder split, since
// Pendragon's instruction set needs no separate two-pass ARM-style
// literal-pool placement.
package asm

import "path/filepath"

// Assemble runs the full six-pass pipeline over source and returns
// the final binary, or the accumulated diagnostics from whichever
// pass first produced errors.
func Assemble(source, filename string) ([]byte, *ErrorList) {
	_, bin, errs := AssembleVerbose(source, filename, nil)
	return bin, errs
}

// ProgressFunc receives one line per completed pass, for -v reporting.
type ProgressFunc func(msg string)

// AssembleVerbose is Assemble plus an optional progress callback
// invoked after each pass with a short status line.
func AssembleVerbose(source, filename string, progress ProgressFunc) (*Output, []byte, *ErrorList) {
	report := func(msg string) {
		if progress != nil {
			progress(msg)
		}
	}

	p := NewParser(source, filename)
	prog, _ := p.Parse()
	errs := p.Errors()
	report("lex+parse: " + pluralErrors(len(errs.Errors)))
	if errs.HasErrors() {
		return nil, nil, errs
	}

	rewriteSugar(prog)
	report("rewrite: sugar forms resolved")

	analyzeErrs := &ErrorList{}
	analyze(prog, analyzeErrs)
	report("analyze: " + pluralErrors(len(analyzeErrs.Errors)))
	if analyzeErrs.HasErrors() {
		return nil, nil, analyzeErrs
	}

	lowerErrs := &ErrorList{}
	graph := lower(prog, lowerErrs)
	report("lower: " + pluralErrors(len(lowerErrs.Errors)))
	if lowerErrs.HasErrors() {
		return nil, nil, lowerErrs
	}

	out, err := resolve(graph)
	if err != nil {
		resolveErrs := &ErrorList{}
		resolveErrs.Add(NewError(Position{Filename: filename}, ErrorSyntax, err.Error()))
		return nil, nil, resolveErrs
	}
	report("resolve: data=" + itoa(len(out.Data)) + " bytes, code=" + itoa(len(out.Code)) + " bytes")

	programName := filepath.Base(filename)
	if ext := filepath.Ext(programName); ext != "" {
		programName = programName[:len(programName)-len(ext)]
	}
	bin := writeBinary(out, programName)
	return out, bin, nil
}

func pluralErrors(n int) string {
	if n == 1 {
		return "1 error"
	}
	return itoa(n) + " errors"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b [12]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}
