package main

import (
	"fmt"
	"os"

	"github.com/oarkflow/json"

	"lox/interpreter-go/pkg/lexer"
	"lox/interpreter-go/pkg/parser"
)

func runTokens(args []string) int {
	source, code := readSingleSource("tokens", args)
	if code != exitOK {
		return code
	}
	tokens, errs := lexer.Scan(source)
	if code := writeJSON(tokens); code != exitOK {
		return code
	}
	if len(errs) > 0 {
		printDiagnostics(os.Stderr, "", errs)
		return exitDataErr
	}
	return exitOK
}

func runAST(args []string) int {
	source, code := readSingleSource("ast", args)
	if code != exitOK {
		return code
	}
	statements, errs := parser.ParseSource(source)
	if len(errs) > 0 {
		printDiagnostics(os.Stderr, "", errs)
		return exitDataErr
	}
	return writeJSON(statements)
}

func readSingleSource(command string, args []string) (string, int) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: lox %s <file>\n", command)
		return "", exitUsage
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", args[0], err)
		return "", exitIOErr
	}
	return string(data), exitOK
}

func writeJSON(v any) int {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode json: %v\n", err)
		return exitSoftware
	}
	data = append(data, '\n')
	if _, err := os.Stdout.Write(data); err != nil {
		return exitIOErr
	}
	return exitOK
}
