package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oarkflow/log"

	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/driver"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/natives"
	"lox/interpreter-go/pkg/playground"
	"lox/interpreter-go/pkg/runtime"
)

const cliToolVersion = "lox 0.1.0-dev"

// Exit codes follow sysexits.h.
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		return runRepl(nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return exitOK
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return exitOK
	case "run":
		return runEntry(args[1:])
	case "repl":
		return runRepl(args[1:])
	case "check":
		return runCheck(args[1:])
	case "tokens":
		return runTokens(args[1:])
	case "ast":
		return runAST(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		if len(args[0]) > 0 && args[0][0] == '-' {
			fmt.Fprintf(os.Stderr, "unknown flag %s\n", args[0])
			printUsage(os.Stderr)
			return exitUsage
		}
		return runEntry(args)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: lox [command] [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  run [file]        execute a script (defaults to the entry in lox.yml)")
	fmt.Fprintln(w, "  repl              start an interactive session (also the default with no arguments)")
	fmt.Fprintln(w, "  check files...    scan, parse and resolve scripts without running them")
	fmt.Fprintln(w, "  tokens file       print the token stream as JSON")
	fmt.Fprintln(w, "  ast file          print the syntax tree as JSON")
	fmt.Fprintln(w, "  serve             start the HTTP playground")
	fmt.Fprintln(w, "  version           print the tool version")
}

// commonFlags are accepted by every subcommand that reads lox.yml.
type commonFlags struct {
	config  string
	verbose bool
}

func newFlagSet(name string, common *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&common.config, "config", "", "path to lox.yml")
	fs.BoolVar(&common.verbose, "verbose", false, "enable debug logging")
	return fs
}

// loadConfig prefers an explicit --config, then the lox.yml governing the
// script, then the one above the working directory.
func loadConfig(explicit, script string) (*driver.Config, error) {
	if explicit != "" {
		return driver.LoadConfig(explicit)
	}
	if script != "" {
		return driver.LoadConfigFor(script)
	}
	path, err := driver.FindConfig(".")
	if errors.Is(err, driver.ErrConfigNotFound) {
		return driver.DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return driver.LoadConfig(path)
}

func newLogger(cfg *driver.Config, verbose bool) *log.Logger {
	level := log.ParseLevel(cfg.LogLevel)
	if verbose {
		level = log.DebugLevel
	}
	return &log.Logger{
		Level:  level,
		Writer: &log.IOWriter{Writer: os.Stderr},
	}
}

func runEntry(args []string) int {
	var common commonFlags
	fs := newFlagSet("run", &common)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %v\n", fs.Args()[1:])
		return exitUsage
	}
	script := fs.Arg(0)

	cfg, err := loadConfig(common.config, script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitUsage
	}
	logger := newLogger(cfg, common.verbose)
	if script == "" {
		script = cfg.EntryPath()
	}
	if script == "" {
		fmt.Fprintln(os.Stderr, "lox run requires a source file (no entry in lox.yml)")
		return exitUsage
	}

	source, err := driver.LoadSource(script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitIOErr
	}
	interp, err := cfg.NewInterpreter(interpreter.WithStdout(os.Stdout))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}

	start := time.Now()
	code := report(os.Stderr, interp.Run(source))
	logger.Debug().Str("script", script).Int("exit_code", code).Dur("elapsed", time.Since(start)).Msg("run finished")
	return code
}

// report prints the terminal error of a run and maps it to an exit code.
func report(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	var errs diag.List
	var rtErr *runtime.Error
	var exitErr *natives.ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &errs):
		printDiagnostics(w, "", errs)
		return exitDataErr
	case errors.As(err, &rtErr):
		fmt.Fprintf(w, "%s\n[line %d]\n", rtErr.Message, rtErr.Line())
		return exitSoftware
	default:
		fmt.Fprintf(w, "runtime error: %v\n", err)
		return exitSoftware
	}
}

func printDiagnostics(w io.Writer, prefix string, errs diag.List) {
	for _, d := range errs {
		fmt.Fprintln(w, prefix+formatDiagnostic(d))
	}
}

func formatDiagnostic(d diag.Diagnostic) string {
	if d.Where == "" {
		return fmt.Sprintf("[line %d] Error: %s", d.Line, d.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", d.Line, d.Where, d.Message)
}

func runCheck(args []string) int {
	var common commonFlags
	fs := newFlagSet("check", &common)
	jobs := fs.Int("j", 0, "files to check concurrently (0 = GOMAXPROCS)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	paths := fs.Args()
	if len(paths) == 0 {
		cfg, err := loadConfig(common.config, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			return exitUsage
		}
		if entry := cfg.EntryPath(); entry != "" {
			paths = []string{entry}
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "lox check requires at least one source file")
		return exitUsage
	}

	results, err := driver.Check(context.Background(), paths, *jobs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitIOErr
	}
	failed := 0
	for _, result := range results {
		if result.OK() {
			continue
		}
		failed++
		printDiagnostics(os.Stderr, result.Path+": ", result.Diagnostics)
	}
	fmt.Fprintf(os.Stdout, "%d file(s) checked, %d with errors\n", len(results), failed)
	if failed > 0 {
		return exitDataErr
	}
	return exitOK
}

func runServe(args []string) int {
	var common commonFlags
	fs := newFlagSet("serve", &common)
	addr := fs.String("addr", "", "listen address (overrides serve.addr)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, err := loadConfig(common.config, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitUsage
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
	logger := newLogger(cfg, common.verbose)

	srv, err := playground.New(playground.Options{
		Version:      cliToolVersion,
		Timeout:      cfg.Serve.Timeout,
		CacheMB:      cfg.Serve.CacheMB,
		Natives:      cfg.Natives,
		MaxCallDepth: cfg.MaxCallDepth,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown failed")
		}
	}()

	if err := srv.Listen(cfg.Serve.Addr); err != nil {
		logger.Error().Err(err).Str("addr", cfg.Serve.Addr).Msg("playground stopped")
		return exitIOErr
	}
	return exitOK
}
