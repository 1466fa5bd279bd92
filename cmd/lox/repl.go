package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/peterh/liner"

	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/natives"
	"lox/interpreter-go/pkg/parser"
)

const (
	promptMain  = "> "
	promptCont  = "... "
	historyFile = ".lox_history"
)

// prompter is the part of *liner.State the session loop needs.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func runRepl(args []string) int {
	var common commonFlags
	fs := newFlagSet("repl", &common)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	cfg, err := loadConfig(common.config, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return exitUsage
	}
	logger := newLogger(cfg, common.verbose)
	interp, err := cfg.NewInterpreter(
		interpreter.WithStdout(os.Stdout),
		interpreter.WithInteractive(true),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return exitUsage
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	history := historyPath()
	if history != "" {
		lock := flock.New(history + ".lock")
		if err := loadHistory(ln, history, lock); err != nil {
			logger.Debug().Err(err).Str("history", history).Msg("history not loaded")
		}
		defer func() {
			if err := saveHistory(ln, history, lock); err != nil {
				logger.Warn().Err(err).Str("history", history).Msg("history not saved")
			}
		}()
	}

	fmt.Fprintf(os.Stdout, "%s (type :quit to exit)\n", cliToolVersion)
	return session(ln, interp, os.Stdout, os.Stderr)
}

// session reads chunks until end of input or :quit and runs each one against
// the same interpreter so globals persist between entries.
func session(p prompter, interp *interpreter.Interpreter, stdout, stderr io.Writer) int {
	for {
		chunk, ok := readChunk(p, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit", ":exit":
				return exitOK
			default:
				fmt.Fprintln(stdout, "unknown command. Type :quit to exit.")
			}
			continue
		}
		p.AppendHistory(strings.ReplaceAll(chunk, "\n", " "))

		err := interp.Run(chunk)
		var exitErr *natives.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		report(stderr, err)
	}
}

// readChunk keeps prompting while the accumulated input fails to parse only
// because it ended early. A blank continuation line submits what is there.
func readChunk(p prompter, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		current := prompt
		if b.Len() > 0 {
			current = cont
		}
		line, err := p.Prompt(current)
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		_, errs := parser.ParseSource(b.String())
		if errs.Incomplete() {
			continue
		}
		return b.String(), true
	}
}

func historyPath() string {
	if path := os.Getenv("LOX_HISTORY"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFile)
}

func loadHistory(ln *liner.State, path string, lock *flock.Flock) error {
	if err := lock.RLock(); err != nil {
		return err
	}
	defer lock.Unlock()
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = ln.ReadHistory(f)
	return err
}

// saveHistory holds an exclusive lock so concurrent sessions do not
// interleave writes.
func saveHistory(ln *liner.State, path string, lock *flock.Flock) error {
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := ln.WriteHistory(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
