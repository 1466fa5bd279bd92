package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/interpreter"
	"lox/interpreter-go/pkg/natives"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}

	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("stdout read: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("stderr read: %v", err)
	}
	_ = rOut.Close()
	_ = rErr.Close()

	return code, string(outBytes), string(errBytes)
}

func TestVersion(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != exitOK || strings.TrimSpace(stdout) != cliToolVersion {
		t.Fatalf("unexpected version output %d %q", code, stdout)
	}
}

func TestUnknownFlag(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"--bogus"})
	if code != exitUsage || !strings.Contains(stderr, "unknown flag --bogus") {
		t.Fatalf("unexpected result %d %q", code, stderr)
	}
}

func TestRunFile(t *testing.T) {
	script := filepath.Join(t.TempDir(), "main.lox")
	writeFile(t, script, `
class Greeter {
  init(name) { this.name = name; }
  greet() { return "hello " + this.name; }
}
print Greeter("lox").greet();
`)
	for _, args := range [][]string{{"run", script}, {script}} {
		code, stdout, stderr := captureCLI(t, args)
		if code != exitOK {
			t.Fatalf("%v: exit %d, stderr %q", args, code, stderr)
		}
		if stdout != "hello lox\n" {
			t.Fatalf("%v: unexpected stdout %q", args, stdout)
		}
	}
}

func TestRunStaticErrorExitCode(t *testing.T) {
	script := filepath.Join(t.TempDir(), "bad.lox")
	writeFile(t, script, "print \"never\";\nprint (;\n")
	code, stdout, stderr := captureCLI(t, []string{"run", script})
	if code != exitDataErr {
		t.Fatalf("expected exit %d, got %d", exitDataErr, code)
	}
	if stdout != "" {
		t.Fatalf("nothing should run, got %q", stdout)
	}
	if stderr != "[line 2] Error at ';': Expect expression.\n" {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestRunRuntimeErrorExitCode(t *testing.T) {
	script := filepath.Join(t.TempDir(), "boom.lox")
	writeFile(t, script, "print 1;\nprint missing;\nprint 2;\n")
	code, stdout, stderr := captureCLI(t, []string{"run", script})
	if code != exitSoftware {
		t.Fatalf("expected exit %d, got %d", exitSoftware, code)
	}
	if stdout != "1\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if stderr != "Undefined variable 'missing'.\n[line 2]\n" {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestRunExitNative(t *testing.T) {
	script := filepath.Join(t.TempDir(), "exit.lox")
	writeFile(t, script, `print "a"; exit(3); print "b";`)
	code, stdout, _ := captureCLI(t, []string{"run", script})
	if code != 3 {
		t.Fatalf("expected exit 3, got %d", code)
	}
	if stdout != "a\nExiting with code 3\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestRunMissingFile(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"run", filepath.Join(t.TempDir(), "nope.lox")})
	if code != exitIOErr || stderr == "" {
		t.Fatalf("expected I/O failure, got %d %q", code, stderr)
	}
}

func TestRunUsesConfigEntryAndNatives(t *testing.T) {
	root := t.TempDir()
	config := filepath.Join(root, "lox.yml")
	writeFile(t, config, "name: demo\nversion: 0.1.0\nentry: src/main.lox\nnatives: [abs]\n")
	writeFile(t, filepath.Join(root, "src", "main.lox"), "print abs(-2);\nclock();\n")

	code, stdout, stderr := captureCLI(t, []string{"run", "--config", config})
	if code != exitSoftware {
		t.Fatalf("expected clock to be missing, got exit %d (%q)", code, stderr)
	}
	if stdout != "2\n" || !strings.Contains(stderr, "Undefined variable 'clock'.") {
		t.Fatalf("unexpected output %q / %q", stdout, stderr)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lox.yml"), "version: nope\n")
	script := filepath.Join(root, "main.lox")
	writeFile(t, script, "print 1;")
	code, _, stderr := captureCLI(t, []string{"run", script})
	if code != exitUsage || !strings.Contains(stderr, "name must be provided") {
		t.Fatalf("unexpected result %d %q", code, stderr)
	}
}

func TestCheckCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.lox")
	bad := filepath.Join(dir, "bad.lox")
	writeFile(t, good, "print 1;")
	writeFile(t, bad, "{ var a = a; }")

	code, stdout, stderr := captureCLI(t, []string{"check", "-j", "2", good, bad})
	if code != exitDataErr {
		t.Fatalf("expected exit %d, got %d", exitDataErr, code)
	}
	if stdout != "2 file(s) checked, 1 with errors\n" {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	want := bad + ": [line 1] Error at 'a': Can't read local variable in its own initializer.\n"
	if stderr != want {
		t.Fatalf("unexpected stderr %q", stderr)
	}

	code, _, _ = captureCLI(t, []string{"check", good})
	if code != exitOK {
		t.Fatalf("expected clean check, got %d", code)
	}
}

func TestTokensAndASTCommands(t *testing.T) {
	script := filepath.Join(t.TempDir(), "main.lox")
	writeFile(t, script, `print 1 + 2;`)

	code, stdout, _ := captureCLI(t, []string{"tokens", script})
	if code != exitOK || !strings.Contains(stdout, `"lexeme":"print"`) || !strings.Contains(stdout, `"EOF"`) {
		t.Fatalf("unexpected tokens output %d %q", code, stdout)
	}

	code, stdout, _ = captureCLI(t, []string{"ast", script})
	if code != exitOK || !strings.Contains(stdout, "PrintStatement") || !strings.Contains(stdout, "BinaryExpression") {
		t.Fatalf("unexpected ast output %d %q", code, stdout)
	}

	code, _, _ = captureCLI(t, []string{"ast"})
	if code != exitUsage {
		t.Fatalf("expected usage error, got %d", code)
	}
}

func TestFormatDiagnostic(t *testing.T) {
	cases := map[string]diag.Diagnostic{
		"[line 3] Error at end: Expect ';' after value.": {Line: 3, Where: "end", Message: "Expect ';' after value."},
		"[line 1] Error at 'x': Bad.":                    {Line: 1, Where: "'x'", Message: "Bad."},
		"[line 7] Error: Unexpected character.":          {Line: 7, Message: "Unexpected character."},
	}
	for want, d := range cases {
		if got := formatDiagnostic(d); got != want {
			t.Fatalf("formatDiagnostic = %q, want %q", got, want)
		}
	}
}

type scriptedPrompter struct {
	lines   []string
	prompts []string
	history []string
}

func (p *scriptedPrompter) Prompt(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *scriptedPrompter) AppendHistory(item string) {
	p.history = append(p.history, item)
}

func TestReadChunkContinuesIncompleteInput(t *testing.T) {
	p := &scriptedPrompter{lines: []string{"fun add(a, b) {", "  return a + b;", "}", "print 1;"}}
	chunk, ok := readChunk(p, promptMain, promptCont)
	if !ok || chunk != "fun add(a, b) {\n  return a + b;\n}" {
		t.Fatalf("unexpected chunk %q", chunk)
	}
	if diff := cmp.Diff([]string{promptMain, promptCont, promptCont}, p.prompts); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
	chunk, ok = readChunk(p, promptMain, promptCont)
	if !ok || chunk != "print 1;" {
		t.Fatalf("unexpected chunk %q", chunk)
	}
	if _, ok := readChunk(p, promptMain, promptCont); ok {
		t.Fatalf("expected end of input")
	}
}

func TestReadChunkBlankLineSubmits(t *testing.T) {
	p := &scriptedPrompter{lines: []string{"print (1", ""}}
	chunk, ok := readChunk(p, promptMain, promptCont)
	if !ok || chunk != "print (1" {
		t.Fatalf("unexpected chunk %q", chunk)
	}
}

func TestSession(t *testing.T) {
	p := &scriptedPrompter{lines: []string{
		"var a = 1;",
		"a + 1",
		";",
		"_ * 10;",
		"print nope;",
		":help",
		"print a;",
		":quit",
		"print \"unreachable\";",
	}}
	var stdout, stderr strings.Builder
	interp := interpreter.New(interpreter.WithInteractive(true), interpreter.WithStdout(&stdout))
	code := session(p, interp, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("unexpected exit %d", code)
	}
	want := "2\n20\nunknown command. Type :quit to exit.\n1\n"
	if stdout.String() != want {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
	if stderr.String() != "Undefined variable 'nope'.\n[line 1]\n" {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
	if len(p.history) != 5 {
		t.Fatalf("unexpected history %v", p.history)
	}
}

func TestSessionExitNative(t *testing.T) {
	var stdout, stderr strings.Builder
	interp := interpreter.New(interpreter.WithInteractive(true), interpreter.WithStdout(&stdout))
	if err := natives.Install(interp, "exit"); err != nil {
		t.Fatalf("install: %v", err)
	}
	p := &scriptedPrompter{lines: []string{"exit(9);"}}
	if code := session(p, interp, &stdout, &stderr); code != 9 {
		t.Fatalf("expected exit 9, got %d", code)
	}
}

func TestReportUnknownError(t *testing.T) {
	var buf strings.Builder
	if code := report(&buf, errors.New("boom")); code != exitSoftware {
		t.Fatalf("unexpected code %d", code)
	}
}
