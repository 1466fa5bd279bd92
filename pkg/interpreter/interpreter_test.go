package interpreter

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/runtime"
)

func assertOutput(t *testing.T, source string, want ...string) {
	t.Helper()
	got := mustRun(t, source)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestArithmeticFollowsFloatingPoint(t *testing.T) {
	assertOutput(t, `
print 1 / 0;
print -1 / 0;
print 0 / 0;
print 1 + 1 == 2.0;
print 7 / 2;
print 2 * 3 - 4 * -1;
print (1 + 2) * 3;
print 10 - 2 - 3;`,
		"Infinity", "-Infinity", "NaN", "true", "3.5", "10", "9", "5",
	)
}

func TestStringConcatenation(t *testing.T) {
	assertOutput(t, `print "a" + "b"; var s = "x"; s = s + s; print s;`, "ab", "xx")

	_, err := runtimeError(t, `print 1 + "a";`)
	if err.Message != "Operands must be two numbers or two strings." {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestEqualityHasNoCoercion(t *testing.T) {
	assertOutput(t, `
print nil == nil;
print nil == false;
print 0 == false;
print "1" == 1;
print "a" != "a";
print 3 == 3;`,
		"true", "false", "false", "false", "false", "true",
	)
}

func TestComparisonOperators(t *testing.T) {
	assertOutput(t, `print 1 < 2; print 2 <= 2; print 3 > 4; print 4 >= 5;`,
		"true", "true", "false", "false")

	_, err := runtimeError(t, `print "a" < "b";`)
	if err.Message != "Operands must be numbers." {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestUnaryOperators(t *testing.T) {
	assertOutput(t, `print -3; print !true; print !nil; print !0; print --2;`,
		"-3", "false", "true", "false", "2")

	_, err := runtimeError(t, `print -"a";`)
	if err.Message != "Operand must be a number." {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestTruthiness(t *testing.T) {
	assertOutput(t, `
if (0) print "zero";
if ("") print "empty";
if (nil) print "nil"; else print "else";
if (false) print "false"; else print "else";`,
		"zero", "empty", "else", "else",
	)
}

func TestLogicalOperatorsReturnOperands(t *testing.T) {
	assertOutput(t, `
print nil or "x";
print "a" and "b";
print false and undefinedName;
print "left" or undefinedName;
print nil and 1;`,
		"x", "b", "false", "left", "nil",
	)
}

func TestTernaryEvaluatesOnlySelectedBranch(t *testing.T) {
	assertOutput(t, `
fun side() { print "side"; return 2; }
print true ? 1 : side();
print false ? side() : 3;
print nil ? 1 : false ? 2 : 3;`,
		"1", "3", "3",
	)
}

func TestCommaEvaluatesBothAndYieldsRight(t *testing.T) {
	assertOutput(t, `
var calls = 0;
fun s() { calls = calls + 1; return calls; }
print (s(), 5);
print calls;
var x = (1, 2, 3);
print x;`,
		"5", "1", "3",
	)
}

func TestVariablesAndScopes(t *testing.T) {
	assertOutput(t, `
var a = "global a";
var b = "global b";
{
  var a = "outer a";
  {
    var a = "inner a";
    print a;
    print b;
    b = "changed";
  }
  print a;
}
print a;
print b;
var u;
print u;`,
		"inner a", "global b", "outer a", "global a", "changed", "nil",
	)
}

func TestGlobalRedeclarationIsAllowed(t *testing.T) {
	assertOutput(t, `var a = 1; var a = a + 1; print a;`, "2")
}

func TestWhileAndForLoops(t *testing.T) {
	assertOutput(t, `
var i = 0;
while (i < 3) { print i; i = i + 1; }
var a = 0;
var temp;
for (var b = 1; a < 20; b = temp + b) {
  print a;
  temp = a;
  a = b;
}`,
		"0", "1", "2", "0", "1", "1", "2", "3", "5", "8", "13",
	)
}

func TestFunctionsAndReturn(t *testing.T) {
	assertOutput(t, `
fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); }
print fib(15);
fun firstOver(limit) {
  for (var i = 0; ; i = i + 1) {
    while (true) {
      if (i * i > limit) return i;
      break_out();
    }
  }
}
fun break_out() {}
fun noReturn() {}
print noReturn();
fun bare() { return; }
print bare();`,
		"610", "nil", "nil",
	)
}

func TestReturnUnwindsNestedLoops(t *testing.T) {
	assertOutput(t, `
fun find(limit) {
  var i = 0;
  while (true) {
    for (var j = 0; j < 10; j = j + 1) {
      if (i * 10 + j > limit) return i * 10 + j;
    }
    i = i + 1;
  }
}
print find(42);`,
		"43",
	)
}

func TestClosuresCaptureEnvironment(t *testing.T) {
	assertOutput(t, `
fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var c1 = makeCounter();
var c2 = makeCounter();
print c1();
print c1();
print c2();

fun outer() {
  var x = "before";
  fun show() { print x; }
  x = "after";
  return show;
}
outer()();`,
		"1", "2", "1", "after",
	)
}

func TestClosureBindingIsStatic(t *testing.T) {
	assertOutput(t, `
var a = "global";
{
  fun showA() { print a; }
  showA();
  var a = "block";
  showA();
  print a;
}`,
		"global", "global", "block",
	)
}

func TestLambdas(t *testing.T) {
	assertOutput(t, `
var add = fun (a, b) { return a + b; };
print add(1, 2);
print add;
fun apply(f, x) { return f(x); }
print apply(fun (n) { return n * n; }, 7);
fun (msg) { print msg; }("immediate");`,
		"3", "<Anonymous function>", "49", "immediate",
	)
}

func TestCallableStringification(t *testing.T) {
	assertOutput(t, `
fun f() {}
class Foo { m() {} }
var foo = Foo();
print f;
print Foo;
print foo;
print foo.m;`,
		"<Function f>", "<Class Foo>", "Foo instance", "<Function m>",
	)
}

func TestClassesFieldsAndInit(t *testing.T) {
	assertOutput(t, `
class Point {
  init(x, y) { this.x = x; this.y = y; }
  sum() { return this.x + this.y; }
}
var p = Point(3, 4);
print p.sum();
print p.init(10, 20) == p;
print p.x;
p.z = "extra";
print p.z;
var q = p;
q.x = 1;
print p.x;`,
		"7", "true", "10", "extra", "1",
	)
}

func TestInitEarlyReturnYieldsInstance(t *testing.T) {
	assertOutput(t, `
class A {
  init(flag) {
    this.flag = flag;
    if (flag) return;
    this.flag = "late";
  }
}
print A(true).flag;
print A(false).flag;`,
		"true", "late",
	)
}

func TestFieldsShadowMethods(t *testing.T) {
	assertOutput(t, `
class A { m() { return "method"; } }
var a = A();
print a.m();
a.m = fun () { return "field"; };
print a.m();
print A().m();`,
		"method", "field", "method",
	)
}

func TestBoundMethodsKeepReceiver(t *testing.T) {
	assertOutput(t, `
class Box {
  init(v) { this.v = v; }
  get() { return this.v; }
}
var b = Box(1);
var g = b.get;
b.v = 9;
print g();
var other = Box(2);
other.g = b.get;
print other.g();`,
		"9", "9",
	)
}

func TestInheritanceAndSuper(t *testing.T) {
	assertOutput(t, `
class A { greet() { return "A"; } }
class B < A { greet() { return super.greet() + "B"; } }
print B().greet();

class Base { init(n) { this.n = n; } describe() { return "base " + this.n; } }
class Derived < Base {
  init(n) { super.init(n + "!"); }
}
print Derived("x").describe();`,
		"AB", "base x!",
	)
}

func TestSuperUsesStaticSuperclassWithDynamicReceiver(t *testing.T) {
	assertOutput(t, `
class A { method() { print "A method"; } }
class B < A {
  method() { print "B method"; }
  test() { super.method(); }
}
class C < B {}
C().test();

class P { name() { return "P"; } hello() { return "hello " + this.name(); } }
class Q < P { name() { return "Q"; } hello() { return super.hello() + "!"; } }
class R < Q { name() { return "R"; } }
print R().hello();`,
		"A method", "hello R!",
	)
}

func TestSuperMethodCanBeStored(t *testing.T) {
	assertOutput(t, `
class A { say() { return "A says " + this.word; } }
class B < A {
  init() { this.word = "hi"; }
  grab() { return super.say; }
}
var said = B().grab();
print said();`,
		"A says hi",
	)
}

func TestClassArityFollowsInheritedInit(t *testing.T) {
	assertOutput(t, `
class A { init(a, b) { this.total = a + b; } }
class B < A {}
print B(1, 2).total;`,
		"3",
	)
	_, err := runtimeError(t, `class A {} A(1);`)
	if err.Message != "Expected 0 arguments but got 1." {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestInteractiveModeEchoesAndBindsUnderscore(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithStdout(&out), WithInteractive(true))
	if err := interp.Run(`1 + 2; _ * 2; var x = "quiet"; x;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := interp.Run(`print _;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"3", "6", "quiet", "quiet"}
	if diff := cmp.Diff(want, outputLines(out.String())); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestInteractiveModeOnlyEchoesTopLevel(t *testing.T) {
	lines := mustRun(t, `fun f() { 1 + 1; return 5; } f(); { "block"; }`, WithInteractive(true))
	if diff := cmp.Diff([]string{"5"}, lines); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestStatePersistsAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithStdout(&out))
	steps := []string{
		`var a = 1; fun f() { return a; }`,
		`a = 2; print f();`,
		`fun mk() { var x = 10; fun g() { x = x + 1; return x; } return g; } var g = mk();`,
		`print g(); print g();`,
	}
	for _, step := range steps {
		if err := interp.Run(step); err != nil {
			t.Fatalf("run %q failed: %v", step, err)
		}
	}
	if diff := cmp.Diff([]string{"2", "11", "12"}, outputLines(out.String())); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestCompiledProgramRunsOnManyInterpreters(t *testing.T) {
	program, errs := Compile(`
fun make() { var n = 0; fun inc() { n = n + 1; return n; } return inc; }
var inc = make();
inc();
print inc();`)
	if len(errs) != 0 {
		t.Fatalf("unexpected diagnostics: %v", errs)
	}
	for run := 0; run < 2; run++ {
		var out bytes.Buffer
		if err := New(WithStdout(&out)).Execute(program); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
		if out.String() != "2\n" {
			t.Fatalf("run %d: unexpected output %q", run, out.String())
		}
	}
}

func TestNativeFunctions(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithStdout(&out))
	interp.RegisterNative("twice", 1, func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
		n, ok := args[0].(runtime.NumberValue)
		if !ok {
			return nil, runtime.NewNativeError("twice(x) argument must be a number.")
		}
		return runtime.NumberValue{Val: n.Val * 2}, nil
	})
	interp.RegisterNative("noop", 0, func(*runtime.NativeCallContext, []runtime.Value) (runtime.Value, error) {
		return nil, nil
	})
	if err := interp.Run(`print twice(21); print noop(); print twice;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"42", "nil", "<Native function 'twice'>"}
	if diff := cmp.Diff(want, outputLines(out.String())); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	err := interp.Run("\nprint twice(\"x\");")
	rtErr, ok := err.(*runtime.Error)
	if !ok {
		t.Fatalf("expected native error to surface as *runtime.Error, got %T", err)
	}
	if rtErr.Message != "twice(x) argument must be a number." || rtErr.Line() != 2 {
		t.Fatalf("unexpected error: %+v", rtErr)
	}
	if rtErr.Token.Lexeme != ")" {
		t.Fatalf("expected error at the call's paren, got %q", rtErr.Token.Lexeme)
	}
}

func TestDefineInstallsGlobals(t *testing.T) {
	var out bytes.Buffer
	interp := New(WithStdout(&out))
	interp.Define("answer", runtime.NumberValue{Val: 42})
	if err := interp.Run(`print answer;`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
	if !contains(interp.GlobalEnvironment().Keys(), "answer") {
		t.Fatalf("expected answer among globals")
	}
}

func TestStaticErrorsSuppressExecution(t *testing.T) {
	cases := []string{
		`print "ran"; var;`,
		`print "ran"; { var x = x; }`,
		`print "ran"; return 1;`,
		"print \"ran\"; @",
	}
	for _, source := range cases {
		lines, err := runSource(t, source)
		if len(lines) != 0 {
			t.Fatalf("%q: expected no output, got %v", source, lines)
		}
		if _, ok := err.(diag.List); !ok {
			t.Fatalf("%q: expected diag.List, got %T (%v)", source, err, err)
		}
	}
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
