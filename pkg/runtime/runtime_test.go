package runtime

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"lox/interpreter-go/pkg/ast"
	"lox/interpreter-go/pkg/token"
)

func TestEnvironmentDefineGetAssign(t *testing.T) {
	global := NewEnvironment(nil)
	global.Define("a", NumberValue{Val: 1})
	local := NewEnvironment(global)
	local.Define("b", StringValue{Val: "x"})

	got, err := local.Get("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (NumberValue{Val: 1}) {
		t.Fatalf("expected 1, got %#v", got)
	}
	if err := local.Assign("a", NumberValue{Val: 2}); err != nil {
		t.Fatalf("unexpected assign error: %v", err)
	}
	if got, _ := global.Get("a"); got != (NumberValue{Val: 2}) {
		t.Fatalf("assign should reach the declaring frame, got %#v", got)
	}
	if _, err := global.Get("b"); err == nil || err.Error() != "Undefined variable 'b'." {
		t.Fatalf("expected undefined variable error, got %v", err)
	}
	if err := local.Assign("missing", NilValue{}); err == nil {
		t.Fatalf("expected assigning an unknown name to fail")
	}
	if _, err := local.Get("missing"); err == nil {
		t.Fatalf("assign must not create a binding")
	}
}

func TestEnvironmentDistanceAccess(t *testing.T) {
	global := NewEnvironment(nil)
	middle := NewEnvironment(global)
	inner := NewEnvironment(middle)
	middle.Define("x", NumberValue{Val: 1})
	inner.Define("x", NumberValue{Val: 2})

	if inner.Ancestor(0) != inner || inner.Ancestor(2) != global {
		t.Fatalf("ancestor walk returned the wrong frame")
	}
	if got := inner.GetAt(1, "x"); got != (NumberValue{Val: 1}) {
		t.Fatalf("expected outer x, got %#v", got)
	}
	inner.AssignAt(1, "x", NumberValue{Val: 5})
	if got := middle.GetAt(0, "x"); got != (NumberValue{Val: 5}) {
		t.Fatalf("expected assigned outer x, got %#v", got)
	}
	if got := inner.GetAt(0, "x"); got != (NumberValue{Val: 2}) {
		t.Fatalf("inner x should be untouched, got %#v", got)
	}
	if diff := cmp.Diff([]string{"x"}, middle.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if inner.Parent() != middle {
		t.Fatalf("unexpected parent")
	}
}

func TestTruthinessAndEquality(t *testing.T) {
	truthy := []Value{BoolValue{Val: true}, NumberValue{Val: 0}, StringValue{Val: ""}, NewInstance(NewClass("A", nil, nil))}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Fatalf("expected %#v to be truthy", v)
		}
	}
	for _, v := range []Value{NilValue{}, BoolValue{Val: false}, nil} {
		if IsTruthy(v) {
			t.Fatalf("expected %#v to be falsey", v)
		}
	}

	cases := []struct {
		a, b Value
		want bool
	}{
		{NilValue{}, NilValue{}, true},
		{NilValue{}, BoolValue{Val: false}, false},
		{NumberValue{Val: 0}, BoolValue{Val: false}, false},
		{NumberValue{Val: 2}, NumberValue{Val: 2.0}, true},
		{StringValue{Val: "a"}, StringValue{Val: "a"}, true},
		{StringValue{Val: "1"}, NumberValue{Val: 1}, false},
		{NumberValue{Val: math.NaN()}, NumberValue{Val: math.NaN()}, false},
		{nil, NilValue{}, true},
	}
	for _, tc := range cases {
		if got := IsEqual(tc.a, tc.b); got != tc.want {
			t.Fatalf("IsEqual(%#v, %#v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}

	a := NewInstance(NewClass("A", nil, nil))
	b := NewInstance(a.Class)
	if IsEqual(a, b) || !IsEqual(a, a) {
		t.Fatalf("instances compare by identity")
	}
}

func TestClassMethodLookupAndArity(t *testing.T) {
	env := NewEnvironment(nil)
	greet := NewFunction(ast.Fn("greet", nil), env, false)
	initializer := NewFunction(ast.Fn("init", []string{"a", "b"}), env, true)
	override := NewFunction(ast.Fn("greet", nil), env, false)

	base := NewClass("Base", nil, map[string]*Function{"greet": greet, "init": initializer})
	derived := NewClass("Derived", base, map[string]*Function{"greet": override})

	if derived.FindMethod("greet") != override {
		t.Fatalf("nearest method should win")
	}
	if derived.FindMethod("init") != initializer {
		t.Fatalf("inherited method should be found")
	}
	if derived.FindMethod("missing") != nil {
		t.Fatalf("expected no method")
	}
	if derived.Arity() != 2 {
		t.Fatalf("class arity should follow init, got %d", derived.Arity())
	}
	if NewClass("Empty", nil, nil).Arity() != 0 {
		t.Fatalf("class without init takes no arguments")
	}
}

func TestInstanceGetSet(t *testing.T) {
	method := NewFunction(ast.Fn("m", nil), NewEnvironment(nil), false)
	class := NewClass("Point", nil, map[string]*Function{"m": method})
	inst := NewInstance(class)

	bound, err := inst.Get(ast.Ident("m"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := bound.(*Function)
	if !ok || fn == method {
		t.Fatalf("expected a freshly bound method, got %#v", bound)
	}
	if this := fn.Closure.GetAt(0, "this"); this != inst {
		t.Fatalf("bound method should capture the receiver")
	}
	again, _ := inst.Get(ast.Ident("m"))
	if again == bound {
		t.Fatalf("every lookup binds anew")
	}

	inst.Set(ast.Ident("m"), NumberValue{Val: 3})
	if got, _ := inst.Get(ast.Ident("m")); got != (NumberValue{Val: 3}) {
		t.Fatalf("own field should shadow the method, got %#v", got)
	}
	if class.Methods["m"] != method {
		t.Fatalf("setting a field must not touch the method table")
	}

	_, err = inst.Get(token.New(token.Identifier, "nope", 7))
	rtErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if rtErr.Message != "Undefined property 'nope'." || rtErr.Line() != 7 {
		t.Fatalf("unexpected error: %+v", rtErr)
	}
}

func TestFunctionMetadata(t *testing.T) {
	named := NewFunction(ast.Fn("add", []string{"a", "b"}, ast.Ret(ast.ID("a"))), nil, false)
	if named.Name() != "add" || named.Arity() != 2 || len(named.Body()) != 1 {
		t.Fatalf("unexpected function metadata: %s/%d", named.Name(), named.Arity())
	}
	lambda := NewLambda(ast.Lambda([]string{"x"}), nil)
	if lambda.Name() != "" || lambda.Arity() != 1 || len(lambda.Body()) != 0 {
		t.Fatalf("unexpected lambda metadata")
	}
	bound := named.Bind(NewInstance(NewClass("A", nil, nil)))
	if bound.Declaration != named.Declaration || bound.Arity() != 2 {
		t.Fatalf("binding should keep the declaration")
	}
}

func TestStringify(t *testing.T) {
	class := NewClass("Foo", nil, nil)
	cases := []struct {
		val  Value
		want string
	}{
		{NilValue{}, "nil"},
		{BoolValue{Val: true}, "true"},
		{BoolValue{Val: false}, "false"},
		{NumberValue{Val: 3}, "3"},
		{NumberValue{Val: -0.5}, "-0.5"},
		{NumberValue{Val: 2.5e-7}, "0.00000025"},
		{NumberValue{Val: 1e21}, "1e+21"},
		{NumberValue{Val: math.Inf(1)}, "Infinity"},
		{NumberValue{Val: math.Inf(-1)}, "-Infinity"},
		{NumberValue{Val: math.NaN()}, "NaN"},
		{StringValue{Val: "hi"}, "hi"},
		{class, "<Class Foo>"},
		{NewInstance(class), "Foo instance"},
		{NewFunction(ast.Fn("f", nil), nil, false), "<Function f>"},
		{NewLambda(ast.Lambda(nil), nil), "<Anonymous function>"},
		{&NativeFunction{Name: "clock"}, "<Native function 'clock'>"},
	}
	for _, tc := range cases {
		if got := Stringify(tc.val); got != tc.want {
			t.Fatalf("Stringify(%#v) = %q, want %q", tc.val, got, tc.want)
		}
	}
}

func TestFromLiteral(t *testing.T) {
	if FromLiteral(nil) != (NilValue{}) || FromLiteral(true) != (BoolValue{Val: true}) ||
		FromLiteral(1.5) != (NumberValue{Val: 1.5}) || FromLiteral("s") != (StringValue{Val: "s"}) {
		t.Fatalf("unexpected literal conversion")
	}
}

func TestNativeErrorMessage(t *testing.T) {
	err := NewNativeError("abs(x) argument must be a number.")
	if err.Error() != "abs(x) argument must be a number." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
