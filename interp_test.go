// interp_test.go
package weave

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func runSrc(t *testing.T, src string, argv ...string) string {
	t.Helper()
	if argv == nil {
		argv = []string{"test.wv"}
	}
	var out strings.Builder
	if err := RunSource(src, argv, &out); err != nil {
		t.Fatalf("RunSource error: %v\nsource:\n%s", err, src)
	}
	return out.String()
}

func runErr(t *testing.T, src string, argv ...string) error {
	t.Helper()
	if argv == nil {
		argv = []string{"test.wv"}
	}
	var out strings.Builder
	err := RunSource(src, argv, &out)
	if err == nil {
		t.Fatalf("want error, got output %q\nsource:\n%s", out.String(), src)
	}
	return err
}

func wantOutput(t *testing.T, src, want string) {
	t.Helper()
	if got := runSrc(t, src); got != want {
		t.Fatalf("output = %q, want %q\nsource:\n%s", got, want, src)
	}
}

// --- basics ----------------------------------------------------------------

func Test_Eval_HelloWithConcat(t *testing.T) {
	wantOutput(t, `
let name = "Sam"
print("hello " + name)
`, "hello Sam\n")
}

func Test_Eval_Arithmetic(t *testing.T) {
	wantOutput(t, `print(1 + 2 * 3 - 4 / 2)`, "5\n")
	wantOutput(t, `print((1 + 2) * 3)`, "9\n")
	wantOutput(t, `print(-5 + 2)`, "-3\n")
}

func Test_Eval_NumberDisplayDropsTrailingZero(t *testing.T) {
	wantOutput(t, `print(2.0)`, "2\n")
	wantOutput(t, `print(12.5)`, "12.5\n")
	wantOutput(t, `print(10 / 4)`, "2.5\n")
}

func Test_Eval_StringConcatCoercesNumbers(t *testing.T) {
	wantOutput(t, `print("x" + 1)`, "x1\n")
	wantOutput(t, `print(1 + "x")`, "1x\n")
	wantOutput(t, `print("n=" + 2.5)`, "n=2.5\n")
}

func Test_Eval_PlusOnBoolAndNumberIsTypeError(t *testing.T) {
	err := runErr(t, `let x = true + 1`)
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("want *TypeError, got %T: %v", err, err)
	}
}

func Test_Eval_DivisionByZero(t *testing.T) {
	err := runErr(t, `print(1 / 0)`)
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if !strings.Contains(re.Msg, "division by zero") {
		t.Fatalf("message: %q", re.Msg)
	}
}

func Test_Eval_Comparisons(t *testing.T) {
	wantOutput(t, `print(1 < 2, 2 <= 2, 3 > 4, 3 >= 4)`, "true\ntrue\nfalse\nfalse\n")
	wantOutput(t, `print("a" == "a", "a" != "b", 1 == 1, nil == nil)`, "true\ntrue\ntrue\ntrue\n")
}

func Test_Eval_UnaryNot(t *testing.T) {
	wantOutput(t, `print(!true, !nil, !0)`, "false\ntrue\nfalse\n")
}

func Test_Eval_CommentsDoNotAffectBehavior(t *testing.T) {
	bare := `
let x = 2
print(x * 3)
`
	commented := `
# compute a product
let x = 2 # the base
# multiply below
print(x * 3) # and show it
`
	if runSrc(t, bare) != runSrc(t, commented) {
		t.Fatal("comments changed behavior")
	}
}

func Test_Eval_UndefinedVariable(t *testing.T) {
	err := runErr(t, `print(ghost)`)
	ne, ok := err.(*NameError)
	if !ok {
		t.Fatalf("want *NameError, got %T: %v", err, err)
	}
	if !strings.Contains(ne.Msg, "undefined variable 'ghost'") {
		t.Fatalf("message: %q", ne.Msg)
	}
}

// --- control flow ----------------------------------------------------------

func Test_Eval_IfElse(t *testing.T) {
	wantOutput(t, `
let n = 7
if n > 5 {
    print("big")
} else {
    print("small")
}
`, "big\n")

	wantOutput(t, `
let n = 3
if n > 5 { print("big") } else if n > 2 { print("mid") } else { print("small") }
`, "mid\n")
}

func Test_Eval_While(t *testing.T) {
	wantOutput(t, `
let i = 0
let total = 0
while i < 5 {
    let total = total + i
    let i = i + 1
    print(i)
}
`, "1\n2\n3\n4\n5\n")
}

func Test_Eval_ReturnExitsFunction(t *testing.T) {
	wantOutput(t, `
fn clamp(n: number) -> number {
    if n > 10 { return 10 }
    return n
}
print(clamp(42))
print(clamp(7))
`, "10\n7\n")
}

func Test_Eval_ReturnFromLoop(t *testing.T) {
	wantOutput(t, `
fn firstOver(limit: number) -> number {
    let i = 0
    while true {
        if i > limit { return i }
        let i = i + 1
    }
}
print(firstOver(3))
`, "4\n")
}

func Test_Eval_TopLevelReturnStopsProgram(t *testing.T) {
	wantOutput(t, `
print("before")
return;
print("after")
`, "before\n")
}

func Test_Eval_FunctionWithoutReturnYieldsNil(t *testing.T) {
	wantOutput(t, `
fn shout(s: string) { print(s + "!") }
print(shout("hey"))
`, "hey!\nnil\n")
}

// --- functions and scope ---------------------------------------------------

func Test_Eval_ForwardReference(t *testing.T) {
	wantOutput(t, `
print(double(21))
fn double(n: number) -> number { return n * 2 }
`, "42\n")
}

func Test_Eval_FunctionSeesOnlyItsParameters(t *testing.T) {
	err := runErr(t, `
let secret = 99
fn peek(n: number) -> number { return secret }
print(peek(1))
`)
	if _, ok := err.(*NameError); !ok {
		t.Fatalf("want *NameError, got %T: %v", err, err)
	}
}

func Test_Eval_ArityMismatch(t *testing.T) {
	err := runErr(t, `
fn pair(a: number, b: number) -> number { return a + b }
pair(1)
`)
	if _, ok := err.(*ArityError); !ok {
		t.Fatalf("want *ArityError, got %T: %v", err, err)
	}
}

func Test_Eval_ArgumentTypeMismatch(t *testing.T) {
	err := runErr(t, `
fn double(n: number) -> number { return n * 2 }
double("two")
`)
	te, ok := err.(*TypeError)
	if !ok {
		t.Fatalf("want *TypeError, got %T: %v", err, err)
	}
	if !strings.Contains(te.Msg, "'n'") || !strings.Contains(te.Msg, "number") {
		t.Fatalf("message: %q", te.Msg)
	}
}

func Test_Eval_Recursion(t *testing.T) {
	wantOutput(t, `
fn fact(n: number) -> number {
    if n <= 1 { return 1 }
    return n * fact(n - 1)
}
print(fact(6))
`, "720\n")
}

// --- structs and unions ----------------------------------------------------

func Test_Eval_StructConstructionAndFieldAccess(t *testing.T) {
	wantOutput(t, `
struct Person { name: string, age: number }
let p = Person { name: "Sam", age: 3 }
print(p.name)
print(p.age)
print(p)
`, "Sam\n3\nPerson { name: \"Sam\", age: 3 }\n")
}

func Test_Eval_UnionFieldAcceptsMembers(t *testing.T) {
	wantOutput(t, `
type Status = "active" | "inactive"
struct Account { owner: string, status: Status }
let a = Account { owner: "Sam", status: "active" }
print(a.status)
`, "active\n")
}

func Test_Eval_UnionFieldRejectsNonMember(t *testing.T) {
	err := runErr(t, `
type Status = "active" | "inactive"
struct Account { owner: string, status: Status }
let a = Account { owner: "Sam", status: "banned" }
`)
	te, ok := err.(*TypeError)
	if !ok {
		t.Fatalf("want *TypeError, got %T: %v", err, err)
	}
	if !strings.Contains(te.Msg, "'status'") {
		t.Fatalf("message: %q", te.Msg)
	}
}

func Test_Eval_StructLiteralFieldErrors(t *testing.T) {
	decls := `
struct Person { name: string, age: number }
`
	missing := runErr(t, decls+`let p = Person { name: "Sam" }`)
	if !strings.Contains(missing.Error(), "missing field 'age'") {
		t.Fatalf("missing: %v", missing)
	}

	extra := runErr(t, decls+`let p = Person { name: "Sam", age: 3, pet: "cat" }`)
	if !strings.Contains(extra.Error(), "no field 'pet'") {
		t.Fatalf("extra: %v", extra)
	}

	wrong := runErr(t, decls+`let p = Person { name: "Sam", age: "three" }`)
	if !strings.Contains(wrong.Error(), "field 'age'") {
		t.Fatalf("wrong type: %v", wrong)
	}
}

func Test_Eval_UnknownStructLiteral(t *testing.T) {
	err := runErr(t, `let g = Ghost { x: 1 }`)
	if _, ok := err.(*NameError); !ok {
		t.Fatalf("want *NameError, got %T: %v", err, err)
	}
}

func Test_Eval_NestedStructFieldChecked(t *testing.T) {
	src := `
struct Address { city: string }
struct Person { name: string, home: Address }
let p = Person { name: "Sam", home: Address { city: "Oslo" } }
print(p.home.city)
`
	wantOutput(t, src, "Oslo\n")

	err := runErr(t, `
struct Address { city: string }
struct Person { name: string, home: Address }
let p = Person { name: "Sam", home: "Oslo" }
`)
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("want *TypeError, got %T: %v", err, err)
	}
}

// --- method dispatch -------------------------------------------------------

func Test_Eval_MethodCallEqualsFunctionCall(t *testing.T) {
	src := `
struct Person { income: number }
fn tax(p: Person, rate: number) -> number { return p.income * rate }
let p = Person { income: 100 }
print(tax(p, 0.2))
print(p.tax(0.2))
print(tax(p, 0.2) == p.tax(0.2))
`
	wantOutput(t, src, "20\n20\ntrue\n")
}

func Test_Eval_MethodOnPrimitive(t *testing.T) {
	wantOutput(t, `
fn double(n: number) -> number { return n * 2 }
print(21.double())
`, "42\n")
}

func Test_Eval_MethodOnUnionString(t *testing.T) {
	wantOutput(t, `
type Status = "active" | "inactive"
fn flip(s: Status) -> Status {
    if s == "active" { return "inactive" }
    return "active"
}
print("active".flip())
`, "inactive\n")
}

func Test_Eval_DispatchPicksFirstSatisfyingFunction(t *testing.T) {
	wantOutput(t, `
struct Dog { name: string }
struct Cat { name: string }
fn speak(d: Dog) -> string { return "woof" }
fn describe(c: Cat) -> string { return c.name + " the cat" }
let d = Dog { name: "Rex" }
let c = Cat { name: "Mia" }
print(d.speak())
print(c.describe())
`, "woof\nMia the cat\n")
}

func Test_Eval_NoMatchingMethodIsNameError(t *testing.T) {
	err := runErr(t, `
struct Dog { name: string }
fn speak(d: Dog) -> string { return "woof" }
"hello".speak()
`)
	ne, ok := err.(*NameError)
	if !ok {
		t.Fatalf("want *NameError, got %T: %v", err, err)
	}
	if !strings.Contains(ne.Msg, "'speak'") || !strings.Contains(ne.Msg, "string") {
		t.Fatalf("message: %q", ne.Msg)
	}
}

func Test_Eval_UnknownFieldWithoutCallIsNameError(t *testing.T) {
	err := runErr(t, `
struct Person { name: string }
let p = Person { name: "Sam" }
print(p.height)
`)
	if _, ok := err.(*NameError); !ok {
		t.Fatalf("want *NameError, got %T: %v", err, err)
	}
}

func Test_Eval_FieldShadowedByMethodOnlyWhenCalled(t *testing.T) {
	// `p.name` is the field; `p.name()` dispatches to the function.
	wantOutput(t, `
struct Person { name: string }
fn name(p: Person) -> string { return "fn:" + p.name }
let p = Person { name: "Sam" }
print(p.name)
print(p.name())
`, "Sam\nfn:Sam\n")
}

// --- positional arguments --------------------------------------------------

func Test_Eval_PositionalArgs(t *testing.T) {
	var out strings.Builder
	err := RunSource(`print("hello " + $1 + " and " + $2)`, []string{"script.wv", "Sam", "Alex"}, &out)
	if err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if out.String() != "hello Sam and Alex\n" {
		t.Fatalf("output: %q", out.String())
	}
}

func Test_Eval_PosArgZeroIsScriptPath(t *testing.T) {
	var out strings.Builder
	if err := RunSource(`print($0)`, []string{"billing.wv"}, &out); err != nil {
		t.Fatalf("RunSource: %v", err)
	}
	if out.String() != "billing.wv\n" {
		t.Fatalf("output: %q", out.String())
	}
}

func Test_Eval_PosArgOutOfRange(t *testing.T) {
	var out strings.Builder
	err := RunSource(`print($5)`, []string{"script.wv", "a", "b"}, &out)
	if err == nil {
		t.Fatal("want RuntimeError")
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
	if !strings.Contains(re.Msg, "$5") || !strings.Contains(re.Msg, "2 supplied") {
		t.Fatalf("message: %q", re.Msg)
	}
}

// --- declarations ----------------------------------------------------------

func Test_Eval_NestedDeclarationRejected(t *testing.T) {
	err := runErr(t, `
fn outer(n: number) {
    fn inner(m: number) { }
}
outer(1)
`)
	if _, ok := err.(*RuntimeError); !ok {
		t.Fatalf("want *RuntimeError, got %T: %v", err, err)
	}
}

func Test_Eval_PrintMultipleArgs(t *testing.T) {
	wantOutput(t, `print("a", 1, true)`, "a\n1\ntrue\n")
}

func Test_Eval_NonCallableValue(t *testing.T) {
	err := runErr(t, `
let x = 5
x(1)
`)
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("want *TypeError, got %T: %v", err, err)
	}
}

// --- session ---------------------------------------------------------------

func Test_Session_DeclarationsPersist(t *testing.T) {
	var out strings.Builder
	sess := NewSession([]string{"repl"}, &out)

	if _, err := sess.Eval(`fn double(n: number) -> number { return n * 2 }`); err != nil {
		t.Fatalf("declare: %v", err)
	}
	v, err := sess.Eval(`double(21)`)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if v.Tag != VTNumber || v.Data.(float64) != 42 {
		t.Fatalf("value: %#v", v)
	}
}

func Test_Session_BindingsPersist(t *testing.T) {
	var out strings.Builder
	sess := NewSession([]string{"repl"}, &out)

	if _, err := sess.Eval(`let x = 10`); err != nil {
		t.Fatalf("bind: %v", err)
	}
	v, err := sess.Eval(`x + 5`)
	if err != nil {
		t.Fatalf("use: %v", err)
	}
	if v.Tag != VTNumber || v.Data.(float64) != 15 {
		t.Fatalf("value: %#v", v)
	}
}

func Test_Session_FailedInputLeavesStateIntact(t *testing.T) {
	var out strings.Builder
	sess := NewSession([]string{"repl"}, &out)

	if _, err := sess.Eval(`fn f(n: number) -> number { return n }`); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := sess.Eval(`fn f(s: string) -> string { return s }`); err == nil {
		t.Fatal("redeclaration should fail")
	}
	v, err := sess.Eval(`f(3)`)
	if err != nil {
		t.Fatalf("original still callable: %v", err)
	}
	if v.Data.(float64) != 3 {
		t.Fatalf("value: %#v", v)
	}
}

func Test_Session_LastExpressionValue(t *testing.T) {
	var out strings.Builder
	sess := NewSession([]string{"repl"}, &out)

	v, err := sess.Eval(`let a = 2; a * 3`)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Tag != VTNumber || v.Data.(float64) != 6 {
		t.Fatalf("value: %#v", v)
	}

	v, err = sess.Eval(`let b = 1`)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if v.Tag != VTUnit {
		t.Fatalf("declaration-only input should yield unit: %#v", v)
	}
}
