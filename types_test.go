// types_test.go
package weave

import (
	"strings"
	"testing"
)

func Test_Satisfies_Primitives(t *testing.T) {
	reg := buildReg(t, ``)
	cases := []struct {
		v    Value
		kind TypeKind
		want bool
	}{
		{Num(1), TypeNumber, true},
		{Str("x"), TypeNumber, false},
		{Str("x"), TypeString, true},
		{Bool(true), TypeBool, true},
		{Num(0), TypeBool, false},
		{Unit, TypeString, false},
	}
	for _, c := range cases {
		ok, err := reg.Satisfies(c.v, TypeRef{Kind: c.kind})
		if err != nil {
			t.Fatalf("Satisfies: %v", err)
		}
		if ok != c.want {
			t.Fatalf("Satisfies(%s, kind %d) = %v, want %v", c.v.typeTag(), c.kind, ok, c.want)
		}
	}
}

func Test_Satisfies_UnionMembership(t *testing.T) {
	reg := buildReg(t, `type Status = "active" | "inactive"`)
	ref := TypeRef{Kind: TypeNamed, Name: "Status"}

	for _, s := range []string{"active", "inactive"} {
		ok, err := reg.Satisfies(Str(s), ref)
		if err != nil || !ok {
			t.Fatalf("%q should satisfy Status (ok=%v err=%v)", s, ok, err)
		}
	}
	for _, v := range []Value{Str("Active"), Str("banned"), Str(""), Num(1), Bool(true)} {
		ok, err := reg.Satisfies(v, ref)
		if err != nil {
			t.Fatalf("Satisfies: %v", err)
		}
		if ok {
			t.Fatalf("%s should not satisfy Status", describeValue(v))
		}
	}
}

func Test_Satisfies_StructIsNominal(t *testing.T) {
	reg := buildReg(t, `
struct Person { name: string }
struct Robot { name: string }
`)
	person := StructVal(&StructInstance{TypeName: "Person", Fields: map[string]Value{"name": Str("Sam")}, Order: []string{"name"}})
	ref := TypeRef{Kind: TypeNamed, Name: "Person"}

	ok, err := reg.Satisfies(person, ref)
	if err != nil || !ok {
		t.Fatalf("Person instance should satisfy Person (ok=%v err=%v)", ok, err)
	}

	robot := StructVal(&StructInstance{TypeName: "Robot", Fields: map[string]Value{"name": Str("R2")}, Order: []string{"name"}})
	ok, err = reg.Satisfies(robot, ref)
	if err != nil {
		t.Fatalf("Satisfies: %v", err)
	}
	if ok {
		t.Fatal("same shape is not the same struct")
	}
}

func Test_Satisfies_UnknownTypeIsError(t *testing.T) {
	reg := buildReg(t, ``)
	_, err := reg.Satisfies(Num(1), TypeRef{Kind: TypeNamed, Name: "Ghost", Line: 3, Col: 7})
	if err == nil {
		t.Fatal("want TypeError")
	}
	te, ok := err.(*TypeError)
	if !ok {
		t.Fatalf("want *TypeError, got %T", err)
	}
	if te.Line != 3 || te.Col != 7 || !strings.Contains(te.Msg, "unknown type 'Ghost'") {
		t.Fatalf("error: %#v", te)
	}
}

func Test_CheckCall_Arity(t *testing.T) {
	reg := buildReg(t, `fn tax(p: number, rate: number) -> number { return p * rate }`)
	fn := reg.Func("tax")

	err := reg.checkCall(fn, []Value{Num(1)}, 5, 9)
	if err == nil {
		t.Fatal("want ArityError")
	}
	ae, ok := err.(*ArityError)
	if !ok {
		t.Fatalf("want *ArityError, got %T", err)
	}
	if ae.Line != 5 || ae.Col != 9 {
		t.Fatalf("position: %d:%d", ae.Line, ae.Col)
	}
	if !strings.Contains(ae.Msg, "expects 2 argument(s), got 1") {
		t.Fatalf("message: %q", ae.Msg)
	}
}

func Test_CheckCall_ArgumentType(t *testing.T) {
	reg := buildReg(t, `fn tax(p: number, rate: number) -> number { return p * rate }`)
	fn := reg.Func("tax")

	err := reg.checkCall(fn, []Value{Num(1), Str("high")}, 1, 1)
	if err == nil {
		t.Fatal("want TypeError")
	}
	te, ok := err.(*TypeError)
	if !ok {
		t.Fatalf("want *TypeError, got %T", err)
	}
	if !strings.Contains(te.Msg, "'rate'") || !strings.Contains(te.Msg, "number") {
		t.Fatalf("message: %q", te.Msg)
	}

	if err := reg.checkCall(fn, []Value{Num(1), Num(0.2)}, 1, 1); err != nil {
		t.Fatalf("valid call rejected: %v", err)
	}
}

func Test_CheckStructFields(t *testing.T) {
	reg := buildReg(t, `
type Status = "active" | "inactive"
struct Person { name: string, status: Status }
`)
	def := reg.Struct("Person")

	check := func(names []string, vals []Value) error {
		return reg.checkStructFields(def, names, vals, 1, 1)
	}

	if err := check([]string{"name", "status"}, []Value{Str("Sam"), Str("active")}); err != nil {
		t.Fatalf("valid literal rejected: %v", err)
	}

	// Order of supplied fields does not matter.
	if err := check([]string{"status", "name"}, []Value{Str("active"), Str("Sam")}); err != nil {
		t.Fatalf("reordered literal rejected: %v", err)
	}

	err := check([]string{"name"}, []Value{Str("Sam")})
	if err == nil || !strings.Contains(err.Error(), "missing field 'status'") {
		t.Fatalf("missing field: %v", err)
	}

	err = check([]string{"name", "status", "extra"}, []Value{Str("Sam"), Str("active"), Num(1)})
	if err == nil || !strings.Contains(err.Error(), "no field 'extra'") {
		t.Fatalf("unknown field: %v", err)
	}

	err = check([]string{"name", "name"}, []Value{Str("a"), Str("b")})
	if err == nil || !strings.Contains(err.Error(), "duplicate field 'name'") {
		t.Fatalf("duplicate field: %v", err)
	}

	err = check([]string{"name", "status"}, []Value{Str("Sam"), Str("banned")})
	if err == nil || !strings.Contains(err.Error(), "field 'status'") {
		t.Fatalf("union violation: %v", err)
	}
	if _, ok := err.(*TypeError); !ok {
		t.Fatalf("want *TypeError, got %T", err)
	}
}
