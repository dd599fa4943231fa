// value.go — the Weave runtime value model.
package weave

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueTag enumerates the runtime kinds a Value may hold.
// The tag determines which Go type Value.Data carries.
type ValueTag int

const (
	VTUnit   ValueTag = iota // no payload
	VTNumber                 // float64
	VTString                 // string
	VTBool                   // bool
	VTStruct                 // *StructInstance
	VTFun                    // *FnDecl (a function reference)
)

// Value is the tagged union carried through evaluation.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// Unit is the singleton unit value (`nil` in source).
var Unit = Value{Tag: VTUnit}

// Constructors.
func Num(f float64) Value  { return Value{Tag: VTNumber, Data: f} }
func Str(s string) Value   { return Value{Tag: VTString, Data: s} }
func Bool(b bool) Value    { return Value{Tag: VTBool, Data: b} }
func FunVal(f *FnDecl) Value { return Value{Tag: VTFun, Data: f} }

// StructInstance is a constructed struct value. Fields holds every declared
// field exactly once; Order mirrors the StructDecl declaration order and
// drives display.
type StructInstance struct {
	TypeName string
	Fields   map[string]Value
	Order    []string
}

func StructVal(inst *StructInstance) Value { return Value{Tag: VTStruct, Data: inst} }

// Get returns the named field and whether it is declared on this instance.
func (s *StructInstance) Get(name string) (Value, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// typeTag names the runtime type of a value the way type references spell
// it: "number", "string", "bool", the struct's type name, "fn", or "nil".
func (v Value) typeTag() string {
	switch v.Tag {
	case VTNumber:
		return "number"
	case VTString:
		return "string"
	case VTBool:
		return "bool"
	case VTStruct:
		return v.Data.(*StructInstance).TypeName
	case VTFun:
		return "fn"
	default:
		return "nil"
	}
}

// FormatValue renders the display string used by print and by '+' string
// coercion. Numbers drop a trailing ".0"; strings render unquoted.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTUnit:
		return "nil"
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTString:
		return v.Data.(string)
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTStruct:
		inst := v.Data.(*StructInstance)
		var b strings.Builder
		b.WriteString(inst.TypeName)
		b.WriteString(" { ")
		for i, name := range inst.Order {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(describeValue(inst.Fields[name]))
		}
		b.WriteString(" }")
		return b.String()
	case VTFun:
		return fmt.Sprintf("<fn %s>", v.Data.(*FnDecl).Name)
	default:
		return "<unknown>"
	}
}

// describeValue is FormatValue with strings quoted, used inside struct
// display and in error messages where the value's kind should be visible.
func describeValue(v Value) string {
	if v.Tag == VTString {
		return strconv.Quote(v.Data.(string))
	}
	return FormatValue(v)
}

// deepEqual implements '==' on any two values: same tag, then structural
// comparison. Function references compare by identity.
func deepEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTUnit:
		return true
	case VTNumber:
		return a.Data.(float64) == b.Data.(float64)
	case VTString:
		return a.Data.(string) == b.Data.(string)
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTStruct:
		ax, bx := a.Data.(*StructInstance), b.Data.(*StructInstance)
		if ax.TypeName != bx.TypeName || len(ax.Fields) != len(bx.Fields) {
			return false
		}
		for k, av := range ax.Fields {
			bv, ok := bx.Fields[k]
			if !ok || !deepEqual(av, bv) {
				return false
			}
		}
		return true
	case VTFun:
		return a.Data == b.Data
	default:
		return false
	}
}

// truthy implements condition tests: Bool is itself, Unit is false, every
// other value is true.
func truthy(v Value) bool {
	switch v.Tag {
	case VTBool:
		return v.Data.(bool)
	case VTUnit:
		return false
	default:
		return true
	}
}
