// types.go — runtime type satisfaction.
//
// Weave has no separate checking pass; a value is validated against a
// declared type at the point of use — function calls and struct
// construction. One rule serves both sites:
//
//   - a primitive reference is satisfied when the value's tag matches;
//   - a name resolving to a struct is satisfied by an instance of exactly
//     that struct (nominal, no hierarchy);
//   - a name resolving to a union alias is satisfied by a string whose
//     content is a member of the alias's closed literal set;
//   - a name resolving to nothing is a TypeError ("unknown type").
//
// Union values stay plain strings at runtime; membership is only checked at
// these boundaries. Fields whose declared type is itself a struct or union
// are checked with the same rule, recursively through construction sites.
package weave

import "fmt"

// Satisfies reports whether v satisfies the type reference t. The error
// return is non-nil only when t names an unknown type.
func (r *Registry) Satisfies(v Value, t TypeRef) (bool, error) {
	switch t.Kind {
	case TypeNumber:
		return v.Tag == VTNumber, nil
	case TypeString:
		return v.Tag == VTString, nil
	case TypeBool:
		return v.Tag == VTBool, nil
	}
	if def := r.structs[t.Name]; def != nil {
		return v.Tag == VTStruct && v.Data.(*StructInstance).TypeName == def.Name, nil
	}
	if alias := r.aliases[t.Name]; alias != nil {
		if v.Tag != VTString {
			return false, nil
		}
		s := v.Data.(string)
		for _, lit := range alias.Variants {
			if s == lit {
				return true, nil
			}
		}
		return false, nil
	}
	return false, &TypeError{Line: t.Line, Col: t.Col, Msg: "unknown type '" + t.Name + "'"}
}

// checkCall validates argument count and types against fn's declared
// parameters. line/col locate the call site for arity failures; individual
// argument failures point at the same site with the parameter named.
func (r *Registry) checkCall(fn *FnDecl, args []Value, line, col int) error {
	if len(args) != len(fn.Params) {
		return &ArityError{
			Line: line, Col: col,
			Msg: fmt.Sprintf("function '%s' expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args)),
		}
	}
	for i, p := range fn.Params {
		ok, err := r.Satisfies(args[i], p.Type)
		if err != nil {
			return err
		}
		if !ok {
			return &TypeError{
				Line: line, Col: col,
				Msg: fmt.Sprintf("argument '%s' of '%s' expects %s, got %s",
					p.Name, fn.Name, p.Type.String(), describeValue(args[i])),
			}
		}
	}
	return nil
}

// checkStructFields validates a struct literal: every declared field exactly
// once, each satisfying its declared type. names/vals are the supplied
// fields in literal order.
func (r *Registry) checkStructFields(def *StructDecl, names []string, vals []Value, line, col int) error {
	seen := map[string]Value{}
	for i, name := range names {
		if _, dup := seen[name]; dup {
			return &TypeError{
				Line: line, Col: col,
				Msg: fmt.Sprintf("duplicate field '%s' in '%s' literal", name, def.Name),
			}
		}
		if def.FieldIndex(name) < 0 {
			return &TypeError{
				Line: line, Col: col,
				Msg: fmt.Sprintf("struct '%s' has no field '%s'", def.Name, name),
			}
		}
		seen[name] = vals[i]
	}
	for _, f := range def.Fields {
		v, supplied := seen[f.Name]
		if !supplied {
			return &TypeError{
				Line: line, Col: col,
				Msg: fmt.Sprintf("missing field '%s' of type %s in '%s' literal", f.Name, f.Type.String(), def.Name),
			}
		}
		ok, err := r.Satisfies(v, f.Type)
		if err != nil {
			return err
		}
		if !ok {
			return &TypeError{
				Line: line, Col: col,
				Msg: fmt.Sprintf("field '%s' of '%s' expects %s, got %s",
					f.Name, def.Name, f.Type.String(), describeValue(v)),
			}
		}
	}
	return nil
}
