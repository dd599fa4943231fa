// registry.go — single-pass declaration collection.
//
// BuildRegistry walks the parsed program once and collects every type alias,
// struct, and function into one lookup table, independent of textual order.
// Execution only starts after the registry is complete, which is what lets a
// statement call a function defined further down the file.
//
// All declarations share one namespace: declaring a struct and a function
// with the same name would make `Name { ... }` versus `name(...)` ambiguous,
// so any reuse of a name is a NameError. The registry is immutable once
// built; the evaluator only reads it.
package weave

// Registry holds every top-level declaration of a program run.
type Registry struct {
	aliases map[string]*TypeAliasDecl
	structs map[string]*StructDecl
	funcs   map[string]*FnDecl
	// funcOrder preserves declaration order; dot-call resolution scans it so
	// the first declared candidate wins.
	funcOrder []*FnDecl
}

// BuildRegistry collects declarations from prog. Redeclaring a name is a
// NameError.
func BuildRegistry(prog *Program) (*Registry, error) {
	reg := &Registry{
		aliases: map[string]*TypeAliasDecl{},
		structs: map[string]*StructDecl{},
		funcs:   map[string]*FnDecl{},
	}
	for _, st := range prog.Stmts {
		switch d := st.(type) {
		case *TypeAliasDecl:
			if err := reg.claim(d.Name, d.Line, d.Col); err != nil {
				return nil, err
			}
			reg.aliases[d.Name] = d
		case *StructDecl:
			if err := reg.claim(d.Name, d.Line, d.Col); err != nil {
				return nil, err
			}
			reg.structs[d.Name] = d
		case *FnDecl:
			if err := reg.claim(d.Name, d.Line, d.Col); err != nil {
				return nil, err
			}
			reg.funcs[d.Name] = d
			reg.funcOrder = append(reg.funcOrder, d)
		}
	}
	return reg, nil
}

func (r *Registry) claim(name string, line, col int) error {
	if r.aliases[name] != nil || r.structs[name] != nil || r.funcs[name] != nil {
		return &NameError{Line: line, Col: col, Msg: "redeclaration of '" + name + "'"}
	}
	return nil
}

// Alias returns the named union alias, or nil.
func (r *Registry) Alias(name string) *TypeAliasDecl { return r.aliases[name] }

// Struct returns the named struct declaration, or nil.
func (r *Registry) Struct(name string) *StructDecl { return r.structs[name] }

// Func returns the named function declaration, or nil.
func (r *Registry) Func(name string) *FnDecl { return r.funcs[name] }

// findMethod resolves a dot-call: the first function in declaration order
// named name whose first parameter type the receiver satisfies. Functions
// with no parameters never match. Returns nil when nothing matches; a type
// reference that cannot be resolved surfaces as an error.
func (r *Registry) findMethod(name string, recv Value) (*FnDecl, error) {
	for _, fn := range r.funcOrder {
		if fn.Name != name || len(fn.Params) == 0 {
			continue
		}
		ok, err := r.Satisfies(recv, fn.Params[0].Type)
		if err != nil {
			return nil, err
		}
		if ok {
			return fn, nil
		}
	}
	return nil, nil
}
