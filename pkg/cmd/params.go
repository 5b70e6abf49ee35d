package cmd

import (
	"fmt"
	"reflect"
)

// Param names one handler argument. Go's reflection does not expose parameter
// names, so each argument after the context is declared explicitly and in order.
type Param struct {
	name        string
	def         any
	hasDefault  bool
	description string
}

// Arg declares a required argument.
func Arg(name string) Param { return Param{name: name} }

// Opt declares an optional argument used with def when omitted.
func Opt(name string, def any) Param { return Param{name: name, def: def, hasDefault: true} }

// Describe attaches a short description, used for slash command options.
func (p Param) Describe(text string) Param {
	p.description = text
	return p
}

// ParamSpec is the resolved schema of one handler argument.
type ParamSpec struct {
	Name string
	// Type is the declared type; nil means the argument is untyped (any).
	Type        reflect.Type
	HasDefault  bool
	Default     any
	Description string
}

// TypeName returns the declared type's name, or "Any" for untyped arguments.
func (p ParamSpec) TypeName() string {
	if p.Type == nil {
		return "Any"
	}
	if n := p.Type.Name(); n != "" {
		return n
	}
	return p.Type.String()
}

var errorType = reflect.TypeFor[error]()

// signature inspects handler and pairs its arguments with params.
func signature(handler any, params []Param) (reflect.Value, []ParamSpec, error) {
	fn := reflect.ValueOf(handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return reflect.Value{}, nil, fmt.Errorf("%w: handler must be a function, got %T", ErrValidation, handler)
	}

	ft := fn.Type()
	if ft.IsVariadic() {
		return reflect.Value{}, nil, fmt.Errorf("%w: variadic handlers are not supported", ErrValidation)
	}
	if ft.NumIn() == 0 || !acceptsContext(ft.In(0)) {
		return reflect.Value{}, nil, fmt.Errorf("%w: handler must take the invocation context as its first argument", ErrValidation)
	}
	switch {
	case ft.NumOut() == 0:
	case ft.NumOut() == 1 && ft.Out(0) == errorType:
	default:
		return reflect.Value{}, nil, fmt.Errorf("%w: handler must return nothing or an error", ErrValidation)
	}

	if want := ft.NumIn() - 1; len(params) != want {
		return reflect.Value{}, nil, fmt.Errorf("%w: handler takes %d arguments, %d declared", ErrValidation, want, len(params))
	}

	specs := make([]ParamSpec, len(params))
	seen := make(map[string]struct{}, len(params))
	for i, p := range params {
		if p.name == "" {
			return reflect.Value{}, nil, fmt.Errorf("%w: argument %d has no name", ErrValidation, i+1)
		}
		if _, dup := seen[p.name]; dup {
			return reflect.Value{}, nil, fmt.Errorf("%w: duplicate argument %q", ErrValidation, p.name)
		}
		seen[p.name] = struct{}{}

		t := ft.In(i + 1)
		if p.hasDefault {
			if _, err := coerce(p.def, t); err != nil {
				return reflect.Value{}, nil, fmt.Errorf("%w: default for %q: %v", ErrValidation, p.name, err)
			}
		}

		specs[i] = ParamSpec{
			Name:        p.name,
			Type:        declaredType(t),
			HasDefault:  p.hasDefault,
			Default:     p.def,
			Description: p.description,
		}
	}
	return fn, specs, nil
}

func acceptsContext(t reflect.Type) bool {
	return t.Implements(contextType) || (t.Kind() == reflect.Interface && contextType.Implements(t))
}

// declaredType maps the empty interface to nil so untyped arguments are never
// matched against the converter table.
func declaredType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		return nil
	}
	return t
}
