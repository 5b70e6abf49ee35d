// Package cmd provides a transport-agnostic command core: commands are registered
// with a name, a kind and a handler whose signature describes its arguments. How a
// command is dispatched (Discord slash, prefix messages, CLI) is defined by adapters
// that call the Invoker returned at registration.
package cmd

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"go.uber.org/zap"
)

// Context is the invocation context handed to every handler as its first argument.
// Adapters implement it on top of their transport (e.g. an interaction or a channel).
type Context interface {
	Reply(content string) error
	Replied() bool
}

// Invocation carries the raw arguments of a single command call. Positional values
// bind in declaration order, Named values bind by parameter name.
type Invocation struct {
	Positional []any
	Named      map[string]any
}

// Invoker runs a registered command. Argument and handler failures never escape:
// they are delivered to the registry's error policy, and only an error returned by
// that policy itself is returned to the caller.
type Invoker func(ctx Context, inv *Invocation) error

var contextType = reflect.TypeFor[Context]()

func (r *Registry) invoker(c *Command, fn reflect.Value) Invoker {
	return func(ctx Context, inv *Invocation) error {
		if inv == nil {
			inv = &Invocation{}
		}
		if err := r.call(ctx, c, fn, inv); err != nil {
			r.logger.Debug("command failed", zap.String("command", c.Name), zap.Error(err))
			return r.HandleError(ctx, err)
		}
		return nil
	}
}

// call binds, converts and coerces the arguments, then runs the handler.
func (r *Registry) call(ctx Context, c *Command, fn reflect.Value, inv *Invocation) error {
	ft := fn.Type()

	ctxValue := reflect.ValueOf(ctx)
	if !ctxValue.IsValid() || !ctxValue.Type().AssignableTo(ft.In(0)) {
		return &InvocationError{
			Stage:   StageBind,
			Command: c.Name,
			Err:     fmt.Errorf("context %T cannot be used as %s", ctx, ft.In(0)),
		}
	}

	values, err := bind(c.Params, inv)
	if err != nil {
		return &InvocationError{Stage: StageBind, Command: c.Name, Err: err}
	}

	for i, p := range c.Params {
		if p.Type == nil {
			continue
		}
		conv, ok := r.converters[p.Type]
		if !ok {
			continue
		}
		out, err := safeConvert(conv, values[i])
		if err != nil {
			return &InvocationError{Stage: StageConvert, Command: c.Name, Param: p.Name, Err: err}
		}
		values[i] = out
	}

	args := make([]reflect.Value, 0, len(values)+1)
	args = append(args, ctxValue)
	for i, p := range c.Params {
		v, err := coerce(values[i], ft.In(i+1))
		if err != nil {
			return &InvocationError{
				Stage:   StageBind,
				Command: c.Name,
				Param:   p.Name,
				Err:     fmt.Errorf("argument %q: %w", p.Name, err),
			}
		}
		args = append(args, v)
	}

	if err := safeCall(fn, args); err != nil {
		return &InvocationError{Stage: StageHandler, Command: c.Name, Err: err}
	}
	return nil
}

// bind maps the raw arguments onto the declared parameters, applying defaults for
// omitted optional ones.
func bind(params []ParamSpec, inv *Invocation) ([]any, error) {
	if len(inv.Positional) > len(params) {
		return nil, fmt.Errorf("takes %d arguments but %d were given", len(params), len(inv.Positional))
	}

	values := make([]any, len(params))
	set := make([]bool, len(params))
	for i, v := range inv.Positional {
		values[i] = v
		set[i] = true
	}

	for _, name := range slices.Sorted(maps.Keys(inv.Named)) {
		idx := indexOf(params, name)
		if idx < 0 {
			return nil, fmt.Errorf("got an unexpected argument %q", name)
		}
		if set[idx] {
			return nil, fmt.Errorf("got multiple values for argument %q", name)
		}
		values[idx] = inv.Named[name]
		set[idx] = true
	}

	for i, p := range params {
		if set[i] {
			continue
		}
		if !p.HasDefault {
			return nil, fmt.Errorf("missing a required argument: %q", p.Name)
		}
		values[i] = p.Default
	}
	return values, nil
}

func indexOf(params []ParamSpec, name string) int {
	for i, p := range params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

func safeConvert(conv Converter, raw any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("converter panic: %v", p)
		}
	}()
	return conv(raw)
}

func safeCall(fn reflect.Value, args []reflect.Value) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	out := fn.Call(args)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}
