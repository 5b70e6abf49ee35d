package cmd

import (
	"fmt"
	"math"
	"reflect"
	"strconv"

	"go.uber.org/zap"
)

// Converter transforms a raw bound argument before it reaches the handler.
type Converter func(raw any) (any, error)

// RegisterConverter installs fn for arguments declared with exactly type t.
// A later registration for the same type replaces the earlier one.
func (r *Registry) RegisterConverter(t reflect.Type, fn Converter) {
	if t == nil || fn == nil {
		return
	}
	r.converters[t] = fn
	r.logger.Debug("registered converter", zap.Stringer("type", t))
}

// RegisterConverter is the typed form of (*Registry).RegisterConverter.
func RegisterConverter[T any](r *Registry, fn func(raw any) (T, error)) {
	r.RegisterConverter(reflect.TypeFor[T](), func(raw any) (any, error) {
		return fn(raw)
	})
}

// HasConverter reports whether a converter is registered for exactly type t.
func (r *Registry) HasConverter(t reflect.Type) bool {
	if t == nil {
		return false
	}
	_, ok := r.converters[t]
	return ok
}

// coerce fits v into the handler's declared type t. Numeric values convert between
// kinds when no precision is lost and strings parse into scalar kinds; nil becomes
// the zero value.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return convertNumber(rv, t)
	}
	if s, ok := v.(string); ok {
		return parseScalar(s, t)
	}
	if rv.Kind() == reflect.String && t.Kind() == reflect.String {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", v, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	overflow := fmt.Errorf("%v overflows %s", rv.Interface(), t)

	switch {
	case out.CanInt():
		var n int64
		switch {
		case rv.CanInt():
			n = rv.Int()
		case rv.CanUint():
			if rv.Uint() > math.MaxInt64 {
				return reflect.Value{}, overflow
			}
			n = int64(rv.Uint())
		default:
			f := rv.Float()
			if f != math.Trunc(f) {
				return reflect.Value{}, fmt.Errorf("%v is not a whole number", f)
			}
			if f < math.MinInt64 || f >= math.MaxInt64 {
				return reflect.Value{}, overflow
			}
			n = int64(f)
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, overflow
		}
		out.SetInt(n)

	case out.CanUint():
		var n uint64
		switch {
		case rv.CanInt():
			if rv.Int() < 0 {
				return reflect.Value{}, fmt.Errorf("%d is negative", rv.Int())
			}
			n = uint64(rv.Int())
		case rv.CanUint():
			n = rv.Uint()
		default:
			f := rv.Float()
			if f != math.Trunc(f) || f < 0 {
				return reflect.Value{}, fmt.Errorf("%v is not a non-negative whole number", f)
			}
			if f >= math.MaxUint64 {
				return reflect.Value{}, overflow
			}
			n = uint64(f)
		}
		if out.OverflowUint(n) {
			return reflect.Value{}, overflow
		}
		out.SetUint(n)

	default:
		var f float64
		switch {
		case rv.CanInt():
			f = float64(rv.Int())
		case rv.CanUint():
			f = float64(rv.Uint())
		default:
			f = rv.Float()
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, overflow
		}
		out.SetFloat(f)
	}
	return out, nil
}

func parseScalar(s string, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid %s %q", t, s)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid %s %q", t, s)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid %s %q", t, s)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid %s %q", t, s)
		}
		out.SetFloat(f)
	default:
		return reflect.Value{}, fmt.Errorf("cannot use string as %s", t)
	}
	return out, nil
}
