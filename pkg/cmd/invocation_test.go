package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	ctx  Context
	args []any
}

func register(t *testing.T, r *Registry, handler any, params ...Param) Invoker {
	t.Helper()
	reg, err := r.SlashCommand("cmd", "test command")
	require.NoError(t, err)
	inv, err := reg.Handle(handler, params...)
	require.NoError(t, err)
	return inv
}

// capture installs an error handler that records what it receives.
func capture(r *Registry) *[]error {
	var got []error
	r.SetErrorHandler(func(ctx Context, err error) error {
		got = append(got, err)
		return nil
	})
	return &got
}

func TestConverterAppliedByDeclaredType(t *testing.T) {
	r := NewRegistry()
	RegisterConverter(r, func(raw any) (int, error) {
		return raw.(int) * 2, nil
	})

	var got call
	inv := register(t, r, func(ctx Context, a, b int) error {
		got = call{ctx: ctx, args: []any{a, b}}
		return nil
	}, Arg("a"), Arg("b"))

	ctx := &fakeContext{}
	require.NoError(t, inv(ctx, &Invocation{Positional: []any{3, 4}}))

	assert.Same(t, ctx, got.ctx)
	assert.Equal(t, []any{6, 8}, got.args)
	assert.Empty(t, ctx.replies)
}

func TestConverterLastRegistrationWins(t *testing.T) {
	r := NewRegistry()
	RegisterConverter(r, func(raw any) (int, error) { return raw.(int) * 2, nil })
	RegisterConverter(r, func(raw any) (int, error) { return raw.(int) * 10, nil })

	var got int
	inv := register(t, r, func(ctx Context, a int) { got = a }, Arg("a"))

	require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{3}}))
	assert.Equal(t, 30, got)
}

func TestConverterAppliesToDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterConverter(r, func(raw any) (int, error) { return raw.(int) + 1, nil })

	var got int
	inv := register(t, r, func(ctx Context, a int) { got = a }, Opt("a", 41))

	require.NoError(t, inv(&fakeContext{}, nil))
	assert.Equal(t, 42, got)
}

func TestUntypedArgumentsAreNotConverted(t *testing.T) {
	r := NewRegistry()
	RegisterConverter(r, func(raw any) (int, error) { return raw.(int) * 2, nil })

	var got any
	inv := register(t, r, func(ctx Context, v any) { got = v }, Arg("v"))

	require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{3}}))
	assert.Equal(t, 3, got)
}

func TestConverterMatchesExactTypeOnly(t *testing.T) {
	type userID string

	r := NewRegistry()
	RegisterConverter(r, func(raw any) (string, error) { return "converted", nil })

	var got userID
	inv := register(t, r, func(ctx Context, id userID) { got = id }, Arg("id"))

	require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{"42"}}))
	assert.Equal(t, userID("42"), got)
}

func TestConverterMayChangeRepresentation(t *testing.T) {
	type point struct{ X, Y int }

	r := NewRegistry()
	RegisterConverter(r, func(raw any) (point, error) {
		var p point
		_, err := fmt.Sscanf(raw.(string), "%d,%d", &p.X, &p.Y)
		return p, err
	})

	var got point
	inv := register(t, r, func(ctx Context, p point) { got = p }, Arg("p"))

	require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{"3,4"}}))
	assert.Equal(t, point{3, 4}, got)
}

func TestBindingDefaultsAndNames(t *testing.T) {
	r := NewRegistry()

	var got []any
	inv := register(t, r, func(ctx Context, a int, b string, c bool) {
		got = []any{a, b, c}
	}, Arg("a"), Opt("b", "none"), Opt("c", true))

	require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{1}}))
	assert.Equal(t, []any{1, "none", true}, got)

	require.NoError(t, inv(&fakeContext{}, &Invocation{
		Positional: []any{2},
		Named:      map[string]any{"c": false},
	}))
	assert.Equal(t, []any{2, "none", false}, got)

	require.NoError(t, inv(&fakeContext{}, &Invocation{
		Named: map[string]any{"b": "x", "a": int64(7)},
	}))
	assert.Equal(t, []any{7, "x", true}, got)
}

func TestNilDefaultIsZeroValue(t *testing.T) {
	r := NewRegistry()

	got := "unset"
	inv := register(t, r, func(ctx Context, name string) { got = name }, Opt("name", nil))

	require.NoError(t, inv(&fakeContext{}, nil))
	assert.Equal(t, "", got)
}

func TestStringArgumentsAreParsed(t *testing.T) {
	r := NewRegistry()

	var got []any
	inv := register(t, r, func(ctx Context, a int, f float64, ok bool, u uint8) {
		got = []any{a, f, ok, u}
	}, Arg("a"), Arg("f"), Arg("ok"), Arg("u"))

	require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{"-3", "1.5", "true", "200"}}))
	assert.Equal(t, []any{-3, 1.5, true, uint8(200)}, got)
}

func TestBindingErrorsReachPolicy(t *testing.T) {
	tests := []struct {
		name string
		inv  *Invocation
		msg  string
	}{
		{
			name: "missing required",
			inv:  &Invocation{Positional: []any{1}},
			msg:  `missing a required argument: "b"`,
		},
		{
			name: "too many positional",
			inv:  &Invocation{Positional: []any{1, 2, 3}},
			msg:  "takes 2 arguments but 3 were given",
		},
		{
			name: "unexpected name",
			inv:  &Invocation{Positional: []any{1, 2}, Named: map[string]any{"c": 3}},
			msg:  `got an unexpected argument "c"`,
		},
		{
			name: "duplicate value",
			inv:  &Invocation{Positional: []any{1, 2}, Named: map[string]any{"a": 3}},
			msg:  `got multiple values for argument "a"`,
		},
		{
			name: "wrong type",
			inv:  &Invocation{Positional: []any{1, []int{2}}},
			msg:  `argument "b": cannot use []int as int`,
		},
		{
			name: "unparsable string",
			inv:  &Invocation{Positional: []any{"one", 2}},
			msg:  `argument "a": invalid int "one"`,
		},
		{
			name: "fractional number",
			inv:  &Invocation{Positional: []any{1.5, 2}},
			msg:  `argument "a": 1.5 is not a whole number`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			called := false
			inv := register(t, r, func(ctx Context, a, b int) { called = true }, Arg("a"), Arg("b"))

			ctx := &fakeContext{}
			require.NoError(t, inv(ctx, tt.inv))

			assert.False(t, called)
			assert.Equal(t, []string{"Error: " + tt.msg}, ctx.replies)
		})
	}
}

func TestErrorStagesAreDistinguishable(t *testing.T) {
	boom := errors.New("boom")

	t.Run("binding", func(t *testing.T) {
		r := NewRegistry()
		got := capture(r)
		inv := register(t, r, func(ctx Context, a int) {}, Arg("a"))

		require.NoError(t, inv(&fakeContext{}, nil))
		require.Len(t, *got, 1)
		assert.ErrorIs(t, (*got)[0], ErrBinding)
	})

	t.Run("conversion error", func(t *testing.T) {
		r := NewRegistry()
		got := capture(r)
		RegisterConverter(r, func(raw any) (int, error) { return 0, boom })
		inv := register(t, r, func(ctx Context, a int) {}, Arg("a"))

		require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{1}}))
		require.Len(t, *got, 1)
		assert.ErrorIs(t, (*got)[0], ErrConversion)
		assert.ErrorIs(t, (*got)[0], boom)
		assert.EqualError(t, (*got)[0], "boom")

		var ie *InvocationError
		require.ErrorAs(t, (*got)[0], &ie)
		assert.Equal(t, "cmd", ie.Command)
		assert.Equal(t, "a", ie.Param)
		assert.Equal(t, StageConvert, ie.Stage)
	})

	t.Run("conversion panic", func(t *testing.T) {
		r := NewRegistry()
		got := capture(r)
		RegisterConverter(r, func(raw any) (int, error) { return raw.(int), nil })
		inv := register(t, r, func(ctx Context, a int) {}, Arg("a"))

		require.NoError(t, inv(&fakeContext{}, &Invocation{Positional: []any{"not an int"}}))
		require.Len(t, *got, 1)
		assert.ErrorIs(t, (*got)[0], ErrConversion)
		assert.Contains(t, (*got)[0].Error(), "converter panic")
	})

	t.Run("handler error", func(t *testing.T) {
		r := NewRegistry()
		got := capture(r)
		inv := register(t, r, func(ctx Context) error { return boom })

		require.NoError(t, inv(&fakeContext{}, nil))
		require.Len(t, *got, 1)
		assert.ErrorIs(t, (*got)[0], ErrHandler)
		assert.ErrorIs(t, (*got)[0], boom)
	})

	t.Run("handler panic", func(t *testing.T) {
		r := NewRegistry()
		got := capture(r)
		inv := register(t, r, func(ctx Context) { panic("kaboom") })

		require.NotPanics(t, func() {
			require.NoError(t, inv(&fakeContext{}, nil))
		})
		require.Len(t, *got, 1)
		assert.ErrorIs(t, (*got)[0], ErrHandler)
		assert.EqualError(t, (*got)[0], "handler panic: kaboom")
	})
}

func TestContextTypeMismatch(t *testing.T) {
	r := NewRegistry()
	got := capture(r)

	called := false
	inv := register(t, r, func(ctx *otherContext) { called = true })

	require.NoError(t, inv(&fakeContext{}, nil))
	assert.False(t, called)
	require.Len(t, *got, 1)
	assert.ErrorIs(t, (*got)[0], ErrBinding)

	require.NoError(t, inv(&otherContext{}, nil))
	assert.True(t, called)
}

func TestInvokersAreIndependent(t *testing.T) {
	r := NewRegistry()

	var first, second int
	reg, _ := r.SlashCommand("first", "desc")
	invFirst, err := reg.Handle(func(ctx Context, a int) { first = a }, Arg("a"))
	require.NoError(t, err)
	reg, _ = r.SlashCommand("second", "desc")
	invSecond, err := reg.Handle(func(ctx Context, a int) { second = a }, Arg("a"))
	require.NoError(t, err)

	require.NoError(t, invSecond(&fakeContext{}, &Invocation{Positional: []any{2}}))
	require.NoError(t, invFirst(&fakeContext{}, &Invocation{Positional: []any{1}}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}
