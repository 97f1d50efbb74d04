package extract

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcatIsFlatAndOrdered(t *testing.T) {
	a, b, c, d := Of(1), Of("b"), Of(3.0), Of(true)

	assert.Equal(t, Two[int, string]{1, "b"}, Concat11(a, b))
	assert.Equal(t, Three[int, string, float64]{1, "b", 3.0}, Concat21(Concat11(a, b), c))
	assert.Equal(t, Three[int, string, float64]{1, "b", 3.0}, Concat12(a, Concat11(b, c)))
	assert.Equal(t, Concat31(Concat21(Concat11(a, b), c), d), Concat13(a, Concat21(Concat11(b, c), d)))
	assert.Equal(t, Concat31(Concat21(Concat11(a, b), c), d), Concat22(Concat11(a, b), Concat11(c, d)))

	assert.Equal(t, a, Concat0X(Unit{}, a))
	assert.Equal(t, a, ConcatX0(a, Unit{}))
}

func TestExtractIntoOutcome(t *testing.T) {
	e := New("req", Of2(1, 2))
	out := e.IntoOutcome()
	v, ok := out.Value()
	require.True(t, ok)

	in, vals := v.Split()
	assert.Equal(t, "req", in)
	assert.Equal(t, Two[int, int]{1, 2}, vals)
	assert.Equal(t, vals, Values(v))
}

func TestAnyAndState(t *testing.T) {
	ctx := context.Background()

	v, ok := Any[string]().Call(ctx, "x").Value()
	require.True(t, ok)
	assert.Equal(t, "x", v.Input)
	assert.Equal(t, Unit{}, v.Values)

	st, ok := State[string]("shared").Call(ctx, "x").Value()
	require.True(t, ok)
	assert.Equal(t, "shared", st.Values.V0)
}

func TestFuncOptionalFilter(t *testing.T) {
	ctx := context.Background()
	parse := Func(func(_ context.Context, in string) (int, error) { return strconv.Atoi(in) })

	v, ok := parse.Call(ctx, "12").Value()
	require.True(t, ok)
	assert.Equal(t, 12, v.Values.V0)
	assert.Equal(t, "12", v.Input)

	var numErr *strconv.NumError
	assert.True(t, errors.As(parse.Call(ctx, "x").Err(), &numErr))

	opt := Optional(func(_ context.Context, in string) (int, bool) { return len(in), in != "" })
	assert.True(t, opt.Call(ctx, "").IsNext())
	assert.True(t, opt.Call(ctx, "abc").IsSuccess())

	nonEmpty := Filter(func(in string) bool { return in != "" })
	declined := nonEmpty.Call(ctx, "")
	in, ok := declined.Input()
	require.True(t, ok)
	assert.Equal(t, "", in)
}
