package recovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_NoPanic(t *testing.T) {
	called := false
	err := Do(func() { called = true })

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestDo_PanicValue(t *testing.T) {
	err := Do(func() { panic("boom") })

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "boom", pe.Value)
	assert.Equal(t, "panic: boom", pe.Error())
	assert.NotEmpty(t, pe.Stack)
	assert.Nil(t, pe.Unwrap())
}

func TestDo_PanicError(t *testing.T) {
	cause := errors.New("disk full")
	err := Do(func() { panic(cause) })

	assert.ErrorIs(t, err, cause)
}

func TestCall_ReturnsResult(t *testing.T) {
	v, err := Call(func() int { return 42 })

	assert.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestCall_PanicReturnsZeroValue(t *testing.T) {
	v, err := Call(func() int { panic("nope") })

	assert.Error(t, err)
	assert.Zero(t, v)
}

func TestWithStackSize(t *testing.T) {
	err := Do(func() { panic("small") }, WithStackSize(64))

	var pe *PanicError
	require.True(t, errors.As(err, &pe))
	assert.LessOrEqual(t, len(pe.Stack), 64)
}
