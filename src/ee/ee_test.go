package ee

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestNewWrapsCause(t *testing.T) {
	err := New(errSentinel, "building %s", "main")
	assert.Equal(t, "building main: sentinel", err.Error())
	assert.ErrorIs(t, err, errSentinel)

	bare := New(nil, "nothing wrapped")
	assert.Equal(t, "nothing wrapped", bare.Error())
}

func TestStackStartsAtCaller(t *testing.T) {
	err := New(nil, "boom")
	s, ok := StackOf(err)
	require.True(t, ok)
	require.NotEmpty(t, s)
	assert.True(t, strings.HasSuffix(s[0].Function, "TestStackStartsAtCaller"), s[0].Function)
}

func TestStackOfWrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(errSentinel, "inner"))
	_, ok := StackOf(err)
	assert.True(t, ok)

	_, ok = StackOf(errSentinel)
	assert.False(t, ok)
}
