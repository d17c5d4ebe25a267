package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type buildError struct{}

func (err *buildError) Error() string {
	return "build failed"
}

func TestMust(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() error { return nil }
		Must(f())
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() error { return &buildError{} }
		assert.Panics(t, func() {
			Must(f())
		})
	})
	t.Run("nil *buildError", func(t *testing.T) {
		f := func() *buildError { return nil }
		Must(f())
	})
}

func TestMust1(t *testing.T) {
	t.Run("value passes through", func(t *testing.T) {
		f := func() (string, error) { return "dist", nil }
		assert.Equal(t, "dist", Must1(f()))
	})
	t.Run("non-nil *buildError", func(t *testing.T) {
		f := func() (int, *buildError) { return 0, &buildError{} }
		assert.Panics(t, func() {
			Must1(f())
		})
	})
}

func TestCond(t *testing.T) {
	assert.Equal(t, "source-map", Cond(true, "source-map", ""))
	assert.Equal(t, 0, Cond(false, 1, 0))
}
