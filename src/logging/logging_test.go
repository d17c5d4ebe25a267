package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestPrettyWriterSingleLine(t *testing.T) {
	var out bytes.Buffer
	w := NewPrettyZerologWriter(&out)

	line := []byte(`{"level":"info","time":"2024-01-02T03:04:05Z","message":"Ran esbuild"}`)
	n, err := w.Write(line)
	assert.NoError(t, err)
	assert.Equal(t, len(line), n)

	s := out.String()
	assert.Contains(t, s, "2024-01-02 03:04:05")
	assert.Contains(t, s, "INFO")
	assert.Contains(t, s, "Ran esbuild")
	assert.NotContains(t, s, "-----")
}

func TestPrettyWriterFieldsAreSortedAndFenced(t *testing.T) {
	var out bytes.Buffer
	w := NewPrettyZerologWriter(&out)

	_, err := w.Write([]byte(`{"level":"warn","message":"built","zeta":1,"alpha":"a"}`))
	assert.NoError(t, err)

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "-----"))
	assert.Less(t, strings.Index(s, "alpha"), strings.Index(s, "zeta"))

	// The entry after a multi-line one gets a fence too.
	out.Reset()
	_, err = w.Write([]byte(`{"level":"info","message":"next"}`))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(out.String(), "-----"))
}

func TestPrettyWriterPassesThroughNonJSON(t *testing.T) {
	var out bytes.Buffer
	w := NewPrettyZerologWriter(&out)
	_, err := w.Write([]byte("plain text\n"))
	assert.NoError(t, err)
	assert.Equal(t, "plain text\n", out.String())
}

func TestExtractLogger(t *testing.T) {
	assert.Same(t, GlobalLogger(), ExtractLogger(context.Background()))

	logger := zerolog.Nop()
	ctx := AttachLoggerToContext(&logger, context.Background())
	assert.Same(t, &logger, ExtractLogger(ctx))
}
