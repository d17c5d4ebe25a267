package ee

import (
	"errors"
	"fmt"

	"github.com/go-stack/stack"
	"github.com/rs/zerolog"
)

/*
 * Build failures are reported far away from where they happen: esbuild calls
 * our plugins from its own goroutines, and by the time an error reaches the
 * CLI the only thing left of it is a string. ee.Error keeps the call stack of
 * the place the error was created, and wraps a cause so errors.Is and
 * errors.As keep working.
 *
 * Use it for failures somebody will have to debug. Sentinel values that
 * callers branch on should stay plain errors.New values, wrapped by ee.New
 * where they are returned.
 */

type Error struct {
	Message string
	Wrapped error
	Stack   CallStack
}

func New(wrapped error, format string, args ...any) error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
		Stack:   Trace()[1:], // drop New itself
	}
}

var _ error = &Error{}

func (e *Error) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// StackOf returns the stack of the outermost *Error in the chain, if any.
func StackOf(err error) (CallStack, bool) {
	var asEE *Error
	if errors.As(err, &asEE) {
		return asEE.Stack, true
	}
	return nil, false
}

type CallStack []StackFrame

func (s CallStack) MarshalZerologArray(a *zerolog.Array) {
	for _, frame := range s {
		a.Object(frame)
	}
}

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) MarshalZerologObject(e *zerolog.Event) {
	e.
		Str("file", f.File).
		Int("line", f.Line).
		Str("function", f.Function)
}

// ZerologStackMarshaler prefers the stack recorded by ee.New. For any other
// error it records where the log call happened, minus this function and
// zerolog's caller.
var ZerologStackMarshaler = func(err error) any {
	if s, ok := StackOf(err); ok {
		return s
	}
	return Trace()[2:]
}

func Trace() CallStack {
	trace := stack.Trace().TrimRuntime()[1:]
	frames := make(CallStack, len(trace))
	for i, call := range trace {
		callFrame := call.Frame()
		frames[i] = StackFrame{
			File:     callFrame.File,
			Line:     callFrame.Line,
			Function: callFrame.Function,
		}
	}

	return frames
}
