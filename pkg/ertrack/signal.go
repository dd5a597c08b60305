// signal.go defines the as-received error signals accepted at the capture boundary.

package ertrack

import (
	"fmt"
)

// Signal is one captured error event. It is a closed set: NativeError,
// ExplicitFields and MessageOnly are the only implementations.
type Signal interface {
	signal()
}

// NativeError is an error object delivered on its own, e.g. a thrown value
// caught by Guard or an onerror callback whose first argument is an object.
type NativeError struct {
	Err ErrorObject
}

// ExplicitFields is the full positional onerror signal. Err is nil when the
// browser supplied no error object, in which case no stack is parsed.
type ExplicitFields struct {
	Message string
	Script  string
	Line    string
	Column  string
	Err     *ErrorObject
}

// MessageOnly is a bare message with no location or error object.
type MessageOnly struct {
	Message string
}

func (NativeError) signal()    {}
func (ExplicitFields) signal() {}
func (MessageOnly) signal()    {}

// ErrorObject holds the fields browsers may expose on an error value. Each
// engine fills a different subset; empty means absent.
type ErrorObject struct {
	Message string
	Name    string
	Stack   string

	Line   string
	Column string

	// LineNumber and ColumnNumber are the Firefox spellings.
	LineNumber   string
	ColumnNumber string

	Script string

	// FileName is reported by Firefox, SourceURL by Safari.
	FileName  string
	SourceURL string

	// Extra carries any other own properties of the error value.
	Extra Object
}

// SerialValue presents the error object as an ordered mapping of its
// present fields followed by Extra.
func (e ErrorObject) SerialValue() any {
	obj := make(Object, 0, 10+len(e.Extra))
	add := func(key, value string) {
		if value != "" {
			obj = append(obj, Member{Key: key, Value: value})
		}
	}
	add("message", e.Message)
	add("name", e.Name)
	add("stack", e.Stack)
	add("line", e.Line)
	add("column", e.Column)
	add("lineNumber", e.LineNumber)
	add("columnNumber", e.ColumnNumber)
	add("script", e.Script)
	add("fileName", e.FileName)
	add("sourceURL", e.SourceURL)
	return append(obj, e.Extra...)
}

// ErrorObjectFromPanic converts a recovered panic value and the goroutine
// stack into an ErrorObject.
func ErrorObjectFromPanic(recovered any, stack []byte) ErrorObject {
	obj := ErrorObject{
		Message: formatRecovered(recovered),
		Name:    "panic",
		Stack:   string(stack),
	}
	if err, ok := recovered.(error); ok {
		obj.Name = fmt.Sprintf("%T", err)
	}
	return obj
}

// formatRecovered formats a recovered panic value as a string.
func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
