package ertrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeStack = "TypeError: boom\n" +
	"    at handler (http://x.com/app.js:30:12)\n" +
	"    at dispatch (http://x.com/lib.js:5:1)"

func TestNormalizeError_ExplicitLineWins(t *testing.T) {
	rec := NormalizeError("", "", "7", "", &ErrorObject{Line: "99"})
	assert.Equal(t, "7", rec.Line)
}

func TestNormalizeError_FieldResolutionOrder(t *testing.T) {
	tests := []struct {
		name    string
		message string
		script  string
		line    string
		column  string
		obj     ErrorObject
		want    Record
	}{
		{
			name: "object line over lineNumber",
			obj:  ErrorObject{Line: "1", LineNumber: "2", Column: "3", ColumnNumber: "4"},
			want: Record{Line: "1", Column: "3"},
		},
		{
			name: "lineNumber when line missing",
			obj:  ErrorObject{LineNumber: "2", ColumnNumber: "4"},
			want: Record{Line: "2", Column: "4"},
		},
		{
			name: "lineNumber over stack",
			obj:  ErrorObject{LineNumber: "2", Stack: chromeStack},
			want: Record{Line: "2", Column: "12", Script: "http://x.com/app.js"},
		},
		{
			name: "stack address as last resort",
			obj:  ErrorObject{Stack: chromeStack},
			want: Record{Line: "30", Column: "12", Script: "http://x.com/app.js"},
		},
		{
			name:   "explicit location over everything",
			script: "http://explicit.js",
			line:   "5",
			column: "6",
			obj:    ErrorObject{Line: "1", Column: "2", Script: "http://obj.js", Stack: chromeStack},
			want:   Record{Line: "5", Column: "6", Script: "http://explicit.js"},
		},
		{
			name: "script order: script, fileName, sourceURL",
			obj:  ErrorObject{FileName: "http://ff.js", SourceURL: "http://safari.js"},
			want: Record{Script: "http://ff.js"},
		},
		{
			name: "sourceURL before stack",
			obj:  ErrorObject{SourceURL: "http://safari.js", Stack: chromeStack},
			want: Record{Line: "30", Column: "12", Script: "http://safari.js"},
		},
		{
			name: "nothing resolves to empty",
			obj:  ErrorObject{},
			want: Record{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := tt.obj
			rec := NormalizeError(tt.message, tt.script, tt.line, tt.column, &obj)
			assert.Equal(t, tt.want.Line, rec.Line, "line")
			assert.Equal(t, tt.want.Column, rec.Column, "column")
			assert.Equal(t, tt.want.Script, rec.Script, "script")
		})
	}
}

func TestNormalizeError_MessageAndName(t *testing.T) {
	rec := NormalizeError("explicit", "", "", "", &ErrorObject{Message: "from object", Name: "RangeError"})
	assert.Equal(t, "explicit", rec.Message)
	assert.Equal(t, "RangeError", rec.Name)

	rec = NormalizeError("", "", "", "", &ErrorObject{Message: "from object"})
	assert.Equal(t, "from object", rec.Message)
	assert.Equal(t, "", rec.Name)

	rec = NormalizeError("", "", "", "", &ErrorObject{})
	assert.Equal(t, "", rec.Message)
}

func TestNormalizeError_Stack(t *testing.T) {
	rec := NormalizeError("", "", "", "", &ErrorObject{Stack: chromeStack})
	require.Len(t, rec.Stack, 2)
	assert.Equal(t, Frame{FunctionName: "handler", Location: "http://x.com/app.js:30:12"}, rec.Stack[0])
	assert.Equal(t, Frame{FunctionName: "dispatch", Location: "http://x.com/lib.js:5:1"}, rec.Stack[1])

	rec = NormalizeError("", "", "", "", &ErrorObject{})
	assert.NotNil(t, rec.Stack, "stack must be an empty slice, not nil")
	assert.Empty(t, rec.Stack)
}

func TestNormalizeError_ShortStackLocation(t *testing.T) {
	rec := NormalizeError("", "", "", "", &ErrorObject{Stack: "at foo (http://x.com/a.js)"})
	assert.Equal(t, "http", rec.Line)
	assert.Equal(t, "//x.com/a.js", rec.Column)
	assert.Empty(t, rec.Script)

	rec = NormalizeError("", "", "", "", &ErrorObject{Stack: "at foo (http://x.com/a.js)", FileName: "http://x.com/a.js"})
	assert.Equal(t, "http://x.com/a.js", rec.Script, "fileName fills the script the stack left empty")
}

func TestNormalizeError_SerializedOriginal(t *testing.T) {
	obj := &ErrorObject{Message: "boom", Name: "Error", Extra: Object{{"code", "E42"}}}
	rec := NormalizeError("", "", "", "", obj)
	assert.Equal(t, `{"message":"boom","name":"Error","code":"E42"}`, rec.SerializedOriginal)
}

func TestNormalizeError_NilObject(t *testing.T) {
	rec := NormalizeError("msg", "http://s.js", "1", "2", nil)
	assert.Equal(t, "msg", rec.Message)
	assert.Equal(t, "http://s.js", rec.Script)
	assert.NotNil(t, rec.Stack)
	assert.Equal(t, "{}", rec.SerializedOriginal)
}

func TestNormalize_NativeError(t *testing.T) {
	rec := Normalize(NativeError{Err: ErrorObject{
		Message: "x is not defined",
		Name:    "ReferenceError",
		Stack:   "f@http://x.com/a.js:4:8",
	}})

	assert.Equal(t, "x is not defined", rec.Message)
	assert.Equal(t, "ReferenceError", rec.Name)
	assert.Equal(t, "4", rec.Line)
	assert.Equal(t, "8", rec.Column)
	assert.Equal(t, "http://x.com/a.js", rec.Script)
	assert.Len(t, rec.Stack, 1)
}

func TestNormalize_ExplicitFieldsWithError(t *testing.T) {
	rec := Normalize(ExplicitFields{
		Message: "Uncaught TypeError: boom",
		Script:  "http://x.com/app.js",
		Line:    "30",
		Column:  "12",
		Err:     &ErrorObject{Message: "boom", Name: "TypeError", Stack: chromeStack},
	})

	assert.Equal(t, "Uncaught TypeError: boom", rec.Message)
	assert.Equal(t, "TypeError", rec.Name)
	assert.Len(t, rec.Stack, 2)
	assert.Equal(t, "http://x.com/app.js", rec.Script)
}

func TestNormalize_ExplicitFieldsWithoutErrorSkipsStack(t *testing.T) {
	// The message looks like a stack line; it must not be parsed.
	rec := Normalize(ExplicitFields{
		Message: "at foo (http://x.com/a.js:1:2)",
		Script:  "http://x.com/page.js",
		Line:    "9",
		Column:  "3",
	})

	assert.NotNil(t, rec.Stack)
	assert.Empty(t, rec.Stack)
	assert.Equal(t, "http://x.com/page.js", rec.Script)
	assert.Equal(t, "9", rec.Line)
	assert.Equal(t, "3", rec.Column)
	assert.Equal(t, "", rec.Name)
	assert.Equal(t, `"at foo (http://x.com/a.js:1:2)"`, rec.SerializedOriginal)
}

func TestNormalize_MessageOnly(t *testing.T) {
	rec := Normalize(MessageOnly{Message: "Script error."})

	assert.Equal(t, "Script error.", rec.Message)
	assert.NotNil(t, rec.Stack)
	assert.Empty(t, rec.Stack)
	assert.Equal(t, "", rec.Script)
	assert.Equal(t, "", rec.Line)
	assert.Equal(t, "", rec.Column)
	assert.Equal(t, `"Script error."`, rec.SerializedOriginal)
}

func TestNormalize_PointerVariants(t *testing.T) {
	rec := Normalize(&MessageOnly{Message: "m"})
	assert.Equal(t, "m", rec.Message)

	rec = Normalize(&NativeError{Err: ErrorObject{Message: "n"}})
	assert.Equal(t, "n", rec.Message)

	rec = Normalize(&ExplicitFields{Message: "e", Line: "1"})
	assert.Equal(t, "1", rec.Line)

	var nilSignal *MessageOnly
	rec = Normalize(nilSignal)
	assert.NotNil(t, rec.Stack)
}

func TestNormalize_NilSignal(t *testing.T) {
	rec := Normalize(nil)
	assert.Equal(t, Record{Stack: []Frame{}}, rec)
}
