// record.go defines the canonical error record and its parts.

package ertrack

// Frame is one call-site entry extracted from stack text.
type Frame struct {
	// FunctionName is empty when the stack line carries no function token.
	FunctionName string `json:"functionName"`

	// Location is the raw source location, e.g. "http://x.com/a.js:10:5".
	Location string `json:"errLocation"`
}

// LineAddress is the best-guess position derived from the first URI-bearing
// stack line. Fields are strings because browsers sometimes report
// non-numeric placeholders.
type LineAddress struct {
	Line   string
	Column string
	Script string
}

// Record is the normalized structure reported to the collector.
// Unresolved fields are empty strings; Stack is never nil.
type Record struct {
	Message string
	Name    string

	// Stack holds the parsed frames in the order the runtime emitted them.
	Stack []Frame

	Line   string
	Column string
	Script string

	// SerializedOriginal is the canonical serialization of the error object
	// (or of the bare message) the record was built from.
	SerializedOriginal string
}
