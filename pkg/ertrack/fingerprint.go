// fingerprint.go generates stable hashes for grouping similar browser errors.

package ertrack

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// fingerprintFrames is how many leading frames contribute to a fingerprint.
const fingerprintFrames = 3

// Fingerprint generates a hash for grouping similar records.
// The fingerprint is based on:
//   - error name and script (query string and fragment removed)
//   - first 3 stack frames (function name and script, without line/column)
//
// It ignores the message, line and column numbers, which vary between
// builds and between occurrences of the same fault.
func Fingerprint(rec Record) string {
	parts := []string{rec.Name, stripQuery(rec.Script)}

	for i, frame := range rec.Stack {
		if i >= fingerprintFrames {
			break
		}
		name := frame.FunctionName
		if name == "" {
			name = "<anonymous>"
		}
		parts = append(parts, name+"@"+stripQuery(parseLocation(frame.Location).Script))
	}

	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))

	// Return hex-encoded first 16 bytes (32 hex chars)
	return hex.EncodeToString(hash[:16])
}

// stripQuery removes cache-busting query strings and fragments from a URL.
func stripQuery(u string) string {
	if idx := strings.IndexAny(u, "?#"); idx >= 0 {
		return u[:idx]
	}
	return u
}
