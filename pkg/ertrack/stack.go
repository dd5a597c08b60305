// stack.go parses free-text browser stack traces into frames.

package ertrack

import (
	"regexp"
	"strings"
)

// uriPattern recognizes a stack line that references a script URI. CJK
// characters terminate the URI because some engines localize the text
// around it.
var uriPattern = regexp.MustCompile(`(?i)(?:https?|ftp|file):[^'"\s\x{4E00}-\x{9FA5}]+`)

// frameTokenReplacer strips call parentheses (Chrome, IE) and turns the
// Firefox/Safari "name@location" separator into a space.
var frameTokenReplacer = strings.NewReplacer("(", "", ")", "", "@", " ")

// StackInfo is the result of parsing stack text.
type StackInfo struct {
	// Frames holds one entry per URI-bearing line, in source order.
	// Lines without a URI are dropped.
	Frames []Frame

	// Address is derived from the first frame only; nil when no line
	// carried a URI.
	Address *LineAddress
}

// ParseStack extracts frames from raw stack text. Malformed input yields an
// empty Frames slice and a nil Address.
//
// Supported line shapes include:
//
//	at foo (http://x.com/a.js:10:5)     Chrome, Edge, IE10+
//	foo@http://x.com/a.js:10:5          Firefox, Safari
//	http://x.com/a.js:10:5              anonymous frames
func ParseStack(raw string) StackInfo {
	info := StackInfo{Frames: []Frame{}}
	if raw == "" {
		return info
	}

	for _, line := range strings.Split(raw, "\n") {
		if !uriPattern.MatchString(line) {
			continue
		}
		frame := parseFrame(line)
		info.Frames = append(info.Frames, frame)
		if info.Address == nil {
			addr := parseLocation(frame.Location)
			info.Address = &addr
		}
	}
	return info
}

// parseFrame splits one stack line into function name and location.
func parseFrame(line string) Frame {
	text := strings.TrimSpace(line)
	text = strings.TrimPrefix(text, "at ")
	text = frameTokenReplacer.Replace(text)

	tokens := strings.Split(text, " ")
	switch len(tokens) {
	case 1:
		return Frame{Location: tokens[0]}
	case 2:
		return Frame{FunctionName: tokens[0], Location: tokens[1]}
	default:
		// "at new Foo (http://...)" and similar: everything after the first
		// token is the location.
		return Frame{FunctionName: tokens[0], Location: strings.Join(tokens[1:], "")}
	}
}

// parseLocation splits "script:line:column". The last two segments are
// always line and column; the script keeps any colons of its own (scheme,
// port). Short locations leave the missing leading parts empty, so
// "http://x.com/a.js" yields line "http" and column "//x.com/a.js".
func parseLocation(location string) LineAddress {
	parts := strings.Split(location, ":")
	n := len(parts)
	var addr LineAddress
	addr.Column = parts[n-1]
	if n >= 2 {
		addr.Line = parts[n-2]
	}
	if n >= 3 {
		addr.Script = strings.Join(parts[:n-2], ":")
	}
	return addr
}
