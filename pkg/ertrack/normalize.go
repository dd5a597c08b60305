// normalize.go reconciles the different error signal shapes into one Record.

package ertrack

// Normalize converts any Signal into a Record.
//
//   - NativeError: full normalization with no explicit location
//   - ExplicitFields with Err: full normalization using both sources
//   - ExplicitFields without Err, MessageOnly: the record is built directly
//     from the given fields; there is no stack to parse
//
// Normalize never panics. An internal fault degrades to a record carrying
// only the message.
func Normalize(sig Signal) (rec Record) {
	defer func() {
		if r := recover(); r != nil {
			rec = Record{Message: signalMessage(sig), Stack: []Frame{}}
		}
	}()

	switch s := sig.(type) {
	case NativeError:
		return NormalizeError("", "", "", "", &s.Err)
	case *NativeError:
		if s == nil {
			return Record{Stack: []Frame{}}
		}
		return NormalizeError("", "", "", "", &s.Err)
	case ExplicitFields:
		return normalizeFields(s)
	case *ExplicitFields:
		if s == nil {
			return Record{Stack: []Frame{}}
		}
		return normalizeFields(*s)
	case MessageOnly:
		return directRecord(s.Message, "", "", "")
	case *MessageOnly:
		if s == nil {
			return Record{Stack: []Frame{}}
		}
		return directRecord(s.Message, "", "", "")
	default:
		return Record{Stack: []Frame{}}
	}
}

func normalizeFields(s ExplicitFields) Record {
	if s.Err == nil {
		return directRecord(s.Message, s.Script, s.Line, s.Column)
	}
	return NormalizeError(s.Message, s.Script, s.Line, s.Column, s.Err)
}

// NormalizeError builds a Record from explicit arguments and an error
// object. Each field takes the first non-empty value of its resolution
// order, ending with the address parsed from the stack:
//
//	message: message, obj.Message
//	line:    line, obj.Line, obj.LineNumber, stack
//	column:  column, obj.Column, obj.ColumnNumber, stack
//	script:  script, obj.Script, obj.FileName, obj.SourceURL, stack
//
// A nil obj is treated as an empty error object.
func NormalizeError(message, script, line, column string, obj *ErrorObject) Record {
	if obj == nil {
		obj = &ErrorObject{}
	}

	rec := Record{
		Message: firstNonEmpty(message, obj.Message),
		Name:    obj.Name,
		Stack:   []Frame{},
	}

	var addr LineAddress
	if obj.Stack != "" {
		info := ParseStack(obj.Stack)
		rec.Stack = info.Frames
		if info.Address != nil {
			addr = *info.Address
		}
	}

	rec.Line = firstNonEmpty(line, obj.Line, obj.LineNumber, addr.Line)
	rec.Column = firstNonEmpty(column, obj.Column, obj.ColumnNumber, addr.Column)
	rec.Script = firstNonEmpty(script, obj.Script, obj.FileName, obj.SourceURL, addr.Script)
	rec.SerializedOriginal = Serialize(obj)
	return rec
}

// directRecord builds a record without an error object.
func directRecord(message, script, line, column string) Record {
	return Record{
		Message:            message,
		Stack:              []Frame{},
		Line:               line,
		Column:             column,
		Script:             script,
		SerializedOriginal: Serialize(message),
	}
}

func signalMessage(sig Signal) string {
	switch s := sig.(type) {
	case NativeError:
		return s.Err.Message
	case ExplicitFields:
		if s.Message == "" && s.Err != nil {
			return s.Err.Message
		}
		return s.Message
	case MessageOnly:
		return s.Message
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
