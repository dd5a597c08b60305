// serialize.go implements the canonical value encoder used for report fields.
// It does not depend on encoding/json, whose output differs (HTML escaping,
// errors on NaN) from the canonical form collectors expect.

package ertrack

import (
	"bytes"
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Undefined stands in for a JavaScript undefined value. It serializes as the
// bare text undefined at top level and is skipped inside sequences and
// mappings.
type Undefined struct{}

// Member is one key/value entry of an Object.
type Member struct {
	Key   string
	Value any
}

// Object is a string-keyed mapping that keeps its insertion order.
type Object []Member

// Valuer is implemented by types that serialize as a different value.
type Valuer interface {
	SerialValue() any
}

// maxSerializeDepth bounds recursion so self-referencing pointer graphs
// still terminate. Anything nested deeper encodes as null.
const maxSerializeDepth = 64

const hexDigits = "0123456789abcdef"

// Serialize encodes v into canonical text. It never fails: values that have
// no canonical form encode as null, and undefined-like values (Undefined,
// functions, channels) encode as the bare text undefined at top level.
func Serialize(v any) string {
	e := &encoder{}
	if !e.encode(v, 0) {
		return "undefined"
	}
	return e.buf.String()
}

type encoder struct {
	buf bytes.Buffer
}

// encode writes v and reports whether anything was written. A false result
// means v is undefined-like and must be skipped by the enclosing container.
func (e *encoder) encode(v any, depth int) bool {
	if depth > maxSerializeDepth {
		e.buf.WriteString("null")
		return true
	}

	if obj, ok := v.(Object); ok {
		e.encodeObject(obj, depth)
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Invalid:
		e.buf.WriteString("null")
		return true
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() {
			return e.encodeNil(rv.Kind())
		}
	}

	switch x := v.(type) {
	case Undefined:
		return false
	case Valuer:
		return e.encode(x.SerialValue(), depth+1)
	case string:
		e.encodeString(x)
		return true
	case bool:
		e.buf.WriteString(strconv.FormatBool(x))
		return true
	case float64:
		e.buf.WriteString(formatNumber(x, 64))
		return true
	case float32:
		e.buf.WriteString(formatNumber(float64(x), 32))
		return true
	case int:
		e.buf.WriteString(strconv.Itoa(x))
		return true
	case error:
		e.encodeString(x.Error())
		return true
	case encoding.TextMarshaler:
		text, err := x.MarshalText()
		if err != nil {
			e.buf.WriteString("null")
			return true
		}
		e.encodeString(string(text))
		return true
	}

	return e.encodeReflect(rv, depth)
}

// encodeNil renders nil containers as empty ones and nil references as null.
func (e *encoder) encodeNil(kind reflect.Kind) bool {
	switch kind {
	case reflect.Slice:
		e.buf.WriteString("[]")
	case reflect.Map:
		e.buf.WriteString("{}")
	default:
		e.buf.WriteString("null")
	}
	return true
}

func (e *encoder) encodeReflect(rv reflect.Value, depth int) bool {
	switch rv.Kind() {
	case reflect.Bool:
		e.buf.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		e.buf.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		e.buf.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		e.buf.WriteString(formatNumber(rv.Float(), 32))
	case reflect.Float64:
		e.buf.WriteString(formatNumber(rv.Float(), 64))
	case reflect.String:
		e.encodeString(rv.String())
	case reflect.Slice, reflect.Array:
		e.encodeSequence(rv, depth)
	case reflect.Map:
		e.encodeMap(rv, depth)
	case reflect.Struct:
		e.encodeStruct(rv, depth)
	case reflect.Pointer, reflect.Interface:
		return e.encode(rv.Elem().Interface(), depth+1)
	default:
		// complex numbers and anything else without a canonical form
		e.buf.WriteString("null")
	}
	return true
}

func (e *encoder) encodeSequence(rv reflect.Value, depth int) {
	e.buf.WriteByte('[')
	emitted := false
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		if !item.CanInterface() {
			continue
		}
		mark := e.buf.Len()
		if emitted {
			e.buf.WriteByte(',')
		}
		if !e.encode(item.Interface(), depth+1) {
			e.buf.Truncate(mark)
			continue
		}
		emitted = true
	}
	e.buf.WriteByte(']')
}

func (e *encoder) encodeObject(obj Object, depth int) {
	e.buf.WriteByte('{')
	emitted := false
	for _, m := range obj {
		emitted = e.encodeMember(m.Key, m.Value, emitted, depth)
	}
	e.buf.WriteByte('}')
}

// encodeMap iterates keys in sorted order so output is deterministic.
func (e *encoder) encodeMap(rv reflect.Value, depth int) {
	members := make(Object, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		key := ""
		if k.Kind() == reflect.String {
			key = k.String()
		} else {
			key = fmt.Sprint(k.Interface())
		}
		members = append(members, Member{Key: key, Value: iter.Value().Interface()})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Key < members[j].Key })
	e.encodeObject(members, depth)
}

func (e *encoder) encodeStruct(rv reflect.Value, depth int) {
	t := rv.Type()
	members := make(Object, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			if tag, _, _ = strings.Cut(tag, ","); tag != "" {
				name = tag
			}
		}
		members = append(members, Member{Key: name, Value: rv.Field(i).Interface()})
	}
	e.encodeObject(members, depth)
}

// encodeMember writes one "key":value pair, rolling back the separator and
// key when the value is skipped. It returns whether any member has been
// emitted so far.
func (e *encoder) encodeMember(key string, value any, emitted bool, depth int) bool {
	mark := e.buf.Len()
	if emitted {
		e.buf.WriteByte(',')
	}
	e.encodeString(key)
	e.buf.WriteByte(':')
	if !e.encode(value, depth+1) {
		e.buf.Truncate(mark)
		return emitted
	}
	return true
}

// encodeString quotes s, escaping the double quote, backslash and every
// control character below 0x20.
func (e *encoder) encodeString(s string) {
	e.buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		e.buf.WriteString(s[start:i])
		switch c {
		case '\b':
			e.buf.WriteString(`\b`)
		case '\t':
			e.buf.WriteString(`\t`)
		case '\n':
			e.buf.WriteString(`\n`)
		case '\f':
			e.buf.WriteString(`\f`)
		case '\r':
			e.buf.WriteString(`\r`)
		case '"':
			e.buf.WriteString(`\"`)
		case '\\':
			e.buf.WriteString(`\\`)
		default:
			e.buf.WriteString(`\u00`)
			e.buf.WriteByte(hexDigits[c>>4])
			e.buf.WriteByte(hexDigits[c&0xF])
		}
		start = i + 1
	}
	e.buf.WriteString(s[start:])
	e.buf.WriteByte('"')
}

// formatNumber renders f the way JavaScript converts a Number to a string:
// fixed notation in [1e-6, 1e21), exponent notation outside it, and null
// for NaN and the infinities.
func formatNumber(f float64, bits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	if f == 0 {
		return "0"
	}
	format := byte('f')
	if abs := math.Abs(f); abs < 1e-6 || abs >= 1e21 {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if format == 'e' {
		// 1e-07 -> 1e-7
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
	}
	return s
}
