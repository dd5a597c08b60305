// Package ingest exposes the capture entry point over HTTP. Browsers POST
// the arguments their window.onerror handler received; the handler turns
// them into a Signal and launches it on a Tracker.
//
// Accepted body (all fields optional):
//
//	{
//	  "message":  "Uncaught TypeError: x is undefined" | {error object},
//	  "source":   "http://example.com/app.js",
//	  "lineno":   10,
//	  "colno":    5,
//	  "error":    {"message": "...", "name": "TypeError", "stack": "..."},
//	  "location": "http://example.com/page",
//	  "platform": "MacIntel"
//	}
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/strongdm/ertrack/pkg/ertrack"
)

const defaultMaxBodyBytes = 64 << 10

// ErrMalformedPayload is returned by DecodeSignal for bodies that are not a
// JSON object.
var ErrMalformedPayload = errors.New("ingest: payload is not a JSON object")

// Launcher is the part of *ertrack.Tracker the handler needs.
type Launcher interface {
	Launch(ctx context.Context, sig ertrack.Signal, env ertrack.Environment)
}

// HandlerOption configures the handler.
type HandlerOption func(*Handler)

// WithMaxBodyBytes limits the accepted body size (default: 64 KiB).
func WithMaxBodyBytes(n int64) HandlerOption {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Handler accepts error reports over HTTP.
type Handler struct {
	launcher     Launcher
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewHandler creates a handler that launches every accepted report.
func NewHandler(launcher Launcher, opts ...HandlerOption) *Handler {
	h := &Handler{
		launcher:     launcher,
		maxBodyBytes: defaultMaxBodyBytes,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP responds 204 once the report has been handed off; delivery to
// the collector happens after the response.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.reject(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(w, r, http.StatusRequestEntityTooLarge, err)
			return
		}
		h.reject(w, r, http.StatusBadRequest, err)
		return
	}

	sig, err := DecodeSignal(body)
	if err != nil {
		h.reject(w, r, http.StatusBadRequest, err)
		return
	}

	env := EnvironmentFromRequest(r, gjson.ParseBytes(body))
	h.launcher.Launch(r.Context(), sig, env)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.logger.Warn("report rejected", "remote", r.RemoteAddr, "status", status, "error", err)
	http.Error(w, http.StatusText(status), status)
}

// DecodeSignal builds the Signal variant a payload represents:
//
//   - "message" is an object: NativeError from that object
//   - "error" is an object: ExplicitFields carrying it
//   - any of "source", "lineno", "colno" present: ExplicitFields without error
//   - otherwise: MessageOnly
func DecodeSignal(body []byte) (ertrack.Signal, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedPayload
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrMalformedPayload
	}

	message := root.Get("message")
	if message.IsObject() {
		return ertrack.NativeError{Err: errorObjectFrom(message)}, nil
	}

	source, line, column := root.Get("source"), root.Get("lineno"), root.Get("colno")
	errValue := root.Get("error")

	if !errValue.IsObject() && !source.Exists() && !line.Exists() && !column.Exists() {
		return ertrack.MessageOnly{Message: text(message)}, nil
	}

	fields := ertrack.ExplicitFields{
		Message: text(message),
		Script:  text(source),
		Line:    text(line),
		Column:  text(column),
	}
	if errValue.IsObject() {
		obj := errorObjectFrom(errValue)
		fields.Err = &obj
	}
	return fields, nil
}

// errorObjectFrom maps the known error properties and keeps the rest in Extra.
func errorObjectFrom(v gjson.Result) ertrack.ErrorObject {
	var obj ertrack.ErrorObject
	v.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "message":
			obj.Message = text(value)
		case "name":
			obj.Name = text(value)
		case "stack":
			obj.Stack = text(value)
		case "line":
			obj.Line = text(value)
		case "column":
			obj.Column = text(value)
		case "lineNumber":
			obj.LineNumber = text(value)
		case "columnNumber":
			obj.ColumnNumber = text(value)
		case "script":
			obj.Script = text(value)
		case "fileName":
			obj.FileName = text(value)
		case "sourceURL":
			obj.SourceURL = text(value)
		default:
			obj.Extra = append(obj.Extra, ertrack.Member{Key: key.String(), Value: value.Value()})
		}
		return true
	})
	return obj
}

// text renders a JSON value as a field string. Numbers keep their source
// text; null and missing values are empty.
func text(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}

// EnvironmentFromRequest derives the report environment from the request
// headers, preferring values the page supplied in the payload.
func EnvironmentFromRequest(r *http.Request, payload gjson.Result) ertrack.Environment {
	platform := payload.Get("platform").String()
	if platform == "" {
		platform = strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`)
	}

	location := payload.Get("location").String()
	if location == "" {
		location = r.Referer()
	}

	return ertrack.NewEnvironment(r.UserAgent(), platform, location)
}
