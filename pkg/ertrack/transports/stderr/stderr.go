// Package stderr provides a transport that prints reports to stderr in
// human-readable format instead of sending them. Useful for development.
package stderr

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/gjson"

	"github.com/strongdm/ertrack/pkg/ertrack"
)

// StderrOption configures the stderr transport.
type StderrOption func(*stderrConfig)

type stderrConfig struct {
	verbose bool
	color   bool
	out     io.Writer
}

// WithVerbose enables full report details including stack frames.
func WithVerbose() StderrOption {
	return func(c *stderrConfig) {
		c.verbose = true
	}
}

// WithColor styles the output when the writer is a color terminal.
func WithColor() StderrOption {
	return func(c *stderrConfig) {
		c.color = true
	}
}

// WithWriter redirects output (default: os.Stderr).
func WithWriter(w io.Writer) StderrOption {
	return func(c *stderrConfig) {
		if w != nil {
			c.out = w
		}
	}
}

// stderrTransport writes reports in human-readable format.
type stderrTransport struct {
	verbose bool
	pal     palette

	mu  sync.Mutex
	out io.Writer
}

// palette renders the parts of a report. Each field has the signature of
// lipgloss.Style.Render.
type palette struct {
	header func(strs ...string) string
	label  func(strs ...string) string
	frame  func(strs ...string) string
}

func plainPalette() palette {
	plain := func(strs ...string) string { return strings.Join(strs, " ") }
	return palette{header: plain, label: plain, frame: plain}
}

// colorPalette detects the color profile of w; a writer that is not a
// terminal gets unstyled text.
func colorPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	return palette{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Render,
		label:  r.NewStyle().Foreground(lipgloss.Color("245")).Render,
		frame:  r.NewStyle().Foreground(lipgloss.Color("241")).Render,
	}
}

// New creates a transport that writes to stderr.
func New(opts ...StderrOption) ertrack.Transport {
	cfg := &stderrConfig{out: os.Stderr}
	for _, opt := range opts {
		opt(cfg)
	}
	pal := plainPalette()
	if cfg.color {
		pal = colorPalette(cfg.out)
	}
	return &stderrTransport{
		verbose: cfg.verbose,
		pal:     pal,
		out:     cfg.out,
	}
}

// Send decodes the report URL and prints it. A URL that cannot be parsed
// resolves with StatusFailure.
func (t *stderrTransport) Send(ctx context.Context, target string, done ertrack.DoneFunc) {
	u, err := url.Parse(target)
	if err != nil {
		done.Resolve(ertrack.Outcome{Status: ertrack.StatusFailure, Err: fmt.Errorf("stderr: %w", err)})
		return
	}
	q := u.Query()

	t.mu.Lock()
	t.write(q)
	t.mu.Unlock()

	done.Resolve(ertrack.Outcome{Status: ertrack.StatusSuccess})
}

// write renders one report.
// Format: [ERTRACK] <timestamp> <name> at <script>:<line>:<column> (<browser>, <os>)
func (t *stderrTransport) write(q url.Values) {
	timestamp := "-"
	if ms, err := strconv.ParseInt(q.Get("date"), 10, 64); err == nil {
		timestamp = time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05Z07:00")
	}

	name := q.Get("name")
	if name == "" {
		name = "Error"
	}

	parts := []string{fmt.Sprintf("[ERTRACK] %s %s", timestamp, name)}
	if script := q.Get("script"); script != "" {
		parts = append(parts, fmt.Sprintf("at %s:%s:%s", script, q.Get("line"), q.Get("column")))
	}
	if browser := q.Get("browser"); browser != "" {
		parts = append(parts, fmt.Sprintf("(%s, %s)", browser, q.Get("os")))
	}
	fmt.Fprintln(t.out, t.pal.header(strings.Join(parts, " ")))

	if message := q.Get("message"); message != "" {
		fmt.Fprintf(t.out, "        %s %s\n", t.pal.label("Message:"), message)
	}
	if location := q.Get("location"); location != "" {
		fmt.Fprintf(t.out, "        %s %s\n", t.pal.label("Page:"), location)
	}

	if !t.verbose {
		return
	}
	if ua := q.Get("ua"); ua != "" {
		fmt.Fprintf(t.out, "        %s %s\n", t.pal.label("User agent:"), ua)
	}

	stack := gjson.Parse(q.Get("stack"))
	if !stack.IsArray() || len(stack.Array()) == 0 {
		return
	}
	fmt.Fprintf(t.out, "        %s\n", t.pal.label("Stack trace:"))
	stack.ForEach(func(_, frame gjson.Result) bool {
		fn := frame.Get("functionName").String()
		if fn == "" {
			fn = "<anonymous>"
		}
		fmt.Fprintf(t.out, "          %s\n", t.pal.frame(fmt.Sprintf("at %s (%s)", fn, frame.Get("errLocation").String())))
		return true
	})
}

// Close is a no-op for the stderr transport.
func (t *stderrTransport) Close() error {
	return nil
}
