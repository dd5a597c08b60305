// reporter.go builds report URLs from records and hands them to a Transport.

package ertrack

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// reportFields is the fixed, ordered set of percent-encoded fields every
// report starts with. The stack and date fields follow them.
var reportFields = []string{
	"token", "browser", "os", "ua",
	"location", "message", "name",
	"line", "script", "column",
}

// ReporterOption configures a Reporter (and the Tracker built on it).
type ReporterOption func(*reporterConfig)

type reporterConfig struct {
	transport Transport
	logger    *slog.Logger
	scrubber  *Scrubber
	now       func() time.Time
	onOutcome func(Outcome)
}

// WithTransport sets the transport reports are delivered through.
func WithTransport(t Transport) ReporterOption {
	return func(c *reporterConfig) {
		c.transport = t
	}
}

// WithLogger sets the logger used for dispatch and outcome messages.
func WithLogger(logger *slog.Logger) ReporterOption {
	return func(c *reporterConfig) {
		c.logger = logger
	}
}

// WithScrubber enables scrubbing with a custom configuration.
func WithScrubber(cfg ScrubberConfig) ReporterOption {
	return func(c *reporterConfig) {
		c.scrubber = NewScrubber(cfg)
	}
}

// WithDefaultScrubbing enables scrubbing with production-safe defaults.
func WithDefaultScrubbing() ReporterOption {
	return func(c *reporterConfig) {
		c.scrubber = NewScrubber(DefaultScrubberConfig())
	}
}

// WithClock overrides the clock used for the date field.
func WithClock(now func() time.Time) ReporterOption {
	return func(c *reporterConfig) {
		c.now = now
	}
}

// WithOutcomeHook registers a callback that observes every delivery outcome.
// It runs on the transport's goroutine and must not block.
func WithOutcomeHook(fn func(Outcome)) ReporterOption {
	return func(c *reporterConfig) {
		c.onOutcome = fn
	}
}

// Reporter turns records into report URLs.
type Reporter struct {
	cfg       Config
	transport Transport
	logger    *slog.Logger
	scrubber  *Scrubber
	now       func() time.Time
	onOutcome func(Outcome)
}

// NewReporter creates a Reporter for the given collector configuration.
// Without WithTransport, reports are discarded.
func NewReporter(cfg Config, opts ...ReporterOption) *Reporter {
	rc := &reporterConfig{}
	for _, opt := range opts {
		opt(rc)
	}

	if rc.transport == nil {
		rc.transport = &noopTransportInternal{}
	}
	if rc.logger == nil {
		rc.logger = slog.New(slog.DiscardHandler)
	}
	if rc.now == nil {
		rc.now = time.Now
	}

	return &Reporter{
		cfg:       cfg,
		transport: rc.transport,
		logger:    rc.logger,
		scrubber:  rc.scrubber,
		now:       rc.now,
		onOutcome: rc.onOutcome,
	}
}

// Report sends rec with the given environment. It returns immediately; the
// delivery outcome is logged and passed to the outcome hook, never returned.
// Report does nothing when the token or URL is missing.
func (r *Reporter) Report(ctx context.Context, rec Record, env Environment) {
	if !r.cfg.Enabled() {
		r.logger.Debug("report skipped: collector not configured",
			"has_token", r.cfg.Token != "",
			"has_url", r.cfg.URL != "",
		)
		return
	}

	if r.scrubber != nil {
		rec = r.scrubber.ScrubRecord(rec)
		env.Location = r.scrubber.ScrubURL(env.Location)
	}

	target := r.buildURL(rec, env)
	reportID := uuid.NewString()
	if r.logger.Enabled(ctx, slog.LevelDebug) {
		r.logger.Debug("report dispatched",
			"report_id", reportID,
			"fingerprint", Fingerprint(rec),
			"name", rec.Name,
			"script", rec.Script,
		)
	}

	// The caller's cancellation must not abort a fire-and-forget delivery;
	// transports apply their own deadlines.
	r.transport.Send(context.WithoutCancel(ctx), target, func(o Outcome) {
		if o.Status == StatusSuccess {
			r.logger.Debug("report delivered", "report_id", reportID)
		} else {
			r.logger.Warn("report not delivered",
				"report_id", reportID,
				"status", o.Status.String(),
				"error", o.Err,
			)
		}
		if r.onOutcome != nil {
			r.onOutcome(o)
		}
	})
}

// Close closes the underlying transport.
func (r *Reporter) Close() error {
	return r.transport.Close()
}

// buildURL joins the endpoint and the query string, using '&' when the
// endpoint already has a query.
func (r *Reporter) buildURL(rec Record, env Environment) string {
	sep := "?"
	if strings.Contains(r.cfg.URL, "?") {
		sep = "&"
	}
	return r.cfg.URL + sep + r.buildQuery(rec, env)
}

func (r *Reporter) buildQuery(rec Record, env Environment) string {
	values := map[string]string{
		"token":    r.cfg.Token,
		"browser":  env.Browser,
		"os":       env.OS,
		"ua":       env.UserAgent,
		"location": env.Location,
		"message":  rec.Message,
		"name":     rec.Name,
		"line":     rec.Line,
		"script":   rec.Script,
		"column":   rec.Column,
	}

	stack := rec.Stack
	if stack == nil {
		stack = []Frame{}
	}

	params := make([]string, 0, len(reportFields)+2)
	for _, key := range reportFields {
		params = append(params, key+"="+EncodeURIComponent(values[key]))
	}
	params = append(params, "stack="+EncodeURIComponent(Serialize(stack)))
	params = append(params, "date="+strconv.FormatInt(r.now().UnixMilli(), 10))
	return strings.Join(params, "&")
}

const upperHex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s like the JavaScript function of the
// same name: every byte except A-Z a-z 0-9 - _ . ! ~ * ' ( ) is escaped.
// net/url has no equivalent (QueryEscape turns spaces into '+', PathEscape
// leaves reserved characters such as '&' and '=' alone).
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0xF])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
