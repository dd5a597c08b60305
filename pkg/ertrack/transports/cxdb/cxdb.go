// Package cxdb provides a transport that persists reports to cxdb as
// SystemMessage items instead of sending them over HTTP.
package cxdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	cxdbclient "github.com/strongdm/ai-cxdb/clients/go"
	cxdtypes "github.com/strongdm/ai-cxdb/clients/go/types"
	"github.com/strongdm/ertrack/pkg/ertrack"
)

// CXDBClient is the minimal interface for cxdb client operations.
// The real *cxdb.Client satisfies this interface.
type CXDBClient interface {
	CreateContext(ctx context.Context, baseTurnID uint64) (*cxdbclient.ContextHead, error)
	AppendTurn(ctx context.Context, req *cxdbclient.AppendRequest) (*cxdbclient.AppendResult, error)
}

// CXDBOption configures the cxdb transport.
type CXDBOption func(*cxdbConfig)

type cxdbConfig struct {
	orphanLabels []string
	clientTag    string
	timeout      time.Duration
}

// WithOrphanLabels sets labels for contexts created for unlinked reports.
func WithOrphanLabels(labels []string) CXDBOption {
	return func(c *cxdbConfig) {
		c.orphanLabels = labels
	}
}

// WithClientTag sets the client tag for orphan contexts.
func WithClientTag(tag string) CXDBOption {
	return func(c *cxdbConfig) {
		c.clientTag = tag
	}
}

// WithTimeout bounds each write (default: 10s).
func WithTimeout(d time.Duration) CXDBOption {
	return func(c *cxdbConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// cxdbTransport writes reports to cxdb on background goroutines.
type cxdbTransport struct {
	client       CXDBClient
	orphanLabels []string
	clientTag    string
	timeout      time.Duration

	closeMu   sync.Mutex
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a transport that writes to cxdb. Reports are appended to the
// context attached with ertrack.WithContextID, or to a fresh orphan context.
func New(client CXDBClient, opts ...CXDBOption) ertrack.Transport {
	cfg := &cxdbConfig{
		orphanLabels: []string{"browser-error", "unlinked"},
		clientTag:    "ertrack",
		timeout:      10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &cxdbTransport{
		client:       client,
		orphanLabels: cfg.orphanLabels,
		clientTag:    cfg.clientTag,
		timeout:      cfg.timeout,
	}
}

// Send persists the report asynchronously.
func (t *cxdbTransport) Send(ctx context.Context, target string, done ertrack.DoneFunc) {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		done.Resolve(ertrack.Outcome{Status: ertrack.StatusAborted, Err: ertrack.ErrTransportClosed})
		return
	}
	t.wg.Add(1)
	t.closeMu.Unlock()

	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, t.timeout)
		err := t.write(ctx, target)
		cancel()

		if err != nil {
			done.Resolve(ertrack.Outcome{Status: ertrack.StatusFailure, Err: err})
			return
		}
		done.Resolve(ertrack.Outcome{Status: ertrack.StatusSuccess})
	}()
}

// write persists one report URL.
func (t *cxdbTransport) write(ctx context.Context, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse report: %w", err)
	}
	q := u.Query()

	contextID, linked := ertrack.ContextIDFromContext(ctx)
	if !linked {
		head, err := t.client.CreateContext(ctx, 0)
		if err != nil {
			return fmt.Errorf("create orphan context: %w", err)
		}
		contextID = head.ContextID
	}

	itemID := uuid.NewString()
	item := t.buildConversationItem(itemID, q, !linked)

	payload, err := cxdbclient.EncodeMsgpack(item)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req := &cxdbclient.AppendRequest{
		ContextID:      contextID,
		ParentTurnID:   0,
		TypeID:         cxdtypes.TypeIDConversationItem,
		TypeVersion:    cxdtypes.TypeVersionConversationItem,
		Payload:        payload,
		IdempotencyKey: itemID,
	}

	if _, err := t.client.AppendTurn(ctx, req); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

// cutAtRune returns at most n bytes of s without splitting a rune.
func cutAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// buildConversationItem creates a canonical ConversationItem from a report.
func (t *cxdbTransport) buildConversationItem(id string, q url.Values, isOrphan bool) *cxdtypes.ConversationItem {
	// Build title: "name: truncated_message"
	title := q.Get("name")
	if title == "" {
		title = "Error"
	}
	if msg := q.Get("message"); msg != "" {
		const maxMsgLen = 80
		if len(msg) > maxMsgLen {
			msg = cutAtRune(msg, maxMsgLen) + "..."
		}
		title = title + ": " + msg
	}
	if len(title) > 100 {
		title = cutAtRune(title, 97) + "..."
	}

	timestamp := time.Now().UnixMilli()
	if ms, err := strconv.ParseInt(q.Get("date"), 10, 64); err == nil {
		timestamp = ms
	}

	item := &cxdtypes.ConversationItem{
		ItemType:  cxdtypes.ItemTypeSystem,
		Status:    cxdtypes.ItemStatusComplete,
		Timestamp: timestamp,
		ID:        id,
		System: &cxdtypes.SystemMessage{
			Kind:    cxdtypes.SystemKindError,
			Title:   title,
			Content: buildReportDetails(q),
		},
	}

	// cxdb expects context metadata on the first turn of a new context.
	if isOrphan {
		item.ContextMetadata = &cxdtypes.ContextMetadata{
			Labels:    t.orphanLabels,
			ClientTag: t.clientTag,
		}
	}

	return item
}

// detailFields are copied verbatim from the report into the details JSON.
var detailFields = []string{
	"browser", "os", "ua", "location",
	"message", "name", "line", "script", "column",
}

// buildReportDetails encodes the report fields as JSON for SystemMessage.Content.
// The token is deliberately left out.
func buildReportDetails(q url.Values) string {
	details := map[string]any{}
	for _, key := range detailFields {
		if v := q.Get(key); v != "" {
			details[key] = v
		}
	}
	if stack := q.Get("stack"); gjson.Valid(stack) {
		details["stack"] = json.RawMessage(stack)
	}
	if ms, err := strconv.ParseInt(q.Get("date"), 10, 64); err == nil {
		details["date"] = ms
	}

	jsonBytes, err := json.Marshal(details)
	if err != nil {
		// Fallback to simple error message
		return fmt.Sprintf(`{"error":"failed to encode details: %s"}`, err)
	}
	return string(jsonBytes)
}

// Close waits for pending writes. The cxdb client itself is owned by the caller.
func (t *cxdbTransport) Close() error {
	t.closeOnce.Do(func() {
		t.closeMu.Lock()
		t.closed = true
		t.closeMu.Unlock()
		t.wg.Wait()
	})
	return nil
}
