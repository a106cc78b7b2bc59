// internal/pkg/logger/elk.go
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

const defaultIndexPattern = "phonedesk-logs"

// ELKConfig configures the Elasticsearch log output. The json tags match the
// shape of OutputConfig.Options so the output can be declared in config.
type ELKConfig struct {
	ElasticsearchURL string        `json:"elasticsearch_url"`
	IndexPattern     string        `json:"index_pattern"`
	BatchSize        int           `json:"batch_size"`
	FlushInterval    time.Duration `json:"flush_interval"`
	Username         string        `json:"username"`
	Password         string        `json:"password"`
	EnableBatching   bool          `json:"enable_batching"`
}

// ELKHandler ships records to Elasticsearch via the bulk API, batched so a
// burst of request logs costs one HTTP round-trip. Records pass through the
// base handler as well, so the local stream stays complete even when the
// cluster is unreachable.
type ELKHandler struct {
	client *http.Client
	config ELKConfig
	base   slog.Handler

	mu     sync.Mutex
	buffer []logDocument
}

// logDocument is the shape indexed per record. Request-scoped fields are
// pulled from the context so Kibana queries can filter on them directly
// instead of digging through the attrs map.
type logDocument struct {
	Timestamp   time.Time      `json:"@timestamp"`
	Severity    string         `json:"severity"`
	Message     string         `json:"message"`
	Service     string         `json:"service"`
	Environment string         `json:"environment,omitempty"`
	Version     string         `json:"version,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	TraceID     string         `json:"trace_id,omitempty"`
	UserID      string         `json:"user_id,omitempty"`
	ClientIP    string         `json:"client_ip,omitempty"`
	Method      string         `json:"method,omitempty"`
	Path        string         `json:"path,omitempty"`
	StatusCode  int            `json:"status_code,omitempty"`
	DurationMS  float64        `json:"duration_ms,omitempty"`
	Attrs       map[string]any `json:"attrs,omitempty"`
}

// NewELKHandler creates an Elasticsearch handler on top of a base handler.
func NewELKHandler(cfg ELKConfig, base slog.Handler) *ELKHandler {
	if cfg.IndexPattern == "" {
		cfg.IndexPattern = defaultIndexPattern
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	h := &ELKHandler{
		client: &http.Client{Timeout: 10 * time.Second},
		config: cfg,
		base:   base,
		buffer: make([]logDocument, 0, cfg.BatchSize),
	}

	if cfg.EnableBatching {
		go h.flushLoop()
	}

	return h
}

func (h *ELKHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *ELKHandler) Handle(ctx context.Context, record slog.Record) error {
	if err := h.base.Handle(ctx, record); err != nil {
		return err
	}

	doc := h.buildDocument(ctx, record)

	if h.config.EnableBatching {
		h.mu.Lock()
		h.buffer = append(h.buffer, doc)
		full := len(h.buffer) >= h.config.BatchSize
		h.mu.Unlock()

		if full {
			go h.flush()
		}
		return nil
	}

	go h.sendBulk([]logDocument{doc})
	return nil
}

func (h *ELKHandler) buildDocument(ctx context.Context, record slog.Record) logDocument {
	doc := logDocument{
		Timestamp:   record.Time,
		Severity:    record.Level.String(),
		Message:     record.Message,
		Service:     getContextString(ctx, ContextKeyService),
		Environment: getContextString(ctx, ContextKeyEnvironment),
		Version:     getContextString(ctx, ContextKeyVersion),
		RequestID:   getContextString(ctx, ContextKeyRequestID),
		TraceID:     getContextString(ctx, ContextKeyTraceID),
		UserID:      getContextString(ctx, ContextKeyUserID),
		ClientIP:    getContextString(ctx, ContextKeyClientIP),
		Method:      getContextString(ctx, ContextKeyMethod),
		Path:        getContextString(ctx, ContextKeyPath),
	}

	if doc.Service == "" {
		doc.Service = envOr("SERVICE_NAME", "phonedesk")
	}

	if code, ok := ctx.Value(ContextKeyStatusCode).(int); ok {
		doc.StatusCode = code
	}
	if dur, ok := ctx.Value(ContextKeyDuration).(time.Duration); ok {
		doc.DurationMS = float64(dur.Milliseconds())
	}

	record.Attrs(func(a slog.Attr) bool {
		if doc.Attrs == nil {
			doc.Attrs = make(map[string]any, record.NumAttrs())
		}
		if err, ok := a.Value.Any().(error); ok {
			doc.Attrs[a.Key] = err.Error()
		} else {
			doc.Attrs[a.Key] = a.Value.Any()
		}
		return true
	})

	return doc
}

// sendBulk writes documents into the day's index, e.g. phonedesk-logs-2026.09.01.
func (h *ELKHandler) sendBulk(docs []logDocument) {
	if len(docs) == 0 || h.config.ElasticsearchURL == "" {
		return
	}

	index := fmt.Sprintf("%s-%s", h.config.IndexPattern, time.Now().Format("2006.01.02"))

	var buf bytes.Buffer
	for _, doc := range docs {
		meta, _ := json.Marshal(map[string]any{"index": map[string]string{"_index": index}})
		buf.Write(meta)
		buf.WriteByte('\n')

		body, err := json.Marshal(doc)
		if err != nil {
			continue
		}
		buf.Write(body)
		buf.WriteByte('\n')
	}

	req, err := http.NewRequest(http.MethodPost, h.config.ElasticsearchURL+"/_bulk", &buf)
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	if h.config.Username != "" && h.config.Password != "" {
		req.SetBasicAuth(h.config.Username, h.config.Password)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elk: bulk send failed: %v\n", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Fprintf(os.Stderr, "elk: bulk send returned status %d\n", resp.StatusCode)
	}
}

func (h *ELKHandler) flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	docs := make([]logDocument, len(h.buffer))
	copy(docs, h.buffer)
	h.buffer = h.buffer[:0]
	h.mu.Unlock()

	h.sendBulk(docs)
}

func (h *ELKHandler) flushLoop() {
	ticker := time.NewTicker(h.config.FlushInterval)
	defer ticker.Stop()
	for range ticker.C {
		h.flush()
	}
}

func (h *ELKHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ELKHandler{
		client: h.client,
		config: h.config,
		base:   h.base.WithAttrs(attrs),
	}
}

func (h *ELKHandler) WithGroup(name string) slog.Handler {
	return &ELKHandler{
		client: h.client,
		config: h.config,
		base:   h.base.WithGroup(name),
	}
}

func getContextString(ctx context.Context, key ContextKey) string {
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}
