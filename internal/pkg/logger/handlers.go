// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

// ContextHandler copies request-scoped context values onto every record so a
// log line can always be tied back to its request.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler creates a handler that enriches records from the context.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	attrs := extractContextAttrs(ctx, requestContextKeys)
	if len(attrs) == 0 {
		return h.inner.Handle(ctx, record)
	}

	enriched := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(a slog.Attr) bool {
		enriched.AddAttrs(a)
		return true
	})
	for _, attr := range attrs {
		if a, ok := attr.(slog.Attr); ok {
			enriched.AddAttrs(a)
		}
	}
	return h.inner.Handle(ctx, enriched)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

// SamplingHandler drops a share of debug/info records under load. Warnings
// and errors always pass.
type SamplingHandler struct {
	inner slog.Handler
	rate  float64
	mu    sync.Mutex
	rng   *rand.Rand
}

// NewSamplingHandler creates a handler that samples low-severity records.
func NewSamplingHandler(inner slog.Handler, rate float64) *SamplingHandler {
	return &SamplingHandler{
		inner: inner,
		rate:  rate,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *SamplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level >= slog.LevelWarn {
		return h.inner.Enabled(ctx, level)
	}
	h.mu.Lock()
	keep := h.rng.Float64() < h.rate
	h.mu.Unlock()
	return keep && h.inner.Enabled(ctx, level)
}

func (h *SamplingHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.Float64("sample_rate", h.rate))
	return h.inner.Handle(ctx, record)
}

func (h *SamplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SamplingHandler{inner: h.inner.WithAttrs(attrs), rate: h.rate, rng: h.rng}
}

func (h *SamplingHandler) WithGroup(name string) slog.Handler {
	return &SamplingHandler{inner: h.inner.WithGroup(name), rate: h.rate, rng: h.rng}
}

// Attr keys whose values are replaced wholesale.
var redactedKeys = []string{
	"password", "secret", "token", "auth", "jwt", "api_key",
}

// Attr keys that hold customer PII and get masked rather than dropped:
// enough survives to correlate log lines, not enough to identify anyone.
var maskedKeys = map[string]func(string) string{
	"imei":  maskIMEI,
	"phone": maskPhone,
	"email": maskEmail,
}

var (
	imeiPattern  = regexp.MustCompile(`\b\d{15}\b`)
	phonePattern = regexp.MustCompile(`\+\d{7,14}\b`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	credPattern  = regexp.MustCompile(`(?i)(password|secret|token|api[-_]?key)\s*[:=]\s*["']?([^"'\s]+)`)
)

// RedactingHandler masks credentials and customer PII before a record reaches
// any sink. Device IMEIs keep their last four digits so a support engineer can
// still match a log line against the inventory UI.
type RedactingHandler struct {
	inner slog.Handler
}

// NewRedactingHandler creates a handler that scrubs sensitive values.
func NewRedactingHandler(inner slog.Handler) *RedactingHandler {
	return &RedactingHandler{inner: inner}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	scrubbed := slog.NewRecord(record.Time, record.Level, redactString(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, scrubbed)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = redactAttr(a)
	}
	return &RedactingHandler{inner: h.inner.WithAttrs(scrubbed)}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)

	for _, blocked := range redactedKeys {
		if strings.Contains(key, blocked) {
			a.Value = slog.StringValue("[REDACTED]")
			return a
		}
	}

	if mask, ok := maskedKeys[key]; ok {
		if s, isStr := a.Value.Any().(string); isStr {
			a.Value = slog.StringValue(mask(s))
			return a
		}
	}

	if s, ok := a.Value.Any().(string); ok {
		a.Value = slog.StringValue(redactString(s))
	}
	return a
}

func redactString(s string) string {
	s = credPattern.ReplaceAllString(s, "$1=[REDACTED]")
	s = imeiPattern.ReplaceAllStringFunc(s, maskIMEI)
	s = phonePattern.ReplaceAllStringFunc(s, maskPhone)
	s = emailPattern.ReplaceAllStringFunc(s, maskEmail)
	return s
}

func maskIMEI(imei string) string {
	if len(imei) < 4 {
		return imei
	}
	return strings.Repeat("*", len(imei)-4) + imei[len(imei)-4:]
}

func maskPhone(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[at:]
	}
	return email[:1] + "***" + email[at:]
}

// MultiHandler fans one record out to several sinks.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler creates a handler that writes to every given sink.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range h.handlers {
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi-handler errors: %v", errs)
	}
	return nil
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		next[i] = handler.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}

// PrettyTextHandler renders colored single-line records for local development.
type PrettyTextHandler struct {
	*slog.TextHandler
	mu sync.Mutex
	w  io.Writer
}

// NewPrettyTextHandler creates a pretty text handler.
func NewPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyTextHandler {
	return &PrettyTextHandler{
		TextHandler: slog.NewTextHandler(w, opts),
		w:           w,
	}
}

func (h *PrettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	level := r.Level.String()
	reset := "\033[0m"

	fmt.Fprintf(h.w, "%s%s %s%s%s %s",
		levelColor(r.Level),
		r.Time.Format("15:04:05.000"),
		strings.ToUpper(level),
		reset,
		strings.Repeat(" ", 7-len(level)),
		r.Message,
	)

	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(h.w, " \033[36m%s=%v%s", a.Key, a.Value, reset)
		return true
	})
	fmt.Fprintln(h.w)

	return nil
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "\033[31m"
	case level >= slog.LevelWarn:
		return "\033[33m"
	case level >= slog.LevelInfo:
		return "\033[34m"
	default:
		return "\033[37m"
	}
}
