// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContextKey identifies request-scoped values the middleware stores on the
// context and the handlers echo into every log record.
type ContextKey string

const (
	ContextKeyRequestID   ContextKey = "request_id"
	ContextKeyUserID      ContextKey = "user_id"
	ContextKeyTraceID     ContextKey = "trace_id"
	ContextKeyClientIP    ContextKey = "client_ip"
	ContextKeyUserAgent   ContextKey = "user_agent"
	ContextKeyMethod      ContextKey = "method"
	ContextKeyPath        ContextKey = "path"
	ContextKeyStatusCode  ContextKey = "status_code"
	ContextKeyDuration    ContextKey = "duration_ms"
	ContextKeyEnvironment ContextKey = "environment"
	ContextKeyService     ContextKey = "service"
	ContextKeyVersion     ContextKey = "version"
)

// requestContextKeys are the keys pulled off the context on every record.
// Service/environment/version ride on the handler as static attrs instead.
var requestContextKeys = []ContextKey{
	ContextKeyRequestID,
	ContextKeyUserID,
	ContextKeyTraceID,
	ContextKeyClientIP,
	ContextKeyUserAgent,
	ContextKeyMethod,
	ContextKeyPath,
	ContextKeyStatusCode,
	ContextKeyDuration,
}

// OutputConfig describes one extra log destination beyond the primary writer.
type OutputConfig struct {
	Type    string         `json:"type"` // file, elasticsearch
	Level   string         `json:"level"`
	Options map[string]any `json:"options"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	Level          string         `json:"level"`
	Format         string         `json:"format"` // json, text
	Output         string         `json:"output"` // stdout, stderr, file:<path>
	AddSource      bool           `json:"add_source"`
	SampleRate     float64        `json:"sample_rate"`
	EnableSampling bool           `json:"enable_sampling"`
	Environment    string         `json:"environment"`
	ServiceName    string         `json:"service_name"`
	ServiceVersion string         `json:"service_version"`
	Outputs        []OutputConfig `json:"outputs"`
}

// Logger wraps slog.Logger with context extraction for request-scoped logs.
type Logger struct {
	*slog.Logger
	config *LogConfig
}

// SetupLogger builds the process logger and installs it as the slog default.
// Every phonedesk binary (api, worker, seeder) calls this before anything
// else touches the log.
func SetupLogger(level string, format string) *Logger {
	cfg := &LogConfig{
		Level:          level,
		Format:         format,
		Output:         "stdout",
		AddSource:      true,
		ServiceName:    envOr("SERVICE_NAME", "phonedesk"),
		ServiceVersion: os.Getenv("SERVICE_VERSION"),
		Environment:    os.Getenv("APP_ENV"),
	}

	l := NewLogger(cfg)
	slog.SetDefault(l.Logger)
	return l
}

// NewLogger assembles the handler chain: format handler at the bottom, then
// context enrichment, optional sampling, redaction on top so nothing sensitive
// escapes through any path. Extra outputs fan out below the redaction layer.
func NewLogger(config *LogConfig) *Logger {
	if config == nil {
		config = &LogConfig{Level: "info", Format: "json", Output: "stdout"}
	}

	opts := &slog.HandlerOptions{
		Level:     parseLevel(config.Level),
		AddSource: config.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			return normalizeAttr(config, groups, a)
		},
	}

	w := resolveWriter(config.Output)

	var h slog.Handler
	if config.Format == "text" {
		h = NewPrettyTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	if extra := buildExtraHandlers(config); len(extra) > 0 {
		h = NewMultiHandler(append([]slog.Handler{h}, extra...)...)
	}

	h = NewContextHandler(h)
	if config.EnableSampling && config.SampleRate > 0 && config.SampleRate < 1.0 {
		h = NewSamplingHandler(h, config.SampleRate)
	}
	h = NewRedactingHandler(h)

	if attrs := serviceAttrs(config); len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}

	return &Logger{Logger: slog.New(h), config: config}
}

// WithContext returns a child logger carrying whatever request-scoped values
// are present on the context.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	attrs := extractContextAttrs(ctx, requestContextKeys)
	if len(attrs) == 0 {
		return l.Logger
	}
	return l.Logger.With(attrs...)
}

func serviceAttrs(config *LogConfig) []slog.Attr {
	var attrs []slog.Attr
	if config.ServiceName != "" {
		attrs = append(attrs, slog.String("service", config.ServiceName))
	}
	if config.ServiceVersion != "" {
		attrs = append(attrs, slog.String("version", config.ServiceVersion))
	}
	if config.Environment != "" {
		attrs = append(attrs, slog.String("env", config.Environment))
	}
	return attrs
}

func buildExtraHandlers(config *LogConfig) []slog.Handler {
	var out []slog.Handler
	for _, oc := range config.Outputs {
		if h := createOutputHandler(oc, parseLevel(oc.Level)); h != nil {
			out = append(out, h)
		}
	}
	return out
}

func createOutputHandler(output OutputConfig, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}

	switch output.Type {
	case "elasticsearch":
		var elkCfg ELKConfig
		if raw, err := json.Marshal(output.Options); err == nil {
			_ = json.Unmarshal(raw, &elkCfg)
		}
		return NewELKHandler(elkCfg, slog.NewJSONHandler(io.Discard, opts))

	case "file":
		if name, ok := output.Options["filename"].(string); ok {
			if f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				return slog.NewJSONHandler(f, opts)
			}
		}
	}

	return nil
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func resolveWriter(output string) io.Writer {
	switch {
	case output == "stderr":
		return os.Stderr
	case strings.HasPrefix(output, "file:"):
		name := strings.TrimPrefix(output, "file:")
		if f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			return f
		}
		return os.Stdout
	default:
		return os.Stdout
	}
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []any {
	var attrs []any
	for _, key := range keys {
		val := ctx.Value(key)
		if val == nil {
			continue
		}
		name := string(key)
		switch v := val.(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(name, v))
			}
		case int:
			attrs = append(attrs, slog.Int(name, v))
		case time.Duration:
			attrs = append(attrs, slog.Float64(name, float64(v.Milliseconds())))
		case uuid.UUID:
			attrs = append(attrs, slog.String(name, v.String()))
		default:
			attrs = append(attrs, slog.Any(name, v))
		}
	}
	return attrs
}

func normalizeAttr(config *LogConfig, _ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
		}
	}

	// The log pipeline keys on "severity", not slog's "level".
	if a.Key == slog.LevelKey && config.Format != "text" {
		a.Key = "severity"
	}

	if strings.HasSuffix(a.Key, "_ms") {
		if d, ok := a.Value.Any().(time.Duration); ok {
			a.Value = slog.Float64Value(float64(d.Milliseconds()))
		}
	}

	return a
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
