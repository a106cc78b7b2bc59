// internal/pkg/logger/logger_test.go
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRecord(t *testing.T, h slog.Handler, log func(l *slog.Logger)) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	log(slog.New(wrapJSON(&buf, h)))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

// wrapJSON rebuilds the handler chain bottoming out in a JSON handler writing
// to buf, so tests can decode what actually got emitted.
func wrapJSON(buf *bytes.Buffer, h slog.Handler) slog.Handler {
	base := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	switch h.(type) {
	case *RedactingHandler:
		return NewRedactingHandler(base)
	case *ContextHandler:
		return NewContextHandler(base)
	default:
		return base
	}
}

func TestRedactingHandler(t *testing.T) {
	tests := []struct {
		name    string
		log     func(l *slog.Logger)
		wantKey string
		wantVal any
	}{
		{
			name: "imei_attr_keeps_last_four_digits",
			log: func(l *slog.Logger) {
				l.Info("device sold", slog.String("imei", "490154203237518"))
			},
			wantKey: "imei",
			wantVal: "***********7518",
		},
		{
			name: "imei_embedded_in_message_is_masked",
			log: func(l *slog.Logger) {
				l.Info("lookup failed for 490154203237518")
			},
			wantKey: "msg",
			wantVal: "lookup failed for ***********7518",
		},
		{
			name: "password_attr_is_fully_redacted",
			log: func(l *slog.Logger) {
				l.Info("db connect", slog.String("db_password", "phonedesk_dev_2025"))
			},
			wantKey: "db_password",
			wantVal: "[REDACTED]",
		},
		{
			name: "customer_email_is_masked",
			log: func(l *slog.Logger) {
				l.Info("customer updated", slog.String("email", "jordan@example.com"))
			},
			wantKey: "email",
			wantVal: "j***@example.com",
		},
		{
			name: "customer_phone_keeps_prefix_and_suffix",
			log: func(l *slog.Logger) {
				l.Info("customer updated", slog.String("phone", "+12025550147"))
			},
			wantKey: "phone",
			wantVal: "+1********47",
		},
		{
			name: "plain_attrs_pass_through",
			log: func(l *slog.Logger) {
				l.Info("sale created", slog.String("sale_number", "SL202403-0007"))
			},
			wantKey: "sale_number",
			wantVal: "SL202403-0007",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := captureRecord(t, &RedactingHandler{}, tt.log)
			assert.Equal(t, tt.wantVal, record[tt.wantKey])
		})
	}
}

func TestContextHandler_EnrichesFromRequestContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ContextKeyRequestID, "req-123")
	ctx = context.WithValue(ctx, ContextKeyStatusCode, 201)

	record := captureRecord(t, &ContextHandler{}, func(l *slog.Logger) {
		l.InfoContext(ctx, "handled")
	})

	assert.Equal(t, "req-123", record["request_id"])
	assert.Equal(t, float64(201), record["status_code"])
}

func TestNewLogger_AppliesServiceAttrs(t *testing.T) {
	l := NewLogger(&LogConfig{
		Level:       "info",
		Format:      "json",
		ServiceName: "phonedesk-api",
	})

	require.NotNil(t, l.Logger)
	assert.True(t, l.Logger.Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, l.Logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestMaskIMEI(t *testing.T) {
	assert.Equal(t, "***********7518", maskIMEI("490154203237518"))
	assert.Equal(t, "123", maskIMEI("123"))
}
