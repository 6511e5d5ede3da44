package logging

import (
	"context"
	"log/slog"
	"slices"
	"time"
)

// Structured keys shared by every capestudio component. FieldExchange is the
// per-exchange correlation token of an intercepted request; FieldAssetID is an
// id handed out in a synthesized lookup.
const (
	FieldComponent = "component"
	FieldItemID    = "item_id"
	FieldPieceUUID = "piece_uuid"
	FieldExchange  = "exchange"
	FieldAssetID   = "asset_id"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
)

const (
	defaultHint   = "check logs for details"
	defaultImpact = "operation completed with warnings"
)

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error attaches err under "error". A nil err is rendered as "<nil>".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// NewComponentLogger tags logger with component. A nil logger discards output.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, filling in defaults for any the caller left out.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	emit(logger, slog.LevelWarn, msg, attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultHint),
		String(FieldImpact, defaultImpact),
	)
}

// ErrorWithContext logs an error that always carries event_type and error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...slog.Attr) {
	emit(logger, slog.LevelError, msg, attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultHint),
	)
}

func emit(logger *slog.Logger, level slog.Level, msg string, attrs []slog.Attr, defaults ...slog.Attr) {
	if logger == nil {
		return
	}
	for _, d := range defaults {
		if !slices.ContainsFunc(attrs, func(a slog.Attr) bool { return a.Key == d.Key }) {
			attrs = append(attrs, d)
		}
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(discardHandler{})
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool { return false }

func (discardHandler) Handle(context.Context, slog.Record) error { return nil }

func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h discardHandler) WithGroup(string) slog.Handler { return h }
