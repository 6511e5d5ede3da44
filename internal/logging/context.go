package logging

import (
	"context"
	"log/slog"
)

type exchangeKey struct{}

// WithExchange stores a per-exchange correlation token on the context.
func WithExchange(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, exchangeKey{}, token)
}

// ExchangeFromContext returns the correlation token stored by WithExchange.
func ExchangeFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(exchangeKey{}).(string)
	return token, ok && token != ""
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if token, ok := ExchangeFromContext(ctx); ok {
		return logger.With(String(FieldExchange, token))
	}
	return logger
}
