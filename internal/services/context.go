package services

import "context"

type contextKey string

const (
	runIDKey       contextKey = "run_id"
	callSignKey    contextKey = "call_sign"
	recordIndexKey contextKey = "record_index"
)

// WithRunID annotates context with the batch run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the batch run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCallSign annotates context with the call sign being processed.
func WithCallSign(ctx context.Context, call string) context.Context {
	if call == "" {
		return ctx
	}
	return context.WithValue(ctx, callSignKey, call)
}

// CallSignFromContext returns the call sign if present.
func CallSignFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(callSignKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRecordIndex annotates context with the 1-based record position.
func WithRecordIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, recordIndexKey, index)
}

// RecordIndexFromContext extracts the record position if present.
func RecordIndexFromContext(ctx context.Context) (int, bool) {
	v, ok := ctx.Value(recordIndexKey).(int)
	return v, ok
}
