package services

import "context"

type contextKey string

const (
	batchIDKey   contextKey = "batch_id"
	operationKey contextKey = "operation"
	fileKey      contextKey = "file"
)

// WithBatchID annotates ctx with the batch run identifier.
func WithBatchID(ctx context.Context, id string) context.Context {
	return withValue(ctx, batchIDKey, id)
}

// BatchIDFromContext returns the batch run identifier if present.
func BatchIDFromContext(ctx context.Context) (string, bool) {
	return value(ctx, batchIDKey)
}

// WithOperation annotates ctx with the batch operation (rename, resize, convert).
func WithOperation(ctx context.Context, operation string) context.Context {
	return withValue(ctx, operationKey, operation)
}

func OperationFromContext(ctx context.Context) (string, bool) {
	return value(ctx, operationKey)
}

// WithFile annotates ctx with the source file a worker is processing.
func WithFile(ctx context.Context, path string) context.Context {
	return withValue(ctx, fileKey, path)
}

func FileFromContext(ctx context.Context) (string, bool) {
	return value(ctx, fileKey)
}

// withValue leaves ctx untouched for blank values so lookups never report an
// empty string as present.
func withValue(ctx context.Context, key contextKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key contextKey) (string, bool) {
	v, ok := ctx.Value(key).(string)
	return v, ok && v != ""
}
