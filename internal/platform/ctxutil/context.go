// Package ctxutil carries per-request values through context.Context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestDataKey ctxKey = iota
	traceDataKey
)

// RequestData is the authenticated caller attached by the auth middleware.
type RequestData struct {
	UserID uuid.UUID
	Email  string
}

// TraceData correlates logs, alerts and responses for one request.
type TraceData struct {
	TraceID   string
	RequestID string
}

func lookup[T any](ctx context.Context, key ctxKey) *T {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(key).(*T)
	return v
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	return lookup[RequestData](ctx, requestDataKey)
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	return lookup[TraceData](ctx, traceDataKey)
}

// LogFields returns trace and caller identifiers as logger key/value pairs.
// Empty values are skipped.
func LogFields(ctx context.Context) []interface{} {
	var kv []interface{}
	if td := GetTraceData(ctx); td != nil {
		if td.TraceID != "" {
			kv = append(kv, "trace_id", td.TraceID)
		}
		if td.RequestID != "" {
			kv = append(kv, "request_id", td.RequestID)
		}
	}
	if rd := GetRequestData(ctx); rd != nil && rd.UserID != uuid.Nil {
		kv = append(kv, "user_id", rd.UserID.String())
	}
	return kv
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
