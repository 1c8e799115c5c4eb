package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLogFields(t *testing.T) {
	assert.Empty(t, LogFields(context.Background()))

	id := uuid.New()
	ctx := WithTraceData(context.Background(), &TraceData{RequestID: "req-1"})
	ctx = WithRequestData(ctx, &RequestData{UserID: id})
	assert.Equal(t, []interface{}{"request_id", "req-1", "user_id", id.String()}, LogFields(ctx))
}

func TestGettersTolerateMissingValues(t *testing.T) {
	assert.Nil(t, GetRequestData(nil))
	assert.Nil(t, GetTraceData(context.Background()))
	assert.NotNil(t, WithTraceData(nil, &TraceData{}))
}
