package middleware

import (
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/northstar-backend/internal/observability"
	"github.com/yungbote/northstar-backend/internal/platform/ctxutil"
	"github.com/yungbote/northstar-backend/internal/platform/logger"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
)

// Inbound ids are echoed back and logged, so only short opaque tokens are kept.
var inboundID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

func inboundHeader(c *gin.Context, name string) string {
	if v := c.GetHeader(name); inboundID.MatchString(v) {
		return v
	}
	return ""
}

// TraceContext attaches trace and request ids to the request context and
// response headers. The active span's trace id wins over an inbound header.
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{RequestID: inboundHeader(c, HeaderRequestID)}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			td.TraceID = sc.TraceID().String()
		} else if td.TraceID = inboundHeader(c, HeaderTraceID); td.TraceID == "" {
			td.TraceID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Header(HeaderTraceID, td.TraceID)
		c.Header(HeaderRequestID, td.RequestID)
		c.Next()
	}
}

// Observe logs each request and records its metrics once the handler chain
// returns. Either log or m may be nil.
func Observe(log *logger.Logger, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.APIInflight(c.Request.Context(), 1)

		c.Next()

		ctx := c.Request.Context()
		elapsed := time.Since(start)
		status := c.Writer.Status()
		m.APIInflight(ctx, -1)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveAPI(ctx, c.Request.Method, route, status, elapsed)
		if log == nil {
			return
		}

		fields := append([]interface{}{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		}, ctxutil.LogFields(ctx)...)
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			fields = append(fields, "error", errs.String())
		}
		logAt(log, status)("HTTP request", fields...)
	}
}

func logAt(log *logger.Logger, status int) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Error
	case status >= 400:
		return log.Warn
	}
	return log.Debug
}
