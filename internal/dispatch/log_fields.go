package dispatch

import "go.uber.org/zap"

func contextFields(c *Context) []zap.Field {
	if c == nil {
		return []zap.Field{
			zap.String("trace_id", ""),
		}
	}
	return []zap.Field{
		zap.String("path", c.r.URL.Path),
		zap.String("trace_id", c.TraceID),
		zap.String("required", c.required.String()),
		zap.String("caller", c.CallerLevel.String()),
		zap.String("identity", c.Identity),
		zap.String("reason", c.DenyReason),
		zap.String("remote", c.r.RemoteAddr),
	}
}
