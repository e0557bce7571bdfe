package middleware

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/route"
)

// Logger returns middleware that writes one structured log line per
// request, in the style of bolt/middleware/logger.go.
func Logger(logger *logrus.Logger) Middleware {
	return func(next route.Handler) route.Handler {
		return func(req *http1.Request) *http1.Response {
			start := time.Now()
			resp := next(req)
			logger.WithFields(logrus.Fields{
				"method":   req.MethodString(),
				"path":     req.PathString(),
				"status":   resp.Status,
				"duration": time.Since(start),
			}).Info("request")
			return resp
		}
	}
}
