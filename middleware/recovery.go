package middleware

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/route"
)

// Recovery returns middleware that converts a handler panic into a
// 500 response and logs it, mirroring bolt/middleware/recovery.go.
// The session worker already recovers any panic that escapes the
// route table (see session.Session.invoke); this middleware lets an
// embedder catch it earlier, per-handler, with its own log fields.
func Recovery(logger *logrus.Logger) Middleware {
	return func(next route.Handler) route.Handler {
		return func(req *http1.Request) (resp *http1.Response) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"path":  req.PathString(),
						"panic": r,
					}).Error("recovered from handler panic")
					resp = http1.NewResponse(500, []byte("Internal Server Error: "+fmt.Sprint(r)))
				}
			}()
			return next(req)
		}
	}
}
