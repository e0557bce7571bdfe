package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/route"
)

// BearerAuth returns middleware that rejects requests without a
// valid "Authorization: Bearer <token>" JWT signed with secret using
// an HMAC method (HS256, HS384 or HS512), mirroring
// bolt/middleware/jwt's extraction and validation flow without its
// claims cache: every request's token is parsed and verified afresh.
func BearerAuth(secret []byte) Middleware {
	return func(next route.Handler) route.Handler {
		return func(req *http1.Request) *http1.Response {
			header := req.Headers.GetString("Authorization")
			if header == "" {
				return unauthorized("missing Authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				return unauthorized("expected Bearer token")
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return unauthorized("invalid token")
			}

			return next(req)
		}
	}
}

func unauthorized(reason string) *http1.Response {
	resp := http1.NewResponse(401, []byte(reason))
	resp.Headers.Add([]byte("WWW-Authenticate"), []byte("Bearer"))
	return resp
}
