package http1

import "errors"

// ErrMalformedRequest is returned when the start line or a header
// line cannot be parsed. Callers translate this into a 400 response
// followed by a connection close.
var ErrMalformedRequest = errors.New("http1: malformed request")

// ErrChunkedUnsupported is returned when a request declares
// Transfer-Encoding: chunked. Chunked bodies are not supported; the
// session responds 400.
var ErrChunkedUnsupported = errors.New("http1: chunked transfer encoding not supported")
