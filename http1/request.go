package http1

import "github.com/yourusername/relay/memory"

// Request is a parsed HTTP/1.1 request. Every byte slice it holds
// (Method, Path, Version, header fields, Body) is a window into the
// arena-owned receive buffer the Parser was given — nothing here
// survives the owning Session's Arena.Release. Arena is attached by
// the caller (see session.Session) so handlers can allocate
// additional response data from the same region their request lives
// in, instead of reaching back into server-global memory.
type Request struct {
	Method     []byte
	Path       []byte
	Version    []byte
	Headers    Header
	Body       []byte
	Arena      *memory.Arena
	RemoteAddr string
}

// MethodString and PathString exist because route matching wants
// string keys; the conversions are zero-copy aliases of arena memory
// (see memory.bytesToString's contract), valid for the Request's
// lifetime.
func (r *Request) MethodString() string { return unsafeString(r.Method) }
func (r *Request) PathString() string   { return unsafeString(r.Path) }
